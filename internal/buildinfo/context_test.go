package buildinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextGetters(t *testing.T) {
	tests := []struct {
		name          string
		ctx           *Context
		wantVersion   string
		wantBuildDate string
		wantInstance  string
	}{
		{
			name:          "nil context",
			ctx:           nil,
			wantVersion:   UnknownValue,
			wantBuildDate: UnknownValue,
			wantInstance:  UnknownValue,
		},
		{
			name:          "empty values",
			ctx:           NewContext("", "", ""),
			wantVersion:   UnknownValue,
			wantBuildDate: UnknownValue,
			wantInstance:  UnknownValue,
		},
		{
			name:          "populated",
			ctx:           NewContext("1.0.0-beta.1", "2024-05-01", "abc"),
			wantVersion:   "1.0.0-beta.1",
			wantBuildDate: "2024-05-01",
			wantInstance:  "abc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantVersion, tt.ctx.GetVersion())
			assert.Equal(t, tt.wantBuildDate, tt.ctx.GetBuildDate())
			assert.Equal(t, tt.wantInstance, tt.ctx.GetInstanceID())
		})
	}
}

func TestCurrentIsStable(t *testing.T) {
	first := Current()
	second := Current()

	assert.Same(t, first, second)
	assert.Len(t, first.GetInstanceID(), 36)
}
