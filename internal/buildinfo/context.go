// Package buildinfo holds build-time metadata injected through -ldflags.
package buildinfo

import (
	"runtime/debug"
	"sync"

	"github.com/google/uuid"
)

// UnknownValue is reported for metadata that was not injected at build time.
const UnknownValue = "unknown"

// Set via -ldflags "-X github.com/wastenet/wastenet-go/internal/buildinfo.version=..."
var (
	version   = ""
	buildDate = ""
)

// Context contains build-time metadata that is not user-configurable.
type Context struct {
	// Version holds the Git version tag from build
	Version string

	// BuildDate is the time when the binary was built
	BuildDate string

	// InstanceID identifies this process in logs and telemetry
	InstanceID string
}

// NewContext returns a Context with the given values.
func NewContext(version, buildDate, instanceID string) *Context {
	return &Context{
		Version:    version,
		BuildDate:  buildDate,
		InstanceID: instanceID,
	}
}

var (
	currentOnce sync.Once
	current     *Context
)

// Current returns the metadata of the running binary. When no version was
// injected the module version from the embedded build info is used.
func Current() *Context {
	currentOnce.Do(func() {
		v := version
		if v == "" {
			if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "(devel)" {
				v = info.Main.Version
			}
		}
		current = NewContext(v, buildDate, uuid.NewString())
	})
	return current
}

// GetVersion returns the version or UnknownValue.
func (c *Context) GetVersion() string {
	if c == nil || c.Version == "" {
		return UnknownValue
	}
	return c.Version
}

// GetBuildDate returns the build date or UnknownValue.
func (c *Context) GetBuildDate() string {
	if c == nil || c.BuildDate == "" {
		return UnknownValue
	}
	return c.BuildDate
}

// GetInstanceID returns the instance identifier or UnknownValue.
func (c *Context) GetInstanceID() string {
	if c == nil || c.InstanceID == "" {
		return UnknownValue
	}
	return c.InstanceID
}
