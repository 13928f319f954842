package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/wastenet/wastenet-go/internal/errors"
)

func chatRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func TestChat(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		answer     string
		answerErr  error
		wantStatus int
		wantAnswer string
	}{
		{
			name:       "answered",
			body:       `{"question":"How do I recycle glass?"}`,
			answer:     "Rinse it and use the glass bin.",
			wantStatus: http.StatusOK,
			wantAnswer: "Rinse it and use the glass bin.",
		},
		{
			name:       "empty question",
			body:       `{"question":"   "}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed body",
			body:       `{"question":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "generator failure",
			body:       `{"question":"Is pizza box paper?"}`,
			answerErr:  errors.Newf("quota exceeded").Component("summary").Category(errors.CategoryLLM).Build(),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			if tt.answer != "" || tt.answerErr != nil {
				env.summarizer.On("Answer", mock.Anything, mock.AnythingOfType("string")).
					Return(tt.answer, tt.answerErr).Once()
			}

			rec := env.do(chatRequest(tt.body))
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())

			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantAnswer, decodeJSON[ChatResponse](t, rec).Answer)
			} else {
				assert.NotEmpty(t, decodeJSON[ErrorResponse](t, rec).CorrelationID)
			}
			env.summarizer.AssertExpectations(t)
		})
	}
}

func TestChatWithoutSummarizer(t *testing.T) {
	env := newTestEnv(t)
	env.controller.Summarizer = nil

	rec := env.do(chatRequest(`{"question":"anything"}`))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
