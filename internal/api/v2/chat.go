package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// ChatRequest is the body accepted by POST /api/chat.
type ChatRequest struct {
	Question string `json:"question"`
}

// ChatResponse is the body returned by POST /api/chat.
type ChatResponse struct {
	Answer string `json:"answer"`
}

// Chat handles POST /api/chat.
func (c *Controller) Chat(ctx echo.Context) error {
	var req ChatRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid request body", http.StatusBadRequest)
	}
	if strings.TrimSpace(req.Question) == "" {
		return c.HandleError(ctx, nil, "Question is required", http.StatusBadRequest)
	}
	if c.Summarizer == nil {
		return c.HandleError(ctx, nil, "Text generation is not configured", http.StatusServiceUnavailable)
	}

	answer, err := c.Summarizer.Answer(ctx.Request().Context(), req.Question)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to generate an answer", http.StatusInternalServerError)
	}

	return ctx.JSON(http.StatusOK, ChatResponse{Answer: answer})
}
