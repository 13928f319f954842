package analysis

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/wastenet/wastenet-go/internal/errors"
)

// Ask sends a free-form waste management question to the text generator and
// prints the answer.
func Ask(ctx context.Context, c *Components, question string, w io.Writer) error {
	question = strings.TrimSpace(question)
	if question == "" {
		return errors.Newf("question is empty").
			Component("analysis").
			Category(errors.CategoryValidation).
			Build()
	}

	answer, err := c.Summarizer.Answer(ctx, question)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, answer)
	return err
}
