package summary

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/wastenet/wastenet-go/internal/analytics"
	"github.com/wastenet/wastenet-go/internal/predictionlog"
)

func TestBuildPromptIncludesTablesAndRows(t *testing.T) {
	t.Parallel()

	records := sampleRecords()
	prompt := BuildPrompt(analytics.Aggregate(records), records, 0)

	assert.True(t, strings.HasPrefix(prompt, "Based on the following waste prediction data:"))
	assert.Contains(t, prompt, "Total predictions: 2")
	assert.Contains(t, prompt, "Predictions per month and class:")
	assert.Contains(t, prompt, "Predictions per day of week and class:")
	assert.Contains(t, prompt, "January")
	assert.Contains(t, prompt, "Monday")
	assert.Contains(t, prompt, "2024-01-15 09:00:00")
	assert.Contains(t, prompt, "a.jpg")
	assert.Contains(t, prompt, "b.jpg")
	assert.True(t, strings.HasSuffix(prompt,
		"Please provide:\n1. Key trends and patterns\n2. Waste-to-energy recommendations\n3. Logistics optimization suggestions\n"))
}

func TestBuildPromptKeepsLatestRows(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)
	var records []predictionlog.Record
	for i := range 10 {
		records = append(records, predictionlog.NewRecord(start.Add(time.Duration(i)*time.Hour),
			predictionlog.Entry{PredictedClass: "paper", Confidence: 0.5, ImageName: fmt.Sprintf("img-%02d.jpg", i)}))
	}

	prompt := BuildPrompt(analytics.Aggregate(records), records, 3)

	assert.Contains(t, prompt, "(showing the latest 3 of 10 rows)")
	assert.NotContains(t, prompt, "img-06.jpg")
	for _, name := range []string{"img-07.jpg", "img-08.jpg", "img-09.jpg"} {
		assert.Contains(t, prompt, name)
	}
	assert.Contains(t, prompt, "Total predictions: 10")
}

func TestBuildPromptEmptyLog(t *testing.T) {
	t.Parallel()

	prompt := BuildPrompt(analytics.Aggregate(nil), nil, 100)
	assert.Contains(t, prompt, "The prediction log is empty")
	assert.Contains(t, prompt, "1. Key trends and patterns")
}

func TestChatPrompt(t *testing.T) {
	t.Parallel()

	assert.Equal(t,
		"You are an expert in waste management logistics. Please provide detailed advice about: glass reuse",
		ChatPrompt("glass reuse"))
}
