package summary

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/wastenet/wastenet-go/internal/analytics"
	"github.com/wastenet/wastenet-go/internal/predictionlog"
)

// chatPreamble prefixes every free-form question.
const chatPreamble = "You are an expert in waste management logistics. Please provide detailed advice about: "

// ChatPrompt wraps a user question in the expert preamble.
func ChatPrompt(question string) string {
	return chatPreamble + question
}

// BuildPrompt renders the aggregate tables and up to maxRows of the most
// recent records into the summary request. maxRows <= 0 includes every row.
func BuildPrompt(result analytics.Result, records []predictionlog.Record, maxRows int) string {
	var sb strings.Builder

	sb.WriteString("Based on the following waste prediction data:\n\n")

	if result.Total == 0 && len(records) == 0 {
		sb.WriteString("The prediction log is empty: no images have been classified yet.\n\n")
	} else {
		fmt.Fprintf(&sb, "Total predictions: %d\n\n", result.Total)

		sb.WriteString("Predictions per month and class:\n")
		writeTable(&sb, result.Monthly)
		sb.WriteString("\nPredictions per day of week and class:\n")
		writeTable(&sb, result.Daily)

		sb.WriteString("\nPrediction log:\n")
		writeRecords(&sb, records, maxRows)
		sb.WriteString("\n")
	}

	sb.WriteString("Please provide:\n")
	sb.WriteString("1. Key trends and patterns\n")
	sb.WriteString("2. Waste-to-energy recommendations\n")
	sb.WriteString("3. Logistics optimization suggestions\n")

	return sb.String()
}

func writeTable(sb *strings.Builder, table analytics.Table) {
	tw := tabwriter.NewWriter(sb, 0, 4, 2, ' ', 0)

	header := append([]string{table.Key}, table.Classes...)
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	for _, group := range table.Groups {
		cells := make([]string, 0, len(table.Classes)+1)
		cells = append(cells, group)
		for _, n := range table.Row(group) {
			cells = append(cells, fmt.Sprint(n))
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}

	_ = tw.Flush()
}

func writeRecords(sb *strings.Builder, records []predictionlog.Record, maxRows int) {
	start := 0
	if maxRows > 0 && len(records) > maxRows {
		start = len(records) - maxRows
		fmt.Fprintf(sb, "(showing the latest %d of %d rows)\n", maxRows, len(records))
	}

	tw := tabwriter.NewWriter(sb, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(predictionlog.Header, "\t"))
	for i := start; i < len(records); i++ {
		r := &records[i]
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Timestamp.Format(predictionlog.TimestampLayout),
			r.PredictedClass,
			predictionlog.FormatConfidence(r.Confidence),
			r.ImageName,
			r.DayOfWeek,
			r.Month)
	}
	_ = tw.Flush()
}
