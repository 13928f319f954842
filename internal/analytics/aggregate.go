// Package analytics turns the prediction log into month × class and
// weekday × class count tables.
package analytics

import (
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/wastenet/wastenet-go/internal/predictionlog"
)

// Group key names used in the JSON form of each table.
const (
	KeyMonth     = "month"
	KeyDayOfWeek = "day_of_week"
)

// Result holds both aggregate tables for one log snapshot.
type Result struct {
	Monthly Table
	Daily   Table
	Total   int
}

var (
	monthOrder   = calendarOrder(12, func(i int) string { return time.Month(i + 1).String() })
	weekdayOrder = calendarOrder(7, func(i int) string { return time.Weekday((i + 1) % 7).String() }) // Monday first
)

func calendarOrder(n int, name func(int) string) map[string]int {
	order := make(map[string]int, n)
	for i := range n {
		order[name(i)] = i
	}
	return order
}

// Aggregate counts records per month and per weekday for every class seen in
// records. Classes are collated in English; groups follow calendar order with
// unrecognized names appended in first-seen order. Every cell is present.
func Aggregate(records []predictionlog.Record) Result {
	classes := distinctClasses(records)

	monthly := newTable(KeyMonth, classes)
	daily := newTable(KeyDayOfWeek, classes)

	for i := range records {
		rec := &records[i]
		monthly.add(rec.Month, rec.PredictedClass)
		daily.add(rec.DayOfWeek, rec.PredictedClass)
	}

	monthly.sortGroups(monthOrder)
	daily.sortGroups(weekdayOrder)

	return Result{
		Monthly: monthly,
		Daily:   daily,
		Total:   len(records),
	}
}

func distinctClasses(records []predictionlog.Record) []string {
	seen := make(map[string]struct{})
	classes := make([]string, 0)
	for i := range records {
		class := records[i].PredictedClass
		if _, ok := seen[class]; ok {
			continue
		}
		seen[class] = struct{}{}
		classes = append(classes, class)
	}

	collate.New(language.English).SortStrings(classes)
	return classes
}
