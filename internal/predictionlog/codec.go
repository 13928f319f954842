package predictionlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/wastenet/wastenet-go/internal/errors"
)

const utf8BOM = "\ufeff"

// headerLine is the first line of every log file.
var headerLine = strings.Join(Header, ",") + "\n"

// FormatConfidence renders f the way the log has always stored it: the
// shortest representation that round-trips, with a trailing ".0" on integral
// values and exponent notation below 1e-4 or from 1e16 up.
func FormatConfidence(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}

	sci := strconv.FormatFloat(f, 'e', -1, 64)
	exp, err := strconv.Atoi(sci[strings.IndexByte(sci, 'e')+1:])
	if err != nil || exp < -4 || exp >= 16 {
		return sci
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

// quoteField applies minimal quoting: only fields containing the delimiter,
// a quote or a line break are quoted.
func quoteField(field string) string {
	if !strings.ContainsAny(field, ",\"\r\n") {
		return field
	}
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

// encodeRow renders rec as one log line including the terminator.
func encodeRow(rec Record) string {
	var sb strings.Builder
	fields := [...]string{
		rec.Timestamp.Format(TimestampLayout),
		rec.PredictedClass,
		FormatConfidence(rec.Confidence),
		rec.ImageName,
		rec.DayOfWeek,
		rec.Month,
	}
	for i, field := range fields {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(quoteField(field))
	}
	sb.WriteByte('\n')
	return sb.String()
}

// WriteCSV writes records to w in log format, header first.
func WriteCSV(w io.Writer, records []Record) error {
	if _, err := io.WriteString(w, headerLine); err != nil {
		return err
	}
	for i := range records {
		if _, err := io.WriteString(w, encodeRow(records[i])); err != nil {
			return err
		}
	}
	return nil
}

// ParseCSV reads a log in CSV form. Timestamps are interpreted in loc
// (time.Local when nil). Rows that cannot be decoded are skipped and
// reported in Snapshot.Rejected. A missing or different header fails the
// whole read with ErrSchema.
func ParseCSV(r io.Reader, loc *time.Location) (*Snapshot, error) {
	if loc == nil {
		loc = time.Local
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, schemaError("missing header")
	}
	if err != nil {
		return nil, schemaError(fmt.Sprintf("unreadable header: %v", err))
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}
	if !equalHeader(header) {
		return nil, schemaError(fmt.Sprintf("header %q, want %q", strings.Join(header, ","), strings.Join(Header, ",")))
	}

	snap := &Snapshot{}
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				snap.Rejected = append(snap.Rejected, &RowError{Line: parseErr.StartLine, Reason: parseErr.Err.Error()})
				continue
			}
			return nil, errors.New(err).
				Component("predictionlog").
				Category(errors.CategoryFileIO).
				Context("operation", "read_rows").
				Build()
		}

		line, _ := reader.FieldPos(0)
		rec, rowErr := decodeRow(fields, line, loc)
		if rowErr != nil {
			snap.Rejected = append(snap.Rejected, rowErr)
			continue
		}
		snap.Records = append(snap.Records, rec)
	}

	return snap, nil
}

func decodeRow(fields []string, line int, loc *time.Location) (Record, *RowError) {
	if len(fields) != len(Header) {
		return Record{}, &RowError{Line: line, Reason: fmt.Sprintf("expected %d fields, got %d", len(Header), len(fields))}
	}

	ts, err := time.ParseInLocation(TimestampLayout, fields[0], loc)
	if err != nil {
		return Record{}, &RowError{Line: line, Reason: fmt.Sprintf("invalid timestamp %q", fields[0])}
	}

	confidence, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return Record{}, &RowError{Line: line, Reason: fmt.Sprintf("invalid confidence %q", fields[2])}
	}

	return Record{
		Timestamp:      ts,
		PredictedClass: fields[1],
		Confidence:     confidence,
		ImageName:      fields[3],
		DayOfWeek:      fields[4],
		Month:          fields[5],
	}, nil
}

func equalHeader(fields []string) bool {
	if len(fields) != len(Header) {
		return false
	}
	for i := range Header {
		if fields[i] != Header[i] {
			return false
		}
	}
	return true
}

func schemaError(reason string) error {
	return errors.New(fmt.Errorf("%w: %s", ErrSchema, reason)).
		Component("predictionlog").
		Category(errors.CategoryFileParsing).
		Context("operation", "check_header").
		Build()
}
