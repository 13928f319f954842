package analytics

import (
	"bytes"
	"encoding/json"
	"slices"
)

// Table is a zero-filled group × class count matrix.
type Table struct {
	// Key names the group column, "month" or "day_of_week". It gains a
	// leading underscore while it collides with a class name.
	Key     string
	Groups  []string
	Classes []string

	counts     map[string][]int // group -> counts indexed like Classes
	classIndex map[string]int
	firstSeen  map[string]int
}

func newTable(key string, classes []string) Table {
	index := make(map[string]int, len(classes))
	for i, c := range classes {
		index[c] = i
	}
	for {
		if _, taken := index[key]; !taken {
			break
		}
		key = "_" + key
	}
	return Table{
		Key:        key,
		Groups:     []string{},
		Classes:    classes,
		counts:     make(map[string][]int),
		classIndex: index,
		firstSeen:  make(map[string]int),
	}
}

func (t *Table) add(group, class string) {
	row, ok := t.counts[group]
	if !ok {
		row = make([]int, len(t.Classes))
		t.counts[group] = row
		t.firstSeen[group] = len(t.Groups)
		t.Groups = append(t.Groups, group)
	}
	row[t.classIndex[class]]++
}

// sortGroups orders known groups by rank and appends the rest in first-seen order.
func (t *Table) sortGroups(rank map[string]int) {
	slices.SortStableFunc(t.Groups, func(a, b string) int {
		ra, aKnown := rank[a]
		rb, bKnown := rank[b]
		switch {
		case aKnown && bKnown:
			return ra - rb
		case aKnown:
			return -1
		case bKnown:
			return 1
		default:
			return t.firstSeen[a] - t.firstSeen[b]
		}
	})
}

// Count returns the number of records of class in group.
func (t Table) Count(group, class string) int {
	row, ok := t.counts[group]
	if !ok {
		return 0
	}
	i, ok := t.classIndex[class]
	if !ok {
		return 0
	}
	return row[i]
}

// Row returns the counts for group in Classes order, or nil for an unknown group.
func (t Table) Row(group string) []int {
	row, ok := t.counts[group]
	if !ok {
		return nil
	}
	return slices.Clone(row)
}

// ClassTotals sums each class over all groups.
func (t Table) ClassTotals() map[string]int {
	totals := make(map[string]int, len(t.Classes))
	for _, class := range t.Classes {
		totals[class] = 0
	}
	for _, row := range t.counts {
		for i, n := range row {
			totals[t.Classes[i]] += n
		}
	}
	return totals
}

// Empty reports whether the table has no groups.
func (t Table) Empty() bool {
	return len(t.Groups) == 0
}

// MarshalJSON renders the table as a list of records, one object per group
// with the group key first and then every class in order:
//
//	[{"month":"January","glass":1,"plastic":0}]
func (t Table) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for gi, group := range t.Groups {
		if gi > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		if err := writeMember(&buf, t.Key, group); err != nil {
			return nil, err
		}
		row := t.counts[group]
		for ci, class := range t.Classes {
			buf.WriteByte(',')
			if err := writeMember(&buf, class, row[ci]); err != nil {
				return nil, err
			}
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func writeMember(buf *bytes.Buffer, key string, value any) error {
	k, err := json.Marshal(key)
	if err != nil {
		return err
	}
	v, err := json.Marshal(value)
	if err != nil {
		return err
	}
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(v)
	return nil
}
