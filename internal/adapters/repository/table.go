package repository

import (
	"math"
	"strconv"
	"strings"
)

// Table is the in-memory form of the rating file: an ordered list of text
// lines, one player per line, fields separated by commas, no header.
//
//	Alice,1000,1050,
//	Bob,966,
//
// The first field is the player id (compared after trimming). The current
// rating is the rightmost field that parses as a number; everything else on
// the line is opaque and kept verbatim. Lines that are not rows (blank, or
// with an empty id) pass through untouched.
type Table struct {
	rows []row
}

// Record is the parsed view of one row.
type Record struct {
	ID string
	// LegacyFields holds every field other than the id and the current
	// rating, in file order, including the trailing empty field.
	LegacyFields []string
	Rating       float64
	HasRating    bool
}

type row struct {
	raw string // exact bytes, including the line terminator
	rec *Record
}

// ParseTable splits data into lines and parses each row. It never fails.
func ParseTable(data []byte) *Table {
	t := &Table{}
	if len(data) == 0 {
		return t
	}
	for _, line := range strings.SplitAfter(string(data), "\n") {
		if line == "" {
			continue
		}
		t.rows = append(t.rows, row{raw: line, rec: parseRecord(line)})
	}
	return t
}

// parseRecord returns nil for lines that do not carry a player id.
func parseRecord(line string) *Record {
	fields := strings.Split(strings.TrimSpace(line), ",")
	id := strings.TrimSpace(fields[0])
	if id == "" {
		return nil
	}

	rec := &Record{ID: id}
	ratingAt := -1
	for i := len(fields) - 1; i > 0; i-- {
		if v, ok := parseRating(fields[i]); ok {
			rec.Rating, rec.HasRating, ratingAt = v, true, i
			break
		}
	}
	for i := 1; i < len(fields); i++ {
		if i != ratingAt {
			rec.LegacyFields = append(rec.LegacyFields, fields[i])
		}
	}
	return rec
}

// parseRating accepts decimal numbers only. Hex floats such as 0x1p10 are
// refused.
func parseRating(field string) (float64, bool) {
	field = strings.TrimSpace(field)
	digits := strings.ToLower(strings.TrimLeft(field, "+-"))
	if strings.HasPrefix(digits, "0x") {
		return 0, false
	}
	v, err := strconv.ParseFloat(field, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// FormatRating renders a rating the way it is stored. ParseFloat of the
// result returns v exactly.
func FormatRating(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Lookup returns the rating on the first row for id. ok is false when there
// is no such row or the row has no numeric field.
func (t *Table) Lookup(id string) (rating float64, ok bool) {
	for _, r := range t.rows {
		if r.rec != nil && r.rec.ID == id {
			return r.rec.Rating, r.rec.HasRating
		}
	}
	return 0, false
}

// Upsert writes rating as the last field before the trailing comma of every
// row for id, or appends "id,rating," when there is none.
func (t *Table) Upsert(id string, rating float64) {
	value := FormatRating(rating)
	found := false
	for i, r := range t.rows {
		if r.rec == nil || r.rec.ID != id {
			continue
		}
		found = true
		line := rewriteRow(r.raw, value)
		t.rows[i] = row{raw: line, rec: parseRecord(line)}
	}
	if found {
		return
	}

	if n := len(t.rows); n > 0 && !strings.HasSuffix(t.rows[n-1].raw, "\n") {
		t.rows[n-1].raw += "\n"
	}
	line := id + "," + value + ",\n"
	t.rows = append(t.rows, row{raw: line, rec: parseRecord(line)})
}

func rewriteRow(raw, value string) string {
	fields := strings.Split(strings.TrimSpace(raw), ",")
	if n := len(fields); n > 1 && fields[n-1] == "" {
		fields = fields[:n-1]
	}
	if len(fields) == 1 {
		fields = append(fields, value)
	} else {
		fields[len(fields)-1] = value
	}
	return strings.Join(fields, ",") + ",\n"
}

// Records returns the first row for each distinct id, in file order.
func (t *Table) Records() []Record {
	seen := make(map[string]struct{}, len(t.rows))
	out := make([]Record, 0, len(t.rows))
	for _, r := range t.rows {
		if r.rec == nil {
			continue
		}
		if _, dup := seen[r.rec.ID]; dup {
			continue
		}
		seen[r.rec.ID] = struct{}{}
		out = append(out, *r.rec)
	}
	return out
}

// Len returns the number of lines, including lines that are not rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Bytes serializes the table.
func (t *Table) Bytes() []byte {
	var b strings.Builder
	for _, r := range t.rows {
		b.WriteString(r.raw)
	}
	return []byte(b.String())
}
