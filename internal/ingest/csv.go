package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// table wraps a header-indexed CSV reader. Column lookups are
// case-insensitive and a missing optional column reads as "".
type table struct {
	r   *csv.Reader
	hdr []string
	pos map[string]int
}

func newTable(r io.Reader, required ...string) (*table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	hdr, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	t := &table{r: cr, hdr: append([]string(nil), hdr...), pos: make(map[string]int, len(hdr))}
	for i, h := range t.hdr {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := t.pos[h]; !dup {
			t.pos[h] = i
		}
	}
	var missing []string
	for _, name := range required {
		if t.idx(name) < 0 {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("required columns missing: %s", strings.Join(missing, ", "))
	}
	return t, nil
}

func (t *table) idx(name string) int {
	if i, ok := t.pos[strings.ToLower(name)]; ok {
		return i
	}
	return -1
}

// each calls fn for every data row; line numbers count the header as 1.
func (t *table) each(fn func(line int, rec row) error) error {
	line := 1
	for {
		rec, err := t.r.Read()
		if err == io.EOF {
			return nil
		}
		line++
		if err != nil {
			return fmt.Errorf("read row %d: %w", line, err)
		}
		if err := fn(line, row{t: t, rec: rec}); err != nil {
			return fmt.Errorf("row %d: %w", line, err)
		}
	}
}

type row struct {
	t   *table
	rec []string
}

func (r row) str(name string) string {
	i := r.t.idx(name)
	if i < 0 || i >= len(r.rec) {
		return ""
	}
	return strings.TrimSpace(r.rec[i])
}

func (r row) num(name string) (int, error) {
	v := r.str(name)
	i, err := strconv.Atoi(v)
	if err != nil {
		// some exports write integer keys as floats, e.g. "2016.0"
		f, ferr := strconv.ParseFloat(v, 64)
		if ferr != nil {
			return 0, fmt.Errorf("%s: %q is not a number", name, v)
		}
		return int(f), nil
	}
	return i, nil
}

// numOr reads an optional integer, returning def for blanks and junk.
func (r row) numOr(name string, def int) int {
	if r.str(name) == "" {
		return def
	}
	i, err := r.num(name)
	if err != nil {
		return def
	}
	return i
}
