package reasons

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// LoadFromCSV reads a replacement deck. The header must name at least a
// "text" column; "id", "emoji" and "bg" are optional.
func LoadFromCSV(path string) ([]Card, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fp.Close()

	r := csv.NewReader(fp)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(rows) < 1 {
		return nil, fmt.Errorf("csv %s has no header", path)
	}
	cols := map[string]int{}
	for i, h := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := cols["text"]; !ok {
		return nil, fmt.Errorf("csv %s has no text column", path)
	}

	get := func(row []string, name string) string {
		if idx, ok := cols[name]; ok && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	out := []Card{}
	for _, row := range rows[1:] {
		c := Card{
			ID:         get(row, "id"),
			Text:       get(row, "text"),
			Emoji:      get(row, "emoji"),
			Background: get(row, "bg"),
		}
		if c.Text == "" {
			continue
		}
		if c.ID == "" {
			c.ID = strconv.Itoa(len(out) + 1)
		}
		if c.Emoji == "" {
			c.Emoji = "💖"
		}
		if c.Background == "" {
			c.Background = "bg-pink-100"
		}
		out = append(out, c)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("csv %s has no reasons", path)
	}
	return out, nil
}

// Load returns the deck at path, or Defaults when path is empty.
func Load(path string) ([]Card, error) {
	if path == "" {
		return Defaults, nil
	}
	return LoadFromCSV(path)
}
