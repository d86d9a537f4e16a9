package transfer

import (
	"encoding/csv"
	"io"
	"strings"
)

// Tabular format: CSV with a term,definition,category header. Items sharing
// a non-empty category become children of one synthesized root named after
// that category; an empty category means standalone. A category row with an
// empty term just makes sure the group exists (how empty roots survive the
// round trip).

var tableHeader = []string{"term", "definition", "category"}

// ExportTable renders a document as CSV.
func ExportTable(doc Document) string {
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	_ = w.Write(tableHeader)
	for _, e := range doc.Entries {
		switch {
		case e.Group != nil:
			if len(e.Group.Items) == 0 {
				_ = w.Write([]string{"", "", flatten(e.Group.Title)})
				continue
			}
			for _, it := range e.Group.Items {
				_ = w.Write([]string{flatten(it.Term), flatten(it.Definition), flatten(e.Group.Title)})
			}
		case e.Item != nil:
			_ = w.Write([]string{flatten(e.Item.Term), flatten(e.Item.Definition), ""})
		}
	}
	w.Flush()
	return sb.String()
}

// ParseTable parses CSV text into a document, grouping rows by category in
// first-seen order. Malformed rows are skipped rather than failing the
// whole import.
func ParseTable(text string) Document {
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1

	doc := Document{}
	groups := make(map[string]*Group)

	first := true
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		if first {
			first = false
			if isHeader(rec) {
				continue
			}
		}
		var term, def, category string
		if len(rec) > 0 {
			term = strings.TrimSpace(rec[0])
		}
		if len(rec) > 1 {
			def = strings.TrimSpace(rec[1])
		}
		if len(rec) > 2 {
			category = strings.TrimSpace(rec[2])
		}

		if category == "" {
			if term == "" && def == "" {
				continue
			}
			it := Item{Term: term, Definition: def}
			doc.Entries = append(doc.Entries, Entry{Item: &it})
			continue
		}
		g := groups[category]
		if g == nil {
			g = &Group{Title: category, Items: []Item{}}
			groups[category] = g
			doc.Entries = append(doc.Entries, Entry{Group: g})
		}
		if term != "" || def != "" {
			g.Items = append(g.Items, Item{Term: term, Definition: def})
		}
	}
	return doc
}

func isHeader(rec []string) bool {
	if len(rec) < 2 {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(rec[0]), "term") &&
		strings.EqualFold(strings.TrimSpace(rec[1]), "definition")
}
