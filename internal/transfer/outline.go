package transfer

import (
	"strings"
)

// Outline grammar, one entry per section:
//
//	## Group Title
//	- term :: definition
//	- another term
//
//	standalone term :: its definition
//
// "## " headings open a group; "- " list items belong to the most recently
// seen group (or stand alone when no group has appeared yet); any other
// non-blank line is a standalone note. " :: " separates term from
// definition within a line. Malformed input degrades to fewer or
// emptier notes; parsing never fails.

const termDefSep = " :: "

// ExportOutline renders a document in the outline grammar.
func ExportOutline(doc Document) string {
	var sb strings.Builder
	for i, e := range doc.Entries {
		if i > 0 {
			sb.WriteString("\n")
		}
		switch {
		case e.Group != nil:
			sb.WriteString("## ")
			sb.WriteString(flatten(e.Group.Title))
			sb.WriteString("\n")
			for _, it := range e.Group.Items {
				sb.WriteString("- ")
				sb.WriteString(itemLine(it))
				sb.WriteString("\n")
			}
		case e.Item != nil:
			sb.WriteString(itemLine(*e.Item))
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// ParseOutline parses outline text into a document.
func ParseOutline(text string) Document {
	doc := Document{}
	var group *Group

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, " \t\r")
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "## "):
			group = &Group{Title: strings.TrimSpace(strings.TrimPrefix(line, "## ")), Items: []Item{}}
			doc.Entries = append(doc.Entries, Entry{Group: group})
		case strings.HasPrefix(line, "- "):
			it := parseItemLine(strings.TrimPrefix(line, "- "))
			if group != nil {
				group.Items = append(group.Items, it)
			} else {
				doc.Entries = append(doc.Entries, Entry{Item: &it})
			}
		default:
			it := parseItemLine(line)
			doc.Entries = append(doc.Entries, Entry{Item: &it})
		}
	}
	return doc
}

func itemLine(it Item) string {
	if it.Definition == "" {
		return flatten(it.Term)
	}
	return flatten(it.Term) + termDefSep + flatten(it.Definition)
}

func parseItemLine(line string) Item {
	term, def, _ := strings.Cut(line, termDefSep)
	return Item{Term: strings.TrimSpace(term), Definition: strings.TrimSpace(def)}
}

// flatten collapses newlines so multi-line content stays on one grammar line.
func flatten(s string) string {
	return strings.TrimSpace(strings.Join(strings.Fields(s), " "))
}
