package mcpserver

// OutlineFormatContract describes the canonical outline format that LLM
// consumers should follow when importing boards.
const OutlineFormatContract = `# Bibo Outline Format Contract

The board exports to and imports from this plain-text outline format.

## Structure

` + "```" + `markdown
## Stack Title
- term :: definition
- term without a definition

a standalone note :: its definition
another standalone note
` + "```" + `

## Rules

1. **Headings** (` + "`" + `## ` + "`" + ` prefix) open a stack. The heading text becomes the
   root note's term. A heading with no items below it still creates a root.
2. **List items** (` + "`" + `- ` + "`" + ` prefix) become notes stacked under the most recent
   heading, top to bottom in the order written. List items before any
   heading become standalone notes.
3. **Paragraph lines** (anything else non-blank) become standalone notes.
4. **` + "` :: `" + `** on a line separates the term from the definition. Lines
   without it are all term.
5. Blank lines are ignored. One line per note; newlines inside content are
   flattened on export.
6. **Encoding** is UTF-8.
7. Imported notes are auto-positioned in a grid and sized from their
   content length; positions are not part of this format.

## Example

` + "```" + `markdown
## Spanish verbs
- hablar :: to speak
- comer :: to eat

shopping list :: eggs, flour, coffee
` + "```" + `
`
