// Package comment tokenizes documentation comments into a description and
// an ordered list of tags.
package comment

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/jward/doctree/internal/model"
)

// Comment is a tokenized documentation comment.
type Comment struct {
	Brief       string
	Description string
	Tags        []model.Tag
}

// IsDoc reports whether raw is a documentation comment ("/** ... */").
// Separator comments made only of stars are not.
func IsDoc(raw string) bool {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "/**") || !strings.HasSuffix(raw, "*/") || len(raw) < 5 {
		return false
	}
	return !strings.HasPrefix(raw, "/***")
}

// Parse tokenizes a raw comment. Text before the first tag is the
// description; each tag runs until the next line that starts with "@".
func Parse(raw string) Comment {
	var (
		c       Comment
		desc    []string
		current *model.Tag
		value   []string
	)
	flush := func() {
		if current == nil {
			return
		}
		current.Value = strings.TrimSpace(strings.Join(value, "\n"))
		c.Tags = append(c.Tags, *current)
		current, value = nil, nil
	}

	for _, line := range lines(raw) {
		trimmed := strings.TrimSpace(line)
		if name, rest, ok := tagLine(trimmed); ok {
			flush()
			current = &model.Tag{Name: name}
			value = []string{rest}
			continue
		}
		if current != nil {
			value = append(value, line)
		} else {
			desc = append(desc, line)
		}
	}
	flush()

	c.Description = strings.TrimSpace(strings.Join(desc, "\n"))
	c.Brief = Brief(c.Description)
	return c
}

// lines strips the comment delimiters and the leading " * " decoration.
func lines(raw string) []string {
	body := strings.TrimSpace(raw)
	body = strings.TrimPrefix(body, "/**")
	body = strings.TrimSuffix(body, "*/")

	var out []string
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimRight(line, " \t\r")
		l := strings.TrimLeft(line, " \t")
		if strings.HasPrefix(l, "*") {
			l = strings.TrimPrefix(l, "*")
			l = strings.TrimPrefix(l, " ")
		}
		out = append(out, l)
	}
	return out
}

// tagLine splits "@name value" into its parts.
func tagLine(line string) (name, rest string, ok bool) {
	if !strings.HasPrefix(line, "@") {
		return "", "", false
	}
	line = line[1:]
	end := strings.IndexAny(line, " \t{")
	if end < 0 {
		end = len(line)
	}
	name = line[:end]
	if name == "" {
		return "", "", false
	}
	return name, strings.TrimSpace(line[end:]), true
}

// Brief returns the plain text of the first markdown paragraph of desc.
func Brief(desc string) string {
	if desc == "" {
		return ""
	}
	src := []byte(desc)
	root := goldmark.New().Parser().Parse(text.NewReader(src))

	var brief string
	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		p, ok := n.(*ast.Paragraph)
		if !ok {
			return ast.WalkContinue, nil
		}
		brief = strings.TrimSpace(plainText(p, src))
		return ast.WalkStop, nil
	})
	return brief
}

// plainText concatenates the text leaves below n, turning soft line breaks
// into spaces.
func plainText(n ast.Node, src []byte) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			b.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
			continue
		}
		b.WriteString(plainText(c, src))
	}
	return b.String()
}
