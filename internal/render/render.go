// Package render formats posts and comments as plain text for the CLI.
package render

import (
	"bytes"
	_ "embed"
	"strings"
	"text/template"

	"reddit-overlay/internal/model"
)

type FeedData struct {
	Source string
	Posts  []model.Post
	Hidden int // posts left out by a limit
}

type ThreadData struct {
	Post       *model.Post
	Comments   []model.Comment
	Candidates int
	Summary    string
}

//go:embed feed.tmpl
var feedTpl string

//go:embed thread.tmpl
var threadTpl string

var funcs = template.FuncMap{"wrap": Wrap}

var (
	feedCompiled   = template.Must(template.New("feed").Funcs(funcs).Parse(feedTpl))
	threadCompiled = template.Must(template.New("thread").Funcs(funcs).Parse(threadTpl))
)

func Feed(d FeedData) (string, error) {
	var buf bytes.Buffer
	if err := feedCompiled.Execute(&buf, d); err != nil {
		return "", err
	}
	return strings.TrimLeft(buf.String(), "\n"), nil
}

func Thread(d ThreadData) (string, error) {
	var buf bytes.Buffer
	if err := threadCompiled.Execute(&buf, d); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Wrap breaks s into lines of at most width runes at spaces, prefixing each
// line with indent. Words longer than width get a line of their own.
func Wrap(s string, width int, indent string) string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return indent
	}
	var b strings.Builder
	lineLen := 0
	b.WriteString(indent)
	for i, w := range words {
		n := len([]rune(w))
		if i > 0 {
			if lineLen+1+n > width {
				b.WriteString("\n")
				b.WriteString(indent)
				lineLen = 0
			} else {
				b.WriteString(" ")
				lineLen++
			}
		}
		b.WriteString(w)
		lineLen += n
	}
	return b.String()
}
