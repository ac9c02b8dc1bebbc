// Package artifact persists best-effort debug snapshots of what the overlay
// fetched: the parsed feed session and the last viewed post page.
package artifact

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Document is an artifact with YAML frontmatter metadata and a raw body.
type Document struct {
	Meta map[string]any
	Body string
}

// Encode renders the document as frontmatter between two "---" lines followed
// by the body.
func (d Document) Encode() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("---\n")
	if len(d.Meta) > 0 {
		b, err := yaml.Marshal(d.Meta)
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	buf.WriteString("---\n")
	buf.WriteString(d.Body)
	return buf.Bytes(), nil
}

// ParseFile reads an encoded document from path.
func ParseFile(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, err
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads an encoded document. Input without frontmatter is returned as a
// body with empty metadata.
func Parse(r io.Reader) (Document, error) {
	br := bufio.NewReader(r)
	peek, err := br.Peek(3)
	if err != nil && !errors.Is(err, io.EOF) {
		return Document{}, err
	}
	hasFM := string(peek) == "---"

	var fmBuf strings.Builder
	var bodyBuf strings.Builder

	if hasFM {
		// opening delimiter
		if _, err := br.ReadString('\n'); err != nil && !errors.Is(err, io.EOF) {
			return Document{}, err
		}
		for {
			l, err := br.ReadString('\n')
			if err != nil && !errors.Is(err, io.EOF) {
				return Document{}, err
			}
			if strings.TrimSpace(l) == "---" {
				break
			}
			fmBuf.WriteString(l)
			if errors.Is(err, io.EOF) {
				break
			}
		}
	}
	for {
		l, err := br.ReadString('\n')
		bodyBuf.WriteString(l)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Document{}, err
		}
	}

	d := Document{
		Meta: map[string]any{},
		Body: bodyBuf.String(),
	}
	if hasFM {
		m := map[string]any{}
		if err := yaml.Unmarshal([]byte(fmBuf.String()), &m); err != nil {
			return Document{}, err
		}
		if m != nil {
			d.Meta = m
		}
	}
	return d, nil
}

// String returns the metadata value for key, or "".
func (d Document) String(key string) string {
	v, ok := d.Meta[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	b, err := yaml.Marshal(v)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}
