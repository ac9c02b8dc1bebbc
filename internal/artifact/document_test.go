package artifact

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseWithFrontmatter(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "last_reddit_view.md")
	content := "" +
		"---\n" +
		"kind: reddit_view\n" +
		"post_title: \"What are you reading?\"\n" +
		"url: https://www.reddit.com/r/books/comments/abc/x/\n" +
		"content_length: 27\n" +
		"---\n" +
		"<html><body>hi</body></html>\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	doc, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile error: %v", err)
	}
	for _, k := range []string{"kind", "post_title", "url", "content_length"} {
		if _, ok := doc.Meta[k]; !ok {
			t.Errorf("missing %s in frontmatter", k)
		}
	}
	if got := doc.String("post_title"); got != "What are you reading?" {
		t.Errorf("post_title = %q", got)
	}
	if got := doc.String("content_length"); got != "27" {
		t.Errorf("content_length = %q", got)
	}
	if doc.Body != "<html><body>hi</body></html>\n" {
		t.Errorf("body mismatch: %q", doc.Body)
	}
}

func TestParseWithoutFrontmatter(t *testing.T) {
	body := "plain debug dump\nsecond line\n"
	doc, err := Parse(strings.NewReader(body))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if len(doc.Meta) != 0 {
		t.Fatalf("expected empty frontmatter, got: %+v", doc.Meta)
	}
	if doc.Body != body {
		t.Errorf("body mismatch.\nwant: %q\n got: %q", body, doc.Body)
	}
}

func TestEncodeParseRoundTrip(t *testing.T) {
	in := Document{
		Meta: map[string]any{"url": "https://example.com", "kind": "test"},
		Body: "line one\n---\nline three",
	}
	b, err := in.Encode()
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	out, err := Parse(strings.NewReader(string(b)))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if out.Body != in.Body {
		t.Errorf("body mismatch.\nwant: %q\n got: %q", in.Body, out.Body)
	}
	if out.String("url") != "https://example.com" || out.String("kind") != "test" {
		t.Errorf("meta mismatch: %+v", out.Meta)
	}
}

func TestEncodeEmptyMeta(t *testing.T) {
	b, err := Document{Body: "x"}.Encode()
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	if string(b) != "---\n---\nx" {
		t.Errorf("unexpected encoding: %q", string(b))
	}
	doc, err := Parse(strings.NewReader(string(b)))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if doc.Body != "x" || len(doc.Meta) != 0 {
		t.Errorf("unexpected document: %+v", doc)
	}
}
