package ui

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// maxPageRunes bounds how much of a discussion page is shown under a post.
const maxPageRunes = 2000

// pageBodySelectors locate the post body on a rendered discussion page, most
// specific first.
var pageBodySelectors = []string{
	`shreddit-post [slot="text-body"]`,
	`[id$="-post-rtjson-content"]`,
	`[data-testid="post-container"]`,
	`shreddit-post`,
	`main`,
	`body`,
}

// PageText extracts the readable post body from a discussion page and
// truncates it to maxPageRunes.
func PageText(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	doc.Find("script, style, noscript").Remove()
	var text string
	for _, sel := range pageBodySelectors {
		node := doc.Find(sel).First()
		if node.Length() == 0 {
			continue
		}
		if text = strings.Join(strings.Fields(node.Text()), " "); text != "" {
			break
		}
	}
	if r := []rune(text); len(r) > maxPageRunes {
		text = string(r[:maxPageRunes]) + "…"
	}
	return text
}
