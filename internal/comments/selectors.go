package comments

import (
	"fmt"
	"strings"
)

// Stage is one row of a selector table.
type Stage struct {
	Name     string
	Selector string
}

// TableVersion identifies the markup generation the tables below were written
// against. Bump it whenever a selector changes.
const TableVersion = "shreddit-2025.1"

// DiscoveryTable lists candidate comment node selectors, most specific first.
var DiscoveryTable = []Stage{
	{Name: "custom-element", Selector: "shreddit-comment"},
	{Name: "test-id", Selector: `[data-testid="comment"]`},
	{Name: "class-name", Selector: ".Comment"},
	{Name: "class-substring", Selector: `[class*="comment"]`},
}

// authorSelectors are queried together; the first match in document order wins.
var authorSelectors = []string{
	`[slot="authorName"]`,
	`[data-testid="comment_author_link"]`,
	`[data-click-id="user"]`,
	`.author`,
	`a[href*="/user/"]`,
}

// bodySelectors are tried in order after the comment slot and thing id
// patterns fail.
var bodySelectors = []Stage{
	{Name: "dir-auto", Selector: `div[dir="auto"]`},
	{Name: "markdown", Selector: ".md"},
	{Name: "div-with-paragraph", Selector: "div:has(p)"},
	{Name: "paragraph", Selector: "p"},
}

const (
	commentSlotSelector = `[slot="comment"]`
	timeSelector        = "time"
	timeFallbackSel     = `[datetime], [title*="ago"], [aria-label*="ago"]`
)

// thingIDSelectors returns selectors addressing a comment body through the
// node's thing id. Ids that cannot be embedded safely yield nothing.
func thingIDSelectors(thingID string) []string {
	if thingID == "" || strings.ContainsAny(thingID, `"\`) {
		return nil
	}
	out := []string{fmt.Sprintf(`[id*="%s"]`, thingID)}
	if isIdent(thingID) {
		out = append(out,
			"#"+thingID+"-comment-rtjson-content",
			"#"+thingID+"-post-rtjson-content",
		)
	}
	return out
}

func isIdent(s string) bool {
	for i, r := range s {
		switch {
		case r == '_' || r == '-':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return s != ""
}
