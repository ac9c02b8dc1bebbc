// Package comments scrapes comments out of a discussion thread's server
// rendered comments partial.
//
// The markup is a third-party, unversioned structure. Extraction is best
// effort: it returns what the current selector tables find, not every comment
// in the thread.
package comments

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/samber/lo"

	"reddit-overlay/internal/model"
)

// Discovery selects how DiscoveryTable is applied to find candidate nodes.
type Discovery string

const (
	// Union matches every stage at once, in document order, without duplicates.
	Union Discovery = "union"
	// Cascade uses only the first stage that matches anything.
	Cascade Discovery = "cascade"
)

// ParseDiscovery converts a config value into a Discovery mode.
func ParseDiscovery(s string) (Discovery, error) {
	switch Discovery(strings.ToLower(strings.TrimSpace(s))) {
	case "", Union:
		return Union, nil
	case Cascade:
		return Cascade, nil
	default:
		return "", fmt.Errorf("comments: unknown discovery mode %q", s)
	}
}

// NodeError reports a candidate node whose extraction failed. The node is
// skipped; other nodes are unaffected.
type NodeError struct {
	Index int
	Err   error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("comments: node %d: %v", e.Index, e.Err)
}

func (e *NodeError) Unwrap() error { return e.Err }

// Result is the outcome of one extraction pass.
type Result struct {
	Comments   []model.Comment
	Candidates int
	// Stage is the discovery stage that produced the candidates ("union" in
	// union mode, "" when nothing matched).
	Stage  string
	Errors []error
}

// Dropped is the number of candidates that did not become comments.
func (r Result) Dropped() int {
	return r.Candidates - len(r.Comments)
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithDiscovery sets the discovery mode.
func WithDiscovery(d Discovery) Option {
	return func(e *Extractor) { e.discovery = d }
}

// WithTable replaces the discovery table.
func WithTable(t []Stage) Option {
	return func(e *Extractor) { e.table = t }
}

// Extractor turns comments partial HTML into model.Comment values.
type Extractor struct {
	discovery Discovery
	table     []Stage
}

// New creates an Extractor using union discovery over DiscoveryTable.
func New(opts ...Option) *Extractor {
	e := &Extractor{discovery: Union, table: DiscoveryTable}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract parses fragment with the default Extractor.
func Extract(fragment, sourceURL string) Result {
	return New().Extract(fragment, sourceURL)
}

// Extract parses fragment and returns the comments it can recognise. Every
// comment's Link is sourceURL.
func (e *Extractor) Extract(fragment, sourceURL string) Result {
	var res Result
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		res.Errors = append(res.Errors, fmt.Errorf("comments: parse html: %w", err))
		return res
	}

	nodes, stage := e.discover(doc.Selection)
	res.Stage = stage
	res.Candidates = nodes.Length()
	res.Comments = make([]model.Comment, 0, res.Candidates)

	nodes.Each(func(i int, s *goquery.Selection) {
		c, keep, err := extractNode(i, s, sourceURL)
		if err != nil {
			slog.Debug("comments: node failed", "index", i, "error", err)
			res.Errors = append(res.Errors, err)
			return
		}
		if !keep {
			slog.Debug("comments: skipped node", "index", i, "author", c.Author)
			return
		}
		res.Comments = append(res.Comments, c)
	})
	slog.Debug("comments: extracted", "candidates", res.Candidates, "kept", len(res.Comments), "stage", stage)
	return res
}

func (e *Extractor) discover(root *goquery.Selection) (*goquery.Selection, string) {
	if e.discovery == Cascade {
		for _, st := range e.table {
			if s := root.Find(st.Selector); s.Length() > 0 {
				return s, st.Name
			}
		}
		return root.Slice(0, 0), ""
	}
	group := strings.Join(lo.Map(e.table, func(st Stage, _ int) string { return st.Selector }), ", ")
	s := root.Find(group)
	if s.Length() == 0 {
		return s, ""
	}
	return s, string(Union)
}

func extractNode(index int, s *goquery.Selection, sourceURL string) (c model.Comment, keep bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &NodeError{Index: index, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	author := strings.TrimPrefix(resolveAuthor(s), "u/")
	if author == "" {
		author = model.UnknownAuthor
	}
	content := resolveContent(s)
	thingID, _ := s.Attr("thingid")

	redditID := thingID
	if redditID == "" {
		redditID = fmt.Sprintf("t1_comment_%d", index)
	}
	c = model.Comment{
		ID:          index,
		Author:      author,
		ContentHTML: content,
		PubDate:     resolveTime(s),
		Link:        sourceURL,
		RedditID:    redditID,
	}
	return c, validAuthor(author) || validContent(content), nil
}

func resolveAuthor(s *goquery.Selection) string {
	for _, attr := range []string{"author", "data-author"} {
		if v, ok := s.Attr(attr); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	el := s.Find(strings.Join(authorSelectors, ", ")).First()
	if el.Length() == 0 {
		return model.UnknownAuthor
	}
	if t := strings.TrimSpace(el.Text()); t != "" {
		return t
	}
	if href, ok := el.Attr("href"); ok {
		if name := userFromHref(href); name != "" {
			return name
		}
	}
	return model.UnknownAuthor
}

// userFromHref returns the path segment following "/user/".
func userFromHref(href string) string {
	_, rest, ok := strings.Cut(href, "/user/")
	if !ok {
		return ""
	}
	name, _, _ := strings.Cut(rest, "/")
	return strings.TrimSpace(name)
}

func resolveContent(s *goquery.Selection) string {
	if t := firstText(s, commentSlotSelector); t != "" {
		return validate(t)
	}
	thingID, _ := s.Attr("thingid")
	for _, sel := range thingIDSelectors(thingID) {
		if t := firstText(s, sel); t != "" {
			return validate(t)
		}
	}
	for _, st := range bodySelectors {
		if t := firstText(s, st.Selector); t != "" {
			return validate(t)
		}
	}
	return model.NoContent
}

// firstText returns the cleaned text of the first descendant matching sel.
func firstText(s *goquery.Selection, sel string) string {
	el := s.Find(sel).First()
	if el.Length() == 0 {
		return ""
	}
	return Clean(el)
}

var (
	spaceRe     = regexp.MustCompile(`\s+`)
	chromeRe    = regexp.MustCompile(`^(Reply|Share|Save|Report)\b\s*`)
	onlyDigitRe = regexp.MustCompile(`^[0-9\s\-•·]+$`)
)

// Clean returns the visible text of el with script and style subtrees removed,
// whitespace collapsed and a leading action label stripped.
func Clean(el *goquery.Selection) string {
	c := el.Clone()
	c.Find("script, style").Remove()
	return CleanText(c.Text())
}

// CleanText applies the whitespace and label rules of Clean to plain text.
func CleanText(text string) string {
	t := strings.TrimSpace(text)
	t = spaceRe.ReplaceAllString(t, " ")
	t = chromeRe.ReplaceAllString(t, "")
	return strings.TrimSpace(t)
}

// validate forces text that looks empty, numeric or like leaked markup back to
// the NoContent placeholder.
func validate(text string) string {
	if text == model.NoContent ||
		utf8.RuneCountInString(text) < 3 ||
		looksLikeMarkup(text) ||
		onlyDigitRe.MatchString(text) {
		return model.NoContent
	}
	return text
}

func looksLikeMarkup(text string) bool {
	return strings.Contains(text, "class=") || strings.Contains(text, "data-")
}

func validAuthor(author string) bool {
	return author != model.UnknownAuthor && utf8.RuneCountInString(author) > 1
}

func validContent(content string) bool {
	return content != model.NoContent &&
		utf8.RuneCountInString(content) > 3 &&
		!looksLikeMarkup(content)
}

func resolveTime(s *goquery.Selection) string {
	if el := s.Find(timeSelector).First(); el.Length() > 0 {
		return timeText(el)
	}
	if el := s.Find(timeFallbackSel).First(); el.Length() > 0 {
		return timeText(el)
	}
	return model.UnknownTime
}

func timeText(el *goquery.Selection) string {
	if v, ok := el.Attr("title"); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	if t := strings.TrimSpace(el.Text()); t != "" {
		return t
	}
	for _, attr := range []string{"datetime", "aria-label"} {
		if v, ok := el.Attr(attr); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return model.UnknownTime
}
