// Package feed converts RSS 2.0 and Atom documents into model.Post values.
package feed

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/mmcdole/gofeed/atom"
	"github.com/mmcdole/gofeed/rss"
	"golang.org/x/net/html/charset"

	"reddit-overlay/internal/model"
)

// ErrMalformed is wrapped by Parse when the document is not well-formed XML
// or the detected format cannot be decoded.
var ErrMalformed = errors.New("feed: malformed document")

// Format names the branch Parse took for a document.
type Format string

const (
	FormatNone Format = ""
	FormatAtom Format = "atom"
	FormatRSS  Format = "rss"
)

var imgSrcRe = regexp.MustCompile(`(?i)<img[^>]+src=["']([^"']+)["'][^>]*>`)

// Parse converts raw feed text into posts in document order.
//
// Atom wins when the document has any entry element; otherwise items are read
// as RSS. A malformed document yields an empty slice together with an error
// wrapping ErrMalformed, so callers that only care about posts can ignore it.
func Parse(raw string) ([]model.Post, error) {
	format, err := Detect(raw)
	if err != nil {
		slog.Debug("feed: detect failed", "error", err)
		return []model.Post{}, err
	}
	switch format {
	case FormatAtom:
		return parseAtom(raw)
	case FormatRSS:
		return parseRSS(raw)
	default:
		return []model.Post{}, nil
	}
}

// Detect counts entry and item elements anywhere in the document and reports
// which format Parse will use.
func Detect(raw string) (Format, error) {
	d := xml.NewDecoder(strings.NewReader(raw))
	d.Entity = xml.HTMLEntity
	d.CharsetReader = charset.NewReaderLabel

	var entries, items int
	for {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return FormatNone, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch se.Name.Local {
		case "entry":
			entries++
		case "item":
			items++
		}
	}
	switch {
	case entries > 0:
		return FormatAtom, nil
	case items > 0:
		return FormatRSS, nil
	default:
		return FormatNone, nil
	}
}

func parseAtom(raw string) ([]model.Post, error) {
	fp := &atom.Parser{}
	f, err := fp.Parse(strings.NewReader(raw))
	if err != nil {
		// entries outside a <feed> root still win over items
		posts, derr := decodeEntries(raw)
		if derr != nil {
			return []model.Post{}, fmt.Errorf("%w: atom: %v", ErrMalformed, err)
		}
		slog.Debug("feed: atom entries outside a feed root", "entries", len(posts), "error", err)
		return posts, nil
	}
	posts := make([]model.Post, 0, len(f.Entries))
	for i, e := range f.Entries {
		var link, content, author string
		if len(e.Links) > 0 {
			link = e.Links[0].Href
		}
		if e.Content != nil {
			content = e.Content.Value
		}
		if len(e.Authors) > 0 && e.Authors[0] != nil {
			author = e.Authors[0].Name
		}
		posts = append(posts, atomPost(i, e.Title, link, content, e.Updated, author))
	}
	return posts, nil
}

// looseEntry is an Atom entry read without its enclosing feed element.
type looseEntry struct {
	Title   string `xml:"title"`
	Updated string `xml:"updated"`
	Content string `xml:"content"`
	Links   []struct {
		Href string `xml:"href,attr"`
	} `xml:"link"`
	Authors []struct {
		Name string `xml:"name"`
	} `xml:"author"`
}

// decodeEntries reads every entry element in document order, wherever it
// appears.
func decodeEntries(raw string) ([]model.Post, error) {
	d := xml.NewDecoder(strings.NewReader(raw))
	d.Entity = xml.HTMLEntity
	d.CharsetReader = charset.NewReaderLabel

	posts := []model.Post{}
	for {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			return posts, nil
		}
		if err != nil {
			return nil, err
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "entry" {
			continue
		}
		var e looseEntry
		if err := d.DecodeElement(&e, &se); err != nil {
			return nil, err
		}
		var link, author string
		if len(e.Links) > 0 {
			link = e.Links[0].Href
		}
		if len(e.Authors) > 0 {
			author = e.Authors[0].Name
		}
		posts = append(posts, atomPost(len(posts), e.Title, link, e.Content, e.Updated, author))
	}
}

func atomPost(id int, title, link, content, updated, author string) model.Post {
	p := model.Post{
		ID:          id,
		Title:       orDefault(title, model.NoTitle),
		Link:        orDefault(link, model.NoLink),
		ContentHTML: orDefault(content, model.NoContent),
		PubDate:     orDefault(updated, model.NoDate),
		Author:      orDefault(author, model.UnknownAuthor),
	}
	p.ImageURL = ImageURL(p.ContentHTML)
	return p
}

func parseRSS(raw string) ([]model.Post, error) {
	fp := &rss.Parser{}
	f, err := fp.Parse(strings.NewReader(raw))
	if err != nil {
		return []model.Post{}, fmt.Errorf("%w: rss: %v", ErrMalformed, err)
	}
	posts := make([]model.Post, 0, len(f.Items))
	for i, it := range f.Items {
		p := model.Post{
			ID:          i,
			Title:       orDefault(it.Title, model.NoTitle),
			Link:        orDefault(it.Link, model.NoLink),
			ContentHTML: orDefault(it.Description, model.NoDescription),
			PubDate:     orDefault(it.PubDate, model.NoDate),
			// RSS items never carry a usable author for subreddit feeds.
			Author: model.RSSAuthor,
		}
		p.ImageURL = ImageURL(p.ContentHTML)
		posts = append(posts, p)
	}
	return posts, nil
}

// ImageURL returns the src of the first img tag in html, or "".
func ImageURL(html string) string {
	m := imgSrcRe.FindStringSubmatch(html)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
