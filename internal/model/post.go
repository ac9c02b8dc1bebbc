package model

// Placeholder values used when a feed or comment node lacks a field.
const (
	NoTitle       = "No title"
	NoLink        = "#"
	NoContent     = "No content"
	NoDescription = "No description"
	NoDate        = "No date"
	UnknownAuthor = "Unknown"
	RSSAuthor     = "Reddit"
	UnknownTime   = "Unknown time"
)

// Post is a single entry (Atom) or item (RSS) from a subreddit feed.
// ID is the position in the parsed document, not a persistent identity.
type Post struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Link        string `json:"link"`
	ContentHTML string `json:"content_html"`
	PubDate     string `json:"pub_date"`
	Author      string `json:"author"`
	ImageURL    string `json:"image_url,omitempty"`
}

// Comment is a comment scraped from a discussion thread's comments partial.
type Comment struct {
	ID          int    `json:"id"`
	Author      string `json:"author"`
	ContentHTML string `json:"content_html"`
	PubDate     string `json:"pub_date"`
	Link        string `json:"link"`
	RedditID    string `json:"reddit_id"`
}
