package domain

import "time"

// Summary is a stored summarization result.
type Summary struct {
	Key       string
	Model     string
	Source    string
	Input     string
	Summary   string
	CreatedAt time.Time
}

// Article is a piece of text pulled from a web page or a feed item.
type Article struct {
	ID        string
	Title     string
	URL       string
	Text      string
	Published time.Time
}

type Digest struct {
	FeedURL   string
	FeedTitle string
	Article   Article
	Summary   string
}
