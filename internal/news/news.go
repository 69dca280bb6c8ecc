// Package news holds the story types that flow through a digest run.
package news

// ID is the aggregator's item identifier in its decimal string form.
type ID string

// Story is a candidate with an external link, ready for extraction.
type Story struct {
	ID    ID
	Title string
	URL   string
}

// SummarizedStory is a Story enriched with its summary; the unit published to the feed.
type SummarizedStory struct {
	Story
	Summary string
}
