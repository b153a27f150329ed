// Package search talks to the web search provider and shapes its answers
// into the title/link/snippet triples the summarizer consumes.
package search

import "context"

// MaxResults is the number of results handed to the summarizer.
const MaxResults = 5

// Result is a single organic search hit.
type Result struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// Provider performs web searches against an external API.
type Provider interface {
	Search(ctx context.Context, query string, maxResults int) ([]Result, error)
}

// Top returns at most n results, never nil.
func Top(results []Result, n int) []Result {
	if n <= 0 || n > len(results) {
		n = len(results)
	}
	out := make([]Result, n)
	copy(out, results[:n])
	return out
}
