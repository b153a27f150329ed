// Package summary turns the raw text produced by the language model into the
// five named sections shown in the research view.
package summary

import (
	"regexp"
	"strings"
	"unicode"
)

// Section header names as the prompt asks the model to emit them.
const (
	HeaderOverview     = "OVERVIEW"
	HeaderCoreInsights = "CORE INSIGHTS"
	HeaderGaps         = "GAPS & CHALLENGES"
	HeaderViewpoints   = "VIEWPOINTS"
	HeaderIdeas        = "PROJECT IDEAS"
)

// Headers lists the section names in the order they are matched and rendered.
var Headers = []string{HeaderOverview, HeaderCoreInsights, HeaderGaps, HeaderViewpoints, HeaderIdeas}

// Item is a single bullet of a list section. Text is HTML.
type Item struct {
	Text string `json:"text"`
}

// Formatted is the parsed form of a raw summary. Every field is HTML and
// stays at its zero value when the matching header is missing.
type Formatted struct {
	Overview     string `json:"overview"`
	CoreInsights []Item `json:"coreInsights"`
	Gaps         []Item `json:"gaps"`
	Viewpoints   []Item `json:"viewpoints"`
	Ideas        []Item `json:"ideas"`
}

// Empty returns a Formatted with non-nil lists so it encodes as [] rather than null.
func Empty() Formatted {
	return Formatted{
		CoreInsights: []Item{},
		Gaps:         []Item{},
		Viewpoints:   []Item{},
		Ideas:        []Item{},
	}
}

// IsEmpty reports whether no section carries any content.
func (f Formatted) IsEmpty() bool {
	return f.Overview == "" && len(f.CoreInsights) == 0 && len(f.Gaps) == 0 &&
		len(f.Viewpoints) == 0 && len(f.Ideas) == 0
}

var (
	bulletSplitRe = regexp.MustCompile(`\n\*|\n-`)
	strongRe      = regexp.MustCompile(`\*\*(.*?)\*\*`)
	emRe          = regexp.MustCompile(`\*(.*?)\*`)
)

// Parse splits raw into sections. It never fails: unknown or missing
// sections leave their field empty, and a later header with the same name
// replaces an earlier one.
func Parse(raw string) Formatted {
	out := Empty()
	for _, part := range partitions(raw) {
		switch {
		case strings.Contains(part, HeaderOverview):
			out.Overview = Inline(stripHeader(part, HeaderOverview))
		case strings.Contains(part, HeaderCoreInsights):
			out.CoreInsights = items(stripHeader(part, HeaderCoreInsights))
		case strings.Contains(part, HeaderGaps):
			out.Gaps = items(stripHeader(part, HeaderGaps))
		case strings.Contains(part, HeaderViewpoints):
			out.Viewpoints = items(stripHeader(part, HeaderViewpoints))
		case strings.Contains(part, HeaderIdeas):
			out.Ideas = items(stripHeader(part, HeaderIdeas))
		}
	}
	return out
}

// partitions cuts raw in front of every "## " so each part after the first
// starts with a header marker.
func partitions(raw string) []string {
	var parts []string
	start := 0
	for i := 1; i < len(raw); i++ {
		if strings.HasPrefix(raw[i:], "## ") {
			parts = append(parts, raw[start:i])
			start = i
		}
	}
	if start < len(raw) {
		parts = append(parts, raw[start:])
	}
	return parts
}

// stripHeader removes the first literal "## NAME" from a partition. Text
// sharing the header line is kept.
func stripHeader(part, name string) string {
	return strings.TrimSpace(strings.Replace(part, "## "+name, "", 1))
}

func items(body string) []Item {
	list := []Item{}
	for _, frag := range bulletSplitRe.Split(body, -1) {
		text := strings.TrimSpace(frag)
		if text == "" {
			continue
		}
		text = strings.TrimSpace(stripStrayStar(text))
		if text == "" {
			continue
		}
		list = append(list, Item{Text: Inline(text)})
	}
	return list
}

// stripStrayStar removes a leftover bullet marker at the start, or failing
// that a lone "*" at the end. Stars that belong to a "**" pair are kept.
func stripStrayStar(s string) string {
	switch {
	case s == "-" || strings.HasPrefix(s, "- "):
		return s[1:]
	case strings.HasPrefix(s, "*") && !strings.HasPrefix(s, "**"):
		return s[1:]
	}
	t := strings.TrimRightFunc(s, unicode.IsSpace)
	if strings.HasSuffix(t, "*") && !strings.HasSuffix(t, "**") {
		return t[:len(t)-1]
	}
	return s
}

// Inline converts **x** to <strong>x</strong> and then *x* to <em>x</em>.
// Unbalanced markers are left as they are or paired with the next star.
func Inline(s string) string {
	s = strongRe.ReplaceAllString(s, "<strong>$1</strong>")
	return emRe.ReplaceAllString(s, "<em>$1</em>")
}

// Lists returns the four list sections keyed by header name.
func (f Formatted) Lists() map[string][]Item {
	return map[string][]Item{
		HeaderCoreInsights: f.CoreInsights,
		HeaderGaps:         f.Gaps,
		HeaderViewpoints:   f.Viewpoints,
		HeaderIdeas:        f.Ideas,
	}
}
