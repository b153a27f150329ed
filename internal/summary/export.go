package summary

import (
	"fmt"
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
)

// Source is the minimal reference data printed at the end of an export.
type Source struct {
	Title string
	Link  string
}

// Titles maps header names to the labels used on tabs and in exports.
var Titles = map[string]string{
	HeaderOverview:     "Overview",
	HeaderCoreInsights: "Core Insights",
	HeaderGaps:         "Gaps & Challenges",
	HeaderViewpoints:   "Viewpoints",
	HeaderIdeas:        "Project Ideas",
}

// Markdown renders f as a Markdown document. Inline HTML produced by Parse is
// converted back to Markdown emphasis.
func Markdown(query string, f Formatted, sources []Source) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "# Research Summary: %s\n\n", query)

	overview, err := markdownLines(f.Overview)
	if err != nil {
		return "", fmt.Errorf("overview: %w", err)
	}
	fmt.Fprintf(&b, "## %s\n\n%s\n\n", Titles[HeaderOverview], overview)

	lists := f.Lists()
	for _, h := range Headers[1:] {
		fmt.Fprintf(&b, "## %s\n\n", Titles[h])
		for i, it := range lists[h] {
			md, err := toMarkdown(it.Text)
			if err != nil {
				return "", fmt.Errorf("%s item %d: %w", Titles[h], i+1, err)
			}
			if h == HeaderIdeas {
				fmt.Fprintf(&b, "%d. %s\n", i+1, md)
			} else {
				fmt.Fprintf(&b, "- %s\n", md)
			}
		}
		b.WriteString("\n")
	}

	if len(sources) > 0 {
		b.WriteString("## References\n\n")
		for _, s := range sources {
			fmt.Fprintf(&b, "- [%s](%s)\n", s.Title, s.Link)
		}
	}
	return strings.TrimRight(b.String(), "\n") + "\n", nil
}

func markdownLines(html string) (string, error) {
	lines := strings.Split(html, "\n")
	for i, line := range lines {
		md, err := toMarkdown(line)
		if err != nil {
			return "", err
		}
		lines[i] = md
	}
	return strings.Join(lines, "\n"), nil
}

var listMarkerRe = regexp.MustCompile(`^(?:[-*+]|\d+[.)])\s+`)

// toMarkdown converts the inline tags Parse emits back to Markdown. Lines
// without tags pass through, and a leading list marker is kept out of the
// conversion so it is not escaped.
func toMarkdown(line string) (string, error) {
	line = strings.TrimSpace(line)
	if !strings.Contains(line, "<") {
		return line, nil
	}
	marker := listMarkerRe.FindString(line)
	md, err := htmltomarkdown.ConvertString(line[len(marker):])
	if err != nil {
		return "", err
	}
	return marker + strings.TrimSpace(md), nil
}

// PlainText strips the inline markup from an HTML fragment.
func PlainText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}
	return strings.TrimSpace(doc.Text())
}

// Text renders f as plain text, one section per block.
func Text(query string, f Formatted, sources []Source) string {
	var b strings.Builder
	fmt.Fprintf(&b, "RESEARCH SUMMARY: %s\n\n", query)
	fmt.Fprintf(&b, "%s\n%s\n\n", strings.ToUpper(Titles[HeaderOverview]), PlainText(f.Overview))

	lists := f.Lists()
	for _, h := range Headers[1:] {
		fmt.Fprintf(&b, "%s\n", strings.ToUpper(Titles[h]))
		for i, it := range lists[h] {
			if h == HeaderIdeas {
				fmt.Fprintf(&b, "Project %d: %s\n", i+1, PlainText(it.Text))
			} else {
				fmt.Fprintf(&b, "  - %s\n", PlainText(it.Text))
			}
		}
		b.WriteString("\n")
	}

	if len(sources) > 0 {
		b.WriteString("REFERENCES\n")
		for i, s := range sources {
			fmt.Fprintf(&b, "  [%d] %s <%s>\n", i+1, s.Title, s.Link)
		}
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}
