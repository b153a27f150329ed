package llm

import (
	"fmt"
	"strings"

	"research-summary/internal/search"
)

const promptIntro = `You are an expert research assistant that creates comprehensive, structured summaries from search results.

Here is a query: "%s"

`

const promptInstructions = `Create a well-structured research summary organized into the following distinct sections:

## OVERVIEW
- Provide a brief, clear introduction to the topic
- Explain why this topic is significant
- Outline the key areas that will be covered in the summary

## CORE INSIGHTS
- Identify and summarize key concepts, methods, and applications related to the topic
- Condense detailed information into digestible insights
- Highlight the most important findings from the sources
- Use bullet points for clarity when appropriate

## GAPS & CHALLENGES
- Analyze the collected data to identify what's missing or unresolved in the field
- Highlight ongoing debates or research challenges that remain open
- Discuss limitations in current understanding or methodologies

## VIEWPOINTS
- Compare different perspectives from the sources
- Identify any contradictions, overlaps, or consensus between them
- Present balanced information that shows the full spectrum of opinions
- Note any evolving perspectives or changing consensus

## PROJECT IDEAS
- Offer 3-5 feasible, actionable project proposals related to the topic
- Suggest further questions or research directions that could lead to new discoveries
- Provide specific starting points or methodological approaches for each idea

Format each section with clear headings, concise paragraphs, and use bullet points where appropriate. Write in a formal, academic tone.`

// FormatSources renders results as the numbered source list embedded in the prompt.
func FormatSources(results []search.Result) string {
	entries := make([]string, 0, len(results))
	for i, r := range results {
		entries = append(entries, fmt.Sprintf("Source %d: %s\nURL: %s\nSummary: %s\n", i+1, r.Title, r.Link, r.Snippet))
	}
	return strings.Join(entries, "\n")
}

// BuildPrompt returns the fixed summary prompt for query. When customContent
// is not blank it replaces the search results as the source material.
func BuildPrompt(query string, results []search.Result, customContent string) string {
	var b strings.Builder
	fmt.Fprintf(&b, promptIntro, query)
	if strings.TrimSpace(customContent) != "" {
		b.WriteString("Here is the source material provided by the user:\n\n")
		b.WriteString(strings.TrimSpace(customContent))
		b.WriteString("\n\n")
	} else {
		fmt.Fprintf(&b, "Here are the top %d search results:\n\n", search.MaxResults)
		b.WriteString(FormatSources(results))
		b.WriteString("\n")
	}
	b.WriteString(promptInstructions)
	return b.String()
}
