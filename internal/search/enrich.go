package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	maxPageBytes   = 1 << 20
	enrichParallel = 5
)

var (
	spaceRe    = regexp.MustCompile(`\s+`)
	sentenceRe = regexp.MustCompile(`[^.!?]*[.!?]`)
)

// Enricher replaces thin snippets with an excerpt of the linked page.
type Enricher struct {
	HTTPClient *http.Client
	UserAgent  string
	// MinSnippet is the snippet length below which a page is fetched.
	MinSnippet int
	// MaxExcerpt caps the length of the replacement text.
	MaxExcerpt int
	breaker    *Breaker
	logger     *zap.Logger
}

// NewEnricher creates an Enricher with a per-page timeout.
func NewEnricher(timeout time.Duration, logger *zap.Logger) *Enricher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Enricher{
		HTTPClient: &http.Client{Timeout: timeout},
		UserAgent:  "research-summary/1.0",
		MinSnippet: 160,
		MaxExcerpt: 600,
		breaker:    NewBreaker(5, time.Minute, logger),
		logger:     logger,
	}
}

// Enrich returns a copy of results where short snippets are replaced by an
// excerpt of the page. Fetch failures keep the original snippet.
func (e *Enricher) Enrich(ctx context.Context, results []Result) []Result {
	out := make([]Result, len(results))
	copy(out, results)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(enrichParallel)
	for i := range out {
		if utf8.RuneCountInString(out[i].Snippet) >= e.MinSnippet {
			continue
		}
		g.Go(func() error {
			var text string
			err := e.breaker.Call(func() error {
				var err error
				text, err = e.fetch(gctx, out[i].Link)
				return err
			})
			if errors.Is(err, ErrBreakerOpen) {
				return nil
			}
			if err != nil {
				e.logger.Warn("enrich fetch failed", zap.String("url", out[i].Link), zap.Error(err))
				return nil
			}
			if excerpt := Excerpt(text, e.MaxExcerpt); utf8.RuneCountInString(excerpt) > utf8.RuneCountInString(out[i].Snippet) {
				out[i].Snippet = excerpt
			}
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (e *Enricher) fetch(ctx context.Context, link string) (string, error) {
	pageURL, err := url.Parse(link)
	if err != nil || (pageURL.Scheme != "http" && pageURL.Scheme != "https") {
		return "", fmt.Errorf("unsupported url %q", link)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", e.UserAgent)

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "html") {
		return "", fmt.Errorf("content type %q", ct)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", err
	}

	article, err := readability.FromReader(strings.NewReader(string(body)), pageURL)
	if err == nil && strings.TrimSpace(article.TextContent) != "" {
		return article.TextContent, nil
	}
	return visibleText(string(body)), nil
}

// visibleText is the fallback when readability finds no article: it drops
// page chrome and keeps paragraph text.
func visibleText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	doc.Find("header, nav, footer, aside, script, style, noscript, svg, form").Remove()

	var b strings.Builder
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			b.WriteString(text)
			b.WriteString(" ")
		}
	})
	return strings.TrimSpace(spaceRe.ReplaceAllString(b.String(), " "))
}

// Excerpt returns whole leading sentences of text up to max runes.
func Excerpt(text string, max int) string {
	text = strings.TrimSpace(spaceRe.ReplaceAllString(text, " "))
	if max <= 0 || utf8.RuneCountInString(text) <= max {
		return text
	}

	var b strings.Builder
	for _, s := range sentenceRe.FindAllString(text, -1) {
		s = strings.TrimSpace(s)
		if utf8.RuneCountInString(b.String())+utf8.RuneCountInString(s)+1 > max {
			break
		}
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString(s)
	}
	if b.Len() > 0 {
		return b.String()
	}
	runes := []rune(text)
	return string(runes[:max]) + "..."
}
