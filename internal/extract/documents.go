package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"llm-scraper/internal/anthropic"
)

const defaultContentType = "text/plain"

// collectResponse splits the provider's content blocks into joined text and
// fetched documents, both in response order. Fetch results that are not
// documents are skipped.
func collectResponse(blocks []anthropic.ContentBlock, logger *zerolog.Logger) (string, []FetchedDocument) {
	var texts []string
	docs := []FetchedDocument{}

	for _, block := range blocks {
		switch block.Type {
		case anthropic.BlockText:
			texts = append(texts, block.Text)
		case anthropic.BlockWebFetchToolResult:
			fetch, err := block.WebFetchResult()
			if err != nil {
				logger.Warn().Err(err).Str("tool_use_id", block.ToolUseID).Msg("skipping unreadable web fetch result")
				continue
			}
			if doc, ok := toFetchedDocument(fetch); ok {
				docs = append(docs, doc)
			} else if fetch != nil && fetch.Type == anthropic.ResultWebFetchError {
				logger.Warn().Str("error_code", fetch.ErrorCode).Msg("web fetch tool returned an error")
			}
		}
	}
	return strings.Join(texts, "\n\n"), docs
}

func toFetchedDocument(fetch *anthropic.WebFetchResult) (FetchedDocument, bool) {
	if fetch == nil || fetch.Type != anthropic.ResultWebFetch {
		return FetchedDocument{}, false
	}
	doc := fetch.Content
	if doc == nil || doc.Type != anthropic.ResultDocument || doc.Source == nil {
		return FetchedDocument{}, false
	}

	contentType := doc.Source.MediaType
	if contentType == "" {
		contentType = defaultContentType
	}
	title := optional(doc.Title)
	if title == nil && isHTML(contentType) {
		title = optional(htmlTitle(doc.Source.Data))
	}

	return FetchedDocument{
		Type:        "web_fetch",
		URL:         fetch.URL,
		RetrievedAt: fetch.RetrievedAt,
		Title:       title,
		ContentType: contentType,
		Content:     doc.Source.Data,
	}, true
}

func isHTML(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.Contains(ct, "text/html") || strings.Contains(ct, "application/xhtml")
}

// htmlTitle picks the page title from <title>, og:title or the first <h1>.
func htmlTitle(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	if t := strings.TrimSpace(doc.Find("title").First().Text()); t != "" {
		return t
	}
	if og, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content"); ok && strings.TrimSpace(og) != "" {
		return strings.TrimSpace(og)
	}
	return strings.TrimSpace(doc.Find("h1").First().Text())
}
