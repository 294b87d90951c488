package handlers

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	"scripture-journey/internal/contextutil"
	"scripture-journey/internal/journey"
)

const exportTitle = "Scripture Journey"

// exportPageData holds template data for the HTML export.
type exportPageData struct {
	Title   string
	Filters int
	Content template.HTML
}

var exportPage = template.Must(template.New("export").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{.Title}}</title>
  <style>
    body {
      font-family: Georgia, 'Times New Roman', serif;
      margin: 0 auto;
      padding: 2rem;
      max-width: 760px;
      line-height: 1.7;
      color: #1f2933;
      background: #fbf8f1;
    }
    h1 { margin-top: 0; }
    h2 {
      border-bottom: 1px solid #e4dccb;
      padding-bottom: 0.25rem;
      margin-top: 2.5rem;
    }
    h3 { margin-bottom: 0.25rem; }
    blockquote {
      border-left: 4px solid #c8a96a;
      padding-left: 1rem;
      margin-left: 0;
      color: #52606d;
    }
    code {
      background: #f0e9da;
      padding: 1px 5px;
      border-radius: 4px;
      font-size: 0.85em;
    }
    .meta {
      color: #7b8794;
      font-size: 0.9rem;
    }
    @media (max-width: 640px) {
      body { padding: 1rem; }
    }
  </style>
</head>
<body>
  {{if .Filters}}<p class="meta">Filtered view ({{.Filters}} active filters)</p>{{end}}
  <article>{{.Content}}</article>
</body>
</html>`))

func newMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Typographer,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
	)
}

// export renders the store's current view as markdown or, with format=html, as a page.
func (h *JourneyHandler) export(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	format := r.URL.Query().Get("format")
	if format != "" && format != "markdown" && format != "html" {
		writeError(ctx, w, http.StatusBadRequest, "format must be markdown or html")
		return
	}

	doc := journey.RenderMarkdown(exportTitle, h.store.Groups())
	if format != "html" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		if _, err := w.Write(doc); err != nil {
			logger.ErrorContext(ctx, "failed to write markdown export", "error", err)
		}
		return
	}

	var buf bytes.Buffer
	if err := h.markdown.Convert(doc, &buf); err != nil {
		logger.ErrorContext(ctx, "failed to render markdown", "error", err)
		writeError(ctx, w, http.StatusInternalServerError, "Failed to render export")
		return
	}

	var page bytes.Buffer
	err := h.page.Execute(&page, exportPageData{
		Title:   exportTitle,
		Filters: h.store.ActiveFilterCount(),
		Content: template.HTML(buf.String()),
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to execute export template", "error", err)
		writeError(ctx, w, http.StatusInternalServerError, "Failed to render export")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := page.WriteTo(w); err != nil {
		logger.ErrorContext(ctx, "failed to write html export", "error", err)
	}
}
