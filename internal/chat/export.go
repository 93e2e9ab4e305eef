package chat

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Export is a downloadable snapshot of one conversation.
type Export struct {
	Timestamp           time.Time `json:"timestamp"`
	SessionID           string    `json:"session_id"`
	State               State     `json:"state"`
	Category            string    `json:"category,omitempty"`
	KnowledgeBaseSource string    `json:"knowledge_base_source"`
	KnowledgeBaseDocs   int       `json:"knowledge_base_docs"`
	Messages            []Message `json:"messages"`
}

// ExportTranscript assembles the export payload for a session.
func (e *Engine) ExportTranscript(ctx context.Context, sessionID string) (*Export, error) {
	sess, err := e.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, fmt.Errorf("unknown session: %s", sessionID)
	}

	msgs, err := e.store.Messages(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	stats := e.kb.Stats()
	return &Export{
		Timestamp:           time.Now().UTC(),
		SessionID:           sess.ID,
		State:               sess.State,
		Category:            sess.Category,
		KnowledgeBaseSource: stats.Connector,
		KnowledgeBaseDocs:   stats.DocumentCount,
		Messages:            msgs,
	}, nil
}

var markdown = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		highlighting.NewHighlighting(highlighting.WithStyle("github")),
	),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

var transcriptTemplate = template.Must(template.New("transcript").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Chat Transcript</title>
<style>
body { font-family: sans-serif; max-width: 760px; margin: 2em auto; color: #222; }
.message { margin: 1em 0; padding: 0.8em 1em; border-radius: 8px; }
.user { background: #e8f0fe; }
.assistant { background: #f5f5f5; }
.role { font-weight: bold; font-size: 0.85em; color: #666; margin-bottom: 0.3em; }
.meta { color: #888; font-size: 0.85em; }
</style>
</head>
<body>
<h1>Chat Transcript</h1>
<p class="meta">Session {{.SessionID}} &middot; {{.Timestamp.Format "2006-01-02 15:04 UTC"}} &middot; {{.KnowledgeBaseDocs}} documents ({{.KnowledgeBaseSource}})</p>
{{range .Rendered}}
<div class="message {{.Role}}">
<div class="role">{{.Role}}</div>
{{.HTML}}
</div>
{{end}}
</body>
</html>
`))

type renderedMessage struct {
	Role string
	HTML template.HTML
}

type transcriptData struct {
	*Export
	Rendered []renderedMessage
}

// RenderTranscriptHTML renders an export as a standalone HTML page with
// the markdown message bodies converted to HTML.
func RenderTranscriptHTML(export *Export) ([]byte, error) {
	data := transcriptData{Export: export}
	for _, m := range export.Messages {
		var buf bytes.Buffer
		if err := markdown.Convert([]byte(m.Content), &buf); err != nil {
			return nil, fmt.Errorf("rendering message: %w", err)
		}
		data.Rendered = append(data.Rendered, renderedMessage{
			Role: m.Role,
			HTML: template.HTML(buf.String()),
		})
	}

	var out bytes.Buffer
	if err := transcriptTemplate.Execute(&out, data); err != nil {
		return nil, fmt.Errorf("rendering transcript: %w", err)
	}
	return out.Bytes(), nil
}
