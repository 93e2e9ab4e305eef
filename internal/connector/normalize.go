package connector

import (
	"encoding/json"
	"strings"
	"unicode"

	"github.com/magroup/magnus/internal/retrieval"
)

// defaultPriority is assumed for documents without an editorial rank.
const defaultPriority = 3

// Normalize converts raw backend records into the retrieval document
// shape. Inconsistent content fields are resolved here, folder paths are
// folded into the display name, and missing or out-of-range priorities
// fall back to the default. This is the only place those concerns are
// handled; the retrieval core never sees raw records.
func Normalize(raws []RawDocument) []retrieval.Document {
	docs := make([]retrieval.Document, 0, len(raws))
	for _, raw := range raws {
		text := firstNonEmpty(raw.Content, raw.Text, raw.Body)
		if strings.TrimSpace(text) == "" {
			continue
		}

		name := raw.Name
		if raw.FolderPath != "" {
			name = strings.TrimSuffix(raw.FolderPath, "/") + "/" + raw.Name
		}

		priority := raw.Priority
		if priority < 1 || priority > 4 {
			priority = defaultPriority
		}

		docs = append(docs, retrieval.Document{
			Name:     name,
			Text:     text,
			Priority: priority,
		})
	}
	return docs
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// priorityFromPath infers the editorial rank from a leading digit in the
// top-level folder name, a knowledge base curation convention
// ("1 - Essential/...", "4 Archive/..."). Returns 0 when no rank applies.
func priorityFromPath(folderPath string) int {
	if folderPath == "" {
		return 0
	}
	top := folderPath
	if idx := strings.IndexByte(top, '/'); idx >= 0 {
		top = top[:idx]
	}
	top = strings.TrimSpace(top)
	if top == "" || !unicode.IsDigit(rune(top[0])) {
		return 0
	}
	p := int(top[0] - '0')
	if p < 1 || p > 4 {
		return 0
	}
	return p
}

// extractJSONL pulls text out of a JSON-lines knowledge export. Each line
// is an object whose content may live under one of several keys; lines
// that fail to parse are kept as plain text rather than dropped.
func extractJSONL(data string) string {
	var parts []string
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var obj map[string]any
		if err := json.Unmarshal([]byte(line), &obj); err != nil {
			parts = append(parts, line)
			continue
		}

		for _, key := range []string{"body_md", "content", "text", "body", "description"} {
			if v, ok := obj[key].(string); ok && v != "" {
				parts = append(parts, v)
				break
			}
		}
	}
	return strings.TrimSpace(strings.Join(parts, "\n\n"))
}

// processContent decodes downloaded bytes based on the file name. JSONL
// and JSON knowledge exports get field extraction; everything else is
// treated as plain text.
func processContent(data []byte, name string) string {
	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, ".jsonl") || strings.HasSuffix(lower, ".json") {
		return extractJSONL(string(data))
	}
	return string(data)
}
