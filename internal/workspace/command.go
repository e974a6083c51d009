package workspace

import (
	"html"
	"strings"
)

const (
	replyAnalyzeSaltLine = "Cross-referencing coastal data. Discrepancy found in sector 4."
	replyAnalyze         = "Scanning current project resources... No structural anomalies detected in text data."
	replyGreeting        = "Greetings, Archivist Nova. I am ready to assist."
	replyHelp            = "Available commands: ANALYZE, SCAN, IMPORT, CONNECT."
)

// Reply picks the assistant text for a conduit command. The first matching rule wins:
// analyze/scan, then hello/hi, then help. ok is false when nothing matched.
func Reply(cmd, activeID string) (text string, ok bool) {
	lower := strings.ToLower(cmd)
	switch {
	case strings.Contains(lower, "analyze") || strings.Contains(lower, "scan"):
		if activeID == "salt-line" {
			return replyAnalyzeSaltLine, true
		}
		return replyAnalyze, true
	case strings.Contains(lower, "hello") || strings.Contains(lower, "hi"):
		return replyGreeting, true
	case strings.Contains(lower, "help"):
		return replyHelp, true
	}
	return "", false
}

// respond renders the conduit markup answering cmd. Unmatched input is echoed back
// with no further content.
func respond(cmd, activeID string) string {
	if text, ok := Reply(cmd, activeID); ok {
		return `<strong>Assistant:</strong> <span class="ai-resp">` + html.EscapeString(text) + `</span>`
	}
	return `<strong>Assistant:</strong> I'm analyzing "` + html.EscapeString(cmd) + `"...`
}
