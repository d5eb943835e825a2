package script

import (
	"encoding/json"
	"fmt"
	"strings"
)

type structured struct {
	Script  string `json:"script"`
	Overlay string `json:"overlay"`
}

// parseStructured pulls script and overlay out of LLM output. The prompt asks
// for bare JSON, but models routinely wrap it in a markdown fence anyway, so
// the parse runs as an ordered list of strategies: whole content as JSON
// first, then the inner text of a fenced block. First one that yields a
// script wins.
func parseStructured(content string) (structured, error) {
	var result structured
	if err := json.Unmarshal([]byte(content), &result); err == nil && result.Script != "" {
		return result, nil
	}

	inner, ok := extractFencedBlock(content)
	if ok {
		if err := json.Unmarshal([]byte(inner), &result); err == nil && result.Script != "" {
			return result, nil
		}
	}

	return structured{}, fmt.Errorf("no script field in response: %s", truncate(content, 200))
}

// extractFencedBlock returns the text between a markdown fence opener line
// and the next closer, exclusive of the fence lines themselves.
func extractFencedBlock(content string) (string, bool) {
	lines := strings.Split(content, "\n")
	start := -1

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if start == -1 {
			if strings.HasPrefix(trimmed, "```json") || trimmed == "```" {
				start = i
			}
			continue
		}
		if strings.HasPrefix(trimmed, "```") {
			return strings.Join(lines[start+1:i], "\n"), true
		}
	}

	return "", false
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
