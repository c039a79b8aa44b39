package extract

import "strings"

const jsonPrefix = "{"

// RepairJSONPrefix cleans model output that continues a "{" prefill. The
// model may wrap its answer in a code fence and usually omits the brace it
// was primed with, so the fence is stripped and the brace restored.
// Invalid JSON is returned as-is; nothing is parsed here.
func RepairJSONPrefix(text string) string {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	// A closing fence may be followed by a trailing note. Fences that sit
	// inside the object are left alone.
	if i := strings.LastIndex(cleaned, "```"); i >= 0 && i > strings.LastIndex(cleaned, "}") {
		cleaned = cleaned[:i]
	}
	cleaned = strings.TrimSpace(cleaned)
	if !strings.HasPrefix(cleaned, jsonPrefix) {
		cleaned = jsonPrefix + cleaned
	}
	return cleaned
}
