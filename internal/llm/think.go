package llm

import (
	"regexp"
	"strings"
)

var thinkBlock = regexp.MustCompile(`(?is)<think>.*?</think>`)

// StripThink removes <think>...</think> reasoning blocks and trims the
// result. Text with an unclosed block is only trimmed.
func StripThink(text string) string {
	return strings.TrimSpace(thinkBlock.ReplaceAllString(text, ""))
}
