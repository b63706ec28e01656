package poster

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// TwitterMaxLength is the maximum character count for a Twitter post.
const TwitterMaxLength = 280

// FitsInLimit checks if the formatted post fits within the limit.
func FitsInLimit(formatted string, limit int) bool {
	return utf8.RuneCountInString(formatted) <= limit
}

// ValidateText rejects text the platform would refuse.
func ValidateText(text string, limit int) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("post text is empty")
	}
	if !FitsInLimit(text, limit) {
		return fmt.Errorf("post text is %d characters, limit is %d", utf8.RuneCountInString(text), limit)
	}
	return nil
}

// Preview shortens text for log lines.
func Preview(text string, max int) string {
	flat := strings.ReplaceAll(text, "\n", " ")
	runes := []rune(flat)
	if len(runes) <= max {
		return flat
	}
	return string(runes[:max]) + "..."
}
