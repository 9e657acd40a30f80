package generator

import (
	"fmt"
	"strings"
)

// DefaultTitle is the title used when generated text carries none.
func DefaultTitle(topic, style string) string {
	return fmt.Sprintf("%s in %s Style", topic, style)
}

// ParseCompletion splits generated markdown into title and content. A first
// line starting with '#' becomes the title; otherwise the whole text is the
// content and the title is derived from topic and style.
func ParseCompletion(text, topic, style string) (title, content string) {
	text = strings.TrimSpace(text)
	first, rest, _ := strings.Cut(text, "\n")

	if strings.HasPrefix(first, "#") {
		title = strings.TrimSpace(strings.TrimLeft(first, "#"))
		if title != "" {
			return title, strings.TrimSpace(rest)
		}
	}
	return DefaultTitle(topic, style), text
}
