package recipe

import (
	"fmt"
	"html"
	"regexp"
	"strings"
)

var (
	tagPattern        = regexp.MustCompile(`<[^>]+>`)
	blankLinesPattern = regexp.MustCompile(`\n\s*\n`)
)

// CleanInstructions 移除 HTML 標籤，連續空行壓成一行空行
func CleanInstructions(raw string) string {
	text := tagPattern.ReplaceAllString(raw, "\n")
	text = html.UnescapeString(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSpace(text)
	return blankLinesPattern.ReplaceAllString(text, "\n\n")
}

// Render 產生給使用者的食譜文字
func (s *Summary) Render() string {
	var sb strings.Builder

	sb.WriteString("🍲 Here's a recipe I found for you!\n\n")
	fmt.Fprintf(&sb, "**%s**\n\n", s.Title)
	fmt.Fprintf(&sb, "**Serves:** %s\n", s.Servings)
	fmt.Fprintf(&sb, "**Ready in:** %s minutes\n", s.ReadyInMinutes)
	fmt.Fprintf(&sb, "**Source:** %s\n", firstNonEmpty(s.SourceURL, "#"))

	sb.WriteString("\n--- Ingredients ---\n")
	if len(s.Ingredients) == 0 {
		sb.WriteString("No ingredients listed.\n")
	}
	for _, ing := range s.Ingredients {
		fmt.Fprintf(&sb, " * %s\n", ing)
	}

	sb.WriteString("\n--- Instructions ---\n")
	if s.Instructions == "" {
		sb.WriteString("No instructions provided. Check the source URL for details.\n")
	} else {
		sb.WriteString(s.Instructions + "\n")
	}

	return sb.String()
}
