package assistant

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	urlPattern       = regexp.MustCompile(`http\S+`)
	nonASCIIPattern  = regexp.MustCompile(`[^\x00-\x7F]+`)
	markupPattern    = regexp.MustCompile(`\*\*|\*|#`)
	titleLinePattern = regexp.MustCompile(`(?m)^\*\*([^*\n]+)\*\*\s*$`)
)

// SpeechText 轉成適合語音合成的純文字，食譜只念標題
func SpeechText(text string) string {
	if strings.Contains(text, "--- Ingredients ---") {
		title := "a recipe"
		if m := titleLinePattern.FindStringSubmatch(text); m != nil {
			title = m[1]
		}
		text = fmt.Sprintf("I've found a recipe for %s. The full details are now on your screen.", title)
	}

	text = urlPattern.ReplaceAllString(text, "")
	text = nonASCIIPattern.ReplaceAllString(text, "")
	text = markupPattern.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(text), " ")
}
