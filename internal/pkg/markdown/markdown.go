// Package markdown formats text for Telegram's legacy Markdown parse mode.
package markdown

import "strings"

var escaper = strings.NewReplacer(
	"_", "\\_",
	"*", "\\*",
	"[", "\\[",
	"`", "\\`",
)

// Escape escapes the characters legacy Markdown treats as markup
func Escape(text string) string {
	return escaper.Replace(text)
}
