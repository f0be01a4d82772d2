// Package markdown renders Telegram MarkdownV2 text.
package markdown

import (
	"strings"
	"unicode/utf8"
)

// Taken from https://core.telegram.org/bots/api#markdownv2-style.
const specialChars = `_*[]()~` + "`" + `>#+-=|{}.!\`

// Telegram rejects longer messages.
const MaxMessageLength = 4096

//nolint:gochecknoglobals // Lookup table meant to be immutable.
var lookup = func() [256]bool {
	var m [256]bool
	for i := range len(specialChars) {
		m[specialChars[i]] = true
	}
	return m
}()

func EscapeV2(input string) string {
	charsToEscape := 0
	for i := range len(input) {
		if lookup[input[i]] {
			charsToEscape++
		}
	}

	if charsToEscape == 0 {
		return input
	}

	var b strings.Builder
	b.Grow(len(input) + charsToEscape)

	for i := range len(input) {
		c := input[i]
		if lookup[c] {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}

	return b.String()
}

// Bold escapes text and wraps it in bold markers.
func Bold(text string) string {
	return "*" + EscapeV2(text) + "*"
}

// Link renders an inline link. Inside the URL part only ')' and '\' need
// escaping.
func Link(title, url string) string {
	url = strings.NewReplacer(`\`, `\\`, `)`, `\)`).Replace(url)
	return "[" + EscapeV2(title) + "](" + url + ")"
}

// Summary renders a titled summary reply. Title and URL are optional.
func Summary(title, url, summary string) string {
	var b strings.Builder

	title = strings.TrimSpace(title)
	url = strings.TrimSpace(url)

	switch {
	case title != "" && url != "":
		b.WriteString("📝 ")
		b.WriteString(Link(title, url))
		b.WriteString("\n\n")
	case title != "":
		b.WriteString("📝 ")
		b.WriteString(Bold(title))
		b.WriteString("\n\n")
	case url != "":
		b.WriteString("📝 ")
		b.WriteString(EscapeV2(url))
		b.WriteString("\n\n")
	}

	b.WriteString(EscapeV2(strings.TrimSpace(summary)))

	return b.String()
}

// Truncate cuts s to at most limit bytes on a rune boundary, never leaving a
// dangling escape backslash.
func Truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}

	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}

	out := s[:cut]
	trailing := len(out) - len(strings.TrimRight(out, `\`))
	if trailing%2 == 1 {
		out = out[:len(out)-1]
	}

	return out
}
