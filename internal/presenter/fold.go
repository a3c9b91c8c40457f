package presenter

import "strings"

const (
	seeMorePadding = 500
	zeroWidthSpace = "\u200b"
)

// fold keeps the first line visible and pushes the rest behind the chat client's
// "see more" cut with zero-width padding.
func fold(text string) string {
	text = strings.TrimSpace(text)
	header, body, ok := strings.Cut(text, "\n")
	if !ok || strings.TrimSpace(body) == "" {
		return text
	}
	var b strings.Builder
	b.Grow(len(text) + seeMorePadding*len(zeroWidthSpace) + 1)
	b.WriteString(strings.TrimSpace(header))
	b.WriteString(strings.Repeat(zeroWidthSpace, seeMorePadding))
	b.WriteByte('\n')
	b.WriteString(strings.TrimLeft(body, "\r\n"))
	return b.String()
}

// Unfold strips the padding added by fold; tests and terminal clients use it.
func Unfold(text string) string {
	return strings.ReplaceAll(text, zeroWidthSpace, "")
}
