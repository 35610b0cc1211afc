package whatsapp

import (
	"net/url"
	"strings"
)

const deepLinkBase = "https://wa.me/"

// componentUnescaper undoes the QueryEscape choices that differ from
// encodeURIComponent, which leaves !'()* alone and writes spaces as %20.
var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// DeepLink builds the click-to-chat URL that opens a conversation with
// destination prefilled with text, encoded the way encodeURIComponent does.
func DeepLink(destination, text string) string {
	link := deepLinkBase + normalizeNumber(destination)
	if text == "" {
		return link
	}
	return link + "?text=" + escapeComponent(text)
}

func escapeComponent(s string) string {
	return componentUnescaper.Replace(url.QueryEscape(s))
}

// normalizeNumber strips everything but digits; wa.me rejects "+", spaces and dashes.
func normalizeNumber(n string) string {
	var b strings.Builder
	for _, r := range n {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
