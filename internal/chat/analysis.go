package chat

import (
	"fmt"
	"strings"

	"docuchat/internal/textstat"
)

// analysisContent synthesizes the assistant message appended after a
// successful upload: document stats plus the key-info categories that
// matched at least once.
func analysisContent(name string, stats textstat.Stats, info textstat.KeyInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s** uploaded successfully!\n\n", name)
	b.WriteString("**Document Stats:**\n")
	fmt.Fprintf(&b, "- Pages: %d\n", stats.Pages)
	fmt.Fprintf(&b, "- Words: %d\n", stats.Words)
	fmt.Fprintf(&b, "- Characters: %d\n", stats.Characters)
	fmt.Fprintf(&b, "- Reading time: ~%d min\n", stats.ReadingMinutes)

	if !info.Empty() {
		b.WriteString("\n**Key Information Found:**\n")
		appendCategory(&b, "Emails", info.Emails)
		appendCategory(&b, "Phone numbers", info.Phones)
		appendCategory(&b, "Links", info.URLs)
		appendCategory(&b, "Dates", info.Dates)
	}

	b.WriteString("\nYou can now ask me anything about this document.")
	return b.String()
}

func appendCategory(b *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "- %s: %s\n", label, strings.Join(items, ", "))
}
