// Package markup converts a constrained subset of lightweight markup into
// HTML for display. The transform is a fixed sequence of regex rewrites
// over flat text: no tree is built, each rule runs on the output of the
// previous one, and mis-nesting on adversarial input is accepted. Input is
// trusted model output, not user markup, and the rule order is part of the
// compatibility contract.
package markup

import (
	"regexp"
	"strings"
)

var (
	h3RE = regexp.MustCompile(`(?m)^### (.+)$`)
	h2RE = regexp.MustCompile(`(?m)^## (.+)$`)
	h1RE = regexp.MustCompile(`(?m)^# (.+)$`)

	boldRE   = regexp.MustCompile(`\*\*(.+?)\*\*`)
	italicRE = regexp.MustCompile(`\*([^*\n]+)\*`)

	fencedRE     = regexp.MustCompile("(?s)```\n?(.*?)```")
	inlineCodeRE = regexp.MustCompile("`([^`\n]+)`")

	bulletItemRE  = regexp.MustCompile(`(?m)^- (.+)$`)
	orderedItemRE = regexp.MustCompile(`(?m)^\d+\. (.+)$`)
	listRunRE     = regexp.MustCompile(`(?:<li>.*?</li>\n?)+`)

	quoteRE = regexp.MustCompile(`(?m)^> (.+)$`)
)

// Render rewrites text into HTML by applying the rules in their fixed
// order: headings, bold, italic (after bold so bold asterisks are already
// consumed), fenced blocks, inline code, list items plus run wrapping,
// blockquotes, paragraph and line breaks, and a final paragraph wrap when
// no block-level element was produced.
func Render(text string) string {
	out := text

	out = h3RE.ReplaceAllString(out, "<h3>$1</h3>")
	out = h2RE.ReplaceAllString(out, "<h2>$1</h2>")
	out = h1RE.ReplaceAllString(out, "<h1>$1</h1>")

	out = boldRE.ReplaceAllString(out, "<strong>$1</strong>")
	out = italicRE.ReplaceAllString(out, "<em>$1</em>")

	out = fencedRE.ReplaceAllString(out, "<pre><code>$1</code></pre>")
	out = inlineCodeRE.ReplaceAllString(out, "<code>$1</code>")

	out = bulletItemRE.ReplaceAllString(out, "<li>$1</li>")
	out = orderedItemRE.ReplaceAllString(out, "<li>$1</li>")
	out = listRunRE.ReplaceAllStringFunc(out, wrapListRun)

	out = quoteRE.ReplaceAllString(out, "<blockquote>$1</blockquote>")

	out = strings.ReplaceAll(out, "\n\n", "</p><p>")
	out = strings.ReplaceAll(out, "\n", "<br>")

	if !strings.Contains(out, "<p>") && !containsHeading(out) {
		out = "<p>" + out + "</p>"
	}
	return out
}

// wrapListRun wraps a run of consecutive generated list items in a single
// list container, keeping any trailing newline outside of it.
func wrapListRun(run string) string {
	trimmed := strings.TrimSuffix(run, "\n")
	wrapped := "<ul>" + trimmed + "</ul>"
	if trimmed != run {
		wrapped += "\n"
	}
	return wrapped
}

func containsHeading(s string) bool {
	return strings.Contains(s, "<h1>") || strings.Contains(s, "<h2>") || strings.Contains(s, "<h3>")
}
