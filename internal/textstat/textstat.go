// Package textstat computes statistics and lightweight key-information
// extraction over extracted document text. Everything here is pure and
// synchronous.
package textstat

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// wordsPerMinute is the reading-speed assumption behind ReadingMinutes.
const wordsPerMinute = 200

type Stats struct {
	Words          int `json:"words"`
	Characters     int `json:"characters"`
	ReadingMinutes int `json:"reading_minutes"`
	Pages          int `json:"pages"`
}

// Compute counts whitespace-delimited tokens and derives the estimated
// reading time as ceil(words / 200).
func Compute(text string, pageCount int) Stats {
	words := len(strings.Fields(text))
	return Stats{
		Words:          words,
		Characters:     utf8.RuneCountInString(text),
		ReadingMinutes: (words + wordsPerMinute - 1) / wordsPerMinute,
		Pages:          pageCount,
	}
}

type KeyInfo struct {
	Emails []string `json:"emails,omitempty"`
	Phones []string `json:"phones,omitempty"`
	URLs   []string `json:"urls,omitempty"`
	Dates  []string `json:"dates,omitempty"`
}

var (
	emailRE = regexp.MustCompile(`[a-zA-Z0-9._%&+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	phoneRE = regexp.MustCompile(`(?:\+?\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)
	urlRE   = regexp.MustCompile(`https?://[^\s<>"')\]]+`)
	dateRE  = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b|\b\d{1,2}[/.]\d{1,2}[/.]\d{2,4}\b|\b(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\.? \d{1,2},? \d{4}\b`)
)

// ExtractKeyInfo runs the four pattern matches over the full text. Each
// result set is de-duplicated preserving first-occurrence order and is not
// truncated; bounding for display is the caller's concern.
func ExtractKeyInfo(text string) KeyInfo {
	return KeyInfo{
		Emails: dedupe(emailRE.FindAllString(text, -1)),
		Phones: dedupe(phoneRE.FindAllString(text, -1)),
		URLs:   dedupe(urlRE.FindAllString(text, -1)),
		Dates:  dedupe(dateRE.FindAllString(text, -1)),
	}
}

// Empty reports whether no category matched at all.
func (k KeyInfo) Empty() bool {
	return len(k.Emails) == 0 && len(k.Phones) == 0 && len(k.URLs) == 0 && len(k.Dates) == 0
}

func dedupe(matches []string) []string {
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}
