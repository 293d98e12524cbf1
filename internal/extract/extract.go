// Package extract wraps PDF parsing behind a byte-oriented adapter. It turns
// raw document bytes into page-segmented plain text plus best-effort
// metadata, and classifies every failure for the UI.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"docuchat/internal/models"
)

const (
	// minTextChars is the threshold under which extraction is treated as
	// failed rather than merely sparse.
	minTextChars = 10

	pageFailurePlaceholder = "[Error extracting text from this page]"
)

var whitespaceRE = regexp.MustCompile(`\s+`)

// Result is the transient product of one extraction, consumed once to build
// an attachment and then discarded.
type Result struct {
	Text      string
	PageCount int
	Metadata  models.DocumentMetadata
}

type Extractor struct{}

func New() *Extractor {
	return &Extractor{}
}

// Extract decodes the byte buffer as a PDF and returns its page-delimited
// text. Single-page failures are absorbed with a placeholder block; a
// metadata read failure is logged and ignored. The returned error, if any,
// is always an *Error carrying one of the four classification kinds.
func (e *Extractor) Extract(ctx context.Context, data []byte) (res *Result, err error) {
	// The parser panics on some malformed streams; a panic outside the
	// per-page scope means the document structure itself is unreadable.
	defer func() {
		if rec := recover(); rec != nil {
			res = nil
			err = &Error{Kind: KindInvalidDocument, Cause: fmt.Errorf("pdf parser panic: %v", rec)}
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, classifyOpenError(err)
	}

	pageCount := reader.NumPage()
	meta := readMetadata(reader)
	meta.PageCount = pageCount

	blocks := make([]string, 0, pageCount)
	textChars := 0
	for n := 1; n <= pageCount; n++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, &Error{Kind: KindUnknown, Cause: ctxErr}
		}
		pageText, pageErr := extractPage(reader, n)
		if pageErr != nil {
			log.Printf("extract page %d: %v", n, pageErr)
			pageText = pageFailurePlaceholder
		} else {
			textChars += len(pageText)
		}
		blocks = append(blocks, fmt.Sprintf("--- Page %d ---\n%s", n, pageText))
	}

	if textChars < minTextChars {
		return nil, &Error{Kind: KindEmptyOrImageOnly}
	}

	return &Result{
		Text:      strings.TrimSpace(strings.Join(blocks, "\n\n")),
		PageCount: pageCount,
		Metadata:  meta,
	}, nil
}

// extractPage reads the positioned text fragments of one page and joins
// them into a single whitespace-collapsed line. Page resources are scoped
// to this call; a parser panic is converted into an error so the document
// loop can substitute a placeholder and continue.
func extractPage(reader *pdf.Reader, n int) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			text = ""
			err = fmt.Errorf("page parser panic: %v", rec)
		}
	}()

	page := reader.Page(n)
	if page.V.IsNull() {
		return "", nil
	}
	content := page.Content()
	if len(content.Text) == 0 {
		return "", nil
	}

	// Fragments arrive positioned, not in reading order: sort into lines
	// top-to-bottom, left-to-right, then join lines with single spaces.
	fragments := make([]pdf.Text, len(content.Text))
	copy(fragments, content.Text)
	sort.SliceStable(fragments, func(i, j int) bool {
		if fragments[i].Y != fragments[j].Y {
			return fragments[i].Y > fragments[j].Y
		}
		return fragments[i].X < fragments[j].X
	})

	var sb strings.Builder
	lastY := fragments[0].Y
	for _, t := range fragments {
		if t.Y != lastY {
			sb.WriteString(" ")
			lastY = t.Y
		}
		sb.WriteString(t.S)
	}
	joined := whitespaceRE.ReplaceAllString(sb.String(), " ")
	return strings.TrimSpace(joined), nil
}

// readMetadata reads the Info dictionary best-effort. Anything going wrong
// here is logged and yields defaulted fields, never a hard failure.
func readMetadata(reader *pdf.Reader) (meta models.DocumentMetadata) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("read pdf metadata: %v", rec)
			meta = models.DocumentMetadata{}
		}
	}()

	info := reader.Trailer().Key("Info")
	if info.IsNull() {
		return meta
	}
	meta.Title = info.Key("Title").Text()
	meta.Author = info.Key("Author").Text()
	meta.Subject = info.Key("Subject").Text()
	meta.Creator = info.Key("Creator").Text()
	meta.Producer = info.Key("Producer").Text()
	meta.CreationDate = info.Key("CreationDate").Text()
	meta.Keywords = info.Key("Keywords").Text()
	return meta
}

func classifyOpenError(err error) error {
	if strings.Contains(strings.ToLower(err.Error()), "encrypt") {
		return &Error{Kind: KindPasswordProtected, Cause: err}
	}
	return &Error{Kind: KindInvalidDocument, Cause: err}
}

// AsError unwraps err into its extraction classification, if it has one.
func AsError(err error) (*Error, bool) {
	var exErr *Error
	if errors.As(err, &exErr) {
		return exErr, true
	}
	return nil, false
}
