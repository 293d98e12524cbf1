package extract

import "fmt"

// Kind classifies an extraction failure into one of four user-facing
// categories. The adapter maps every underlying failure into exactly one
// kind so the caller can show an actionable message.
type Kind int

const (
	KindInvalidDocument Kind = iota
	KindPasswordProtected
	KindEmptyOrImageOnly
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindInvalidDocument:
		return "invalid_document"
	case KindPasswordProtected:
		return "password_protected"
	case KindEmptyOrImageOnly:
		return "empty_or_image_only"
	default:
		return "unknown"
	}
}

// Error wraps an extraction failure with its classification.
type Error struct {
	Kind  Kind
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("extract pdf (%s): %v", e.Kind, e.Cause)
	}
	return fmt.Sprintf("extract pdf (%s)", e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// UserMessage returns the human-readable message presented to the user.
func (e *Error) UserMessage() string {
	switch e.Kind {
	case KindInvalidDocument:
		return "The file could not be read as a PDF. Please upload a valid PDF document."
	case KindPasswordProtected:
		return "This PDF is password protected. Please remove the password and upload it again."
	case KindEmptyOrImageOnly:
		return "No readable text was found in this PDF. It may contain only scanned images."
	default:
		return "Something went wrong while reading the document. Please try again."
	}
}
