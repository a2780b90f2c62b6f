package statement

import "fmt"

// ExtractionErrorCode represents specific text extraction error types.
type ExtractionErrorCode string

const (
	ErrInvalidDocument ExtractionErrorCode = "INVALID_DOCUMENT"
	ErrNoTextContent   ExtractionErrorCode = "NO_TEXT_CONTENT"
)

// ExtractionError is a structured error for statement text extraction
// failures. The line parser itself never returns errors; only the document
// boundary does.
type ExtractionError struct {
	Code    ExtractionErrorCode
	Message string
	Cause   error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}
