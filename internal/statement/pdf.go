package statement

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/ledongthuc/pdf"
)

// maxTextBytes caps extracted statement text.
const maxTextBytes = 512 * 1024

// ExtractText pulls plain text from a statement PDF. It is wrapped in
// recover() so a malformed document surfaces as a structured error rather
// than a panic. Failures here are hard: no partial results.
func ExtractText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[statement-pdf] recovered from panic: %v", r)
			text = ""
			err = &ExtractionError{
				Code:    ErrInvalidDocument,
				Message: "panic during PDF text extraction",
				Cause:   fmt.Errorf("%v", r),
			}
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &ExtractionError{Code: ErrInvalidDocument, Message: "open PDF reader", Cause: err}
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", &ExtractionError{Code: ErrNoTextContent, Message: "extract plain text", Cause: err}
	}

	raw, err := io.ReadAll(io.LimitReader(plain, maxTextBytes))
	if err != nil {
		return "", &ExtractionError{Code: ErrNoTextContent, Message: "read plain text", Cause: err}
	}

	if strings.TrimSpace(string(raw)) == "" {
		return "", &ExtractionError{Code: ErrNoTextContent, Message: "document contains no extractable text"}
	}

	return string(raw), nil
}
