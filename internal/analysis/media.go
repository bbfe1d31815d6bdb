package analysis

import (
	"fmt"

	"github.com/gabriel-vasile/mimetype"
)

// Accepted upload media types.
const (
	MediaTypePDF  = "application/pdf"
	MediaTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MediaTypeXLS  = "application/vnd.ms-excel"
)

var acceptedMediaTypes = []string{MediaTypePDF, MediaTypeXLSX, MediaTypeXLS}

// DetectMediaType sniffs the upload contents and returns its media type when
// it is a PDF or Excel workbook. The client-supplied filename and content type
// are not trusted.
func DetectMediaType(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty file", ErrUnsupportedDocument)
	}

	m := mimetype.Detect(data)
	if !mimetype.EqualsAny(m.String(), acceptedMediaTypes...) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedDocument, m.String())
	}
	return m.String(), nil
}
