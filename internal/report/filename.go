package report

import (
	"strings"
	"time"
)

// FilenamePrefix tags every exported report.
const FilenamePrefix = "CRE_Analysis"

const filenameDateLayout = "2006-01-02"

// Filename builds "CRE_Analysis_<address>_<YYYY-MM-DD>.<ext>". Each run of
// characters outside [A-Za-z0-9] in the address becomes a single underscore,
// so the result never contains path separators or reserved characters. An
// address with no usable characters drops its segment entirely.
func Filename(address, ext string, date time.Time) string {
	parts := []string{FilenamePrefix}
	if slug := sanitizeAddress(address); slug != "" {
		parts = append(parts, slug)
	}
	parts = append(parts, date.Format(filenameDateLayout))

	name := strings.Join(parts, "_")
	if ext = sanitizeExtension(ext); ext != "" {
		name += "." + ext
	}
	return name
}

func sanitizeAddress(address string) string {
	var b strings.Builder
	b.Grow(len(address))

	pendingSep := false
	for i := 0; i < len(address); i++ {
		c := address[i]
		if isASCIIAlnum(c) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteByte(c)
			continue
		}
		pendingSep = true
	}
	return b.String()
}

func sanitizeExtension(ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	var b strings.Builder
	for i := 0; i < len(ext); i++ {
		if isASCIIAlnum(ext[i]) {
			b.WriteByte(ext[i])
		}
	}
	return b.String()
}

func isASCIIAlnum(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}
