package cover

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// Sanitize turns a client supplied filename into a flat, ASCII-only token that
// is safe to use as a file name inside the upload directory. Path separators
// become word breaks, whitespace runs become "_", leading and trailing dots and
// underscores are dropped. The result may be empty.
func Sanitize(filename string) string {
	var b strings.Builder
	for _, r := range norm.NFKD.String(filename) {
		if r > unicode.MaxASCII {
			continue
		}
		if r == '/' || r == '\\' {
			r = ' '
		}
		b.WriteRune(r)
	}
	name := strings.Join(strings.Fields(b.String()), "_")
	name = unsafeChars.ReplaceAllString(name, "")
	return strings.Trim(name, "._")
}

// Extension returns the lowercased text after the last dot, or "" when there is none
func Extension(filename string) string {
	i := strings.LastIndex(filename, ".")
	if i < 0 {
		return ""
	}
	return strings.ToLower(filename[i+1:])
}
