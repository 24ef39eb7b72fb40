package storage

import (
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// allowedExtensions is the fixed set of document types the store accepts.
var allowedExtensions = map[string]struct{}{
	"pdf":  {},
	"doc":  {},
	"docx": {},
	"txt":  {},
	"ppt":  {},
	"pptx": {},
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// Device names Windows refuses as file names, whatever the extension.
var reservedNames = map[string]struct{}{
	"CON": {}, "PRN": {}, "AUX": {}, "NUL": {},
	"COM1": {}, "COM2": {}, "COM3": {}, "COM4": {}, "COM5": {}, "COM6": {}, "COM7": {}, "COM8": {}, "COM9": {},
	"LPT1": {}, "LPT2": {}, "LPT3": {}, "LPT4": {}, "LPT5": {}, "LPT6": {}, "LPT7": {}, "LPT8": {}, "LPT9": {},
}

// Allowed reports whether filename has an extension from the allow-list.
// The check is on the name only; content is never inspected.
func Allowed(filename string) bool {
	i := strings.LastIndexByte(filename, '.')
	if i < 0 {
		return false
	}
	_, ok := allowedExtensions[strings.ToLower(filename[i+1:])]
	return ok
}

// SecureFilename reduces name to a flat ASCII file name safe to join under
// the store root. Accents are decomposed and dropped, path separators and
// whitespace become underscores, and anything outside [A-Za-z0-9_.-] is
// removed. The result may be empty.
func SecureFilename(name string) string {
	decomposed := norm.NFKD.String(name)

	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if r < 0x80 {
			b.WriteRune(r)
		}
	}
	name = b.String()

	name = strings.NewReplacer("/", " ", "\\", " ", string(filepath.Separator), " ").Replace(name)
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeChars.ReplaceAllString(name, "")
	name = strings.Trim(name, "._")

	if base, _, _ := strings.Cut(name, "."); name != "" {
		if _, reserved := reservedNames[strings.ToUpper(base)]; reserved {
			name = "_" + name
		}
	}
	return name
}
