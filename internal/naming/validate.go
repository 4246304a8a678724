package naming

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// transliteration maps accented Latin letters onto their plain ASCII base.
var transliteration = map[rune]string{
	'å': "a", 'ä': "a", 'à': "a", 'á': "a", 'â': "a", 'ã': "a",
	'Å': "A", 'Ä': "A", 'À': "A", 'Á': "A", 'Â': "A", 'Ã': "A",
	'ö': "o", 'ø': "o", 'ò': "o", 'ó': "o", 'ô': "o", 'õ': "o",
	'Ö': "O", 'Ø': "O", 'Ò': "O", 'Ó': "O", 'Ô': "O", 'Õ': "O",
	'é': "e", 'è': "e", 'ê': "e", 'ë': "e",
	'É': "E", 'È': "E", 'Ê': "E", 'Ë': "E",
	'ü': "u", 'ú': "u", 'ù': "u", 'û': "u",
	'Ü': "U", 'Ú': "U", 'Ù': "U", 'Û': "U",
	'í': "i", 'ì': "i", 'î': "i", 'ï': "i",
	'Í': "I", 'Ì': "I", 'Î': "I", 'Ï': "I",
	'ñ': "n", 'Ñ': "N",
	'ç': "c", 'Ç': "C",
	' ': "_",
}

func allowed(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '-', r == '_', r == '.':
		return true
	}
	return false
}

// Validate makes raw safe for use as a path component: known accented letters
// are transliterated, spaces become underscores and everything outside
// [A-Za-z0-9._-] is dropped. Input is NFC-normalized first so decomposed
// names (as written by some filesystems) transliterate the same way.
func Validate(raw string) string {
	var b strings.Builder
	for _, r := range norm.NFC.String(raw) {
		if repl, ok := transliteration[r]; ok {
			b.WriteString(repl)
			continue
		}
		if allowed(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
