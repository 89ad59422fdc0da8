package gate

import (
	"regexp"
	"strings"
	"unicode"
)

// urlRe matches url-like runs, same way the classifier was trained: anything
// starting with "http" up to the next whitespace.
var urlRe = regexp.MustCompile(`http\S+`)

// homoglyphs maps Latin letters to their visually identical counterparts,
// mostly Cyrillic. Spammers mix scripts to slip past keyword filters, folding
// them to a single script restores the text the model was trained on.
var homoglyphs = map[rune]rune{
	'A': 'А', 'a': 'а',
	'B': 'В',
	'E': 'Е', 'e': 'е',
	'K': 'К',
	'M': 'М',
	'H': 'Н',
	'O': 'О', 'o': 'о',
	'P': 'Р',
	'C': 'С', 'c': 'с',
	'T': 'Т',
	'X': 'Х',
	'Y': 'У', 'y': 'у',
	'p': 'р',
	'b': 'ь',
	'I': 'І', 'i': 'і',
	'S': 'Ѕ', 's': 'ѕ',
	'D': 'Ԁ', 'd': 'ԁ',
	'F': 'Ғ', 'f': 'ғ',
	'G': 'Ԍ', 'g': 'ɡ',
	'L': 'Ꮮ', 'l': 'ⅼ',
	'N': 'Ν', 'n': 'ո',
}

// foldTargets keeps the fold results (and their lowercase forms) alive through
// the character filter, so normalization stays idempotent even for targets
// outside the Cyrillic script, like Armenian ո or Greek Ν.
var foldTargets = func() map[rune]struct{} {
	res := make(map[rune]struct{}, len(homoglyphs)*2)
	for _, v := range homoglyphs {
		res[v] = struct{}{}
		res[unicode.ToLower(v)] = struct{}{}
	}
	return res
}()

// Normalize prepares raw message text for classification. It never fails and
// always returns a usable, possibly empty, string. The steps are ordered:
// urls are dropped first, then everything that is not a letter, digit or
// space collapses to a space, then mixed-script homoglyphs fold to a single
// script, and finally the result is lowercased with whitespace squeezed.
func Normalize(text string) string {
	text = urlRe.ReplaceAllString(text, "")

	var cleaned strings.Builder
	cleaned.Grow(len(text))
	for _, r := range text {
		if allowedRune(r) {
			cleaned.WriteRune(r)
			continue
		}
		// space, not delete, to avoid gluing adjacent words together
		cleaned.WriteRune(' ')
	}

	var folded strings.Builder
	folded.Grow(cleaned.Len())
	for _, r := range cleaned.String() {
		if m, ok := homoglyphs[r]; ok {
			folded.WriteRune(m)
			continue
		}
		folded.WriteRune(r)
	}

	return strings.Join(strings.Fields(strings.ToLower(folded.String())), " ")
}

// allowedRune reports whether a rune survives the character filter:
// ascii letters, the whole Cyrillic script, digits, spaces and the
// homoglyph fold targets.
func allowedRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == ' ':
		return true
	case unicode.Is(unicode.Cyrillic, r):
		return true
	}
	_, ok := foldTargets[r]
	return ok
}
