package services

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// asciiReplacer maps typographic and math characters that survive NFKC to
// plain ASCII spellings.
var asciiReplacer = strings.NewReplacer(
	"\u2212", "-", // minus sign
	"\u2013", "-", // en dash
	"\u2014", "-", // em dash
	"\u2018", "'",
	"\u2019", "'",
	"\u201c", `"`,
	"\u201d", `"`,
	"\u2026", "...",
	"\u00a0", " ", // no-break space
	"\u2217", "*", // asterisk operator
	"\u2022", "-", // bullet
	"\u00b7", "-", // middle dot
	"\u2192", "->",
	"\u2190", "<-",
	"\u2264", "<=",
	"\u2265", ">=",
	"\u00d7", "x",
	"\u00f7", "/",
	"\u221a", "sqrt",
	"\u03b1", "alpha",
	"\u03b2", "beta",
	"\u03b3", "gamma",
	"\u03bb", "lambda",
	"\u03c0", "pi",
	"\u03c3", "sigma",
	"\u03bc", "mu",
)

const replacementChar = '?'

// NormalizeText canonicalizes extracted PDF text into ASCII. It never fails
// and NormalizeText(NormalizeText(s)) == NormalizeText(s).
func NormalizeText(raw string) string {
	text := norm.NFKC.String(raw)
	text = asciiReplacer.Replace(text)

	var sb strings.Builder
	sb.Grow(len(text))
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		i += size
		if r < utf8.RuneSelf {
			sb.WriteByte(byte(r))
			continue
		}
		sb.WriteRune(replacementChar)
	}
	return sb.String()
}
