package goal

import (
	"fmt"
	"strings"
	"unicode"
)

// allowedCalls are the only builtins an acceptance expression may
// invoke. Everything else expr-lang offers (closures, ranges, string
// builtins) has no business in a goal condition.
var allowedCalls = map[string]bool{
	"min": true,
	"max": true,
	"abs": true,
}

// validateSource rejects expression sources that reach outside the
// plain arithmetic-and-comparison subset before they ever hit the
// compiler, so config errors read as intent errors, not parser noise.
func validateSource(source string) error {
	for _, ch := range []rune{'{', '}', '[', ']', ';', '?', '@', '#', '$', '\\'} {
		if strings.ContainsRune(source, ch) {
			return fmt.Errorf("illegal character %q", ch)
		}
	}

	if strings.Contains(source, ".") {
		return fmt.Errorf("dot access is not allowed")
	}

	for i := 0; i < len(source); i++ {
		if source[i] != '(' {
			continue
		}
		j := i - 1
		for j >= 0 && unicode.IsSpace(rune(source[j])) {
			j--
		}
		if j < 0 || !(unicode.IsLetter(rune(source[j])) || source[j] == '_') {
			continue
		}
		k := j
		for k >= 0 && (unicode.IsLetter(rune(source[k])) || unicode.IsDigit(rune(source[k])) || source[k] == '_') {
			k--
		}
		ident := source[k+1 : j+1]
		if !allowedCalls[ident] {
			return fmt.Errorf("call to %q is not allowed", ident)
		}
	}

	return nil
}
