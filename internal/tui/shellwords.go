package tui

import "unicode"

// splitShellWords splits a command line such as $EDITOR into argv. Single quotes,
// double quotes and backslash escapes (outside single quotes) are honored.
func splitShellWords(s string) []string {
	var out []string
	var word []rune
	var quote rune
	escaped := false
	inWord := false

	for _, r := range s {
		switch {
		case escaped:
			word = append(word, r)
			escaped = false
		case r == '\\' && quote != '\'':
			escaped, inWord = true, true
		case quote != 0 && r == quote:
			quote = 0
		case quote == 0 && (r == '\'' || r == '"'):
			quote, inWord = r, true
		case quote == 0 && unicode.IsSpace(r):
			if inWord {
				out = append(out, string(word))
				word, inWord = word[:0], false
			}
		default:
			word = append(word, r)
			inWord = true
		}
	}
	if inWord {
		out = append(out, string(word))
	}
	return out
}
