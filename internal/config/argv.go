package config

import (
	"fmt"
	"strings"
	"unicode"
)

// splitCommand turns a configured command line into argv. No shell is
// involved: quotes group words, a backslash escapes the next rune outside
// single quotes, and a line starting with '#' is treated as disabled.
func splitCommand(line string) ([]string, error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil, nil
	}

	var (
		argv   []string
		word   strings.Builder
		inWord bool
		quote  rune
	)
	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case quote == '\'':
			if r == '\'' {
				quote = 0
			} else {
				word.WriteRune(r)
			}
		case r == '\\':
			if i+1 == len(runes) {
				return nil, fmt.Errorf("command %q ends with a dangling escape", line)
			}
			i++
			word.WriteRune(runes[i])
			inWord = true
		case quote == '"':
			if r == '"' {
				quote = 0
			} else {
				word.WriteRune(r)
			}
		case r == '\'' || r == '"':
			quote = r
			inWord = true
		case unicode.IsSpace(r):
			if inWord {
				argv = append(argv, word.String())
				word.Reset()
				inWord = false
			}
		default:
			word.WriteRune(r)
			inWord = true
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("command %q has an unterminated %c quote", line, quote)
	}
	if inWord {
		argv = append(argv, word.String())
	}
	return argv, nil
}
