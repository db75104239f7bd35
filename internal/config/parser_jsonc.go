package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// decodeJSONC decodes JSON with comments and trailing commas. Comments and
// trailing commas are blanked in place so decoder offsets still point into
// the file the user wrote.
func decodeJSONC(content string) (fileConfig, error) {
	clean, err := blankJSONC([]byte(content))
	if err != nil {
		return fileConfig{}, err
	}

	decoder := json.NewDecoder(bytes.NewReader(clean))
	decoder.DisallowUnknownFields()

	var payload fileConfig
	if err := decoder.Decode(&payload); err != nil {
		return fileConfig{}, positionedJSONError(clean, err)
	}

	var extra json.RawMessage
	switch err := decoder.Decode(&extra); {
	case errors.Is(err, io.EOF):
		return payload, nil
	case err == nil:
		line, col := lineCol(clean, decoder.InputOffset())
		return fileConfig{}, fmt.Errorf("line %d column %d: multiple JSON values are not allowed", line, col)
	default:
		return fileConfig{}, positionedJSONError(clean, err)
	}
}

// blankJSONC returns a copy of src with comments and trailing commas replaced
// by spaces. Line breaks inside block comments are kept.
func blankJSONC(src []byte) ([]byte, error) {
	out := bytes.Clone(src)
	lastComma := -1

	for i := 0; i < len(out); i++ {
		switch c := out[i]; {
		case c == '"':
			lastComma = -1
			i = skipString(out, i)
		case c == '/' && i+1 < len(out) && out[i+1] == '/':
			for i < len(out) && out[i] != '\n' && out[i] != '\r' {
				out[i] = ' '
				i++
			}
		case c == '/' && i+1 < len(out) && out[i+1] == '*':
			end := bytes.Index(out[i+2:], []byte("*/"))
			if end < 0 {
				line, col := lineCol(out, int64(i+1))
				return nil, fmt.Errorf("line %d column %d: unterminated block comment", line, col)
			}
			stop := i + 2 + end + 2
			for ; i < stop; i++ {
				if out[i] != '\n' && out[i] != '\r' {
					out[i] = ' '
				}
			}
			i--
		case c == ',':
			lastComma = i
		case c == '}' || c == ']':
			if lastComma >= 0 {
				out[lastComma] = ' '
			}
			lastComma = -1
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
		default:
			lastComma = -1
		}
	}
	return out, nil
}

// skipString returns the index of the quote closing the string opened at
// start, or the last index when the string is unterminated.
func skipString(b []byte, start int) int {
	for i := start + 1; i < len(b); i++ {
		switch b[i] {
		case '\\':
			i++
		case '"':
			return i
		}
	}
	return len(b) - 1
}

func positionedJSONError(content []byte, err error) error {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		line, col := lineCol(content, syntaxErr.Offset)
		return fmt.Errorf("line %d column %d: %w", line, col, err)
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		line, col := lineCol(content, typeErr.Offset)
		return fmt.Errorf("line %d column %d: %w", line, col, err)
	}
	return err
}

// lineCol maps a 1-based byte offset, as reported by encoding/json, to a
// 1-based line and column.
func lineCol(content []byte, offset int64) (int, int) {
	if offset <= 0 {
		return 1, 1
	}
	limit := min(int(offset), len(content))
	before := content[:max(limit-1, 0)]
	line := bytes.Count(before, []byte{'\n'}) + 1
	col := len(before) - bytes.LastIndexByte(before, '\n')
	return line, col
}
