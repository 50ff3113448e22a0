package model

import (
	"errors"
	"strings"
)

var ErrNoJSON = errors.New("no JSON object found in model output")

// ExtractJSON returns the first balanced {...} span in raw. Models often wrap
// their JSON reply in commentary or markdown fences; this tolerates leading
// and trailing noise but not multiple top-level objects.
func ExtractJSON(raw string) (string, error) {
	start := strings.IndexByte(raw, '{')
	if start < 0 {
		return "", ErrNoJSON
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		c := raw[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return raw[start : i+1], nil
			}
		}
	}
	return "", ErrNoJSON
}
