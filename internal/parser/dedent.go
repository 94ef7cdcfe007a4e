package parser

import "strings"

// Dedent strips the indentation shared by all non-blank lines of s. A single
// newline directly after the opening quote is dropped first. Spaces and tabs
// each count as one column; blank lines do not take part in the minimum and
// become empty when shorter than it.
func Dedent(s string) string {
	if strings.HasPrefix(s, "\r\n") {
		s = s[2:]
	} else {
		s = strings.TrimPrefix(s, "\n")
	}
	lines := strings.Split(s, "\n")

	indent := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		w := len(line) - len(strings.TrimLeft(line, " \t"))
		if indent < 0 || w < indent {
			indent = w
		}
	}
	if indent <= 0 {
		return s
	}

	for i, line := range lines {
		if len(line) < indent {
			lines[i] = ""
			continue
		}
		lines[i] = line[indent:]
	}
	return strings.Join(lines, "\n")
}
