package parser

import (
	"strings"
)

// fenceTracker follows fenced code blocks while lines are scanned in order
type fenceTracker struct {
	marker byte
	length int
}

// inside reports whether the last scanned line was within a fenced block
func (f *fenceTracker) inside() bool {
	return f.length > 0
}

// scan consumes one line and reports whether it is a fence delimiter
func (f *fenceTracker) scan(line string) bool {
	marker, length, info := parseFence(line)
	if length == 0 {
		return false
	}

	if !f.inside() {
		f.marker, f.length = marker, length
		return true
	}

	// Closing fences use the same character, are at least as long and carry no info
	if marker == f.marker && length >= f.length && info == "" {
		f.marker, f.length = 0, 0
		return true
	}
	return false
}

// parseFence recognizes a ``` or ~~~ fence line indented by at most three spaces
func parseFence(line string) (marker byte, length int, info string) {
	indent := len(line) - len(strings.TrimLeft(line, " "))
	if indent > 3 {
		return 0, 0, ""
	}

	rest := line[indent:]
	if len(rest) < 3 || (rest[0] != '`' && rest[0] != '~') {
		return 0, 0, ""
	}

	marker = rest[0]
	for length < len(rest) && rest[length] == marker {
		length++
	}
	if length < 3 {
		return 0, 0, ""
	}

	info = strings.TrimSpace(rest[length:])
	if marker == '`' && strings.Contains(info, "`") {
		return 0, 0, ""
	}
	return marker, length, info
}

// fenceLanguage returns the first word of a fence info string
func fenceLanguage(info string) string {
	fields := strings.Fields(info)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(strings.Trim(fields[0], "{}."))
}

// isThematicBreak matches ---, *** and ___ rules (three or more, spaces allowed)
func isThematicBreak(line string) bool {
	trimmed := strings.TrimSpace(line)
	if len(line)-len(strings.TrimLeft(line, " ")) > 3 || len(trimmed) < 3 {
		return false
	}

	marker := trimmed[0]
	if marker != '-' && marker != '*' && marker != '_' {
		return false
	}

	count := 0
	for i := 0; i < len(trimmed); i++ {
		switch trimmed[i] {
		case marker:
			count++
		case ' ', '\t':
		default:
			return false
		}
	}
	return count >= 3
}
