package game

import "strings"

// Trim normalises a line of telnet input: strips carriage returns and
// surrounding whitespace.
func Trim(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\r", ""))
}
