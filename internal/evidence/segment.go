package evidence

import "strings"

// Segment splits normalized evidence on every literal period.
// Empty fragments are kept, so strings.Join(Segment(s), ".") == s.
func Segment(text string) []string {
	return strings.Split(text, ".")
}
