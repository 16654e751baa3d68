package assist

import (
	"regexp"
	"strings"
)

var (
	bulletRe   = regexp.MustCompile(`^(?:[-*+•]\s*)+`)
	numberRe   = regexp.MustCompile(`^\(?\d+[.)]\s*`)
	checkboxRe = regexp.MustCompile(`^\[[ xX]?\]\s*`)
)

// ParseChecklist splits model output into checklist item texts: one per non-blank line,
// with leading bullets, numbering and markdown checkboxes removed.
func ParseChecklist(raw string) []string {
	out := []string{}
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	for _, line := range strings.Split(raw, "\n") {
		s := strings.TrimSpace(line)
		s = bulletRe.ReplaceAllString(s, "")
		s = numberRe.ReplaceAllString(s, "")
		s = checkboxRe.ReplaceAllString(s, "")
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}
