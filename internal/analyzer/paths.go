package analyzer

import "strings"

// JoinPaths combines a class-level base path with a method-level sub-path.
// The result always has a leading slash, no duplicate slashes and no
// trailing slash except for the root itself.
func JoinPaths(base, sub string) string {
	joined := strings.TrimSpace(base) + "/" + strings.TrimSpace(sub)

	var b strings.Builder
	b.WriteByte('/')
	for _, seg := range strings.Split(joined, "/") {
		if seg == "" {
			continue
		}
		if b.Len() > 1 {
			b.WriteByte('/')
		}
		b.WriteString(seg)
	}
	return b.String()
}
