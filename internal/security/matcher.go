package security

import (
	"strings"

	"spec-synth/internal/model"
)

// MatchPattern reports whether an Ant-style pattern covers a path template.
// "?" matches one character, "*" any run within a segment, "**" any number
// of segments and "{var}" one whole segment. A template variable in the
// path only matches a wildcard or variable segment.
func MatchPattern(pattern, path string) bool {
	return matchSegs(splitPath(pattern), splitPath(path))
}

func splitPath(p string) []string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

func matchSegs(pat, path []string) bool {
	for len(pat) > 0 {
		if pat[0] == "**" {
			rest := pat[1:]
			for i := 0; i <= len(path); i++ {
				if matchSegs(rest, path[i:]) {
					return true
				}
			}
			return false
		}
		if len(path) == 0 || !matchSegment(pat[0], path[0]) {
			return false
		}
		pat, path = pat[1:], path[1:]
	}
	return len(path) == 0
}

func matchSegment(pat, seg string) bool {
	if isVariable(pat) {
		return true
	}
	if isVariable(seg) {
		return pat == "*"
	}
	return globMatch(pat, seg)
}

func isVariable(s string) bool {
	return strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}")
}

// globMatch matches a single segment against "*" and "?" wildcards.
func globMatch(pat, s string) bool {
	p, r := []rune(pat), []rune(s)
	pi, si := 0, 0
	star, mark := -1, 0
	for si < len(r) {
		switch {
		case pi < len(p) && (p[pi] == '?' || p[pi] == r[si]):
			pi++
			si++
		case pi < len(p) && p[pi] == '*':
			star, mark = pi, si
			pi++
		case star >= 0:
			pi = star + 1
			mark++
			si = mark
		default:
			return false
		}
	}
	for pi < len(p) && p[pi] == '*' {
		pi++
	}
	return pi == len(p)
}

// specificity orders patterns: fewer wildcards first, then the longer
// literal prefix.
type specificity struct {
	wildcards int
	literal   int
}

func (a specificity) moreSpecific(b specificity) bool {
	if a.wildcards != b.wildcards {
		return a.wildcards < b.wildcards
	}
	return a.literal > b.literal
}

func specificityOf(pattern string) specificity {
	var s specificity
	inLiteral := true
	for _, seg := range splitPath(pattern) {
		switch {
		case seg == "**":
			s.wildcards += 2
			inLiteral = false
		case isVariable(seg):
			s.wildcards++
			inLiteral = false
		case strings.ContainsAny(seg, "*?"):
			s.wildcards++
			if inLiteral {
				s.literal += len(seg[:strings.IndexAny(seg, "*?")])
			}
			inLiteral = false
		default:
			if inLiteral {
				s.literal += len(seg) + 1
			}
		}
	}
	return s
}

// Resolve returns the most specific rule covering the operation, or nil.
// Ties go to the rule discovered first.
func Resolve(sm model.SecurityModel, method model.HTTPMethod, path string) *model.SecurityRule {
	var best *model.SecurityRule
	var bestSpec specificity
	for i := range sm.Rules {
		r := &sm.Rules[i]
		if r.Method != nil && *r.Method != method {
			continue
		}
		if !MatchPattern(r.Pattern, path) {
			continue
		}
		spec := specificityOf(r.Pattern)
		if best == nil || spec.moreSpecific(bestSpec) {
			best, bestSpec = r, spec
		}
	}
	return best
}
