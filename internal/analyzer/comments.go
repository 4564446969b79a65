package analyzer

import (
	"regexp"
	"strings"

	"spec-synth/internal/javaparser"
)

const (
	maxLeadingLen = 300
	maxNotes      = 10
	maxNoteLen    = 180
)

var (
	technicalMarkerRe = regexp.MustCompile(`(?i)^(INLINE(-BLOCK)?|LEADING(-BLOCK)?|VALIDATION|VALIDATE|CHECK|PERMS|LOOKUP|STOCK|CONFLICT)\s*:\s*`)
	todoRe            = regexp.MustCompile(`(?i)\b(TODO|FIXME|HACK)\b\s*:?\s*`)
	docTagRe          = regexp.MustCompile(`(?i)@(param|return|throws)\b`)
	spaceRe           = regexp.MustCompile(`\s+`)
)

// commentText flattens a comment body onto one line.
func commentText(c javaparser.Comment) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(c.Body(), " "))
}

// leadingDescription builds a description from plain comments directly
// above a method without Javadoc.
func leadingDescription(comments []javaparser.Comment) string {
	var parts []string
	for _, c := range comments {
		t := commentText(c)
		if t == "" || docTagRe.MatchString(t) || todoRe.MatchString(t) {
			continue
		}
		t = strings.TrimSpace(technicalMarkerRe.ReplaceAllString(t, ""))
		if t != "" {
			parts = append(parts, t)
		}
	}
	return truncate(strings.Join(parts, " "), maxLeadingLen)
}

// bodyNotes splits comments inside a method body into notes and todos.
func bodyNotes(comments []javaparser.Comment) (notes, todos []string) {
	seenNote := make(map[string]bool)
	seenTodo := make(map[string]bool)
	for _, c := range comments {
		t := commentText(c)
		if t == "" {
			continue
		}
		if todoRe.MatchString(t) {
			t = strings.TrimSpace(todoRe.ReplaceAllString(t, ""))
			if t == "" {
				t = "pending"
			}
			if !seenTodo[t] && len(todos) < maxNotes {
				seenTodo[t] = true
				todos = append(todos, truncate(t, maxNoteLen))
			}
			continue
		}
		t = strings.TrimSpace(technicalMarkerRe.ReplaceAllString(t, ""))
		if t == "" || seenNote[t] || len(notes) >= maxNotes {
			continue
		}
		seenNote[t] = true
		notes = append(notes, truncate(t, maxNoteLen))
	}
	return notes, todos
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n])) + "…"
}
