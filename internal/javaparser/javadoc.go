package javaparser

import (
	"regexp"
	"strings"
)

// Javadoc is a parsed documentation comment.
type Javadoc struct {
	Description string
	Params      map[string]string
	Return      string
	Line        int
}

// Param returns the @param text for name.
func (j *Javadoc) Param(name string) string {
	if j == nil {
		return ""
	}
	return j.Params[name]
}

var (
	htmlTagRe    = regexp.MustCompile(`<[^>]+>`)
	inlineTagRe  = regexp.MustCompile(`\{@(?:code|link|linkplain|literal|value)\s+([^}]*)\}`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// ParseJavadoc parses the text of a /** */ comment.
func ParseJavadoc(c Comment) *Javadoc {
	doc := &Javadoc{Params: make(map[string]string), Line: c.Line}

	var desc []string
	var tag, tagArg string
	var tagText []string
	flush := func() {
		text := cleanDocText(strings.Join(tagText, " "))
		switch tag {
		case "param":
			if tagArg != "" {
				doc.Params[tagArg] = text
			}
		case "return":
			doc.Return = text
		}
		tag, tagArg, tagText = "", "", nil
	}

	for _, line := range strings.Split(c.Body(), "\n") {
		if strings.HasPrefix(line, "@") {
			flush()
			fields := strings.Fields(line)
			tag = strings.TrimPrefix(fields[0], "@")
			rest := fields[1:]
			if tag == "param" && len(rest) > 0 {
				tagArg = strings.Trim(rest[0], "<>")
				rest = rest[1:]
			}
			tagText = append(tagText, strings.Join(rest, " "))
			continue
		}
		if tag != "" {
			tagText = append(tagText, line)
			continue
		}
		desc = append(desc, line)
	}
	flush()

	doc.Description = cleanDocText(strings.Join(desc, " "))
	return doc
}

func cleanDocText(s string) string {
	s = inlineTagRe.ReplaceAllString(s, "$1")
	s = htmlTagRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}
