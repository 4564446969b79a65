package config

import (
	"fmt"
	"regexp"
	"strings"

	"spec-synth/internal/model"
)

// Heuristics holds the lookup tables used by the extractor and the
// post-processor. Every table can be overridden from the config file.
type Heuristics struct {
	// PlaceholderPatterns are case-insensitive regular expressions matching
	// generator artifacts that must never reach the document.
	PlaceholderPatterns []string `mapstructure:"placeholder_patterns"`
	// BodyishNames are parameter names that suggest request-body content.
	BodyishNames []string `mapstructure:"bodyish_names"`
	// ParamDocs maps a lowercase parameter name to a canned description.
	ParamDocs map[string]string `mapstructure:"param_docs"`
	// ParamDocTemplate is used for parameters absent from ParamDocs.
	ParamDocTemplate string         `mapstructure:"param_doc_template"`
	Summaries        SummaryPhrases `mapstructure:"summaries"`
}

// SummaryPhrases are the templated one-line summaries synthesized when an
// operation has neither summary nor description.
type SummaryPhrases struct {
	Root          string `mapstructure:"root"` // format verb: method
	GetItem       string `mapstructure:"get_item"`
	GetCollection string `mapstructure:"get_collection"`
	Post          string `mapstructure:"post"`
	Put           string `mapstructure:"put"`
	Patch         string `mapstructure:"patch"`
	Delete        string `mapstructure:"delete"`
}

// DefaultHeuristics returns the built-in tables.
func DefaultHeuristics() Heuristics {
	return Heuristics{
		PlaceholderPatterns: []string{
			`string\s*\(\s*1\s*[-–]\s*3\s*sentences.*\)`,
			`enter\s+(a\s+)?description.*`,
			`string\s*\(\s*1\s*[-–]\s*3\s*zdania.*\)`,
			`wpisz\s+opis.*`,
			`lorem\s+ipsum`,
			`<extra_id_\d+>`,
		},
		BodyishNames: []string{
			"request", "payload", "body", "dto", "data", "json",
			"file", "avatar", "avatarFile", "upload", "content",
		},
		ParamDocs: map[string]string{
			"id":    "Resource identifier.",
			"page":  "Pagination parameter.",
			"limit": "Pagination parameter.",
			"size":  "Pagination parameter.",
		},
		ParamDocTemplate: "Parameter %s.",
		Summaries: SummaryPhrases{
			Root:          "%s /",
			GetItem:       "Retrieve a resource by identifier.",
			GetCollection: "Retrieve a list of resources.",
			Post:          "Create a new resource.",
			Put:           "Replace an existing resource.",
			Patch:         "Partially update a resource.",
			Delete:        "Delete a resource.",
		},
	}
}

// ParamDoc returns the canned description for a parameter name.
func (h Heuristics) ParamDoc(name string) string {
	if doc, ok := h.ParamDocs[strings.ToLower(name)]; ok {
		return doc
	}
	tmpl := h.ParamDocTemplate
	if tmpl == "" {
		tmpl = "Parameter %s."
	}
	if !strings.Contains(tmpl, "%s") {
		return tmpl
	}
	return fmt.Sprintf(tmpl, name)
}

// IsBodyish reports whether name is in the body-suggestive set.
func (h Heuristics) IsBodyish(name string) bool {
	for _, n := range h.BodyishNames {
		if n == name {
			return true
		}
	}
	return false
}

// Summary returns the templated summary for a verb and path.
func (h Heuristics) Summary(method model.HTTPMethod, path string) string {
	p := strings.TrimSpace(path)
	if p == "" || p == "/" {
		root := h.Summaries.Root
		if root == "" {
			root = "%s /"
		}
		return fmt.Sprintf(root, method)
	}
	switch method {
	case model.MethodGet:
		if strings.HasSuffix(p, "}") {
			return h.Summaries.GetItem
		}
		return h.Summaries.GetCollection
	case model.MethodPost:
		return h.Summaries.Post
	case model.MethodPut:
		return h.Summaries.Put
	case model.MethodPatch:
		return h.Summaries.Patch
	case model.MethodDelete:
		return h.Summaries.Delete
	}
	return string(method) + " " + p
}

// Compile builds the placeholder matchers.
func (h Heuristics) Compile() ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(h.PlaceholderPatterns))
	for _, p := range h.PlaceholderPatterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, fmt.Errorf("invalid placeholder pattern %q: %w", p, err)
		}
		out = append(out, re)
	}
	return out, nil
}
