package nlp

import (
	"strings"

	"spec-synth/internal/model"
)

// fallbackOrder lists the candidates tried for each requested level.
var fallbackOrder = map[model.DetailLevel][]model.DetailLevel{
	model.LevelShort:  {model.LevelShort, model.LevelMedium, model.LevelLong},
	model.LevelMedium: {model.LevelMedium, model.LevelShort, model.LevelLong},
	model.LevelLong:   {model.LevelLong, model.LevelMedium, model.LevelShort},
}

// PickDescription returns the description for level, falling back to an
// adjacent level when the requested one is blank. Unknown levels behave
// as medium.
func PickDescription(r *Response, level model.DetailLevel) string {
	if r == nil {
		return ""
	}
	order, ok := fallbackOrder[level]
	if !ok {
		order = fallbackOrder[model.LevelMedium]
	}
	for _, l := range order {
		if text := strings.TrimSpace(r.text(l)); text != "" {
			return text
		}
	}
	return ""
}

func (r *Response) text(level model.DetailLevel) string {
	switch level {
	case model.LevelShort:
		return r.ShortDescription
	case model.LevelLong:
		return r.LongDescription
	}
	return r.MediumDescription
}
