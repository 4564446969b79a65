package exporter

import (
	"github.com/xuri/excelize/v2"

	"spec-synth/internal/model"
)

// methodColors follows the usual API console palette.
var methodColors = map[model.HTTPMethod]string{
	model.MethodGet:    "#1565C0",
	model.MethodPost:   "#2E7D32",
	model.MethodPut:    "#EF6C00",
	model.MethodDelete: "#C62828",
	model.MethodPatch:  "#00838F",
}

// Styler handles Excel styling
type Styler struct {
	File *excelize.File

	// Pre-defined styles
	HeaderStyle  int
	MethodStyles map[model.HTTPMethod]int
	PublicStyle  int
	SecuredStyle int
	WarningStyle int
	DefaultStyle int
}

// NewStyler creates a new Styler and explicitly registers styles
func NewStyler(f *excelize.File) (*Styler, error) {
	s := &Styler{File: f, MethodStyles: make(map[model.HTTPMethod]int)}
	var err error

	// Header Style: Bold, Gray Background, Center Aligned
	s.HeaderStyle, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#000000"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    createBorder(),
	})
	if err != nil {
		return nil, err
	}

	for _, m := range model.HTTPMethods {
		s.MethodStyles[m], err = f.NewStyle(&excelize.Style{
			Font:      &excelize.Font{Bold: true, Color: methodColors[m]},
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
			Border:    createBorder(),
		})
		if err != nil {
			return nil, err
		}
	}

	// Public: green text
	s.PublicStyle, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Color: "#2E7D32"},
		Alignment: &excelize.Alignment{Vertical: "center"},
		Border:    createBorder(),
	})
	if err != nil {
		return nil, err
	}

	// Secured: bold
	s.SecuredStyle, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Vertical: "center"},
		Border:    createBorder(),
	})
	if err != nil {
		return nil, err
	}

	s.WarningStyle, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Color: "#D32F2F", Italic: true},
		Alignment: &excelize.Alignment{Vertical: "center", WrapText: true},
		Border:    createBorder(),
	})
	if err != nil {
		return nil, err
	}

	// Default Style
	s.DefaultStyle, err = f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Vertical: "center", WrapText: true},
		Border:    createBorder(),
	})
	if err != nil {
		return nil, err
	}

	return s, nil
}

// Method returns the style for a verb cell.
func (s *Styler) Method(m model.HTTPMethod) int {
	if id, ok := s.MethodStyles[m]; ok {
		return id
	}
	return s.DefaultStyle
}

func createBorder() []excelize.Border {
	return []excelize.Border{
		{Type: "left", Color: "D4D4D4", Style: 1},
		{Type: "top", Color: "D4D4D4", Style: 1},
		{Type: "bottom", Color: "D4D4D4", Style: 1},
		{Type: "right", Color: "D4D4D4", Style: 1},
	}
}
