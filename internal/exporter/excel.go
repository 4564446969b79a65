package exporter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"spec-synth/internal/model"
	"spec-synth/internal/openapi"
)

const (
	SheetOverview  = "Overview"
	SheetEndpoints = "Endpoints"
	SheetSecurity  = "Security Rules"
)

// ExcelExporter writes an endpoint inventory workbook.
type ExcelExporter struct {
	// Stateless
}

// NewExcelExporter creates a new ExcelExporter
func NewExcelExporter() *ExcelExporter {
	return &ExcelExporter{}
}

func (e *ExcelExporter) Extension() string { return "xlsx" }

// Export generates the Excel report
func (e *ExcelExporter) Export(a *Artifact, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	styler, err := NewStyler(f)
	if err != nil {
		return err
	}

	// 1. Overview
	if err := e.writeOverview(f, styler, a); err != nil {
		return err
	}

	// 2. One row per operation
	if err := e.writeEndpoints(f, styler, a.Document); err != nil {
		return err
	}

	// 3. Authorization rules as declared
	if err := e.writeSecurityRules(f, styler, a.Security); err != nil {
		return err
	}

	// Remove default "Sheet1"
	if idx, err := f.GetSheetIndex("Sheet1"); err == nil && idx != -1 {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// --- Overview Sheet Logic ---

func (e *ExcelExporter) writeOverview(f *excelize.File, s *Styler, a *Artifact) error {
	sheet := SheetOverview
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	doc := a.Document
	mechanism := a.Security.Mechanism
	if mechanism == "" {
		mechanism = model.MechanismNone
	}

	e.writeRow(f, sheet, 1, []string{"Metric", "Value"}, s.HeaderStyle)
	metrics := []struct {
		Key string
		Val interface{}
	}{
		{"Title", doc.Info.Title},
		{"Version", doc.Info.Version},
		{"Paths", doc.Paths.Len()},
		{"Operations", doc.OperationCount()},
		{"Schemas", doc.Components.Schemas.Len()},
		{"Enriched Operations", a.Enriched},
		{"Auth Mechanism", string(mechanism)},
		{"Security Rules", len(a.Security.Rules)},
	}

	row := 2
	for _, m := range metrics {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), m.Key)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), m.Val)
		f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row), s.DefaultStyle)
		row++
	}

	row += 2 // Spacer

	// Operations per tag, busiest first
	e.writeRow(f, sheet, row, []string{"Tag", "Operations"}, s.HeaderStyle)
	row++
	counts := tagCounts(doc)
	tags := make([]string, 0, len(counts))
	for t := range counts {
		tags = append(tags, t)
	}
	sort.Slice(tags, func(i, j int) bool {
		if counts[tags[i]] != counts[tags[j]] {
			return counts[tags[i]] > counts[tags[j]]
		}
		return tags[i] < tags[j]
	})
	for _, t := range tags {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), t)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), counts[t])
		row++
	}

	f.SetColWidth(sheet, "A", "A", 30)
	f.SetColWidth(sheet, "B", "B", 40)
	return nil
}

func tagCounts(doc *openapi.Document) map[string]int {
	counts := make(map[string]int)
	for _, path := range doc.Paths.Keys() {
		item, _ := doc.Paths.Get(path)
		for _, mo := range item.Operations() {
			tag := "(untagged)"
			if len(mo.Operation.Tags) > 0 {
				tag = mo.Operation.Tags[0]
			}
			counts[tag]++
		}
	}
	return counts
}

// --- Endpoints Sheet Logic ---

var endpointHeaders = []string{
	"Method", "Path", "Operation ID", "Tag", "Summary",
	"Parameters", "Request Body", "Responses", "Security", "Roles", "Warnings",
}

func (e *ExcelExporter) writeEndpoints(f *excelize.File, s *Styler, doc *openapi.Document) error {
	sheet := SheetEndpoints
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	e.writeRow(f, sheet, 1, endpointHeaders, s.HeaderStyle)
	f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	row := 2
	for _, path := range doc.Paths.Keys() {
		item, _ := doc.Paths.Get(path)
		for _, mo := range item.Operations() {
			e.writeOperationRow(f, sheet, row, path, mo, s)
			row++
		}
	}

	f.SetColWidth(sheet, "A", "A", 10)
	f.SetColWidth(sheet, "B", "B", 40)
	f.SetColWidth(sheet, "C", "D", 24)
	f.SetColWidth(sheet, "E", "E", 50)
	f.SetColWidth(sheet, "F", "H", 30)
	f.SetColWidth(sheet, "I", "J", 18)
	f.SetColWidth(sheet, "K", "K", 50)
	return nil
}

func (e *ExcelExporter) writeOperationRow(f *excelize.File, sheet string, row int, path string, mo openapi.MethodOperation, s *Styler) {
	op := mo.Operation
	tag := ""
	if len(op.Tags) > 0 {
		tag = op.Tags[0]
	}

	values := []string{
		string(mo.Method),
		path,
		op.OperationID,
		tag,
		op.Summary,
		formatParameters(op.Parameters),
		formatBody(op.RequestBody),
		strings.Join(op.Responses.Keys(), ", "),
		securityLabel(op),
		strings.Join(stringList(op, "x-required-roles"), ", "),
		strings.Join(stringList(op, "x-warnings"), "\n"),
	}
	for i, val := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		f.SetCellValue(sheet, cell, val)
	}

	f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), s.Method(mo.Method))
	f.SetCellStyle(sheet, fmt.Sprintf("B%d", row), fmt.Sprintf("H%d", row), s.DefaultStyle)

	secStyle := s.DefaultStyle
	switch {
	case op.Security == nil:
	case len(op.Security) == 0:
		secStyle = s.PublicStyle
	default:
		secStyle = s.SecuredStyle
	}
	f.SetCellStyle(sheet, fmt.Sprintf("I%d", row), fmt.Sprintf("J%d", row), secStyle)
	f.SetCellStyle(sheet, fmt.Sprintf("K%d", row), fmt.Sprintf("K%d", row), s.WarningStyle)
}

func formatParameters(params []*openapi.Parameter) string {
	lines := make([]string, 0, len(params))
	for _, p := range params {
		flag := "optional"
		if p.Required {
			flag = "required"
		}
		lines = append(lines, fmt.Sprintf("%s (%s, %s, %s)", p.Name, p.In, schemaLabel(p.Schema), flag))
	}
	return strings.Join(lines, "\n")
}

func formatBody(body *openapi.RequestBody) string {
	if body == nil {
		return ""
	}
	mt, ok := body.Content.Get(openapi.ContentJSON)
	if !ok || mt == nil {
		return ""
	}
	return schemaLabel(mt.Schema)
}

func schemaLabel(s *openapi.Schema) string {
	switch {
	case s == nil:
		return ""
	case s.Ref != "":
		return s.RefName()
	case s.Type == "array":
		return "array<" + schemaLabel(s.Items) + ">"
	case s.Format != "":
		return s.Type + "/" + s.Format
	}
	return s.Type
}

// securityLabel is blank when no mechanism was detected.
func securityLabel(op *openapi.Operation) string {
	if op.Security == nil {
		return ""
	}
	if len(op.Security) == 0 {
		return "public"
	}
	var names []string
	for _, req := range op.Security {
		for name := range req {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func stringList(op *openapi.Operation, key string) []string {
	v, ok := op.Extension(key)
	if !ok {
		return nil
	}
	list, _ := v.([]string)
	return list
}

// --- Security Rules Sheet Logic ---

func (e *ExcelExporter) writeSecurityRules(f *excelize.File, s *Styler, sm model.SecurityModel) error {
	sheet := SheetSecurity
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	e.writeRow(f, sheet, 1, []string{"No", "Method", "Pattern", "Decision", "Roles"}, s.HeaderStyle)
	f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	for i, rule := range sm.Rules {
		row := i + 2
		method := "ANY"
		style := s.DefaultStyle
		if rule.Method != nil {
			method = string(*rule.Method)
			style = s.Method(*rule.Method)
		}
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), i+1)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), method)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), rule.Pattern)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), string(rule.Kind))
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), strings.Join(rule.Roles, ", "))

		f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), s.DefaultStyle)
		f.SetCellStyle(sheet, fmt.Sprintf("B%d", row), fmt.Sprintf("B%d", row), style)
		decision := s.SecuredStyle
		if rule.Kind == model.RulePermitAll {
			decision = s.PublicStyle
		}
		f.SetCellStyle(sheet, fmt.Sprintf("C%d", row), fmt.Sprintf("E%d", row), decision)
	}

	f.SetColWidth(sheet, "B", "B", 10)
	f.SetColWidth(sheet, "C", "C", 40)
	f.SetColWidth(sheet, "D", "E", 24)
	return nil
}

func (e *ExcelExporter) writeRow(f *excelize.File, sheet string, row int, values []string, style int) {
	for i, val := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		f.SetCellValue(sheet, cell, val)
		f.SetCellStyle(sheet, cell, cell, style)
	}
}
