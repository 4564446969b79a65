package e2e

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"spec-synth/internal/config"
	"spec-synth/internal/exporter"
	"spec-synth/internal/model"
	"spec-synth/internal/nlp"
	"spec-synth/internal/pipeline"
)

type echoDescriber struct{}

func (echoDescriber) Describe(ctx context.Context, level model.DetailLevel, req nlp.Request) (*nlp.Response, error) {
	return &nlp.Response{
		MediumDescription: fmt.Sprintf("Handles %s.", req.Signature),
		ReturnDoc:         "The result.",
	}, nil
}

func TestEndToEndFlow(t *testing.T) {
	rootDir, _ := filepath.Abs("../../testdata/shop")
	outputDir := t.TempDir()

	// 1. Configure
	cfg := config.Default()
	cfg.Project.RootDir = rootDir
	cfg.Project.Name = "shop"
	cfg.Output.Dir = outputDir
	cfg.Output.FileName = "e2e_report"
	cfg.Output.Formats = []string{"yaml", "json", "xlsx"}
	cfg.Generation.Validate = true

	// 2. Scan, extract, assemble, enrich
	out, err := pipeline.Generate(context.Background(), cfg, pipeline.Options{Describer: echoDescriber{}})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if out.Endpoints != 8 || out.Enriched != 8 {
		t.Errorf("endpoints=%d enriched=%d, want 8 and 8", out.Endpoints, out.Enriched)
	}
	if len(out.ValidationErrors) > 0 {
		t.Errorf("generated document does not validate: %v", out.ValidationErrors)
	}

	// 3. Export
	written, err := exporter.ExportAll(&exporter.Artifact{
		Document: out.Document,
		Security: out.Security,
		Enriched: out.Enriched,
	}, cfg)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if len(written) != 3 {
		t.Fatalf("expected 3 files, got %v", written)
	}
	for _, f := range []string{"e2e_report.yaml", "e2e_report.json", "e2e_report.xlsx"} {
		if _, err := os.Stat(filepath.Join(outputDir, f)); os.IsNotExist(err) {
			t.Errorf("Expected output file missing: %s", f)
		}
	}

	// 4. Code must never leak into the inventory
	excelPath := filepath.Join(outputDir, "e2e_report.xlsx")
	if err := validateExcelNoBannedKeywords(excelPath); err != nil {
		t.Fatalf("❌ BANNED KEYWORD FOUND: %v", err)
	}

	// 5. DTO fields reach the document
	yamlPath := filepath.Join(outputDir, "e2e_report.yaml")
	if err := validateDTOFields(yamlPath); err != nil {
		t.Error(err)
	}
}

// validateExcelNoBannedKeywords checks that no Endpoints cell carries Java
// statements.
func validateExcelNoBannedKeywords(excelPath string) error {
	bannedKeywords := []string{
		"throw new",
		"IllegalArgumentException",
		"return ",
		"synchronized",
		"catch (",
	}

	f, err := excelize.OpenFile(excelPath)
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := f.GetRows(exporter.SheetEndpoints)
	if err != nil {
		return err
	}
	for i, row := range rows {
		for _, cell := range row {
			for _, keyword := range bannedKeywords {
				if strings.Contains(cell, keyword) {
					return fmt.Errorf("row %d contains %q: %s", i+1, keyword, cell)
				}
			}
		}
	}
	return nil
}

// validateDTOFields checks that the document carries the shop DTO properties.
func validateDTOFields(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	expectedFields := []string{"OrderDto:", "order_status:", "createdAt:", "UserDto:"}
	var missing []string
	for _, field := range expectedFields {
		if !strings.Contains(string(content), field) {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("document lacks DTO fields %v", missing)
	}
	return nil
}
