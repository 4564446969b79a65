package test

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

// buildBinary compiles cmd/spec-synth into a temporary directory.
func buildBinary(t *testing.T) string {
	t.Helper()
	rootDir, _ := filepath.Abs("..")
	cmdDir := filepath.Join(rootDir, "cmd", "spec-synth")

	binaryName := "spec-synth-test"
	if runtime.GOOS == "windows" {
		binaryName += ".exe"
	}
	binaryPath := filepath.Join(t.TempDir(), binaryName)

	t.Logf("Building application from %s...", cmdDir)
	buildCmd := exec.Command("go", "build", "-o", binaryPath, ".")
	buildCmd.Dir = cmdDir
	buildCmd.Stdout = os.Stdout
	buildCmd.Stderr = os.Stderr
	if err := buildCmd.Run(); err != nil {
		t.Fatalf("Failed to build application: %v", err)
	}
	return binaryPath
}

func TestSystemIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("builds the binary")
	}
	rootDir, _ := filepath.Abs("..")
	binaryPath := buildBinary(t)
	outputDir := t.TempDir()

	testConfigContent := `
project:
  root_dir: "./testdata/shop"
  name: "shop"

nlp:
  enabled: false

generation:
  title: "Shop API"
  validate: true

output:
  dir: "` + filepath.ToSlash(outputDir) + `"
  file_name: "e2e_report"
`
	testConfigPath := filepath.Join(t.TempDir(), "spec-synth.yaml")
	if err := os.WriteFile(testConfigPath, []byte(testConfigContent), 0644); err != nil {
		t.Fatalf("Failed to create test config: %v", err)
	}

	t.Log("Running application binary...")
	runCmd := exec.Command(binaryPath, "generate", "-c", testConfigPath, "--format", "yaml,json,xlsx", "-q")
	runCmd.Dir = rootDir
	runCmd.Stdout = os.Stdout
	runCmd.Stderr = os.Stderr
	if err := runCmd.Run(); err != nil {
		t.Fatalf("Application run failed: %v", err)
	}

	for _, f := range []string{"e2e_report.yaml", "e2e_report.json", "e2e_report.xlsx", "spec_synth.log"} {
		path := filepath.Join(outputDir, f)
		info, err := os.Stat(path)
		if os.IsNotExist(err) {
			t.Errorf("Expected output file missing: %s", f)
		} else if info.Size() == 0 {
			t.Errorf("Output file is empty: %s", f)
		} else {
			t.Logf("✅ Verified output: %s (%d bytes)", f, info.Size())
		}
	}

	yamlOut, err := os.ReadFile(filepath.Join(outputDir, "e2e_report.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"title: Shop API", "/api/orders/{id}:", "bearerAuth:", "x-project-name: shop"} {
		if !strings.Contains(string(yamlOut), want) {
			t.Errorf("YAML output lacks %q", want)
		}
	}

	verifyNoEmptyMethodCells(t, filepath.Join(outputDir, "e2e_report.xlsx"))
}

// verifyNoEmptyMethodCells checks that every endpoint row names its method
// and path.
func verifyNoEmptyMethodCells(t *testing.T, excelPath string) {
	t.Helper()
	f, err := excelize.OpenFile(excelPath)
	if err != nil {
		t.Fatalf("open %s: %v", excelPath, err)
	}
	defer f.Close()

	rows, err := f.GetRows("Endpoints")
	if err != nil {
		t.Fatalf("read Endpoints sheet: %v", err)
	}
	if len(rows) != 9 {
		t.Fatalf("expected header plus 8 endpoint rows, got %d", len(rows))
	}
	for i, row := range rows[1:] {
		if len(row) < 2 || row[0] == "" || row[1] == "" {
			t.Errorf("row %d has an empty Method or Path cell: %v", i+2, row)
		}
	}
}

func TestNoEndpointsExitCode(t *testing.T) {
	if testing.Short() {
		t.Skip("builds the binary")
	}
	binaryPath := buildBinary(t)
	empty := t.TempDir()

	runCmd := exec.Command(binaryPath, "generate", "--root", empty, "--output", t.TempDir(), "--no-nlp", "-q")
	runCmd.Dir = empty
	output, err := runCmd.CombinedOutput()

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected a failing exit, got %v\n%s", err, output)
	}
	if exitErr.ExitCode() != 2 {
		t.Errorf("exit code = %d, want 2\n%s", exitErr.ExitCode(), output)
	}
	if !strings.Contains(string(output), "no endpoints found") {
		t.Errorf("missing message in output:\n%s", output)
	}
}

func TestEnrichCommand(t *testing.T) {
	if testing.Short() {
		t.Skip("builds the binary")
	}
	rootDir, _ := filepath.Abs("..")
	binaryPath := buildBinary(t)
	outPath := filepath.Join(t.TempDir(), "enriched.yaml")

	cfgPath := filepath.Join(t.TempDir(), "spec-synth.yaml")
	if err := os.WriteFile(cfgPath, []byte("nlp:\n  enabled: false\n"), 0644); err != nil {
		t.Fatal(err)
	}

	runCmd := exec.Command(binaryPath, "enrich", "-c", cfgPath, "--spec", "testdata/specfile/openapi.yaml", "--out", outPath)
	runCmd.Dir = rootDir
	if output, err := runCmd.CombinedOutput(); err != nil {
		t.Fatalf("enrich failed: %v\n%s", err, output)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "getPet") {
		t.Errorf("enriched document lost its operations:\n%s", data)
	}
}
