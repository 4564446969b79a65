package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"spec-synth/internal/config"
	"spec-synth/internal/exporter"
	"spec-synth/internal/logger"
	"spec-synth/internal/pipeline"
	"spec-synth/internal/ui"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate an OpenAPI document from a project's sources",
	Long: `Scans the project for Spring controllers, DTOs and security configuration
and writes the reconstructed document in every requested format. When the
sources contain no endpoint, an openapi.* or swagger.* file at the project
root is enriched instead.`,
	RunE: runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.String("root", "", "Project source directory (overrides project.root_dir)")
	f.String("level", "", "Description detail: short, medium or long")
	f.String("format", "", "Comma-separated output formats (yaml,json,xlsx)")
	f.StringP("output", "o", "", "Override output directory from config")
	f.Bool("no-nlp", false, "Skip description generation")
	f.Bool("validate", false, "Validate the generated document")
	f.BoolP("quiet", "q", false, "Hide the banner and progress bars")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	quiet, _ := cmd.Flags().GetBool("quiet")
	console := io.Writer(os.Stdout)
	if quiet {
		console = io.Discard
	}
	printBanner(console)

	cfg, err := loadConfig(os.Stdout, true)
	if err != nil {
		return err
	}
	if err := applyGenerateFlags(cmd, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if verbose {
		cfg.Print()
	}

	progress := ui.NewPipelineWithOutput(ui.GeneratePhases, console)
	out, err := pipeline.Generate(cmd.Context(), cfg, pipeline.Options{
		Describer: pipeline.NewDescriber(cfg),
		Progress:  progress,
	})
	if errors.Is(err, pipeline.ErrNoEndpoints) {
		return &exitError{code: 2, msg: "no endpoints found in " + cfg.Project.RootDir}
	}
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}
	out.Diagnostics.Flush()

	var written []string
	if out.FromSpecFile() {
		written, err = writeSpecFile(cfg, out)
	} else {
		bar := progress.NextPhase(1)
		written, err = exporter.ExportAll(&exporter.Artifact{
			Document: out.Document,
			Security: out.Security,
			Enriched: out.Enriched,
		}, cfg)
		if bar != nil {
			bar.Increment()
		}
	}
	progress.Finish()
	if err != nil {
		return err
	}

	if out.FromSpecFile() {
		progress.PrintSummary(fmt.Sprintf("✅ Enriched %s (%d operations described)", out.SpecFile, out.Enriched))
	} else {
		progress.PrintSummary(fmt.Sprintf("✅ %d endpoints from %d files, %d described, %d warnings",
			out.Endpoints, out.Files, out.Enriched, out.Diagnostics.Count(logger.LevelWarn)))
	}
	for _, path := range written {
		progress.PrintSummary("   " + path)
	}
	if len(out.ValidationErrors) > 0 {
		logger.Warn("Generated document has %d validation findings", len(out.ValidationErrors))
	}
	return nil
}

func applyGenerateFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if root, _ := flags.GetString("root"); root != "" {
		abs, err := filepath.Abs(root)
		if err != nil {
			return fmt.Errorf("failed to resolve --root: %w", err)
		}
		cfg.Project.RootDir = abs
	}
	if level, _ := flags.GetString("level"); level != "" {
		cfg.Generation.Level = level
	}
	if formats, _ := flags.GetString("format"); formats != "" {
		cfg.Output.Formats = strings.Split(formats, ",")
	}
	if dir, _ := flags.GetString("output"); dir != "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return fmt.Errorf("failed to resolve --output: %w", err)
		}
		cfg.Output.Dir = abs
	}
	if noNLP, _ := flags.GetBool("no-nlp"); noNLP {
		cfg.NLP.Enabled = false
	}
	if validate, _ := flags.GetBool("validate"); validate {
		cfg.Generation.Validate = true
	}
	return nil
}

// writeSpecFile stores an enriched pre-existing specification. It is always
// YAML, whatever formats are configured.
func writeSpecFile(cfg *config.Config, out *pipeline.Outcome) ([]string, error) {
	if err := cfg.EnsureOutputDir(); err != nil {
		return nil, err
	}
	path := cfg.OutputPath("yaml")
	if err := os.WriteFile(path, out.SpecYAML, 0644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", path, err)
	}
	logger.Info("Wrote %s", path)
	return []string{path}, nil
}
