package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"spec-synth/internal/assembler"
	"spec-synth/internal/model"
	"spec-synth/internal/pipeline"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Add generated descriptions to an existing OpenAPI document",
	RunE:  runEnrich,
}

func init() {
	f := enrichCmd.Flags()
	f.String("spec", "", "Specification file (YAML or JSON)")
	f.String("level", "", "Description detail: short, medium or long")
	f.String("out", "", "Output file (default stdout)")
	enrichCmd.MarkFlagRequired("spec")
	rootCmd.AddCommand(enrichCmd)
}

func runEnrich(cmd *cobra.Command, args []string) error {
	// stdout may carry the document, so logs go to stderr
	cfg, err := loadConfig(os.Stderr, false)
	if err != nil {
		return err
	}

	specPath, _ := cmd.Flags().GetString("spec")
	levelName, _ := cmd.Flags().GetString("level")
	if levelName == "" {
		levelName = cfg.Generation.Level
	}
	level, err := model.ParseDetailLevel(levelName)
	if err != nil {
		return err
	}

	res, err := assembler.EnrichSpecFile(cmd.Context(), specPath, pipeline.NewDescriber(cfg), assembler.SpecOptions{
		Level:   level,
		Timeout: cfg.NLP.SpecTimeout,
	})
	var parseErr *assembler.SpecParseError
	if errors.As(err, &parseErr) {
		for _, msg := range parseErr.Messages {
			fmt.Fprintf(os.Stderr, "  - %s\n", msg)
		}
		return fmt.Errorf("%s is not a valid specification", specPath)
	}
	if err != nil {
		return err
	}
	res.Diagnostics.Flush()

	outPath, _ := cmd.Flags().GetString("out")
	if outPath == "" {
		_, err = os.Stdout.Write(res.YAML)
		return err
	}
	if err := os.WriteFile(outPath, res.YAML, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outPath, err)
	}
	fmt.Fprintf(os.Stderr, "✅ %d of %d operations described -> %s\n", res.Enriched, res.Operations, outPath)
	return nil
}
