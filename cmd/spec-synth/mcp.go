package main

import (
	"os"

	"github.com/spf13/cobra"

	"spec-synth/internal/logger"
	"spec-synth/internal/mcptools"
	"spec-synth/internal/pipeline"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the generation tools over MCP (stdio)",
	RunE: func(cmd *cobra.Command, args []string) error {
		// stdout belongs to the protocol
		cfg, err := loadConfig(os.Stderr, false)
		if err != nil {
			return err
		}
		logger.Info("MCP server ready (nlp=%v)", cfg.NLP.Enabled)
		return mcptools.Serve(cfg, pipeline.NewDescriber(cfg), Version)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
