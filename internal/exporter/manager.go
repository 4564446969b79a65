package exporter

import (
	"fmt"
	"strings"

	"spec-synth/internal/config"
	"spec-synth/internal/logger"
)

// GetExporters returns the exporters for the requested formats. Unknown
// names are reported and skipped; duplicates collapse.
func GetExporters(formats []string) []Exporter {
	exporters := []Exporter{}
	seen := make(map[string]bool)

	for _, fmtStr := range formats {
		fmtStr = strings.ToLower(strings.TrimSpace(fmtStr))
		if fmtStr == "" {
			continue
		}

		var e Exporter
		switch fmtStr {
		case "yaml", "yml":
			e = NewYAMLExporter()
		case "json":
			e = NewJSONExporter()
		case "excel", "xlsx":
			e = NewExcelExporter()
		default:
			logger.Warn("Unknown output format %q ignored", fmtStr)
			continue
		}
		if seen[e.Extension()] {
			continue
		}
		seen[e.Extension()] = true
		exporters = append(exporters, e)
	}

	return exporters
}

// ExportAll writes the artifact in every configured format and returns the
// written paths.
func ExportAll(a *Artifact, cfg *config.Config) ([]string, error) {
	exporters := GetExporters(cfg.Output.Formats)
	if len(exporters) == 0 {
		return nil, fmt.Errorf("no valid output format in %v", cfg.Output.Formats)
	}
	if err := cfg.EnsureOutputDir(); err != nil {
		return nil, err
	}

	var written []string
	for _, e := range exporters {
		path := cfg.OutputPath(e.Extension())
		if err := e.Export(a, path); err != nil {
			return written, fmt.Errorf("%s export failed: %w", e.Extension(), err)
		}
		logger.Info("Wrote %s", path)
		written = append(written, path)
	}
	return written, nil
}
