package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"spec-synth/internal/model"
)

// Config represents the application configuration
type Config struct {
	Project    ProjectConfig    `mapstructure:"project"`
	Analysis   AnalysisConfig   `mapstructure:"analysis"`
	Generation GenerationConfig `mapstructure:"generation"`
	NLP        NLPConfig        `mapstructure:"nlp"`
	Output     OutputConfig     `mapstructure:"output"`
	Server     ServerConfig     `mapstructure:"server"`
	Heuristics Heuristics       `mapstructure:"heuristics"`
}

// ProjectConfig holds project-specific settings
type ProjectConfig struct {
	RootDir  string   `mapstructure:"root_dir"` // Root directory to analyze
	Name     string   `mapstructure:"name"`     // Project name recorded in the document info
	Encoding []string `mapstructure:"encoding"` // Encoding hints tried after UTF-8 (e.g. ["euc-kr", "windows-1252"])
}

// AnalysisConfig holds source walking settings
type AnalysisConfig struct {
	ExcludeDirs []string `mapstructure:"exclude_dirs"` // Glob patterns of directories to skip
	SourceExt   string   `mapstructure:"source_ext"`   // Source file extension
}

// GenerationConfig controls the produced document
type GenerationConfig struct {
	Level    string `mapstructure:"level"`    // short | medium | long
	Title    string `mapstructure:"title"`    // info.title
	Version  string `mapstructure:"version"`  // info.version
	Validate bool   `mapstructure:"validate"` // Self-check the generated document
}

// NLPConfig points at the description generator
type NLPConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	BaseURL     string        `mapstructure:"base_url"`
	CodeTimeout time.Duration `mapstructure:"code_timeout"` // Per-endpoint budget for code-derived documents
	SpecTimeout time.Duration `mapstructure:"spec_timeout"` // Per-operation budget for spec-file enrichment
}

// OutputConfig holds output settings
type OutputConfig struct {
	Dir      string   `mapstructure:"dir"`       // Output directory
	FileName string   `mapstructure:"file_name"` // Output file name (without extension)
	Formats  []string `mapstructure:"formats"`   // yaml, json, xlsx
}

// ServerConfig holds HTTP surface settings
type ServerConfig struct {
	Addr           string   `mapstructure:"addr"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Load reads the configuration from a file or uses defaults.
// If configPath is empty, it looks for "spec-synth.yaml" in the current directory.
// A missing file is not an error. Environment variables prefixed with
// SPECSYNTH_ override file values (SPECSYNTH_NLP_BASE_URL, ...).
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("SPECSYNTH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath == "" {
		configPath = "spec-synth.yaml"
	}
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		if !isNotFound(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.normalizePaths(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Defaults are static and always decode.
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func isNotFound(err error) bool {
	if os.IsNotExist(err) {
		return true
	}
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "no such file") || strings.Contains(msg, "cannot find")
}

// setDefaults configures sensible default values
func setDefaults(v *viper.Viper) {
	v.SetDefault("project.root_dir", "./src")
	v.SetDefault("project.name", "")
	v.SetDefault("project.encoding", []string{"utf-8", "euc-kr", "windows-1252"})

	v.SetDefault("analysis.exclude_dirs", []string{
		"**/test/**",
		"**/target/**",
		"**/build/**",
		"**/out/**",
		"**/.git/**",
		"**/.svn/**",
		"**/node_modules/**",
	})
	v.SetDefault("analysis.source_ext", ".java")

	v.SetDefault("generation.level", string(model.LevelMedium))
	v.SetDefault("generation.title", "Generated API")
	v.SetDefault("generation.version", "1.0.0")
	v.SetDefault("generation.validate", false)

	v.SetDefault("nlp.enabled", true)
	v.SetDefault("nlp.base_url", "http://localhost:8000")
	v.SetDefault("nlp.code_timeout", 15*time.Second)
	v.SetDefault("nlp.spec_timeout", 10*time.Second)

	v.SetDefault("output.dir", "./output")
	v.SetDefault("output.file_name", "openapi")
	v.SetDefault("output.formats", []string{"yaml"})

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.allowed_origins", []string{"*"})

	h := DefaultHeuristics()
	v.SetDefault("heuristics.placeholder_patterns", h.PlaceholderPatterns)
	v.SetDefault("heuristics.bodyish_names", h.BodyishNames)
	v.SetDefault("heuristics.param_docs", h.ParamDocs)
	v.SetDefault("heuristics.param_doc_template", h.ParamDocTemplate)
	v.SetDefault("heuristics.summaries.root", h.Summaries.Root)
	v.SetDefault("heuristics.summaries.get_item", h.Summaries.GetItem)
	v.SetDefault("heuristics.summaries.get_collection", h.Summaries.GetCollection)
	v.SetDefault("heuristics.summaries.post", h.Summaries.Post)
	v.SetDefault("heuristics.summaries.put", h.Summaries.Put)
	v.SetDefault("heuristics.summaries.patch", h.Summaries.Patch)
	v.SetDefault("heuristics.summaries.delete", h.Summaries.Delete)
}

// normalizePaths converts relative paths to absolute paths
func (c *Config) normalizePaths() error {
	absRoot, err := filepath.Abs(c.Project.RootDir)
	if err != nil {
		return fmt.Errorf("failed to resolve root_dir: %w", err)
	}
	c.Project.RootDir = absRoot

	absOutput, err := filepath.Abs(c.Output.Dir)
	if err != nil {
		return fmt.Errorf("failed to resolve output.dir: %w", err)
	}
	c.Output.Dir = absOutput

	return nil
}

// EnsureOutputDir creates the output directory if it doesn't exist
func (c *Config) EnsureOutputDir() error {
	if err := os.MkdirAll(c.Output.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}

// ShouldExclude checks if a path relative to the project root matches exclude_dirs
func (c *Config) ShouldExclude(relPath string) bool {
	return MatchAny(relPath, c.Analysis.ExcludeDirs)
}

// OutputPath returns the output file path for the given extension
func (c *Config) OutputPath(ext string) string {
	return filepath.Join(c.Output.Dir, c.Output.FileName+"."+strings.TrimPrefix(ext, "."))
}

// DetailLevel parses generation.level.
func (c *Config) DetailLevel() (model.DetailLevel, error) {
	return model.ParseDetailLevel(c.Generation.Level)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if _, err := c.DetailLevel(); err != nil {
		return err
	}
	if c.Output.FileName == "" {
		return fmt.Errorf("output.file_name cannot be empty")
	}
	if c.NLP.Enabled && c.NLP.BaseURL == "" {
		return fmt.Errorf("nlp.base_url is required when nlp.enabled is true")
	}
	if c.NLP.CodeTimeout <= 0 || c.NLP.SpecTimeout <= 0 {
		return fmt.Errorf("nlp timeouts must be positive")
	}
	if _, err := c.Heuristics.Compile(); err != nil {
		return err
	}
	return nil
}

// MatchAny reports whether path matches any of the glob patterns.
// Patterns use forward slashes; "**" spans directories and "*" stays within one segment.
func MatchAny(path string, patterns []string) bool {
	for _, p := range patterns {
		if matchPathPattern(path, p) {
			return true
		}
	}
	return false
}

func matchPathPattern(path, pattern string) bool {
	path = strings.Trim(filepath.ToSlash(path), "/")
	pattern = strings.Trim(filepath.ToSlash(pattern), "/")
	return matchSegments(strings.Split(path, "/"), strings.Split(pattern, "/"))
}

func matchSegments(path, pattern []string) bool {
	for len(pattern) > 0 {
		if pattern[0] == "**" {
			rest := pattern[1:]
			if len(rest) == 0 {
				return true
			}
			for i := 0; i <= len(path); i++ {
				if matchSegments(path[i:], rest) {
					return true
				}
			}
			return false
		}
		if len(path) == 0 {
			return false
		}
		if ok, _ := filepath.Match(pattern[0], path[0]); !ok {
			return false
		}
		path, pattern = path[1:], pattern[1:]
	}
	return len(path) == 0
}

// Print displays the current configuration
func (c *Config) Print() {
	fmt.Println("=== Spec Synth Configuration ===")
	fmt.Printf("Project Root:     %s\n", c.Project.RootDir)
	fmt.Printf("Encoding Hints:   %v\n", c.Project.Encoding)
	fmt.Printf("Exclude Dirs:     %v\n", c.Analysis.ExcludeDirs)
	fmt.Printf("Detail Level:     %s\n", c.Generation.Level)
	fmt.Printf("NLP Service:      %s (enabled=%v)\n", c.NLP.BaseURL, c.NLP.Enabled)
	fmt.Printf("Output Directory: %s\n", c.Output.Dir)
	fmt.Printf("Output Formats:   %v\n", c.Output.Formats)
	fmt.Println("================================")
}
