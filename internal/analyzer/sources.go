package analyzer

import (
	"path/filepath"

	"spec-synth/internal/javaparser"
	"spec-synth/internal/logger"
)

// Options controls how a source tree is read.
type Options struct {
	ExcludeDirs []string
	Encodings   []string
	Ext         string
	// OnFile is called once per scanned file, parsed or not.
	OnFile func(path string)
}

// SourceTree is the parsed view of a project, shared by the extractors.
type SourceTree struct {
	Root        string
	Units       []*javaparser.CompilationUnit
	Files       int
	Diagnostics logger.Diagnostics
}

// ParseTree scans root and parses every source file. A file that cannot be
// read or parsed is skipped with a diagnostic; the walk never aborts on a
// single bad file. A missing root yields an empty tree.
func ParseTree(root string, opts Options) (*SourceTree, error) {
	tree := &SourceTree{Root: root}

	files, err := ScanDirectory(root, opts.ExcludeDirs, opts.Ext)
	if err != nil {
		return nil, err
	}
	if files == nil {
		tree.Diagnostics.Add(logger.LevelWarn, root, "source root does not exist")
	}

	for _, path := range files {
		tree.Files++
		if opts.OnFile != nil {
			opts.OnFile(path)
		}

		rel := relativeTo(root, path)
		src, err := ReadSource(path, opts.Encodings)
		if err != nil {
			logger.LogSourceError(rel, err, "read")
			tree.Diagnostics.Add(logger.LevelWarn, rel, "skipped: %v", err)
			continue
		}

		cu, err := javaparser.ParseFile(rel, src)
		if err != nil {
			logger.LogSourceError(rel, err, "parse")
			tree.Diagnostics.Add(logger.LevelWarn, rel, "skipped: %v", err)
			continue
		}
		tree.Units = append(tree.Units, cu)
	}

	return tree, nil
}

func relativeTo(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
