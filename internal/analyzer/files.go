package analyzer

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"

	"spec-synth/internal/config"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ScanDirectory walks root and returns every file with the given extension,
// sorted by relative path. Directories matching an exclude pattern are
// skipped. A missing root yields no files and no error.
func ScanDirectory(root string, excludePatterns []string, ext string) ([]string, error) {
	if ext == "" {
		ext = ".java"
	}
	info, err := os.Stat(root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan failed: %s is not a directory", root)
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		relPath, _ := filepath.Rel(root, path)
		relPath = filepath.ToSlash(relPath)

		if d.IsDir() {
			if d.Name() == ".git" || d.Name() == ".svn" {
				return filepath.SkipDir
			}
			if relPath != "." && config.MatchAny(relPath, excludePatterns) {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.EqualFold(filepath.Ext(path), ext) && !config.MatchAny(relPath, excludePatterns) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}

	sort.Strings(files)
	return files, nil
}

// ReadSource reads a source file and decodes it to UTF-8. Valid UTF-8 is
// returned as is; otherwise each encoding hint is tried in order and EUC-KR
// is the last resort. Comments are preserved.
func ReadSource(path string, hints []string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return Decode(raw, hints), nil
}

// Decode converts raw bytes to a UTF-8 string using the encoding hints.
func Decode(raw []byte, hints []string) string {
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if utf8.Valid(raw) {
		return string(raw)
	}

	for _, hint := range hints {
		enc, err := htmlindex.Get(hint)
		if err != nil || enc == encoding.Nop {
			continue
		}
		if name, _ := htmlindex.Name(enc); name == "utf-8" {
			continue
		}
		if out, ok := decodeWith(enc, raw); ok {
			return out
		}
	}

	if out, ok := decodeWith(korean.EUCKR, raw); ok {
		return out
	}
	return string(raw)
}

func decodeWith(enc encoding.Encoding, raw []byte) (string, bool) {
	decoded, _, err := transform.Bytes(enc.NewDecoder(), raw)
	if err != nil || !utf8.Valid(decoded) {
		return "", false
	}
	return string(decoded), true
}
