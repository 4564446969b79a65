package logger

import "fmt"

// Diagnostic is a non-fatal finding attached to a partial result.
type Diagnostic struct {
	Level   Level
	File    string
	Message string
}

func (d Diagnostic) String() string {
	if d.File == "" {
		return fmt.Sprintf("[%s] %s", d.Level, d.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", d.Level, d.File, d.Message)
}

// Diagnostics collects findings produced while walking a source tree.
type Diagnostics []Diagnostic

// Add appends a formatted diagnostic.
func (d *Diagnostics) Add(level Level, file, format string, args ...interface{}) {
	*d = append(*d, Diagnostic{Level: level, File: file, Message: fmt.Sprintf(format, args...)})
}

// Append merges other into d.
func (d *Diagnostics) Append(other Diagnostics) {
	*d = append(*d, other...)
}

// Count returns how many diagnostics are at or above level.
func (d Diagnostics) Count(level Level) int {
	n := 0
	for _, diag := range d {
		if diag.Level >= level {
			n++
		}
	}
	return n
}

// Messages returns the plain message text of every diagnostic.
func (d Diagnostics) Messages() []string {
	out := make([]string, 0, len(d))
	for _, diag := range d {
		out = append(out, diag.String())
	}
	return out
}

// Flush writes every diagnostic through the global logger.
func (d Diagnostics) Flush() {
	for _, diag := range d {
		switch diag.Level {
		case LevelDebug:
			Debug("%s", diag.String())
		case LevelInfo:
			Info("%s", diag.String())
		case LevelWarn:
			Warn("%s", diag.String())
		default:
			Error("%s", diag.String())
		}
	}
}
