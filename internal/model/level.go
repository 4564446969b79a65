package model

import (
	"fmt"
	"strings"
)

// DetailLevel selects which generated description variant is preferred.
type DetailLevel string

const (
	LevelShort  DetailLevel = "short"
	LevelMedium DetailLevel = "medium"
	LevelLong   DetailLevel = "long"
)

// ParseDetailLevel accepts short, medium or long. Blank input means medium.
func ParseDetailLevel(s string) (DetailLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "short":
		return LevelShort, nil
	case "", "medium":
		return LevelMedium, nil
	case "long":
		return LevelLong, nil
	}
	return "", fmt.Errorf("unknown detail level %q (want short, medium or long)", s)
}
