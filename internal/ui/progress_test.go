package ui

import (
	"bytes"
	"strings"
	"testing"
)

func TestPipelinePhases(t *testing.T) {
	var out bytes.Buffer
	p := NewPipelineWithOutput(GeneratePhases, &out)

	if got := p.Current(); got != "" {
		t.Fatalf("Current() before start = %q, want empty", got)
	}
	for i, want := range GeneratePhases {
		bar := p.NextPhase(2)
		if bar == nil {
			t.Fatalf("NextPhase() #%d returned nil", i)
		}
		if got := p.Current(); got != want {
			t.Errorf("Current() = %q, want %q", got, want)
		}
		bar.Increment()
		bar.Increment()
	}
	if bar := p.NextPhase(1); bar != nil {
		t.Errorf("NextPhase() past the last phase should return nil")
	}
	p.PrintSummary("done")
	if !strings.Contains(out.String(), "done") {
		t.Errorf("summary not written: %q", out.String())
	}
}

func TestDisabledPipelineWritesNothing(t *testing.T) {
	var out bytes.Buffer
	p := NewPipelineWithOutput(GeneratePhases, &out)
	p.Disable()

	bar := p.NextPhase(3)
	bar.SetTotal(5)
	bar.Describe("OrderController")
	bar.Increment()
	p.Finish()
	p.PrintSummary("done")

	if out.Len() != 0 {
		t.Errorf("disabled pipeline wrote %q", out.String())
	}
}
