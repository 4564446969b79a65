package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
)

// Phase is a stage of the generate pipeline.
type Phase string

const (
	PhaseScanning   Phase = "Scanning"
	PhaseExtracting Phase = "Extracting"
	PhaseEnriching  Phase = "Enriching"
	PhaseWriting    Phase = "Writing"
)

// GeneratePhases is the phase order shown by the generate command.
var GeneratePhases = []Phase{PhaseScanning, PhaseExtracting, PhaseEnriching, PhaseWriting}

// ProgressBar wraps the progressbar library with our styling
type ProgressBar struct {
	bar   *progressbar.ProgressBar
	phase Phase
}

// NewProgressBar creates a progress bar for a phase on stdout
func NewProgressBar(phase Phase, total int) *ProgressBar {
	return NewProgressBarWithOutput(phase, total, os.Stdout)
}

// NewProgressBarWithOutput creates a progress bar writing to output
func NewProgressBarWithOutput(phase Phase, total int, output io.Writer) *ProgressBar {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(output),
		progressbar.OptionSetDescription(fmt.Sprintf("[%s]", phase)),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetPredictTime(true),
	)
	return &ProgressBar{bar: bar, phase: phase}
}

// Increment advances the bar by one
func (pb *ProgressBar) Increment() {
	_ = pb.bar.Add(1)
}

// SetTotal changes the expected count once it is known
func (pb *ProgressBar) SetTotal(total int) {
	pb.bar.ChangeMax(total)
}

// Describe appends detail to the phase label
func (pb *ProgressBar) Describe(detail string) {
	pb.bar.Describe(fmt.Sprintf("[%s] %s", pb.phase, detail))
}

// Finish completes the bar
func (pb *ProgressBar) Finish() {
	_ = pb.bar.Finish()
}

// Pipeline shows one bar per phase, in order.
type Pipeline struct {
	phases  []Phase
	current int
	bar     *ProgressBar
	output  io.Writer
}

// NewPipeline creates a pipeline on stdout
func NewPipeline(phases []Phase) *Pipeline {
	return NewPipelineWithOutput(phases, os.Stdout)
}

// NewPipelineWithOutput creates a pipeline writing to output. A nil output
// disables drawing; bars still accept updates.
func NewPipelineWithOutput(phases []Phase, output io.Writer) *Pipeline {
	if output == nil {
		output = io.Discard
	}
	return &Pipeline{phases: phases, current: -1, output: output}
}

// Disable stops drawing for the remaining phases
func (p *Pipeline) Disable() {
	p.output = io.Discard
}

// NextPhase finishes the running bar and starts the next phase. It returns
// nil once every phase has run.
func (p *Pipeline) NextPhase(total int) *ProgressBar {
	p.Finish()
	p.current++
	if p.current >= len(p.phases) {
		return nil
	}
	p.bar = NewProgressBarWithOutput(p.phases[p.current], total, p.output)
	return p.bar
}

// Current returns the running phase, or "" before the first phase.
func (p *Pipeline) Current() Phase {
	if p.current < 0 || p.current >= len(p.phases) {
		return ""
	}
	return p.phases[p.current]
}

// Finish completes the running bar
func (p *Pipeline) Finish() {
	if p.bar != nil {
		p.bar.Finish()
		p.bar = nil
	}
}

// PrintSummary writes a closing line
func (p *Pipeline) PrintSummary(message string) {
	if p.output != io.Discard {
		fmt.Fprintln(p.output, message)
	}
}
