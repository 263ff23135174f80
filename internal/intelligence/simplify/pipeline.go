// Package simplify rewrites legal prose into plainer language.
//
// A Pipeline is a fixed sequence of stages.  Each stage is a total
// string-to-string function that consumes the previous stage's full output;
// no stage fails on malformed input, a pattern that does not match is simply a
// no-op.  Pipelines hold no mutable state and are safe for concurrent use.
package simplify

import "time"

// Stage is one named rewriting step.
type Stage struct {
	Name  string
	apply func(string) string
}

// Apply runs the stage over text.
func (s Stage) Apply(text string) string {
	if s.apply == nil {
		return text
	}
	return s.apply(text)
}

// NewStage wraps fn as a named stage.
func NewStage(name string, fn func(string) string) Stage {
	return Stage{Name: name, apply: fn}
}

// RewriteStage builds a stage that applies rewrites in order.
func RewriteStage(name string, rewrites ...Rewrite) Stage {
	rs := append([]Rewrite(nil), rewrites...)
	return NewStage(name, func(text string) string { return applyAll(rs, text) })
}

// Built-in stages, in pipeline order.
var (
	// TermSubstitution replaces verbose legal phrases with plain equivalents.
	TermSubstitution = RewriteStage("term_substitution", phraseRewrites...)

	// SentenceStructure rewrites passive constructions, then conditional
	// phrases.
	SentenceStructure = RewriteStage("sentence_structure", structureRewrites...)

	// WordSubstitution replaces complex single words with simple ones.
	WordSubstitution = RewriteStage("word_substitution", wordRewrites...)

	// Readability splits long sentences and tidies punctuation.
	Readability = NewStage("readability", improveReadability)
)

// DefaultStages returns the built-in stages in order.
func DefaultStages() []Stage {
	return []Stage{TermSubstitution, SentenceStructure, WordSubstitution, Readability}
}

// Pipeline is an ordered list of stages.
type Pipeline struct {
	stages []Stage
}

// New returns a pipeline running stages in the given order.  With no
// arguments it runs DefaultStages.
func New(stages ...Stage) *Pipeline {
	if len(stages) == 0 {
		stages = DefaultStages()
	}
	return &Pipeline{stages: append([]Stage(nil), stages...)}
}

var defaultPipeline = New()

// Simplify runs the default pipeline over text.
func Simplify(text string) string {
	return defaultPipeline.Simplify(text)
}

// Simplify runs every stage over text.  Empty input returns "".
func (p *Pipeline) Simplify(text string) string {
	if text == "" {
		return ""
	}
	for _, s := range p.stages {
		text = s.Apply(text)
	}
	return text
}

// StageNames lists the stage names in run order.
func (p *Pipeline) StageNames() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name
	}
	return names
}

// Step records the output of one stage.
type Step struct {
	Stage    string        `json:"stage" yaml:"stage"`
	Output   string        `json:"output" yaml:"output"`
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// Trace runs the pipeline and returns every intermediate buffer.  The last
// step's Output equals Simplify(text).  Empty input yields no steps.
func (p *Pipeline) Trace(text string) []Step {
	if text == "" {
		return nil
	}
	steps := make([]Step, 0, len(p.stages))
	for _, s := range p.stages {
		start := time.Now()
		text = s.Apply(text)
		steps = append(steps, Step{Stage: s.Name, Output: text, Duration: time.Since(start)})
	}
	return steps
}
