// Package readability estimates how easy a text is to read from its mean
// sentence length.  The score is a coarse bucket, not a continuous metric.
package readability

import "github.com/turtacn/LegalEase-Intelligence/internal/intelligence/textnorm"

// Score buckets.
const (
	ScoreNone             = 0
	ScoreDifficult        = 30
	ScoreSomewhatReadable = 50
	ScoreReadable         = 70
	ScoreVeryReadable     = 90
)

// Bucket upper bounds on average words per sentence, inclusive.
const (
	veryReadableMax     = 15
	readableMax         = 20
	somewhatReadableMax = 25
)

// AverageSentenceLength returns words per sentence, where words are
// whitespace-separated tokens and sentences are runs of . ! or ?.  ok is
// false when text is empty or contains no sentence terminator.
func AverageSentenceLength(text string) (avg float64, ok bool) {
	if text == "" {
		return 0, false
	}
	sentences := textnorm.CountSentenceBreaks(text)
	if sentences == 0 {
		return 0, false
	}
	return float64(textnorm.WordCount(text)) / float64(sentences), true
}

// Score returns 0, 30, 50, 70 or 90.  Higher is more readable; 0 means the
// text could not be scored.
func Score(text string) int {
	avg, ok := AverageSentenceLength(text)
	if !ok {
		return ScoreNone
	}
	switch {
	case avg <= veryReadableMax:
		return ScoreVeryReadable
	case avg <= readableMax:
		return ScoreReadable
	case avg <= somewhatReadableMax:
		return ScoreSomewhatReadable
	default:
		return ScoreDifficult
	}
}

// Label describes a score for end users.
func Label(score int) string {
	switch {
	case score >= ScoreVeryReadable:
		return "Very readable"
	case score >= ScoreReadable:
		return "Readable"
	case score >= ScoreSomewhatReadable:
		return "Somewhat readable"
	case score > ScoreNone:
		return "Difficult to read"
	default:
		return "Not scored"
	}
}

// Comparison holds the scores of a text before and after simplification.
type Comparison struct {
	Before int `json:"before" yaml:"before"`
	After  int `json:"after" yaml:"after"`
}

// Compare scores both texts.
func Compare(before, after string) Comparison {
	return Comparison{Before: Score(before), After: Score(after)}
}

// Improvement is After minus Before.
func (c Comparison) Improvement() int {
	return c.After - c.Before
}
