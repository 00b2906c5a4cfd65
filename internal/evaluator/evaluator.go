// Package evaluator scores a generated response against a fixed rubric.
//
// Scoring is fully deterministic: identical inputs always yield the same
// breakdown, with no model call and no randomness. The rubric has four
// dimensions with a fixed point budget that sums to 10:
//
//	relevance            0-3  query terms covered by the response
//	accuracy             0-3  reference-answer and focus-area terms covered
//	completeness         0-2  response length saturation
//	context integration  0-2  history terms carried into the response
//
// The aggregate is the plain sum of the sub-scores.
package evaluator

import (
	"fmt"
	"math"
	"strings"

	"github.com/giantswarm/rag-compare/internal/history"
	"github.com/giantswarm/rag-compare/internal/scenario"
)

// Point budgets per rubric dimension.
const (
	RelevancePoints    = 3.0
	AccuracyPoints     = 3.0
	CompletenessPoints = 2.0
	ContextPoints      = 2.0

	// MaxScore is the aggregate ceiling.
	MaxScore = RelevancePoints + AccuracyPoints + CompletenessPoints + ContextPoints
)

// completenessSaturation is the significant-word count at which the
// completeness dimension reaches full credit.
const completenessSaturation = 100

// Input is one (query, response, context) triple to score.
type Input struct {
	Query    string
	Response string
	// Reference is the scenario's ground-truth answer, if any.
	Reference string
	// FocusAreas are keywords the answer is expected to cover.
	FocusAreas []string
	// History is the scenario's prior conversation.
	History []scenario.Turn
}

// Breakdown is the scored rubric for one response.
type Breakdown struct {
	Relevance          float64 `json:"relevance"`
	Accuracy           float64 `json:"accuracy"`
	Completeness       float64 `json:"completeness"`
	ContextIntegration float64 `json:"context_integration"`
	Aggregate          float64 `json:"aggregate"`
}

// EvaluationError reports invalid evaluator input.
type EvaluationError struct {
	Message string
}

func (e *EvaluationError) Error() string {
	return "evaluation failed: " + e.Message
}

// Evaluate scores one response. An empty or whitespace-only response gets
// the minimum (all-zero) breakdown rather than an error.
func Evaluate(in Input) (*Breakdown, error) {
	if strings.TrimSpace(in.Query) == "" {
		return nil, &EvaluationError{Message: "query must not be empty"}
	}

	if strings.TrimSpace(in.Response) == "" {
		return &Breakdown{}, nil
	}

	responseTerms := termSet(in.Response)

	relevanceFrac := coverage(history.Terms(in.Query), responseTerms)
	relevance := round2(relevanceFrac * RelevancePoints)

	accuracy := round2(accuracyFraction(in, relevanceFrac, responseTerms) * AccuracyPoints)

	wordCount := len(history.Terms(in.Response))
	completeness := round2(math.Min(float64(wordCount)/completenessSaturation, 1) * CompletenessPoints)

	context := round2(contextFraction(in.History, responseTerms) * ContextPoints)

	return &Breakdown{
		Relevance:          relevance,
		Accuracy:           accuracy,
		Completeness:       completeness,
		ContextIntegration: context,
		Aggregate:          round2(relevance + accuracy + completeness + context),
	}, nil
}

// accuracyFraction measures coverage of the reference answer and the focus
// areas. Scenarios without either fall back to the relevance fraction, so
// the dimension never rewards or punishes missing ground truth.
func accuracyFraction(in Input, relevanceFrac float64, responseTerms map[string]bool) float64 {
	var refText strings.Builder
	refText.WriteString(in.Reference)
	for _, f := range in.FocusAreas {
		refText.WriteString(" ")
		refText.WriteString(f)
	}

	refTerms := history.Terms(refText.String())
	if len(refTerms) == 0 {
		return relevanceFrac
	}
	return coverage(refTerms, responseTerms)
}

// contextFraction measures how much of the prior conversation the response
// reuses. Scenarios without history get full credit: the dimension is not
// applicable, and penalizing it would skew cross-strategy comparison.
func contextFraction(turns []scenario.Turn, responseTerms map[string]bool) float64 {
	if len(turns) == 0 {
		return 1
	}

	var historyText strings.Builder
	for _, t := range turns {
		historyText.WriteString(t.Text)
		historyText.WriteString(" ")
	}

	historyTerms := history.Terms(historyText.String())
	if len(historyTerms) == 0 {
		return 1
	}
	return coverage(historyTerms, responseTerms)
}

// coverage returns the fraction of distinct wanted terms present in got.
func coverage(wanted []string, got map[string]bool) float64 {
	distinct := make(map[string]bool, len(wanted))
	for _, w := range wanted {
		distinct[w] = true
	}
	if len(distinct) == 0 {
		return 0
	}

	found := 0
	for w := range distinct {
		if got[w] {
			found++
		}
	}
	return float64(found) / float64(len(distinct))
}

func termSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range history.Terms(text) {
		set[w] = true
	}
	return set
}

// String renders the breakdown for log lines and summaries.
func (b *Breakdown) String() string {
	return fmt.Sprintf("%.2f/10 (rel %.2f, acc %.2f, comp %.2f, ctx %.2f)",
		b.Aggregate, b.Relevance, b.Accuracy, b.Completeness, b.ContextIntegration)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
