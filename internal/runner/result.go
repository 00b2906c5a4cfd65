package runner

import (
	"time"

	"github.com/giantswarm/rag-compare/internal/evaluator"
	"github.com/giantswarm/rag-compare/internal/llm"
	"github.com/giantswarm/rag-compare/internal/strategy"
)

// Result is the outcome of one (scenario, strategy) pair. Created once,
// never mutated afterwards.
type Result struct {
	ScenarioID string            `json:"scenario_id"`
	Domain     string            `json:"domain"`
	Strategy   strategy.Strategy `json:"strategy"`

	Query string `json:"query"`
	// EffectiveQuery is the history-augmented form of Query; equal to
	// Query when the strategy ignores history.
	EffectiveQuery string `json:"effective_query,omitempty"`

	// SearchQuery and SearchHits record the retrieval call for RAG
	// strategies. The hits themselves are ephemeral and not persisted.
	SearchQuery string `json:"search_query,omitempty"`
	SearchHits  int    `json:"search_hits,omitempty"`

	Response  string    `json:"response,omitempty"`
	Usage     llm.Usage `json:"usage"`
	LatencyMS int64     `json:"latency_ms"`

	// Score is nil when the pair failed or the rubric could not be applied.
	Score *evaluator.Breakdown `json:"score,omitempty"`
	// Error distinguishes failed pairs from low-scoring successful ones.
	Error string `json:"error,omitempty"`
}

// Failed reports whether the pair recorded an error.
func (r Result) Failed() bool { return r.Error != "" }

// Run is the durable record of one experiment execution.
type Run struct {
	ID              string              `json:"id"`
	Set             string              `json:"set"`
	Model           string              `json:"model"`
	Strategies      []strategy.Strategy `json:"strategies"`
	ScenarioCount   int                 `json:"scenario_count"`
	Timestamp       time.Time           `json:"timestamp"`
	DurationSeconds float64             `json:"duration_seconds"`

	// Results is ordered scenario-major, then by strategy execution order,
	// regardless of completion order.
	Results []Result `json:"results"`

	// ResultsFile is where the run was persisted. Not serialized; the
	// document should not reference its own path.
	ResultsFile string `json:"-"`
}

// StrategySummary aggregates one strategy's results across a run.
type StrategySummary struct {
	Strategy  strategy.Strategy
	Pairs     int
	Failures  int
	MeanScore float64 // mean aggregate over scored pairs; 0 when none
}

// Summarize computes per-strategy statistics in strategy order.
func (r *Run) Summarize() []StrategySummary {
	summaries := make([]StrategySummary, 0, len(r.Strategies))
	for _, s := range r.Strategies {
		sum := StrategySummary{Strategy: s}
		var total float64
		var scored int
		for _, res := range r.Results {
			if res.Strategy != s {
				continue
			}
			sum.Pairs++
			if res.Failed() {
				sum.Failures++
			}
			if res.Score != nil {
				total += res.Score.Aggregate
				scored++
			}
		}
		if scored > 0 {
			sum.MeanScore = total / float64(scored)
		}
		summaries = append(summaries, sum)
	}
	return summaries
}
