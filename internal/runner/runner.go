// Package runner orchestrates experiment runs: every scenario is executed
// under every selected strategy, each pair yielding exactly one Result.
// Pair failures are recorded, never propagated; the results document is
// written atomically at the end of the run.
package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/giantswarm/rag-compare/internal/evaluator"
	"github.com/giantswarm/rag-compare/internal/history"
	"github.com/giantswarm/rag-compare/internal/llm"
	"github.com/giantswarm/rag-compare/internal/scenario"
	"github.com/giantswarm/rag-compare/internal/search"
	"github.com/giantswarm/rag-compare/internal/strategy"
)

// ProgressFunc is called as each pair starts executing.
type ProgressFunc func(scenarioID string, strat strategy.Strategy, index, total int)

// DefaultMaxRetries bounds generation retries when the config does not set
// its own limit. Rate limits and transient faults get a second chance;
// anything persistent still fails the pair quickly.
const DefaultMaxRetries = 2

// Config holds per-run tunables.
type Config struct {
	Model       string
	Temperature float64
	MaxTokens   int

	// TopK bounds retrieval hits per RAG pair.
	TopK int

	// MaxRetries bounds additional generation attempts for retryable
	// failures. Zero selects DefaultMaxRetries; a negative value disables
	// retries. RetryBaseDelay seeds the exponential backoff.
	MaxRetries     int
	RetryBaseDelay time.Duration
	RetryJitter    bool

	// PairTimeout bounds one pair end to end, independent of retries.
	// Zero means no per-pair deadline.
	PairTimeout time.Duration

	// Concurrency sets the worker pool size. Values below 2 run pairs
	// sequentially; output order is identical either way.
	Concurrency int
}

// Runner executes experiment runs.
type Runner struct {
	gen       llm.Client
	search    search.Client // nil when no retrieval strategy is selected
	outputDir string
	cfg       Config
	progress  ProgressFunc
}

// NewRunner creates a runner with defaults applied to the config.
func NewRunner(gen llm.Client, searchClient search.Client, outputDir string, cfg Config) *Runner {
	if cfg.TopK <= 0 {
		cfg.TopK = 5
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = 500 * time.Millisecond
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return &Runner{
		gen:       gen,
		search:    searchClient,
		outputDir: outputDir,
		cfg:       cfg,
	}
}

// SetProgressFunc sets the progress callback.
func (r *Runner) SetProgressFunc(fn ProgressFunc) {
	r.progress = fn
}

type pairJob struct {
	index int
	scn   scenario.Scenario
	def   strategy.Definition
}

// Run executes the full scenario × strategy grid and writes the results
// document. Exactly one Result is produced per pair: a cancelled or failed
// pair is a Result with its error field populated, so
// len(Results) == len(scenarios) × len(strategies) always holds.
func (r *Runner) Run(ctx context.Context, set *scenario.Set, strategies []strategy.Strategy) (*Run, error) {
	if len(set.Scenarios) == 0 {
		return nil, fmt.Errorf("scenario set %q has no scenarios", set.Name)
	}
	if len(strategies) == 0 {
		return nil, fmt.Errorf("no strategies selected")
	}

	jobs, err := buildJobs(set.Scenarios, strategies)
	if err != nil {
		return nil, err
	}

	timestamp := time.Now()
	runID := fmt.Sprintf("%s_%s",
		strings.ReplaceAll(set.Name, " ", "_"),
		timestamp.Format("20060102-150405"),
	)

	run := &Run{
		ID:            runID,
		Set:           set.Name,
		Model:         r.cfg.Model,
		Strategies:    strategies,
		ScenarioCount: len(set.Scenarios),
		Timestamp:     timestamp,
		Results:       make([]Result, len(jobs)),
	}

	slog.Info("starting experiment run",
		"run_id", runID,
		"scenarios", len(set.Scenarios),
		"strategies", len(strategies),
		"concurrency", r.cfg.Concurrency,
	)

	// Each job owns exactly one slot of run.Results, so workers never
	// contend and completion order cannot affect output order.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Concurrency)
	for _, job := range jobs {
		if ctx.Err() != nil {
			// Stop issuing new pairs; already-submitted ones drain below.
			run.Results[job.index] = r.cancelledResult(job)
			continue
		}

		if r.progress != nil {
			r.progress(job.scn.ID, job.def.Strategy, job.index+1, len(jobs))
		}

		g.Go(func() error {
			run.Results[job.index] = r.executePair(gctx, job)
			return nil
		})
	}
	_ = g.Wait() // workers never return errors; failures live in the results

	run.DurationSeconds = time.Since(timestamp).Seconds()

	resultsFile, err := r.writeRun(run)
	if err != nil {
		return nil, err
	}
	run.ResultsFile = resultsFile

	slog.Info("experiment run complete",
		"run_id", runID,
		"pairs", len(run.Results),
		"duration", time.Since(timestamp),
	)
	return run, nil
}

// buildJobs lays out the grid scenario-major with strategies in the given
// order, validating every strategy up front.
func buildJobs(scenarios []scenario.Scenario, strategies []strategy.Strategy) ([]pairJob, error) {
	jobs := make([]pairJob, 0, len(scenarios)*len(strategies))
	for _, scn := range scenarios {
		for _, s := range strategies {
			def, err := strategy.Get(s)
			if err != nil {
				return nil, err
			}
			jobs = append(jobs, pairJob{index: len(jobs), scn: scn, def: def})
		}
	}
	return jobs, nil
}

// executePair runs one (scenario, strategy) cell end to end. All failures
// are folded into the returned Result.
func (r *Runner) executePair(ctx context.Context, job pairJob) Result {
	if r.cfg.PairTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.PairTimeout)
		defer cancel()
	}

	scn, def := job.scn, job.def
	result := Result{
		ScenarioID:     scn.ID,
		Domain:         scn.Domain,
		Strategy:       def.Strategy,
		Query:          scn.Query,
		EffectiveQuery: scn.Query,
	}
	if def.UsesHistory {
		result.EffectiveQuery = history.Augment(scn.Query, scn.History)
	}

	start := time.Now()

	var hits []search.Hit
	if def.UsesRetrieval {
		result.SearchQuery = scn.Query
		if def.UsesHistory {
			result.SearchQuery = history.RetrievalQuery(scn.Query, scn.History)
		}

		if r.search == nil {
			result.Error = "search client not configured"
			result.LatencyMS = time.Since(start).Milliseconds()
			return result
		}

		var err error
		hits, err = r.search.Search(ctx, result.SearchQuery, r.cfg.TopK)
		if err != nil {
			slog.Error("retrieval failed",
				"scenario", scn.ID,
				"strategy", def.Strategy,
				"error", err,
			)
			result.Error = err.Error()
			result.LatencyMS = time.Since(start).Milliseconds()
			return result
		}
		result.SearchHits = len(hits)
	}

	resp, err := r.generateWithRetry(ctx, llm.ChatRequest{
		Model:         r.cfg.Model,
		SystemMessage: def.SystemPrompt,
		Messages:      def.Render(scn, hits),
		Temperature:   r.cfg.Temperature,
		MaxTokens:     r.cfg.MaxTokens,
	})
	result.LatencyMS = time.Since(start).Milliseconds()
	if err != nil {
		slog.Error("generation failed",
			"scenario", scn.ID,
			"strategy", def.Strategy,
			"error", err,
		)
		result.Error = err.Error()
		return result
	}
	result.Response = resp.Content
	result.Usage = resp.Usage

	score, err := evaluator.Evaluate(evaluator.Input{
		Query:      scn.Query,
		Response:   resp.Content,
		Reference:  scn.Reference,
		FocusAreas: scn.FocusAreas,
		History:    scn.History,
	})
	if err != nil {
		// Keep the generated response; only the score is missing.
		result.Error = err.Error()
		return result
	}
	result.Score = score

	return result
}

func (r *Runner) cancelledResult(job pairJob) Result {
	return Result{
		ScenarioID:     job.scn.ID,
		Domain:         job.scn.Domain,
		Strategy:       job.def.Strategy,
		Query:          job.scn.Query,
		EffectiveQuery: job.scn.Query,
		Error:          "run cancelled before execution",
	}
}

// writeRun persists the run document atomically: marshal to a temp file in
// the run directory, then rename into place. A crashed run never leaves a
// half-written results.json.
func (r *Runner) writeRun(run *Run) (string, error) {
	runDir := filepath.Join(r.outputDir, run.ID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create run directory: %w", err)
	}

	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal run: %w", err)
	}

	tmp, err := os.CreateTemp(runDir, "results-*.json.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp results file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to write results: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to close results file: %w", err)
	}

	resultsFile := filepath.Join(runDir, "results.json")
	if err := os.Rename(tmpName, resultsFile); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to finalize results file: %w", err)
	}
	return resultsFile, nil
}

// LoadRun reads a previously written results document.
func LoadRun(path string) (*Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read results file: %w", err)
	}

	var run Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("failed to parse results file: %w", err)
	}
	run.ResultsFile = path
	return &run, nil
}
