package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/giantswarm/rag-compare/internal/config"
	"github.com/giantswarm/rag-compare/internal/runner"
	"github.com/giantswarm/rag-compare/internal/scenario"
	"github.com/giantswarm/rag-compare/internal/strategy"
)

func newRunCmd() *cobra.Command {
	var (
		strategyNames []string
		model         string
		endpoint      string
		apiKey        string
		searchAPIKey  string
		temperature   float64
		topK          int
		maxRetries    int
		concurrency   int
		timeout       time.Duration
		pairTimeout   time.Duration
		outputDir     string
		scenariosDir  string
	)

	cmd := &cobra.Command{
		Use:   "run <scenario-set>",
		Short: "Run a scenario set under the selected prompting strategies",
		Long: `Execute every scenario of a set under each selected strategy, score the
responses against the deterministic rubric, and persist the results.

Results are written to <output-dir>/<run-id>/results.json.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			set, err := scenario.Load(args[0], scenariosDir)
			if err != nil {
				return fmt.Errorf("failed to load scenario set: %w", err)
			}

			strategies, err := strategy.Parse(strategyNames)
			if err != nil {
				return err
			}

			cfg := config.FromEnv()
			if model != "" {
				cfg.Model = model
			}
			if endpoint != "" {
				cfg.OpenAIBaseURL = endpoint
			}
			if apiKey != "" {
				cfg.OpenAIAPIKey = apiKey
			}
			if searchAPIKey != "" {
				cfg.TavilyAPIKey = searchAPIKey
			}
			if cmd.Flags().Changed("temperature") {
				cfg.Temperature = temperature
			}
			if topK > 0 {
				cfg.TopK = topK
			}

			needSearch := false
			for _, s := range strategies {
				def, _ := strategy.Get(s)
				if def.UsesRetrieval {
					needSearch = true
				}
			}
			if err := cfg.Validate(needSearch); err != nil {
				return err
			}

			// The flag's 0 means "no retries"; the runner reads that as -1.
			if maxRetries <= 0 {
				maxRetries = -1
			}

			r := runner.NewRunner(newLLMClient(cfg), newSearchClient(cfg), outputDir, runner.Config{
				Model:       cfg.Model,
				Temperature: cfg.Temperature,
				MaxTokens:   cfg.MaxTokens,
				TopK:        cfg.TopK,
				MaxRetries:  maxRetries,
				PairTimeout: pairTimeout,
				Concurrency: concurrency,
			})
			total := len(set.Scenarios) * len(strategies)
			r.SetProgressFunc(func(scenarioID string, strat strategy.Strategy, idx, _ int) {
				fmt.Printf("\r  [%s/%s] Processing pair %d/%d...", scenarioID, strat, idx, total)
			})

			fmt.Printf("Scenario set: %s\n", set.Name)
			fmt.Printf("Description: %s\n", set.Description)
			fmt.Printf("Scenarios: %d\n", len(set.Scenarios))
			fmt.Printf("Model: %s (temperature: %.1f)\n", cfg.Model, cfg.Temperature)
			fmt.Printf("Strategies:\n")
			for i, s := range strategies {
				fmt.Printf("  %d. %s\n", i+1, s)
			}
			fmt.Println()

			run, err := r.Run(ctx, set, strategies)
			if err != nil {
				return err
			}

			fmt.Printf("\n\nExperiment completed.\n")
			fmt.Printf("Run ID: %s\n", run.ID)
			fmt.Printf("Duration: %.1fs\n", run.DurationSeconds)
			fmt.Printf("Results: %s\n\n", run.ResultsFile)
			fmt.Printf("%-20s %8s %10s %12s\n", "STRATEGY", "PAIRS", "FAILURES", "MEAN SCORE")
			for _, s := range run.Summarize() {
				fmt.Printf("%-20s %8d %10d %12.2f\n", s.Strategy, s.Pairs, s.Failures, s.MeanScore)
			}

			slog.Info("experiment complete", "run_id", run.ID)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&strategyNames, "strategies", nil, "Strategies to run (default: all four)")
	cmd.Flags().StringVar(&model, "model", "", "Model name (default: "+config.DefaultModel+")")
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "LLM API endpoint URL")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key (or set OPENAI_API_KEY)")
	cmd.Flags().StringVar(&searchAPIKey, "search-api-key", "", "Search API key (or set TAVILY_API_KEY)")
	cmd.Flags().Float64Var(&temperature, "temperature", config.DefaultTemperature, "Temperature for generation")
	cmd.Flags().IntVar(&topK, "top-k", 0, "Retrieval hits per RAG pair (default: 5)")
	cmd.Flags().IntVar(&maxRetries, "max-retries", runner.DefaultMaxRetries, "Retries per generation on rate limits and transient faults (0 disables)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 1, "Number of pairs executed in parallel")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Overall timeout for the run (e.g. 30m). 0 means no timeout")
	cmd.Flags().DurationVar(&pairTimeout, "pair-timeout", 0, "Timeout per scenario/strategy pair. 0 means no timeout")
	cmd.Flags().StringVar(&outputDir, "output-dir", "results", "Directory for run results")
	cmd.Flags().StringVar(&scenariosDir, "scenarios-dir", "", "External scenario sets directory")

	return cmd
}
