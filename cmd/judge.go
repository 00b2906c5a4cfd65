package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/giantswarm/rag-compare/internal/config"
	"github.com/giantswarm/rag-compare/internal/judge"
	"github.com/giantswarm/rag-compare/internal/llm"
)

func newJudgeCmd() *cobra.Command {
	var (
		judgeModel    string
		judgeEndpoint string
		judgeAPIKey   string
		repetitions   int
	)

	cmd := &cobra.Command{
		Use:   "judge <results-file>",
		Short: "Re-score a results file using an LLM as judge",
		Long: `Send a run's responses to a judging LLM that rates their overall quality.
Runs multiple judging passes for confidence and writes structured JSON scores
next to the results file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resultsFile := args[0]

			if _, err := os.Stat(resultsFile); os.IsNotExist(err) {
				return fmt.Errorf("results file not found: %s", resultsFile)
			}

			cfg := config.FromEnv()
			var opts []llm.Option
			if judgeEndpoint != "" {
				opts = append(opts, llm.WithBaseURL(judgeEndpoint))
			} else if cfg.OpenAIBaseURL != "" {
				opts = append(opts, llm.WithBaseURL(cfg.OpenAIBaseURL))
			}
			if judgeAPIKey != "" {
				opts = append(opts, llm.WithAPIKey(judgeAPIKey))
			} else if cfg.OpenAIAPIKey != "" {
				opts = append(opts, llm.WithAPIKey(cfg.OpenAIAPIKey))
			}
			client := llm.NewOpenAIClient(opts...)

			j := judge.New(client, judge.Config{
				Model:       judgeModel,
				Repetitions: repetitions,
			})

			fmt.Printf("Judging: %s\n", resultsFile)
			fmt.Printf("Model: %s\n", judgeModel)
			fmt.Printf("Repetitions: %d\n", repetitions)
			fmt.Println()

			output, err := j.JudgeFile(cmd.Context(), resultsFile)
			if err != nil {
				return err
			}

			scoresFile, err := judge.WriteScoreFile(output, resultsFile)
			if err != nil {
				return err
			}

			fmt.Printf("\nScores written to: %s\n", scoresFile)

			if output.Summary.Mean != nil {
				fmt.Printf("\nSummary:\n")
				fmt.Printf("  Mean Score: %.2f/10\n", *output.Summary.Mean)
				fmt.Printf("  Range: %.2f-%.2f\n", *output.Summary.Min, *output.Summary.Max)
				fmt.Printf("  Variance: %.2f\n", *output.Summary.Variance)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&judgeModel, "judge-model", judge.DefaultJudgeModel, "Judging model name")
	cmd.Flags().StringVar(&judgeEndpoint, "judge-endpoint", "", "Judging LLM endpoint URL")
	cmd.Flags().StringVar(&judgeAPIKey, "api-key", "", "Judging API key (or set OPENAI_API_KEY)")
	cmd.Flags().IntVar(&repetitions, "repetitions", 3, "Number of judging repetitions")

	return cmd
}
