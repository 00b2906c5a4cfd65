// Package judge re-scores a finished run with an LLM acting as judge. It
// complements the deterministic rubric: the rubric is reproducible, the
// judge catches qualities lexical overlap cannot see. Judging always runs
// at temperature zero and is repeated to expose scoring variance.
package judge

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/giantswarm/rag-compare/internal/llm"
	"github.com/giantswarm/rag-compare/internal/runner"
)

// DefaultJudgeModel is the default model used for LLM-as-judge scoring.
const DefaultJudgeModel = "gpt-4o"

// Config holds judging configuration.
type Config struct {
	Model       string
	Repetitions int
}

// RunScore is the parsed result of a single judging pass.
type RunScore struct {
	Score     *float64 `json:"score"`
	RawOutput string   `json:"raw_output"`
	ParseErr  string   `json:"parse_error,omitempty"`
}

// ScoreOutput is the full structured judging output.
type ScoreOutput struct {
	Metadata ScoreMetadata `json:"metadata"`
	Runs     []RunScore    `json:"runs"`
	Summary  Summary       `json:"summary"`
}

// ScoreMetadata describes the judging run.
type ScoreMetadata struct {
	Timestamp   string `json:"timestamp"`
	ResultsFile string `json:"results_file"`
	JudgeModel  string `json:"judge_model"`
	Repetitions int    `json:"repetitions"`
}

// Summary holds aggregate statistics over the judging passes.
type Summary struct {
	Mean          *float64 `json:"mean"`
	Min           *float64 `json:"min"`
	Max           *float64 `json:"max"`
	Variance      *float64 `json:"variance"`
	AllRunsParsed bool     `json:"all_runs_parsed"`
}

// Judge scores experiment runs using an LLM as judge.
type Judge struct {
	client llm.Client
	config Config
}

// New creates a Judge with defaults applied.
func New(client llm.Client, config Config) *Judge {
	if config.Repetitions <= 0 {
		config.Repetitions = 3
	}
	if config.Model == "" {
		config.Model = DefaultJudgeModel
	}
	return &Judge{client: client, config: config}
}

// JudgeFile loads a results document and judges it.
func (j *Judge) JudgeFile(ctx context.Context, resultsFile string) (*ScoreOutput, error) {
	run, err := runner.LoadRun(resultsFile)
	if err != nil {
		return nil, err
	}
	return j.Judge(ctx, run)
}

// Judge evaluates every response in the run, repeating the whole pass
// Repetitions times. Individual pass failures are recorded, not fatal.
func (j *Judge) Judge(ctx context.Context, run *runner.Run) (*ScoreOutput, error) {
	content := FormatRun(run)
	if content == "" {
		return nil, fmt.Errorf("run %s has no responses to judge", run.ID)
	}

	output := &ScoreOutput{
		Metadata: ScoreMetadata{
			Timestamp:   time.Now().Format(time.RFC3339),
			ResultsFile: run.ResultsFile,
			JudgeModel:  j.config.Model,
			Repetitions: j.config.Repetitions,
		},
		Runs: make([]RunScore, 0, j.config.Repetitions),
	}

	for i := 0; i < j.config.Repetitions; i++ {
		slog.Info("judging pass",
			"pass", i+1,
			"total", j.config.Repetitions,
		)

		resultText, err := j.evaluate(ctx, content)
		if err != nil {
			slog.Error("judging pass failed", "pass", i+1, "error", err)
			output.Runs = append(output.Runs, RunScore{
				ParseErr: err.Error(),
			})
			continue
		}

		parsed := parseScore(resultText)
		output.Runs = append(output.Runs, parsed)

		if parsed.Score != nil {
			slog.Info("judge score parsed", "pass", i+1, "score", *parsed.Score)
		}
	}

	output.Summary = calculateStatistics(output.Runs)

	return output, nil
}

// WriteScoreFile writes the judging output as JSON next to the results file.
func WriteScoreFile(output *ScoreOutput, resultsFile string) (string, error) {
	scoresFile := strings.TrimSuffix(resultsFile, ".json") + "_scores.json"

	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal scores: %w", err)
	}

	if err := os.WriteFile(scoresFile, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write scores file: %w", err)
	}

	return scoresFile, nil
}

// FormatRun renders the judgable portion of a run as plain text. Failed
// pairs carry no response and are skipped.
func FormatRun(run *runner.Run) string {
	var b strings.Builder
	n := 0
	for _, res := range run.Results {
		if res.Response == "" {
			continue
		}
		n++
		fmt.Fprintf(&b, "NO. %d - %s / %s\n", n, res.ScenarioID, res.Strategy)
		fmt.Fprintf(&b, "QUESTION: %s\n", res.Query)
		fmt.Fprintf(&b, "RESPONSE: %s\n", res.Response)
		b.WriteString("---\n")
	}
	return b.String()
}

func (j *Judge) evaluate(ctx context.Context, content string) (string, error) {
	req := llm.ChatRequest{
		Model:         j.config.Model,
		SystemMessage: EvaluationPrompt,
		Messages:      llm.UserMessage(content),
	}

	// Try streaming first.
	stream, err := j.client.ChatCompletionStream(ctx, req)
	if err == nil {
		result, streamErr := llm.CollectStream(stream)
		if streamErr == nil {
			return result, nil
		}
		slog.Warn("streaming evaluation failed, falling back to non-streaming", "error", streamErr)
	} else {
		slog.Debug("streaming not available, using non-streaming", "error", err)
	}

	resp, err := j.client.ChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("evaluation failed: %w", err)
	}

	return resp.Content, nil
}

var scorePattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s+out\s+of\s+10`)

func parseScore(text string) RunScore {
	matches := scorePattern.FindStringSubmatch(text)
	if matches == nil {
		return RunScore{
			RawOutput: text,
			ParseErr:  "Could not parse score from output",
		}
	}

	score, err := strconv.ParseFloat(matches[1], 64)
	if err != nil || score < 0 || score > 10 {
		return RunScore{
			RawOutput: text,
			ParseErr:  fmt.Sprintf("Score %q out of range", matches[1]),
		}
	}

	return RunScore{
		Score:     &score,
		RawOutput: text,
	}
}

func calculateStatistics(runs []RunScore) Summary {
	var scores []float64
	for _, r := range runs {
		if r.Score != nil {
			scores = append(scores, *r.Score)
		}
	}

	if len(scores) == 0 {
		return Summary{AllRunsParsed: false}
	}

	mean := meanFloat(scores)
	minS := slices.Min(scores)
	maxS := slices.Max(scores)
	variance := varianceFloat(scores, mean)

	return Summary{
		Mean:          &mean,
		Min:           &minS,
		Max:           &maxS,
		Variance:      &variance,
		AllRunsParsed: len(scores) == len(runs),
	}
}

func meanFloat(vals []float64) float64 {
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return math.Round(sum/float64(len(vals))*100) / 100
}

// varianceFloat calculates the population variance given a precomputed mean.
func varianceFloat(vals []float64, mean float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sumSquaredDiff := 0.0
	for _, v := range vals {
		diff := v - mean
		sumSquaredDiff += diff * diff
	}
	return math.Round(sumSquaredDiff/float64(len(vals))*100) / 100
}
