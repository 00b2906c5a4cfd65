package evaluator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giantswarm/rag-compare/internal/scenario"
)

func TestEvaluateDeterminism(t *testing.T) {
	in := Input{
		Query:     "What are symptoms of flu?",
		Response:  "Flu symptoms include fever, cough, muscle aches and fatigue.",
		Reference: "Fever, chills, cough, muscle aches and fatigue.",
		History: []scenario.Turn{
			{Role: "user", Text: "I feel unwell"},
		},
	}

	first, err := Evaluate(in)
	require.NoError(t, err)
	second, err := Evaluate(in)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestEvaluateEmptyResponseGetsMinimumScore(t *testing.T) {
	for _, response := range []string{"", "   ", "\n\t"} {
		b, err := Evaluate(Input{Query: "What are symptoms of flu?", Response: response})
		require.NoError(t, err)
		assert.Equal(t, 0.0, b.Aggregate)
		assert.Equal(t, 0.0, b.Relevance)
		assert.Equal(t, 0.0, b.ContextIntegration)
	}
}

func TestEvaluateAggregateWithinBounds(t *testing.T) {
	inputs := []Input{
		{Query: "What are symptoms of flu?", Response: "ok"},
		{
			Query:      "What are symptoms of flu?",
			Response:   "Flu symptoms include sudden fever, chills, dry cough, sore throat, muscle aches, headache and fatigue lasting several days.",
			Reference:  "fever cough muscle aches fatigue",
			FocusAreas: []string{"fever", "cough"},
		},
	}

	for _, in := range inputs {
		b, err := Evaluate(in)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, b.Aggregate, 0.0)
		assert.LessOrEqual(t, b.Aggregate, MaxScore)
	}
}

func TestEvaluateAggregateIsSumOfSubScores(t *testing.T) {
	b, err := Evaluate(Input{
		Query:     "What are symptoms of flu?",
		Response:  "Flu symptoms include fever, cough and fatigue.",
		Reference: "fever cough fatigue muscle aches",
	})
	require.NoError(t, err)
	assert.InDelta(t, b.Relevance+b.Accuracy+b.Completeness+b.ContextIntegration, b.Aggregate, 0.001)
}

func TestEvaluateRelevanceRewardsQueryCoverage(t *testing.T) {
	onTopic, err := Evaluate(Input{
		Query:    "symptoms influenza fever",
		Response: "Influenza symptoms include fever and chills.",
	})
	require.NoError(t, err)

	offTopic, err := Evaluate(Input{
		Query:    "symptoms influenza fever",
		Response: "Bonds provide steady income in a portfolio.",
	})
	require.NoError(t, err)

	assert.Greater(t, onTopic.Relevance, offTopic.Relevance)
}

func TestEvaluateAccuracyUsesReferenceTerms(t *testing.T) {
	b, err := Evaluate(Input{
		Query:     "exit code 137",
		Response:  "Exit code 137 means the container received SIGKILL, usually an OOM kill. Raise the memory limit.",
		Reference: "SIGKILL OOM memory limit",
	})
	require.NoError(t, err)
	assert.Equal(t, AccuracyPoints, b.Accuracy)
}

func TestEvaluateAccuracyFallsBackToRelevance(t *testing.T) {
	// No reference and no focus areas: the accuracy fraction mirrors relevance.
	b, err := Evaluate(Input{
		Query:    "symptoms influenza",
		Response: "Influenza symptoms include fever.",
	})
	require.NoError(t, err)
	assert.InDelta(t, b.Relevance/RelevancePoints, b.Accuracy/AccuracyPoints, 0.001)
}

func TestEvaluateNoHistoryGetsFullContextCredit(t *testing.T) {
	b, err := Evaluate(Input{
		Query:    "What are symptoms of flu?",
		Response: "Fever and cough.",
	})
	require.NoError(t, err)
	assert.Equal(t, ContextPoints, b.ContextIntegration)
}

func TestEvaluateContextIntegrationRewardsHistoryReuse(t *testing.T) {
	turns := []scenario.Turn{
		{Role: "user", Text: "my kubernetes pod crashed"},
		{Role: "assistant", Text: "check the container logs"},
	}

	integrated, err := Evaluate(Input{
		Query:    "what next",
		Response: "Since the kubernetes pod crashed, inspect the container logs for errors.",
		History:  turns,
	})
	require.NoError(t, err)

	ignored, err := Evaluate(Input{
		Query:    "what next",
		Response: "Try restarting and see what happens.",
		History:  turns,
	})
	require.NoError(t, err)

	assert.Greater(t, integrated.ContextIntegration, ignored.ContextIntegration)
}

func TestEvaluateEmptyQueryFails(t *testing.T) {
	_, err := Evaluate(Input{Query: "  ", Response: "anything"})
	require.Error(t, err)

	var evalErr *EvaluationError
	assert.True(t, errors.As(err, &evalErr))
}

func TestBreakdownString(t *testing.T) {
	b := &Breakdown{Relevance: 2, Accuracy: 3, Completeness: 1, ContextIntegration: 2, Aggregate: 8}
	assert.Contains(t, b.String(), "8.00/10")
}
