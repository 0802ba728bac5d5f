package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAggregateLoopResults_Collecting(t *testing.T) {
	iterations := []IterationResult{
		NewIterationSuccess(0, "a"),
		NewIterationFailure(1, "boom"),
		NewIterationSuccess(2, "c"),
	}

	summary := AggregateLoopResults(iterations, LoopResultsConfig{Collect: true})

	assert.Equal(t, 3, summary.TotalIterations)
	assert.Equal(t, 2, summary.SuccessCount)
	assert.Equal(t, 1, summary.FailureCount)
	assert.Equal(t, []any{"a", nil, "c"}, summary.Results)
	assert.False(t, summary.AllSucceeded)
}

func TestAggregateLoopResults_NotCollecting(t *testing.T) {
	iterations := []IterationResult{
		NewIterationSuccess(0, "a"),
		NewIterationSuccess(1, "b"),
	}

	summary := AggregateLoopResults(iterations, LoopResultsConfig{})

	assert.Equal(t, 2, summary.TotalIterations)
	assert.Empty(t, summary.Results)
	assert.True(t, summary.AllSucceeded)
}

func TestAggregateLoopResults_EmptyInput(t *testing.T) {
	summary := AggregateLoopResults(nil, LoopResultsConfig{Collect: true})

	assert.Equal(t, 0, summary.TotalIterations)
	assert.Equal(t, 0, summary.SuccessCount)
	assert.Equal(t, 0, summary.FailureCount)
	assert.Empty(t, summary.Results)
	assert.False(t, summary.AllSucceeded, "an empty loop has nothing that succeeded")
}

func TestAggregateLoopResults_CountsPartition(t *testing.T) {
	cases := [][]bool{
		{},
		{true},
		{false},
		{true, false, true, true},
		{false, false, false},
	}

	for _, successes := range cases {
		iterations := make([]IterationResult, len(successes))
		for i, ok := range successes {
			if ok {
				iterations[i] = NewIterationSuccess(i, i)
			} else {
				iterations[i] = NewIterationFailure(i, "err")
			}
		}

		for _, collect := range []bool{true, false} {
			summary := AggregateLoopResults(iterations, LoopResultsConfig{Collect: collect})

			assert.Equal(t, summary.TotalIterations, summary.SuccessCount+summary.FailureCount)
			if collect {
				assert.Len(t, summary.Results, summary.TotalIterations)
			} else {
				assert.Empty(t, summary.Results)
			}
			assert.Equal(t,
				summary.FailureCount == 0 && summary.TotalIterations > 0,
				summary.AllSucceeded)
		}
	}
}

func TestIterationFailure_HasNoValue(t *testing.T) {
	failure := NewIterationFailure(3, "timeout")

	assert.False(t, failure.Success)
	assert.Nil(t, failure.Value)
	assert.Equal(t, "timeout", failure.Error)
}

func TestAggregationKey(t *testing.T) {
	assert.Equal(t, "custom", AggregationKey(LoopResultsConfig{AggregationKey: "custom"}, "results"))
	assert.Equal(t, "results", AggregationKey(LoopResultsConfig{}, "results"))
}
