package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlowError_Error(t *testing.T) {
	err := NewError(MERGE_TIMEOUT, "merge timed out")
	assert.Equal(t, "[MERGE_TIMEOUT] merge timed out", err.Error())

	wrapped := WrapError(CONFIG_LOAD_FAILED, "failed to read config", fmt.Errorf("no such file"))
	assert.Equal(t, "[CONFIG_LOAD_FAILED] failed to read config: no such file", wrapped.Error())
}

func TestFlowError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("underlying")
	err := WrapError(CONFIG_PARSE_FAILED, "parse failed", cause)

	require.ErrorIs(t, err, cause)
	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestFlowError_IsMatchesByCode(t *testing.T) {
	err := WrapError(MERGE_TIMEOUT, "merge abc timed out", fmt.Errorf("deadline"))

	assert.True(t, errors.Is(err, NewError(MERGE_TIMEOUT, "")))
	assert.False(t, errors.Is(err, NewError(MERGE_AWAIT_CANCELLED, "")))
}

func TestFlowError_As(t *testing.T) {
	var flowErr *FlowError
	err := fmt.Errorf("outer: %w", NewError(NODE_CONFIG_INVALID, "missing section"))

	require.True(t, errors.As(err, &flowErr))
	assert.Equal(t, NODE_CONFIG_INVALID, flowErr.Code)
}
