package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(InvalidInput, "bad inventory")
	require.Error(t, err)
	assert.Equal(t, "bad inventory", err.Error())

	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, InvalidInput, e.Code())
}

func TestWrap(t *testing.T) {
	base := fmt.Errorf("connection refused")
	err := Wrap(base, EvaluationFailed, "evaluation transport failed")

	assert.Equal(t, "evaluation transport failed: connection refused", err.Error())
	assert.ErrorIs(t, err, base)

	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, EvaluationFailed, e.Code())
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, Unknown, "ignored"))
	assert.Nil(t, WithFields(nil, Fields{"k": "v"}))
}

func TestWithFields(t *testing.T) {
	err := WithFields(New(InvariantViolation, "front decomposition broke"), Fields{"generation": 7})

	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, InvariantViolation, e.Code())
	assert.Equal(t, 7, e.Fields()["generation"])
	assert.Contains(t, err.Error(), "generation=7")
}

func TestWithFieldsMerges(t *testing.T) {
	err := WithFields(New(ValidationFailed, "bad goal"), Fields{"goal": "g1"})
	err = WithFields(err, Fields{"dependency": "g0"})

	var e *Error
	require.ErrorAs(t, err, &e)
	fields := e.Fields()
	assert.Equal(t, "g1", fields["goal"])
	assert.Equal(t, "g0", fields["dependency"])
	assert.Equal(t, ValidationFailed, e.Code())
}

func TestWithFieldsWrapsForeignError(t *testing.T) {
	base := fmt.Errorf("disk full")
	err := WithFields(base, Fields{"path": "/tmp"})

	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, Unknown, e.Code())
	assert.ErrorIs(t, err, base)
}

func TestFieldsReturnsCopy(t *testing.T) {
	err := WithFields(New(Unknown, "x"), Fields{"k": 1})
	var e *Error
	require.ErrorAs(t, err, &e)

	e.Fields()["k"] = 2
	assert.Equal(t, 1, e.Fields()["k"])
}

func TestIsMatchesByCode(t *testing.T) {
	err := Wrap(New(EvaluationFatal, "subject crashed"), InvalidState, "run aborted")

	assert.True(t, stderrors.Is(err, New(EvaluationFatal, "")))
	assert.True(t, stderrors.Is(err, New(InvalidState, "")))
	assert.False(t, stderrors.Is(err, New(Canceled, "")))
}

func TestIsFatal(t *testing.T) {
	assert.True(t, IsFatal(New(EvaluationFatal, "boom")))
	assert.True(t, IsFatal(Wrap(New(EvaluationFatal, "boom"), EvaluationFailed, "wrapped")))
	assert.False(t, IsFatal(New(EvaluationFailed, "transient")))
	assert.False(t, IsFatal(fmt.Errorf("plain")))
	assert.False(t, IsFatal(nil))
}

func TestIsInvariant(t *testing.T) {
	assert.True(t, IsInvariant(New(InvariantViolation, "broken front")))
	assert.False(t, IsInvariant(New(InvalidState, "not running")))
}

func TestCheckContext(t *testing.T) {
	assert.NoError(t, CheckContext(context.Background(), "search"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := CheckContext(ctx, "search")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, Canceled, e.Code())
	assert.Contains(t, err.Error(), "search canceled")
}
