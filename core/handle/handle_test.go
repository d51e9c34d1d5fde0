package handle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleComplete(t *testing.T) {
	h := New()
	assert.Equal(t, StatusPending, h.Status())
	assert.True(t, h.IsValid())

	_, err := h.Result()
	assert.ErrorIs(t, err, ErrPending)

	h.Complete("sprite")

	assert.Equal(t, StatusSucceeded, h.Status())
	v, err := h.Result()
	require.NoError(t, err)
	assert.Equal(t, "sprite", v)
}

func TestHandleFail(t *testing.T) {
	h := New()
	h.Fail(errors.New("bucket unreachable"))

	assert.Equal(t, StatusFailed, h.Status())
	_, err := h.Result()
	assert.EqualError(t, err, "bucket unreachable")
}

func TestHandleFirstCompletionWins(t *testing.T) {
	h := New()
	h.Complete(1)
	h.Fail(errors.New("late failure"))
	h.Complete(2)

	v, err := h.Result()
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestHandleWait(t *testing.T) {
	t.Run("Completes", func(t *testing.T) {
		h := New()
		go func() {
			time.Sleep(10 * time.Millisecond)
			h.Complete("ok")
		}()
		err := h.Wait(context.Background())
		require.NoError(t, err)
		v, err := h.Result()
		require.NoError(t, err)
		assert.Equal(t, "ok", v)
	})

	t.Run("Context cancelled", func(t *testing.T) {
		h := New()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		err := h.Wait(ctx)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestHandleRelease(t *testing.T) {
	t.Run("Idempotent", func(t *testing.T) {
		calls := 0
		h := NewWithRelease(func() error {
			calls++
			return nil
		})
		h.Complete("x")

		h.Release()
		h.Release()

		assert.Equal(t, 1, calls)
		assert.False(t, h.IsValid())
	})

	t.Run("Swallows release panic", func(t *testing.T) {
		h := NewWithRelease(func() error {
			panic("already destroyed")
		})
		h.Complete("x")

		assert.NotPanics(t, func() { h.Release() })
		assert.Equal(t, StatusFailed, h.Status())
	})

	t.Run("Result after release is a soft failure", func(t *testing.T) {
		h := New()
		h.Complete("x")
		h.Release()

		_, err := h.Result()
		assert.ErrorIs(t, err, ErrInvalid)
	})
}

func TestHandleInvalidate(t *testing.T) {
	released := false
	h := NewWithRelease(func() error {
		released = true
		return nil
	})
	h.Complete("x")
	h.Invalidate()

	// Invalidated handles fail softly and never run cleanup, even through a
	// later Release call.
	assert.False(t, h.IsValid())
	assert.Equal(t, StatusFailed, h.Status())
	_, err := h.Result()
	assert.ErrorIs(t, err, ErrInvalid)

	h.Release()
	assert.False(t, released)
}

func TestCompleted(t *testing.T) {
	h := Completed(42)
	assert.Equal(t, StatusSucceeded, h.Status())
	v, err := h.Result()
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}
