package redisclient

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestLockKey(t *testing.T) {
	id := uuid.MustParse("7f0c5a2e-1c1b-4a53-9d49-7f5a0b9a1c11")
	assert.Equal(t, "lock:appointment:7f0c5a2e-1c1b-4a53-9d49-7f5a0b9a1c11", LockKey("appointment", id))
}

func TestNoopLocker_PropagatesError(t *testing.T) {
	want := errors.New("boom")
	called := false

	err := NoopLocker{}.WithLock(context.Background(), "appointment", uuid.New(), func(ctx context.Context) error {
		called = true
		return want
	})

	assert.True(t, called)
	assert.ErrorIs(t, err, want)
}
