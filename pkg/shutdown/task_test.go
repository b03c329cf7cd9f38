package shutdown

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpawn_ReturnsError(t *testing.T) {
	want := errors.New("nope")
	task := Spawn(context.Background(), "t", func(ctx context.Context) error { return want })

	assert.ErrorIs(t, task.Wait(), want)
	assert.Equal(t, "t", task.Name())
	assert.Greater(t, int64(task.Duration()), int64(-1))
}

func TestSpawn_RecoversPanic(t *testing.T) {
	task := Spawn(context.Background(), "p", func(ctx context.Context) error { panic("kaboom") })

	err := task.Wait()
	assert.ErrorIs(t, err, ErrTaskPanicked)
	assert.Contains(t, err.Error(), "kaboom")
}

func TestFailure_IgnoresCancellation(t *testing.T) {
	assert.NoError(t, failure(context.Canceled))
	assert.NoError(t, failure(nil))
	assert.Error(t, failure(errors.New("x")))
}
