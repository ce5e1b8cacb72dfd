package goroutine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_CollectsErrors(t *testing.T) {
	// Arrange
	m := NewManager(4)
	boom := errors.New("smtp: connection refused")
	var ran atomic.Int32

	// Act
	m.Go(context.Background(), func(context.Context) error {
		ran.Add(1)
		return boom
	})
	m.Go(context.Background(), func(context.Context) error {
		ran.Add(1)
		return nil
	})
	err := m.Wait()

	// Assert
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int32(2), ran.Load())
}

func TestManager_RecoversPanic(t *testing.T) {
	m := NewManager(1)

	m.Go(context.Background(), func(context.Context) error { panic("nil map write") })

	require.NoError(t, m.Wait())
}

func TestManager_SkipsCanceledContext(t *testing.T) {
	m := NewManager(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false

	m.Go(ctx, func(context.Context) error {
		called = true
		return nil
	})

	require.NoError(t, m.Wait())
	assert.False(t, called)
}

func TestManager_DropsWhenFull(t *testing.T) {
	m := NewManager(1)
	release := make(chan struct{})
	started := make(chan struct{})
	var ran atomic.Int32

	m.Go(context.Background(), func(context.Context) error {
		close(started)
		<-release
		ran.Add(1)
		return nil
	})
	<-started
	m.Go(context.Background(), func(context.Context) error {
		ran.Add(1)
		return nil
	})
	close(release)

	require.NoError(t, m.Wait())
	assert.Equal(t, int32(1), ran.Load())
}

func TestManager_ClosedAfterWait(t *testing.T) {
	m := NewManager(1)
	require.NoError(t, m.Wait())

	m.Go(context.Background(), func(context.Context) error {
		t.Fatal("must not run after Wait")
		return nil
	})

	require.NoError(t, m.Wait())
}

func TestManager_Nil(t *testing.T) {
	var m *Manager

	m.Go(context.Background(), func(context.Context) error { return nil })

	assert.NoError(t, m.Wait())
}
