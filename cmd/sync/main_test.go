package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	apperrors "github.com/yourusername/membership-api/internal/pkg/errors"
)

// MockLockerForRunner реализует repository.CacheRepository
type MockLockerForRunner struct {
	mock.Mock
}

func (m *MockLockerForRunner) Set(key string, value interface{}, expiration time.Duration) error {
	args := m.Called(key, value, expiration)
	return args.Error(0)
}

func (m *MockLockerForRunner) Get(key string) (string, error) {
	args := m.Called(key)
	return args.String(0), args.Error(1)
}

func (m *MockLockerForRunner) Delete(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

func (m *MockLockerForRunner) AcquireLock(key string, ttl time.Duration) (bool, error) {
	args := m.Called(key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockLockerForRunner) ReleaseLock(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

// fakeRecorder копит исходы запусков заданий
type fakeRecorder struct {
	outcomes map[string]string
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{outcomes: make(map[string]string)}
}

func (r *fakeRecorder) RecordJobRun(job, outcome string)                      { r.outcomes[job] = outcome }
func (r *fakeRecorder) RecordSyncOperation(outcome string)                    {}
func (r *fakeRecorder) RecordOutboxDepth(pending, abandoned int64)            {}
func (r *fakeRecorder) RecordTeamSyncChanges(team string, added, removed int) {}

func TestJobRunner_WithLock_BusyLockSkips(t *testing.T) {
	// Занятый замок: задание не запускается, процесс не падает
	locker := new(MockLockerForRunner)
	recorder := newFakeRecorder()
	runner := &jobRunner{locks: locker, metrics: recorder, lockTTL: 5 * time.Minute}

	locker.On("AcquireLock", "membership:job-lock:team-sync", 5*time.Minute).Return(false, nil)

	jobCalled := false
	err := runner.withLock(context.Background(), jobTeamSync, func(ctx context.Context) error {
		jobCalled = true
		return nil
	})

	require.ErrorIs(t, err, apperrors.ErrLocked)
	assert.False(t, jobCalled, "Задание не выполняется под чужим замком")
	assert.Equal(t, "skipped", recorder.outcomes[jobTeamSync])
	locker.AssertNotCalled(t, "ReleaseLock", mock.Anything)

	// Для процесса пропуск — штатный исход
	require.NoError(t, runner.runOne(context.Background(), jobTeamSync, func(ctx context.Context) error {
		return nil
	}))
}

func TestJobRunner_WithLock_CancelledJobRecordedAsCancelled(t *testing.T) {
	// Задание, вернувшее ошибку контекста, — отмена, а не сбой
	locker := new(MockLockerForRunner)
	recorder := newFakeRecorder()
	runner := &jobRunner{locks: locker, metrics: recorder, lockTTL: 5 * time.Minute}

	locker.On("AcquireLock", "membership:job-lock:drain-outbox", 5*time.Minute).Return(true, nil)
	locker.On("ReleaseLock", "membership:job-lock:drain-outbox").Return(nil)

	ctx, cancel := context.WithCancel(context.Background())
	err := runner.withLock(ctx, jobDrainOutbox, func(ctx context.Context) error {
		cancel()
		return ctx.Err()
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "cancelled", recorder.outcomes[jobDrainOutbox])
	locker.AssertExpectations(t)
}

func TestJobRunner_WithLock_FailureRecorded(t *testing.T) {
	locker := new(MockLockerForRunner)
	recorder := newFakeRecorder()
	runner := &jobRunner{locks: locker, metrics: recorder, lockTTL: 5 * time.Minute}

	locker.On("AcquireLock", "membership:job-lock:compliance", 5*time.Minute).Return(true, nil)
	locker.On("ReleaseLock", "membership:job-lock:compliance").Return(nil)

	err := runner.withLock(context.Background(), jobCompliance, func(ctx context.Context) error {
		return assert.AnError
	})

	require.Error(t, err)
	assert.Equal(t, "failure", recorder.outcomes[jobCompliance])
}
