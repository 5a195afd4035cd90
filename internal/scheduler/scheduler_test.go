package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/grachmannico95/shopease-be/internal/domain"
	"github.com/grachmannico95/shopease-be/internal/storage"
	"github.com/grachmannico95/shopease-be/mocks"
	"github.com/grachmannico95/shopease-be/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestRunOnce_UsesUTCToday(t *testing.T) {
	repo := mocks.NewMockRepository(t)
	repo.On("DeactivateExpiredOffers", mock.Anything, domain.NewDate(2025, 8, 2)).Return(int64(3), nil).Once()

	s := New(repo, "@every 1h", logger.NewNop())
	jakarta := time.FixedZone("WIB", 7*3600)
	s.now = fixedNow(time.Date(2025, 8, 2, 6, 30, 0, 0, jakarta))

	assert.Equal(t, int64(3), s.RunOnce(context.Background()))
}

func TestRunOnce_RepositoryError(t *testing.T) {
	repo := mocks.NewMockRepository(t)
	repo.On("DeactivateExpiredOffers", mock.Anything, mock.Anything).Return(int64(0), errors.New("connection reset")).Once()

	s := New(repo, "@every 1h", logger.NewNop())
	assert.Equal(t, int64(0), s.RunOnce(context.Background()))
}

func TestRunOnce_AgainstMemoryStore(t *testing.T) {
	store := storage.NewMemoryStore()
	demo := store.AddStore("Demo", "demo-store")
	past := domain.NewDate(2025, 7, 1)
	_, err := store.InsertOffers(context.Background(), []domain.Offer{
		{StoreID: demo.ID, Title: "old", ValidUntil: &past, IsActive: true},
		{StoreID: demo.ID, Title: "open", IsActive: true},
	})
	require.NoError(t, err)

	s := New(store, "@daily", logger.NewNop())
	s.now = fixedNow(time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC))

	assert.Equal(t, int64(1), s.RunOnce(context.Background()))
	assert.Equal(t, int64(0), s.RunOnce(context.Background()))
}

func TestStart_InvalidSpec(t *testing.T) {
	repo := mocks.NewMockRepository(t)
	s := New(repo, "every now and then", logger.NewNop())

	err := s.Start(context.Background())
	assert.Error(t, err)
}

func TestStart_RunsImmediately(t *testing.T) {
	repo := mocks.NewMockRepository(t)
	done := make(chan struct{})
	repo.On("DeactivateExpiredOffers", mock.Anything, mock.Anything).
		Return(int64(0), nil).
		Run(func(mock.Arguments) { close(done) }).
		Once()

	s := New(repo, "@every 24h", logger.NewNop())
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("sweep did not run on start")
	}
}

type slowExpirer struct {
	started chan struct{}
	release chan struct{}
}

func (e *slowExpirer) DeactivateExpiredOffers(ctx context.Context, today domain.Date) (int64, error) {
	close(e.started)
	<-e.release
	return 0, nil
}

func TestStop_WaitsForInitialSweep(t *testing.T) {
	repo := &slowExpirer{started: make(chan struct{}), release: make(chan struct{})}
	s := New(repo, "@every 24h", logger.NewNop())
	require.NoError(t, s.Start(context.Background()))

	select {
	case <-repo.started:
	case <-time.After(2 * time.Second):
		t.Fatal("sweep did not run on start")
	}

	stopped := make(chan struct{})
	go func() {
		s.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned while the initial sweep was running")
	case <-time.After(50 * time.Millisecond):
	}

	close(repo.release)
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return after the sweep finished")
	}
}
