package storage

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"defect-refiner/internal/domain/entity"
)

func TestGetCreatesUserInMainMenu(t *testing.T) {
	repo := NewMemoryUserRepository()

	user, err := repo.Get(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Equal(t, int64(1), user.ID)
	require.Equal(t, int64(10), user.ChatID)
	require.Equal(t, entity.StateMainMenu, user.State)
}

func TestGetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()

	user, err := repo.Get(ctx, 1, 10)
	require.NoError(t, err)
	user.SetState(entity.StateProcessing)

	again, err := repo.Get(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateMainMenu, again.State)

	require.NoError(t, repo.Save(ctx, user))
	again, err = repo.Get(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateProcessing, again.State)
}

func TestSwapState(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()

	_, err := repo.SwapState(ctx, 5, entity.StateAwaitingSeed, entity.StateProcessing)
	require.Error(t, err)

	_, err = repo.Get(ctx, 5, 50)
	require.NoError(t, err)

	ok, err := repo.SwapState(ctx, 5, entity.StateAwaitingSeed, entity.StateProcessing)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = repo.SwapState(ctx, 5, entity.StateMainMenu, entity.StateAwaitingPhoto)
	require.NoError(t, err)
	require.True(t, ok)

	user, err := repo.Get(ctx, 5, 50)
	require.NoError(t, err)
	require.Equal(t, entity.StateAwaitingPhoto, user.State)
}

func TestSwapStateSingleWinner(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()
	user, err := repo.Get(ctx, 7, 70)
	require.NoError(t, err)
	user.SetState(entity.StateAwaitingSeed)
	require.NoError(t, repo.Save(ctx, user))

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.SwapState(ctx, 7, entity.StateAwaitingSeed, entity.StateProcessing)
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 1, wins)
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	repo := NewMemoryUserRepository()
	_, err := repo.Get(ctx, 1, 1)
	require.ErrorIs(t, err, context.Canceled)
	require.ErrorIs(t, repo.Save(ctx, entity.NewUser(1, 1)), context.Canceled)
}

func TestConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryUserRepository()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			user, err := repo.Get(ctx, int64(i%4), 1)
			if !assert.NoError(t, err) {
				return
			}
			user.SetState(entity.StateAwaitingPhoto)
			assert.NoError(t, repo.Save(ctx, user))
		}(i)
	}
	wg.Wait()

	for id := int64(0); id < 4; id++ {
		user, err := repo.Get(ctx, id, 1)
		require.NoError(t, err)
		require.Equal(t, entity.StateAwaitingPhoto, user.State)
	}
}
