package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"defect-refiner/internal/domain/entity"
	"defect-refiner/internal/infrastructure/storage"
)

func TestUserService_BeginCheckAndCancel(t *testing.T) {
	repo := storage.NewMemoryUserRepository()
	svc := NewUserService(repo)
	ctx := context.Background()

	user, err := svc.BeginCheck(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateAwaitingPhoto, user.State)

	user, err = svc.AwaitSeed(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateAwaitingSeed, user.State)

	user, err = svc.Cancel(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateMainMenu, user.State)
}

func TestUserService_SetState(t *testing.T) {
	repo := storage.NewMemoryUserRepository()
	svc := NewUserService(repo)
	ctx := context.Background()

	user, err := svc.SetState(ctx, 2, 20, entity.StateProcessing)
	require.NoError(t, err)
	require.Equal(t, entity.StateProcessing, user.State)

	stored, err := svc.Get(ctx, 2, 20)
	require.NoError(t, err)
	require.Equal(t, entity.StateProcessing, stored.State)
}

func TestUserService_StartProcessingOnlyOnce(t *testing.T) {
	svc := NewUserService(storage.NewMemoryUserRepository())
	ctx := context.Background()

	ok, err := svc.StartProcessing(ctx, 3, 30)
	require.NoError(t, err)
	require.False(t, ok)

	_, err = svc.AwaitSeed(ctx, 3, 30)
	require.NoError(t, err)

	ok, err = svc.StartProcessing(ctx, 3, 30)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = svc.StartProcessing(ctx, 3, 30)
	require.NoError(t, err)
	require.False(t, ok)

	user, err := svc.Get(ctx, 3, 30)
	require.NoError(t, err)
	require.True(t, user.Busy())
}
