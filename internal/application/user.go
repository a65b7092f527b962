package app

import (
	"context"

	"defect-refiner/internal/domain/entity"
	"defect-refiner/internal/domain/port"
)

// UserService ведёт пользователя по сценарию проверки.
type UserService struct {
	repo port.UserRepository
}

func NewUserService(repo port.UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) Get(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.repo.Get(ctx, userID, chatID)
}

func (s *UserService) SetState(ctx context.Context, userID, chatID int64, state entity.UserState) (*entity.User, error) {
	user, err := s.repo.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	user.SetState(state)
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// BeginCheck переводит пользователя в ожидание фото.
func (s *UserService) BeginCheck(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.SetState(ctx, userID, chatID, entity.StateAwaitingPhoto)
}

// AwaitSeed переводит пользователя в ожидание координат дефекта.
func (s *UserService) AwaitSeed(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.SetState(ctx, userID, chatID, entity.StateAwaitingSeed)
}

func (s *UserService) Cancel(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.SetState(ctx, userID, chatID, entity.StateMainMenu)
}

// StartProcessing занимает пользователя под уточнение. Возвращает false, если
// координаты уже приняты другим сообщением или пользователь не ждёт их.
func (s *UserService) StartProcessing(ctx context.Context, userID, chatID int64) (bool, error) {
	if _, err := s.repo.Get(ctx, userID, chatID); err != nil {
		return false, err
	}
	return s.repo.SwapState(ctx, userID, entity.StateAwaitingSeed, entity.StateProcessing)
}
