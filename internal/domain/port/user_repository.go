package port

import (
	"context"

	"defect-refiner/internal/domain/entity"
)

// UserRepository хранилище сессий пользователей бота
type UserRepository interface {
	// Get возвращает копию пользователя, создаёт нового в главном меню если не найден
	Get(ctx context.Context, userID, chatID int64) (*entity.User, error)

	// Save перезаписывает сохранённого пользователя
	Save(ctx context.Context, user *entity.User) error

	// SwapState атомарно переводит пользователя из состояния from в to.
	// Возвращает false, если текущее состояние другое
	SwapState(ctx context.Context, userID int64, from, to entity.UserState) (bool, error)
}
