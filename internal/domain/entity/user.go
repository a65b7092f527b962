package entity

// UserState шаг диалога уточнения дефекта
type UserState string

const (
	StateMainMenu      UserState = "main_menu"      // В главном меню
	StateAwaitingPhoto UserState = "awaiting_photo" // Ждём фото поверхности
	StateAwaitingSeed  UserState = "awaiting_seed"  // Фото есть, ждём координаты дефекта
	StateProcessing    UserState = "processing"     // Идёт уточнение
)

// User сессия пользователя бота
type User struct {
	ID     int64     // Telegram User ID
	ChatID int64     // Telegram Chat ID
	State  UserState // Текущий шаг диалога
}

// NewUser создаёт пользователя в главном меню
func NewUser(userID, chatID int64) *User {
	return &User{
		ID:     userID,
		ChatID: chatID,
		State:  StateMainMenu,
	}
}

// SetState переводит пользователя на другой шаг
func (u *User) SetState(state UserState) {
	u.State = state
}

// Busy сообщает, что для пользователя уже выполняется уточнение и новые
// сообщения, кроме команд, не принимаются.
func (u *User) Busy() bool {
	return u.State == StateProcessing
}
