package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	app "defect-refiner/internal/application"
	"defect-refiner/internal/container"
	"defect-refiner/internal/domain/entity"
)

const (
	msgStart = `👋 Привет! Я уточняю границы дефектов на фотографиях поверхности.

📸 Отправьте фото, затем координаты дефекта, и я найду его контур двумя способами: активным контуром и сегментацией.

📋 Команды:
/check — начать уточнение
/help — справка
/cancel — отменить текущую операцию`

	msgHelp = `ℹ️ Как пользоваться ботом:

1️⃣ Отправьте /check и фото поверхности (лучше файлом, без сжатия)
2️⃣ Пришлите координаты дефекта в пикселях: строка и столбец, например "120 348"
3️⃣ Вы получите два эллипса: зелёный (активный контур) и красный (сегментация)

💡 Рекомендации:
• Указывайте точку внутри дефекта или на его границе
• Дефект должен отличаться яркостью от окружающей поверхности

📋 Команды:
/check — начать уточнение
/cancel — отменить операцию`

	msgAwaitingPhoto   = "📸 Отправьте фото поверхности."
	msgAwaitingSeed    = "📍 Фото получено. Пришлите координаты дефекта: строка и столбец в пикселях, например \"120 348\"."
	msgBadSeed         = "❓ Не понял координаты. Пришлите два числа: строка и столбец, например \"120 348\"."
	msgCancelled       = "❌ Операция отменена. Отправьте /check для новой проверки."
	msgSendPhoto       = "📸 Отправьте /check, чтобы начать уточнение дефекта."
	msgUnknownCommand  = "❓ Неизвестная команда. Используйте /help для справки."
	msgProcessing      = "⏳ Уточняю дефект..."
	msgBusy            = "⏳ Предыдущее уточнение ещё выполняется, подождите."
	msgProcessingError = "⚠️ Не удалось обработать изображение. Попробуйте сделать другое фото."
)

// Bot представляет Telegram-бота
type Bot struct {
	api       *tgbotapi.BotAPI
	container *container.Container
}

// NewBot создаёт нового бота
func NewBot(token string, c *container.Container) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log.Printf("Authorized on account %s", api.Self.UserName)

	return &Bot{
		api:       api,
		container: c,
	}, nil
}

// Run запускает основной цикл обработки сообщений
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil || update.Message.From == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	user, err := b.container.UserService.Get(ctx, msg.From.ID, msg.Chat.ID)
	if err != nil {
		log.Printf("Error getting user: %v", err)
		return
	}

	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	if user.Busy() {
		b.sendMessage(msg.Chat.ID, msgBusy)
		return
	}

	switch user.State {
	case entity.StateAwaitingPhoto:
		b.handlePhoto(ctx, msg)
	case entity.StateAwaitingSeed:
		b.handleSeed(ctx, msg)
	default:
		b.sendMessage(msg.Chat.ID, msgSendPhoto)
	}
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	users := b.container.UserService
	var err error

	switch msg.Command() {
	case "start":
		_, err = users.Cancel(ctx, msg.From.ID, msg.Chat.ID)
		b.sendMessage(msg.Chat.ID, msgStart)

	case "help":
		b.sendMessage(msg.Chat.ID, msgHelp)

	case "check":
		_, err = users.BeginCheck(ctx, msg.From.ID, msg.Chat.ID)
		b.sendMessage(msg.Chat.ID, msgAwaitingPhoto)

	case "cancel":
		_, err = users.Cancel(ctx, msg.From.ID, msg.Chat.ID)
		b.sendMessage(msg.Chat.ID, msgCancelled)

	default:
		b.sendMessage(msg.Chat.ID, msgUnknownCommand)
	}

	if err != nil {
		log.Printf("Error updating user state: %v", err)
	}
}

// handlePhoto принимает фото или изображение, присланное файлом
func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message) {
	fileID := imageFileID(msg)
	if fileID == "" {
		b.sendMessage(msg.Chat.ID, msgAwaitingPhoto)
		return
	}

	imageData, err := b.downloadFile(fileID)
	if err != nil {
		log.Printf("Error downloading photo: %v", err)
		b.sendMessage(msg.Chat.ID, msgProcessingError)
		return
	}

	if _, err := b.container.RefinementService.AcceptPhoto(ctx, msg.From.ID, msg.Chat.ID, imageData); err != nil {
		log.Printf("Error accepting photo: %v", err)
		b.sendMessage(msg.Chat.ID, msgProcessingError)
		return
	}

	log.Printf("Received image: %d bytes", len(imageData))
	b.sendMessage(msg.Chat.ID, msgAwaitingSeed)
}

// handleSeed разбирает координаты и запускает уточнение в фоне, чтобы
// долгий расчёт не задерживал остальные чаты.
func (b *Bot) handleSeed(ctx context.Context, msg *tgbotapi.Message) {
	seed, err := parseSeed(msg.Text)
	if err != nil {
		b.sendMessage(msg.Chat.ID, msgBadSeed)
		return
	}

	userID, chatID := msg.From.ID, msg.Chat.ID
	started, err := b.container.UserService.StartProcessing(ctx, userID, chatID)
	if err != nil {
		log.Printf("Error updating user state: %v", err)
		b.sendMessage(chatID, msgProcessingError)
		return
	}
	if !started {
		b.sendMessage(chatID, msgBusy)
		return
	}

	b.sendMessage(chatID, msgProcessing)

	go func() {
		out, err := b.container.RefinementService.Refine(ctx, userID, chatID, seed)
		if err != nil {
			log.Printf("Error refining defect: %v", err)
			if _, cerr := b.container.UserService.Cancel(ctx, userID, chatID); cerr != nil {
				log.Printf("Error updating user state: %v", cerr)
			}
			b.sendMessage(chatID, msgProcessingError)
			return
		}
		b.sendResult(chatID, out)
	}()
}

// sendResult отправляет текст с эллипсами, картинку и описание
func (b *Bot) sendResult(chatID int64, out *app.RefinementOutput) {
	b.sendMessage(chatID, formatReport(out.Report))

	if len(out.Highlighted) > 0 {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "defect.jpg", Bytes: out.Highlighted})
		photo.Caption = "🟢 активный контур  🔴 сегментация"
		if _, err := b.api.Send(photo); err != nil {
			log.Printf("Error sending photo: %v", err)
		}
	}

	if out.Description != nil && out.Description.Text != "" {
		b.sendMessage(chatID, "🤖 "+out.Description.Text)
	}
}

// imageFileID возвращает ID фото наибольшего разрешения или документа-картинки
func imageFileID(msg *tgbotapi.Message) string {
	if len(msg.Photo) > 0 {
		return msg.Photo[len(msg.Photo)-1].FileID
	}
	if msg.Document != nil && strings.HasPrefix(msg.Document.MimeType, "image/") {
		return msg.Document.FileID
	}
	return ""
}

// parseSeed разбирает "строка столбец"; разделителем может быть пробел,
// запятая или точка с запятой.
func parseSeed(text string) (entity.Point, error) {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ' ' || r == ',' || r == ';' || r == '\t' || r == '\n'
	})
	if len(fields) != 2 {
		return entity.Point{}, fmt.Errorf("expected two numbers, got %d", len(fields))
	}

	row, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return entity.Point{}, fmt.Errorf("parse row: %w", err)
	}
	col, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return entity.Point{}, fmt.Errorf("parse column: %w", err)
	}
	if row < 0 || col < 0 {
		return entity.Point{}, errors.New("coordinates must not be negative")
	}

	return entity.Point{Row: row, Col: col}, nil
}

// formatReport печатает оба эллипса в координатах исходного фото
func formatReport(report *entity.RefinementReport) string {
	var sb strings.Builder
	sb.WriteString("📐 Результат уточнения\n\n")
	writeRefinement(&sb, "🟢 Активный контур", report.Snake, report.Scale)
	sb.WriteString("\n")
	writeRefinement(&sb, "🔴 Сегментация", report.GraphCut, report.Scale)
	return sb.String()
}

func writeRefinement(sb *strings.Builder, title string, r entity.Refinement, scale float64) {
	if scale <= 0 {
		scale = 1
	}
	e := r.Ellipse
	fmt.Fprintf(sb, "%s\n", title)
	fmt.Fprintf(sb, "Центр: строка %.1f, столбец %.1f\n", e.CenterRow/scale, e.CenterCol/scale)
	fmt.Fprintf(sb, "Оси: %.1f × %.1f px\n", e.Major/scale, e.Minor/scale)
	fmt.Fprintf(sb, "Угол: %.1f°\n", e.ClockwiseAngle())
	switch {
	case r.Status == entity.StatusSparseContour:
		sb.WriteString("⚠️ контур слишком короткий, показана описанная окружность\n")
	case r.Degraded():
		fmt.Fprintf(sb, "⚠️ %s, показан эллипс по умолчанию\n", r.Status)
	}
}

// downloadFile скачивает файл из Telegram
func (b *Bot) downloadFile(fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	fileURL := file.Link(b.api.Token)

	resp, err := http.Get(fileURL)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: status %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Error sending message: %v", err)
	}
}
