package describer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"defect-refiner/internal/domain/entity"
	"defect-refiner/internal/domain/port"
)

// DefaultTimeout ограничение на ответ модели, если у контекста нет дедлайна.
const DefaultTimeout = 2 * time.Minute

// chatClient часть api.Client, которой пользуется описатель.
type chatClient interface {
	Chat(ctx context.Context, req *api.ChatRequest, fn api.ChatResponseFunc) error
}

// OllamaDescriber описывает уточнённый дефект через мультимодальную модель Ollama.
type OllamaDescriber struct {
	client chatClient
	model  string
}

// NewOllamaDescriber создаёт описатель для сервера по адресу ollamaURL.
func NewOllamaDescriber(ollamaURL, model string) (*OllamaDescriber, error) {
	parsed, err := url.Parse(ollamaURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid ollama url %q", ollamaURL)
	}
	if model == "" {
		return nil, errors.New("ollama model is not set")
	}

	// Путь вида /api/chat отбрасываем, клиент добавляет его сам.
	base := &url.URL{Scheme: parsed.Scheme, Host: parsed.Host}
	return &OllamaDescriber{
		client: api.NewClient(base, http.DefaultClient),
		model:  model,
	}, nil
}

// Describe отправляет модели отчёт и картинку с эллипсами.
func (d *OllamaDescriber) Describe(ctx context.Context, report *entity.RefinementReport, highlighted []byte) (*entity.AiDescription, error) {
	if report == nil {
		return nil, errors.New("empty report")
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultTimeout)
		defer cancel()
	}

	msg := api.Message{Role: "user", Content: Prompt(report)}
	if len(highlighted) > 0 {
		msg.Images = []api.ImageData{api.ImageData(highlighted)}
	}

	stream := false
	req := &api.ChatRequest{
		Model:    d.model,
		Messages: []api.Message{msg},
		Stream:   &stream,
		Options:  map[string]any{"temperature": 0.2},
	}

	var sb strings.Builder
	err := d.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		sb.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ollama chat: %w", err)
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return nil, errors.New("empty response from ollama")
	}
	return &entity.AiDescription{Text: text}, nil
}

// Prompt собирает запрос к модели из результатов обоих алгоритмов.
func Prompt(report *entity.RefinementReport) string {
	var b strings.Builder
	b.WriteString("На фото поверхности отмечен предполагаемый дефект. ")
	b.WriteString("Зелёный эллипс найден активным контуром, красный сегментацией, синяя точка указана пользователем.\n")
	fmt.Fprintf(&b, "Размер кадра: %dx%d.\n", report.ImageWidth, report.ImageHeight)
	fmt.Fprintf(&b, "Точка: строка %.0f, столбец %.0f.\n", report.Seed.Row, report.Seed.Col)
	writeRefinement(&b, "Активный контур", report.Snake)
	writeRefinement(&b, "Сегментация", report.GraphCut)
	b.WriteString("Кратко (2-3 предложения) опиши дефект: тип, размер, насколько согласуются эллипсы.")
	return b.String()
}

func writeRefinement(b *strings.Builder, name string, r entity.Refinement) {
	e := r.Ellipse
	fmt.Fprintf(b, "%s: центр (%.1f, %.1f), оси %.1f и %.1f, угол %.1f°, статус %s.\n",
		name, e.CenterRow, e.CenterCol, e.Major, e.Minor, e.ClockwiseAngle(), r.Status)
}

var _ port.DefectDescriber = (*OllamaDescriber)(nil)
