package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"defect-refiner/internal/domain/entity"
	"defect-refiner/internal/domain/port"
)

// RefinementService хранит фото пользователя и уточняет по нему дефект
// обоими алгоритмами.
type RefinementService struct {
	users       *UserService
	zscore      port.ZScoreProducer
	snake       port.Refiner
	graphCut    port.Refiner
	highlighter port.Highlighter
	describer   port.DefectDescriber
	photos      map[int64][]byte
	mu          sync.RWMutex
}

// RefinementOutput содержит результат уточнения, картинку с эллипсами и
// описание от ИИ (если описатель настроен).
type RefinementOutput struct {
	Report      *entity.RefinementReport
	Highlighted []byte
	Description *entity.AiDescription
}

// NewRefinementService создаёт сервис. highlighter и describer могут быть nil.
func NewRefinementService(users *UserService, zscore port.ZScoreProducer, snake, graphCut port.Refiner, highlighter port.Highlighter, describer port.DefectDescriber) *RefinementService {
	return &RefinementService{
		users:       users,
		zscore:      zscore,
		snake:       snake,
		graphCut:    graphCut,
		highlighter: highlighter,
		describer:   describer,
		photos:      make(map[int64][]byte),
	}
}

// AcceptPhoto сохраняет фото и переводит пользователя в ожидание координат.
func (s *RefinementService) AcceptPhoto(ctx context.Context, userID, chatID int64, photo []byte) (*entity.User, error) {
	if len(photo) == 0 {
		return nil, errors.New("empty photo")
	}
	s.mu.Lock()
	s.photos[userID] = photo
	s.mu.Unlock()
	return s.users.AwaitSeed(ctx, userID, chatID)
}

// RefineMap запускает оба алгоритма на готовой z-score карте. Алгоритмы
// независимы, поэтому выполняются параллельно. Некорректная карта (nil,
// пустая, с NaN) отклоняется до запуска алгоритмов.
func (s *RefinementService) RefineMap(zmap *entity.Grid, seed entity.Point) (*entity.RefinementReport, error) {
	if err := zmap.Validate(); err != nil {
		return nil, fmt.Errorf("invalid z-score map: %w", err)
	}
	if s.snake == nil || s.graphCut == nil {
		return nil, errors.New("refiners are not configured")
	}

	report := &entity.RefinementReport{
		ImageWidth:  zmap.Cols,
		ImageHeight: zmap.Rows,
		Seed:        seed,
		Scale:       1,
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		report.Snake = s.snake.Refine(zmap, seed)
	}()
	go func() {
		defer wg.Done()
		report.GraphCut = s.graphCut.Refine(zmap, seed)
	}()
	wg.Wait()

	return report, nil
}

// Refine уточняет дефект на сохранённом фото пользователя и возвращает его
// в главное меню.
func (s *RefinementService) Refine(ctx context.Context, userID, chatID int64, seed entity.Point) (*RefinementOutput, error) {
	if s.zscore == nil || s.snake == nil || s.graphCut == nil {
		return nil, errors.New("refiners are not configured")
	}

	s.mu.RLock()
	photo, ok := s.photos[userID]
	s.mu.RUnlock()
	if !ok || len(photo) == 0 {
		return nil, errors.New("photo is not found")
	}

	if _, err := s.users.SetState(ctx, userID, chatID, entity.StateProcessing); err != nil {
		return nil, err
	}

	zmap, scale, err := s.zscore.Compute(photo)
	if err != nil {
		return nil, fmt.Errorf("compute z-score map: %w", err)
	}
	if err := zmap.Validate(); err != nil {
		return nil, fmt.Errorf("invalid z-score map: %w", err)
	}
	// Координаты клика заданы на исходном фото, карта может быть уменьшена.
	seed = entity.Point{Row: seed.Row * scale, Col: seed.Col * scale}
	if seed.Row < 0 || seed.Col < 0 || seed.Row >= float64(zmap.Rows) || seed.Col >= float64(zmap.Cols) {
		return nil, fmt.Errorf("seed (%.0f, %.0f) is outside %dx%d image", seed.Row, seed.Col, zmap.Rows, zmap.Cols)
	}

	report, err := s.RefineMap(zmap, seed)
	if err != nil {
		return nil, err
	}
	report.Scale = scale
	out := &RefinementOutput{Report: report}

	if s.highlighter != nil {
		highlighted, err := s.highlighter.Highlight(photo, report)
		if err != nil {
			log.Printf("Highlight failed: %v", err)
		}
		out.Highlighted = highlighted
	}

	if s.describer != nil {
		desc, err := s.describer.Describe(ctx, report, out.Highlighted)
		if err != nil {
			log.Printf("Describe failed: %v", err)
		}
		out.Description = desc
	}

	s.mu.Lock()
	delete(s.photos, userID)
	s.mu.Unlock()

	if _, err := s.users.Cancel(ctx, userID, chatID); err != nil {
		return nil, err
	}
	return out, nil
}
