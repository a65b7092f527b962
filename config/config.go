package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	SegmenterGrabCut = "grabcut"
	SegmenterCluster = "cluster"

	ShapesGo   = "go"
	ShapesGoCV = "gocv"
)

type Config struct {
	TelegramToken string
	Segmenter     string // grabcut или cluster
	Shapes        string // go или gocv: чем искать контур и вписывать эллипс
	TuningPath    string // путь к YAML с параметрами алгоритмов
	OllamaURL     string
	OllamaModel   string
	Tuning        *Tuning
}

// Tuning параметры алгоритмов уточнения. Значения по умолчанию совпадают с
// зафиксированными параметрами алгоритмов.
type Tuning struct {
	Snake struct {
		InitRadius    float64 `yaml:"initRadius"`
		Sigma         float64 `yaml:"sigma"`
		Alpha         float64 `yaml:"alpha"`
		Beta          float64 `yaml:"beta"`
		WEdge         float64 `yaml:"wEdge"`
		WLine         float64 `yaml:"wLine"`
		Gamma         float64 `yaml:"gamma"`
		MaxPxMove     float64 `yaml:"maxPxMove"`
		MaxIterations int     `yaml:"maxIterations"`
		Convergence   float64 `yaml:"convergence"`
	} `yaml:"snake"`

	GraphCut struct {
		BoxSize    int     `yaml:"boxSize"`
		Iterations int     `yaml:"iterations"`
		MaxSigma   float64 `yaml:"maxSigma"`
	} `yaml:"graphCut"`

	ZScore struct {
		Window  int `yaml:"window"`  // сторона окна локальной статистики
		MaxSide int `yaml:"maxSide"` // фото больше этого размера уменьшаются
	} `yaml:"zscore"`
}

// DefaultTuning возвращает параметры по умолчанию.
func DefaultTuning() *Tuning {
	t := &Tuning{}

	t.Snake.InitRadius = 15
	t.Snake.Sigma = 1
	t.Snake.Alpha = 0.015
	t.Snake.Beta = 10
	t.Snake.WEdge = 1
	t.Snake.WLine = 0
	t.Snake.Gamma = 0.01
	t.Snake.MaxPxMove = 1
	t.Snake.MaxIterations = 2500
	t.Snake.Convergence = 0.1

	t.GraphCut.BoxSize = 20
	t.GraphCut.Iterations = 5
	t.GraphCut.MaxSigma = 6

	t.ZScore.Window = 31
	t.ZScore.MaxSide = 1024

	return t
}

// Validate проверяет, что параметры положительны.
func (t *Tuning) Validate() error {
	s := t.Snake
	if s.InitRadius <= 0 || s.Sigma <= 0 || s.Gamma <= 0 || s.MaxPxMove <= 0 || s.MaxIterations <= 0 || s.Convergence <= 0 {
		return errors.New("snake parameters must be positive")
	}
	if s.Alpha < 0 || s.Beta < 0 || s.WEdge < 0 || s.WLine < 0 {
		return errors.New("snake weights must not be negative")
	}
	g := t.GraphCut
	if g.BoxSize <= 0 || g.Iterations <= 0 || g.MaxSigma <= 0 {
		return errors.New("graph cut parameters must be positive")
	}
	if t.ZScore.Window < 3 || t.ZScore.MaxSide <= 0 {
		return errors.New("zscore window must be at least 3 and maxSide positive")
	}
	return nil
}

// LoadTuning читает YAML поверх значений по умолчанию. Пустой путь или
// отсутствующий файл дают значения по умолчанию.
func LoadTuning(path string) (*Tuning, error) {
	t := DefaultTuning()
	if path == "" {
		return t, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return t, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read tuning file: %w", err)
	}

	if err := yaml.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("parse tuning file: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("tuning file %s: %w", path, err)
	}
	return t, nil
}

func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	cfg := &Config{
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
		Segmenter:     os.Getenv("SEGMENTER"),
		Shapes:        os.Getenv("SHAPES"),
		TuningPath:    os.Getenv("REFINER_CONFIG"),
		OllamaURL:     os.Getenv("OLLAMA_URL"),
		OllamaModel:   os.Getenv("OLLAMA_MODEL"),
	}

	switch cfg.Segmenter {
	case "", SegmenterGrabCut, SegmenterCluster:
	default:
		return nil, fmt.Errorf("unknown SEGMENTER %q", cfg.Segmenter)
	}
	switch cfg.Shapes {
	case "":
		cfg.Shapes = ShapesGo
	case ShapesGo, ShapesGoCV:
	default:
		return nil, fmt.Errorf("unknown SHAPES %q", cfg.Shapes)
	}

	tuning, err := LoadTuning(cfg.TuningPath)
	if err != nil {
		return nil, err
	}
	cfg.Tuning = tuning

	return cfg, nil
}
