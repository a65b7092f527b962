package app

import (
	"log"

	"defect-refiner/internal/domain/entity"
)

// fallback собирает результат с эллипсом по умолчанию и пишет диагностику.
func fallback(logger *log.Logger, seed entity.Point, conv entity.AngleConvention, status entity.FitStatus, cause error) entity.Refinement {
	logger.Printf("Warning: %s at seed (%.1f, %.1f): %v; returning default ellipse", status, seed.Row, seed.Col, cause)
	return entity.Refinement{
		Ellipse: entity.FallbackEllipse(seed, conv),
		Status:  status,
		Err:     cause,
	}
}

func loggerOrDefault(l *log.Logger) *log.Logger {
	if l == nil {
		return log.Default()
	}
	return l
}
