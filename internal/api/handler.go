package api

import (
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"robot-factory-backend/internal/report"
	"robot-factory-backend/internal/serial"
	"robot-factory-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store     store.Store
	reports   *report.Generator
	validate  *validator.Validate
	loc       *time.Location
	newSerial func() string
	log       *zap.Logger
}

// NewHandler creates a new API handler. Offset-less timestamps in requests are
// interpreted in loc.
func NewHandler(s store.Store, reports *report.Generator, loc *time.Location, log *zap.Logger) *Handler {
	if loc == nil {
		loc = time.Local
	}
	return &Handler{
		store:     s,
		reports:   reports,
		validate:  newValidator(),
		loc:       loc,
		newSerial: serial.Generate,
		log:       log,
	}
}
