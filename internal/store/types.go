package store

import (
	"context"
	"errors"

	"robot-factory-backend/internal/model"
)

// ErrRobotNotFound is returned when no robot carries the requested serial.
var ErrRobotNotFound = errors.New("robot not found")

// ProductionRow is one (model, version) bucket of the weekly aggregation.
type ProductionRow struct {
	Model   string
	Version string
	Total   int64
}

// SaveHook runs after a robot has been written successfully.
type SaveHook func(ctx context.Context, robot *model.Robot) error
