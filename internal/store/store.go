package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"robot-factory-backend/internal/model"
)

// Store defines the interface for all database operations.
type Store interface {
	CreateRobot(ctx context.Context, robot *model.Robot) error
	SaveRobot(ctx context.Context, robot *model.Robot) error
	SetAvailability(ctx context.Context, serial string, available bool) ([]model.Robot, error)
	PendingOrders(ctx context.Context, serial string) ([]model.Order, error)
	MarkOrderNotified(ctx context.Context, order *model.Order) error
	WeeklyProduction(ctx context.Context, from, to time.Time) ([]ProductionRow, error)
	OnRobotSaved(hook SaveHook)
	DB() *gorm.DB
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db    *gorm.DB
	hooks []SaveHook
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// OnRobotSaved registers a hook invoked, in registration order, after every
// successful robot insert or update. A failing hook does not stop the ones
// after it. Hooks must be registered before serving.
func (s *gormStore) OnRobotSaved(hook SaveHook) {
	s.hooks = append(s.hooks, hook)
}

// CreateRobot inserts a new robot and then runs the save hooks.
func (s *gormStore) CreateRobot(ctx context.Context, robot *model.Robot) error {
	if err := s.db.WithContext(ctx).Create(robot).Error; err != nil {
		return fmt.Errorf("failed to create robot %s: %w", robot.Serial, err)
	}
	return s.afterSave(ctx, robot)
}

// SaveRobot updates (or inserts, when ID is zero) a robot and then runs the save hooks.
func (s *gormStore) SaveRobot(ctx context.Context, robot *model.Robot) error {
	if err := s.db.WithContext(ctx).Save(robot).Error; err != nil {
		return fmt.Errorf("failed to save robot %s: %w", robot.Serial, err)
	}
	return s.afterSave(ctx, robot)
}

// SetAvailability flips the availability flag of every robot with the given serial.
// Each robot is saved individually so the hooks see every change.
func (s *gormStore) SetAvailability(ctx context.Context, serial string, available bool) ([]model.Robot, error) {
	var robots []model.Robot
	if err := s.db.WithContext(ctx).Where("serial = ?", serial).Order("id").Find(&robots).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch robots with serial %s: %w", serial, err)
	}
	if len(robots) == 0 {
		return nil, fmt.Errorf("serial %s: %w", serial, ErrRobotNotFound)
	}

	for i := range robots {
		robots[i].Available = available
		if err := s.SaveRobot(ctx, &robots[i]); err != nil {
			return nil, err
		}
	}
	return robots, nil
}

func (s *gormStore) afterSave(ctx context.Context, robot *model.Robot) error {
	var errs []error
	for _, hook := range s.hooks {
		if err := hook(ctx, robot); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// PendingOrders returns the not-yet-notified orders waiting for a serial, with customers loaded.
func (s *gormStore) PendingOrders(ctx context.Context, serial string) ([]model.Order, error) {
	var orders []model.Order
	err := s.db.WithContext(ctx).
		Preload("Customer").
		Where("robot_serial = ? AND notified = ?", serial, false).
		Order("id").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending orders for serial %s: %w", serial, err)
	}
	return orders, nil
}

// MarkOrderNotified persists the notified flag of a single order.
func (s *gormStore) MarkOrderNotified(ctx context.Context, order *model.Order) error {
	err := s.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ?", order.ID).
		Update("notified", true).Error
	if err != nil {
		return fmt.Errorf("failed to mark order %d notified: %w", order.ID, err)
	}
	order.Notified = true
	return nil
}

// WeeklyProduction counts robots created in [from, to) grouped by model and version.
// Bounds are compared in UTC, the zone robots are stored in.
func (s *gormStore) WeeklyProduction(ctx context.Context, from, to time.Time) ([]ProductionRow, error) {
	var rows []ProductionRow
	err := s.db.WithContext(ctx).
		Model(&model.Robot{}).
		Select("model, version, COUNT(*) AS total").
		Where("created >= ? AND created < ?", from.UTC(), to.UTC()).
		Group("model, version").
		Order("model, version").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate production: %w", err)
	}
	return rows, nil
}
