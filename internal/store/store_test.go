package store

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"robot-factory-backend/internal/model"
)

// A helper function to create a mock database connection.
func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

// newSQLiteDB opens a private in-memory database with the schema migrated.
func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	testDB, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, _ := testDB.DB()
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, testDB.AutoMigrate(&model.Robot{}, &model.Customer{}, &model.Order{}))
	return testDB
}

func TestGormStore_CreateRobot(t *testing.T) {
	created := time.Date(2026, 10, 12, 9, 30, 0, 0, time.UTC)

	t.Run("inserts and runs hooks", func(t *testing.T) {
		gormDB, mock := newTestDB(t)
		s := NewGormStore(gormDB)

		var hooked []string
		s.OnRobotSaved(func(ctx context.Context, robot *model.Robot) error {
			hooked = append(hooked, robot.Serial)
			return nil
		})

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "robots"`)).
			WithArgs("12345", "R2", "D2", Any{}, false).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
		mock.ExpectCommit()

		robot := &model.Robot{Serial: "12345", Model: "R2", Version: "D2", Created: created}
		require.NoError(t, s.CreateRobot(context.Background(), robot))

		assert.Equal(t, int64(7), robot.ID)
		assert.Equal(t, []string{"12345"}, hooked)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("insert failure skips hooks", func(t *testing.T) {
		gormDB, mock := newTestDB(t)
		s := NewGormStore(gormDB)
		s.OnRobotSaved(func(ctx context.Context, robot *model.Robot) error {
			t.Fatal("hook must not run when the insert fails")
			return nil
		})

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "robots"`)).
			WillReturnError(errors.New("connection reset"))
		mock.ExpectRollback()

		err := s.CreateRobot(context.Background(), &model.Robot{Serial: "00001", Model: "R2", Version: "D2", Created: created})
		assert.ErrorContains(t, err, "connection reset")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("hook error propagates", func(t *testing.T) {
		gormDB, mock := newTestDB(t)
		s := NewGormStore(gormDB)
		hookErr := errors.New("smtp down")
		s.OnRobotSaved(func(ctx context.Context, robot *model.Robot) error { return hookErr })
		laterRan := false
		s.OnRobotSaved(func(ctx context.Context, robot *model.Robot) error {
			laterRan = true
			return nil
		})

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "robots"`)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
		mock.ExpectCommit()

		err := s.CreateRobot(context.Background(), &model.Robot{Serial: "00002", Model: "R2", Version: "D2", Created: created})
		assert.ErrorIs(t, err, hookErr)
		assert.True(t, laterRan, "hooks after a failing one still run")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormStore_MarkOrderNotified(t *testing.T) {
	gormDB, mock := newTestDB(t)
	s := NewGormStore(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "orders" SET "notified"=$1 WHERE id = $2`)).
		WithArgs(true, 42).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	order := &model.Order{ID: 42, RobotSerial: "12345"}
	require.NoError(t, s.MarkOrderNotified(context.Background(), order))
	assert.True(t, order.Notified)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_PendingOrders(t *testing.T) {
	testDB := newSQLiteDB(t)
	s := NewGormStore(testDB)

	alice := model.Customer{Email: "alice@example.com"}
	bob := model.Customer{Email: "bob@example.com"}
	require.NoError(t, testDB.Create(&alice).Error)
	require.NoError(t, testDB.Create(&bob).Error)

	orders := []model.Order{
		{CustomerID: alice.ID, RobotSerial: "11111"},
		{CustomerID: bob.ID, RobotSerial: "11111", Notified: true},
		{CustomerID: bob.ID, RobotSerial: "11111"},
		{CustomerID: alice.ID, RobotSerial: "22222"},
	}
	require.NoError(t, testDB.Create(&orders).Error)

	pending, err := s.PendingOrders(context.Background(), "11111")
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "alice@example.com", pending[0].Customer.Email)
	assert.Equal(t, "bob@example.com", pending[1].Customer.Email)
	for _, o := range pending {
		assert.False(t, o.Notified)
		assert.Equal(t, "11111", o.RobotSerial)
	}
}

func TestGormStore_SetAvailability(t *testing.T) {
	testDB := newSQLiteDB(t)
	s := NewGormStore(testDB)

	var seen []bool
	s.OnRobotSaved(func(ctx context.Context, robot *model.Robot) error {
		seen = append(seen, robot.Available)
		return nil
	})

	robot := &model.Robot{Serial: "33333", Model: "X1", Version: "01", Created: time.Now()}
	require.NoError(t, s.CreateRobot(context.Background(), robot))

	updated, err := s.SetAvailability(context.Background(), "33333", true)
	require.NoError(t, err)
	require.Len(t, updated, 1)
	assert.True(t, updated[0].Available)
	assert.Equal(t, []bool{false, true}, seen)

	var reloaded model.Robot
	require.NoError(t, testDB.First(&reloaded, robot.ID).Error)
	assert.True(t, reloaded.Available)

	_, err = s.SetAvailability(context.Background(), "99999", true)
	assert.ErrorIs(t, err, ErrRobotNotFound)
}

func TestGormStore_WeeklyProduction(t *testing.T) {
	testDB := newSQLiteDB(t)
	s := NewGormStore(testDB)

	loc := time.FixedZone("MSK", 3*60*60)
	monday := time.Date(2026, 10, 12, 0, 0, 0, 0, loc)
	nextMonday := monday.AddDate(0, 0, 7)

	robots := []model.Robot{
		{Serial: "00001", Model: "R2", Version: "v1", Created: monday},
		{Serial: "00002", Model: "R1", Version: "v2", Created: monday.Add(50 * time.Hour)},
		{Serial: "00003", Model: "R1", Version: "v1", Created: monday.Add(time.Hour)},
		{Serial: "00004", Model: "R1", Version: "v1", Created: nextMonday.Add(-time.Second)},
		{Serial: "00005", Model: "R1", Version: "v1", Created: monday.Add(-time.Second)},
		{Serial: "00006", Model: "R3", Version: "v1", Created: nextMonday},
		{Serial: "00007", Model: "R2", Version: "v1", Created: monday.Add(time.Hour).UTC()},
		{Serial: "00008", Model: "R2", Version: "v1", Created: monday.Add(-time.Minute).In(time.FixedZone("EST", -5*60*60))},
	}
	require.NoError(t, testDB.Create(&robots).Error)

	rows, err := s.WeeklyProduction(context.Background(), monday, nextMonday)
	require.NoError(t, err)
	assert.Equal(t, []ProductionRow{
		{Model: "R1", Version: "v1", Total: 2},
		{Model: "R1", Version: "v2", Total: 1},
		{Model: "R2", Version: "v1", Total: 2},
	}, rows)

	var stored model.Robot
	require.NoError(t, testDB.Where("serial = ?", "00001").First(&stored).Error)
	assert.True(t, stored.Created.Equal(monday))
	assert.Equal(t, time.UTC, robots[0].Created.Location())
}

// Any is a helper for sqlmock to match any argument.
type Any struct{}

// Match satisfies the sqlmock.Argument interface
func (a Any) Match(v driver.Value) bool {
	return true
}
