// Package testhelpers builds in-memory collaborators for package tests.
package testhelpers

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cppla/focusdesk/config"
	"github.com/cppla/focusdesk/events"
	"github.com/cppla/focusdesk/models"
)

// TestSecret signs tokens in tests.
const TestSecret = "test-secret"

// AllModels lists every persisted model.
func AllModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.ActivityRecord{},
		&models.Task{},
		&models.Schedule{},
		&models.Milestone{},
		&models.Overview{},
		&models.DeepWorkStats{},
		&models.Note{},
	}
}

// Config returns a configuration suitable for tests: sqlite, UTC, gin test mode.
func Config() config.AppConfig {
	return config.AppConfig{
		AppPort:            "0",
		JWTSecret:          TestSecret,
		JWTExpireHours:     1,
		Timezone:           "UTC",
		RateLimitPerMinute: 1000,
		AllowedOrigins:     []string{"*"},
		GinMode:            "test",
		DBDriver:           "sqlite",
		LogLevel:           "silent",
	}
}

// NewDB opens a private in-memory sqlite database with all models migrated.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	cfg := Config()
	cfg.DatabaseURI = fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := config.OpenDatabase(cfg, AllModels()...)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// CreateUser inserts a user with the given email.
func CreateUser(t testing.TB, db *gorm.DB, email string) models.User {
	t.Helper()
	user := models.User{Name: "Test User", Email: email}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

// Clock is a settable time source.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(now time.Time) *Clock {
	return &Clock{now: now}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Set(now time.Time) {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// RecordingPublisher keeps every published event in memory.
type RecordingPublisher struct {
	mu     sync.Mutex
	Events []events.ActivityEvent
	Err    error
}

func (p *RecordingPublisher) Publish(_ context.Context, event events.ActivityEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Events = append(p.Events, event)
	return p.Err
}

func (p *RecordingPublisher) Close() error { return nil }

// Types returns the published event types in order.
func (p *RecordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.Events))
	for _, e := range p.Events {
		out = append(out, e.Type)
	}
	return out
}
