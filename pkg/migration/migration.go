// Package migration runs and tracks schema migrations in batches.
//
// Migrations register themselves from database/migrations:
//
//	func init() {
//	    migration.Register("20260301000000_create_products", migration.Funcs{
//	        Up:   func(db *gorm.DB) error { return db.AutoMigrate(&models.Product{}) },
//	        Down: func(db *gorm.DB) error { return db.Migrator().DropTable("products") },
//	    })
//	}
//
// and run from the CLI with `storefront migrate` / `storefront migrate:rollback`.
package migration

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/cupcakery/storefront/pkg/logger"
)

// Migration is implemented by every schema change.
type Migration interface {
	Up(db *gorm.DB) error
	Down(db *gorm.DB) error
}

// Funcs adapts a pair of functions to Migration.
type Funcs struct {
	Up   func(db *gorm.DB) error
	Down func(db *gorm.DB) error
}

type funcsMigration struct{ f Funcs }

func (m funcsMigration) Up(db *gorm.DB) error { return m.f.Up(db) }

func (m funcsMigration) Down(db *gorm.DB) error {
	if m.f.Down == nil {
		return errors.New("migration is irreversible")
	}
	return m.f.Down(db)
}

type record struct {
	ID    uint      `gorm:"primaryKey;autoIncrement"`
	Name  string    `gorm:"uniqueIndex;size:255;not null"`
	Batch int       `gorm:"not null"`
	RunAt time.Time `gorm:"autoCreateTime"`
}

func (record) TableName() string { return "storefront_migrations" }

// ------------------- Registry -------------------

type registered struct {
	name string
	m    Migration
}

var (
	mu       sync.Mutex
	registry []registered
)

// Register adds a migration. Names are timestamp-prefixed; pending migrations
// run in name order regardless of registration order.
func Register(name string, m interface{}) {
	var mig Migration
	switch v := m.(type) {
	case Migration:
		mig = v
	case Funcs:
		mig = funcsMigration{f: v}
	default:
		panic(fmt.Sprintf("migration: %s: unsupported type %T", name, m))
	}

	mu.Lock()
	defer mu.Unlock()
	for _, r := range registry {
		if r.name == name {
			panic(fmt.Sprintf("migration: %s registered twice", name))
		}
	}
	registry = append(registry, registered{name: name, m: mig})
}

func snapshot() []registered {
	mu.Lock()
	defer mu.Unlock()
	out := append([]registered(nil), registry...)
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// ------------------- Runner -------------------

type Runner struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Runner {
	return &Runner{db: db}
}

// EnsureTable creates the tracking table if it does not exist.
func (r *Runner) EnsureTable() error {
	return r.db.AutoMigrate(&record{})
}

func (r *Runner) ran() (map[string]record, error) {
	var rows []record
	if err := r.db.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]record, len(rows))
	for _, rec := range rows {
		out[rec.Name] = rec
	}
	return out, nil
}

// Pending returns the names of migrations not yet applied, in run order.
func (r *Runner) Pending() ([]string, error) {
	if err := r.EnsureTable(); err != nil {
		return nil, fmt.Errorf("migration: ensure table: %w", err)
	}
	ran, err := r.ran()
	if err != nil {
		return nil, err
	}
	var names []string
	for _, reg := range snapshot() {
		if _, ok := ran[reg.name]; !ok {
			names = append(names, reg.name)
		}
	}
	return names, nil
}

// Run applies every pending migration as one batch and returns the names it
// applied. It stops at the first failure; migrations before it stay applied.
func (r *Runner) Run() ([]string, error) {
	if err := r.EnsureTable(); err != nil {
		return nil, fmt.Errorf("migration: ensure table: %w", err)
	}
	ran, err := r.ran()
	if err != nil {
		return nil, fmt.Errorf("migration: fetch applied: %w", err)
	}

	batch, err := r.lastBatch()
	if err != nil {
		return nil, err
	}
	batch++

	var applied []string
	for _, reg := range snapshot() {
		if _, ok := ran[reg.name]; ok {
			continue
		}
		logger.Info("migration: running", "name", reg.name, "batch", batch)

		if err := reg.m.Up(r.db); err != nil {
			return applied, fmt.Errorf("migration: %s up: %w", reg.name, err)
		}
		if err := r.db.Create(&record{Name: reg.name, Batch: batch}).Error; err != nil {
			return applied, fmt.Errorf("migration: record %s: %w", reg.name, err)
		}
		applied = append(applied, reg.name)
	}

	if len(applied) > 0 {
		logger.Info("migration: done", "ran", len(applied), "batch", batch)
	}
	return applied, nil
}

// Rollback reverses the most recent batch, newest first, and returns the
// names it rolled back.
func (r *Runner) Rollback() ([]string, error) {
	if err := r.EnsureTable(); err != nil {
		return nil, fmt.Errorf("migration: ensure table: %w", err)
	}

	batch, err := r.lastBatch()
	if err != nil || batch == 0 {
		return nil, err
	}

	var rows []record
	if err := r.db.Where("batch = ?", batch).Order("name desc").Find(&rows).Error; err != nil {
		return nil, err
	}

	known := make(map[string]Migration)
	for _, reg := range snapshot() {
		known[reg.name] = reg.m
	}

	var rolled []string
	for _, rec := range rows {
		m, ok := known[rec.Name]
		if !ok {
			return rolled, fmt.Errorf("migration: cannot roll back %s: not registered", rec.Name)
		}

		logger.Info("migration: rolling back", "name", rec.Name)
		if err := m.Down(r.db); err != nil {
			return rolled, fmt.Errorf("migration: %s down: %w", rec.Name, err)
		}
		if err := r.db.Delete(&record{}, rec.ID).Error; err != nil {
			return rolled, err
		}
		rolled = append(rolled, rec.Name)
	}
	return rolled, nil
}

// StatusRow is one line of `migrate:status`.
type StatusRow struct {
	Name  string
	Ran   bool
	Batch int
}

func (r *Runner) Status() ([]StatusRow, error) {
	if err := r.EnsureTable(); err != nil {
		return nil, err
	}
	ran, err := r.ran()
	if err != nil {
		return nil, err
	}

	var rows []StatusRow
	for _, reg := range snapshot() {
		rec, ok := ran[reg.name]
		rows = append(rows, StatusRow{Name: reg.name, Ran: ok, Batch: rec.Batch})
	}
	return rows, nil
}

func (r *Runner) lastBatch() (int, error) {
	var max struct{ Max int }
	err := r.db.Model(&record{}).Select("COALESCE(MAX(batch), 0) as max").Scan(&max).Error
	if err != nil {
		return 0, fmt.Errorf("migration: last batch: %w", err)
	}
	return max.Max, nil
}
