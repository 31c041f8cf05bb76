package queue

import (
	"encoding/json"
	"sync/atomic"
	"time"

	"gorm.io/gorm"

	"github.com/cupcakery/storefront/pkg/logger"
)

// FailedJobRecord is the failed_jobs row written when a job gives up.
type FailedJobRecord struct {
	ID       uint      `gorm:"primaryKey;autoIncrement"`
	JobType  string    `gorm:"size:255;not null;index"`
	Payload  string    `gorm:"type:text;not null"`
	Error    string    `gorm:"type:text"`
	Attempts int       `gorm:"not null;default:0"`
	FailedAt time.Time `gorm:"autoCreateTime"`
}

func (FailedJobRecord) TableName() string { return "storefront_failed_jobs" }

var failedStore atomic.Pointer[gorm.DB]

// UseDB makes failures durable. Without it they are only kept in memory
// (see FailedJobs).
func UseDB(db *gorm.DB) { failedStore.Store(db) }

func (m *Manager) persistFailed(job Job, name string, lastErr error, attempts int) {
	f := FailedJob{Type: name, Job: job, Err: lastErr, FailedAt: time.Now(), Attempts: attempts}

	m.mu.Lock()
	m.failed = append(m.failed, f)
	m.mu.Unlock()

	db := failedStore.Load()
	if db == nil {
		return
	}
	if err := db.Create(f.record()).Error; err != nil {
		logger.Error("queue: persist failed job", "type", name, "error", err)
	}
}

func (f FailedJob) record() *FailedJobRecord {
	payload, err := json.Marshal(f.Job)
	if err != nil {
		payload, _ = json.Marshal(map[string]string{"marshal_error": err.Error()})
	}
	return &FailedJobRecord{
		JobType:  f.Type,
		Payload:  string(payload),
		Error:    f.Err.Error(),
		Attempts: f.Attempts,
		FailedAt: f.FailedAt,
	}
}
