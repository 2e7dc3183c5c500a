package repositories

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/teich/phone-gate-bridge/domain"
)

// EventRepositoryImpl implements domain.ActivityLog using GORM
type EventRepositoryImpl struct {
	db        *gorm.DB
	retention int
}

// DBCallEvent represents the database model for CallEvent (with GORM tags)
type DBCallEvent struct {
	ID         uint      `gorm:"primaryKey"`
	CreatedAt  time.Time `gorm:"index"`
	CallSid    string    `gorm:"index;size:64"`
	FromNumber string    `gorm:"size:32"`
	Stage      string    `gorm:"size:32"`
	Decision   string    `gorm:"size:32"`
	DoorName   string    `gorm:"size:64"`
	Detail     string
}

// TableName returns the table name for GORM
func (DBCallEvent) TableName() string {
	return "call_events"
}

// NewEventRepository creates a new event repository. retention bounds how
// many events are kept; zero or negative disables pruning.
func NewEventRepository(db *gorm.DB, retention int) domain.ActivityLog {
	return &EventRepositoryImpl{db: db, retention: retention}
}

// Record implements domain.ActivityLog. The append is durable before it
// returns; pruning removes excess-oldest rows and never reorders.
func (r *EventRepositoryImpl) Record(ctx context.Context, event *domain.CallEvent) error {
	dbEvent := r.domainToDB(event)
	if err := r.db.WithContext(ctx).Create(dbEvent).Error; err != nil {
		return err
	}
	event.ID = dbEvent.ID
	event.CreatedAt = dbEvent.CreatedAt

	if r.retention > 0 {
		keep := r.db.Model(&DBCallEvent{}).Select("id").Order("id desc").Limit(r.retention)
		if err := r.db.WithContext(ctx).Where("id NOT IN (?)", keep).Delete(&DBCallEvent{}).Error; err != nil {
			// The append itself succeeded; pruning can catch up on the
			// next write.
			log.Printf("failed to prune call events: %v", err)
			return nil
		}
	}
	return nil
}

// Recent implements domain.ActivityLog, returning at most limit events,
// newest first.
func (r *EventRepositoryImpl) Recent(ctx context.Context, limit int) ([]domain.CallEvent, error) {
	if limit <= 0 {
		return nil, nil
	}

	var dbEvents []DBCallEvent
	err := r.db.WithContext(ctx).Order("id desc").Limit(limit).Find(&dbEvents).Error
	if err != nil {
		return nil, err
	}

	events := make([]domain.CallEvent, 0, len(dbEvents))
	for i := range dbEvents {
		events = append(events, *r.dbToDomain(&dbEvents[i]))
	}
	return events, nil
}

// domainToDB converts a domain call event to its database model
func (r *EventRepositoryImpl) domainToDB(event *domain.CallEvent) *DBCallEvent {
	return &DBCallEvent{
		ID:         event.ID,
		CallSid:    event.CallSid,
		FromNumber: event.FromNumber,
		Stage:      string(event.Stage),
		Decision:   string(event.Decision),
		DoorName:   event.DoorName,
		Detail:     event.Detail,
	}
}

// dbToDomain converts a database model to a domain call event
func (r *EventRepositoryImpl) dbToDomain(dbEvent *DBCallEvent) *domain.CallEvent {
	return &domain.CallEvent{
		ID:         dbEvent.ID,
		CreatedAt:  dbEvent.CreatedAt,
		CallSid:    dbEvent.CallSid,
		FromNumber: dbEvent.FromNumber,
		Stage:      domain.CallStage(dbEvent.Stage),
		Decision:   domain.CallDecision(dbEvent.Decision),
		DoorName:   dbEvent.DoorName,
		Detail:     dbEvent.Detail,
	}
}
