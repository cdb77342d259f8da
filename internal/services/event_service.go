package services

import (
	"database/sql"
	"time"

	"github.com/aboutme-website/aboutme-be/internal/models"
	"github.com/google/uuid"
)

// EventServiceProvider defines the interface for event services.
type EventServiceProvider interface {
	CreateEvent(eventType, level, message string, siteSlug *string) error
	GetRecentEvents(limit int) ([]models.Event, error)
}

// EventService provides business logic for event management.
type EventService struct {
	db *sql.DB
}

// NewEventService creates a new EventService.
func NewEventService(db *sql.DB) *EventService {
	return &EventService{db: db}
}

// CreateEvent logs a new event to the database.
func (s *EventService) CreateEvent(eventType, level, message string, siteSlug *string) error {
	event := models.Event{
		ID:       uuid.New().String(),
		Type:     eventType,
		Level:    level,
		Message:  message,
		SiteSlug: siteSlug,
	}

	stmt, err := s.db.Prepare("INSERT INTO events (id, type, level, message, site_slug, created_at) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	_, err = stmt.Exec(event.ID, event.Type, event.Level, event.Message, event.SiteSlug, time.Now().Unix())
	return err
}

// GetRecentEvents retrieves the most recent events from the database.
func (s *EventService) GetRecentEvents(limit int) ([]models.Event, error) {
	rows, err := s.db.Query("SELECT id, type, level, message, site_slug, created_at FROM events ORDER BY created_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var event models.Event
		var createdUnix int64
		if err := rows.Scan(&event.ID, &event.Type, &event.Level, &event.Message, &event.SiteSlug, &createdUnix); err != nil {
			return nil, err
		}
		event.CreatedAt = time.Unix(createdUnix, 0)
		events = append(events, event)
	}
	return events, rows.Err()
}
