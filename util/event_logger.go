package util

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/ariebrainware/clinic-booking/model"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// EventType represents different types of booking and request events
type EventType string

const (
	EventAppointmentCreated EventType = "APPOINTMENT_CREATED"
	EventAppointmentUpdated EventType = "APPOINTMENT_UPDATED"
	EventSlotConflict       EventType = "SLOT_CONFLICT"
	EventValidationFailed   EventType = "VALIDATION_FAILED"
	EventClassifierFallback EventType = "CLASSIFIER_FALLBACK"
	EventRateLimitExceeded  EventType = "RATE_LIMIT_EXCEEDED"
	EventEndpointCall       EventType = "ENDPOINT_CALL"
)

// BookingEvent represents an event to be logged
type BookingEvent struct {
	EventType       EventType
	AppointmentCode string
	DoctorID        string
	IP              string
	UserAgent       string
	Message         string
	Details         map[string]interface{}
}

var (
	eventMu     sync.RWMutex
	eventLogger *zerolog.Logger
	eventDB     *gorm.DB
)

// SetEventLoggerDB sets a gorm DB instance used to persist events.
// Call this during application startup after DB initialization; nil disables persistence.
func SetEventLoggerDB(db *gorm.DB) {
	eventMu.Lock()
	defer eventMu.Unlock()
	eventDB = db
}

// SetEventLoggerForTest redirects event output; nil restores the global logger.
func SetEventLoggerForTest(logger *zerolog.Logger) {
	eventMu.Lock()
	defer eventMu.Unlock()
	eventLogger = logger
}

func currentEventSinks() (*zerolog.Logger, *gorm.DB) {
	eventMu.RLock()
	defer eventMu.RUnlock()
	if eventLogger != nil {
		return eventLogger, eventDB
	}
	return &log.Logger, eventDB
}

const maxLogValueRunes = 200

// sanitizeLogValue removes newlines and other characters that could break log parsing
func sanitizeLogValue(value string) string {
	value = strings.ReplaceAll(value, "\n", " ")
	value = strings.ReplaceAll(value, "\r", " ")
	value = strings.ReplaceAll(value, "\t", " ")
	value = strings.ToValidUTF8(value, "")
	if runes := []rune(value); len(runes) > maxLogValueRunes {
		value = string(runes[:maxLogValueRunes]) + "..."
	}
	return value
}

// LogBookingEvent logs an event and persists it best-effort when a DB is set.
func LogBookingEvent(event BookingEvent) {
	logger, db := currentEventSinks()

	entry := logger.Info()
	if event.EventType == EventClassifierFallback || event.EventType == EventRateLimitExceeded {
		entry = logger.Warn()
	}
	entry = entry.
		Str("event", sanitizeLogValue(string(event.EventType))).
		Str("ip", sanitizeLogValue(event.IP)).
		Str("user_agent", sanitizeLogValue(event.UserAgent))
	if event.AppointmentCode != "" {
		entry = entry.Str("appointment_code", sanitizeLogValue(event.AppointmentCode))
	}
	if event.DoctorID != "" {
		entry = entry.Str("doctor_id", sanitizeLogValue(event.DoctorID))
	}
	if len(event.Details) > 0 {
		// Details may carry patient-supplied text; only the count reaches the log line.
		entry = entry.Int("details_count", len(event.Details))
	}
	entry.Msg(sanitizeLogValue(event.Message))

	if db == nil {
		return
	}

	var details datatypes.JSON
	if event.Details != nil {
		if b, err := json.Marshal(event.Details); err == nil {
			details = datatypes.JSON(b)
		}
	}

	row := model.EventLog{
		EventType:       string(event.EventType),
		AppointmentCode: sanitizeLogValue(event.AppointmentCode),
		DoctorID:        sanitizeLogValue(event.DoctorID),
		IP:              sanitizeLogValue(event.IP),
		UserAgent:       sanitizeLogValue(event.UserAgent),
		Message:         sanitizeLogValue(event.Message),
		Details:         details,
	}
	if err := db.Create(&row).Error; err != nil {
		logger.Error().Err(err).Msg("failed to persist booking event")
	}
}

// LogRateLimitExceeded logs when rate limit is exceeded
func LogRateLimitExceeded(ip, endpoint string) {
	LogBookingEvent(BookingEvent{
		EventType: EventRateLimitExceeded,
		IP:        ip,
		Message:   fmt.Sprintf("Rate limit exceeded for endpoint: %s", endpoint),
	})
}

// LogClassifierFallback records that classification degraded to the default result.
func LogClassifierFallback(reason string) {
	LogBookingEvent(BookingEvent{
		EventType: EventClassifierFallback,
		Message:   fmt.Sprintf("Classifier fallback: %s", reason),
	})
}
