package model

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// EventLog represents a persisted booking or request event
type EventLog struct {
	gorm.Model
	EventType       string         `json:"event_type" gorm:"column:event_type;type:varchar(64);index"`
	AppointmentCode string         `json:"appointment_code" gorm:"column:appointment_code;type:varchar(32);index"`
	DoctorID        string         `json:"doctor_id" gorm:"column:doctor_id;type:varchar(36);index"`
	IP              string         `json:"ip" gorm:"column:ip;type:varchar(45)"`
	UserAgent       string         `json:"user_agent" gorm:"column:user_agent;type:varchar(512)"`
	Message         string         `json:"message" gorm:"column:message;type:text"`
	Details         datatypes.JSON `json:"details" gorm:"column:details;type:json"`
}
