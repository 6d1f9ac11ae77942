package model

import "time"

// Doctor represents a clinician that appointments can be assigned to
// @Description Doctor information
type Doctor struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36" example:"0b6f1c1e-8a51-4a59-9d3e-3f0f1b7a2c11"`
	Name      string    `json:"name" gorm:"column:name;size:191;not null;index" example:"Dr. Sarah Johnson"`
	Specialty string    `json:"specialty" gorm:"column:specialty;size:64;not null" example:"Family Medicine"`
	Email     string    `json:"email" gorm:"column:email;size:191" example:"sarah.johnson@medicare.com"`
	Available bool      `json:"available" gorm:"column:available;default:true" example:"true"`
	Position  int       `json:"-" gorm:"column:position;not null;default:0;index"`
	CreatedAt time.Time `json:"created_at"`
}

// DefaultDoctors is the roster seeded at startup, in enumeration order.
var DefaultDoctors = []Doctor{
	{Name: "Dr. Sarah Johnson", Specialty: SpecialtyFamilyMedicine, Email: "sarah.johnson@medicare.com", Available: true},
	{Name: "Dr. Michael Chen", Specialty: SpecialtyCardiology, Email: "michael.chen@medicare.com", Available: true},
	{Name: "Dr. Emily Rodriguez", Specialty: SpecialtyDermatology, Email: "emily.rodriguez@medicare.com", Available: true},
	{Name: "Dr. James Wilson", Specialty: SpecialtyOrthopedics, Email: "james.wilson@medicare.com", Available: true},
	{Name: "Dr. Lisa Martinez", Specialty: SpecialtyPediatrics, Email: "lisa.martinez@medicare.com", Available: true},
}
