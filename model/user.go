package model

import "time"

// User is a back-office account.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	Username  string    `json:"username" gorm:"column:username;uniqueIndex;size:191;not null"`
	Password  string    `json:"-" gorm:"column:password;size:255;not null"`
	CreatedAt time.Time `json:"created_at"`
}
