package models

import "time"

// User represents an account created from a Google OAuth profile.
// GoogleID is the provider-issued identifier and never changes after creation.
// Name and Picture are pointers because the provider may omit them; SQLite
// stores NULL rather than an empty string, and the API echoes that null.
type User struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	GoogleID  string    `gorm:"column:google_id;uniqueIndex;not null" json:"google_id"`
	Email     string    `gorm:"column:email;not null" json:"email"`
	Name      *string   `gorm:"column:name" json:"name"`
	Picture   *string   `gorm:"column:picture" json:"picture"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	LastLogin time.Time `gorm:"column:last_login" json:"last_login"`
}
