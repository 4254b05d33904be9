package models

import (
	"time"
)

// Timestamps is embedded by every persisted model. Rows are hard-deleted.
type Timestamps struct {
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

const (
	AccountParticipant = "participant"
	AccountHost        = "host"
)

// Profile is the optional, user-editable part of an account.
type Profile struct {
	Avatar      string     `json:"avatar,omitempty" gorm:"size:512"`
	Bio         string     `json:"bio,omitempty" gorm:"size:500"`
	Phone       string     `json:"phone,omitempty" gorm:"size:20"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	Location    string     `json:"location,omitempty" gorm:"size:100"`
}

// User is an account. Username and email are stored lowercase.
type User struct {
	ID           string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	FirstName    string     `json:"first_name" gorm:"size:50;not null"`
	LastName     string     `json:"last_name" gorm:"size:50"`
	Username     string     `json:"username" gorm:"size:30;uniqueIndex;not null"`
	Email        string     `json:"email" gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string     `json:"-" gorm:"not null"`
	AccountType  string     `json:"account_type" gorm:"size:16;not null;index"`
	Profile      Profile    `json:"profile" gorm:"embedded;embeddedPrefix:profile_"`
	IsActive     bool       `json:"is_active" gorm:"not null"`
	IsVerified   bool       `json:"is_verified" gorm:"not null"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	Timestamps
}

func (u *User) IsHost() bool        { return u.AccountType == AccountHost }
func (u *User) IsParticipant() bool { return u.AccountType == AccountParticipant }

// FullName joins first and last name, skipping an empty last name.
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// PublicProfile is what other users may see of an account.
type PublicProfile struct {
	ID          string    `json:"id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Username    string    `json:"username"`
	AccountType string    `json:"account_type"`
	Profile     Profile   `json:"profile"`
	IsVerified  bool      `json:"is_verified"`
	CreatedAt   time.Time `json:"created_at"`
}

func (u *User) Public() PublicProfile {
	return PublicProfile{
		ID:          u.ID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Username:    u.Username,
		AccountType: u.AccountType,
		Profile:     u.Profile,
		IsVerified:  u.IsVerified,
		CreatedAt:   u.CreatedAt,
	}
}
