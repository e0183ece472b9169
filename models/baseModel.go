package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base carries the identity and timestamps shared by every table.
type Base struct {
	ID        string    `gorm:"primaryKey;size:36;column:id" json:"id"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// BeforeCreate assigns a UUID when the caller did not.
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// GetID returns the primary key.
func (b *Base) GetID() string {
	return b.ID
}

// SetID overwrites the primary key, used when an id arrives in the URL.
func (b *Base) SetID(id string) {
	b.ID = id
}

// Entity is implemented by every model embedding Base.
type Entity interface {
	GetID() string
	SetID(id string)
}

// StringPtr returns nil for an empty string.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// StringValue dereferences a possibly nil string.
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
