package entities

import (
	"time"

	"vision-chat/server/internal/domain/file"
)

// File represents the database schema for stored file metadata.
type File struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	PublicID    string  `gorm:"type:varchar(50);uniqueIndex;not null"`
	Name        string  `gorm:"type:varchar(256)"`
	Description *string `gorm:"type:text"`
	MimeType    string  `gorm:"type:varchar(100);not null"`
	Kind        string  `gorm:"type:varchar(20);not null"`
	SizeBytes   int64   `gorm:"not null"`
	StorageKey  string  `gorm:"type:varchar(256);uniqueIndex;not null"`
	URL         string  `gorm:"type:text;not null"`
}

// TableName specifies the table name for File.
func (File) TableName() string {
	return "files"
}

// NewSchemaFile maps a domain file onto its database schema.
func NewSchemaFile(f *file.File) *File {
	return &File{
		ID:          f.ID,
		PublicID:    f.PublicID,
		Name:        f.Name,
		Description: f.Description,
		MimeType:    f.MimeType,
		Kind:        string(f.Kind),
		SizeBytes:   f.SizeBytes,
		StorageKey:  f.StorageKey,
		URL:         f.URL,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// EtoD converts the entity to its domain representation.
func (e *File) EtoD() *file.File {
	return &file.File{
		ID:          e.ID,
		PublicID:    e.PublicID,
		Name:        e.Name,
		Description: e.Description,
		MimeType:    e.MimeType,
		Kind:        file.Kind(e.Kind),
		SizeBytes:   e.SizeBytes,
		StorageKey:  e.StorageKey,
		URL:         e.URL,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}
