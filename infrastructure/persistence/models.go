// Package persistence provides the gorm-backed stores owned by the
// retrieval core: vector documents and provider settings. Convention
// tables are owned by the host application and read through the
// ConventionSource adapter only.
package persistence

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Float64Slice stores []float64 as JSON so the same model works on both
// SQLite and PostgreSQL.
type Float64Slice []float64

// Scan implements sql.Scanner.
func (f *Float64Slice) Scan(value any) error {
	if value == nil {
		*f = nil
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into Float64Slice", value)
	}

	return json.Unmarshal(data, f)
}

// Value implements driver.Valuer.
func (f Float64Slice) Value() (driver.Value, error) {
	if f == nil {
		return nil, nil
	}
	return json.Marshal([]float64(f))
}

// VectorDocumentModel is one persisted (content, embedding, tenant,
// metadata) record.
type VectorDocumentModel struct {
	ID           string       `gorm:"column:id;primaryKey"`
	ConventionID int64        `gorm:"column:convention_id;index"`
	SourceType   string       `gorm:"column:source_type;index"`
	Content      string       `gorm:"column:content"`
	Embedding    Float64Slice `gorm:"column:embedding;type:json"`
	Metadata     string       `gorm:"column:metadata"`
	CreatedAt    time.Time    `gorm:"column:created_at"`
	UpdatedAt    time.Time    `gorm:"column:updated_at"`
}

// TableName sets the table name.
func (VectorDocumentModel) TableName() string { return "vector_documents" }

// ProviderSettingModel is one persisted LLM provider configuration.
// The at-most-one-active invariant is enforced by the activation
// operation, not by the schema.
type ProviderSettingModel struct {
	ID                 int64     `gorm:"column:id;primaryKey;autoIncrement"`
	ProviderName       string    `gorm:"column:provider_name;index"`
	APIKey             string    `gorm:"column:api_key"`
	BaseURL            string    `gorm:"column:base_url"`
	ModelName          string    `gorm:"column:model_name"`
	IsActive           bool      `gorm:"column:is_active;index"`
	AdditionalSettings string    `gorm:"column:additional_settings"`
	CreatedAt          time.Time `gorm:"column:created_at"`
	UpdatedAt          time.Time `gorm:"column:updated_at"`
}

// TableName sets the table name.
func (ProviderSettingModel) TableName() string { return "provider_settings" }
