package repository

// WithID filters by the "id" column for integer-keyed tables.
func WithID(id int64) Option {
	return WithCondition("id", id)
}

// WithDocumentID filters by the "id" column for string-keyed tables.
func WithDocumentID(id string) Option {
	return WithCondition("id", id)
}

// WithDocumentIDIn filters by the "id" column using IN.
func WithDocumentIDIn(ids []string) Option {
	return WithConditionIn("id", ids)
}

// WithConventionID filters by the "convention_id" column.
func WithConventionID(id int64) Option {
	return WithCondition("convention_id", id)
}

// WithSourceType filters by the "source_type" column.
func WithSourceType(sourceType string) Option {
	return WithCondition("source_type", sourceType)
}

// WithActive filters for active rows (is_active = true).
func WithActive() Option {
	return WithCondition("is_active", true)
}

// WithUpdatedDesc orders by "updated_at" descending (most recent first).
func WithUpdatedDesc() Option {
	return WithOrderDesc("updated_at")
}
