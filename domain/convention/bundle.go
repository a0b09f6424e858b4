// Package convention models the read-only tenant bundle consumed by the
// indexing pipeline. The relational store that owns these records is an
// external collaborator; the structs here mirror its read model and are
// plain data, never written back.
package convention

import "time"

// Convention is one isolated event tenant.
type Convention struct {
	ID          int64
	Title       string
	Description string
	Venue       string
	StartDate   time.Time
	EndDate     time.Time
	Status      string
}

// ScheduleItem is a single timetable entry, the atomic unit of schedule
// indexing.
type ScheduleItem struct {
	ID          int64
	Title       string
	Location    string
	StartsAt    time.Time
	EndsAt      time.Time
	Description string
}

// ScheduleTemplate groups schedule items (e.g. one track or day).
type ScheduleTemplate struct {
	ID    int64
	Name  string
	Items []ScheduleItem
}

// Notice is an announcement posted to the convention.
type Notice struct {
	ID        int64
	Title     string
	Body      string
	Category  string
	Pinned    bool
	CreatedAt time.Time
}

// ActionItem is an operational to-do tracked for the convention.
type ActionItem struct {
	ID         int64
	Title      string
	Status     string
	Department string
	DueAt      time.Time
}

// GuestCount is an aggregate participant count. Guest records themselves
// never reach the indexing pipeline; only grouped counts do.
type GuestCount struct {
	Affiliation string
	Department  string
	Count       int
}

// Bundle is the fully-populated entity graph for one tenant, pre-fetched
// by the data source so the document builder does no I/O.
type Bundle struct {
	Convention  Convention
	Templates   []ScheduleTemplate
	Notices     []Notice
	ActionItems []ActionItem
	GuestCounts []GuestCount
}
