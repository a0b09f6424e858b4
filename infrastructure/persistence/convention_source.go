package persistence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/confluxhq/conflux/domain/convention"
	"github.com/confluxhq/conflux/internal/database"
)

// Row models for the externally-owned convention schema. These tables
// belong to the event-management application; this package only ever
// reads them.

type conventionModel struct {
	ID          int64     `gorm:"column:id;primaryKey"`
	Title       string    `gorm:"column:title"`
	Description string    `gorm:"column:description"`
	Venue       string    `gorm:"column:venue"`
	StartDate   time.Time `gorm:"column:start_date"`
	EndDate     time.Time `gorm:"column:end_date"`
	Status      string    `gorm:"column:status;index"`
}

func (conventionModel) TableName() string { return "conventions" }

type scheduleTemplateModel struct {
	ID           int64  `gorm:"column:id;primaryKey"`
	ConventionID int64  `gorm:"column:convention_id;index"`
	Name         string `gorm:"column:name"`
}

func (scheduleTemplateModel) TableName() string { return "schedule_templates" }

type scheduleItemModel struct {
	ID          int64     `gorm:"column:id;primaryKey"`
	TemplateID  int64     `gorm:"column:template_id;index"`
	Title       string    `gorm:"column:title"`
	Location    string    `gorm:"column:location"`
	StartsAt    time.Time `gorm:"column:starts_at"`
	EndsAt      time.Time `gorm:"column:ends_at"`
	Description string    `gorm:"column:description"`
}

func (scheduleItemModel) TableName() string { return "schedule_items" }

type noticeModel struct {
	ID           int64     `gorm:"column:id;primaryKey"`
	ConventionID int64     `gorm:"column:convention_id;index"`
	Title        string    `gorm:"column:title"`
	Body         string    `gorm:"column:body"`
	Category     string    `gorm:"column:category"`
	Pinned       bool      `gorm:"column:pinned"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (noticeModel) TableName() string { return "notices" }

type actionItemModel struct {
	ID           int64     `gorm:"column:id;primaryKey"`
	ConventionID int64     `gorm:"column:convention_id;index"`
	Title        string    `gorm:"column:title"`
	Status       string    `gorm:"column:status"`
	Department   string    `gorm:"column:department"`
	DueAt        time.Time `gorm:"column:due_at"`
}

func (actionItemModel) TableName() string { return "action_items" }

type guestModel struct {
	ID           int64  `gorm:"column:id;primaryKey"`
	ConventionID int64  `gorm:"column:convention_id;index"`
	Name         string `gorm:"column:name"`
	Affiliation  string `gorm:"column:affiliation"`
	Department   string `gorm:"column:department"`
}

func (guestModel) TableName() string { return "guests" }

// ConventionSource implements convention.DataSource against the
// event-management schema. Guest rows are only ever read as GROUP BY
// aggregates so no personal record leaves this type.
type ConventionSource struct {
	db     database.Database
	logger *slog.Logger
}

// NewConventionSource creates a ConventionSource.
func NewConventionSource(db database.Database, logger *slog.Logger) *ConventionSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConventionSource{db: db, logger: logger}
}

// ActiveConventionIDs lists tenants whose status makes them eligible for
// indexing.
func (s *ConventionSource) ActiveConventionIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := s.db.Session(ctx).
		Model(&conventionModel{}).
		Where("status IN ?", []string{"active", "upcoming", "ongoing"}).
		Order("id ASC").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("list active conventions: %w", err)
	}
	return ids, nil
}

// Bundle fetches the full entity graph for one tenant.
func (s *ConventionSource) Bundle(ctx context.Context, conventionID int64) (convention.Bundle, error) {
	db := s.db.Session(ctx)

	var conv conventionModel
	if err := db.First(&conv, "id = ?", conventionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return convention.Bundle{}, fmt.Errorf("%w: convention %d", database.ErrNotFound, conventionID)
		}
		return convention.Bundle{}, fmt.Errorf("load convention %d: %w", conventionID, err)
	}

	templates, err := s.templates(db, conventionID)
	if err != nil {
		return convention.Bundle{}, err
	}

	var notices []noticeModel
	err = db.Where("convention_id = ?", conventionID).
		Order("pinned DESC, created_at DESC").
		Find(&notices).Error
	if err != nil {
		return convention.Bundle{}, fmt.Errorf("load notices for convention %d: %w", conventionID, err)
	}

	var actionItems []actionItemModel
	err = db.Where("convention_id = ?", conventionID).Order("due_at ASC").Find(&actionItems).Error
	if err != nil {
		return convention.Bundle{}, fmt.Errorf("load action items for convention %d: %w", conventionID, err)
	}

	guestCounts, err := s.guestCounts(db, conventionID)
	if err != nil {
		return convention.Bundle{}, err
	}

	bundle := convention.Bundle{
		Convention: convention.Convention{
			ID:          conv.ID,
			Title:       conv.Title,
			Description: conv.Description,
			Venue:       conv.Venue,
			StartDate:   conv.StartDate,
			EndDate:     conv.EndDate,
			Status:      conv.Status,
		},
		Templates:   templates,
		GuestCounts: guestCounts,
	}
	for _, n := range notices {
		bundle.Notices = append(bundle.Notices, convention.Notice{
			ID:        n.ID,
			Title:     n.Title,
			Body:      n.Body,
			Category:  n.Category,
			Pinned:    n.Pinned,
			CreatedAt: n.CreatedAt,
		})
	}
	for _, a := range actionItems {
		bundle.ActionItems = append(bundle.ActionItems, convention.ActionItem{
			ID:         a.ID,
			Title:      a.Title,
			Status:     a.Status,
			Department: a.Department,
			DueAt:      a.DueAt,
		})
	}
	return bundle, nil
}

func (s *ConventionSource) templates(db *gorm.DB, conventionID int64) ([]convention.ScheduleTemplate, error) {
	var templateRows []scheduleTemplateModel
	err := db.Where("convention_id = ?", conventionID).Order("id ASC").Find(&templateRows).Error
	if err != nil {
		return nil, fmt.Errorf("load schedule templates for convention %d: %w", conventionID, err)
	}
	if len(templateRows) == 0 {
		return nil, nil
	}

	templateIDs := make([]int64, len(templateRows))
	for i, t := range templateRows {
		templateIDs[i] = t.ID
	}

	var itemRows []scheduleItemModel
	err = db.Where("template_id IN ?", templateIDs).Order("starts_at ASC").Find(&itemRows).Error
	if err != nil {
		return nil, fmt.Errorf("load schedule items for convention %d: %w", conventionID, err)
	}

	itemsByTemplate := make(map[int64][]convention.ScheduleItem, len(templateRows))
	for _, item := range itemRows {
		itemsByTemplate[item.TemplateID] = append(itemsByTemplate[item.TemplateID], convention.ScheduleItem{
			ID:          item.ID,
			Title:       item.Title,
			Location:    item.Location,
			StartsAt:    item.StartsAt,
			EndsAt:      item.EndsAt,
			Description: item.Description,
		})
	}

	templates := make([]convention.ScheduleTemplate, len(templateRows))
	for i, t := range templateRows {
		templates[i] = convention.ScheduleTemplate{
			ID:    t.ID,
			Name:  t.Name,
			Items: itemsByTemplate[t.ID],
		}
	}
	return templates, nil
}

func (s *ConventionSource) guestCounts(db *gorm.DB, conventionID int64) ([]convention.GuestCount, error) {
	var counts []convention.GuestCount
	err := db.Model(&guestModel{}).
		Select("affiliation, department, COUNT(*) AS count").
		Where("convention_id = ?", conventionID).
		Group("affiliation, department").
		Order("affiliation ASC, department ASC").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("aggregate guest counts for convention %d: %w", conventionID, err)
	}
	return counts, nil
}

// MigrateConventionSchema creates the externally-owned tables. Production
// deployments share the event-management database where the tables
// already exist; this exists for tests and local sqlite setups.
func MigrateConventionSchema(db database.Database) error {
	return db.GORM().AutoMigrate(
		&conventionModel{},
		&scheduleTemplateModel{},
		&scheduleItemModel{},
		&noticeModel{},
		&actionItemModel{},
		&guestModel{},
	)
}

var _ convention.DataSource = (*ConventionSource)(nil)
