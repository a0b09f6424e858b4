// Package documents converts a tenant's entity graph into atomic,
// metadata-tagged text chunks for indexing.
package documents

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/confluxhq/conflux/domain/convention"
	"github.com/confluxhq/conflux/domain/rag"
	"github.com/confluxhq/conflux/infrastructure/chunking"
)

// Chunk type values stored under the rag.MetaType key.
const (
	TypeOverview     = "convention_overview"
	TypeScheduleItem = "schedule_item"
	TypeNotice       = "notice"
	TypeActionItem   = "action_item"
	TypeGuestSummary = "guest_summary"
)

// Additional metadata keys for provenance.
const (
	MetaScheduleItemID = "schedule_item_id"
	MetaTemplateID     = "template_id"
	MetaNoticeID       = "notice_id"
	MetaActionItemID   = "action_item_id"
	MetaAffiliation    = "affiliation"
	MetaCategory       = "category"
	MetaLocation       = "location"
	MetaDate           = "date"
	MetaPart           = "part"
)

const dateLayout = "2006-01-02"

// Builder converts a convention.Bundle into document chunks. It is a pure
// transformation and performs no I/O.
type Builder struct {
	noticeParams chunking.Params
	logger       *slog.Logger
}

// NewBuilder creates a Builder.
func NewBuilder(logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		noticeParams: chunking.DefaultParams(),
		logger:       logger,
	}
}

// Build emits one chunk per logical unit of the bundle: the convention
// overview, each schedule item, each notice (split when long), each
// action item, and one aggregate summary per guest affiliation. Guest
// records are never chunked individually; only grouped counts appear.
func (b *Builder) Build(bundle convention.Bundle) []rag.DocumentChunk {
	conventionID := bundle.Convention.ID
	var chunks []rag.DocumentChunk

	if overview, ok := b.overviewChunk(bundle.Convention); ok {
		chunks = append(chunks, overview)
	}

	for _, template := range bundle.Templates {
		for _, item := range template.Items {
			if chunk, ok := b.scheduleChunk(conventionID, template, item); ok {
				chunks = append(chunks, chunk)
			}
		}
	}

	for _, notice := range bundle.Notices {
		chunks = append(chunks, b.noticeChunks(conventionID, notice)...)
	}

	for _, item := range bundle.ActionItems {
		if chunk, ok := b.actionItemChunk(conventionID, item); ok {
			chunks = append(chunks, chunk)
		}
	}

	chunks = append(chunks, b.guestSummaryChunks(conventionID, bundle.GuestCounts)...)

	return chunks
}

func (b *Builder) overviewChunk(c convention.Convention) (rag.DocumentChunk, bool) {
	if strings.TrimSpace(c.Title) == "" {
		return rag.DocumentChunk{}, false
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s is an event", c.Title)
	if c.Venue != "" {
		fmt.Fprintf(&sb, " held at %s", c.Venue)
	}
	if !c.StartDate.IsZero() {
		fmt.Fprintf(&sb, " running from %s to %s", c.StartDate.Format(dateLayout), c.EndDate.Format(dateLayout))
	}
	sb.WriteString(".")
	if c.Description != "" {
		sb.WriteString(" ")
		sb.WriteString(c.Description)
	}
	if c.Status != "" {
		fmt.Fprintf(&sb, " Current status: %s.", c.Status)
	}

	metadata := map[string]any{
		rag.MetaType:         TypeOverview,
		rag.MetaConventionID: c.ID,
	}
	if !c.StartDate.IsZero() {
		metadata[MetaDate] = c.StartDate.Format(dateLayout)
	}
	return rag.NewDocumentChunk(sb.String(), metadata), true
}

func (b *Builder) scheduleChunk(conventionID int64, template convention.ScheduleTemplate, item convention.ScheduleItem) (rag.DocumentChunk, bool) {
	if strings.TrimSpace(item.Title) == "" {
		b.logger.Debug("skipping schedule item without title",
			"convention_id", conventionID, "schedule_item_id", item.ID)
		return rag.DocumentChunk{}, false
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Schedule (%s): %s", template.Name, item.Title)
	if !item.StartsAt.IsZero() {
		fmt.Fprintf(&sb, " on %s from %s", item.StartsAt.Format(dateLayout), item.StartsAt.Format("15:04"))
		if !item.EndsAt.IsZero() {
			fmt.Fprintf(&sb, " to %s", item.EndsAt.Format("15:04"))
		}
	}
	if item.Location != "" {
		fmt.Fprintf(&sb, " at %s", item.Location)
	}
	sb.WriteString(".")
	if item.Description != "" {
		sb.WriteString(" ")
		sb.WriteString(item.Description)
	}

	metadata := map[string]any{
		rag.MetaType:         TypeScheduleItem,
		rag.MetaConventionID: conventionID,
		MetaScheduleItemID:   item.ID,
		MetaTemplateID:       template.ID,
	}
	if item.Location != "" {
		metadata[MetaLocation] = item.Location
	}
	if !item.StartsAt.IsZero() {
		metadata[MetaDate] = item.StartsAt.Format(dateLayout)
	}
	return rag.NewDocumentChunk(sb.String(), metadata), true
}

func (b *Builder) noticeChunks(conventionID int64, notice convention.Notice) []rag.DocumentChunk {
	body := strings.TrimSpace(notice.Body)
	title := strings.TrimSpace(notice.Title)
	if title == "" && body == "" {
		return nil
	}

	header := fmt.Sprintf("Notice: %s", title)
	if notice.Category != "" {
		header = fmt.Sprintf("Notice (%s): %s", notice.Category, title)
	}
	if !notice.CreatedAt.IsZero() {
		header += fmt.Sprintf(" (posted %s)", notice.CreatedAt.Format(dateLayout))
	}

	parts, err := chunking.Split(body, b.noticeParams)
	if err != nil {
		// Defaults are valid; only reachable with broken custom params.
		b.logger.Warn("notice body split failed, indexing unsplit",
			"convention_id", conventionID, "notice_id", notice.ID, "error", err)
		parts = []string{body}
	}
	if len(parts) == 0 {
		parts = []string{""}
	}

	chunks := make([]rag.DocumentChunk, 0, len(parts))
	for i, part := range parts {
		content := header
		if part != "" {
			content = header + " " + part
		}

		metadata := map[string]any{
			rag.MetaType:         TypeNotice,
			rag.MetaConventionID: conventionID,
			MetaNoticeID:         notice.ID,
		}
		if notice.Category != "" {
			metadata[MetaCategory] = notice.Category
		}
		if len(parts) > 1 {
			metadata[MetaPart] = i + 1
		}
		chunks = append(chunks, rag.NewDocumentChunk(content, metadata))
	}
	return chunks
}

func (b *Builder) actionItemChunk(conventionID int64, item convention.ActionItem) (rag.DocumentChunk, bool) {
	if strings.TrimSpace(item.Title) == "" {
		return rag.DocumentChunk{}, false
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Action item: %s", item.Title)
	if item.Status != "" {
		fmt.Fprintf(&sb, ", status %s", item.Status)
	}
	if item.Department != "" {
		fmt.Fprintf(&sb, ", owned by %s", item.Department)
	}
	if !item.DueAt.IsZero() {
		fmt.Fprintf(&sb, ", due %s", item.DueAt.Format(dateLayout))
	}
	sb.WriteString(".")

	metadata := map[string]any{
		rag.MetaType:         TypeActionItem,
		rag.MetaConventionID: conventionID,
		MetaActionItemID:     item.ID,
	}
	if !item.DueAt.IsZero() {
		metadata[MetaDate] = item.DueAt.Format(dateLayout)
	}
	return rag.NewDocumentChunk(sb.String(), metadata), true
}

// guestSummaryChunks emits one chunk per affiliation with counts grouped
// by department. No individual guest fields ever appear.
func (b *Builder) guestSummaryChunks(conventionID int64, counts []convention.GuestCount) []rag.DocumentChunk {
	if len(counts) == 0 {
		return nil
	}

	type group struct {
		total       int
		departments map[string]int
	}
	groups := make(map[string]*group)
	for _, c := range counts {
		g, ok := groups[c.Affiliation]
		if !ok {
			g = &group{departments: make(map[string]int)}
			groups[c.Affiliation] = g
		}
		g.total += c.Count
		if c.Department != "" {
			g.departments[c.Department] += c.Count
		}
	}

	affiliations := make([]string, 0, len(groups))
	for a := range groups {
		affiliations = append(affiliations, a)
	}
	sort.Strings(affiliations)

	chunks := make([]rag.DocumentChunk, 0, len(affiliations))
	for _, affiliation := range affiliations {
		g := groups[affiliation]

		var sb strings.Builder
		fmt.Fprintf(&sb, "Participants from %s: %d registered", displayAffiliation(affiliation), g.total)
		if len(g.departments) > 0 {
			departments := make([]string, 0, len(g.departments))
			for d := range g.departments {
				departments = append(departments, d)
			}
			sort.Strings(departments)
			byDept := make([]string, 0, len(departments))
			for _, d := range departments {
				byDept = append(byDept, fmt.Sprintf("%s (%d)", d, g.departments[d]))
			}
			fmt.Fprintf(&sb, ", by department: %s", strings.Join(byDept, ", "))
		}
		sb.WriteString(".")

		chunks = append(chunks, rag.NewDocumentChunk(sb.String(), map[string]any{
			rag.MetaType:         TypeGuestSummary,
			rag.MetaConventionID: conventionID,
			MetaAffiliation:      affiliation,
		}))
	}
	return chunks
}

func displayAffiliation(affiliation string) string {
	if affiliation == "" {
		return "unspecified affiliations"
	}
	return affiliation
}
