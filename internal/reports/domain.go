package reports

import (
	"time"

	"github.com/google/uuid"
)

// DailyReport captures site conditions for a project on a given day.
type DailyReport struct {
	ID          uuid.UUID     `json:"id"`
	ProjectID   uuid.UUID     `json:"projectId"`
	ReportDate  time.Time     `json:"reportDate"`
	Weather     string        `json:"weather,omitempty"`
	WorkforceNo *int          `json:"workforce,omitempty"`
	Progress    string        `json:"progress,omitempty"`
	Issues      string        `json:"issues,omitempty"`
	CreatedByID uuid.UUID     `json:"createdById"`
	Photos      []ReportPhoto `json:"photos,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// ReportPhoto is an image attached to a daily report, stored in object storage.
type ReportPhoto struct {
	ID        uuid.UUID `json:"id"`
	ReportID  uuid.UUID `json:"reportId"`
	ObjectKey string    `json:"objectKey"`
	Caption   string    `json:"caption,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateReportInput for creating daily reports.
type CreateReportInput struct {
	ProjectID   uuid.UUID
	ReportDate  time.Time
	Weather     string
	WorkforceNo *int
	Progress    string
	Issues      string
	CreatedByID uuid.UUID
}

// UpdateReportInput applies partial updates; nil fields are left untouched.
type UpdateReportInput struct {
	Weather     *string
	WorkforceNo *int
	Progress    *string
	Issues      *string
}

// ListReportsRequest filters report listings by project and date range.
type ListReportsRequest struct {
	ProjectID *uuid.UUID
	From      *time.Time
	To        *time.Time
}
