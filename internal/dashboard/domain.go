package dashboard

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Summary aggregates headline counts for the landing page. Recent reports
// cover the trailing seven days.
type Summary struct {
	ActiveProjects  int64            `json:"activeProjects"`
	ActiveContracts int64            `json:"activeContracts"`
	PendingBills    int64            `json:"pendingBills"`
	PendingPayments int64            `json:"pendingPayments"`
	RecentReports   int64            `json:"recentReports"`
	ActiveWork      []ProjectSummary `json:"activeWork"`
}

// ProjectSummary describes one active project with milestone-based progress.
type ProjectSummary struct {
	ID                  uuid.UUID       `json:"id"`
	Name                string          `json:"name"`
	Code                string          `json:"code"`
	TotalMilestones     int64           `json:"totalMilestones"`
	CompletedMilestones int64           `json:"completedMilestones"`
	Progress            decimal.Decimal `json:"progress"`
}
