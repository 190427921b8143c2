package attainment

import (
	"context"
	"time"

	"backoffice-backend/internal/models"
	"backoffice-backend/internal/period"

	"github.com/shopspring/decimal"
)

// AttributionFilter selects whose revenue is summed. OwnerID nil means
// company-wide: no created_by filter, unattributed invoices included.
type AttributionFilter struct {
	OwnerID *uint
}

type RevenueQuery struct {
	Period      period.Range
	Attribution AttributionFilter
	Status      models.InvoiceStatus // boşsa PAID
}

type Revenue struct {
	Total decimal.Decimal
	Count int64
}

type TargetQuery struct {
	OwnerID     *uint
	CompanyOnly bool // OwnerID IS NULL
	Type        models.TargetType
	ActiveOnly  bool
	Periods     []string
}

type UserQuery struct {
	Roles      []models.UserRole
	IDs        []uint
	ActiveOnly bool
}

// TargetLookup returns targets ordered by period ascending, then id.
type TargetLookup interface {
	ListTargets(ctx context.Context, q TargetQuery) ([]models.Target, error)
}

type RevenueAggregator interface {
	SumRevenue(ctx context.Context, q RevenueQuery) (Revenue, error)
}

type UserDirectory interface {
	ListUsers(ctx context.Context, q UserQuery) ([]models.User, error)
}

// Result is computed on every read and never stored.
type Result struct {
	TargetID       uint              `json:"target_id"`
	OwnerID        *uint             `json:"owner_id"`
	OwnerName      string            `json:"owner_name,omitempty"`
	TargetType     models.TargetType `json:"target_type"`
	TargetPeriod   string            `json:"target_period"`
	StartDate      *time.Time        `json:"start_date,omitempty"`
	EndDate        *time.Time        `json:"end_date,omitempty"`
	TargetAmount   decimal.Decimal   `json:"target_amount"`
	AchievedAmount decimal.Decimal   `json:"achieved_amount"`
	InvoiceCount   int64             `json:"invoice_count"`
	Percentage     float64           `json:"percentage"`
	Error          string            `json:"error,omitempty"`
}

type UserReport struct {
	UserID   uint            `json:"user_id"`
	UserName string          `json:"user_name"`
	Role     models.UserRole `json:"role"`
	Results  []Result        `json:"results"`
}

type OwnerQuery struct {
	OwnerID     *uint
	CompanyOnly bool
	Type        models.TargetType
}

type BatchRequest struct {
	UserIDs    []uint
	Roles      []models.UserRole // UserIDs ve Roles boşsa sales
	TargetType models.TargetType
	Periods    int
}
