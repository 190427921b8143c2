package attainment

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"backoffice-backend/internal/logging"
	"backoffice-backend/internal/models"
	"backoffice-backend/internal/period"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type Options struct {
	Location    *time.Location
	Concurrency int
	Logger      *slog.Logger
	Now         func() time.Time
}

type Service struct {
	targets     TargetLookup
	revenue     RevenueAggregator
	users       UserDirectory
	loc         *time.Location
	concurrency int
	logger      *slog.Logger
	now         func() time.Time
}

func NewService(targets TargetLookup, revenue RevenueAggregator, users UserDirectory, opts Options) *Service {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		targets:     targets,
		revenue:     revenue,
		users:       users,
		loc:         opts.Location,
		concurrency: opts.Concurrency,
		logger:      logging.WithComponent(opts.Logger, logging.ComponentAttainment),
		now:         opts.Now,
	}
}

// Evaluate computes one target's attainment. A malformed period key or a
// negative amount is reported on the result; only store failures are
// returned as errors.
func (s *Service) Evaluate(ctx context.Context, target models.Target) (Result, error) {
	res := Result{
		TargetID:       target.ID,
		OwnerID:        target.OwnerID,
		TargetType:     target.TargetType,
		TargetPeriod:   target.TargetPeriod,
		TargetAmount:   target.TargetAmount,
		AchievedAmount: decimal.Zero,
	}
	if target.Owner != nil {
		res.OwnerName = target.Owner.Name
	}

	if target.TargetAmount.IsNegative() {
		res.Error = "negative target amount"
		return res, nil
	}

	rng, err := period.Resolve(target.TargetPeriod, target.TargetType, s.loc)
	if err != nil {
		s.logger.WarnContext(ctx, "skipping target with invalid period",
			"target_id", target.ID, logging.FieldError, err.Error())
		res.Error = err.Error()
		return res, nil
	}
	start, end := rng.Start, rng.End
	res.StartDate, res.EndDate = &start, &end

	rev, err := s.revenue.SumRevenue(ctx, RevenueQuery{
		Period:      rng,
		Attribution: AttributionFilter{OwnerID: target.OwnerID},
		Status:      models.InvoicePaid,
	})
	if err != nil {
		return res, fmt.Errorf("sum revenue for target %d: %w", target.ID, err)
	}

	res.AchievedAmount = rev.Total
	res.InvoiceCount = rev.Count
	res.Percentage = Percentage(target.TargetAmount, rev.Total)
	return res, nil
}

// ForOwner evaluates every active target of the given type for one owner,
// for company-wide targets only, or for all owners when neither is set.
func (s *Service) ForOwner(ctx context.Context, q OwnerQuery) ([]Result, error) {
	targets, err := s.targets.ListTargets(ctx, TargetQuery{
		OwnerID:     q.OwnerID,
		CompanyOnly: q.CompanyOnly,
		Type:        q.Type,
		ActiveOnly:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("list targets: %w", err)
	}
	if err := s.attachOwners(ctx, targets); err != nil {
		return nil, err
	}

	results := make([]Result, len(targets))
	if err := s.evaluateInto(ctx, targets, results); err != nil {
		return nil, err
	}
	return results, nil
}

// BatchReport builds one report per user covering the req.Periods most
// recent periods. Users without targets get an empty result list.
func (s *Service) BatchReport(ctx context.Context, req BatchRequest) ([]UserReport, error) {
	if req.Periods < 1 {
		return nil, fmt.Errorf("periods must be positive, got %d", req.Periods)
	}
	roles := req.Roles
	if len(req.UserIDs) == 0 && len(roles) == 0 {
		roles = []models.UserRole{models.RoleSales}
	}

	users, err := s.users.ListUsers(ctx, UserQuery{IDs: req.UserIDs, Roles: roles, ActiveOnly: true})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	keys := period.Recent(req.TargetType, req.Periods, s.now(), s.loc)
	s.logger.DebugContext(ctx, "assembling batch report",
		"users", len(users), "target_type", req.TargetType, "periods", keys)

	// 1. kullanıcı başına hedefler
	perUser := make([][]models.Target, len(users))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i := range users {
		ownerID := users[i].ID
		g.Go(func() error {
			targets, err := s.targets.ListTargets(gctx, TargetQuery{
				OwnerID:    &ownerID,
				Type:       req.TargetType,
				ActiveOnly: true,
				Periods:    keys,
			})
			if err != nil {
				return fmt.Errorf("list targets for user %d: %w", ownerID, err)
			}
			sort.SliceStable(targets, func(a, b int) bool {
				return targets[a].TargetPeriod < targets[b].TargetPeriod
			})
			for j := range targets {
				targets[j].Owner = &users[i]
			}
			perUser[i] = targets
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// 2. (kullanıcı, dönem) hesapları
	reports := make([]UserReport, len(users))
	var all []models.Target
	offsets := make([]int, len(users))
	for i, u := range users {
		reports[i] = UserReport{UserID: u.ID, UserName: u.Name, Role: u.Role, Results: make([]Result, len(perUser[i]))}
		offsets[i] = len(all)
		all = append(all, perUser[i]...)
	}

	flat := make([]Result, len(all))
	if err := s.evaluateInto(ctx, all, flat); err != nil {
		return nil, err
	}
	for i := range reports {
		copy(reports[i].Results, flat[offsets[i]:offsets[i]+len(reports[i].Results)])
	}
	return reports, nil
}

// evaluateInto fans the evaluations out and writes results[i] for targets[i].
// The first store error cancels the remaining work.
func (s *Service) evaluateInto(ctx context.Context, targets []models.Target, results []Result) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i := range targets {
		g.Go(func() error {
			res, err := s.Evaluate(gctx, targets[i])
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	return g.Wait()
}

func (s *Service) attachOwners(ctx context.Context, targets []models.Target) error {
	seen := make(map[uint]bool)
	var ids []uint
	for _, t := range targets {
		if t.OwnerID != nil && t.Owner == nil && !seen[*t.OwnerID] {
			seen[*t.OwnerID] = true
			ids = append(ids, *t.OwnerID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	users, err := s.users.ListUsers(ctx, UserQuery{IDs: ids})
	if err != nil {
		return fmt.Errorf("list target owners: %w", err)
	}
	byID := make(map[uint]*models.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}
	for i := range targets {
		if targets[i].OwnerID != nil && targets[i].Owner == nil {
			targets[i].Owner = byID[*targets[i].OwnerID]
		}
	}
	return nil
}
