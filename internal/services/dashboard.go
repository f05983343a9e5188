package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ecocycle/connect/internal/store"
	"github.com/ecocycle/connect/types"
)

const (
	recentLimit          = 5
	artisanBrowseLimit   = 10
	platformCommissionPc = 5
)

// ErrUnknownRole is returned for accounts whose role has no dashboard.
var ErrUnknownRole = errors.New("invalid user role")

// MarketplaceRepository defines the read and seed operations over listings.
type MarketplaceRepository interface {
	ListMaterials(ctx context.Context, f store.MaterialFilter) ([]types.Material, error)
	CountMaterials(ctx context.Context, f store.MaterialFilter) (int, error)
	ListRequests(ctx context.Context, f store.RequestFilter) ([]types.MaterialRequest, error)
	CountRequests(ctx context.Context, f store.RequestFilter) (int, error)
	CountTransactions(ctx context.Context, f store.RequestFilter) (int, error)
	SumCompletedTransactions(ctx context.Context, f store.RequestFilter) (float64, error)
	AddMaterial(ctx context.Context, m types.Material) (types.Material, error)
	AddRequest(ctx context.Context, r types.MaterialRequest) (types.MaterialRequest, error)
	AddTransaction(ctx context.Context, t types.Transaction) (types.Transaction, error)
}

// DashboardService builds the role-dependent dashboard snapshot.
type DashboardService struct {
	users  UserRepository
	market MarketplaceRepository
}

func NewDashboardService(users UserRepository, market MarketplaceRepository) *DashboardService {
	return &DashboardService{users: users, market: market}
}

// counter accumulates the first error across a run of queries.
type counter struct {
	ctx context.Context
	err error
}

func (c *counter) count(fn func(context.Context) (int, error)) int {
	if c.err != nil {
		return 0
	}
	n, err := fn(c.ctx)
	c.err = err
	return n
}

func (c *counter) sum(fn func(context.Context) (float64, error)) float64 {
	if c.err != nil {
		return 0
	}
	v, err := fn(c.ctx)
	c.err = err
	return v
}

// Build returns the dashboard for account.
func (s *DashboardService) Build(ctx context.Context, account types.Account) (types.Dashboard, error) {
	var (
		dash types.Dashboard
		err  error
	)
	switch account.Role {
	case types.RoleIndustry:
		dash, err = s.industry(ctx, account)
	case types.RoleArtisan:
		dash, err = s.artisan(ctx, account)
	case types.RoleAdmin:
		dash, err = s.admin(ctx)
	default:
		return types.Dashboard{}, ErrUnknownRole
	}
	if err != nil {
		return types.Dashboard{}, fmt.Errorf("build %s dashboard: %w", account.Role, err)
	}
	dash.UserType = account.Role
	return dash, nil
}

func (s *DashboardService) industry(ctx context.Context, account types.Account) (types.Dashboard, error) {
	owned := store.MaterialFilter{OwnerID: account.ID}
	received := store.RequestFilter{OwnerID: account.ID}
	c := &counter{ctx: ctx}

	stats := types.DashboardStats{
		TotalMaterials: c.count(func(ctx context.Context) (int, error) { return s.market.CountMaterials(ctx, owned) }),
		AvailableMaterials: c.count(func(ctx context.Context) (int, error) {
			return s.market.CountMaterials(ctx, store.MaterialFilter{OwnerID: account.ID, Status: types.MaterialAvailable})
		}),
		TotalRequests: c.count(func(ctx context.Context) (int, error) { return s.market.CountRequests(ctx, received) }),
		PendingRequests: c.count(func(ctx context.Context) (int, error) {
			return s.market.CountRequests(ctx, store.RequestFilter{OwnerID: account.ID, Status: types.RequestPending})
		}),
		TotalTransactions: c.count(func(ctx context.Context) (int, error) { return s.market.CountTransactions(ctx, received) }),
		TotalRevenue:      c.sum(func(ctx context.Context) (float64, error) { return s.market.SumCompletedTransactions(ctx, received) }),
	}
	if c.err != nil {
		return types.Dashboard{}, c.err
	}

	owned.Limit = recentLimit
	materials, err := s.market.ListMaterials(ctx, owned)
	if err != nil {
		return types.Dashboard{}, err
	}
	received.Limit = recentLimit
	requests, err := s.market.ListRequests(ctx, received)
	if err != nil {
		return types.Dashboard{}, err
	}

	return types.Dashboard{Stats: stats, RecentMaterials: materials, RecentRequests: requests}, nil
}

func (s *DashboardService) artisan(ctx context.Context, account types.Account) (types.Dashboard, error) {
	sent := store.RequestFilter{RequesterID: account.ID}
	c := &counter{ctx: ctx}

	stats := types.DashboardStats{
		TotalRequests: c.count(func(ctx context.Context) (int, error) { return s.market.CountRequests(ctx, sent) }),
		AcceptedRequests: c.count(func(ctx context.Context) (int, error) {
			return s.market.CountRequests(ctx, store.RequestFilter{RequesterID: account.ID, Status: types.RequestAccepted})
		}),
		TotalSpent: c.sum(func(ctx context.Context) (float64, error) { return s.market.SumCompletedTransactions(ctx, sent) }),
	}
	if account.Location != "" {
		stats.AvailableMaterials = c.count(func(ctx context.Context) (int, error) {
			return s.market.CountMaterials(ctx, store.MaterialFilter{
				Status:           types.MaterialAvailable,
				LocationContains: account.Location,
			})
		})
	}
	if c.err != nil {
		return types.Dashboard{}, c.err
	}

	available, err := s.market.ListMaterials(ctx, store.MaterialFilter{Status: types.MaterialAvailable, Limit: artisanBrowseLimit})
	if err != nil {
		return types.Dashboard{}, err
	}
	sent.Limit = recentLimit
	requests, err := s.market.ListRequests(ctx, sent)
	if err != nil {
		return types.Dashboard{}, err
	}

	return types.Dashboard{Stats: stats, AvailableMaterials: available, RecentRequests: requests}, nil
}

func (s *DashboardService) admin(ctx context.Context) (types.Dashboard, error) {
	all := store.RequestFilter{}
	c := &counter{ctx: ctx}

	stats := types.DashboardStats{
		TotalUsers:      c.count(func(ctx context.Context) (int, error) { return s.users.CountUsers(ctx, "") }),
		TotalIndustries: c.count(func(ctx context.Context) (int, error) { return s.users.CountUsers(ctx, types.RoleIndustry) }),
		TotalArtisans:   c.count(func(ctx context.Context) (int, error) { return s.users.CountUsers(ctx, types.RoleArtisan) }),
		TotalMaterials: c.count(func(ctx context.Context) (int, error) {
			return s.market.CountMaterials(ctx, store.MaterialFilter{})
		}),
		TotalRequests:     c.count(func(ctx context.Context) (int, error) { return s.market.CountRequests(ctx, all) }),
		TotalTransactions: c.count(func(ctx context.Context) (int, error) { return s.market.CountTransactions(ctx, all) }),
	}
	revenue := c.sum(func(ctx context.Context) (float64, error) { return s.market.SumCompletedTransactions(ctx, all) })
	if c.err != nil {
		return types.Dashboard{}, c.err
	}
	stats.PlatformRevenue = revenue * platformCommissionPc / 100

	users, err := s.users.RecentUsers(ctx, recentLimit)
	if err != nil {
		return types.Dashboard{}, err
	}
	materials, err := s.market.ListMaterials(ctx, store.MaterialFilter{Limit: recentLimit})
	if err != nil {
		return types.Dashboard{}, err
	}
	requests, err := s.market.ListRequests(ctx, store.RequestFilter{Limit: recentLimit})
	if err != nil {
		return types.Dashboard{}, err
	}

	return types.Dashboard{
		Stats:           stats,
		RecentUsers:     users,
		RecentMaterials: materials,
		RecentRequests:  requests,
	}, nil
}
