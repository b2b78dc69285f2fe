package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/freshcart/marketplace/internal/core/domain"
	"github.com/freshcart/marketplace/internal/core/ports"
	"github.com/freshcart/marketplace/internal/core/trust"
)

type AdminService struct {
	accounts ports.AccountRepository
	orders   ports.OrderRepository
	audit    ports.SecurityLog
	log      zerolog.Logger
}

func NewAdminService(accounts ports.AccountRepository, orders ports.OrderRepository, audit ports.SecurityLog, log zerolog.Logger) *AdminService {
	return &AdminService{accounts: accounts, orders: orders, audit: audit, log: log}
}

// ListVendors returns vendors at or above minTrust, in repository order.
func (s *AdminService) ListVendors(ctx context.Context, actor domain.Actor, minTrust float64) ([]ports.VendorView, error) {
	if !actor.Can(domain.ActionManageUsers) {
		return nil, domain.ErrForbidden
	}
	vendors, err := s.accounts.ListByRole(ctx, domain.RoleVendor)
	if err != nil {
		return nil, fmt.Errorf("list vendors: %w", err)
	}

	out := make([]ports.VendorView, 0, len(vendors))
	for v := range trust.FilterByTrust(vendors, minTrust) {
		out = append(out, ports.VendorView{
			ID:          v.ID,
			Name:        v.Name,
			Email:       v.Email,
			Status:      v.Status,
			TrustScore:  v.TrustScore,
			ReviewCount: v.ReviewCount,
			Tier:        trust.Classify(v.TrustScore),
		})
	}
	return out, nil
}

func (s *AdminService) Stats(ctx context.Context, actor domain.Actor) (*ports.DashboardStats, error) {
	if !actor.Can(domain.ActionViewAnalytics) {
		return nil, domain.ErrForbidden
	}
	byRole, err := s.accounts.CountByRole(ctx)
	if err != nil {
		return nil, fmt.Errorf("count accounts: %w", err)
	}
	orders, err := s.orders.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("order stats: %w", err)
	}
	return &ports.DashboardStats{
		AccountsByRole: byRole,
		OrdersByStatus: orders.ByStatus,
		Revenue:        orders.Revenue,
	}, nil
}

func (s *AdminService) SetAccountStatus(ctx context.Context, actor domain.Actor, accountID string, status string) error {
	if !actor.Can(domain.ActionManageUsers) {
		return domain.ErrForbidden
	}
	next := domain.AccountStatus(status)
	if !next.Valid() {
		return domain.ErrInvalidStatus
	}
	if accountID == actor.ID {
		return fmt.Errorf("%w: cannot change own status", domain.ErrForbidden)
	}

	if _, err := s.accounts.FindByID(ctx, accountID); err != nil {
		return err
	}
	if err := s.accounts.SetStatus(ctx, accountID, next); err != nil {
		return err
	}

	recordSecurityEvent(ctx, s.audit, s.log, accountID, domain.EventAccountStatus, map[string]string{
		"status":     status,
		"changed_by": actor.ID,
	})
	s.log.Info().Str("account_id", accountID).Str("status", status).Str("admin_id", actor.ID).Msg("account status changed")
	return nil
}
