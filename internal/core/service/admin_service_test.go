package service

import (
	"context"
	"errors"
	"testing"

	"github.com/freshcart/marketplace/internal/core/domain"
	"github.com/freshcart/marketplace/internal/core/trust"
)

func newAdminFixture() (*stubStore, *stubSecurityLog, *AdminService) {
	st := newStubStore()
	seedMarketplace(st)
	st.addAccount(&domain.Account{ID: "vend-2", Name: "Top Shop", Role: domain.RoleVendor, TrustScore: 4.7})
	audit := &stubSecurityLog{}
	return st, audit, NewAdminService(stubAccountRepo{st}, stubOrderRepo{st}, audit, discardLogger)
}

func TestAdminService_ListVendors(t *testing.T) {
	_, _, svc := newAdminFixture()
	ctx := context.Background()

	all, err := svc.ListVendors(ctx, adminActor, 0)
	if err != nil {
		t.Fatalf("ListVendors returned error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 vendors, got %d", len(all))
	}

	top, _ := svc.ListVendors(ctx, adminActor, 4.5)
	if len(top) != 1 || top[0].ID != "vend-2" || top[0].Tier != trust.HighlyTrusted {
		t.Fatalf("unexpected filtered vendors: %+v", top)
	}

	if _, err := svc.ListVendors(ctx, vendorActor, 0); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestAdminService_Stats(t *testing.T) {
	st, _, svc := newAdminFixture()
	st.addOrder(&domain.Order{ID: "o-1", Status: domain.OrderDelivered, TotalAmount: 10})
	st.addOrder(&domain.Order{ID: "o-2", Status: domain.OrderCancelled, TotalAmount: 5})

	stats, err := svc.Stats(context.Background(), adminActor)
	if err != nil {
		t.Fatalf("Stats returned error: %v", err)
	}
	if stats.AccountsByRole[domain.RoleVendor] != 2 || stats.OrdersByStatus[domain.OrderCancelled] != 1 || stats.Revenue != 10 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestAdminService_SetAccountStatus(t *testing.T) {
	st, audit, svc := newAdminFixture()
	ctx := context.Background()

	if err := svc.SetAccountStatus(ctx, adminActor, vendorActor.ID, "suspended"); err != nil {
		t.Fatalf("SetAccountStatus returned error: %v", err)
	}
	if st.account(vendorActor.ID).Status != domain.StatusSuspended {
		t.Fatalf("status not updated")
	}
	if !audit.has(domain.EventAccountStatus) {
		t.Fatalf("expected status change to be audited")
	}

	if err := svc.SetAccountStatus(ctx, adminActor, vendorActor.ID, "banished"); !errors.Is(err, domain.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if err := svc.SetAccountStatus(ctx, adminActor, adminActor.ID, "locked"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for self, got %v", err)
	}
	if err := svc.SetAccountStatus(ctx, adminActor, "ghost", "locked"); !errors.Is(err, domain.ErrUnknownAccount) {
		t.Fatalf("expected ErrUnknownAccount, got %v", err)
	}
	if err := svc.SetAccountStatus(ctx, customerActor, vendorActor.ID, "active"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}
