package seed

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/MarkoPoloResearchLab/clubdesk/internal/store/gormstore"
	"github.com/MarkoPoloResearchLab/clubdesk/pkg/club"
)

func openSeededStore(t *testing.T) *gormstore.Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(t.TempDir()+"/clubdesk.db"), &gorm.Config{})
	if err != nil {
		t.Fatalf("sqlite open failed: %v", err)
	}
	store := gormstore.New(db)
	if err := store.Migrate(); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	if err := Apply(context.Background(), store, zap.NewNop()); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	return store
}

func TestApplyLoadsFixtureRows(t *testing.T) {
	store := openSeededStore(t)
	ctx := context.Background()

	rooms, err := store.ListRooms(ctx)
	if err != nil {
		t.Fatalf("list rooms failed: %v", err)
	}
	if len(rooms) != 10 {
		t.Fatalf("expected 10 rooms, got %d", len(rooms))
	}

	customers, err := store.ListCustomers(ctx, club.ScopeAll())
	if err != nil {
		t.Fatalf("list customers failed: %v", err)
	}
	if len(customers) != 4 {
		t.Fatalf("expected 4 customers, got %d", len(customers))
	}

	account, err := store.GetAccountByUsername(ctx, "leader")
	if err != nil {
		t.Fatalf("get leader account failed: %v", err)
	}
	if account.StaffID != "L001" || account.Role != club.RoleLeader {
		t.Fatalf("unexpected leader account: %+v", account)
	}

	order, err := store.GetOrder(ctx, "O001")
	if err != nil {
		t.Fatalf("get seeded order failed: %v", err)
	}
	if order.Status != club.OrderStatusApproved || order.ApprovedBy != "L001" {
		t.Fatalf("unexpected seeded order: %+v", order)
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	store := openSeededStore(t)
	ctx := context.Background()

	if err := Apply(ctx, store, zap.NewNop()); err != nil {
		t.Fatalf("second seed failed: %v", err)
	}
	rooms, err := store.ListRooms(ctx)
	if err != nil {
		t.Fatalf("list rooms failed: %v", err)
	}
	if len(rooms) != 10 {
		t.Fatalf("expected 10 rooms after reseed, got %d", len(rooms))
	}
	customers, err := store.ListCustomers(ctx, club.ScopeAll())
	if err != nil {
		t.Fatalf("list customers failed: %v", err)
	}
	if len(customers) != 4 {
		t.Fatalf("expected 4 customers after reseed, got %d", len(customers))
	}
}
