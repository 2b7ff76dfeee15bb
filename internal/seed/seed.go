package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/MarkoPoloResearchLab/clubdesk/internal/auth"
	"github.com/MarkoPoloResearchLab/clubdesk/pkg/club"
)

const demoPassword = "123456"

// Store is the persistence surface the seeder needs.
type Store interface {
	club.Store
	auth.AccountStore
}

// Apply loads the demo fixture set: ten rooms, three staff accounts, four
// customers, and a handful of orders. It is idempotent; rows that already
// exist are left alone.
func Apply(ctx context.Context, store Store, logger *zap.Logger) error {
	now := time.Now().UTC()
	if err := seedAccounts(ctx, store); err != nil {
		return fmt.Errorf("seed accounts: %w", err)
	}
	if err := seedRooms(ctx, store); err != nil {
		return fmt.Errorf("seed rooms: %w", err)
	}
	if err := seedCustomers(ctx, store, now); err != nil {
		return fmt.Errorf("seed customers: %w", err)
	}
	if err := seedOrders(ctx, store, now); err != nil {
		return fmt.Errorf("seed orders: %w", err)
	}
	logger.Info("demo data seeded")
	return nil
}

func seedAccounts(ctx context.Context, store Store) error {
	accounts := []struct {
		staffID     string
		username    string
		displayName string
		role        club.Role
	}{
		{"S001", "staff1", "Zhang San", club.RoleStaff},
		{"S002", "staff2", "Li Si", club.RoleStaff},
		{"L001", "leader", "Wang Tao", club.RoleLeader},
	}
	for _, seedAccount := range accounts {
		_, err := store.GetAccountByUsername(ctx, seedAccount.username)
		if err == nil {
			continue
		}
		if !errors.Is(err, auth.ErrAccountNotFound) {
			return err
		}
		hash, err := auth.HashPassword(demoPassword)
		if err != nil {
			return err
		}
		_, err = store.InsertAccount(ctx, auth.Account{
			StaffID:      seedAccount.staffID,
			Username:     seedAccount.username,
			PasswordHash: hash,
			DisplayName:  seedAccount.displayName,
			Role:         seedAccount.role,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func seedRooms(ctx context.Context, store Store) error {
	rooms := []club.Room{
		{RoomID: "R001", Number: "101", Type: club.RoomTypeLuxury, Floor: 1, PricePerHourCents: 88800},
		{RoomID: "R002", Number: "102", Type: club.RoomTypeLarge, Floor: 1, PricePerHourCents: 58800},
		{RoomID: "R003", Number: "103", Type: club.RoomTypeMedium, Floor: 1, PricePerHourCents: 38800},
		{RoomID: "R004", Number: "201", Type: club.RoomTypeLuxury, Floor: 2, PricePerHourCents: 88800},
		{RoomID: "R005", Number: "202", Type: club.RoomTypeLarge, Floor: 2, PricePerHourCents: 58800},
		{RoomID: "R006", Number: "203", Type: club.RoomTypeMedium, Floor: 2, PricePerHourCents: 38800},
		{RoomID: "R007", Number: "204", Type: club.RoomTypeSmall, Floor: 2, PricePerHourCents: 28800},
		{RoomID: "R008", Number: "301", Type: club.RoomTypeLuxury, Floor: 3, PricePerHourCents: 88800},
		{RoomID: "R009", Number: "302", Type: club.RoomTypeLarge, Floor: 3, PricePerHourCents: 58800},
		{RoomID: "R010", Number: "303", Type: club.RoomTypeSmall, Floor: 3, PricePerHourCents: 28800},
	}
	for _, room := range rooms {
		if _, err := store.GetRoom(ctx, room.RoomID); err == nil {
			continue
		} else if !errors.Is(err, club.ErrUnknownRoom) {
			return err
		}
		if _, err := store.InsertRoom(ctx, room); err != nil {
			return err
		}
	}
	return nil
}

func seedCustomers(ctx context.Context, store Store, now time.Time) error {
	registeredAt := now.AddDate(0, -3, 0).Unix()
	customers := []club.Customer{
		{CustomerID: "C001", Name: "Chen Wei", Phone: "13900001111", Tier: club.TierVIP, BalanceCents: 500000, StaffID: "S001"},
		{CustomerID: "C002", Name: "Liu Fang", Phone: "13900002222", Tier: club.TierSVIP, BalanceCents: 1500000, StaffID: "S001"},
		{CustomerID: "C003", Name: "Zhou Jie", Phone: "13900003333", Tier: club.TierRegular, BalanceCents: 100000, StaffID: "S002"},
		{CustomerID: "C004", Name: "Wu Ting", Phone: "13900004444", Tier: club.TierVIP, BalanceCents: 350000, StaffID: "S002"},
	}
	for _, customer := range customers {
		if _, err := store.GetCustomer(ctx, customer.CustomerID); err == nil {
			continue
		} else if !errors.Is(err, club.ErrUnknownCustomer) {
			return err
		}
		customer.RegisteredUnixUTC = registeredAt
		if _, err := store.InsertCustomer(ctx, customer); err != nil {
			return err
		}
	}
	return nil
}

func seedOrders(ctx context.Context, store Store, now time.Time) error {
	today := club.DayFromTime(now)
	tomorrow := today.AddDays(1)
	orders := []club.Order{
		{
			OrderID: "O001", RoomID: "R001", CustomerID: "C001", StaffID: "S001",
			Day: today.String(), Status: club.OrderStatusApproved,
			CreatedUnixUTC: now.Add(-6 * time.Hour).Unix(), ApprovedUnixUTC: now.Add(-5 * time.Hour).Unix(), ApprovedBy: "L001",
		},
		{
			OrderID: "O002", RoomID: "R002", CustomerID: "C002", StaffID: "S001",
			Day: today.String(), Status: club.OrderStatusPending,
			CreatedUnixUTC: now.Add(-2 * time.Hour).Unix(),
		},
		{
			OrderID: "O003", RoomID: "R005", CustomerID: "C003", StaffID: "S002",
			Day: tomorrow.String(), Status: club.OrderStatusPending,
			CreatedUnixUTC: now.Add(-time.Hour).Unix(),
		},
		{
			OrderID: "O004", RoomID: "R003", CustomerID: "C004", StaffID: "S002",
			Day: today.String(), Status: club.OrderStatusPaid,
			CreatedUnixUTC:  now.Add(-30 * time.Hour).Unix(),
			ApprovedUnixUTC: now.Add(-29 * time.Hour).Unix(), ApprovedBy: "L001",
			PaidUnixUTC: now.Add(-4 * time.Hour).Unix(),
		},
	}
	for _, order := range orders {
		if _, err := store.GetOrder(ctx, order.OrderID); err == nil {
			continue
		} else if !errors.Is(err, club.ErrUnknownOrder) {
			return err
		}
		if _, err := store.InsertOrder(ctx, order); err != nil {
			return err
		}
	}
	return nil
}
