package club

import (
	"context"
	"errors"
	"testing"
)

func TestRechargeAddsBalanceAndAppendsRecord(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	service := mustNewService(test, store)
	actor := staffActor(test, "S001")
	customerID := mustCustomerID(test, "C001")
	startingBalance := store.customers["C001"].BalanceCents

	record, err := service.Recharge(context.Background(), actor, customerID, mustAmount(test, 5000), mustMetadata(test, `{"channel":"front-desk"}`))
	if err != nil {
		test.Fatalf("recharge: %v", err)
	}
	if record.AmountCents != 5000 {
		test.Fatalf("expected record amount 5000, got %d", record.AmountCents)
	}
	if record.StaffID != "S001" {
		test.Fatalf("expected record staff S001, got %s", record.StaffID)
	}
	if store.customers["C001"].BalanceCents != startingBalance+5000 {
		test.Fatalf("expected balance %d, got %d", startingBalance+5000, store.customers["C001"].BalanceCents)
	}
	if len(store.records) != 1 {
		test.Fatalf("expected one recharge record, got %d", len(store.records))
	}
}

func TestRechargeRejectsNonPositiveAmount(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	service := mustNewService(test, store)
	actor := staffActor(test, "S001")
	customerID := mustCustomerID(test, "C001")
	startingBalance := store.customers["C001"].BalanceCents

	for _, raw := range []int64{0, -10} {
		_, err := service.Recharge(context.Background(), actor, customerID, AmountCents(raw), mustMetadata(test, ""))
		if !errors.Is(err, ErrInvalidAmount) {
			test.Fatalf(errorMismatchFmt, ErrInvalidAmount, err)
		}
	}
	if store.customers["C001"].BalanceCents != startingBalance {
		test.Fatalf("expected balance unchanged, got %d", store.customers["C001"].BalanceCents)
	}
	if len(store.records) != 0 {
		test.Fatalf("expected no recharge records, got %d", len(store.records))
	}
}

func TestRechargeUnknownCustomer(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	service := mustNewService(test, store)

	_, err := service.Recharge(context.Background(), staffActor(test, "S001"), mustCustomerID(test, "C999"), mustAmount(test, 100), mustMetadata(test, ""))
	if !errors.Is(err, ErrUnknownCustomer) {
		test.Fatalf(errorMismatchFmt, ErrUnknownCustomer, err)
	}
}

func TestStaffCannotRechargeForeignCustomer(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	service := mustNewService(test, store)

	// C002 belongs to S002.
	_, err := service.Recharge(context.Background(), staffActor(test, "S001"), mustCustomerID(test, "C002"), mustAmount(test, 100), mustMetadata(test, ""))
	if !errors.Is(err, ErrPermissionDenied) {
		test.Fatalf(errorMismatchFmt, ErrPermissionDenied, err)
	}

	if _, err := service.Recharge(context.Background(), leaderActor(test, "L001"), mustCustomerID(test, "C002"), mustAmount(test, 100), mustMetadata(test, "")); err != nil {
		test.Fatalf("leader recharge: %v", err)
	}
}

func TestCreateCustomerOwnedByActor(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	service := mustNewService(test, store)

	customer, err := service.CreateCustomer(context.Background(), staffActor(test, "S001"), CreateCustomerParams{
		Name:  "Zhou Jie",
		Phone: "13900003333",
		Tier:  TierRegular,
	})
	if err != nil {
		test.Fatalf("create customer: %v", err)
	}
	if customer.CustomerID == "" {
		test.Fatalf("expected generated customer id")
	}
	if customer.StaffID != "S001" {
		test.Fatalf("expected owner S001, got %s", customer.StaffID)
	}
	if customer.BalanceCents != 0 {
		test.Fatalf("expected zero starting balance, got %d", customer.BalanceCents)
	}
}

func TestCreateCustomerValidation(test *testing.T) {
	test.Parallel()
	testCases := []struct {
		name    string
		params  CreateCustomerParams
		wantErr error
	}{
		{
			name:    "empty name",
			params:  CreateCustomerParams{Name: "  ", Phone: "13900003333", Tier: TierRegular},
			wantErr: ErrInvalidCustomerName,
		},
		{
			name:    "empty phone",
			params:  CreateCustomerParams{Name: "Zhou Jie", Phone: "", Tier: TierRegular},
			wantErr: ErrInvalidCustomerPhone,
		},
		{
			name:    "bad tier",
			params:  CreateCustomerParams{Name: "Zhou Jie", Phone: "13900003333", Tier: MembershipTier("platinum")},
			wantErr: ErrInvalidMembershipTier,
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		test.Run(testCase.name, func(test *testing.T) {
			test.Parallel()
			store := newStubStore(test)
			service := mustNewService(test, store)
			_, err := service.CreateCustomer(context.Background(), staffActor(test, "S001"), testCase.params)
			if !errors.Is(err, testCase.wantErr) {
				test.Fatalf(errorMismatchFmt, testCase.wantErr, err)
			}
		})
	}
}

func TestCustomersScopeByRole(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	service := mustNewService(test, store)

	own, err := service.Customers(context.Background(), staffActor(test, "S001"))
	if err != nil {
		test.Fatalf("staff customers: %v", err)
	}
	if len(own) != 1 || own[0].CustomerID != "C001" {
		test.Fatalf("expected staff to see only C001, got %+v", own)
	}

	all, err := service.Customers(context.Background(), leaderActor(test, "L001"))
	if err != nil {
		test.Fatalf("leader customers: %v", err)
	}
	if len(all) != 2 {
		test.Fatalf("expected leader to see all customers, got %d", len(all))
	}
}

func TestSearchCustomersByNameAndPhone(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	service := mustNewService(test, store)
	leader := leaderActor(test, "L001")

	byName, err := service.SearchCustomers(context.Background(), leader, "chen")
	if err != nil {
		test.Fatalf("search by name: %v", err)
	}
	if len(byName) != 1 || byName[0].CustomerID != "C001" {
		test.Fatalf("expected only C001 for name match, got %+v", byName)
	}

	byPhone, err := service.SearchCustomers(context.Background(), leader, "0002222")
	if err != nil {
		test.Fatalf("search by phone: %v", err)
	}
	if len(byPhone) != 1 || byPhone[0].CustomerID != "C002" {
		test.Fatalf("expected only C002 for phone match, got %+v", byPhone)
	}

	everyone, err := service.SearchCustomers(context.Background(), leader, "  ")
	if err != nil {
		test.Fatalf("blank search: %v", err)
	}
	if len(everyone) != 2 {
		test.Fatalf("expected blank query to match everyone, got %d", len(everyone))
	}

	none, err := service.SearchCustomers(context.Background(), leader, "nobody")
	if err != nil {
		test.Fatalf("miss search: %v", err)
	}
	if len(none) != 0 {
		test.Fatalf("expected no matches, got %+v", none)
	}

	// Scope still applies: S002 cannot surface C001 through a query.
	foreign, err := service.SearchCustomers(context.Background(), staffActor(test, "S002"), "chen")
	if err != nil {
		test.Fatalf("scoped search: %v", err)
	}
	if len(foreign) != 0 {
		test.Fatalf("expected scoped search to hide foreign customers, got %+v", foreign)
	}
}

func TestCustomerByIDOwnership(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	service := mustNewService(test, store)

	_, err := service.CustomerByID(context.Background(), staffActor(test, "S001"), mustCustomerID(test, "C002"))
	if !errors.Is(err, ErrPermissionDenied) {
		test.Fatalf(errorMismatchFmt, ErrPermissionDenied, err)
	}
	customer, err := service.CustomerByID(context.Background(), staffActor(test, "S002"), mustCustomerID(test, "C002"))
	if err != nil {
		test.Fatalf("owner lookup: %v", err)
	}
	if customer.CustomerID != "C002" {
		test.Fatalf("expected C002, got %s", customer.CustomerID)
	}
}

func TestRechargeHistoryListsCustomerRecords(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	service := mustNewService(test, store)
	actor := staffActor(test, "S001")
	customerID := mustCustomerID(test, "C001")

	if _, err := service.Recharge(context.Background(), actor, customerID, mustAmount(test, 100), mustMetadata(test, "")); err != nil {
		test.Fatalf("recharge: %v", err)
	}
	if _, err := service.Recharge(context.Background(), actor, customerID, mustAmount(test, 200), mustMetadata(test, "")); err != nil {
		test.Fatalf("recharge: %v", err)
	}

	history, err := service.RechargeHistory(context.Background(), actor, customerID)
	if err != nil {
		test.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		test.Fatalf("expected two records, got %d", len(history))
	}
}

func TestDashboardCounts(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	// The stub clock pins now to 2023-11-14 UTC.
	today := DayFromTime(timeFromStubClock()).String()
	store.orders["O1"] = Order{OrderID: "O1", RoomID: "R001", StaffID: "S002", Day: today, Status: OrderStatusPending}
	store.orders["O2"] = Order{OrderID: "O2", RoomID: "R002", StaffID: "S002", Day: today, Status: OrderStatusPaid}
	store.orders["O3"] = Order{OrderID: "O3", RoomID: "R003", StaffID: "S001", Day: "2030-01-01", Status: OrderStatusPending}
	service := mustNewService(test, store)

	summary, err := service.Dashboard(context.Background(), staffActor(test, "S001"))
	if err != nil {
		test.Fatalf("dashboard: %v", err)
	}
	if summary.PendingOrders != 2 {
		test.Fatalf("expected 2 pending orders, got %d", summary.PendingOrders)
	}
	if summary.TodayOrders != 2 {
		test.Fatalf("expected 2 orders today, got %d", summary.TodayOrders)
	}
	if summary.MyCustomers != 1 {
		test.Fatalf("expected 1 owned customer, got %d", summary.MyCustomers)
	}
}
