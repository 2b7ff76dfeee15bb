package club

import (
	"context"
	"fmt"
	"testing"
	"time"
)

const stubClockUnixUTC int64 = 1_700_000_000

func timeFromStubClock() time.Time {
	return time.Unix(stubClockUnixUTC, 0).UTC()
}

// stubStore is an in-memory Store used by the service tests.
type stubStore struct {
	customers map[string]Customer
	rooms     map[string]Room
	orders    map[string]Order
	records   []RechargeRecord
	sequence  int

	getCustomerError  error
	getRoomError      error
	getOrderError     error
	insertOrderError  error
	insertRecordError error
	addBalanceError   error
	updateStatusError error
	listOrdersError   error
}

func newStubStore(test *testing.T) *stubStore {
	test.Helper()
	store := &stubStore{
		customers: map[string]Customer{},
		rooms:     map[string]Room{},
		orders:    map[string]Order{},
	}
	store.rooms["R001"] = Room{RoomID: "R001", Number: "101", Type: RoomTypeLuxury, Floor: 1, PricePerHourCents: 88800}
	store.rooms["R002"] = Room{RoomID: "R002", Number: "102", Type: RoomTypeLarge, Floor: 1, PricePerHourCents: 58800}
	store.rooms["R003"] = Room{RoomID: "R003", Number: "103", Type: RoomTypeSmall, Floor: 1, PricePerHourCents: 28800}
	store.customers["C001"] = Customer{CustomerID: "C001", Name: "Chen Wei", Phone: "13900001111", Tier: TierVIP, BalanceCents: 10000, StaffID: "S001"}
	store.customers["C002"] = Customer{CustomerID: "C002", Name: "Liu Fang", Phone: "13900002222", Tier: TierRegular, BalanceCents: 5000, StaffID: "S002"}
	return store
}

func (store *stubStore) nextID(prefix string) string {
	store.sequence++
	return fmt.Sprintf("%s-%d", prefix, store.sequence)
}

func (store *stubStore) WithTx(ctx context.Context, fn func(ctx context.Context, txStore Store) error) error {
	return fn(ctx, store)
}

func (store *stubStore) InsertCustomer(_ context.Context, customer Customer) (Customer, error) {
	if customer.CustomerID == "" {
		customer.CustomerID = store.nextID("customer")
	}
	store.customers[customer.CustomerID] = customer
	return customer, nil
}

func (store *stubStore) GetCustomer(_ context.Context, customerID string) (Customer, error) {
	if store.getCustomerError != nil {
		return Customer{}, store.getCustomerError
	}
	customer, found := store.customers[customerID]
	if !found {
		return Customer{}, fmt.Errorf("%w: %s", ErrUnknownCustomer, customerID)
	}
	return customer, nil
}

func (store *stubStore) ListCustomers(_ context.Context, scope StaffScope) ([]Customer, error) {
	customers := make([]Customer, 0, len(store.customers))
	for _, customer := range store.customers {
		if scope.Matches(customer.StaffID) {
			customers = append(customers, customer)
		}
	}
	return customers, nil
}

func (store *stubStore) AddCustomerBalance(_ context.Context, customerID string, deltaCents int64) error {
	if store.addBalanceError != nil {
		return store.addBalanceError
	}
	customer, found := store.customers[customerID]
	if !found {
		return fmt.Errorf("%w: %s", ErrUnknownCustomer, customerID)
	}
	customer.BalanceCents += AmountCents(deltaCents)
	store.customers[customerID] = customer
	return nil
}

func (store *stubStore) InsertRechargeRecord(_ context.Context, record RechargeRecord) (RechargeRecord, error) {
	if store.insertRecordError != nil {
		return RechargeRecord{}, store.insertRecordError
	}
	if record.RecordID == "" {
		record.RecordID = store.nextID("recharge")
	}
	store.records = append(store.records, record)
	return record, nil
}

func (store *stubStore) ListRechargeRecords(_ context.Context, customerID string) ([]RechargeRecord, error) {
	records := make([]RechargeRecord, 0, len(store.records))
	for _, record := range store.records {
		if record.CustomerID == customerID {
			records = append(records, record)
		}
	}
	return records, nil
}

func (store *stubStore) InsertRoom(_ context.Context, room Room) (Room, error) {
	store.rooms[room.RoomID] = room
	return room, nil
}

func (store *stubStore) GetRoom(_ context.Context, roomID string) (Room, error) {
	if store.getRoomError != nil {
		return Room{}, store.getRoomError
	}
	room, found := store.rooms[roomID]
	if !found {
		return Room{}, fmt.Errorf("%w: %s", ErrUnknownRoom, roomID)
	}
	return room, nil
}

func (store *stubStore) ListRooms(_ context.Context) ([]Room, error) {
	rooms := make([]Room, 0, len(store.rooms))
	for _, roomID := range []string{"R001", "R002", "R003"} {
		if room, found := store.rooms[roomID]; found {
			rooms = append(rooms, room)
		}
	}
	for roomID, room := range store.rooms {
		switch roomID {
		case "R001", "R002", "R003":
			continue
		}
		rooms = append(rooms, room)
	}
	return rooms, nil
}

func (store *stubStore) InsertOrder(_ context.Context, order Order) (Order, error) {
	if store.insertOrderError != nil {
		return Order{}, store.insertOrderError
	}
	if order.OrderID == "" {
		order.OrderID = store.nextID("order")
	}
	store.orders[order.OrderID] = order
	return order, nil
}

func (store *stubStore) GetOrder(_ context.Context, orderID string) (Order, error) {
	if store.getOrderError != nil {
		return Order{}, store.getOrderError
	}
	order, found := store.orders[orderID]
	if !found {
		return Order{}, fmt.Errorf("%w: %s", ErrUnknownOrder, orderID)
	}
	return order, nil
}

func (store *stubStore) FindActiveOrder(_ context.Context, roomID string, day string) (Order, bool, error) {
	for _, order := range store.orders {
		if order.RoomID == roomID && order.Day == day && order.Active() {
			return order, true, nil
		}
	}
	return Order{}, false, nil
}

func (store *stubStore) ListActiveOrdersBetween(_ context.Context, fromDay string, toDay string) ([]Order, error) {
	orders := make([]Order, 0, len(store.orders))
	for _, order := range store.orders {
		if order.Active() && order.Day >= fromDay && order.Day <= toDay {
			orders = append(orders, order)
		}
	}
	return orders, nil
}

func (store *stubStore) ListOrders(_ context.Context, scope StaffScope) ([]Order, error) {
	if store.listOrdersError != nil {
		return nil, store.listOrdersError
	}
	orders := make([]Order, 0, len(store.orders))
	for _, order := range store.orders {
		if scope.Matches(order.StaffID) {
			orders = append(orders, order)
		}
	}
	return orders, nil
}

func (store *stubStore) UpdateOrderStatus(_ context.Context, orderID string, from OrderStatus, to OrderStatus, stamp StatusStamp) error {
	if store.updateStatusError != nil {
		return store.updateStatusError
	}
	order, found := store.orders[orderID]
	if !found || order.Status != from {
		return fmt.Errorf("%w: %s", ErrInvalidTransition, orderID)
	}
	order.Status = to
	if stamp.ApprovedUnixUTC != 0 {
		order.ApprovedUnixUTC = stamp.ApprovedUnixUTC
		order.ApprovedBy = stamp.ApprovedBy
	}
	if stamp.PaidUnixUTC != 0 {
		order.PaidUnixUTC = stamp.PaidUnixUTC
	}
	store.orders[orderID] = order
	return nil
}

func mustNewService(test *testing.T, store Store, options ...ServiceOption) *Service {
	test.Helper()
	service, err := NewService(store, func() int64 { return stubClockUnixUTC }, options...)
	if err != nil {
		test.Fatalf("service init: %v", err)
	}
	return service
}

func mustCustomerID(test *testing.T, raw string) CustomerID {
	test.Helper()
	customerID, err := NewCustomerID(raw)
	if err != nil {
		test.Fatalf("customer id: %v", err)
	}
	return customerID
}

func mustRoomID(test *testing.T, raw string) RoomID {
	test.Helper()
	roomID, err := NewRoomID(raw)
	if err != nil {
		test.Fatalf("room id: %v", err)
	}
	return roomID
}

func mustOrderID(test *testing.T, raw string) OrderID {
	test.Helper()
	orderID, err := NewOrderID(raw)
	if err != nil {
		test.Fatalf("order id: %v", err)
	}
	return orderID
}

func mustStaffID(test *testing.T, raw string) StaffID {
	test.Helper()
	staffID, err := NewStaffID(raw)
	if err != nil {
		test.Fatalf("staff id: %v", err)
	}
	return staffID
}

func mustDay(test *testing.T, raw string) Day {
	test.Helper()
	day, err := NewDay(raw)
	if err != nil {
		test.Fatalf("day: %v", err)
	}
	return day
}

func mustAmount(test *testing.T, raw int64) AmountCents {
	test.Helper()
	amount, err := NewAmountCents(raw)
	if err != nil {
		test.Fatalf("amount: %v", err)
	}
	return amount
}

func mustMetadata(test *testing.T, raw string) MetadataJSON {
	test.Helper()
	metadata, err := NewMetadataJSON(raw)
	if err != nil {
		test.Fatalf("metadata: %v", err)
	}
	return metadata
}

func staffActor(test *testing.T, staffID string) Actor {
	test.Helper()
	return Actor{StaffID: mustStaffID(test, staffID), Role: RoleStaff}
}

func leaderActor(test *testing.T, staffID string) Actor {
	test.Helper()
	return Actor{StaffID: mustStaffID(test, staffID), Role: RoleLeader}
}
