package club

import "context"

// StaffScope narrows list queries to rows owned by (or not owned by) one
// staff identity. The zero scope matches everything.
type StaffScope struct {
	ownedBy     string
	notOwnedBy  string
	hasOwned    bool
	hasNotOwned bool
}

// ScopeAll matches every row.
func ScopeAll() StaffScope {
	return StaffScope{}
}

// ScopeOwnedBy matches rows whose staff id equals the given identity.
func ScopeOwnedBy(staffID StaffID) StaffScope {
	return StaffScope{ownedBy: staffID.String(), hasOwned: true}
}

// ScopeNotOwnedBy matches rows whose staff id differs from the given identity.
func ScopeNotOwnedBy(staffID StaffID) StaffScope {
	return StaffScope{notOwnedBy: staffID.String(), hasNotOwned: true}
}

// OwnedBy returns the owning staff id filter, if set.
func (scope StaffScope) OwnedBy() (string, bool) {
	return scope.ownedBy, scope.hasOwned
}

// NotOwnedBy returns the excluded staff id filter, if set.
func (scope StaffScope) NotOwnedBy() (string, bool) {
	return scope.notOwnedBy, scope.hasNotOwned
}

// Matches reports whether a row with the given staff id falls inside the scope.
func (scope StaffScope) Matches(staffID string) bool {
	if scope.hasOwned && staffID != scope.ownedBy {
		return false
	}
	if scope.hasNotOwned && staffID == scope.notOwnedBy {
		return false
	}
	return true
}

// StatusStamp carries the timestamps recorded alongside a status change.
// Zero fields are left untouched.
type StatusStamp struct {
	ApprovedUnixUTC int64
	ApprovedBy      string
	PaidUnixUTC     int64
}

// Store is the persistence contract used by Service.
type Store interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, txStore Store) error) error

	InsertCustomer(ctx context.Context, customer Customer) (Customer, error)
	GetCustomer(ctx context.Context, customerID string) (Customer, error)
	ListCustomers(ctx context.Context, scope StaffScope) ([]Customer, error)
	AddCustomerBalance(ctx context.Context, customerID string, deltaCents int64) error

	InsertRechargeRecord(ctx context.Context, record RechargeRecord) (RechargeRecord, error)
	ListRechargeRecords(ctx context.Context, customerID string) ([]RechargeRecord, error)

	InsertRoom(ctx context.Context, room Room) (Room, error)
	GetRoom(ctx context.Context, roomID string) (Room, error)
	ListRooms(ctx context.Context) ([]Room, error)

	InsertOrder(ctx context.Context, order Order) (Order, error)
	GetOrder(ctx context.Context, orderID string) (Order, error)
	FindActiveOrder(ctx context.Context, roomID string, day string) (Order, bool, error)
	ListActiveOrdersBetween(ctx context.Context, fromDay string, toDay string) ([]Order, error)
	ListOrders(ctx context.Context, scope StaffScope) ([]Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, from OrderStatus, to OrderStatus, stamp StatusStamp) error
}
