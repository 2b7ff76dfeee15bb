package club

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	defaultGridDays = 7
	maxGridDays     = 31
)

// Customers lists customers visible to the actor: the leader sees everyone,
// staff see only the customers they own.
func (service *Service) Customers(ctx context.Context, actor Actor) ([]Customer, error) {
	if err := actor.validate(); err != nil {
		return nil, err
	}
	return service.store.ListCustomers(ctx, customerScopeFor(actor))
}

// SearchCustomers narrows the actor's customer list to entries whose name or
// phone contains the query substring. Name matching is case-insensitive; the
// empty query matches everyone.
func (service *Service) SearchCustomers(ctx context.Context, actor Actor, query string) ([]Customer, error) {
	customers, err := service.Customers(ctx, actor)
	if err != nil {
		return nil, err
	}
	needle := strings.TrimSpace(query)
	if needle == "" {
		return customers, nil
	}
	lowered := strings.ToLower(needle)
	matched := make([]Customer, 0, len(customers))
	for _, customer := range customers {
		if strings.Contains(strings.ToLower(customer.Name), lowered) || strings.Contains(customer.Phone, needle) {
			matched = append(matched, customer)
		}
	}
	return matched, nil
}

// CustomerByID fetches one customer, subject to the same ownership rule as
// Customers.
func (service *Service) CustomerByID(ctx context.Context, actor Actor, customerID CustomerID) (Customer, error) {
	if err := actor.validate(); err != nil {
		return Customer{}, err
	}
	customer, err := service.store.GetCustomer(ctx, customerID.String())
	if err != nil {
		return Customer{}, err
	}
	if err := service.requireCustomerAccess(actor, customer); err != nil {
		return Customer{}, err
	}
	return customer, nil
}

// RechargeHistory lists the append-only top-up records for one customer.
func (service *Service) RechargeHistory(ctx context.Context, actor Actor, customerID CustomerID) ([]RechargeRecord, error) {
	if _, err := service.CustomerByID(ctx, actor, customerID); err != nil {
		return nil, err
	}
	return service.store.ListRechargeRecords(ctx, customerID.String())
}

// Rooms lists the static room reference data.
func (service *Service) Rooms(ctx context.Context) ([]Room, error) {
	return service.store.ListRooms(ctx)
}

// AvailableRooms lists rooms free on the given day, optionally narrowed to
// one room type. The empty room type matches all types.
func (service *Service) AvailableRooms(ctx context.Context, day Day, roomType RoomType) ([]Room, error) {
	rooms, err := service.store.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	active, err := service.store.ListActiveOrdersBetween(ctx, day.String(), day.String())
	if err != nil {
		return nil, err
	}
	taken := make(map[string]struct{}, len(active))
	for _, order := range active {
		taken[order.RoomID] = struct{}{}
	}
	available := make([]Room, 0, len(rooms))
	for _, room := range rooms {
		if roomType != "" && room.Type != roomType {
			continue
		}
		if _, occupied := taken[room.RoomID]; occupied {
			continue
		}
		available = append(available, room)
	}
	return available, nil
}

// BookingCell is one (room, day) slot in the grid view.
type BookingCell struct {
	Day    string
	Status BookingStatus
	Order  *Order
}

// RoomSchedule is one grid row: a room and its slots across the window.
type RoomSchedule struct {
	Room  Room
	Cells []BookingCell
}

// BookingGrid renders the weekly availability view: every room crossed with
// every day in the window, each cell carrying the derived booking status and
// the occupying order when present.
func (service *Service) BookingGrid(ctx context.Context, start Day, days int) ([]RoomSchedule, error) {
	if days <= 0 {
		days = defaultGridDays
	}
	if days > maxGridDays {
		return nil, fmt.Errorf("%w: %d days exceeds maximum %d", ErrInvalidGridWindow, days, maxGridDays)
	}
	rooms, err := service.store.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	end := start.AddDays(days - 1)
	active, err := service.store.ListActiveOrdersBetween(ctx, start.String(), end.String())
	if err != nil {
		return nil, err
	}
	bySlot := make(map[string]Order, len(active))
	for _, order := range active {
		bySlot[order.RoomID+"|"+order.Day] = order
	}
	grid := make([]RoomSchedule, 0, len(rooms))
	for _, room := range rooms {
		cells := make([]BookingCell, 0, days)
		for offset := 0; offset < days; offset++ {
			day := start.AddDays(offset).String()
			cell := BookingCell{Day: day, Status: BookingAvailable}
			if order, occupied := bySlot[room.RoomID+"|"+day]; occupied {
				orderCopy := order
				cell.Status = deriveBookingStatus(order, true)
				cell.Order = &orderCopy
			}
			cells = append(cells, cell)
		}
		grid = append(grid, RoomSchedule{Room: room, Cells: cells})
	}
	return grid, nil
}

// Orders lists booking orders visible to the actor: staff see their own
// submissions, the leader reviews everyone else's. Results are sorted by
// status priority (pending first) then newest first.
func (service *Service) Orders(ctx context.Context, actor Actor) ([]Order, error) {
	if err := actor.validate(); err != nil {
		return nil, err
	}
	orders, err := service.store.ListOrders(ctx, orderScopeFor(actor))
	if err != nil {
		return nil, err
	}
	sortOrders(orders)
	return orders, nil
}

// DashboardSummary aggregates the home-screen counters.
type DashboardSummary struct {
	PendingOrders int
	TodayOrders   int
	MyCustomers   int
}

// Dashboard computes the pending-order count, today's order count, and the
// actor's own customer count.
func (service *Service) Dashboard(ctx context.Context, actor Actor) (DashboardSummary, error) {
	if err := actor.validate(); err != nil {
		return DashboardSummary{}, err
	}
	orders, err := service.store.ListOrders(ctx, ScopeAll())
	if err != nil {
		return DashboardSummary{}, err
	}
	today := DayFromTime(time.Unix(service.nowFn(), 0)).String()
	summary := DashboardSummary{}
	for _, order := range orders {
		if order.Status == OrderStatusPending {
			summary.PendingOrders++
		}
		if order.Day == today {
			summary.TodayOrders++
		}
	}
	own, err := service.store.ListCustomers(ctx, ScopeOwnedBy(actor.StaffID))
	if err != nil {
		return DashboardSummary{}, err
	}
	summary.MyCustomers = len(own)
	return summary, nil
}

func customerScopeFor(actor Actor) StaffScope {
	if CanPerform(actor.Role, ActionViewAllCustomers) {
		return ScopeAll()
	}
	return ScopeOwnedBy(actor.StaffID)
}

func orderScopeFor(actor Actor) StaffScope {
	if actor.Role == RoleLeader {
		return ScopeNotOwnedBy(actor.StaffID)
	}
	return ScopeOwnedBy(actor.StaffID)
}

var orderStatusPriority = map[OrderStatus]int{
	OrderStatusPending:   0,
	OrderStatusApproved:  1,
	OrderStatusPaid:      2,
	OrderStatusRejected:  3,
	OrderStatusCancelled: 4,
}

func sortOrders(orders []Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		if orderStatusPriority[orders[i].Status] != orderStatusPriority[orders[j].Status] {
			return orderStatusPriority[orders[i].Status] < orderStatusPriority[orders[j].Status]
		}
		return orders[i].CreatedUnixUTC > orders[j].CreatedUnixUTC
	})
}
