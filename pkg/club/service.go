package club

import (
	"context"
	"fmt"
	"strings"
)

// Service contains the domain logic over a Store.
type Service struct {
	store  Store
	nowFn  func() int64
	logger OperationLogger
}

// NewService wires a Service.
func NewService(store Store, now func() int64, options ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: store dependency is nil", ErrInvalidServiceConfig)
	}
	if now == nil {
		return nil, fmt.Errorf("%w: clock dependency is nil", ErrInvalidServiceConfig)
	}
	service := &Service{store: store, nowFn: now}
	for _, option := range options {
		if option != nil {
			option(service)
		}
	}
	return service, nil
}

// CreateCustomerParams carries the new-customer form fields.
type CreateCustomerParams struct {
	Name   string
	Phone  string
	IDCard string
	Tier   MembershipTier
}

// CreateCustomer registers a customer owned by the acting staff member.
// The balance starts at zero; top-ups go through Recharge only.
func (service *Service) CreateCustomer(ctx context.Context, actor Actor, params CreateCustomerParams) (Customer, error) {
	var created Customer
	operationError := func() error {
		if err := requirePermission(actor, ActionCreateCustomer); err != nil {
			return err
		}
		name := strings.TrimSpace(params.Name)
		if name == "" {
			return fmt.Errorf("%w: empty value", ErrInvalidCustomerName)
		}
		phone := strings.TrimSpace(params.Phone)
		if phone == "" {
			return fmt.Errorf("%w: empty value", ErrInvalidCustomerPhone)
		}
		if _, err := ParseMembershipTier(params.Tier.String()); err != nil {
			return err
		}
		return service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
			inserted, err := transactionStore.InsertCustomer(ctx, Customer{
				Name:              name,
				Phone:             phone,
				IDCard:            strings.TrimSpace(params.IDCard),
				Tier:              params.Tier,
				BalanceCents:      0,
				StaffID:           actor.StaffID.String(),
				RegisteredUnixUTC: service.nowFn(),
			})
			if err != nil {
				return err
			}
			created = inserted
			return nil
		})
	}()
	service.logOperation(ctx, OperationLog{
		Operation:  operationCreateCustomer,
		Actor:      actor.StaffID,
		Role:       actor.Role,
		CustomerID: created.CustomerID,
		Error:      operationError,
	})
	if operationError != nil {
		return Customer{}, operationError
	}
	return created, nil
}

// Recharge adds a strictly positive amount to the customer's balance and
// appends exactly one audit record, atomically.
func (service *Service) Recharge(ctx context.Context, actor Actor, customerID CustomerID, amount AmountCents, metadata MetadataJSON) (RechargeRecord, error) {
	var record RechargeRecord
	operationError := func() error {
		if err := requirePermission(actor, ActionRecharge); err != nil {
			return err
		}
		if _, err := NewAmountCents(amount.Int64()); err != nil {
			return err
		}
		return service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
			customer, err := transactionStore.GetCustomer(ctx, customerID.String())
			if err != nil {
				return err
			}
			if err := service.requireCustomerAccess(actor, customer); err != nil {
				return err
			}
			if err := transactionStore.AddCustomerBalance(ctx, customerID.String(), amount.Int64()); err != nil {
				return err
			}
			inserted, err := transactionStore.InsertRechargeRecord(ctx, RechargeRecord{
				CustomerID:     customerID.String(),
				AmountCents:    amount,
				StaffID:        actor.StaffID.String(),
				MetadataJSON:   metadata.String(),
				CreatedUnixUTC: service.nowFn(),
			})
			if err != nil {
				return err
			}
			record = inserted
			return nil
		})
	}()
	service.logOperation(ctx, OperationLog{
		Operation:  operationRecharge,
		Actor:      actor.StaffID,
		Role:       actor.Role,
		CustomerID: customerID.String(),
		Amount:     amount,
		Error:      operationError,
	})
	if operationError != nil {
		return RechargeRecord{}, operationError
	}
	return record, nil
}

// CreateOrder books a room for a customer on one day. The availability
// check runs inside the transaction so two requests for the same slot
// cannot both succeed.
func (service *Service) CreateOrder(ctx context.Context, actor Actor, roomID RoomID, customerID CustomerID, day Day) (Order, error) {
	var created Order
	operationError := func() error {
		if err := requirePermission(actor, ActionCreateOrder); err != nil {
			return err
		}
		return service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
			if _, err := transactionStore.GetRoom(ctx, roomID.String()); err != nil {
				return err
			}
			if _, err := transactionStore.GetCustomer(ctx, customerID.String()); err != nil {
				return err
			}
			_, occupied, err := transactionStore.FindActiveOrder(ctx, roomID.String(), day.String())
			if err != nil {
				return err
			}
			if occupied {
				return fmt.Errorf("%w: room %s on %s", ErrRoomUnavailable, roomID.String(), day.String())
			}
			inserted, err := transactionStore.InsertOrder(ctx, Order{
				RoomID:         roomID.String(),
				CustomerID:     customerID.String(),
				StaffID:        actor.StaffID.String(),
				Day:            day.String(),
				Status:         OrderStatusPending,
				CreatedUnixUTC: service.nowFn(),
			})
			if err != nil {
				return err
			}
			created = inserted
			return nil
		})
	}()
	service.logOperation(ctx, OperationLog{
		Operation:  operationCreateOrder,
		Actor:      actor.StaffID,
		Role:       actor.Role,
		CustomerID: customerID.String(),
		RoomID:     roomID.String(),
		OrderID:    created.OrderID,
		Day:        day.String(),
		Error:      operationError,
	})
	if operationError != nil {
		return Order{}, operationError
	}
	return created, nil
}

// TransitionOrder moves an order through its lifecycle. Transition legality
// is enforced here, not left to the caller: approve and reject require
// pending, mark_paid and cancel require approved.
func (service *Service) TransitionOrder(ctx context.Context, actor Actor, orderID OrderID, action OrderAction) (Order, error) {
	var updated Order
	operationError := func() error {
		requiredAction, err := actionForOrderAction(action)
		if err != nil {
			return err
		}
		if err := requirePermission(actor, requiredAction); err != nil {
			return err
		}
		return service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
			order, err := transactionStore.GetOrder(ctx, orderID.String())
			if err != nil {
				return err
			}
			target := action.TargetStatus()
			if !order.Status.CanTransitionTo(target) {
				return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, target)
			}
			stamp := service.stampFor(action, actor)
			if err := transactionStore.UpdateOrderStatus(ctx, orderID.String(), order.Status, target, stamp); err != nil {
				return err
			}
			refreshed, err := transactionStore.GetOrder(ctx, orderID.String())
			if err != nil {
				return err
			}
			updated = refreshed
			return nil
		})
	}()
	service.logOperation(ctx, OperationLog{
		Operation: operationForOrderAction(action),
		Actor:     actor.StaffID,
		Role:      actor.Role,
		OrderID:   orderID.String(),
		Error:     operationError,
	})
	if operationError != nil {
		return Order{}, operationError
	}
	return updated, nil
}

// ApproveOrder moves a pending order to approved.
func (service *Service) ApproveOrder(ctx context.Context, actor Actor, orderID OrderID) (Order, error) {
	return service.TransitionOrder(ctx, actor, orderID, OrderActionApprove)
}

// RejectOrder moves a pending order to rejected.
func (service *Service) RejectOrder(ctx context.Context, actor Actor, orderID OrderID) (Order, error) {
	return service.TransitionOrder(ctx, actor, orderID, OrderActionReject)
}

// MarkOrderPaid moves an approved order to paid.
func (service *Service) MarkOrderPaid(ctx context.Context, actor Actor, orderID OrderID) (Order, error) {
	return service.TransitionOrder(ctx, actor, orderID, OrderActionMarkPaid)
}

// CancelOrder moves an approved order to cancelled, freeing its slot.
func (service *Service) CancelOrder(ctx context.Context, actor Actor, orderID OrderID) (Order, error) {
	return service.TransitionOrder(ctx, actor, orderID, OrderActionCancel)
}

// BookingStatus derives the availability of a (room, day) slot from the at
// most one active order occupying it.
func (service *Service) BookingStatus(ctx context.Context, roomID RoomID, day Day) (BookingStatus, error) {
	if _, err := service.store.GetRoom(ctx, roomID.String()); err != nil {
		return "", err
	}
	order, occupied, err := service.store.FindActiveOrder(ctx, roomID.String(), day.String())
	if err != nil {
		return "", err
	}
	return deriveBookingStatus(order, occupied), nil
}

func deriveBookingStatus(order Order, occupied bool) BookingStatus {
	if !occupied {
		return BookingAvailable
	}
	if order.Status == OrderStatusPaid {
		return BookingOccupied
	}
	return BookingBooked
}

// stampFor records the transition actor and time. Rejection reuses the
// approval fields to carry the reviewer and review time.
func (service *Service) stampFor(action OrderAction, actor Actor) StatusStamp {
	now := service.nowFn()
	switch action {
	case OrderActionApprove, OrderActionReject:
		return StatusStamp{ApprovedUnixUTC: now, ApprovedBy: actor.StaffID.String()}
	case OrderActionMarkPaid:
		return StatusStamp{PaidUnixUTC: now}
	}
	return StatusStamp{}
}

func (service *Service) requireCustomerAccess(actor Actor, customer Customer) error {
	if CanPerform(actor.Role, ActionViewAllCustomers) {
		return nil
	}
	if customer.StaffID != actor.StaffID.String() {
		return fmt.Errorf("%w: customer %s is not owned by %s", ErrPermissionDenied, customer.CustomerID, actor.StaffID.String())
	}
	return nil
}

func (service *Service) logOperation(ctx context.Context, entry OperationLog) {
	if service.logger == nil {
		return
	}
	if entry.Status == "" {
		if entry.Error != nil {
			entry.Status = operationStatusError
		} else {
			entry.Status = operationStatusOK
		}
	}
	service.logger.LogOperation(ctx, entry)
}
