package club

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// AmountCents is an integer currency amount in cents.
type AmountCents int64

// CustomerID identifies a customer.
type CustomerID struct {
	value string
}

// RoomID identifies a private room.
type RoomID struct {
	value string
}

// OrderID identifies a booking order.
type OrderID struct {
	value string
}

// StaffID identifies a staff or leader account.
type StaffID struct {
	value string
}

// Day is a booking day at calendar-day granularity (YYYY-MM-DD).
type Day struct {
	value string
}

// MetadataJSON stores arbitrary request metadata.
type MetadataJSON struct {
	value string
}

const dayLayout = "2006-01-02"

// Role distinguishes ordinary staff from the approving leader.
type Role string

const (
	RoleStaff  Role = "staff"
	RoleLeader Role = "leader"
)

// MembershipTier classifies a customer.
type MembershipTier string

const (
	TierRegular MembershipTier = "regular"
	TierVIP     MembershipTier = "vip"
	TierSVIP    MembershipTier = "svip"
)

// RoomType classifies a private room.
type RoomType string

const (
	RoomTypeLuxury RoomType = "luxury"
	RoomTypeLarge  RoomType = "large"
	RoomTypeMedium RoomType = "medium"
	RoomTypeSmall  RoomType = "small"
)

// OrderStatus defines the booking-order lifecycle.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusApproved  OrderStatus = "approved"
	OrderStatusRejected  OrderStatus = "rejected"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// BookingStatus is the derived availability of a (room, day) slot.
type BookingStatus string

const (
	BookingAvailable BookingStatus = "available"
	BookingBooked    BookingStatus = "booked"
	BookingOccupied  BookingStatus = "occupied"
)

// OrderAction names a requested order-status transition.
type OrderAction string

const (
	OrderActionApprove  OrderAction = "approve"
	OrderActionReject   OrderAction = "reject"
	OrderActionMarkPaid OrderAction = "mark_paid"
	OrderActionCancel   OrderAction = "cancel"
)

// Customer is a club member record.
type Customer struct {
	CustomerID        string
	Name              string
	Phone             string
	IDCard            string
	Tier              MembershipTier
	BalanceCents      AmountCents
	StaffID           string
	RegisteredUnixUTC int64
}

// Room is static reference data describing a private room.
type Room struct {
	RoomID            string
	Number            string
	Type              RoomType
	Floor             int
	PricePerHourCents AmountCents
}

// Order is a booking request for one room on one day.
type Order struct {
	OrderID         string
	RoomID          string
	CustomerID      string
	StaffID         string
	Day             string
	Status          OrderStatus
	CreatedUnixUTC  int64
	ApprovedUnixUTC int64
	ApprovedBy      string
	PaidUnixUTC     int64
}

// Active reports whether the order occupies its (room, day) slot.
func (order Order) Active() bool {
	return order.Status != OrderStatusCancelled && order.Status != OrderStatusRejected
}

// RechargeRecord is one append-only balance top-up audit line.
type RechargeRecord struct {
	RecordID       string
	CustomerID     string
	AmountCents    AmountCents
	StaffID        string
	MetadataJSON   string
	CreatedUnixUTC int64
}

// Actor is the authenticated identity performing an operation.
type Actor struct {
	StaffID StaffID
	Role    Role
}

func (actor Actor) validate() error {
	if actor.StaffID.value == "" {
		return fmt.Errorf("%w: empty actor", ErrInvalidStaffID)
	}
	if !actor.Role.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidRole, actor.Role)
	}
	return nil
}

// NewCustomerID validates and normalizes a customer id.
func NewCustomerID(raw string) (CustomerID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return CustomerID{}, fmt.Errorf("%w: empty value", ErrInvalidCustomerID)
	}
	return CustomerID{value: trimmed}, nil
}

// String returns the normalized identifier.
func (id CustomerID) String() string {
	return id.value
}

// NewRoomID validates and normalizes a room id.
func NewRoomID(raw string) (RoomID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return RoomID{}, fmt.Errorf("%w: empty value", ErrInvalidRoomID)
	}
	return RoomID{value: trimmed}, nil
}

// String returns the normalized identifier.
func (id RoomID) String() string {
	return id.value
}

// NewOrderID validates and normalizes an order id.
func NewOrderID(raw string) (OrderID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return OrderID{}, fmt.Errorf("%w: empty value", ErrInvalidOrderID)
	}
	return OrderID{value: trimmed}, nil
}

// String returns the normalized identifier.
func (id OrderID) String() string {
	return id.value
}

// NewStaffID validates and normalizes a staff id.
func NewStaffID(raw string) (StaffID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return StaffID{}, fmt.Errorf("%w: empty value", ErrInvalidStaffID)
	}
	return StaffID{value: trimmed}, nil
}

// String returns the normalized identifier.
func (id StaffID) String() string {
	return id.value
}

// NewDay validates a calendar day in YYYY-MM-DD form.
func NewDay(raw string) (Day, error) {
	trimmed := strings.TrimSpace(raw)
	parsed, err := time.Parse(dayLayout, trimmed)
	if err != nil {
		return Day{}, fmt.Errorf("%w: %q", ErrInvalidDay, raw)
	}
	return Day{value: parsed.Format(dayLayout)}, nil
}

// DayFromTime truncates a time to its UTC calendar day.
func DayFromTime(at time.Time) Day {
	return Day{value: at.UTC().Format(dayLayout)}
}

// AddDays returns the day shifted by the given number of days.
func (day Day) AddDays(days int) Day {
	parsed, err := time.Parse(dayLayout, day.value)
	if err != nil {
		return day
	}
	return Day{value: parsed.AddDate(0, 0, days).Format(dayLayout)}
}

// String returns the normalized YYYY-MM-DD value.
func (day Day) String() string {
	return day.value
}

// NewMetadataJSON validates metadata (defaulting to "{}" for empty inputs).
func NewMetadataJSON(raw string) (MetadataJSON, error) {
	normalized := strings.TrimSpace(raw)
	if normalized == "" {
		normalized = "{}"
	}
	if !json.Valid([]byte(normalized)) {
		return MetadataJSON{}, fmt.Errorf("%w: must be valid json", ErrInvalidMetadataJSON)
	}
	return MetadataJSON{value: normalized}, nil
}

// String returns the normalized JSON blob.
func (metadata MetadataJSON) String() string {
	return metadata.value
}

// NewAmountCents validates an amount and ensures it is strictly positive.
func NewAmountCents(raw int64) (AmountCents, error) {
	if raw <= 0 {
		return 0, fmt.Errorf("%w: must be greater than zero", ErrInvalidAmount)
	}
	return AmountCents(raw), nil
}

// Int64 returns the raw cent value.
func (amount AmountCents) Int64() int64 {
	return int64(amount)
}

// ParseRole validates a role string.
func ParseRole(raw string) (Role, error) {
	role := Role(strings.TrimSpace(raw))
	if !role.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, raw)
	}
	return role, nil
}

// Valid reports whether the role is a known value.
func (role Role) Valid() bool {
	return role == RoleStaff || role == RoleLeader
}

// String returns the role value.
func (role Role) String() string {
	return string(role)
}

// ParseMembershipTier validates a membership tier string.
func ParseMembershipTier(raw string) (MembershipTier, error) {
	tier := MembershipTier(strings.TrimSpace(raw))
	switch tier {
	case TierRegular, TierVIP, TierSVIP:
		return tier, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMembershipTier, raw)
}

// String returns the tier value.
func (tier MembershipTier) String() string {
	return string(tier)
}

// ParseRoomType validates a room type string.
func ParseRoomType(raw string) (RoomType, error) {
	roomType := RoomType(strings.TrimSpace(raw))
	switch roomType {
	case RoomTypeLuxury, RoomTypeLarge, RoomTypeMedium, RoomTypeSmall:
		return roomType, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidRoomType, raw)
}

// String returns the room type value.
func (roomType RoomType) String() string {
	return string(roomType)
}

// ParseOrderStatus validates an order status string.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	status := OrderStatus(strings.TrimSpace(raw))
	switch status {
	case OrderStatusPending, OrderStatusApproved, OrderStatusRejected, OrderStatusPaid, OrderStatusCancelled:
		return status, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidOrderStatus, raw)
}

// String returns the status value.
func (status OrderStatus) String() string {
	return string(status)
}

// Terminal reports whether no further transition is allowed.
func (status OrderStatus) Terminal() bool {
	switch status {
	case OrderStatusRejected, OrderStatusPaid, OrderStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether the status change is legal.
// pending may move to approved or rejected; approved may move to paid or
// cancelled; the remaining statuses are terminal.
func (status OrderStatus) CanTransitionTo(to OrderStatus) bool {
	switch status {
	case OrderStatusPending:
		return to == OrderStatusApproved || to == OrderStatusRejected
	case OrderStatusApproved:
		return to == OrderStatusPaid || to == OrderStatusCancelled
	}
	return false
}

// String returns the booking status value.
func (status BookingStatus) String() string {
	return string(status)
}

// ParseOrderAction validates an order action string.
func ParseOrderAction(raw string) (OrderAction, error) {
	action := OrderAction(strings.TrimSpace(raw))
	switch action {
	case OrderActionApprove, OrderActionReject, OrderActionMarkPaid, OrderActionCancel:
		return action, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidOrderAction, raw)
}

// String returns the action value.
func (action OrderAction) String() string {
	return string(action)
}

// TargetStatus returns the status the action moves an order into.
func (action OrderAction) TargetStatus() OrderStatus {
	switch action {
	case OrderActionApprove:
		return OrderStatusApproved
	case OrderActionReject:
		return OrderStatusRejected
	case OrderActionMarkPaid:
		return OrderStatusPaid
	case OrderActionCancel:
		return OrderStatusCancelled
	}
	return ""
}
