package gormstore

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Customer represents the customers table.
type Customer struct {
	CustomerID   string    `gorm:"primaryKey"`
	Name         string    `gorm:"not null"`
	Phone        string    `gorm:"not null"`
	IDCard       string    `gorm:""`
	Tier         string    `gorm:"not null"`
	BalanceCents int64     `gorm:"not null"`
	StaffID      string    `gorm:"not null;index:idx_customers_staff"`
	RegisteredAt time.Time `gorm:"not null"`
}

func (Customer) TableName() string { return "customers" }

func (customer *Customer) BeforeCreate(tx *gorm.DB) error {
	if customer.CustomerID == "" {
		customer.CustomerID = uuid.NewString()
	}
	return nil
}

// Room represents the rooms table.
type Room struct {
	RoomID            string `gorm:"primaryKey"`
	Number            string `gorm:"not null;index:uniq_rooms_number,unique"`
	Type              string `gorm:"not null"`
	Floor             int    `gorm:"not null"`
	PricePerHourCents int64  `gorm:"not null"`
}

func (Room) TableName() string { return "rooms" }

func (room *Room) BeforeCreate(tx *gorm.DB) error {
	if room.RoomID == "" {
		room.RoomID = uuid.NewString()
	}
	return nil
}

// Order represents the orders table.
type Order struct {
	OrderID    string     `gorm:"primaryKey"`
	RoomID     string     `gorm:"not null;index:idx_orders_room_day,priority:1"`
	BookingDay string     `gorm:"not null;index:idx_orders_room_day,priority:2"`
	CustomerID string     `gorm:"not null"`
	StaffID    string     `gorm:"not null;index:idx_orders_staff"`
	Status     string     `gorm:"not null"`
	CreatedAt  time.Time  `gorm:"not null"`
	ApprovedAt *time.Time `gorm:""`
	ApprovedBy *string    `gorm:""`
	PaidAt     *time.Time `gorm:""`
}

func (Order) TableName() string { return "orders" }

func (order *Order) BeforeCreate(tx *gorm.DB) error {
	if order.OrderID == "" {
		order.OrderID = uuid.NewString()
	}
	return nil
}

// RechargeRecord represents the recharge_records table.
type RechargeRecord struct {
	RecordID    string         `gorm:"primaryKey"`
	CustomerID  string         `gorm:"not null;index:idx_recharges_customer_created,priority:1"`
	AmountCents int64          `gorm:"not null"`
	StaffID     string         `gorm:"not null"`
	Metadata    datatypes.JSON `gorm:"not null"`
	CreatedAt   time.Time      `gorm:"not null;index:idx_recharges_customer_created,priority:2"`
}

func (RechargeRecord) TableName() string { return "recharge_records" }

func (record *RechargeRecord) BeforeCreate(tx *gorm.DB) error {
	if record.RecordID == "" {
		record.RecordID = uuid.NewString()
	}
	return nil
}

// StaffAccount represents the staff_accounts table.
type StaffAccount struct {
	StaffID      string    `gorm:"primaryKey"`
	Username     string    `gorm:"not null;index:uniq_staff_accounts_username,unique"`
	PasswordHash string    `gorm:"not null"`
	DisplayName  string    `gorm:"not null"`
	Role         string    `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

func (StaffAccount) TableName() string { return "staff_accounts" }

func (account *StaffAccount) BeforeCreate(tx *gorm.DB) error {
	if account.StaffID == "" {
		account.StaffID = uuid.NewString()
	}
	return nil
}
