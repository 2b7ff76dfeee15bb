package gormstore

import (
	"context"
	"errors"
	"time"

	gosqlite "github.com/glebarez/go-sqlite"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/MarkoPoloResearchLab/clubdesk/internal/auth"
	"github.com/MarkoPoloResearchLab/clubdesk/pkg/club"
)

const (
	defaultMetadataJSON   = "{}"
	pgUniqueViolationCode = "23505"
	sqliteConstraintCode  = 19
	errorOperationStore   = "store"
	errorSubjectAccount   = "account"
	errorSubjectCustomer  = "customer"
	errorSubjectOrder     = "order"
	errorSubjectRecharge  = "recharge"
	errorSubjectRoom      = "room"
	errorCodeDuplicate    = "duplicate"
	errorCodeGet          = "get"
	errorCodeInsert       = "insert"
	errorCodeInvalid      = "invalid"
	errorCodeList         = "list"
	errorCodeLookup       = "lookup"
	errorCodeUpdate       = "update"
	errorCodeUpdateStatus = "update_status"
)

var inactiveOrderStatuses = []string{
	club.OrderStatusCancelled.String(),
	club.OrderStatusRejected.String(),
}

// Store implements club.Store and auth.AccountStore using GORM.
type Store struct {
	db *gorm.DB
}

// New returns a Store backed by gorm.DB.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates or updates the backing tables.
func (store *Store) Migrate() error {
	return store.db.AutoMigrate(
		&Customer{},
		&Room{},
		&Order{},
		&RechargeRecord{},
		&StaffAccount{},
	)
}

// WithTx executes fn within a transaction.
func (store *Store) WithTx(ctx context.Context, fn func(ctx context.Context, txStore club.Store) error) error {
	return store.db.WithContext(ctx).Transaction(func(transaction *gorm.DB) error {
		return fn(ctx, &Store{db: transaction})
	})
}

func (store *Store) InsertCustomer(ctx context.Context, customer club.Customer) (club.Customer, error) {
	model := Customer{
		CustomerID:   customer.CustomerID,
		Name:         customer.Name,
		Phone:        customer.Phone,
		IDCard:       customer.IDCard,
		Tier:         customer.Tier.String(),
		BalanceCents: customer.BalanceCents.Int64(),
		StaffID:      customer.StaffID,
		RegisteredAt: time.Unix(customer.RegisteredUnixUTC, 0).UTC(),
	}
	if err := store.db.WithContext(ctx).Create(&model).Error; err != nil {
		return club.Customer{}, wrapStoreError(errorSubjectCustomer, errorCodeInsert, err)
	}
	return mapCustomerOrWrap(model)
}

func (store *Store) GetCustomer(ctx context.Context, customerID string) (club.Customer, error) {
	var model Customer
	err := store.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return club.Customer{}, wrapStoreError(errorSubjectCustomer, errorCodeGet, club.ErrUnknownCustomer)
		}
		return club.Customer{}, wrapStoreError(errorSubjectCustomer, errorCodeGet, err)
	}
	return mapCustomerOrWrap(model)
}

func (store *Store) ListCustomers(ctx context.Context, scope club.StaffScope) ([]club.Customer, error) {
	var rows []Customer
	query := applyScope(store.db.WithContext(ctx), scope).Order("registered_at ASC")
	if err := query.Find(&rows).Error; err != nil {
		return nil, wrapStoreError(errorSubjectCustomer, errorCodeList, err)
	}
	customers := make([]club.Customer, 0, len(rows))
	for _, row := range rows {
		customer, err := mapCustomerOrWrap(row)
		if err != nil {
			return nil, err
		}
		customers = append(customers, customer)
	}
	return customers, nil
}

func (store *Store) AddCustomerBalance(ctx context.Context, customerID string, deltaCents int64) error {
	result := store.db.WithContext(ctx).
		Model(&Customer{}).
		Where("customer_id = ?", customerID).
		Update("balance_cents", gorm.Expr("balance_cents + ?", deltaCents))
	if result.Error != nil {
		return wrapStoreError(errorSubjectCustomer, errorCodeUpdate, result.Error)
	}
	if result.RowsAffected == 0 {
		return wrapStoreError(errorSubjectCustomer, errorCodeUpdate, club.ErrUnknownCustomer)
	}
	return nil
}

func (store *Store) InsertRechargeRecord(ctx context.Context, record club.RechargeRecord) (club.RechargeRecord, error) {
	model := RechargeRecord{
		RecordID:    record.RecordID,
		CustomerID:  record.CustomerID,
		AmountCents: record.AmountCents.Int64(),
		StaffID:     record.StaffID,
		Metadata:    datatypesJSON(record.MetadataJSON),
		CreatedAt:   createdAtOrNow(record.CreatedUnixUTC),
	}
	if err := store.db.WithContext(ctx).Create(&model).Error; err != nil {
		return club.RechargeRecord{}, wrapStoreError(errorSubjectRecharge, errorCodeInsert, err)
	}
	return mapRechargeRecord(model), nil
}

func (store *Store) ListRechargeRecords(ctx context.Context, customerID string) ([]club.RechargeRecord, error) {
	var rows []RechargeRecord
	err := store.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, wrapStoreError(errorSubjectRecharge, errorCodeList, err)
	}
	records := make([]club.RechargeRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, mapRechargeRecord(row))
	}
	return records, nil
}

func (store *Store) InsertRoom(ctx context.Context, room club.Room) (club.Room, error) {
	model := Room{
		RoomID:            room.RoomID,
		Number:            room.Number,
		Type:              room.Type.String(),
		Floor:             room.Floor,
		PricePerHourCents: room.PricePerHourCents.Int64(),
	}
	if err := store.db.WithContext(ctx).Create(&model).Error; err != nil {
		return club.Room{}, wrapStoreError(errorSubjectRoom, errorCodeInsert, err)
	}
	return mapRoomOrWrap(model)
}

func (store *Store) GetRoom(ctx context.Context, roomID string) (club.Room, error) {
	var model Room
	err := store.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return club.Room{}, wrapStoreError(errorSubjectRoom, errorCodeGet, club.ErrUnknownRoom)
		}
		return club.Room{}, wrapStoreError(errorSubjectRoom, errorCodeGet, err)
	}
	return mapRoomOrWrap(model)
}

func (store *Store) ListRooms(ctx context.Context) ([]club.Room, error) {
	var rows []Room
	err := store.db.WithContext(ctx).
		Order("number ASC").
		Find(&rows).Error
	if err != nil {
		return nil, wrapStoreError(errorSubjectRoom, errorCodeList, err)
	}
	rooms := make([]club.Room, 0, len(rows))
	for _, row := range rows {
		room, err := mapRoomOrWrap(row)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, nil
}

func (store *Store) InsertOrder(ctx context.Context, order club.Order) (club.Order, error) {
	model := Order{
		OrderID:    order.OrderID,
		RoomID:     order.RoomID,
		BookingDay: order.Day,
		CustomerID: order.CustomerID,
		StaffID:    order.StaffID,
		Status:     order.Status.String(),
		CreatedAt:  createdAtOrNow(order.CreatedUnixUTC),
	}
	if order.ApprovedUnixUTC != 0 {
		approvedAt := time.Unix(order.ApprovedUnixUTC, 0).UTC()
		model.ApprovedAt = &approvedAt
	}
	if order.ApprovedBy != "" {
		approvedBy := order.ApprovedBy
		model.ApprovedBy = &approvedBy
	}
	if order.PaidUnixUTC != 0 {
		paidAt := time.Unix(order.PaidUnixUTC, 0).UTC()
		model.PaidAt = &paidAt
	}
	if err := store.db.WithContext(ctx).Create(&model).Error; err != nil {
		return club.Order{}, wrapStoreError(errorSubjectOrder, errorCodeInsert, err)
	}
	return mapOrderOrWrap(model)
}

func (store *Store) GetOrder(ctx context.Context, orderID string) (club.Order, error) {
	var model Order
	err := store.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return club.Order{}, wrapStoreError(errorSubjectOrder, errorCodeGet, club.ErrUnknownOrder)
		}
		return club.Order{}, wrapStoreError(errorSubjectOrder, errorCodeGet, err)
	}
	return mapOrderOrWrap(model)
}

func (store *Store) FindActiveOrder(ctx context.Context, roomID string, day string) (club.Order, bool, error) {
	var model Order
	err := store.db.WithContext(ctx).
		Where("room_id = ? AND booking_day = ?", roomID, day).
		Where("status NOT IN ?", inactiveOrderStatuses).
		Take(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return club.Order{}, false, nil
	}
	if err != nil {
		return club.Order{}, false, wrapStoreError(errorSubjectOrder, errorCodeLookup, err)
	}
	order, mapErr := mapOrderOrWrap(model)
	if mapErr != nil {
		return club.Order{}, false, mapErr
	}
	return order, true, nil
}

func (store *Store) ListActiveOrdersBetween(ctx context.Context, fromDay string, toDay string) ([]club.Order, error) {
	var rows []Order
	err := store.db.WithContext(ctx).
		Where("booking_day >= ? AND booking_day <= ?", fromDay, toDay).
		Where("status NOT IN ?", inactiveOrderStatuses).
		Find(&rows).Error
	if err != nil {
		return nil, wrapStoreError(errorSubjectOrder, errorCodeList, err)
	}
	return mapOrders(rows)
}

func (store *Store) ListOrders(ctx context.Context, scope club.StaffScope) ([]club.Order, error) {
	var rows []Order
	query := applyScope(store.db.WithContext(ctx), scope).Order("created_at DESC")
	if err := query.Find(&rows).Error; err != nil {
		return nil, wrapStoreError(errorSubjectOrder, errorCodeList, err)
	}
	return mapOrders(rows)
}

func (store *Store) UpdateOrderStatus(ctx context.Context, orderID string, from club.OrderStatus, to club.OrderStatus, stamp club.StatusStamp) error {
	updates := map[string]interface{}{"status": to.String()}
	if stamp.ApprovedUnixUTC != 0 {
		updates["approved_at"] = time.Unix(stamp.ApprovedUnixUTC, 0).UTC()
		updates["approved_by"] = stamp.ApprovedBy
	}
	if stamp.PaidUnixUTC != 0 {
		updates["paid_at"] = time.Unix(stamp.PaidUnixUTC, 0).UTC()
	}
	result := store.db.WithContext(ctx).
		Model(&Order{}).
		Where("order_id = ? AND status = ?", orderID, from.String()).
		Updates(updates)
	if result.Error != nil {
		return wrapStoreError(errorSubjectOrder, errorCodeUpdateStatus, result.Error)
	}
	if result.RowsAffected == 0 {
		return wrapStoreError(errorSubjectOrder, errorCodeUpdateStatus, club.ErrInvalidTransition)
	}
	return nil
}

func (store *Store) GetAccountByUsername(ctx context.Context, username string) (auth.Account, error) {
	var model StaffAccount
	err := store.db.WithContext(ctx).
		Where("username = ?", username).
		Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return auth.Account{}, wrapStoreError(errorSubjectAccount, errorCodeGet, auth.ErrAccountNotFound)
		}
		return auth.Account{}, wrapStoreError(errorSubjectAccount, errorCodeGet, err)
	}
	return mapStaffAccount(model)
}

func (store *Store) InsertAccount(ctx context.Context, account auth.Account) (auth.Account, error) {
	model := StaffAccount{
		StaffID:      account.StaffID,
		Username:     account.Username,
		PasswordHash: account.PasswordHash,
		DisplayName:  account.DisplayName,
		Role:         account.Role.String(),
		CreatedAt:    time.Now().UTC(),
	}
	err := store.db.WithContext(ctx).Create(&model).Error
	if isUniqueViolation(err) {
		return auth.Account{}, wrapStoreError(errorSubjectAccount, errorCodeDuplicate, club.ErrDuplicateUsername)
	}
	if err != nil {
		return auth.Account{}, wrapStoreError(errorSubjectAccount, errorCodeInsert, err)
	}
	return mapStaffAccount(model)
}

func wrapStoreError(subject string, code string, err error) error {
	return club.WrapError(errorOperationStore, subject, code, err)
}

func applyScope(query *gorm.DB, scope club.StaffScope) *gorm.DB {
	if ownedBy, filtered := scope.OwnedBy(); filtered {
		query = query.Where("staff_id = ?", ownedBy)
	}
	if notOwnedBy, filtered := scope.NotOwnedBy(); filtered {
		query = query.Where("staff_id <> ?", notOwnedBy)
	}
	return query
}

func mapCustomerOrWrap(model Customer) (club.Customer, error) {
	tier, err := club.ParseMembershipTier(model.Tier)
	if err != nil {
		return club.Customer{}, wrapStoreError(errorSubjectCustomer, errorCodeInvalid, err)
	}
	return club.Customer{
		CustomerID:        model.CustomerID,
		Name:              model.Name,
		Phone:             model.Phone,
		IDCard:            model.IDCard,
		Tier:              tier,
		BalanceCents:      club.AmountCents(model.BalanceCents),
		StaffID:           model.StaffID,
		RegisteredUnixUTC: model.RegisteredAt.Unix(),
	}, nil
}

func mapRoomOrWrap(model Room) (club.Room, error) {
	roomType, err := club.ParseRoomType(model.Type)
	if err != nil {
		return club.Room{}, wrapStoreError(errorSubjectRoom, errorCodeInvalid, err)
	}
	return club.Room{
		RoomID:            model.RoomID,
		Number:            model.Number,
		Type:              roomType,
		Floor:             model.Floor,
		PricePerHourCents: club.AmountCents(model.PricePerHourCents),
	}, nil
}

func mapOrders(rows []Order) ([]club.Order, error) {
	orders := make([]club.Order, 0, len(rows))
	for _, row := range rows {
		order, err := mapOrderOrWrap(row)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func mapOrderOrWrap(model Order) (club.Order, error) {
	status, err := club.ParseOrderStatus(model.Status)
	if err != nil {
		return club.Order{}, wrapStoreError(errorSubjectOrder, errorCodeInvalid, err)
	}
	order := club.Order{
		OrderID:        model.OrderID,
		RoomID:         model.RoomID,
		CustomerID:     model.CustomerID,
		StaffID:        model.StaffID,
		Day:            model.BookingDay,
		Status:         status,
		CreatedUnixUTC: model.CreatedAt.Unix(),
	}
	if model.ApprovedAt != nil {
		order.ApprovedUnixUTC = model.ApprovedAt.Unix()
	}
	if model.ApprovedBy != nil {
		order.ApprovedBy = *model.ApprovedBy
	}
	if model.PaidAt != nil {
		order.PaidUnixUTC = model.PaidAt.Unix()
	}
	return order, nil
}

func mapRechargeRecord(model RechargeRecord) club.RechargeRecord {
	return club.RechargeRecord{
		RecordID:       model.RecordID,
		CustomerID:     model.CustomerID,
		AmountCents:    club.AmountCents(model.AmountCents),
		StaffID:        model.StaffID,
		MetadataJSON:   string(model.Metadata),
		CreatedUnixUTC: model.CreatedAt.Unix(),
	}
}

func mapStaffAccount(model StaffAccount) (auth.Account, error) {
	role, err := club.ParseRole(model.Role)
	if err != nil {
		return auth.Account{}, wrapStoreError(errorSubjectAccount, errorCodeInvalid, err)
	}
	return auth.Account{
		StaffID:      model.StaffID,
		Username:     model.Username,
		PasswordHash: model.PasswordHash,
		DisplayName:  model.DisplayName,
		Role:         role,
	}, nil
}

func createdAtOrNow(unixUTC int64) time.Time {
	if unixUTC == 0 {
		return time.Now().UTC()
	}
	return time.Unix(unixUTC, 0).UTC()
}

func datatypesJSON(raw string) datatypes.JSON {
	if raw == "" {
		return datatypes.JSON([]byte(defaultMetadataJSON))
	}
	return datatypes.JSON([]byte(raw))
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolationCode
	}
	var sqliteErr *gosqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code()&0xFF == sqliteConstraintCode
	}
	return false
}
