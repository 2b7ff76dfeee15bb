package httpserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/MarkoPoloResearchLab/clubdesk/internal/auth"
	"github.com/MarkoPoloResearchLab/clubdesk/pkg/club"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userResponse struct {
	StaffID string `json:"staff_id"`
	Name    string `json:"name"`
	Role    string `json:"role"`
}

type customerResponse struct {
	CustomerID        string `json:"customer_id"`
	Name              string `json:"name"`
	Phone             string `json:"phone"`
	IDCard            string `json:"id_card,omitempty"`
	MemberType        string `json:"member_type"`
	BalanceCents      int64  `json:"balance_cents"`
	StaffID           string `json:"staff_id"`
	RegisteredUnixUTC int64  `json:"registered_unix_utc"`
}

type roomResponse struct {
	RoomID            string `json:"room_id"`
	Number            string `json:"number"`
	Type              string `json:"type"`
	Floor             int    `json:"floor"`
	PricePerHourCents int64  `json:"price_per_hour_cents"`
}

type orderResponse struct {
	OrderID         string `json:"order_id"`
	RoomID          string `json:"room_id"`
	CustomerID      string `json:"customer_id"`
	StaffID         string `json:"staff_id"`
	Date            string `json:"date"`
	Status          string `json:"status"`
	CreatedUnixUTC  int64  `json:"created_unix_utc"`
	ApprovedUnixUTC int64  `json:"approved_unix_utc,omitempty"`
	ApprovedBy      string `json:"approved_by,omitempty"`
	PaidUnixUTC     int64  `json:"paid_unix_utc,omitempty"`
}

type rechargeResponse struct {
	RecordID       string `json:"record_id"`
	CustomerID     string `json:"customer_id"`
	AmountCents    int64  `json:"amount_cents"`
	StaffID        string `json:"staff_id"`
	Metadata       string `json:"metadata,omitempty"`
	CreatedUnixUTC int64  `json:"created_unix_utc"`
}

type bookingCellResponse struct {
	Date   string         `json:"date"`
	Status string         `json:"status"`
	Order  *orderResponse `json:"order,omitempty"`
}

type roomScheduleResponse struct {
	Room  roomResponse          `json:"room"`
	Cells []bookingCellResponse `json:"cells"`
}

type createCustomerRequest struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	IDCard     string `json:"id_card"`
	MemberType string `json:"member_type"`
}

type rechargeRequest struct {
	AmountCents int64  `json:"amount_cents"`
	Metadata    string `json:"metadata"`
}

type createOrderRequest struct {
	RoomID     string `json:"room_id"`
	CustomerID string `json:"customer_id"`
	Date       string `json:"date"`
}

func (server *Server) handleLogin(ctx *gin.Context) {
	var request loginRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_payload", "expected JSON body"))
		return
	}
	session, err := server.sessions.Login(ctx.Request.Context(), request.Username, request.Password)
	if err != nil {
		respondDomainError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"token": session.Token,
		"user":  identityResponse(session.Identity),
	})
}

func (server *Server) handleLogout(ctx *gin.Context) {
	identity, found := auth.IdentityFromContext(ctx)
	if !found {
		ctx.JSON(http.StatusUnauthorized, errorResponse("invalid_identity", "missing session"))
		return
	}
	server.sessions.Logout(identity.TokenID)
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (server *Server) handleSession(ctx *gin.Context) {
	identity, found := auth.IdentityFromContext(ctx)
	if !found {
		ctx.JSON(http.StatusUnauthorized, errorResponse("invalid_identity", "missing session"))
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"user": identityResponse(identity)})
}

func (server *Server) handleListCustomers(ctx *gin.Context) {
	actor, ok := server.actorFromContext(ctx)
	if !ok {
		return
	}
	customers, err := server.service.SearchCustomers(ctx.Request.Context(), actor, ctx.Query("q"))
	if err != nil {
		respondDomainError(ctx, err)
		return
	}
	responses := make([]customerResponse, 0, len(customers))
	for _, customer := range customers {
		responses = append(responses, mapCustomer(customer))
	}
	ctx.JSON(http.StatusOK, gin.H{"customers": responses})
}

func (server *Server) handleCreateCustomer(ctx *gin.Context) {
	actor, ok := server.actorFromContext(ctx)
	if !ok {
		return
	}
	var request createCustomerRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_payload", "expected JSON body"))
		return
	}
	tier, err := club.ParseMembershipTier(request.MemberType)
	if err != nil {
		respondDomainError(ctx, err)
		return
	}
	customer, err := server.service.CreateCustomer(ctx.Request.Context(), actor, club.CreateCustomerParams{
		Name:   request.Name,
		Phone:  request.Phone,
		IDCard: request.IDCard,
		Tier:   tier,
	})
	if err != nil {
		respondDomainError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"customer": mapCustomer(customer)})
}

func (server *Server) handleGetCustomer(ctx *gin.Context) {
	actor, ok := server.actorFromContext(ctx)
	if !ok {
		return
	}
	customerID, err := club.NewCustomerID(ctx.Param("id"))
	if err != nil {
		respondDomainError(ctx, err)
		return
	}
	customer, err := server.service.CustomerByID(ctx.Request.Context(), actor, customerID)
	if err != nil {
		respondDomainError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"customer": mapCustomer(customer)})
}

func (server *Server) handleListRecharges(ctx *gin.Context) {
	actor, ok := server.actorFromContext(ctx)
	if !ok {
		return
	}
	customerID, err := club.NewCustomerID(ctx.Param("id"))
	if err != nil {
		respondDomainError(ctx, err)
		return
	}
	records, err := server.service.RechargeHistory(ctx.Request.Context(), actor, customerID)
	if err != nil {
		respondDomainError(ctx, err)
		return
	}
	responses := make([]rechargeResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, mapRecharge(record))
	}
	ctx.JSON(http.StatusOK, gin.H{"recharges": responses})
}

func (server *Server) handleRecharge(ctx *gin.Context) {
	actor, ok := server.actorFromContext(ctx)
	if !ok {
		return
	}
	customerID, err := club.NewCustomerID(ctx.Param("id"))
	if err != nil {
		respondDomainError(ctx, err)
		return
	}
	var request rechargeRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_payload", "expected JSON body"))
		return
	}
	amount, err := club.NewAmountCents(request.AmountCents)
	if err != nil {
		respondDomainError(ctx, err)
		return
	}
	metadata, err := club.NewMetadataJSON(request.Metadata)
	if err != nil {
		respondDomainError(ctx, err)
		return
	}
	record, err := server.service.Recharge(ctx.Request.Context(), actor, customerID, amount, metadata)
	if err != nil {
		respondDomainError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"recharge": mapRecharge(record)})
}

func (server *Server) handleListRooms(ctx *gin.Context) {
	rooms, err := server.service.Rooms(ctx.Request.Context())
	if err != nil {
		respondDomainError(ctx, err)
		return
	}
	responses := make([]roomResponse, 0, len(rooms))
	for _, room := range rooms {
		responses = append(responses, mapRoom(room))
	}
	ctx.JSON(http.StatusOK, gin.H{"rooms": responses})
}

func (server *Server) handleAvailableRooms(ctx *gin.Context) {
	day, err := club.NewDay(ctx.Query("date"))
	if err != nil {
		respondDomainError(ctx, err)
		return
	}
	var roomType club.RoomType
	if rawType := ctx.Query("type"); rawType != "" {
		roomType, err = club.ParseRoomType(rawType)
		if err != nil {
			respondDomainError(ctx, err)
			return
		}
	}
	rooms, err := server.service.AvailableRooms(ctx.Request.Context(), day, roomType)
	if err != nil {
		respondDomainError(ctx, err)
		return
	}
	responses := make([]roomResponse, 0, len(rooms))
	for _, room := range rooms {
		responses = append(responses, mapRoom(room))
	}
	ctx.JSON(http.StatusOK, gin.H{"rooms": responses})
}

func (server *Server) handleBookingGrid(ctx *gin.Context) {
	start, err := club.NewDay(ctx.Query("start"))
	if err != nil {
		respondDomainError(ctx, err)
		return
	}
	days := 0
	if rawDays := ctx.Query("days"); rawDays != "" {
		days, err = strconv.Atoi(rawDays)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, errorResponse("invalid_grid_window", "days must be an integer"))
			return
		}
	}
	grid, err := server.service.BookingGrid(ctx.Request.Context(), start, days)
	if err != nil {
		respondDomainError(ctx, err)
		return
	}
	responses := make([]roomScheduleResponse, 0, len(grid))
	for _, schedule := range grid {
		cells := make([]bookingCellResponse, 0, len(schedule.Cells))
		for _, cell := range schedule.Cells {
			cellResponse := bookingCellResponse{Date: cell.Day, Status: cell.Status.String()}
			if cell.Order != nil {
				orderCopy := mapOrder(*cell.Order)
				cellResponse.Order = &orderCopy
			}
			cells = append(cells, cellResponse)
		}
		responses = append(responses, roomScheduleResponse{Room: mapRoom(schedule.Room), Cells: cells})
	}
	ctx.JSON(http.StatusOK, gin.H{"grid": responses})
}

func (server *Server) handleListOrders(ctx *gin.Context) {
	actor, ok := server.actorFromContext(ctx)
	if !ok {
		return
	}
	orders, err := server.service.Orders(ctx.Request.Context(), actor)
	if err != nil {
		respondDomainError(ctx, err)
		return
	}
	responses := make([]orderResponse, 0, len(orders))
	for _, order := range orders {
		responses = append(responses, mapOrder(order))
	}
	ctx.JSON(http.StatusOK, gin.H{"orders": responses})
}

func (server *Server) handleCreateOrder(ctx *gin.Context) {
	actor, ok := server.actorFromContext(ctx)
	if !ok {
		return
	}
	var request createOrderRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_payload", "expected JSON body"))
		return
	}
	roomID, err := club.NewRoomID(request.RoomID)
	if err != nil {
		respondDomainError(ctx, err)
		return
	}
	customerID, err := club.NewCustomerID(request.CustomerID)
	if err != nil {
		respondDomainError(ctx, err)
		return
	}
	day, err := club.NewDay(request.Date)
	if err != nil {
		respondDomainError(ctx, err)
		return
	}
	order, err := server.service.CreateOrder(ctx.Request.Context(), actor, roomID, customerID, day)
	if err != nil {
		respondDomainError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"order": mapOrder(order)})
}

func (server *Server) transitionHandler(action club.OrderAction) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		actor, ok := server.actorFromContext(ctx)
		if !ok {
			return
		}
		orderID, err := club.NewOrderID(ctx.Param("id"))
		if err != nil {
			respondDomainError(ctx, err)
			return
		}
		order, err := server.service.TransitionOrder(ctx.Request.Context(), actor, orderID, action)
		if err != nil {
			respondDomainError(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"order": mapOrder(order)})
	}
}

func (server *Server) handleDashboard(ctx *gin.Context) {
	actor, ok := server.actorFromContext(ctx)
	if !ok {
		return
	}
	summary, err := server.service.Dashboard(ctx.Request.Context(), actor)
	if err != nil {
		respondDomainError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"pending_orders": summary.PendingOrders,
		"today_orders":   summary.TodayOrders,
		"my_customers":   summary.MyCustomers,
	})
}

func identityResponse(identity auth.Identity) userResponse {
	return userResponse{
		StaffID: identity.StaffID,
		Name:    identity.DisplayName,
		Role:    identity.Role.String(),
	}
}

func mapCustomer(customer club.Customer) customerResponse {
	return customerResponse{
		CustomerID:        customer.CustomerID,
		Name:              customer.Name,
		Phone:             customer.Phone,
		IDCard:            customer.IDCard,
		MemberType:        customer.Tier.String(),
		BalanceCents:      customer.BalanceCents.Int64(),
		StaffID:           customer.StaffID,
		RegisteredUnixUTC: customer.RegisteredUnixUTC,
	}
}

func mapRoom(room club.Room) roomResponse {
	return roomResponse{
		RoomID:            room.RoomID,
		Number:            room.Number,
		Type:              room.Type.String(),
		Floor:             room.Floor,
		PricePerHourCents: room.PricePerHourCents.Int64(),
	}
}

func mapOrder(order club.Order) orderResponse {
	return orderResponse{
		OrderID:         order.OrderID,
		RoomID:          order.RoomID,
		CustomerID:      order.CustomerID,
		StaffID:         order.StaffID,
		Date:            order.Day,
		Status:          order.Status.String(),
		CreatedUnixUTC:  order.CreatedUnixUTC,
		ApprovedUnixUTC: order.ApprovedUnixUTC,
		ApprovedBy:      order.ApprovedBy,
		PaidUnixUTC:     order.PaidUnixUTC,
	}
}

func mapRecharge(record club.RechargeRecord) rechargeResponse {
	return rechargeResponse{
		RecordID:       record.RecordID,
		CustomerID:     record.CustomerID,
		AmountCents:    record.AmountCents.Int64(),
		StaffID:        record.StaffID,
		Metadata:       record.MetadataJSON,
		CreatedUnixUTC: record.CreatedUnixUTC,
	}
}
