package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MarkoPoloResearchLab/clubdesk/pkg/club"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

func errorResponse(code string, message string) errorEnvelope {
	return errorEnvelope{Error: errorBody{Code: code, Message: message}}
}

// respondDomainError writes the stable HTTP mapping for a domain error.
func respondDomainError(ctx *gin.Context, source error) {
	status, code := mapDomainError(source)
	message := source.Error()
	if status == http.StatusInternalServerError {
		message = "internal error"
	}
	ctx.JSON(status, errorResponse(code, message))
}

func mapDomainError(source error) (int, string) {
	if errors.Is(source, club.ErrInvalidCredentials) {
		return http.StatusUnauthorized, "invalid_credentials"
	}
	if errors.Is(source, club.ErrPermissionDenied) {
		return http.StatusForbidden, "permission_denied"
	}
	if errors.Is(source, club.ErrUnknownCustomer) {
		return http.StatusNotFound, "unknown_customer"
	}
	if errors.Is(source, club.ErrUnknownRoom) {
		return http.StatusNotFound, "unknown_room"
	}
	if errors.Is(source, club.ErrUnknownOrder) {
		return http.StatusNotFound, "unknown_order"
	}
	if errors.Is(source, club.ErrRoomUnavailable) {
		return http.StatusConflict, "room_unavailable"
	}
	if errors.Is(source, club.ErrInvalidTransition) {
		return http.StatusConflict, "invalid_transition"
	}
	if errors.Is(source, club.ErrDuplicateUsername) {
		return http.StatusConflict, "duplicate_username"
	}
	if errors.Is(source, club.ErrInvalidAmount) {
		return http.StatusBadRequest, "invalid_amount"
	}
	if errors.Is(source, club.ErrInvalidDay) {
		return http.StatusBadRequest, "invalid_day"
	}
	if errors.Is(source, club.ErrInvalidCustomerID) {
		return http.StatusBadRequest, "invalid_customer_id"
	}
	if errors.Is(source, club.ErrInvalidRoomID) {
		return http.StatusBadRequest, "invalid_room_id"
	}
	if errors.Is(source, club.ErrInvalidOrderID) {
		return http.StatusBadRequest, "invalid_order_id"
	}
	if errors.Is(source, club.ErrInvalidMembershipTier) {
		return http.StatusBadRequest, "invalid_member_type"
	}
	if errors.Is(source, club.ErrInvalidRoomType) {
		return http.StatusBadRequest, "invalid_room_type"
	}
	if errors.Is(source, club.ErrInvalidOrderAction) {
		return http.StatusBadRequest, "invalid_order_action"
	}
	if errors.Is(source, club.ErrInvalidCustomerName) {
		return http.StatusBadRequest, "invalid_customer_name"
	}
	if errors.Is(source, club.ErrInvalidCustomerPhone) {
		return http.StatusBadRequest, "invalid_customer_phone"
	}
	if errors.Is(source, club.ErrInvalidMetadataJSON) {
		return http.StatusBadRequest, "invalid_metadata"
	}
	if errors.Is(source, club.ErrInvalidGridWindow) {
		return http.StatusBadRequest, "invalid_grid_window"
	}
	if errors.Is(source, club.ErrInvalidStaffID) || errors.Is(source, club.ErrInvalidRole) {
		return http.StatusUnauthorized, "invalid_identity"
	}
	return http.StatusInternalServerError, "internal"
}
