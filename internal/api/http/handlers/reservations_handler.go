package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/hotel-reservation-service/internal/api/dto"
	"github.com/spec-kit/hotel-reservation-service/internal/auth"
	"github.com/spec-kit/hotel-reservation-service/internal/domain"
	"github.com/spec-kit/hotel-reservation-service/internal/service"
	apperrors "github.com/spec-kit/hotel-reservation-service/pkg/util"
)

// ReservationsHandler exposes room selection, confirmation and commit.
type ReservationsHandler struct {
	service *service.ReservationService
}

// NewReservationsHandler constructs handler.
func NewReservationsHandler(reservationService *service.ReservationService) *ReservationsHandler {
	return &ReservationsHandler{service: reservationService}
}

// ChooseRoom handles GET /reservations/customers/:id/rooms.
func (h *ReservationsHandler) ChooseRoom(c *fiber.Ctx) error {
	stayFrom, stayUntil, err := parseStayQuery(c)
	if err != nil {
		return err
	}
	countPerson := c.QueryInt("count_person", 1)

	rooms, err := h.service.ChooseRoom(c.Context(), c.Params("id"), countPerson, stayFrom, stayUntil)
	if err != nil {
		return err
	}

	items := make([]dto.RoomSummary, 0, len(rooms))
	for i := range rooms {
		items = append(items, roomSummary(&rooms[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Confirm handles GET /reservations/customers/:id/rooms/:roomID/confirm.
func (h *ReservationsHandler) Confirm(c *fiber.Ctx) error {
	stayFrom, stayUntil, err := parseStayQuery(c)
	if err != nil {
		return err
	}

	confirmation, err := h.service.Confirm(c.Context(), c.Params("id"), c.Params("roomID"), stayFrom, stayUntil)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"data": dto.ConfirmationResponse{
		Customer:    customerSummary(confirmation.Customer),
		Room:        roomSummary(confirmation.Room),
		Nights:      confirmation.Nights,
		DownPayment: confirmation.DownPayment,
	}})
}

// Pay handles POST /reservations/customers/:id/rooms/:roomID/pay.
func (h *ReservationsHandler) Pay(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("staff authentication required")
	}

	var req dto.PayRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	stayFrom, err := time.Parse(dateLayout, req.CheckIn)
	if err != nil {
		return apperrors.NewValidationError("check_in must be YYYY-MM-DD", nil)
	}
	stayUntil, err := time.Parse(dateLayout, req.CheckOut)
	if err != nil {
		return apperrors.NewValidationError("check_out must be YYYY-MM-DD", nil)
	}

	txn, err := h.service.PayDownPayment(c.Context(), c.Params("id"), c.Params("roomID"), stayFrom, stayUntil, principal.User.ID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": transactionResponse(txn)})
}

func parseStayQuery(c *fiber.Ctx) (time.Time, time.Time, error) {
	stayFrom, err := time.Parse(dateLayout, c.Query("check_in"))
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.NewValidationError("check_in must be YYYY-MM-DD", nil)
	}
	stayUntil, err := time.Parse(dateLayout, c.Query("check_out"))
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.NewValidationError("check_out must be YYYY-MM-DD", nil)
	}
	return stayFrom, stayUntil, nil
}

func roomSummary(room *domain.Room) dto.RoomSummary {
	return dto.RoomSummary{
		ID:       room.ID,
		Number:   room.Number,
		Capacity: room.Capacity,
		Price:    room.Price,
		Type:     room.Type,
		Status:   room.Status,
	}
}

func transactionResponse(txn *domain.Transaction) dto.TransactionResponse {
	return dto.TransactionResponse{
		ID:            txn.ID,
		ReferenceCode: txn.ReferenceCode,
		UserID:        txn.UserID,
		CustomerID:    txn.CustomerID,
		RoomID:        txn.RoomID,
		CheckIn:       txn.CheckIn.Format(dateLayout),
		CheckOut:      txn.CheckOut.Format(dateLayout),
		Status:        string(txn.Status),
	}
}
