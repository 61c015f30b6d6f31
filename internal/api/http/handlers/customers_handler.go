package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/hotel-reservation-service/internal/api/dto"
	"github.com/spec-kit/hotel-reservation-service/internal/domain"
	"github.com/spec-kit/hotel-reservation-service/internal/service"
	apperrors "github.com/spec-kit/hotel-reservation-service/pkg/util"
)

const dateLayout = "2006-01-02"

// CustomersHandler exposes the customer picker and onboarding endpoints.
type CustomersHandler struct {
	service *service.ReservationService
}

// NewCustomersHandler constructs handler.
func NewCustomersHandler(reservationService *service.ReservationService) *CustomersHandler {
	return &CustomersHandler{service: reservationService}
}

// Search handles GET /reservations/customers.
func (h *CustomersHandler) Search(c *fiber.Ctx) error {
	query := c.Query("q")
	page := c.QueryInt("page", 1)

	customers, total, err := h.service.SearchCustomers(c.Context(), query, page)
	if err != nil {
		return err
	}

	items := make([]dto.CustomerSummary, 0, len(customers))
	for i := range customers {
		items = append(items, customerSummary(&customers[i]))
	}
	return c.JSON(fiber.Map{"data": dto.CustomerSearchResponse{
		Items:      items,
		TotalCount: total,
		Page:       page,
		PageSize:   8,
	}})
}

// NewForm handles GET /reservations/customers/new. It only acknowledges the
// onboarding step by describing the expected form fields.
func (h *CustomersHandler) NewForm(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": fiber.Map{
		"fields": []string{"name", "email", "address", "job", "birthdate", "gender", "avatar"},
		"submit": "POST /reservations/customers",
	}})
}

// Register handles POST /reservations/customers (multipart form).
func (h *CustomersHandler) Register(c *fiber.Ctx) error {
	name := c.FormValue("name")
	email := c.FormValue("email")
	if name == "" || email == "" {
		return apperrors.NewValidationError("name and email required", nil)
	}
	birthdate, err := time.Parse(dateLayout, c.FormValue("birthdate"))
	if err != nil {
		return apperrors.NewValidationError("birthdate must be YYYY-MM-DD", nil)
	}

	input := service.RegisterCustomerInput{
		Name:      name,
		Email:     email,
		Address:   c.FormValue("address"),
		Job:       c.FormValue("job"),
		Birthdate: birthdate,
		Gender:    c.FormValue("gender"),
	}

	if fileHeader, err := c.FormFile("avatar"); err == nil && fileHeader != nil {
		file, err := fileHeader.Open()
		if err != nil {
			return apperrors.NewValidationError("unreadable avatar upload", nil)
		}
		defer file.Close()
		input.Avatar = &service.AvatarUpload{FileName: fileHeader.Filename, Content: file}
	}

	customer, err := h.service.RegisterCustomer(c.Context(), input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": customerSummary(customer)})
}

func customerSummary(customer *domain.Customer) dto.CustomerSummary {
	return dto.CustomerSummary{
		ID:        customer.ID,
		Name:      customer.Name,
		Address:   customer.Address,
		Job:       customer.Job,
		Birthdate: customer.Birthdate.Format(dateLayout),
		Gender:    customer.Gender,
		UserID:    customer.UserID,
	}
}
