package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	apihttp "github.com/spec-kit/hotel-reservation-service/internal/api/http"
	"github.com/spec-kit/hotel-reservation-service/internal/api/http/handlers"
	"github.com/spec-kit/hotel-reservation-service/internal/auth"
	"github.com/spec-kit/hotel-reservation-service/internal/config"
	"github.com/spec-kit/hotel-reservation-service/internal/domain"
	"github.com/spec-kit/hotel-reservation-service/internal/observability"
	"github.com/spec-kit/hotel-reservation-service/internal/repository"
	"github.com/spec-kit/hotel-reservation-service/internal/service"
)

// store backs every repository with one in-memory fixture.
type store struct {
	mu        sync.Mutex
	nextID    int
	users     map[string]*domain.User
	customers map[string]*domain.Customer
	rooms     map[string]*domain.Room
	txns      map[string]*domain.Transaction
	resets    map[string]*repository.PasswordResetToken
}

func newStore() *store {
	return &store{
		users:     make(map[string]*domain.User),
		customers: make(map[string]*domain.Customer),
		rooms:     make(map[string]*domain.Room),
		txns:      make(map[string]*domain.Transaction),
		resets:    make(map[string]*repository.PasswordResetToken),
	}
}

func (s *store) newID() string {
	s.nextID++
	return fmt.Sprintf("%04d", s.nextID)
}

type usersRepo struct{ s *store }

func (r usersRepo) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user.ID = r.s.newID()
	r.s.users[user.ID] = user
	return nil
}

func (r usersRepo) Update(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.s.users[user.ID] = user
	return nil
}

func (r usersRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user, ok := r.s.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (r usersRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, user := range r.s.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type customersRepo struct{ s *store }

func (r customersRepo) CreateWithUser(_ context.Context, user *domain.User, customer *domain.Customer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user.ID = r.s.newID()
	r.s.users[user.ID] = user
	customer.ID = r.s.newID()
	customer.UserID = user.ID
	r.s.customers[customer.ID] = customer
	return nil
}

func (r customersRepo) GetByID(_ context.Context, id string) (*domain.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	customer, ok := r.s.customers[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *customer
	return &copied, nil
}

func (r customersRepo) matchLocked(query string) []domain.Customer {
	var matches []domain.Customer
	for _, customer := range r.s.customers {
		if query == "" ||
			strings.Contains(strings.ToLower(customer.Name), strings.ToLower(query)) ||
			strings.Contains(customer.ID, query) {
			matches = append(matches, *customer)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID > matches[j].ID })
	return matches
}

func (r customersRepo) Search(_ context.Context, query string, limit, offset int) ([]domain.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	matches := r.matchLocked(query)
	if offset >= len(matches) {
		return nil, nil
	}
	end := offset + limit
	if end > len(matches) {
		end = len(matches)
	}
	return matches[offset:end], nil
}

func (r customersRepo) CountSearch(_ context.Context, query string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.matchLocked(query)), nil
}

type roomsRepo struct{ s *store }

func (r roomsRepo) GetByID(_ context.Context, id string) (*domain.Room, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	room, ok := r.s.rooms[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *room
	return &copied, nil
}

func (r roomsRepo) ListAvailable(_ context.Context, minCapacity int, excludedIDs []string) ([]domain.Room, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	excluded := make(map[string]struct{}, len(excludedIDs))
	for _, id := range excludedIDs {
		excluded[id] = struct{}{}
	}
	var result []domain.Room
	for _, room := range r.s.rooms {
		if room.Capacity < minCapacity {
			continue
		}
		if _, ok := excluded[room.ID]; ok {
			continue
		}
		result = append(result, *room)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Capacity != result[j].Capacity {
			return result[i].Capacity < result[j].Capacity
		}
		return result[i].Price.LessThan(result[j].Price)
	})
	return result, nil
}

type txnsRepo struct{ s *store }

func (r txnsRepo) Create(_ context.Context, txn *domain.Transaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	txn.ID = r.s.newID()
	r.s.txns[txn.ID] = txn
	return nil
}

func (r txnsRepo) OccupiedRoomIDs(_ context.Context, stayFrom, stayUntil time.Time) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	seen := make(map[string]struct{})
	var ids []string
	for _, txn := range r.s.txns {
		if !txn.OccupiesStay(stayFrom, stayUntil) {
			continue
		}
		if _, ok := seen[txn.RoomID]; ok {
			continue
		}
		seen[txn.RoomID] = struct{}{}
		ids = append(ids, txn.RoomID)
	}
	return ids, nil
}

type resetsRepo struct{ s *store }

func (r resetsRepo) Create(_ context.Context, token *repository.PasswordResetToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	token.ID = r.s.newID()
	r.s.resets[token.Token] = token
	return nil
}

func (r resetsRepo) GetByToken(_ context.Context, tokenStr string) (*repository.PasswordResetToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	token, ok := r.s.resets[tokenStr]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *token
	return &copied, nil
}

func (r resetsRepo) MarkUsed(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, token := range r.s.resets {
		if token.ID == id {
			now := time.Now()
			token.UsedAt = &now
			return nil
		}
	}
	return pgx.ErrNoRows
}

type nullAvatarStore struct{}

func (nullAvatarStore) Store(_, filename string, r io.Reader) (string, error) {
	_, err := io.Copy(io.Discard, r)
	return filename, err
}

type fixture struct {
	app           *fiber.App
	store         *store
	authSvc       *service.AuthService
	staffToken    string
	customerToken string
	customerID    string
	roomID        string
	roomNumber    string
}

func mustHash(password string) string {
	hash, err := auth.HashPassword(password, bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return hash
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := newStore()

	staff := &domain.User{Name: "Desk", Email: "desk@example.com", PasswordHash: mustHash("pass"), Role: domain.RoleReceptionist}
	require.NoError(t, usersRepo{st}.Create(context.Background(), staff))
	guestUser := &domain.User{Name: "Guest", Email: "guest@example.com", PasswordHash: mustHash("pass"), Role: domain.RoleCustomer}
	guest := &domain.Customer{Name: "Guest", Birthdate: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, customersRepo{st}.CreateWithUser(context.Background(), guestUser, guest))

	room := &domain.Room{
		ID:       st.newID(),
		Number:   "201",
		Capacity: 2,
		Price:    decimal.RequireFromString("100000"),
		Type:     "Standard",
		Status:   "Ready",
	}
	st.rooms[room.ID] = room

	cfg := config.Config{Auth: config.AuthConfig{
		JWTSecret:               "test-secret",
		AccessTokenTTLMinutes:   60,
		PasswordResetTTLMinutes: 30,
		BcryptCost:              bcrypt.MinCost,
	}}
	authSvc := service.NewAuthService(cfg, service.AuthDependencies{
		UserRepo:          usersRepo{st},
		PasswordResetRepo: resetsRepo{st},
	})
	reservationSvc := service.NewReservationService(service.ReservationDependencies{
		UserRepo:        usersRepo{st},
		CustomerRepo:    customersRepo{st},
		RoomRepo:        roomsRepo{st},
		TransactionRepo: txnsRepo{st},
		AvatarStore:     nullAvatarStore{},
		BcryptCost:      bcrypt.MinCost,
	})

	logger := zap.NewNop()
	app := fiber.New()
	apihttp.RegisterMiddlewares(app, logger, observability.NewMetrics(), 5*time.Second)
	apihttp.RegisterRoutes(app, apihttp.RouteConfig{
		Health:         handlers.NewHealthHandler("hotel-reservation-service", "test", nil, nil),
		Auth:           handlers.NewAuthHandler(authSvc),
		Customers:      handlers.NewCustomersHandler(reservationSvc),
		Reservations:   handlers.NewReservationsHandler(reservationSvc),
		AuthMiddleware: auth.NewAuthMiddleware(authSvc.TokenManager(), usersRepo{st}),
	})

	staffToken, _, err := authSvc.TokenManager().GenerateToken(staff.ID, staff.Role)
	require.NoError(t, err)
	customerToken, _, err := authSvc.TokenManager().GenerateToken(guestUser.ID, guestUser.Role)
	require.NoError(t, err)

	return &fixture{
		app:           app,
		store:         st,
		authSvc:       authSvc,
		staffToken:    staffToken,
		customerToken: customerToken,
		customerID:    guest.ID,
		roomID:        room.ID,
		roomNumber:    room.Number,
	}
}

func (f *fixture) request(t *testing.T, method, target, token string, body io.Reader, contentType string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp.StatusCode, decoded
}

func jsonBody(t *testing.T, payload any) io.Reader {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return bytes.NewReader(raw)
}

func errorCode(body map[string]any) string {
	errObj, _ := body["error"].(map[string]any)
	code, _ := errObj["code"].(string)
	return code
}

func TestHealthLive(t *testing.T) {
	f := newFixture(t)

	status, body := f.request(t, "GET", "/health/live", "", nil, "")
	require.Equal(t, 200, status)
	require.Equal(t, "alive", body["status"])
}

func TestReservationRoutesRequireStaff(t *testing.T) {
	f := newFixture(t)

	status, body := f.request(t, "GET", "/reservations/customers", "", nil, "")
	require.Equal(t, 401, status)
	require.Equal(t, "UNAUTHORIZED", errorCode(body))

	status, body = f.request(t, "GET", "/reservations/customers", "garbage-token", nil, "")
	require.Equal(t, 401, status)
	require.Equal(t, "UNAUTHORIZED", errorCode(body))

	status, body = f.request(t, "GET", "/reservations/customers", f.customerToken, nil, "")
	require.Equal(t, 403, status)
	require.Equal(t, "FORBIDDEN", errorCode(body))
}

func TestLoginAndSearchCustomers(t *testing.T) {
	f := newFixture(t)

	status, body := f.request(t, "POST", "/auth/login", "",
		jsonBody(t, map[string]string{"email": "desk@example.com", "password": "pass"}),
		fiber.MIMEApplicationJSON)
	require.Equal(t, 200, status)

	data := body["data"].(map[string]any)
	token := data["auth"].(map[string]any)["token"].(string)
	require.NotEmpty(t, token)

	status, body = f.request(t, "GET", "/reservations/customers?q=Guest&page=1", token, nil, "")
	require.Equal(t, 200, status)

	page := body["data"].(map[string]any)
	require.EqualValues(t, 1, page["total_count"])
	require.EqualValues(t, 8, page["page_size"])
	items := page["items"].([]any)
	require.Len(t, items, 1)
	require.Equal(t, "Guest", items[0].(map[string]any)["name"])
}

func TestRegisterCustomerEndpoint(t *testing.T) {
	f := newFixture(t)

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	require.NoError(t, form.WriteField("name", "Jane Doe"))
	require.NoError(t, form.WriteField("email", "jane@example.com"))
	require.NoError(t, form.WriteField("address", "1 Main St"))
	require.NoError(t, form.WriteField("job", "Engineer"))
	require.NoError(t, form.WriteField("birthdate", "1991-06-15"))
	require.NoError(t, form.WriteField("gender", "female"))
	part, err := form.CreateFormFile("avatar", "jane.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, form.Close())

	status, body := f.request(t, "POST", "/reservations/customers", f.staffToken, &buf, form.FormDataContentType())
	require.Equal(t, 201, status)

	data := body["data"].(map[string]any)
	require.Equal(t, "Jane Doe", data["name"])
	require.Equal(t, "1991-06-15", data["birthdate"])
	require.NotEmpty(t, data["id"])

	// invalid birthdate is rejected before the service runs
	var bad bytes.Buffer
	badForm := multipart.NewWriter(&bad)
	require.NoError(t, badForm.WriteField("name", "X"))
	require.NoError(t, badForm.WriteField("email", "x@example.com"))
	require.NoError(t, badForm.WriteField("birthdate", "15-06-1991"))
	require.NoError(t, badForm.Close())

	status, body = f.request(t, "POST", "/reservations/customers", f.staffToken, &bad, badForm.FormDataContentType())
	require.Equal(t, 400, status)
	require.Equal(t, "VALIDATION_FAILED", errorCode(body))
}

func TestChooseRoomAndConfirmEndpoints(t *testing.T) {
	f := newFixture(t)

	target := fmt.Sprintf("/reservations/customers/%s/rooms?count_person=2&check_in=2024-01-10&check_out=2024-01-13", f.customerID)
	status, body := f.request(t, "GET", target, f.staffToken, nil, "")
	require.Equal(t, 200, status)

	roomsList := body["data"].([]any)
	require.Len(t, roomsList, 1)
	require.Equal(t, f.roomNumber, roomsList[0].(map[string]any)["number"])

	target = fmt.Sprintf("/reservations/customers/%s/rooms/%s/confirm?check_in=2024-01-10&check_out=2024-01-13", f.customerID, f.roomID)
	status, body = f.request(t, "GET", target, f.staffToken, nil, "")
	require.Equal(t, 200, status)

	data := body["data"].(map[string]any)
	require.EqualValues(t, 3, data["nights"])
	require.Equal(t, "45000", data["down_payment"])

	// malformed dates fail validation
	target = fmt.Sprintf("/reservations/customers/%s/rooms?check_in=bad&check_out=2024-01-13", f.customerID)
	status, body = f.request(t, "GET", target, f.staffToken, nil, "")
	require.Equal(t, 400, status)
	require.Equal(t, "VALIDATION_FAILED", errorCode(body))
}

func TestPayEndpoint(t *testing.T) {
	f := newFixture(t)
	target := fmt.Sprintf("/reservations/customers/%s/rooms/%s/pay", f.customerID, f.roomID)
	payload := map[string]string{"check_in": "2024-01-10", "check_out": "2024-01-13"}

	status, body := f.request(t, "POST", target, f.staffToken, jsonBody(t, payload), fiber.MIMEApplicationJSON)
	require.Equal(t, 201, status)

	data := body["data"].(map[string]any)
	require.Equal(t, "Reservation", data["status"])
	require.Equal(t, "2024-01-10", data["check_in"])
	require.Equal(t, "2024-01-13", data["check_out"])
	require.True(t, strings.HasPrefix(data["reference_code"].(string), "RSV-"))

	// the committing staff account is recorded on the transaction
	require.NotEmpty(t, data["user_id"])

	// overlapping second commit is rejected with a conflict
	overlap := map[string]string{"check_in": "2024-01-12", "check_out": "2024-01-16"}
	status, body = f.request(t, "POST", target, f.staffToken, jsonBody(t, overlap), fiber.MIMEApplicationJSON)
	require.Equal(t, 409, status)
	require.Equal(t, "ROOM_UNAVAILABLE", errorCode(body))

	details := body["error"].(map[string]any)["details"].(map[string]any)
	require.Equal(t, f.roomNumber, details["room_number"])
}

func TestPasswordChangeRequiresAuth(t *testing.T) {
	f := newFixture(t)
	payload := map[string]string{"current_password": "pass", "new_password": "better-pass"}

	status, body := f.request(t, "POST", "/auth/password/change", "", jsonBody(t, payload), fiber.MIMEApplicationJSON)
	require.Equal(t, 401, status)
	require.Equal(t, "UNAUTHORIZED", errorCode(body))

	status, body = f.request(t, "POST", "/auth/password/change", f.staffToken, jsonBody(t, payload), fiber.MIMEApplicationJSON)
	require.Equal(t, 200, status)
	require.Equal(t, true, body["data"].(map[string]any)["changed"])
}
