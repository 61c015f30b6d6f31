package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/mail"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/spec-kit/hotel-reservation-service/internal/auth"
	"github.com/spec-kit/hotel-reservation-service/internal/domain"
	"github.com/spec-kit/hotel-reservation-service/internal/events"
	"github.com/spec-kit/hotel-reservation-service/internal/repository"
	"github.com/spec-kit/hotel-reservation-service/internal/storage"
	apperrors "github.com/spec-kit/hotel-reservation-service/pkg/util"
)

// customerPageSize is the fixed page size of the customer picker.
const customerPageSize = 8

// ReservationService coordinates the booking workflow: customer lookup and
// onboarding, room selection, confirmation pricing and the final commit.
type ReservationService struct {
	users        repository.UserRepository
	customers    repository.CustomerRepository
	rooms        repository.RoomRepository
	transactions repository.TransactionRepository
	avatars      storage.Store
	cache        *redis.Client
	cacheTTL     time.Duration
	bcryptCost   int
	dispatcher   events.Dispatcher
	logger       *zap.Logger
}

// ReservationDependencies bundles collaborators for the service.
type ReservationDependencies struct {
	UserRepo        repository.UserRepository
	CustomerRepo    repository.CustomerRepository
	RoomRepo        repository.RoomRepository
	TransactionRepo repository.TransactionRepository
	AvatarStore     storage.Store
	Cache           *redis.Client
	CacheTTL        time.Duration
	BcryptCost      int
	Dispatcher      events.Dispatcher
	Logger          *zap.Logger
}

// NewReservationService constructs the service.
func NewReservationService(deps ReservationDependencies) *ReservationService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReservationService{
		users:        deps.UserRepo,
		customers:    deps.CustomerRepo,
		rooms:        deps.RoomRepo,
		transactions: deps.TransactionRepo,
		avatars:      deps.AvatarStore,
		cache:        deps.Cache,
		cacheTTL:     deps.CacheTTL,
		bcryptCost:   deps.BcryptCost,
		dispatcher:   deps.Dispatcher,
		logger:       logger,
	}
}

// AvatarUpload carries an optional onboarding avatar.
type AvatarUpload struct {
	FileName string
	Content  io.Reader
}

// RegisterCustomerInput describes the onboarding payload.
type RegisterCustomerInput struct {
	Name      string
	Email     string
	Address   string
	Job       string
	Birthdate time.Time
	Gender    string
	Avatar    *AvatarUpload
}

// Confirmation summarizes pricing for a stay before commit.
type Confirmation struct {
	Customer    *domain.Customer
	Room        *domain.Room
	Nights      int
	DownPayment decimal.Decimal
}

// SearchCustomers returns one fixed-size page of customers plus the total
// match count. The filter matches name substrings case-insensitively OR id
// substrings; the count is computed independently of the page.
func (s *ReservationService) SearchCustomers(ctx context.Context, query string, page int) ([]domain.Customer, int, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * customerPageSize

	items, err := s.customers.Search(ctx, query, customerPageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.customers.CountSearch(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// RegisterCustomer creates the user account and customer profile for a new
// guest. All validation happens before any write; the two inserts are one
// database transaction, so a failure leaves no partial state behind.
func (s *ReservationService) RegisterCustomer(ctx context.Context, input RegisterCustomerInput) (*domain.Customer, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}
	if _, err := mail.ParseAddress(input.Email); err != nil {
		return nil, apperrors.NewValidationError("invalid email address", map[string]any{"email": input.Email})
	}
	if _, err := s.users.GetByEmail(ctx, input.Email); err == nil {
		return nil, apperrors.NewValidationError("email already registered", map[string]any{"email": input.Email})
	} else if err != pgx.ErrNoRows {
		return nil, err
	}
	if input.Avatar != nil && !storage.AllowedImage(input.Avatar.FileName) {
		return nil, apperrors.NewValidationError("avatar must be a png or jpg image", map[string]any{"filename": input.Avatar.FileName})
	}

	hash, err := auth.DeriveDefaultPassword(input.Birthdate, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         domain.RoleCustomer,
	}
	if input.Avatar != nil {
		user.Avatar = &input.Avatar.FileName
	}

	customer := &domain.Customer{
		Name:      user.Name,
		Address:   input.Address,
		Job:       input.Job,
		Birthdate: input.Birthdate,
		Gender:    input.Gender,
	}

	if err := s.customers.CreateWithUser(ctx, user, customer); err != nil {
		return nil, err
	}

	if input.Avatar != nil {
		dir := path.Join("img", "user", fmt.Sprintf("%s-%s", user.Name, user.ID))
		if _, err := s.avatars.Store(dir, input.Avatar.FileName, input.Avatar.Content); err != nil {
			s.logger.Error("avatar upload failed", zap.String("user_id", user.ID), zap.Error(err))
			return nil, apperrors.NewInternalError(err)
		}
	}

	s.publishEvent(ctx, events.Event{
		Type: events.EventCustomerRegistered,
		Payload: events.CustomerRegisteredPayload{
			CustomerID:   customer.ID,
			UserID:       user.ID,
			CustomerName: customer.Name,
		},
	})
	return customer, nil
}

// ChooseRoom lists rooms that hold at least minCapacity guests and are free
// for the whole stay, ordered by capacity then price. Selection results may
// be served from a short-lived cache; the commit path never is.
func (s *ReservationService) ChooseRoom(ctx context.Context, customerID string, minCapacity int, stayFrom, stayUntil time.Time) ([]domain.Room, error) {
	if err := validateStay(stayFrom, stayUntil); err != nil {
		return nil, err
	}
	if _, err := s.customers.GetByID(ctx, customerID); err != nil {
		return nil, mapCustomerErr(err, customerID)
	}

	cacheKey := availabilityKey(minCapacity, stayFrom, stayUntil)
	if cached, ok := s.cachedRooms(ctx, cacheKey); ok {
		return cached, nil
	}

	occupied, err := s.transactions.OccupiedRoomIDs(ctx, stayFrom, stayUntil)
	if err != nil {
		return nil, err
	}
	rooms, err := s.rooms.ListAvailable(ctx, minCapacity, occupied)
	if err != nil {
		return nil, err
	}

	s.storeRooms(ctx, cacheKey, rooms)
	return rooms, nil
}

// Confirm computes the stay length and the required down payment for a
// customer/room pair before committing.
func (s *ReservationService) Confirm(ctx context.Context, customerID, roomID string, stayFrom, stayUntil time.Time) (*Confirmation, error) {
	if err := validateStay(stayFrom, stayUntil); err != nil {
		return nil, err
	}
	customer, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		return nil, mapCustomerErr(err, customerID)
	}
	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		return nil, mapRoomErr(err, roomID)
	}

	nights := domain.Nights(stayFrom, stayUntil)
	return &Confirmation{
		Customer:    customer,
		Room:        room,
		Nights:      nights,
		DownPayment: domain.DownPayment(room.Price, nights),
	}, nil
}

// PayDownPayment commits the reservation. Availability is recomputed from a
// fresh read to close the gap between room selection and payment; if the
// room became occupied in the meantime the commit is rejected and nothing is
// persisted.
func (s *ReservationService) PayDownPayment(ctx context.Context, customerID, roomID string, stayFrom, stayUntil time.Time, actingUserID string) (*domain.Transaction, error) {
	if err := validateStay(stayFrom, stayUntil); err != nil {
		return nil, err
	}
	customer, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		return nil, mapCustomerErr(err, customerID)
	}
	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		return nil, mapRoomErr(err, roomID)
	}

	occupied, err := s.transactions.OccupiedRoomIDs(ctx, stayFrom, stayUntil)
	if err != nil {
		return nil, err
	}
	for _, id := range occupied {
		if id == room.ID {
			s.publishEvent(ctx, events.Event{
				Type: events.EventReservationRejected,
				Payload: events.ReservationRejectedPayload{
					RoomID:     room.ID,
					RoomNumber: room.Number,
					CheckIn:    stayFrom,
					CheckOut:   stayUntil,
				},
			})
			return nil, apperrors.NewRoomUnavailable(room.Number)
		}
	}

	txn := &domain.Transaction{
		ReferenceCode: generateReferenceCode(),
		UserID:        actingUserID,
		CustomerID:    customer.ID,
		RoomID:        room.ID,
		CheckIn:       stayFrom,
		CheckOut:      stayUntil,
		Status:        domain.StatusReservation,
	}
	if err := s.transactions.Create(ctx, txn); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type: events.EventReservationCreated,
		Payload: events.ReservationCreatedPayload{
			TransactionID: txn.ID,
			ReferenceCode: txn.ReferenceCode,
			RoomNumber:    room.Number,
			CustomerName:  customer.Name,
			CheckIn:       stayFrom,
			CheckOut:      stayUntil,
		},
	})
	return txn, nil
}

func validateStay(stayFrom, stayUntil time.Time) error {
	if !stayUntil.After(stayFrom) {
		return apperrors.NewValidationError("check_out must be after check_in", nil)
	}
	return nil
}

func mapCustomerErr(err error, id string) error {
	if err == pgx.ErrNoRows {
		return apperrors.NewNotFound("customer", map[string]any{"customer_id": id})
	}
	return err
}

func mapRoomErr(err error, id string) error {
	if err == pgx.ErrNoRows {
		return apperrors.NewNotFound("room", map[string]any{"room_id": id})
	}
	return err
}

func availabilityKey(minCapacity int, stayFrom, stayUntil time.Time) string {
	return fmt.Sprintf("rooms:available:%d:%s:%s",
		minCapacity, stayFrom.Format("2006-01-02"), stayUntil.Format("2006-01-02"))
}

func (s *ReservationService) cachedRooms(ctx context.Context, key string) ([]domain.Room, bool) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var rooms []domain.Room
	if err := json.Unmarshal(raw, &rooms); err != nil {
		return nil, false
	}
	return rooms, true
}

func (s *ReservationService) storeRooms(ctx context.Context, key string, rooms []domain.Room) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}
	raw, err := json.Marshal(rooms)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.cacheTTL).Err(); err != nil {
		s.logger.Debug("availability cache write failed", zap.Error(err))
	}
}

func generateReferenceCode() string {
	return "RSV-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func (s *ReservationService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
