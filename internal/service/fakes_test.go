package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/hotel-reservation-service/internal/domain"
	"github.com/spec-kit/hotel-reservation-service/internal/repository"
)

// fakeDB is an in-memory stand-in for all repositories, mirroring their
// documented query semantics (filters, ordering, sentinel errors).
type fakeDB struct {
	mu           sync.Mutex
	nextID       int
	users        map[string]*domain.User
	customers    map[string]*domain.Customer
	rooms        map[string]*domain.Room
	transactions map[string]*domain.Transaction
	resets       map[string]*repository.PasswordResetToken
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		users:        make(map[string]*domain.User),
		customers:    make(map[string]*domain.Customer),
		rooms:        make(map[string]*domain.Room),
		transactions: make(map[string]*domain.Transaction),
		resets:       make(map[string]*repository.PasswordResetToken),
	}
}

// newID is zero padded so lexical ordering matches insertion order, the way
// the real queries order by id.
func (f *fakeDB) newID() string {
	f.nextID++
	return fmt.Sprintf("%04d", f.nextID)
}

func (f *fakeDB) Create(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user.ID = f.newID()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	f.users[user.ID] = user
	return nil
}

func (f *fakeDB) Update(_ context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	user.UpdatedAt = time.Now()
	f.users[user.ID] = user
	return nil
}

func (f *fakeDB) GetByID(_ context.Context, id string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (f *fakeDB) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeDB) CreateWithUser(_ context.Context, user *domain.User, customer *domain.Customer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user.ID = f.newID()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	f.users[user.ID] = user

	customer.ID = f.newID()
	customer.UserID = user.ID
	customer.CreatedAt = user.CreatedAt
	customer.UpdatedAt = user.CreatedAt
	f.customers[customer.ID] = customer
	return nil
}

func (f *fakeDB) GetCustomerByID(_ context.Context, id string) (*domain.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	customer, ok := f.customers[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *customer
	return &copied, nil
}

func (f *fakeDB) matchCustomersLocked(query string) []domain.Customer {
	var matches []domain.Customer
	for _, customer := range f.customers {
		if query == "" ||
			strings.Contains(strings.ToLower(customer.Name), strings.ToLower(query)) ||
			strings.Contains(customer.ID, query) {
			matches = append(matches, *customer)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID > matches[j].ID })
	return matches
}

func (f *fakeDB) Search(_ context.Context, query string, limit, offset int) ([]domain.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	matches := f.matchCustomersLocked(query)
	if offset >= len(matches) {
		return nil, nil
	}
	end := offset + limit
	if end > len(matches) {
		end = len(matches)
	}
	return matches[offset:end], nil
}

func (f *fakeDB) CountSearch(_ context.Context, query string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.matchCustomersLocked(query)), nil
}

func (f *fakeDB) GetRoomByID(_ context.Context, id string) (*domain.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	room, ok := f.rooms[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *room
	return &copied, nil
}

func (f *fakeDB) ListAvailable(_ context.Context, minCapacity int, excludedIDs []string) ([]domain.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	excluded := make(map[string]struct{}, len(excludedIDs))
	for _, id := range excludedIDs {
		excluded[id] = struct{}{}
	}

	var result []domain.Room
	for _, room := range f.rooms {
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

func (f *fakeDB) CreateTransaction(_ context.Context, txn *domain.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	txn.ID = f.newID()
	txn.CreatedAt = time.Now()
	txn.UpdatedAt = txn.CreatedAt
	f.transactions[txn.ID] = txn
	return nil
}

func (f *fakeDB) OccupiedRoomIDs(_ context.Context, stayFrom, stayUntil time.Time) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := make(map[string]struct{})
	var ids []string
	for _, txn := range f.transactions {
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

func (f *fakeDB) CreateReset(_ context.Context, token *repository.PasswordResetToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	token.ID = f.newID()
	token.CreatedAt = time.Now()
	f.resets[token.Token] = token
	return nil
}

func (f *fakeDB) GetByToken(_ context.Context, tokenStr string) (*repository.PasswordResetToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	token, ok := f.resets[tokenStr]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *token
	return &copied, nil
}

func (f *fakeDB) MarkUsed(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, token := range f.resets {
		if token.ID == id {
			now := time.Now()
			token.UsedAt = &now
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f *fakeDB) transactionCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.transactions)
}

func (f *fakeDB) customerCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.customers)
}

// Interface adapters: the fake carries all repositories but method names
// clash, so narrow views hand each dependency its own set.
type fakeUserRepo struct{ db *fakeDB }

func (r fakeUserRepo) Create(ctx context.Context, user *domain.User) error { return r.db.Create(ctx, user) }
func (r fakeUserRepo) Update(ctx context.Context, user *domain.User) error { return r.db.Update(ctx, user) }
func (r fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.db.GetByID(ctx, id)
}
func (r fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.db.GetByEmail(ctx, email)
}

type fakeCustomerRepo struct{ db *fakeDB }

func (r fakeCustomerRepo) CreateWithUser(ctx context.Context, user *domain.User, customer *domain.Customer) error {
	return r.db.CreateWithUser(ctx, user, customer)
}
func (r fakeCustomerRepo) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	return r.db.GetCustomerByID(ctx, id)
}
func (r fakeCustomerRepo) Search(ctx context.Context, query string, limit, offset int) ([]domain.Customer, error) {
	return r.db.Search(ctx, query, limit, offset)
}
func (r fakeCustomerRepo) CountSearch(ctx context.Context, query string) (int, error) {
	return r.db.CountSearch(ctx, query)
}

type fakeRoomRepo struct{ db *fakeDB }

func (r fakeRoomRepo) GetByID(ctx context.Context, id string) (*domain.Room, error) {
	return r.db.GetRoomByID(ctx, id)
}
func (r fakeRoomRepo) ListAvailable(ctx context.Context, minCapacity int, excludedIDs []string) ([]domain.Room, error) {
	return r.db.ListAvailable(ctx, minCapacity, excludedIDs)
}

type fakeTransactionRepo struct{ db *fakeDB }

func (r fakeTransactionRepo) Create(ctx context.Context, txn *domain.Transaction) error {
	return r.db.CreateTransaction(ctx, txn)
}
func (r fakeTransactionRepo) OccupiedRoomIDs(ctx context.Context, stayFrom, stayUntil time.Time) ([]string, error) {
	return r.db.OccupiedRoomIDs(ctx, stayFrom, stayUntil)
}

type fakeResetRepo struct{ db *fakeDB }

func (r fakeResetRepo) Create(ctx context.Context, token *repository.PasswordResetToken) error {
	return r.db.CreateReset(ctx, token)
}
func (r fakeResetRepo) GetByToken(ctx context.Context, tokenStr string) (*repository.PasswordResetToken, error) {
	return r.db.GetByToken(ctx, tokenStr)
}
func (r fakeResetRepo) MarkUsed(ctx context.Context, id string) error {
	return r.db.MarkUsed(ctx, id)
}

// memoryAvatarStore records the last upload instead of touching disk.
type memoryAvatarStore struct {
	mu       sync.Mutex
	dir      string
	filename string
	content  []byte
	calls    int
}

func (m *memoryAvatarStore) Store(dir, filename string, r io.Reader) (string, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dir = dir
	m.filename = filename
	m.content = content
	m.calls++
	return filename, nil
}

// failingAvatarStore simulates a broken disk.
type failingAvatarStore struct{}

func (failingAvatarStore) Store(string, string, io.Reader) (string, error) {
	return "", errors.New("disk full")
}
