package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ecocycle/connect/types"
)

// Memory keeps accounts and marketplace records in process memory.
// It satisfies the same repository contracts as the postgres store.
type Memory struct {
	mu           sync.RWMutex
	accounts     map[string]types.Account
	emails       map[string]string
	materials    []types.Material
	requests     []types.MaterialRequest
	transactions []types.Transaction
	now          func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		accounts: make(map[string]types.Account),
		emails:   make(map[string]string),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (m *Memory) GetByID(_ context.Context, id string) (types.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	account, ok := m.accounts[id]
	if !ok {
		return types.Account{}, ErrNotFound
	}
	return account, nil
}

func (m *Memory) GetByEmail(_ context.Context, email string) (types.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.emails[emailKey(email)]
	if !ok {
		return types.Account{}, ErrNotFound
	}
	return m.accounts[id], nil
}

func (m *Memory) Create(_ context.Context, account types.Account) (types.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := emailKey(account.Email)
	if _, exists := m.emails[key]; exists {
		return types.Account{}, ErrConflict
	}
	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	now := m.now()
	account.CreatedAt = now
	account.UpdatedAt = now

	m.accounts[account.ID] = account
	m.emails[key] = account.ID
	return account, nil
}

func (m *Memory) UpdatePassword(_ context.Context, id, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	account, ok := m.accounts[id]
	if !ok {
		return ErrNotFound
	}
	account.PasswordHash = passwordHash
	account.UpdatedAt = m.now()
	m.accounts[id] = account
	return nil
}

func (m *Memory) CountUsers(_ context.Context, role types.Role) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, account := range m.accounts {
		if role == "" || account.Role == role {
			count++
		}
	}
	return count, nil
}

func (m *Memory) RecentUsers(_ context.Context, limit int) ([]types.Identity, error) {
	m.mu.RLock()
	users := make([]types.Identity, 0, len(m.accounts))
	for _, account := range m.accounts {
		users = append(users, account.Identity)
	}
	m.mu.RUnlock()

	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	return truncate(users, limit), nil
}

func (m *Memory) AddMaterial(_ context.Context, material types.Material) (types.Material, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if material.ID == "" {
		material.ID = uuid.NewString()
	}
	if material.CreatedAt.IsZero() {
		material.CreatedAt = m.now()
	}
	m.materials = append(m.materials, material)
	return material, nil
}

func (m *Memory) AddRequest(_ context.Context, req types.MaterialRequest) (types.MaterialRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = m.now()
	}
	m.requests = append(m.requests, req)
	return req, nil
}

func (m *Memory) AddTransaction(_ context.Context, t types.Transaction) (types.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = m.now()
	}
	m.transactions = append(m.transactions, t)
	return t, nil
}

func (m *Memory) ListMaterials(_ context.Context, f MaterialFilter) ([]types.Material, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []types.Material
	for _, material := range m.materials {
		if matchMaterial(material, f) {
			material.OwnerName = m.displayNameLocked(material.OwnerID)
			out = append(out, material)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return truncate(out, f.Limit), nil
}

func (m *Memory) CountMaterials(_ context.Context, f MaterialFilter) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, material := range m.materials {
		if matchMaterial(material, f) {
			count++
		}
	}
	return count, nil
}

func (m *Memory) ListRequests(_ context.Context, f RequestFilter) ([]types.MaterialRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []types.MaterialRequest
	for _, req := range m.requests {
		if !matchRequest(req, f) {
			continue
		}
		if material, ok := m.materialLocked(req.MaterialID); ok {
			req.MaterialName = material.Name
			req.TotalAmount = req.Quantity * material.Price
		}
		if requester, ok := m.accounts[req.RequesterID]; ok {
			req.RequesterName = requester.Name
		}
		req.OwnerName = m.displayNameLocked(req.OwnerID)
		out = append(out, req)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return truncate(out, f.Limit), nil
}

func (m *Memory) CountRequests(_ context.Context, f RequestFilter) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, req := range m.requests {
		if matchRequest(req, f) {
			count++
		}
	}
	return count, nil
}

func (m *Memory) CountTransactions(_ context.Context, f RequestFilter) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, t := range m.transactions {
		if m.transactionMatchesLocked(t, f) {
			count++
		}
	}
	return count, nil
}

func (m *Memory) SumCompletedTransactions(_ context.Context, f RequestFilter) (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var total float64
	for _, t := range m.transactions {
		if t.Status == types.TransactionCompleted && m.transactionMatchesLocked(t, f) {
			total += t.Amount
		}
	}
	return total, nil
}

func (m *Memory) transactionMatchesLocked(t types.Transaction, f RequestFilter) bool {
	for _, req := range m.requests {
		if req.ID == t.RequestID {
			return matchRequest(req, f)
		}
	}
	return false
}

func (m *Memory) materialLocked(id string) (types.Material, bool) {
	for _, material := range m.materials {
		if material.ID == id {
			return material, true
		}
	}
	return types.Material{}, false
}

func (m *Memory) displayNameLocked(id string) string {
	account, ok := m.accounts[id]
	if !ok {
		return ""
	}
	if account.CompanyName != "" {
		return account.CompanyName
	}
	return account.Name
}

func matchMaterial(material types.Material, f MaterialFilter) bool {
	if f.OwnerID != "" && material.OwnerID != f.OwnerID {
		return false
	}
	if f.Status != "" && material.Status != f.Status {
		return false
	}
	if f.LocationContains != "" &&
		!strings.Contains(strings.ToLower(material.Location), strings.ToLower(f.LocationContains)) {
		return false
	}
	return true
}

func matchRequest(req types.MaterialRequest, f RequestFilter) bool {
	if f.OwnerID != "" && req.OwnerID != f.OwnerID {
		return false
	}
	if f.RequesterID != "" && req.RequesterID != f.RequesterID {
		return false
	}
	if f.Status != "" && req.Status != f.Status {
		return false
	}
	return true
}

func truncate[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
