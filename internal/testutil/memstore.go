package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/slatepad/slatepad/internal/model"
	"github.com/slatepad/slatepad/internal/repository"
)

// MemStore is an in-memory stand-in for the Postgres repository. It
// satisfies the service store interfaces and mirrors the repository's
// sentinel errors so services behave the same against either.
type MemStore struct {
	mu      sync.Mutex
	tenants map[string]*model.Tenant // by ID
	users   map[string]*model.User   // by ID
	notes   map[string]*model.Note   // by ID

	// FailWith, when set, is returned by every subsequent call. Tests
	// use it to exercise error paths.
	FailWith error
}

func NewMemStore() *MemStore {
	return &MemStore{
		tenants: make(map[string]*model.Tenant),
		users:   make(map[string]*model.User),
		notes:   make(map[string]*model.Note),
	}
}

func (m *MemStore) CreateTenant(_ context.Context, tenant *model.Tenant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	for _, t := range m.tenants {
		if t.Slug == tenant.Slug {
			return repository.ErrSlugExists
		}
	}
	cp := *tenant
	m.tenants[tenant.ID] = &cp
	return nil
}

func (m *MemStore) GetTenantByID(_ context.Context, id string) (*model.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	t, ok := m.tenants[id]
	if !ok {
		return nil, repository.ErrTenantNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *MemStore) GetTenantBySlug(_ context.Context, slug string) (*model.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	for _, t := range m.tenants {
		if t.Slug == slug {
			cp := *t
			return &cp, nil
		}
	}
	return nil, repository.ErrTenantNotFound
}

func (m *MemStore) UpgradeTenantPlan(_ context.Context, slug string, plan model.Plan) (*model.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	for _, t := range m.tenants {
		if t.Slug == slug {
			t.Plan = plan
			cp := *t
			return &cp, nil
		}
	}
	return nil, repository.ErrTenantNotFound
}

func (m *MemStore) CreateUser(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	for _, u := range m.users {
		if u.Email == user.Email {
			return repository.ErrEmailExists
		}
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *MemStore) GetUserByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MemStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *MemStore) CreateNote(_ context.Context, note *model.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	cp := *note
	m.notes[note.ID] = &cp
	return nil
}

func (m *MemStore) CountNotesByTenant(_ context.Context, tenantID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return 0, m.FailWith
	}
	count := 0
	for _, n := range m.notes {
		if n.TenantID == tenantID {
			count++
		}
	}
	return count, nil
}

func (m *MemStore) GetNoteByID(_ context.Context, tenantID, id string) (*model.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	n, ok := m.notes[id]
	if !ok || n.TenantID != tenantID {
		return nil, repository.ErrNoteNotFound
	}
	cp := *n
	return &cp, nil
}

func (m *MemStore) ListNotesByTenant(_ context.Context, tenantID string) ([]*model.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	var out []*model.Note
	for _, n := range m.notes {
		if n.TenantID != tenantID {
			continue
		}
		cp := *n
		if u, ok := m.users[n.UserID]; ok {
			cp.Creator = &model.NoteCreator{Email: u.Email}
		}
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MemStore) UpdateNoteOwned(_ context.Context, note *model.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	existing, ok := m.notes[note.ID]
	if !ok || !existing.IsOwnedBy(note.TenantID, note.UserID) {
		return repository.ErrNoteNotFound
	}
	cp := *note
	m.notes[note.ID] = &cp
	return nil
}

func (m *MemStore) DeleteNoteOwned(_ context.Context, tenantID, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	existing, ok := m.notes[id]
	if !ok || !existing.IsOwnedBy(tenantID, userID) {
		return repository.ErrNoteNotFound
	}
	delete(m.notes, id)
	return nil
}
