package handler

import (
	"context"
	"strings"
	"time"

	"github.com/Adira-Medica/inventory-app/internal/model"
	"github.com/Adira-Medica/inventory-app/internal/repository"
)

// fakeUserStore is an in-memory AdminUserStore used by handler tests.
type fakeUserStore struct {
	users  map[uint64]*model.User
	nextID uint64
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[uint64]*model.User{}, nextID: 1}
}

func (f *fakeUserStore) add(u model.User) *model.User {
	u.ID = f.nextID
	f.nextID++
	cp := u
	f.users[cp.ID] = &cp
	return f.users[cp.ID]
}

func (f *fakeUserStore) Create(_ context.Context, u *model.User) error {
	for _, existing := range f.users {
		if existing.Username == u.Username {
			return repository.ErrUsernameExists
		}
		if existing.Email == u.Email {
			return repository.ErrEmailExists
		}
	}
	u.ID = f.nextID
	f.nextID++
	cp := *u
	f.users[cp.ID] = &cp
	return nil
}

func (f *fakeUserStore) GetByUsername(_ context.Context, username string) (model.User, error) {
	for _, u := range f.users {
		if strings.EqualFold(u.Username, username) {
			return *u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (f *fakeUserStore) GetByID(_ context.Context, id uint64) (model.User, error) {
	if u, ok := f.users[id]; ok {
		return *u, nil
	}
	return model.User{}, repository.ErrNotFound
}

func (f *fakeUserStore) List(_ context.Context, status string) ([]model.User, error) {
	var out []model.User
	for _, u := range f.users {
		if status == "" || u.Status == status {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUserStore) RecordLoginFailure(_ context.Context, id uint64, failed int, lockoutUntil *time.Time) error {
	u, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.FailedLoginAttempts = failed
	u.LockoutUntil = lockoutUntil
	return nil
}

func (f *fakeUserStore) RecordLoginSuccess(_ context.Context, id uint64) error {
	u, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.FailedLoginAttempts = 0
	u.LockoutUntil = nil
	return nil
}

func (f *fakeUserStore) UpdatePassword(_ context.Context, id uint64, hash string) error {
	u, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (f *fakeUserStore) SetStatus(_ context.Context, id uint64, status string) error {
	u, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Status = status
	return nil
}

func (f *fakeUserStore) ToggleActive(_ context.Context, id uint64) (bool, error) {
	u, ok := f.users[id]
	if !ok {
		return false, repository.ErrNotFound
	}
	u.Active = !u.Active
	return u.Active, nil
}

func (f *fakeUserStore) UpdateFields(_ context.Context, id uint64, fields map[string]any) error {
	u, ok := f.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	if v, ok := fields["username"].(string); ok {
		u.Username = v
	}
	if v, ok := fields["active"].(bool); ok {
		u.Active = v
	}
	if v, ok := fields["password_hash"].(string); ok {
		u.PasswordHash = v
	}
	if v, ok := fields["role_id"].(uint8); ok {
		u.RoleID = v
	}
	return nil
}

func (f *fakeUserStore) CountByRole(_ context.Context) (map[string]int, error) {
	out := map[string]int{}
	for _, u := range f.users {
		out[u.RoleName]++
	}
	return out, nil
}

func (f *fakeUserStore) CountActive(_ context.Context) (active, inactive int, err error) {
	for _, u := range f.users {
		if u.Active {
			active++
		} else {
			inactive++
		}
	}
	return active, inactive, nil
}

// fakeRoleStore resolves the three seeded roles.
type fakeRoleStore struct{}

func (fakeRoleStore) GetByName(_ context.Context, name string) (model.Role, error) {
	switch name {
	case "admin":
		return model.Role{ID: 1, Name: "admin"}, nil
	case "manager":
		return model.Role{ID: 2, Name: "manager"}, nil
	case "user":
		return model.Role{ID: 3, Name: "user"}, nil
	}
	return model.Role{}, repository.ErrInvalidRole
}

// fakeItemStore is an in-memory ItemStore.  It records the field maps
// passed to Update so tests can assert what the handler forwards.
type fakeItemStore struct {
	items       map[uint64]*model.ItemNumber
	nextID      uint64
	lastUpdate  map[string]any
	lastUpdater string
}

func newFakeItemStore() *fakeItemStore {
	return &fakeItemStore{items: map[uint64]*model.ItemNumber{}, nextID: 1}
}

func (f *fakeItemStore) DescriptionExists(_ context.Context, description string, excludeID uint64) (bool, error) {
	for _, it := range f.items {
		if it.ID != excludeID && strings.EqualFold(it.Description, description) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeItemStore) Create(_ context.Context, it *model.ItemNumber) error {
	for _, existing := range f.items {
		if existing.ItemNumber == it.ItemNumber {
			return repository.ErrDuplicateItemNumber
		}
	}
	it.ID = f.nextID
	f.nextID++
	it.DisplayOrder = len(f.items) + 1
	cp := *it
	f.items[cp.ID] = &cp
	return nil
}

func (f *fakeItemStore) GetByID(_ context.Context, id uint64) (model.ItemNumber, error) {
	if it, ok := f.items[id]; ok {
		return *it, nil
	}
	return model.ItemNumber{}, repository.ErrNotFound
}

func (f *fakeItemStore) List(_ context.Context, includeObsolete bool) ([]model.ItemNumber, error) {
	var out []model.ItemNumber
	for _, it := range f.items {
		if includeObsolete || !it.IsObsolete {
			out = append(out, *it)
		}
	}
	return out, nil
}

func (f *fakeItemStore) ListNumbers(_ context.Context) ([]string, error) {
	var out []string
	for _, it := range f.items {
		if !it.IsObsolete {
			out = append(out, it.ItemNumber)
		}
	}
	return out, nil
}

func (f *fakeItemStore) Update(_ context.Context, id uint64, fields map[string]any, updatedBy string) error {
	it, ok := f.items[id]
	if !ok {
		return repository.ErrNotFound
	}
	f.lastUpdate = fields
	f.lastUpdater = updatedBy
	if v, ok := fields["description"].(string); ok {
		it.Description = v
	}
	if v, ok := fields["display_order"].(float64); ok {
		it.DisplayOrder = int(v)
	}
	it.UpdatedBy = updatedBy
	return nil
}

func (f *fakeItemStore) SetObsolete(_ context.Context, id uint64, obsolete bool, updatedBy string) error {
	it, ok := f.items[id]
	if !ok {
		return repository.ErrNotFound
	}
	it.IsObsolete = obsolete
	it.UpdatedBy = updatedBy
	return nil
}

func (f *fakeItemStore) Delete(_ context.Context, id uint64) error {
	if _, ok := f.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

func (f *fakeItemStore) Count(_ context.Context) (int, error) { return len(f.items), nil }
