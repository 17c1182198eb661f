package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"heartbeat-insights/internal/domain"
	"heartbeat-insights/pkg/utils"
)

// UsersRepo 内存账号存储（memory 驱动和测试用），邮箱唯一靠二级索引保证
type UsersRepo struct {
	mu      sync.RWMutex
	items   map[string]domain.User
	byEmail map[string]string
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		items:   make(map[string]domain.User),
		byEmail: make(map[string]string),
	}
}

var _ domain.UserRepository = (*UsersRepo)(nil)

func emailKey(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

func (r *UsersRepo) Create(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := emailKey(u.Email)
	if _, taken := r.byEmail[key]; taken {
		return domain.ErrEmailTaken
	}
	if u.ID == "" {
		u.ID = utils.NewID()
	}
	r.items[u.ID] = *u
	r.byEmail[key] = u.ID
	return nil
}

func (r *UsersRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (r *UsersRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[emailKey(email)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	u := r.items[id]
	return &u, nil
}

func (r *UsersRepo) FindByIDs(_ context.Context, ids []string) ([]domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := r.items[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *UsersRepo) List(_ context.Context) ([]domain.User, error) {
	r.mu.RLock()
	out := make([]domain.User, 0, len(r.items))
	for _, u := range r.items {
		out = append(out, u)
	}
	r.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *UsersRepo) Update(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	old, ok := r.items[u.ID]
	if !ok {
		return domain.ErrNotFound
	}
	oldKey, newKey := emailKey(old.Email), emailKey(u.Email)
	if oldKey != newKey {
		if _, taken := r.byEmail[newKey]; taken {
			return domain.ErrEmailTaken
		}
		delete(r.byEmail, oldKey)
		r.byEmail[newKey] = u.ID
	}
	r.items[u.ID] = *u
	return nil
}

func (r *UsersRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.items[id]
	if !ok {
		return domain.ErrNotFound
	}
	delete(r.items, id)
	delete(r.byEmail, emailKey(u.Email))
	return nil
}
