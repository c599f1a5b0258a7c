package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/jhoicas/gsa-backend/internal/domain"
	"github.com/jhoicas/gsa-backend/internal/domain/entity"
	"github.com/jhoicas/gsa-backend/internal/domain/repository"
)

var (
	_ repository.SettingsRepository = (*SettingsRepo)(nil)
	_ repository.UserRepository     = (*UserRepo)(nil)
	_ repository.AuditRepository    = (*AuditRepo)(nil)
)

// SettingsRepo configuración de empresa en memoria.
type SettingsRepo struct{ base }

func (r *SettingsRepo) Get(_ context.Context) (*entity.CompanySettings, error) {
	defer r.lock()()
	if r.data().settings == nil {
		return nil, nil
	}
	s := *r.data().settings
	return &s, nil
}

func (r *SettingsRepo) Save(_ context.Context, s *entity.CompanySettings) error {
	defer r.lock()()
	cp := *s
	r.data().settings = &cp
	return nil
}

// UserRepo usuarios en memoria.
type UserRepo struct{ base }

func cloneUser(u entity.User) *entity.User {
	if u.Overrides != nil {
		o := make(map[string]*bool, len(u.Overrides))
		for k, v := range u.Overrides {
			o[k] = v
		}
		u.Overrides = o
	}
	return &u
}

func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	defer r.lock()()
	d := r.data()
	for _, existing := range d.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return domain.ErrEmailAlreadyExists
		}
	}
	d.users[u.ID] = *cloneUser(*u)
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	defer r.lock()()
	u, ok := r.data().users[id]
	if !ok {
		return nil, nil
	}
	return cloneUser(u), nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	defer r.lock()()
	for _, u := range r.data().users {
		if strings.EqualFold(u.Email, email) {
			return cloneUser(u), nil
		}
	}
	return nil, nil
}

func (r *UserRepo) Update(_ context.Context, u *entity.User) error {
	defer r.lock()()
	d := r.data()
	if _, ok := d.users[u.ID]; !ok {
		return domain.ErrNotFound
	}
	d.users[u.ID] = *cloneUser(*u)
	return nil
}

func (r *UserRepo) List(_ context.Context, limit, offset int) ([]*entity.User, error) {
	defer r.lock()()
	out := make([]*entity.User, 0)
	for _, u := range r.data().users {
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return page(out, limit, offset), nil
}

// AuditRepo registro de auditoría en memoria.
type AuditRepo struct{ base }

func (r *AuditRepo) Insert(_ context.Context, l *entity.AuditLog) error {
	defer r.lock()()
	d := r.data()
	d.audit = append(d.audit, *l)
	return nil
}

func (r *AuditRepo) List(_ context.Context, f repository.AuditFilter) ([]*entity.AuditLog, error) {
	defer r.lock()()
	out := make([]*entity.AuditLog, 0)
	for _, l := range r.data().audit {
		if f.EntityType != "" && l.EntityType != f.EntityType {
			continue
		}
		if f.EntityID != "" && l.EntityID != f.EntityID {
			continue
		}
		if f.Action != "" && l.Action != f.Action {
			continue
		}
		l := l
		out = append(out, &l)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, f.Limit, f.Offset), nil
}
