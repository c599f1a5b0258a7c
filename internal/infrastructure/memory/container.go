package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/gsa-backend/internal/domain"
	"github.com/jhoicas/gsa-backend/internal/domain/entity"
	"github.com/jhoicas/gsa-backend/internal/domain/repository"
)

var (
	_ repository.ContainerRepository = (*ContainerRepo)(nil)
	_ repository.UnloadingRepository = (*UnloadingRepo)(nil)
)

// ContainerRepo contenedores en memoria.
type ContainerRepo struct{ base }

func (r *ContainerRepo) Create(_ context.Context, c *entity.Container) error {
	defer r.lock()()
	d := r.data()
	for _, existing := range d.containers {
		if existing.Ref == c.Ref {
			return domain.ErrDuplicate
		}
	}
	d.containers[c.ID] = *c
	return nil
}

func (r *ContainerRepo) GetByID(_ context.Context, id string) (*entity.Container, error) {
	defer r.lock()()
	c, ok := r.data().containers[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *ContainerRepo) GetForUpdate(ctx context.Context, id string) (*entity.Container, error) {
	return r.GetByID(ctx, id)
}

func (r *ContainerRepo) Update(_ context.Context, c *entity.Container) error {
	defer r.lock()()
	d := r.data()
	if _, ok := d.containers[c.ID]; !ok {
		return domain.ErrNotFound
	}
	d.containers[c.ID] = *c
	return nil
}

func (r *ContainerRepo) List(_ context.Context, status string, limit, offset int) ([]*entity.Container, error) {
	defer r.lock()()
	out := make([]*entity.Container, 0)
	for _, c := range r.data().containers {
		if status != "" && c.Status != status {
			continue
		}
		c := c
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool {
		return newestFirst(out[i].EstimatedArrival, out[j].EstimatedArrival, out[i].ID, out[j].ID)
	})
	return page(out, limit, offset), nil
}

func (r *ContainerRepo) AddManifestLine(_ context.Context, l *entity.ManifestLine) error {
	defer r.lock()()
	d := r.data()
	for _, existing := range d.manifest {
		if existing.ContainerID == l.ContainerID && existing.ProductID == l.ProductID {
			return domain.ErrDuplicate
		}
	}
	d.manifest[l.ID] = *l
	return nil
}

func (r *ContainerRepo) ListManifest(_ context.Context, containerID string) ([]*entity.ManifestLine, error) {
	defer r.lock()()
	out := make([]*entity.ManifestLine, 0)
	for _, l := range r.data().manifest {
		if l.ContainerID == containerID {
			l := l
			out = append(out, &l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return oldestFirst(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out, nil
}

func (r *ContainerRepo) AddReceivedLine(_ context.Context, l *entity.ReceivedLine) error {
	defer r.lock()()
	d := r.data()
	for _, existing := range d.received {
		if existing.ContainerID == l.ContainerID && existing.ProductID == l.ProductID {
			return domain.ErrDuplicate
		}
	}
	d.received[l.ID] = *l
	return nil
}

func (r *ContainerRepo) GetReceivedLine(_ context.Context, id string) (*entity.ReceivedLine, error) {
	defer r.lock()()
	l, ok := r.data().received[id]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (r *ContainerRepo) UpdateReceivedLine(_ context.Context, l *entity.ReceivedLine) error {
	defer r.lock()()
	d := r.data()
	if _, ok := d.received[l.ID]; !ok {
		return domain.ErrNotFound
	}
	d.received[l.ID] = *l
	return nil
}

func (r *ContainerRepo) ListReceived(_ context.Context, containerID string) ([]*entity.ReceivedLine, error) {
	defer r.lock()()
	out := make([]*entity.ReceivedLine, 0)
	for _, l := range r.data().received {
		if l.ContainerID == containerID {
			l := l
			out = append(out, &l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return oldestFirst(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out, nil
}

// UnloadingRepo sesiones de descarga en memoria.
type UnloadingRepo struct{ base }

func (r *UnloadingRepo) CreateSession(_ context.Context, s *entity.UnloadingSession) error {
	defer r.lock()()
	d := r.data()
	for _, existing := range d.sessions {
		if existing.ContainerID == s.ContainerID {
			return domain.ErrDuplicate
		}
	}
	d.sessions[s.ID] = *s
	return nil
}

func (r *UnloadingRepo) GetSession(_ context.Context, id string) (*entity.UnloadingSession, error) {
	defer r.lock()()
	s, ok := r.data().sessions[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r *UnloadingRepo) GetSessionForUpdate(ctx context.Context, id string) (*entity.UnloadingSession, error) {
	return r.GetSession(ctx, id)
}

func (r *UnloadingRepo) GetSessionByContainer(_ context.Context, containerID string) (*entity.UnloadingSession, error) {
	defer r.lock()()
	for _, s := range r.data().sessions {
		if s.ContainerID == containerID {
			s := s
			return &s, nil
		}
	}
	return nil, nil
}

func (r *UnloadingRepo) UpdateSession(_ context.Context, s *entity.UnloadingSession) error {
	defer r.lock()()
	d := r.data()
	if _, ok := d.sessions[s.ID]; !ok {
		return domain.ErrNotFound
	}
	d.sessions[s.ID] = *s
	return nil
}

func (r *UnloadingRepo) AppendEvent(_ context.Context, e *entity.UnloadingEvent) error {
	defer r.lock()()
	d := r.data()
	d.events = append(d.events, *e)
	return nil
}

func (r *UnloadingRepo) ListEvents(_ context.Context, sessionID string) ([]*entity.UnloadingEvent, error) {
	defer r.lock()()
	out := make([]*entity.UnloadingEvent, 0)
	for _, e := range r.data().events {
		if e.SessionID == sessionID {
			e := e
			out = append(out, &e)
		}
	}
	return out, nil
}
