package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/gsa-backend/internal/domain"
	"github.com/jhoicas/gsa-backend/internal/domain/entity"
	"github.com/jhoicas/gsa-backend/internal/domain/repository"
)

var (
	_ repository.ContainerRepository = (*ContainerRepo)(nil)
	_ repository.UnloadingRepository = (*UnloadingRepo)(nil)
)

// ContainerRepo contenedores, manifiesto y líneas recibidas.
type ContainerRepo struct {
	q Querier
}

// NewContainerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewContainerRepository(q Querier) *ContainerRepo {
	return &ContainerRepo{q: q}
}

const containerColumns = `id, ref, estimated_arrival, actual_arrival, status, validated_at, validated_by, created_at, updated_at`

func scanContainer(row interface{ Scan(...any) error }) (*entity.Container, error) {
	var c entity.Container
	err := row.Scan(&c.ID, &c.Ref, &c.EstimatedArrival, &c.ActualArrival, &c.Status, &c.ValidatedAt, &c.ValidatedBy, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ContainerRepo) Create(ctx context.Context, c *entity.Container) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO containers (`+containerColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		c.ID, c.Ref, dateOnly(c.EstimatedArrival), c.ActualArrival, c.Status, c.ValidatedAt, c.ValidatedBy, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert container: %w", err)
	}
	return nil
}

func (r *ContainerRepo) get(ctx context.Context, id, suffix string) (*entity.Container, error) {
	c, err := scanContainer(r.q.QueryRow(ctx, `SELECT `+containerColumns+` FROM containers WHERE id = $1`+suffix, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get container: %w", err)
	}
	return c, nil
}

func (r *ContainerRepo) GetByID(ctx context.Context, id string) (*entity.Container, error) {
	return r.get(ctx, id, "")
}

func (r *ContainerRepo) GetForUpdate(ctx context.Context, id string) (*entity.Container, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

func (r *ContainerRepo) Update(ctx context.Context, c *entity.Container) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE containers SET ref = $2, estimated_arrival = $3, actual_arrival = $4, status = $5,
		       validated_at = $6, validated_by = $7, updated_at = $8
		WHERE id = $1`,
		c.ID, c.Ref, dateOnly(c.EstimatedArrival), c.ActualArrival, c.Status, c.ValidatedAt, c.ValidatedBy, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update container: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ContainerRepo) List(ctx context.Context, status string, limit, offset int) ([]*entity.Container, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+containerColumns+` FROM containers
		WHERE ($1 = '' OR status = $1)
		ORDER BY estimated_arrival DESC, id DESC
		LIMIT $2 OFFSET $3`, status, limitArg(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("list containers: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.Container, 0)
	for rows.Next() {
		c, err := scanContainer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan container: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// ── Manifiesto ───────────────────────────────────────────────────────────────

func (r *ContainerRepo) AddManifestLine(ctx context.Context, l *entity.ManifestLine) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO container_manifest_lines (id, container_id, product_id, qty_expected, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		l.ID, l.ContainerID, l.ProductID, l.QtyExpected, l.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert manifest line: %w", err)
	}
	return nil
}

func (r *ContainerRepo) ListManifest(ctx context.Context, containerID string) ([]*entity.ManifestLine, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, container_id, product_id, qty_expected, created_at FROM container_manifest_lines
		WHERE container_id = $1 ORDER BY created_at, id`, containerID)
	if err != nil {
		return nil, fmt.Errorf("list manifest: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.ManifestLine, 0)
	for rows.Next() {
		var l entity.ManifestLine
		if err := rows.Scan(&l.ID, &l.ContainerID, &l.ProductID, &l.QtyExpected, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan manifest line: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

// ── Líneas recibidas ─────────────────────────────────────────────────────────

const receivedColumns = `id, container_id, product_id, qty_received, breakage, comment, created_at, updated_at`

func scanReceived(row interface{ Scan(...any) error }) (*entity.ReceivedLine, error) {
	var l entity.ReceivedLine
	if err := row.Scan(&l.ID, &l.ContainerID, &l.ProductID, &l.QtyReceived, &l.Breakage, &l.Comment, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *ContainerRepo) AddReceivedLine(ctx context.Context, l *entity.ReceivedLine) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO container_received_lines (`+receivedColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		l.ID, l.ContainerID, l.ProductID, l.QtyReceived, l.Breakage, l.Comment, l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert received line: %w", err)
	}
	return nil
}

func (r *ContainerRepo) GetReceivedLine(ctx context.Context, id string) (*entity.ReceivedLine, error) {
	l, err := scanReceived(r.q.QueryRow(ctx, `SELECT `+receivedColumns+` FROM container_received_lines WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get received line: %w", err)
	}
	return l, nil
}

func (r *ContainerRepo) UpdateReceivedLine(ctx context.Context, l *entity.ReceivedLine) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE container_received_lines SET qty_received = $2, breakage = $3, comment = $4, updated_at = $5
		WHERE id = $1`, l.ID, l.QtyReceived, l.Breakage, l.Comment, l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update received line: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ContainerRepo) ListReceived(ctx context.Context, containerID string) ([]*entity.ReceivedLine, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+receivedColumns+` FROM container_received_lines
		WHERE container_id = $1 ORDER BY created_at, id`, containerID)
	if err != nil {
		return nil, fmt.Errorf("list received lines: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.ReceivedLine, 0)
	for rows.Next() {
		l, err := scanReceived(rows)
		if err != nil {
			return nil, fmt.Errorf("scan received line: %w", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}

// ── Sesiones de descarga ─────────────────────────────────────────────────────

// UnloadingRepo sesiones de descarga y su línea de tiempo.
type UnloadingRepo struct {
	q Querier
}

// NewUnloadingRepository construye el adaptador. Pasar pool o tx (Querier).
func NewUnloadingRepository(q Querier) *UnloadingRepo {
	return &UnloadingRepo{q: q}
}

const sessionColumns = `id, container_id, crew_size, allocated_amount, started_at, ended_at, created_at`

func scanSession(row interface{ Scan(...any) error }) (*entity.UnloadingSession, error) {
	var s entity.UnloadingSession
	if err := row.Scan(&s.ID, &s.ContainerID, &s.CrewSize, &s.AllocatedAmount, &s.StartedAt, &s.EndedAt, &s.CreatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *UnloadingRepo) CreateSession(ctx context.Context, s *entity.UnloadingSession) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO unloading_sessions (`+sessionColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		s.ID, s.ContainerID, s.CrewSize, s.AllocatedAmount, s.StartedAt, s.EndedAt, s.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert unloading session: %w", err)
	}
	return nil
}

func (r *UnloadingRepo) getSession(ctx context.Context, where, suffix string, arg string) (*entity.UnloadingSession, error) {
	s, err := scanSession(r.q.QueryRow(ctx, `SELECT `+sessionColumns+` FROM unloading_sessions WHERE `+where+` = $1`+suffix, arg))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get unloading session: %w", err)
	}
	return s, nil
}

func (r *UnloadingRepo) GetSession(ctx context.Context, id string) (*entity.UnloadingSession, error) {
	return r.getSession(ctx, "id", "", id)
}

func (r *UnloadingRepo) GetSessionForUpdate(ctx context.Context, id string) (*entity.UnloadingSession, error) {
	return r.getSession(ctx, "id", " FOR UPDATE", id)
}

func (r *UnloadingRepo) GetSessionByContainer(ctx context.Context, containerID string) (*entity.UnloadingSession, error) {
	return r.getSession(ctx, "container_id", "", containerID)
}

func (r *UnloadingRepo) UpdateSession(ctx context.Context, s *entity.UnloadingSession) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE unloading_sessions SET crew_size = $2, allocated_amount = $3, started_at = $4, ended_at = $5
		WHERE id = $1`, s.ID, s.CrewSize, s.AllocatedAmount, s.StartedAt, s.EndedAt)
	if err != nil {
		return fmt.Errorf("update unloading session: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AppendEvent agrega un evento; seq conserva el orden de inserción.
func (r *UnloadingRepo) AppendEvent(ctx context.Context, e *entity.UnloadingEvent) error {
	meta := e.Meta
	if meta == nil {
		meta = map[string]any{}
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO unloading_events (id, session_id, type, user_id, meta, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		e.ID, e.SessionID, e.Type, e.UserID, meta, e.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("append unloading event: %w", err)
	}
	return nil
}

func (r *UnloadingRepo) ListEvents(ctx context.Context, sessionID string) ([]*entity.UnloadingEvent, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, session_id, type, user_id, meta, timestamp FROM unloading_events
		WHERE session_id = $1 ORDER BY seq`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list unloading events: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.UnloadingEvent, 0)
	for rows.Next() {
		var e entity.UnloadingEvent
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Type, &e.UserID, &e.Meta, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan unloading event: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}
