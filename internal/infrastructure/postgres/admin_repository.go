package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jhoicas/gsa-backend/internal/domain"
	"github.com/jhoicas/gsa-backend/internal/domain/entity"
	"github.com/jhoicas/gsa-backend/internal/domain/repository"
)

var (
	_ repository.SettingsRepository = (*SettingsRepo)(nil)
	_ repository.UserRepository     = (*UserRepo)(nil)
	_ repository.AuditRepository    = (*AuditRepo)(nil)
)

// SettingsRepo configuración de empresa: una sola fila con id = 1.
type SettingsRepo struct {
	q Querier
}

// NewSettingsRepository construye el adaptador.
func NewSettingsRepository(q Querier) *SettingsRepo {
	return &SettingsRepo{q: q}
}

func (r *SettingsRepo) Get(ctx context.Context) (*entity.CompanySettings, error) {
	var s entity.CompanySettings
	err := r.q.QueryRow(ctx, `
		SELECT name, address, city, postal_code, country, phone, email, website, bank_account,
		       rate_juice, rate_beer, invoice_message, updated_at
		FROM company_settings WHERE id = 1`).Scan(
		&s.Name, &s.Address, &s.City, &s.PostalCode, &s.Country, &s.Phone, &s.Email, &s.Website, &s.BankAccount,
		&s.RateJuice, &s.RateBeer, &s.InvoiceMessage, &s.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get company settings: %w", err)
	}
	return &s, nil
}

func (r *SettingsRepo) Save(ctx context.Context, s *entity.CompanySettings) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO company_settings (id, name, address, city, postal_code, country, phone, email, website, bank_account,
		                              rate_juice, rate_beer, invoice_message, updated_at)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, address = EXCLUDED.address, city = EXCLUDED.city, postal_code = EXCLUDED.postal_code,
			country = EXCLUDED.country, phone = EXCLUDED.phone, email = EXCLUDED.email, website = EXCLUDED.website,
			bank_account = EXCLUDED.bank_account, rate_juice = EXCLUDED.rate_juice, rate_beer = EXCLUDED.rate_beer,
			invoice_message = EXCLUDED.invoice_message, updated_at = EXCLUDED.updated_at`,
		s.Name, s.Address, s.City, s.PostalCode, s.Country, s.Phone, s.Email, s.Website, s.BankAccount,
		s.RateJuice, s.RateBeer, s.InvoiceMessage, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save company settings: %w", err)
	}
	return nil
}

// ── Usuarios ─────────────────────────────────────────────────────────────────

// UserRepo implementación del puerto UserRepository sobre PostgreSQL.
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador de persistencia para usuarios.
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

const userColumns = `id, email, password_hash, name, role, active, overrides, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*entity.User, error) {
	var u entity.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &u.Active, &u.Overrides, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if u.Overrides == nil {
		u.Overrides = map[string]*bool{}
	}
	return &u, nil
}

func overridesArg(o map[string]*bool) map[string]*bool {
	if o == nil {
		return map[string]*bool{}
	}
	return o
}

// Create persiste un nuevo usuario.
func (r *UserRepo) Create(ctx context.Context, u *entity.User) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		u.ID, u.Email, u.PasswordHash, u.Name, u.Role, u.Active, overridesArg(u.Overrides), u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID obtiene un usuario por ID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	u, err := scanUser(r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return u, nil
}

// GetByEmail obtiene un usuario por email (sin distinguir mayúsculas).
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	u, err := scanUser(r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1) LIMIT 1`, email))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

// Update actualiza un usuario.
func (r *UserRepo) Update(ctx context.Context, u *entity.User) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE users SET email = $2, password_hash = $3, name = $4, role = $5, active = $6, overrides = $7, updated_at = $8
		WHERE id = $1`,
		u.ID, u.Email, u.PasswordHash, u.Name, u.Role, u.Active, overridesArg(u.Overrides), u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("update user: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista usuarios por email con paginación.
func (r *UserRepo) List(ctx context.Context, limit, offset int) ([]*entity.User, error) {
	rows, err := r.q.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY email LIMIT $1 OFFSET $2`, limitArg(limit), offset)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

// ── Auditoría ────────────────────────────────────────────────────────────────

// AuditRepo registro de auditoría.
type AuditRepo struct {
	q Querier
}

// NewAuditRepository construye el adaptador.
func NewAuditRepository(q Querier) *AuditRepo {
	return &AuditRepo{q: q}
}

func jsonArg(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}

// Insert escribe dentro de un savepoint: si falla, la transacción externa sigue viva.
func (r *AuditRepo) Insert(ctx context.Context, l *entity.AuditLog) error {
	sp, err := r.q.Begin(ctx)
	if err != nil {
		return fmt.Errorf("audit savepoint: %w", err)
	}
	_, err = sp.Exec(ctx, `
		INSERT INTO audit_logs (id, entity_type, entity_id, action, before, after, user_id, reason, ip_address, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5::jsonb, $6::jsonb, $7, $8, $9, $10, $11)`,
		l.ID, l.EntityType, l.EntityID, l.Action, jsonArg(l.Before), jsonArg(l.After), l.UserID,
		l.Reason, l.IPAddress, l.UserAgent, l.CreatedAt,
	)
	if err != nil {
		_ = sp.Rollback(ctx)
		return fmt.Errorf("insert audit log: %w", err)
	}
	if err := sp.Commit(ctx); err != nil {
		return fmt.Errorf("release audit savepoint: %w", err)
	}
	return nil
}

// List registros más recientes primero.
func (r *AuditRepo) List(ctx context.Context, f repository.AuditFilter) ([]*entity.AuditLog, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, entity_type, entity_id, action, before, after, user_id, reason, ip_address, user_agent, created_at
		FROM audit_logs
		WHERE ($1 = '' OR entity_type = $1) AND ($2 = '' OR entity_id = $2) AND ($3 = '' OR action = $3)
		ORDER BY created_at DESC, id
		LIMIT $4 OFFSET $5`,
		f.EntityType, f.EntityID, f.Action, limitArg(f.Limit), f.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.AuditLog, 0)
	for rows.Next() {
		var l entity.AuditLog
		var before, after []byte
		if err := rows.Scan(&l.ID, &l.EntityType, &l.EntityID, &l.Action, &before, &after, &l.UserID,
			&l.Reason, &l.IPAddress, &l.UserAgent, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		l.Before = before
		l.After = after
		list = append(list, &l)
	}
	return list, rows.Err()
}
