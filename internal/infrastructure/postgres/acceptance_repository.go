package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/gsa-backend/internal/domain"
	"github.com/jhoicas/gsa-backend/internal/domain/entity"
	"github.com/jhoicas/gsa-backend/internal/domain/repository"
)

var _ repository.AcceptanceRepository = (*AcceptanceRepo)(nil)

// AcceptanceRepo tokens de aceptación, aceptaciones y contestaciones.
type AcceptanceRepo struct {
	q Querier
}

// NewAcceptanceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAcceptanceRepository(q Querier) *AcceptanceRepo {
	return &AcceptanceRepo{q: q}
}

const tokenColumns = `id, invoice_id, token_hash, expires_at, used_at, created_by, created_at`

func (r *AcceptanceRepo) CreateToken(ctx context.Context, t *entity.AcceptanceToken) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO acceptance_tokens (`+tokenColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		t.ID, t.InvoiceID, t.TokenHash, t.ExpiresAt, t.UsedAt, t.CreatedBy, t.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert acceptance token: %w", err)
	}
	return nil
}

func (r *AcceptanceRepo) getToken(ctx context.Context, hash, suffix string) (*entity.AcceptanceToken, error) {
	var t entity.AcceptanceToken
	err := r.q.QueryRow(ctx, `SELECT `+tokenColumns+` FROM acceptance_tokens WHERE token_hash = $1`+suffix, hash).
		Scan(&t.ID, &t.InvoiceID, &t.TokenHash, &t.ExpiresAt, &t.UsedAt, &t.CreatedBy, &t.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get acceptance token: %w", err)
	}
	return &t, nil
}

func (r *AcceptanceRepo) GetTokenByHash(ctx context.Context, hash string) (*entity.AcceptanceToken, error) {
	return r.getToken(ctx, hash, "")
}

func (r *AcceptanceRepo) GetTokenByHashForUpdate(ctx context.Context, hash string) (*entity.AcceptanceToken, error) {
	return r.getToken(ctx, hash, " FOR UPDATE")
}

func (r *AcceptanceRepo) MarkTokenUsed(ctx context.Context, id string, at time.Time) error {
	cmd, err := r.q.Exec(ctx, `UPDATE acceptance_tokens SET used_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("mark token used: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ── Aceptación ───────────────────────────────────────────────────────────────

func (r *AcceptanceRepo) CreateAcceptance(ctx context.Context, a *entity.InvoiceAcceptance) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO invoice_acceptances (id, invoice_id, accepted_at, ip_address, user_agent, pdf_hash, text_version, accepted_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, a.InvoiceID, a.AcceptedAt, a.IPAddress, a.UserAgent, a.PDFHash, a.TextVersion, a.AcceptedName,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert invoice acceptance: %w", err)
	}
	return nil
}

func (r *AcceptanceRepo) GetAcceptance(ctx context.Context, invoiceID string) (*entity.InvoiceAcceptance, error) {
	var a entity.InvoiceAcceptance
	err := r.q.QueryRow(ctx, `
		SELECT id, invoice_id, accepted_at, ip_address, user_agent, pdf_hash, text_version, accepted_name
		FROM invoice_acceptances WHERE invoice_id = $1`, invoiceID).
		Scan(&a.ID, &a.InvoiceID, &a.AcceptedAt, &a.IPAddress, &a.UserAgent, &a.PDFHash, &a.TextVersion, &a.AcceptedName)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice acceptance: %w", err)
	}
	return &a, nil
}

// ── Contestación ─────────────────────────────────────────────────────────────

const contestationColumns = `id, invoice_id, contested_at, contested_name, contested_email, reason, ip_address, user_agent,
	resolved, resolved_at, resolved_by, resolution_notes`

func (r *AcceptanceRepo) GetContestation(ctx context.Context, invoiceID string) (*entity.InvoiceContestation, error) {
	var c entity.InvoiceContestation
	err := r.q.QueryRow(ctx, `SELECT `+contestationColumns+` FROM invoice_contestations WHERE invoice_id = $1`, invoiceID).
		Scan(&c.ID, &c.InvoiceID, &c.ContestedAt, &c.ContestedName, &c.ContestedEmail, &c.Reason, &c.IPAddress, &c.UserAgent,
			&c.Resolved, &c.ResolvedAt, &c.ResolvedBy, &c.ResolutionNotes)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice contestation: %w", err)
	}
	return &c, nil
}

// SaveContestation upsert por invoice_id: una contestación por factura.
func (r *AcceptanceRepo) SaveContestation(ctx context.Context, c *entity.InvoiceContestation) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO invoice_contestations (`+contestationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (invoice_id) DO UPDATE SET
			id = EXCLUDED.id, contested_at = EXCLUDED.contested_at, contested_name = EXCLUDED.contested_name,
			contested_email = EXCLUDED.contested_email, reason = EXCLUDED.reason, ip_address = EXCLUDED.ip_address,
			user_agent = EXCLUDED.user_agent, resolved = EXCLUDED.resolved, resolved_at = EXCLUDED.resolved_at,
			resolved_by = EXCLUDED.resolved_by, resolution_notes = EXCLUDED.resolution_notes`,
		c.ID, c.InvoiceID, c.ContestedAt, c.ContestedName, c.ContestedEmail, c.Reason, c.IPAddress, c.UserAgent,
		c.Resolved, c.ResolvedAt, c.ResolvedBy, c.ResolutionNotes,
	)
	if err != nil {
		return fmt.Errorf("save invoice contestation: %w", err)
	}
	return nil
}
