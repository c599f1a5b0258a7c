package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/gsa-backend/internal/domain"
	"github.com/jhoicas/gsa-backend/internal/domain/entity"
	"github.com/jhoicas/gsa-backend/internal/domain/repository"
)

var _ repository.PurchaseRepository = (*PurchaseRepo)(nil)

// PurchaseRepo compras a proveedor, líneas y pagos.
type PurchaseRepo struct {
	q Querier
}

// NewPurchaseRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPurchaseRepository(q Querier) *PurchaseRepo {
	return &PurchaseRepo{q: q}
}

const purchaseColumns = `id, supplier_id, purchase_date, reference, status, created_by, validated_at, validated_by, created_at, updated_at`

func scanPurchase(row interface{ Scan(...any) error }) (*entity.Purchase, error) {
	var p entity.Purchase
	err := row.Scan(&p.ID, &p.SupplierID, &p.PurchaseDate, &p.Reference, &p.Status, &p.CreatedBy,
		&p.ValidatedAt, &p.ValidatedBy, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PurchaseRepo) Create(ctx context.Context, p *entity.Purchase) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO purchases (`+purchaseColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		p.ID, p.SupplierID, dateOnly(p.PurchaseDate), p.Reference, p.Status, p.CreatedBy,
		p.ValidatedAt, p.ValidatedBy, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert purchase: %w", err)
	}
	return nil
}

func (r *PurchaseRepo) get(ctx context.Context, id, suffix string) (*entity.Purchase, error) {
	p, err := scanPurchase(r.q.QueryRow(ctx, `SELECT `+purchaseColumns+` FROM purchases WHERE id = $1`+suffix, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase: %w", err)
	}
	return p, nil
}

func (r *PurchaseRepo) GetByID(ctx context.Context, id string) (*entity.Purchase, error) {
	return r.get(ctx, id, "")
}

func (r *PurchaseRepo) GetForUpdate(ctx context.Context, id string) (*entity.Purchase, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

func (r *PurchaseRepo) Update(ctx context.Context, p *entity.Purchase) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE purchases SET supplier_id = $2, purchase_date = $3, status = $4, validated_at = $5, validated_by = $6, updated_at = $7
		WHERE id = $1`,
		p.ID, p.SupplierID, dateOnly(p.PurchaseDate), p.Status, p.ValidatedAt, p.ValidatedBy, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update purchase: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PurchaseRepo) List(ctx context.Context, f repository.PurchaseFilter) ([]*entity.Purchase, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+purchaseColumns+` FROM purchases
		WHERE ($1 = '' OR supplier_id = $1) AND ($2 = '' OR status = $2)
		ORDER BY reference DESC
		LIMIT $3 OFFSET $4`,
		f.SupplierID, f.Status, limitArg(f.Limit), f.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.Purchase, 0)
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func (r *PurchaseRepo) MaxReference(ctx context.Context, prefix string) (string, error) {
	return maxWithPrefix(ctx, r.q, "purchases", "reference", prefix)
}

// ── Líneas ───────────────────────────────────────────────────────────────────

func (r *PurchaseRepo) AddLine(ctx context.Context, l *entity.PurchaseLine) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO purchase_lines (id, purchase_id, product_id, qty, unit_price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		l.ID, l.PurchaseID, l.ProductID, l.Qty, l.UnitPrice, l.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert purchase line: %w", err)
	}
	return nil
}

func (r *PurchaseRepo) GetLine(ctx context.Context, id string) (*entity.PurchaseLine, error) {
	var l entity.PurchaseLine
	err := r.q.QueryRow(ctx, `
		SELECT id, purchase_id, product_id, qty, unit_price, created_at FROM purchase_lines WHERE id = $1`, id).
		Scan(&l.ID, &l.PurchaseID, &l.ProductID, &l.Qty, &l.UnitPrice, &l.CreatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase line: %w", err)
	}
	return &l, nil
}

func (r *PurchaseRepo) UpdateLine(ctx context.Context, l *entity.PurchaseLine) error {
	cmd, err := r.q.Exec(ctx, `UPDATE purchase_lines SET qty = $2, unit_price = $3 WHERE id = $1`, l.ID, l.Qty, l.UnitPrice)
	if err != nil {
		return fmt.Errorf("update purchase line: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PurchaseRepo) DeleteLine(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM purchase_lines WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete purchase line: %w", err)
	}
	return nil
}

func (r *PurchaseRepo) ListLines(ctx context.Context, purchaseID string) ([]*entity.PurchaseLine, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, purchase_id, product_id, qty, unit_price, created_at FROM purchase_lines
		WHERE purchase_id = $1 ORDER BY created_at, id`, purchaseID)
	if err != nil {
		return nil, fmt.Errorf("list purchase lines: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.PurchaseLine, 0)
	for rows.Next() {
		var l entity.PurchaseLine
		if err := rows.Scan(&l.ID, &l.PurchaseID, &l.ProductID, &l.Qty, &l.UnitPrice, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan purchase line: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

// ── Pagos a proveedor ────────────────────────────────────────────────────────

const purchasePaymentColumns = `id, purchase_id, amount, mode, date, reference, created_by, created_at`

func scanPurchasePayment(row interface{ Scan(...any) error }) (*entity.PurchasePayment, error) {
	var p entity.PurchasePayment
	if err := row.Scan(&p.ID, &p.PurchaseID, &p.Amount, &p.Mode, &p.Date, &p.Reference, &p.CreatedBy, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PurchaseRepo) AddPayment(ctx context.Context, p *entity.PurchasePayment) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO purchase_payments (`+purchasePaymentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.PurchaseID, p.Amount, p.Mode, dateOnly(p.Date), p.Reference, p.CreatedBy, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert purchase payment: %w", err)
	}
	return nil
}

func (r *PurchaseRepo) GetPayment(ctx context.Context, id string) (*entity.PurchasePayment, error) {
	p, err := scanPurchasePayment(r.q.QueryRow(ctx, `SELECT `+purchasePaymentColumns+` FROM purchase_payments WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase payment: %w", err)
	}
	return p, nil
}

func (r *PurchaseRepo) DeletePayment(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM purchase_payments WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete purchase payment: %w", err)
	}
	return nil
}

func (r *PurchaseRepo) ListPayments(ctx context.Context, purchaseID string) ([]*entity.PurchasePayment, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+purchasePaymentColumns+` FROM purchase_payments
		WHERE purchase_id = $1 ORDER BY date, id`, purchaseID)
	if err != nil {
		return nil, fmt.Errorf("list purchase payments: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.PurchasePayment, 0)
	for rows.Next() {
		p, err := scanPurchasePayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan purchase payment: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}
