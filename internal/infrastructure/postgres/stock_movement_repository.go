package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/gsa-backend/internal/domain/entity"
	"github.com/jhoicas/gsa-backend/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo ledger de stock sobre PostgreSQL. Solo INSERT y SELECT.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Append persiste un movimiento.
func (r *StockMovementRepo) Append(ctx context.Context, m *entity.StockMovement) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_movements (id, product_id, qty_signed, type, reference, created_by, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		m.ID, m.ProductID, m.QtySigned, m.Type, m.Reference, m.CreatedBy, m.Reason, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append stock movement: %w", err)
	}
	return nil
}

// SumByProduct stock actual de un producto.
func (r *StockMovementRepo) SumByProduct(ctx context.Context, productID string) (int, error) {
	var total int
	err := r.q.QueryRow(ctx,
		`SELECT COALESCE(SUM(qty_signed), 0)::int FROM stock_movements WHERE product_id = $1`, productID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum stock: %w", err)
	}
	return total, nil
}

// SumByProducts stock actual de varios productos; los que no tienen movimientos valen 0.
func (r *StockMovementRepo) SumByProducts(ctx context.Context, productIDs []string) (map[string]int, error) {
	out := make(map[string]int, len(productIDs))
	for _, id := range productIDs {
		out[id] = 0
	}
	if len(productIDs) == 0 {
		return out, nil
	}
	rows, err := r.q.Query(ctx, `
		SELECT product_id, SUM(qty_signed)::int FROM stock_movements
		WHERE product_id = ANY($1) GROUP BY product_id`, productIDs)
	if err != nil {
		return nil, fmt.Errorf("sum stock: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		var total int
		if err := rows.Scan(&id, &total); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		out[id] = total
	}
	return out, rows.Err()
}

// SumUntil stock de un producto al instante until.
func (r *StockMovementRepo) SumUntil(ctx context.Context, productID string, until time.Time) (int, error) {
	var total int
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(qty_signed), 0)::int FROM stock_movements
		WHERE product_id = $1 AND created_at <= $2`, productID, until).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum stock until: %w", err)
	}
	return total, nil
}

// SumAll stock de todos los productos con movimientos.
func (r *StockMovementRepo) SumAll(ctx context.Context, until *time.Time) (map[string]int, error) {
	rows, err := r.q.Query(ctx, `
		SELECT product_id, SUM(qty_signed)::int FROM stock_movements
		WHERE ($1::timestamptz IS NULL OR created_at <= $1)
		GROUP BY product_id`, until)
	if err != nil {
		return nil, fmt.Errorf("sum all stock: %w", err)
	}
	defer rows.Close()
	out := map[string]int{}
	for rows.Next() {
		var id string
		var total int
		if err := rows.Scan(&id, &total); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		out[id] = total
	}
	return out, rows.Err()
}

// List movimientos más recientes primero.
func (r *StockMovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, product_id, qty_signed, type, reference, created_by, reason, created_at
		FROM stock_movements
		WHERE ($1 = '' OR product_id = $1)
		  AND ($2 = '' OR type = $2)
		  AND reference ILIKE $3
		  AND ($4::timestamptz IS NULL OR created_at >= $4)
		  AND ($5::timestamptz IS NULL OR created_at <= $5)
		ORDER BY created_at DESC, id DESC
		LIMIT $6 OFFSET $7`,
		f.ProductID, f.Type, likeArg(f.Reference), f.From, f.To, limitArg(f.Limit), f.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.StockMovement, 0)
	for rows.Next() {
		var m entity.StockMovement
		if err := rows.Scan(&m.ID, &m.ProductID, &m.QtySigned, &m.Type, &m.Reference, &m.CreatedBy, &m.Reason, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
