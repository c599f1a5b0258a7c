package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/gsa-backend/internal/application/audit"
	"github.com/jhoicas/gsa-backend/internal/domain"
	"github.com/jhoicas/gsa-backend/internal/domain/entity"
	ledger "github.com/jhoicas/gsa-backend/internal/domain/inventory"
	"github.com/jhoicas/gsa-backend/internal/domain/repository"
)

// MovementInput entrada para agregar un movimiento al ledger.
type MovementInput struct {
	ProductID string
	QtySigned int
	Type      string
	Reference string
	Reason    string
	UserID    string
}

// Record valida y agrega un movimiento usando el repositorio recibido. Los casos de uso
// que emiten movimientos dentro de su propia tx llaman a esta función con el repo de la tx.
func Record(ctx context.Context, movements repository.StockMovementRepository, in MovementInput, now time.Time) (*entity.StockMovement, error) {
	m := &entity.StockMovement{
		ID:        uuid.New().String(),
		ProductID: in.ProductID,
		QtySigned: in.QtySigned,
		Type:      in.Type,
		Reference: in.Reference,
		Reason:    in.Reason,
		CreatedAt: now,
	}
	if in.UserID != "" {
		uid := in.UserID
		m.CreatedBy = &uid
	}
	if err := ledger.ValidateMovement(m); err != nil {
		return nil, err
	}
	if err := movements.Append(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// LedgerUseCase operaciones del ledger de stock. El stock nunca se guarda: se suma.
type LedgerUseCase struct {
	txRunner  repository.TxRunner
	movements repository.StockMovementRepository
	products  repository.ProductRepository
	log       zerolog.Logger
	now       func() time.Time
}

// NewLedgerUseCase construye el caso de uso.
func NewLedgerUseCase(
	txRunner repository.TxRunner,
	movements repository.StockMovementRepository,
	products repository.ProductRepository,
	log zerolog.Logger,
) *LedgerUseCase {
	return &LedgerUseCase{
		txRunner:  txRunner,
		movements: movements,
		products:  products,
		log:       log,
		now:       time.Now,
	}
}

// Record agrega un movimiento fuera de cualquier flujo de negocio.
func (uc *LedgerUseCase) Record(ctx context.Context, in MovementInput) (*entity.StockMovement, error) {
	return Record(ctx, uc.movements, in, uc.now())
}

// CurrentStock Σ qty_signed del producto. Puede ser negativo.
func (uc *LedgerUseCase) CurrentStock(ctx context.Context, productID string) (int, error) {
	return uc.movements.SumByProduct(ctx, productID)
}

// StockAt stock al final del día asOf (movimientos con created_at hasta ese día inclusive).
func (uc *LedgerUseCase) StockAt(ctx context.Context, productID string, asOf time.Time) (int, error) {
	return uc.movements.SumUntil(ctx, productID, EndOfDay(asOf))
}

// StockByProduct stock de cada producto con movimientos.
func (uc *LedgerUseCase) StockByProduct(ctx context.Context) (map[string]int, error) {
	return uc.movements.SumAll(ctx, nil)
}

// ListMovements consulta del ledger, más recientes primero.
func (uc *LedgerUseCase) ListMovements(ctx context.Context, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	if f.Limit <= 0 || f.Limit > 500 {
		f.Limit = 100
	}
	return uc.movements.List(ctx, f)
}

// AdjustInput ajuste manual de stock (inventario físico o rotura constatada).
type AdjustInput struct {
	ProductID string
	QtySigned int
	Type      string // ADJUSTMENT | BREAKAGE
	Reason    string
	Reference string
}

// Adjust registra un ajuste manual. La razón es obligatoria también para BREAKAGE, y la
// rotura siempre resta. Referencia por defecto: AJUST-{nombre del producto}.
func (uc *LedgerUseCase) Adjust(ctx context.Context, in AdjustInput, actor audit.Actor) (*entity.StockMovement, error) {
	if in.Type == "" {
		in.Type = entity.MovementAdjustment
	}
	if in.Type != entity.MovementAdjustment && in.Type != entity.MovementBreakage {
		return nil, domain.ErrInvalidInput
	}
	if strings.TrimSpace(in.Reason) == "" {
		return nil, domain.ErrReasonRequired
	}
	if in.Type == entity.MovementBreakage && in.QtySigned > 0 {
		in.QtySigned = -in.QtySigned
	}

	var mov *entity.StockMovement
	err := uc.txRunner.Run(ctx, "stock.adjust", func(ctx context.Context, r repository.Repositories) error {
		product, err := r.Products.GetByID(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		ref := strings.TrimSpace(in.Reference)
		if ref == "" {
			ref = "AJUST-" + product.Name
		}
		before, err := r.Movements.SumByProduct(ctx, product.ID)
		if err != nil {
			return err
		}
		mov, err = Record(ctx, r.Movements, MovementInput{
			ProductID: product.ID,
			QtySigned: in.QtySigned,
			Type:      in.Type,
			Reference: ref,
			Reason:    in.Reason,
			UserID:    actor.UserID,
		}, uc.now())
		if err != nil {
			return err
		}
		audit.NewRecorder(r.Audit, uc.log).Record(ctx, audit.Entry{
			Target: mov,
			Action: entity.AuditStockAdjustment,
			Before: map[string]any{"product_id": product.ID, "stock": before},
			After:  map[string]any{"product_id": product.ID, "stock": before + mov.QtySigned, "qty_signed": mov.QtySigned, "type": mov.Type},
			Reason: mov.Reason,
			Actor:  actor,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("product_id", mov.ProductID).
		Int("qty_signed", mov.QtySigned).
		Str("type", mov.Type).
		Msg("ajuste de stock registrado")
	return mov, nil
}

// EndOfDay último instante del día de t, en su zona horaria.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location()).AddDate(0, 0, 1).Add(-time.Nanosecond)
}
