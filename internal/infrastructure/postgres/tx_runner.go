package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/gsa-backend/internal/domain"
	"github.com/jhoicas/gsa-backend/internal/domain/repository"
)

var _ repository.TxRunner = (*TxRunner)(nil)

var tracer = otel.Tracer("gsa-backend/postgres")

const retryBaseDelay = 20 * time.Millisecond

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
// Reintenta la transacción completa ante 40001/40P01 hasta maxRetries veces.
type TxRunner struct {
	pool       *pgxpool.Pool
	maxRetries int
	log        zerolog.Logger
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool, maxRetries int, log zerolog.Logger) *TxRunner {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &TxRunner{pool: pool, maxRetries: maxRetries, log: log}
}

// Repositories repositorios atados al pool, fuera de transacción.
func Repositories(pool *pgxpool.Pool) repository.Repositories {
	return repositoriesFor(pool)
}

func repositoriesFor(q Querier) repository.Repositories {
	return repository.Repositories{
		Products:   NewProductRepository(q),
		Prices:     NewPriceRepository(q),
		Clients:    NewClientRepository(q),
		Movements:  NewStockMovementRepository(q),
		Purchases:  NewPurchaseRepository(q),
		Containers: NewContainerRepository(q),
		Unloading:  NewUnloadingRepository(q),
		Invoices:   NewInvoiceRepository(q),
		Acceptance: NewAcceptanceRepository(q),
		Settings:   NewSettingsRepository(q),
		Users:      NewUserRepository(q),
		Audit:      NewAuditRepository(q),
		Series:     seriesLocker{q: q},
	}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, name string, fn func(ctx context.Context, repos repository.Repositories) error) error {
	ctx, span := tracer.Start(ctx, "tx."+name)
	defer span.End()

	var err error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if attempt > 0 {
			span.AddEvent("retry", trace.WithAttributes(attribute.Int("attempt", attempt)))
			r.log.Warn().Str("tx", name).Int("intento", attempt).Err(err).Msg("reintentando transacción")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryBaseDelay * time.Duration(1<<(attempt-1))):
			}
		}
		err = r.runOnce(ctx, fn)
		if err == nil || !isRetryable(err) {
			break
		}
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if isRetryable(err) {
			return fmt.Errorf("%w: %v", domain.ErrRetryExhausted, err)
		}
	}
	return err
}

func (r *TxRunner) runOnce(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(ctx, repositoriesFor(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// seriesLocker serializa la numeración con un advisory lock de transacción.
type seriesLocker struct {
	q Querier
}

func (l seriesLocker) LockSeries(ctx context.Context, series string) error {
	if _, err := l.q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, series); err != nil {
		return fmt.Errorf("lock series %s: %w", series, err)
	}
	return nil
}
