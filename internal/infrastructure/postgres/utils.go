package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// isRetryable serialization_failure (40001) o deadlock_detected (40P01).
func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// limitArg LIMIT NULL = sin límite, igual que limit 0 en memoria.
func limitArg(limit int) any {
	if limit <= 0 {
		return nil
	}
	return limit
}

// likeArg patrón ILIKE para búsquedas por subcadena; "" coincide con todo.
func likeArg(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// dateOnly fecha sin hora para columnas DATE.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// maxWithPrefix mayor valor de column que empieza por prefix ("" si ninguno).
// Los números tienen ancho fijo, así que el orden de texto coincide con el numérico.
func maxWithPrefix(ctx context.Context, q Querier, table, column, prefix string) (string, error) {
	var highest *string
	query := fmt.Sprintf(`SELECT MAX(%s) FROM %s WHERE %s LIKE $1`, column, table, column)
	if err := q.QueryRow(ctx, query, likePrefix(prefix)).Scan(&highest); err != nil {
		return "", fmt.Errorf("max %s.%s: %w", table, column, err)
	}
	if highest == nil {
		return "", nil
	}
	return *highest, nil
}

func likePrefix(s string) string {
	return likeEscaper.Replace(s) + "%"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
