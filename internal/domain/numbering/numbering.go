// Package numbering genera referencias documentales PREFIX-YYYY-NNNNNN.
package numbering

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jhoicas/gsa-backend/internal/domain/repository"
)

// Prefijos de las series.
const (
	PrefixInvoice  = "GSA"
	PrefixPurchase = "ACHAT"
)

// SeriesPrefix devuelve el prefijo de búsqueda de la serie de un año, ej. "GSA-2026-".
func SeriesPrefix(prefix string, year int) string {
	return fmt.Sprintf("%s-%d-", prefix, year)
}

// Format construye PREFIX-YYYY-NNNNNN.
func Format(prefix string, year, seq int) string {
	return fmt.Sprintf("%s-%d-%06d", prefix, year, seq)
}

// Next calcula el siguiente número de la serie a partir del mayor existente (last).
// Sin número previo, o si no se puede interpretar, la serie arranca en 1.
func Next(prefix string, year int, last string) string {
	seq := 1
	if last != "" {
		idx := strings.LastIndex(last, "-")
		if idx >= 0 {
			if n, err := strconv.Atoi(last[idx+1:]); err == nil && n >= 0 {
				seq = n + 1
			}
		}
	}
	return Format(prefix, year, seq)
}

// Allocate toma el lock de la serie (hasta el fin de la tx) y devuelve el siguiente número.
// lastOf devuelve el mayor número existente con el prefijo dado.
func Allocate(
	ctx context.Context,
	lock repository.SeriesLocker,
	prefix string,
	year int,
	lastOf func(ctx context.Context, prefix string) (string, error),
) (string, error) {
	series := SeriesPrefix(prefix, year)
	if err := lock.LockSeries(ctx, series); err != nil {
		return "", fmt.Errorf("bloquear serie %s: %w", series, err)
	}
	last, err := lastOf(ctx, series)
	if err != nil {
		return "", err
	}
	return Next(prefix, year, last), nil
}
