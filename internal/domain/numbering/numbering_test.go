package numbering

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNext_SinPrevioArrancaEnUno(t *testing.T) {
	assert.Equal(t, "GSA-2026-000001", Next(PrefixInvoice, 2026, ""))
}

func TestNext_IncrementaElMayor(t *testing.T) {
	assert.Equal(t, "GSA-2026-000043", Next(PrefixInvoice, 2026, "GSA-2026-000042"))
	assert.Equal(t, "ACHAT-2026-001000", Next(PrefixPurchase, 2026, "ACHAT-2026-000999"))
}

func TestNext_SufijoIlegibleVuelveAUno(t *testing.T) {
	assert.Equal(t, "GSA-2026-000001", Next(PrefixInvoice, 2026, "GSA-2026-abc"))
}

func TestNext_EsEstrictamenteCreciente(t *testing.T) {
	last := ""
	for i := 0; i < 5; i++ {
		n := Next(PrefixInvoice, 2026, last)
		if last != "" {
			assert.Greater(t, n, last)
		}
		last = n
	}
	assert.Equal(t, "GSA-2026-000005", last)
}

func TestSeriesPrefix(t *testing.T) {
	assert.Equal(t, "ACHAT-2025-", SeriesPrefix(PrefixPurchase, 2025))
}

type fakeLocker struct{ locked []string }

func (f *fakeLocker) LockSeries(_ context.Context, series string) error {
	f.locked = append(f.locked, series)
	return nil
}

func TestAllocate_BloqueaLaSerieDelAnio(t *testing.T) {
	lock := &fakeLocker{}
	var asked string
	n, err := Allocate(context.Background(), lock, PrefixInvoice, 2026, func(_ context.Context, prefix string) (string, error) {
		asked = prefix
		return "GSA-2026-000007", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "GSA-2026-000008", n)
	assert.Equal(t, []string{"GSA-2026-"}, lock.locked)
	assert.Equal(t, "GSA-2026-", asked)
}
