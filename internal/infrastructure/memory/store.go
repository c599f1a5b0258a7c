// Package memory implementa los puertos de repositorio en memoria. Mismo contrato
// transaccional que postgres: las transacciones se serializan y un error restaura el estado previo.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jhoicas/gsa-backend/internal/domain/entity"
	"github.com/jhoicas/gsa-backend/internal/domain/repository"
)

type data struct {
	products         map[string]entity.Product
	basePrices       map[string]entity.BasePrice
	clientPrices     map[string]entity.ClientPrice
	clients          map[string]entity.Client
	movements        []entity.StockMovement
	purchases        map[string]entity.Purchase
	purchaseLines    map[string]entity.PurchaseLine
	purchasePayments map[string]entity.PurchasePayment
	containers       map[string]entity.Container
	manifest         map[string]entity.ManifestLine
	received         map[string]entity.ReceivedLine
	sessions         map[string]entity.UnloadingSession
	events           []entity.UnloadingEvent
	invoices         map[string]entity.Invoice
	invoiceLines     map[string]entity.InvoiceLine
	payments         map[string]entity.Payment
	tokens           map[string]entity.AcceptanceToken
	acceptances      map[string]entity.InvoiceAcceptance
	contestations    map[string]entity.InvoiceContestation
	audit            []entity.AuditLog
	settings         *entity.CompanySettings
	users            map[string]entity.User
}

func newData() *data {
	return &data{
		products:         map[string]entity.Product{},
		basePrices:       map[string]entity.BasePrice{},
		clientPrices:     map[string]entity.ClientPrice{},
		clients:          map[string]entity.Client{},
		purchases:        map[string]entity.Purchase{},
		purchaseLines:    map[string]entity.PurchaseLine{},
		purchasePayments: map[string]entity.PurchasePayment{},
		containers:       map[string]entity.Container{},
		manifest:         map[string]entity.ManifestLine{},
		received:         map[string]entity.ReceivedLine{},
		sessions:         map[string]entity.UnloadingSession{},
		invoices:         map[string]entity.Invoice{},
		invoiceLines:     map[string]entity.InvoiceLine{},
		payments:         map[string]entity.Payment{},
		tokens:           map[string]entity.AcceptanceToken{},
		acceptances:      map[string]entity.InvoiceAcceptance{},
		contestations:    map[string]entity.InvoiceContestation{},
		users:            map[string]entity.User{},
	}
}

// clone copia superficial de cada colección. Las entidades se guardan por valor y nunca se
// mutan en sitio, así que basta para restaurar tras un rollback.
func (d *data) clone() *data {
	c := &data{
		products:         copyMap(d.products),
		basePrices:       copyMap(d.basePrices),
		clientPrices:     copyMap(d.clientPrices),
		clients:          copyMap(d.clients),
		movements:        append([]entity.StockMovement(nil), d.movements...),
		purchases:        copyMap(d.purchases),
		purchaseLines:    copyMap(d.purchaseLines),
		purchasePayments: copyMap(d.purchasePayments),
		containers:       copyMap(d.containers),
		manifest:         copyMap(d.manifest),
		received:         copyMap(d.received),
		sessions:         copyMap(d.sessions),
		events:           append([]entity.UnloadingEvent(nil), d.events...),
		invoices:         copyMap(d.invoices),
		invoiceLines:     copyMap(d.invoiceLines),
		payments:         copyMap(d.payments),
		tokens:           copyMap(d.tokens),
		acceptances:      copyMap(d.acceptances),
		contestations:    copyMap(d.contestations),
		audit:            append([]entity.AuditLog(nil), d.audit...),
		users:            copyMap(d.users),
	}
	if d.settings != nil {
		s := *d.settings
		c.settings = &s
	}
	return c
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Store estado compartido de todos los repositorios en memoria.
type Store struct {
	mu sync.Mutex
	d  *data
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{d: newData()}
}

// Repositories devuelve repositorios fuera de transacción: cada llamada toma el lock por separado.
func (s *Store) Repositories() repository.Repositories {
	return s.repos(false)
}

func (s *Store) repos(inTx bool) repository.Repositories {
	b := base{s: s, inTx: inTx}
	return repository.Repositories{
		Products:   &ProductRepo{b},
		Prices:     &PriceRepo{b},
		Clients:    &ClientRepo{b},
		Movements:  &StockMovementRepo{b},
		Purchases:  &PurchaseRepo{b},
		Containers: &ContainerRepo{b},
		Unloading:  &UnloadingRepo{b},
		Invoices:   &InvoiceRepo{b},
		Acceptance: &AcceptanceRepo{b},
		Settings:   &SettingsRepo{b},
		Users:      &UserRepo{b},
		Audit:      &AuditRepo{b},
		Series:     seriesLocker{},
	}
}

var _ repository.TxRunner = (*TxRunner)(nil)

// TxRunner serializa las transacciones con el mutex del Store y restaura una copia ante error o panic.
type TxRunner struct {
	s *Store
}

// NewTxRunner construye el runner sobre el almacén.
func NewTxRunner(s *Store) *TxRunner {
	return &TxRunner{s: s}
}

// Run ejecuta fn con repositorios atados a la transacción.
func (r *TxRunner) Run(ctx context.Context, _ string, fn func(ctx context.Context, repos repository.Repositories) error) (err error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	snapshot := r.s.d.clone()
	defer func() {
		if p := recover(); p != nil {
			r.s.d = snapshot
			panic(p)
		}
	}()

	if err = ctx.Err(); err != nil {
		return err
	}
	if err = fn(ctx, r.s.repos(true)); err != nil {
		r.s.d = snapshot
		return err
	}
	return nil
}

// base da acceso al estado y toma el lock solo fuera de transacción.
type base struct {
	s    *Store
	inTx bool
}

func (b base) lock() func() {
	if b.inTx {
		return func() {}
	}
	b.s.mu.Lock()
	return b.s.mu.Unlock
}

func (b base) data() *data { return b.s.d }

// seriesLocker no hace nada: las transacciones en memoria ya están serializadas.
type seriesLocker struct{}

func (seriesLocker) LockSeries(context.Context, string) error { return nil }

// ── helpers ───────────────────────────────────────────────────────────────────

func page[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return []T{}
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func containsFold(s, sub string) bool {
	return sub == "" || strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func newestFirst(a, b time.Time, idA, idB string) bool {
	if a.Equal(b) {
		return idA > idB
	}
	return a.After(b)
}

func oldestFirst(a, b time.Time, idA, idB string) bool {
	if a.Equal(b) {
		return idA < idB
	}
	return a.Before(b)
}

func maxWithPrefix(values []string, prefix string) string {
	best := ""
	for _, v := range values {
		if strings.HasPrefix(v, prefix) && v > best {
			best = v
		}
	}
	return best
}

func sortedIDs(ids []string) []string {
	out := append([]string(nil), ids...)
	sort.Strings(out)
	return out
}
