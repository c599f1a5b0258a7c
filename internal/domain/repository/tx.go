package repository

import "context"

// SeriesLocker serializa la numeración de una serie documental hasta el fin de la tx.
type SeriesLocker interface {
	LockSeries(ctx context.Context, series string) error
}

// Repositories conjunto de repositorios atados a una misma conexión o transacción.
type Repositories struct {
	Products   ProductRepository
	Prices     PriceRepository
	Clients    ClientRepository
	Movements  StockMovementRepository
	Purchases  PurchaseRepository
	Containers ContainerRepository
	Unloading  UnloadingRepository
	Invoices   InvoiceRepository
	Acceptance AcceptanceRepository
	Settings   SettingsRepository
	Users      UserRepository
	Audit      AuditRepository
	Series     SeriesLocker
}

// TxRunner ejecuta fn dentro de una transacción, pasando repositorios atados a esa tx.
// Commit si fn devuelve nil, Rollback en cualquier otro caso. name identifica la operación en trazas y logs.
type TxRunner interface {
	Run(ctx context.Context, name string, fn func(ctx context.Context, r Repositories) error) error
}
