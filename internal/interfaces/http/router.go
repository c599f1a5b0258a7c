package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/ulule/limiter/v3"

	appanalytics "github.com/jhoicas/gsa-backend/internal/application/analytics"
	"github.com/jhoicas/gsa-backend/internal/application/audit"
	"github.com/jhoicas/gsa-backend/internal/application/auth"
	"github.com/jhoicas/gsa-backend/internal/application/billing"
	"github.com/jhoicas/gsa-backend/internal/application/containers"
	"github.com/jhoicas/gsa-backend/internal/application/inventory"
	"github.com/jhoicas/gsa-backend/internal/application/purchasing"
	"github.com/jhoicas/gsa-backend/internal/application/usecase"
	"github.com/jhoicas/gsa-backend/internal/domain/rbac"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC       *auth.AuthUseCase
	ProductUC    *usecase.ProductUseCase
	ClientUC     *usecase.ClientUseCase
	SettingsUC   *usecase.SettingsUseCase
	UserUC       *usecase.UserUseCase
	LedgerUC     *inventory.LedgerUseCase
	PurchaseUC   *purchasing.UseCase
	ContainerUC  *containers.UseCase
	InvoiceUC    *billing.InvoiceUseCase
	AcceptanceUC *billing.AcceptanceUseCase
	DashboardUC  *appanalytics.DashboardUseCase
	AuditUC      *audit.QueryUseCase
	JWTSecret    string

	// Límite por IP de los endpoints públicos.
	RateStore  limiter.Store
	PublicRate limiter.Rate
	Log        zerolog.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")
	caps := deps.AuthUC
	need := func(c ...rbac.Capability) fiber.Handler { return RequireCapability(caps, c...) }

	// Auth
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", RateLimit(deps.RateStore, deps.PublicRate, deps.Log), authHandler.Login)

	// Enlace público de aceptación (sin auth, limitado por IP)
	public := api.Group("/public/invoices", RateLimit(deps.RateStore, deps.PublicRate, deps.Log))
	publicHandler := NewPublicInvoiceHandler(deps.AcceptanceUC)
	public.Get("/:token", publicHandler.View)
	public.Get("/:token/pdf", publicHandler.PDF)
	public.Post("/:token/accept", publicHandler.Accept)
	public.Post("/:token/contest", publicHandler.Contest)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	protected.Get("/auth/me", authHandler.Me)

	// Products
	productHandler := NewProductHandler(deps.ProductUC)
	protected.Get("/products", productHandler.List)
	protected.Get("/products/:id", productHandler.GetByID)
	protected.Post("/products", need(rbac.CanManageProducts), productHandler.Create)
	protected.Put("/products/:id", need(rbac.CanManageProducts), productHandler.Update)

	// Clients y precios negociados
	clientHandler := NewClientHandler(deps.ClientUC)
	protected.Get("/clients", clientHandler.List)
	protected.Get("/clients/:id", clientHandler.GetByID)
	protected.Post("/clients", need(rbac.CanManageClients), clientHandler.Create)
	protected.Put("/clients/:id", need(rbac.CanManageClients), clientHandler.Update)
	protected.Get("/clients/:id/prices", clientHandler.ListPrices)
	protected.Post("/clients/:id/prices", need(rbac.CanManageClientPrices), clientHandler.SetPrice)
	protected.Put("/client-prices/:priceId", need(rbac.CanManageClientPrices), clientHandler.UpdatePrice)
	protected.Delete("/client-prices/:priceId", need(rbac.CanManageClientPrices), clientHandler.DeletePrice)

	// Stock
	stockHandler := NewStockHandler(deps.LedgerUC)
	protected.Get("/stock", stockHandler.Report)
	protected.Get("/stock/low", stockHandler.LowStock)
	protected.Get("/stock/movements", stockHandler.ListMovements)
	protected.Get("/stock/products/:id", stockHandler.ProductStock)
	protected.Post("/stock/adjustments", need(rbac.CanAdjustStock), stockHandler.Adjust)

	// Purchases (debts antes de /:id)
	purchaseHandler := NewPurchaseHandler(deps.PurchaseUC)
	managePurchases := need(rbac.CanManagePurchases)
	protected.Get("/purchases/debts", need(rbac.CanManagePurchases, rbac.CanViewReports), purchaseHandler.SupplierDebts)
	protected.Get("/purchases", purchaseHandler.List)
	protected.Get("/purchases/:id", purchaseHandler.Get)
	protected.Post("/purchases", managePurchases, purchaseHandler.Create)
	protected.Post("/purchases/:id/lines", managePurchases, purchaseHandler.AddLine)
	protected.Put("/purchase-lines/:lineId", managePurchases, purchaseHandler.UpdateLine)
	protected.Delete("/purchase-lines/:lineId", managePurchases, purchaseHandler.DeleteLine)
	protected.Post("/purchases/:id/validate", need(rbac.CanManagePurchases, rbac.CanManageStock), purchaseHandler.Validate)
	protected.Post("/purchases/:id/payments", need(rbac.CanManagePayments), purchaseHandler.AddPayment)
	protected.Delete("/purchase-payments/:paymentId", need(rbac.CanManagePayments), purchaseHandler.RemovePayment)

	// Containers y sesiones de descarga
	containerHandler := NewContainerHandler(deps.ContainerUC)
	manageContainers := need(rbac.CanManageContainers)
	protected.Get("/containers", containerHandler.List)
	protected.Get("/containers/:id", containerHandler.Get)
	protected.Post("/containers", manageContainers, containerHandler.Create)
	protected.Post("/containers/:id/manifest", manageContainers, containerHandler.AddManifestLine)
	protected.Post("/containers/:id/received", manageContainers, containerHandler.AddReceivedLine)
	protected.Put("/received-lines/:lineId", manageContainers, containerHandler.UpdateReceivedLine)
	protected.Post("/containers/:id/validate", need(rbac.CanValidateContainers), containerHandler.Validate)
	protected.Post("/containers/:id/session", manageContainers, containerHandler.CreateSession)
	protected.Get("/unloading-sessions/:sessionId/events", containerHandler.Events)
	protected.Patch("/unloading-sessions/:sessionId", manageContainers, containerHandler.EditSession)
	protected.Post("/unloading-sessions/:sessionId/start", manageContainers, containerHandler.Start())
	protected.Post("/unloading-sessions/:sessionId/pause", manageContainers, containerHandler.Pause())
	protected.Post("/unloading-sessions/:sessionId/resume", manageContainers, containerHandler.Resume())
	protected.Post("/unloading-sessions/:sessionId/end", manageContainers, containerHandler.End())

	// Invoices
	invoiceHandler := NewInvoiceHandler(deps.InvoiceUC, deps.AcceptanceUC)
	createInvoices := need(rbac.CanCreateInvoices)
	validateInvoices := need(rbac.CanValidateInvoices)
	payments := need(rbac.CanManagePayments)
	protected.Get("/invoices", invoiceHandler.List)
	protected.Get("/invoices/:id", invoiceHandler.GetByID)
	protected.Get("/invoices/:id/pdf", invoiceHandler.PDF)
	protected.Post("/invoices", createInvoices, invoiceHandler.Create)
	protected.Post("/invoices/:id/lines", createInvoices, invoiceHandler.AddLine)
	protected.Put("/invoice-lines/:lineId", createInvoices, invoiceHandler.UpdateLine)
	protected.Delete("/invoice-lines/:lineId", createInvoices, invoiceHandler.DeleteLine)
	protected.Post("/invoices/:id/validate", validateInvoices, invoiceHandler.Validate)
	protected.Post("/invoices/:id/cancel", need(rbac.CanDeleteInvoices), invoiceHandler.Cancel)
	protected.Post("/invoices/:id/credit-note", validateInvoices, invoiceHandler.CreditNote)
	protected.Post("/invoices/:id/acceptance-token", validateInvoices, invoiceHandler.IssueToken)
	protected.Post("/invoices/:id/contest", validateInvoices, invoiceHandler.Contest)
	protected.Post("/invoices/:id/contestation/resolve", validateInvoices, invoiceHandler.ResolveContestation)
	protected.Post("/invoices/:id/payments", payments, invoiceHandler.AddPayment)
	protected.Delete("/invoice-payments/:paymentId", payments, invoiceHandler.RemovePayment)
	protected.Post("/invoices/:id/postpone-reminder", payments, invoiceHandler.PostponeReminder)

	// Reportes y auditoría
	dashboardHandler := NewDashboardHandler(deps.DashboardUC)
	reports := need(rbac.CanViewReports)
	protected.Get("/dashboard/summary", reports, dashboardHandler.GetSummary)
	protected.Get("/reports/stock-value", reports, dashboardHandler.StockValue)
	auditHandler := NewAuditHandler(deps.AuditUC)
	protected.Get("/audit-logs", need(rbac.CanViewReports, rbac.CanExportData), auditHandler.List)

	// Administración
	userHandler := NewUserHandler(deps.UserUC)
	manageUsers := need(rbac.CanManageUsers)
	protected.Get("/users", manageUsers, userHandler.List)
	protected.Post("/users", manageUsers, userHandler.Create)
	protected.Put("/users/:id", manageUsers, userHandler.Update)
	companyHandler := NewCompanyHandler(deps.SettingsUC)
	protected.Get("/settings/company", companyHandler.Get)
	protected.Put("/settings/company", need(rbac.CanManageCompanySettings), companyHandler.Update)
}
