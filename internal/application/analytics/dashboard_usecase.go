// Package analytics contiene el dashboard de ventas y el valor del stock.
package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/gsa-backend/internal/application/dto"
	ledger "github.com/jhoicas/gsa-backend/internal/domain/inventory"
	"github.com/jhoicas/gsa-backend/internal/domain/entity"
	"github.com/jhoicas/gsa-backend/internal/domain/repository"
)

const dashboardTopProducts = 5 // productos en el widget del dashboard

// DashboardUseCase genera el resumen del día y del mes en curso.
type DashboardUseCase struct {
	analyticsRepo repository.AnalyticsRepository
	products      repository.ProductRepository
	prices        repository.PriceRepository
	movements     repository.StockMovementRepository
	now           func() time.Time
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(analyticsRepo repository.AnalyticsRepository, repos repository.Repositories) *DashboardUseCase {
	return &DashboardUseCase{
		analyticsRepo: analyticsRepo,
		products:      repos.Products,
		prices:        repos.Prices,
		movements:     repos.Movements,
		now:           time.Now,
	}
}

// GetSummary construye el DashboardSummaryDTO.
//
// Cuatro consultas en paralelo:
//  1. GetSalesMetrics(hoy)
//  2. GetSalesMetrics(mes)
//  3. GetTopProducts(mes, top 5)
//  4. GetUnpaid
//
// El stock bajo y los recordatorios pendientes se calculan después.
func (uc *DashboardUseCase) GetSummary(ctx context.Context) (*dto.DashboardSummaryDTO, error) {
	now := uc.now()

	// ── Rangos de fecha ────────────────────────────────────────────────────────
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	todayEnd := todayStart.Add(24*time.Hour - time.Nanosecond)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	// ── Goroutines para paralelizar las consultas ─────────────────────────────
	type metricsResult struct {
		m   repository.SalesMetrics
		err error
	}
	type topResult struct {
		items []repository.ProductSales
		err   error
	}

	todayCh := make(chan metricsResult, 1)
	monthCh := make(chan metricsResult, 1)
	unpaidCh := make(chan metricsResult, 1)
	topCh := make(chan topResult, 1)

	go func() {
		m, err := uc.analyticsRepo.GetSalesMetrics(ctx, todayStart, todayEnd)
		todayCh <- metricsResult{m, err}
	}()
	go func() {
		m, err := uc.analyticsRepo.GetSalesMetrics(ctx, monthStart, todayEnd)
		monthCh <- metricsResult{m, err}
	}()
	go func() {
		m, err := uc.analyticsRepo.GetUnpaid(ctx)
		unpaidCh <- metricsResult{m, err}
	}()
	go func() {
		items, err := uc.analyticsRepo.GetTopProducts(ctx, monthStart, todayEnd, dashboardTopProducts)
		topCh <- topResult{items, err}
	}()

	today := <-todayCh
	month := <-monthCh
	unpaid := <-unpaidCh
	top := <-topCh

	if today.err != nil {
		return nil, fmt.Errorf("dashboard: métricas de hoy: %w", today.err)
	}
	if month.err != nil {
		return nil, fmt.Errorf("dashboard: métricas del mes: %w", month.err)
	}
	if unpaid.err != nil {
		return nil, fmt.Errorf("dashboard: saldo pendiente: %w", unpaid.err)
	}
	if top.err != nil {
		return nil, fmt.Errorf("dashboard: top productos: %w", top.err)
	}

	lowStock, err := uc.countLowStock(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard: stock bajo: %w", err)
	}
	reminders, err := uc.analyticsRepo.CountDueReminders(ctx, todayStart)
	if err != nil {
		return nil, fmt.Errorf("dashboard: recordatorios: %w", err)
	}

	topProducts := make([]dto.TopProductDTO, 0, len(top.items))
	for _, p := range top.items {
		topProducts = append(topProducts, dto.TopProductDTO{
			ProductID:    p.ProductID,
			ProductName:  p.ProductName,
			QuantitySold: p.QuantitySold,
			TotalRevenue: p.TotalRevenue.Round(2),
		})
	}

	return &dto.DashboardSummaryDTO{
		TodaySales:       today.m.Revenue.Round(2),
		MonthlySales:     month.m.Revenue.Round(2),
		MonthlyInvoices:  month.m.Invoices,
		TotalUnpaid:      unpaid.m.Revenue.Round(2),
		UnpaidInvoices:   unpaid.m.Invoices,
		LowStockProducts: lowStock,
		PendingReminders: reminders,
		TopProducts:      topProducts,
		DateLabel:        now.Format("2006-01"),
	}, nil
}

func (uc *DashboardUseCase) countLowStock(ctx context.Context) (int, error) {
	products, err := uc.products.List(ctx, repository.ProductFilter{ActiveOnly: true})
	if err != nil {
		return 0, err
	}
	sums, err := uc.movements.SumAll(ctx, nil)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, p := range products {
		threshold := p.ReorderThreshold
		if threshold <= 0 {
			threshold = entity.DefaultReorderThreshold
		}
		if ledger.IsLowStock(sums[p.ID], threshold) {
			n++
		}
	}
	return n, nil
}

// StockValue valor del stock (stock × precio base) al final del día asOf.
// Solo cuenta productos activos con stock positivo y precio base definido.
func (uc *DashboardUseCase) StockValue(ctx context.Context, asOf time.Time) (*dto.StockValueDTO, error) {
	y, m, d := asOf.Date()
	until := time.Date(y, m, d, 0, 0, 0, 0, asOf.Location()).AddDate(0, 0, 1).Add(-time.Nanosecond)

	products, err := uc.products.List(ctx, repository.ProductFilter{ActiveOnly: true})
	if err != nil {
		return nil, err
	}
	sums, err := uc.movements.SumAll(ctx, &until)
	if err != nil {
		return nil, err
	}

	out := &dto.StockValueDTO{
		Date:       asOf.Format("2006-01-02"),
		TotalValue: decimal.Zero,
		Details:    []dto.StockValueLineDTO{},
	}
	for _, p := range products {
		stock := sums[p.ID]
		if stock <= 0 {
			continue
		}
		bp, err := uc.prices.GetBasePrice(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		if bp == nil {
			continue
		}
		value := bp.Price.Mul(decimal.NewFromInt(int64(stock))).Round(2)
		out.TotalValue = out.TotalValue.Add(value)
		out.Details = append(out.Details, dto.StockValueLineDTO{
			ProductID:   p.ID,
			ProductName: p.Name,
			Stock:       stock,
			Price:       bp.Price,
			Value:       value,
		})
	}
	sort.Slice(out.Details, func(i, j int) bool { return out.Details[i].Value.GreaterThan(out.Details[j].Value) })
	return out, nil
}
