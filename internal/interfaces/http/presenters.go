package http

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/gsa-backend/internal/application/billing"
	"github.com/jhoicas/gsa-backend/internal/application/containers"
	"github.com/jhoicas/gsa-backend/internal/application/dto"
	"github.com/jhoicas/gsa-backend/internal/application/inventory"
	"github.com/jhoicas/gsa-backend/internal/application/purchasing"
	"github.com/jhoicas/gsa-backend/internal/domain/entity"
)

const dateLayout = "2006-01-02"

func formatDate(t time.Time) string { return t.Format(dateLayout) }

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatDate(*t)
	return &s
}

// ── Facturas ──────────────────────────────────────────────────────────────────

func invoiceResponse(inv *entity.Invoice) dto.InvoiceResponse {
	return dto.InvoiceResponse{
		ID:               inv.ID,
		Number:           inv.NumberOrDraft(),
		ClientID:         inv.ClientID,
		Type:             inv.Type,
		Status:           inv.Status,
		TaxIncluded:      inv.TaxIncluded,
		Total:            inv.Total,
		TaxJuice:         inv.TaxJuice,
		TaxBeer:          inv.TaxBeer,
		TotalWithTax:     inv.TotalWithTax,
		Paid:             inv.Paid,
		Remaining:        inv.Remaining,
		NextReminderDate: formatDatePtr(inv.NextReminderDate),
		HasPDF:           inv.PDFPath != "",
		ValidatedAt:      inv.ValidatedAt,
		CreatedAt:        inv.CreatedAt,
	}
}

func invoiceLineResponse(l *entity.InvoiceLine, productName string) dto.InvoiceLineResponse {
	return dto.InvoiceLineResponse{
		ID:               l.ID,
		ProductID:        l.ProductID,
		ProductName:      productName,
		Qty:              l.Qty,
		UnitPriceApplied: l.UnitPriceApplied,
		LineTotal:        l.LineTotal,
	}
}

func paymentResponse(p *entity.Payment) dto.PaymentResponse {
	return dto.PaymentResponse{ID: p.ID, Amount: p.Amount, Mode: p.Mode, Date: formatDate(p.Date)}
}

func acceptanceResponse(a *entity.InvoiceAcceptance) *dto.AcceptanceResponse {
	if a == nil {
		return nil
	}
	return &dto.AcceptanceResponse{
		AcceptedAt:   a.AcceptedAt,
		AcceptedName: a.AcceptedName,
		IPAddress:    a.IPAddress,
		PDFHash:      a.PDFHash,
		TextVersion:  a.TextVersion,
	}
}

func contestationResponse(c *entity.InvoiceContestation) *dto.ContestationResponse {
	if c == nil {
		return nil
	}
	return &dto.ContestationResponse{
		ContestedAt:     c.ContestedAt,
		ContestedName:   c.ContestedName,
		ContestedEmail:  c.ContestedEmail,
		Reason:          c.Reason,
		Resolved:        c.Resolved,
		ResolvedAt:      c.ResolvedAt,
		ResolutionNotes: c.ResolutionNotes,
	}
}

func invoiceViewResponse(v *billing.View) dto.InvoiceResponse {
	out := invoiceResponse(v.Invoice)
	if v.Client != nil {
		out.ClientName = v.Client.DisplayName()
	}
	out.Lines = make([]dto.InvoiceLineResponse, 0, len(v.Lines))
	for _, l := range v.Lines {
		name := ""
		if p := v.Products[l.ProductID]; p != nil {
			name = p.Name
		}
		out.Lines = append(out.Lines, invoiceLineResponse(l, name))
	}
	out.Payments = make([]dto.PaymentResponse, 0, len(v.Payments))
	for _, p := range v.Payments {
		out.Payments = append(out.Payments, paymentResponse(p))
	}
	out.Acceptance = acceptanceResponse(v.Acceptance)
	out.Contestation = contestationResponse(v.Contestation)
	return out
}

func publicInvoiceResponse(v *billing.PublicView, pdfURL string) dto.PublicInvoiceResponse {
	inv := v.Invoice
	out := dto.PublicInvoiceResponse{
		InvoiceNumber:  inv.NumberOrDraft(),
		Total:          inv.TotalWithTax,
		TotalHT:        inv.Total,
		TaxJuice:       inv.TaxJuice,
		TaxBeer:        inv.TaxBeer,
		Paid:           inv.Paid,
		Remaining:      inv.Remaining,
		Status:         inv.Status,
		Accepted:       v.Acceptance != nil,
		ExpiresAt:      v.ExpiresAt,
		PDFDownloadURL: pdfURL,
		Lines:          make([]dto.InvoiceLineResponse, 0, len(v.Lines)),
	}
	if v.Client != nil {
		out.ClientName = v.Client.DisplayName()
	}
	if v.Acceptance != nil {
		at := v.Acceptance.AcceptedAt
		out.AcceptedAt = &at
		out.AcceptedName = v.Acceptance.AcceptedName
	}
	for _, l := range v.Lines {
		name := ""
		if p := v.Products[l.ProductID]; p != nil {
			name = p.Name
		}
		out.Lines = append(out.Lines, invoiceLineResponse(l, name))
	}
	return out
}

// ── Compras ───────────────────────────────────────────────────────────────────

func purchaseResponse(v *purchasing.View) dto.PurchaseResponse {
	p := v.Purchase
	out := dto.PurchaseResponse{
		ID:           p.ID,
		SupplierID:   p.SupplierID,
		PurchaseDate: formatDate(p.PurchaseDate),
		Reference:    p.Reference,
		Status:       p.Status,
		Total:        v.Totals.Total,
		Paid:         v.Totals.Paid,
		Remaining:    v.Totals.Remaining,
		ValidatedAt:  p.ValidatedAt,
		Lines:        make([]dto.PurchaseLineResponse, 0, len(v.Lines)),
		Payments:     make([]dto.PurchasePaymentResponse, 0, len(v.Payments)),
		CreatedAt:    p.CreatedAt,
	}
	for _, l := range v.Lines {
		out.Lines = append(out.Lines, purchaseLineResponse(l))
	}
	for _, pay := range v.Payments {
		out.Payments = append(out.Payments, purchasePaymentResponse(pay))
	}
	return out
}

func purchaseLineResponse(l *entity.PurchaseLine) dto.PurchaseLineResponse {
	return dto.PurchaseLineResponse{
		ID:        l.ID,
		ProductID: l.ProductID,
		Qty:       l.Qty,
		UnitPrice: l.UnitPrice,
		LineTotal: l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Qty))).Round(2),
	}
}

func purchasePaymentResponse(p *entity.PurchasePayment) dto.PurchasePaymentResponse {
	return dto.PurchasePaymentResponse{
		ID:        p.ID,
		Amount:    p.Amount,
		Mode:      p.Mode,
		Date:      formatDate(p.Date),
		Reference: p.Reference,
	}
}

// ── Contenedores ──────────────────────────────────────────────────────────────

func containerResponse(c *entity.Container) dto.ContainerResponse {
	return dto.ContainerResponse{
		ID:               c.ID,
		Ref:              c.Ref,
		EstimatedArrival: formatDate(c.EstimatedArrival),
		ActualArrival:    formatDatePtr(c.ActualArrival),
		Status:           c.Status,
		ValidatedAt:      c.ValidatedAt,
		Manifest:         []dto.ManifestLineResponse{},
		Received:         []dto.ReceivedLineResponse{},
		CreatedAt:        c.CreatedAt,
	}
}

func containerViewResponse(v *containers.View) dto.ContainerResponse {
	out := containerResponse(v.Container)
	for _, m := range v.Manifest {
		out.Manifest = append(out.Manifest, manifestLineResponse(m))
	}
	for _, r := range v.Received {
		out.Received = append(out.Received, receivedLineResponse(r))
	}
	if v.Session != nil {
		s := sessionResponse(v.Session, v.Events)
		out.Session = &s
	}
	return out
}

func manifestLineResponse(m *entity.ManifestLine) dto.ManifestLineResponse {
	return dto.ManifestLineResponse{ID: m.ID, ProductID: m.ProductID, QtyExpected: m.QtyExpected}
}

func receivedLineResponse(r *entity.ReceivedLine) dto.ReceivedLineResponse {
	return dto.ReceivedLineResponse{
		ID:          r.ID,
		ProductID:   r.ProductID,
		QtyReceived: r.QtyReceived,
		Breakage:    r.Breakage,
		Comment:     r.Comment,
	}
}

func sessionResponse(s *entity.UnloadingSession, events []*entity.UnloadingEvent) dto.UnloadingSessionResponse {
	out := dto.UnloadingSessionResponse{
		ID:              s.ID,
		ContainerID:     s.ContainerID,
		CrewSize:        s.CrewSize,
		AllocatedAmount: s.AllocatedAmount,
		StartedAt:       s.StartedAt,
		EndedAt:         s.EndedAt,
	}
	for _, e := range events {
		meta := e.Meta
		if meta == nil {
			meta = map[string]any{}
		}
		out.Events = append(out.Events, dto.UnloadingEventResponse{
			ID:        e.ID,
			Type:      e.Type,
			UserID:    e.UserID,
			Meta:      meta,
			Timestamp: e.Timestamp,
		})
	}
	return out
}

// ── Stock y auditoría ─────────────────────────────────────────────────────────

func movementResponse(m *entity.StockMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:        m.ID,
		ProductID: m.ProductID,
		QtySigned: m.QtySigned,
		Type:      m.Type,
		Reference: m.Reference,
		Reason:    m.Reason,
		CreatedBy: m.CreatedBy,
		CreatedAt: m.CreatedAt,
	}
}

func stockLevelResponse(l inventory.StockLevel) dto.StockLevelResponse {
	return dto.StockLevelResponse{
		ProductID:   l.Product.ID,
		ProductName: l.Product.Name,
		Category:    l.Product.Category,
		Stock:       l.Stock,
		Threshold:   l.Threshold,
		Low:         l.Low,
	}
}

func auditLogResponse(l *entity.AuditLog) dto.AuditLogResponse {
	return dto.AuditLogResponse{
		ID:         l.ID,
		EntityType: l.EntityType,
		EntityID:   l.EntityID,
		Action:     l.Action,
		Before:     l.Before,
		After:      l.After,
		UserID:     l.UserID,
		Reason:     l.Reason,
		IPAddress:  l.IPAddress,
		CreatedAt:  l.CreatedAt,
	}
}
