package entity

import (
	"encoding/json"
	"time"
)

// Auditable lo implementa toda entidad que puede ser objetivo de un registro de auditoría.
type Auditable interface {
	AuditKind() string
	AuditID() string
}

// AuditLog registro de auditoría (solo escritura).
type AuditLog struct {
	ID         string
	EntityType string
	EntityID   string
	Action     string
	Before     json.RawMessage
	After      json.RawMessage
	UserID     *string
	Reason     string
	IPAddress  string
	UserAgent  string
	CreatedAt  time.Time
}

// Acciones de auditoría.
const (
	AuditCreateInvoice         = "CREATE_INVOICE"
	AuditUpdateInvoice         = "UPDATE_INVOICE"
	AuditValidateInvoice       = "VALIDATE_INVOICE"
	AuditCancelInvoice         = "CANCEL_INVOICE"
	AuditCreateCreditNote      = "CREATE_AVOIR"
	AuditContestInvoice        = "CONTEST_INVOICE"
	AuditResolveContestation   = "RESOLVE_CONTESTATION"
	AuditCreatePayment         = "CREATE_PAYMENT"
	AuditDeletePayment         = "DELETE_PAYMENT"
	AuditValidateContainer     = "VALIDATE_CONTAINER"
	AuditValidatePurchase      = "VALIDATE_PURCHASE"
	AuditStockAdjustment       = "STOCK_ADJUSTMENT"
	AuditUpdateCompanySettings = "UPDATE_COMPANY_SETTINGS"
	AuditAcceptedByClient      = "ACCEPTED_BY_CLIENT"
	AuditReminderSent          = "REMINDER_SENT"
	AuditPostponeReminder      = "POSTPONE_REMINDER"
)
