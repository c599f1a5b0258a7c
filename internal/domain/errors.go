package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	// ErrRetryExhausted: la transacción siguió fallando por serialización tras los reintentos.
	ErrRetryExhausted = errors.New("conflicto de concurrencia, reintente la operación")
)

// Ledger de stock.
var (
	ErrReasonRequired = errors.New("la razón es obligatoria para un ajuste")
)

// Compras.
var (
	ErrEmptyPurchase    = errors.New("la compra no tiene líneas")
	ErrAlreadyValidated = errors.New("ya validado")
	ErrPurchaseLocked   = errors.New("la compra validada no se puede modificar")
)

// Contenedores y sesiones de descarga.
var (
	ErrNoReceivedLines       = errors.New("el contenedor no tiene líneas recibidas")
	ErrContainerValidated    = errors.New("el contenedor validado no se puede modificar")
	ErrSessionAlreadyStarted = errors.New("la sesión ya fue iniciada")
	ErrSessionNotStarted     = errors.New("la sesión no ha sido iniciada")
	ErrSessionEnded          = errors.New("la sesión ya terminó")
)

// Facturación.
var (
	ErrEmptyInvoice          = errors.New("la factura no tiene líneas")
	ErrNotDraft              = errors.New("la factura no está en borrador")
	ErrInvoiceLocked         = errors.New("la factura está bloqueada, no se pueden modificar sus líneas")
	ErrInvoiceAccepted       = errors.New("la factura fue aceptada por el cliente y no se puede modificar")
	ErrNoPriceFound          = errors.New("no hay precio definido para el producto")
	ErrInvalidQuantity       = errors.New("la cantidad debe ser mayor o igual a 0.01")
	ErrAlreadyTerminal       = errors.New("la factura ya está anulada o es un avoir")
	ErrNotValidated          = errors.New("solo se puede crear un avoir sobre una factura validada")
	ErrInvalidAmount         = errors.New("el monto debe ser mayor que cero")
	ErrNothingToRemind       = errors.New("la factura no tiene saldo pendiente por recordar")
	ErrNotContested          = errors.New("la factura no está contestada")
	ErrNotAccepted           = errors.New("solo las facturas aceptadas pueden ser contestadas")
	ErrAlreadyContested      = errors.New("la factura ya tiene una contestación abierta")
	ErrContestReasonRequired = errors.New("la razón de la contestación es obligatoria")
)

// Tokens de aceptación.
var (
	ErrTokenNotFound       = errors.New("token no encontrado")
	ErrTokenExpired        = errors.New("el token expiró")
	ErrTokenAlreadyUsed    = errors.New("el token ya fue utilizado")
	ErrInvoiceNotValidated = errors.New("la factura no está validada")
)
