package billing

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/gsa-backend/internal/application/audit"
	"github.com/jhoicas/gsa-backend/internal/domain"
	"github.com/jhoicas/gsa-backend/internal/domain/entity"
	"github.com/jhoicas/gsa-backend/internal/domain/repository"
)

// DefaultTokenTTL vigencia de un enlace de aceptación.
const DefaultTokenTTL = 14 * 24 * time.Hour

// AcceptanceUseCase enlaces públicos de un solo uso para que el cliente acepte o conteste una factura.
type AcceptanceUseCase struct {
	txRunner repository.TxRunner
	repos    repository.Repositories
	docs     *DocumentService
	log      zerolog.Logger
	ttl      time.Duration
	baseURL  string
	now      func() time.Time
}

// NewAcceptanceUseCase construye el caso de uso. baseURL es la URL pública del frontend.
func NewAcceptanceUseCase(
	txRunner repository.TxRunner,
	repos repository.Repositories,
	docs *DocumentService,
	ttl time.Duration,
	baseURL string,
	log zerolog.Logger,
) *AcceptanceUseCase {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &AcceptanceUseCase{
		txRunner: txRunner,
		repos:    repos,
		docs:     docs,
		log:      log,
		ttl:      ttl,
		baseURL:  strings.TrimRight(baseURL, "/"),
		now:      time.Now,
	}
}

// IssuedToken token bruto (solo se conoce en este momento) y su enlace.
type IssuedToken struct {
	Token     string
	TokenID   string
	ExpiresAt time.Time
	URL       string
}

// HashToken sha256 hex del token bruto; es lo único que se persiste.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func newRawToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Issue genera un enlace de aceptación para una factura validada. ttl <= 0 usa la vigencia configurada.
func (uc *AcceptanceUseCase) Issue(ctx context.Context, invoiceID string, ttl time.Duration, actor audit.Actor) (*IssuedToken, error) {
	inv, err := loadInvoice(ctx, uc.repos.Invoices, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv.Status != entity.InvoiceStatusValidated {
		return nil, domain.ErrInvoiceNotValidated
	}
	// El PDF que verá el cliente debe existir antes de enviar el enlace.
	if _, err := uc.docs.Stored(ctx, inv); err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = uc.ttl
	}
	raw, err := newRawToken()
	if err != nil {
		return nil, err
	}

	now := uc.now()
	tok := &entity.AcceptanceToken{
		ID:        uuid.New().String(),
		InvoiceID: inv.ID,
		TokenHash: HashToken(raw),
		ExpiresAt: now.Add(ttl),
		CreatedBy: actor.UserRef(),
		CreatedAt: now,
	}
	err = uc.txRunner.Run(ctx, "acceptance.issue", func(ctx context.Context, r repository.Repositories) error {
		locked, err := r.Invoices.GetForUpdate(ctx, inv.ID)
		if err != nil {
			return err
		}
		if locked == nil {
			return domain.ErrNotFound
		}
		if locked.Status != entity.InvoiceStatusValidated {
			return domain.ErrInvoiceNotValidated
		}
		return r.Acceptance.CreateToken(ctx, tok)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("invoice_id", inv.ID).Str("token_id", tok.ID).Time("expires_at", tok.ExpiresAt).Msg("enlace de aceptación emitido")
	return &IssuedToken{
		Token:     raw,
		TokenID:   tok.ID,
		ExpiresAt: tok.ExpiresAt,
		URL:       uc.baseURL + "/accept/invoice/" + raw,
	}, nil
}

// PublicView resumen de factura visible con el enlace.
type PublicView struct {
	Invoice    *entity.Invoice
	Client     *entity.Client
	Lines      []*entity.InvoiceLine
	Products   map[string]*entity.Product
	Acceptance *entity.InvoiceAcceptance
	ExpiresAt  time.Time
	Used       bool
}

// validToken busca el token por hash y exige que no haya vencido.
func (uc *AcceptanceUseCase) validToken(ctx context.Context, repo repository.AcceptanceRepository, raw string, lock bool) (*entity.AcceptanceToken, error) {
	if raw == "" {
		return nil, domain.ErrTokenNotFound
	}
	get := repo.GetTokenByHash
	if lock {
		get = repo.GetTokenByHashForUpdate
	}
	tok, err := get(ctx, HashToken(raw))
	if err != nil {
		return nil, err
	}
	if tok == nil {
		return nil, domain.ErrTokenNotFound
	}
	if tok.Expired(uc.now()) {
		return nil, domain.ErrTokenExpired
	}
	return tok, nil
}

// View resumen público. Solo facturas VALIDATED o ACCEPTED.
func (uc *AcceptanceUseCase) View(ctx context.Context, raw string) (*PublicView, error) {
	tok, err := uc.validToken(ctx, uc.repos.Acceptance, raw, false)
	if err != nil {
		return nil, err
	}
	inv, err := loadInvoice(ctx, uc.repos.Invoices, tok.InvoiceID)
	if err != nil {
		return nil, err
	}
	if inv.Status != entity.InvoiceStatusValidated && inv.Status != entity.InvoiceStatusAccepted {
		return nil, domain.ErrInvoiceNotValidated
	}
	v := &PublicView{Invoice: inv, ExpiresAt: tok.ExpiresAt, Used: tok.UsedAt != nil}
	if v.Client, err = uc.repos.Clients.GetByID(ctx, inv.ClientID); err != nil {
		return nil, err
	}
	if v.Lines, err = uc.repos.Invoices.ListLines(ctx, inv.ID); err != nil {
		return nil, err
	}
	if v.Products, err = uc.repos.Products.GetByIDs(ctx, productIDs(v.Lines)); err != nil {
		return nil, err
	}
	if v.Acceptance, err = uc.repos.Acceptance.GetAcceptance(ctx, inv.ID); err != nil {
		return nil, err
	}
	return v, nil
}

// AcceptInput datos del cliente que acepta.
type AcceptInput struct {
	Name      string
	IP        string
	UserAgent string
}

// Accept registra la aceptación: guarda el hash del PDF servido, consume el token y pasa la
// factura a ACCEPTED en una sola tx con la fila del token bloqueada.
func (uc *AcceptanceUseCase) Accept(ctx context.Context, raw string, in AcceptInput) (*entity.InvoiceAcceptance, error) {
	// Lectura previa para calcular el hash fuera de la tx; se vuelve a verificar con bloqueo.
	tok, err := uc.validToken(ctx, uc.repos.Acceptance, raw, false)
	if err != nil {
		return nil, err
	}
	inv, err := loadInvoice(ctx, uc.repos.Invoices, tok.InvoiceID)
	if err != nil {
		return nil, err
	}
	pdf, err := uc.docs.Stored(ctx, inv)
	if err != nil {
		return nil, err
	}
	pdfHash := sha256.Sum256(pdf)

	var acc *entity.InvoiceAcceptance
	err = uc.txRunner.Run(ctx, "acceptance.accept", func(ctx context.Context, r repository.Repositories) error {
		tok, err := uc.validToken(ctx, r.Acceptance, raw, true)
		if err != nil {
			return err
		}
		if tok.UsedAt != nil {
			return domain.ErrTokenAlreadyUsed
		}
		inv, err := r.Invoices.GetForUpdate(ctx, tok.InvoiceID)
		if err != nil {
			return err
		}
		if inv == nil {
			return domain.ErrNotFound
		}
		if inv.Status != entity.InvoiceStatusValidated {
			return domain.ErrInvoiceNotValidated
		}

		now := uc.now()
		acc = &entity.InvoiceAcceptance{
			ID:          uuid.New().String(),
			InvoiceID:   inv.ID,
			AcceptedAt:  now,
			IPAddress:   in.IP,
			UserAgent:   in.UserAgent,
			PDFHash:     hex.EncodeToString(pdfHash[:]),
			TextVersion: entity.AcceptanceTextVersion,
		}
		if name := strings.TrimSpace(in.Name); name != "" {
			acc.AcceptedName = &name
		}
		if err := r.Acceptance.CreateAcceptance(ctx, acc); err != nil {
			return err
		}
		if err := r.Acceptance.MarkTokenUsed(ctx, tok.ID, now); err != nil {
			return err
		}
		before := *inv
		inv.Status = entity.InvoiceStatusAccepted
		inv.UpdatedAt = now
		if err := r.Invoices.Update(ctx, inv); err != nil {
			return err
		}
		name := "Non renseigné"
		if acc.AcceptedName != nil {
			name = *acc.AcceptedName
		}
		audit.NewRecorder(r.Audit, uc.log).Record(ctx, audit.Entry{
			Target: inv,
			Action: entity.AuditAcceptedByClient,
			Before: before,
			After:  inv,
			Reason: "Acceptée via token. IP: " + in.IP + ", Name: " + name,
			Actor:  audit.Actor{IP: in.IP, UserAgent: in.UserAgent},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("invoice_id", acc.InvoiceID).Str("ip", in.IP).Msg("factura aceptada por el cliente")
	return acc, nil
}

// Contest registra la contestación del cliente a través del enlace.
func (uc *AcceptanceUseCase) Contest(ctx context.Context, raw string, in ContestInput) (*entity.InvoiceContestation, error) {
	var c *entity.InvoiceContestation
	err := uc.txRunner.Run(ctx, "acceptance.contest", func(ctx context.Context, r repository.Repositories) error {
		tok, err := uc.validToken(ctx, r.Acceptance, raw, true)
		if err != nil {
			return err
		}
		inv, err := r.Invoices.GetForUpdate(ctx, tok.InvoiceID)
		if err != nil {
			return err
		}
		if inv == nil {
			return domain.ErrNotFound
		}
		c, err = contestLocked(ctx, r, inv, in, audit.Actor{IP: in.IP, UserAgent: in.UserAgent}, uc.now(), uc.log)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("invoice_id", c.InvoiceID).Str("ip", in.IP).Msg("factura contestada por el cliente")
	return c, nil
}

// PDF devuelve el PDF de una factura VALIDATED o ACCEPTED accesible con el enlace.
func (uc *AcceptanceUseCase) PDF(ctx context.Context, raw string) ([]byte, *entity.Invoice, error) {
	tok, err := uc.validToken(ctx, uc.repos.Acceptance, raw, false)
	if err != nil {
		return nil, nil, err
	}
	inv, err := loadInvoice(ctx, uc.repos.Invoices, tok.InvoiceID)
	if err != nil {
		return nil, nil, err
	}
	if inv.Status != entity.InvoiceStatusValidated && inv.Status != entity.InvoiceStatusAccepted {
		return nil, nil, domain.ErrInvoiceNotValidated
	}
	pdf, err := uc.docs.Stored(ctx, inv)
	if err != nil {
		return nil, nil, err
	}
	return pdf, inv, nil
}
