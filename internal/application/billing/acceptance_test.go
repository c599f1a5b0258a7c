package billing

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/gsa-backend/internal/domain"
	"github.com/jhoicas/gsa-backend/internal/domain/entity"
)

func TestIssue_GuardaSoloElHash(t *testing.T) {
	f := newFixture(t)
	f.receive(t, "flag", 10)
	inv := f.validated(t, "cli", "flag", "1")

	tok, err := f.acceptance.Issue(f.ctx, inv.ID, 0, f.actor)
	require.NoError(t, err)

	assert.Len(t, tok.Token, 43, "32 bytes en base64url sin relleno")
	assert.Equal(t, "https://gsa.example/accept/invoice/"+tok.Token, tok.URL)
	assert.Equal(t, clock.Add(DefaultTokenTTL), tok.ExpiresAt)

	stored, err := f.repos.Acceptance.GetTokenByHash(f.ctx, HashToken(tok.Token))
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.NotEqual(t, tok.Token, stored.TokenHash)
	assert.Len(t, stored.TokenHash, 64)
}

func TestIssue_SoloFacturaValidada(t *testing.T) {
	f := newFixture(t)
	inv := f.draft(t, "cli", "flag", "1")
	_, err := f.acceptance.Issue(f.ctx, inv.ID, 0, f.actor)
	assert.ErrorIs(t, err, domain.ErrInvoiceNotValidated)
}

func TestAccept_TokenDeUnSoloUso(t *testing.T) {
	f := newFixture(t)
	f.receive(t, "flag", 10)
	inv := f.validated(t, "cli", "flag", "1")
	tok, err := f.acceptance.Issue(f.ctx, inv.ID, time.Hour, f.actor)
	require.NoError(t, err)

	acc, err := f.acceptance.Accept(f.ctx, tok.Token, AcceptInput{Name: " Fatou Ndiaye ", IP: "41.82.1.1", UserAgent: "Mozilla"})
	require.NoError(t, err)

	pdf, _, err := f.acceptance.PDF(f.ctx, tok.Token)
	require.NoError(t, err)
	sum := sha256.Sum256(pdf)
	assert.Equal(t, hex.EncodeToString(sum[:]), acc.PDFHash)
	assert.Equal(t, entity.AcceptanceTextVersion, acc.TextVersion)
	require.NotNil(t, acc.AcceptedName)
	assert.Equal(t, "Fatou Ndiaye", *acc.AcceptedName)
	assert.Equal(t, entity.InvoiceStatusAccepted, f.invoice(t, inv.ID).Status)
	assert.Contains(t, f.auditActions(t, inv.ID), entity.AuditAcceptedByClient)

	_, err = f.acceptance.Accept(f.ctx, tok.Token, AcceptInput{})
	assert.ErrorIs(t, err, domain.ErrTokenAlreadyUsed)

	// Un segundo enlace tampoco sirve: la factura ya no está VALIDATED.
	_, err = f.acceptance.Issue(f.ctx, inv.ID, 0, f.actor)
	assert.ErrorIs(t, err, domain.ErrInvoiceNotValidated)
}

func TestAccept_TokenVencido(t *testing.T) {
	f := newFixture(t)
	f.receive(t, "flag", 10)
	inv := f.validated(t, "cli", "flag", "1")
	tok, err := f.acceptance.Issue(f.ctx, inv.ID, time.Hour, f.actor)
	require.NoError(t, err)

	f.acceptance.now = func() time.Time { return clock.Add(time.Hour) }
	_, err = f.acceptance.Accept(f.ctx, tok.Token, AcceptInput{})
	assert.ErrorIs(t, err, domain.ErrTokenExpired)
	_, err = f.acceptance.View(f.ctx, tok.Token)
	assert.ErrorIs(t, err, domain.ErrTokenExpired)
	assert.Equal(t, entity.InvoiceStatusValidated, f.invoice(t, inv.ID).Status)
}

func TestAccept_TokenInexistente(t *testing.T) {
	f := newFixture(t)
	_, err := f.acceptance.Accept(f.ctx, "no-existe", AcceptInput{})
	assert.ErrorIs(t, err, domain.ErrTokenNotFound)
	_, err = f.acceptance.View(f.ctx, "")
	assert.ErrorIs(t, err, domain.ErrTokenNotFound)
}

func TestAccept_FacturaAnuladaTrasEmitirEnlace(t *testing.T) {
	f := newFixture(t)
	f.receive(t, "flag", 10)
	inv := f.validated(t, "cli", "flag", "1")
	tok, err := f.acceptance.Issue(f.ctx, inv.ID, 0, f.actor)
	require.NoError(t, err)
	_, err = f.invoices.Cancel(f.ctx, inv.ID, f.actor)
	require.NoError(t, err)

	_, err = f.acceptance.Accept(f.ctx, tok.Token, AcceptInput{})
	assert.ErrorIs(t, err, domain.ErrInvoiceNotValidated)
	stored, err := f.repos.Acceptance.GetTokenByHash(f.ctx, HashToken(tok.Token))
	require.NoError(t, err)
	assert.Nil(t, stored.UsedAt, "el token no se consume si la aceptación falla")
}

func TestView_ResumenPublico(t *testing.T) {
	f := newFixture(t)
	f.receive(t, "flag", 10)
	inv := f.validated(t, "cli", "flag", "3")
	tok, err := f.acceptance.Issue(f.ctx, inv.ID, 0, f.actor)
	require.NoError(t, err)

	v, err := f.acceptance.View(f.ctx, tok.Token)
	require.NoError(t, err)
	assert.Equal(t, "Chez Fatou", v.Client.DisplayName())
	require.Len(t, v.Lines, 1)
	assert.Equal(t, "Flag 65cl", v.Products["flag"].Name)
	assert.Nil(t, v.Acceptance)
	assert.False(t, v.Used)
	assert.True(t, strings.HasPrefix(*v.Invoice.Number, "GSA-2026-"))
}

func TestContest_PorEnlace(t *testing.T) {
	f := newFixture(t)
	f.receive(t, "flag", 10)
	inv := f.validated(t, "cli", "flag", "1")
	tok, err := f.acceptance.Issue(f.ctx, inv.ID, 0, f.actor)
	require.NoError(t, err)

	_, err = f.acceptance.Contest(f.ctx, tok.Token, ContestInput{Reason: "faltan cajas"})
	assert.ErrorIs(t, err, domain.ErrNotAccepted)

	_, err = f.acceptance.Accept(f.ctx, tok.Token, AcceptInput{})
	require.NoError(t, err)
	c, err := f.acceptance.Contest(f.ctx, tok.Token, ContestInput{Reason: "faltan cajas", Name: "Fatou", IP: "41.82.1.1"})
	require.NoError(t, err)
	assert.Equal(t, "faltan cajas", c.Reason)
	assert.Equal(t, entity.InvoiceStatusContested, f.invoice(t, inv.ID).Status)
	assert.Contains(t, f.auditActions(t, inv.ID), entity.AuditContestInvoice)

	// CONTESTED deja de ser visible por el enlace público.
	_, err = f.acceptance.View(f.ctx, tok.Token)
	assert.ErrorIs(t, err, domain.ErrInvoiceNotValidated)
}
