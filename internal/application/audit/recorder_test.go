package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/gsa-backend/internal/domain/entity"
	"github.com/jhoicas/gsa-backend/internal/domain/repository"
)

type stubAuditRepo struct {
	logs []*entity.AuditLog
	err  error
}

func (s *stubAuditRepo) Insert(_ context.Context, l *entity.AuditLog) error {
	if s.err != nil {
		return s.err
	}
	s.logs = append(s.logs, l)
	return nil
}

func (s *stubAuditRepo) List(_ context.Context, _ repository.AuditFilter) ([]*entity.AuditLog, error) {
	return s.logs, nil
}

func TestRecord_GuardaEntidadYActor(t *testing.T) {
	repo := &stubAuditRepo{}
	rec := NewRecorder(repo, zerolog.Nop())
	inv := &entity.Invoice{ID: "inv-1", Status: entity.InvoiceStatusDraft}

	rec.Record(context.Background(), Entry{
		Target: inv,
		Action: entity.AuditCreateInvoice,
		After:  map[string]string{"status": "DRAFT"},
		Actor:  Actor{UserID: "u-1", IP: "10.0.0.1", UserAgent: "curl"},
	})

	require.Len(t, repo.logs, 1)
	l := repo.logs[0]
	assert.Equal(t, "invoice", l.EntityType)
	assert.Equal(t, "inv-1", l.EntityID)
	assert.Equal(t, entity.AuditCreateInvoice, l.Action)
	assert.Nil(t, l.Before)
	assert.JSONEq(t, `{"status":"DRAFT"}`, string(l.After))
	require.NotNil(t, l.UserID)
	assert.Equal(t, "u-1", *l.UserID)
	assert.Equal(t, "10.0.0.1", l.IPAddress)
}

func TestRecord_ErrorNoSePropaga(t *testing.T) {
	repo := &stubAuditRepo{err: errors.New("tabla audit_logs no existe")}
	rec := NewRecorder(repo, zerolog.Nop())

	assert.NotPanics(t, func() {
		rec.Record(context.Background(), Entry{Target: &entity.Product{ID: "p"}, Action: "X"})
	})
	assert.Empty(t, repo.logs)
}

func TestActorSistemaSinUsuario(t *testing.T) {
	assert.Nil(t, System.UserRef())
}
