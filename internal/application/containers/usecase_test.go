package containers

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/gsa-backend/internal/application/audit"
	"github.com/jhoicas/gsa-backend/internal/domain"
	"github.com/jhoicas/gsa-backend/internal/domain/entity"
	"github.com/jhoicas/gsa-backend/internal/domain/repository"
	"github.com/jhoicas/gsa-backend/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fixture
// ──────────────────────────────────────────────────────────────────────────────

type fixture struct {
	uc    *UseCase
	repos repository.Repositories
	ctx   context.Context
	actor audit.Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := memory.NewStore()
	repos := st.Repositories()
	f := &fixture{
		uc:    NewUseCase(memory.NewTxRunner(st), repos, zerolog.Nop()),
		repos: repos,
		ctx:   context.Background(),
		actor: audit.Actor{UserID: "u-log"},
	}
	clock := time.Date(2026, 4, 1, 7, 0, 0, 0, time.UTC)
	f.uc.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	require.NoError(t, repos.Products.Create(f.ctx, &entity.Product{ID: "P", Name: "Gazelle 65cl", Category: entity.CategoryBeer, Active: true}))
	return f
}

func (f *fixture) container(t *testing.T, ref string) *entity.Container {
	t.Helper()
	c, err := f.uc.Create(f.ctx, CreateInput{Ref: ref, EstimatedArrival: time.Date(2026, 4, 3, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	return c
}

// ──────────────────────────────────────────────────────────────────────────────
// Validación
// ──────────────────────────────────────────────────────────────────────────────

func TestValidate_EmiteRecibidoSinDescontarRotura(t *testing.T) {
	f := newFixture(t)
	c := f.container(t, "MSKU1234567")
	_, err := f.uc.AddManifestLine(f.ctx, c.ID, "P", 1000)
	require.NoError(t, err)
	_, err = f.uc.AddReceivedLine(f.ctx, c.ID, ReceivedInput{ProductID: "P", QtyReceived: 950, Breakage: 10})
	require.NoError(t, err)

	got, err := f.uc.Validate(f.ctx, c.ID, f.actor)
	require.NoError(t, err)

	assert.Equal(t, entity.ContainerStatusValidated, got.Status)
	stock, err := f.repos.Movements.SumByProduct(f.ctx, "P")
	require.NoError(t, err)
	assert.Equal(t, 950, stock, "la rotura no genera movimiento")

	movs, err := f.repos.Movements.List(f.ctx, repository.MovementFilter{ProductID: "P"})
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, "CONT-MSKU1234567", movs[0].Reference)
	assert.Equal(t, entity.MovementReception, movs[0].Type)
}

func TestValidate_SinLineasRecibidas(t *testing.T) {
	f := newFixture(t)
	c := f.container(t, "C-EMPTY")
	_, err := f.uc.AddManifestLine(f.ctx, c.ID, "P", 10)
	require.NoError(t, err)

	_, err = f.uc.Validate(f.ctx, c.ID, f.actor)
	assert.ErrorIs(t, err, domain.ErrNoReceivedLines)

	v, err := f.uc.Get(f.ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ContainerStatusPlanned, v.Container.Status)
}

func TestValidate_LineaEnCeroSeOmite(t *testing.T) {
	f := newFixture(t)
	c := f.container(t, "C-ZERO")
	_, err := f.uc.AddReceivedLine(f.ctx, c.ID, ReceivedInput{ProductID: "P", QtyReceived: 0, Breakage: 12})
	require.NoError(t, err)

	_, err = f.uc.Validate(f.ctx, c.ID, f.actor)
	require.NoError(t, err)
	stock, _ := f.repos.Movements.SumByProduct(f.ctx, "P")
	assert.Equal(t, 0, stock)
}

func TestValidate_DosVecesYEdicionesBloqueadas(t *testing.T) {
	f := newFixture(t)
	c := f.container(t, "C-TWICE")
	line, err := f.uc.AddReceivedLine(f.ctx, c.ID, ReceivedInput{ProductID: "P", QtyReceived: 5})
	require.NoError(t, err)
	_, err = f.uc.Validate(f.ctx, c.ID, f.actor)
	require.NoError(t, err)

	_, err = f.uc.Validate(f.ctx, c.ID, f.actor)
	assert.ErrorIs(t, err, domain.ErrAlreadyValidated)
	_, err = f.uc.UpdateReceivedLine(f.ctx, line.ID, ReceivedInput{QtyReceived: 50})
	assert.ErrorIs(t, err, domain.ErrContainerValidated)
	_, err = f.uc.AddManifestLine(f.ctx, c.ID, "P", 1)
	assert.ErrorIs(t, err, domain.ErrContainerValidated)

	stock, _ := f.repos.Movements.SumByProduct(f.ctx, "P")
	assert.Equal(t, 5, stock)
}

func TestCreate_ReferenciaDuplicada(t *testing.T) {
	f := newFixture(t)
	f.container(t, "C-DUP")
	_, err := f.uc.Create(f.ctx, CreateInput{Ref: "C-DUP", EstimatedArrival: time.Now()})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

// ──────────────────────────────────────────────────────────────────────────────
// Sesión de descarga
// ──────────────────────────────────────────────────────────────────────────────

func TestSesion_CicloMueveElContenedor(t *testing.T) {
	f := newFixture(t)
	c := f.container(t, "C-SESSION")
	s, err := f.uc.CreateSession(f.ctx, c.ID, SessionInput{CrewSize: 4, AllocatedAmount: decimal.NewFromInt(200)})
	require.NoError(t, err)

	_, err = f.uc.Start(f.ctx, s.ID, f.actor)
	require.NoError(t, err)
	v, _ := f.uc.Get(f.ctx, c.ID)
	assert.Equal(t, entity.ContainerStatusInProgress, v.Container.Status)

	_, err = f.uc.Pause(f.ctx, s.ID, f.actor)
	require.NoError(t, err)
	_, err = f.uc.Resume(f.ctx, s.ID, f.actor)
	require.NoError(t, err)
	crew := 6
	_, err = f.uc.Edit(f.ctx, s.ID, EditInput{CrewSize: &crew}, f.actor)
	require.NoError(t, err)
	ended, err := f.uc.End(f.ctx, s.ID, f.actor)
	require.NoError(t, err)

	assert.Equal(t, 6, ended.CrewSize)
	require.NotNil(t, ended.EndedAt)
	v, _ = f.uc.Get(f.ctx, c.ID)
	assert.Equal(t, entity.ContainerStatusUnloaded, v.Container.Status)

	events, err := f.uc.Events(f.ctx, s.ID)
	require.NoError(t, err)
	types := make([]string, 0, len(events))
	for _, e := range events {
		types = append(types, e.Type)
		require.NotNil(t, e.UserID)
	}
	assert.Equal(t, []string{"START", "PAUSE", "RESUME", "EDIT", "END"}, types)
	assert.Equal(t, 4, events[3].Meta["crew_size_before"])
}

func TestSesion_UnaPorContenedor(t *testing.T) {
	f := newFixture(t)
	c := f.container(t, "C-ONE")
	_, err := f.uc.CreateSession(f.ctx, c.ID, SessionInput{CrewSize: 2})
	require.NoError(t, err)
	_, err = f.uc.CreateSession(f.ctx, c.ID, SessionInput{CrewSize: 3})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestSesion_CuadrillaDeAlMenosUnaPersona(t *testing.T) {
	f := newFixture(t)
	c := f.container(t, "C-CREW")

	_, err := f.uc.CreateSession(f.ctx, c.ID, SessionInput{CrewSize: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.uc.CreateSession(f.ctx, c.ID, SessionInput{CrewSize: -2})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	s, err := f.uc.CreateSession(f.ctx, c.ID, SessionInput{CrewSize: 1})
	require.NoError(t, err)

	zero := 0
	_, err = f.uc.Edit(f.ctx, s.ID, EditInput{CrewSize: &zero}, f.actor)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	events, err := f.uc.Events(f.ctx, s.ID)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestSesion_ErroresDeTransicionNoDejanEvento(t *testing.T) {
	f := newFixture(t)
	c := f.container(t, "C-ERR")
	s, err := f.uc.CreateSession(f.ctx, c.ID, SessionInput{CrewSize: 2})
	require.NoError(t, err)

	_, err = f.uc.Pause(f.ctx, s.ID, f.actor)
	assert.ErrorIs(t, err, domain.ErrSessionNotStarted)
	_, err = f.uc.End(f.ctx, s.ID, f.actor)
	assert.ErrorIs(t, err, domain.ErrSessionNotStarted)

	_, err = f.uc.Start(f.ctx, s.ID, f.actor)
	require.NoError(t, err)
	_, err = f.uc.Start(f.ctx, s.ID, f.actor)
	assert.ErrorIs(t, err, domain.ErrSessionAlreadyStarted)

	events, err := f.uc.Events(f.ctx, s.ID)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}
