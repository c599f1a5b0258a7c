package unloading

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/gsa-backend/internal/domain"
	"github.com/jhoicas/gsa-backend/internal/domain/entity"
)

var t0 = time.Date(2026, 2, 3, 8, 0, 0, 0, time.UTC)

func TestSesion_CicloCompletoConPausasRepetidas(t *testing.T) {
	s := &entity.UnloadingSession{ID: "s1"}
	user := "u1"

	steps := []string{
		entity.UnloadingEventStart,
		entity.UnloadingEventPause,
		entity.UnloadingEventResume,
		entity.UnloadingEventPause,
		entity.UnloadingEventResume,
		entity.UnloadingEventEnd,
	}
	var events []*entity.UnloadingEvent
	for i, typ := range steps {
		ev, err := Apply(s, typ, &user, nil, t0.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err, "paso %d (%s)", i, typ)
		events = append(events, ev)
	}

	assert.Len(t, events, len(steps), "cada transición agrega un evento")
	assert.Equal(t, t0, *s.StartedAt, "solo se guarda el primer inicio")
	assert.Equal(t, t0.Add(5*time.Minute), *s.EndedAt)
	assert.Equal(t, "pause", events[1].Meta["action"])
	assert.Equal(t, &user, events[0].UserID)
}

func TestSesion_StartDosVecesFalla(t *testing.T) {
	s := &entity.UnloadingSession{}
	require.NoError(t, Start(s, t0))
	assert.ErrorIs(t, Start(s, t0), domain.ErrSessionAlreadyStarted)
}

func TestSesion_PausaSinIniciarFalla(t *testing.T) {
	s := &entity.UnloadingSession{}
	_, err := Apply(s, entity.UnloadingEventPause, nil, nil, t0)
	assert.ErrorIs(t, err, domain.ErrSessionNotStarted)
}

func TestSesion_ReanudarTrasFinFalla(t *testing.T) {
	s := &entity.UnloadingSession{}
	require.NoError(t, Start(s, t0))
	require.NoError(t, End(s, t0))
	_, err := Apply(s, entity.UnloadingEventResume, nil, nil, t0)
	assert.ErrorIs(t, err, domain.ErrSessionEnded)
}

func TestSesion_EndSinIniciarYDobleEnd(t *testing.T) {
	s := &entity.UnloadingSession{}
	assert.ErrorIs(t, End(s, t0), domain.ErrSessionNotStarted)
	require.NoError(t, Start(s, t0))
	require.NoError(t, End(s, t0))
	assert.ErrorIs(t, End(s, t0), domain.ErrSessionEnded)
}

func TestSesion_TipoDesconocido(t *testing.T) {
	_, err := Apply(&entity.UnloadingSession{}, "JUMP", nil, nil, t0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestContainerStatusAfter(t *testing.T) {
	assert.Equal(t, entity.ContainerStatusInProgress, ContainerStatusAfter(entity.ContainerStatusPlanned, entity.UnloadingEventStart))
	assert.Equal(t, entity.ContainerStatusUnloaded, ContainerStatusAfter(entity.ContainerStatusInProgress, entity.UnloadingEventEnd))
	assert.Equal(t, "", ContainerStatusAfter(entity.ContainerStatusValidated, entity.UnloadingEventEnd))
	assert.Equal(t, "", ContainerStatusAfter(entity.ContainerStatusPlanned, entity.UnloadingEventPause))
}
