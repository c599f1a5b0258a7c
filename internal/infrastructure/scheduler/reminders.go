// Package scheduler ejecuta las tareas periódicas (recordatorios de pago) con robfig/cron.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/jhoicas/gsa-backend/internal/application/ports"
)

const reminderLockKey = "reminders:send"

// ReminderSender registra los recordatorios vencidos a la fecha indicada.
type ReminderSender interface {
	SendReminders(ctx context.Context, today time.Time) (int, error)
}

// Scheduler envuelve cron.Cron con un lock para que una sola réplica ejecute cada disparo.
type Scheduler struct {
	cron    *cron.Cron
	lock    ports.JobLock
	sender  ReminderSender
	log     zerolog.Logger
	now     func() time.Time
	lockTTL time.Duration
}

// New construye el scheduler sin arrancarlo.
func New(sender ReminderSender, lock ports.JobLock, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		lock:    lock,
		sender:  sender,
		log:     log,
		now:     time.Now,
		lockTTL: 10 * time.Minute,
	}
}

// ScheduleReminders registra el disparo con una expresión cron estándar de 5 campos.
func (s *Scheduler) ScheduleReminders(spec string) error {
	if _, err := s.cron.AddFunc(spec, func() { s.RunReminders(context.Background()) }); err != nil {
		return fmt.Errorf("scheduler: expresión cron %q inválida: %w", spec, err)
	}
	return nil
}

// RunReminders ejecuta un disparo. Devuelve cuántos recordatorios se registraron (-1 si se omitió).
func (s *Scheduler) RunReminders(ctx context.Context) int {
	release, ok, err := s.lock.TryLock(ctx, reminderLockKey, s.lockTTL)
	if err != nil {
		s.log.Error().Err(err).Msg("recordatorios: no se pudo obtener el lock")
		return -1
	}
	if !ok {
		s.log.Info().Msg("recordatorios: otra instancia está ejecutando, se omite")
		return -1
	}
	defer release()

	start := s.now()
	n, err := s.sender.SendReminders(ctx, start)
	if err != nil {
		s.log.Error().Err(err).Int("enviados", n).Msg("recordatorios: ejecución con errores")
		return n
	}
	s.log.Info().Int("enviados", n).Dur("duracion", time.Since(start)).Msg("recordatorios: ejecución terminada")
	return n
}

// Start arranca cron en segundo plano.
func (s *Scheduler) Start() { s.cron.Start() }

// Stop detiene cron y espera a que terminen los disparos en curso.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
