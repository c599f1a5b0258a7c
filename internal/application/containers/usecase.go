// Package containers implementa la recepción de contenedores: manifiesto, líneas recibidas,
// sesión de descarga y validación (entrada al ledger).
package containers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/gsa-backend/internal/application/audit"
	"github.com/jhoicas/gsa-backend/internal/application/inventory"
	"github.com/jhoicas/gsa-backend/internal/domain"
	"github.com/jhoicas/gsa-backend/internal/domain/entity"
	"github.com/jhoicas/gsa-backend/internal/domain/repository"
)

// UseCase casos de uso de contenedores.
type UseCase struct {
	txRunner repository.TxRunner
	repos    repository.Repositories
	log      zerolog.Logger
	now      func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(txRunner repository.TxRunner, repos repository.Repositories, log zerolog.Logger) *UseCase {
	return &UseCase{txRunner: txRunner, repos: repos, log: log, now: time.Now}
}

// View contenedor con manifiesto, líneas recibidas y sesión de descarga (si existe).
type View struct {
	Container *entity.Container
	Manifest  []*entity.ManifestLine
	Received  []*entity.ReceivedLine
	Session   *entity.UnloadingSession
	Events    []*entity.UnloadingEvent
}

// CreateInput datos de alta de un contenedor.
type CreateInput struct {
	Ref              string
	EstimatedArrival time.Time
}

// Create registra un contenedor PLANNED. La referencia es única.
func (uc *UseCase) Create(ctx context.Context, in CreateInput) (*entity.Container, error) {
	ref := strings.TrimSpace(in.Ref)
	if ref == "" || in.EstimatedArrival.IsZero() {
		return nil, domain.ErrInvalidInput
	}
	now := uc.now()
	c := &entity.Container{
		ID:               uuid.New().String(),
		Ref:              ref,
		EstimatedArrival: in.EstimatedArrival,
		Status:           entity.ContainerStatusPlanned,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := uc.repos.Containers.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Get contenedor con todo su detalle.
func (uc *UseCase) Get(ctx context.Context, id string) (*View, error) {
	c, err := uc.repos.Containers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	v := &View{Container: c}
	if v.Manifest, err = uc.repos.Containers.ListManifest(ctx, id); err != nil {
		return nil, err
	}
	if v.Received, err = uc.repos.Containers.ListReceived(ctx, id); err != nil {
		return nil, err
	}
	if v.Session, err = uc.repos.Unloading.GetSessionByContainer(ctx, id); err != nil {
		return nil, err
	}
	if v.Session != nil {
		if v.Events, err = uc.repos.Unloading.ListEvents(ctx, v.Session.ID); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// List contenedores por estado ("" = todos).
func (uc *UseCase) List(ctx context.Context, status string, limit, offset int) ([]*entity.Container, error) {
	return uc.repos.Containers.List(ctx, status, limit, offset)
}

// openForUpdate bloquea el contenedor y exige que no esté validado.
func openForUpdate(ctx context.Context, r repository.Repositories, id string) (*entity.Container, error) {
	c, err := r.Containers.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	if c.Status == entity.ContainerStatusValidated {
		return nil, domain.ErrContainerValidated
	}
	return c, nil
}

func requireProduct(ctx context.Context, r repository.Repositories, id string) error {
	p, err := r.Products.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return domain.ErrNotFound
	}
	return nil
}

// AddManifestLine agrega la cantidad esperada de un producto.
func (uc *UseCase) AddManifestLine(ctx context.Context, containerID, productID string, qtyExpected int) (*entity.ManifestLine, error) {
	if qtyExpected < 0 {
		return nil, domain.ErrInvalidInput
	}
	var line *entity.ManifestLine
	err := uc.txRunner.Run(ctx, "container.add_manifest_line", func(ctx context.Context, r repository.Repositories) error {
		if _, err := openForUpdate(ctx, r, containerID); err != nil {
			return err
		}
		if err := requireProduct(ctx, r, productID); err != nil {
			return err
		}
		line = &entity.ManifestLine{
			ID:          uuid.New().String(),
			ContainerID: containerID,
			ProductID:   productID,
			QtyExpected: qtyExpected,
			CreatedAt:   uc.now(),
		}
		return r.Containers.AddManifestLine(ctx, line)
	})
	if err != nil {
		return nil, err
	}
	return line, nil
}

// ReceivedInput cantidades constatadas al descargar.
type ReceivedInput struct {
	ProductID   string
	QtyReceived int
	Breakage    int
	Comment     string
}

func (in ReceivedInput) check() error {
	if in.QtyReceived < 0 || in.Breakage < 0 {
		return domain.ErrInvalidInput
	}
	return nil
}

// AddReceivedLine registra lo recibido de un producto. No se compara con el manifiesto.
func (uc *UseCase) AddReceivedLine(ctx context.Context, containerID string, in ReceivedInput) (*entity.ReceivedLine, error) {
	if err := in.check(); err != nil {
		return nil, err
	}
	var line *entity.ReceivedLine
	err := uc.txRunner.Run(ctx, "container.add_received_line", func(ctx context.Context, r repository.Repositories) error {
		if _, err := openForUpdate(ctx, r, containerID); err != nil {
			return err
		}
		if err := requireProduct(ctx, r, in.ProductID); err != nil {
			return err
		}
		now := uc.now()
		line = &entity.ReceivedLine{
			ID:          uuid.New().String(),
			ContainerID: containerID,
			ProductID:   in.ProductID,
			QtyReceived: in.QtyReceived,
			Breakage:    in.Breakage,
			Comment:     in.Comment,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		return r.Containers.AddReceivedLine(ctx, line)
	})
	if err != nil {
		return nil, err
	}
	return line, nil
}

// UpdateReceivedLine corrige cantidades recibidas mientras el contenedor no esté validado.
func (uc *UseCase) UpdateReceivedLine(ctx context.Context, lineID string, in ReceivedInput) (*entity.ReceivedLine, error) {
	if err := in.check(); err != nil {
		return nil, err
	}
	var line *entity.ReceivedLine
	err := uc.txRunner.Run(ctx, "container.update_received_line", func(ctx context.Context, r repository.Repositories) error {
		var err error
		line, err = r.Containers.GetReceivedLine(ctx, lineID)
		if err != nil {
			return err
		}
		if line == nil {
			return domain.ErrNotFound
		}
		if _, err := openForUpdate(ctx, r, line.ContainerID); err != nil {
			return err
		}
		line.QtyReceived = in.QtyReceived
		line.Breakage = in.Breakage
		line.Comment = in.Comment
		line.UpdatedAt = uc.now()
		return r.Containers.UpdateReceivedLine(ctx, line)
	})
	if err != nil {
		return nil, err
	}
	return line, nil
}

// Validate emite una RECEPTION +qty_received por línea recibida con cantidad > 0 y pasa el
// contenedor a VALIDATED. La rotura no genera movimiento: nunca entró al stock.
func (uc *UseCase) Validate(ctx context.Context, id string, actor audit.Actor) (*entity.Container, error) {
	var c *entity.Container
	var emitted int
	err := uc.txRunner.Run(ctx, "container.validate", func(ctx context.Context, r repository.Repositories) error {
		var err error
		c, err = r.Containers.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if c == nil {
			return domain.ErrNotFound
		}
		if c.Status == entity.ContainerStatusValidated {
			return domain.ErrAlreadyValidated
		}
		received, err := r.Containers.ListReceived(ctx, id)
		if err != nil {
			return err
		}
		if len(received) == 0 {
			return domain.ErrNoReceivedLines
		}

		now := uc.now()
		before := *c
		for _, l := range received {
			if l.QtyReceived <= 0 {
				continue
			}
			if _, err := inventory.Record(ctx, r.Movements, inventory.MovementInput{
				ProductID: l.ProductID,
				QtySigned: l.QtyReceived,
				Type:      entity.MovementReception,
				Reference: "CONT-" + c.Ref,
				UserID:    actor.UserID,
			}, now); err != nil {
				return fmt.Errorf("recepción de %s: %w", l.ProductID, err)
			}
			emitted++
		}
		c.Status = entity.ContainerStatusValidated
		c.ValidatedAt = &now
		c.ValidatedBy = actor.UserRef()
		if c.ActualArrival == nil {
			c.ActualArrival = &now
		}
		c.UpdatedAt = now
		if err := r.Containers.Update(ctx, c); err != nil {
			return err
		}
		audit.NewRecorder(r.Audit, uc.log).Record(ctx, audit.Entry{
			Target: c,
			Action: entity.AuditValidateContainer,
			Before: before,
			After:  c,
			Actor:  actor,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("container_id", c.ID).Str("ref", c.Ref).Int("movements", emitted).Msg("contenedor validado")
	return c, nil
}
