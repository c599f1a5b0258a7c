package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/gsa-backend/internal/application/audit"
	"github.com/jhoicas/gsa-backend/internal/application/dto"
	"github.com/jhoicas/gsa-backend/internal/domain"
	"github.com/jhoicas/gsa-backend/internal/domain/entity"
	"github.com/jhoicas/gsa-backend/internal/domain/repository"
)

var maxRate = decimal.NewFromInt(100)

// SettingsUseCase datos de la empresa (singleton) y tasas de TVA.
type SettingsUseCase struct {
	txRunner repository.TxRunner
	repo     repository.SettingsRepository
	log      zerolog.Logger
}

// NewSettingsUseCase construye el caso de uso.
func NewSettingsUseCase(txRunner repository.TxRunner, repo repository.SettingsRepository, log zerolog.Logger) *SettingsUseCase {
	return &SettingsUseCase{txRunner: txRunner, repo: repo, log: log}
}

// Get devuelve la configuración guardada o los valores por defecto.
func (uc *SettingsUseCase) Get(ctx context.Context) (*dto.CompanySettingsResponse, error) {
	s, err := uc.repo.Get(ctx)
	if err != nil {
		return nil, err
	}
	if s == nil {
		d := entity.DefaultCompanySettings()
		s = &d
	}
	return toSettingsResponse(s), nil
}

// Update reemplaza la configuración. Las tasas aplican a los recálculos siguientes,
// no a facturas ya emitidas.
func (uc *SettingsUseCase) Update(ctx context.Context, in dto.CompanySettingsRequest, actor audit.Actor) (*dto.CompanySettingsResponse, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, domain.ErrInvalidInput
	}
	for _, r := range []decimal.Decimal{in.RateJuice, in.RateBeer} {
		if r.IsNegative() || r.GreaterThan(maxRate) {
			return nil, domain.ErrInvalidInput
		}
	}
	var saved *entity.CompanySettings
	err := uc.txRunner.Run(ctx, "settings.update", func(ctx context.Context, r repository.Repositories) error {
		before, err := r.Settings.Get(ctx)
		if err != nil {
			return err
		}
		saved = &entity.CompanySettings{
			Name:           strings.TrimSpace(in.Name),
			Address:        in.Address,
			City:           in.City,
			PostalCode:     in.PostalCode,
			Country:        in.Country,
			Phone:          in.Phone,
			Email:          in.Email,
			Website:        in.Website,
			BankAccount:    in.BankAccount,
			RateJuice:      in.RateJuice.Round(2),
			RateBeer:       in.RateBeer.Round(2),
			InvoiceMessage: in.InvoiceMessage,
			UpdatedAt:      time.Now(),
		}
		if err := r.Settings.Save(ctx, saved); err != nil {
			return err
		}
		audit.NewRecorder(r.Audit, uc.log).Record(ctx, audit.Entry{
			Target: saved,
			Action: entity.AuditUpdateCompanySettings,
			Before: before,
			After:  saved,
			Actor:  actor,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toSettingsResponse(saved), nil
}

func toSettingsResponse(s *entity.CompanySettings) *dto.CompanySettingsResponse {
	return &dto.CompanySettingsResponse{
		Name:           s.Name,
		Address:        s.Address,
		City:           s.City,
		PostalCode:     s.PostalCode,
		Country:        s.Country,
		Phone:          s.Phone,
		Email:          s.Email,
		Website:        s.Website,
		BankAccount:    s.BankAccount,
		RateJuice:      s.RateJuice,
		RateBeer:       s.RateBeer,
		InvoiceMessage: s.InvoiceMessage,
		UpdatedAt:      s.UpdatedAt,
	}
}
