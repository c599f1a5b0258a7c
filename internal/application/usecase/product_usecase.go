package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/gsa-backend/internal/application/dto"
	"github.com/jhoicas/gsa-backend/internal/domain"
	"github.com/jhoicas/gsa-backend/internal/domain/entity"
	"github.com/jhoicas/gsa-backend/internal/domain/repository"
)

// ProductUseCase casos de uso CRUD para productos y su precio base. El stock se maneja vía movimientos.
type ProductUseCase struct {
	txRunner repository.TxRunner
	repos    repository.Repositories
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(txRunner repository.TxRunner, repos repository.Repositories) *ProductUseCase {
	return &ProductUseCase{txRunner: txRunner, repos: repos}
}

// Create crea un producto y, si viene, su precio base.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || !entity.ValidCategory(in.Category) || !entity.ValidSaleUnit(in.SaleUnit) {
		return nil, domain.ErrInvalidInput
	}
	if in.BasePrice != nil && in.BasePrice.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	threshold := in.ReorderThreshold
	if threshold <= 0 {
		threshold = entity.DefaultReorderThreshold
	}
	active := true
	if in.Active != nil {
		active = *in.Active
	}
	now := time.Now()
	product := &entity.Product{
		ID:               uuid.New().String(),
		Name:             name,
		SaleUnit:         in.SaleUnit,
		Category:         in.Category,
		Active:           active,
		ReorderThreshold: threshold,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	err := uc.txRunner.Run(ctx, "product.create", func(ctx context.Context, r repository.Repositories) error {
		if err := r.Products.Create(ctx, product); err != nil {
			return err
		}
		if in.BasePrice == nil {
			return nil
		}
		return r.Prices.SetBasePrice(ctx, &entity.BasePrice{ProductID: product.ID, Price: in.BasePrice.Round(2), UpdatedAt: now})
	})
	if err != nil {
		return nil, err
	}
	return uc.response(ctx, product)
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repos.Products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil
	}
	return uc.response(ctx, product)
}

// Update actualiza un producto. base_price reemplaza el precio base.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	var product *entity.Product
	err := uc.txRunner.Run(ctx, "product.update", func(ctx context.Context, r repository.Repositories) error {
		var err error
		product, err = r.Products.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		if in.Name != nil {
			if strings.TrimSpace(*in.Name) == "" {
				return domain.ErrInvalidInput
			}
			product.Name = strings.TrimSpace(*in.Name)
		}
		if in.SaleUnit != nil {
			if !entity.ValidSaleUnit(*in.SaleUnit) {
				return domain.ErrInvalidInput
			}
			product.SaleUnit = *in.SaleUnit
		}
		if in.Category != nil {
			if !entity.ValidCategory(*in.Category) {
				return domain.ErrInvalidInput
			}
			product.Category = *in.Category
		}
		if in.Active != nil {
			product.Active = *in.Active
		}
		if in.ReorderThreshold != nil {
			product.ReorderThreshold = *in.ReorderThreshold
		}
		now := time.Now()
		product.UpdatedAt = now
		if err := r.Products.Update(ctx, product); err != nil {
			return err
		}
		if in.BasePrice == nil {
			return nil
		}
		if in.BasePrice.IsNegative() {
			return domain.ErrInvalidInput
		}
		return r.Prices.SetBasePrice(ctx, &entity.BasePrice{ProductID: id, Price: in.BasePrice.Round(2), UpdatedAt: now})
	})
	if err != nil {
		return nil, err
	}
	return uc.response(ctx, product)
}

// List lista productos con paginación.
func (uc *ProductUseCase) List(ctx context.Context, f repository.ProductFilter) (*dto.ProductListResponse, error) {
	list, err := uc.repos.Products.List(ctx, f)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		out, err := uc.response(ctx, p)
		if err != nil {
			return nil, err
		}
		items = append(items, *out)
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: f.Limit, Offset: f.Offset},
	}, nil
}

func (uc *ProductUseCase) response(ctx context.Context, p *entity.Product) (*dto.ProductResponse, error) {
	bp, err := uc.repos.Prices.GetBasePrice(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	var price *decimal.Decimal
	if bp != nil {
		price = &bp.Price
	}
	return &dto.ProductResponse{
		ID:               p.ID,
		Name:             p.Name,
		SaleUnit:         p.SaleUnit,
		Category:         p.Category,
		Active:           p.Active,
		ReorderThreshold: p.ReorderThreshold,
		BasePrice:        price,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}, nil
}
