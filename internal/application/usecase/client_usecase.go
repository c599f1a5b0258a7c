package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/gsa-backend/internal/application/dto"
	"github.com/jhoicas/gsa-backend/internal/domain"
	"github.com/jhoicas/gsa-backend/internal/domain/entity"
	"github.com/jhoicas/gsa-backend/internal/domain/repository"
)

// ClientUseCase CRUD de clientes (también usados como proveedores) y sus precios negociados.
type ClientUseCase struct {
	clients  repository.ClientRepository
	prices   repository.PriceRepository
	products repository.ProductRepository
}

// NewClientUseCase construye el caso de uso.
func NewClientUseCase(clients repository.ClientRepository, prices repository.PriceRepository, products repository.ProductRepository) *ClientUseCase {
	return &ClientUseCase{clients: clients, prices: prices, products: products}
}

// Create crea un cliente. Requiere empresa o apellido.
func (uc *ClientUseCase) Create(ctx context.Context, in dto.CreateClientRequest) (*dto.ClientResponse, error) {
	if strings.TrimSpace(in.Company) == "" && strings.TrimSpace(in.LastName) == "" {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	client := &entity.Client{
		ID:         uuid.New().String(),
		LastName:   strings.TrimSpace(in.LastName),
		FirstName:  strings.TrimSpace(in.FirstName),
		Company:    strings.TrimSpace(in.Company),
		Email:      strings.TrimSpace(in.Email),
		Phone:      in.Phone,
		Address:    in.Address,
		PostalCode: in.PostalCode,
		City:       in.City,
		Country:    in.Country,
		Siret:      in.Siret,
		VATNumber:  in.VATNumber,
		Notes:      in.Notes,
		Active:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := uc.clients.Create(ctx, client); err != nil {
		return nil, err
	}
	return toClientResponse(client), nil
}

// GetByID obtiene un cliente por ID.
func (uc *ClientUseCase) GetByID(ctx context.Context, id string) (*dto.ClientResponse, error) {
	client, err := uc.clients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, nil
	}
	return toClientResponse(client), nil
}

// Update aplica los campos presentes.
func (uc *ClientUseCase) Update(ctx context.Context, id string, in dto.UpdateClientRequest) (*dto.ClientResponse, error) {
	client, err := uc.clients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, domain.ErrNotFound
	}
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	set(&client.LastName, in.LastName)
	set(&client.FirstName, in.FirstName)
	set(&client.Company, in.Company)
	set(&client.Email, in.Email)
	set(&client.Phone, in.Phone)
	set(&client.Address, in.Address)
	set(&client.PostalCode, in.PostalCode)
	set(&client.City, in.City)
	set(&client.Country, in.Country)
	set(&client.Siret, in.Siret)
	set(&client.VATNumber, in.VATNumber)
	set(&client.Notes, in.Notes)
	if in.Active != nil {
		client.Active = *in.Active
	}
	if client.Company == "" && client.LastName == "" {
		return nil, domain.ErrInvalidInput
	}
	client.UpdatedAt = time.Now()
	if err := uc.clients.Update(ctx, client); err != nil {
		return nil, err
	}
	return toClientResponse(client), nil
}

// List lista clientes con filtro y paginación.
func (uc *ClientUseCase) List(ctx context.Context, f repository.ClientFilter) (*dto.ClientListResponse, error) {
	list, err := uc.clients.List(ctx, f)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ClientResponse, 0, len(list))
	for _, c := range list {
		items = append(items, *toClientResponse(c))
	}
	return &dto.ClientListResponse{Items: items, Page: dto.PageResponse{Limit: f.Limit, Offset: f.Offset}}, nil
}

// SetPrice crea el precio negociado de un producto para el cliente. Uno por par → ErrDuplicate.
func (uc *ClientUseCase) SetPrice(ctx context.Context, clientID string, in dto.ClientPriceRequest) (*dto.ClientPriceResponse, error) {
	if in.Price.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	client, err := uc.clients.GetByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	product, err := uc.products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if client == nil || product == nil {
		return nil, domain.ErrNotFound
	}
	now := time.Now()
	cp := &entity.ClientPrice{
		ID:        uuid.New().String(),
		ClientID:  clientID,
		ProductID: in.ProductID,
		Price:     in.Price.Round(2),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.prices.CreateClientPrice(ctx, cp); err != nil {
		return nil, err
	}
	return toClientPriceResponse(cp, product.Name), nil
}

// UpdatePrice cambia un precio negociado. Las líneas ya creadas conservan su precio.
func (uc *ClientUseCase) UpdatePrice(ctx context.Context, priceID string, in dto.ClientPriceRequest) (*dto.ClientPriceResponse, error) {
	if in.Price.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	cp, err := uc.prices.GetClientPriceByID(ctx, priceID)
	if err != nil {
		return nil, err
	}
	if cp == nil {
		return nil, domain.ErrNotFound
	}
	cp.Price = in.Price.Round(2)
	cp.UpdatedAt = time.Now()
	if err := uc.prices.UpdateClientPrice(ctx, cp); err != nil {
		return nil, err
	}
	return toClientPriceResponse(cp, ""), nil
}

// DeletePrice elimina un precio negociado; el cliente vuelve al precio base.
func (uc *ClientUseCase) DeletePrice(ctx context.Context, priceID string) error {
	cp, err := uc.prices.GetClientPriceByID(ctx, priceID)
	if err != nil {
		return err
	}
	if cp == nil {
		return domain.ErrNotFound
	}
	return uc.prices.DeleteClientPrice(ctx, priceID)
}

// ListPrices precios negociados del cliente con el nombre del producto.
func (uc *ClientUseCase) ListPrices(ctx context.Context, clientID string) ([]dto.ClientPriceResponse, error) {
	list, err := uc.prices.ListClientPrices(ctx, clientID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(list))
	for _, cp := range list {
		ids = append(ids, cp.ProductID)
	}
	products, err := uc.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ClientPriceResponse, 0, len(list))
	for _, cp := range list {
		name := ""
		if p := products[cp.ProductID]; p != nil {
			name = p.Name
		}
		out = append(out, *toClientPriceResponse(cp, name))
	}
	return out, nil
}

func toClientResponse(c *entity.Client) *dto.ClientResponse {
	return &dto.ClientResponse{
		ID:          c.ID,
		DisplayName: c.DisplayName(),
		LastName:    c.LastName,
		FirstName:   c.FirstName,
		Company:     c.Company,
		Email:       c.Email,
		Phone:       c.Phone,
		Address:     c.Address,
		PostalCode:  c.PostalCode,
		City:        c.City,
		Country:     c.Country,
		Siret:       c.Siret,
		VATNumber:   c.VATNumber,
		Notes:       c.Notes,
		Active:      c.Active,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func toClientPriceResponse(cp *entity.ClientPrice, productName string) *dto.ClientPriceResponse {
	return &dto.ClientPriceResponse{
		ID:          cp.ID,
		ClientID:    cp.ClientID,
		ProductID:   cp.ProductID,
		ProductName: productName,
		Price:       cp.Price,
		UpdatedAt:   cp.UpdatedAt,
	}
}
