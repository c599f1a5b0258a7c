package postgres

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/gsa-backend/internal/domain"
	"github.com/jhoicas/gsa-backend/internal/domain/entity"
	"github.com/jhoicas/gsa-backend/internal/domain/repository"
)

var (
	_ repository.ProductRepository = (*ProductRepo)(nil)
	_ repository.PriceRepository   = (*PriceRepo)(nil)
	_ repository.ClientRepository  = (*ClientRepo)(nil)
)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `id, name, sale_unit, category, active, reorder_threshold, created_at, updated_at`

func scanProduct(row interface{ Scan(...any) error }) (*entity.Product, error) {
	var p entity.Product
	if err := row.Scan(&p.ID, &p.Name, &p.SaleUnit, &p.Category, &p.Active, &p.ReorderThreshold, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create persiste un nuevo producto.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.Name, p.SaleUnit, p.Category, p.Active, p.ReorderThreshold, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// GetByIDs obtiene varios productos en una sola consulta; los ausentes no aparecen en el mapa.
func (r *ProductRepo) GetByIDs(ctx context.Context, ids []string) (map[string]*entity.Product, error) {
	out := make(map[string]*entity.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.q.Query(ctx, `SELECT `+productColumns+` FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("get products: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}

// Update actualiza un producto existente.
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE products SET name = $2, sale_unit = $3, category = $4, active = $5, reorder_threshold = $6, updated_at = $7
		WHERE id = $1`,
		p.ID, p.Name, p.SaleUnit, p.Category, p.Active, p.ReorderThreshold, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista el catálogo ordenado por nombre.
func (r *ProductRepo) List(ctx context.Context, f repository.ProductFilter) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+productColumns+` FROM products
		WHERE ($1 = '' OR category = $1)
		  AND (NOT $2 OR active)
		  AND name ILIKE $3
		ORDER BY name, id
		LIMIT $4 OFFSET $5`,
		f.Category, f.ActiveOnly, likeArg(f.Search), limitArg(f.Limit), f.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// LockForStock bloquea las filas de los productos en orden de id hasta el fin de la tx.
func (r *ProductRepo) LockForStock(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	rows, err := r.q.Query(ctx, `SELECT id FROM products WHERE id = ANY($1) ORDER BY id FOR UPDATE`, sorted)
	if err != nil {
		return fmt.Errorf("lock products: %w", err)
	}
	defer rows.Close()
	found := 0
	for rows.Next() {
		found++
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("lock products: %w", err)
	}
	if found != len(uniqueStrings(sorted)) {
		return domain.ErrNotFound
	}
	return nil
}

func uniqueStrings(sorted []string) []string {
	out := sorted[:0:0]
	for i, s := range sorted {
		if i == 0 || s != sorted[i-1] {
			out = append(out, s)
		}
	}
	return out
}

// ── Precios ──────────────────────────────────────────────────────────────────

// PriceRepo precios base y precios por cliente.
type PriceRepo struct {
	q Querier
}

// NewPriceRepository construye el adaptador de precios.
func NewPriceRepository(q Querier) *PriceRepo {
	return &PriceRepo{q: q}
}

func (r *PriceRepo) GetBasePrice(ctx context.Context, productID string) (*entity.BasePrice, error) {
	var p entity.BasePrice
	err := r.q.QueryRow(ctx, `SELECT product_id, price, updated_at FROM base_prices WHERE product_id = $1`, productID).
		Scan(&p.ProductID, &p.Price, &p.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get base price: %w", err)
	}
	return &p, nil
}

// SetBasePrice inserta o reemplaza el precio base (upsert).
func (r *PriceRepo) SetBasePrice(ctx context.Context, p *entity.BasePrice) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO base_prices (product_id, price, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (product_id) DO UPDATE SET price = EXCLUDED.price, updated_at = EXCLUDED.updated_at`,
		p.ProductID, p.Price, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("set base price: %w", err)
	}
	return nil
}

const clientPriceColumns = `id, client_id, product_id, price, created_at, updated_at`

func scanClientPrice(row interface{ Scan(...any) error }) (*entity.ClientPrice, error) {
	var p entity.ClientPrice
	if err := row.Scan(&p.ID, &p.ClientID, &p.ProductID, &p.Price, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PriceRepo) GetClientPrice(ctx context.Context, clientID, productID string) (*entity.ClientPrice, error) {
	p, err := scanClientPrice(r.q.QueryRow(ctx,
		`SELECT `+clientPriceColumns+` FROM client_prices WHERE client_id = $1 AND product_id = $2`, clientID, productID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get client price: %w", err)
	}
	return p, nil
}

func (r *PriceRepo) GetClientPriceByID(ctx context.Context, id string) (*entity.ClientPrice, error) {
	p, err := scanClientPrice(r.q.QueryRow(ctx, `SELECT `+clientPriceColumns+` FROM client_prices WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get client price: %w", err)
	}
	return p, nil
}

func (r *PriceRepo) CreateClientPrice(ctx context.Context, p *entity.ClientPrice) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO client_prices (`+clientPriceColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.ClientID, p.ProductID, p.Price, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert client price: %w", err)
	}
	return nil
}

func (r *PriceRepo) UpdateClientPrice(ctx context.Context, p *entity.ClientPrice) error {
	cmd, err := r.q.Exec(ctx, `UPDATE client_prices SET price = $2, updated_at = $3 WHERE id = $1`, p.ID, p.Price, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update client price: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PriceRepo) DeleteClientPrice(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM client_prices WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete client price: %w", err)
	}
	return nil
}

func (r *PriceRepo) ListClientPrices(ctx context.Context, clientID string) ([]*entity.ClientPrice, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+clientPriceColumns+` FROM client_prices
		WHERE client_id = $1 ORDER BY product_id`, clientID)
	if err != nil {
		return nil, fmt.Errorf("list client prices: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.ClientPrice, 0)
	for rows.Next() {
		p, err := scanClientPrice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan client price: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// ── Clientes ─────────────────────────────────────────────────────────────────

// ClientRepo implementación de ClientRepository (usable con pool o tx).
type ClientRepo struct {
	q Querier
}

// NewClientRepository construye el adaptador. Pasar pool o tx (Querier).
func NewClientRepository(q Querier) *ClientRepo {
	return &ClientRepo{q: q}
}

const clientColumns = `id, last_name, first_name, company, email, phone, address, postal_code, city, country, siret, vat_number, notes, active, created_at, updated_at`

func scanClient(row interface{ Scan(...any) error }) (*entity.Client, error) {
	var c entity.Client
	err := row.Scan(&c.ID, &c.LastName, &c.FirstName, &c.Company, &c.Email, &c.Phone, &c.Address, &c.PostalCode,
		&c.City, &c.Country, &c.Siret, &c.VATNumber, &c.Notes, &c.Active, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create persiste un nuevo cliente.
func (r *ClientRepo) Create(ctx context.Context, c *entity.Client) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO clients (`+clientColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		c.ID, c.LastName, c.FirstName, c.Company, c.Email, c.Phone, c.Address, c.PostalCode,
		c.City, c.Country, c.Siret, c.VATNumber, c.Notes, c.Active, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert client: %w", err)
	}
	return nil
}

// GetByID obtiene un cliente por ID.
func (r *ClientRepo) GetByID(ctx context.Context, id string) (*entity.Client, error) {
	c, err := scanClient(r.q.QueryRow(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get client: %w", err)
	}
	return c, nil
}

// Update actualiza un cliente.
func (r *ClientRepo) Update(ctx context.Context, c *entity.Client) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE clients SET last_name = $2, first_name = $3, company = $4, email = $5, phone = $6, address = $7,
		       postal_code = $8, city = $9, country = $10, siret = $11, vat_number = $12, notes = $13, active = $14, updated_at = $15
		WHERE id = $1`,
		c.ID, c.LastName, c.FirstName, c.Company, c.Email, c.Phone, c.Address, c.PostalCode,
		c.City, c.Country, c.Siret, c.VATNumber, c.Notes, c.Active, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update client: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List busca por empresa/nombre, email o ciudad; ordena por nombre visible.
func (r *ClientRepo) List(ctx context.Context, f repository.ClientFilter) ([]*entity.Client, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+clientColumns+` FROM clients
		WHERE (NOT $1 OR active)
		  AND (COALESCE(NULLIF(company, ''), TRIM(last_name || ' ' || first_name)) || ' ' || email || ' ' || city) ILIKE $2
		ORDER BY COALESCE(NULLIF(company, ''), TRIM(last_name || ' ' || first_name)), id
		LIMIT $3 OFFSET $4`,
		f.ActiveOnly, likeArg(f.Search), limitArg(f.Limit), f.Offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()
	list := make([]*entity.Client, 0)
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}
