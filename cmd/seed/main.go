// seed carga el usuario administrador inicial y el catálogo de productos desde un JSON.
// Es idempotente: omite usuarios con email existente y productos con el mismo nombre.
//
// Uso: go run ./cmd/seed [ruta/catalog.json]
// Por defecto busca seed/catalog.json. Usa la misma configuración que la API (DB_*, ADMIN_*).
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jhoicas/gsa-backend/internal/application/dto"
	"github.com/jhoicas/gsa-backend/internal/application/usecase"
	"github.com/jhoicas/gsa-backend/internal/domain"
	"github.com/jhoicas/gsa-backend/internal/domain/entity"
	"github.com/jhoicas/gsa-backend/internal/domain/repository"
	"github.com/jhoicas/gsa-backend/internal/infrastructure/postgres"
	"github.com/jhoicas/gsa-backend/pkg/config"
	"github.com/jhoicas/gsa-backend/pkg/logger"
)

type catalog struct {
	Admin    *dto.CreateUserRequest      `json:"admin"`
	Products []dto.CreateProductRequest `json:"products"`
}

func main() {
	path := "seed/catalog.json"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuración: %v\n", err)
		os.Exit(1)
	}
	lg := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})
	log := lg.Zerolog()

	cat, err := readCatalog(path)
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("leer catálogo")
	}
	applyAdminEnv(&cat)

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool, cfg.DB.Migrations, lg.Component("migrate")); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}

	repos := postgres.Repositories(pool)
	txRunner := postgres.NewTxRunner(pool, cfg.DB.MaxRetries, lg.Component("tx"))
	if err := seed(ctx, cat, txRunner, repos, log); err != nil {
		log.Fatal().Err(err).Msg("seed")
	}
	log.Info().Msg("seed completado")
}

func readCatalog(path string) (catalog, error) {
	var cat catalog
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cat, nil
	}
	if err != nil {
		return cat, err
	}
	if err := json.Unmarshal(raw, &cat); err != nil {
		return cat, fmt.Errorf("json inválido: %w", err)
	}
	return cat, nil
}

// applyAdminEnv ADMIN_EMAIL / ADMIN_PASSWORD tienen prioridad sobre el archivo.
func applyAdminEnv(cat *catalog) {
	email, password := os.Getenv("ADMIN_EMAIL"), os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		return
	}
	cat.Admin = &dto.CreateUserRequest{
		Email:    email,
		Password: password,
		Name:     "Administrateur",
		Role:     entity.RoleSuperAdmin,
	}
}

func seed(ctx context.Context, cat catalog, txRunner repository.TxRunner, repos repository.Repositories, log zerolog.Logger) error {
	if cat.Admin != nil {
		if cat.Admin.Role == "" {
			cat.Admin.Role = entity.RoleSuperAdmin
		}
		_, err := usecase.NewUserUseCase(repos.Users).Create(ctx, *cat.Admin)
		switch {
		case errors.Is(err, domain.ErrEmailAlreadyExists):
			log.Info().Str("email", cat.Admin.Email).Msg("administrador ya existe")
		case err != nil:
			return fmt.Errorf("administrador: %w", err)
		default:
			log.Info().Str("email", cat.Admin.Email).Msg("administrador creado")
		}
	}

	products := usecase.NewProductUseCase(txRunner, repos)
	created := 0
	for _, p := range cat.Products {
		existing, err := products.List(ctx, repository.ProductFilter{Search: p.Name, Limit: 50})
		if err != nil {
			return err
		}
		if hasProduct(existing.Items, p.Name) {
			continue
		}
		if _, err := products.Create(ctx, p); err != nil {
			return fmt.Errorf("producto %q: %w", p.Name, err)
		}
		created++
	}
	log.Info().Int("creados", created).Int("catalogo", len(cat.Products)).Msg("productos")
	return nil
}

func hasProduct(items []dto.ProductResponse, name string) bool {
	for _, it := range items {
		if strings.EqualFold(it.Name, name) {
			return true
		}
	}
	return false
}
