// Package storage guarda los PDF de factura emitidos (disco local o Google Cloud Storage).
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jhoicas/gsa-backend/internal/application/ports"
)

// LocalStore guarda los documentos bajo un directorio raíz. La ruta devuelta es relativa a ese directorio.
type LocalStore struct {
	root string
}

// NewLocalStore crea el directorio raíz si no existe.
func NewLocalStore(root string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("storage: crear directorio %s: %w", root, err)
	}
	return &LocalStore{root: root}, nil
}

var _ ports.DocumentStore = (*LocalStore)(nil)

// Put escribe el archivo de forma atómica (temporal + rename).
func (s *LocalStore) Put(_ context.Context, key string, data []byte) (string, error) {
	full, rel, err := s.resolve(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("storage: crear directorio: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(full), ".tmp-*")
	if err != nil {
		return "", fmt.Errorf("storage: archivo temporal: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("storage: escribir: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("storage: cerrar: %w", err)
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("storage: renombrar: %w", err)
	}
	return rel, nil
}

// Get lee un documento guardado por Put.
func (s *LocalStore) Get(_ context.Context, path string) ([]byte, error) {
	full, _, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("storage: leer %s: %w", path, err)
	}
	return data, nil
}

// resolve impide que una clave salga del directorio raíz.
func (s *LocalStore) resolve(key string) (full, rel string, err error) {
	clean := filepath.Clean("/" + strings.TrimSpace(key))
	if clean == "/" {
		return "", "", fmt.Errorf("storage: clave vacía")
	}
	return filepath.Join(s.root, clean), strings.TrimPrefix(filepath.ToSlash(clean), "/"), nil
}
