package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/jhoicas/gsa-backend/internal/application/ports"
)

const gcsScheme = "gs://"

// GCSStore guarda los PDF en un bucket de Google Cloud Storage.
type GCSStore struct {
	client *storage.Client
	bucket string
}

// NewGCSStore abre el cliente. Sin credentialsJSON usa las credenciales por defecto (ADC).
func NewGCSStore(ctx context.Context, bucket, credentialsJSON string) (*GCSStore, error) {
	if bucket == "" {
		return nil, fmt.Errorf("storage: GCS_BUCKET es obligatorio")
	}
	var opts []option.ClientOption
	if strings.TrimSpace(credentialsJSON) != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(credentialsJSON)))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage: cliente GCS: %w", err)
	}
	return &GCSStore{client: client, bucket: bucket}, nil
}

var _ ports.DocumentStore = (*GCSStore)(nil)

// Close libera el cliente.
func (s *GCSStore) Close() error { return s.client.Close() }

// Put sube el objeto y devuelve su URI gs://bucket/key.
func (s *GCSStore) Put(ctx context.Context, key string, data []byte) (string, error) {
	key = strings.TrimPrefix(key, "/")
	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = "application/pdf"
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("storage: subir %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("storage: subir %s: %w", key, err)
	}
	return gcsScheme + s.bucket + "/" + key, nil
}

// Get descarga el objeto. Acepta tanto la URI completa como la clave.
func (s *GCSStore) Get(ctx context.Context, path string) ([]byte, error) {
	bucket, key := s.bucket, path
	if rest, ok := strings.CutPrefix(path, gcsScheme); ok {
		b, k, found := strings.Cut(rest, "/")
		if !found {
			return nil, fmt.Errorf("storage: ruta GCS inválida %q", path)
		}
		bucket, key = b, k
	}
	r, err := s.client.Bucket(bucket).Object(key).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("storage: leer %s: %w", path, err)
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("storage: leer %s: %w", path, err)
	}
	return data, nil
}
