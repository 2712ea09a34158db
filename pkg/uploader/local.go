package uploader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalUploader writes files under a root directory that the HTTP server
// exposes as static content (fiber Static on /uploads).
type LocalUploader struct {
	rootDir string
	baseURL string
}

func NewLocalUploader(rootDir, baseURL string) *LocalUploader {
	return &LocalUploader{
		rootDir: rootDir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

func (u *LocalUploader) Upload(ctx context.Context, data []byte, name, folder string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir := filepath.Join(u.rootDir, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	id := filepath.Join(folder, name)
	path := filepath.Join(u.rootDir, id)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("write upload: %w", err)
	}

	return &Result{
		URL: fmt.Sprintf("%s/uploads/%s", u.baseURL, filepath.ToSlash(id)),
		ID:  filepath.ToSlash(id),
	}, nil
}

func (u *LocalUploader) Remove(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := os.Remove(filepath.Join(u.rootDir, filepath.FromSlash(id)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
