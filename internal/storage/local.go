package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Local menyimpan file di UploadDir dan disajikan oleh fiber di /uploads.
type Local struct {
	Dir     string
	BaseURL string
}

func NewLocal(dir, baseURL string) *Local {
	return &Local{Dir: dir, BaseURL: strings.TrimRight(baseURL, "/")}
}

func (l *Local) Put(_ context.Context, key string, data []byte) (string, error) {
	target := filepath.Join(l.Dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", errors.Wrap(err, "gagal membuat folder upload")
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", errors.Wrap(err, "gagal menyimpan file")
	}
	return l.BaseURL + "/uploads/" + key, nil
}
