// Package storage mengunggah foto perangkat ke image host dan mengembalikan URL publiknya.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"regexp"
	"strings"
	"time"

	"perangkat-desa-backend/config"
	"perangkat-desa-backend/internal/apperror"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const maxImageWidth = 1280

// ImageHost menyimpan byte gambar dan mengembalikan URL yang tahan lama.
type ImageHost interface {
	Put(ctx context.Context, key string, data []byte) (string, error)
}

// NewImageHost memilih Cloudinary jika dikonfigurasi, selain itu disk lokal.
func NewImageHost(cfg *config.Config, log *logrus.Logger) ImageHost {
	if cfg.Cloudinary.Enabled() {
		log.WithField("cloud", cfg.Cloudinary.CloudName).Info("Upload gambar memakai Cloudinary")
		return NewCloudinary(cfg.Cloudinary.CloudName, cfg.Cloudinary.UploadPreset)
	}
	log.WithField("dir", cfg.UploadDir).Info("Upload gambar memakai disk lokal")
	return NewLocal(cfg.UploadDir, cfg.PublicBaseURL)
}

// Uploader memvalidasi, mengecilkan, lalu mengunggah foto.
type Uploader struct {
	host    ImageHost
	maxSize int64
}

func NewUploader(host ImageHost, maxSize int64) *Uploader {
	return &Uploader{host: host, maxSize: maxSize}
}

// UploadFile mengunggah file form multipart ke folder tertentu.
func (u *Uploader) UploadFile(ctx context.Context, folder string, fh *multipart.FileHeader) (string, error) {
	if fh.Size > u.maxSize {
		return "", apperror.New(apperror.KindTooLarge, fmt.Sprintf("Ukuran file %s melebihi batas %d KB", fh.Filename, u.maxSize/1024))
	}
	src, err := fh.Open()
	if err != nil {
		return "", apperror.Upload("Gagal membuka file gambar", err)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, u.maxSize+1))
	if err != nil {
		return "", apperror.Upload("Gagal membaca file gambar", err)
	}
	return u.Upload(ctx, folder, fh.Filename, data)
}

func (u *Uploader) Upload(ctx context.Context, folder, filename string, data []byte) (string, error) {
	if int64(len(data)) > u.maxSize {
		return "", apperror.New(apperror.KindTooLarge, fmt.Sprintf("Ukuran file %s melebihi batas %d KB", filename, u.maxSize/1024))
	}
	img, err := PrepareImage(data)
	if err != nil {
		return "", err
	}

	url, err := u.host.Put(ctx, UniqueKey(folder, filename), img)
	if err != nil {
		return "", apperror.Upload("Gagal upload gambar", err)
	}
	return url, nil
}

// PrepareImage memastikan data adalah JPEG/PNG, memutar sesuai EXIF,
// mengecilkan ke lebar maksimal lalu menyimpan ulang sebagai JPEG.
func PrepareImage(data []byte) ([]byte, error) {
	mt := mimetype.Detect(data)
	if !mt.Is("image/jpeg") && !mt.Is("image/png") {
		return nil, apperror.Invalid(fmt.Sprintf("File harus berupa gambar JPG atau PNG (terdeteksi %s)", mt.String()))
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInvalid, "Gambar tidak dapat dibaca", err)
	}
	if img.Bounds().Dx() > maxImageWidth {
		img = imaging.Resize(img, maxImageWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "Gagal memproses gambar", err)
	}
	return buf.Bytes(), nil
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9.\-_]+`)

// UniqueKey membuat nama objek "folder/20260102-uuid-nama.jpg".
func UniqueKey(folder, original string) string {
	base := original
	if i := strings.LastIndex(base, "."); i > 0 {
		base = base[:i]
	}
	base = unsafeChars.ReplaceAllString(base, "_")
	if base == "" {
		base = "foto"
	}
	return fmt.Sprintf("%s/%s-%s-%s.jpg", strings.Trim(folder, "/"), time.Now().Format("20060102"), uuid.NewString(), base)
}
