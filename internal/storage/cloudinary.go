package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
)

const cloudinaryAPI = "https://api.cloudinary.com/v1_1"

// Cloudinary mengunggah dengan unsigned upload preset (cloud name + preset).
type Cloudinary struct {
	CloudName    string
	UploadPreset string
	BaseURL      string
	Timeout      time.Duration
}

func NewCloudinary(cloudName, uploadPreset string) *Cloudinary {
	return &Cloudinary{
		CloudName:    cloudName,
		UploadPreset: uploadPreset,
		BaseURL:      cloudinaryAPI,
		Timeout:      30 * time.Second,
	}
}

type cloudinaryResponse struct {
	SecureURL string `json:"secure_url"`
	Error     *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Cloudinary) Put(ctx context.Context, key string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	args := fiber.AcquireArgs()
	defer fiber.ReleaseArgs(args)
	args.Set("upload_preset", c.UploadPreset)
	if folder := path.Dir(key); folder != "." {
		args.Set("folder", folder)
	}

	endpoint := fmt.Sprintf("%s/%s/image/upload", strings.TrimRight(c.BaseURL, "/"), c.CloudName)
	agent := fiber.Post(endpoint).
		Timeout(c.Timeout).
		FileData(&fiber.FormFile{
			Fieldname: "file",
			Name:      path.Base(key),
			Content:   data,
		}).
		// File harus ditambahkan sebelum MultipartForm menulis body
		MultipartForm(args)

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return "", errors.Wrap(errs[0], "request ke Cloudinary gagal")
	}

	var res cloudinaryResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return "", errors.Wrapf(err, "response Cloudinary tidak valid (status %d)", code)
	}
	if code >= 300 || res.SecureURL == "" {
		msg := fmt.Sprintf("status %d", code)
		if res.Error != nil {
			msg = res.Error.Message
		}
		return "", errors.Errorf("Cloudinary menolak upload: %s", msg)
	}
	return res.SecureURL, nil
}
