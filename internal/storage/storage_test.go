package storage

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"perangkat-desa-backend/internal/apperror"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := imaging.New(w, h, color.NRGBA{R: 200, G: 10, B: 10, A: 255})
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, imaging.PNG))
	return buf.Bytes()
}

func TestPrepareImage_ResizesWideImages(t *testing.T) {
	out, err := PrepareImage(pngBytes(t, 2000, 100))
	require.NoError(t, err)

	img, _, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, maxImageWidth, img.Bounds().Dx())
	assert.Equal(t, 64, img.Bounds().Dy())
}

func TestPrepareImage_RejectsNonImage(t *testing.T) {
	_, err := PrepareImage([]byte("%PDF-1.4 bukan gambar"))
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindInvalid))
}

func TestUniqueKey(t *testing.T) {
	key := UniqueKey("/perangkat/foto/", "KTP Budi (1).png")
	assert.True(t, strings.HasPrefix(key, "perangkat/foto/"))
	assert.True(t, strings.HasSuffix(key, "-KTP_Budi_1_.jpg"))
}

func TestLocalPut(t *testing.T) {
	dir := t.TempDir()
	host := NewLocal(dir, "http://localhost:3000/")

	url, err := host.Put(context.Background(), "perangkat/a.jpg", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000/uploads/perangkat/a.jpg", url)

	data, err := os.ReadFile(filepath.Join(dir, "perangkat", "a.jpg"))
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), data)
}

func TestUploader_TooLarge(t *testing.T) {
	u := NewUploader(NewLocal(t.TempDir(), ""), 10)
	_, err := u.Upload(context.Background(), "perangkat", "a.png", pngBytes(t, 10, 10))
	assert.True(t, apperror.Is(err, apperror.KindTooLarge))
}

func TestCloudinaryPut(t *testing.T) {
	var gotPreset, gotFolder, gotPath string
	var gotFile []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotPreset = r.FormValue("upload_preset")
		gotFolder = r.FormValue("folder")
		f, _, err := r.FormFile("file")
		require.NoError(t, err)
		gotFile, _ = io.ReadAll(f)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"secure_url":"https://res.cloudinary.com/demo/image/upload/v1/perangkat/a.jpg"}`))
	}))
	defer srv.Close()

	c := NewCloudinary("demo", "preset_desa")
	c.BaseURL = srv.URL

	url, err := c.Put(context.Background(), "perangkat/a.jpg", []byte("jpegdata"))
	require.NoError(t, err)
	assert.Equal(t, "https://res.cloudinary.com/demo/image/upload/v1/perangkat/a.jpg", url)
	assert.Equal(t, "/demo/image/upload", gotPath)
	assert.Equal(t, "preset_desa", gotPreset)
	assert.Equal(t, "perangkat", gotFolder)
	assert.Equal(t, []byte("jpegdata"), gotFile)
}

func TestCloudinaryPut_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Upload preset not found"}}`))
	}))
	defer srv.Close()

	c := NewCloudinary("demo", "salah")
	c.BaseURL = srv.URL

	_, err := c.Put(context.Background(), "perangkat/a.jpg", []byte("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Upload preset not found")

	u := NewUploader(c, 1<<20)
	_, err = u.Upload(context.Background(), "perangkat", "a.png", pngBytes(t, 4, 4))
	assert.True(t, apperror.Is(err, apperror.KindUpload))
}
