package database

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"perangkat-desa-backend/internal/model"
	"perangkat-desa-backend/internal/repository"
	"perangkat-desa-backend/internal/testutil"
	"perangkat-desa-backend/internal/usecase"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSeed_Default(t *testing.T) {
	seed, err := LoadSeed("")
	require.NoError(t, err)
	assert.Equal(t, "admin@punggelan.go.id", seed.Admin.Email)
	assert.Equal(t, "N A M A", seed.UploadConfig[model.UploadKeyNama])
	require.NoError(t, seed.UploadConfig.Validate())
	assert.Equal(t, "Camat Punggelan", seed.ExportConfig.JabatanPenandaTangan)
}

func TestLoadSeed_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte("admin:\n  email: camat@desa.id\n  password: rahasia\n"), 0o644))

	seed, err := LoadSeed(path)
	require.NoError(t, err)
	assert.Equal(t, "camat@desa.id", seed.Admin.Email)
	assert.Empty(t, seed.UploadConfig)

	_, err = LoadSeed(filepath.Join(t.TempDir(), "tidak-ada.yaml"))
	assert.Error(t, err)
}

func TestSeedAll_Idempotent(t *testing.T) {
	db := testutil.NewDB(t)
	log := logrus.New()
	log.SetOutput(io.Discard)
	ctx := context.Background()

	seed, err := LoadSeed("")
	require.NoError(t, err)
	require.NoError(t, SeedAll(ctx, db, seed, "Punggelan", log))

	// Pengaturan yang sudah diubah admin tidak ditimpa seeder
	settings := usecase.NewSettingUsecase(repository.NewSettingRepository(db), "Punggelan")
	require.NoError(t, settings.SaveBranding(ctx, model.Branding{AppName: "SIPADES"}))
	require.NoError(t, SeedAll(ctx, db, seed, "Punggelan", log))

	b, err := settings.Branding(ctx)
	require.NoError(t, err)
	assert.Equal(t, "SIPADES", b.AppName)

	akuns, err := repository.NewAkunRepository(db).FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, akuns, 1)
	require.NotNil(t, akuns[0].Profil)
	assert.Equal(t, model.RoleAdminKecamatan, akuns[0].Profil.Role)

	auth := usecase.NewAuthUsecase(repository.NewAkunRepository(db), "rahasia", time.Hour, log)
	_, err = auth.Login(ctx, "admin@punggelan.go.id", "admin123")
	assert.NoError(t, err)
}
