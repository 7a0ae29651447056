package usecase

import (
	"context"
	"testing"

	"perangkat-desa-backend/internal/apperror"
	"perangkat-desa-backend/internal/model"
	"perangkat-desa-backend/internal/repository"
	"perangkat-desa-backend/internal/testutil"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotifier struct {
	sent []string
	err  error
}

func (f *fakeNotifier) AkunDibuat(to, nama, desa, appURL string) error {
	f.sent = append(f.sent, to+"|"+desa)
	return f.err
}

func TestAdminUsecase_CreateAdminDesa(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewAkunRepository(db)
	notifier := &fakeNotifier{}
	uc := NewAdminUsecase(repo, notifier, "http://localhost:3000", quietLogger())
	ctx := context.Background()

	in := CreateAdminDesaInput{Email: " Klapa@Desa.id ", Password: "secret123", Nama: "Admin Klapa", Desa: "klapa"}

	_, err := uc.CreateAdminDesa(ctx, klapa, in)
	assert.True(t, apperror.Is(err, apperror.KindForbidden))

	akun, err := uc.CreateAdminDesa(ctx, kecamatan, in)
	require.NoError(t, err)
	assert.Equal(t, "klapa@desa.id", akun.Email)
	require.NotNil(t, akun.Profil)
	assert.Equal(t, model.RoleAdminDesa, akun.Profil.Role)
	assert.Equal(t, "Klapa", akun.Profil.Desa)
	assert.Equal(t, []string{"klapa@desa.id|Klapa"}, notifier.sent)

	_, err = uc.CreateAdminDesa(ctx, kecamatan, in)
	assert.True(t, apperror.Is(err, apperror.KindConflict))

	in.Email = "lain@desa.id"
	in.Desa = "Atlantis"
	_, err = uc.CreateAdminDesa(ctx, kecamatan, in)
	assert.True(t, apperror.Is(err, apperror.KindInvalid))
	assert.Contains(t, apperror.FieldsOf(err), "desa")

	_, err = uc.CreateAdminDesa(ctx, kecamatan, CreateAdminDesaInput{Email: "bukan-email", Password: "123"})
	fields := apperror.FieldsOf(err)
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password")
	assert.Contains(t, fields, "nama")
}

func TestAdminUsecase_NotifierFailureIsNotFatal(t *testing.T) {
	db := testutil.NewDB(t)
	uc := NewAdminUsecase(repository.NewAkunRepository(db), &fakeNotifier{err: errors.New("smtp mati")}, "", quietLogger())

	_, err := uc.CreateAdminDesa(context.Background(), kecamatan, CreateAdminDesaInput{
		Email: "tlaga@desa.id", Password: "secret123", Nama: "Admin Tlaga", Desa: "Tlaga",
	})
	require.NoError(t, err)
}

func TestAdminUsecase_ListAndDelete(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewAkunRepository(db)
	uc := NewAdminUsecase(repo, &fakeNotifier{}, "", quietLogger())
	ctx := context.Background()

	kec := seedAkun(t, repo, "kec@punggelan.id", "secret123", model.RoleAdminKecamatan, "")
	desa := seedAkun(t, repo, "klapa@desa.id", "secret123", model.RoleAdminDesa, "Klapa")
	self := model.Session{ID: kec.ID, Role: model.RoleAdminKecamatan}

	users, err := uc.ListUsers(ctx, self)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	_, err = uc.ListUsers(ctx, klapa)
	assert.True(t, apperror.Is(err, apperror.KindForbidden))

	err = uc.DeleteUser(ctx, self, kec.ID)
	assert.True(t, apperror.Is(err, apperror.KindInvalid))

	require.NoError(t, uc.DeleteUser(ctx, self, desa.ID))
	_, err = repo.FindProfil(ctx, desa.ID)
	assert.Error(t, err)

	err = uc.DeleteUser(ctx, self, desa.ID)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestSettingUsecase(t *testing.T) {
	db := testutil.NewDB(t)
	uc := NewSettingUsecase(repository.NewSettingRepository(db), "Punggelan")
	ctx := context.Background()

	cfg, err := uc.UploadConfig(ctx)
	require.NoError(t, err)
	assert.Nil(t, cfg)

	err = uc.SaveUploadConfig(ctx, model.UploadConfig{model.UploadKeyJabatan: "JABATAN"})
	assert.True(t, apperror.Is(err, apperror.KindInvalid))

	require.NoError(t, uc.SaveUploadConfig(ctx, model.UploadConfig{
		model.UploadKeyNama:    " NAMA ",
		model.UploadKeyJabatan: "",
	}))
	cfg, err = uc.UploadConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.UploadConfig{model.UploadKeyNama: "NAMA"}, cfg)

	b, err := uc.Branding(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Perangkat Desa Punggelan", b.AppName)
	assert.Equal(t, "Kecamatan Punggelan", b.LoginTitle)

	require.NoError(t, uc.SaveBranding(ctx, model.Branding{AppName: "SIPADES"}))
	b, err = uc.Branding(ctx)
	require.NoError(t, err)
	assert.Equal(t, "SIPADES", b.AppName)

	require.NoError(t, uc.SaveExportConfig(ctx, model.ExportConfig{NamaPenandaTangan: "  Drs. Camat  "}))
	exp, err := uc.ExportConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Drs. Camat", exp.NamaPenandaTangan)
}
