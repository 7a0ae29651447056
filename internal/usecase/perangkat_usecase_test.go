package usecase

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"perangkat-desa-backend/internal/apperror"
	"perangkat-desa-backend/internal/model"
	"perangkat-desa-backend/internal/repository"
	"perangkat-desa-backend/internal/testutil"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type fakePublisher struct {
	mu    sync.Mutex
	calls [][]string
}

func (f *fakePublisher) Publish(desa ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, desa)
}

func (f *fakePublisher) last() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return nil
	}
	return f.calls[len(f.calls)-1]
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func str(s string) *string { return &s }

var (
	kecamatan = model.Session{ID: 1, Role: model.RoleAdminKecamatan, Nama: "Admin Kecamatan"}
	klapa     = model.Session{ID: 2, Role: model.RoleAdminDesa, Desa: "Klapa", Nama: "Admin Klapa"}
)

type perangkatFixture struct {
	uc       *PerangkatUsecase
	repo     repository.PerangkatRepository
	settings *SettingUsecase
	pub      *fakePublisher
}

func newPerangkatFixture(t *testing.T) perangkatFixture {
	t.Helper()
	db := testutil.NewDB(t)
	repo := repository.NewPerangkatRepository(db)
	settings := NewSettingUsecase(repository.NewSettingRepository(db), "Punggelan")
	pub := &fakePublisher{}
	uc := NewPerangkatUsecase(repo, settings, pub, quietLogger(), "Punggelan")
	uc.now = func() time.Time { return time.Date(2024, time.March, 5, 9, 0, 0, 0, time.UTC) }
	return perangkatFixture{uc: uc, repo: repo, settings: settings, pub: pub}
}

func (f perangkatFixture) seed(t *testing.T, items ...model.Perangkat) {
	t.Helper()
	for i := range items {
		require.NoError(t, f.repo.Create(context.Background(), &items[i]))
	}
}

func lengkap(desa, nama string) model.Perangkat {
	return model.Perangkat{
		Desa: desa, Nama: nama, NIP: "1980", Jabatan: "Kasi", NIK: "3304",
		JenisKelamin: "L", TempatLahir: "Banjarnegara", TglLahir: "1980-01-02",
		Pendidikan: "S1", NoSK: "141/1", TglPelantikan: "2020-01-01",
		AkhirJabatan: "2026-01-01", NoHP: "0812", FotoURL: "f.jpg", KTPURL: "k.jpg",
	}
}

func TestPerangkatUsecase_AdminDesaScope(t *testing.T) {
	f := newPerangkatFixture(t)
	ctx := context.Background()
	f.seed(t, model.Perangkat{Desa: "Klapa", Nama: "Ani"}, model.Perangkat{Desa: "Tlaga", Nama: "Budi"})

	// Filter desa dari admin desa diabaikan
	items, err := f.uc.List(ctx, klapa, "Tlaga", "")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Ani", items[0].Nama)

	all, err := f.uc.List(ctx, kecamatan, "all", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = f.uc.Get(ctx, klapa, all[1].ID)
	assert.True(t, apperror.Is(err, apperror.KindForbidden))

	// Admin desa tidak bisa memindahkan data ke desa lain
	p, err := f.uc.Create(ctx, klapa, PerangkatInput{Nama: str("Citra"), Desa: str("Tlaga")})
	require.NoError(t, err)
	assert.Equal(t, "Klapa", p.Desa)
	assert.Equal(t, []string{"Klapa"}, f.pub.last())
}

func TestPerangkatUsecase_SessionWithoutDesaHasNoScope(t *testing.T) {
	f := newPerangkatFixture(t)
	ctx := context.Background()
	f.seed(t, model.Perangkat{Desa: "Klapa", Nama: "Ani"}, model.Perangkat{Desa: "Tlaga", Nama: "Budi"})

	sessions := map[string]model.Session{
		"admin desa tanpa desa": {ID: 3, Role: model.RoleAdminDesa},
		"peran tidak dikenal":   {ID: 4, Role: "operator"},
	}
	for name, s := range sessions {
		t.Run(name, func(t *testing.T) {
			_, err := f.uc.List(ctx, s, "", "")
			assert.True(t, apperror.Is(err, apperror.KindForbidden))

			_, err = f.uc.Create(ctx, s, PerangkatInput{Nama: str("Citra"), Desa: str("Sambong")})
			assert.True(t, apperror.Is(err, apperror.KindForbidden))

			_, err = f.uc.Dashboard(ctx, s)
			assert.True(t, apperror.Is(err, apperror.KindForbidden))

			_, err = f.uc.Export(ctx, s, FormatPDF, "", "")
			assert.True(t, apperror.Is(err, apperror.KindForbidden))

			all, err := f.uc.List(ctx, kecamatan, "", "")
			require.NoError(t, err)
			_, err = f.uc.Get(ctx, s, all[0].ID)
			assert.True(t, apperror.Is(err, apperror.KindForbidden))
		})
	}

	items, err := f.repo.FindAll(ctx, repository.PerangkatFilter{})
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Nil(t, f.pub.last())
}

func TestPerangkatUsecase_DesaFilterIgnoresCase(t *testing.T) {
	f := newPerangkatFixture(t)
	ctx := context.Background()
	f.seed(t, model.Perangkat{Desa: "Klapa", Nama: "Ani"}, model.Perangkat{Desa: "Tlaga", Nama: "Budi"})

	items, err := f.uc.List(ctx, kecamatan, " tlaga ", "")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Budi", items[0].Nama)

	file, err := f.uc.Export(ctx, kecamatan, FormatXLSX, "TLAGA", "")
	require.NoError(t, err)
	assert.NotEmpty(t, file.Data)
}

func TestPerangkatUsecase_PrecheckWritesNothing(t *testing.T) {
	f := newPerangkatFixture(t)
	ctx := context.Background()
	f.seed(t, model.Perangkat{Desa: "Tlaga", Nama: "Budi"})

	err := f.uc.Precheck(ctx, kecamatan, 0, PerangkatInput{Nama: str("Citra")})
	assert.Contains(t, apperror.FieldsOf(err), "desa")

	err = f.uc.Precheck(ctx, kecamatan, 0, PerangkatInput{Desa: str("Tlaga")})
	assert.Contains(t, apperror.FieldsOf(err), "nama")

	assert.NoError(t, f.uc.Precheck(ctx, kecamatan, 0, PerangkatInput{Nama: str("Citra"), Desa: str("tlaga")}))

	all, err := f.uc.List(ctx, kecamatan, "", "")
	require.NoError(t, err)
	require.Len(t, all, 1)
	err = f.uc.Precheck(ctx, klapa, all[0].ID, PerangkatInput{Nama: str("Budi Baru")})
	assert.True(t, apperror.Is(err, apperror.KindForbidden))

	items, err := f.repo.FindAll(ctx, repository.PerangkatFilter{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Budi", items[0].Nama)
	assert.Nil(t, f.pub.last())
}

func TestPerangkatUsecase_CreateRequiresDesa(t *testing.T) {
	f := newPerangkatFixture(t)
	ctx := context.Background()

	_, err := f.uc.Create(ctx, kecamatan, PerangkatInput{Nama: str("Tanpa Desa")})
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindInvalid))
	assert.Contains(t, apperror.FieldsOf(err), "desa")

	_, err = f.uc.Create(ctx, kecamatan, PerangkatInput{Nama: str("X"), Desa: str("Atlantis")})
	assert.True(t, apperror.Is(err, apperror.KindInvalid))

	items, err := f.repo.FindAll(ctx, repository.PerangkatFilter{})
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Nil(t, f.pub.last())
}

func TestPerangkatUsecase_CreateValidation(t *testing.T) {
	f := newPerangkatFixture(t)
	ctx := context.Background()

	_, err := f.uc.Create(ctx, kecamatan, PerangkatInput{Desa: str("klapa"), JenisKelamin: str("X")})
	require.Error(t, err)
	fields := apperror.FieldsOf(err)
	assert.Contains(t, fields, "nama")
	assert.Contains(t, fields, "jenis_kelamin")

	p, err := f.uc.Create(ctx, kecamatan, PerangkatInput{Desa: str("klapa"), Nama: str("  Dewi "), JenisKelamin: str("p"), Pendidikan: str("s1")})
	require.NoError(t, err)
	assert.Equal(t, "Klapa", p.Desa)
	assert.Equal(t, "Dewi", p.Nama)
	assert.Equal(t, model.JenisKelaminPerempuan, p.JenisKelamin)
	assert.Equal(t, "S1", p.Pendidikan)
}

func TestPerangkatUsecase_UpdateKeepsUnsentFields(t *testing.T) {
	f := newPerangkatFixture(t)
	ctx := context.Background()
	f.seed(t, model.Perangkat{Desa: "Klapa", Nama: "Eko", Jabatan: "Kaur"})
	items, _ := f.repo.FindAll(ctx, repository.PerangkatFilter{})
	id := items[0].ID

	p, err := f.uc.Update(ctx, kecamatan, id, PerangkatInput{NoHP: str("0812")})
	require.NoError(t, err)
	assert.Equal(t, "Eko", p.Nama)
	assert.Equal(t, "Kaur", p.Jabatan)
	assert.Equal(t, "0812", p.NoHP)
	assert.Equal(t, []string{"Klapa"}, f.pub.last())

	// Pindah desa memberi tahu desa lama dan baru
	_, err = f.uc.Update(ctx, kecamatan, id, PerangkatInput{Desa: str("Tlaga")})
	require.NoError(t, err)
	assert.Equal(t, []string{"Klapa", "Tlaga"}, f.pub.last())

	_, err = f.uc.Update(ctx, kecamatan, 999, PerangkatInput{})
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestPerangkatUsecase_DeleteNeedsConfirmation(t *testing.T) {
	f := newPerangkatFixture(t)
	ctx := context.Background()
	f.seed(t, model.Perangkat{Desa: "Klapa", Nama: "Fajar"})
	items, _ := f.repo.FindAll(ctx, repository.PerangkatFilter{})
	id := items[0].ID

	err := f.uc.Delete(ctx, kecamatan, id, false)
	assert.True(t, apperror.Is(err, apperror.KindInvalid))
	_, err = f.repo.FindByID(ctx, id)
	require.NoError(t, err)

	require.NoError(t, f.uc.Delete(ctx, klapa, id, true))
	assert.Equal(t, []string{"Klapa"}, f.pub.last())

	err = f.uc.Delete(ctx, kecamatan, id, true)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func importWorkbook(t *testing.T) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	rows := map[string][]interface{}{
		"A1": {"DATA PERANGKAT DESA TLAGA (17) KECAMATAN PUNGGELAN"},
		"A3": {"NO", "NAMA", "L", "P", "JABATAN"},
		"A4": {"1", "2", "3", "4", "5"},
		"A5": {1, "Gilang", "V", "", "Sekdes"},
		"A6": {2, "Hana", "", "V", "Kaur Keuangan"},
	}
	for cell, values := range rows {
		v := values
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &v))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestPerangkatUsecase_Import(t *testing.T) {
	f := newPerangkatFixture(t)
	ctx := context.Background()

	_, err := f.uc.Import(ctx, klapa, "data.xlsx", importWorkbook(t))
	assert.True(t, apperror.Is(err, apperror.KindForbidden))

	// Tanpa pengaturan upload file tidak dibaca sama sekali
	_, err = f.uc.Import(ctx, kecamatan, "data.xlsx", importWorkbook(t))
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindInvalid))
	assert.Contains(t, err.Error(), "Pengaturan format upload")

	require.NoError(t, f.settings.SaveUploadConfig(ctx, model.UploadConfig{
		model.UploadKeyNama:      "NAMA",
		model.UploadKeyLaki:      "L",
		model.UploadKeyPerempuan: "P",
		model.UploadKeyJabatan:   "JABATAN",
	}))

	res, err := f.uc.Import(ctx, kecamatan, "data.xlsx", importWorkbook(t))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Count)
	assert.Equal(t, "Tlaga", res.Desa)
	assert.Equal(t, "2 data untuk Desa Tlaga berhasil di-upload!", res.Message)
	assert.Equal(t, []string{"Tlaga"}, f.pub.last())

	items, err := f.repo.FindAll(ctx, repository.PerangkatFilter{Desa: "Tlaga"})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, model.JenisKelaminPerempuan, items[1].JenisKelamin)

	_, err = f.uc.Import(ctx, kecamatan, "data.csv", bytes.NewBufferString("a,b"))
	assert.True(t, apperror.Is(err, apperror.KindImportFormat))
}

func TestPerangkatUsecase_Export(t *testing.T) {
	f := newPerangkatFixture(t)
	ctx := context.Background()

	_, err := f.uc.Export(ctx, kecamatan, FormatXLSX, "", "")
	assert.True(t, apperror.Is(err, apperror.KindInvalid))

	f.seed(t, lengkap("Klapa", "Ani"), lengkap("Tlaga", "Budi"), lengkap("Klapa", "Citra"))

	file, err := f.uc.Export(ctx, kecamatan, FormatXLSX, "all", "")
	require.NoError(t, err)
	assert.Equal(t, "Laporan_Perangkat_Desa.xlsx", file.Name)
	wb, err := excelize.OpenReader(bytes.NewReader(file.Data))
	require.NoError(t, err)
	assert.Equal(t, []string{"1. KLAPA", "2. TLAGA"}, wb.GetSheetList())
	_ = wb.Close()

	// Admin desa hanya mendapat desanya sendiri
	file, err = f.uc.Export(ctx, klapa, FormatXLSX, "", "")
	require.NoError(t, err)
	wb, err = excelize.OpenReader(bytes.NewReader(file.Data))
	require.NoError(t, err)
	assert.Equal(t, []string{"1. KLAPA"}, wb.GetSheetList())
	_ = wb.Close()

	file, err = f.uc.Export(ctx, kecamatan, FormatPDF, "Tlaga", "")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, bytes.HasPrefix(file.Data, []byte("%PDF-")))

	_, err = f.uc.Export(ctx, kecamatan, "docx", "", "")
	assert.True(t, apperror.Is(err, apperror.KindInvalid))
}

func TestPerangkatUsecase_Dashboard(t *testing.T) {
	f := newPerangkatFixture(t)
	ctx := context.Background()
	f.seed(t,
		lengkap("Klapa", "Ani"),
		model.Perangkat{Desa: "Klapa", Nama: "Budi"},
		lengkap("Tlaga", "Citra"),
	)

	stats, err := f.uc.Dashboard(ctx, kecamatan)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.Lengkap)
	assert.Equal(t, 1, stats.BelumLengkap)
	assert.Equal(t, len(model.DesaList), stats.TotalDesa)
	assert.Equal(t, 2, stats.DesaTerisi)
	require.Len(t, stats.PerDesa, len(model.DesaList))
	for _, s := range stats.PerDesa {
		if s.Desa == "Klapa" {
			assert.Equal(t, 1, s.Lengkap)
			assert.Equal(t, 1, s.BelumLengkap)
		}
	}

	stats, err = f.uc.Dashboard(ctx, klapa)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, "Klapa", stats.Desa)
	assert.Empty(t, stats.PerDesa)
}

func TestPerangkatUsecase_Rekap(t *testing.T) {
	f := newPerangkatFixture(t)
	ctx := context.Background()
	p := lengkap("Klapa", "Ani")
	p.JenisKelamin = "P"
	f.seed(t, lengkap("Klapa", "Budi"), p, model.Perangkat{Desa: model.DesaUnknown, Nama: "X", Pendidikan: "SLTA"})

	_, err := f.uc.Rekap(ctx, klapa)
	assert.True(t, apperror.Is(err, apperror.KindForbidden))

	rekap, err := f.uc.Rekap(ctx, kecamatan)
	require.NoError(t, err)
	require.Len(t, rekap, len(model.DesaList)+1)
	assert.Equal(t, model.DesaList[0], rekap[0].Desa)

	last := rekap[len(rekap)-1]
	assert.Equal(t, model.DesaUnknown, last.Desa)
	assert.Equal(t, 1, last.Pendidikan["SLTA"])

	for _, r := range rekap {
		if r.Desa == "Klapa" {
			assert.Equal(t, 2, r.Total)
			assert.Equal(t, 2, r.Lengkap)
			assert.Equal(t, 1, r.Laki)
			assert.Equal(t, 1, r.Perempuan)
			assert.Equal(t, 2, r.Pendidikan["S1"])
		}
	}
}
