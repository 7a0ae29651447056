package usecase

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"perangkat-desa-backend/internal/apperror"
	"perangkat-desa-backend/internal/importer"
	"perangkat-desa-backend/internal/metrics"
	"perangkat-desa-backend/internal/model"
	"perangkat-desa-backend/internal/report"
	"perangkat-desa-backend/internal/repository"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Publisher menerima kabar desa mana saja yang datanya berubah.
type Publisher interface {
	Publish(desa ...string)
}

// PerangkatInput adalah field yang dikirim form. Nil berarti field tidak
// dikirim dan nilai lama dipertahankan saat update.
type PerangkatInput struct {
	Desa          *string `json:"desa"`
	Nama          *string `json:"nama"`
	NIP           *string `json:"nip"`
	Jabatan       *string `json:"jabatan"`
	NIK           *string `json:"nik"`
	JenisKelamin  *string `json:"jenis_kelamin"`
	TempatLahir   *string `json:"tempat_lahir"`
	TglLahir      *string `json:"tgl_lahir"`
	Pendidikan    *string `json:"pendidikan"`
	NoSK          *string `json:"no_sk"`
	TglPelantikan *string `json:"tgl_pelantikan"`
	AkhirJabatan  *string `json:"akhir_jabatan"`
	NoHP          *string `json:"no_hp"`
	FotoURL       *string `json:"foto_url"`
	KTPURL        *string `json:"ktp_url"`
}

func (in PerangkatInput) applyTo(p *model.Perangkat) {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	set(&p.Desa, in.Desa)
	set(&p.Nama, in.Nama)
	set(&p.NIP, in.NIP)
	set(&p.Jabatan, in.Jabatan)
	set(&p.NIK, in.NIK)
	set(&p.JenisKelamin, in.JenisKelamin)
	set(&p.TempatLahir, in.TempatLahir)
	set(&p.TglLahir, in.TglLahir)
	set(&p.Pendidikan, in.Pendidikan)
	set(&p.NoSK, in.NoSK)
	set(&p.TglPelantikan, in.TglPelantikan)
	set(&p.AkhirJabatan, in.AkhirJabatan)
	set(&p.NoHP, in.NoHP)
	set(&p.FotoURL, in.FotoURL)
	set(&p.KTPURL, in.KTPURL)
	p.JenisKelamin = strings.ToUpper(p.JenisKelamin)
	p.Pendidikan = strings.ToUpper(p.Pendidikan)
}

// perangkatRules divalidasi terhadap record hasil merge, bukan input mentah,
// supaya field yang dikosongkan tetap lolos omitempty.
type perangkatRules struct {
	Nama         string `json:"nama" validate:"required,max=150"`
	NIP          string `json:"nip" validate:"omitempty,max=30"`
	Jabatan      string `json:"jabatan" validate:"omitempty,max=100"`
	NIK          string `json:"nik" validate:"omitempty,max=20"`
	JenisKelamin string `json:"jenis_kelamin" validate:"omitempty,oneof=L P"`
	Pendidikan   string `json:"pendidikan" validate:"omitempty,oneof=SD SMP SLTA D1 D2 D3 S1 S2 S3"`
	NoHP         string `json:"no_hp" validate:"omitempty,max=20"`
}

func validatePerangkat(p *model.Perangkat) error {
	return validateStruct(perangkatRules{
		Nama:         p.Nama,
		NIP:          p.NIP,
		Jabatan:      p.Jabatan,
		NIK:          p.NIK,
		JenisKelamin: p.JenisKelamin,
		Pendidikan:   p.Pendidikan,
		NoHP:         p.NoHP,
	})
}

type ImportResult struct {
	Count   int    `json:"count"`
	Desa    string `json:"desa"`
	Message string `json:"message"`
}

type ExportFile struct {
	Name        string
	ContentType string
	Data        []byte
}

const (
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"
)

type PerangkatUsecase struct {
	repo      repository.PerangkatRepository
	settings  *SettingUsecase
	publisher Publisher
	log       *logrus.Logger
	kecamatan string
	now       func() time.Time
}

func NewPerangkatUsecase(repo repository.PerangkatRepository, settings *SettingUsecase, publisher Publisher, log *logrus.Logger, kecamatan string) *PerangkatUsecase {
	return &PerangkatUsecase{
		repo:      repo,
		settings:  settings,
		publisher: publisher,
		log:       log,
		kecamatan: kecamatan,
		now:       time.Now,
	}
}

// sessionScope menolak sesi tanpa scope yang sah; "" berarti semua desa.
func sessionScope(s model.Session) (string, error) {
	desa, ok := s.ScopeDesa()
	if !ok {
		return "", apperror.Forbidden("Akses ditolak: profil Anda belum terhubung ke desa. Hubungi admin kecamatan.")
	}
	return desa, nil
}

// scopeFilter: admin desa selalu dikunci ke desanya, admin kecamatan bebas memilih.
func scopeFilter(s model.Session, desa, search string) (repository.PerangkatFilter, error) {
	scoped, err := sessionScope(s)
	if err != nil {
		return repository.PerangkatFilter{}, err
	}
	if scoped != "" {
		desa = scoped
	} else if canonical, ok := model.CanonicalDesa(desa); ok {
		desa = canonical
	}
	return repository.PerangkatFilter{Desa: strings.TrimSpace(desa), Search: search}, nil
}

func (u *PerangkatUsecase) List(ctx context.Context, s model.Session, desa, search string) ([]model.PerangkatView, error) {
	filter, err := scopeFilter(s, desa, search)
	if err != nil {
		return nil, err
	}
	items, err := u.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "gagal mengambil data perangkat", err)
	}
	return toViews(items), nil
}

// Snapshot memuat list untuk subscriber live; scope kosong berarti semua desa.
func (u *PerangkatUsecase) Snapshot(ctx context.Context, scope string) ([]model.PerangkatView, error) {
	items, err := u.repo.FindAll(ctx, repository.PerangkatFilter{Desa: scope})
	if err != nil {
		return nil, err
	}
	return toViews(items), nil
}

func (u *PerangkatUsecase) Get(ctx context.Context, s model.Session, id uint) (*model.Perangkat, error) {
	scoped, err := sessionScope(s)
	if err != nil {
		return nil, err
	}
	p, err := u.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("Data perangkat tidak ditemukan")
	}
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "gagal mengambil data perangkat", err)
	}
	if scoped != "" && p.Desa != scoped {
		return nil, apperror.Forbidden("Akses ditolak: data bukan milik desa Anda")
	}
	return p, nil
}

// Precheck menjalankan pemeriksaan Create/Update tanpa menulis apa pun, dipakai
// sebelum upload foto. id 0 berarti data baru.
func (u *PerangkatUsecase) Precheck(ctx context.Context, s model.Session, id uint, in PerangkatInput) error {
	p := &model.Perangkat{}
	if id != 0 {
		existing, err := u.Get(ctx, s, id)
		if err != nil {
			return err
		}
		p = existing
	}
	in.applyTo(p)
	if err := u.normalizeDesa(s, p); err != nil {
		return err
	}
	return validatePerangkat(p)
}

func (u *PerangkatUsecase) Create(ctx context.Context, s model.Session, in PerangkatInput) (*model.Perangkat, error) {
	p := &model.Perangkat{}
	in.applyTo(p)
	if err := u.normalizeDesa(s, p); err != nil {
		return nil, err
	}
	if err := validatePerangkat(p); err != nil {
		return nil, err
	}

	if err := u.repo.Create(ctx, p); err != nil {
		return nil, apperror.Store("Gagal menyimpan data perangkat", err)
	}
	u.log.WithFields(logrus.Fields{"id": p.ID, "desa": p.Desa, "oleh": s.ID}).Info("Perangkat dibuat")
	u.publisher.Publish(p.Desa)
	return p, nil
}

func (u *PerangkatUsecase) Update(ctx context.Context, s model.Session, id uint, in PerangkatInput) (*model.Perangkat, error) {
	p, err := u.Get(ctx, s, id)
	if err != nil {
		return nil, err
	}
	oldDesa := p.Desa

	in.applyTo(p)
	if err := u.normalizeDesa(s, p); err != nil {
		return nil, err
	}
	if err := validatePerangkat(p); err != nil {
		return nil, err
	}

	if err := u.repo.Update(ctx, p); err != nil {
		return nil, apperror.Store("Gagal memperbarui data perangkat", err)
	}
	u.log.WithFields(logrus.Fields{"id": p.ID, "desa": p.Desa, "oleh": s.ID}).Info("Perangkat diperbarui")
	if oldDesa != p.Desa {
		u.publisher.Publish(oldDesa, p.Desa)
	} else {
		u.publisher.Publish(p.Desa)
	}
	return p, nil
}

// Delete menghapus permanen. Tanpa konfirmasi eksplisit tidak ada yang ditulis.
func (u *PerangkatUsecase) Delete(ctx context.Context, s model.Session, id uint, confirmed bool) error {
	if !confirmed {
		return apperror.Invalid("Penghapusan harus dikonfirmasi. Data yang dihapus tidak dapat dikembalikan.")
	}
	p, err := u.Get(ctx, s, id)
	if err != nil {
		return err
	}
	if err := u.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("Data perangkat tidak ditemukan")
		}
		return apperror.Store("Gagal menghapus data perangkat", err)
	}
	u.log.WithFields(logrus.Fields{"id": id, "desa": p.Desa, "oleh": s.ID}).Info("Perangkat dihapus")
	u.publisher.Publish(p.Desa)
	return nil
}

// normalizeDesa mengunci desa admin desa dan memvalidasi pilihan admin kecamatan.
func (u *PerangkatUsecase) normalizeDesa(s model.Session, p *model.Perangkat) error {
	scoped, err := sessionScope(s)
	if err != nil {
		return err
	}
	if scoped != "" {
		p.Desa = scoped
		return nil
	}
	if p.Desa == "" {
		return apperror.Validation("Desa wajib dipilih", map[string]string{"desa": "wajib diisi"})
	}
	canonical, ok := model.CanonicalDesa(p.Desa)
	if !ok {
		return apperror.Validation(fmt.Sprintf("Desa %q tidak terdaftar di Kecamatan %s", p.Desa, u.kecamatan), map[string]string{"desa": "nilai tidak dikenal"})
	}
	p.Desa = canonical
	return nil
}

// Import membaca file Excel lalu menyimpan semua baris dalam satu transaksi.
func (u *PerangkatUsecase) Import(ctx context.Context, s model.Session, filename string, r io.Reader) (*ImportResult, error) {
	if !s.IsKecamatan() {
		return nil, apperror.Forbidden("Akses ditolak: hanya admin kecamatan yang dapat import data")
	}

	cfg, err := u.settings.UploadConfig(ctx)
	if err != nil {
		return nil, err
	}
	if len(cfg) == 0 || strings.TrimSpace(cfg[model.UploadKeyNama]) == "" {
		return nil, apperror.Invalid("Pengaturan format upload Excel belum diatur. Silakan atur di menu Pengaturan.")
	}

	res, err := u.mapFile(filename, r, cfg)
	if err != nil {
		metrics.ImportFailures.Inc()
		return nil, err
	}

	if err := u.repo.CreateBatch(ctx, res.Drafts); err != nil {
		metrics.ImportFailures.Inc()
		return nil, apperror.Store("Gagal menyimpan data import", err)
	}

	n := len(res.Drafts)
	metrics.ImportedRows.WithLabelValues(res.Desa).Add(float64(n))
	u.log.WithFields(logrus.Fields{"desa": res.Desa, "jumlah": n, "file": filename}).Info("Import Excel berhasil")
	u.publisher.Publish(res.Desa)

	return &ImportResult{
		Count:   n,
		Desa:    res.Desa,
		Message: fmt.Sprintf("%d data untuk Desa %s berhasil di-upload!", n, res.Desa),
	}, nil
}

func (u *PerangkatUsecase) mapFile(filename string, r io.Reader, cfg model.UploadConfig) (*importer.Result, error) {
	sheet, err := importer.ReadSheet(r, filename)
	if err != nil {
		return nil, err
	}
	return importer.Map(sheet, cfg)
}

// Export menyusun laporan dari data yang sedang difilter. Admin kecamatan
// tanpa filter desa mendapat satu sheet per desa.
func (u *PerangkatUsecase) Export(ctx context.Context, s model.Session, format, desa, search string) (*ExportFile, error) {
	filter, err := scopeFilter(s, desa, search)
	if err != nil {
		return nil, err
	}
	items, err := u.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "gagal mengambil data perangkat", err)
	}
	if len(items) == 0 {
		return nil, apperror.Invalid("Tidak ada data untuk diekspor")
	}

	all := s.IsKecamatan() && (filter.Desa == "" || strings.EqualFold(filter.Desa, "all"))
	groups := report.GroupRecords(items, all, filter.Desa)

	signer, err := u.settings.ExportConfig(ctx)
	if err != nil {
		return nil, err
	}
	opts := report.Options{Kecamatan: u.kecamatan, Signer: signer, Now: u.now()}

	var file ExportFile
	switch format {
	case FormatXLSX:
		file.Name = report.FileNameXLSX
		file.ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		file.Data, err = report.BuildXLSX(groups, opts)
	case FormatPDF:
		file.Name = report.FileNamePDF
		file.ContentType = "application/pdf"
		file.Data, err = report.BuildPDF(groups, opts)
	default:
		return nil, apperror.Invalid("Format export tidak dikenal")
	}
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "gagal membuat laporan", err)
	}

	metrics.Exports.WithLabelValues(format).Inc()
	u.log.WithFields(logrus.Fields{"format": format, "grup": len(groups), "jumlah": len(items), "oleh": s.ID}).Info("Laporan dibuat")
	return &file, nil
}

func toViews(items []model.Perangkat) []model.PerangkatView {
	views := make([]model.PerangkatView, 0, len(items))
	for _, p := range items {
		views = append(views, model.NewPerangkatView(p))
	}
	return views
}
