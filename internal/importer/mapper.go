package importer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"perangkat-desa-backend/internal/apperror"
	"perangkat-desa-backend/internal/model"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var desaPattern = regexp.MustCompile(`(?i)DESA\s(.*?)\s\(`)

// Result adalah hasil pemetaan satu file: semua draft bertanda desa yang sama.
type Result struct {
	Desa   string
	Drafts []model.Perangkat
}

// Map mengubah isi sheet menjadi draft perangkat berdasarkan pemetaan judul kolom.
func Map(sheet *Sheet, cfg model.UploadConfig) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, apperror.Invalid(err.Error())
	}
	if sheet == nil || len(sheet.Rows) == 0 {
		return nil, apperror.ImportFormat("Sheet pertama kosong")
	}

	desa := ExtractDesa(cellValue(sheet.Rows[0], 0))

	// 1. Cari baris header yang memuat judul kolom nama
	namaLabel := strings.TrimSpace(cfg[model.UploadKeyNama])
	headerIdx := -1
	for i, row := range sheet.Rows {
		if indexOf(row, namaLabel) >= 0 {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return nil, apperror.ImportFormat(fmt.Sprintf("Format Excel tidak sesuai: kolom %q tidak ditemukan. Periksa Pengaturan Upload.", namaLabel))
	}

	// 2. Peta kunci internal -> indeks kolom, label yang tidak ada dilewati
	colMap := make(map[string]int, len(cfg))
	header := sheet.Rows[headerIdx]
	for key, label := range cfg {
		if idx := indexOf(header, strings.TrimSpace(label)); idx >= 0 {
			colMap[key] = idx
		}
	}

	// 3. Data dimulai dua baris setelah header (header dua tingkat)
	var drafts []model.Perangkat
	for i := headerIdx + 2; i < len(sheet.Rows); i++ {
		row := sheet.Rows[i]
		var raw []string
		if i < len(sheet.Raw) {
			raw = sheet.Raw[i]
		}

		get := func(key string) string {
			idx, ok := colMap[key]
			if !ok {
				return ""
			}
			return cellValue(row, idx)
		}
		getRaw := func(key string) string {
			idx, ok := colMap[key]
			if !ok {
				return ""
			}
			if v := cellValue(raw, idx); v != "" {
				return plainNumber(v)
			}
			return cellValue(row, idx)
		}

		nama := get(model.UploadKeyNama)
		if nama == "" {
			continue
		}

		tempat, tgl := splitTTL(get(model.UploadKeyTTL))

		jk := ""
		if isMarked(get(model.UploadKeyLaki)) {
			jk = model.JenisKelaminLaki
		} else if isMarked(get(model.UploadKeyPerempuan)) {
			jk = model.JenisKelaminPerempuan
		}

		pendidikan := ""
		if isMarked(get(model.UploadKeyPendidikanS1)) {
			pendidikan = "S1"
		} else if isMarked(get(model.UploadKeyPendidikanSLTA)) {
			pendidikan = "SLTA"
		}

		drafts = append(drafts, model.Perangkat{
			Desa:          desa,
			Nama:          nama,
			Jabatan:       get(model.UploadKeyJabatan),
			NIK:           getRaw(model.UploadKeyNIK),
			NoHP:          getRaw(model.UploadKeyNoHP),
			JenisKelamin:  jk,
			TempatLahir:   tempat,
			TglLahir:      tgl,
			Pendidikan:    pendidikan,
			NoSK:          get(model.UploadKeyNoSK),
			TglPelantikan: get(model.UploadKeyTglPelantikan),
			AkhirJabatan:  get(model.UploadKeyAkhirJabatan),
		})
	}

	if len(drafts) == 0 {
		return nil, apperror.ImportFormat("Tidak ada data valid yang ditemukan di dalam file Excel.")
	}
	return &Result{Desa: desa, Drafts: drafts}, nil
}

// ExtractDesa mengambil nama desa dari judul seperti "DESA TLAGA (01)".
// Nama dicocokkan ke daftar desa, jika tidak ada dikembalikan dalam Title Case.
func ExtractDesa(title string) string {
	m := desaPattern.FindStringSubmatch(title)
	if m == nil || strings.TrimSpace(m[1]) == "" {
		return model.DesaUnknown
	}
	name := strings.TrimSpace(m[1])
	if canonical, ok := model.CanonicalDesa(name); ok {
		return canonical
	}
	return cases.Title(language.Indonesian).String(strings.ToLower(name))
}

func splitTTL(ttl string) (string, string) {
	if ttl == "" {
		return "", ""
	}
	parts := strings.SplitN(ttl, ",", 2)
	tempat := strings.TrimSpace(parts[0])
	if len(parts) == 1 {
		return tempat, ""
	}
	return tempat, strings.TrimSpace(parts[1])
}

// isMarked: sel penanda dianggap terisi jika tidak kosong dan bukan angka nol.
func isMarked(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && v != "0"
}

// plainNumber mengubah notasi ilmiah (mis. 3.304E+15) menjadi digit biasa.
func plainNumber(v string) string {
	if !strings.ContainsAny(v, "eE") {
		return v
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return v
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func indexOf(row []string, label string) int {
	if label == "" {
		return -1
	}
	for i, cell := range row {
		if strings.TrimSpace(cell) == label {
			return i
		}
	}
	return -1
}
