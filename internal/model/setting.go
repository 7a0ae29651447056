package model

import (
	"fmt"
	"sort"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	SettingExport   = "exportConfig"
	SettingUpload   = "uploadConfig"
	SettingBranding = "branding"
)

type Setting struct {
	gorm.Model
	Key   string         `json:"key" gorm:"uniqueIndex;size:64;not null"`
	Value datatypes.JSON `json:"value"`
}

type ExportConfig struct {
	NamaPenandaTangan    string `json:"namaPenandaTangan" yaml:"namaPenandaTangan"`
	JabatanPenandaTangan string `json:"jabatanPenandaTangan" yaml:"jabatanPenandaTangan"`
	PangkatPenandaTangan string `json:"pangkatPenandaTangan" yaml:"pangkatPenandaTangan"`
	NIPPenandaTangan     string `json:"nipPenandaTangan" yaml:"nipPenandaTangan"`
}

// WithDefaults mengisi nilai kosong dengan nilai bawaan blok tanda tangan.
func (e ExportConfig) WithDefaults(kecamatan string) ExportConfig {
	if strings.TrimSpace(e.JabatanPenandaTangan) == "" {
		e.JabatanPenandaTangan = "Camat " + kecamatan
	}
	if strings.TrimSpace(e.NamaPenandaTangan) == "" {
		e.NamaPenandaTangan = "NAMA CAMAT"
	}
	if strings.TrimSpace(e.PangkatPenandaTangan) == "" {
		e.PangkatPenandaTangan = "Pangkat / Golongan"
	}
	if strings.TrimSpace(e.NIPPenandaTangan) == "" {
		e.NIPPenandaTangan = "NIP. XXXXXX"
	}
	return e
}

// Kunci internal yang boleh dipetakan ke judul kolom Excel upload.
const (
	UploadKeyNama           = "nama"
	UploadKeyJabatan        = "jabatan"
	UploadKeyNIK            = "nik"
	UploadKeyNoHP           = "no_hp"
	UploadKeyNoSK           = "no_sk"
	UploadKeyTglPelantikan  = "tgl_pelantikan"
	UploadKeyAkhirJabatan   = "akhir_jabatan"
	UploadKeyTTL            = "ttl"
	UploadKeyLaki           = "jenis_kelamin_l"
	UploadKeyPerempuan      = "jenis_kelamin_p"
	UploadKeyPendidikanS1   = "pendidikan_s1"
	UploadKeyPendidikanSLTA = "pendidikan_slta"
)

var UploadKeys = []string{
	UploadKeyNama, UploadKeyJabatan, UploadKeyNIK, UploadKeyNoHP, UploadKeyNoSK,
	UploadKeyTglPelantikan, UploadKeyAkhirJabatan, UploadKeyTTL, UploadKeyLaki,
	UploadKeyPerempuan, UploadKeyPendidikanS1, UploadKeyPendidikanSLTA,
}

// UploadConfig memetakan kunci internal ke teks judul kolom di file upload.
type UploadConfig map[string]string

// Validate menolak kunci yang tidak dikenal dan mewajibkan kunci "nama".
func (u UploadConfig) Validate() error {
	if len(u) == 0 {
		return fmt.Errorf("pengaturan format upload Excel belum diatur")
	}
	known := make(map[string]bool, len(UploadKeys))
	for _, k := range UploadKeys {
		known[k] = true
	}
	var unknown []string
	for k := range u {
		if !known[k] {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("kunci pengaturan upload tidak dikenal: %s", strings.Join(unknown, ", "))
	}
	if strings.TrimSpace(u[UploadKeyNama]) == "" {
		return fmt.Errorf("pengaturan upload wajib memiliki kolom %q", UploadKeyNama)
	}
	return nil
}

type Branding struct {
	AppName       string `json:"appName" yaml:"appName"`
	LoginTitle    string `json:"loginTitle" yaml:"loginTitle"`
	LoginSubtitle string `json:"loginSubtitle" yaml:"loginSubtitle"`
	LoginLogoURL  string `json:"loginLogoUrl" yaml:"loginLogoUrl"`
}
