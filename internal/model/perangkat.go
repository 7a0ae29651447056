package model

import "gorm.io/gorm"

const (
	JenisKelaminLaki      = "L"
	JenisKelaminPerempuan = "P"
)

// Kolom pendidikan pada laporan, urut dari kiri ke kanan.
var PendidikanList = []string{"SD", "SMP", "SLTA", "D1", "D2", "D3", "S1", "S2", "S3"}

type Perangkat struct {
	gorm.Model
	Desa          string `json:"desa" gorm:"index;size:64"`
	Nama          string `json:"nama"`
	NIP           string `json:"nip" gorm:"column:nip"`
	Jabatan       string `json:"jabatan"`
	NIK           string `json:"nik" gorm:"column:nik"`
	JenisKelamin  string `json:"jenis_kelamin" gorm:"size:1"`
	TempatLahir   string `json:"tempat_lahir"`
	TglLahir      string `json:"tgl_lahir"`
	Pendidikan    string `json:"pendidikan" gorm:"size:8"`
	NoSK          string `json:"no_sk" gorm:"column:no_sk"`
	TglPelantikan string `json:"tgl_pelantikan"`
	AkhirJabatan  string `json:"akhir_jabatan"`
	NoHP          string `json:"no_hp" gorm:"column:no_hp"`
	FotoURL       string `json:"foto_url"`
	KTPURL        string `json:"ktp_url" gorm:"column:ktp_url"`
}

// Fields mengembalikan isi record sebagai peta nama field -> nilai, dipakai
// oleh predikat kelengkapan.
func (p Perangkat) Fields() map[string]string {
	return map[string]string{
		"desa":           p.Desa,
		"nama":           p.Nama,
		"nip":            p.NIP,
		"jabatan":        p.Jabatan,
		"nik":            p.NIK,
		"jenis_kelamin":  p.JenisKelamin,
		"tempat_lahir":   p.TempatLahir,
		"tgl_lahir":      p.TglLahir,
		"pendidikan":     p.Pendidikan,
		"no_sk":          p.NoSK,
		"tgl_pelantikan": p.TglPelantikan,
		"akhir_jabatan":  p.AkhirJabatan,
		"no_hp":          p.NoHP,
		"foto_url":       p.FotoURL,
		"ktp_url":        p.KTPURL,
	}
}

// PerangkatView adalah bentuk response list: record + status kelengkapan tabel.
type PerangkatView struct {
	Perangkat
	Lengkap bool `json:"lengkap"`
}

func NewPerangkatView(p Perangkat) PerangkatView {
	return PerangkatView{Perangkat: p, Lengkap: IsLengkapTabel(p.Fields())}
}
