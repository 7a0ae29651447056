package model

import "strings"

// Dua daftar field wajib dipakai di dua tempat berbeda dan sengaja dibiarkan
// terpisah: statistik dashboard menghitung no_hp dan nip, tabel data menghitung
// ktp_url.
var (
	FieldWajibDashboard = []string{
		"nama", "nip", "jabatan", "nik", "tempat_lahir", "tgl_lahir",
		"pendidikan", "no_sk", "tgl_pelantikan", "akhir_jabatan", "no_hp", "foto_url",
	}
	FieldWajibTabel = []string{
		"nama", "jabatan", "nik", "tempat_lahir", "tgl_lahir",
		"pendidikan", "no_sk", "tgl_pelantikan", "akhir_jabatan", "foto_url", "ktp_url",
	}
)

// MissingFields mengembalikan field wajib yang tidak ada atau kosong setelah di-trim.
func MissingFields(fields map[string]string, required []string) []string {
	var missing []string
	for _, key := range required {
		if strings.TrimSpace(fields[key]) == "" {
			missing = append(missing, key)
		}
	}
	return missing
}

func isLengkap(fields map[string]string, required []string) bool {
	for _, key := range required {
		if strings.TrimSpace(fields[key]) == "" {
			return false
		}
	}
	return true
}

func IsLengkapDashboard(fields map[string]string) bool {
	return isLengkap(fields, FieldWajibDashboard)
}

func IsLengkapTabel(fields map[string]string) bool {
	return isLengkap(fields, FieldWajibTabel)
}
