package model

import "strings"

// DesaList adalah daftar tetap desa di Kecamatan Punggelan, urutan ini juga
// urutan seri grafik dashboard.
var DesaList = []string{
	"Punggelan", "Petuguran", "Karangsari", "Jembangan", "Tanjungtirta",
	"Sawangan", "Bondolharjo", "Danakerta", "Badakarya", "Tribuana",
	"Sambong", "Klapa", "Kecepit", "Mlaya", "Sidarata", "Purwasana", "Tlaga",
}

const (
	DesaUnknown   = "Unknown"
	DesaTanpaNama = "Tanpa Desa"
)

// CanonicalDesa mencari nama desa tanpa memperhatikan huruf besar/kecil dan
// mengembalikan ejaan resminya.
func CanonicalDesa(name string) (string, bool) {
	name = strings.TrimSpace(name)
	for _, d := range DesaList {
		if strings.EqualFold(d, name) {
			return d, true
		}
	}
	return "", false
}

func IsValidDesa(name string) bool {
	_, ok := CanonicalDesa(name)
	return ok
}
