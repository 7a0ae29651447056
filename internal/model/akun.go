package model

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleAdminKecamatan = "admin_kecamatan"
	RoleAdminDesa      = "admin_desa"
)

// Akun menyimpan kredensial login. Data peran ada di Profil.
type Akun struct {
	gorm.Model
	Email    string `json:"email" gorm:"unique;not null;size:191"`
	Password string `json:"-"`

	Profil *Profil `json:"profil,omitempty" gorm:"foreignKey:AkunID"`
}

type Profil struct {
	gorm.Model
	AkunID uint   `json:"akun_id" gorm:"uniqueIndex;not null"`
	Nama   string `json:"nama"`
	Role   string `json:"role" gorm:"size:32;not null"`
	Desa   string `json:"desa" gorm:"size:64"`
}

// Provisioned melaporkan apakah profil boleh masuk ke tampilan mana pun:
// peran harus dikenal dan admin desa wajib punya desa yang terdaftar.
func (p *Profil) Provisioned() bool {
	switch p.Role {
	case RoleAdminKecamatan:
		return true
	case RoleAdminDesa:
		return IsValidDesa(p.Desa)
	}
	return false
}

// RevokedToken mencatat JWT yang sudah logout atau dipaksa logout.
type RevokedToken struct {
	ID        uint      `gorm:"primarykey"`
	JTI       string    `gorm:"column:jti;uniqueIndex;size:64"`
	ExpiresAt time.Time `gorm:"index"`
	CreatedAt time.Time
}

// Session adalah identitas yang sudah di-resolve untuk satu request.
type Session struct {
	ID   uint   `json:"id"`
	Role string `json:"role"`
	Desa string `json:"desa,omitempty"`
	Nama string `json:"nama"`

	JTI       string    `json:"-"`
	ExpiresAt time.Time `json:"-"`
}

func (s Session) IsKecamatan() bool {
	return s.Role == RoleAdminKecamatan
}

// ScopeDesa mengembalikan desa yang dikunci untuk sesi ini. Admin kecamatan
// mendapat ("", true) yang berarti semua desa. Sesi dengan peran tidak dikenal
// atau admin desa tanpa desa terdaftar selalu mendapat ok=false.
func (s Session) ScopeDesa() (desa string, ok bool) {
	switch s.Role {
	case RoleAdminKecamatan:
		return "", true
	case RoleAdminDesa:
		return CanonicalDesa(s.Desa)
	}
	return "", false
}
