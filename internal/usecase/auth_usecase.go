package usecase

import (
	"context"
	"strings"
	"time"

	"perangkat-desa-backend/internal/apperror"
	"perangkat-desa-backend/internal/model"
	"perangkat-desa-backend/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Claims adalah isi JWT. Role dan desa di token hanya informasi; yang
// dipakai untuk otorisasi selalu profil terbaru di database.
type Claims struct {
	AkunID uint   `json:"user_id"`
	Role   string `json:"role"`
	Desa   string `json:"desa,omitempty"`
	jwt.RegisteredClaims
}

type LoginResult struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	Session   model.Session `json:"session"`
}

type AuthUsecase struct {
	repo   repository.AkunRepository
	secret []byte
	ttl    time.Duration
	log    *logrus.Logger
	now    func() time.Time
}

func NewAuthUsecase(repo repository.AkunRepository, secret string, ttl time.Duration, log *logrus.Logger) *AuthUsecase {
	return &AuthUsecase{repo: repo, secret: []byte(secret), ttl: ttl, log: log, now: time.Now}
}

// HashPassword membuat hash bcrypt untuk disimpan di tabel akun.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "gagal hash password")
	}
	return string(hashed), nil
}

func (u *AuthUsecase) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperror.Invalid("Email dan password wajib diisi")
	}

	// 1. Cari akun berdasarkan email
	akun, err := u.repo.FindByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.Unauthorized("Email atau password salah")
	}
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "gagal mencari akun", err)
	}

	// 2. Bandingkan password
	if err := bcrypt.CompareHashAndPassword([]byte(akun.Password), []byte(password)); err != nil {
		u.log.WithField("email", email).Info("Login gagal: password salah")
		return nil, apperror.Unauthorized("Email atau password salah")
	}

	// 3. Akun tanpa profil lengkap tidak boleh masuk ke tampilan mana pun
	if akun.Profil == nil {
		u.log.WithField("akun_id", akun.ID).Warn("Login ditolak: profil tidak ditemukan")
		return nil, apperror.New(apperror.KindAuthMismatch, "Profil pengguna tidak ditemukan. Hubungi admin kecamatan.")
	}
	if !akun.Profil.Provisioned() {
		u.log.WithFields(logrus.Fields{"akun_id": akun.ID, "role": akun.Profil.Role, "desa": akun.Profil.Desa}).Warn("Login ditolak: profil belum lengkap")
		return nil, apperror.New(apperror.KindAuthMismatch, "Profil pengguna belum lengkap. Hubungi admin kecamatan.")
	}

	// 4. Buat token JWT
	now := u.now()
	expiresAt := now.Add(u.ttl)
	claims := Claims{
		AkunID: akun.ID,
		Role:   akun.Profil.Role,
		Desa:   akun.Profil.Desa,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(u.secret)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "gagal membuat token", err)
	}

	return &LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		Session:   sessionFrom(akun.ID, akun.Profil, claims.ID, expiresAt),
	}, nil
}

// Authenticate memverifikasi token lalu me-resolve profil terbaru. Token yang
// valid tetapi profilnya hilang langsung dicabut (paksa logout).
func (u *AuthUsecase) Authenticate(ctx context.Context, tokenString string) (model.Session, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("metode signing tidak dikenal")
		}
		return u.secret, nil
	}, jwt.WithTimeFunc(u.now))
	if err != nil || !token.Valid || claims.ID == "" {
		return model.Session{}, apperror.Unauthorized("Token tidak valid atau kadaluwarsa")
	}

	revoked, err := u.repo.IsTokenRevoked(ctx, claims.ID)
	if err != nil {
		return model.Session{}, apperror.Wrap(apperror.KindInternal, "gagal memeriksa token", err)
	}
	if revoked {
		return model.Session{}, apperror.Unauthorized("Sesi sudah berakhir, silakan login kembali")
	}

	expiresAt := u.now().Add(u.ttl)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	profil, err := u.repo.FindProfil(ctx, claims.AkunID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		u.forceLogout(ctx, claims, expiresAt)
		u.log.WithField("akun_id", claims.AkunID).Warn("Profil tidak ditemukan, sesi dipaksa logout")
		return model.Session{}, apperror.New(apperror.KindAuthMismatch, "Profil pengguna tidak ditemukan, silakan login ulang")
	}
	if err != nil {
		return model.Session{}, apperror.Wrap(apperror.KindInternal, "gagal memuat profil", err)
	}
	if !profil.Provisioned() {
		u.forceLogout(ctx, claims, expiresAt)
		u.log.WithFields(logrus.Fields{"akun_id": claims.AkunID, "role": profil.Role, "desa": profil.Desa}).Warn("Profil belum lengkap, sesi dipaksa logout")
		return model.Session{}, apperror.New(apperror.KindAuthMismatch, "Profil pengguna belum lengkap, hubungi admin kecamatan")
	}

	return sessionFrom(claims.AkunID, profil, claims.ID, expiresAt), nil
}

func (u *AuthUsecase) forceLogout(ctx context.Context, claims *Claims, expiresAt time.Time) {
	if err := u.repo.RevokeToken(ctx, claims.ID, expiresAt); err != nil {
		u.log.WithError(err).WithField("akun_id", claims.AkunID).Error("Gagal mencabut token")
	}
}

func (u *AuthUsecase) Logout(ctx context.Context, s model.Session) error {
	if s.JTI == "" {
		return apperror.Unauthorized("Sesi tidak valid")
	}
	if err := u.repo.RevokeToken(ctx, s.JTI, s.ExpiresAt); err != nil {
		return apperror.Store("Gagal logout", err)
	}
	return nil
}

func (u *AuthUsecase) Me(ctx context.Context, s model.Session) (*model.Akun, error) {
	akun, err := u.repo.FindByID(ctx, s.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("Akun tidak ditemukan")
	}
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "gagal memuat akun", err)
	}
	return akun, nil
}

// PurgeRevoked menghapus catatan token yang sudah lewat masa berlakunya.
func (u *AuthUsecase) PurgeRevoked(ctx context.Context) {
	n, err := u.repo.PurgeExpiredTokens(ctx, u.now())
	if err != nil {
		u.log.WithError(err).Error("Gagal membersihkan token kadaluwarsa")
		return
	}
	if n > 0 {
		u.log.WithField("jumlah", n).Info("Token kadaluwarsa dibersihkan")
	}
}

func sessionFrom(akunID uint, p *model.Profil, jti string, expiresAt time.Time) model.Session {
	return model.Session{
		ID:        akunID,
		Role:      p.Role,
		Desa:      p.Desa,
		Nama:      p.Nama,
		JTI:       jti,
		ExpiresAt: expiresAt,
	}
}
