package usecase

import (
	"context"
	"strings"

	"perangkat-desa-backend/internal/apperror"
	"perangkat-desa-backend/internal/model"
	"perangkat-desa-backend/internal/repository"
)

type DesaSeries struct {
	Desa         string `json:"desa"`
	Lengkap      int    `json:"lengkap"`
	BelumLengkap int    `json:"belum_lengkap"`
}

type DashboardStats struct {
	Total        int    `json:"total"`
	Lengkap      int    `json:"lengkap"`
	BelumLengkap int    `json:"belum_lengkap"`
	Desa         string `json:"desa,omitempty"`

	// Hanya untuk admin kecamatan
	TotalDesa  int          `json:"total_desa,omitempty"`
	DesaTerisi int          `json:"desa_terisi,omitempty"`
	PerDesa    []DesaSeries `json:"per_desa,omitempty"`
}

// Dashboard menghitung kelengkapan memakai daftar field dashboard
// (termasuk NIP dan no HP).
func (u *PerangkatUsecase) Dashboard(ctx context.Context, s model.Session) (*DashboardStats, error) {
	filter, err := scopeFilter(s, "", "")
	if err != nil {
		return nil, err
	}
	items, err := u.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "gagal mengambil data dashboard", err)
	}

	stats := &DashboardStats{Total: len(items), Desa: filter.Desa}
	perDesa := make(map[string]*DesaSeries, len(model.DesaList))
	for _, d := range model.DesaList {
		perDesa[d] = &DesaSeries{Desa: d}
	}

	for _, p := range items {
		lengkap := model.IsLengkapDashboard(p.Fields())
		if lengkap {
			stats.Lengkap++
		} else {
			stats.BelumLengkap++
		}
		if series, ok := perDesa[p.Desa]; ok {
			if lengkap {
				series.Lengkap++
			} else {
				series.BelumLengkap++
			}
		}
	}

	if !s.IsKecamatan() {
		return stats, nil
	}

	counts, err := u.repo.CountByDesa(ctx)
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "gagal menghitung data per desa", err)
	}
	stats.TotalDesa = len(model.DesaList)
	for _, d := range model.DesaList {
		if counts[d] > 0 {
			stats.DesaTerisi++
		}
		stats.PerDesa = append(stats.PerDesa, *perDesa[d])
	}
	return stats, nil
}

type RekapDesa struct {
	Desa       string         `json:"desa"`
	Total      int            `json:"total"`
	Lengkap    int            `json:"lengkap"`
	Laki       int            `json:"laki_laki"`
	Perempuan  int            `json:"perempuan"`
	Pendidikan map[string]int `json:"pendidikan"`
}

// Rekap merangkum jumlah perangkat per desa, urut sesuai daftar desa.
// Desa di luar daftar (mis. hasil import "Unknown") ditaruh di akhir.
func (u *PerangkatUsecase) Rekap(ctx context.Context, s model.Session) ([]RekapDesa, error) {
	if !s.IsKecamatan() {
		return nil, apperror.Forbidden("Akses ditolak: hanya admin kecamatan")
	}
	items, err := u.repo.FindAll(ctx, repository.PerangkatFilter{})
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInternal, "gagal mengambil data rekap", err)
	}

	index := make(map[string]int)
	var rekap []RekapDesa
	add := func(desa string) int {
		if i, ok := index[desa]; ok {
			return i
		}
		index[desa] = len(rekap)
		rekap = append(rekap, RekapDesa{Desa: desa, Pendidikan: make(map[string]int)})
		return len(rekap) - 1
	}
	for _, d := range model.DesaList {
		add(d)
	}

	for _, p := range items {
		desa := strings.TrimSpace(p.Desa)
		if desa == "" {
			desa = model.DesaTanpaNama
		}
		r := &rekap[add(desa)]
		r.Total++
		if model.IsLengkapTabel(p.Fields()) {
			r.Lengkap++
		}
		switch p.JenisKelamin {
		case model.JenisKelaminLaki:
			r.Laki++
		case model.JenisKelaminPerempuan:
			r.Perempuan++
		}
		if p.Pendidikan != "" {
			r.Pendidikan[p.Pendidikan]++
		}
	}
	return rekap, nil
}
