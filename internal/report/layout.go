// Package report menyusun laporan perangkat desa dalam bentuk XLSX dan PDF.
// Kedua format memakai Layout yang sama supaya isi dan strukturnya identik.
package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"perangkat-desa-backend/internal/model"
)

const (
	Checkmark   = "V"
	ColumnCount = 18
	// Judul, tahun, spasi, dua baris header.
	HeaderRows = 5
	// Dua baris kosong + blok tanda tangan tujuh baris.
	TrailerRows = 9

	// Kolom blok tanda tangan (kolom O).
	SignatureCol = 14

	FileNameXLSX = "Laporan_Perangkat_Desa.xlsx"
	FileNamePDF  = "Laporan_Perangkat_Desa.pdf"

	maxSheetDesaLen = 25
)

const (
	colNo = iota
	colNama
	colLaki
	colPerempuan
	colJabatan
	colTTL
	colSD
	colSMP
	colSLTA
	colDiploma
	colS1
	colS2
	colS3
	colNoSK
	colTglPelantikan
	colAkhirJabatan
	colNoHP
	colNIK
)

var header1 = [ColumnCount]string{
	"NO", "N A M A", "Jenis Kelamin", "", "JABATAN", "TEMPAT, TGL LAHIR",
	"PENDIDIKAN", "", "", "", "", "", "",
	"NO SK", "TANGGAL PELANTIKAN", "AKHIR MASA JABATAN", "No. HP / WA", "N I K",
}

var header2 = [ColumnCount]string{
	colLaki: "L", colPerempuan: "P",
	colSD: "SD", colSMP: "SMP", colSLTA: "SLTA", colDiploma: "D1-D3",
	colS1: "S1", colS2: "S2", colS3: "S3",
}

// Kolom yang judulnya digabung vertikal di dua baris header.
var verticalHeaderCols = []int{colNo, colNama, colJabatan, colTTL, colNoSK, colTglPelantikan, colAkhirJabatan, colNoHP, colNIK}

var pendidikanCol = map[string]int{
	"SD": colSD, "SMP": colSMP, "SLTA": colSLTA,
	"D1": colDiploma, "D2": colDiploma, "D3": colDiploma,
	"S1": colS1, "S2": colS2, "S3": colS3,
}

var bulanIndonesia = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

// Group adalah kumpulan record satu desa yang menjadi satu sheet/bagian laporan.
type Group struct {
	Desa    string
	Records []model.Perangkat
}

// GroupRecords mengelompokkan record per desa (urutan kemunculan) jika all,
// atau membungkus semuanya dalam satu grup berlabel desa.
func GroupRecords(records []model.Perangkat, all bool, desa string) []Group {
	if len(records) == 0 {
		return nil
	}
	if !all {
		return []Group{{Desa: desa, Records: records}}
	}

	var groups []Group
	index := make(map[string]int)
	for _, r := range records {
		key := strings.TrimSpace(r.Desa)
		if key == "" {
			key = model.DesaTanpaNama
		}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{Desa: key})
		}
		groups[i].Records = append(groups[i].Records, r)
	}
	return groups
}

// Options adalah parameter yang sama untuk semua grup dalam satu laporan.
type Options struct {
	Kecamatan string
	Signer    model.ExportConfig
	Now       time.Time
}

func (o Options) normalized() Options {
	if o.Kecamatan == "" {
		o.Kecamatan = "Punggelan"
	}
	if o.Now.IsZero() {
		o.Now = time.Now()
	}
	o.Signer = o.Signer.WithDefaults(o.Kecamatan)
	return o
}

// Merge adalah area sel gabungan, indeks 0-based dan inklusif.
type Merge struct {
	FromRow, FromCol int
	ToRow, ToCol     int
}

// Layout adalah grid lengkap satu sheet.
type Layout struct {
	SheetName string
	Rows      [][]string
	Merges    []Merge
	// Indeks baris pertama data dan baris pertama blok tanda tangan.
	DataStart      int
	SignatureStart int
}

// BuildLayout menyusun grid sheet ke-index (0-based) untuk satu grup.
func BuildLayout(index int, g Group, opts Options) Layout {
	opts = opts.normalized()
	blank := func() []string { return make([]string, ColumnCount) }

	title := blank()
	title[0] = fmt.Sprintf("DATA PERANGKAT DESA %s (%02d) KECAMATAN %s",
		strings.ToUpper(g.Desa), index+1, strings.ToUpper(opts.Kecamatan))
	year := blank()
	year[0] = fmt.Sprintf("TAHUN %d", opts.Now.Year())

	h1 := blank()
	copy(h1, header1[:])
	h2 := blank()
	copy(h2, header2[:])

	rows := [][]string{title, year, blank(), h1, h2}

	for i, r := range g.Records {
		rows = append(rows, recordRow(i+1, r))
	}

	rows = append(rows, blank(), blank())
	signatureStart := len(rows)
	sig := opts.Signer
	for _, line := range []string{
		fmt.Sprintf("%s, %s", opts.Kecamatan, FormatTanggalPanjang(opts.Now)),
		sig.JabatanPenandaTangan,
		"",
		"",
		sig.NamaPenandaTangan,
		sig.PangkatPenandaTangan,
		sig.NIPPenandaTangan,
	} {
		row := blank()
		row[SignatureCol] = line
		rows = append(rows, row)
	}

	return Layout{
		SheetName:      SheetName(index, g.Desa),
		Rows:           rows,
		Merges:         headerMerges(),
		DataStart:      HeaderRows,
		SignatureStart: signatureStart,
	}
}

func headerMerges() []Merge {
	merges := []Merge{
		{FromRow: 0, FromCol: 0, ToRow: 0, ToCol: ColumnCount - 1},
		{FromRow: 1, FromCol: 0, ToRow: 1, ToCol: ColumnCount - 1},
		{FromRow: 3, FromCol: colLaki, ToRow: 3, ToCol: colPerempuan},
		{FromRow: 3, FromCol: colSD, ToRow: 3, ToCol: colS3},
	}
	for _, c := range verticalHeaderCols {
		merges = append(merges, Merge{FromRow: 3, FromCol: c, ToRow: 4, ToCol: c})
	}
	return merges
}

func recordRow(no int, r model.Perangkat) []string {
	row := make([]string, ColumnCount)
	row[colNo] = strconv.Itoa(no)
	row[colNama] = r.Nama
	switch strings.ToUpper(strings.TrimSpace(r.JenisKelamin)) {
	case model.JenisKelaminLaki:
		row[colLaki] = Checkmark
	case model.JenisKelaminPerempuan:
		row[colPerempuan] = Checkmark
	}
	row[colJabatan] = r.Jabatan
	row[colTTL] = joinTTL(r.TempatLahir, FormatTanggal(r.TglLahir))
	if c, ok := pendidikanCol[strings.ToUpper(strings.TrimSpace(r.Pendidikan))]; ok {
		row[c] = Checkmark
	}
	row[colNoSK] = r.NoSK
	row[colTglPelantikan] = FormatTanggal(r.TglPelantikan)
	row[colAkhirJabatan] = FormatTanggal(r.AkhirJabatan)
	row[colNoHP] = r.NoHP
	row[colNIK] = r.NIK
	return row
}

func joinTTL(tempat, tgl string) string {
	tempat = strings.TrimSpace(tempat)
	switch {
	case tempat == "":
		return tgl
	case tgl == "":
		return tempat
	default:
		return tempat + ", " + tgl
	}
}

var tanggalLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"02/01/2006",
	"02-01-2006",
	"2/1/2006",
}

// FormatTanggal menampilkan tanggal sebagai DD/MM/YYYY. Teks yang bukan
// tanggal dikembalikan apa adanya.
func FormatTanggal(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, layout := range tanggalLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("02/01/2006")
		}
	}
	return s
}

// FormatTanggalPanjang menghasilkan "19 Oktober 2026".
func FormatTanggalPanjang(t time.Time) string {
	return fmt.Sprintf("%d %s %d", t.Day(), bulanIndonesia[t.Month()-1], t.Year())
}

// SheetName menghasilkan "1. TLAGA": nomor urut 1-based + nama desa maksimal
// 25 karakter, tanpa karakter yang dilarang Excel.
func SheetName(index int, desa string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return -1
		}
		return r
	}, strings.ToUpper(strings.TrimSpace(desa)))
	if runes := []rune(name); len(runes) > maxSheetDesaLen {
		name = string(runes[:maxSheetDesaLen])
	}
	return fmt.Sprintf("%d. %s", index+1, name)
}
