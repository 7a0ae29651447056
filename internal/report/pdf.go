package report

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/pkg/errors"
)

// Lebar kolom dalam mm untuk A4 landscape (area cetak 277 mm).
var pdfColumnWidths = [ColumnCount]float64{
	8, 32, 7, 7, 26, 30, 7, 7, 9, 11, 7, 7, 7, 25, 20, 20, 21, 24,
}

const (
	pdfMargin     = 10.0
	pdfLineHeight = 6.0
	pdfFontSize   = 7.0
)

// BuildPDF menyusun laporan PDF dengan struktur yang sama seperti BuildXLSX:
// setiap grup dimulai di halaman baru, header tabel diulang saat pindah halaman.
func BuildPDF(groups []Group, opts Options) ([]byte, error) {
	if len(groups) == 0 {
		return nil, errors.New("tidak ada data untuk diekspor")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfMargin)
	pdf.SetTitle("Laporan Perangkat Desa", true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-pdfMargin)
		pdf.SetFont("Helvetica", "I", 7)
		pdf.CellFormat(0, 5, fmt.Sprintf("Halaman %d", pdf.PageNo()), "", 0, "R", false, 0, "")
	})

	for i, g := range groups {
		writePDFGroup(pdf, tr, BuildLayout(i, g, opts))
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.Wrap(err, "gagal membuat PDF")
	}
	return buf.Bytes(), nil
}

func writePDFGroup(pdf *fpdf.Fpdf, tr func(string) string, l Layout) {
	pdf.AddPage()
	_, pageHeight := pdf.GetPageSize()
	bottom := pageHeight - pdfMargin - 6

	// Judul dan tahun
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 7, tr(l.Rows[0][0]), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 7, tr(l.Rows[1][0]), "", 1, "C", false, 0, "")
	pdf.Ln(3)
	writePDFHeader(pdf, tr)

	pdf.SetFont("Helvetica", "", pdfFontSize)
	for r := l.DataStart; r < l.SignatureStart-2; r++ {
		if pdf.GetY()+pdfLineHeight > bottom {
			pdf.AddPage()
			writePDFHeader(pdf, tr)
			pdf.SetFont("Helvetica", "", pdfFontSize)
		}
		for c, v := range l.Rows[r] {
			align := "L"
			if header2[c] != "" || c == colNo {
				align = "C"
			}
			pdf.CellFormat(pdfColumnWidths[c], pdfLineHeight, tr(fitText(pdf, v, pdfColumnWidths[c])), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	// Blok tanda tangan selalu utuh di satu halaman
	sigLines := len(l.Rows) - l.SignatureStart
	if pdf.GetY()+float64(sigLines+2)*5 > bottom {
		pdf.AddPage()
	}
	pdf.Ln(10)
	sigX := pdfMargin
	for c := 0; c < SignatureCol; c++ {
		sigX += pdfColumnWidths[c]
	}
	sigWidth := 0.0
	for c := SignatureCol; c < ColumnCount; c++ {
		sigWidth += pdfColumnWidths[c]
	}
	pdf.SetFont("Helvetica", "", 9)
	for r := l.SignatureStart; r < len(l.Rows); r++ {
		pdf.SetX(sigX)
		pdf.CellFormat(sigWidth, 5, tr(l.Rows[r][SignatureCol]), "", 1, "C", false, 0, "")
	}
}

// writePDFHeader menggambar header dua tingkat dengan area gabungan yang sama
// seperti merge pada sheet XLSX.
func writePDFHeader(pdf *fpdf.Fpdf, tr func(string) string) {
	pdf.SetFont("Helvetica", "B", pdfFontSize)
	pdf.SetFillColor(230, 230, 230)
	x0, y0 := pdf.GetXY()
	h := pdfLineHeight

	x := x0
	for c := 0; c < ColumnCount; c++ {
		w := pdfColumnWidths[c]
		switch c {
		case colLaki:
			span := w + pdfColumnWidths[colPerempuan]
			pdf.SetXY(x, y0)
			pdf.CellFormat(span, h, tr(header1[c]), "1", 0, "C", true, 0, "")
		case colSD:
			span := 0.0
			for k := colSD; k <= colS3; k++ {
				span += pdfColumnWidths[k]
			}
			pdf.SetXY(x, y0)
			pdf.CellFormat(span, h, tr(header1[c]), "1", 0, "C", true, 0, "")
		case colPerempuan, colSMP, colSLTA, colDiploma, colS1, colS2, colS3:
			// sudah tercakup oleh judul gabungan
		default:
			pdf.SetXY(x, y0)
			pdf.CellFormat(w, 2*h, tr(header1[c]), "1", 0, "C", true, 0, "")
		}
		if header2[c] != "" {
			pdf.SetXY(x, y0+h)
			pdf.CellFormat(w, h, tr(header2[c]), "1", 0, "C", true, 0, "")
		}
		x += w
	}
	pdf.SetXY(x0, y0+2*h)
}

// fitText memotong teks yang melebihi lebar kolom.
func fitText(pdf *fpdf.Fpdf, s string, width float64) string {
	if s == "" || pdf.GetStringWidth(s) <= width-1 {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes)+"..") > width-1 {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + ".."
}
