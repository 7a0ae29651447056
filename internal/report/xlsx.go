package report

import (
	"bytes"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

var columnWidths = [ColumnCount]float64{
	5, 28, 4, 4, 22, 26, 5, 5, 6, 7, 5, 5, 5, 22, 14, 14, 16, 20,
}

type xlsxStyles struct {
	title, header, cell, signature int
}

func newXLSXStyles(f *excelize.File) (xlsxStyles, error) {
	var s xlsxStyles
	var err error
	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}

	if s.title, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	}); err != nil {
		return s, err
	}
	if s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Border:    border,
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	}); err != nil {
		return s, err
	}
	if s.cell, err = f.NewStyle(&excelize.Style{
		Border:    border,
		Alignment: &excelize.Alignment{Vertical: "center", WrapText: true},
	}); err != nil {
		return s, err
	}
	s.signature, err = f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	return s, err
}

// BuildXLSX menyusun satu workbook dengan satu sheet per grup.
func BuildXLSX(groups []Group, opts Options) ([]byte, error) {
	if len(groups) == 0 {
		return nil, errors.New("tidak ada data untuk diekspor")
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	styles, err := newXLSXStyles(f)
	if err != nil {
		return nil, errors.Wrap(err, "gagal membuat style")
	}

	defaultSheet := f.GetSheetName(0)
	for i, g := range groups {
		layout := BuildLayout(i, g, opts)
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, layout.SheetName); err != nil {
				return nil, errors.Wrap(err, "gagal mengganti nama sheet")
			}
		} else if _, err := f.NewSheet(layout.SheetName); err != nil {
			return nil, errors.Wrapf(err, "gagal membuat sheet %s", layout.SheetName)
		}
		if err := writeLayout(f, layout, styles); err != nil {
			return nil, errors.Wrapf(err, "gagal menulis sheet %s", layout.SheetName)
		}
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, errors.Wrap(err, "gagal menulis workbook")
	}
	return bytesOf(buf), nil
}

func writeLayout(f *excelize.File, l Layout, s xlsxStyles) error {
	sheet := l.SheetName

	for i, w := range columnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return err
		}
	}

	for r, row := range l.Rows {
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for c, v := range row {
			values[c] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}

	last := len(l.Rows)
	if err := styleRange(f, sheet, 0, 0, 1, ColumnCount-1, s.title); err != nil {
		return err
	}
	if err := styleRange(f, sheet, 3, 0, 4, ColumnCount-1, s.header); err != nil {
		return err
	}
	if l.SignatureStart-2 > l.DataStart {
		if err := styleRange(f, sheet, l.DataStart, 0, l.SignatureStart-3, ColumnCount-1, s.cell); err != nil {
			return err
		}
	}
	if err := styleRange(f, sheet, l.SignatureStart, SignatureCol, last-1, SignatureCol, s.signature); err != nil {
		return err
	}

	for _, m := range l.Merges {
		from, err := excelize.CoordinatesToCellName(m.FromCol+1, m.FromRow+1)
		if err != nil {
			return err
		}
		to, err := excelize.CoordinatesToCellName(m.ToCol+1, m.ToRow+1)
		if err != nil {
			return err
		}
		if err := f.MergeCell(sheet, from, to); err != nil {
			return err
		}
	}
	return nil
}

func styleRange(f *excelize.File, sheet string, fromRow, fromCol, toRow, toCol, style int) error {
	from, err := excelize.CoordinatesToCellName(fromCol+1, fromRow+1)
	if err != nil {
		return err
	}
	to, err := excelize.CoordinatesToCellName(toCol+1, toRow+1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, from, to, style)
}

func bytesOf(buf *bytes.Buffer) []byte {
	if buf == nil {
		return nil
	}
	return buf.Bytes()
}
