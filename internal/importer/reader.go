// Package importer membaca file Excel upload dan memetakannya menjadi draft perangkat.
package importer

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"

	"perangkat-desa-backend/internal/apperror"

	"github.com/extrame/xls"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

const maxXLSRows = 100000

// Sheet adalah isi sheet pertama. Rows berisi nilai sesuai format tampilan,
// Raw berisi nilai mentah sel (tanpa number format) dengan indeks yang sama.
type Sheet struct {
	Rows [][]string
	Raw  [][]string
}

// ReadSheet membaca sheet pertama dari file .xlsx atau .xls. Baris yang
// seluruh selnya kosong dibuang.
func ReadSheet(reader io.Reader, filename string) (*Sheet, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "gagal membaca file")
	}

	var rows, raw [][]string
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xls":
		workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
		if err != nil {
			return nil, apperror.Wrap(apperror.KindImportFormat, "File .xls tidak dapat dibaca", err)
		}
		if workbook.NumSheets() == 0 {
			return nil, apperror.ImportFormat("File Excel tidak memiliki sheet")
		}
		rows = workbook.ReadAllCells(maxXLSRows)
		raw = rows
	case ".xlsx":
		rows, raw, err = readXLSX(data)
		if err != nil {
			return nil, err
		}
	default:
		return nil, apperror.ImportFormat("Format file harus .xlsx atau .xls")
	}

	sheet := dropBlankRows(rows, raw)
	if len(sheet.Rows) == 0 {
		return nil, apperror.ImportFormat("Sheet pertama kosong")
	}
	return sheet, nil
}

func readXLSX(data []byte) ([][]string, [][]string, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, nil, apperror.Wrap(apperror.KindImportFormat, "File .xlsx tidak dapat dibaca", err)
	}
	defer func() { _ = file.Close() }()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, apperror.ImportFormat("File Excel tidak memiliki sheet")
	}

	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, nil, errors.Wrap(err, "gagal membaca baris")
	}
	raw, err := file.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, nil, errors.Wrap(err, "gagal membaca nilai mentah")
	}
	return rows, raw, nil
}

func dropBlankRows(rows, raw [][]string) *Sheet {
	sheet := &Sheet{}
	for i, row := range rows {
		if isBlankRow(row) {
			continue
		}
		sheet.Rows = append(sheet.Rows, row)
		if i < len(raw) {
			sheet.Raw = append(sheet.Raw, raw[i])
		} else {
			sheet.Raw = append(sheet.Raw, row)
		}
	}
	return sheet
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
