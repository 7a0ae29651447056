package handler

import (
	"bytes"
	"fmt"
	"io"

	"perangkat-desa-backend/internal/apperror"
	"perangkat-desa-backend/internal/helper"
	"perangkat-desa-backend/internal/middleware"
	"perangkat-desa-backend/internal/usecase"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gofiber/fiber/v2"
)

// ReportHandler menangani import Excel dan export laporan XLSX/PDF.
type ReportHandler struct {
	uc *usecase.PerangkatUsecase
}

func NewReportHandler(uc *usecase.PerangkatUsecase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

func (h *ReportHandler) Import(c *fiber.Ctx) error {
	// 1. Ambil file dari form
	file, err := c.FormFile("file")
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "File Excel wajib diupload")
	}

	src, err := file.Open()
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Gagal membuka file")
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "Gagal membaca file")
	}

	// 2. Pastikan isinya memang workbook, bukan sekadar ekstensi
	if !isSpreadsheet(mimetype.Detect(data)) {
		return apperror.ImportFormat("File harus berformat Excel (.xlsx atau .xls)")
	}

	// 3. Proses import
	session, _ := middleware.CurrentSession(c)
	res, err := h.uc.Import(c.UserContext(), session, file.Filename, bytes.NewReader(data))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": res.Message,
		"data":    res,
	})
}

func (h *ReportHandler) ExportXLSX(c *fiber.Ctx) error {
	return h.export(c, usecase.FormatXLSX)
}

func (h *ReportHandler) ExportPDF(c *fiber.Ctx) error {
	return h.export(c, usecase.FormatPDF)
}

func (h *ReportHandler) export(c *fiber.Ctx, format string) error {
	session, _ := middleware.CurrentSession(c)
	file, err := h.uc.Export(c.UserContext(), session, format, c.Query("desa"), c.Query("search"))
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, file.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", file.Name))
	return c.Send(file.Data)
}

// xlsx terdeteksi sebagai turunan zip, xls sebagai turunan OLE.
func isSpreadsheet(m *mimetype.MIME) bool {
	for ; m != nil; m = m.Parent() {
		switch m.String() {
		case "application/zip", "application/x-ole-storage":
			return true
		}
	}
	return false
}
