package handler

import (
	"mime/multipart"
	"strings"

	"perangkat-desa-backend/internal/helper"
	"perangkat-desa-backend/internal/middleware"
	"perangkat-desa-backend/internal/storage"
	"perangkat-desa-backend/internal/usecase"

	"github.com/gofiber/fiber/v2"
)

const (
	folderFoto = "perangkat/foto"
	folderKTP  = "perangkat/ktp"
)

type PerangkatHandler struct {
	uc       *usecase.PerangkatUsecase
	uploader *storage.Uploader
}

func NewPerangkatHandler(uc *usecase.PerangkatUsecase, uploader *storage.Uploader) *PerangkatHandler {
	return &PerangkatHandler{uc: uc, uploader: uploader}
}

func (h *PerangkatHandler) GetAll(c *fiber.Ctx) error {
	session, _ := middleware.CurrentSession(c)
	items, err := h.uc.List(c.UserContext(), session, c.Query("desa"), c.Query("search"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": items})
}

func (h *PerangkatHandler) GetByID(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return helper.Error(c, fiber.StatusBadRequest, "ID tidak valid")
	}

	session, _ := middleware.CurrentSession(c)
	p, err := h.uc.Get(c.UserContext(), session, uint(id))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": p})
}

func (h *PerangkatHandler) Create(c *fiber.Ctx) error {
	in, err := h.parseInput(c, 0)
	if err != nil {
		return err
	}

	session, _ := middleware.CurrentSession(c)
	p, err := h.uc.Create(c.UserContext(), session, in)
	if err != nil {
		return err
	}
	return helper.SuccessWithCode(c, fiber.StatusCreated, "Data perangkat berhasil ditambahkan", p)
}

func (h *PerangkatHandler) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return helper.Error(c, fiber.StatusBadRequest, "ID tidak valid")
	}
	in, err := h.parseInput(c, uint(id))
	if err != nil {
		return err
	}

	session, _ := middleware.CurrentSession(c)
	p, err := h.uc.Update(c.UserContext(), session, uint(id), in)
	if err != nil {
		return err
	}
	return helper.Success(c, "Data perangkat berhasil diperbarui", p)
}

func (h *PerangkatHandler) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return helper.Error(c, fiber.StatusBadRequest, "ID tidak valid")
	}

	session, _ := middleware.CurrentSession(c)
	if err := h.uc.Delete(c.UserContext(), session, uint(id), c.QueryBool("confirm")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Data perangkat berhasil dihapus"})
}

// parseInput menerima JSON atau multipart. Untuk multipart, data diperiksa dulu
// (desa, nama, scope) baru foto_profil dan foto_ktp diunggah. id 0 berarti data baru.
func (h *PerangkatHandler) parseInput(c *fiber.Ctx, id uint) (usecase.PerangkatInput, error) {
	var in usecase.PerangkatInput
	if !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		if err := c.BodyParser(&in); err != nil {
			return in, fiber.NewError(fiber.StatusBadRequest, "Format data salah")
		}
		return in, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return in, fiber.NewError(fiber.StatusBadRequest, "Format form salah")
	}
	in = inputFromForm(form.Value)

	// Submit yang pasti ditolak tidak boleh meninggalkan gambar di image host
	if len(form.File["foto_profil"]) > 0 || len(form.File["foto_ktp"]) > 0 {
		session, _ := middleware.CurrentSession(c)
		if err := h.uc.Precheck(c.UserContext(), session, id, in); err != nil {
			return in, err
		}
	}

	// Upload Foto (opsional)
	if url, err := h.uploadFirst(c, form, "foto_profil", folderFoto); err != nil {
		return in, err
	} else if url != "" {
		in.FotoURL = &url
	}
	if url, err := h.uploadFirst(c, form, "foto_ktp", folderKTP); err != nil {
		return in, err
	} else if url != "" {
		in.KTPURL = &url
	}
	return in, nil
}

func (h *PerangkatHandler) uploadFirst(c *fiber.Ctx, form *multipart.Form, field, folder string) (string, error) {
	files := form.File[field]
	if len(files) == 0 {
		return "", nil
	}
	return h.uploader.UploadFile(c.UserContext(), folder, files[0])
}

func inputFromForm(values map[string][]string) usecase.PerangkatInput {
	var in usecase.PerangkatInput
	fields := map[string]**string{
		"desa":           &in.Desa,
		"nama":           &in.Nama,
		"nip":            &in.NIP,
		"jabatan":        &in.Jabatan,
		"nik":            &in.NIK,
		"jenis_kelamin":  &in.JenisKelamin,
		"tempat_lahir":   &in.TempatLahir,
		"tgl_lahir":      &in.TglLahir,
		"pendidikan":     &in.Pendidikan,
		"no_sk":          &in.NoSK,
		"tgl_pelantikan": &in.TglPelantikan,
		"akhir_jabatan":  &in.AkhirJabatan,
		"no_hp":          &in.NoHP,
	}
	for key, dst := range fields {
		if v, ok := values[key]; ok && len(v) > 0 {
			val := v[0]
			*dst = &val
		}
	}
	return in
}
