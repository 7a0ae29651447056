package usecase

import (
	"fmt"
	"reflect"
	"strings"

	"perangkat-desa-backend/internal/apperror"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator memakai nama tag json di pesan error supaya sama dengan payload.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

var tagMessages = map[string]string{
	"required": "wajib diisi",
	"email":    "format email tidak valid",
	"min":      "terlalu pendek",
	"max":      "terlalu panjang",
	"oneof":    "nilai tidak dikenal",
	"numeric":  "harus berupa angka",
}

// validateStruct menjalankan validator dan menerjemahkan hasilnya ke apperror.
func validateStruct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperror.Invalid("Input tidak valid")
	}

	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		msg, ok := tagMessages[fe.Tag()]
		if !ok {
			msg = fmt.Sprintf("tidak valid (%s)", fe.Tag())
		}
		fields[fe.Field()] = msg
	}
	return apperror.Validation("Validasi gagal", fields)
}
