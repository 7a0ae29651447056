// Package apperror berisi jenis error domain yang dipetakan ke status HTTP oleh handler.
package apperror

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
)

type Kind int

const (
	KindInternal Kind = iota
	KindInvalid
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindTooLarge
	KindUnavailable
	// Sesi valid tetapi profil tidak ditemukan; token dicabut.
	KindAuthMismatch
	// Header tidak dikenali atau tidak ada baris valid di file upload.
	KindImportFormat
	// Gagal create/update/delete/batch ke database.
	KindStoreOperation
	// Gagal upload gambar ke image host.
	KindUpload
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
	// Detail per field untuk error validasi.
	Fields map[string]string
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Invalid(message string) *Error      { return New(KindInvalid, message) }
func Unauthorized(message string) *Error { return New(KindUnauthorized, message) }
func Forbidden(message string) *Error    { return New(KindForbidden, message) }
func NotFound(message string) *Error     { return New(KindNotFound, message) }
func Conflict(message string) *Error     { return New(KindConflict, message) }
func ImportFormat(message string) *Error { return New(KindImportFormat, message) }

func Validation(message string, fields map[string]string) *Error {
	return &Error{Kind: KindInvalid, Message: message, Fields: fields}
}

func Store(message string, err error) *Error  { return Wrap(KindStoreOperation, message, err) }
func Upload(message string, err error) *Error { return Wrap(KindUpload, message, err) }

// KindOf mengembalikan jenis error; error yang tidak dikenal dianggap internal.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// Is melaporkan apakah err (atau salah satu pembungkusnya) berjenis kind.
func Is(err error, kind Kind) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == kind
}

// HTTPStatus memetakan error ke status code fiber.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindInvalid:
		return fiber.StatusBadRequest
	case KindUnauthorized, KindAuthMismatch:
		return fiber.StatusUnauthorized
	case KindForbidden:
		return fiber.StatusForbidden
	case KindNotFound:
		return fiber.StatusNotFound
	case KindConflict:
		return fiber.StatusConflict
	case KindTooLarge:
		return fiber.StatusRequestEntityTooLarge
	case KindUnavailable:
		return fiber.StatusServiceUnavailable
	case KindImportFormat:
		return fiber.StatusUnprocessableEntity
	case KindUpload:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// FieldsOf mengembalikan detail field dari error validasi, nil jika tidak ada.
func FieldsOf(err error) map[string]string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Fields
	}
	return nil
}

// PublicMessage mengembalikan pesan yang aman ditampilkan ke klien.
// Detail error internal tidak pernah dikirim keluar.
func PublicMessage(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		if ae.Kind == KindInternal {
			return "Terjadi kesalahan pada server"
		}
		return ae.Message
	}
	return "Terjadi kesalahan pada server"
}
