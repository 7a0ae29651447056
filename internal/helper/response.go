package helper

import (
	"perangkat-desa-backend/internal/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

func Success(c *fiber.Ctx, message string, data interface{}) error {
	return SuccessWithCode(c, fiber.StatusOK, message, data)
}

// SuccessWithCode dipakai misalnya untuk 201 setelah create.
func SuccessWithCode(c *fiber.Ctx, code int, message string, data interface{}) error {
	return c.Status(code).JSON(fiber.Map{
		"message": message,
		"data":    data,
	})
}

func Error(c *fiber.Ctx, code int, message string) error {
	return c.Status(code).JSON(fiber.Map{"error": message})
}

func ErrorWithDetails(c *fiber.Ctx, code int, message string, details map[string]string) error {
	return c.Status(code).JSON(fiber.Map{
		"error":  message,
		"errors": details,
	})
}

// ErrorHandler dipasang di fiber.Config. Handler cukup mengembalikan error
// dari usecase; status dan pesan ditentukan di sini.
func ErrorHandler(log *logrus.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return Error(c, fe.Code, fe.Message)
		}

		code := apperror.HTTPStatus(err)
		if code >= fiber.StatusInternalServerError {
			log.WithError(err).WithFields(logrus.Fields{
				"method":     c.Method(),
				"path":       c.Path(),
				"request_id": c.GetRespHeader(fiber.HeaderXRequestID),
			}).Error("Request gagal")
		}

		if fields := apperror.FieldsOf(err); len(fields) > 0 {
			return ErrorWithDetails(c, code, apperror.PublicMessage(err), fields)
		}
		return Error(c, code, apperror.PublicMessage(err))
	}
}
