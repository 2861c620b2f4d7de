package middlewares

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func errorApp(h fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/boom", h)
	return app
}

func TestErrorHandlerFiberError(t *testing.T) {
	app := errorApp(func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusConflict, "receipt_number already used")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "receipt_number already used")
}

func TestErrorHandlerValidation(t *testing.T) {
	type dto struct {
		Email  string  `validate:"required,email"`
		Amount float64 `validate:"gt=0"`
	}
	app := errorApp(func(c *fiber.Ctx) error {
		return ValidateStruct(dto{Email: "nope", Amount: -5})
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "validation failed")
	assert.Contains(t, string(body), "Email")
	assert.Contains(t, string(body), "Amount")
}

func TestErrorHandlerRecordNotFound(t *testing.T) {
	app := errorApp(func(c *fiber.Ctx) error {
		return gorm.ErrRecordNotFound
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestErrorHandlerUnknown(t *testing.T) {
	app := errorApp(func(c *fiber.Ctx) error {
		return io.ErrUnexpectedEOF
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "internal server error")
	assert.NotContains(t, string(body), "unexpected EOF")
}
