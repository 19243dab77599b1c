package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v5"

	"github.com/samcharles93/prngcl/internal/prng"
)

func writeBadRequest(c *echo.Context, msg string) error {
	return writeError(c, http.StatusBadRequest, "invalid_request_error", msg, "", "")
}

func writeNotFound(c *echo.Context, msg string) error {
	return writeError(c, http.StatusNotFound, "not_found_error", msg, "", "")
}

func writeError(c *echo.Context, status int, errType, msg, param, code string) error {
	return c.JSON(status, map[string]any{
		"error": ResponseError{
			Message: msg,
			Type:    errType,
			Code:    code,
			Param:   param,
		},
	})
}

// writeRunError maps engine and provisioning errors to HTTP statuses.
func writeRunError(c *echo.Context, err error) error {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return writeError(c, http.StatusBadRequest, "invalid_request_error", err.Error(), errorParam(err), "")
	case errors.Is(err, prng.ErrBadRun),
		errors.Is(err, prng.ErrBadParameter):
		return writeBadRequest(c, err.Error())
	case errors.Is(err, prng.ErrUnknownGenerator):
		return writeNotFound(c, err.Error())
	case errors.Is(err, prng.ErrNoMemory):
		return writeError(c, http.StatusInsufficientStorage, "resource_exhausted", err.Error(), "", "no_memory")
	default:
		return writeError(c, http.StatusInternalServerError, "server_error", err.Error(), "", "")
	}
}

// decodeJSON decodes a request body strictly. An empty body decodes to the
// zero value.
func decodeJSON[T any](r io.Reader) (T, error) {
	var out T
	body, err := io.ReadAll(r)
	if err != nil {
		return out, newInvalidRequest(fmt.Sprintf("read body: %v", err))
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return out, nil
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return out, newInvalidRequest(fmt.Sprintf("invalid JSON body: %v", err))
	}
	return out, nil
}
