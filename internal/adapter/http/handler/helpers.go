package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"strconv"
	"strings"

	"github.com/Temutjin2k/campus-radar/internal/domain/models"
	t "github.com/Temutjin2k/campus-radar/internal/domain/types"
	"github.com/Temutjin2k/campus-radar/internal/service/auth"
	"github.com/google/uuid"
)

type envelope map[string]any

const maxBodyBytes = 1_048_576

func writeJSON(w http.ResponseWriter, status int, data any, headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return errors.New("failed to encode json")
	}

	js = append(js, '\n')

	maps.Copy(w.Header(), headers)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(js)

	return nil
}

func readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError
		var maxBytesError *http.MaxBytesError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")

		// encoding/json has no typed error for unknown fields (golang/go#29035)
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)

		case errors.As(err, &maxBytesError):
			return fmt.Errorf("body must not be larger than %d bytes", maxBytesError.Limit)
		case errors.As(err, &invalidUnmarshalError):
			return fmt.Errorf("invalid unmarshal error: %w", err)
		default:
			return err
		}
	}

	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

// readFloat parses an optional query parameter, returning def when it is absent.
func readFloat(r *http.Request, key string, def float64) (float64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", key)
	}
	return v, nil
}

func readInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return v, nil
}

// viewerID returns the caller set by the auth middleware.
func viewerID(r *http.Request) (uuid.UUID, bool) {
	return models.ViewerFromContext(r.Context())
}

func GetCode(err error) int {
	switch {
	case IsOneOf(err, t.ErrValidation):
		return http.StatusUnprocessableEntity
	case IsOneOf(err, t.ErrRateLimited):
		return http.StatusTooManyRequests
	case IsOneOf(err, t.ErrNotFound):
		return http.StatusNotFound
	case IsOneOf(err, t.ErrUnavailable):
		return http.StatusServiceUnavailable
	case IsOneOf(err, auth.ErrInvalidToken, auth.ErrExpToken):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// errorMessage keeps store and internal details out of responses.
func errorMessage(err error) string {
	switch GetCode(err) {
	case http.StatusInternalServerError:
		return "the server encountered a problem and could not process your request"
	case http.StatusServiceUnavailable:
		return t.ErrUnavailable.Error()
	default:
		return err.Error()
	}
}

func IsOneOf(err error, targets ...error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
