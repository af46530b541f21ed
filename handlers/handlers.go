package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/ray-remotestate/pizzeria/cart"
	"github.com/ray-remotestate/pizzeria/catalog"
	"github.com/ray-remotestate/pizzeria/chat"
	"github.com/ray-remotestate/pizzeria/checkout"
	"github.com/ray-remotestate/pizzeria/configurator"
	"github.com/ray-remotestate/pizzeria/models"
)

// Handler serves the shop API. Assistant is nil when no LLM is configured.
type Handler struct {
	Catalog   *catalog.Service
	Carts     cart.Store
	Checkout  *checkout.Service
	Assistant *chat.Assistant
}

const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Error("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// fail maps domain errors onto status codes. Anything unrecognized is logged
// and answered with a 500 that does not leak the cause.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	var verrs checkout.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":  "validation failed",
			"fields": verrs,
		})
	case errors.Is(err, models.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, models.ErrUnavailable):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, models.ErrInvalidTransition),
		errors.Is(err, models.ErrStatusConflict),
		errors.Is(err, checkout.ErrInProgress):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, configurator.ErrUnknownOption),
		errors.Is(err, configurator.ErrIncomplete),
		errors.Is(err, configurator.ErrTooManyInputs),
		errors.Is(err, configurator.ErrNotChoosable),
		errors.Is(err, configurator.ErrUnknownFamily),
		errors.Is(err, checkout.ErrEmptyCart):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, chat.ErrEmptyMessage):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		logrus.WithError(err).WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Error("request failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
