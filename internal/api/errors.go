package api

import (
	"encoding/json"
	"errors"
	"net/http"

	apierrors "k8s.io/apimachinery/pkg/api/errors"

	"github.com/nimblebrain/nimbletools-core/internal/errdefs"
	"github.com/nimblebrain/nimbletools-core/internal/registry"
)

// writeJSON marshals a response body. Encoding failures at this point are
// unrecoverable mid-response and only logged by the caller's middleware.
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps a platform error onto its HTTP surface. Translation errors
// keep their machine-readable code; cluster-API errors are classified before
// mapping.
func writeError(w http.ResponseWriter, err error) {
	var terr *registry.TranslationError
	if errors.As(err, &terr) {
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Detail: terr.Detail, Code: terr.Code})
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errdefs.IsInvalidInput(err):
		status = http.StatusUnprocessableEntity
	case errdefs.IsUnauthenticated(err):
		status = http.StatusUnauthorized
	case errdefs.IsForbidden(err):
		status = http.StatusForbidden
	case errdefs.IsNotFound(err):
		status = http.StatusNotFound
	case errdefs.IsConflict(err):
		status = http.StatusConflict
	case errdefs.IsTransient(err):
		status = http.StatusServiceUnavailable
	case errdefs.IsInvariant(err):
		status = http.StatusInternalServerError
	}

	writeJSON(w, status, ErrorResponse{Detail: err.Error()})
}

// classifyClusterError folds a cluster-API error into the platform taxonomy,
// wrapping it in the standard user-visible message format.
func classifyClusterError(err error, operation, resourceType, resourceID string) error {
	kind := errdefs.ErrTransient
	switch {
	case apierrors.IsNotFound(err):
		kind = errdefs.ErrNotFound
	case apierrors.IsAlreadyExists(err) || apierrors.IsConflict(err):
		kind = errdefs.ErrConflict
	case apierrors.IsInvalid(err) || apierrors.IsBadRequest(err):
		kind = errdefs.ErrInvalidInput
	case apierrors.IsForbidden(err):
		kind = errdefs.ErrForbidden
	}
	return errdefs.New(kind, operation, resourceType, resourceID, err)
}
