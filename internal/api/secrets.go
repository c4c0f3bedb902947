package api

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/types"

	"github.com/nimblebrain/nimbletools-core/internal/errdefs"
	"github.com/nimblebrain/nimbletools-core/internal/resources"
	"github.com/nimblebrain/nimbletools-core/internal/tenancy"
)

// The control plane is the sole writer of workspace-secrets. Writes replace
// the whole object under its resource version, keeping them atomic.

func (s *Server) handleListSecrets(w http.ResponseWriter, r *http.Request) {
	_, meta, err := s.workspaceForRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	secret, err := s.getWorkspaceSecret(r, meta)
	if err != nil {
		writeError(w, err)
		return
	}

	keys := make([]string, 0)
	if secret != nil {
		for key := range secret.Data {
			keys = append(keys, key)
		}
		sort.Strings(keys)
	}

	writeJSON(w, http.StatusOK, SecretsResponse{APIVersion: Version, Keys: keys, Count: len(keys)})
}

func (s *Server) handleSetSecret(w http.ResponseWriter, r *http.Request) {
	_, meta, err := s.workspaceForRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req SetSecretRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errdefs.Newf(errdefs.ErrInvalidInput, "malformed request body: %v", err))
		return
	}
	if req.Key == "" {
		writeError(w, errdefs.Newf(errdefs.ErrInvalidInput, "secret key must not be empty"))
		return
	}

	secret, err := s.getWorkspaceSecret(r, meta)
	if err != nil {
		writeError(w, err)
		return
	}

	if secret == nil {
		desired := resources.BuildWorkspaceSecret(meta, map[string][]byte{req.Key: []byte(req.Value)})
		if err := s.Client.Create(r.Context(), desired); err != nil {
			err = classifyClusterError(err, "create", "workspace secret", meta.WorkspaceID)
			s.logOperationError(r.Context(), "create", "workspace secret", meta.WorkspaceID, err)
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, Ack{APIVersion: Version, Status: "stored"})
		return
	}

	if secret.Data == nil {
		secret.Data = map[string][]byte{}
	}
	secret.Data[req.Key] = []byte(req.Value)
	if err := s.Client.Update(r.Context(), secret); err != nil {
		err = classifyClusterError(err, "update", "workspace secret", meta.WorkspaceID)
		s.logOperationError(r.Context(), "update", "workspace secret", meta.WorkspaceID, err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, Ack{APIVersion: Version, Status: "stored"})
}

func (s *Server) handleDeleteSecret(w http.ResponseWriter, r *http.Request) {
	_, meta, err := s.workspaceForRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	key := chi.URLParam(r, "key")

	secret, err := s.getWorkspaceSecret(r, meta)
	if err != nil {
		writeError(w, err)
		return
	}
	if secret == nil || secret.Data[key] == nil {
		writeError(w, errdefs.Newf(errdefs.ErrNotFound, "secret key %q not found", key))
		return
	}

	delete(secret.Data, key)
	if err := s.Client.Update(r.Context(), secret); err != nil {
		err = classifyClusterError(err, "update", "workspace secret", meta.WorkspaceID)
		s.logOperationError(r.Context(), "update", "workspace secret", meta.WorkspaceID, err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, Ack{APIVersion: Version, Status: "deleted"})
}

// getWorkspaceSecret returns the workspace-secrets Secret or nil when it
// does not exist yet. The expected 404 is not logged as an error.
func (s *Server) getWorkspaceSecret(r *http.Request, meta tenancy.Metadata) (*corev1.Secret, error) {
	var secret corev1.Secret
	err := s.Client.Get(r.Context(), types.NamespacedName{
		Name:      resources.WorkspaceSecretName,
		Namespace: meta.Namespace(),
	}, &secret)
	if err != nil {
		if apierrors.IsNotFound(err) {
			return nil, nil
		}
		err = classifyClusterError(err, "get", "workspace secret", meta.WorkspaceID)
		s.logOperationError(r.Context(), "get", "workspace secret", meta.WorkspaceID, err)
		return nil, err
	}
	return &secret, nil
}
