package api

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/utils/ptr"

	"github.com/nimblebrain/nimbletools-core/internal/errdefs"
	"github.com/nimblebrain/nimbletools-core/internal/logs"
	"github.com/nimblebrain/nimbletools-core/internal/resources"
	"github.com/nimblebrain/nimbletools-core/internal/tenancy"
)

func (s *Server) handleServerLogs(w http.ResponseWriter, r *http.Request) {
	svc, meta, err := s.serverForRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	query, err := parseLogQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}

	podList, err := s.Clientset.CoreV1().Pods(meta.Namespace()).List(r.Context(), metav1.ListOptions{
		LabelSelector: tenancy.LabelServer + "=" + svc.Name,
	})
	if err != nil {
		cerr := classifyClusterError(err, "list", "pods", svc.Name)
		s.logOperationError(r.Context(), "list", "pods", svc.Name, cerr)
		writeError(w, cerr)
		return
	}

	// Tail up to 2x the requested limit per pod so the merged view still
	// fills the limit after filtering.
	opts := &corev1.PodLogOptions{
		Container:  resources.ContainerName,
		TailLines:  ptr.To(int64(2 * query.Limit)),
		Timestamps: false,
	}
	if query.Since != nil {
		opts.SinceTime = &metav1.Time{Time: *query.Since}
	}

	streams := make([]logs.PodStream, 0, len(podList.Items))
	for i := range podList.Items {
		pod := &podList.Items[i]
		if query.PodName != "" && pod.Name != query.PodName {
			continue
		}

		raw, err := s.Clientset.CoreV1().Pods(pod.Namespace).
			GetLogs(pod.Name, opts).
			Stream(r.Context())
		if err != nil {
			// One unreadable pod (terminating, just scheduled) must not fail
			// the whole query.
			s.Logger.Warn("skipping unreadable pod log stream",
				zap.String("pod", pod.Name),
				zap.Error(err),
			)
			continue
		}
		data, err := io.ReadAll(raw)
		_ = raw.Close()
		if err != nil {
			s.Logger.Warn("truncated pod log stream",
				zap.String("pod", pod.Name),
				zap.Error(err),
			)
			continue
		}

		streams = append(streams, logs.PodStream{
			PodName:       pod.Name,
			ContainerName: resources.ContainerName,
			Raw:           string(data),
		})
	}

	now := time.Now().UTC()
	result := logs.Aggregate(streams, query, now)

	writeJSON(w, http.StatusOK, LogsResponse{
		APIVersion:     Version,
		Logs:           result.Entries,
		Count:          len(result.Entries),
		HasMore:        result.HasMore,
		QueryTimestamp: now,
	})
}

func parseLogQuery(r *http.Request) (logs.Query, error) {
	query := logs.Query{Limit: logs.DefaultLimit}
	params := r.URL.Query()

	if raw := params.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return query, errdefs.Newf(errdefs.ErrInvalidInput, "limit %q is not an integer", raw)
		}
		if limit < 1 || limit > logs.MaxLimit {
			return query, errdefs.Newf(errdefs.ErrInvalidInput,
				"limit must be between 1 and %d, got %d", logs.MaxLimit, limit)
		}
		query.Limit = limit
	}

	if raw := params.Get("level"); raw != "" {
		level := logs.Level(raw)
		if !logs.ValidLevel(level) {
			return query, errdefs.Newf(errdefs.ErrInvalidInput, "unknown log level %q", raw)
		}
		query.Level = level
	}

	for _, bound := range []struct {
		name   string
		target **time.Time
	}{
		{"since", &query.Since},
		{"until", &query.Until},
	} {
		if raw := params.Get(bound.name); raw != "" {
			t, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				return query, errdefs.Newf(errdefs.ErrInvalidInput,
					"%s %q is not an RFC-3339 timestamp", bound.name, raw)
			}
			*bound.target = &t
		}
	}

	query.PodName = params.Get("pod_name")

	return query, nil
}
