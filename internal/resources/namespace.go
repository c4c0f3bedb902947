package resources

import (
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/nimblebrain/nimbletools-core/internal/tenancy"
)

// BuildWorkspaceNamespace creates the namespace realising a workspace,
// carrying the four identity labels plus the workspace marker.
func BuildWorkspaceNamespace(meta tenancy.Metadata) *corev1.Namespace {
	labels := meta.Labels()
	labels[tenancy.LabelWorkspace] = "true"
	labels["app.kubernetes.io/managed-by"] = ManagedBy

	return &corev1.Namespace{
		ObjectMeta: metav1.ObjectMeta{
			Name:   meta.Namespace(),
			Labels: labels,
		},
	}
}

// BuildWorkspaceSecret creates the workspace-secrets Secret. The control
// plane is the sole writer; whole-object replacement keeps writes atomic.
func BuildWorkspaceSecret(meta tenancy.Metadata, data map[string][]byte) *corev1.Secret {
	return &corev1.Secret{
		ObjectMeta: metav1.ObjectMeta{
			Name:      WorkspaceSecretName,
			Namespace: meta.Namespace(),
			Labels:    meta.Labels(),
		},
		Type: corev1.SecretTypeOpaque,
		Data: data,
	}
}
