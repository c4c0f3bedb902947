package resources

import (
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/nimblebrain/nimbletools-core/api/v1alpha1"
)

// ConfigMapName returns the env ConfigMap name for a service.
func ConfigMapName(svc *v1alpha1.MCPService) string {
	return svc.Name + "-env"
}

// BuildConfigMap creates the ConfigMap holding the service's literal
// environment values. Entries promoted to workspace-secret references are
// excluded: the secret is the only source for those keys. Returns nil when
// nothing remains to store.
func BuildConfigMap(svc *v1alpha1.MCPService, secretKeys map[string]bool) *corev1.ConfigMap {
	data := make(map[string]string, len(svc.Spec.Environment))
	for key, value := range svc.Spec.Environment {
		if secretKeys[key] {
			continue
		}
		data[key] = value
	}
	if len(data) == 0 {
		return nil
	}

	return &corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{
			Name:      ConfigMapName(svc),
			Namespace: svc.Namespace,
			Labels:    ServiceLabels(svc),
		},
		Data: data,
	}
}
