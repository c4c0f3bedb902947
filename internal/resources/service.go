package resources

import (
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/intstr"

	"github.com/nimblebrain/nimbletools-core/api/v1alpha1"
)

// BuildService creates the ClusterIP Service fronting the MCPService pods.
func BuildService(svc *v1alpha1.MCPService) *corev1.Service {
	return &corev1.Service{
		ObjectMeta: metav1.ObjectMeta{
			Name:      ServiceName(svc),
			Namespace: svc.Namespace,
			Labels:    ServiceLabels(svc),
		},
		Spec: corev1.ServiceSpec{
			Type:     corev1.ServiceTypeClusterIP,
			Selector: SelectorLabels(svc),
			Ports: []corev1.ServicePort{
				{
					Name:       "http",
					Port:       RoutingPort(svc),
					TargetPort: intstr.FromString("http"),
					Protocol:   corev1.ProtocolTCP,
				},
			},
		},
	}
}
