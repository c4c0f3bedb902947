package resources

import (
	networkingv1 "k8s.io/api/networking/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/utils/ptr"

	"github.com/nimblebrain/nimbletools-core/api/v1alpha1"
	"github.com/nimblebrain/nimbletools-core/internal/tenancy"
)

const rewriteAnnotation = "nginx.ingress.kubernetes.io/rewrite-target"

// BuildMCPIngress routes /{workspace_id}/{server}/mcp to the server's MCP
// endpoint, rewriting the external path to the in-container path.
func BuildMCPIngress(svc *v1alpha1.MCPService, domain string) *networkingv1.Ingress {
	return buildIngress(svc, domain, MCPIngressName(svc), "mcp", IngressPath(svc, "mcp"), MCPPath(svc))
}

// BuildHealthIngress routes /{workspace_id}/{server}/health to the server's
// health endpoint.
func BuildHealthIngress(svc *v1alpha1.MCPService, domain string) *networkingv1.Ingress {
	return buildIngress(svc, domain, HealthIngressName(svc), "health", IngressPath(svc, "health"), HealthPath(svc))
}

// IngressPath returns the external path for the given endpoint suffix. The
// base defaults to /{workspace_id}/{server_name}.
func IngressPath(svc *v1alpha1.MCPService, suffix string) string {
	base := svc.Spec.Routing.Path
	if base == "" {
		base = "/" + svc.Labels[tenancy.LabelWorkspaceID] + "/" + svc.Name
	}
	return base + "/" + suffix
}

func buildIngress(svc *v1alpha1.MCPService, domain, name, ingressType, path, rewriteTo string) *networkingv1.Ingress {
	labels := ServiceLabels(svc)
	labels[tenancy.LabelIngressType] = ingressType

	pathType := networkingv1.PathTypePrefix

	return &networkingv1.Ingress{
		ObjectMeta: metav1.ObjectMeta{
			Name:      name,
			Namespace: svc.Namespace,
			Labels:    labels,
			Annotations: map[string]string{
				rewriteAnnotation: rewriteTo,
			},
		},
		Spec: networkingv1.IngressSpec{
			IngressClassName: ptr.To("nginx"),
			Rules: []networkingv1.IngressRule{
				{
					Host: domain,
					IngressRuleValue: networkingv1.IngressRuleValue{
						HTTP: &networkingv1.HTTPIngressRuleValue{
							Paths: []networkingv1.HTTPIngressPath{
								{
									Path:     path,
									PathType: &pathType,
									Backend: networkingv1.IngressBackend{
										Service: &networkingv1.IngressServiceBackend{
											Name: ServiceName(svc),
											Port: networkingv1.ServiceBackendPort{
												Number: RoutingPort(svc),
											},
										},
									},
								},
							},
						},
					},
				},
			},
		},
	}
}
