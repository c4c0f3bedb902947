package resources

import (
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/intstr"
	"k8s.io/utils/ptr"

	"github.com/nimblebrain/nimbletools-core/api/v1alpha1"
)

// ContainerName is the name of the MCP server container in every pod.
const ContainerName = "mcp-server"

// BuildDeployment creates the workload for an MCPService. The security
// context is hard-coded to the platform baseline and is not configurable
// per service.
func BuildDeployment(svc *v1alpha1.MCPService, image ImageConfig, secretKeys map[string]bool) *appsv1.Deployment {
	labels := ServiceLabels(svc)

	container := corev1.Container{
		Name:            ContainerName,
		Image:           image.Image,
		ImagePullPolicy: image.PullPolicy,
		Ports: []corev1.ContainerPort{
			{
				Name:          "http",
				ContainerPort: svc.Spec.Container.Port,
				Protocol:      corev1.ProtocolTCP,
			},
		},
		Env: BuildEnvVars(svc, image, secretKeys),
		LivenessProbe: &corev1.Probe{
			ProbeHandler: corev1.ProbeHandler{
				HTTPGet: &corev1.HTTPGetAction{
					Path: HealthPath(svc),
					Port: intstr.FromInt32(svc.Spec.Container.Port),
				},
			},
			InitialDelaySeconds: 10,
			PeriodSeconds:       30,
		},
		SecurityContext: &corev1.SecurityContext{
			RunAsNonRoot:             ptr.To(true),
			ReadOnlyRootFilesystem:   ptr.To(true),
			AllowPrivilegeEscalation: ptr.To(false),
			Capabilities: &corev1.Capabilities{
				Drop: []corev1.Capability{"ALL"},
			},
		},
	}

	if svc.Spec.Deployment.HealthPath != "" {
		container.ReadinessProbe = &corev1.Probe{
			ProbeHandler: corev1.ProbeHandler{
				HTTPGet: &corev1.HTTPGetAction{
					Path: svc.Spec.Deployment.HealthPath,
					Port: intstr.FromInt32(svc.Spec.Container.Port),
				},
			},
			InitialDelaySeconds: 5,
			PeriodSeconds:       10,
		}
	}

	if svc.Spec.Resources != nil {
		container.Resources = *svc.Spec.Resources
	}

	// stdio servers run their executable directly; the runtime base image
	// bridges the transport.
	if svc.Spec.Deployment.Protocol == v1alpha1.ProtocolStdio && svc.Spec.Deployment.Stdio != nil {
		container.Command = []string{svc.Spec.Deployment.Stdio.Executable}
		container.Args = svc.Spec.Deployment.Stdio.Args
		container.WorkingDir = svc.Spec.Deployment.Stdio.WorkingDir
	}

	return &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{
			Name:      DeploymentName(svc),
			Namespace: svc.Namespace,
			Labels:    labels,
		},
		Spec: appsv1.DeploymentSpec{
			Replicas: ptr.To(DesiredReplicas(svc)),
			Selector: &metav1.LabelSelector{
				MatchLabels: SelectorLabels(svc),
			},
			Template: corev1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{
					Labels: labels,
				},
				Spec: corev1.PodSpec{
					SecurityContext: &corev1.PodSecurityContext{
						RunAsNonRoot: ptr.To(true),
						SeccompProfile: &corev1.SeccompProfile{
							Type: corev1.SeccompProfileTypeRuntimeDefault,
						},
					},
					Containers: []corev1.Container{container},
				},
			},
		},
	}
}
