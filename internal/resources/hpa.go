package resources

import (
	autoscalingv2 "k8s.io/api/autoscaling/v2"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/utils/ptr"

	"github.com/nimblebrain/nimbletools-core/api/v1alpha1"
)

// ConcurrencyMetric is the per-pod metric driving autoscaling.
const ConcurrencyMetric = "mcp_concurrent_requests"

// BuildHPA creates the autoscaler for an MCPService when
// scaling.targetConcurrency is set. Returns nil when autoscaling is not
// requested. The HPA floor is one replica; scale-to-zero is expressed through
// spec.replicas instead.
func BuildHPA(svc *v1alpha1.MCPService) *autoscalingv2.HorizontalPodAutoscaler {
	scaling := svc.Spec.Scaling
	if scaling == nil || scaling.TargetConcurrency <= 0 {
		return nil
	}

	minReplicas := MinReplicas(svc)
	if minReplicas < 1 {
		minReplicas = 1
	}
	maxReplicas := scaling.MaxReplicas
	if maxReplicas < minReplicas {
		maxReplicas = minReplicas
	}

	hpa := &autoscalingv2.HorizontalPodAutoscaler{
		ObjectMeta: metav1.ObjectMeta{
			Name:      HPAName(svc),
			Namespace: svc.Namespace,
			Labels:    ServiceLabels(svc),
		},
		Spec: autoscalingv2.HorizontalPodAutoscalerSpec{
			ScaleTargetRef: autoscalingv2.CrossVersionObjectReference{
				APIVersion: "apps/v1",
				Kind:       "Deployment",
				Name:       DeploymentName(svc),
			},
			MinReplicas: ptr.To(minReplicas),
			MaxReplicas: maxReplicas,
			Metrics: []autoscalingv2.MetricSpec{
				{
					Type: autoscalingv2.PodsMetricSourceType,
					Pods: &autoscalingv2.PodsMetricSource{
						Metric: autoscalingv2.MetricIdentifier{
							Name: ConcurrencyMetric,
						},
						Target: autoscalingv2.MetricTarget{
							Type:         autoscalingv2.AverageValueMetricType,
							AverageValue: resource.NewQuantity(int64(scaling.TargetConcurrency), resource.DecimalSI),
						},
					},
				},
			},
		},
	}

	if scaling.ScaleDownDelaySeconds != nil {
		hpa.Spec.Behavior = &autoscalingv2.HorizontalPodAutoscalerBehavior{
			ScaleDown: &autoscalingv2.HPAScalingRules{
				StabilizationWindowSeconds: scaling.ScaleDownDelaySeconds,
			},
		}
	}

	return hpa
}
