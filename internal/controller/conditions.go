package controller

import (
	apimeta "k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/nimblebrain/nimbletools-core/api/v1alpha1"
)

// Condition types for MCPService.
const (
	// ConditionReady indicates the service is fully reconciled and serving.
	ConditionReady = "Ready"

	// ConditionWorkloadReady indicates the child Deployment is available.
	ConditionWorkloadReady = "WorkloadReady"

	// ConditionRoutingReady indicates Service and Ingress objects exist.
	ConditionRoutingReady = "RoutingReady"
)

// Condition reasons for terminal failures.
const (
	ReasonInvalidLabels        = "InvalidLabels"
	ReasonInvalidSpec          = "InvalidSpec"
	ReasonArchitectureMismatch = "ArchitectureMismatch"
	ReasonMissingSecrets       = "MissingSecrets"
	ReasonWorkloadFailed       = "WorkloadFailed"
)

// setCondition updates or appends a condition on the service status.
func setCondition(svc *v1alpha1.MCPService, condType string, status metav1.ConditionStatus, reason, message string) {
	apimeta.SetStatusCondition(&svc.Status.Conditions, metav1.Condition{
		Type:               condType,
		Status:             status,
		ObservedGeneration: svc.Generation,
		Reason:             reason,
		Message:            message,
	})
}
