package resources

import (
	"fmt"

	"github.com/nimblebrain/nimbletools-core/api/v1alpha1"
)

// ValidateSpec enforces the structural invariants of an MCPService spec that
// the CRD schema cannot express. Violations are terminal: the reconciler
// reports Failed and does not retry until the spec changes.
func ValidateSpec(svc *v1alpha1.MCPService) error {
	if svc.Spec.Container.Port <= 0 {
		return fmt.Errorf("spec.container.port must be positive, got %d", svc.Spec.Container.Port)
	}

	switch svc.Spec.Deployment.Protocol {
	case v1alpha1.ProtocolHTTP:
	case v1alpha1.ProtocolStdio:
		if svc.Spec.Deployment.Stdio == nil {
			return fmt.Errorf("spec.deployment.stdio is required for stdio protocol")
		}
		if svc.Spec.Deployment.Stdio.Executable == "" {
			return fmt.Errorf("spec.deployment.stdio.executable must not be empty")
		}
	default:
		return fmt.Errorf("spec.deployment.protocol must be %q or %q, got %q",
			v1alpha1.ProtocolHTTP, v1alpha1.ProtocolStdio, svc.Spec.Deployment.Protocol)
	}

	if svc.Spec.Replicas != nil && *svc.Spec.Replicas < 0 {
		return fmt.Errorf("spec.replicas must not be negative, got %d", *svc.Spec.Replicas)
	}

	if scaling := svc.Spec.Scaling; scaling != nil {
		min := int32(0)
		if scaling.MinReplicas != nil {
			min = *scaling.MinReplicas
		}
		if min < 0 {
			return fmt.Errorf("spec.scaling.minReplicas must not be negative, got %d", min)
		}
		if scaling.MaxReplicas != 0 && scaling.MaxReplicas < min {
			return fmt.Errorf("spec.scaling.maxReplicas (%d) must be >= minReplicas (%d)",
				scaling.MaxReplicas, min)
		}
		if svc.Spec.Replicas != nil && *svc.Spec.Replicas < min {
			return fmt.Errorf("spec.replicas (%d) must be >= spec.scaling.minReplicas (%d)",
				*svc.Spec.Replicas, min)
		}
	}

	for i, pkg := range svc.Spec.Packages {
		switch pkg.RegistryType {
		case v1alpha1.RegistryTypeOCI, v1alpha1.RegistryTypeMCPB:
		default:
			return fmt.Errorf("spec.packages[%d].registryType must be %q or %q, got %q",
				i, v1alpha1.RegistryTypeOCI, v1alpha1.RegistryTypeMCPB, pkg.RegistryType)
		}
		if pkg.Identifier == "" {
			return fmt.Errorf("spec.packages[%d].identifier must not be empty", i)
		}
	}

	return nil
}
