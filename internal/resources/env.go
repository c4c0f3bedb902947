package resources

import (
	"sort"

	corev1 "k8s.io/api/core/v1"

	"github.com/nimblebrain/nimbletools-core/api/v1alpha1"
)

// Bundle download env var names consumed by the runtime base images.
const (
	EnvBundleURL    = "BUNDLE_URL"
	EnvBundleSHA256 = "BUNDLE_SHA256"
)

// BuildEnvVars assembles the container environment. Ordering is stable so
// that semantic diffs against the live Deployment stay minimal:
//
//  1. platform bundle parameters (when a runtime base image is used),
//  2. literal environment entries, alphabetized,
//  3. declared environmentVariables, in input order.
//
// secretKeys is the set of keys present in the workspace-secrets Secret. A
// literal entry whose key also exists there is emitted as the secret
// reference only -- never both. Remaining literal entries reference the
// service's env ConfigMap. Declared entries resolve to secret references
// when the key exists; secret-flagged entries always reference the Secret.
func BuildEnvVars(svc *v1alpha1.MCPService, image ImageConfig, secretKeys map[string]bool) []corev1.EnvVar {
	var envs []corev1.EnvVar
	emitted := make(map[string]bool)

	if image.BundleURL != "" {
		envs = append(envs, corev1.EnvVar{Name: EnvBundleURL, Value: image.BundleURL})
		emitted[EnvBundleURL] = true
		if image.BundleSHA256 != "" {
			envs = append(envs, corev1.EnvVar{Name: EnvBundleSHA256, Value: image.BundleSHA256})
			emitted[EnvBundleSHA256] = true
		}
	}

	configMapName := ConfigMapName(svc)
	names := make([]string, 0, len(svc.Spec.Environment))
	for name := range svc.Spec.Environment {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if emitted[name] {
			continue
		}
		if secretKeys[name] {
			envs = append(envs, envFromWorkspaceSecret(name))
		} else {
			envs = append(envs, envFromConfigMap(name, configMapName))
		}
		emitted[name] = true
	}

	for _, decl := range svc.Spec.EnvironmentVariables {
		if emitted[decl.Name] {
			continue
		}
		if decl.IsSecret || secretKeys[decl.Name] {
			envs = append(envs, envFromWorkspaceSecret(decl.Name))
			emitted[decl.Name] = true
		}
	}

	return envs
}

// MissingRequiredEnv returns the declared variable names that are required
// but resolvable neither from workspace-secrets nor from a literal entry. A
// literal entry does not satisfy a secret-flagged declaration.
func MissingRequiredEnv(svc *v1alpha1.MCPService, secretKeys map[string]bool) []string {
	var missing []string
	for _, decl := range svc.Spec.EnvironmentVariables {
		if !decl.IsRequired {
			continue
		}
		if secretKeys[decl.Name] {
			continue
		}
		if _, ok := svc.Spec.Environment[decl.Name]; ok && !decl.IsSecret {
			continue
		}
		missing = append(missing, decl.Name)
	}
	return missing
}

func envFromConfigMap(key, configMapName string) corev1.EnvVar {
	return corev1.EnvVar{
		Name: key,
		ValueFrom: &corev1.EnvVarSource{
			ConfigMapKeyRef: &corev1.ConfigMapKeySelector{
				LocalObjectReference: corev1.LocalObjectReference{Name: configMapName},
				Key:                  key,
			},
		},
	}
}

func envFromWorkspaceSecret(key string) corev1.EnvVar {
	return corev1.EnvVar{
		Name: key,
		ValueFrom: &corev1.EnvVarSource{
			SecretKeyRef: &corev1.SecretKeySelector{
				LocalObjectReference: corev1.LocalObjectReference{Name: WorkspaceSecretName},
				Key:                  key,
			},
		},
	}
}
