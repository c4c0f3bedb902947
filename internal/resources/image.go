package resources

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
	corev1 "k8s.io/api/core/v1"

	"github.com/nimblebrain/nimbletools-core/api/v1alpha1"
)

// ErrArchitectureMismatch is returned when no package in the spec matches the
// cluster architecture.
var ErrArchitectureMismatch = errors.New("no package matches cluster architecture")

// ErrNoImage is returned when neither packages nor a precomputed container
// image are present.
var ErrNoImage = errors.New("spec declares neither packages nor a container image")

// mutableTagPattern matches channel-style tags ("stable", "edge-dev") that
// must always be re-pulled.
var mutableTagPattern = regexp.MustCompile(`^[a-z]+(-dev)?$`)

// ImageConfig is the resolved container image for an MCPService.
type ImageConfig struct {
	// Image is the full image reference.
	Image string

	// PullPolicy is derived from the tag's mutability.
	PullPolicy corev1.PullPolicy

	// BundleURL and BundleSHA256 are set when a runtime base image downloads
	// an mcpb bundle at startup. BundleSHA256 may be empty, in which case the
	// runtime skips verification.
	BundleURL    string
	BundleSHA256 string
}

// ComputeImage resolves the container image reference for an MCPService per
// the platform rules:
//
//   - packages + declared runtime: the image is the runtime base image
//     mcpb-{runtime}, and bundle download parameters come from the package
//     matching the cluster architecture;
//   - packages without runtime: the image is the first architecture-matching
//     package's identifier (version appended when specified);
//   - no packages: the precomputed container.image is used as-is.
func ComputeImage(svc *v1alpha1.MCPService, arch string) (ImageConfig, error) {
	if len(svc.Spec.Packages) > 0 && svc.Spec.Runtime != "" {
		pkg, err := SelectPackage(svc.Spec.Packages, arch)
		if err != nil {
			return ImageConfig{}, err
		}
		image := runtimeBaseImage(svc.Spec.Container.Registry, svc.Spec.Runtime)
		return ImageConfig{
			Image:        image,
			PullPolicy:   PullPolicy(image),
			BundleURL:    pkg.Identifier,
			BundleSHA256: pkg.SHA256,
		}, nil
	}

	if len(svc.Spec.Packages) > 0 {
		pkg, err := SelectPackage(svc.Spec.Packages, arch)
		if err != nil {
			return ImageConfig{}, err
		}
		image := pkg.Identifier
		if pkg.Version != "" {
			image += ":" + pkg.Version
		}
		return ImageConfig{Image: image, PullPolicy: PullPolicy(image)}, nil
	}

	if svc.Spec.Container.Image != "" {
		return ImageConfig{
			Image:      svc.Spec.Container.Image,
			PullPolicy: PullPolicy(svc.Spec.Container.Image),
		}, nil
	}

	return ImageConfig{}, ErrNoImage
}

// SelectPackage returns the first package usable on the given architecture.
// mcpb packages must carry a "linux-{arch}" marker in their identifier; oci
// packages are architecture-agnostic (multi-arch manifests).
func SelectPackage(packages []v1alpha1.Package, arch string) (*v1alpha1.Package, error) {
	marker := "linux-" + arch
	for i := range packages {
		pkg := &packages[i]
		switch pkg.RegistryType {
		case v1alpha1.RegistryTypeMCPB:
			if strings.Contains(pkg.Identifier, marker) {
				return pkg, nil
			}
		case v1alpha1.RegistryTypeOCI:
			return pkg, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrArchitectureMismatch, arch)
}

// runtimeBaseImage maps a runtime tag like "python:3.14" to the base image
// reference mcpb-python:3.14, with the configured registry prefix applied.
func runtimeBaseImage(registry, runtime string) string {
	name, version, found := strings.Cut(runtime, ":")
	image := "mcpb-" + name
	if found && version != "" {
		image += ":" + version
	} else {
		image += ":latest"
	}
	if registry != "" {
		image = strings.TrimSuffix(registry, "/") + "/" + image
	}
	return image
}

// PullPolicy derives the image pull policy from the reference's tag. Mutable
// tags (latest, edge, dev, absent, or channel-style names) pull Always;
// semantic versions and content-addressed references pull IfNotPresent.
func PullPolicy(image string) corev1.PullPolicy {
	if strings.Contains(image, "@sha256:") {
		return corev1.PullIfNotPresent
	}

	tag := imageTag(image)
	switch tag {
	case "", "latest", "edge", "dev":
		return corev1.PullAlways
	}
	if _, err := semver.StrictNewVersion(strings.TrimPrefix(tag, "v")); err == nil {
		return corev1.PullIfNotPresent
	}
	if mutableTagPattern.MatchString(tag) {
		return corev1.PullAlways
	}
	return corev1.PullIfNotPresent
}

// imageTag extracts the tag from an image reference, tolerating registry
// host ports ("registry:5000/org/tool").
func imageTag(image string) string {
	slash := strings.LastIndex(image, "/")
	colon := strings.LastIndex(image, ":")
	if colon <= slash {
		return ""
	}
	return image[colon+1:]
}
