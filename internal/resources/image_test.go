package resources

import (
	"errors"
	"testing"

	corev1 "k8s.io/api/core/v1"

	"github.com/nimblebrain/nimbletools-core/api/v1alpha1"
)

func TestPullPolicy(t *testing.T) {
	tests := []struct {
		name  string
		image string
		want  corev1.PullPolicy
	}{
		{"latest tag", "org/tool:latest", corev1.PullAlways},
		{"edge tag", "org/tool:edge", corev1.PullAlways},
		{"dev tag", "org/tool:dev", corev1.PullAlways},
		{"absent tag", "org/tool", corev1.PullAlways},
		{"channel tag", "org/tool:stable", corev1.PullAlways},
		{"channel dev tag", "org/tool:stable-dev", corev1.PullAlways},
		{"semver", "org/tool:1.2.3", corev1.PullIfNotPresent},
		{"semver with v prefix", "org/tool:v1.2.3", corev1.PullIfNotPresent},
		{"semver prerelease", "org/tool:1.2.3-rc.1", corev1.PullIfNotPresent},
		{"numeric suffix tag", "org/tool:rc1", corev1.PullIfNotPresent},
		{"digest", "org/tool@sha256:abcdef0123456789", corev1.PullIfNotPresent},
		{"registry with port, no tag", "registry:5000/org/tool", corev1.PullAlways},
		{"registry with port and semver", "registry:5000/org/tool:2.0.0", corev1.PullIfNotPresent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PullPolicy(tt.image); got != tt.want {
				t.Errorf("PullPolicy(%q) = %v, want %v", tt.image, got, tt.want)
			}
		})
	}
}

func TestComputeImage_RuntimeBaseImage(t *testing.T) {
	svc := &v1alpha1.MCPService{
		Spec: v1alpha1.MCPServiceSpec{
			Runtime: "python:3.14",
			Packages: []v1alpha1.Package{
				{
					RegistryType: v1alpha1.RegistryTypeMCPB,
					Identifier:   "https://bundles.example.com/weather-1.0.0-linux-arm64.mcpb",
					SHA256:       "1111111111111111111111111111111111111111111111111111111111111111",
				},
				{
					RegistryType: v1alpha1.RegistryTypeMCPB,
					Identifier:   "https://bundles.example.com/weather-1.0.0-linux-amd64.mcpb",
					SHA256:       "2222222222222222222222222222222222222222222222222222222222222222",
				},
			},
		},
	}

	image, err := ComputeImage(svc, "amd64")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if image.Image != "mcpb-python:3.14" {
		t.Errorf("Image = %q, want mcpb-python:3.14", image.Image)
	}
	if image.BundleURL != "https://bundles.example.com/weather-1.0.0-linux-amd64.mcpb" {
		t.Errorf("BundleURL = %q, want the amd64 bundle", image.BundleURL)
	}
	if image.BundleSHA256 != "2222222222222222222222222222222222222222222222222222222222222222" {
		t.Errorf("BundleSHA256 = %q, want the amd64 hash", image.BundleSHA256)
	}
	if image.PullPolicy != corev1.PullIfNotPresent {
		t.Errorf("PullPolicy = %v, want IfNotPresent for versioned base image", image.PullPolicy)
	}
}

func TestComputeImage_RuntimeRegistryPrefix(t *testing.T) {
	svc := &v1alpha1.MCPService{
		Spec: v1alpha1.MCPServiceSpec{
			Runtime: "node:22",
			Container: v1alpha1.ContainerSpec{
				Registry: "ghcr.io/nimbletools/",
			},
			Packages: []v1alpha1.Package{
				{
					RegistryType: v1alpha1.RegistryTypeMCPB,
					Identifier:   "https://bundles.example.com/tool-linux-amd64.mcpb",
				},
			},
		},
	}

	image, err := ComputeImage(svc, "amd64")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if image.Image != "ghcr.io/nimbletools/mcpb-node:22" {
		t.Errorf("Image = %q, want registry-prefixed base image", image.Image)
	}
}

func TestComputeImage_OCIPackage(t *testing.T) {
	tests := []struct {
		name       string
		version    string
		wantImage  string
		wantPolicy corev1.PullPolicy
	}{
		{"mutable tag", "latest", "org/tool:latest", corev1.PullAlways},
		{"semantic version", "1.4.2", "org/tool:1.4.2", corev1.PullIfNotPresent},
		{"no version", "", "org/tool", corev1.PullAlways},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &v1alpha1.MCPService{
				Spec: v1alpha1.MCPServiceSpec{
					Packages: []v1alpha1.Package{
						{
							RegistryType: v1alpha1.RegistryTypeOCI,
							Identifier:   "org/tool",
							Version:      tt.version,
						},
					},
				},
			}

			image, err := ComputeImage(svc, "amd64")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if image.Image != tt.wantImage {
				t.Errorf("Image = %q, want %q", image.Image, tt.wantImage)
			}
			if image.PullPolicy != tt.wantPolicy {
				t.Errorf("PullPolicy = %v, want %v", image.PullPolicy, tt.wantPolicy)
			}
			if image.BundleURL != "" {
				t.Errorf("BundleURL = %q, want empty for direct OCI image", image.BundleURL)
			}
		})
	}
}

func TestComputeImage_ArchitectureMismatch(t *testing.T) {
	svc := &v1alpha1.MCPService{
		Spec: v1alpha1.MCPServiceSpec{
			Runtime: "python:3.14",
			Packages: []v1alpha1.Package{
				{
					RegistryType: v1alpha1.RegistryTypeMCPB,
					Identifier:   "https://bundles.example.com/tool-linux-amd64.mcpb",
				},
			},
		},
	}

	_, err := ComputeImage(svc, "arm64")
	if !errors.Is(err, ErrArchitectureMismatch) {
		t.Fatalf("error = %v, want ErrArchitectureMismatch", err)
	}
}

func TestComputeImage_PrecomputedImage(t *testing.T) {
	svc := &v1alpha1.MCPService{
		Spec: v1alpha1.MCPServiceSpec{
			Container: v1alpha1.ContainerSpec{Image: "org/tool:2.0.0"},
		},
	}

	image, err := ComputeImage(svc, "amd64")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if image.Image != "org/tool:2.0.0" {
		t.Errorf("Image = %q", image.Image)
	}
}

func TestComputeImage_NoImage(t *testing.T) {
	svc := &v1alpha1.MCPService{}
	if _, err := ComputeImage(svc, "amd64"); !errors.Is(err, ErrNoImage) {
		t.Fatalf("error = %v, want ErrNoImage", err)
	}
}

func TestComputeImage_MissingSHA256(t *testing.T) {
	svc := &v1alpha1.MCPService{
		Spec: v1alpha1.MCPServiceSpec{
			Runtime: "binary",
			Packages: []v1alpha1.Package{
				{
					RegistryType: v1alpha1.RegistryTypeMCPB,
					Identifier:   "https://bundles.example.com/tool-linux-amd64.mcpb",
				},
			},
		},
	}

	image, err := ComputeImage(svc, "amd64")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if image.Image != "mcpb-binary:latest" {
		t.Errorf("Image = %q, want mcpb-binary:latest", image.Image)
	}
	if image.BundleSHA256 != "" {
		t.Errorf("BundleSHA256 = %q, want empty when the package has no hash", image.BundleSHA256)
	}
}
