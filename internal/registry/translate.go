package registry

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/nimblebrain/nimbletools-core/api/v1alpha1"
	"github.com/nimblebrain/nimbletools-core/internal/tenancy"
)

// DefaultPort is assumed when the document carries no port hint.
const DefaultPort int32 = 8000

var (
	dnsLabelPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)
	sanitizePattern = regexp.MustCompile(`[^a-z0-9-]`)
)

// ServerName derives the DNS-safe server name from a registry identifier
// like "io.github.acme/weather-tool".
func ServerName(registryName string) string {
	name := registryName
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	name = strings.ToLower(name)
	name = sanitizePattern.ReplaceAllString(name, "-")
	name = strings.Trim(name, "-")
	if len(name) > 63 {
		name = name[:63]
	}
	return name
}

// Translate converts a server.json document into an MCPService for the given
// workspace, selecting packages for the cluster architecture and injecting
// tenancy labels. It performs no I/O.
func Translate(doc *ServerDocument, meta tenancy.Metadata, arch string) (*v1alpha1.MCPService, error) {
	if err := validate(doc); err != nil {
		return nil, err
	}

	platform := platformMeta(doc)

	selected, err := selectPackage(doc.Packages, arch)
	if err != nil {
		return nil, err
	}

	name := ServerName(doc.Name)
	if !dnsLabelPattern.MatchString(name) {
		return nil, &TranslationError{
			Code:   CodeInvalidServerDefinition,
			Detail: fmt.Sprintf("server name %q does not reduce to a DNS label", doc.Name),
		}
	}

	port := platform.Port
	if port == 0 {
		port = DefaultPort
	}

	labels := meta.Labels()
	labels[tenancy.LabelService] = "true"
	labels[tenancy.LabelServer] = name

	annotations := map[string]string{}
	if doc.Description != "" {
		annotations[tenancy.AnnotationDescription] = doc.Description
	}
	if doc.Version != "" {
		annotations[tenancy.AnnotationVersion] = doc.Version
	}

	svc := &v1alpha1.MCPService{
		ObjectMeta: metav1.ObjectMeta{
			Name:        name,
			Namespace:   meta.Namespace(),
			Labels:      labels,
			Annotations: annotations,
		},
		Spec: v1alpha1.MCPServiceSpec{
			Container: v1alpha1.ContainerSpec{Port: port},
			Deployment: v1alpha1.ServiceDeploymentSpec{
				Protocol:   v1alpha1.ProtocolHTTP,
				HealthPath: platform.HealthPath,
			},
			Packages:    convertPackages(doc.Packages),
			Runtime:     platform.Runtime,
			Replicas:    platform.Replicas,
			Environment: platform.Environment,
			Routing: v1alpha1.RoutingSpec{
				HealthPath: platform.HealthPath,
				MCPPath:    platform.MCPPath,
			},
			EnvironmentVariables: convertEnvDecls(selected.EnvironmentVariables),
		},
	}

	if platform.Scaling != nil {
		svc.Spec.Scaling = &v1alpha1.ScalingSpec{
			MinReplicas:           platform.Scaling.MinReplicas,
			MaxReplicas:           platform.Scaling.MaxReplicas,
			TargetConcurrency:     platform.Scaling.TargetConcurrency,
			ScaleDownDelaySeconds: platform.Scaling.ScaleDownDelaySeconds,
		}
	}

	return svc, nil
}

func validate(doc *ServerDocument) error {
	if doc.Name == "" {
		return &TranslationError{
			Code:   CodeInvalidServerDefinition,
			Detail: "server.json is missing required field 'name'",
		}
	}
	if len(doc.Packages) == 0 {
		return &TranslationError{
			Code:   CodeInvalidServerDefinition,
			Detail: "server.json declares no packages",
		}
	}
	for i, pkg := range doc.Packages {
		if pkg.Identifier == "" {
			return &TranslationError{
				Code:   CodeInvalidServerDefinition,
				Detail: fmt.Sprintf("packages[%d] is missing required field 'identifier'", i),
			}
		}
		switch pkg.RegistryType {
		case v1alpha1.RegistryTypeOCI:
		case v1alpha1.RegistryTypeMCPB:
			if err := validateMCPBURL(i, pkg.Identifier); err != nil {
				return err
			}
		default:
			return &TranslationError{
				Code:   CodeInvalidServerDefinition,
				Detail: fmt.Sprintf("packages[%d] has unsupported registryType %q", i, pkg.RegistryType),
			}
		}
	}
	return nil
}

// validateMCPBURL requires bundle URLs to end in .mcpb and to name their
// target architecture, so that bundle selection stays deterministic.
func validateMCPBURL(index int, url string) error {
	if !strings.HasSuffix(url, ".mcpb") {
		return &TranslationError{
			Code:   CodeInvalidMCPBURL,
			Detail: fmt.Sprintf("packages[%d]: mcpb identifier %q does not end with .mcpb", index, url),
		}
	}
	if !strings.Contains(url, "linux-amd64") && !strings.Contains(url, "linux-arm64") {
		return &TranslationError{
			Code:   CodeInvalidMCPBURL,
			Detail: fmt.Sprintf("packages[%d]: mcpb identifier %q carries no architecture marker", index, url),
		}
	}
	return nil
}

// selectPackage picks the first package usable on the target architecture:
// mcpb bundles must name "linux-{arch}"; oci images are assumed multi-arch.
func selectPackage(packages []PackageDocument, arch string) (*PackageDocument, error) {
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
	return nil, &TranslationError{
		Code:   CodeArchitectureMismatch,
		Detail: fmt.Sprintf("no package is available for cluster architecture %q", arch),
	}
}

func convertPackages(docs []PackageDocument) []v1alpha1.Package {
	pkgs := make([]v1alpha1.Package, 0, len(docs))
	for _, doc := range docs {
		pkg := v1alpha1.Package{
			RegistryType:         doc.RegistryType,
			Identifier:           doc.Identifier,
			Version:              doc.Version,
			SHA256:               doc.SHA256,
			EnvironmentVariables: convertEnvDecls(doc.EnvironmentVariables),
		}
		for _, arg := range doc.RuntimeArguments {
			pkg.RuntimeArguments = append(pkg.RuntimeArguments, v1alpha1.RuntimeArgument{
				Type:  arg.Type,
				Value: arg.Value,
			})
		}
		if doc.Transport != nil {
			pkg.Transport = &v1alpha1.PackageTransport{Type: doc.Transport.Type}
		}
		pkgs = append(pkgs, pkg)
	}
	return pkgs
}

func convertEnvDecls(docs []EnvVarDocument) []v1alpha1.EnvVarDecl {
	if len(docs) == 0 {
		return nil
	}
	decls := make([]v1alpha1.EnvVarDecl, 0, len(docs))
	for _, doc := range docs {
		decls = append(decls, v1alpha1.EnvVarDecl{
			Name:       doc.Name,
			IsSecret:   doc.IsSecret,
			IsRequired: doc.IsRequired,
		})
	}
	return decls
}

// platformMeta extracts this platform's _meta extension. Unknown namespaces
// and malformed payloads are ignored, matching registry semantics.
func platformMeta(doc *ServerDocument) PlatformMeta {
	var meta PlatformMeta
	raw, ok := doc.Meta[PlatformMetaNamespace]
	if !ok {
		return meta
	}
	if err := json.Unmarshal(raw, &meta); err != nil {
		return PlatformMeta{}
	}
	return meta
}
