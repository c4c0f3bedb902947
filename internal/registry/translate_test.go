package registry

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimblebrain/nimbletools-core/api/v1alpha1"
	"github.com/nimblebrain/nimbletools-core/internal/tenancy"
)

var testMeta = tenancy.Metadata{
	WorkspaceID:    "0f8fad5b-d9cb-469f-a165-70867728950e",
	WorkspaceName:  "demo-0f8fad5b-d9cb-469f-a165-70867728950e",
	UserID:         "7c9e6679-7425-40de-944b-e07fc1f90ae7",
	OrganizationID: "16fd2706-8baf-433b-82eb-8c7fada847da",
}

func mcpbDoc() *ServerDocument {
	return &ServerDocument{
		Name:        "io.github.acme/weather-tool",
		Description: "Weather lookups",
		Version:     "1.4.0",
		Packages: []PackageDocument{
			{
				RegistryType: "mcpb",
				Identifier:   "https://bundles.example.com/weather-1.4.0-linux-amd64.mcpb",
				Version:      "1.4.0",
				SHA256:       "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
				EnvironmentVariables: []EnvVarDocument{
					{Name: "WEATHER_API_KEY", IsSecret: true, IsRequired: true},
				},
			},
			{
				RegistryType: "mcpb",
				Identifier:   "https://bundles.example.com/weather-1.4.0-linux-arm64.mcpb",
				Version:      "1.4.0",
				SHA256:       "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb",
			},
		},
		Meta: map[string]json.RawMessage{
			PlatformMetaNamespace: json.RawMessage(`{"runtime": "python:3.14", "port": 9000}`),
			"com.example/other":   json.RawMessage(`{"whatever": true}`),
		},
	}
}

func TestTranslate_MCPB(t *testing.T) {
	svc, err := Translate(mcpbDoc(), testMeta, "amd64")
	require.NoError(t, err)

	assert.Equal(t, "weather-tool", svc.Name)
	assert.Equal(t, testMeta.Namespace(), svc.Namespace)
	assert.Equal(t, "python:3.14", svc.Spec.Runtime)
	assert.Equal(t, int32(9000), svc.Spec.Container.Port)
	assert.Len(t, svc.Spec.Packages, 2)

	// Labels carry the full tenancy identity plus server markers.
	assert.Equal(t, testMeta.WorkspaceID, svc.Labels[tenancy.LabelWorkspaceID])
	assert.Equal(t, testMeta.UserID, svc.Labels[tenancy.LabelUserID])
	assert.Equal(t, testMeta.OrganizationID, svc.Labels[tenancy.LabelOrganization])
	assert.Equal(t, "true", svc.Labels[tenancy.LabelService])
	assert.Equal(t, "weather-tool", svc.Labels[tenancy.LabelServer])

	// Declared env vars come from the architecture-selected package.
	require.Len(t, svc.Spec.EnvironmentVariables, 1)
	assert.Equal(t, "WEATHER_API_KEY", svc.Spec.EnvironmentVariables[0].Name)
	assert.True(t, svc.Spec.EnvironmentVariables[0].IsSecret)

	// Informational annotations.
	assert.Equal(t, "Weather lookups", svc.Annotations[tenancy.AnnotationDescription])
	assert.Equal(t, "1.4.0", svc.Annotations[tenancy.AnnotationVersion])
}

func TestTranslate_ArchitectureSelection(t *testing.T) {
	// amd64 selects the amd64 bundle; arm64 the arm64 one.
	svcAMD, err := Translate(mcpbDoc(), testMeta, "amd64")
	require.NoError(t, err)
	assert.Contains(t, svcAMD.Spec.EnvironmentVariables[0].Name, "WEATHER_API_KEY")

	svcARM, err := Translate(mcpbDoc(), testMeta, "arm64")
	require.NoError(t, err)
	assert.Empty(t, svcARM.Spec.EnvironmentVariables)
}

func TestTranslate_ArchitectureMismatch(t *testing.T) {
	doc := mcpbDoc()
	doc.Packages = doc.Packages[:1] // amd64 only

	_, err := Translate(doc, testMeta, "arm64")
	require.Error(t, err)

	var terr *TranslationError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, CodeArchitectureMismatch, terr.Code)
}

func TestTranslate_OCIArchAgnostic(t *testing.T) {
	doc := &ServerDocument{
		Name: "io.github.acme/tool",
		Packages: []PackageDocument{
			{RegistryType: "oci", Identifier: "org/tool", Version: "latest"},
		},
	}

	for _, arch := range []string{"amd64", "arm64"} {
		svc, err := Translate(doc, testMeta, arch)
		require.NoError(t, err, arch)
		assert.Equal(t, "tool", svc.Name)
	}
}

func TestTranslate_InvalidMCPBURL(t *testing.T) {
	tests := []struct {
		name       string
		identifier string
	}{
		{"missing .mcpb suffix", "https://bundles.example.com/weather-linux-amd64.tar.gz"},
		{"missing arch marker", "https://bundles.example.com/weather.mcpb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := mcpbDoc()
			doc.Packages[0].Identifier = tt.identifier

			_, err := Translate(doc, testMeta, "amd64")
			var terr *TranslationError
			require.ErrorAs(t, err, &terr)
			assert.Equal(t, CodeInvalidMCPBURL, terr.Code)
		})
	}
}

func TestTranslate_StructuralValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ServerDocument)
	}{
		{"missing name", func(d *ServerDocument) { d.Name = "" }},
		{"no packages", func(d *ServerDocument) { d.Packages = nil }},
		{"missing identifier", func(d *ServerDocument) { d.Packages[0].Identifier = "" }},
		{"unsupported registry type", func(d *ServerDocument) { d.Packages[0].RegistryType = "npm" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := mcpbDoc()
			tt.mutate(doc)

			_, err := Translate(doc, testMeta, "amd64")
			var terr *TranslationError
			require.ErrorAs(t, err, &terr)
			assert.Equal(t, CodeInvalidServerDefinition, terr.Code)
		})
	}
}

func TestTranslate_UnknownMetaIgnored(t *testing.T) {
	doc := mcpbDoc()
	delete(doc.Meta, PlatformMetaNamespace)

	svc, err := Translate(doc, testMeta, "amd64")
	require.NoError(t, err)

	// Without the platform meta, defaults apply.
	assert.Equal(t, DefaultPort, svc.Spec.Container.Port)
	assert.Empty(t, svc.Spec.Runtime)
}

func TestServerName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"io.github.acme/weather-tool", "weather-tool"},
		{"Weather_Tool", "weather-tool"},
		{"plain", "plain"},
		{"org/UPPER.case", "upper-case"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ServerName(tt.in), tt.in)
	}
}

func TestTranslate_ScalingMeta(t *testing.T) {
	doc := mcpbDoc()
	doc.Meta[PlatformMetaNamespace] = json.RawMessage(
		`{"runtime": "python:3.14", "scaling": {"minReplicas": 1, "maxReplicas": 5, "targetConcurrency": 20}}`)

	svc, err := Translate(doc, testMeta, "amd64")
	require.NoError(t, err)
	require.NotNil(t, svc.Spec.Scaling)
	assert.Equal(t, int32(1), *svc.Spec.Scaling.MinReplicas)
	assert.Equal(t, int32(5), svc.Spec.Scaling.MaxReplicas)
	assert.Equal(t, int32(20), svc.Spec.Scaling.TargetConcurrency)
	assert.Equal(t, v1alpha1.ProtocolHTTP, svc.Spec.Deployment.Protocol)
}
