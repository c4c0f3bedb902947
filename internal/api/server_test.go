package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	k8sfake "k8s.io/client-go/kubernetes/fake"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"

	"github.com/nimblebrain/nimbletools-core/api/v1alpha1"
	"github.com/nimblebrain/nimbletools-core/internal/auth"
	"github.com/nimblebrain/nimbletools-core/internal/tenancy"
)

const (
	testWorkspaceID = "0f8fad5b-d9cb-469f-a165-70867728950e"
	testUserID      = "7c9e6679-7425-40de-944b-e07fc1f90ae7"
	testOrgID       = "16fd2706-8baf-433b-82eb-8c7fada847da"
	otherOrgID      = "26fd2706-8baf-433b-82eb-8c7fada847db"
	testNamespace   = "ws-demo-" + testWorkspaceID
)

func testSchemeAPI(t *testing.T) *runtime.Scheme {
	t.Helper()
	s := runtime.NewScheme()
	require.NoError(t, clientgoscheme.AddToScheme(s))
	require.NoError(t, v1alpha1.AddToScheme(s))
	return s
}

func workspaceNamespace() *corev1.Namespace {
	return &corev1.Namespace{
		ObjectMeta: metav1.ObjectMeta{
			Name: testNamespace,
			Labels: map[string]string{
				tenancy.LabelWorkspace:     "true",
				tenancy.LabelWorkspaceID:   testWorkspaceID,
				tenancy.LabelWorkspaceName: "demo-" + testWorkspaceID,
				tenancy.LabelUserID:        testUserID,
				tenancy.LabelOrganization:  testOrgID,
			},
		},
	}
}

// newTestServer builds a Server backed by fake clients and the permissive
// provider pinned to the test organization.
func newTestServer(t *testing.T, objs ...client.Object) (*Server, client.Client) {
	t.Helper()

	provider, err := auth.NewPermissiveProvider([]byte(`{"organizationId": "` + testOrgID + `"}`))
	require.NoError(t, err)

	c := fake.NewClientBuilder().
		WithScheme(testSchemeAPI(t)).
		WithStatusSubresource(&v1alpha1.MCPService{}).
		WithObjects(objs...).
		Build()

	return &Server{
		Client:         c,
		Clientset:      k8sfake.NewSimpleClientset(),
		Provider:       provider,
		Logger:         zap.NewNop(),
		PlatformDomain: "mcp.example.com",
		ClusterArch:    "amd64",
	}, c
}

func doRequest(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer test-token")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealth_NoAuthRequired(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAuth_Echo(t *testing.T) {
	s, _ := newTestServer(t)

	rec := doRequest(t, s, http.MethodGet, "/auth", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[AuthResponse](t, rec)
	require.Equal(t, Version, resp.APIVersion)
	require.Equal(t, testOrgID, resp.OrganizationID)
	require.NotEmpty(t, resp.UserID)
}

func TestMissingToken_Unauthorized(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/workspaces", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
