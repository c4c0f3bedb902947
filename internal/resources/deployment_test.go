package resources

import (
	"testing"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/utils/ptr"

	"github.com/nimblebrain/nimbletools-core/api/v1alpha1"
	"github.com/nimblebrain/nimbletools-core/internal/tenancy"
)

func testService() *v1alpha1.MCPService {
	return &v1alpha1.MCPService{
		ObjectMeta: metav1.ObjectMeta{
			Name:      "weather",
			Namespace: "ws-demo-0f8fad5b-d9cb-469f-a165-70867728950e",
			Labels: map[string]string{
				tenancy.LabelWorkspaceID:   "0f8fad5b-d9cb-469f-a165-70867728950e",
				tenancy.LabelWorkspaceName: "demo-0f8fad5b-d9cb-469f-a165-70867728950e",
				tenancy.LabelUserID:        "7c9e6679-7425-40de-944b-e07fc1f90ae7",
				tenancy.LabelOrganization:  "16fd2706-8baf-433b-82eb-8c7fada847da",
				tenancy.LabelService:       "true",
				tenancy.LabelServer:        "weather",
			},
		},
		Spec: v1alpha1.MCPServiceSpec{
			Container: v1alpha1.ContainerSpec{Port: 8000},
			Deployment: v1alpha1.ServiceDeploymentSpec{
				Protocol:   v1alpha1.ProtocolHTTP,
				HealthPath: "/readyz",
			},
			Routing: v1alpha1.RoutingSpec{HealthPath: "/health"},
			Replicas: ptr.To(int32(2)),
		},
	}
}

func TestBuildDeployment_Basics(t *testing.T) {
	svc := testService()
	image := ImageConfig{Image: "org/weather:1.0.0", PullPolicy: "IfNotPresent"}

	dep := BuildDeployment(svc, image, nil)

	if dep.Name != "weather" || dep.Namespace != svc.Namespace {
		t.Errorf("unexpected name/namespace: %s/%s", dep.Namespace, dep.Name)
	}
	if *dep.Spec.Replicas != 2 {
		t.Errorf("Replicas = %d, want 2", *dep.Spec.Replicas)
	}

	container := dep.Spec.Template.Spec.Containers[0]
	if container.Image != "org/weather:1.0.0" {
		t.Errorf("Image = %q", container.Image)
	}
	if container.Ports[0].ContainerPort != 8000 {
		t.Errorf("ContainerPort = %d, want 8000", container.Ports[0].ContainerPort)
	}
	if container.LivenessProbe.HTTPGet.Path != "/health" {
		t.Errorf("liveness path = %q, want routing.healthPath", container.LivenessProbe.HTTPGet.Path)
	}
	if container.ReadinessProbe.HTTPGet.Path != "/readyz" {
		t.Errorf("readiness path = %q, want deployment.healthPath", container.ReadinessProbe.HTTPGet.Path)
	}
}

func TestBuildDeployment_SelectorMatchesPodLabels(t *testing.T) {
	svc := testService()
	dep := BuildDeployment(svc, ImageConfig{Image: "org/weather:1.0.0"}, nil)

	podLabels := dep.Spec.Template.Labels
	for key, value := range dep.Spec.Selector.MatchLabels {
		if podLabels[key] != value {
			t.Errorf("selector %s=%s not present on pod labels", key, value)
		}
	}
	if dep.Spec.Selector.MatchLabels["app"] != "weather" {
		t.Errorf("selector app = %q, want weather", dep.Spec.Selector.MatchLabels["app"])
	}
}

func TestBuildDeployment_SecurityBaseline(t *testing.T) {
	svc := testService()
	dep := BuildDeployment(svc, ImageConfig{Image: "org/weather:1.0.0"}, nil)

	container := dep.Spec.Template.Spec.Containers[0]
	sc := container.SecurityContext
	if sc.RunAsNonRoot == nil || !*sc.RunAsNonRoot {
		t.Error("RunAsNonRoot must be true")
	}
	if sc.ReadOnlyRootFilesystem == nil || !*sc.ReadOnlyRootFilesystem {
		t.Error("ReadOnlyRootFilesystem must be true")
	}
	if sc.AllowPrivilegeEscalation == nil || *sc.AllowPrivilegeEscalation {
		t.Error("AllowPrivilegeEscalation must be false")
	}
	if len(sc.Capabilities.Drop) != 1 || sc.Capabilities.Drop[0] != "ALL" {
		t.Errorf("Capabilities.Drop = %v, want [ALL]", sc.Capabilities.Drop)
	}

	podSC := dep.Spec.Template.Spec.SecurityContext
	if podSC.RunAsNonRoot == nil || !*podSC.RunAsNonRoot {
		t.Error("pod RunAsNonRoot must be true")
	}
}

func TestBuildDeployment_StdioCommand(t *testing.T) {
	svc := testService()
	svc.Spec.Deployment = v1alpha1.ServiceDeploymentSpec{
		Protocol: v1alpha1.ProtocolStdio,
		Stdio: &v1alpha1.StdioSpec{
			Executable: "python",
			Args:       []string{"-m", "server"},
			WorkingDir: "/app",
		},
	}

	dep := BuildDeployment(svc, ImageConfig{Image: "mcpb-supergateway-python:3.14"}, nil)

	container := dep.Spec.Template.Spec.Containers[0]
	if len(container.Command) != 1 || container.Command[0] != "python" {
		t.Errorf("Command = %v, want [python]", container.Command)
	}
	if len(container.Args) != 2 {
		t.Errorf("Args = %v", container.Args)
	}
	if container.WorkingDir != "/app" {
		t.Errorf("WorkingDir = %q", container.WorkingDir)
	}
}

func TestBuildDeployment_DefaultReplicas(t *testing.T) {
	svc := testService()
	svc.Spec.Replicas = nil

	dep := BuildDeployment(svc, ImageConfig{Image: "org/weather:1.0.0"}, nil)
	if *dep.Spec.Replicas != 1 {
		t.Errorf("Replicas = %d, want default 1", *dep.Spec.Replicas)
	}
}

func TestBuildDeployment_ScaledToZero(t *testing.T) {
	svc := testService()
	svc.Spec.Replicas = ptr.To(int32(0))

	dep := BuildDeployment(svc, ImageConfig{Image: "org/weather:1.0.0"}, nil)
	if *dep.Spec.Replicas != 0 {
		t.Errorf("Replicas = %d, want 0", *dep.Spec.Replicas)
	}
}
