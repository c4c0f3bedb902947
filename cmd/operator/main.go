package main

import (
	"context"
	"flag"
	"os"
	goruntime "runtime"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	"k8s.io/client-go/kubernetes"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/rest"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/healthz"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
	metricsserver "sigs.k8s.io/controller-runtime/pkg/metrics/server"

	"github.com/nimblebrain/nimbletools-core/api/v1alpha1"
	"github.com/nimblebrain/nimbletools-core/internal/auth"
	"github.com/nimblebrain/nimbletools-core/internal/controller"
	"github.com/nimblebrain/nimbletools-core/internal/mcp"
	"github.com/nimblebrain/nimbletools-core/pkg/project"
)

var (
	scheme   = runtime.NewScheme()
	setupLog = ctrl.Log.WithName("setup")
)

func init() {
	utilruntime.Must(clientgoscheme.AddToScheme(scheme))
	utilruntime.Must(v1alpha1.AddToScheme(scheme))
}

func main() {
	var (
		metricsAddr          string
		probeAddr            string
		mcpAddr              string
		enableLeaderElection bool
		platformDomain       string
		clusterArch          string
		providerConfigPath   string
	)

	flag.StringVar(&metricsAddr, "metrics-bind-address", ":8080", "The address the metric endpoint binds to.")
	flag.StringVar(&probeAddr, "health-probe-bind-address", ":8081", "The address the probe endpoint binds to.")
	flag.StringVar(&mcpAddr, "mcp-bind-address", ":9090", "The address the admin MCP server binds to.")
	flag.BoolVar(&enableLeaderElection, "leader-elect", true, "Enable leader election for controller manager.")
	flag.StringVar(&platformDomain, "platform-domain", os.Getenv("NIMBLETOOLS_PLATFORM_DOMAIN"), "The ingress host for deployed MCP servers.")
	flag.StringVar(&clusterArch, "cluster-arch", os.Getenv("NIMBLETOOLS_CLUSTER_ARCH"), "The cluster node architecture (amd64|arm64). Auto-detected when empty.")
	flag.StringVar(&providerConfigPath, "provider-config", os.Getenv("NIMBLETOOLS_PROVIDER_CONFIG"), "Path to the auth provider configuration document.")

	opts := zap.Options{Development: false}
	opts.BindFlags(flag.CommandLine)
	flag.Parse()

	ctrl.SetLogger(zap.New(zap.UseFlagOptions(&opts)))

	if platformDomain == "" {
		setupLog.Error(nil, "platform domain is required (set --platform-domain or NIMBLETOOLS_PLATFORM_DOMAIN)")
		os.Exit(1)
	}
	if providerConfigPath == "" {
		setupLog.Error(nil, "auth provider configuration is required (set --provider-config or NIMBLETOOLS_PROVIDER_CONFIG)")
		os.Exit(1)
	}

	provider, err := auth.Load(context.Background(), providerConfigPath)
	if err != nil {
		setupLog.Error(err, "unable to load auth provider")
		os.Exit(1)
	}

	cfg := ctrl.GetConfigOrDie()

	if clusterArch == "" {
		clusterArch = detectClusterArch(cfg)
		setupLog.Info("detected cluster architecture", "arch", clusterArch)
	}

	mgr, err := ctrl.NewManager(cfg, ctrl.Options{
		Scheme: scheme,
		Metrics: metricsserver.Options{
			BindAddress: metricsAddr,
		},
		HealthProbeBindAddress: probeAddr,
		LeaderElection:         enableLeaderElection,
		LeaderElectionID:       "mcp-operator.nimbletools.dev",
	})
	if err != nil {
		setupLog.Error(err, "unable to create manager")
		os.Exit(1)
	}

	if err := (&controller.MCPServiceReconciler{
		Client:         mgr.GetClient(),
		Scheme:         mgr.GetScheme(),
		Recorder:       mgr.GetEventRecorderFor("mcpservice-controller"),
		PlatformDomain: platformDomain,
		ClusterArch:    clusterArch,
	}).SetupWithManager(mgr); err != nil {
		setupLog.Error(err, "unable to create controller", "controller", "MCPService")
		os.Exit(1)
	}

	if err := mgr.AddHealthzCheck("healthz", healthz.Ping); err != nil {
		setupLog.Error(err, "unable to set up health check")
		os.Exit(1)
	}
	if err := mgr.AddReadyzCheck("readyz", healthz.Ping); err != nil {
		setupLog.Error(err, "unable to set up ready check")
		os.Exit(1)
	}

	// The admin MCP server runs on every replica, managed by the manager for
	// graceful lifecycle.
	if err := mgr.Add(mcp.NewServer(mgr.GetClient(), provider, mcpAddr)); err != nil {
		setupLog.Error(err, "unable to add admin MCP server to manager")
		os.Exit(1)
	}

	setupLog.Info("starting manager",
		"version", project.Version(),
		"gitSHA", project.GitSHA(),
		"buildTimestamp", project.BuildTimestamp(),
		"arch", clusterArch,
	)
	if err := mgr.Start(ctrl.SetupSignalHandler()); err != nil {
		setupLog.Error(err, "problem running manager")
		os.Exit(1)
	}

	if err := provider.Shutdown(context.Background()); err != nil {
		setupLog.Error(err, "auth provider shutdown failed")
	}
}

// detectClusterArch reads the architecture from the first ready node,
// falling back to the operator's own architecture.
func detectClusterArch(cfg *rest.Config) string {
	clientset, err := kubernetes.NewForConfig(cfg)
	if err != nil {
		return goruntime.GOARCH
	}

	nodes, err := clientset.CoreV1().Nodes().List(context.Background(), metav1.ListOptions{Limit: 10})
	if err != nil {
		return goruntime.GOARCH
	}
	for _, node := range nodes.Items {
		for _, cond := range node.Status.Conditions {
			if cond.Type == corev1.NodeReady && cond.Status == corev1.ConditionTrue {
				return node.Status.NodeInfo.Architecture
			}
		}
	}
	return goruntime.GOARCH
}
