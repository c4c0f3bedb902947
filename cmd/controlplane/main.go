package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	goruntime "runtime"
	"syscall"
	"time"

	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	"k8s.io/client-go/kubernetes"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/nimblebrain/nimbletools-core/api/v1alpha1"
	"github.com/nimblebrain/nimbletools-core/internal/api"
	"github.com/nimblebrain/nimbletools-core/internal/auth"
	"github.com/nimblebrain/nimbletools-core/pkg/project"
)

var scheme = runtime.NewScheme()

func init() {
	utilruntime.Must(clientgoscheme.AddToScheme(scheme))
	utilruntime.Must(v1alpha1.AddToScheme(scheme))
}

func main() {
	var (
		listenAddr         string
		providerConfigPath string
		platformDomain     string
		clusterArch        string
		logLevel           string
	)

	flag.StringVar(&listenAddr, "listen-address", ":8000", "The address the API server binds to.")
	flag.StringVar(&providerConfigPath, "provider-config", os.Getenv("NIMBLETOOLS_PROVIDER_CONFIG"), "Path to the auth provider configuration document.")
	flag.StringVar(&platformDomain, "platform-domain", os.Getenv("NIMBLETOOLS_PLATFORM_DOMAIN"), "The ingress host for deployed MCP servers.")
	flag.StringVar(&clusterArch, "cluster-arch", os.Getenv("NIMBLETOOLS_CLUSTER_ARCH"), "The cluster node architecture (amd64|arm64).")
	flag.StringVar(&logLevel, "log-level", os.Getenv("NIMBLETOOLS_LOG_LEVEL"), "Log level (debug|info|warn|error).")
	flag.Parse()

	logger := newLogger(logLevel)
	defer func() { _ = logger.Sync() }()

	// Route controller-runtime client logging through the same sink.
	ctrl.SetLogger(zapr.NewLogger(logger))

	// An unconfigured provider means an accidentally unauthenticated
	// deployment; refuse to start.
	if providerConfigPath == "" {
		logger.Fatal("auth provider configuration is required (set --provider-config or NIMBLETOOLS_PROVIDER_CONFIG)")
	}
	if platformDomain == "" {
		logger.Fatal("platform domain is required (set --platform-domain or NIMBLETOOLS_PLATFORM_DOMAIN)")
	}
	if clusterArch == "" {
		clusterArch = goruntime.GOARCH
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	provider, err := auth.Load(rootCtx, providerConfigPath)
	if err != nil {
		logger.Fatal("failed to load auth provider", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Warn("auth provider shutdown failed", zap.Error(err))
		}
	}()

	cfg := ctrl.GetConfigOrDie()

	k8sClient, err := client.New(cfg, client.Options{Scheme: scheme})
	if err != nil {
		logger.Fatal("failed to create cluster client", zap.Error(err))
	}
	clientset, err := kubernetes.NewForConfig(cfg)
	if err != nil {
		logger.Fatal("failed to create clientset", zap.Error(err))
	}

	server := &api.Server{
		Client:         k8sClient,
		Clientset:      clientset,
		Provider:       provider,
		Logger:         logger,
		PlatformDomain: platformDomain,
		ClusterArch:    clusterArch,
	}

	httpServer := &http.Server{
		Addr:    listenAddr,
		Handler: server.Router(),
		BaseContext: func(net.Listener) context.Context {
			return rootCtx
		},
	}

	go func() {
		<-rootCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("HTTP server shutdown failed", zap.Error(err))
		}
	}()

	logger.Info("starting control-plane API",
		zap.String("addr", listenAddr),
		zap.String("version", project.Version()),
		zap.String("arch", clusterArch),
	)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("HTTP server failed", zap.Error(err))
	}
}

func newLogger(level string) *zap.Logger {
	lvl := zapcore.InfoLevel
	if level != "" {
		if parsed, err := zapcore.ParseLevel(level); err == nil {
			lvl = parsed
		}
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	logger, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return logger
}
