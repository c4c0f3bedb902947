package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	appsv1 "k8s.io/api/apps/v1"
	autoscalingv2 "k8s.io/api/autoscaling/v2"
	corev1 "k8s.io/api/core/v1"
	networkingv1 "k8s.io/api/networking/v1"
	apiequality "k8s.io/apimachinery/pkg/api/equality"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/tools/record"
	"k8s.io/client-go/util/workqueue"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"
	"sigs.k8s.io/controller-runtime/pkg/handler"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/reconcile"

	"github.com/nimblebrain/nimbletools-core/api/v1alpha1"
	"github.com/nimblebrain/nimbletools-core/internal/resources"
	"github.com/nimblebrain/nimbletools-core/internal/tenancy"
)

const (
	// reconcileTimeout bounds a single reconciliation pass.
	reconcileTimeout = 30 * time.Second

	// pendingRequeue is how soon we re-check a workload that is rolling out.
	pendingRequeue = 5 * time.Second

	// crashLoopRestartThreshold is how many restarts we tolerate before
	// declaring the workload failed.
	crashLoopRestartThreshold = 3
)

// MCPServiceReconciler converges cluster state toward the declared state of
// each MCPService and publishes the observed state in its status subresource.
type MCPServiceReconciler struct {
	client.Client
	Scheme   *runtime.Scheme
	Recorder record.EventRecorder

	// PlatformDomain is the ingress host for all services.
	PlatformDomain string

	// ClusterArch is the node architecture (amd64|arm64), injected at startup.
	ClusterArch string
}

// +kubebuilder:rbac:groups=mcp.nimbletools.dev,resources=mcpservices,verbs=get;list;watch;create;update;patch;delete
// +kubebuilder:rbac:groups=mcp.nimbletools.dev,resources=mcpservices/status,verbs=get;update;patch
// +kubebuilder:rbac:groups=apps,resources=deployments,verbs=get;list;watch;create;update;patch;delete
// +kubebuilder:rbac:groups="",resources=services,verbs=get;list;watch;create;update;patch;delete
// +kubebuilder:rbac:groups="",resources=secrets,verbs=get;list;watch
// +kubebuilder:rbac:groups="",resources=pods,verbs=get;list;watch
// +kubebuilder:rbac:groups=networking.k8s.io,resources=ingresses,verbs=get;list;watch;create;update;patch;delete
// +kubebuilder:rbac:groups=autoscaling,resources=horizontalpodautoscalers,verbs=get;list;watch;create;update;patch;delete
// +kubebuilder:rbac:groups="",resources=events,verbs=create;patch

// Reconcile handles a single MCPService event.
func (r *MCPServiceReconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, reconcileTimeout)
	defer cancel()

	logger := log.FromContext(ctx)

	var svc v1alpha1.MCPService
	if err := r.Get(ctx, req.NamespacedName, &svc); err != nil {
		if apierrors.IsNotFound(err) {
			return ctrl.Result{}, nil
		}
		return ctrl.Result{}, err
	}

	// Children are owned in-namespace; the cluster garbage-collects them.
	if !svc.DeletionTimestamp.IsZero() {
		return ctrl.Result{}, nil
	}

	// Tenancy labels are the authoritative identity. A service missing them
	// is invalid and is not retried until its spec changes.
	meta, err := tenancy.FromLabels(svc.Labels)
	if err != nil {
		return r.updateStatusFailed(ctx, &svc, ReasonInvalidLabels, err)
	}
	if meta.Namespace() != svc.Namespace {
		return r.updateStatusFailed(ctx, &svc, ReasonInvalidLabels,
			fmt.Errorf("workspace labels identify namespace %q but object lives in %q",
				meta.Namespace(), svc.Namespace))
	}

	if err := resources.ValidateSpec(&svc); err != nil {
		return r.updateStatusFailed(ctx, &svc, ReasonInvalidSpec, err)
	}

	image, err := resources.ComputeImage(&svc, r.ClusterArch)
	if err != nil {
		if errors.Is(err, resources.ErrArchitectureMismatch) {
			return r.updateStatusFailed(ctx, &svc, ReasonArchitectureMismatch, err)
		}
		return r.updateStatusFailed(ctx, &svc, ReasonInvalidSpec, err)
	}

	secretKeys, err := r.workspaceSecretKeys(ctx, svc.Namespace)
	if err != nil {
		return ctrl.Result{}, err
	}

	if missing := resources.MissingRequiredEnv(&svc, secretKeys); len(missing) > 0 {
		return r.updateStatusFailed(ctx, &svc, ReasonMissingSecrets,
			fmt.Errorf("required environment variables unresolved: %s", strings.Join(missing, ", ")))
	}

	logger.Info("reconciling MCPService",
		"server", svc.Name,
		"workspace", meta.WorkspaceName,
		"image", image.Image,
	)

	if err := r.reconcileConfigMap(ctx, &svc, secretKeys); err != nil {
		return r.updateStatusError(ctx, &svc, "ConfigMapError", err)
	}

	if err := r.reconcileDeployment(ctx, &svc, image, secretKeys); err != nil {
		setCondition(&svc, ConditionWorkloadReady, metav1.ConditionFalse, "ReconcileError", err.Error())
		return r.updateStatusError(ctx, &svc, "DeploymentError", err)
	}

	if err := r.reconcileService(ctx, &svc); err != nil {
		setCondition(&svc, ConditionRoutingReady, metav1.ConditionFalse, "ReconcileError", err.Error())
		return r.updateStatusError(ctx, &svc, "ServiceError", err)
	}

	if err := r.reconcileIngresses(ctx, &svc); err != nil {
		setCondition(&svc, ConditionRoutingReady, metav1.ConditionFalse, "ReconcileError", err.Error())
		return r.updateStatusError(ctx, &svc, "IngressError", err)
	}
	setCondition(&svc, ConditionRoutingReady, metav1.ConditionTrue, "Reconciled", "Service and ingresses reconciled")

	if err := r.reconcileHPA(ctx, &svc); err != nil {
		return r.updateStatusError(ctx, &svc, "AutoscalerError", err)
	}

	return r.observeStatus(ctx, &svc)
}

// workspaceSecretKeys returns the key names present in the workspace-secrets
// Secret. Absence of the Secret is normal for a fresh workspace.
func (r *MCPServiceReconciler) workspaceSecretKeys(ctx context.Context, namespace string) (map[string]bool, error) {
	var secret corev1.Secret
	err := r.Get(ctx, types.NamespacedName{Name: resources.WorkspaceSecretName, Namespace: namespace}, &secret)
	if err != nil {
		if apierrors.IsNotFound(err) {
			return map[string]bool{}, nil
		}
		return nil, fmt.Errorf("fetching workspace secrets: %w", err)
	}
	keys := make(map[string]bool, len(secret.Data))
	for k := range secret.Data {
		keys[k] = true
	}
	return keys, nil
}

// reconcileConfigMap converges the env ConfigMap, deleting it when no
// literal environment entries remain.
func (r *MCPServiceReconciler) reconcileConfigMap(ctx context.Context, svc *v1alpha1.MCPService, secretKeys map[string]bool) error {
	desired := resources.BuildConfigMap(svc, secretKeys)

	if desired == nil {
		existing := &corev1.ConfigMap{ObjectMeta: metav1.ObjectMeta{
			Name: resources.ConfigMapName(svc), Namespace: svc.Namespace,
		}}
		if err := r.Delete(ctx, existing); err != nil && !apierrors.IsNotFound(err) {
			return fmt.Errorf("deleting env configmap: %w", err)
		}
		return nil
	}

	existing := &corev1.ConfigMap{ObjectMeta: metav1.ObjectMeta{Name: desired.Name, Namespace: desired.Namespace}}
	op, err := controllerutil.CreateOrUpdate(ctx, r.Client, existing, func() error {
		existing.Labels = desired.Labels
		existing.Data = desired.Data
		return controllerutil.SetControllerReference(svc, existing, r.Scheme)
	})
	if op == controllerutil.OperationResultCreated {
		r.Recorder.Event(svc, corev1.EventTypeNormal, "CreatingConfigMap", "Created ConfigMap "+desired.Name)
	}
	return err
}

func (r *MCPServiceReconciler) reconcileDeployment(ctx context.Context, svc *v1alpha1.MCPService, image resources.ImageConfig, secretKeys map[string]bool) error {
	desired := resources.BuildDeployment(svc, image, secretKeys)
	existing := &appsv1.Deployment{ObjectMeta: metav1.ObjectMeta{Name: desired.Name, Namespace: desired.Namespace}}

	op, err := controllerutil.CreateOrUpdate(ctx, r.Client, existing, func() error {
		// Preserve pod-template annotations placed by other writers (the
		// control plane's rolling-restart stamp in particular).
		annotations := existing.Spec.Template.Annotations
		existing.Labels = desired.Labels
		existing.Spec.Replicas = desired.Spec.Replicas
		if existing.Spec.Selector == nil {
			existing.Spec.Selector = desired.Spec.Selector
		}
		existing.Spec.Template.Labels = desired.Spec.Template.Labels
		existing.Spec.Template.Spec = desired.Spec.Template.Spec
		if annotations != nil {
			existing.Spec.Template.Annotations = annotations
		}
		return controllerutil.SetControllerReference(svc, existing, r.Scheme)
	})
	if op == controllerutil.OperationResultCreated {
		r.Recorder.Event(svc, corev1.EventTypeNormal, "CreatingDeployment", "Created Deployment "+desired.Name)
	}
	return err
}

func (r *MCPServiceReconciler) reconcileService(ctx context.Context, svc *v1alpha1.MCPService) error {
	desired := resources.BuildService(svc)
	existing := &corev1.Service{ObjectMeta: metav1.ObjectMeta{Name: desired.Name, Namespace: desired.Namespace}}

	op, err := controllerutil.CreateOrUpdate(ctx, r.Client, existing, func() error {
		// Preserve ClusterIP on update.
		clusterIP := existing.Spec.ClusterIP
		existing.Labels = desired.Labels
		existing.Spec = desired.Spec
		existing.Spec.ClusterIP = clusterIP
		return controllerutil.SetControllerReference(svc, existing, r.Scheme)
	})
	if op == controllerutil.OperationResultCreated {
		r.Recorder.Event(svc, corev1.EventTypeNormal, "CreatingService", "Created Service "+desired.Name)
	}
	return err
}

func (r *MCPServiceReconciler) reconcileIngresses(ctx context.Context, svc *v1alpha1.MCPService) error {
	for _, desired := range []*networkingv1.Ingress{
		resources.BuildMCPIngress(svc, r.PlatformDomain),
		resources.BuildHealthIngress(svc, r.PlatformDomain),
	} {
		existing := &networkingv1.Ingress{ObjectMeta: metav1.ObjectMeta{Name: desired.Name, Namespace: desired.Namespace}}
		op, err := controllerutil.CreateOrUpdate(ctx, r.Client, existing, func() error {
			if existing.Annotations == nil {
				existing.Annotations = map[string]string{}
			}
			// Merge managed annotations; foreign ones stay untouched.
			for k, v := range desired.Annotations {
				existing.Annotations[k] = v
			}
			existing.Labels = desired.Labels
			existing.Spec = desired.Spec
			return controllerutil.SetControllerReference(svc, existing, r.Scheme)
		})
		if err != nil {
			return fmt.Errorf("reconciling ingress %s: %w", desired.Name, err)
		}
		if op == controllerutil.OperationResultCreated {
			r.Recorder.Event(svc, corev1.EventTypeNormal, "CreatingIngress", "Created Ingress "+desired.Name)
		}
	}
	return nil
}

// reconcileHPA converges the autoscaler, deleting it when the spec no longer
// requests autoscaling.
func (r *MCPServiceReconciler) reconcileHPA(ctx context.Context, svc *v1alpha1.MCPService) error {
	desired := resources.BuildHPA(svc)

	if desired == nil {
		existing := &autoscalingv2.HorizontalPodAutoscaler{ObjectMeta: metav1.ObjectMeta{
			Name: resources.HPAName(svc), Namespace: svc.Namespace,
		}}
		if err := r.Delete(ctx, existing); err != nil && !apierrors.IsNotFound(err) {
			return fmt.Errorf("deleting autoscaler: %w", err)
		}
		return nil
	}

	existing := &autoscalingv2.HorizontalPodAutoscaler{ObjectMeta: metav1.ObjectMeta{Name: desired.Name, Namespace: desired.Namespace}}
	_, err := controllerutil.CreateOrUpdate(ctx, r.Client, existing, func() error {
		existing.Labels = desired.Labels
		existing.Spec = desired.Spec
		return controllerutil.SetControllerReference(svc, existing, r.Scheme)
	})
	return err
}

// observeStatus reads the child Deployment and its pods, derives the phase,
// and writes the status subresource when anything changed.
func (r *MCPServiceReconciler) observeStatus(ctx context.Context, svc *v1alpha1.MCPService) (ctrl.Result, error) {
	var dep appsv1.Deployment
	if err := r.Get(ctx, types.NamespacedName{Name: resources.DeploymentName(svc), Namespace: svc.Namespace}, &dep); err != nil {
		if apierrors.IsNotFound(err) {
			svc.Status.Phase = v1alpha1.PhaseUnknown
			return r.writeStatus(ctx, svc, ctrl.Result{RequeueAfter: pendingRequeue})
		}
		return ctrl.Result{}, err
	}

	desiredReplicas := resources.DesiredReplicas(svc)
	available := deploymentAvailable(&dep)

	svc.Status.DeploymentStatus = &v1alpha1.WorkloadStatus{
		Ready:         available,
		Replicas:      dep.Status.Replicas,
		ReadyReplicas: dep.Status.ReadyReplicas,
	}
	svc.Status.ServiceEndpoint = resources.ServiceEndpoint(svc)
	svc.Status.ObservedGeneration = svc.Generation

	if failed, reason := r.workloadFailure(ctx, svc, &dep); failed {
		svc.Status.Phase = v1alpha1.PhaseFailed
		setCondition(svc, ConditionWorkloadReady, metav1.ConditionFalse, ReasonWorkloadFailed, reason)
		setCondition(svc, ConditionReady, metav1.ConditionFalse, ReasonWorkloadFailed, reason)
		r.Recorder.Event(svc, corev1.EventTypeWarning, ReasonWorkloadFailed, reason)
		return r.writeStatus(ctx, svc, ctrl.Result{})
	}

	if desiredReplicas == 0 {
		// Scaled to zero on purpose: nothing to wait for, nothing to poll.
		svc.Status.Phase = v1alpha1.PhasePending
		setCondition(svc, ConditionWorkloadReady, metav1.ConditionFalse, "ScaledToZero", "Workload is scaled to zero replicas")
		setCondition(svc, ConditionReady, metav1.ConditionFalse, "ScaledToZero", "Workload is scaled to zero replicas")
		return r.writeStatus(ctx, svc, ctrl.Result{})
	}

	readyTarget := max32(1, resources.MinReplicas(svc))

	switch {
	case available && dep.Status.ReadyReplicas >= readyTarget:
		svc.Status.Phase = v1alpha1.PhaseRunning
		setCondition(svc, ConditionWorkloadReady, metav1.ConditionTrue, "Available", "Deployment has ready replicas")
		setCondition(svc, ConditionReady, metav1.ConditionTrue, "Reconciled", "All resources reconciled")
		return r.writeStatus(ctx, svc, ctrl.Result{})
	case dep.Status.ReadyReplicas < desiredReplicas:
		svc.Status.Phase = v1alpha1.PhasePending
		setCondition(svc, ConditionWorkloadReady, metav1.ConditionFalse, "Progressing", "Deployment is rolling out")
		setCondition(svc, ConditionReady, metav1.ConditionFalse, "Progressing", "Waiting for workload to become ready")
		return r.writeStatus(ctx, svc, ctrl.Result{RequeueAfter: pendingRequeue})
	default:
		svc.Status.Phase = v1alpha1.PhaseUnknown
		return r.writeStatus(ctx, svc, ctrl.Result{RequeueAfter: pendingRequeue})
	}
}

// workloadFailure reports terminal pod-level failures: sustained crash loops
// and image pull back-off.
func (r *MCPServiceReconciler) workloadFailure(ctx context.Context, svc *v1alpha1.MCPService, dep *appsv1.Deployment) (bool, string) {
	for _, cond := range dep.Status.Conditions {
		if cond.Type == appsv1.DeploymentProgressing &&
			cond.Status == corev1.ConditionFalse &&
			cond.Reason == "ProgressDeadlineExceeded" {
			return true, "deployment progress deadline exceeded"
		}
	}

	var pods corev1.PodList
	if err := r.List(ctx, &pods,
		client.InNamespace(svc.Namespace),
		client.MatchingLabels(resources.SelectorLabels(svc)),
	); err != nil {
		// Pod inspection is best-effort; the deployment view stands alone.
		log.FromContext(ctx).Error(err, "failed to list pods for failure detection")
		return false, ""
	}

	for _, pod := range pods.Items {
		for _, cs := range pod.Status.ContainerStatuses {
			waiting := cs.State.Waiting
			if waiting == nil {
				continue
			}
			switch waiting.Reason {
			case "ImagePullBackOff", "ErrImagePull":
				return true, fmt.Sprintf("pod %s: %s: %s", pod.Name, waiting.Reason, waiting.Message)
			case "CrashLoopBackOff":
				if cs.RestartCount >= crashLoopRestartThreshold {
					return true, fmt.Sprintf("pod %s: CrashLoopBackOff after %d restarts", pod.Name, cs.RestartCount)
				}
			}
		}
	}
	return false, ""
}

// writeStatus persists the status subresource only when the observation
// actually changed. LastReconcileTime is stamped on writes, not on no-ops.
func (r *MCPServiceReconciler) writeStatus(ctx context.Context, svc *v1alpha1.MCPService, result ctrl.Result) (ctrl.Result, error) {
	var current v1alpha1.MCPService
	if err := r.Get(ctx, client.ObjectKeyFromObject(svc), &current); err != nil {
		return ctrl.Result{}, err
	}

	if statusEqual(&current.Status, &svc.Status) {
		return result, nil
	}

	now := metav1.Now()
	svc.Status.LastReconcileTime = &now
	if err := r.Status().Update(ctx, svc); err != nil {
		if apierrors.IsConflict(err) {
			// Optimistic concurrency lost; the queued event retries.
			return ctrl.Result{RequeueAfter: pendingRequeue}, nil
		}
		return ctrl.Result{}, err
	}
	return result, nil
}

// statusEqual compares observations, ignoring timestamps that change on
// every write.
func statusEqual(a, b *v1alpha1.MCPServiceStatus) bool {
	ac, bc := a.DeepCopy(), b.DeepCopy()
	ac.LastReconcileTime, bc.LastReconcileTime = nil, nil
	for i := range ac.Conditions {
		ac.Conditions[i].LastTransitionTime = metav1.Time{}
	}
	for i := range bc.Conditions {
		bc.Conditions[i].LastTransitionTime = metav1.Time{}
	}
	return apiequality.Semantic.DeepEqual(ac, bc)
}

// updateStatusFailed records a terminal validation failure. The event is not
// requeued; a spec change will trigger the next reconcile.
func (r *MCPServiceReconciler) updateStatusFailed(ctx context.Context, svc *v1alpha1.MCPService, reason string, cause error) (ctrl.Result, error) {
	svc.Status.Phase = v1alpha1.PhaseFailed
	svc.Status.ObservedGeneration = svc.Generation
	setCondition(svc, ConditionReady, metav1.ConditionFalse, reason, cause.Error())
	r.Recorder.Event(svc, corev1.EventTypeWarning, reason, cause.Error())
	return r.writeStatus(ctx, svc, ctrl.Result{})
}

// updateStatusError records a transient failure and returns the error so the
// rate-limited queue retries with backoff.
func (r *MCPServiceReconciler) updateStatusError(ctx context.Context, svc *v1alpha1.MCPService, reason string, cause error) (ctrl.Result, error) {
	svc.Status.Phase = v1alpha1.PhaseUnknown
	svc.Status.ObservedGeneration = svc.Generation
	setCondition(svc, ConditionReady, metav1.ConditionFalse, reason, cause.Error())
	if _, werr := r.writeStatus(ctx, svc, ctrl.Result{}); werr != nil {
		log.FromContext(ctx).Error(werr, "failed to record error status")
	}
	r.Recorder.Event(svc, corev1.EventTypeWarning, reason, cause.Error())
	return ctrl.Result{}, cause
}

func max32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}

// SetupWithManager sets up the controller with the Manager. Children carry
// owner references in the same namespace, so Owns() watches suffice. The
// workspace-secrets Secret is watched separately: env-var resolution depends
// on its keys, so every MCPService in the namespace is re-queued on change.
func (r *MCPServiceReconciler) SetupWithManager(mgr ctrl.Manager) error {
	mapSecret := handler.EnqueueRequestsFromMapFunc(
		func(ctx context.Context, obj client.Object) []reconcile.Request {
			if obj.GetName() != resources.WorkspaceSecretName {
				return nil
			}
			var list v1alpha1.MCPServiceList
			if err := r.List(ctx, &list, client.InNamespace(obj.GetNamespace())); err != nil {
				return nil
			}
			reqs := make([]reconcile.Request, 0, len(list.Items))
			for _, svc := range list.Items {
				reqs = append(reqs, reconcile.Request{
					NamespacedName: types.NamespacedName{Name: svc.Name, Namespace: svc.Namespace},
				})
			}
			return reqs
		},
	)

	return ctrl.NewControllerManagedBy(mgr).
		For(&v1alpha1.MCPService{}).
		Owns(&appsv1.Deployment{}).
		Owns(&corev1.Service{}).
		Owns(&networkingv1.Ingress{}).
		Owns(&corev1.ConfigMap{}).
		Owns(&autoscalingv2.HorizontalPodAutoscaler{}).
		Watches(&corev1.Secret{}, mapSecret).
		WithOptions(controller.Options{
			RateLimiter: workqueue.NewTypedItemExponentialFailureRateLimiter[reconcile.Request](
				5*time.Second, 5*time.Minute),
		}).
		Named("mcpservice").
		Complete(r)
}

func deploymentAvailable(dep *appsv1.Deployment) bool {
	for _, cond := range dep.Status.Conditions {
		if cond.Type == appsv1.DeploymentAvailable {
			return cond.Status == corev1.ConditionTrue
		}
	}
	return false
}
