// Package aggregator builds the pod, node and statistics views served to the
// dashboard from the Kubernetes API and metrics-server.
package aggregator

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	v1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	metricsv1beta1 "k8s.io/metrics/pkg/apis/metrics/v1beta1"
	metricsclient "k8s.io/metrics/pkg/client/clientset/versioned"

	"github.com/syrm/podboard/dto"
)

const (
	unavailable  = "-"
	roleLabel    = "node-role.kubernetes.io/"
	mebibyte     = 1024 * 1024
	noRoles      = "<none>"
	terminating  = "Terminating"
	nodeReady    = "Ready"
	nodeNotReady = "NotReady"
)

type Collector struct {
	kube    kubernetes.Interface
	metrics metricsclient.Interface
	logger  *slog.Logger
}

// NewCollector returns a collector. metrics may be nil, usage columns are then
// rendered as unavailable.
func NewCollector(kube kubernetes.Interface, metrics metricsclient.Interface, logger *slog.Logger) *Collector {
	return &Collector{
		kube:    kube,
		metrics: metrics,
		logger:  logger,
	}
}

func (c *Collector) Pods(ctx context.Context) ([]dto.Pod, error) {
	var (
		pods    *v1.PodList
		nodes   *v1.NodeList
		metrics map[string]v1.ResourceList
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		pods, err = c.kube.CoreV1().Pods(metav1.NamespaceAll).List(gctx, metav1.ListOptions{})
		if err != nil {
			return fmt.Errorf("list pods: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		var err error
		nodes, err = c.kube.CoreV1().Nodes().List(gctx, metav1.ListOptions{})
		if err != nil {
			return fmt.Errorf("list nodes: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		metrics = c.podUsage(gctx)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	allocatable := make(map[string]v1.ResourceList, len(nodes.Items))
	for _, n := range nodes.Items {
		allocatable[n.Name] = n.Status.Allocatable
	}

	out := make([]dto.Pod, 0, len(pods.Items))
	for i := range pods.Items {
		p := &pods.Items[i]
		out = append(out, mapPod(p, metrics, allocatable[p.Spec.NodeName]))
	}

	return out, nil
}

// podUsage sums container usage per pod. A nil map means metrics-server is
// not available.
func (c *Collector) podUsage(ctx context.Context) map[string]v1.ResourceList {
	if c.metrics == nil {
		return nil
	}

	list, err := c.metrics.MetricsV1beta1().PodMetricses(metav1.NamespaceAll).List(ctx, metav1.ListOptions{})
	if err != nil {
		c.logger.WarnContext(ctx, "pod metrics unavailable", slog.Any("error", err))
		return nil
	}

	usage := make(map[string]v1.ResourceList, len(list.Items))
	for _, pm := range list.Items {
		usage[podKey(pm.Namespace, pm.Name)] = sumContainerUsage(pm.Containers)
	}

	return usage
}

func podKey(namespace, name string) string {
	return namespace + "/" + name
}

func sumContainerUsage(containers []metricsv1beta1.ContainerMetrics) v1.ResourceList {
	cpu := resource.Quantity{}
	memory := resource.Quantity{}
	for _, cm := range containers {
		cpu.Add(cm.Usage[v1.ResourceCPU])
		memory.Add(cm.Usage[v1.ResourceMemory])
	}

	return v1.ResourceList{v1.ResourceCPU: cpu, v1.ResourceMemory: memory}
}

func mapPod(p *v1.Pod, metrics map[string]v1.ResourceList, allocatable v1.ResourceList) dto.Pod {
	ready := 0
	restarts := int32(0)
	for _, cs := range p.Status.ContainerStatuses {
		if cs.Ready {
			ready++
		}
		restarts += cs.RestartCount
	}

	pod := dto.Pod{
		Name:      dto.Text(p.Name),
		Namespace: dto.Text(p.Namespace),
		Status:    dto.Text(podStatus(p)),
		Restarts:  dto.Text(strconv.Itoa(int(restarts))),
		Node:      dto.Text(p.Spec.NodeName),
		IP:        dto.Text(p.Status.PodIP),
		Age:       dto.Text(p.CreationTimestamp.UTC().Format(time.RFC3339)),
		Ready:     dto.Text(fmt.Sprintf("%d/%d", ready, len(p.Spec.Containers))),
		CPU:       unavailable,
		Memory:    unavailable,
	}

	usage, ok := metrics[podKey(p.Namespace, p.Name)]
	if !ok {
		return pod
	}

	limits := podLimits(p)
	pod.CPU = dto.Text(formatCPU(usage[v1.ResourceCPU], capacity(limits, allocatable, v1.ResourceCPU)))
	pod.Memory = dto.Text(formatMemory(usage[v1.ResourceMemory], capacity(limits, allocatable, v1.ResourceMemory)))

	return pod
}

// podStatus mirrors the STATUS column of kubectl get pods.
func podStatus(p *v1.Pod) string {
	if p.DeletionTimestamp != nil {
		return terminating
	}

	reason := string(p.Status.Phase)
	if p.Status.Reason != "" {
		reason = p.Status.Reason
	}

	for _, cs := range p.Status.InitContainerStatuses {
		if cs.State.Terminated != nil && cs.State.Terminated.ExitCode == 0 {
			continue
		}
		if cs.State.Waiting != nil && cs.State.Waiting.Reason != "" && cs.State.Waiting.Reason != "PodInitializing" {
			return "Init:" + cs.State.Waiting.Reason
		}
		if cs.State.Terminated != nil && cs.State.Terminated.Reason != "" {
			return "Init:" + cs.State.Terminated.Reason
		}
	}

	for _, cs := range p.Status.ContainerStatuses {
		switch {
		case cs.State.Waiting != nil && cs.State.Waiting.Reason != "":
			return cs.State.Waiting.Reason
		case cs.State.Terminated != nil && cs.State.Terminated.Reason != "":
			return cs.State.Terminated.Reason
		}
	}

	if reason == "" {
		return "Unknown"
	}

	return reason
}

func podLimits(p *v1.Pod) v1.ResourceList {
	cpu := resource.Quantity{}
	memory := resource.Quantity{}
	for _, c := range p.Spec.Containers {
		if q, ok := c.Resources.Limits[v1.ResourceCPU]; ok {
			cpu.Add(q)
		}
		if q, ok := c.Resources.Limits[v1.ResourceMemory]; ok {
			memory.Add(q)
		}
	}

	return v1.ResourceList{v1.ResourceCPU: cpu, v1.ResourceMemory: memory}
}

// capacity is the pod limit for name, or the node allocatable when the pod
// sets no limit.
func capacity(limits, allocatable v1.ResourceList, name v1.ResourceName) resource.Quantity {
	if q := limits[name]; !q.IsZero() {
		return q
	}
	return allocatable[name]
}

func formatCPU(used, total resource.Quantity) string {
	milli := used.MilliValue()
	if total.IsZero() {
		return fmt.Sprintf("%dm", milli)
	}
	return fmt.Sprintf("%dm (%s%%)", milli, percent(float64(milli), float64(total.MilliValue())))
}

func formatMemory(used, total resource.Quantity) string {
	mi := used.Value() / mebibyte
	if total.IsZero() {
		return fmt.Sprintf("%dMi", mi)
	}
	return fmt.Sprintf("%dMi (%s%%)", mi, percent(float64(used.Value()), float64(total.Value())))
}

func percent(used, total float64) string {
	return strconv.FormatFloat(used/total*100, 'f', 1, 64)
}

func (c *Collector) Nodes(ctx context.Context) ([]dto.Node, error) {
	list, err := c.kube.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("list nodes: %w", err)
	}

	out := make([]dto.Node, 0, len(list.Items))
	for i := range list.Items {
		out = append(out, mapNode(&list.Items[i]))
	}

	return out, nil
}

func mapNode(n *v1.Node) dto.Node {
	status := nodeNotReady
	for _, c := range n.Status.Conditions {
		if c.Type == v1.NodeReady && c.Status == v1.ConditionTrue {
			status = nodeReady
		}
	}
	if n.Spec.Unschedulable {
		status += ",SchedulingDisabled"
	}

	internalIP := ""
	for _, a := range n.Status.Addresses {
		if a.Type == v1.NodeInternalIP {
			internalIP = a.Address
			break
		}
	}

	info := n.Status.NodeInfo

	return dto.Node{
		Name:             dto.Text(n.Name),
		Status:           dto.Text(status),
		Roles:            dto.Text(nodeRoles(n.Labels)),
		Age:              dto.Text(n.CreationTimestamp.UTC().Format(time.RFC3339)),
		Version:          dto.Text(info.KubeletVersion),
		InternalIP:       dto.Text(internalIP),
		OSImage:          dto.Text(info.OSImage),
		KernelVersion:    dto.Text(info.KernelVersion),
		ContainerRuntime: dto.Text(info.ContainerRuntimeVersion),
	}
}

func nodeRoles(labels map[string]string) string {
	var roles []string
	for k := range labels {
		if role, ok := strings.CutPrefix(k, roleLabel); ok && role != "" {
			roles = append(roles, role)
		}
	}
	if len(roles) == 0 {
		return noRoles
	}

	sort.Strings(roles)
	return strings.Join(roles, ",")
}
