package aggregator

import (
	"context"
	"fmt"
	"strconv"

	"golang.org/x/sync/errgroup"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/syrm/podboard/dto"
)

type counter struct {
	name  string
	count func(ctx context.Context, c *Collector) (int, error)
}

// counters are listed in the order the statistics are served.
var counters = []counter{
	{"clusters", func(context.Context, *Collector) (int, error) { return 1, nil }},
	{"namespaces", func(ctx context.Context, c *Collector) (int, error) {
		l, err := c.kube.CoreV1().Namespaces().List(ctx, metav1.ListOptions{})
		if err != nil {
			return 0, err
		}
		return len(l.Items), nil
	}},
	{"nodes", func(ctx context.Context, c *Collector) (int, error) {
		l, err := c.kube.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
		if err != nil {
			return 0, err
		}
		return len(l.Items), nil
	}},
	{"deployments", func(ctx context.Context, c *Collector) (int, error) {
		l, err := c.kube.AppsV1().Deployments(metav1.NamespaceAll).List(ctx, metav1.ListOptions{})
		if err != nil {
			return 0, err
		}
		return len(l.Items), nil
	}},
	{"pods", func(ctx context.Context, c *Collector) (int, error) {
		l, err := c.kube.CoreV1().Pods(metav1.NamespaceAll).List(ctx, metav1.ListOptions{})
		if err != nil {
			return 0, err
		}
		return len(l.Items), nil
	}},
	{"containers", func(ctx context.Context, c *Collector) (int, error) {
		l, err := c.kube.CoreV1().Pods(metav1.NamespaceAll).List(ctx, metav1.ListOptions{})
		if err != nil {
			return 0, err
		}
		total := 0
		for _, p := range l.Items {
			total += len(p.Spec.Containers)
		}
		return total, nil
	}},
	{"replicasets", func(ctx context.Context, c *Collector) (int, error) {
		l, err := c.kube.AppsV1().ReplicaSets(metav1.NamespaceAll).List(ctx, metav1.ListOptions{})
		if err != nil {
			return 0, err
		}
		return len(l.Items), nil
	}},
	{"services", func(ctx context.Context, c *Collector) (int, error) {
		l, err := c.kube.CoreV1().Services(metav1.NamespaceAll).List(ctx, metav1.ListOptions{})
		if err != nil {
			return 0, err
		}
		return len(l.Items), nil
	}},
	{"daemonsets", func(ctx context.Context, c *Collector) (int, error) {
		l, err := c.kube.AppsV1().DaemonSets(metav1.NamespaceAll).List(ctx, metav1.ListOptions{})
		if err != nil {
			return 0, err
		}
		return len(l.Items), nil
	}},
	{"cronjobs", func(ctx context.Context, c *Collector) (int, error) {
		l, err := c.kube.BatchV1().CronJobs(metav1.NamespaceAll).List(ctx, metav1.ListOptions{})
		if err != nil {
			return 0, err
		}
		return len(l.Items), nil
	}},
	{"jobs", func(ctx context.Context, c *Collector) (int, error) {
		l, err := c.kube.BatchV1().Jobs(metav1.NamespaceAll).List(ctx, metav1.ListOptions{})
		if err != nil {
			return 0, err
		}
		return len(l.Items), nil
	}},
	{"statefulsets", func(ctx context.Context, c *Collector) (int, error) {
		l, err := c.kube.AppsV1().StatefulSets(metav1.NamespaceAll).List(ctx, metav1.ListOptions{})
		if err != nil {
			return 0, err
		}
		return len(l.Items), nil
	}},
	{"hpas", func(ctx context.Context, c *Collector) (int, error) {
		l, err := c.kube.AutoscalingV2().HorizontalPodAutoscalers(metav1.NamespaceAll).List(ctx, metav1.ListOptions{})
		if err != nil {
			return 0, err
		}
		return len(l.Items), nil
	}},
}

// Stats counts the cluster objects concurrently. Any failing list fails the
// whole call.
func (c *Collector) Stats(ctx context.Context) (dto.Stats, error) {
	counts := make([]int, len(counters))

	g, gctx := errgroup.WithContext(ctx)
	for i, ctr := range counters {
		i, ctr := i, ctr
		g.Go(func() error {
			n, err := ctr.count(gctx, c)
			if err != nil {
				return fmt.Errorf("count %s: %w", ctr.name, err)
			}
			counts[i] = n
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := make(dto.Stats, len(counters))
	for i, ctr := range counters {
		stats[i] = dto.StatEntry{Name: ctr.name, Value: dto.Text(strconv.Itoa(counts[i]))}
	}

	return stats, nil
}
