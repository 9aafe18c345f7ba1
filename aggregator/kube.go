package aggregator

import (
	"fmt"
	"log/slog"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	metricsclient "k8s.io/metrics/pkg/client/clientset/versioned"
)

// NewKubeConfig prefers the in-cluster config, then falls back to the
// kubeconfig file (default loading rules when path is empty).
func NewKubeConfig(path, kubeContext string, logger *slog.Logger) (*rest.Config, error) {
	if path == "" && kubeContext == "" {
		cfg, err := rest.InClusterConfig()
		if err == nil {
			logger.Info("using in-cluster kubernetes config")
			return cfg, nil
		}
		logger.Debug("in-cluster config unavailable, falling back to kubeconfig", slog.Any("error", err))
	}

	rules := clientcmd.NewDefaultClientConfigLoadingRules()
	if path != "" {
		rules.ExplicitPath = path
	}

	overrides := &clientcmd.ConfigOverrides{CurrentContext: kubeContext}

	cfg, err := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(rules, overrides).ClientConfig()
	if err != nil {
		return nil, fmt.Errorf("load kubeconfig: %w", err)
	}

	logger.Info("using kubeconfig", slog.String("path", path), slog.String("context", kubeContext))

	return cfg, nil
}

// NewClients builds the kubernetes and metrics-server clientsets.
func NewClients(cfg *rest.Config) (*kubernetes.Clientset, *metricsclient.Clientset, error) {
	kube, err := kubernetes.NewForConfig(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("create kube client: %w", err)
	}

	metrics, err := metricsclient.NewForConfig(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("create metrics client: %w", err)
	}

	return kube, metrics, nil
}
