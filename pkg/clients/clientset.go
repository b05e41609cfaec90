package clients

import (
	"github.com/pkg/errors"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

// ClientSets is a collection of clientSets and kubeConfig needed
type ClientSets struct {
	KubeClient    kubernetes.Interface
	KubeConfig    *rest.Config
	DynamicClient dynamic.Interface
}

// GenerateClientSetFromKubeConfig will generate both ClientSets (typed and dynamic) as well as the KubeConfig.
// An empty path falls back to the in-cluster config.
func (clients *ClientSets) GenerateClientSetFromKubeConfig(kubeConfigPath string) error {
	config, err := clientcmd.BuildConfigFromFlags("", kubeConfigPath)
	if err != nil {
		return errors.Wrapf(err, "unable to build kubeconfig from %q", kubeConfigPath)
	}
	k8sClientSet, err := kubernetes.NewForConfig(config)
	if err != nil {
		return errors.Wrapf(err, "unable to generate kubernetes clientSet")
	}
	dynamicClientSet, err := dynamic.NewForConfig(config)
	if err != nil {
		return errors.Wrapf(err, "unable to generate dynamic clientSet")
	}
	clients.KubeClient = k8sClientSet
	clients.KubeConfig = config
	clients.DynamicClient = dynamicClientSet
	return nil
}
