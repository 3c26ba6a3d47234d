/*
Package cri implements the CRI API EngineClient, looking up container labels
using the CRI RuntimeService's ContainerStatus API.

# Kubernetes Labels and Annotations

Kubernetes differentiates between non-identifying [annotations] and often
identifying [labels]. However, the engine client model doesn't differentiate
between annotations and labels as separate first-class elements, but instead
maps annotations also to labels.

In order to avoid potential key clashes of annotations with other labels, we
simply prefix all annotation keys with “annotation.k8s/”.

# Pinging

The CRI API doesn't define a ping, so pinging a CRI engine queries its runtime
version instead.

[annotations]: https://kubernetes.io/docs/concepts/overview/working-with-objects/annotations/
[labels]: https://kubernetes.io/docs/concepts/overview/working-with-objects/labels/
*/
package cri
