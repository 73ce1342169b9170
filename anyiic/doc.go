// Package anyiic implements Invariant Information
// Clustering (IIC), an unsupervised clustering objective
// which maximizes the mutual information between the
// cluster assignments of two views of the same inputs.
// For more information, see this paper:
// https://arxiv.org/abs/1807.06653.
//
// The loss is computed from a symmetric joint
// distribution over cluster pairs, estimated from a
// batch of paired probability vectors.
// All operations are differentiable through anydiff, and
// plain numeric versions are provided for callers that do
// not need gradients.
package anyiic
