// Package vector defines the document model and the numeric helpers shared by
// every index implementation in this module. It includes:
//   - Document and Metric (cosine, inner_product, l2)
//   - distance kernels backed by github.com/viant/vec
//   - normalisation helpers
//   - embedding encoding (little-endian float32 BLOB)
package vector
