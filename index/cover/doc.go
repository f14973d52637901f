// Package cover adapts the internal cover tree to the index.Index contract.
package cover
