// Package stage holds the block catalogs of the four pipeline stages
// (preprocessing, training, performance and predicting), the payload
// structs their blocks carry, and the rule each stage's chains must pass
// before its progress step may be completed.
package stage
