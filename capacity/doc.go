// Package capacity derives which block types a stage palette must disable
// because their instance limit is reached. Everything here is recomputed
// from the current instance set on demand.
package capacity
