// Package chain decomposes a stage's instance set into ordered chains.
package chain
