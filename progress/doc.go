// Package progress implements the stage progress gate: an ordered set of
// steps that unlock one after another as the caller marks them completed.
package progress
