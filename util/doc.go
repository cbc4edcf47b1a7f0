// Package util provides small helpers shared across blockflow packages.
package util
