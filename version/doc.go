// Package version reports blockflow build information.
//
// Version, commit and build time are set at link time:
//
//	go build -ldflags "-X github.com/kbukum/blockflow/version.Version=1.2.0 \
//	  -X github.com/kbukum/blockflow/version.GitCommit=$(git rev-parse --short HEAD)" ./cmd/blockflow
//
// Unset values fall back to the VCS stamp the Go toolchain embeds.
package version
