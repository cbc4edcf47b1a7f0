// Package registry defines the block types a stage offers: their port
// capabilities, instance caps, protection and default configuration.
package registry
