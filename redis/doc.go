// Package redis wraps go-redis with blockflow logging and string-duration
// configuration. The redis snapshot backend in storage/redis builds on it.
package redis
