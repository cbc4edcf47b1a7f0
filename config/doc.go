// Package config loads blockflow configuration.
//
// Values come from a YAML file (./cmd/blockflow/config.yml, ./config/config.yml
// or ./config.yml), an optional .env file, and BLOCKFLOW_* environment
// variables, in increasing order of precedence. Environment names map onto
// nested keys: BLOCKFLOW_STORAGE_REDIS_ADDR sets storage.redis.addr.
//
//	cfg, err := config.Load(config.WithConfigFile(path))
package config
