// Package config loads grest client settings from a config file, a dotenv
// file and GREST_* environment variables, and builds a grest.Client from them.
package config
