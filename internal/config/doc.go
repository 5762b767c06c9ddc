// Package config loads and validates the application configuration.
//
// Configuration is layered: a YAML file (formgate.yaml, or the file named
// by FORMGATE_CONFIG) provides the base, FORMGATE_* environment variables
// override it, and struct defaults fill what remains. The result is
// validated with go-playground/validator before the application sees it.
//
// The parsing core deliberately receives only two of these values: the
// default charset policy and the maximum accepted body size. The rest is
// server and observability plumbing.
package config
