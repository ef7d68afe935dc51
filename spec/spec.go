// Package spec embeds the OpenAPI description of the packing list API.
// The API server serves it verbatim at /openapi.yaml.
package spec

import _ "embed"

// OpenAPI contains the raw bytes of openapi.yaml, embedded at compile time.
//
//go:embed openapi.yaml
var OpenAPI []byte
