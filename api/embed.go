// Package api embeds the REST contract of the HR backend.
package api

import _ "embed"

//go:embed openapi.yml
var OpenAPISpec []byte
