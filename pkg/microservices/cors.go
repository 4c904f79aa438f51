package microservices

import (
	"net/http"

	"github.com/gorilla/handlers"
)

// CORSPolicy is the declarative cross-origin policy applied in front of the router.
type CORSPolicy struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

var DefaultCORSPolicy = CORSPolicy{
	AllowedOrigins: []string{"http://localhost:5000"},
	AllowedMethods: []string{"GET", "POST", "PUT", "DELETE"},
	AllowedHeaders: []string{
		"User-Agent",
		"Sec-Fetch-Mode",
		"Referer",
		"Origin",
		"Access-Control-Request-Method",
		"Access-Control-Request-Headers",
		"Content-Type",
	},
}

func (p CORSPolicy) Handler(h http.Handler) http.Handler {
	return handlers.CORS(
		handlers.AllowedOrigins(p.AllowedOrigins),
		handlers.AllowedMethods(p.AllowedMethods),
		handlers.AllowedHeaders(p.AllowedHeaders),
	)(h)
}
