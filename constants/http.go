package constants

// Content Types
const (
	ContentTypeJSON = "application/json"
)

// HTTP Headers
const (
	HeaderContentType     = "Content-Type"
	HeaderContentEncoding = "Content-Encoding"
	HeaderContentLength   = "Content-Length"
	HeaderAllowOrigin     = "Access-Control-Allow-Origin"
	HeaderHost            = "Host"
	HeaderRequestID       = "X-Request-Id"
)

// CORS
const (
	AllowOriginAny = "*"
)

// TextMIMETypes lists the content type fragments whose bodies are returned
// as plain text. Everything else is base64 encoded in the function response.
var TextMIMETypes = []string{
	"text/",
	"application/json",
	"application/javascript",
	"application/xml",
	"application/vnd.api+json",
	"application/vnd.oai.openapi",
}

// Default Values
const (
	DefaultServeAddr     = ":8888"
	DefaultFunctionsPath = "/.netlify/functions/"
	DefaultMetricsPath   = "/metrics"
)
