package config

import "github.com/awantoch/cvdfunctions/constants"

// Default settings for the functions.
const (
	// DefaultBackendDriver forwards invocations to a separately hosted backend.
	DefaultBackendDriver = constants.BackendDriverProxy
	// DefaultBackendTimeoutSeconds bounds one forwarded request; the platform
	// enforces its own invocation timeout on top.
	DefaultBackendTimeoutSeconds = 25
	// DefaultServiceName is the tracing service name.
	DefaultServiceName = "cvdfunctions"
)
