package backend

import (
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"github.com/awantoch/cvdfunctions/config"
	"github.com/awantoch/cvdfunctions/constants"
	"github.com/awantoch/cvdfunctions/utils"
	"github.com/pkg/errors"
)

// openProxy forwards every request to cfg.URL, keeping the request path and
// query under the URL's own path.
func openProxy(cfg config.BackendConfig) (http.Handler, error) {
	if cfg.URL == "" {
		return nil, utils.Errorf("proxy backend requires a url (set %s)", constants.EnvBackendURL)
	}
	target, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, errors.Wrapf(err, "parse backend url %q", cfg.URL)
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, utils.Errorf("backend url %q must be absolute", cfg.URL)
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = config.DefaultBackendTimeoutSeconds * time.Second
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = timeout

	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.Transport = transport
	director := proxy.Director
	proxy.Director = func(r *http.Request) {
		director(r)
		r.Host = target.Host
	}
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		utils.ErrorCtx(r.Context(), "backend request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		w.WriteHeader(http.StatusBadGateway)
	}
	return proxy, nil
}
