package serverless

import (
	"encoding/base64"
	"io"
	"net"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/awantoch/cvdfunctions/constants"
	"github.com/awantoch/cvdfunctions/telemetry"
	"github.com/awantoch/cvdfunctions/utils"
	"github.com/google/uuid"
)

// NewLocalServer emulates the function runtime over plain HTTP for local
// development. Requests to /.netlify/functions/<name>[/rest] invoke the
// named function with path "/rest"; /metrics serves Prometheus metrics.
func NewLocalServer(functions map[string]HandlerFunc) http.Handler {
	mux := http.NewServeMux()
	mux.Handle(constants.DefaultMetricsPath, telemetry.MetricsHandler())
	mux.HandleFunc(constants.DefaultFunctionsPath, func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, constants.DefaultFunctionsPath)
		name, sub, _ := strings.Cut(rest, "/")
		fn, ok := functions[name]
		if !ok {
			http.Error(w, constants.MsgFunctionNotFound, http.StatusNotFound)
			return
		}
		event, err := toEvent(r, "/"+sub)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		resp, err := fn(r.Context(), event)
		if err != nil {
			resp = ErrorResponse(err)
		}
		writeResponse(w, resp)
	})
	return mux
}

// toEvent builds the platform event for an incoming local request.
func toEvent(r *http.Request, path string) (Event, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return Event{}, err
	}
	event := Event{
		HTTPMethod:        r.Method,
		Path:              path,
		Headers:           map[string]string{},
		MultiValueHeaders: map[string][]string{},
	}
	for k, vs := range r.Header {
		event.Headers[k] = vs[0]
		event.MultiValueHeaders[k] = vs
	}
	if r.Host != "" {
		event.Headers[constants.HeaderHost] = r.Host
		event.MultiValueHeaders[constants.HeaderHost] = []string{r.Host}
	}
	if q := r.URL.Query(); len(q) > 0 {
		event.QueryStringParameters = map[string]string{}
		event.MultiValueQueryStringParameters = map[string][]string{}
		for k, vs := range q {
			event.QueryStringParameters[k] = vs[0]
			event.MultiValueQueryStringParameters[k] = vs
		}
	}
	if utf8.Valid(body) {
		event.Body = string(body)
	} else {
		event.Body = base64.StdEncoding.EncodeToString(body)
		event.IsBase64Encoded = true
	}

	event.RequestContext.RequestID = r.Header.Get(constants.HeaderRequestID)
	if event.RequestContext.RequestID == "" {
		event.RequestContext.RequestID = uuid.NewString()
	}
	event.RequestContext.HTTPMethod = r.Method
	event.RequestContext.Path = r.URL.Path
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		event.RequestContext.Identity.SourceIP = host
	}
	return event, nil
}

func writeResponse(w http.ResponseWriter, resp Response) {
	for k, v := range resp.Headers {
		w.Header().Set(k, v)
	}
	for k, vs := range resp.MultiValueHeaders {
		w.Header().Del(k)
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	body := []byte(resp.Body)
	if resp.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(resp.Body)
		if err != nil {
			utils.Error("invalid base64 function response: %v", err)
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		body = decoded
	}
	status := resp.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		utils.Error(constants.LogWriteFailed, err)
	}
}
