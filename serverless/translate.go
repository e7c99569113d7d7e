package serverless

import (
	"context"
	"encoding/base64"
	"net"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/awantoch/cvdfunctions/constants"
	"github.com/awantoch/cvdfunctions/utils"
	"github.com/awslabs/aws-lambda-go-api-proxy/core"
	"github.com/pkg/errors"
)

// toRequest builds the HTTP request the backend sees for event. The event
// context stays reachable through core.GetAPIGatewayContextFromContext.
func toRequest(ctx context.Context, event Event) (*http.Request, error) {
	var accessor core.RequestAccessor
	req, err := accessor.EventToRequestWithContext(ctx, event)
	if err != nil {
		return nil, errors.Wrapf(err, "translate %s %s event", event.HTTPMethod, event.Path)
	}

	if host := req.Header.Get(constants.HeaderHost); host != "" {
		req.Host = host
		req.Header.Del(constants.HeaderHost)
	}
	if req.Header.Get(constants.HeaderContentLength) != "" {
		req.Header.Set(constants.HeaderContentLength, strconv.FormatInt(req.ContentLength, 10))
	}
	if ip := event.RequestContext.Identity.SourceIP; ip != "" {
		req.RemoteAddr = net.JoinHostPort(ip, "0")
	}
	utils.DebugCtx(ctx, "backend request", "method", req.Method, "uri", req.RequestURI, "bytes", req.ContentLength)
	return req, nil
}

// responseRecorder collects what the backend writes for one request. The
// first status written wins, as on a real connection.
type responseRecorder struct {
	*core.ProxyResponseWriter
	wroteHeader bool
}

func newResponseRecorder() *responseRecorder {
	return &responseRecorder{ProxyResponseWriter: core.NewProxyResponseWriter()}
}

func (r *responseRecorder) WriteHeader(code int) {
	if r.wroteHeader {
		return
	}
	r.wroteHeader = true
	r.ProxyResponseWriter.WriteHeader(code)
}

func (r *responseRecorder) Write(p []byte) (int, error) {
	r.WriteHeader(http.StatusOK)
	if len(p) == 0 {
		return 0, nil
	}
	return r.ProxyResponseWriter.Write(p)
}

// response translates the recorded HTTP response into a platform response.
// Single-valued headers go to Headers, repeated ones to MultiValueHeaders.
func (r *responseRecorder) response() (Response, error) {
	r.WriteHeader(http.StatusOK)
	proxied, err := r.GetProxyResponse()
	if err != nil {
		return Response{}, errors.Wrap(err, "translate backend response")
	}
	body := []byte(proxied.Body)
	if proxied.IsBase64Encoded {
		if body, err = base64.StdEncoding.DecodeString(proxied.Body); err != nil {
			return Response{}, errors.Wrap(err, "decode backend response body")
		}
	}

	resp := Response{
		StatusCode: proxied.StatusCode,
		Headers:    map[string]string{},
	}
	for k, vs := range proxied.MultiValueHeaders {
		switch len(vs) {
		case 0:
		case 1:
			resp.Headers[k] = vs[0]
		default:
			if resp.MultiValueHeaders == nil {
				resp.MultiValueHeaders = map[string][]string{}
			}
			resp.MultiValueHeaders[k] = append([]string(nil), vs...)
		}
	}

	header := r.Header()
	if isText(header.Get(constants.HeaderContentType), header.Get(constants.HeaderContentEncoding), body) {
		resp.Body = string(body)
	} else {
		resp.Body = base64.StdEncoding.EncodeToString(body)
		resp.IsBase64Encoded = true
	}
	return resp, nil
}

// isText reports whether body can be returned as a plain string: it is empty,
// or it is valid UTF-8 with no content encoding and a content type containing
// one of constants.TextMIMETypes.
func isText(contentType, contentEncoding string, body []byte) bool {
	if len(body) == 0 {
		return true
	}
	if contentEncoding != "" && !strings.EqualFold(contentEncoding, "identity") {
		return false
	}
	if !utf8.Valid(body) {
		return false
	}
	contentType = strings.ToLower(contentType)
	for _, t := range constants.TextMIMETypes {
		if strings.Contains(contentType, t) {
			return true
		}
	}
	return false
}
