package serverless

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/awantoch/cvdfunctions/constants"
	"github.com/pkg/errors"
)

// ErrorBody is the JSON body of a failed invocation.
type ErrorBody struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Traceback string `json:"traceback"`
}

// JSONHeaders returns the headers every JSON function response carries.
func JSONHeaders() map[string]string {
	return map[string]string{
		constants.HeaderContentType: constants.ContentTypeJSON,
		constants.HeaderAllowOrigin: constants.AllowOriginAny,
	}
}

// JSONResponse encodes v as the body of a response with the given status.
func JSONResponse(status int, v any) Response {
	body, err := encodeJSON(v)
	if err != nil {
		return ErrorResponse(errors.Wrap(err, "encode response body"))
	}
	return Response{StatusCode: status, Body: body, Headers: JSONHeaders()}
}

// ErrorResponse converts err into the 500 response returned to the platform.
// The traceback is the error's stack trace when it carries one.
func ErrorResponse(err error) Response {
	body, encErr := encodeJSON(ErrorBody{
		Error:     err.Error(),
		Message:   constants.MsgFunctionError,
		Traceback: traceback(err),
	})
	if encErr != nil {
		body = fmt.Sprintf(`{"error":%q,"message":%q,"traceback":""}`, err.Error(), constants.MsgFunctionError)
	}
	return Response{
		StatusCode: http.StatusInternalServerError,
		Body:       body,
		Headers:    JSONHeaders(),
	}
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// boundaryFrame is where a traceback stops: frames above it belong to
// whoever called the function, not to the failure.
const boundaryFrame = "(*Adapter).Invoke"

// traceback renders err followed by its stack, from the failure up to the
// adapter boundary. For panics the recovery frames are left out.
func traceback(err error) string {
	var st stackTracer
	if !errors.As(err, &st) {
		return err.Error()
	}
	frames := st.StackTrace()
	for i, f := range frames {
		if fmt.Sprintf("%n", f) == "gopanic" {
			frames = frames[i+1:]
			break
		}
	}

	var b strings.Builder
	b.WriteString(err.Error())
	for _, f := range frames {
		fmt.Fprintf(&b, "\n%+v", f)
		if fmt.Sprintf("%n", f) == boundaryFrame {
			break
		}
	}
	return b.String()
}

// encodeJSON marshals v without HTML escaping, so tracebacks and messages
// stay readable.
func encodeJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}
