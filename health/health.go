// Package health implements the test function: a fixed 200 response that
// echoes the request path and method, used to check that functions deploy.
package health

import (
	"context"
	"net/http"

	"github.com/awantoch/cvdfunctions/constants"
	"github.com/awantoch/cvdfunctions/serverless"
)

// Body is the JSON body of the health response.
type Body struct {
	Message string `json:"message"`
	Path    string `json:"path"`
	Method  string `json:"method"`
}

// Handler answers every event with 200. It cannot fail.
func Handler(_ context.Context, event serverless.Event) (serverless.Response, error) {
	return serverless.JSONResponse(http.StatusOK, Body{
		Message: constants.MsgFunctionWorking,
		Path:    orUnknown(event.Path),
		Method:  orUnknown(event.HTTPMethod),
	}), nil
}

// LambdaHandler is an alias of Handler.
func LambdaHandler(ctx context.Context, event serverless.Event) (serverless.Response, error) {
	return Handler(ctx, event)
}

func orUnknown(s string) string {
	if s == "" {
		return constants.MsgUnknownField
	}
	return s
}
