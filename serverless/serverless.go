// Package serverless runs an http.Handler inside the function invocation
// model: platform events are translated into HTTP requests, served by the
// backend application, and translated back into platform responses.
package serverless

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
)

// Event is one platform invocation event.
type Event = events.APIGatewayProxyRequest

// Response is the platform response for one invocation.
type Response = events.APIGatewayProxyResponse

// HandlerFunc is the function entry point signature. The error is always nil
// for handlers in this module; failures are encoded in the Response.
type HandlerFunc func(ctx context.Context, event Event) (Response, error)
