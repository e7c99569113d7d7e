package serverless

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
)

// Adapter serves platform events with an http.Handler. The handler's own
// startup and shutdown lifecycle is never run; the function process lifetime
// does not line up with it.
type Adapter struct {
	handler http.Handler
}

// NewAdapter wraps handler for invocation.
func NewAdapter(handler http.Handler) *Adapter {
	return &Adapter{handler: handler}
}

// Invoke serves one event and returns the handler's response unchanged.
// A translation failure or a panic in the handler is returned as an error
// carrying a stack trace.
func (a *Adapter) Invoke(ctx context.Context, event Event) (resp Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			resp, err = Response{}, panicError(r)
		}
	}()

	req, err := toRequest(ctx, event)
	if err != nil {
		return Response{}, err
	}
	rec := newResponseRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec.response()
}

func panicError(r any) error {
	if err, ok := r.(error); ok {
		return errors.WithStack(err)
	}
	return errors.Errorf("%v", r)
}
