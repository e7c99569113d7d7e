package serverless

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/awantoch/cvdfunctions/backend"
	"github.com/awantoch/cvdfunctions/config"
	"github.com/awantoch/cvdfunctions/constants"
	"github.com/awantoch/cvdfunctions/telemetry"
	"github.com/awantoch/cvdfunctions/utils"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var (
	initAdapter sync.Once
	initErr     error
	adapter     *Adapter
	adapterMu   sync.RWMutex
)

// Handler is the predict function entry point. It resolves the backend once
// per process and forwards every event to it; any failure comes back as the
// 500 response built by ErrorResponse.
func Handler(ctx context.Context, event Event) (Response, error) {
	start := time.Now()
	ctx = WithRequestID(ctx, event)

	initAdapter.Do(initialize)

	adapterMu.RLock()
	a, err := adapter, initErr
	adapterMu.RUnlock()

	if err == nil && a == nil {
		err = errors.New(constants.LogBackendInitFailed)
	}

	var resp Response
	if err == nil {
		resp, err = a.Invoke(ctx, event)
	}
	if err != nil {
		resp = ErrorResponse(err)
		utils.ErrorCtx(ctx, constants.LogFunctionError, "response", resp)
	} else if resp.StatusCode >= http.StatusInternalServerError {
		utils.WarnCtx(ctx, "backend error status", "status", resp.StatusCode, "path", event.Path)
	}

	elapsed := time.Since(start)
	utils.InfoCtx(ctx, "invocation",
		"function", constants.FunctionPredict,
		"method", event.HTTPMethod,
		"path", event.Path,
		"status", resp.StatusCode,
		"duration", elapsed,
	)
	telemetry.ObserveInvocation(constants.FunctionPredict, resp.StatusCode, elapsed)
	telemetry.Flush(ctx)
	return resp, nil
}

// LambdaHandler is an alias of Handler for platforms that look for that name.
func LambdaHandler(ctx context.Context, event Event) (Response, error) {
	return Handler(ctx, event)
}

// initialize runs once per cold start. A panic while opening the backend is
// kept as the init error, like any other failure.
func initialize() {
	adapterMu.Lock()
	defer adapterMu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			adapter = nil
			initErr = errors.Wrap(panicError(r), "open backend")
			utils.Error("%s: %+v", constants.LogBackendInitFailed, initErr)
		}
	}()

	cfg, err := config.Load("")
	if err != nil {
		initErr = errors.Wrap(err, "load config")
		utils.Error("%s: %+v", constants.LogBackendInitFailed, initErr)
		return
	}
	if cfg.Log.Level != "" {
		if err := utils.SetLevel(cfg.Log.Level); err != nil {
			utils.Warn("%v", err)
		}
	}
	if err := telemetry.Init(context.Background(), cfg.Tracing); err != nil {
		utils.Warn("tracing disabled: %v", err)
	}

	backend.ExportModelDir(backend.ResolveModelsDir(cfg.Backend))

	app, err := backend.Open(cfg.Backend)
	if err != nil {
		initErr = errors.Wrap(err, "open backend")
		utils.Error("%s: %+v", constants.LogBackendInitFailed, initErr)
		return
	}
	adapter = NewAdapter(telemetry.WrapHandler(constants.FunctionPredict, app))
	utils.Info("backend %q ready", cfg.Backend.Driver)
}

// ResetHandler drops the cached backend so the next invocation initializes
// again (for testing).
func ResetHandler() {
	adapterMu.Lock()
	defer adapterMu.Unlock()

	initAdapter = sync.Once{}
	initErr = nil
	adapter = nil
}

// WithRequestID tags ctx with the invocation's request id: the platform's id
// when running on Lambda, the event's own id, or a fresh UUID.
func WithRequestID(ctx context.Context, event Event) context.Context {
	if _, ok := utils.RequestIDFromContext(ctx); ok {
		return ctx
	}
	id := event.RequestContext.RequestID
	if lc, ok := lambdacontext.FromContext(ctx); ok && lc.AwsRequestID != "" {
		id = lc.AwsRequestID
	}
	if id == "" {
		id = uuid.NewString()
	}
	return utils.WithRequestID(ctx, id)
}
