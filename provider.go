package trisync

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/zoobzio/capitan"
	"github.com/zoobzio/pipz"
)

// provider wraps a Completer into the full Provider contract: prompt
// construction, pipeline execution, response parsing. It holds no per-call
// state.
type provider struct {
	completer Completer
	pipeline  pipz.Chainable[*SyncRequest]
}

// NewProvider builds a Provider around a backend adapter. Options wrap the
// request pipeline with reliability features (retry, timeout, circuit
// breaker) and compose in the order given.
func NewProvider(completer Completer, opts ...Option) Provider {
	pipeline := newTerminal(completer)
	for _, opt := range opts {
		pipeline = opt(pipeline)
	}
	return &provider{completer: completer, pipeline: pipeline}
}

// newTerminal creates the terminal pipeline stage that calls the backend.
func newTerminal(completer Completer) pipz.Chainable[*SyncRequest] {
	return pipz.Apply("llm-call", func(ctx context.Context, req *SyncRequest) (*SyncRequest, error) {
		resp, err := completer.Complete(ctx, req.Prompt)
		if err != nil {
			return req, err
		}
		req.Response = resp
		return req, nil
	})
}

func (p *provider) Name() string {
	return p.completer.Name()
}

// Sync executes one direction-aware sync. Transport and backend errors are
// reported inside the result; Sync itself never panics and never loses the
// caller's context.
func (p *provider) Sync(ctx context.Context, direction Direction, sc SyncContext) SyncResult {
	if err := validateDirection(direction); err != nil {
		return failure(err)
	}

	requestID := uuid.New().String()
	request := &SyncRequest{
		Direction:    direction,
		Context:      sc,
		Prompt:       BuildPrompt(direction, sc),
		RequestID:    requestID,
		ProviderName: p.completer.Name(),
	}

	capitan.Info(ctx, SyncStarted,
		RequestIDKey.Field(requestID),
		DirectionKey.Field(string(direction)),
		ProviderKey.Field(request.ProviderName),
		InputKey.Field(sc.NewContent),
	)

	processed, err := p.pipeline.Process(ctx, request)
	if err != nil {
		capitan.Error(ctx, SyncFailed,
			RequestIDKey.Field(requestID),
			DirectionKey.Field(string(direction)),
			ProviderKey.Field(request.ProviderName),
			ErrorKey.Field(err.Error()),
		)
		return failure(fmt.Errorf("%s sync failed: %w", direction, err))
	}

	parsed := ParseResponse(processed.Response, direction.ExtractsCode())
	if direction.ExtractsCode() && parsed.Strategy != ParsedJSON {
		capitan.Emit(ctx, ParseFellBack,
			RequestIDKey.Field(requestID),
			DirectionKey.Field(string(direction)),
			StrategyKey.Field(string(parsed.Strategy)),
		)
	}

	capitan.Info(ctx, SyncCompleted,
		RequestIDKey.Field(requestID),
		DirectionKey.Field(string(direction)),
		ProviderKey.Field(request.ProviderName),
		ResultKey.Field(parsed.Code),
		SymbolCountKey.Field(len(parsed.Symbols)),
	)

	return SyncResult{
		Success:         true,
		Result:          parsed.Code,
		Symbols:         parsed.Symbols,
		NotebookSymbols: parsed.NotebookSymbols,
	}
}
