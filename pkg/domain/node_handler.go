package domain

import "context"

type NodeInput struct {
	Node    Node
	Config  map[string]any
	Input   Payload
	Context *ExecutionContext

	// Dispatcher runs nested node definitions, used by loop and parallel.
	Dispatcher NodeDispatcher
}

// NodeHandler executes one node type. Implementations must honour ctx
// cancellation, the executor cancels it when the node or the run times out.
type NodeHandler interface {
	Execute(ctx context.Context, input NodeInput) (Payload, error)
}

// ConfigValidator is implemented by handlers that have required config
// fields. It runs before dispatch and its errors surface as ConfigurationError.
type ConfigValidator interface {
	Validate(config map[string]any) error
}

type NodeHandlerFunc func(ctx context.Context, input NodeInput) (Payload, error)

func (f NodeHandlerFunc) Execute(ctx context.Context, input NodeInput) (Payload, error) {
	return f(ctx, input)
}

type NodeDispatcher interface {
	Dispatch(ctx context.Context, node Node, input Payload, execCtx *ExecutionContext) (Payload, error)
}

// Simulated builds the result returned by side-effecting handlers in test mode.
func Simulated(fields map[string]any) Payload {
	return Payload{
		"simulated": true,
		"testMode":  true,
	}.Merge(fields)
}
