package domain

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

type SelectHandlerParams struct {
	NodeType NodeType
}

type HandlerRegistry interface {
	Register(nodeType NodeType, handler NodeHandler)
	Select(ctx context.Context, params SelectHandlerParams) (NodeHandler, error)
	RegisteredTypes() []NodeType
}

type handlerRegistry struct {
	handlersByType map[NodeType]NodeHandler
	mu             sync.RWMutex
}

func NewHandlerRegistry() HandlerRegistry {
	return &handlerRegistry{
		handlersByType: make(map[NodeType]NodeHandler),
	}
}

func (r *handlerRegistry) Register(nodeType NodeType, handler NodeHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.handlersByType[nodeType] = handler
}

func (r *handlerRegistry) Select(ctx context.Context, params SelectHandlerParams) (NodeHandler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	handler, ok := r.handlersByType[params.NodeType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrHandlerNotFound, params.NodeType)
	}

	return handler, nil
}

func (r *handlerRegistry) RegisteredTypes() []NodeType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]NodeType, 0, len(r.handlersByType))
	for nodeType := range r.handlersByType {
		types = append(types, nodeType)
	}

	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	return types
}
