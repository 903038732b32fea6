package service

import (
	"context"
	"fmt"

	"github.com/pyhumph/jriit-cms-sub001/internal/model"
)

// ResourceAdapter is the lifecycle surface every deletable content kind
// exposes to the recycle bin.
type ResourceAdapter interface {
	ResourceType() model.ResourceType
	MarkDeleted(ctx context.Context, id string, actorID string) error
	ListDeleted(ctx context.Context) ([]model.DeletedItem, error)
	ClearDeletion(ctx context.Context, id string) error
	Purge(ctx context.Context, id string) error
	ListLive(ctx context.Context) ([]model.LiveItem, error)
	LiveStamp(ctx context.Context) (model.LiveStamp, error)
}

// PhysicalCleaner is implemented by adapters whose records own external
// artifacts that must be removed before the record itself.
type PhysicalCleaner interface {
	PhysicalCleanup(ctx context.Context, id string) error
}

// Registry maps resource type tags to adapters. It is immutable once built.
type Registry struct {
	adapters map[model.ResourceType]ResourceAdapter
	ordered  []ResourceAdapter
}

// NewRegistry fails unless exactly one adapter is supplied for every
// resource type.
func NewRegistry(adapters ...ResourceAdapter) (*Registry, error) {
	byType := make(map[model.ResourceType]ResourceAdapter, len(adapters))
	for _, adapter := range adapters {
		rt := adapter.ResourceType()
		if _, err := model.ParseResourceType(string(rt)); err != nil {
			return nil, fmt.Errorf("register adapter %q: %w", rt, err)
		}
		if _, exists := byType[rt]; exists {
			return nil, fmt.Errorf("register adapter %q: duplicate registration", rt)
		}
		byType[rt] = adapter
	}

	ordered := make([]ResourceAdapter, 0, len(model.ResourceTypes))
	for _, rt := range model.ResourceTypes {
		adapter, ok := byType[rt]
		if !ok {
			return nil, fmt.Errorf("no adapter registered for resource type %q", rt)
		}
		ordered = append(ordered, adapter)
	}

	return &Registry{adapters: byType, ordered: ordered}, nil
}

// Resolve parses a resource type tag and returns its adapter. Unknown tags
// wrap model.ErrUnknownResourceType.
func (r *Registry) Resolve(tag string) (ResourceAdapter, model.ResourceType, error) {
	rt, err := model.ParseResourceType(tag)
	if err != nil {
		return nil, "", fmt.Errorf("%q: %w", tag, err)
	}

	return r.adapters[rt], rt, nil
}

// Adapters returns the adapters in registration order.
func (r *Registry) Adapters() []ResourceAdapter {
	out := make([]ResourceAdapter, len(r.ordered))
	copy(out, r.ordered)
	return out
}
