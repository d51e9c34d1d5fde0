package assets

import (
	"context"
	"fmt"

	"asset-resolver/core/graph"
	"asset-resolver/core/provider"
	"asset-resolver/core/resolver"

	"go.uber.org/zap"
)

// Service exposes the resolution core to the HTTP surface.
type Service struct {
	resolver *resolver.Resolver
	graph    *graph.Graph
	logger   *zap.Logger
}

// NewService creates a new assets service.
func NewService(res *resolver.Resolver, g *graph.Graph, logger *zap.Logger) *Service {
	return &Service{resolver: res, graph: g, logger: logger}
}

// Fetch resolves key to a blob, caching the result.
func (s *Service) Fetch(ctx context.Context, key string) (*provider.Blob, error) {
	return resolver.TryGet[*provider.Blob](s.resolver, ctx, key, resolver.WithCache())
}

// Preload schedules a background load for key.
func (s *Service) Preload(ctx context.Context, key string) error {
	return s.resolver.Preload(ctx, key)
}

// StatusReport describes a key's cache state.
type StatusReport struct {
	Key     string `json:"key"`
	Loaded  bool   `json:"loaded"`
	Loading bool   `json:"loading"`
}

// Status reports whether key is cached or mid-preload.
func (s *Service) Status(key string) StatusReport {
	return StatusReport{
		Key:     key,
		Loaded:  s.resolver.IsLoaded(key),
		Loading: s.resolver.IsLoading(key),
	}
}

// InstanceReport describes a created instance.
type InstanceReport struct {
	Key    string `json:"key"`
	Name   string `json:"name"`
	Parent string `json:"parent"`
}

// Instantiate resolves key and attaches a live instance to the object graph.
// parentName, when set, must name an existing node.
func (s *Service) Instantiate(ctx context.Context, key, name, parentName string) (*InstanceReport, error) {
	var parent any
	if parentName != "" {
		node := s.graph.Find(parentName)
		if node == nil {
			return nil, fmt.Errorf("parent node %q not found", parentName)
		}
		parent = node
	}

	v, err := s.resolver.Instantiate(ctx, key, name, parent)
	if err != nil {
		return nil, err
	}

	node, ok := v.(*graph.Node)
	if !ok {
		return nil, fmt.Errorf("instantiate produced %T, not a graph node", v)
	}
	report := &InstanceReport{Key: key, Name: node.Name()}
	if p := node.Parent(); p != nil {
		report.Parent = p.Name()
	}
	return report, nil
}

// Release drops the cached entry for key.
func (s *Service) Release(key string) {
	s.resolver.Release(key)
}

// Clear empties the whole cache.
func (s *Service) Clear() {
	s.resolver.ClearCache()
}

// Stats returns cache table sizes.
func (s *Service) Stats() resolver.Stats {
	return s.resolver.CacheStats()
}
