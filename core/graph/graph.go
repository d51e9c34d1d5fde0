package graph

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Node is a live instance in the object graph. It keeps a reference to the
// asset it was instantiated from and its position in the tree.
type Node struct {
	name     string
	asset    any
	parent   *Node
	children []*Node
}

// Name returns the node's name.
func (n *Node) Name() string { return n.name }

// Asset returns the loaded asset the node was instantiated from.
func (n *Node) Asset() any { return n.asset }

// Parent returns the node's parent, nil for the root.
func (n *Node) Parent() *Node { return n.parent }

// Children returns a copy of the node's children.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// Graph is the embedding application's object-graph manager. It implements
// the resolver's Sink interface: given a loaded asset, it produces a live
// node attached under the requested parent.
type Graph struct {
	mu     sync.Mutex
	root   *Node
	seq    int
	logger *zap.Logger
}

// New creates a graph with an empty root node.
func New(logger *zap.Logger) *Graph {
	return &Graph{root: &Node{name: "root"}, logger: logger}
}

// Root returns the root node.
func (g *Graph) Root() *Node {
	return g.root
}

// Instantiate creates a node holding obj. An empty name gets a generated one;
// a nil parent attaches under the root. parent must be a *Node from this
// graph.
func (g *Graph) Instantiate(_ context.Context, obj any, name string, parent any) (any, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	p := g.root
	if parent != nil {
		node, ok := parent.(*Node)
		if !ok {
			return nil, fmt.Errorf("parent is %T, not a graph node", parent)
		}
		p = node
	}

	if name == "" {
		g.seq++
		name = fmt.Sprintf("instance_%d", g.seq)
	}

	n := &Node{name: name, asset: obj, parent: p}
	p.children = append(p.children, n)

	g.logger.Debug("Instantiated node",
		zap.String("name", name),
		zap.String("parent", p.name),
	)
	return n, nil
}

// Find returns the first node with the given name in depth-first order, or
// nil. The root is included.
func (g *Graph) Find(name string) *Node {
	g.mu.Lock()
	defer g.mu.Unlock()
	return find(g.root, name)
}

func find(n *Node, name string) *Node {
	if n.name == name {
		return n
	}
	for _, c := range n.children {
		if hit := find(c, name); hit != nil {
			return hit
		}
	}
	return nil
}

// Detach removes n and its subtree from the graph. Detaching the root or an
// already-detached node is a no-op.
func (g *Graph) Detach(n *Node) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if n == nil || n.parent == nil {
		return
	}
	siblings := n.parent.children
	for i, c := range siblings {
		if c == n {
			n.parent.children = append(siblings[:i], siblings[i+1:]...)
			break
		}
	}
	n.parent = nil
}
