// Package tree resolves metadata that descriptions inherit through their
// ancestor chain. Walks are iterative over an arena of nodes keyed by id and
// bounded by the repository's node count, so a parent cycle in corrupt data
// fails with archive.ErrCorruptTree instead of looping.
package tree

import (
	"context"
	"strings"

	"archreport/internal/archive"
	"archreport/internal/logging"
)

// Source is the part of the repository the resolver reads.
type Source interface {
	FindByID(ctx context.Context, id int64) (*archive.Node, error)
	AncestorsOf(ctx context.Context, n *archive.Node) ([]*archive.Node, error)
	CreationEvents(ctx context.Context, objectID int64, culture string) ([]archive.CreationEvent, error)
	PhysicalObjects(ctx context.Context, objectID int64) ([]archive.PhysicalObject, error)
	CountNodes(ctx context.Context) (int, error)
}

// Arena holds the nodes seen during one report run.
type Arena struct {
	nodes map[int64]*archive.Node
}

// NewArena returns an empty arena.
func NewArena() *Arena {
	return &Arena{nodes: make(map[int64]*archive.Node)}
}

// Put stores nodes, replacing any with the same id.
func (a *Arena) Put(nodes ...*archive.Node) {
	for _, n := range nodes {
		a.nodes[n.ID] = n
	}
}

// Get looks a node up by id.
func (a *Arena) Get(id int64) (*archive.Node, bool) {
	n, ok := a.nodes[id]
	return n, ok
}

// Len returns the number of nodes held.
func (a *Arena) Len() int {
	return len(a.nodes)
}

// Resolver answers ancestor questions for one report run.
// It is not safe for concurrent use.
type Resolver struct {
	src      Source
	arena    *Arena
	culture  string
	maxDepth int
}

// NewResolver builds a resolver whose walks may visit at most as many nodes
// as the repository holds.
func NewResolver(ctx context.Context, src Source, culture string) (*Resolver, error) {
	count, err := src.CountNodes(ctx)
	if err != nil {
		return nil, err
	}
	if count < 1 {
		count = 1
	}
	return &Resolver{src: src, arena: NewArena(), culture: culture, maxDepth: count}, nil
}

// Arena exposes the resolver's node arena.
func (r *Resolver) Arena() *Arena {
	return r.arena
}

// Preload seeds the arena with n and its whole ancestor chain in one query.
func (r *Resolver) Preload(ctx context.Context, n *archive.Node) error {
	ancestors, err := r.src.AncestorsOf(ctx, n)
	if err != nil {
		return err
	}
	r.arena.Put(ancestors...)
	r.arena.Put(n)
	return nil
}

func (r *Resolver) parent(ctx context.Context, n *archive.Node) (*archive.Node, error) {
	if p, ok := r.arena.Get(n.ParentID); ok {
		return p, nil
	}
	p, err := r.src.FindByID(ctx, n.ParentID)
	if err != nil {
		return nil, err
	}
	r.arena.Put(p)
	return p, nil
}

// walk visits n and then each ancestor up to and including the tree root,
// stopping early when visit returns true.
func (r *Resolver) walk(ctx context.Context, n *archive.Node, visit func(*archive.Node) (bool, error)) error {
	cur := n
	for depth := 0; ; depth++ {
		if depth > r.maxDepth {
			return archive.E(archive.KindCorruptTree, "tree.walk",
				"ancestor chain of description %d exceeds %d nodes", n.ID, r.maxDepth)
		}
		stop, err := visit(cur)
		if err != nil || stop {
			return err
		}
		if !cur.HasParent() {
			return nil
		}
		next, err := r.parent(ctx, cur)
		if err != nil {
			return err
		}
		cur = next
	}
}

// Ancestors returns the ancestors of n in root-to-node order, without the
// tree root and without n.
func (r *Resolver) Ancestors(ctx context.Context, n *archive.Node) ([]*archive.Node, error) {
	var chain []*archive.Node
	err := r.walk(ctx, n, func(cur *archive.Node) (bool, error) {
		if cur != n && cur.HasParent() {
			chain = append(chain, cur)
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

// TopLevel returns the ancestor of n directly below the tree root, or n
// itself when n is top-level (or is the root).
func (r *Resolver) TopLevel(ctx context.Context, n *archive.Node) (*archive.Node, error) {
	top := n
	err := r.walk(ctx, n, func(cur *archive.Node) (bool, error) {
		if !cur.HasParent() {
			return true, nil
		}
		p, err := r.parent(ctx, cur)
		if err != nil {
			return false, err
		}
		if !p.HasParent() {
			top = cur
			return true, nil
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return top, nil
}

// EffectiveCreationDate returns the first dated creation event of n or of its
// nearest ancestor that has one. A chain with no dates returns nil.
func (r *Resolver) EffectiveCreationDate(ctx context.Context, n *archive.Node) (*archive.CreationEvent, error) {
	var found *archive.CreationEvent
	err := r.walk(ctx, n, func(cur *archive.Node) (bool, error) {
		events, err := r.src.CreationEvents(ctx, cur.ID, r.culture)
		if err != nil {
			return false, err
		}
		for i := range events {
			if events[i].HasDate() {
				found = &events[i]
				if cur != n {
					logging.TreeDebug("description %d inherits creation date from %d", n.ID, cur.ID)
				}
				return true, nil
			}
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// LocationString joins the labels of n's own physical objects with "; ".
func (r *Resolver) LocationString(ctx context.Context, n *archive.Node) (string, error) {
	objects, err := r.src.PhysicalObjects(ctx, n.ID)
	if err != nil {
		return "", err
	}
	labels := make([]string, 0, len(objects))
	for _, o := range objects {
		labels = append(labels, o.Label)
	}
	return strings.Join(labels, "; "), nil
}
