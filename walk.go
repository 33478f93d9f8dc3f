package umt

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// MapFunc transforms a single node during Map.
type MapFunc func(ctx context.Context, n *Node) (*Node, error)

// SetParentAndIndex points every child of n back at n and records its
// position. It mutates n's children and must only be called on structures
// that have not been handed out yet.
func SetParentAndIndex(n *Node) {
	if n == nil {
		return
	}
	for i, child := range n.Children {
		child.Parent = n
		child.Index = i
	}
}

// Map applies fn to n, then maps the children of fn's result and
// reassembles them under a copy of that result. The parent is always
// transformed before its children. With parallel set, sibling subtrees are
// resolved concurrently and side effects between siblings are unordered;
// otherwise children are processed strictly left to right.
//
// Map never mutates its input: every returned node is a fresh copy with
// Parent and Index repaired.
func Map(ctx context.Context, n *Node, fn MapFunc, parallel bool) (*Node, error) {
	if n == nil {
		return nil, ErrNilNode
	}
	mapped, err := fn(ctx, n)
	if err != nil {
		return nil, err
	}
	if mapped == nil {
		return nil, fmt.Errorf("%w: map returned no node for %s", ErrNilNode, n.Type)
	}

	out := mapped.Clone()
	if !out.IsParent() {
		return out, nil
	}

	children := make([]*Node, len(out.Children))
	if parallel {
		g, gctx := errgroup.WithContext(ctx)
		for i, child := range out.Children {
			g.Go(func() error {
				c, err := Map(gctx, child, fn, true)
				if err != nil {
					return err
				}
				children[i] = c
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i, child := range out.Children {
			c, err := Map(ctx, child, fn, false)
			if err != nil {
				return nil, err
			}
			children[i] = c
		}
	}

	out.Children = children
	SetParentAndIndex(out)
	return out, nil
}

// AddChildren returns a copy of n whose children are n's existing children
// (none for a leaf) followed by extra. Parent and index are repaired over
// the whole sequence.
func AddChildren(n *Node, extra ...*Node) *Node {
	out := n.Clone()
	children := make([]*Node, 0, len(out.Children)+len(extra))
	for _, c := range out.Children {
		children = append(children, cloneTree(c))
	}
	for _, c := range extra {
		children = append(children, cloneTree(c))
	}
	out.Children = children
	SetParentAndIndex(out)
	return out
}

// cloneTree copies every header of the subtree so parent links can be
// repaired at each level without touching the original.
func cloneTree(n *Node) *Node {
	out := n.Clone()
	for i, child := range out.Children {
		out.Children[i] = cloneTree(child)
	}
	SetParentAndIndex(out)
	return out
}

// Filter returns a copy of n keeping only the children, at every depth,
// that satisfy keep. A dropped node takes its whole subtree with it. The
// root itself is always kept.
func Filter(n *Node, keep func(*Node) bool) *Node {
	if n == nil {
		return nil
	}
	out := n.Clone()
	if !out.IsParent() {
		return out
	}
	children := make([]*Node, 0, len(out.Children))
	for _, child := range out.Children {
		if keep(child) {
			children = append(children, Filter(child, keep))
		}
	}
	out.Children = children
	SetParentAndIndex(out)
	return out
}

// Purify keeps only the nodes sharing n's mime type. It runs before
// serialization: hooks may attach nodes of other types (an image blob in a
// markdown tree) that the serializer for n's type cannot read.
func Purify(n *Node) *Node {
	if n == nil {
		return nil
	}
	root := n.MimeType
	return Filter(n, func(c *Node) bool { return c.MimeType == root })
}

// Clean returns a copy of n without Parent and Index at every depth, for
// code outside the engine that cannot cope with the parent cycle.
func Clean(n *Node) *Node {
	if n == nil {
		return nil
	}
	out := n.Clone()
	out.Parent = nil
	out.Index = 0
	if out.IsParent() {
		for i, child := range out.Children {
			out.Children[i] = Clean(child)
		}
	}
	return out
}

// Walk visits n and its descendants depth-first, parent before children.
// Returning false from visit skips the node's children.
func Walk(n *Node, visit func(*Node) bool) {
	if n == nil || !visit(n) {
		return
	}
	for _, child := range n.Children {
		Walk(child, visit)
	}
}
