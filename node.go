package umt

import "maps"

// Node is a single element of the unified tree.
//
// The header (MimeType, Type, Children, Parent, Index) is shared by every
// content type. Format-specific payload lives in Data and is owned by the
// plugin that produced the node; cross-cutting attributes attached by
// creation hooks live in Attrs.
//
// A node with nil Children is a leaf. A node with a non-nil (possibly
// empty) Children slice is a parent. Parent and Index are a recomputed,
// non-owning relation: they are refreshed after every structural change
// and are never serialized.
type Node struct {
	MimeType MimeType       `json:"mimeType" yaml:"mimeType"`
	Type     string         `json:"type" yaml:"type"`
	Data     any            `json:"data,omitempty" yaml:"data,omitempty"`
	Attrs    map[string]any `json:"attrs,omitempty" yaml:"attrs,omitempty"`
	Children []*Node        `json:"children,omitempty" yaml:"children,omitempty"`

	Parent *Node `json:"-" yaml:"-"`
	Index  int   `json:"-" yaml:"-"`

	// created is set once the node went through the creation pipeline.
	created bool
}

// IsParent reports whether n carries a children sequence.
func (n *Node) IsParent() bool {
	return n != nil && n.Children != nil
}

// Created reports whether n went through Engine.N.
func (n *Node) Created() bool {
	return n != nil && n.created
}

// Clone returns a shallow copy of n: the header and Attrs map are copied,
// the Children slice is copied (children themselves are shared), and Data
// is shared.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := *n
	if n.Attrs != nil {
		out.Attrs = maps.Clone(n.Attrs)
	}
	if n.Children != nil {
		out.Children = make([]*Node, len(n.Children))
		copy(out.Children, n.Children)
	}
	return &out
}

// Attr returns the attribute stored under key.
func (n *Node) Attr(key string) (any, bool) {
	if n == nil || n.Attrs == nil {
		return nil, false
	}
	v, ok := n.Attrs[key]
	return v, ok
}

// WithAttr returns a copy of n with key set to value.
func (n *Node) WithAttr(key string, value any) *Node {
	out := n.Clone()
	if out.Attrs == nil {
		out.Attrs = make(map[string]any, 1)
	}
	out.Attrs[key] = value
	return out
}

// WithType returns a copy of n with a different kind.
func (n *Node) WithType(kind string) *Node {
	out := n.Clone()
	out.Type = kind
	return out
}

// WithData returns a copy of n carrying a different payload.
func (n *Node) WithData(data any) *Node {
	out := n.Clone()
	out.Data = data
	return out
}

// Depth returns the number of ancestors reachable through Parent.
func (n *Node) Depth() int {
	depth := 0
	for p := n.Parent; p != nil; p = p.Parent {
		depth++
	}
	return depth
}

// NextSiblings returns the siblings that follow n under its parent.
func (n *Node) NextSiblings() []*Node {
	if n == nil || n.Parent == nil || n.Index+1 >= len(n.Parent.Children) {
		return nil
	}
	return n.Parent.Children[n.Index+1:]
}
