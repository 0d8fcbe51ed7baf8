package sandbox

import (
	"fmt"
	"path/filepath"
	"strings"
)

// EntryType classifies a filesystem whitelist entry.
type EntryType int

const (
	// ReadOnly exposes the path read-only.
	ReadOnly EntryType = iota
	// ReadWrite exposes the path writable.
	ReadWrite
	// AllowDev exposes the path writable including device files.
	AllowDev
	// Symlink recreates the path as a symlink to its current target.
	Symlink
	// Tmpfs mounts a fresh tmpfs over the path.
	Tmpfs
)

func (t EntryType) String() string {
	switch t {
	case ReadOnly:
		return "read-only"
	case ReadWrite:
		return "read-write"
	case AllowDev:
		return "device"
	case Symlink:
		return "symlink"
	case Tmpfs:
		return "tmpfs"
	default:
		return fmt.Sprintf("EntryType(%d)", int(t))
	}
}

// leafOnly reports whether the type forbids entries below it.
func (t EntryType) leafOnly() bool {
	return t == Symlink || t == Tmpfs
}

// strength positions the type on the AllowDev > ReadWrite > ReadOnly
// scale used to detect redundant and superseded bind entries. Symlink and
// Tmpfs entries describe artifacts rather than access levels, they take
// part in no ordering and are never dropped in favor of a bind.
func (t EntryType) strength() (int, bool) {
	switch t {
	case AllowDev:
		return 2, true
	case ReadWrite:
		return 1, true
	case ReadOnly:
		return 0, true
	default:
		return 0, false
	}
}

// compare orders two entry types by strength. ok is false when the pair
// is incomparable, which is the case whenever Symlink or Tmpfs is
// involved.
func (t EntryType) compare(other EntryType) (ord int, ok bool) {
	a, aok := t.strength()
	b, bok := other.strength()
	if !aok || !bok {
		return 0, false
	}
	switch {
	case a < b:
		return -1, true
	case a > b:
		return 1, true
	default:
		return 0, true
	}
}

// ConflictError reports two declarations that claim the same path with
// incompatible types. First and Second carry the callers' context for the
// existing and the rejected declaration.
type ConflictError[U any] struct {
	First  U
	Second U
}

func (e *ConflictError[U]) Error() string {
	return fmt.Sprintf("conflicting whitelist entries: %v and %v", e.First, e.Second)
}

// IllegalChildrenError reports a declaration below a symlink or tmpfs
// entry. InnerPath carries the context of the leaf-exclusive entry,
// InvalidChild the context of the declaration below it.
type IllegalChildrenError[U any] struct {
	InnerPath    U
	InvalidChild U
}

func (e *IllegalChildrenError[U]) Error() string {
	return fmt.Sprintf("%v must not contain whitelist entries below it, but %v is one", e.InnerPath, e.InvalidChild)
}

// FSTree collects filesystem whitelist entries in a tree keyed by path
// component. The tree normalizes itself on insertion:
//
//  1. an entry below a comparable entry of equal or greater strength is
//     dropped as redundant, and
//  2. entries below a symlink or tmpfs entry are rejected.
//
// The type parameter U attaches caller context to every entry, typically
// the source location of the declaration, and is only used to identify
// entries in errors. Failed insertions leave the tree in a usable state.
type FSTree[U any] struct {
	root fsNode[U]
}

type fsNode[U any] struct {
	name     string
	children []*fsNode[U]
	entry    *fsEntry[U]
}

type fsEntry[U any] struct {
	typ  EntryType
	data U
}

// NewFSTree returns an empty tree whose root represents "/".
func NewFSTree[U any]() *FSTree[U] {
	return &FSTree[U]{root: fsNode[U]{name: "/"}}
}

// AddPath inserts a whitelist entry for an absolute, normalized path.
// Redundant entries succeed without effect, contradictory ones fail with
// a *ConflictError or *IllegalChildrenError identifying both declarations
// through their data values.
func (t *FSTree[U]) AddPath(path string, typ EntryType, data U) error {
	parts, err := splitPath(path)
	if err != nil {
		return err
	}
	return t.root.add(parts, typ, data)
}

func splitPath(path string) ([]string, error) {
	if !strings.HasPrefix(path, "/") {
		return nil, fmt.Errorf("whitelist path must be absolute, got `%s`", path)
	}
	var parts []string
	for _, part := range strings.Split(path, "/") {
		switch part {
		case "":
			// leading, trailing or doubled slash
		case ".", "..":
			return nil, fmt.Errorf("whitelist path must be normalized, got `%s`", path)
		default:
			parts = append(parts, part)
		}
	}
	return parts, nil
}

func (n *fsNode[U]) add(parts []string, typ EntryType, data U) error {
	if len(parts) > 0 {
		if n.entry != nil {
			if n.entry.typ.leafOnly() {
				return &IllegalChildrenError[U]{InnerPath: n.entry.data, InvalidChild: data}
			}
			if ord, ok := n.entry.typ.compare(typ); ok && ord >= 0 {
				// already covered by an equal or stronger ancestor
				return nil
			}
		}
		return n.child(parts[0]).add(parts[1:], typ, data)
	}

	if !typ.leafOnly() {
		if n.entry != nil {
			if n.entry.typ.leafOnly() {
				return &ConflictError[U]{First: n.entry.data, Second: data}
			}
			if ord, ok := n.entry.typ.compare(typ); ok && ord >= 0 {
				return nil
			}
		}
		n.pruneWeaker(typ)
		n.entry = &fsEntry[U]{typ: typ, data: data}
		return nil
	}

	// Symlink and Tmpfs entries tolerate exact repetition, conflict with
	// anything else and may not sit above other entries.
	if n.entry != nil {
		if n.entry.typ == typ {
			return nil
		}
		return &ConflictError[U]{First: n.entry.data, Second: data}
	}
	n.entry = &fsEntry[U]{typ: typ, data: data}
	var orphan *fsEntry[U]
	if len(n.children) > 0 {
		orphan = n.children[0].anyEntry()
	}
	n.children = nil
	if orphan != nil {
		return &IllegalChildrenError[U]{InnerPath: n.entry.data, InvalidChild: orphan.data}
	}
	return nil
}

// child returns the named child, creating it if needed. Creation order is
// preserved, it determines the flatten order among siblings.
func (n *fsNode[U]) child(name string) *fsNode[U] {
	for _, c := range n.children {
		if c.name == name {
			return c
		}
	}
	c := &fsNode[U]{name: name}
	n.children = append(n.children, c)
	return c
}

// pruneWeaker removes every entry in the subtree that is comparable to typ
// and not stronger, then drops children left without any entry. Reports
// whether the subtree still holds an entry.
func (n *fsNode[U]) pruneWeaker(typ EntryType) bool {
	if n.entry != nil {
		if ord, ok := n.entry.typ.compare(typ); ok && ord <= 0 {
			n.entry = nil
		}
	}
	kept := n.children[:0]
	for _, c := range n.children {
		if c.pruneWeaker(typ) {
			kept = append(kept, c)
		}
	}
	n.children = kept
	return n.entry != nil || len(n.children) > 0
}

// anyEntry returns some entry of the subtree, preferring the shallowest
// one on the first-created branch. The node is known to contain at least
// one entry: childless nodes only exist while they carry an entry.
func (n *fsNode[U]) anyEntry() *fsEntry[U] {
	if n.entry != nil {
		return n.entry
	}
	return n.children[0].anyEntry()
}

// FlatEntry is one entry of a flattened tree.
type FlatEntry struct {
	Path string
	Type EntryType
}

// Flatten returns all entries in pre-order: each node's own entry comes
// before those of its descendants, so a consumer applying them in order
// sees ancestors first.
func (t *FSTree[U]) Flatten() []FlatEntry {
	return t.root.flatten("", nil)
}

func (n *fsNode[U]) flatten(parent string, out []FlatEntry) []FlatEntry {
	path := n.name
	if parent != "" {
		path = filepath.Join(parent, n.name)
	}
	if n.entry != nil {
		out = append(out, FlatEntry{Path: path, Type: n.entry.typ})
	}
	for _, c := range n.children {
		out = c.flatten(path, out)
	}
	return out
}

// Clone returns a deep copy of the tree. Mutations of either copy leave
// the other untouched.
func (t *FSTree[U]) Clone() *FSTree[U] {
	return &FSTree[U]{root: *cloneNode(&t.root)}
}

func cloneNode[U any](n *fsNode[U]) *fsNode[U] {
	cloned := &fsNode[U]{name: n.name}
	if n.entry != nil {
		entry := *n.entry
		cloned.entry = &entry
	}
	for _, c := range n.children {
		cloned.children = append(cloned.children, cloneNode(c))
	}
	return cloned
}

// RemoveUserData copies the tree structure, discarding the caller context
// of every entry. Policies hold the resulting context-free tree.
func (t *FSTree[U]) RemoveUserData() *FSTree[struct{}] {
	return &FSTree[struct{}]{root: *stripNode(&t.root)}
}

func stripNode[U any](n *fsNode[U]) *fsNode[struct{}] {
	stripped := &fsNode[struct{}]{name: n.name}
	if n.entry != nil {
		stripped.entry = &fsEntry[struct{}]{typ: n.entry.typ}
	}
	for _, c := range n.children {
		stripped.children = append(stripped.children, stripNode(c))
	}
	return stripped
}
