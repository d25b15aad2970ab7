package tree

import (
	"errors"
	"iter"

	"github.com/benz9527/xtree/lib/infra"
)

var (
	ErrInvalidElement = errors.New("[rbtree] invalid element")
	ErrEmptyTree      = errors.New("[rbtree] empty tree")
	ErrNotFound       = errors.New("[rbtree] key not found")
	ErrNoPivot        = errors.New("[rbtree] rotate without pivot child")
)

type RBColor uint8

const (
	Black RBColor = iota
	Red
)

func (c RBColor) String() string {
	switch c {
	case Black:
		return "Black"
	case Red:
		return "Red"
	default:
	}
	return "RBColor(unknown)"
}

type RBDirection int8

const (
	Left RBDirection = -1 + iota
	Root
	Right
)

func (d RBDirection) String() string {
	switch d {
	case Left:
		return "Left"
	case Root:
		return "Root"
	case Right:
		return "Right"
	default:
	}
	return "RBDirection(unknown)"
}

type TraverseOrder uint8

const (
	PreOrder TraverseOrder = iota
	InOrder
	PostOrder
	BreadthFirst
)

func (o TraverseOrder) String() string {
	switch o {
	case PreOrder:
		return "PreOrder"
	case InOrder:
		return "InOrder"
	case PostOrder:
		return "PostOrder"
	case BreadthFirst:
		return "BreadthFirst"
	default:
	}
	return "TraverseOrder(unknown)"
}

// TraversalItem is a snapshot of a node taken while walking the tree.
// Depth is the number of edges from the root.
type TraversalItem[K infra.OrderedKey, V any] struct {
	Key   K
	Val   V
	Color RBColor
	Depth int
}

// Node is the read only view of a tree node.
type Node[K infra.OrderedKey, V any] interface {
	Key() K
	Val() V
	Color() RBColor
	Left() Node[K, V]
	Right() Node[K, V]
	Parent() Node[K, V]
	// Depth is the number of edges to the root.
	Depth() int
	// Height is the number of edges on the longest downward path.
	Height() int
}

// Tree is the common surface of the binary trees in this package.
// None of the implementations is thread safe. The tree must not
// be modified while a Traverse or Foreach walk is in progress.
type Tree[K infra.OrderedKey, V any] interface {
	Len() int64
	// Height returns -1 for an empty tree.
	Height() int
	Root() (Node[K, V], error)
	Insert(key K, val V) error
	// Remove returns the detached node that carried the key.
	// Absent key is a no-op and returns false.
	Remove(key K) (Node[K, V], bool)
	Find(key K) (V, bool)
	Contains(key K) bool
	// Traverse returns a lazy and restartable walk in the given order.
	Traverse(order TraverseOrder) iter.Seq[TraversalItem[K, V]]
	Release()
}

// SortedTree keeps the in-order sequence of keys sorted.
type SortedTree[K infra.OrderedKey, V any] interface {
	Tree[K, V]
	Min() (Node[K, V], error)
	Max() (Node[K, V], error)
	// Search returns the first node matched the key, or nil.
	Search(key K) Node[K, V]
	// Compare compares two keys under the tree order.
	Compare(k1, k2 K) int64
	// Foreach is the in-order traversal. Stops when action returns false.
	Foreach(action func(idx int64, color RBColor, key K, val V) bool)
}

// BinarySearchTree is the unbalanced tree.
// The rotations are exposed, the caller is responsible for the shape.
type BinarySearchTree[K infra.OrderedKey, V any] interface {
	SortedTree[K, V]
	RotateLeft(key K) error
	RotateRight(key K) error
}

type RBTree[K infra.OrderedKey, V any] interface {
	SortedTree[K, V]
	RemoveMin() (Node[K, V], error)
}

type CompleteBinaryTree[K infra.OrderedKey, V any] interface {
	Tree[K, V]
}
