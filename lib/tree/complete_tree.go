package tree

import (
	"fmt"
	"iter"
	"math/bits"

	"github.com/benz9527/xtree/lib/infra"
	"github.com/benz9527/xtree/lib/queue"
)

// completeTree fills the levels from left to right. Keys are
// matched by equality only, there is no order between them.
type completeTree[K infra.OrderedKey, V any] struct {
	root  *bsNode[K, V]
	count int64
}

var _ CompleteBinaryTree[int, struct{}] = (*completeTree[int, struct{}])(nil)

func NewCompleteBinaryTree[K infra.OrderedKey, V any]() CompleteBinaryTree[K, V] {
	return &completeTree[K, V]{}
}

func (tree *completeTree[K, V]) rootNode() *bsNode[K, V] {
	return tree.root
}

func (tree *completeTree[K, V]) Len() int64 {
	return tree.count
}

// Height is floor(log2(n)) for a complete tree.
func (tree *completeTree[K, V]) Height() int {
	if tree.count <= 0 {
		return -1
	}
	return bits.Len64(uint64(tree.count)) - 1
}

func (tree *completeTree[K, V]) Root() (Node[K, V], error) {
	if tree.root == nil {
		return nil, ErrEmptyTree
	}
	return tree.root, nil
}

// levelOrder stops at the first node the visit returns false.
func (tree *completeTree[K, V]) levelOrder(visit func(node *bsNode[K, V]) bool) {
	if tree.root == nil {
		return
	}
	q := queue.NewLinkedQueue[*bsNode[K, V]](tree.root)
	for !q.IsEmpty() {
		node, _ := q.Dequeue()
		if !visit(node) {
			return
		}
		if node.left != nil {
			q.Enqueue(node.left)
		}
		if node.right != nil {
			q.Enqueue(node.right)
		}
	}
}

func (tree *completeTree[K, V]) Insert(key K, val V) error {
	if !infra.IsTotallyOrdered[K](key) {
		return fmt.Errorf("%w: key %v is not totally ordered", ErrInvalidElement, key)
	}
	z := &bsNode[K, V]{key: key, val: val}
	if tree.root == nil {
		tree.root = z
		tree.count++
		return nil
	}
	tree.levelOrder(func(node *bsNode[K, V]) bool {
		if node.left == nil {
			node.left, z.parent = z, node
			return false
		}
		if node.right == nil {
			node.right, z.parent = z, node
			return false
		}
		return true
	})
	tree.count++
	return nil
}

func (tree *completeTree[K, V]) search(key K) *bsNode[K, V] {
	var res *bsNode[K, V]
	tree.levelOrder(func(node *bsNode[K, V]) bool {
		if node.key == key {
			res = node
			return false
		}
		return true
	})
	return res
}

func (tree *completeTree[K, V]) last() *bsNode[K, V] {
	var res *bsNode[K, V]
	tree.levelOrder(func(node *bsNode[K, V]) bool {
		res = node
		return true
	})
	return res
}

// Remove moves the payload of the last level-order node into the
// removed slot and detaches the last node, the shape stays complete.
func (tree *completeTree[K, V]) Remove(key K) (Node[K, V], bool) {
	z := tree.search(key)
	if z == nil {
		return nil, false
	}
	y := tree.last()
	if y != z {
		z.key, y.key = y.key, z.key
		z.val, y.val = y.val, z.val
	}
	switch y.direction() {
	case Root:
		tree.root = nil
	case Left:
		y.parent.left = nil
	case Right:
		y.parent.right = nil
	default:
	}
	y.detach()
	tree.count--
	return y, true
}

func (tree *completeTree[K, V]) Find(key K) (V, bool) {
	if node := tree.search(key); node != nil {
		return node.val, true
	}
	var v V
	return v, false
}

func (tree *completeTree[K, V]) Contains(key K) bool {
	return tree.search(key) != nil
}

func (tree *completeTree[K, V]) Traverse(order TraverseOrder) iter.Seq[TraversalItem[K, V]] {
	return traverse[K, V](tree.rootNode, order)
}

func (tree *completeTree[K, V]) Release() {
	release[K, V](tree.root)
	tree.root = nil
	tree.count = 0
}
