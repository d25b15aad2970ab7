package tree

import (
	"github.com/benz9527/xtree/lib/infra"
	"github.com/benz9527/xtree/lib/queue"
)

// bsNode is shared by the BST and its red-black balancer.
// The color is only meaningful under the balancer, the plain
// BST leaves it as the zero value (Black).
type bsNode[K infra.OrderedKey, V any] struct {
	parent *bsNode[K, V]
	left   *bsNode[K, V]
	right  *bsNode[K, V]
	key    K
	val    V
	color  RBColor
}

func (node *bsNode[K, V]) Color() RBColor {
	return node.color
}

func (node *bsNode[K, V]) Key() K {
	return node.key
}

func (node *bsNode[K, V]) Val() V {
	return node.val
}

func (node *bsNode[K, V]) Left() Node[K, V] {
	if node == nil || node.left == nil {
		return nil
	}
	return node.left
}

func (node *bsNode[K, V]) Parent() Node[K, V] {
	if node == nil || node.parent == nil {
		return nil
	}
	return node.parent
}

func (node *bsNode[K, V]) Right() Node[K, V] {
	if node == nil || node.right == nil {
		return nil
	}
	return node.right
}

func (node *bsNode[K, V]) Depth() int {
	depth := 0
	for aux := node; aux != nil && aux.parent != nil; aux = aux.parent {
		depth++
	}
	return depth
}

func (node *bsNode[K, V]) Height() int {
	return subtreeHeight[K, V](node)
}

// All absent (nil) nodes are considered black.
func isRed[K infra.OrderedKey, V any](node *bsNode[K, V]) bool {
	return node != nil && node.color == Red
}

func isBlack[K infra.OrderedKey, V any](node *bsNode[K, V]) bool {
	return node == nil || node.color == Black
}

func (node *bsNode[K, V]) isRed() bool {
	return isRed[K, V](node)
}

func (node *bsNode[K, V]) isBlack() bool {
	return isBlack[K, V](node)
}

func (node *bsNode[K, V]) isRoot() bool {
	return node != nil && node.parent == nil
}

func (node *bsNode[K, V]) direction() RBDirection {
	if node == nil {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] absent node without direction")
	}

	if node.isRoot() {
		return Root
	}
	if node == node.parent.left {
		return Left
	}
	return Right
}

func (node *bsNode[K, V]) child(dir RBDirection) *bsNode[K, V] {
	switch dir {
	case Left:
		return node.left
	case Right:
		return node.right
	default:
	}
	return nil
}

func (node *bsNode[K, V]) sibling() *bsNode[K, V] {
	switch node.direction() {
	case Left:
		return node.parent.right
	case Right:
		return node.parent.left
	default:
	}
	return nil
}

func (node *bsNode[K, V]) uncle() *bsNode[K, V] {
	if node.isRoot() {
		return nil
	}
	return node.parent.sibling()
}

func (node *bsNode[K, V]) grandpa() *bsNode[K, V] {
	if node.isRoot() {
		return nil
	}
	return node.parent.parent
}

func (node *bsNode[K, V]) fixLink() {
	if node.left != nil {
		node.left.parent = node
	}
	if node.right != nil {
		node.right.parent = node
	}
}

func (node *bsNode[K, V]) minimum() *bsNode[K, V] {
	aux := node
	for ; aux != nil && aux.left != nil; aux = aux.left {
	}
	return aux
}

func (node *bsNode[K, V]) maximum() *bsNode[K, V] {
	aux := node
	for ; aux != nil && aux.right != nil; aux = aux.right {
	}
	return aux
}

// The pred node of the current node is its previous node in sorted order
func (node *bsNode[K, V]) pred() *bsNode[K, V] {
	x := node
	if x == nil {
		return nil
	}
	if x.left != nil {
		return x.left.maximum()
	}

	aux := x.parent
	// Backtrack to father node that is the x's pred.
	for aux != nil && x == aux.left {
		x = aux
		aux = aux.parent
	}
	return aux
}

// The succ node of the current node is its next node in sorted order.
func (node *bsNode[K, V]) succ() *bsNode[K, V] {
	x := node
	if x == nil {
		return nil
	}
	if x.right != nil {
		return x.right.minimum()
	}

	aux := x.parent
	// Backtrack to father node that is the x's succ.
	for aux != nil && x == aux.right {
		x = aux
		aux = aux.parent
	}
	return aux
}

// detach clears the links, the payload is kept for the caller.
func (node *bsNode[K, V]) detach() {
	node.parent, node.left, node.right = nil, nil, nil
}

type depthFrame[K infra.OrderedKey, V any] struct {
	node  *bsNode[K, V]
	depth int
}

// subtreeHeight counts edges level by level, -1 for an absent node.
func subtreeHeight[K infra.OrderedKey, V any](node *bsNode[K, V]) int {
	if node == nil {
		return -1
	}
	height := 0
	q := queue.NewLinkedQueue[depthFrame[K, V]](depthFrame[K, V]{node: node})
	for !q.IsEmpty() {
		f, _ := q.Dequeue()
		if f.depth > height {
			height = f.depth
		}
		if f.node.left != nil {
			q.Enqueue(depthFrame[K, V]{node: f.node.left, depth: f.depth + 1})
		}
		if f.node.right != nil {
			q.Enqueue(depthFrame[K, V]{node: f.node.right, depth: f.depth + 1})
		}
	}
	return height
}
