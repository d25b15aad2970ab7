package tree

import (
	"fmt"
	"iter"

	"github.com/benz9527/xtree/lib/infra"
)

// bstCore is the capability the balancers are built on. The balancer
// reaches the structure only through it and re-establishes its own
// invariants after each structural change.
type bstCore[K infra.OrderedKey, V any] interface {
	rootNode() *bsNode[K, V]
	length() int64
	compare(k1, k2 K) int64
	// insert links a new leaf, ties go to the left subtree.
	insert(key K, val V) error
	// lastInserted is the leaf linked by the latest successful insert.
	lastInserted() *bsNode[K, V]
	search(key K) *bsNode[K, V]
	// swapPredecessor exchanges the payload of z with its in-order
	// predecessor and returns the predecessor. z must have two children.
	swapPredecessor(z *bsNode[K, V]) *bsNode[K, V]
	// splice unlinks y which has at most one child. Returns the child
	// that took y's place, the parent of that place, and its side.
	splice(y *bsNode[K, V]) (child, parent *bsNode[K, V], dir RBDirection)
	rotateLeft(x *bsNode[K, V])
	rotateRight(x *bsNode[K, V])
	release()
}

type bsTree[K infra.OrderedKey, V any] struct {
	root      *bsNode[K, V]
	lastAdded *bsNode[K, V]
	count     int64
	isDesc    bool
	validator func(key K, val V) error
	onRotate  func(dir RBDirection)
}

var (
	_ bstCore[int, struct{}]          = (*bsTree[int, struct{}])(nil)
	_ BinarySearchTree[int, struct{}] = (*bsTree[int, struct{}])(nil)
)

func (tree *bsTree[K, V]) rootNode() *bsNode[K, V] {
	return tree.root
}

func (tree *bsTree[K, V]) length() int64 {
	return tree.count
}

func (tree *bsTree[K, V]) compare(k1, k2 K) int64 {
	if tree.isDesc {
		return infra.DescComparator[K](k1, k2)
	}
	return infra.AscComparator[K](k1, k2)
}

func (tree *bsTree[K, V]) insert(key K, val V) error {
	if !infra.IsTotallyOrdered[K](key) {
		return fmt.Errorf("%w: key %v is not totally ordered", ErrInvalidElement, key)
	}
	if tree.validator != nil {
		if err := tree.validator(key, val); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidElement, err)
		}
	}

	z := &bsNode[K, V]{key: key, val: val}
	var x, y *bsNode[K, V] = tree.root, nil
	for x != nil {
		y = x
		if /* less or equal */ tree.compare(key, x.key) <= 0 {
			x = x.left
		} else /* greater */ {
			x = x.right
		}
	}
	z.parent = y
	if y == nil {
		tree.root = z
	} else if tree.compare(key, y.key) <= 0 {
		y.left = z
	} else {
		y.right = z
	}
	tree.count++
	tree.lastAdded = z
	return nil
}

func (tree *bsTree[K, V]) lastInserted() *bsNode[K, V] {
	return tree.lastAdded
}

func (tree *bsTree[K, V]) search(key K) *bsNode[K, V] {
	if !infra.IsTotallyOrdered[K](key) {
		return nil
	}
	aux := tree.root
	for aux != nil {
		res := tree.compare(key, aux.key)
		if /* equal */ res == 0 {
			return aux
		} else /* less */ if res < 0 {
			aux = aux.left
		} else /* greater */ {
			aux = aux.right
		}
	}
	return nil
}

func (tree *bsTree[K, V]) swapPredecessor(z *bsNode[K, V]) *bsNode[K, V] {
	if z == nil || z.left == nil || z.right == nil {
		// impossible run to here
		panic( /* debug assertion */ "[bstree] swap predecessor on node without two children")
	}
	y := z.left.maximum()
	z.key, y.key = y.key, z.key
	z.val, y.val = y.val, z.val
	return y
}

func (tree *bsTree[K, V]) splice(y *bsNode[K, V]) (*bsNode[K, V], *bsNode[K, V], RBDirection) {
	if y == nil || (y.left != nil && y.right != nil) {
		// impossible run to here
		panic( /* debug assertion */ "[bstree] splice node is nil or has two children")
	}

	x := y.left
	if x == nil {
		x = y.right
	}
	p, dir := y.parent, y.direction()
	if x != nil {
		x.parent = p
	}
	switch dir {
	case Root:
		tree.root = x
	case Left:
		p.left = x
	case Right:
		p.right = x
	default:
	}
	if tree.lastAdded == y {
		tree.lastAdded = nil
	}
	y.detach()
	tree.count--
	return x, p, dir
}

/*
		 |                         |
		 X                         S
		/ \     rotateLeft(X)     / \
	   L   S    ============>    X   Sd
		  / \                   / \
		Sc   Sd                L   Sc
*/
func (tree *bsTree[K, V]) rotateLeft(x *bsNode[K, V]) {
	if x == nil || x.right == nil {
		// impossible run to here
		panic( /* debug assertion */ "[bstree] left rotate node x is nil or x.right is nil")
	}

	p, y := x.parent, x.right
	dir := x.direction()
	x.right, y.left = y.left, x

	x.fixLink()
	y.fixLink()

	switch dir {
	case Root:
		tree.root = y
	case Left:
		p.left = y
	case Right:
		p.right = y
	default:
	}
	y.parent = p
	if tree.onRotate != nil {
		tree.onRotate(Left)
	}
}

/*
			 |                         |
			 X                         S
			/ \     rotateRight(S)    / \
	       L   S    <============    X   R
			  / \                   / \
			Sc   Sd               Sc   Sd
*/
func (tree *bsTree[K, V]) rotateRight(x *bsNode[K, V]) {
	if x == nil || x.left == nil {
		// impossible run to here
		panic( /* debug assertion */ "[bstree] right rotate node x is nil or x.left is nil")
	}

	p, y := x.parent, x.left
	dir := x.direction()
	x.left, y.right = y.right, x

	x.fixLink()
	y.fixLink()

	switch dir {
	case Root:
		tree.root = y
	case Left:
		p.left = y
	case Right:
		p.right = y
	default:
	}
	y.parent = p
	if tree.onRotate != nil {
		tree.onRotate(Right)
	}
}

func (tree *bsTree[K, V]) release() {
	release[K, V](tree.root)
	tree.root, tree.lastAdded = nil, nil
	tree.count = 0
}

// Public unbalanced BST surface.

func (tree *bsTree[K, V]) Len() int64 {
	return tree.count
}

func (tree *bsTree[K, V]) Height() int {
	return subtreeHeight[K, V](tree.root)
}

func (tree *bsTree[K, V]) Root() (Node[K, V], error) {
	if tree.root == nil {
		return nil, ErrEmptyTree
	}
	return tree.root, nil
}

func (tree *bsTree[K, V]) Min() (Node[K, V], error) {
	if tree.root == nil {
		return nil, ErrEmptyTree
	}
	return tree.root.minimum(), nil
}

func (tree *bsTree[K, V]) Max() (Node[K, V], error) {
	if tree.root == nil {
		return nil, ErrEmptyTree
	}
	return tree.root.maximum(), nil
}

func (tree *bsTree[K, V]) Compare(k1, k2 K) int64 {
	return tree.compare(k1, k2)
}

func (tree *bsTree[K, V]) Insert(key K, val V) error {
	return tree.insert(key, val)
}

func (tree *bsTree[K, V]) Remove(key K) (Node[K, V], bool) {
	z := tree.search(key)
	if z == nil {
		return nil, false
	}
	y := z
	if z.left != nil && z.right != nil {
		y = tree.swapPredecessor(z)
	}
	tree.splice(y)
	return y, true
}

func (tree *bsTree[K, V]) Find(key K) (V, bool) {
	if node := tree.search(key); node != nil {
		return node.val, true
	}
	var v V
	return v, false
}

func (tree *bsTree[K, V]) Search(key K) Node[K, V] {
	if node := tree.search(key); node != nil {
		return node
	}
	return nil
}

func (tree *bsTree[K, V]) Contains(key K) bool {
	return tree.search(key) != nil
}

func (tree *bsTree[K, V]) RotateLeft(key K) error {
	x := tree.search(key)
	if x == nil {
		return fmt.Errorf("%w: %v", ErrNotFound, key)
	}
	if x.right == nil {
		return fmt.Errorf("%w: %v has no right child", ErrNoPivot, key)
	}
	tree.rotateLeft(x)
	return nil
}

func (tree *bsTree[K, V]) RotateRight(key K) error {
	x := tree.search(key)
	if x == nil {
		return fmt.Errorf("%w: %v", ErrNotFound, key)
	}
	if x.left == nil {
		return fmt.Errorf("%w: %v has no left child", ErrNoPivot, key)
	}
	tree.rotateRight(x)
	return nil
}

func (tree *bsTree[K, V]) Traverse(order TraverseOrder) iter.Seq[TraversalItem[K, V]] {
	return traverse[K, V](tree.rootNode, order)
}

func (tree *bsTree[K, V]) Foreach(action func(idx int64, color RBColor, key K, val V) bool) {
	foreach[K, V](tree.root, action)
}

func (tree *bsTree[K, V]) Release() {
	tree.release()
}

type BSTreeOpt[K infra.OrderedKey, V any] func(tree *bsTree[K, V]) error

func WithBSTreeDesc[K infra.OrderedKey, V any]() BSTreeOpt[K, V] {
	return func(tree *bsTree[K, V]) error {
		tree.isDesc = true
		return nil
	}
}

func WithBSTreeElementValidator[K infra.OrderedKey, V any](fn func(key K, val V) error) BSTreeOpt[K, V] {
	return func(tree *bsTree[K, V]) error {
		if fn == nil {
			return fmt.Errorf("[bstree] nil element validator")
		}
		tree.validator = fn
		return nil
	}
}

func NewBSTree[K infra.OrderedKey, V any](opts ...BSTreeOpt[K, V]) (BinarySearchTree[K, V], error) {
	tree := &bsTree[K, V]{}
	for _, o := range opts {
		if err := o(tree); err != nil {
			return nil, err
		}
	}
	return tree, nil
}
