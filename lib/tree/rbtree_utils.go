package tree

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"github.com/benz9527/xtree/lib/infra"
	"github.com/benz9527/xtree/lib/queue"
)

var (
	ErrRedViolation   = errors.New("rbtree red violation")
	ErrBlackViolation = errors.New("rbtree black violation")
	ErrRootViolation  = errors.New("rbtree root violation")
	ErrOrderViolation = errors.New("rbtree order violation")
	ErrLinkViolation  = errors.New("rbtree parent link violation")
)

func nodeIsBlack[K infra.OrderedKey, V any](node Node[K, V]) bool {
	return node == nil || node.Color() == Black
}

func nodeIsRed[K infra.OrderedKey, V any](node Node[K, V]) bool {
	return node != nil && node.Color() == Red
}

func blackDepthTo[K infra.OrderedKey, V any](target, to Node[K, V]) int {
	depth := 0
	for aux := target; aux != nil && aux != to; aux = aux.Parent() {
		if nodeIsBlack[K, V](aux) {
			depth++
		}
	}
	return depth
}

// rbtree rule validation utilities.

// References:
// https://github1s.com/minghu6/rust-minghu6/blob/master/coll_st/src/bst/rb.rs

// Inorder traversal to validate the rbtree properties.
func RedViolationValidate[K infra.OrderedKey, V any](tree Tree[K, V]) error {
	aux, err := tree.Root()
	if err != nil {
		return nil
	}

	stack := make([]Node[K, V], 0, tree.Len()>>1)
	defer func() {
		clear(stack)
	}()

	for ; aux != nil; aux = aux.Left() {
		stack = append(stack, aux)
	}

	for size := len(stack); size > 0; size = len(stack) {
		if aux = stack[size-1]; nodeIsRed[K, V](aux) {
			if nodeIsRed[K, V](aux.Left()) || nodeIsRed[K, V](aux.Right()) {
				return fmt.Errorf("%w: red node %v has a red child", ErrRedViolation, aux.Key())
			}
		}

		stack = stack[:size-1]
		for aux = aux.Right(); aux != nil; aux = aux.Left() {
			stack = append(stack, aux)
		}
	}
	return nil
}

// BFS traversal to load all nodes with at least one absent child.
func bfsLeaves[K infra.OrderedKey, V any](tree Tree[K, V]) []Node[K, V] {
	root, err := tree.Root()
	if err != nil {
		return nil
	}

	leaves := make([]Node[K, V], 0, tree.Len()>>1+1)
	q := queue.NewLinkedQueue[Node[K, V]](root)
	for !q.IsEmpty() {
		aux, _ := q.Dequeue()
		l, r := aux.Left(), aux.Right()
		if /* absent leaves, keep one */ l == nil || r == nil {
			leaves = append(leaves, aux)
		}
		if l != nil {
			q.Enqueue(l)
		}
		if r != nil {
			q.Enqueue(r)
		}
	}
	return leaves
}

/*
<X> is a RED node.
[X] is a BLACK node (or absent).

	        [13]
			/  \
		 <8>    [15]
		 / \    /  \
	  [6] [11] [14] [17]
	  /              /
	<1>            [16]

2-3-4 tree like:

	       <8> --- [13] --- <15>
		  /  \             /    \
		 /    \           /      \
	  <1>-[6][11]      [14] <16>-[17]

Each leaf node to root node black depth are equal.
*/
func BlackViolationValidate[K infra.OrderedKey, V any](tree Tree[K, V]) error {
	leaves := bfsLeaves[K, V](tree)
	if leaves == nil {
		return nil
	}

	blackDepth := blackDepthTo[K, V](leaves[0], nil)
	for i := 1; i < len(leaves); i++ {
		if depth := blackDepthTo[K, V](leaves[i], nil); depth != blackDepth {
			return fmt.Errorf("%w: black depth of %v is %d, expected %d",
				ErrBlackViolation, leaves[i].Key(), depth, blackDepth)
		}
	}
	return nil
}

func RootViolationValidate[K infra.OrderedKey, V any](tree Tree[K, V]) error {
	root, err := tree.Root()
	if err != nil {
		if tree.Len() != 0 {
			return fmt.Errorf("%w: empty root with len %d", ErrRootViolation, tree.Len())
		}
		return nil
	}
	if root.Parent() != nil {
		return fmt.Errorf("%w: root %v has a parent", ErrRootViolation, root.Key())
	}
	if nodeIsRed[K, V](root) {
		return fmt.Errorf("%w: root %v is red", ErrRootViolation, root.Key())
	}
	return nil
}

// OrderViolationValidate checks the in-order keys are non-decreasing
// under the tree order and the count matches the tree len.
func OrderViolationValidate[K infra.OrderedKey, V any](tree SortedTree[K, V]) error {
	var (
		prev    K
		count   int64
		lastErr error
	)
	tree.Foreach(func(idx int64, color RBColor, key K, val V) bool {
		if idx > 0 && tree.Compare(prev, key) > 0 {
			lastErr = fmt.Errorf("%w: %v placed before %v", ErrOrderViolation, prev, key)
			return false
		}
		prev = key
		count++
		return true
	})
	if lastErr != nil {
		return lastErr
	}
	if count != tree.Len() {
		return fmt.Errorf("%w: in-order count %d, len %d", ErrOrderViolation, count, tree.Len())
	}
	return nil
}

func LinkViolationValidate[K infra.OrderedKey, V any](tree Tree[K, V]) error {
	root, err := tree.Root()
	if err != nil {
		return nil
	}
	q := queue.NewLinkedQueue[Node[K, V]](root)
	for !q.IsEmpty() {
		aux, _ := q.Dequeue()
		for _, child := range []Node[K, V]{aux.Left(), aux.Right()} {
			if child == nil {
				continue
			}
			if child.Parent() != aux {
				return fmt.Errorf("%w: %v is not linked back to %v", ErrLinkViolation, child.Key(), aux.Key())
			}
			q.Enqueue(child)
		}
	}
	return nil
}

// Validate checks all the rbtree properties and combines the violations.
func Validate[K infra.OrderedKey, V any](tree RBTree[K, V]) error {
	return multierr.Combine(
		RootViolationValidate[K, V](tree),
		RedViolationValidate[K, V](tree),
		BlackViolationValidate[K, V](tree),
		OrderViolationValidate[K, V](tree),
		LinkViolationValidate[K, V](tree),
	)
}
