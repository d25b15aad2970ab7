package tree

import (
	"iter"

	"github.com/benz9527/xtree/lib/infra"
	"github.com/benz9527/xtree/lib/queue"
)

func newTraversalItem[K infra.OrderedKey, V any](node *bsNode[K, V], depth int) TraversalItem[K, V] {
	return TraversalItem[K, V]{
		Key:   node.key,
		Val:   node.val,
		Color: node.color,
		Depth: depth,
	}
}

// traverse reads the root on every restart of the returned sequence.
func traverse[K infra.OrderedKey, V any](root func() *bsNode[K, V], order TraverseOrder) iter.Seq[TraversalItem[K, V]] {
	return func(yield func(TraversalItem[K, V]) bool) {
		r := root()
		if r == nil {
			return
		}
		switch order {
		case PreOrder:
			preOrder[K, V](r, yield)
		case InOrder:
			inOrder[K, V](r, yield)
		case PostOrder:
			postOrder[K, V](r, yield)
		case BreadthFirst:
			breadthFirst[K, V](r, yield)
		default:
		}
	}
}

func preOrder[K infra.OrderedKey, V any](root *bsNode[K, V], yield func(TraversalItem[K, V]) bool) {
	stack := make([]depthFrame[K, V], 0, 32)
	stack = append(stack, depthFrame[K, V]{node: root})
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !yield(newTraversalItem[K, V](f.node, f.depth)) {
			return
		}
		if f.node.right != nil {
			stack = append(stack, depthFrame[K, V]{node: f.node.right, depth: f.depth + 1})
		}
		if f.node.left != nil {
			stack = append(stack, depthFrame[K, V]{node: f.node.left, depth: f.depth + 1})
		}
	}
}

func inOrder[K infra.OrderedKey, V any](root *bsNode[K, V], yield func(TraversalItem[K, V]) bool) {
	stack := make([]depthFrame[K, V], 0, 32)
	aux, depth := root, 0
	for aux != nil || len(stack) > 0 {
		for ; aux != nil; aux, depth = aux.left, depth+1 {
			stack = append(stack, depthFrame[K, V]{node: aux, depth: depth})
		}
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !yield(newTraversalItem[K, V](f.node, f.depth)) {
			return
		}
		aux, depth = f.node.right, f.depth+1
	}
}

// postFrame is expanded once to push its children, then visited.
type postFrame[K infra.OrderedKey, V any] struct {
	depthFrame[K, V]
	expanded bool
}

func postOrder[K infra.OrderedKey, V any](root *bsNode[K, V], yield func(TraversalItem[K, V]) bool) {
	stack := make([]postFrame[K, V], 0, 32)
	stack = append(stack, postFrame[K, V]{depthFrame: depthFrame[K, V]{node: root}})
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.expanded {
			if !yield(newTraversalItem[K, V](f.node, f.depth)) {
				return
			}
			continue
		}
		f.expanded = true
		stack = append(stack, f)
		if f.node.right != nil {
			stack = append(stack, postFrame[K, V]{depthFrame: depthFrame[K, V]{node: f.node.right, depth: f.depth + 1}})
		}
		if f.node.left != nil {
			stack = append(stack, postFrame[K, V]{depthFrame: depthFrame[K, V]{node: f.node.left, depth: f.depth + 1}})
		}
	}
}

func breadthFirst[K infra.OrderedKey, V any](root *bsNode[K, V], yield func(TraversalItem[K, V]) bool) {
	q := queue.NewLinkedQueue[depthFrame[K, V]](depthFrame[K, V]{node: root})
	for !q.IsEmpty() {
		f, err := q.Dequeue()
		if err != nil {
			return
		}
		if !yield(newTraversalItem[K, V](f.node, f.depth)) {
			return
		}
		if f.node.left != nil {
			q.Enqueue(depthFrame[K, V]{node: f.node.left, depth: f.depth + 1})
		}
		if f.node.right != nil {
			q.Enqueue(depthFrame[K, V]{node: f.node.right, depth: f.depth + 1})
		}
	}
}

// foreach is the in-order walk with a sequence index.
func foreach[K infra.OrderedKey, V any](root *bsNode[K, V], action func(idx int64, color RBColor, key K, val V) bool) {
	if root == nil || action == nil {
		return
	}
	idx := int64(0)
	inOrder[K, V](root, func(item TraversalItem[K, V]) bool {
		res := action(idx, item.Color, item.Key, item.Val)
		idx++
		return res
	})
}

// release unlinks every node so that detached nodes held by callers
// do not keep the rest of the tree reachable.
func release[K infra.OrderedKey, V any](root *bsNode[K, V]) {
	if root == nil {
		return
	}
	stack := make([]*bsNode[K, V], 0, 32)
	stack = append(stack, root)
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if node.left != nil {
			stack = append(stack, node.left)
		}
		if node.right != nil {
			stack = append(stack, node.right)
		}
		node.detach()
	}
}
