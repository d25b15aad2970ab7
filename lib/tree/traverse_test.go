package tree

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/benz9527/xtree/lib/infra"
)

func collectKeys[K infra.OrderedKey, V any](tree Tree[K, V], order TraverseOrder) ([]K, []int) {
	keys, depths := make([]K, 0, tree.Len()), make([]int, 0, tree.Len())
	for item := range tree.Traverse(order) {
		keys = append(keys, item.Key)
		depths = append(depths, item.Depth)
	}
	return keys, depths
}

func TestTraverse_Orders(t *testing.T) {
	/*
		        [40]
		        /  \
		     [20]  [50]
		     /  \
		   <10> <30>
	*/
	tree, err := NewRBTreeFrom[int, int]([]int{50, 40, 30, 20, 10}, []int{5, 4, 3, 2, 1})
	require.NoError(t, err)

	testcases := []struct {
		order  TraverseOrder
		keys   []int
		depths []int
	}{
		{
			order:  PreOrder,
			keys:   []int{40, 20, 10, 30, 50},
			depths: []int{0, 1, 2, 2, 1},
		},
		{
			order:  InOrder,
			keys:   []int{10, 20, 30, 40, 50},
			depths: []int{2, 1, 2, 0, 1},
		},
		{
			order:  PostOrder,
			keys:   []int{10, 30, 20, 50, 40},
			depths: []int{2, 2, 1, 1, 0},
		},
		{
			order:  BreadthFirst,
			keys:   []int{40, 20, 50, 10, 30},
			depths: []int{0, 1, 1, 2, 2},
		},
	}
	for _, tc := range testcases {
		t.Run(tc.order.String(), func(tt *testing.T) {
			keys, depths := collectKeys[int, int](tree, tc.order)
			require.Equal(tt, tc.keys, keys)
			require.Equal(tt, tc.depths, depths)
		})
	}
}

func TestTraverse_ColorsAndValues(t *testing.T) {
	tree, err := NewRBTreeFrom[int, string]([]int{10, 20, 30}, []string{"a", "b", "c"})
	require.NoError(t, err)
	items := slices.Collect(tree.Traverse(BreadthFirst))
	require.Equal(t, []TraversalItem[int, string]{
		{Key: 20, Val: "b", Color: Black, Depth: 0},
		{Key: 10, Val: "a", Color: Red, Depth: 1},
		{Key: 30, Val: "c", Color: Red, Depth: 1},
	}, items)
}

func TestTraverse_EarlyStopAndRestart(t *testing.T) {
	tree, err := NewRBTree[int, int]()
	require.NoError(t, err)
	for i := 0; i < 100; i++ {
		require.NoError(t, tree.Insert(i, i))
	}
	for _, order := range []TraverseOrder{PreOrder, InOrder, PostOrder, BreadthFirst} {
		seq := tree.Traverse(order)
		count := 0
		for range seq {
			count++
			if count == 10 {
				break
			}
		}
		require.Equal(t, 10, count)

		// The same sequence walks from the root again.
		all := 0
		for range seq {
			all++
		}
		require.Equal(t, 100, all)
	}

	idx := int64(-1)
	tree.Foreach(func(i int64, color RBColor, key int, val int) bool {
		idx = i
		return i < 4
	})
	require.Equal(t, int64(4), idx)
}

func TestTraverse_Empty(t *testing.T) {
	tree, err := NewRBTree[int, int]()
	require.NoError(t, err)
	for _, order := range []TraverseOrder{PreOrder, InOrder, PostOrder, BreadthFirst, TraverseOrder(100)} {
		require.Empty(t, slices.Collect(tree.Traverse(order)))
	}
	called := false
	tree.Foreach(func(idx int64, color RBColor, key int, val int) bool {
		called = true
		return true
	})
	require.False(t, called)
}

func TestTraverse_RootReadOnEachWalk(t *testing.T) {
	tree, err := NewRBTree[int, int]()
	require.NoError(t, err)
	seq := tree.Traverse(InOrder)
	require.Empty(t, slices.Collect(seq))
	require.NoError(t, tree.Insert(1, 1))
	require.Len(t, slices.Collect(seq), 1)
}
