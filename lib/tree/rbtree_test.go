package tree

import (
	"errors"
	"math"
	randv2 "math/rand/v2"
	"slices"
	"sort"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"github.com/benz9527/xtree/xlog"
)

type checkData struct {
	color RBColor
	key   uint64
}

func requireForeach(t *testing.T, tree RBTree[uint64, uint64], expected []checkData) {
	t.Helper()
	count := 0
	tree.Foreach(func(idx int64, color RBColor, key uint64, val uint64) bool {
		require.Equal(t, expected[idx].color, color)
		require.Equal(t, expected[idx].key, key)
		count++
		return true
	})
	require.Equal(t, len(expected), count)
	require.NoError(t, Validate[uint64, uint64](tree))
}

func newUint64RBTree(t *testing.T, opts ...RBTreeOpt[uint64, uint64]) RBTree[uint64, uint64] {
	t.Helper()
	tree, err := NewRBTree[uint64, uint64](opts...)
	require.NoError(t, err)
	return tree
}

func TestNilNode(t *testing.T) {
	var nilNode Node[uint64, uint64] = nil
	require.True(t, nilNode == nil)

	var nilNode2 *bsNode[uint64, uint64] = nil
	nilNode = nilNode2
	require.True(t, nilNode != nil)
	require.Nil(t, nilNode)

	// Absent nodes are black.
	require.True(t, nilNode2.isBlack())
	require.False(t, nilNode2.isRed())
}

func TestRbtreeLeftAndRightRotate_Pred(t *testing.T) {
	tree := newUint64RBTree(t)

	require.NoError(t, tree.Insert(52, 1))
	requireForeach(t, tree, []checkData{
		{Black, 52},
	})

	require.NoError(t, tree.Insert(47, 1))
	requireForeach(t, tree, []checkData{
		{Red, 47}, {Black, 52},
	})

	require.NoError(t, tree.Insert(3, 1))
	requireForeach(t, tree, []checkData{
		{Red, 3}, {Black, 47}, {Red, 52},
	})

	require.NoError(t, tree.Insert(35, 1))
	requireForeach(t, tree, []checkData{
		{Black, 3},
		{Red, 35},
		{Black, 47},
		{Black, 52},
	})

	require.NoError(t, tree.Insert(24, 1))
	requireForeach(t, tree, []checkData{
		{Red, 3},
		{Black, 24},
		{Red, 35},
		{Black, 47},
		{Black, 52},
	})

	// remove

	x, ok := tree.Remove(24)
	require.True(t, ok)
	require.Equal(t, uint64(24), x.Key())
	requireForeach(t, tree, []checkData{
		{Black, 3},
		{Red, 35},
		{Black, 47},
		{Black, 52},
	})

	x, ok = tree.Remove(47)
	require.True(t, ok)
	require.Equal(t, uint64(47), x.Key())
	requireForeach(t, tree, []checkData{
		{Black, 3},
		{Black, 35},
		{Black, 52},
	})

	x, ok = tree.Remove(52)
	require.True(t, ok)
	require.Equal(t, uint64(52), x.Key())
	requireForeach(t, tree, []checkData{
		{Red, 3}, {Black, 35},
	})

	x, ok = tree.Remove(3)
	require.True(t, ok)
	require.Equal(t, uint64(3), x.Key())
	requireForeach(t, tree, []checkData{
		{Black, 35},
	})

	x, ok = tree.Remove(35)
	require.True(t, ok)
	require.Equal(t, uint64(35), x.Key())
	require.Equal(t, int64(0), tree.Len())
	require.Equal(t, -1, tree.Height())
}

func TestRbtree_RemoveMin(t *testing.T) {
	tree := newUint64RBTree(t)

	_, err := tree.RemoveMin()
	require.ErrorIs(t, err, ErrEmptyTree)

	for _, key := range []uint64{52, 47, 3, 35, 24} {
		require.NoError(t, tree.Insert(key, 1))
	}
	requireForeach(t, tree, []checkData{
		{Red, 3},
		{Black, 24},
		{Red, 35},
		{Black, 47},
		{Black, 52},
	})

	// remove min

	x, err := tree.RemoveMin()
	require.NoError(t, err)
	require.Equal(t, uint64(3), x.Key())
	requireForeach(t, tree, []checkData{
		{Black, 24},
		{Red, 35},
		{Black, 47},
		{Black, 52},
	})

	x, err = tree.RemoveMin()
	require.NoError(t, err)
	require.Equal(t, uint64(24), x.Key())
	requireForeach(t, tree, []checkData{
		{Black, 35},
		{Black, 47},
		{Black, 52},
	})

	x, err = tree.RemoveMin()
	require.NoError(t, err)
	require.Equal(t, uint64(35), x.Key())
	requireForeach(t, tree, []checkData{
		{Black, 47}, {Red, 52},
	})

	x, err = tree.RemoveMin()
	require.NoError(t, err)
	require.Equal(t, uint64(47), x.Key())
	requireForeach(t, tree, []checkData{
		{Black, 52},
	})

	x, err = tree.RemoveMin()
	require.NoError(t, err)
	require.Equal(t, uint64(52), x.Key())
	require.Equal(t, int64(0), tree.Len())

	_, err = tree.RemoveMin()
	require.ErrorIs(t, err, ErrEmptyTree)
}

func TestRBTree_Scenarios(t *testing.T) {
	t.Run("three ascending keys rotate into a black root", func(tt *testing.T) {
		tree := newUint64RBTree(tt)
		for _, key := range []uint64{10, 20, 30} {
			require.NoError(tt, tree.Insert(key, key))
		}
		root, err := tree.Root()
		require.NoError(tt, err)
		require.Equal(tt, uint64(20), root.Key())
		require.Equal(tt, Black, root.Color())
		require.Equal(tt, uint64(10), root.Left().Key())
		require.Equal(tt, Red, root.Left().Color())
		require.Equal(tt, uint64(30), root.Right().Key())
		require.Equal(tt, Red, root.Right().Color())
		require.Equal(tt, 1, tree.Height())
		require.Equal(tt, 1, root.Left().Depth())
		require.Equal(tt, 0, root.Left().Height())
		require.Nil(tt, root.Parent())
	})
	t.Run("five descending keys keep height two", func(tt *testing.T) {
		tree := newUint64RBTree(tt)
		for _, key := range []uint64{50, 40, 30, 20, 10} {
			require.NoError(tt, tree.Insert(key, key))
			require.NoError(tt, Validate[uint64, uint64](tree))
		}
		require.Equal(tt, 2, tree.Height())
		requireForeach(tt, tree, []checkData{
			{Red, 10}, {Black, 20}, {Red, 30}, {Black, 40}, {Black, 50},
		})
	})
	t.Run("remove an inner key", func(tt *testing.T) {
		tree := newUint64RBTree(tt)
		for key := uint64(10); key <= 70; key += 10 {
			require.NoError(tt, tree.Insert(key, key))
		}
		_, ok := tree.Remove(20)
		require.True(tt, ok)
		keys := make([]uint64, 0, 6)
		for item := range tree.Traverse(InOrder) {
			keys = append(keys, item.Key)
		}
		require.Equal(tt, []uint64{10, 30, 40, 50, 60, 70}, keys)
		require.NoError(tt, Validate[uint64, uint64](tree))
	})
	t.Run("remove the root of a single node tree", func(tt *testing.T) {
		tree := newUint64RBTree(tt)
		require.NoError(tt, tree.Insert(1, 1))
		x, ok := tree.Remove(1)
		require.True(tt, ok)
		require.Equal(tt, uint64(1), x.Key())
		require.Nil(tt, x.Parent())
		require.Equal(tt, int64(0), tree.Len())
		require.Equal(tt, -1, tree.Height())
		_, err := tree.Root()
		require.ErrorIs(tt, err, ErrEmptyTree)
	})
	t.Run("equal black depth on every leaf path", func(tt *testing.T) {
		tree := newUint64RBTree(tt)
		for _, key := range lo.Shuffle(lo.Range(30)) {
			require.NoError(tt, tree.Insert(uint64(key), 0))
		}
		root, err := tree.Root()
		require.NoError(tt, err)

		// Enumerate every root to absent child path.
		type frame struct {
			node   Node[uint64, uint64]
			blacks int
		}
		depths := make([]int, 0, 31)
		stack := []frame{{node: root, blacks: 1}}
		for len(stack) > 0 {
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, child := range []Node[uint64, uint64]{f.node.Left(), f.node.Right()} {
				if child == nil {
					depths = append(depths, f.blacks)
					continue
				}
				blacks := f.blacks
				if child.Color() == Black {
					blacks++
				}
				stack = append(stack, frame{node: child, blacks: blacks})
			}
		}
		require.Len(tt, depths, 31)
		for _, d := range depths {
			require.Equal(tt, depths[0], d)
		}
	})
}

func TestRBTree_RemoveAbsentKey(t *testing.T) {
	tree := newUint64RBTree(t)
	for _, key := range []uint64{8, 3, 9, 1} {
		require.NoError(t, tree.Insert(key, key))
	}
	before := slices.Collect(tree.Traverse(PreOrder))
	x, ok := tree.Remove(100)
	require.False(t, ok)
	require.Nil(t, x)
	require.Equal(t, before, slices.Collect(tree.Traverse(PreOrder)))
	require.Equal(t, int64(4), tree.Len())

	empty := newUint64RBTree(t)
	_, ok = empty.Remove(1)
	require.False(t, ok)
}

func TestRBTree_DuplicateKeys(t *testing.T) {
	tree := newUint64RBTree(t)
	for i := uint64(0); i < 5; i++ {
		require.NoError(t, tree.Insert(7, i))
		require.NoError(t, tree.Insert(i, i))
		require.NoError(t, Validate[uint64, uint64](tree))
	}
	require.Equal(t, int64(10), tree.Len())
	sevens := 0
	tree.Foreach(func(idx int64, color RBColor, key uint64, val uint64) bool {
		if key == 7 {
			sevens++
		}
		return true
	})
	require.Equal(t, 5, sevens)

	for i := 0; i < 5; i++ {
		x, ok := tree.Remove(7)
		require.True(t, ok)
		require.Equal(t, uint64(7), x.Key())
		require.NoError(t, Validate[uint64, uint64](tree))
	}
	require.False(t, tree.Contains(7))
	_, ok := tree.Remove(7)
	require.False(t, ok)
	require.Equal(t, int64(5), tree.Len())
}

func TestRBTree_InvalidElement(t *testing.T) {
	tree, err := NewRBTree[float64, string]()
	require.NoError(t, err)
	require.NoError(t, tree.Insert(1.5, "a"))

	err = tree.Insert(math.NaN(), "nan")
	require.ErrorIs(t, err, ErrInvalidElement)
	require.Equal(t, int64(1), tree.Len())
	require.False(t, tree.Contains(math.NaN()))

	errEmptyVal := errors.New("empty value")
	tree, err = NewRBTree[float64, string](
		WithRBTreeElementValidator[float64, string](func(key float64, val string) error {
			if val == "" {
				return errEmptyVal
			}
			return nil
		}),
	)
	require.NoError(t, err)
	err = tree.Insert(2, "")
	require.ErrorIs(t, err, ErrInvalidElement)
	require.ErrorIs(t, err, errEmptyVal)
	require.Equal(t, int64(0), tree.Len())
	require.NoError(t, tree.Insert(2, "b"))

	_, err = NewRBTree[float64, string](WithRBTreeElementValidator[float64, string](nil))
	require.Error(t, err)
}

func TestRBTree_FindAndBounds(t *testing.T) {
	tree, err := NewRBTreeFrom[int, string](
		[]int{5, 1, 9, 3, 7},
		[]string{"five", "one", "nine", "three", "seven"},
	)
	require.NoError(t, err)

	v, ok := tree.Find(9)
	require.True(t, ok)
	require.Equal(t, "nine", v)
	_, ok = tree.Find(4)
	require.False(t, ok)
	require.Nil(t, tree.Search(4))
	require.Equal(t, "three", tree.Search(3).Val())

	minNode, err := tree.Min()
	require.NoError(t, err)
	require.Equal(t, 1, minNode.Key())
	maxNode, err := tree.Max()
	require.NoError(t, err)
	require.Equal(t, 9, maxNode.Key())

	_, err = NewRBTreeFrom[int, string]([]int{1}, nil)
	require.Error(t, err)

	empty, err := NewRBTree[int, string]()
	require.NoError(t, err)
	_, err = empty.Min()
	require.ErrorIs(t, err, ErrEmptyTree)
	_, err = empty.Max()
	require.ErrorIs(t, err, ErrEmptyTree)
}

func TestRBTree_Desc(t *testing.T) {
	tree, err := NewRBTreeFrom[int, int](
		[]int{4, 8, 1, 6, 2},
		[]int{4, 8, 1, 6, 2},
		WithRBTreeDesc[int, int](),
	)
	require.NoError(t, err)
	keys := make([]int, 0, 5)
	tree.Foreach(func(idx int64, color RBColor, key int, val int) bool {
		keys = append(keys, key)
		return true
	})
	require.Equal(t, []int{8, 6, 4, 2, 1}, keys)
	minNode, err := tree.Min()
	require.NoError(t, err)
	require.Equal(t, 8, minNode.Key())
	require.Positive(t, tree.Compare(1, 2))
	require.NoError(t, Validate[int, int](tree))
}

func TestRBTree_WithLogger(t *testing.T) {
	logger := xlog.NewXLogger(
		xlog.WithXLoggerLevel(xlog.LogLevelError),
		xlog.WithXLoggerEncoder(xlog.PlainText),
	)
	tree, err := NewRBTree[int, int](WithRBTreeLogger[int, int](logger))
	require.NoError(t, err)
	for _, key := range lo.Shuffle(lo.Range(64)) {
		require.NoError(t, tree.Insert(key, key))
	}
	for key := 0; key < 64; key += 2 {
		_, ok := tree.Remove(key)
		require.True(t, ok)
	}
	require.NoError(t, Validate[int, int](tree))
}

func TestRBTree_HeightBound(t *testing.T) {
	tree := newUint64RBTree(t)
	for i, key := range lo.Shuffle(lo.Range(4096)) {
		require.NoError(t, tree.Insert(uint64(key), 0))
		n := float64(i + 1)
		require.LessOrEqual(t, float64(tree.Height()), 2*math.Log2(n+1))
	}
}

func rbtreeRandomInsertAndRemoveSequentialNumberRunCore(t *testing.T, total uint64) {
	insertTotal := uint64(float64(total) * 0.8)
	removeTotal := uint64(float64(total) * 0.2)

	tree := newUint64RBTree(t)

	for i := uint64(0); i < insertTotal; i++ {
		require.NoError(t, tree.Insert(i, 1))
		require.NoError(t, RedViolationValidate[uint64, uint64](tree))
		require.NoError(t, BlackViolationValidate[uint64, uint64](tree))
	}
	tree.Foreach(func(idx int64, color RBColor, key uint64, val uint64) bool {
		require.Equal(t, uint64(idx), key)
		return true
	})

	for i := insertTotal; i < removeTotal+insertTotal; i++ {
		require.NoError(t, tree.Insert(i, 1))
		require.NoError(t, RedViolationValidate[uint64, uint64](tree))
		require.NoError(t, BlackViolationValidate[uint64, uint64](tree))
	}
	tree.Foreach(func(idx int64, color RBColor, key uint64, val uint64) bool {
		require.Equal(t, uint64(idx), key)
		return true
	})

	for i := insertTotal; i < removeTotal+insertTotal; i++ {
		if i == 92 {
			x := tree.Search(i)
			require.Equal(t, uint64(92), x.Key())
		}
		x, ok := tree.Remove(i)
		require.True(t, ok)
		require.Equal(t, i, x.Key())
		require.NoError(t, RedViolationValidate[uint64, uint64](tree))
		require.NoError(t, BlackViolationValidate[uint64, uint64](tree))
	}
	tree.Foreach(func(idx int64, color RBColor, key uint64, val uint64) bool {
		require.Equal(t, uint64(idx), key)
		return true
	})
	require.Equal(t, int64(insertTotal), tree.Len())
}

func TestRbtreeRandomInsertAndRemove_SequentialNumber(t *testing.T) {
	testcases := []struct {
		name  string
		total uint64
	}{
		{
			name:  "sequential 100",
			total: 100,
		},
		{
			name:  "sequential 1000",
			total: 1000,
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			rbtreeRandomInsertAndRemoveSequentialNumberRunCore(tt, tc.total)
		})
	}
}

func TestRBTreeRandomInsertAndRemove_SequentialNumber_Release(t *testing.T) {
	insertTotal := uint64(100_000)

	tree := newUint64RBTree(t)

	rand := uint64(randv2.Uint32() % 1_000)
	for i := uint64(0); i < insertTotal; i++ {
		require.NoError(t, tree.Insert(i, 1))
		if i%1000 == rand {
			require.NoError(t, RedViolationValidate[uint64, uint64](tree))
			require.NoError(t, BlackViolationValidate[uint64, uint64](tree))
		}
	}
	tree.Foreach(func(idx int64, color RBColor, key uint64, val uint64) bool {
		require.Equal(t, uint64(idx), key)
		return true
	})
	root, err := tree.Root()
	require.NoError(t, err)
	tree.Release()
	require.Equal(t, int64(0), tree.Len())
	_, err = tree.Root()
	require.ErrorIs(t, err, ErrEmptyTree)
	require.Nil(t, root.Left())
	require.Nil(t, root.Right())
}

func TestRbtreeRandomInsertAndRemove_ReverseSequentialNumber(t *testing.T) {
	total := int64(10000)
	insertTotal := int64(float64(total) * 0.8)
	removeTotal := int64(float64(total) * 0.2)

	tree, err := NewRBTree[int64, uint64](WithRBTreeDesc[int64, uint64]())
	require.NoError(t, err)

	rand := int64(randv2.Uint32() % 1_000)
	for i := insertTotal - 1; i >= 0; i-- {
		require.NoError(t, tree.Insert(i, 1))
		if i%1000 == rand {
			require.NoError(t, RedViolationValidate[int64, uint64](tree))
			require.NoError(t, BlackViolationValidate[int64, uint64](tree))
		}
	}
	tree.Foreach(func(idx int64, color RBColor, key int64, val uint64) bool {
		require.Equal(t, int64(insertTotal-1-idx), key)
		return true
	})

	for i := removeTotal + insertTotal - 1; i >= insertTotal; i-- {
		require.NoError(t, tree.Insert(i, 1))
	}
	tree.Foreach(func(idx int64, color RBColor, key int64, val uint64) bool {
		require.Equal(t, int64(removeTotal+insertTotal-1-idx), key)
		return true
	})

	for i := insertTotal; i < removeTotal+insertTotal; i++ {
		x, ok := tree.Remove(i)
		require.True(t, ok)
		require.Equal(t, i, x.Key())
	}
	tree.Foreach(func(idx int64, color RBColor, key int64, val uint64) bool {
		require.Equal(t, int64(insertTotal-1-idx), key)
		return true
	})
	require.NoError(t, Validate[int64, uint64](tree))
}

func uniqueRandomNumbers(total int) []uint64 {
	set := make(map[uint64]struct{}, total)
	for len(set) < total {
		set[randv2.Uint64()] = struct{}{}
	}
	return lo.Keys(set)
}

func rbtreeRandomInsertAndRemove_RandomNumberRunCore(t *testing.T, total int, violationCheck bool) {
	insertTotal := int(float64(total) * 0.8)
	removeTotal := total - insertTotal

	elements := uniqueRandomNumbers(total)
	insertElements := lo.Shuffle(slices.Clone(elements[:insertTotal]))
	removeElements := lo.Shuffle(slices.Clone(elements[insertTotal:]))

	tree := newUint64RBTree(t)

	for i := 0; i < insertTotal; i++ {
		require.NoError(t, tree.Insert(insertElements[i], uint64(i)))
		if violationCheck {
			require.NoError(t, RedViolationValidate[uint64, uint64](tree))
			require.NoError(t, BlackViolationValidate[uint64, uint64](tree))
		}
	}
	sort.Slice(insertElements, func(i, j int) bool {
		return insertElements[i] < insertElements[j]
	})
	tree.Foreach(func(idx int64, color RBColor, key uint64, val uint64) bool {
		require.Equal(t, insertElements[idx], key)
		return true
	})

	for i := 0; i < removeTotal; i++ {
		require.NoError(t, tree.Insert(removeElements[i], 1))
		if violationCheck {
			require.NoError(t, RedViolationValidate[uint64, uint64](tree))
			require.NoError(t, BlackViolationValidate[uint64, uint64](tree))
		}
	}
	require.NoError(t, Validate[uint64, uint64](tree))

	for i := 0; i < removeTotal; i++ {
		x, ok := tree.Remove(removeElements[i])
		require.True(t, ok)
		require.Equalf(t, removeElements[i], x.Key(), "value exp: %d, real: %d\n", removeElements[i], x.Key())
		if violationCheck {
			require.NoError(t, RedViolationValidate[uint64, uint64](tree))
			require.NoError(t, BlackViolationValidate[uint64, uint64](tree))
		}
	}
	tree.Foreach(func(idx int64, color RBColor, key uint64, val uint64) bool {
		require.Equal(t, insertElements[idx], key)
		return true
	})
	require.NoError(t, Validate[uint64, uint64](tree))

	// Remove all the rest in random order.
	for _, key := range lo.Shuffle(insertElements) {
		_, ok := tree.Remove(key)
		require.True(t, ok)
	}
	require.Equal(t, int64(0), tree.Len())
	require.Equal(t, -1, tree.Height())
}

func TestRbtreeRandomInsertAndRemove_RandomNumber(t *testing.T) {
	testcases := []struct {
		name           string
		total          int
		violationCheck bool
	}{
		{
			name:  "random 100000",
			total: 100000,
		},
		{
			name:           "violation check 2000",
			total:          2000,
			violationCheck: true,
		},
		{
			name:           "violation check 5000",
			total:          5000,
			violationCheck: true,
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			rbtreeRandomInsertAndRemove_RandomNumberRunCore(tt, tc.total, tc.violationCheck)
		})
	}
}

func BenchmarkRBTree_Random(b *testing.B) {
	testByBytes := []byte(`abc`)

	b.StopTimer()
	tree, _ := NewRBTree[int, []byte]()

	rngArr := make([]int, 0, b.N)
	for i := 0; i < b.N; i++ {
		rngArr = append(rngArr, randv2.Int())
	}

	b.StartTimer()
	for i := 0; i < b.N; i++ {
		err := tree.Insert(rngArr[i], testByBytes)
		if err != nil {
			panic(err)
		}
	}
}

func BenchmarkRBTree_Serial(b *testing.B) {
	testByBytes := []byte(`abc`)

	b.StopTimer()
	tree, _ := NewRBTree[int, []byte]()

	b.StartTimer()
	for i := 0; i < b.N; i++ {
		_ = tree.Insert(i, testByBytes)
	}
}
