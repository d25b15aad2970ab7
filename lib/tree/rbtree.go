package tree

import (
	"fmt"
	"iter"

	"go.uber.org/zap"

	"github.com/benz9527/xtree/lib/infra"
	"github.com/benz9527/xtree/xlog"
)

// References:
// https://elixir.bootlin.com/linux/latest/source/lib/rbtree.c
// rbtree properties:
// https://en.wikipedia.org/wiki/Red%E2%80%93black_tree#Properties
// p1. Every node is either red or black.
// p2. All absent nodes are considered black.
// p3. A red node does not have a red child. (red-violation)
// p4. Every path from a given node to any of its descendant
//   absent nodes goes through the same number of black nodes. (black-violation)
// p5. The root is black.
// (Conclusion) If a node X has exactly one child, it must be a red child,
//   because if it were black, its absent descendants would sit at a different
//   black depth than X's absent child, violating p4.
// The longest path nodes' number is 2 * shortest path nodes' number.

const (
	insertPhase = "insert"
	removePhase = "remove"
)

// rbTree only rebalances, the structure is owned by the bst core.
type rbTree[K infra.OrderedKey, V any] struct {
	core      bstCore[K, V]
	isDesc    bool
	validator func(key K, val V) error
	logger    xlog.XLogger
	stats     *rbTreeStats
}

var _ RBTree[int, struct{}] = (*rbTree[int, struct{}])(nil)

func (tree *rbTree[K, V]) fixupApplied(phase string, fixCase int, x *bsNode[K, V]) {
	tree.stats.IncreaseFixupCount(phase, fixCase)
	if tree.logger == nil {
		return
	}
	tree.logger.Debug("[rbtree] fix-up",
		zap.String("phase", phase),
		zap.Int("case", fixCase),
		zap.Any("key", x.key),
	)
}

func (tree *rbTree[K, V]) rotate(x *bsNode[K, V], dir RBDirection) {
	switch dir {
	case Left:
		tree.core.rotateLeft(x)
	case Right:
		tree.core.rotateRight(x)
	default:
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] rotate without direction")
	}
}

func (tree *rbTree[K, V]) Len() int64 {
	return tree.core.length()
}

func (tree *rbTree[K, V]) Height() int {
	return subtreeHeight[K, V](tree.core.rootNode())
}

func (tree *rbTree[K, V]) Root() (Node[K, V], error) {
	root := tree.core.rootNode()
	if root == nil {
		return nil, ErrEmptyTree
	}
	return root, nil
}

func (tree *rbTree[K, V]) Min() (Node[K, V], error) {
	root := tree.core.rootNode()
	if root == nil {
		return nil, ErrEmptyTree
	}
	return root.minimum(), nil
}

func (tree *rbTree[K, V]) Max() (Node[K, V], error) {
	root := tree.core.rootNode()
	if root == nil {
		return nil, ErrEmptyTree
	}
	return root.maximum(), nil
}

func (tree *rbTree[K, V]) Compare(k1, k2 K) int64 {
	return tree.core.compare(k1, k2)
}

func (tree *rbTree[K, V]) Insert(key K, val V) error {
	if err := tree.core.insert(key, val); err != nil {
		if tree.logger != nil {
			tree.logger.Warn("[rbtree] insert rejected", zap.Any("key", key), zap.Error(err))
		}
		return err
	}
	z := tree.core.lastInserted()
	z.color = Red
	tree.insertRebalance(z)
	tree.stats.IncreaseInsertCount()
	return nil
}

/*
New node X is red by default.

<X> is a RED node.
[X] is a BLACK node (or absent).
{X} is either a RED node or a BLACK node.

im0: Current node X is root, repaint X into black.

im1: Current node X's parent P is black, hold p3 and p4.

im2: If both the parent P and the uncle U are red, grandpa G is black.
(red-violation)
After repainted G into red may be still red-violation.
Loop to fix grandpa.

	    [G]             <G>
	    / \             / \
	  <P> <U>  ====>  [P] [U]
	  /               /
	<X>             <X>

im3: The parent P is red but the uncle U is black. (red-violation)
X is opposite direction to P. Rotate P to opposite direction.
After rotation still red-violation. Here must enter im4 to fix.

	  [G]                 [G]
	  / \    rotate(P)    / \
	<P> [U]  ========>  <X> [U]
	  \                 /
	  <X>             <P>

im4: Current node is the same direction as parent.

	    [G]                 <P>               [P]
	    / \    rotate(G)    / \    repaint    / \
	  <P> [U]  ========>  <X> [G]  ======>  <X> <G>
	  /                         \                 \
	<X>                         [U]               [U]
*/
func (tree *rbTree[K, V]) insertRebalance(x *bsNode[K, V]) {
	for x != nil {
		if /* im0 */ x.isRoot() {
			x.color = Black
			tree.fixupApplied(insertPhase, 0, x)
			return
		}

		p := x.parent
		if /* im1 */ p.isBlack() {
			tree.fixupApplied(insertPhase, 1, x)
			return
		}

		g := p.parent
		if g == nil {
			// impossible run to here, the root is always black
			panic( /* debug assertion */ "[rbtree] red parent without grandpa")
		}

		if u := x.uncle(); /* im2 */ u.isRed() {
			p.color, u.color, g.color = Black, Black, Red
			tree.fixupApplied(insertPhase, 2, x)
			x = g
			continue
		}

		pdir := p.direction()
		if dir := x.direction(); /* im3 */ dir != pdir {
			tree.rotate(p, pdir)
			tree.fixupApplied(insertPhase, 3, x)
			x, p = p, x // enter im4 to fix
		}

		/* im4 */
		tree.rotate(g, -pdir)
		p.color, g.color = Black, Red
		tree.fixupApplied(insertPhase, 4, x)
		return
	}
}

func (tree *rbTree[K, V]) Remove(key K) (Node[K, V], bool) {
	z := tree.core.search(key)
	if z == nil {
		return nil, false
	}
	return tree.removeNode(z), true
}

func (tree *rbTree[K, V]) RemoveMin() (Node[K, V], error) {
	root := tree.core.rootNode()
	if root == nil {
		return nil, ErrEmptyTree
	}
	return tree.removeNode(root.minimum()), nil
}

/*
r1: Current node Z has left and right node.
Swap the payload with its pred Y (the maximum of the left subtree),
then remove Y instead. Y has no right child.

	  |                    |
	  Z                    Y
	 / \                  / \
	L  ..   swap(Z, Y)   L  ..
	 \      =========>    \
	  ..                   ..
	   \                    \
	    Y                    Z

r2: Y has at most one child X, splice X into Y's place.
(1) Y is red, no violation.
(2) Y is black and X is red, repaint X into black.
(3) Y is black and X is black or absent, the path through X lost
one black node. (black-violation) Rebalance from X and its parent.
*/
func (tree *rbTree[K, V]) removeNode(z *bsNode[K, V]) *bsNode[K, V] {
	y := z
	if /* r1 */ z.left != nil && z.right != nil {
		y = tree.core.swapPredecessor(z)
	}

	color := y.color
	x, p, dir := tree.core.splice(y)
	if /* r2 (2) (3) */ color == Black {
		if x.isRed() {
			x.color = Black
		} else {
			tree.removeRebalance(x, p, dir)
		}
	}
	tree.stats.IncreaseRemoveCount()
	return y
}

/*
<X> is a RED node.
[X] is a BLACK node (or absent).
{X} is either a RED node or a BLACK node.
X may be absent, P and the side of X are carried along.

Sc is the same direction to X and it X's sibling's child node.
Sd is the opposite direction to X and it X's sibling's child node.

rm1: X is root, stop.

rm2: Current node X's sibling S is red, so the parent P, nephew node Sc and Sd
must be black. (Otherwise, red-violation)
(1) rotate P toward X.
(2) repaint S into black, P into red.
Re-evaluate with the new sibling.

	  [P]                   <S>               [S]
	  / \    l-rotate(P)    / \    repaint    / \
	[X] <S>  ==========>  [P] [Sd]  =====>  <P> [Sd]
	    / \               / \               / \
	 [Sc] [Sd]          [X] [Sc]          [X] [Sc]

rm3: All of current node X's parent P, the sibling S, nephew node Sc and Sd
are black.
Paint the S into red to satisfy p4 locally. Then loop to handle P.

	  [P]             [P]
	  / \             / \
	[X] [S]  ====>  [X] <S>
	    / \             / \
	 [Sc] [Sd]       [Sc] [Sd]

rm4: Current node X's parent P is red, the sibling S, nephew node Sc and Sd
is black.
Repaint S into red and P into black.

	  <P>             [P]
	  / \             / \
	[X] [S]  ====>  [X] <S>
	    / \             / \
	 [Sc] [Sd]       [Sc] [Sd]

rm5: Current node X's sibling S is black, nephew node Sc is red and Sd
is black. Ignore X's parent P's color.
(1) rotate S away from X.
(2) Repaint S into red, Sc into black
Enter into rm6 to fix.

	                        {P}                {P}
	  {P}                   / \                / \
	  / \    r-rotate(S)  [X] <Sc>   repaint  [X] [Sc]
	[X] [S]  ==========>        \    ======>       \
	    / \                     [S]                <S>
	  <Sc> [Sd]                   \                  \
	                              [Sd]               [Sd]

rm6: Current node X's sibling S is black, nephew node Sd is red.
Ignore X's parent P's color.
(1) rotate P toward X.
(2) S takes P's color, P is painted into black.
(3) Repaint Sd into black.

	  {P}                   [S]                {S}
	  / \    l-rotate(P)    / \     repaint    / \
	[X] [S]  ==========>  {P} <Sd>  ======>  [P] [Sd]
	    / \               / \                / \
	 [Sc] <Sd>          [X] [Sc]           [X] [Sc]
*/
func (tree *rbTree[K, V]) removeRebalance(x, p *bsNode[K, V], dir RBDirection) {
	for {
		if /* rm1 */ p == nil {
			if x != nil {
				x.color = Black
			}
			return
		}

		s := p.child(-dir)
		if s == nil {
			// impossible run to here, black-violation before removal
			panic( /* debug assertion */ "[rbtree] remove rebalance without sibling")
		}

		if /* rm2 */ s.isRed() {
			tree.rotate(p, dir)
			s.color, p.color = Black, Red
			tree.fixupApplied(removePhase, 2, p)
			s = p.child(-dir)
		}

		sc, sd := s.child(dir), s.child(-dir)
		if sc.isBlack() && sd.isBlack() {
			s.color = Red
			if /* rm3 */ p.isBlack() {
				tree.fixupApplied(removePhase, 3, p)
				x, p = p, p.parent
				if p != nil {
					dir = x.direction()
				}
				continue
			}
			/* rm4 */
			p.color = Black
			tree.fixupApplied(removePhase, 4, p)
			return
		}

		if /* rm5 */ sd.isBlack() {
			tree.rotate(s, -dir)
			sc.color, s.color = Black, Red
			tree.fixupApplied(removePhase, 5, p)
			s = p.child(-dir)
			sd = s.child(-dir)
		}

		/* rm6 */
		tree.rotate(p, dir)
		s.color, p.color = p.color, Black
		sd.color = Black
		tree.fixupApplied(removePhase, 6, p)
		return
	}
}

func (tree *rbTree[K, V]) Find(key K) (V, bool) {
	if node := tree.core.search(key); node != nil {
		return node.val, true
	}
	var v V
	return v, false
}

func (tree *rbTree[K, V]) Search(key K) Node[K, V] {
	if node := tree.core.search(key); node != nil {
		return node
	}
	return nil
}

func (tree *rbTree[K, V]) Contains(key K) bool {
	return tree.core.search(key) != nil
}

func (tree *rbTree[K, V]) Traverse(order TraverseOrder) iter.Seq[TraversalItem[K, V]] {
	return traverse[K, V](tree.core.rootNode, order)
}

// Inorder traversal to implement the DFS.
func (tree *rbTree[K, V]) Foreach(action func(idx int64, color RBColor, key K, val V) bool) {
	foreach[K, V](tree.core.rootNode(), action)
}

func (tree *rbTree[K, V]) Release() {
	tree.stats.RecordReleased(tree.core.length())
	tree.core.release()
}

type RBTreeOpt[K infra.OrderedKey, V any] func(*rbTree[K, V]) error

func WithRBTreeDesc[K infra.OrderedKey, V any]() RBTreeOpt[K, V] {
	return func(tree *rbTree[K, V]) error {
		tree.isDesc = true
		return nil
	}
}

// WithRBTreeElementValidator rejects the (key, val) pair on insert
// if fn returns a non nil error.
func WithRBTreeElementValidator[K infra.OrderedKey, V any](fn func(key K, val V) error) RBTreeOpt[K, V] {
	return func(tree *rbTree[K, V]) error {
		if fn == nil {
			return fmt.Errorf("[rbtree] nil element validator")
		}
		tree.validator = fn
		return nil
	}
}

// WithRBTreeLogger logs the fix-up transitions in debug level.
func WithRBTreeLogger[K infra.OrderedKey, V any](logger xlog.XLogger) RBTreeOpt[K, V] {
	return func(tree *rbTree[K, V]) error {
		tree.logger = logger
		return nil
	}
}

func NewRBTree[K infra.OrderedKey, V any](opts ...RBTreeOpt[K, V]) (RBTree[K, V], error) {
	tree := &rbTree[K, V]{}
	for _, o := range opts {
		if err := o(tree); err != nil {
			return nil, err
		}
	}
	core := &bsTree[K, V]{
		isDesc:    tree.isDesc,
		validator: tree.validator,
	}
	if tree.stats != nil {
		core.onRotate = tree.stats.IncreaseRotationCount
	}
	tree.core = core
	return tree, nil
}

// NewRBTreeFrom inserts the pairs one by one in the given order.
// Stops at the first invalid element.
func NewRBTreeFrom[K infra.OrderedKey, V any](keys []K, vals []V, opts ...RBTreeOpt[K, V]) (RBTree[K, V], error) {
	if len(keys) != len(vals) {
		return nil, fmt.Errorf("[rbtree] keys len %d mismatch vals len %d", len(keys), len(vals))
	}
	tree, err := NewRBTree[K, V](opts...)
	if err != nil {
		return nil, err
	}
	for i := 0; i < len(keys); i++ {
		if err = tree.Insert(keys[i], vals[i]); err != nil {
			return nil, err
		}
	}
	return tree, nil
}
