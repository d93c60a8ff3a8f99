package syntax

// Visitor receives Enter before a node's children and Leave after them.
// Returning false from Enter skips the children; Leave is still called.
type Visitor interface {
	Enter(n, parent *Node) bool
	Leave(n, parent *Node)
}

type walkItem struct {
	node   *Node
	parent *Node
	next   int // следующий ребёнок для обхода
}

// Walk visits root depth-first in source order without recursion.
func Walk(root *Node, v Visitor) {
	if root == nil {
		return
	}
	stack := make([]walkItem, 0, 64)
	if !v.Enter(root, nil) {
		v.Leave(root, nil)
		return
	}
	stack = append(stack, walkItem{node: root})

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next >= len(top.node.Children) {
			v.Leave(top.node, top.parent)
			stack = stack[:len(stack)-1]
			continue
		}
		child := top.node.Children[top.next]
		top.next++
		if !v.Enter(child, top.node) {
			v.Leave(child, top.node)
			continue
		}
		stack = append(stack, walkItem{node: child, parent: top.node})
	}
}

// Inspect calls fn for every node in pre-order; fn returning false prunes.
func Inspect(root *Node, fn func(n *Node) bool) {
	Walk(root, inspector(fn))
}

type inspector func(n *Node) bool

func (f inspector) Enter(n, _ *Node) bool { return f(n) }
func (f inspector) Leave(_, _ *Node)      {}
