package scanner

import (
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"
)

func findChildByKind(node *ts.Node, kind string) *ts.Node {
	if node == nil {
		return nil
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil && child.Kind() == kind {
			return child
		}
	}
	return nil
}

func hasChildKind(node *ts.Node, kind string) bool {
	return findChildByKind(node, kind) != nil
}

// namedChildren returns the non-punctuation children of node.
func namedChildren(node *ts.Node) []*ts.Node {
	if node == nil {
		return nil
	}
	var out []*ts.Node
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil && child.IsNamed() && child.Kind() != "comment" {
			out = append(out, child)
		}
	}
	return out
}

// findNthArgument finds the nth non-punctuation argument in an arguments node.
func findNthArgument(args *ts.Node, n int) *ts.Node {
	if args == nil {
		return nil
	}
	count := 0
	for i := uint(0); i < args.ChildCount(); i++ {
		child := args.Child(i)
		kind := child.Kind()
		if kind == "(" || kind == ")" || kind == "," || kind == "comment" {
			continue
		}
		if count == n {
			return child
		}
		count++
	}
	return nil
}

// calleeName returns the callee text of a call expression, e.g. "cva" or
// "React.forwardRef". Type arguments are not part of the result.
func calleeName(call *ts.Node, source []byte) string {
	fn := call.ChildByFieldName("function")
	if fn == nil {
		return ""
	}
	switch fn.Kind() {
	case "identifier", "member_expression":
		return fn.Utf8Text(source)
	}
	return ""
}

// walk visits node and its descendants depth first. Returning false from
// visit skips the node's children.
func walk(node *ts.Node, visit func(*ts.Node) bool) {
	if node == nil || !visit(node) {
		return
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		walk(node.Child(i), visit)
	}
}

func lineOf(node *ts.Node) uint {
	return node.StartPosition().Row + 1
}

func isStringLiteral(s string) bool {
	if len(s) < 2 {
		return false
	}
	return (strings.HasPrefix(s, "\"") && strings.HasSuffix(s, "\"")) ||
		(strings.HasPrefix(s, "'") && strings.HasSuffix(s, "'")) ||
		(strings.HasPrefix(s, "`") && strings.HasSuffix(s, "`"))
}

func unquoteString(s string) string {
	if isStringLiteral(s) {
		return s[1 : len(s)-1]
	}
	return s
}

func inferLiteralType(text string) string {
	if isStringLiteral(text) {
		return "string"
	}
	if text == "true" || text == "false" {
		return "boolean"
	}
	if len(text) > 0 && (text[0] >= '0' && text[0] <= '9' || text[0] == '-') {
		return "number"
	}
	return text
}

// keyText returns the text of an object key with quotes removed.
func keyText(key *ts.Node, source []byte) string {
	if key == nil {
		return ""
	}
	return unquoteString(key.Utf8Text(source))
}
