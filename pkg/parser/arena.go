package parser

import "github.com/nooga/esparse/pkg/ast"

// nodeArenaChunk is the number of nodes allocated at once.
const nodeArenaChunk = 128

// nodeArena hands out nodes from pre-allocated chunks, reducing GC pressure
// on large inputs. A full chunk is never reused or grown in place, so
// pointers into it stay valid for the lifetime of the tree. Nodes built by
// a trial that was rolled back are simply left unused.
type nodeArena struct {
	chunk []ast.Node
	count int // nodes handed out, for debug logging
}

// alloc returns a zeroed node opened at start.
func (a *nodeArena) alloc(start int, loc ast.Position, filename string) *ast.Node {
	if len(a.chunk) == cap(a.chunk) {
		a.chunk = make([]ast.Node, 0, nodeArenaChunk)
	}
	a.chunk = append(a.chunk, ast.Node{})
	a.count++
	n := &a.chunk[len(a.chunk)-1]
	n.Start = start
	n.Loc = ast.SourceLocation{Start: loc, Filename: filename}
	return n
}
