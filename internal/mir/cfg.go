package mir

import (
	"github.com/ailang-mir/mlc/internal/cerr"
)

// CFG is a function's control-flow graph: Nodes holds the EBB index for
// each graph node, and Edges[i] holds the EBB indices node i's block can
// transfer control to. Node 0 is always the entry block (EBB index 0).
type CFG struct {
	Nodes []int
	Edges [][]int
}

// Cfg builds f's control-flow graph by breadth-first traversal from its
// entry EBB (index 0), grounded on original_source/src/mir/cfg.rs's
// Function::cfg: a queue-driven BFS over EBB::next_ebbs(), resolving each
// named successor to an index via FindEBB and panicking (the original's
// `.expect("internal error")`) when a terminator names an EBB the
// function doesn't contain. EBBs unreachable from the entry block are
// omitted, same as the BFS-only traversal it is modeled on.
func (f *Function) Cfg() *CFG {
	cfg := &CFG{}
	if len(f.Body) == 0 {
		return cfg
	}

	visited := make(map[int]bool)
	queue := []int{0}
	visited[0] = true

	for len(queue) > 0 {
		idx := queue[0]
		queue = queue[1:]
		cfg.Nodes = append(cfg.Nodes, idx)

		ebb := f.Body[idx]
		var edges []int
		for _, succName := range ebb.Successors() {
			succIdx, ok := f.FindEBB(succName)
			if !ok {
				cerr.Panic("mir: %s references undefined block %s", f.Name, succName)
			}
			edges = append(edges, succIdx)
			if !visited[succIdx] {
				visited[succIdx] = true
				queue = append(queue, succIdx)
			}
		}
		cfg.Edges = append(cfg.Edges, edges)
	}

	return cfg
}
