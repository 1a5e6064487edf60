// Package bsptree walks the compiled BSP tree to recover the brush range
// owned by each model (component K): the set of brush indices reachable
// from a model's head node, via the leaves of its subtree.
package bsptree

import "github.com/AlleyKatPr0/bspsrc/bspdata"

// BrushRange walks the tree from headNode and returns the
// (first, count) brush index range spanned by every leaf reachable from
// it. A node index is either non-negative (descend both children) or
// negative, in which case -(node+1) indexes the leaves array.
func BrushRange(data *bspdata.Data, headNode int32) (first, count int32) {
	if len(data.Leafs) == 0 || len(data.LeafBrushes) == 0 {
		return 0, 0
	}

	var min, max int32
	seen := false

	stack := []int32{headNode}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if node >= 0 {
			if int(node) >= len(data.Nodes) {
				continue
			}
			n := data.Nodes[node]
			stack = append(stack, n.Children[0], n.Children[1])
			continue
		}

		leafIdx := -(node + 1)
		if leafIdx < 0 || int(leafIdx) >= len(data.Leafs) {
			continue
		}
		leaf := data.Leafs[leafIdx]
		for i := 0; i < int(leaf.NumLeafBrushes); i++ {
			idx := int(leaf.FirstLeafBrush) + i
			if idx < 0 || idx >= len(data.LeafBrushes) {
				continue
			}
			brushIdx := int32(data.LeafBrushes[idx])
			if !seen {
				min, max = brushIdx, brushIdx
				seen = true
				continue
			}
			if brushIdx < min {
				min = brushIdx
			}
			if brushIdx > max {
				max = brushIdx
			}
		}
	}

	if !seen {
		return 0, 0
	}
	return min, max - min + 1
}

// AssignModels fills data.Models from data.ModelHeads, walking each
// model's head node to recover its brush range. World-brush count is
// data.Models[0].NumBrush.
func AssignModels(data *bspdata.Data) {
	data.Models = make([]bspdata.DBrushModel, len(data.ModelHeads))
	for i, mh := range data.ModelHeads {
		first, count := BrushRange(data, mh.HeadNode)
		data.Models[i] = bspdata.DBrushModel{FirstBrush: first, NumBrush: count}
	}
}
