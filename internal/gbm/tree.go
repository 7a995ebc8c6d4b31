package gbm

import (
	"golang.org/x/sync/errgroup"
)

const leafFeature = -1

// Node is one node of a regression tree. Leaves have Feature == -1. For
// internal nodes Value is the cover weighted mean of the children, which is
// what path attribution measures contributions against.
type Node struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold,omitempty"`
	Left      int     `json:"left,omitempty"`
	Right     int     `json:"right,omitempty"`
	Value     float64 `json:"value"`
	Cover     float64 `json:"cover"`
	Gain      float64 `json:"gain,omitempty"`
}

// IsLeaf reports whether the node has no children
func (n Node) IsLeaf() bool {
	return n.Feature == leafFeature
}

// Tree is a flat array of nodes rooted at index 0
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// predict walks the tree. NaN compares false and therefore goes right.
func (t *Tree) predict(row []float64) float64 {
	i := 0
	for {
		n := &t.Nodes[i]
		if n.IsLeaf() {
			return n.Value
		}
		if row[n.Feature] < n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// grower builds one tree over binned data for the current gradients
type grower struct {
	params   Params
	data     *binMatrix
	grad     []float64
	hess     []float64
	features []int // sampled columns, ascending
	workers  int
}

type candidate struct {
	feature int
	bin     int
	gain    float64
	ok      bool
}

func (g *grower) grow(rows []int) Tree {
	var t Tree
	g.build(&t, rows, 0)
	return t
}

func (g *grower) build(t *Tree, rows []int, depth int) int {
	var sumG, sumH float64
	for _, r := range rows {
		sumG += g.grad[r]
		sumH += g.hess[r]
	}

	idx := len(t.Nodes)
	t.Nodes = append(t.Nodes, Node{
		Feature: leafFeature,
		Value:   -sumG / (sumH + g.params.Lambda) * g.params.LearningRate,
		Cover:   sumH,
	})

	if depth >= g.params.MaxDepth || len(rows) < 2 || sumH < 2*g.params.MinChildWeight {
		return idx
	}

	best := g.bestSplit(rows, sumG, sumH)
	if !best.ok || best.gain <= g.params.Gamma {
		return idx
	}

	bins := g.data.bins[best.feature]
	left := make([]int, 0, len(rows))
	right := make([]int, 0, len(rows))
	for _, r := range rows {
		b := bins[r]
		if b != missingBin && int(b) <= best.bin {
			left = append(left, r)
		} else {
			right = append(right, r)
		}
	}

	l := g.build(t, left, depth+1)
	r := g.build(t, right, depth+1)

	ln, rn := t.Nodes[l], t.Nodes[r]
	n := &t.Nodes[idx]
	n.Feature = best.feature
	n.Threshold = g.data.cuts[best.feature][best.bin]
	n.Left = l
	n.Right = r
	n.Gain = best.gain
	if cover := ln.Cover + rn.Cover; cover > 0 {
		n.Value = (ln.Cover*ln.Value + rn.Cover*rn.Value) / cover
	}
	return idx
}

// bestSplit searches every sampled feature in parallel. Candidates are
// reduced in feature order so ties go to the lowest feature index.
func (g *grower) bestSplit(rows []int, sumG, sumH float64) candidate {
	results := make([]candidate, len(g.features))

	var eg errgroup.Group
	eg.SetLimit(g.workers)
	for i, f := range g.features {
		eg.Go(func() error {
			results[i] = g.bestForFeature(f, rows, sumG, sumH)
			return nil
		})
	}
	_ = eg.Wait()

	var best candidate
	for _, c := range results {
		if c.ok && (!best.ok || c.gain > best.gain) {
			best = c
		}
	}
	return best
}

func (g *grower) bestForFeature(f int, rows []int, sumG, sumH float64) candidate {
	nb := g.data.numBins(f)
	if nb < 2 {
		return candidate{}
	}

	histG := make([]float64, nb)
	histH := make([]float64, nb)
	bins := g.data.bins[f]
	for _, r := range rows {
		b := bins[r]
		if b == missingBin {
			continue
		}
		histG[b] += g.grad[r]
		histH[b] += g.hess[r]
	}

	lambda := g.params.Lambda
	mcw := g.params.MinChildWeight
	parent := sumG * sumG / (sumH + lambda)

	best := candidate{feature: f}
	var gl, hl float64
	for b := 0; b < nb-1; b++ {
		gl += histG[b]
		hl += histH[b]
		gr := sumG - gl
		hr := sumH - hl
		if hl < mcw || hr < mcw || hl == 0 || hr == 0 {
			continue
		}

		gain := 0.5 * (gl*gl/(hl+lambda) + gr*gr/(hr+lambda) - parent)
		if !best.ok || gain > best.gain {
			best.bin = b
			best.gain = gain
			best.ok = true
		}
	}
	return best
}
