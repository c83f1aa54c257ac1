package engine

import (
	"unsafe"

	"github.com/dylhunn/dragontoothmg"
)

const (
	// Flags
	AlphaFlag int8 = iota
	BetaFlag
	ExactFlag

	// In MB
	DefaultTTSize = 16
	clusterSize   = 4
)

type TransTable struct {
	entries      []TTEntry
	clusterCount uint64
}

type TTEntry struct {
	Hash  uint64
	Depth int8
	Move  dragontoothmg.Move
	Score int32
	Flag  int8
}

func NewTransTable(sizeMB int) *TransTable {
	if sizeMB <= 0 {
		sizeMB = DefaultTTSize
	}
	entrySize := uint64(unsafe.Sizeof(TTEntry{}))
	clusterCount := uint64(sizeMB) * 1024 * 1024 / (entrySize * clusterSize)
	if clusterCount == 0 {
		clusterCount = 1
	}
	return &TransTable{
		clusterCount: clusterCount,
		entries:      make([]TTEntry, clusterCount*clusterSize),
	}
}

func (tt *TransTable) Clear() {
	clear(tt.entries)
}

func (tt *TransTable) probe(hash uint64) (TTEntry, bool) {
	base := int(hash%tt.clusterCount) * clusterSize
	for i := 0; i < clusterSize; i++ {
		if e := tt.entries[base+i]; e.Hash == hash {
			return e, true
		}
	}
	return TTEntry{}, false
}

// useEntry reports whether a stored bound already decides this node.
// Mate scores are stored relative to the node and re-anchored at ply.
func (tt *TransTable) useEntry(e TTEntry, depth int8, alpha, beta int32, ply int8) (bool, int32) {
	if e.Depth < depth {
		return false, 0
	}
	score := e.Score
	if score > Checkmate {
		score -= int32(ply)
	} else if score < -Checkmate {
		score += int32(ply)
	}
	switch e.Flag {
	case ExactFlag:
		return true, score
	case AlphaFlag:
		if score <= alpha {
			return true, alpha
		}
	case BetaFlag:
		if score >= beta {
			return true, beta
		}
	}
	return false, 0
}

// store prefers the slot already holding this hash, then an empty slot,
// then the shallowest entry in the cluster.
func (tt *TransTable) store(hash uint64, depth int8, ply int8, move dragontoothmg.Move, score int32, flag int8) {
	if score > Checkmate {
		score += int32(ply)
	} else if score < -Checkmate {
		score -= int32(ply)
	}
	base := int(hash%tt.clusterCount) * clusterSize
	target := -1
	for i := 0; i < clusterSize && target < 0; i++ {
		if tt.entries[base+i].Hash == hash {
			target = base + i
		}
	}
	for i := 0; i < clusterSize && target < 0; i++ {
		if tt.entries[base+i].Hash == 0 {
			target = base + i
		}
	}
	if target < 0 {
		target = base
		for i := 1; i < clusterSize; i++ {
			if tt.entries[base+i].Depth < tt.entries[target].Depth {
				target = base + i
			}
		}
	}
	tt.entries[target] = TTEntry{Hash: hash, Depth: depth, Move: move, Score: score, Flag: flag}
}
