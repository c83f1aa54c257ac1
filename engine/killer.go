package engine

import (
	"github.com/dylhunn/dragontoothmg"
)

type KillerStruct struct {
	KillerMoves [MaxDepth + 1][2]dragontoothmg.Move
}

func (k *KillerStruct) InsertKiller(move dragontoothmg.Move, ply int8) {
	if move != k.KillerMoves[ply][0] {
		k.KillerMoves[ply][1] = k.KillerMoves[ply][0]
		k.KillerMoves[ply][0] = move
	}
}

func (k *KillerStruct) IsKiller(move dragontoothmg.Move, ply int8) bool {
	return k.KillerMoves[ply][0] == move || k.KillerMoves[ply][1] == move
}

/*
	HISTORY/COUNTER MOVES
	A quiet move that caused a beta cutoff gets a history bonus, and is
	remembered as the counter to the move played before it.
*/
type historyTable struct {
	counter [2][64][64]dragontoothmg.Move
	score   [2][64][64]int
}

const historyMaxVal = 2000 // stays below capture and killer offsets

func sideIndex(wtomove bool) int {
	if wtomove {
		return 0
	}
	return 1
}

func (h *historyTable) storeCounter(wtomove bool, prev, move dragontoothmg.Move) {
	h.counter[sideIndex(wtomove)][prev.From()][prev.To()] = move
}

func (h *historyTable) increment(wtomove bool, move dragontoothmg.Move, depth int8) {
	side := sideIndex(wtomove)
	h.score[side][move.From()][move.To()] += int(depth) * int(depth)
	if h.score[side][move.From()][move.To()] >= historyMaxVal {
		h.age(side)
	}
}

func (h *historyTable) age(side int) {
	for from := 0; from < 64; from++ {
		for to := 0; to < 64; to++ {
			h.score[side][from][to] /= 2
		}
	}
}
