package engine

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dylhunn/dragontoothmg"
)

// ServeUCI runs the Searcher behind a UCI command loop until "quit" or EOF.
// Only the subset a GUI needs to play a game is understood.
func ServeUCI(ctx context.Context, in io.Reader, out io.Writer, s *Searcher) error {
	scanner := bufio.NewScanner(in)
	board := dragontoothmg.ParseFen(dragontoothmg.Startpos)
	reply := func(a ...any) { fmt.Fprintln(out, a...) }

	for scanner.Scan() {
		line := scanner.Text()
		tokens := strings.Fields(line)
		if len(tokens) == 0 { // ignore blank lines
			continue
		}
		switch strings.ToLower(tokens[0]) {
		case "uci":
			reply("id name melody")
			reply("id author melody")
			reply("uciok")
		case "isready":
			reply("readyok")
		case "ucinewgame":
			board = dragontoothmg.ParseFen(dragontoothmg.Startpos)
			s.tt.Clear()
		case "quit":
			return nil
		case "position":
			b, err := parsePosition(tokens[1:])
			if err != nil {
				reply("info string", err.Error())
				continue
			}
			board = b
		case "go":
			budget := parseGo(tokens[1:], board.Wtomove)
			move, err := s.BestMove(ctx, board.ToFen(), budget)
			if err != nil {
				reply("bestmove 0000")
				continue
			}
			reply("bestmove", move)
		default:
			reply("info string unknown command", tokens[0])
		}
	}
	return scanner.Err()
}

func parsePosition(tokens []string) (dragontoothmg.Board, error) {
	var board dragontoothmg.Board
	if len(tokens) == 0 {
		return board, fmt.Errorf("malformed position command")
	}
	rest := tokens[1:]
	switch strings.ToLower(tokens[0]) {
	case "startpos":
		board = dragontoothmg.ParseFen(dragontoothmg.Startpos)
	case "fen":
		n := 0
		for n < len(rest) && rest[n] != "moves" {
			n++
		}
		if n == 0 {
			return board, fmt.Errorf("missing fen")
		}
		board = dragontoothmg.ParseFen(strings.Join(rest[:n], " "))
		rest = rest[n:]
	default:
		return board, fmt.Errorf("unknown position type %q", tokens[0])
	}
	if len(rest) > 0 && rest[0] == "moves" {
		for _, moveStr := range rest[1:] {
			found := false
			for _, m := range board.GenerateLegalMoves() {
				if m.String() == strings.ToLower(moveStr) {
					board.Apply(m)
					found = true
					break
				}
			}
			if !found {
				return board, fmt.Errorf("move %s not found for position %s", moveStr, board.ToFen())
			}
		}
	}
	return board, nil
}

// parseGo turns "go" options into a time budget for the side to move.
func parseGo(tokens []string, wtomove bool) time.Duration {
	var wTime, bTime, wInc, bInc, moveTime int
	for i := 0; i+1 < len(tokens); i++ {
		val, err := strconv.Atoi(tokens[i+1])
		if err != nil {
			continue
		}
		switch strings.ToLower(tokens[i]) {
		case "wtime":
			wTime = val
		case "btime":
			bTime = val
		case "winc":
			wInc = val
		case "binc":
			bInc = val
		case "movetime":
			moveTime = val
		default:
			continue
		}
		i++
	}
	if moveTime > 0 {
		return time.Duration(moveTime) * time.Millisecond
	}
	remaining, inc := wTime, wInc
	if !wtomove {
		remaining, inc = bTime, bInc
	}
	if remaining <= 0 {
		return DefaultMoveTime
	}
	// spend a fortieth of the clock plus most of the increment
	ms := remaining/40 + inc*3/4
	return time.Duration(Clamp(ms, 5, Max(5, remaining-30))) * time.Millisecond
}
