package engine

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// UCIOptions are sent with setoption after the handshake.
type UCIOptions struct {
	LimitStrength bool
	Elo           int
	Threads       int
	HashMB        int
}

// UCIClient drives an external engine over the UCI protocol.
type UCIClient struct {
	mu     sync.Mutex
	w      io.Writer
	lines  chan string
	closer func() error
	logger *zap.Logger
}

// StartUCI launches the engine binary and completes the handshake.
func StartUCI(ctx context.Context, path string, opts UCIOptions, logger *zap.Logger) (*UCIClient, error) {
	cmd := exec.Command(path)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("engine stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("engine stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start engine %s: %w", path, err)
	}
	closer := func() error {
		_ = stdin.Close()
		return cmd.Wait()
	}
	c := NewUCIClient(stdout, stdin, closer, logger)
	if err := c.Handshake(ctx, opts); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

// NewUCIClient wraps an already connected engine. closer may be nil.
func NewUCIClient(r io.Reader, w io.Writer, closer func() error, logger *zap.Logger) *UCIClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &UCIClient{w: w, lines: make(chan string, 64), closer: closer, logger: logger}
	go func() {
		defer close(c.lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			c.lines <- scanner.Text()
		}
	}()
	return c
}

func (c *UCIClient) send(format string, args ...any) error {
	line := fmt.Sprintf(format, args...)
	c.logger.Debug("uci >", zap.String("line", line))
	_, err := fmt.Fprintln(c.w, line)
	return err
}

// waitFor reads lines until one starts with prefix.
func (c *UCIClient) waitFor(ctx context.Context, prefix string, timeout time.Duration) (string, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		select {
		case line, ok := <-c.lines:
			if !ok {
				return "", errors.New("engine closed its output")
			}
			c.logger.Debug("uci <", zap.String("line", line))
			if strings.HasPrefix(line, prefix) {
				return line, nil
			}
		case <-timer.C:
			return "", fmt.Errorf("timed out waiting for %q", prefix)
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
}

func (c *UCIClient) Handshake(ctx context.Context, opts UCIOptions) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.send("uci"); err != nil {
		return err
	}
	if _, err := c.waitFor(ctx, "uciok", 5*time.Second); err != nil {
		return fmt.Errorf("uci handshake: %w", err)
	}
	if opts.LimitStrength {
		if err := c.send("setoption name UCI_LimitStrength value true"); err != nil {
			return err
		}
	}
	if opts.Elo > 0 {
		if err := c.send("setoption name UCI_Elo value %d", opts.Elo); err != nil {
			return err
		}
	}
	if opts.Threads > 0 {
		if err := c.send("setoption name Threads value %d", opts.Threads); err != nil {
			return err
		}
	}
	if opts.HashMB > 0 {
		if err := c.send("setoption name Hash value %d", opts.HashMB); err != nil {
			return err
		}
	}
	if err := c.send("isready"); err != nil {
		return err
	}
	if _, err := c.waitFor(ctx, "readyok", 5*time.Second); err != nil {
		return fmt.Errorf("uci isready: %w", err)
	}
	return nil
}

func (c *UCIClient) BestMove(ctx context.Context, fen string, budget time.Duration) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if budget <= 0 {
		budget = DefaultMoveTime
	}
	if err := c.send("position fen %s", fen); err != nil {
		return "", err
	}
	if err := c.send("go movetime %d", budget.Milliseconds()); err != nil {
		return "", err
	}
	line, err := c.waitFor(ctx, "bestmove", budget+5*time.Second)
	if err != nil {
		_ = c.send("stop")
		return "", fmt.Errorf("bestmove: %w", err)
	}
	return parseBestMove(line)
}

func parseBestMove(line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 || fields[0] != "bestmove" {
		return "", fmt.Errorf("malformed bestmove line %q", line)
	}
	if fields[1] == "(none)" || fields[1] == "0000" {
		return "", ErrNoLegalMoves
	}
	return strings.ToLower(fields[1]), nil
}

func (c *UCIClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.send("quit")
	if c.closer == nil {
		return nil
	}
	err := c.closer()
	// the closer ends the stream, which lets the reader goroutine finish
	for range c.lines {
	}
	return err
}

// Describe is a short label for logs.
func (o UCIOptions) Describe() string {
	if !o.LimitStrength {
		return "full strength"
	}
	return "elo " + strconv.Itoa(o.Elo)
}
