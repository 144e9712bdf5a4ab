package host

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"sync"

	"github.com/google/uuid"

	"github.com/plugtrace/plugtrace/internal/command"
)

// Frame operations on the wire. The harness writes "command",
// "listExtensions", and "answer" frames; the host writes "response",
// "extensions", and "query" frames. One JSON object per line.
const (
	opCommand        = "command"
	opListExtensions = "listExtensions"
	opAnswer         = "answer"
	opResponse       = "response"
	opExtensions     = "extensions"
	opQuery          = "query"
)

// frame is one newline-delimited JSON message exchanged with the host
// process. Response frames reuse the ID of the frame they answer.
type frame struct {
	ID         string          `json:"id,omitempty"`
	Op         string          `json:"op"`
	Type       string          `json:"type,omitempty"`
	Data       any             `json:"data,omitempty"`
	Extensions []ExtensionInfo `json:"extensions,omitempty"`
	Error      string          `json:"error,omitempty"`
}

// maxFrameSize bounds a single frame line on the host pipe.
const maxFrameSize = 16 * 1024 * 1024

// ProcHost drives an extension host running as a child process, speaking
// newline-delimited JSON frames over its stdin/stdout. Host stderr is
// forwarded line by line to the logger so extension output lands in the
// run's diagnostic buffer.
type ProcHost struct {
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	responder Responder
	logger    *slog.Logger

	writeMu sync.Mutex

	mu      sync.Mutex
	pending map[string]chan frame

	done    chan struct{}
	readErr error
}

// StartProc launches the host binary with the given arguments and begins
// reading its frame stream. The responder answers interleaved query frames.
func StartProc(ctx context.Context, bin string, args []string, responder Responder, logger *slog.Logger) (*ProcHost, error) {
	if logger == nil {
		logger = slog.Default()
	}

	cmd := exec.CommandContext(ctx, bin, args...) //nolint:gosec // host binary comes from user input, expected behavior
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open host stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open host stdout: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open host stderr: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start host %q: %w", bin, err)
	}

	h := &ProcHost{
		cmd:       cmd,
		stdin:     stdin,
		responder: responder,
		logger:    logger,
		pending:   make(map[string]chan frame),
		done:      make(chan struct{}),
	}

	go h.readFrames(stdout)
	go h.forwardStderr(stderr)

	return h, nil
}

// ListInstalledExtensions asks the host for its discovered extensions.
func (h *ProcHost) ListInstalledExtensions(ctx context.Context) ([]ExtensionInfo, error) {
	reply, err := h.roundTrip(ctx, frame{Op: opListExtensions})
	if err != nil {
		return nil, err
	}
	return reply.Extensions, nil
}

// SendCommand dispatches a command frame and awaits the matching response.
// There is no per-command timeout; cancellation comes from ctx.
func (h *ProcHost) SendCommand(ctx context.Context, cmd command.Descriptor) (any, error) {
	reply, err := h.roundTrip(ctx, frame{Op: opCommand, Type: cmd.Type, Data: cmd.Data})
	if err != nil {
		return nil, err
	}
	if reply.Error != "" {
		return nil, fmt.Errorf("host rejected command %q: %s", cmd.Type, reply.Error)
	}
	return reply.Data, nil
}

// Close shuts down the host process.
func (h *ProcHost) Close() error {
	h.writeMu.Lock()
	_ = h.stdin.Close()
	h.writeMu.Unlock()

	if h.cmd.Process != nil {
		_ = h.cmd.Process.Kill()
	}
	_ = h.cmd.Wait()
	return nil
}

// roundTrip writes one frame and blocks until the host answers it.
func (h *ProcHost) roundTrip(ctx context.Context, f frame) (frame, error) {
	f.ID = uuid.NewString()

	ch := make(chan frame, 1)
	h.mu.Lock()
	h.pending[f.ID] = ch
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		delete(h.pending, f.ID)
		h.mu.Unlock()
	}()

	if err := h.writeFrame(f); err != nil {
		return frame{}, err
	}

	select {
	case reply := <-ch:
		return reply, nil
	case <-h.done:
		if h.readErr != nil {
			return frame{}, fmt.Errorf("host stream closed: %w", h.readErr)
		}
		return frame{}, fmt.Errorf("host exited before answering %s", f.Op)
	case <-ctx.Done():
		return frame{}, ctx.Err()
	}
}

func (h *ProcHost) writeFrame(f frame) error {
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to encode frame: %w", err)
	}
	data = append(data, '\n')

	h.writeMu.Lock()
	defer h.writeMu.Unlock()
	if _, err := h.stdin.Write(data); err != nil {
		return fmt.Errorf("failed to write frame to host: %w", err)
	}
	return nil
}

// readFrames is the single reader over host stdout. Responses are routed
// to their waiting round trip; queries are answered on a separate goroutine
// so a slow responder cannot stall the stream.
func (h *ProcHost) readFrames(r io.Reader) {
	defer close(h.done)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxFrameSize)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var f frame
		if err := json.Unmarshal(line, &f); err != nil {
			h.logger.Debug("discarding malformed host frame", "error", err)
			continue
		}

		switch f.Op {
		case opQuery:
			go h.answerQuery(f)
		case opResponse, opExtensions:
			h.mu.Lock()
			ch := h.pending[f.ID]
			h.mu.Unlock()
			if ch != nil {
				ch <- f
			} else {
				h.logger.Debug("dropping unsolicited host frame", "op", f.Op, "id", f.ID)
			}
		default:
			h.logger.Debug("unknown host frame op", "op", f.Op)
		}
	}

	h.readErr = scanner.Err()
}

func (h *ProcHost) answerQuery(f frame) {
	if h.responder == nil {
		return
	}
	answer := h.responder(command.Descriptor{Type: f.Type, Data: f.Data})
	reply := frame{ID: f.ID, Op: opAnswer, Type: answer.Type, Data: answer.Data}
	if err := h.writeFrame(reply); err != nil {
		h.logger.Debug("failed to answer host query", "kind", f.Type, "error", err)
	}
}

// forwardStderr streams host stderr lines into the logger.
func (h *ProcHost) forwardStderr(r io.Reader) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxFrameSize)
	for scanner.Scan() {
		h.logger.Debug("host: " + scanner.Text())
	}
}

// Verify interface compliance.
var _ Host = (*ProcHost)(nil)
