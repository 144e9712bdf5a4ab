package sequencer

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// TerminalProvider reads interactive step payloads as single-line JSON
// from a terminal. Parse failures are reported and re-prompted; only a
// read error (such as EOF) is surfaced to the sequencer.
type TerminalProvider struct {
	reader *bufio.Reader
	out    io.Writer
}

// NewTerminalProvider creates a provider reading from in (default stdin)
// and prompting on out (default stderr).
func NewTerminalProvider(in io.Reader, out io.Writer) *TerminalProvider {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stderr
	}
	return &TerminalProvider{reader: bufio.NewReader(in), out: out}
}

// ProvidePayload prompts the operator for a replacement payload for the
// given command kind.
func (p *TerminalProvider) ProvidePayload(kind string, _ any) (any, error) {
	for {
		fmt.Fprintf(p.out, "Enter data for %s > ", kind)
		line, err := p.reader.ReadString('\n')
		if err != nil {
			return nil, err
		}

		var data any
		if err := json.Unmarshal([]byte(line), &data); err != nil {
			fmt.Fprintf(p.out, "Could not parse data: %v, try again...\n", err)
			continue
		}
		return data, nil
	}
}

// Verify interface compliance.
var _ PayloadProvider = (*TerminalProvider)(nil)
