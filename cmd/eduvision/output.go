package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/mattn/go-isatty"
)

const (
	colorAuto   = "auto"
	colorAlways = "always"
	colorNever  = "never"
)

// printer writes JSON documents, highlighted when the output is a terminal
type printer struct {
	w     io.Writer
	color bool
}

func newPrinter(w io.Writer, mode string) (*printer, error) {
	switch mode {
	case colorAlways:
		return &printer{w: w, color: true}, nil
	case colorNever:
		return &printer{w: w}, nil
	case colorAuto:
		return &printer{w: w, color: isTerminal(w)}, nil
	default:
		return nil, fmt.Errorf("invalid --color value %q: use auto, always or never", mode)
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// printJSON writes data indented. Values that are not already JSON are marshalled first.
func (p *printer) printJSON(data []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return fmt.Errorf("invalid JSON output: %w", err)
	}
	buf.WriteByte('\n')

	if !p.color {
		_, err := buf.WriteTo(p.w)
		return err
	}
	return quick.Highlight(p.w, buf.String(), "json", "terminal256", "monokai")
}

func (p *printer) print(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return p.printJSON(data)
}
