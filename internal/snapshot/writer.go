// File: internal/snapshot/writer.go
package snapshot

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/andybalholm/brotli"
	json "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/torin/internal/config"
)

// brotliReaderPool holds readers ready for Reset.
var brotliReaderPool = sync.Pool{
	New: func() interface{} {
		return brotli.NewReader(nil)
	},
}

var emptyReader = strings.NewReader("")

// Writer renders snapshots according to the output configuration.
type Writer struct {
	out    io.Writer
	cfg    config.OutputConfig
	logger *zap.Logger
}

// NewWriter creates a writer over out. A nil logger disables logging.
func NewWriter(out io.Writer, cfg config.OutputConfig, logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{out: out, cfg: cfg, logger: logger.Named("snapshot")}
}

// Write renders s in the configured format, brotli-compressed if requested.
func (w *Writer) Write(s *Snapshot) error {
	return w.write(func(dst io.Writer) error {
		if w.cfg.Format == config.FormatText {
			return WriteText(dst, s)
		}
		return Encode(dst, s, w.cfg.Indent)
	}, zap.Int("nodes", len(s.Nodes)), zap.String("source", s.Source))
}

// WriteDiff renders a list of changes as JSON or as text lines.
func (w *Writer) WriteDiff(step int, changes []Change) error {
	return w.write(func(dst io.Writer) error {
		if w.cfg.Format == config.FormatText {
			return WriteDiffText(dst, step, changes)
		}
		return encodeJSON(dst, struct {
			Step    int      `json:"step"`
			Changes []Change `json:"changes"`
		}{step, changes}, w.cfg.Indent)
	}, zap.Int("step", step), zap.Int("changes", len(changes)))
}

func (w *Writer) write(render func(io.Writer) error, fields ...zap.Field) error {
	if !w.cfg.Compress {
		if err := render(w.out); err != nil {
			return fmt.Errorf("failed to write snapshot: %w", err)
		}
		w.logger.Debug("Wrote snapshot.", fields...)
		return nil
	}

	bw := brotli.NewWriterLevel(w.out, brotli.DefaultCompression)
	renderErr := render(bw)
	// Always close the compressor so a partial stream is terminated.
	closeErr := bw.Close()
	if renderErr != nil {
		return fmt.Errorf("failed to write snapshot: %w", renderErr)
	}
	if closeErr != nil {
		return fmt.Errorf("failed to flush compressed snapshot: %w", closeErr)
	}
	w.logger.Debug("Wrote compressed snapshot.", fields...)
	return nil
}

// Encode writes s as JSON.
func Encode(w io.Writer, s *Snapshot, indent bool) error {
	return encodeJSON(w, s, indent)
}

func encodeJSON(w io.Writer, v any, indent bool) error {
	encoder := json.NewEncoder(w)
	if indent {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(v)
}

// WriteCompressed writes s as brotli-compressed JSON.
func WriteCompressed(w io.Writer, s *Snapshot) error {
	bw := brotli.NewWriterLevel(w, brotli.DefaultCompression)
	if err := Encode(bw, s, false); err != nil {
		_ = bw.Close()
		return err
	}
	return bw.Close()
}

// Decode reads a JSON snapshot.
func Decode(r io.Reader) (*Snapshot, error) {
	var s Snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &s, nil
}

// DecodeCompressed reads a snapshot written by WriteCompressed.
func DecodeCompressed(r io.Reader) (*Snapshot, error) {
	br := brotliReaderPool.Get().(*brotli.Reader)
	defer func() {
		_ = br.Reset(emptyReader)
		brotliReaderPool.Put(br)
	}()
	if err := br.Reset(r); err != nil {
		return nil, fmt.Errorf("failed to reset brotli reader: %w", err)
	}
	return Decode(br)
}

// WriteText renders s as an indented table.
func WriteText(w io.Writer, s *Snapshot) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if s.Source != "" {
		fmt.Fprintf(tw, "# %s\n", s.Source)
	}
	fmt.Fprintln(tw, "NODE\tX\tY\tWIDTH\tHEIGHT\tTEXT")
	for _, e := range s.Nodes {
		label := strings.Repeat("  ", e.Depth) + e.Kind
		if e.Name != "" {
			label += "#" + e.Name
		}
		fmt.Fprintf(tw, "%s\t%g\t%g\t%g\t%g\t%s\n",
			label, e.Area.X, e.Area.Y, e.Area.Width, e.Area.Height, strings.Join(e.Lines, " / "))
	}
	return tw.Flush()
}

// WriteDiffText renders changes one per line.
func WriteDiffText(w io.Writer, step int, changes []Change) error {
	if _, err := fmt.Fprintf(w, "step %d: %d change(s)\n", step, len(changes)); err != nil {
		return err
	}
	for _, c := range changes {
		name := fmt.Sprintf("#%d", c.ID)
		if c.Name != "" {
			name = c.Name
		}
		if _, err := fmt.Fprintf(w, "  %-8s %s %s -> %s\n", c.Kind, name, formatRect(c.Before), formatRect(c.After)); err != nil {
			return err
		}
	}
	return nil
}

func formatRect(r *Rect) string {
	if r == nil {
		return "-"
	}
	return fmt.Sprintf("(%g,%g %gx%g)", r.X, r.Y, r.Width, r.Height)
}
