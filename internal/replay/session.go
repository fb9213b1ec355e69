// File: internal/replay/session.go
package replay

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	json "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/torin/internal/config"
	"github.com/xkilldash9x/torin/internal/snapshot"
	"github.com/xkilldash9x/torin/internal/textmeasure"
	"github.com/xkilldash9x/torin/internal/tree"
	"github.com/xkilldash9x/torin/pkg/torin"
)

// ErrInvalidOp is returned for script lines that cannot be applied.
var ErrInvalidOp = errors.New("invalid replay operation")

// Operation names.
const (
	OpUpdate     = "update"
	OpAdd        = "add"
	OpRemove     = "remove"
	OpMove       = "move"
	OpText       = "text"
	OpResize     = "resize"
	OpInvalidate = "invalidate"
)

// Op is one line of a replay script. Targets and parents are node names or
// "#N" for a raw node id.
type Op struct {
	Op     string            `json:"op"`
	Target string            `json:"target,omitempty"`
	Parent string            `json:"parent,omitempty"`
	Kind   string            `json:"kind,omitempty"`
	ID     string            `json:"id,omitempty"`
	Index  *int              `json:"index,omitempty"`
	Text   *string           `json:"text,omitempty"`
	Reason string            `json:"reason,omitempty"`
	Attrs  map[string]string `json:"attrs,omitempty"`
	Width  float32           `json:"width,omitempty"`
	Height float32           `json:"height,omitempty"`
}

// ParseOp decodes one script line.
func ParseOp(line []byte) (Op, error) {
	var op Op
	if err := json.Unmarshal(line, &op); err != nil {
		return Op{}, fmt.Errorf("%w: %v", ErrInvalidOp, err)
	}
	if op.Op == "" {
		return Op{}, fmt.Errorf("%w: missing \"op\"", ErrInvalidOp)
	}
	return op, nil
}

// Session owns a tree, its engine and the last captured snapshot. Apply
// mutates the tree, Step re-measures incrementally and reports what moved.
type Session struct {
	tree     *tree.Tree
	engine   *torin.Engine[tree.NodeID]
	measurer torin.LayoutMeasurer[tree.NodeID]
	viewport torin.Area
	last     *snapshot.Snapshot
	step     int
	logger   *zap.Logger
}

// NewSession attaches an engine to t and runs the initial full pass.
func NewSession(t *tree.Tree, cfg config.LayoutConfig, logger *zap.Logger) (*Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("replay")

	m, err := textmeasure.FromConfig(cfg, t, textmeasure.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	s := &Session{
		tree:     t,
		engine:   torin.New[tree.NodeID](torin.WithLogger(logger)),
		measurer: m,
		viewport: torin.NewArea(0, 0, float32(cfg.ViewportWidth), float32(cfg.ViewportHeight)),
		logger:   logger,
	}
	t.Attach(s.engine)
	s.measure()
	return s, nil
}

// Snapshot is the layout as of the last step.
func (s *Session) Snapshot() *snapshot.Snapshot { return s.last }

// Steps is the number of steps taken so far.
func (s *Session) Steps() int { return s.step }

// Engine exposes the layout cache.
func (s *Session) Engine() *torin.Engine[tree.NodeID] { return s.engine }

// Tree exposes the document.
func (s *Session) Tree() *tree.Tree { return s.tree }

// Step re-measures after the operations applied since the previous step and
// returns the step number with the changes.
func (s *Session) Step() (int, []snapshot.Change) {
	before := s.last
	s.measure()
	s.step++
	s.last.Step = s.step
	return s.step, snapshot.Diff(before, s.last)
}

func (s *Session) measure() {
	dirty := len(s.engine.DirtyNodes())
	s.engine.Measure(s.tree.Root(), s.viewport, s.measurer, s.tree)
	s.last = snapshot.Capture(s.tree, s.engine, s.viewport)
	s.logger.Debug("Measured tree.", zap.Int("step", s.step), zap.Int("dirty", dirty), zap.Int("nodes", len(s.last.Nodes)))
}

// Apply performs one operation on the tree. The engine learns about it
// through the tree's invalidation hooks.
func (s *Session) Apply(op Op) error {
	var err error
	switch op.Op {
	case OpUpdate:
		err = s.update(op)
	case OpAdd:
		err = s.add(op)
	case OpRemove:
		var id tree.NodeID
		if id, err = s.resolve(op.Target); err == nil {
			err = s.tree.Remove(id)
		}
	case OpMove:
		var id tree.NodeID
		if id, err = s.resolve(op.Target); err == nil {
			if op.Index == nil {
				return fmt.Errorf("%w: move needs an index", ErrInvalidOp)
			}
			err = s.tree.Move(id, *op.Index)
		}
	case OpText:
		var id tree.NodeID
		if id, err = s.resolve(op.Target); err == nil {
			text := ""
			if op.Text != nil {
				text = *op.Text
			}
			err = s.tree.SetText(id, text)
		}
	case OpResize:
		if op.Width <= 0 || op.Height <= 0 {
			return fmt.Errorf("%w: resize needs a positive width and height", ErrInvalidOp)
		}
		s.viewport = torin.NewArea(0, 0, op.Width, op.Height)
	case OpInvalidate:
		err = s.invalidate(op)
	default:
		return fmt.Errorf("%w: unknown op %q", ErrInvalidOp, op.Op)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op.Op, err)
	}
	s.logger.Debug("Applied replay operation.", zap.String("op", op.Op), zap.String("target", op.Target))
	return nil
}

func (s *Session) update(op Op) error {
	id, err := s.resolve(op.Target)
	if err != nil {
		return err
	}
	if len(op.Attrs) > 0 {
		node, _ := s.tree.GetNode(id)
		if err := tree.ApplyAttributes(&node, op.Attrs); err != nil {
			return err
		}
		if err := s.tree.Update(id, node); err != nil {
			return err
		}
	}
	if op.Text != nil {
		return s.tree.SetText(id, *op.Text)
	}
	return nil
}

func (s *Session) add(op Op) error {
	parent := s.tree.Root()
	if op.Parent != "" {
		var err error
		if parent, err = s.resolve(op.Parent); err != nil {
			return err
		}
	}
	kind := op.Kind
	if kind == "" {
		kind = "box"
	}
	var node torin.Node
	if err := tree.ApplyAttributes(&node, op.Attrs); err != nil {
		return err
	}
	index := -1
	if op.Index != nil {
		index = *op.Index
	}
	id, err := s.tree.Insert(parent, index, kind, node)
	if err != nil {
		return err
	}
	if op.ID != "" {
		if err := s.tree.SetName(id, op.ID); err != nil {
			return err
		}
	}
	if op.Text != nil {
		return s.tree.SetText(id, *op.Text)
	}
	return nil
}

func (s *Session) invalidate(op Op) error {
	id, err := s.resolve(op.Target)
	if err != nil {
		return err
	}
	switch op.Reason {
	case "", torin.DirtyLayout.String():
		s.engine.Invalidate(id)
	case torin.DirtyReorder.String():
		s.engine.InvalidateWithReason(id, torin.DirtyReorder)
	case torin.DirtyInnerLayout.String():
		s.engine.InvalidateWithReason(id, torin.DirtyInnerLayout)
	default:
		return fmt.Errorf("%w: unknown reason %q", ErrInvalidOp, op.Reason)
	}
	return nil
}

// resolve maps a name or "#N" to a node id.
func (s *Session) resolve(ref string) (tree.NodeID, error) {
	if ref == "" {
		return 0, fmt.Errorf("%w: missing target", ErrInvalidOp)
	}
	if raw, ok := strings.CutPrefix(ref, "#"); ok {
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: bad node reference %q", ErrInvalidOp, ref)
		}
		id := tree.NodeID(n)
		if _, ok := s.tree.GetNode(id); !ok {
			return 0, fmt.Errorf("%w: %s", tree.ErrNodeNotFound, ref)
		}
		return id, nil
	}
	return s.tree.Lookup(ref)
}
