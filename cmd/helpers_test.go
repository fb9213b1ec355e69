// File: cmd/helpers_test.go
package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/torin/internal/config"
)

const rowDoc = `<box id="root" width="fill" height="fill" direction="horizontal">
  <box id="a" width="50" height="20"/>
  <text id="label">hello</text>
</box>`

const columnDoc = `{"kind": "box", "id": "root", "attrs": {"width": "fill", "height": "fill"},
  "children": [{"kind": "box", "id": "top", "attrs": {"width": "fill", "height": "10"}}]}`

// newTestConfig returns defaults with a small viewport, the cell measurer
// and compact JSON.
func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.NewDefaultConfig()
	cfg.SetViewport(200, 100)
	cfg.LayoutCfg.Measurer = config.MeasurerCell
	cfg.OutputCfg.Indent = false
	cfg.BatchCfg.Concurrency = 2
	require.NoError(t, cfg.Validate())
	return cfg
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// syncBuffer is a bytes.Buffer safe to read while a command writes to it.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
