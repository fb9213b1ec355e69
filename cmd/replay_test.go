// File: cmd/replay_test.go
package cmd

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/torin/internal/config"
	"github.com/xkilldash9x/torin/internal/replay"
	"github.com/xkilldash9x/torin/internal/snapshot"
)

const script = `{"op":"update","target":"a","attrs":{"width":"60"}}

{"op":"text","target":"label","text":"hello world"}
`

func TestRunReplay_Text(t *testing.T) {
	dir := t.TempDir()
	doc := writeFile(t, dir, "row.xml", rowDoc)
	path := writeFile(t, dir, "script.ndjson", script)
	cfg := newTestConfig(t)
	cfg.OutputCfg.Format = config.FormatText

	var out bytes.Buffer
	require.NoError(t, runReplay(context.Background(), zaptest.NewLogger(t), cfg, doc, path, replayOptions{}, &out))

	got := out.String()
	assert.Contains(t, got, "text#label")
	assert.Contains(t, got, "step 1: 2 change(s)\n"+
		"  resized  a (0,0 50x20) -> (0,0 60x20)\n"+
		"  moved    label (50,0 5x1) -> (60,0 5x1)\n")
	assert.Contains(t, got, "step 2: 1 change(s)\n"+
		"  resized  label (60,0 5x1) -> (60,0 11x1)\n")
}

func TestRunReplay_JSON(t *testing.T) {
	dir := t.TempDir()
	doc := writeFile(t, dir, "row.xml", rowDoc)
	path := writeFile(t, dir, "script.ndjson", script)
	cfg := newTestConfig(t)
	cfg.OutputCfg.Compress = true

	var out bytes.Buffer
	require.NoError(t, runReplay(context.Background(), zaptest.NewLogger(t), cfg, doc, path, replayOptions{}, &out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3, "compression is ignored for streamed output")
	initial, err := snapshot.Decode(strings.NewReader(lines[0]))
	require.NoError(t, err)
	assert.Equal(t, doc, initial.Source)
	assert.JSONEq(t,
		`{"step":2,"changes":[{"id":2,"name":"label","kind":"resized","before":{"x":60,"y":0,"width":5,"height":1},"after":{"x":60,"y":0,"width":11,"height":1}}]}`,
		lines[2])
}

func TestRunReplay_Rate(t *testing.T) {
	dir := t.TempDir()
	doc := writeFile(t, dir, "row.xml", rowDoc)
	path := writeFile(t, dir, "script.ndjson", script)
	cfg := newTestConfig(t)
	cfg.OutputCfg.Format = config.FormatText

	var out bytes.Buffer
	started := time.Now()
	require.NoError(t, runReplay(context.Background(), zaptest.NewLogger(t), cfg, doc, path, replayOptions{rate: 20}, &out))
	assert.GreaterOrEqual(t, time.Since(started), 40*time.Millisecond, "the second step waits for a token")
	assert.Contains(t, out.String(), "step 2:")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := runReplay(ctx, zaptest.NewLogger(t), cfg, doc, path, replayOptions{rate: 1}, &bytes.Buffer{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunReplay_Errors(t *testing.T) {
	dir := t.TempDir()
	doc := writeFile(t, dir, "row.xml", rowDoc)
	cfg := newTestConfig(t)
	logger := zaptest.NewLogger(t)

	bad := writeFile(t, dir, "bad.ndjson", `{"op":"update","target":"a","attrs":{"width":"60"}}
{"op":"remove","target":"ghost"}
`)
	err := runReplay(context.Background(), logger, cfg, doc, bad, replayOptions{}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "step 2: remove")

	garbled := writeFile(t, dir, "garbled.ndjson", "not json\n")
	err = runReplay(context.Background(), logger, cfg, doc, garbled, replayOptions{}, &bytes.Buffer{})
	assert.ErrorIs(t, err, replay.ErrInvalidOp)

	err = runReplay(context.Background(), logger, cfg, doc, dir+"/missing.ndjson", replayOptions{}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "failed to open replay script")

	err = runReplay(context.Background(), logger, cfg, doc, dir+"/missing.ndjson", replayOptions{follow: true, poll: true}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "failed to tail replay script")
}

func TestRunReplay_Follow(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	doc := writeFile(t, dir, "row.xml", rowDoc)
	path := writeFile(t, dir, "script.ndjson", `{"op":"update","target":"a","attrs":{"width":"60"}}`+"\n")
	cfg := newTestConfig(t)
	cfg.OutputCfg.Format = config.FormatText

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out := &syncBuffer{}
	done := make(chan error, 1)
	go func() {
		done <- runReplay(ctx, zaptest.NewLogger(t), cfg, doc, path, replayOptions{follow: true, poll: true}, out)
	}()

	require.Eventually(t, func() bool { return strings.Contains(out.String(), "step 1:") },
		5*time.Second, 20*time.Millisecond)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString(`{"op":"resize","width":100,"height":50}` + "\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	require.Eventually(t, func() bool { return strings.Contains(out.String(), "step 2: 1 change(s)") },
		5*time.Second, 20*time.Millisecond)
	assert.Contains(t, out.String(), "resized  root (0,0 200x100) -> (0,0 100x50)")

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("replay did not stop after cancellation")
	}
}
