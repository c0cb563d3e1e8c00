package gadget_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/hidrelay/gadget"
)

func TestFirstUDCPicksFirstController(t *testing.T) {
	udcDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(udcDir, "aa.usb"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(udcDir, "bb.usb"), 0o755))
	t.Cleanup(gadget.SetUDCClassDirForTest(udcDir))

	udc, err := gadget.FirstUDC()
	require.NoError(t, err)
	assert.Equal(t, "aa.usb", udc)
}

func TestFirstUDCWithoutController(t *testing.T) {
	t.Cleanup(gadget.SetUDCClassDirForTest(t.TempDir()))

	_, err := gadget.FirstUDC()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no udc controller")
}

func TestUDCStateTrimsKernelOutput(t *testing.T) {
	udcDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(udcDir, "dummy.usb"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(udcDir, "dummy.usb", "state"), []byte("configured\n"), 0o644))
	t.Cleanup(gadget.SetUDCClassDirForTest(udcDir))

	state, err := gadget.UDCState("dummy.usb")
	require.NoError(t, err)
	assert.Equal(t, "configured", state)
}

func TestWatchStateReportsFlips(t *testing.T) {
	udcDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(udcDir, "dummy.usb"), 0o755))
	statePath := filepath.Join(udcDir, "dummy.usb", "state")
	require.NoError(t, os.WriteFile(statePath, []byte("not attached\n"), 0o644))
	t.Cleanup(gadget.SetUDCClassDirForTest(udcDir))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes := make(chan bool, 8)
	done := make(chan struct{})
	go func() {
		gadget.WatchState(ctx, "dummy.usb", 2*time.Millisecond, discardLogger(), func(ready bool) {
			changes <- ready
		})
		close(done)
	}()

	select {
	case ready := <-changes:
		assert.False(t, ready)
	case <-time.After(2 * time.Second):
		t.Fatal("initial state never reported")
	}

	require.NoError(t, os.WriteFile(statePath, []byte("configured\n"), 0o644))
	select {
	case ready := <-changes:
		assert.True(t, ready)
	case <-time.After(2 * time.Second):
		t.Fatal("attach never reported")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
