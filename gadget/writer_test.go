package gadget_test

import (
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/Alia5/hidrelay/gadget"
)

type fakeDevice struct {
	writes    [][]byte
	failuresN int
	failErr   error
	deadlines int
	closed    bool
}

func (f *fakeDevice) Write(p []byte) (int, error) {
	if f.failuresN > 0 {
		f.failuresN--
		return 0, f.failErr
	}
	f.writes = append(f.writes, append([]byte(nil), p...))
	return len(p), nil
}

func (f *fakeDevice) Close() error {
	f.closed = true
	return nil
}

func (f *fakeDevice) SetWriteDeadline(t time.Time) error {
	f.deadlines++
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestFlushWritesReport(t *testing.T) {
	dev := &fakeDevice{}
	w := gadget.NewTestWriter("keyboard", dev, discardLogger())

	report := []byte{0x02, 0x00, 0x04, 0x00, 0x00, 0x00, 0x00, 0x00}
	require.NoError(t, w.Flush(report))

	require.Len(t, dev.writes, 1)
	assert.Equal(t, report, dev.writes[0])
	assert.Equal(t, 1, dev.deadlines)
}

func TestFlushRetriesTransientErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"write deadline exceeded", os.ErrDeadlineExceeded},
		{"device busy", unix.EAGAIN},
		{"udc detached", unix.ESHUTDOWN},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			dev := &fakeDevice{failuresN: 2, failErr: c.err}
			w := gadget.NewTestWriter("mouse", dev, discardLogger())

			require.NoError(t, w.Flush([]byte{0x00, 0x05, 0x00, 0x00}))
			assert.Len(t, dev.writes, 1)
		})
	}
}

func TestFlushExhaustsRetries(t *testing.T) {
	dev := &fakeDevice{failuresN: 10, failErr: unix.EAGAIN}
	w := gadget.NewTestWriter("keyboard", dev, discardLogger())

	err := w.Flush([]byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00})
	require.Error(t, err)

	var writeErr *gadget.WriteError
	require.ErrorAs(t, err, &writeErr)
	assert.Equal(t, "keyboard", writeErr.Gadget)
	assert.Equal(t, 3, writeErr.Attempts)
	assert.ErrorIs(t, err, unix.EAGAIN)
	assert.Empty(t, dev.writes)
}

func TestFlushFailsFastOnFatalErrors(t *testing.T) {
	dev := &fakeDevice{failuresN: 10, failErr: unix.ENODEV}
	w := gadget.NewTestWriter("consumer", dev, discardLogger())

	err := w.Flush([]byte{0x00, 0x00})
	require.Error(t, err)

	var writeErr *gadget.WriteError
	require.ErrorAs(t, err, &writeErr)
	assert.Equal(t, 1, writeErr.Attempts)
	assert.ErrorIs(t, err, unix.ENODEV)
}

func TestCloseReleasesHandle(t *testing.T) {
	dev := &fakeDevice{}
	w := gadget.NewTestWriter("keyboard", dev, discardLogger())

	require.NoError(t, w.Close())
	assert.True(t, dev.closed)
}
