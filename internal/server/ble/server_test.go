package ble_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/paypal/gatt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/hidrelay/internal/log"
	"github.com/Alia5/hidrelay/internal/server/ble"
	th "github.com/Alia5/hidrelay/internal/testing"
	"github.com/Alia5/hidrelay/shortcut"
)

const peer = "AA:BB:CC:DD:EE:FF"

type fakeInjector struct {
	mu    sync.Mutex
	calls [][]shortcut.Combo
	err   error
}

func (f *fakeInjector) Inject(_ context.Context, combos []shortcut.Combo) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.calls = append(f.calls, combos)
	return nil
}

func (f *fakeInjector) injected() [][]shortcut.Combo {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]shortcut.Combo(nil), f.calls...)
}

func newServer(cfg ble.Config, trust th.StaticTrust, inj ble.Injector) *ble.Server {
	return ble.New(cfg, trust, inj, th.DiscardLogger(), log.NewRaw(nil))
}

func comboNames(combos []shortcut.Combo) []string {
	names := make([]string, 0, len(combos))
	for _, c := range combos {
		names = append(names, c.String())
	}
	return names
}

func TestHandleCommandInjectsParsedCombos(t *testing.T) {
	inj := &fakeInjector{}
	srv := newServer(ble.Config{RequireTrusted: true}, th.StaticTrust{peer: true}, inj)

	data := []byte("Win-R n,o,t,e,p,a,d Enter")
	status := srv.HandleCommand(context.Background(), peer, data)
	assert.Equal(t, byte(gatt.StatusSuccess), status)

	calls := inj.injected()
	require.Len(t, calls, 1)
	assert.Equal(t,
		[]string{"LEFTMETA+R", "N", "O", "T", "E", "P", "A", "D", "ENTER"},
		comboNames(calls[0]))
	assert.Equal(t, data, srv.LastCommand())
}

func TestHandleCommandRejectsUntrustedCentral(t *testing.T) {
	inj := &fakeInjector{}
	srv := newServer(ble.Config{RequireTrusted: true}, th.StaticTrust{"11:22:33:44:55:66": true}, inj)

	status := srv.HandleCommand(context.Background(), peer, []byte("CTRL-C"))
	assert.Equal(t, ble.StatusInsufficientAuthorization, status)
	assert.Empty(t, inj.injected(), "untrusted writes must never reach the injector")
	assert.Empty(t, srv.LastCommand())
}

func TestHandleCommandTrustDisabled(t *testing.T) {
	inj := &fakeInjector{}
	srv := newServer(ble.Config{}, th.StaticTrust{}, inj)

	status := srv.HandleCommand(context.Background(), peer, []byte("CTRL-C"))
	assert.Equal(t, byte(gatt.StatusSuccess), status)
	require.Len(t, inj.injected(), 1)
}

func TestHandleCommandStrictParse(t *testing.T) {
	inj := &fakeInjector{}
	srv := newServer(ble.Config{RequireTrusted: true}, th.StaticTrust{peer: true}, inj)

	status := srv.HandleCommand(context.Background(), peer, []byte("Foo-A B"))
	assert.Equal(t, byte(gatt.StatusUnexpectedError), status)
	assert.Empty(t, inj.injected(), "a command with unknown keys must inject nothing")
	assert.Empty(t, srv.LastCommand())
}

func TestHandleCommandPartialParse(t *testing.T) {
	inj := &fakeInjector{}
	srv := newServer(ble.Config{RequireTrusted: true, PartialParse: true}, th.StaticTrust{peer: true}, inj)

	status := srv.HandleCommand(context.Background(), peer, []byte("Foo-A B"))
	assert.Equal(t, byte(gatt.StatusSuccess), status)

	calls := inj.injected()
	require.Len(t, calls, 1)
	assert.Equal(t, []string{"A", "B"}, comboNames(calls[0]))
}

func TestHandleCommandInjectionFailure(t *testing.T) {
	inj := &fakeInjector{err: errors.New("usb host not ready")}
	srv := newServer(ble.Config{RequireTrusted: true}, th.StaticTrust{peer: true}, inj)

	status := srv.HandleCommand(context.Background(), peer, []byte("CTRL-C"))
	assert.Equal(t, byte(gatt.StatusUnexpectedError), status)
	assert.Empty(t, srv.LastCommand(), "failed commands must not become the last accepted one")
}

func TestConnectionLifecycle(t *testing.T) {
	srv := newServer(ble.Config{}, th.StaticTrust{}, &fakeInjector{})
	assert.Equal(t, ble.StateIdle, srv.State())
	assert.Empty(t, srv.Peer())

	srv.CentralConnected(peer)
	assert.Equal(t, ble.StateConnected, srv.State())
	assert.Equal(t, peer, srv.Peer())

	srv.CentralDisconnected()
	assert.Equal(t, ble.StateIdle, srv.State())
	assert.Empty(t, srv.Peer())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", ble.StateIdle.String())
	assert.Equal(t, "advertising", ble.StateAdvertising.String())
	assert.Equal(t, "connected", ble.StateConnected.String())
	assert.Equal(t, "unknown", ble.State(9).String())
}
