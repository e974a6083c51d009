package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vox-librorum/vox-desk/internal/library"
	"github.com/vox-librorum/vox-desk/internal/workspace"
)

func newTestREPL(t *testing.T, input string) (*deskREPL, *workspace.MemoryStore, *bytes.Buffer) {
	t.Helper()
	lib, err := library.Default()
	require.NoError(t, err)

	store := workspace.NewMemoryStore(lib.DemoProjects())
	ctrl := workspace.NewController(store, store, workspace.Options{
		Catalog:   lib,
		AfterFunc: func(time.Duration, func()) {},
	})
	require.NoError(t, ctrl.Init(context.Background()))

	var out bytes.Buffer
	return &deskREPL{
		ctrl:      ctrl,
		lib:       lib,
		p:         newPrompter(strings.NewReader(input), &out),
		out:       &out,
		replyWait: 10 * time.Millisecond,
	}, store, &out
}

func TestDeskREPL_MoveInPlace(t *testing.T) {
	r, _, out := newTestREPL(t, "move 2 2\nmove 1 9\nquit\n")
	before := r.ctrl.Resources()

	require.NoError(t, r.run(context.Background()))
	assert.Contains(t, out.String(), "Resource 2 is already in place.")
	assert.Contains(t, out.String(), "Positions are out of range.")
	assert.Equal(t, before, r.ctrl.Resources())
}

func TestDeskREPL_EndsWhenSignInRequired(t *testing.T) {
	r, store, out := newTestREPL(t, "move 1 2\nshow\nquit\n")
	store.SaveErr = workspace.ErrUnauthenticated

	require.NoError(t, r.run(context.Background()))
	assert.Contains(t, out.String(), "Session expired. Run `vox desk` to sign in again.")
	assert.Empty(t, r.ctrl.Resources())
	assert.Equal(t, 1, strings.Count(out.String(), "== The Salt Line =="), "show after expiry must not run")
}

func TestPrompter_PasswordKeptVerbatim(t *testing.T) {
	var out bytes.Buffer
	p := newPrompter(strings.NewReader("  nova  \n  s3cret \r\n"), &out)

	user, ok := p.ask("Username", "")
	require.True(t, ok)
	assert.Equal(t, "nova", user)

	pw, ok := p.password("Password")
	require.True(t, ok)
	assert.Equal(t, "  s3cret ", pw)
	assert.Equal(t, -1, p.tty)

	_, ok = p.password("Password")
	assert.False(t, ok)
}
