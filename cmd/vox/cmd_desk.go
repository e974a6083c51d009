package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	authdomain "github.com/vox-librorum/vox-desk/internal/auth/domain"
	"github.com/vox-librorum/vox-desk/internal/deskclient"
	"github.com/vox-librorum/vox-desk/internal/workspace"
)

type deskOptions struct {
	server    string
	offline   bool
	user      string
	pins      string
	replyWait time.Duration
}

func newDeskCmd(opts *rootOptions) *cobra.Command {
	do := &deskOptions{replyWait: 3 * time.Second}

	cmd := &cobra.Command{
		Use:   "desk",
		Short: "Sign in and open the research desk",
		Long: `desk signs in to the archive server and opens an interactive workspace.

With --offline no server is contacted: sign in with an archive passphrase and
work on the demo investigations held in memory. Pins are kept on this machine.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDesk(cmd, opts, do)
		},
	}

	cmd.Flags().StringVar(&do.server, "server", "http://localhost:8080", "archive server URL")
	cmd.Flags().BoolVar(&do.offline, "offline", false, "work without a server using a passphrase")
	cmd.Flags().StringVarP(&do.user, "user", "u", "", "username (prompted when empty)")
	cmd.Flags().StringVar(&do.pins, "pins", "", "pinned items file (default: voxPinned.json in the user config dir)")
	return cmd
}

func runDesk(cmd *cobra.Command, opts *rootOptions, do *deskOptions) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	p := newPrompter(cmd.InOrStdin(), out)

	lib, err := opts.library()
	if err != nil {
		return err
	}

	username := do.user
	if username == "" {
		username, _ = p.ask("Username", "")
	}
	password, _ := p.password("Password")

	var (
		user  authdomain.User
		store workspace.ProjectStore
	)
	if do.offline {
		user, err = deskclient.OfflineLogin(username, password)
		if err != nil {
			fmt.Fprintln(out, "Access denied.")
			return nil
		}
		store = workspace.NewMemoryStore(lib.DemoProjects())
	} else {
		client, err := deskclient.NewClient(do.server)
		if err != nil {
			return err
		}
		user, err = client.Login(ctx, username, password)
		switch {
		case errors.Is(err, deskclient.ErrUnreachable):
			fmt.Fprintf(out, "Archive server %s is unreachable. Use --offline to work locally.\n", do.server)
			return nil
		case errors.Is(err, deskclient.ErrDenied):
			fmt.Fprintf(out, "Access denied: %v\n", err)
			return nil
		case err != nil:
			return err
		}
		store = client
	}

	pinPath := do.pins
	if pinPath == "" {
		if pinPath, err = deskclient.DefaultPinPath(); err != nil {
			return err
		}
	}

	ctrl := workspace.NewController(store, deskclient.NewFilePinStore(pinPath), workspace.Options{
		Catalog: lib,
		Logger:  opts.logger,
	})
	if err := ctrl.Init(ctx); errors.Is(err, workspace.ErrUnauthenticated) {
		fmt.Fprintln(out, "Sign-in required. Run `vox desk` to sign in again.")
		return nil
	}

	fmt.Fprintf(out, "Welcome, %s. Type 'help' for commands.\n", user.Username)
	r := &deskREPL{ctrl: ctrl, lib: lib, p: p, out: out, replyWait: do.replyWait}
	return r.run(ctx)
}
