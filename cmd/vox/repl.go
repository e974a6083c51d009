package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/vox-librorum/vox-desk/internal/library"
	"github.com/vox-librorum/vox-desk/internal/workspace"
)

const deskHelp = `Commands:
  projects             list investigations
  load <id>            switch investigation
  new <title>          start an investigation
  show                 show the workspace
  library [query]      search the catalog
  add <id>             import a catalog item
  rm <id>              remove a resource
  move <from> <to>     reorder resources (positions start at 1)
  pin <id>             pin or unpin a resource
  pins                 list pinned items
  cite <id>            print a citation
  share                print the share link
  bookmark | focus     desk toggles
  say <text>           talk to the assistant
  log                  replay the conduit
  quit`

// deskREPL is the line-oriented view over one Workspace Controller.
type deskREPL struct {
	ctrl      *workspace.Controller
	lib       *library.Library
	p         *prompter
	out       io.Writer
	replyWait time.Duration
	seen      uint64
}

func (r *deskREPL) run(ctx context.Context) error {
	r.show()
	r.flush()
	for {
		line, ok := r.p.line("vox> ")
		if !ok {
			fmt.Fprintln(r.out)
			return nil
		}
		if line == "" {
			r.flush()
			continue
		}
		if r.exec(ctx, line) {
			return nil
		}
		r.flush()
		if r.ctrl.SignInRequired() {
			fmt.Fprintln(r.out, "Session expired. Run `vox desk` to sign in again.")
			return nil
		}
	}
}

// exec runs one command line and reports whether the desk should close.
func (r *deskREPL) exec(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	cmd := strings.ToLower(fields[0])
	arg := strings.TrimSpace(line[len(fields[0]):])

	switch cmd {
	case "quit", "exit":
		return true
	case "help", "?":
		fmt.Fprintln(r.out, deskHelp)
	case "projects":
		r.projects()
	case "show", "ls":
		r.show()
	case "load":
		if !r.ctrl.LoadProject(arg) {
			fmt.Fprintf(r.out, "No investigation %q.\n", arg)
			return false
		}
		r.show()
	case "new":
		if _, ok := r.ctrl.CreateProject(ctx, arg); !ok {
			fmt.Fprintln(r.out, "Usage: new <title>")
			return false
		}
		r.show()
	case "library":
		r.search(arg)
	case "add":
		if r.ctrl.ImportByID(ctx, arg) {
			r.show()
		}
	case "rm":
		if r.ctrl.RemoveResource(ctx, arg) {
			r.show()
		}
	case "move":
		r.move(ctx, fields[1:])
	case "pin":
		pinned, found := r.ctrl.TogglePinByID(ctx, arg)
		switch {
		case !found:
			fmt.Fprintf(r.out, "No resource %q.\n", arg)
		case pinned:
			fmt.Fprintf(r.out, "Pinned %s.\n", arg)
		default:
			fmt.Fprintf(r.out, "Unpinned %s.\n", arg)
		}
	case "pins":
		r.pins()
	case "cite":
		if text, ok := r.ctrl.Citation(arg); ok {
			fmt.Fprintln(r.out, text)
		}
	case "share":
		if text, ok := r.ctrl.ShareLink(); ok {
			fmt.Fprintln(r.out, text)
		}
	case "bookmark":
		r.ctrl.Bookmark()
	case "focus":
		r.ctrl.ToggleFocus()
	case "say":
		r.say(ctx, arg)
	case "log":
		r.seen = 0
	default:
		fmt.Fprintf(r.out, "Unknown command %q. Type 'help'.\n", cmd)
	}
	return false
}

// flush prints conduit entries appended since the last flush.
func (r *deskREPL) flush() {
	for _, e := range r.ctrl.Conduit().Since(r.seen) {
		mark := "  "
		if e.Emphasized {
			mark = "» "
		}
		fmt.Fprintf(r.out, "%s%s %s\n", mark, e.At.Format("15:04:05"), e.Text())
		r.seen = e.Seq
	}
}

// say submits text and waits for the assistant's answer.
func (r *deskREPL) say(ctx context.Context, text string) {
	entries, cancel := r.ctrl.Conduit().Subscribe(4)
	defer cancel()
	if !r.ctrl.Submit(text) {
		fmt.Fprintln(r.out, "Usage: say <text>")
		return
	}

	timeout := time.NewTimer(r.replyWait)
	defer timeout.Stop()
	for {
		select {
		case e := <-entries:
			if strings.HasPrefix(e.Text(), "Assistant:") {
				return
			}
		case <-timeout.C:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (r *deskREPL) move(ctx context.Context, args []string) {
	if len(args) != 2 {
		fmt.Fprintln(r.out, "Usage: move <from> <to>")
		return
	}
	from, err1 := strconv.Atoi(args[0])
	to, err2 := strconv.Atoi(args[1])
	n := len(r.ctrl.Resources())
	if err1 != nil || err2 != nil || from < 1 || from > n || to < 1 || to > n {
		fmt.Fprintln(r.out, "Positions are out of range.")
		return
	}
	if from == to {
		fmt.Fprintf(r.out, "Resource %d is already in place.\n", from)
		return
	}
	r.ctrl.Reorder(ctx, from-1, to-1)
	r.show()
}

func (r *deskREPL) projects() {
	st := r.ctrl.Snapshot()
	if len(st.Projects) == 0 {
		fmt.Fprintln(r.out, "No investigations yet. Use 'new <title>'.")
		return
	}
	for _, p := range st.Projects {
		mark := " "
		if p.Active {
			mark = "*"
		}
		fmt.Fprintf(r.out, "%s %-16s %s (%d)\n", mark, p.ID, p.Title, p.ResourceCount)
	}
}

func (r *deskREPL) show() {
	st := r.ctrl.Snapshot()
	fmt.Fprintf(r.out, "== %s ==\n", st.Title)
	if !st.Focus && st.Description != "" {
		fmt.Fprintln(r.out, st.Description)
	}
	for i, res := range st.Resources {
		pin := " "
		if res.Pinned {
			pin = "^"
		}
		fmt.Fprintf(r.out, "%2d. %s %-10s %s [%s]\n", i+1, pin, res.ID, res.Title, res.Type)
	}
}

func (r *deskREPL) pins() {
	pinned := r.ctrl.Pinned()
	if len(pinned) == 0 {
		fmt.Fprintln(r.out, "Nothing pinned.")
		return
	}
	for _, res := range pinned {
		fmt.Fprintf(r.out, "^ %-10s %s\n", res.ID, res.Title)
	}
}

func (r *deskREPL) search(query string) {
	items := r.lib.Search(query, "")
	if len(items) == 0 {
		fmt.Fprintln(r.out, "No artifacts match.")
		return
	}
	for _, a := range items {
		fmt.Fprintf(r.out, "  %-10s %-12s %s\n", a.ID, a.Type, a.Title)
	}
}
