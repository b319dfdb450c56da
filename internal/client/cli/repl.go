package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL dispatches to.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error

	ListClients(ctx context.Context) error
	AddClient(ctx context.Context, args []string) error
	RenameClient(ctx context.Context, args []string) error
	DeleteClient(ctx context.Context, args []string) error

	OpenTab(ctx context.Context, args []string) error
	CloseTab(ctx context.Context, args []string) error
	ListTabs(ctx context.Context) error
	Show(ctx context.Context, args []string) error

	AddEntry(ctx context.Context, args []string) error
	DeleteEntry(ctx context.Context, args []string) error

	Export(ctx context.Context, args []string) error
	Share(ctx context.Context, args []string) error
	Refresh(ctx context.Context) error
}

var errLoginRequired = errors.New("please log in first")

// runREPL reads commands line by line and dispatches them to a. The first
// word is the command and the rest are its arguments. Errors returned by
// handlers are printed and the loop continues. It returns on EOF or on
// "exit" / "quit".
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("cb%s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if cmd == "exit" || cmd == "quit" {
			printlnFn("Bye!")
			return
		}
		if err := dispatch(ctx, a, cmd, args); err != nil {
			printlnFn("Error:", err)
		}
	}
}

func dispatch(ctx context.Context, a execIface, cmd string, args []string) error {
	switch cmd {
	case "help":
		if a.isLoggedIn() {
			printlnFn("Available commands: clients, addclient, rename, delclient, open, close, tabs, show, " +
				"addentry, delentry, export, share, refresh, whoami, logout, exit")
		} else {
			printlnFn("Available commands: register, login, exit")
		}
		return nil
	case "register":
		return a.Register(ctx)
	case "login":
		return a.Login(ctx)
	}

	if !a.isLoggedIn() {
		switch cmd {
		case "logout", "whoami", "clients", "c", "addclient", "rename", "delclient", "open", "close",
			"tabs", "show", "addentry", "delentry", "export", "share", "refresh":
			return errLoginRequired
		}
	}

	switch cmd {
	case "logout":
		return a.Logout(ctx)
	case "whoami":
		return a.WhoAmI(ctx)
	case "c", "clients":
		return a.ListClients(ctx)
	case "addclient":
		return a.AddClient(ctx, args)
	case "rename":
		return a.RenameClient(ctx, args)
	case "delclient":
		return a.DeleteClient(ctx, args)
	case "open":
		return a.OpenTab(ctx, args)
	case "close":
		return a.CloseTab(ctx, args)
	case "tabs":
		return a.ListTabs(ctx)
	case "show":
		return a.Show(ctx, args)
	case "addentry":
		return a.AddEntry(ctx, args)
	case "delentry":
		return a.DeleteEntry(ctx, args)
	case "export":
		return a.Export(ctx, args)
	case "share":
		return a.Share(ctx, args)
	case "refresh":
		return a.Refresh(ctx)
	default:
		printlnFn("Unknown command:", cmd)
		return nil
	}
}
