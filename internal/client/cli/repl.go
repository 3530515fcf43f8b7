package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Refresh(ctx context.Context) error
	ChangePassword(ctx context.Context) error
	Me(ctx context.Context) error
	UpdateAccount(ctx context.Context) error
	UpdateAvatar(ctx context.Context) error
	UpdateCoverImage(ctx context.Context) error
	Channel(ctx context.Context, username string) error
	History(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the account CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. Unknown commands are reported back to the
// user. The loop exits on EOF or when the user types "exit" or "quit".
//
// Prompt & Commands
//
//	Not logged in:
//	  - help               — show available commands
//	  - register           — create an account
//	  - login              — authenticate
//	  - channel <username> — show a channel
//	  - exit | quit        — leave the program
//
//	Logged in, additionally:
//	  - me                 — show the current profile
//	  - account            — change username and full name
//	  - avatar | cover     — replace the avatar or cover image
//	  - passwd             — change the password
//	  - history            — show the watch history
//	  - refresh            — rotate the session tokens
//	  - logout             — log out
//
// Errors returned by command handlers are ignored here; handlers report
// their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("users %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: me, account, avatar, cover, passwd, channel <username>, history, refresh, logout, exit")
			} else {
				printlnFn("Available commands: register, login, channel <username>, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "refresh":
			_ = a.Refresh(ctx)

		case "passwd":
			_ = a.ChangePassword(ctx)

		case "me":
			_ = a.Me(ctx)

		case "account":
			_ = a.UpdateAccount(ctx)

		case "avatar":
			_ = a.UpdateAvatar(ctx)

		case "cover":
			_ = a.UpdateCoverImage(ctx)

		case "channel":
			if len(args) == 0 {
				printlnFn("Usage: channel <username>")
				continue
			}
			_ = a.Channel(ctx, args[0])

		case "history":
			_ = a.History(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			return
		}
	}
}
