package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

const helpText = `Available commands:
  signup     create an account
  login      sign in with email or patient ID
  dashboard  show the dashboard
  stay       stay signed in
  logout     sign out
  whoami     show the signed-in patient
  strength   check a password's strength
  help       show this help
  exit       leave the program`

// Run reads commands until EOF or "exit". Command errors are printed and
// the loop goes on.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	if err := a.Start(ctx); err != nil {
		a.log.Sugar().Warnw("startup check failed", "error", err)
	}

	for {
		line, err := a.prompt.Line(fmt.Sprintf("portal (%s)", a.status(ctx)))
		if errors.Is(err, io.EOF) {
			a.println()
			return nil
		}
		if err != nil {
			return err
		}
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}

		var cmdErr error
		switch args[0] {
		case "help":
			a.println(helpText)
		case "signup":
			cmdErr = a.Signup(ctx)
		case "login":
			cmdErr = a.Login(ctx)
		case "dashboard":
			cmdErr = a.Dashboard(ctx)
		case "stay":
			cmdErr = a.Stay(ctx)
		case "logout":
			cmdErr = a.Logout(ctx)
		case "whoami":
			cmdErr = a.WhoAmI(ctx)
		case "strength":
			cmdErr = a.Strength(ctx)
		case "exit", "quit":
			a.println("Bye")
			return nil
		default:
			a.println("Unknown command. Type 'help' for a list of commands.")
		}

		if errors.Is(cmdErr, io.EOF) {
			a.println()
			return nil
		}
		if cmdErr != nil {
			a.println("Error:", cmdErr)
		}
	}
}
