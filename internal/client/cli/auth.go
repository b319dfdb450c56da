package cli

import (
	"context"
	"fmt"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

func (a *App) readCredentials() (string, []byte, error) {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return "", nil, err
	}
	if email, err = requireText(email, "email"); err != nil {
		return "", nil, err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return "", nil, err
	}
	return email, password, nil
}

// Register prompts for an email and password, creates the account and
// signs it in.
func (a *App) Register(ctx context.Context) error {
	email, password, err := a.readCredentials()
	if err != nil {
		return err
	}
	defer clear(password)

	rctx, cancel := a.requestContext(ctx)
	defer cancel()
	if err := a.auth.Register(rctx, email, string(password)); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Account created, signed in as %s\n", email)
	return nil
}

// Login prompts for credentials and signs in. The synchronizer loads the
// user's data as part of the identity change.
func (a *App) Login(ctx context.Context) error {
	email, password, err := a.readCredentials()
	if err != nil {
		return err
	}
	defer clear(password)

	rctx, cancel := a.requestContext(ctx)
	defer cancel()
	if err := a.auth.SignIn(rctx, email, string(password)); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Signed in as %s, %d clients loaded\n", email, len(a.sync.Clients()))
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	rctx, cancel := a.requestContext(ctx)
	defer cancel()
	if err := a.auth.SignOut(rctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Signed out")
	return nil
}

func (a *App) WhoAmI(context.Context) error {
	u := a.auth.CurrentUser()
	if u == nil {
		return errLoginRequired
	}
	fmt.Fprintf(a.out, "%s (%s)\n", u.Email, u.ID)
	return nil
}
