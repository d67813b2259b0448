package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/storeit/internal/client/client"
	"github.com/dmitrijs2005/storeit/internal/client/notify"
	"github.com/dmitrijs2005/storeit/internal/client/route"
	"github.com/dmitrijs2005/storeit/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// SignIn authenticates with email and a prompted password and stores the
// returned credential. An empty email is prompted for as well.
func (a *App) SignIn(ctx context.Context, email string) error {
	email, err := a.promptIfEmpty(email, "Enter email")
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, "Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := client.ValidateSignIn(email, string(password)); err != nil {
		return a.fail(ctx, "sign in", err)
	}
	token, err := a.api.SignIn(ctx, email, string(password))
	if err != nil {
		return a.fail(ctx, "sign in", err)
	}
	return a.startSession(ctx, token, "Signed in as "+email)
}

// SignUp creates an account and signs it in.
func (a *App) SignUp(ctx context.Context, fullName, email string) error {
	fullName, err := a.promptIfEmpty(fullName, "Enter full name")
	if err != nil {
		return err
	}
	email, err = a.promptIfEmpty(email, "Enter email")
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, "Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)
	confirm, err := getPassword(a.reader, "Confirm password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if err := client.ValidateSignUp(fullName, email, string(password), string(confirm)); err != nil {
		return a.fail(ctx, "sign up", err)
	}
	token, err := a.api.SignUp(ctx, fullName, email, string(password))
	if err != nil {
		return a.fail(ctx, "sign up", err)
	}
	return a.startSession(ctx, token, "Welcome, "+fullName)
}

func (a *App) startSession(ctx context.Context, token, greeting string) error {
	if err := a.session.SetToken(token); err != nil {
		return a.fail(ctx, "store credential", err)
	}
	a.user = nil
	a.nav.Navigate(route.Dashboard)
	a.log.Info(ctx, "signed in")
	notify.Success(a.notifier, greeting)
	if !a.interactive {
		// Nothing outlives this process; hand the credential to the caller.
		fmt.Fprintf(a.out, "%s=%s\n", EnvToken, token)
	}
	return nil
}

// SignOut ends the session on the backend and erases the local credential.
func (a *App) SignOut(ctx context.Context) error {
	if err := a.requireCredential(ctx, "sign out"); err != nil {
		return err
	}
	if err := a.api.SignOut(ctx); err != nil {
		return a.fail(ctx, "sign out", err)
	}
	a.session.Clear()
	a.user = nil
	a.nav.Navigate(route.SignIn)
	notify.Info(a.notifier, "Signed out")
	return nil
}

// WhoAmI prints the signed-in account.
func (a *App) WhoAmI(ctx context.Context) error {
	if err := a.requireCredential(ctx, "whoami"); err != nil {
		return err
	}
	a.user = nil
	u, err := a.currentUser(ctx)
	if err != nil {
		return a.fail(ctx, "whoami", err)
	}
	fmt.Fprintf(a.out, "%s <%s>\nid: %s\n", u.FullName, u.Email, u.ID)
	return nil
}

func (a *App) promptIfEmpty(v, prompt string) (string, error) {
	if v != "" {
		return v, nil
	}
	return getSimpleText(a.reader, prompt, a.out)
}
