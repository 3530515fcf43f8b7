package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/1anshu-stack/backend/internal/client/client"
	"github.com/1anshu-stack/backend/internal/client/models"
	"github.com/1anshu-stack/backend/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// prompts asks for each label in order and stops at the first input error.
func (a *App) prompts(labels ...string) ([]string, error) {
	values := make([]string, 0, len(labels))
	for _, l := range labels {
		v, err := getSimpleText(a.reader, l, a.out)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

// report prints err for the user and returns it unchanged.
func (a *App) report(err error) error {
	var re *client.ResponseError
	switch {
	case errors.As(err, &re):
		fmt.Fprintf(a.out, "Error: %s\n", re.Message)
	case errors.Is(err, client.ErrUnavailable):
		fmt.Fprintln(a.out, "Server unavailable, try again later")
	case errors.Is(err, client.ErrNotLoggedIn):
		fmt.Fprintln(a.out, "Please log in first")
	default:
		fmt.Fprintf(a.out, "Error: %v\n", err)
	}
	return err
}

// Register prompts for the account fields and image paths and creates the
// account. The password is wiped before returning.
func (a *App) Register(ctx context.Context) error {
	v, err := a.prompts("Enter full name", "Enter email", "Enter username")
	if err != nil {
		return err
	}

	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	files, err := a.prompts("Avatar image path", "Cover image path (optional)")
	if err != nil {
		return err
	}

	u, err := a.api.Register(ctx, models.RegisterRequest{
		FullName:       v[0],
		Email:          v[1],
		Username:       v[2],
		Password:       string(password),
		AvatarPath:     files[0],
		CoverImagePath: files[1],
	})
	if err != nil {
		return a.report(err)
	}

	fmt.Fprintf(a.out, "Registered %s, you can log in now\n", u.Username)
	return nil
}

// Login prompts for a username or email and a password and starts a session.
func (a *App) Login(ctx context.Context) error {
	who, err := getSimpleText(a.reader, "Enter username or email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.api.Login(ctx, who, string(password))
	if err != nil {
		return a.report(err)
	}

	a.userName = u.Username
	fmt.Fprintf(a.out, "Logged in as %s\n", u.Username)
	return nil
}

// Logout ends the session; the local session is dropped even if the server
// call fails.
func (a *App) Logout(ctx context.Context) error {
	err := a.api.Logout(ctx)
	a.userName = ""
	if err != nil {
		return a.report(err)
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) Refresh(ctx context.Context) error {
	if err := a.api.Refresh(ctx); err != nil {
		if !a.api.LoggedIn() {
			a.userName = ""
		}
		return a.report(err)
	}
	fmt.Fprintln(a.out, "Session refreshed")
	return nil
}

func (a *App) ChangePassword(ctx context.Context) error {
	oldPassword, err := getPassword("Current password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(oldPassword)

	newPassword, err := getPassword("New password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(newPassword)

	if err := a.api.ChangePassword(ctx, string(oldPassword), string(newPassword)); err != nil {
		return a.report(err)
	}
	fmt.Fprintln(a.out, "Password changed")
	return nil
}
