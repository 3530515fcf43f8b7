package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/1anshu-stack/backend/internal/client/models"
)

func printUser(w io.Writer, u *models.User) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", u.ID)
	fmt.Fprintf(tw, "Username:\t%s\n", u.Username)
	fmt.Fprintf(tw, "Email:\t%s\n", u.Email)
	fmt.Fprintf(tw, "Full name:\t%s\n", u.FullName)
	fmt.Fprintf(tw, "Avatar:\t%s\n", u.AvatarURL)
	if u.CoverImageURL != "" {
		fmt.Fprintf(tw, "Cover image:\t%s\n", u.CoverImageURL)
	}
	_ = tw.Flush()
}

func (a *App) Me(ctx context.Context) error {
	u, err := a.api.Me(ctx)
	if err != nil {
		return a.report(err)
	}
	printUser(a.out, u)
	return nil
}

func (a *App) UpdateAccount(ctx context.Context) error {
	v, err := a.prompts("New username", "New full name")
	if err != nil {
		return err
	}

	u, err := a.api.UpdateAccount(ctx, v[0], v[1])
	if err != nil {
		return a.report(err)
	}
	a.userName = u.Username
	printUser(a.out, u)
	return nil
}

func (a *App) UpdateAvatar(ctx context.Context) error {
	return a.replaceImage(ctx, "Avatar image path", a.api.UpdateAvatar)
}

func (a *App) UpdateCoverImage(ctx context.Context) error {
	return a.replaceImage(ctx, "Cover image path", a.api.UpdateCoverImage)
}

func (a *App) replaceImage(ctx context.Context, prompt string, update func(context.Context, string) (*models.User, error)) error {
	path, err := getSimpleText(a.reader, prompt, a.out)
	if err != nil {
		return err
	}

	u, err := update(ctx, path)
	if err != nil {
		return a.report(err)
	}
	printUser(a.out, u)
	return nil
}

func (a *App) Channel(ctx context.Context, username string) error {
	ch, err := a.api.Channel(ctx, username)
	if err != nil {
		return a.report(err)
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Channel:\t%s (%s)\n", ch.Username, ch.FullName)
	fmt.Fprintf(tw, "Subscribers:\t%d\n", ch.SubscribersCount)
	fmt.Fprintf(tw, "Subscribed to:\t%d\n", ch.ChannelsSubscribedToCount)
	fmt.Fprintf(tw, "You subscribe:\t%t\n", ch.IsSubscribed)
	return tw.Flush()
}

func (a *App) History(ctx context.Context) error {
	h, err := a.api.WatchHistory(ctx)
	if err != nil {
		return a.report(err)
	}
	if len(h) == 0 {
		fmt.Fprintln(a.out, "Watch history is empty")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WATCHED\tTITLE\tOWNER\tVIEWS")
	for _, v := range h {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", v.WatchedAt.Format("2006-01-02 15:04"), v.Title, v.Owner.Username, v.Views)
	}
	return tw.Flush()
}
