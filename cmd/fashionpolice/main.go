// Command fashionpolice is a terminal client for the Fashion Police API.
// It signs in and prints the first page of every category the user follows.
//
//	FP_PASSWORD=... fashionpolice <username>
//
// API_BASE_URL, API_TIMEOUT and PAGE_SIZE come from .env, an optional
// config.yml and the environment (see internal/config).
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fashionpolice/fashion-police/internal/app"
	"github.com/fashionpolice/fashion-police/internal/config"
)

func main() {
	cfg, err := config.Load(config.Options{})
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: FP_PASSWORD=... fashionpolice <username>")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, app.New(cfg, logger), os.Args[1], os.Getenv("FP_PASSWORD")); err != nil {
		logger.Error("fashionpolice failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, a *app.App, username, password string) error {
	sess, err := a.Accounts.SignIn(ctx, username, password)
	if err != nil {
		return fmt.Errorf("signing in: %w", err)
	}
	fmt.Printf("signed in as %s (id %d)\n", sess.Username, sess.ID)

	feeds := a.SubscribedFeeds()
	if len(feeds) == 0 {
		fmt.Println("not subscribed to any category")
		return nil
	}
	for _, f := range feeds {
		if err := f.Load(ctx); err != nil {
			return fmt.Errorf("loading %s: %w", f.State().Category.Name, err)
		}
		st := f.State()
		fmt.Printf("\n%s (%d posts", st.Category.Name, len(st.Posts))
		if !st.Ended {
			fmt.Print(", more available")
		}
		fmt.Println(")")
		for _, p := range st.Posts {
			fmt.Printf("  #%d by user %d: %s\n", p.ID, p.OwnerID, p.Description)
		}
	}
	return nil
}
