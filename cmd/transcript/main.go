package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/pixil98/go-tabletop/cmd/tabletop/command"
	"github.com/pixil98/go-tabletop/internal/arena"
	"github.com/pixil98/go-tabletop/internal/block"
	"github.com/pixil98/go-tabletop/internal/storage"
	"github.com/pixil98/go-tabletop/internal/transcript"
)

type options struct {
	storage  command.StorageConfig
	tab      string
	template string
	width    int
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:          "transcript",
		Short:        "Print a chat tab from a saved world",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts, cmd)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.storage.Path, "storage", "", "path of the saved state")
	f.StringVar(&opts.storage.Backend, "backend", "file", "storage backend (file or pebble)")
	f.StringVar(&opts.tab, "tab", "main", "name of the chat tab to print")
	f.StringVar(&opts.template, "template", transcript.DefaultTemplate, "template for each line")
	f.IntVar(&opts.width, "width", transcript.DefaultWidth, "wrap lines at this width, 0 disables wrapping")
	_ = cmd.MarkFlagRequired("storage")

	return cmd
}

func run(ctx context.Context, opts options, cmd *cobra.Command) error {
	db, err := opts.storage.BuildDB()
	if err != nil {
		return err
	}
	defer db.Close()

	snap, err := storage.Load(ctx, db)
	if err != nil {
		return fmt.Errorf("loading saved state: %w", err)
	}

	a := arena.New(arena.WithRegistry(block.NewRegistry()))
	defer a.Close()
	if res := a.ApplyPacks(snap.Blocks); res.Dropped > 0 {
		slog.WarnContext(ctx, "skipped unreadable blocks", "dropped", res.Dropped)
	}

	tab, ok := transcript.FindTab(a, snap.Context.Chat, opts.tab)
	if !ok {
		return fmt.Errorf("chat tab %q not found", opts.tab)
	}
	name, lines, err := transcript.Collect(a, tab)
	if err != nil {
		return err
	}

	r, err := transcript.NewRenderer(transcript.WithTemplate(opts.template), transcript.WithWidth(opts.width))
	if err != nil {
		return err
	}
	return r.Render(cmd.OutOrStdout(), name, lines)
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
