package command

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pongsant/Assignment-4-Collaboration/config"
	"github.com/pongsant/Assignment-4-Collaboration/session"
	"github.com/pongsant/Assignment-4-Collaboration/surface"
)

type playOptions struct {
	url       string
	host      string
	localURL  string
	remoteURL string
	soundsDir string
	player    string
	flash     time.Duration
}

// endpoint prefers an explicit URL, otherwise picks by host.
func (o playOptions) endpoint() string {
	if o.url != "" {
		return o.url
	}
	return session.SelectEndpoint(o.host, o.localURL, o.remoteURL)
}

func (o playOptions) newPlayer() (surface.Player, error) {
	if o.player == "" {
		return surface.NopPlayer{}, nil
	}
	return surface.NewCommandPlayer(o.player, o.soundsDir)
}

var playOpts playOptions

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Join the relay and play",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runPlay(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), playOpts)
	},
}

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Print the keyboard mapping",
	Run: func(cmd *cobra.Command, args []string) {
		newTerminal(cmd.OutOrStdout()).Keyboard(surface.DefaultKeyMap())
	},
}

// runPlay drives one surface until input ends or ctx is cancelled. A relay
// that cannot be reached leaves the surface playing locally.
func runPlay(ctx context.Context, in io.Reader, out io.Writer, opts playOptions) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	player, err := opts.newPlayer()
	if err != nil {
		return err
	}

	term := newTerminal(out)
	surf := surface.New(surface.Options{
		Keys:     surface.DefaultKeyMap(),
		Player:   player,
		Flasher:  surface.NewFlasher(term, opts.flash),
		Log:      surface.NewActivityLog(term.Entry),
		OnStatus: term.Status,
	})
	defer surf.Close()
	term.Keyboard(surf.Keys())

	endpoint := opts.endpoint()
	sess := session.New(endpoint)
	surf.Attach(sess)
	if err := sess.Connect(ctx); err != nil {
		slog.Warn("relay unavailable", "url", endpoint, "error", err)
	}
	defer sess.Close()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if strings.TrimSpace(line) == "/quit" {
				return nil
			}
			for _, r := range line {
				surf.PressKey(string(r))
			}
		}
	}
}

func init() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Warning:", err)
		cfg = &config.Config{LocalURL: "ws://localhost:3000"}
	}

	f := playCmd.Flags()
	f.StringVar(&playOpts.url, "url", "", "relay URL; overrides --host selection")
	f.StringVar(&playOpts.host, "host", "localhost", "host the surface runs on; loopback hosts use the local relay")
	f.StringVar(&playOpts.localURL, "local-url", cfg.LocalURL, "relay URL for local hosts")
	f.StringVar(&playOpts.remoteURL, "remote-url", cfg.RemoteURL, "relay URL for public hosts")
	f.StringVar(&playOpts.soundsDir, "sounds", "sounds", "directory holding <note>.mp3 files")
	f.StringVar(&playOpts.player, "player", "", `command used to play a sound file, e.g. "mpg123 -q"`)
	f.DurationVar(&playOpts.flash, "flash", surface.DefaultFlashDuration, "how long a key stays highlighted")

	rootCmd.AddCommand(playCmd, keysCmd)
}
