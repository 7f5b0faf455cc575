package cli

import (
	"context"
	"fmt"
	"net"
	"os/exec"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ayusman/heroswap/internal/app"
	"github.com/ayusman/heroswap/internal/server"
	"github.com/ayusman/heroswap/internal/tray"
)

func newServeCmd(opts *options) *cobra.Command {
	var (
		addr      string
		staticDir string
		withTray  bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				opts.cfg.Server.Addr = addr
			}
			if staticDir != "" {
				opts.cfg.Server.StaticDir = staticDir
			}
			return runServe(cmd.Context(), opts, withTray)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().StringVar(&staticDir, "static", "", "directory of web UI files")
	cmd.Flags().BoolVar(&withTray, "tray", false, "show a system tray menu")

	return cmd
}

func runServe(ctx context.Context, opts *options, withTray bool) error {
	logger := loggerFromContext(ctx)

	st, err := openStore(opts)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	parent := ctx
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a := newApp(ctx, opts, st, nil)
	defer a.Close()

	staticDir := opts.cfg.Server.StaticDir
	if staticDir == "" {
		staticDir = findWebDir()
	}
	if staticDir != "" {
		logger.Info("serving static files", "dir", staticDir)
	}

	// Uploads land in session; a later bootstrap reapplies its face.
	session := app.NewSession()
	srv := server.New(server.Config{
		StaticDir: staticDir,
		App:       a,
		Session:   session,
		Store:     st,
		Logger:    logger.WithPrefix("http"),
		FPS:       opts.cfg.Animation.FPS,
	})

	var t *tray.Tray
	if withTray {
		t = tray.New()
		t.OnOpen(func() { openBrowser(browserURL(opts.cfg.Server.Addr)) })
		t.OnReplay(func() {
			if err := a.Replay(); err != nil {
				logger.Warn("replay failed", "err", err)
			}
		})
		t.OnQuit(cancel)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		bootstrapScene(gctx, a, session, t)
		return nil
	})
	g.Go(func() error {
		return srv.ListenAndServe(gctx, opts.cfg.Server.Addr)
	})

	if t != nil {
		go func() {
			<-gctx.Done()
			t.Quit()
		}()
		t.Run()
		cancel()
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return parent.Err()
}

// bootstrapScene loads the scene and reapplies the face held by session. A
// failure is logged and left for /api/status to report; the server keeps
// running.
func bootstrapScene(ctx context.Context, a *app.App, session *app.Session, t *tray.Tray) {
	logger := loggerFromContext(ctx)
	p := startTimer(logger)
	warnings, err := a.Bootstrap(ctx, session)
	if err != nil {
		if t != nil {
			t.SetStatus("Scene failed to load")
		}
		return
	}
	for _, w := range warnings {
		logger.Warn(w.Message)
	}
	if t != nil {
		t.SetStatus("Ready")
	}
	p.done("Scene ready", "session", session.ID, "face", session.Crop() != nil)
}

// browserURL turns a listen address into a URL a browser can open.
func browserURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port)
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	cmd.Start()
}

// findWebDir searches for the web directory in common locations.
func findWebDir() string {
	return firstDir("web", "../web", "../../web", homePath(".heroswap", "web"))
}

func firstDir(candidates ...string) string {
	for _, p := range candidates {
		if p != "" && isDir(p) {
			return p
		}
	}
	return ""
}
