// Copyright (c) 2023 BVK Chaitanya

package subcmds

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/bvk/skinbot/ctxutil"
	"github.com/bvk/skinbot/daemonize"
	"github.com/bvk/skinbot/httputil"
	"github.com/bvk/skinbot/server"
	"github.com/bvk/skinbot/subcmds/cmdutil"
	"github.com/bvkgo/kv/kvhttp"
	"github.com/bvkgo/kvbadger"
	"github.com/dgraph-io/badger/v4"
	"github.com/nightlyone/lockfile"
	"github.com/visvasity/cli"
	"github.com/visvasity/sglog"
)

type Run struct {
	cmdutil.ServerFlags

	background      bool
	restart         bool
	shutdownTimeout time.Duration

	noPprof  bool
	noResume bool

	secretsPath string
	dataDir     string
	logDir      string
}

func (c *Run) Purpose() string {
	return "Runs the skinbot daemon in foreground or background"
}

func (c *Run) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("run", flag.ContinueOnError)
	c.ServerFlags.SetFlags(fset)
	fset.BoolVar(&c.background, "background", false, "runs the daemon in background")
	fset.BoolVar(&c.restart, "restart", false, "restarts the daemon if it is already running")
	fset.DurationVar(&c.shutdownTimeout, "shutdown-timeout", 30*time.Second, "graceful shutdown timeout for restarts")
	fset.BoolVar(&c.noPprof, "no-pprof", false, "disables the pprof debug handlers")
	fset.BoolVar(&c.noResume, "no-resume", false, "disables automatic resume of running jobs")
	fset.StringVar(&c.secretsPath, "secrets-file", "", "path to credentials file")
	fset.StringVar(&c.dataDir, "data-dir", "", "path to the data directory")
	fset.StringVar(&c.logDir, "log-dir", "", "path to the log directory")
	return "run", fset, cli.CmdFunc(c.run)
}

func (c *Run) Description() string {
	return `
Command "run" starts the skinbot daemon, which runs the analyzer,
seller and bidder jobs and serves the control api used by the other
subcommands.

SECRETS FILE

Credentials for the dmarket account and the optional notification
services are read from a JSON file. Telegram and pushover sections can
be omitted, in which case notifications are disabled.

    {
        "dmarket": {
            "public_key": "...",
            "secret_key": "..."
        },
        "telegram": {
            "token": "...",
            "owner": "username"
        },
        "pushover": {
            "application_key": "...",
            "user_key": "..."
        }
    }
`
}

func (c *Run) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("this command takes no arguments: %w", os.ErrInvalid)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(c.dataDir) == 0 {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("could not find user home directory: %w", err)
		}
		c.dataDir = filepath.Join(home, ".skinbot")
	}
	if err := os.MkdirAll(c.dataDir, 0700); err != nil {
		return fmt.Errorf("could not create data directory %q: %w", c.dataDir, err)
	}
	dataDir, err := filepath.Abs(c.dataDir)
	if err != nil {
		return fmt.Errorf("could not determine data directory absolute path: %w", err)
	}
	c.dataDir = dataDir

	if len(c.secretsPath) == 0 {
		c.secretsPath = filepath.Join(c.dataDir, "secrets.json")
	}
	secrets, err := server.SecretsFromFile(c.secretsPath)
	if err != nil {
		return fmt.Errorf("could not load secrets file: %w", err)
	}

	ip := net.ParseIP(c.IP)
	if ip == nil {
		return fmt.Errorf("invalid ip address %q: %w", c.IP, os.ErrInvalid)
	}
	if c.Port <= 0 {
		return fmt.Errorf("invalid port number %d: %w", c.Port, os.ErrInvalid)
	}
	addr := &net.TCPAddr{
		IP:   ip,
		Port: c.Port,
	}

	// Health checker for the daemonize package verifies that the background
	// process with the expected pid is serving the control api.
	check := func(ctx context.Context, child *os.Process) (bool, error) {
		client := http.Client{Timeout: time.Second}
		resp, err := client.Get(fmt.Sprintf("http://%s/pid", addr.String()))
		if err != nil {
			return true, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return true, fmt.Errorf("pid check returned status %d", resp.StatusCode)
		}
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return true, err
		}
		pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
		if err != nil {
			return true, err
		}
		if pid != child.Pid {
			if c.restart {
				return true, fmt.Errorf("pid %d is still shutting down", pid)
			}
			return false, fmt.Errorf("another instance with pid %d is already running", pid)
		}
		return false, nil
	}

	if c.background {
		if err := daemonize.Daemonize(ctx, "SKINBOT_DAEMONIZE", check); err != nil {
			return err
		}
	}

	if len(c.logDir) == 0 {
		c.logDir = filepath.Join(c.dataDir, "logs")
	}
	if err := os.MkdirAll(c.logDir, 0700); err != nil {
		return fmt.Errorf("could not create log directory %q: %w", c.logDir, err)
	}
	backend := sglog.NewBackend(&sglog.Options{
		LogDirs: []string{c.logDir},
	})
	defer backend.Close()
	slog.SetDefault(slog.New(backend.Handler()))

	log.SetFlags(log.Lmicroseconds)
	log.Printf("using data directory %s and secrets file %s", c.dataDir, c.secretsPath)

	flock, err := lockfile.New(filepath.Join(c.dataDir, "skinbot.lock"))
	if err != nil {
		return fmt.Errorf("could not create lock file: %w", err)
	}
	if err := flock.TryLock(); err != nil {
		if !c.restart {
			return fmt.Errorf("could not acquire lock file (is another instance running?): %w", err)
		}
		owner, err := flock.GetOwner()
		if err != nil {
			return fmt.Errorf("could not determine lock file owner: %w", err)
		}
		log.Printf("asking current instance with pid %d to shut down", owner.Pid)
		if err := owner.Signal(os.Interrupt); err != nil {
			return fmt.Errorf("could not interrupt current instance: %w", err)
		}
		if err := ctxutil.RetryTimeout(ctx, time.Second, c.shutdownTimeout, flock.TryLock); err != nil {
			log.Printf("current instance did not shut down gracefully (will be killed): %v", err)
			if err := owner.Signal(os.Kill); err != nil {
				return fmt.Errorf("could not kill current instance: %w", err)
			}
			ctxutil.Sleep(ctx, time.Millisecond)
			if err := flock.TryLock(); err != nil {
				return fmt.Errorf("could not acquire lock file: %w", err)
			}
		}
	}
	defer flock.Unlock()

	s, err := httputil.New(nil /* opts */)
	if err != nil {
		return fmt.Errorf("could not create http server: %w", err)
	}
	defer s.Close()

	tcpServer, err := s.StartTCP(ctx, addr)
	if err != nil {
		return fmt.Errorf("could not start http server at %s: %w", addr.String(), err)
	}
	defer s.Stop(tcpServer)

	if !c.noPprof {
		s.AddHandler("/debug/pprof/", http.HandlerFunc(pprof.Index))
		s.AddHandler("/debug/pprof/cmdline", http.HandlerFunc(pprof.Cmdline))
		s.AddHandler("/debug/pprof/profile", http.HandlerFunc(pprof.Profile))
		s.AddHandler("/debug/pprof/symbol", http.HandlerFunc(pprof.Symbol))
		s.AddHandler("/debug/pprof/trace", http.HandlerFunc(pprof.Trace))
	}

	bopts := badger.DefaultOptions(c.dataDir)
	bdb, err := badger.Open(bopts)
	if err != nil {
		return fmt.Errorf("could not open badger database: %w", err)
	}
	defer bdb.Close()
	db := kvbadger.New(bdb, isGoodKey)

	s.AddHandler("/db/", http.StripPrefix("/db", kvhttp.Handler(db)))

	topts := &server.Options{
		NoResume: c.noResume,
	}
	bot, err := server.New(secrets, db, topts)
	if err != nil {
		return fmt.Errorf("could not create skinbot server: %w", err)
	}
	defer bot.Close()

	botAPIs := bot.HandlerMap()
	for p, h := range botAPIs {
		s.AddHandler(p, h)
	}
	defer func() {
		for p := range botAPIs {
			s.RemoveHandler(p)
		}
	}()

	if err := bot.Start(ctx); err != nil {
		return fmt.Errorf("could not start skinbot server: %w", err)
	}
	defer func() {
		if err := bot.Stop(context.Background()); err != nil {
			log.Printf("could not stop all jobs (ignored): %v", err)
		}
	}()

	s.AddHandler("/pid", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "%d", os.Getpid())
	}))

	log.Printf("started skinbot server at %s", addr.String())

	<-ctx.Done()
	log.Printf("skinbot server is shutting down")
	return nil
}

func isGoodKey(k string) bool {
	return path.IsAbs(k) && k == path.Clean(k)
}
