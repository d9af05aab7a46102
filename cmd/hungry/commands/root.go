package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/forgo/hungry/internal/app"
	"github.com/forgo/hungry/internal/config"
	"github.com/forgo/hungry/internal/database"
	"github.com/forgo/hungry/internal/docstore"
	"github.com/forgo/hungry/internal/model"
	"github.com/forgo/hungry/internal/repository"
	"github.com/forgo/hungry/internal/service"
	"github.com/forgo/hungry/internal/view"
	"github.com/forgo/hungry/pkg/searchapi"
)

// StoreFile is the local document store used when no database is configured
const StoreFile = "store.json"

// cli holds the state of one invocation
type cli struct {
	in     *bufio.Reader
	out    io.Writer
	errOut io.Writer

	apiURL   string
	stateDir string
	verbose  bool
	strict   bool
	noColor  bool

	cfg     *config.ClientConfig
	app     *app.App
	session *app.Session
	closers []func() error
}

// shownError marks an error whose message was already rendered
type shownError struct{ err error }

func (e shownError) Error() string { return e.err.Error() }
func (e shownError) Unwrap() error { return e.err }

func shown(err error) error {
	if err == nil {
		return nil
	}
	return shownError{err: err}
}

// Execute runs the CLI with the process arguments and standard streams
func Execute(ctx context.Context) error {
	return Run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}

// Run executes one command line. Errors are printed to errOut before
// being returned.
func Run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) error {
	c := &cli{in: bufio.NewReader(in), out: out, errOut: errOut}
	root := c.rootCommand()
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	err := root.ExecuteContext(ctx)
	if cerr := c.shutdown(); err == nil {
		err = cerr
	}

	var se shownError
	if err != nil && !errors.As(err, &se) {
		fmt.Fprintln(errOut, c.message(err))
	}
	return err
}

func (c *cli) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "hungry",
		Short:         "Find restaurants, keep favorites, support the places you love",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd.Context(), cmd)
		},
	}

	root.PersistentFlags().StringVar(&c.apiURL, "api", "", "search API base URL (default $HUNGRY_API_URL or http://localhost:5000)")
	root.PersistentFlags().StringVar(&c.stateDir, "state-dir", "", "directory for session and local data (default $HUNGRY_STATE_DIR)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "log debug output to stderr")
	root.PersistentFlags().BoolVar(&c.strict, "strict-favorites", false, "tell same-named restaurants apart by address")
	root.PersistentFlags().BoolVar(&c.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		signupCmd(c), loginCmd(c), logoutCmd(c), whoamiCmd(c),
		searchCmd(c), categoriesCmd(c), favoritesCmd(c),
		themeCmd(c), donateCmd(c), shellCmd(c),
	)
	return root
}

// setup loads configuration, opens the document store and starts the app
func (c *cli) setup(ctx context.Context, cmd *cobra.Command) error {
	cfg, err := config.LoadClient()
	if err != nil {
		return err
	}
	if c.apiURL != "" {
		cfg.SearchAPI.BaseURL = c.apiURL
	}
	if c.stateDir != "" {
		cfg.Client.StateDir = c.stateDir
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.cfg = cfg

	level := slog.LevelWarn
	if c.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(c.errOut, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := os.MkdirAll(cfg.Client.StateDir, 0o700); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	store, err := c.openStore(ctx, logger)
	if err != nil {
		return err
	}

	client, err := searchapi.New(searchapi.Config{
		BaseURL:   cfg.SearchAPI.BaseURL,
		Timeout:   cfg.SearchAPI.Timeout,
		UserAgent: "hungry-cli",
	})
	if err != nil {
		return err
	}

	var keyFunc func(model.Restaurant) string
	if c.strict {
		keyFunc = model.Restaurant.CompositeKey
	}

	a, err := app.New(app.Config{
		Store:        store,
		Search:       client,
		PageSize:     cfg.SearchAPI.PageSize,
		KeyFunc:      keyFunc,
		WriteTimeout: cfg.Client.WriteTimeout,
		BcryptCost:   cfg.Client.BcryptCost,
		Logger:       logger,
	})
	if err != nil {
		return err
	}

	session, err := app.LoadSession(cfg.Client.StateDir)
	if err != nil {
		logger.Warn("ignoring unreadable session", slog.String("error", err.Error()))
		session = &app.Session{}
	}
	if session.DarkMode != nil {
		a.Theme.SetLocal(*session.DarkMode)
	}

	if err := a.Start(ctx); err != nil {
		return err
	}
	c.app = a
	c.session = session

	if session.Identity != nil {
		err := a.Identity.Restore(ctx, session.Identity)
		switch {
		case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrNotAuthenticated):
			fmt.Fprintln(c.errOut, "Your saved session has expired. Please log in again.")
		case err != nil:
			return fmt.Errorf("restore session: %w", err)
		}
	}
	return nil
}

// openStore connects to SurrealDB when configured, else opens the local file store
func (c *cli) openStore(ctx context.Context, logger *slog.Logger) (docstore.Store, error) {
	if !c.cfg.UsesDatabase() {
		return docstore.OpenFileStore(filepath.Join(c.cfg.Client.StateDir, StoreFile))
	}

	db := database.NewSurrealDB(database.Config{
		Host:      c.cfg.Database.Host,
		Port:      c.cfg.Database.Port,
		User:      c.cfg.Database.User,
		Password:  c.cfg.Database.Password,
		Namespace: c.cfg.Database.Namespace,
		Database:  c.cfg.Database.Database,
	})
	if err := db.Connect(ctx); err != nil {
		return nil, err
	}
	c.closers = append(c.closers, db.Close)
	logger.Debug("connected to database", slog.String("host", c.cfg.Database.Host))
	return repository.NewDocumentRepository(db), nil
}

// shutdown saves the session and releases the app and store
func (c *cli) shutdown() error {
	var errs []error
	if c.app != nil {
		c.session.Capture(c.app)
		if err := c.session.Save(c.cfg.Client.StateDir); err != nil {
			errs = append(errs, err)
		}
		if err := c.app.Close(); err != nil {
			errs = append(errs, err)
		}
		if err := c.app.Favorites.LastSyncError(); err != nil {
			errs = append(errs, fmt.Errorf("favorites not saved: %w", err))
		}
		c.app = nil
	}
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

// renderer returns a view renderer in the current theme
func (c *cli) renderer() *view.Renderer {
	dark := true
	if c.app != nil {
		dark = c.app.Theme.DarkMode()
	}
	return view.New(c.out, view.PaletteFor(dark, c.color()))
}

func (c *cli) color() bool {
	if c.noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := c.out.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}

// message maps err to the text shown to the user
func (c *cli) message(err error) string {
	return service.UserMessage(err)
}

// readLine prompts on out and reads one line from in
func (c *cli) readLine(prompt string) (string, error) {
	fmt.Fprint(c.out, prompt)
	line, err := c.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
