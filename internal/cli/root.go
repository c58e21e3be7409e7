package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/market-portal/internal/auth"
	"github.com/spec-kit/market-portal/internal/backend"
	"github.com/spec-kit/market-portal/internal/config"
	"github.com/spec-kit/market-portal/internal/domain"
	"github.com/spec-kit/market-portal/internal/observability"
	"github.com/spec-kit/market-portal/internal/service"
	"github.com/spec-kit/market-portal/internal/session"
	apperrors "github.com/spec-kit/market-portal/pkg/util"
)

// sessionKey names the single session the terminal client keeps on disk.
const sessionKey = "cli"

type flags struct {
	backend     string
	sessionFile string
	json        bool
	debug       bool
}

// env is what every subcommand works with once the root has run.
type env struct {
	cfg    *config.Config
	logger *zap.Logger
	auth   *service.AuthService
	ws     *service.Workspace
	out    *printer
	in     io.Reader
}

// NewRootCmd creates the root command of the marketctl client.
func NewRootCmd() *cobra.Command {
	var f flags
	e := &env{}

	root := &cobra.Command{
		Use:   "marketctl",
		Short: "Terminal client for the marketplace and banking backend",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.init(cmd.Context(), f, cmd.OutOrStdout(), cmd.InOrStdin())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if e.logger != nil {
				_ = e.logger.Sync()
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&f.backend, "backend", "", "backend base URL (default BACKEND_URL)")
	root.PersistentFlags().StringVar(&f.sessionFile, "session-file", "", "where the session token is kept (default SESSION_FILE)")
	root.PersistentFlags().BoolVar(&f.json, "json", false, "print JSON instead of tables")
	root.PersistentFlags().BoolVar(&f.debug, "debug", false, "enable debug logging on stderr")

	root.AddCommand(
		newLoginCmd(e),
		newRegisterCmd(e),
		newLogoutCmd(e),
		newWhoamiCmd(e),
		newDashboardCmd(e),
		newTransferCmd(e),
		newProductsCmd(e),
		newCartCmd(e),
		newCheckoutCmd(e),
		newOrdersCmd(e),
		newAdminCmd(e),
	)
	return root
}

func (e *env) init(ctx context.Context, f flags, out io.Writer, in io.Reader) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if f.backend != "" {
		cfg.Backend.BaseURL = strings.TrimRight(f.backend, "/")
	}
	if f.sessionFile != "" {
		cfg.Session.FilePath = f.sessionFile
	}
	if f.debug {
		cfg.Logger.Level = "debug"
	}

	logger, err := observability.NewLogger(cfg.Logger, "stderr")
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	key, err := cfg.Session.SealingKey()
	if err != nil {
		return err
	}

	client := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout(), logger)
	ws, err := service.NewWorkspace(ctx, sessionKey, service.WorkspaceDeps{
		Client:  client,
		Storage: session.NewSealedStorage(session.NewFileStorage(cfg.Session.FilePath), key),
		Expiry:  auth.NewTokenInspector(),
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	e.cfg = cfg
	e.logger = logger
	e.auth = service.NewAuthService(client, nil, logger)
	e.ws = ws
	e.out = newPrinter(out, f.json)
	e.in = in
	return nil
}

// requireSession fails unless a token is held, resolving the role when the
// stored record does not carry one.
func (e *env) requireSession(ctx context.Context) (domain.Session, error) {
	snap := e.ws.Session.Current(ctx)
	if !snap.Authenticated() {
		return snap, apperrors.NewSessionInvalid("not logged in; run marketctl login", nil)
	}
	if snap.Role.Status != domain.RoleResolved {
		if _, err := e.ws.Session.ResolveRole(ctx); err != nil {
			return snap, err
		}
		snap = e.ws.Session.Current(ctx)
	}
	return snap, nil
}

// requirePrivileged applies the same policy as the portal's admin pages.
func (e *env) requirePrivileged(ctx context.Context) error {
	snap, err := e.requireSession(ctx)
	if err != nil {
		return err
	}
	if auth.Evaluate(auth.PolicyPrivileged, snap).Outcome != auth.OutcomeRender {
		return apperrors.NewAuthorizationDenied("You do not have permission to do this.")
	}
	return nil
}
