package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spec-kit/market-portal/internal/checkout"
	"github.com/spec-kit/market-portal/internal/domain"
	"github.com/spec-kit/market-portal/internal/service"
)

func newLoginCmd(e *env) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and keep the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if password == "" {
				line, err := prompt(e.in, "Password: ")
				if err != nil {
					return err
				}
				password = line
			}
			if _, err := e.auth.Login(ctx, e.ws.Session, email, password); err != nil {
				return err
			}
			state, err := e.ws.Session.ResolveRole(ctx)
			if err != nil {
				return err
			}
			return e.out.message("Logged in as %s (%s)", strings.TrimSpace(email), state.Role)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted if omitted)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newRegisterCmd(e *env) *cobra.Command {
	var in service.RegisterInput

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log into it",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if in.Password == "" {
				line, err := prompt(e.in, "Password: ")
				if err != nil {
					return err
				}
				in.Password = line
			}
			if _, err := e.auth.Register(ctx, e.ws.Session, in); err != nil {
				return err
			}
			if _, err := e.ws.Session.ResolveRole(ctx); err != nil {
				return err
			}
			return e.out.message("Registered and logged in as %s", in.Email)
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "display name")
	cmd.Flags().StringVar(&in.Email, "email", "", "account email")
	cmd.Flags().StringVar(&in.Password, "password", "", "account password (prompted if omitted)")
	cmd.Flags().StringVar(&in.AccountNumber, "account", "", "bank account number")
	cmd.Flags().StringVar(&in.BankName, "bank", "", "bank name")
	cmd.Flags().StringVar(&in.InitialBalance, "balance", "0", "initial balance")
	return cmd
}

func newLogoutCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.ws.Logout(cmd.Context()); err != nil {
				return err
			}
			return e.out.message("Logged out")
		},
	}
}

func newWhoamiCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := e.requireSession(cmd.Context())
			if err != nil {
				return err
			}
			if e.out.json {
				return e.out.value(map[string]any{
					"authenticated": true,
					"role":          snap.Role.Role,
					"privileged":    snap.Role.IsPrivileged(),
				})
			}
			return e.out.message("Logged in with role %s", snap.Role.Role)
		},
	}
}

func newDashboardCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show accounts and recent transactions",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := e.requireSession(ctx); err != nil {
				return err
			}
			view, err := e.ws.Dashboard.Load(ctx)
			if err != nil {
				return err
			}
			if e.out.json {
				return e.out.value(view)
			}
			var accounts [][]string
			if view.User != nil {
				fmt.Fprintf(e.out.w, "%s <%s>\n\n", view.User.Name, view.User.Email)
				for _, a := range view.User.Accounts {
					accounts = append(accounts, []string{string(a.AccountNumber), a.BankName, domain.FormatMoney(a.Balance)})
				}
			}
			if err := e.out.table(nil, []string{"ACCOUNT", "BANK", "BALANCE"}, accounts); err != nil {
				return err
			}
			fmt.Fprintln(e.out.w)
			return e.out.table(nil, []string{"ID", "FROM", "TO", "AMOUNT", "STATUS", "WHEN"}, transactionRows(view.Transactions))
		},
	}
}

func newTransferCmd(e *env) *cobra.Command {
	var form checkout.TransferForm

	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Move money between accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := e.requireSession(ctx); err != nil {
				return err
			}
			if _, err := e.ws.Transfer.Submit(ctx, form); err != nil {
				return err
			}
			return e.out.message("%s", e.ws.Transfer.State().Message)
		},
	}
	cmd.Flags().StringVar(&form.FromAccountNumber, "from", "", "source account number")
	cmd.Flags().StringVar(&form.ToAccountNumber, "to", "", "destination account number")
	cmd.Flags().StringVar(&form.Amount, "amount", "", "amount to move")
	return cmd
}

func transactionRows(txs []domain.Transaction) [][]string {
	rows := make([][]string, 0, len(txs))
	for _, tx := range txs {
		when := ""
		if !tx.Timestamp.IsZero() {
			when = tx.Timestamp.Format("2006-01-02 15:04")
		}
		rows = append(rows, []string{
			strconv.FormatInt(tx.ID, 10),
			string(tx.FromAccountNumber),
			string(tx.ToAccountNumber),
			domain.FormatMoney(tx.Amount),
			tx.Status,
			when,
		})
	}
	return rows
}

func prompt(in io.Reader, label string) (string, error) {
	fmt.Fprint(os.Stderr, label)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
