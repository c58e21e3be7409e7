package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/spec-kit/market-portal/internal/service"
)

func newAdminCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Privileged order and user management",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if root := cmd.Root(); root.PersistentPreRunE != nil {
				if err := root.PersistentPreRunE(cmd, args); err != nil {
					return err
				}
			}
			return e.requirePrivileged(cmd.Context())
		},
	}

	orders := &cobra.Command{
		Use:   "orders",
		Short: "List every order",
		RunE: func(cmd *cobra.Command, args []string) error {
			all, err := e.ws.Admin.All(cmd.Context())
			if err != nil {
				return err
			}
			return e.printOrders(all, all)
		},
	}

	status := &cobra.Command{
		Use:   "status ORDER_ID STATUS",
		Short: "Change the status of an order",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			order, err := e.ws.Admin.UpdateStatus(cmd.Context(), id, args[1])
			if err != nil {
				return err
			}
			return e.out.message("Order #%d is now %s", order.ID, order.Status)
		},
	}

	var form service.NewUserForm
	createUser := &cobra.Command{
		Use:   "create-user",
		Short: "Create a user with an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := e.ws.Admin.CreateUser(cmd.Context(), form)
			if err != nil {
				return err
			}
			if e.out.json {
				return e.out.value(user)
			}
			return e.out.message("Created user %s <%s> with id %s", user.Name, user.Email, strconv.FormatInt(user.ID, 10))
		},
	}
	createUser.Flags().StringVar(&form.Name, "name", "", "display name")
	createUser.Flags().StringVar(&form.Email, "email", "", "email")
	createUser.Flags().StringVar(&form.Password, "password", "", "initial password")
	createUser.Flags().StringVar(&form.AccountNumber, "account", "", "bank account number")
	createUser.Flags().StringVar(&form.InitialBalance, "balance", "0", "initial balance")

	cmd.AddCommand(orders, status, createUser)
	return cmd
}
