package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spec-kit/market-portal/internal/cli"
	apperrors "github.com/spec-kit/market-portal/pkg/util"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCmd().ExecuteContext(ctx); err != nil {
		msg := err.Error()
		var domainErr *apperrors.DomainError
		if errors.As(err, &domainErr) && domainErr.Code != apperrors.CodeInternal {
			msg = domainErr.Message
		}
		fmt.Fprintln(os.Stderr, msg)
		stop()
		os.Exit(1)
	}
}
