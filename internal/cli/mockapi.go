package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"subscription_console/internal/logger"
	"subscription_console/internal/mockapi"
)

// mock-api поднимает фейковый бэкенд с демо-данными для ручной проверки консоли
func newMockAPICommand(_ *runtime) *cobra.Command {
	var (
		addr         string
		secret       string
		createPath   string
		usersAsArray bool
		tokenTTL     time.Duration
		corsOrigins  []string
	)

	cmd := &cobra.Command{
		Use:   "mock-api",
		Short: "Serve a local fake API with demo data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			api, err := mockapi.New(mockapi.Options{
				Secret:       []byte(secret),
				TokenTTL:     tokenTTL,
				CreatePath:   createPath,
				UsersAsArray: usersAsArray,
				AllowOrigins: corsOrigins,
				Seed:         true,
			})
			if err != nil {
				return err
			}

			srv := &http.Server{
				Addr:              addr,
				Handler:           api.Handler(),
				ReadHeaderTimeout: 5 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.ListenAndServe()
			}()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Mock API listening on %s\n", addr)
			fmt.Fprintf(out, "  admin: %s / %s\n", mockapi.SeedAdminEmail, mockapi.SeedAdminPassword)
			fmt.Fprintf(out, "  user:  %s / %s\n", mockapi.SeedUserEmail, mockapi.SeedUserPassword)
			logger.Info("Mock API started", "addr", addr)

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("mock api: %w", err)
				}
				return nil
			case <-cmd.Context().Done():
			}

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				return fmt.Errorf("mock api shutdown: %w", err)
			}
			logger.Info("Mock API stopped")
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&addr, "addr", "localhost:8000", "listen address")
	flags.StringVar(&secret, "secret", "mock-api-secret", "JWT signing secret")
	flags.StringVar(&createPath, "create-path", "", "extra create endpoint, e.g. /api/add-plan")
	flags.BoolVar(&usersAsArray, "users-as-array", false, "serve /api/admin/users as a bare array")
	flags.DurationVar(&tokenTTL, "token-ttl", time.Hour, "access token lifetime")
	flags.StringSliceVar(&corsOrigins, "cors-origin", nil, "allowed browser origin (repeatable), e.g. http://localhost:3000")
	return standalone(cmd)
}
