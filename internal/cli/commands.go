package cli

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ceyewan/dbbridge/clog"
	"github.com/ceyewan/dbbridge/registry"
	"github.com/ceyewan/dbbridge/secret"
	"github.com/ceyewan/dbbridge/xerrors"
)

func newListCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured services",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			rt, err := flags.load(ctx)
			if err != nil {
				return err
			}
			defer rt.Close(ctx)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, name := range rt.registry.Names() {
				f, _ := rt.registry.Factory(name)
				marker := ""
				if f.Encrypted() {
					marker = "encrypted"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", name, f.Descriptor().DriverKind(), marker)
			}
			return w.Flush()
		},
	}
}

func newDSNCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "dsn <name>",
		Short: "Print the connection string of a service without decrypting it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := flags.load(ctx)
			if err != nil {
				return err
			}
			defer rt.Close(ctx)

			f, ok := rt.registry.Factory(args[0])
			if !ok {
				return &registry.UnknownServiceError{Name: args[0]}
			}
			fmt.Fprintln(cmd.OutOrStdout(), f.Descriptor().String())
			return nil
		},
	}
}

func newCheckCommand(flags *rootFlags) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "check [name...]",
		Short: "Connect to each service and ping it",
		Long:  "Connect to the named services (all services when none is given), ping them and close the connection.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := flags.load(ctx)
			if err != nil {
				return err
			}
			defer rt.Close(ctx)

			names := args
			if len(names) == 0 {
				names = rt.registry.Names()
			}

			var errs []error
			for _, name := range names {
				if err := checkOne(ctx, rt, name, timeout); err != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "FAIL\t%s\t%v\n", name, err)
					errs = append(errs, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "ok\t%s\n", name)
			}

			if err := xerrors.Combine(errs...); err != nil {
				return xerrors.WithCode(
					xerrors.Wrapf(err, "%d of %d services failed", len(errs), len(names)),
					codeCheckFailed,
				)
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "per service connect timeout")
	return cmd
}

func checkOne(ctx context.Context, rt *runtime, name string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	db, err := rt.registry.Resolve(ctx, name)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := sqlDB.PingContext(ctx); err != nil {
		return xerrors.Wrapf(err, "ping %s", name)
	}
	rt.logger.Info("service healthy",
		clog.String("service", name),
		clog.Duration("elapsed", time.Since(start)))
	return nil
}

func newEncryptCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "encrypt <value>",
		Short: "Encrypt a value for use in the config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := flags.resolveSecretKey(cmd.Context())
			if err != nil {
				return err
			}
			if key == "" {
				return xerrors.Wrap(secret.ErrInvalidKey, "no secret key configured, use --secret-key or DBBRIDGE_SECRET_KEY")
			}

			c, err := secret.NewCipher(key)
			if err != nil {
				return err
			}
			enc, err := c.Encrypt(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), enc)
			return nil
		},
	}
}

func newKeygenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Generate a random secret key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := secret.GenerateKey()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), key)
			return nil
		},
	}
}
