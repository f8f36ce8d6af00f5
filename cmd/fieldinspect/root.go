package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	flags := &rootFlags{}
	ctx := newCommandContext(flags)

	rootCmd := &cobra.Command{
		Use:           "fieldinspect",
		Short:         "Field-inspection workflow CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.config, "config", "c", "", "Configuration file path")
	pf.StringVar(&flags.subject, "as", "", "Subject to act as in local mode (defaults to access.default_subject)")
	pf.BoolVar(&flags.remote, "remote", false, "Send inspection commands to the running daemon")
	pf.StringVar(&flags.daemon, "daemon", "", "Daemon address (defaults to paths.api_bind)")
	pf.StringVar(&flags.token, "token", "", "Bearer token for --remote (defaults to paths.api_token)")

	rootCmd.AddCommand(newInitCommand(ctx))
	rootCmd.AddCommand(newSubmitCommand(ctx))
	rootCmd.AddCommand(newShowCommand(ctx))
	rootCmd.AddCommand(newRecommendationCommand(ctx))
	rootCmd.AddCommand(newReturnsCommand(ctx))
	rootCmd.AddCommand(newTemplatesCommand(ctx))
	rootCmd.AddCommand(newServeCommand(ctx))
	rootCmd.AddCommand(newStatusCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
