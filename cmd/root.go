package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "mtap",
		Short:         "MemeFi tapper (mtap): run tap sessions for many accounts",
		Long:          "mtap logs in with Telegram web app credentials, keeps every account tapping, boosting, upgrading and clearing quests, and reports the last known state of each session.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "config file (default ./config.toml when present)")
	flags.StringVar(&opts.envFile, "env-file", "", "env file (default ./.env when present)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(opts),
		newSessionCmd(opts),
		newStatusCmd(opts),
		newProxyCmd(opts),
		newConfigCmd(),
	)

	return rootCmd
}
