package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newRootCmd() *cobra.Command {
	var cfgFile string
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "lifelink",
		Short: "Public message intake with an authenticated read-back of recent history",
		Long: `lifelink accepts messages on POST /message, keeps the most recent ones in
memory and lets an administrator read or clear them.

Configuration is read from config.yaml (or --config / CONFIG_PATH) and
LIFELINK_<SECTION>_<KEY> environment variables.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), v, cfgFile)
		},
	}

	cmd.Flags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml, can also use CONFIG_PATH)")
	cmd.Flags().StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	cmd.Flags().StringP("port", "p", "3000", "listen port")
	cmd.Flags().String("journal", "lifelink.db", "journal database path")

	_ = v.BindPFlag("log.level", cmd.Flags().Lookup("log-level"))
	_ = v.BindPFlag("server.port", cmd.Flags().Lookup("port"))
	_ = v.BindPFlag("journal.path", cmd.Flags().Lookup("journal"))

	return cmd
}
