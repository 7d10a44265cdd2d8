package transport

import (
	"github.com/ds124wfegd/ticketqr/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Bootstrap func(v *viper.Viper) (ServiceFactory, error)

func InitCommands(v *viper.Viper, boot Bootstrap) *cobra.Command {
	var (
		configFile string
		handler    *Handler
		factory    ServiceFactory
	)

	root := &cobra.Command{
		Use:           "ticketqr",
		Short:         "Generate unique ticket codes and render them as QR tickets",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadConfig(v, configFile); err != nil {
				return err
			}

			var err error
			if factory, err = boot(v); err != nil {
				return err
			}
			handler = NewHandler(factory, cmd.InOrStdin(), cmd.OutOrStdout())
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if factory == nil {
				return nil
			}
			return factory.Close()
		},
	}

	root.PersistentFlags().StringVar(&configFile, "config", config.GetEnv(config.EnvPrefix+"_CONFIG", ""), "config file (default ./config/config.yaml)")
	root.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().String("out-dir", "", "directory holding the record set and rendered artifacts")
	bind(v, "log.level", root.PersistentFlags().Lookup("log-level"))
	bind(v, "records.base_dir", root.PersistentFlags().Lookup("out-dir"))

	generate := &cobra.Command{
		Use:   "generate",
		Short: "Generate a batch of unique ticket codes and save the record set",
		RunE: func(cmd *cobra.Command, args []string) error {
			return handler.Generate(cmd.Context())
		},
	}
	generate.Flags().StringSlice("series", nil, "series letters, in order (default A-H)")
	generate.Flags().Int("per-series", 0, "tickets per series")
	generate.Flags().Int("max-attempts", 0, "consecutive collisions tolerated before a series is exhausted")
	bind(v, "generator.series", generate.Flags().Lookup("series"))
	bind(v, "generator.per_series", generate.Flags().Lookup("per-series"))
	bind(v, "generator.max_attempts", generate.Flags().Lookup("max-attempts"))

	render := &cobra.Command{
		Use:   "render",
		Short: "Render ticket images and/or bare QR codes from the record set",
		RunE: func(cmd *cobra.Command, args []string) error {
			return handler.Render(cmd.Context())
		},
	}
	render.Flags().String("mode", "", "ticket, qr or both (prompts when omitted)")
	render.Flags().Int("workers", 0, "records rendered in parallel")
	render.Flags().String("symbology", "", "qr, datamatrix or aztec")
	render.Flags().Int("module-size", 0, "pixels per symbol module")
	bind(v, "render.mode", render.Flags().Lookup("mode"))
	bind(v, "render.workers", render.Flags().Lookup("workers"))
	bind(v, "render.symbology", render.Flags().Lookup("symbology"))
	bind(v, "render.module_size", render.Flags().Lookup("module-size"))

	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Load the record set into the SQLite tickets table",
		RunE: func(cmd *cobra.Command, args []string) error {
			return handler.Import(cmd.Context())
		},
	}
	importCmd.Flags().String("db", "", "SQLite database file")
	bind(v, "database.path", importCmd.Flags().Lookup("db"))

	root.AddCommand(generate, render, importCmd)
	return root
}

// bind only fails for a nil flag, which is a programming error.
func bind(v *viper.Viper, key string, flag *pflag.Flag) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}
