package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/teemow/tablero/internal/config"
)

// version will be set by main
var version = "dev"

// SetVersion sets the version reported by the version command and --version.
func SetVersion(v string) {
	version = v
}

// newRootCmd builds the command tree around one viper instance so flags,
// environment and config file resolve through the same place.
func newRootCmd(v *viper.Viper) *cobra.Command {
	root := &cobra.Command{
		Use:   "tablero",
		Short: "Personal dashboard for Gmail, Classroom and Calendar",
		Long: `tablero signs in to a Google account and shows recent mail, the newest
Classroom posts per course and a month calendar with event creation.`,
		Version:      version,
		SilenceUsage: true,
	}
	root.SetVersionTemplate(`{{printf "tablero version %s\n" .Version}}`)

	root.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn or error. Env: LOG_LEVEL")
	root.PersistentFlags().String("log-format", "json", "Log format: json or text. Env: LOG_FORMAT")
	root.PersistentFlags().String("token-file", config.DefaultTokenFile, "Path of the stored Google credential. Env: TOKEN_FILE")

	if err := bindFlags(v, root.PersistentFlags(), map[string]string{
		config.KeyLogLevel:  "log-level",
		config.KeyLogFormat: "log-format",
		config.KeyTokenFile: "token-file",
	}); err != nil {
		panic(err)
	}

	root.AddCommand(newServeCmd(v))
	root.AddCommand(newLogoutCmd(v))
	root.AddCommand(newVersionCmd())
	return root
}

// bindFlags binds viper keys to the named flags.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet, keys map[string]string) error {
	for key, name := range keys {
		flag := fs.Lookup(name)
		if flag == nil {
			return fmt.Errorf("flag %q is not defined", name)
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind flag %q: %w", name, err)
		}
	}
	return nil
}

// Execute runs the command line. serve is the default command.
func Execute() {
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	if err := newRootCmd(config.NewViper()).Execute(); err != nil {
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("tablero version %s\n", version)
		},
	}
}
