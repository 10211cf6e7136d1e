// Package ccprof wires the CLI surface: command definitions, flag parsing,
// and terminal rendering over the library packages.
package ccprof

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/ccprof/pkg/backup"
	"github.com/arthur-debert/ccprof/pkg/config"
	"github.com/arthur-debert/ccprof/pkg/logging"
	"github.com/arthur-debert/ccprof/pkg/paths"
	"github.com/arthur-debert/ccprof/pkg/profile"
	"github.com/arthur-debert/ccprof/pkg/switcher"
)

// Build metadata, set via -ldflags at release time
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	var (
		verbosity int
		colorMode string
	)

	rootCmd := &cobra.Command{
		Use:     "ccprof",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			applyColorMode(colorMode)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand given: show help but exit non-zero
			_ = cmd.Help()
			return fmt.Errorf("no command specified")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().StringVar(&colorMode, "color", "auto", MsgFlagColor)

	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newCurrentCmd())
	rootCmd.AddCommand(newInspectCmd())
	rootCmd.AddCommand(newAddCmd())
	rootCmd.AddCommand(newUseCmd())
	rootCmd.AddCommand(newRemoveCmd())
	rootCmd.AddCommand(newRenameCmd())
	rootCmd.AddCommand(newDoctorCmd())
	rootCmd.AddCommand(newBackupCmd())
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(completionCmd)

	return rootCmd
}

// app bundles the configured library objects the subcommands operate on
type app struct {
	cfg      config.Config
	paths    *paths.Paths
	store    *profile.Store
	backups  *backup.Engine
	switcher *switcher.Switcher
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf(MsgErrLoadConfig, err)
	}

	p, err := paths.New()
	if err != nil {
		return nil, err
	}

	lockWait := time.Duration(cfg.Lock.WaitSeconds) * time.Second

	store := profile.NewStore(p)
	store.SetLockWait(lockWait)

	backups := backup.New(p, cfg.Backup.MaxBackups)

	sw := switcher.New(p, store, backups)
	sw.SetLockWait(lockWait)

	return &app{
		cfg:      cfg,
		paths:    p,
		store:    store,
		backups:  backups,
		switcher: sw,
	}, nil
}

// profileNamesCompletion provides shell completion for profile names
func profileNamesCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	a, err := newApp()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	infos, err := a.store.List()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	var names []string
	for _, info := range infos {
		names = append(names, info.Name)
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ccprof version %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

var completionCmd = &cobra.Command{
	Use:                   "completion [bash|zsh|fish|powershell]",
	Short:                 MsgCompletionShort,
	Long:                  MsgCompletionLong,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	Run: func(cmd *cobra.Command, args []string) {
		switch args[0] {
		case "bash":
			if err := cmd.Root().GenBashCompletion(cmd.OutOrStdout()); err != nil {
				log.Error().Err(err).Msg("Failed to generate bash completion")
			}
		case "zsh":
			if err := cmd.Root().GenZshCompletion(cmd.OutOrStdout()); err != nil {
				log.Error().Err(err).Msg("Failed to generate zsh completion")
			}
		case "fish":
			if err := cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true); err != nil {
				log.Error().Err(err).Msg("Failed to generate fish completion")
			}
		case "powershell":
			if err := cmd.Root().GenPowerShellCompletionWithDesc(cmd.OutOrStdout()); err != nil {
				log.Error().Err(err).Msg("Failed to generate powershell completion")
			}
		}
	},
}
