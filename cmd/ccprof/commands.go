package ccprof

import (
	"fmt"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/ccprof/pkg/component"
	"github.com/arthur-debert/ccprof/pkg/doctor"
	"github.com/arthur-debert/ccprof/pkg/state"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: MsgListShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			infos, err := a.store.List()
			if err != nil {
				return err
			}
			if len(infos) == 0 {
				fmt.Println(MsgNoProfiles)
				return nil
			}

			st, _ := state.Read(a.paths.StateFile())
			active := st.ActiveProfile()

			data := pterm.TableData{{"", "NAME", "COMPONENTS", "CREATED"}}
			for _, info := range infos {
				data = append(data, []string{
					activeMarker(info.Name == active),
					info.Name,
					strings.Join(info.Manifest.ManagedComponents.Names(), ", "),
					info.Manifest.CreatedAt.Local().Format("2006-01-02 15:04"),
				})
			}
			return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
		},
	}
}

func newCurrentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: MsgCurrentShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			st, err := state.Read(a.paths.StateFile())
			if err != nil {
				return err
			}
			if st.ActiveProfile() == "" {
				fmt.Println(MsgNoActiveProfile)
				return nil
			}
			fmt.Println(st.ActiveProfile())
			return nil
		},
	}
}

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "inspect <name>",
		Short:             MsgInspectShort,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: profileNamesCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			info, err := a.store.Get(args[0])
			if err != nil {
				return err
			}

			st, _ := state.Read(a.paths.StateFile())

			fmt.Println(formatBold(info.Name))
			data := pterm.TableData{
				{"Active", fmt.Sprintf("%v", st.ActiveProfile() == info.Name)},
				{"Components", strings.Join(info.Manifest.ManagedComponents.Names(), ", ")},
				{"Created", info.Manifest.CreatedAt.Local().Format(time.RFC1123)},
				{"Updated", info.Manifest.UpdatedAt.Local().Format(time.RFC1123)},
				{"Location", a.paths.ProfileDir(info.Name)},
			}
			if info.Manifest.Migration != nil {
				data = append(data, []string{"Migrated from", info.Manifest.Migration.OriginalVersion})
			}
			if err := pterm.DefaultTable.WithData(data).Render(); err != nil {
				return err
			}

			for _, c := range info.MissingComponents {
				pterm.Warning.Printfln("component %s is missing from storage; run 'ccprof doctor'", c.DisplayName())
			}
			return nil
		},
	}
}

func newAddCmd() *cobra.Command {
	var componentsFlag []string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: MsgAddShort,
		Long:  MsgAddLong,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			set, err := component.ParseSet(componentsFlag)
			if err != nil {
				return err
			}

			if err := a.store.Create(args[0], set); err != nil {
				return err
			}
			fmt.Printf(MsgCreatedFormat, args[0], strings.Join(set.Names(), ", "))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&componentsFlag, "components", []string{"settings"}, MsgFlagComponents)
	return cmd
}

func newUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "use <name>",
		Short:             MsgUseShort,
		Long:              MsgUseLong,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: profileNamesCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			if err := a.switcher.Activate(args[0]); err != nil {
				return err
			}
			fmt.Printf(MsgSwitchedFormat, args[0])
			return nil
		},
	}
}

func newRemoveCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:               "remove <name>",
		Short:             MsgRemoveShort,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: profileNamesCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				return fmt.Errorf(MsgErrRemoveNeedsForce, args[0])
			}

			a, err := newApp()
			if err != nil {
				return err
			}

			if err := a.store.Remove(args[0]); err != nil {
				return err
			}
			fmt.Printf(MsgRemovedFormat, args[0])
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, MsgFlagForce)
	return cmd
}

func newRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "rename <old> <new>",
		Short:             MsgRenameShort,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: profileNamesCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			if err := a.store.Rename(args[0], args[1]); err != nil {
				return err
			}
			fmt.Printf(MsgRenamedFormat, args[0], args[1])
			return nil
		},
	}
}

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: MsgDoctorShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			report := doctor.Run(a.paths)

			section := ""
			for _, c := range report.Checks {
				if c.Section != section {
					section = c.Section
					fmt.Println(formatBold(section))
				}
				fmt.Printf("  %s %s: %s\n", checkIcon(c.Status), c.Name, c.Detail)
			}

			fmt.Println()
			if report.HasFailures() {
				fmt.Println(MsgDoctorProblems)
				return fmt.Errorf("doctor found problems")
			}
			fmt.Println(MsgDoctorAllGood)
			return nil
		},
	}
}

func newBackupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: MsgBackupShort,
	}
	cmd.AddCommand(newBackupListCmd())
	cmd.AddCommand(newBackupRestoreCmd())
	cmd.AddCommand(newBackupCleanCmd())
	return cmd
}

func newBackupListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: MsgBackupListShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			entries, err := a.backups.List()
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println(MsgNoBackups)
				return nil
			}

			data := pterm.TableData{{"ID", "COMPONENT", "SAVED", "SIZE"}}
			for _, entry := range entries {
				data = append(data, []string{
					entry.ID,
					entry.Component.DisplayName(),
					entry.ModTime.Local().Format("2006-01-02 15:04:05"),
					humanSize(entry.Size),
				})
			}
			return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
		},
	}
}

func newBackupRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <id>",
		Short: MsgBackupRestore,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			if err := a.backups.Restore(args[0]); err != nil {
				return err
			}
			fmt.Printf(MsgRestoredFormat, args[0])
			return nil
		},
	}
}

func newBackupCleanCmd() *cobra.Command {
	var keep int

	cmd := &cobra.Command{
		Use:   "clean",
		Short: MsgBackupClean,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("keep") {
				keep = a.cfg.Backup.CleanKeep
			}

			removed, err := a.backups.Clean(keep)
			if err != nil {
				return err
			}
			fmt.Printf(MsgCleanedFormat, removed)
			return nil
		},
	}

	cmd.Flags().IntVar(&keep, "keep", 0, MsgFlagKeep)
	return cmd
}

// humanSize renders a byte count in the largest sensible unit
func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
