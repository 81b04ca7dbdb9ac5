package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"minitodo/internal/render"
	"minitodo/internal/store"
	"minitodo/internal/task"
	"minitodo/internal/transfer"
	"minitodo/internal/view"
)

func newListCmd(flags *globalFlags) *cobra.Command {
	var filter, search, sortKey string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the task list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(*flags)
			if err != nil {
				return err
			}
			defer a.Close()

			snap := a.store.Snapshot()
			if cmd.Flags().Changed("filter") {
				f := task.Filter(filter)
				if !f.Valid() {
					return fmt.Errorf("unknown filter %q (want all, active or done)", filter)
				}
				snap.Filter = f
			}
			if cmd.Flags().Changed("search") {
				snap.Search = strings.TrimSpace(search)
			}
			if cmd.Flags().Changed("sort") {
				snap.Sort = task.SortKey(sortKey)
			}

			// A throwaway store so the overrides are not persisted.
			preview := store.New(nil,
				store.WithInitial(snap),
				store.WithProjector(view.NewProjector(view.ParseLanguage(a.cfg.Locale))),
			)
			frame := render.Build(preview.State(), time.Now())
			_, err = io.WriteString(cmd.OutOrStdout(), frame.Render(render.PlainStyles(), -1))
			return err
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "", "all, active or done")
	cmd.Flags().StringVar(&search, "search", "", "case-insensitive title substring")
	cmd.Flags().StringVar(&sortKey, "sort", "", "created, title, due, priority or status")
	return cmd
}

func newAddCmd(flags *globalFlags) *cobra.Command {
	var due, priority string
	cmd := &cobra.Command{
		Use:   "add TITLE...",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			due = strings.TrimSpace(due)
			if due != "" && !task.ValidDue(due) {
				return fmt.Errorf("invalid due date %q: expected YYYY-MM-DD", due)
			}
			p := task.Priority(priority)
			if !p.Valid() {
				return fmt.Errorf("unknown priority %q (want low, medium or high)", priority)
			}

			a, err := openApp(*flags)
			if err != nil {
				return err
			}
			defer a.Close()

			added, ok := a.store.Add(strings.Join(args, " "), due, p)
			if !ok {
				return store.ErrEmptyTitle
			}
			a.logger.Info("added task", "id", added.ID)
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s %q\n", added.ID, added.Title)
			return nil
		},
	}
	cmd.Flags().StringVar(&due, "due", "", "due date, YYYY-MM-DD")
	cmd.Flags().StringVar(&priority, "priority", string(task.PriorityMedium), "low, medium or high")
	return cmd
}

func newExportCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "export [FILE]",
		Short: "Write tasks and view settings as JSON; '-' writes to stdout",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(*flags)
			if err != nil {
				return err
			}
			defer a.Close()

			path := a.cfg.ExportPath
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				path = transfer.DefaultFileName
			}
			if path == "-" {
				return transfer.Export(cmd.OutOrStdout(), a.store.Snapshot())
			}
			if err := transfer.ExportFile(path, a.store.Snapshot()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d task(s) to %s\n", a.store.Len(), path)
			return nil
		},
	}
}

func newImportCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Replace all tasks with the contents of an export file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(*flags)
			if err != nil {
				return err
			}
			defer a.Close()

			snap, err := transfer.ImportFile(args[0], time.Now())
			if err != nil {
				return err
			}
			a.store.Replace(snap)
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d task(s)\n", len(snap.Tasks))
			return nil
		},
	}
}

func newResetCmd(flags *globalFlags) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Remove every task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(*flags)
			if err != nil {
				return err
			}
			defer a.Close()

			confirm := store.ConfirmFunc(func(msg string) bool {
				if yes {
					return true
				}
				return ask(cmd.InOrStdin(), cmd.OutOrStdout(), msg)
			})
			if !a.store.ResetAll(confirm) {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing removed")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All tasks removed")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func ask(in io.Reader, out io.Writer, msg string) bool {
	fmt.Fprintf(out, "%s [y/N] ", msg)
	line, _ := bufio.NewReader(in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}
