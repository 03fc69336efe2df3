package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/reactive/pkg/document"
	"github.com/vango-dev/reactive/pkg/snapshot"
)

func snapshotCmd(configDir *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Save, load and list state snapshots",
		Long: `Manage snapshots in the store configured in reactive.json.

The snapshot name's extension picks the stored format.

Examples:
  reactivectl snapshot save state.json before.yaml
  reactivectl snapshot load before.yaml --format json
  reactivectl snapshot list
  reactivectl snapshot delete before.yaml`,
	}

	cmd.AddCommand(
		snapshotSaveCmd(configDir),
		snapshotLoadCmd(configDir),
		snapshotListCmd(configDir),
		snapshotDeleteCmd(configDir),
	)
	return cmd
}

func snapshotSaveCmd(configDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "save <document> <name>",
		Short: "Store a document as a snapshot",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession(*configDir, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			store, err := sess.store()
			if err != nil {
				return err
			}
			root, err := sess.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := snapshot.Save(cmd.Context(), store, args[1], root); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Saved %s as %s", args[0], args[1])
			return nil
		},
	}
}

func snapshotLoadCmd(configDir *string) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "load <name>",
		Short: "Print a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession(*configDir, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			store, err := sess.store()
			if err != nil {
				return err
			}
			root, err := snapshot.Load(cmd.Context(), store, args[0])
			if err != nil {
				return err
			}

			f, err := document.FormatFromPath(args[0])
			if format != "" {
				f, err = document.ParseFormat(format)
			}
			if err != nil {
				return err
			}
			data, err := document.Encode(root, f)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format (default: the snapshot's own)")
	return cmd
}

func snapshotListCmd(configDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession(*configDir, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			store, err := sess.store()
			if err != nil {
				return err
			}
			infos, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(infos) == 0 {
				info(cmd.OutOrStdout(), "no snapshots")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tSIZE\tSAVED")
			for _, in := range infos {
				fmt.Fprintf(tw, "%s\t%d\t%s\n", in.Name, in.Size, in.SavedAt.Format(time.RFC3339))
			}
			return tw.Flush()
		},
	}
}

func snapshotDeleteCmd(configDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession(*configDir, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			store, err := sess.store()
			if err != nil {
				return err
			}
			if err := snapshot.ValidateName(args[0]); err != nil {
				return err
			}
			if err := store.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Deleted %s", args[0])
			return nil
		},
	}
}
