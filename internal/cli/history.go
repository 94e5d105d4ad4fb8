package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newHistoryCommand(st *rootState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show or prune submitted issues",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List recent submissions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			records, err := st.app.History.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(st.out, "No submissions yet.")
				return nil
			}
			tw := tabwriter.NewWriter(st.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tWHEN\tPROJECT\tISSUE\tTITLE")
			for _, r := range records {
				fmt.Fprintf(tw, "%s\t%s\t%s\t#%d\t%s\n",
					r.ID, r.CreatedAt.Local().Format(time.DateTime), r.ProjectName, r.IssueID, r.Title)
			}
			return tw.Flush()
		},
	}

	del := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Remove one record",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := st.app.History.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(st.out, "Deleted %s\n", args[0])
			return nil
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := st.app.History.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(st.out, "History cleared.")
			return nil
		},
	}

	cmd.AddCommand(list, del, clearCmd)
	return cmd
}
