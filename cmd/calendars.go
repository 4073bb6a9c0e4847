package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newCalendarsCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "calendars",
		Aliases: []string{"calendar", "cal"},
		Short:   "List calendars and read their labels and members",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List the calendars accessible with the token",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				client, _, err := opts.connect(cmd)
				if err != nil {
					return err
				}
				calendars, err := client.ListCalendars(cmd.Context())
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tNAME\tCOLOR\tORDER")
				for _, cal := range calendars {
					fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", cal.ID, cal.Attributes.Name, cal.Attributes.Color, cal.Attributes.Order)
				}
				return w.Flush()
			},
		},
		&cobra.Command{
			Use:   "get <calendar-id>",
			Short: "Show a calendar",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				client, _, err := opts.connect(cmd)
				if err != nil {
					return err
				}
				cal, err := client.GetCalendar(cmd.Context(), args[0])
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				a := cal.Attributes
				fmt.Fprintf(out, "ID:          %s\n", cal.ID)
				fmt.Fprintf(out, "Name:        %s\n", a.Name)
				fmt.Fprintf(out, "Description: %s\n", a.Description)
				fmt.Fprintf(out, "Color:       %s\n", a.Color)
				fmt.Fprintf(out, "Order:       %d\n", a.Order)
				fmt.Fprintf(out, "Created:     %s\n", a.CreatedAt.Format("2006-01-02 15:04:05 MST"))
				if a.ImageURL != nil {
					fmt.Fprintf(out, "Image:       %s\n", *a.ImageURL)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "labels <calendar-id>",
			Short: "List the labels of a calendar",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				client, _, err := opts.connect(cmd)
				if err != nil {
					return err
				}
				labels, err := client.Calendar(args[0]).Labels(cmd.Context())
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tNAME\tCOLOR")
				for _, l := range labels {
					fmt.Fprintf(w, "%s\t%s\t%s\n", l.ID, l.Attributes.Name, l.Attributes.Color)
				}
				return w.Flush()
			},
		},
		&cobra.Command{
			Use:   "members <calendar-id>",
			Short: "List the members of a calendar",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				client, _, err := opts.connect(cmd)
				if err != nil {
					return err
				}
				members, err := client.Calendar(args[0]).Members(cmd.Context())
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tNAME\tDESCRIPTION")
				for _, m := range members {
					fmt.Fprintf(w, "%s\t%s\t%s\n", m.ID, m.Attributes.Name, m.Attributes.Description)
				}
				return w.Flush()
			},
		},
	)

	return cmd
}
