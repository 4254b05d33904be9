package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"tournament-platform/client"
)

const timeLayout = "2006-01-02 15:04"

var listCmd = &cobra.Command{
	Use:   "list",
	Args:  cobra.ExactArgs(0),
	Short: "List public tournaments",
}

func init() {
	p := listCmd.Flags()
	var opts client.ListOptions
	p.StringVarP(&opts.Search, "search", "q", "", "search title, game and tags")
	p.StringVar(&opts.Category, "category", "", "category filter")
	p.StringVar(&opts.Game, "game", "", "game filter")
	p.StringVar(&opts.Status, "status", "", "status filter")
	p.StringVar(&opts.Type, "type", "", "esport or sport")
	p.IntVar(&opts.Page, "page", 1, "page number")
	p.IntVar(&opts.Limit, "limit", 10, "items per page")

	listCmd.RunE = func(cmd *cobra.Command, _ []string) error {
		c, _, err := openClient()
		if err != nil {
			return err
		}
		page, err := c.ListTournaments(cmd.Context(), opts)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tGAME\tSTATUS\tSLOTS\tDEADLINE")
		for _, t := range page.Tournaments {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d/%d\t%s\n",
				t.ID, t.Title, t.Game, t.RegistrationStatus,
				t.CurrentParticipants, t.MaxParticipants,
				t.Schedule.RegistrationDeadline.Local().Format(timeLayout))
		}
		if err := w.Flush(); err != nil {
			return err
		}
		pg := page.Pagination
		fmt.Fprintf(cmd.OutOrStdout(), "\npage %d of %d (%d tournaments)\n", pg.CurrentPage, pg.TotalPages, pg.TotalItems)
		return nil
	}
}

var showCmd = &cobra.Command{
	Use:   "show <id-or-slug>",
	Args:  cobra.ExactArgs(1),
	Short: "Show tournament details",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := openClient()
		if err != nil {
			return err
		}
		t, err := c.Tournament(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		row := func(k string, v any) { fmt.Fprintf(w, "%s\t%v\n", k, v) }
		row("id", t.ID)
		row("title", t.Title)
		row("slug", t.Slug)
		row("game", t.Game)
		if t.Category != "" {
			row("category", t.Category)
		}
		if t.Format != "" {
			row("format", t.Format)
		}
		row("status", t.Status)
		row("registration", t.RegistrationStatus)
		row("progress", t.Progress)
		row("slots", fmt.Sprintf("%d/%d (%d left)", t.CurrentParticipants, t.MaxParticipants, t.AvailableSlots))
		row("entry fee", fmt.Sprintf("%.2f", t.EntryFee))
		row("prize pool", fmt.Sprintf("%.2f (%.2f / %.2f / %.2f)", t.TotalPrizePool, t.PrizePool.First, t.PrizePool.Second, t.PrizePool.Third))
		row("deadline", t.Schedule.RegistrationDeadline.Local().Format(timeLayout))
		row("starts", t.Schedule.StartDate.Local().Format(timeLayout))
		row("ends", t.Schedule.EndDate.Local().Format(timeLayout))
		if len(t.Tags) > 0 {
			row("tags", strings.Join(t.Tags, ", "))
		}
		if t.Host != nil {
			row("host", t.Host.Username)
		}
		return w.Flush()
	},
}
