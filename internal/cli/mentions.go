package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/deusflow/transferradar/internal/app"
	"github.com/deusflow/transferradar/internal/entity"
)

func (c *cli) mentionsCmd() *cobra.Command {
	var (
		typeFlag string
		window   int
		withLink string
	)
	cmd := &cobra.Command{
		Use:   "mentions <name>",
		Short: "Rank co-mentions for a club or player",
		Long: `Fetch recent articles for <name> and rank the opposite-type entities
mentioned with it. With --with, list the articles naming both the player
<name> and the given club.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.Join(args, " ")
			typ, err := entity.ParseType(typeFlag)
			if err != nil {
				return err
			}

			svc, closeStore, err := app.Open(cmd.Context(), c.cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			out := cmd.OutOrStdout()
			if withLink != "" {
				res, err := svc.TransferLink(cmd.Context(), name, withLink, window)
				if err != nil {
					return err
				}
				renderLinks(out, res)
				return nil
			}

			res, err := svc.Search(cmd.Context(), name, typ, window)
			if err != nil {
				return err
			}
			switch {
			case res.Club != nil:
				renderClub(out, res.Club)
			case res.Player != nil:
				renderPlayer(out, res.Player)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&typeFlag, "type", "t", "team", "entity type: team or player")
	cmd.Flags().IntVarP(&window, "window", "w", 0, "publish window in hours (default from config)")
	cmd.Flags().StringVar(&withLink, "with", "", "club to pair with the player <name>")
	return cmd
}

func renderClub(w io.Writer, res *app.ClubResult) {
	fmt.Fprintf(w, "%s: players mentioned in the last %dh (%d articles)\n", res.Club, res.WindowHours, res.Articles)
	if res.Info != nil {
		fmt.Fprintf(w, "League: %s (%s)\n", res.Info.League, res.Info.Country)
	}
	if res.Empty() {
		fmt.Fprintln(w, "No recent mentions.")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"#", "Player", "Articles", "Current club", "Direction"})
	for i, row := range res.Players {
		direction := "incoming"
		if row.AtClub {
			direction = "outgoing"
		}
		club := row.CurrentClub
		if club == "" {
			club = entity.Unknown
		}
		t.AppendRow(table.Row{i + 1, row.Name, row.Count, club, direction})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}

func renderPlayer(w io.Writer, res *app.PlayerResult) {
	fmt.Fprintf(w, "%s: clubs mentioned in the last %dh (%d articles)\n", res.Player, res.WindowHours, res.Articles)
	if res.Info != nil {
		fmt.Fprintf(w, "Club: %s | Position: %s | Born: %s | Nationality: %s\n",
			res.Info.Club, res.Info.Position, res.Info.Born, res.Info.Nationality)
	}
	if res.Empty() {
		fmt.Fprintln(w, "No recent mentions.")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"#", "Club", "Articles", "League"})
	for i, row := range res.Clubs {
		t.AppendRow(table.Row{i + 1, row.Name, row.Count, row.League})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}

func renderLinks(w io.Writer, res *app.LinkResult) {
	fmt.Fprintf(w, "%s x %s: %d articles in the last %dh\n", res.Player, res.Club, len(res.Articles), res.WindowHours)
	if len(res.Articles) == 0 {
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Published", "Title", "Link"})
	for _, a := range res.Articles {
		t.AppendRow(table.Row{a.Published.Format("2006-01-02 15:04"), a.Title, a.Link})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}
