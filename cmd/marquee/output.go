package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"marquee/internal/media"
)

const overviewWidth = 60

// wantsJSON reports whether output should be JSON: either requested or
// stdout is not a terminal.
func (c *commandContext) wantsJSON(cmd *cobra.Command) bool {
	if c.jsonOutput() {
		return true
	}
	return !isTerminal(cmd.OutOrStdout())
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (c *commandContext) printCards(cmd *cobra.Command, cards []media.Card) error {
	if cards == nil {
		cards = []media.Card{}
	}
	if c.wantsJSON(cmd) {
		return writeJSON(cmd, cards)
	}
	out := cmd.OutOrStdout()
	if len(cards) == 0 {
		fmt.Fprintln(out, "No results.")
		return nil
	}
	fmt.Fprintln(out, cardTable(cards))
	return nil
}

func cardTable(cards []media.Card) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"#", "Title", "Year", "IMDb", "Votes", "Genres", "Overview"})
	for i, card := range cards {
		tw.AppendRow(table.Row{
			i + 1,
			card.Title,
			yearLabel(card.ReleaseYear),
			ratingLabel(card.IMDbRating),
			votesLabel(card.IMDbVotes),
			strings.Join(card.GenreNames, ", "),
			text.Trim(card.Overview, overviewWidth),
		})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 7, WidthMax: overviewWidth},
	})
	return tw.Render()
}

// keyValueTable renders two-column rows such as cache statistics.
func keyValueTable(rows [][2]string) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	for _, row := range rows {
		tw.AppendRow(table.Row{row[0], row[1]})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
	return tw.Render()
}

func yearLabel(year int) string {
	if year <= 0 {
		return "-"
	}
	return strconv.Itoa(year)
}

func ratingLabel(value float64) string {
	if value <= 0 {
		return "-"
	}
	return strconv.FormatFloat(value, 'f', 1, 64)
}

func votesLabel(votes int64) string {
	switch {
	case votes <= 0:
		return "-"
	case votes >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(votes)/1_000_000)
	case votes >= 1_000:
		return fmt.Sprintf("%.1fk", float64(votes)/1_000)
	default:
		return strconv.FormatInt(votes, 10)
	}
}
