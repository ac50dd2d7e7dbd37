package summary

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"
	"time"

	"github.com/gyaneshwarpardhi/scrimstats/internal/checkpoint"
	"github.com/gyaneshwarpardhi/scrimstats/internal/config"
	"github.com/gyaneshwarpardhi/scrimstats/internal/roles"
	"github.com/gyaneshwarpardhi/scrimstats/internal/roster"
)

// Cell is one differential column.
type Cell struct {
	Header string       `json:"header"`
	Value  roster.Value `json:"value"`
}

// Row is a match summary. Immutable once assembled.
type Row struct {
	Date  string        `json:"date"`
	Win   *bool         `json:"win,omitempty"`
	Team  string        `json:"team"`
	Flags []roster.Flag `json:"flags"`
	Cells []Cell        `json:"cells"`
}

// Options tune row assembly.
type Options struct {
	// TeamLabel is "source" to prefer the role source's team name for the
	// opponent, or "tag" to use the label parsed from player tags.
	TeamLabel string
}

// Assemble builds home's row against opp. Checkpoint clocks are resolved
// once per minute from the home roster and reused for both sides.
func Assemble(home, opp *roster.Roster, schema Schema, opts Options) (*Row, error) {
	if home == nil || opp == nil {
		return nil, fmt.Errorf("summary: both rosters are required")
	}
	clocks := make(map[int]string)
	for _, m := range schema.Minutes() {
		c, err := checkpoint.Resolve(home, time.Duration(m)*time.Minute)
		if err != nil {
			return nil, fmt.Errorf("resolve %d min checkpoint: %w", m, err)
		}
		clocks[m] = c
	}

	row := &Row{
		Date:  home.Date(),
		Team:  teamLabel(opp, opts.TeamLabel),
		Flags: slices.Clone(home.Milestones),
	}
	if schema.IncludeWin {
		won := home.Won
		row.Win = &won
	}

	for _, b := range schema.Blocks {
		clock := clocks[b.Minute]
		headers := b.Headers()
		if b.Kind == TeamBlock {
			v, err := checkpoint.TeamDifferential(home, opp, clock, b.Stat)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", headers[0], err)
			}
			row.Cells = append(row.Cells, Cell{Header: headers[0], Value: v})
			continue
		}
		for i, role := range roles.Canonical {
			v, err := checkpoint.Differential(home, opp, clock, role, b.Stat)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", headers[i], err)
			}
			row.Cells = append(row.Cells, Cell{Header: headers[i], Value: v})
		}
	}
	return row, nil
}

func teamLabel(r *roster.Roster, mode string) string {
	if mode == config.TeamLabelSource {
		if t := r.SourceTeam(); t != "" {
			return t
		}
	}
	return r.Label()
}

// Header returns the row's column names.
func (r *Row) Header() []string {
	out := []string{"Date"}
	if r.Win != nil {
		out = append(out, "Win")
	}
	out = append(out, "Team")
	for _, f := range r.Flags {
		out = append(out, f.Column)
	}
	for _, c := range r.Cells {
		out = append(out, c.Header)
	}
	return out
}

// Record returns the row's values aligned with Header. Missing values are
// empty strings.
func (r *Row) Record() []string {
	out := []string{r.Date}
	if r.Win != nil {
		if *r.Win {
			out = append(out, "True")
		} else {
			out = append(out, "False")
		}
	}
	out = append(out, r.Team)
	for _, f := range r.Flags {
		out = append(out, strconv.Itoa(f.Value))
	}
	for _, c := range r.Cells {
		out = append(out, c.Value.String())
	}
	return out
}

// WriteCSV writes a header taken from the first row followed by one line
// per row. Rows with a different header are rejected.
func WriteCSV(w io.Writer, rows ...*Row) error {
	if len(rows) == 0 {
		return nil
	}
	cw := csv.NewWriter(w)
	header := rows[0].Header()
	if err := cw.Write(header); err != nil {
		return err
	}
	for i, r := range rows {
		if i > 0 && !slices.Equal(r.Header(), header) {
			return fmt.Errorf("row %d: columns differ from first row", i)
		}
		if err := cw.Write(r.Record()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
