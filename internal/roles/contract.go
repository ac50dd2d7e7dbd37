package roles

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Columns names the header cells of a contract-database table.
type Columns struct {
	Name     string `yaml:"name"`
	Team     string `yaml:"team"`
	Position string `yaml:"position"`
}

// DefaultColumns matches the public contract-database layout.
var DefaultColumns = Columns{
	Name:     "Official Summoner Name",
	Team:     "Team",
	Position: "Position",
}

// ParseContractTable extracts roster entries from the first HTML table
// whose header row carries the name and position columns. Rows with an
// unrecognised position are kept with an Unresolved role.
func ParseContractTable(r io.Reader, cols Columns) ([]Entry, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var (
		entries []Entry
		found   bool
	)
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		idx := headerIndex(table)
		nameCol, ok := lookupCol(idx, cols.Name)
		if !ok {
			return true
		}
		posCol, ok := lookupCol(idx, cols.Position)
		if !ok {
			return true
		}
		teamCol, hasTeam := lookupCol(idx, cols.Team)

		found = true
		table.Find("tr").Each(func(_ int, row *goquery.Selection) {
			cells := row.Find("td")
			if cells.Length() == 0 {
				return
			}
			name := cellText(cells, nameCol)
			if name == "" {
				return
			}
			e := Entry{Name: name}
			e.Role, _ = ParseRole(cellText(cells, posCol))
			if hasTeam {
				e.Team = cellText(cells, teamCol)
			}
			entries = append(entries, e)
		})
		return false
	})
	if !found {
		return nil, fmt.Errorf("no table with %q and %q columns", cols.Name, cols.Position)
	}
	return entries, nil
}

func headerIndex(table *goquery.Selection) map[string]int {
	idx := make(map[string]int)
	table.Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		ths := row.Find("th")
		if ths.Length() == 0 {
			return true
		}
		ths.Each(func(i int, th *goquery.Selection) {
			idx[normalizeHeader(th.Text())] = i
		})
		return false
	})
	return idx
}

func lookupCol(idx map[string]int, header string) (int, bool) {
	if header == "" {
		return 0, false
	}
	i, ok := idx[normalizeHeader(header)]
	return i, ok
}

func normalizeHeader(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func cellText(cells *goquery.Selection, i int) string {
	if i >= cells.Length() {
		return ""
	}
	return strings.TrimSpace(cells.Eq(i).Text())
}
