package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gyaneshwarpardhi/scrimstats/internal/config"
	"github.com/gyaneshwarpardhi/scrimstats/internal/event"
	"github.com/gyaneshwarpardhi/scrimstats/internal/identity"
	"github.com/gyaneshwarpardhi/scrimstats/internal/matchtest"
	"github.com/gyaneshwarpardhi/scrimstats/internal/pipeline"
	"github.com/gyaneshwarpardhi/scrimstats/internal/roles"
	"github.com/gyaneshwarpardhi/scrimstats/internal/summary"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mustConfig(t *testing.T, body string) *config.PipelineConfig {
	t.Helper()
	cfg, err := config.Parse([]byte(body))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if err := config.Validate(cfg); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	return cfg
}

func newPipeline(t *testing.T, body string, entries []roles.Entry) *pipeline.Pipeline {
	t.Helper()
	p, err := pipeline.New(mustConfig(t, body), roles.NewStatic(entries, nil), quietLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p
}

func cell(t *testing.T, row *summary.Row, header string) string {
	t.Helper()
	for _, c := range row.Cells {
		if c.Header == header {
			return c.Value.String()
		}
	}
	t.Fatalf("no cell %q", header)
	return ""
}

const standardConfig = `
version: "1"
home:
  players: [palafox]
`

func TestRunDirStandard(t *testing.T) {
	p := newPipeline(t, standardConfig, matchtest.Lookup())
	dir := matchtest.WriteDir(t, matchtest.Records())

	res, err := p.RunDir(context.Background(), dir)
	if err != nil {
		t.Fatalf("RunDir: %v", err)
	}
	if res.Home != "team_two" {
		t.Errorf("home = %s, want team_two", res.Home)
	}
	if res.Duplicates != 0 || res.Dropped != 0 || len(res.Unresolved) != 0 || len(res.Incomplete) != 0 {
		t.Errorf("diagnostics = %+v", res)
	}

	row := res.Row
	if got := len(row.Header()); got != 3+5+27 {
		t.Errorf("header has %d columns, want 35", got)
	}
	if row.Date != "2021-08-08" || row.Team != "Dignitas" {
		t.Errorf("date/team = %s/%s", row.Date, row.Team)
	}
	if row.Win == nil || !*row.Win {
		t.Errorf("win = %v, want true", row.Win)
	}
	for _, f := range row.Flags {
		if f.Value != 1 {
			t.Errorf("flag %s = %d, want 1", f.ID, f.Value)
		}
	}

	want := map[string]string{
		"CSD@10 Top": "10",
		"CSD@10 Mid": "30",
		"GD@10 Top":  "1000",
		"XPD@10 Sup": "2500",
		"CSD@15 AD":  "60",
		"XPD@15 Jg":  "1500",
		"GD@15 Team": "22500",
		"GD@20 Team": "30000",
	}
	for h, v := range want {
		if got := cell(t, row, h); got != v {
			t.Errorf("%s = %q, want %q", h, got, v)
		}
	}
}

func TestRunDuplicatesAndOrder(t *testing.T) {
	p := newPipeline(t, standardConfig, matchtest.Lookup())
	records := matchtest.Records()
	records = append(records, records[3])

	res, err := p.Run(context.Background(), records)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Duplicates != 1 {
		t.Errorf("duplicates = %d, want 1", res.Duplicates)
	}
	if res.Events != len(records)-1 {
		t.Errorf("events = %d, want %d", res.Events, len(records)-1)
	}
}

func TestRunIgnoresSnapshotWithoutTimestamp(t *testing.T) {
	p := newPipeline(t, standardConfig, matchtest.Lookup())
	records := matchtest.Records()
	// records[0] is the minute-0 snapshot.
	inner := records[0]["payload"].(map[string]interface{})["payload"].(map[string]interface{})
	delete(inner, "sourceUpdatedAt")

	res, err := p.Run(context.Background(), records)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Dropped != 10 {
		t.Errorf("dropped = %d, want 10", res.Dropped)
	}
	row := res.Row
	if row.Date != "2021-08-08" {
		t.Errorf("date = %q", row.Date)
	}
	// Checkpoints now anchor on minute 1, so 10 minutes lands on minute 11.
	want := map[string]string{
		"CSD@10 Top": "11",
		"GD@15 Team": "24000",
		"GD@20 Team": "30000",
	}
	for h, v := range want {
		if got := cell(t, row, h); got != v {
			t.Errorf("%s = %q, want %q", h, got, v)
		}
	}
}

func TestRunAmbiguousHome(t *testing.T) {
	cases := []struct {
		name    string
		players string
	}{
		{"neither", "[Nobody]"},
		{"both", "[Palafox, Armao]"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body := fmt.Sprintf("version: \"1\"\nhome:\n  players: %s\n", tc.players)
			p := newPipeline(t, body, matchtest.Lookup())
			_, err := p.Run(context.Background(), matchtest.Records())
			if !errors.Is(err, identity.ErrAmbiguousIdentity) {
				t.Fatalf("err = %v, want ErrAmbiguousIdentity", err)
			}
		})
	}
}

func TestRunMalformedRecord(t *testing.T) {
	p := newPipeline(t, standardConfig, matchtest.Lookup())
	records := matchtest.Records()
	delete(records[5], "seqIdx")

	if _, err := p.Run(context.Background(), records); !errors.Is(err, event.ErrMalformedInput) {
		t.Fatalf("err = %v, want ErrMalformedInput", err)
	}
}

func TestRunCancelled(t *testing.T) {
	p := newPipeline(t, standardConfig, matchtest.Lookup())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Run(ctx, matchtest.Records()); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestRunSecondaryWithUnresolvedPlayer(t *testing.T) {
	var entries []roles.Entry
	for _, e := range matchtest.Lookup() {
		if e.Name != "Breezy" {
			entries = append(entries, e)
		}
	}
	p := newPipeline(t, standardConfig+"variant:\n  name: secondary\n", entries)

	res, err := p.Run(context.Background(), matchtest.Records())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Unresolved) != 1 || res.Unresolved[0] != "Breezy" {
		t.Errorf("unresolved = %v", res.Unresolved)
	}
	if len(res.Incomplete) != 21 {
		t.Errorf("incomplete clocks = %d, want 21", len(res.Incomplete))
	}

	row := res.Row
	if row.Win != nil {
		t.Error("secondary rows carry no win column")
	}
	if row.Team != "DIG" {
		t.Errorf("team = %q, want tag label DIG", row.Team)
	}
	if got := len(row.Cells); got != 30 {
		t.Errorf("cells = %d, want 30", got)
	}
	if got := cell(t, row, "CSD@10 Sup"); got != "" {
		t.Errorf("CSD@10 Sup = %q, want missing", got)
	}
	if got := cell(t, row, "CSD@15 Top"); got != "15" {
		t.Errorf("CSD@15 Top = %q, want 15", got)
	}
}

func TestLoadLookup(t *testing.T) {
	const page = `<table>
<tr><th>Official Summoner Name</th><th>Team</th><th>Position</th></tr>
<tr><td>Palafox</td><td>Counter Logic Gaming</td><td>Mid</td></tr>
<tr><td>Armao</td><td>Dignitas</td><td>Top</td></tr>
</table>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, page)
	}))
	defer srv.Close()

	cfg := mustConfig(t, standardConfig+fmt.Sprintf(`
roles:
  source_url: %s
  static:
    - {name: Palafox, team: CLG Academy, role: jungle}
`, srv.URL))

	lookup, err := pipeline.LoadLookup(context.Background(), cfg, nil, quietLogger())
	if err != nil {
		t.Fatalf("LoadLookup: %v", err)
	}
	if lookup.Len() != 2 {
		t.Errorf("len = %d, want 2", lookup.Len())
	}
	e, ok := lookup.Lookup("Palafox")
	if !ok || e.Role != roles.Jungle {
		t.Errorf("Palafox = %+v, want static jungle entry", e)
	}
	if e, ok := lookup.Lookup("Armao"); !ok || e.Team != "Dignitas" {
		t.Errorf("Armao = %+v", e)
	}
}
