package condition

import (
	"reflect"
	"testing"
)

// mockCtx implements EvalContext over flat dotted keys.
type mockCtx struct {
	data map[string]interface{}
}

func (m *mockCtx) Resolve(path []string) (interface{}, bool) {
	key := path[0]
	for _, p := range path[1:] {
		key += "." + p
	}
	v, ok := m.data[key]
	return v, ok
}

func ctx(kv ...interface{}) *mockCtx {
	m := &mockCtx{data: make(map[string]interface{})}
	for i := 0; i < len(kv)-1; i += 2 {
		m.data[kv[i].(string)] = kv[i+1]
	}
	return m
}

type evalCase struct {
	name    string
	expr    string
	ctx     EvalContext
	want    bool
	wantErr bool
}

func TestEvaluate(t *testing.T) {
	cases := []evalCase{
		{
			name: "string equality",
			expr: `monsterType == "riftHerald"`,
			ctx:  ctx("monsterType", "riftHerald"),
			want: true,
		},
		{
			name: "string inequality",
			expr: `monsterType == "riftHerald"`,
			ctx:  ctx("monsterType", "dragon"),
			want: false,
		},
		{
			name: "dotted numeric field",
			expr: "teamOne.dragonKills == 1",
			ctx:  ctx("teamOne.dragonKills", float64(1)),
			want: true,
		},
		{
			name: "or across teams",
			expr: "teamOne.dragonKills == 1 OR teamTwo.dragonKills == 1",
			ctx:  ctx("teamOne.dragonKills", float64(0), "teamTwo.dragonKills", float64(1)),
			want: true,
		},
		{
			name: "and chain",
			expr: `buildingType == "turret" AND lane == "mid" AND turretTier == "outer"`,
			ctx:  ctx("buildingType", "turret", "lane", "mid", "turretTier", "outer"),
			want: true,
		},
		{
			name: "and chain short",
			expr: `buildingType == "turret" AND lane == "mid"`,
			ctx:  ctx("buildingType", "turret", "lane", "top"),
			want: false,
		},
		{
			name: "not null present",
			expr: "victimTeamUrn != null",
			ctx:  ctx("victimTeamUrn", "live:lol:riot:team:one"),
			want: true,
		},
		{
			name: "not null missing",
			expr: "victimTeamUrn != null",
			ctx:  ctx(),
			want: false,
		},
		{
			name: "not null explicit null",
			expr: "victimTeamUrn != null",
			ctx:  ctx("victimTeamUrn", nil),
			want: false,
		},
		{
			name: "missing field compares false",
			expr: "winningTeam > 0",
			ctx:  ctx(),
			want: false,
		},
		{
			name: "gte",
			expr: "gameTime >= 600000",
			ctx:  ctx("gameTime", float64(600000)),
			want: true,
		},
		{
			name: "negative literal",
			expr: "delta < -5",
			ctx:  ctx("delta", float64(-10)),
			want: true,
		},
		{
			name: "not",
			expr: `NOT (lane == "mid")`,
			ctx:  ctx("lane", "bot"),
			want: true,
		},
		{
			name: "contains string",
			expr: `summonerName contains "Finn"`,
			ctx:  ctx("summonerName", "CLG Finn"),
			want: true,
		},
		{
			name: "contains array",
			expr: `tags contains "elder"`,
			ctx:  ctx("tags", []interface{}{"air", "elder"}),
			want: true,
		},
		{
			name: "matches",
			expr: `killerTeamUrn matches ":team:one$"`,
			ctx:  ctx("killerTeamUrn", "live:lol:riot:team:one"),
			want: true,
		},
		{
			name: "bool literal",
			expr: "isFirst == true",
			ctx:  ctx("isFirst", true),
			want: true,
		},
		{
			name:    "ordering a string is an error",
			expr:    "lane > 3",
			ctx:     ctx("lane", "mid"),
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ast, err := Parse(tc.expr)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tc.expr, err)
			}
			got, err := Evaluate(ast, tc.ctx)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Evaluate: %v", err)
			}
			if got != tc.want {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	bad := []string{
		"",
		`lane == "mid`,
		"lane =",
		"lane = mid",
		`(lane == "mid"`,
		`lane == "mid" extra`,
		`lane matches "("`,
		`lane matches other`,
		"#",
	}
	for _, expr := range bad {
		if _, err := Parse(expr); err == nil {
			t.Errorf("Parse(%q) should fail", expr)
		}
	}
}

func TestFields(t *testing.T) {
	ast := MustParse(`buildingType == "turret" AND (lane == "mid" OR NOT turretTier == null)`)
	got := Fields(ast)
	want := []string{"buildingType", "lane", "turretTier"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Fields = %v, want %v", got, want)
	}
}

func TestPrecedence(t *testing.T) {
	const expr = "a == 1 OR b == 1 AND c == 1"
	cases := []struct {
		a, b, c float64
		want    bool
	}{
		{1, 0, 0, true},
		{0, 1, 0, false},
		{0, 1, 1, true},
	}
	ast := MustParse(expr)
	for _, tc := range cases {
		got, err := Evaluate(ast, ctx("a", tc.a, "b", tc.b, "c", tc.c))
		if err != nil {
			t.Fatal(err)
		}
		if got != tc.want {
			t.Errorf("a=%v b=%v c=%v: got %v, want %v", tc.a, tc.b, tc.c, got, tc.want)
		}
	}
}

func TestEscapedString(t *testing.T) {
	ast := MustParse(`name == 'O\'Brien'`)
	got, err := Evaluate(ast, ctx("name", "O'Brien"))
	if err != nil || !got {
		t.Errorf("got %v, %v", got, err)
	}
}
