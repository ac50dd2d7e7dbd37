package config

import (
	"time"

	"github.com/gyaneshwarpardhi/scrimstats/internal/roles"
)

// PipelineConfig is the top-level YAML structure.
type PipelineConfig struct {
	Version    string         `yaml:"version"`
	LogLevel   string         `yaml:"log_level"`
	Engine     EngineConf     `yaml:"engine"`
	Variant    VariantConf    `yaml:"variant"`
	RosterSize int            `yaml:"roster_size"`
	Home       HomeConf       `yaml:"home"`
	Roles      RolesConf      `yaml:"roles"`
	Milestones []MilestoneDef `yaml:"milestones"`
	Schemas    []SchemaDef    `yaml:"schemas"`
	Store      StoreConf      `yaml:"store"`
}

// EngineConf holds tunable concurrency settings.
type EngineConf struct {
	Workers       int `yaml:"workers"`
	QueueDepth    int `yaml:"queue_depth"`
	JobTimeoutMs  int `yaml:"job_timeout_ms"`
	LoaderWorkers int `yaml:"loader_workers"`
}

// JobTimeout is JobTimeoutMs as a duration.
func (e EngineConf) JobTimeout() time.Duration {
	return time.Duration(e.JobTimeoutMs) * time.Millisecond
}

// VariantConf selects a preset by name; set fields override the preset.
type VariantConf struct {
	Name       string `yaml:"name" json:"name"`
	Strict     *bool  `yaml:"strict" json:"strict"`
	TagParsing string `yaml:"tag_parsing" json:"tag_parsing"` // split | majority
	TeamLabel  string `yaml:"team_label" json:"team_label"`   // source | tag
	Schema     string `yaml:"schema" json:"schema"`
}

// HomeConf identifies the team of interest by its players.
type HomeConf struct {
	Players []string `yaml:"players"`
}

// RolesConf configures the player-to-role source.
type RolesConf struct {
	SourceURL    string            `yaml:"source_url"`
	Columns      roles.Columns     `yaml:"columns"`
	Aliases      map[string]string `yaml:"aliases"`
	Overrides    roles.Overrides   `yaml:"overrides"`
	CacheTTL     time.Duration     `yaml:"cache_ttl"`
	FetchTimeout time.Duration     `yaml:"fetch_timeout"`
	Static       []roles.Entry     `yaml:"static"`
}

// MilestoneDef is one first-occurrence rule.
type MilestoneDef struct {
	ID     string                 `yaml:"id" json:"id"`
	Column string                 `yaml:"column" json:"column"`
	When   string                 `yaml:"when" json:"when"`
	Credit string                 `yaml:"credit" json:"credit"`
	Params map[string]interface{} `yaml:"params" json:"params,omitempty"`
}

// SchemaDef is a named output layout.
type SchemaDef struct {
	Name       string     `yaml:"name"`
	IncludeWin bool       `yaml:"include_win"`
	Blocks     []BlockDef `yaml:"blocks"`
}

// BlockDef emits differential columns for one stat at one checkpoint.
type BlockDef struct {
	Kind   string `yaml:"kind"` // role | team
	Stat   string `yaml:"stat"`
	Minute int    `yaml:"minute"`
}

// StoreConf configures the optional summary store.
type StoreConf struct {
	Path string `yaml:"path"`
}
