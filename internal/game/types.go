// types.go
package game

// RawConfig is the rules file as written in YAML. Pointer fields distinguish
// "not set" from zero so a file can override single values of the defaults.
//
//	version: "1"
//	categories:
//	  sacred:
//	    tiers: [legendary]
//	    rules:
//	      legendary: {base: 6, soft: 12, increment: 2, hard: 59}
type RawConfig struct {
	Version    string                 `yaml:"version"`
	Categories map[string]RawCategory `yaml:"categories"`
	Notes      string                 `yaml:"notes,omitempty"`
}

// RawCategory lists the tracked tiers (ascending) and the rule per tier.
type RawCategory struct {
	Tiers []string           `yaml:"tiers,omitempty"`
	Rules map[string]RawRule `yaml:"rules,omitempty"`
}

// RawRule mirrors gacha.MercyRule. The guaranteed rarity is the map key.
type RawRule struct {
	Base      *float64 `yaml:"base,omitempty"`
	Soft      *int     `yaml:"soft,omitempty"`
	Increment *float64 `yaml:"increment,omitempty"`
	Hard      *int     `yaml:"hard,omitempty"`
}
