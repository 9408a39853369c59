package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/basturkme/4IER-HMI/internal/errors"
)

// CustomPreset disables preset lookup; protocol.channels must be given.
const CustomPreset = "custom"

// Preset bundles a wire format with the classifier rules that go with it.
type Preset struct {
	Description string
	Protocol    ProtocolConfig
	Classifier  ClassifierConfig
}

var probabilityRules = []RuleConfig{
	{Channel: "rest", State: "REST"},
	{Channel: "index", State: "INDEX"},
	{Channel: "middle", State: "MIDDLE"},
}

// Presets are the known sensor firmware output formats, keyed by name.
// Aliases point at the same definition.
var Presets = map[string]Preset{
	"A": {
		Description: "signal,class,confidence (CSV, class is an integer id)",
		Protocol: ProtocolConfig{
			Variant:   "delimited",
			Separator: ",",
			Channels: []ChannelConfig{
				{Name: "signal"},
				{Name: "class", Integer: true},
				{Name: "confidence"},
			},
		},
	},
	"B": {
		Description: "rest,index,middle probabilities (CSV)",
		Protocol: ProtocolConfig{
			Variant:   "delimited",
			Separator: ",",
			Channels: []ChannelConfig{
				{Name: "rest"},
				{Name: "index"},
				{Name: "middle"},
			},
		},
		Classifier: ClassifierConfig{Threshold: 0.5, Fallback: "UNCERTAIN", Rules: probabilityRules},
	},
	"C": {
		Description: "Rest:<p>,Index:<p>,Middle:<p> (strict labels)",
		Protocol: ProtocolConfig{
			Variant:   "labeled-strict",
			Separator: ",",
			Channels: []ChannelConfig{
				{Name: "rest", Label: "Rest:"},
				{Name: "index", Label: "Index:"},
				{Name: "middle", Label: "Middle:"},
			},
		},
		Classifier: ClassifierConfig{Threshold: 0.6, Fallback: "UNCERTAIN", Rules: probabilityRules},
	},
	"D": {
		Description: "[Test:<x>] Rest:<p> Index:<p> Middle:<p> with any text between",
		Protocol: ProtocolConfig{
			Variant:   "labeled-loose",
			Separator: ",",
			Channels: []ChannelConfig{
				{Name: "test", Label: "Test:", Optional: true},
				{Name: "rest", Label: "Rest:"},
				{Name: "index", Label: "Index:"},
				{Name: "middle", Label: "Middle:"},
			},
		},
		Classifier: ClassifierConfig{Threshold: 0.6, Fallback: "UNCERTAIN", Rules: probabilityRules},
	},
	"filtered": {
		Description: "Ham:<raw> | Filtreli:<filtered> (low-pass filtered envelope)",
		Protocol: ProtocolConfig{
			Variant:   "labeled-loose",
			Separator: ",",
			Channels: []ChannelConfig{
				{Name: "raw", Label: "Ham:"},
				{Name: "filtered", Label: "Filtreli:"},
			},
		},
		Classifier: ClassifierConfig{
			Threshold: 0.2,
			Fallback:  "REST",
			Rules:     []RuleConfig{{Channel: "filtered", State: "MOVEMENT"}},
		},
	},
}

var presetAliases = map[string]string{
	"signal-class":  "A",
	"probabilities": "B",
	"labeled":       "C",
	"labeled-loose": "D",
}

// LookupPreset finds a preset by name or alias. Names are case-insensitive
// for the single-letter forms.
func LookupPreset(name string) (Preset, bool) {
	if alias, ok := presetAliases[name]; ok {
		name = alias
	}
	if p, ok := Presets[name]; ok {
		return p, true
	}
	p, ok := Presets[strings.ToUpper(name)]
	return p, ok
}

// IsCustom reports whether the protocol lists its own channels instead of
// taking them from a preset.
func (p ProtocolConfig) IsCustom() bool {
	return len(p.Channels) > 0 || p.Preset == "" || p.Preset == CustomPreset
}

// PresetNames returns the canonical preset names, sorted.
func PresetNames() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ApplyPreset fills the protocol and classifier sections from the named preset.
// Explicit channels win over the preset: a config that lists its own channels
// only inherits defaults for variant and separator, and gets no classifier rules
// unless it lists them.
//
// A zero threshold counts as unset and takes the preset's value.
func (c *Config) ApplyPreset() error {
	p := &c.Protocol

	if p.IsCustom() {
		if p.Variant == "" {
			p.Variant = "labeled-loose"
		}
		if p.Separator == "" {
			p.Separator = ","
		}
		if c.Classifier.Fallback == "" {
			c.Classifier.Fallback = "UNCERTAIN"
		}
		return nil
	}

	preset, ok := LookupPreset(p.Preset)
	if !ok {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown protocol preset '%s'", p.Preset),
			fmt.Sprintf("Use one of: %s, or 'custom' with your own channels", strings.Join(PresetNames(), ", ")))
	}

	if p.Variant == "" {
		p.Variant = preset.Protocol.Variant
	}
	if p.Separator == "" {
		p.Separator = preset.Protocol.Separator
	}
	p.Channels = append([]ChannelConfig(nil), preset.Protocol.Channels...)

	cl := &c.Classifier
	if len(cl.Rules) == 0 {
		cl.Rules = append([]RuleConfig(nil), preset.Classifier.Rules...)
	}
	if cl.Threshold == 0 {
		cl.Threshold = preset.Classifier.Threshold
	}
	if cl.Fallback == "" {
		cl.Fallback = preset.Classifier.Fallback
	}
	if cl.Fallback == "" {
		cl.Fallback = "UNCERTAIN"
	}
	return nil
}
