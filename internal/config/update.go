package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const fileHeader = "# emgscope configuration. See 'emgscope init --help'.\n"

// Save writes cfg to path as YAML, creating parent directories as needed.
// Used by 'emgscope init'; it overwrites whatever is there.
func Save(cfg *Config, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	out := savable(cfg)

	var buf strings.Builder
	buf.WriteString(fileHeader)
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(out); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	encoder.Close()

	if err := os.WriteFile(path, []byte(buf.String()), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// savable strips the sections a preset would fill in again on load, so saved
// files stay short and keep tracking the preset.
func savable(cfg *Config) *Config {
	out := *cfg
	if cfg.Protocol.Preset != "" && cfg.Protocol.Preset != CustomPreset {
		preset, ok := LookupPreset(cfg.Protocol.Preset)
		if ok {
			out.Protocol = ProtocolConfig{Preset: cfg.Protocol.Preset}
			if sameRules(cfg.Classifier.Rules, preset.Classifier.Rules) {
				out.Classifier.Rules = nil
			}
			if cfg.Classifier.Fallback == preset.Classifier.Fallback {
				out.Classifier.Fallback = ""
			}
		}
	}
	return &out
}

func sameRules(a, b []RuleConfig) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// SetLinkAddress rewrites link.address in an existing config file.
// It preserves the existing YAML structure and comments.
func SetLinkAddress(configPath, address string) error {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse as yaml.Node to preserve structure
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return fmt.Errorf("invalid YAML document structure")
	}

	docNode := root.Content[0]
	if docNode.Kind != yaml.MappingNode {
		return fmt.Errorf("expected mapping at document root")
	}

	linkNode := findMapValue(docNode, "link")
	if linkNode == nil {
		linkNode = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		docNode.Content = append(docNode.Content, scalar("link"), linkNode)
	}
	if linkNode.Kind != yaml.MappingNode {
		return fmt.Errorf("'link' in config is not a mapping")
	}

	if addrNode := findMapValue(linkNode, "address"); addrNode != nil {
		addrNode.Kind = yaml.ScalarNode
		addrNode.Tag = "!!str"
		addrNode.Value = address
	} else {
		linkNode.Content = append(linkNode.Content, scalar("address"), scalar(address))
	}

	var buf strings.Builder
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&root); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	encoder.Close()

	if err := os.WriteFile(configPath, []byte(buf.String()), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func scalar(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}

// findMapValue finds a value in a mapping node by key name.
func findMapValue(node *yaml.Node, key string) *yaml.Node {
	if node.Kind != yaml.MappingNode {
		return nil
	}

	for i := 0; i < len(node.Content)-1; i += 2 {
		keyNode := node.Content[i]
		valueNode := node.Content[i+1]

		if keyNode.Kind == yaml.ScalarNode && keyNode.Value == key {
			return valueNode
		}
	}

	return nil
}
