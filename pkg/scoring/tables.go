package scoring

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Tables is the YAML form of a scorer's keyword tables. Omitted sections
// keep the defaults.
//
//	emotions:
//	  healing: [spa, relax]
//	photogenic: [sunset, view]
//	luxury: [fine dining]
//	strenuous: [hike]
//	lowStamina: [mobility]
type Tables struct {
	Emotions   map[string][]string `yaml:"emotions"`
	Photogenic []string            `yaml:"photogenic"`
	Luxury     []string            `yaml:"luxury"`
	Strenuous  []string            `yaml:"strenuous"`
	LowStamina []string            `yaml:"lowStamina"`
}

// ParseTables builds a scorer from YAML keyword tables
func ParseTables(data []byte) (*Scorer, error) {
	var t Tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse keyword tables: %w", err)
	}

	s := NewScorer()
	if len(t.Emotions) > 0 {
		// Default categories keep their order; new ones follow sorted by name.
		s.Emotions = mergeEmotions(s.Emotions, t.Emotions)
	}
	if t.Photogenic != nil {
		s.Photogenic = lower(t.Photogenic)
	}
	if t.Luxury != nil {
		s.Luxury = lower(t.Luxury)
	}
	if t.Strenuous != nil {
		s.Strenuous = lower(t.Strenuous)
	}
	if t.LowStamina != nil {
		s.LowStamina = lower(t.LowStamina)
	}
	return s, nil
}

// LoadTables reads YAML keyword tables from a file
func LoadTables(path string) (*Scorer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keyword tables %s: %w", path, err)
	}
	return ParseTables(data)
}

func mergeEmotions(defaults []EmotionCategory, overrides map[string][]string) []EmotionCategory {
	// Category names match case-insensitively; keys that fold together share one category.
	folded := make(map[string][]string, len(overrides))
	for name, kw := range overrides {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}
		folded[key] = append(folded[key], lower(kw)...)
	}

	out := make([]EmotionCategory, 0, len(defaults)+len(folded))
	seen := make(map[string]bool, len(folded))
	for _, cat := range defaults {
		if kw, ok := folded[cat.Name]; ok {
			cat.Keywords = dedupe(kw)
			seen[cat.Name] = true
		}
		out = append(out, cat)
	}

	var extra []string
	for name := range folded {
		if !seen[name] {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	for _, name := range extra {
		out = append(out, EmotionCategory{Name: name, Keywords: dedupe(folded[name])})
	}
	return out
}

func dedupe(values []string) []string {
	sort.Strings(values)
	out := values[:0]
	for i, v := range values {
		if i == 0 || v != values[i-1] {
			out = append(out, v)
		}
	}
	return out
}

func lower(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
			out = append(out, v)
		}
	}
	return out
}
