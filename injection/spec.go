// ABOUTME: Loading and validation of attribute injection specifications from JSON or YAML files.
// ABOUTME: Produces an ordered list of Rules; malformed specs fail fast with SpecFormatError.
package injection

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind identifies which element collection a modifier targets.
type Kind string

const (
	KindNodes Kind = "nodes"
	KindPorts Kind = "ports"
	KindLinks Kind = "links"
)

// SpecFormatError is returned for a structurally malformed injection spec:
// not a list of rules, missing required keys, or wrongly typed values. It is
// fatal and raised before any file expansion occurs.
type SpecFormatError struct {
	Msg string
}

// Error implements the error interface.
func (e *SpecFormatError) Error() string {
	return "malformed injection spec: " + e.Msg
}

// Target is one selector group of a modifier: the element kind plus the
// selector strings that pick elements of that kind.
type Target struct {
	Kind      Kind
	Selectors []string
}

// Modifier applies a set of attributes to every element matched by its
// targets' selectors.
type Modifier struct {
	Targets    []Target
	Attributes map[string]any
}

// Rule pairs file glob patterns with the modifiers to apply to every matched
// file, plus optional environment attribute overrides.
type Rule struct {
	Files       []string
	Environment map[string]any
	Modifiers   []Modifier
}

// LoadSpec reads an injection spec file and returns its ordered rules. Files
// with a .yaml or .yml extension are parsed as YAML, everything else as JSON.
func LoadSpec(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading injection spec: %w", err)
	}

	var raw any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &raw)
	default:
		err = json.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, &SpecFormatError{Msg: err.Error()}
	}

	return specFromRaw(raw)
}

// specFromRaw validates and converts a decoded spec document into Rules.
func specFromRaw(raw any) ([]Rule, error) {
	list, ok := raw.([]any)
	if !ok {
		return nil, &SpecFormatError{Msg: "top level must be a list of rules"}
	}

	rules := make([]Rule, 0, len(list))
	for i, item := range list {
		obj, ok := asMap(item)
		if !ok {
			return nil, &SpecFormatError{Msg: fmt.Sprintf("rule %d is not an object", i)}
		}

		files, err := stringList(obj["files"])
		if err != nil || len(files) == 0 {
			return nil, &SpecFormatError{Msg: fmt.Sprintf("rule %d: %q must be a non-empty list of strings", i, "files")}
		}

		var environment map[string]any
		if env, present := obj["environment"]; present {
			environment, ok = asMap(env)
			if !ok {
				return nil, &SpecFormatError{Msg: fmt.Sprintf("rule %d: %q must be an object", i, "environment")}
			}
		}

		rawModifiers, ok := obj["modifiers"].([]any)
		if !ok {
			return nil, &SpecFormatError{Msg: fmt.Sprintf("rule %d: %q must be a list", i, "modifiers")}
		}

		modifiers := make([]Modifier, 0, len(rawModifiers))
		for j, rawMod := range rawModifiers {
			mod, err := modifierFromRaw(i, j, rawMod)
			if err != nil {
				return nil, err
			}
			modifiers = append(modifiers, mod)
		}

		rules = append(rules, Rule{Files: files, Environment: environment, Modifiers: modifiers})
	}

	return rules, nil
}

// modifierFromRaw validates one modifier object. Target kinds are collected
// in a fixed order (nodes, ports, links) followed by any unrecognized kinds
// in sorted order; unknown kinds are rejected later, at resolution time.
func modifierFromRaw(rule, index int, raw any) (Modifier, error) {
	obj, ok := asMap(raw)
	if !ok {
		return Modifier{}, &SpecFormatError{Msg: fmt.Sprintf("rule %d: modifier %d is not an object", rule, index)}
	}

	attrs, ok := asMap(obj["attributes"])
	if !ok {
		return Modifier{}, &SpecFormatError{Msg: fmt.Sprintf("rule %d: modifier %d: %q must be an object", rule, index, "attributes")}
	}

	mod := Modifier{Attributes: attrs}

	seen := map[string]bool{"attributes": true}
	for _, kind := range []Kind{KindNodes, KindPorts, KindLinks} {
		seen[string(kind)] = true
		val, present := obj[string(kind)]
		if !present {
			continue
		}
		selectors, err := stringList(val)
		if err != nil {
			return Modifier{}, &SpecFormatError{Msg: fmt.Sprintf("rule %d: modifier %d: %q must be a list of strings", rule, index, kind)}
		}
		mod.Targets = append(mod.Targets, Target{Kind: kind, Selectors: selectors})
	}

	// Preserve unrecognized keys as targets so the resolver can report them.
	var unknown []string
	for key := range obj {
		if !seen[key] {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	for _, key := range unknown {
		selectors, err := stringList(obj[key])
		if err != nil {
			return Modifier{}, &SpecFormatError{Msg: fmt.Sprintf("rule %d: modifier %d: unexpected key %q", rule, index, key)}
		}
		mod.Targets = append(mod.Targets, Target{Kind: Kind(key), Selectors: selectors})
	}

	if len(mod.Targets) == 0 {
		return Modifier{}, &SpecFormatError{Msg: fmt.Sprintf("rule %d: modifier %d targets no elements", rule, index)}
	}

	return mod, nil
}

// asMap normalizes JSON and YAML decoded objects to map[string]any.
func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		// yaml.v3 only produces this for non-string keys, but normalize anyway.
		out := make(map[string]any, len(m))
		for k, val := range m {
			ks, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[ks] = val
		}
		return out, true
	default:
		return nil, false
	}
}

// stringList converts a decoded list to []string, failing on other shapes.
func stringList(v any) ([]string, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("not a list")
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("not a string: %v", item)
		}
		out = append(out, s)
	}
	return out, nil
}
