// Copyright 2025 Binsift Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package plugin

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/binsift/binsift/pkg/module"
)

var validate = validator.New()

// Action is what a rule does to a result whose description matches.
type Action string

const (
	// ActionInvalidate clears Valid so the result is dropped entirely.
	ActionInvalidate Action = "invalidate"
	// ActionHide clears Display so the result is stored but not printed.
	ActionHide Action = "hide"
	// ActionSkipExtract clears Extract so no carving happens.
	ActionSkipExtract Action = "skip-extract"
	// ActionTag attaches an extra attribute to the result.
	ActionTag Action = "tag"
)

// Manifest is one YAML plugin file. Rules run against every result of
// every module unless a rule narrows itself to one module.
type Manifest struct {
	Name        string `yaml:"name" validate:"required,min=3,max=63"`
	Version     string `yaml:"version" validate:"required,semver"`
	Author      string `yaml:"author"`
	Description string `yaml:"description"`

	// Requires constrains the binsift version the plugin works with,
	// e.g. ">= 1.2.0". Empty means any version.
	Requires string `yaml:"requires"`

	Rules []Rule `yaml:"rules" validate:"required,min=1,dive"`

	// Path is where the manifest was loaded from. Set by the store.
	Path string `yaml:"-"`

	// LoadedAt is when the store parsed the file. Set by the store.
	LoadedAt time.Time `yaml:"-"`
}

// Rule matches result descriptions and applies one action.
type Rule struct {
	// Module limits the rule to results reported by the named module.
	// Empty applies to all modules.
	Module string `yaml:"module"`

	Match  Match  `yaml:"match"`
	Action Action `yaml:"action" validate:"required,oneof=invalidate hide skip-extract tag"`

	// Tag names the extra attribute set by ActionTag.
	Tag string `yaml:"tag" validate:"required_if=Action tag"`

	// Value is the attribute value for ActionTag. Empty stores true.
	Value string `yaml:"value"`
}

// Match selects results by description. Contains is a case-insensitive
// substring test, Pattern an RE2 expression. When both are present a
// description has to satisfy both.
type Match struct {
	Contains string `yaml:"contains"`
	Pattern  string `yaml:"pattern"`
}

// CompiledManifest is a validated manifest with its patterns compiled.
type CompiledManifest struct {
	Manifest
	rules []compiledRule
}

type compiledRule struct {
	rule     Rule
	contains string
	re       *regexp.Regexp
}

// Compile validates the manifest and compiles its match patterns.
func Compile(m Manifest) (*CompiledManifest, error) {
	if err := validate.Struct(m); err != nil {
		return nil, fmt.Errorf("invalid manifest %q: %w", m.Name, err)
	}

	cm := &CompiledManifest{Manifest: m}
	for i, rule := range m.Rules {
		if rule.Match.Contains == "" && rule.Match.Pattern == "" {
			return nil, fmt.Errorf("invalid manifest %q: rule %d: match needs contains or pattern", m.Name, i+1)
		}
		cr := compiledRule{
			rule:     rule,
			contains: strings.ToLower(rule.Match.Contains),
		}
		if rule.Match.Pattern != "" {
			re, err := regexp.Compile(rule.Match.Pattern)
			if err != nil {
				return nil, fmt.Errorf("invalid manifest %q: rule %d: %w", m.Name, i+1, err)
			}
			cr.re = re
		}
		cm.rules = append(cm.rules, cr)
	}
	return cm, nil
}

// Apply runs every matching rule against the result and reports how many
// applied. moduleName scopes rules that name a module.
func (cm *CompiledManifest) Apply(moduleName string, r *module.Result) int {
	applied := 0
	for _, cr := range cm.rules {
		if cr.rule.Module != "" && cr.rule.Module != moduleName {
			continue
		}
		if !cr.matches(r.Description) {
			continue
		}
		applied++
		switch cr.rule.Action {
		case ActionInvalidate:
			r.Valid = false
		case ActionHide:
			r.Display = false
		case ActionSkipExtract:
			r.Extract = false
		case ActionTag:
			if cr.rule.Value != "" {
				r.SetAttr(cr.rule.Tag, cr.rule.Value)
			} else {
				r.SetAttr(cr.rule.Tag, true)
			}
		}
	}
	return applied
}

func (cr *compiledRule) matches(description string) bool {
	if cr.contains != "" && !strings.Contains(strings.ToLower(description), cr.contains) {
		return false
	}
	if cr.re != nil && !cr.re.MatchString(description) {
		return false
	}
	return true
}
