package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

type EnumValue struct {
	value      string
	allowed    map[string]string // value -> help text
	defaultVal string
}

func NewEnumValue(defaultVal string, allowed map[string]string) EnumValue {
	if _, ok := allowed[defaultVal]; !ok {
		panic(fmt.Sprintf("default value %q not in allowed set", defaultVal))
	}
	return EnumValue{
		value:      defaultVal,
		allowed:    allowed,
		defaultVal: defaultVal,
	}
}

func (e *EnumValue) String() string     { return e.value }
func (e *EnumValue) HelpString() string { return "[" + strings.Join(e.AllowedKeys(), ", ") + "]" }
func (e *EnumValue) Type() string       { return "enum" }
func (e *EnumValue) Value() string      { return e.value }

func (e *EnumValue) Set(v string) error {
	if _, ok := e.allowed[v]; ok {
		e.value = v
		return nil
	}
	return fmt.Errorf("must be one of: %s", strings.Join(e.AllowedKeys(), ", "))
}

func (e *EnumValue) AllowedKeys() []string {
	keys := make([]string, 0, len(e.allowed))
	for k := range e.allowed {
		keys = append(keys, k)
	}
	return keys
}

func (e *EnumValue) CompletionFunc() func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		items := make([]string, 0, len(e.allowed))
		for k, help := range e.allowed {
			if help != "" {
				items = append(items, fmt.Sprintf("%s\t%s", k, help))
			} else {
				items = append(items, k)
			}
		}
		return items, cobra.ShellCompDirectiveDefault
	}
}

// EnumSliceValue is a multi-select flag validated against an ordered
// allowed set; repeated or comma-separated uses accumulate, and the
// first explicit use replaces the defaults.
type EnumSliceValue struct {
	values  []string
	allowed []string
	changed bool
}

func NewEnumSliceValue(defaults, allowed []string) EnumSliceValue {
	for _, d := range defaults {
		if !contains(allowed, d) {
			panic(fmt.Sprintf("default value %q not in allowed set", d))
		}
	}
	return EnumSliceValue{values: defaults, allowed: allowed}
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func (e *EnumSliceValue) String() string     { return "[" + strings.Join(e.values, ",") + "]" }
func (e *EnumSliceValue) HelpString() string { return "[" + strings.Join(e.allowed, ", ") + "]" }
func (e *EnumSliceValue) Type() string       { return "enums" }
func (e *EnumSliceValue) Values() []string   { return e.values }

func (e *EnumSliceValue) Set(v string) error {
	parts := strings.Split(v, ",")
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if !contains(e.allowed, part) {
			return fmt.Errorf("must be one of: %s", strings.Join(e.allowed, ", "))
		}
	}
	if !e.changed {
		e.values = nil
		e.changed = true
	}
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if !contains(e.values, part) {
			e.values = append(e.values, part)
		}
	}
	return nil
}

func (e *EnumSliceValue) CompletionFunc() func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return e.allowed, cobra.ShellCompDirectiveDefault
	}
}
