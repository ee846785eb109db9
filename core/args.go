package core

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

const DefaultFlagPrefix = "--"

// ArgValues holds the raw values of one custom argument: either a scalar
// spec (a literal, glob or range expression) or an explicit list of
// literals.
type ArgValues struct {
	Spec   string   `json:"spec,omitempty"`
	List   []string `json:"list,omitempty"`
	IsList bool     `json:"is_list,omitempty"`
}

// ArgFlag renders the values of an argument as command-line options.
type ArgFlag struct {
	Prefix string `json:"prefix"`
	Switch bool   `json:"switch,omitempty"`
}

// CustomArg is one entry of the custom_args mapping.
type CustomArg struct {
	Name string `json:"name"`
	ArgValues
	Flag *ArgFlag `json:"flag,omitempty"`
}

// CustomArgs is an ordered custom_args mapping.
type CustomArgs []CustomArg

// Names lists the argument names in document order.
func (a CustomArgs) Names() []string {
	names := make([]string, len(a))
	for i, arg := range a {
		names[i] = arg.Name
	}
	return names
}

// UnmarshalYAML decodes the custom_args mapping, preserving key order.
// Values may be scalars, sequences of scalars, or flag mappings:
//
//	custom_args:
//	  input: "data/*.fa"
//	  seed: "1-3,5"
//	  label: [2024-01-05, 2024-02-05]
//	  local: {switch: true}
//	  threads: {prefix: "-", values: "1,2"}
func (a *CustomArgs) UnmarshalYAML(value *yaml.Node) error {
	if value.ShortTag() == "!!null" {
		*a = nil
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: custom_args must be a mapping", value.Line)
	}
	args := make(CustomArgs, 0, len(value.Content)/2)
	seen := map[string]bool{}
	for i := 0; i+1 < len(value.Content); i += 2 {
		key, node := value.Content[i], value.Content[i+1]
		if seen[key.Value] {
			return fmt.Errorf("line %d: duplicate custom argument %q", key.Line, key.Value)
		}
		seen[key.Value] = true
		arg := CustomArg{Name: key.Value}
		if node.Kind == yaml.MappingNode {
			if err := decodeFlag(&arg, node); err != nil {
				return err
			}
		} else if err := decodeValues(&arg.ArgValues, arg.Name, node); err != nil {
			return err
		}
		args = append(args, arg)
	}
	*a = args
	return nil
}

func decodeValues(values *ArgValues, name string, node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.ShortTag() == "!!null" {
			return fmt.Errorf("line %d: custom argument %q has no value", node.Line, name)
		}
		values.Spec = node.Value
		return nil
	case yaml.SequenceNode:
		values.IsList = true
		values.List = make([]string, 0, len(node.Content))
		for _, item := range node.Content {
			if item.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: custom argument %q: list items must be scalars", item.Line, name)
			}
			values.List = append(values.List, item.Value)
		}
		return nil
	default:
		return fmt.Errorf("line %d: custom argument %q: unsupported value", node.Line, name)
	}
}

func decodeFlag(arg *CustomArg, node *yaml.Node) error {
	var spec struct {
		Prefix *string   `yaml:"prefix"`
		Switch bool      `yaml:"switch"`
		Values yaml.Node `yaml:"values"`
	}
	if err := node.Decode(&spec); err != nil {
		return fmt.Errorf("line %d: custom argument %q: %w", node.Line, arg.Name, err)
	}
	arg.Flag = &ArgFlag{Prefix: DefaultFlagPrefix, Switch: spec.Switch}
	if spec.Prefix != nil {
		arg.Flag.Prefix = *spec.Prefix
	}
	if spec.Switch {
		if spec.Values.Kind != 0 {
			return fmt.Errorf("line %d: custom argument %q: switch takes no values", node.Line, arg.Name)
		}
		return nil
	}
	if spec.Values.Kind == 0 {
		return fmt.Errorf("line %d: custom argument %q: missing values", node.Line, arg.Name)
	}
	return decodeValues(&arg.ArgValues, arg.Name, &spec.Values)
}
