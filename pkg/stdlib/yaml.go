package stdlib

import (
	"strings"

	"gopkg.in/yaml.v3"

	"tide/interpreter-go/pkg/diag"
	"tide/interpreter-go/pkg/runtime"
)

// YAML is the `yaml` library. Mappings keep their document order.
func YAML() runtime.NativeModule {
	return runtime.NativeModule{
		"yaml": {
			Functions: map[string]runtime.NativeFunc{
				"parse": func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
					if err := ExpectArgs("parse", args, 1, 1); err != nil {
						return nil, err
					}
					text, err := StringArg("parse", args, 0)
					if err != nil {
						return nil, err
					}
					return ParseYAML(text)
				},
				"stringify": func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
					if err := ExpectArgs("stringify", args, 1, 1); err != nil {
						return nil, err
					}
					text, err := StringifyYAML(args[0])
					if err != nil {
						return nil, err
					}
					return str(text), nil
				},
			},
		},
	}
}

// ParseYAML decodes the first document in text. An empty document is null.
func ParseYAML(text string) (runtime.Value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		return nil, diag.Errorf(diag.SyntaxError, "yaml: %s", strings.TrimPrefix(err.Error(), "yaml: "))
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return runtime.Null, nil
	}
	return nodeToValue(doc.Content[0])
}

func nodeToValue(node *yaml.Node) (runtime.Value, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return runtime.Null, nil
		}
		return nodeToValue(node.Content[0])
	case yaml.AliasNode:
		return nodeToValue(node.Alias)
	case yaml.SequenceNode:
		list := runtime.NewList()
		for _, child := range node.Content {
			el, err := nodeToValue(child)
			if err != nil {
				return nil, err
			}
			list.Elements = append(list.Elements, el)
		}
		return list, nil
	case yaml.MappingNode:
		obj := runtime.NewObject()
		for idx := 0; idx+1 < len(node.Content); idx += 2 {
			key := node.Content[idx].Value
			val, err := nodeToValue(node.Content[idx+1])
			if err != nil {
				return nil, err
			}
			obj.Set(key, val)
		}
		return obj, nil
	case yaml.ScalarNode:
		return scalarToValue(node)
	default:
		return nil, diag.Errorf(diag.SyntaxError, "yaml: unsupported node at line %d", node.Line)
	}
}

func scalarToValue(node *yaml.Node) (runtime.Value, error) {
	var decoded any
	if err := node.Decode(&decoded); err != nil {
		return nil, diag.Errorf(diag.SyntaxError, "yaml: %s", err)
	}
	switch v := decoded.(type) {
	case nil:
		return runtime.Null, nil
	case bool:
		return runtime.Bool(v), nil
	case int:
		return number(float64(v)), nil
	case int64:
		return number(float64(v)), nil
	case uint64:
		return number(float64(v)), nil
	case float64:
		return number(v), nil
	case string:
		return str(v), nil
	default:
		// Timestamps and other tagged scalars keep their source text.
		return str(node.Value), nil
	}
}

// StringifyYAML encodes v as a YAML document, objects in insertion order.
func StringifyYAML(v runtime.Value) (string, error) {
	node, err := valueToNode(v)
	if err != nil {
		return "", err
	}
	out, err := yaml.Marshal(node)
	if err != nil {
		return "", diag.Errorf(diag.TypeError, "yaml: %s", err)
	}
	return string(out), nil
}

func valueToNode(v runtime.Value) (*yaml.Node, error) {
	switch val := runtime.Unwrap(v).(type) {
	case runtime.NullValue:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	case runtime.BoolValue:
		text := "false"
		if val.Val {
			text = "true"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: text}, nil
	case runtime.NumberValue:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: yamlNumberTag(val.Val), Value: yamlNumber(val.Val)}, nil
	case runtime.StringValue:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: val.Val}, nil
	case *runtime.ListValue:
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, el := range val.Elements {
			child, err := valueToNode(el)
			if err != nil {
				return nil, err
			}
			seq.Content = append(seq.Content, child)
		}
		return seq, nil
	case *runtime.ObjectValue:
		mapping := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, key := range val.Keys() {
			field, _ := val.Get(key)
			child, err := valueToNode(field)
			if err != nil {
				return nil, err
			}
			mapping.Content = append(mapping.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}, child)
		}
		return mapping, nil
	default:
		return nil, diag.Errorf(diag.TypeError, "yaml: cannot encode %s", runtime.TypeName(v))
	}
}

func yamlNumberTag(f float64) string {
	if f == float64(int64(f)) {
		return "!!int"
	}
	return "!!float"
}

func yamlNumber(f float64) string {
	switch runtime.FormatNumber(f) {
	case "Infinity":
		return ".inf"
	case "-Infinity":
		return "-.inf"
	case "NaN":
		return ".nan"
	default:
		return runtime.FormatNumber(f)
	}
}
