package gldf

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// Structured-data wire markers, shared with every tree consumer.
const (
	// AttrPrefix marks keys that map attribute-classified fields.
	AttrPrefix = "@"

	// TextKey is the reserved key for text-content fields.
	TextKey = "$text"
)

// Tree is the generic key-value form of a document subtree: attributes are
// keys prefixed with AttrPrefix, text content sits under TextKey, repeated
// elements are ordered []any lists under their element name (nested under
// the wrapper key when the schema defines one). For a given document the
// tree is field-for-field equivalent to the markup encoding.
type Tree map[string]any

// EncodeTree converts root into its structured-data representation.
func EncodeTree(root *Root) (Tree, error) {
	if root == nil {
		return nil, fmt.Errorf("%w: document is nil", ErrValidation)
	}
	return encodeTree(reflect.ValueOf(root).Elem())
}

// DecodeTree materializes a Root from its structured-data representation.
// It accepts the map and list shapes produced by the JSON, YAML and
// MessagePack front ends; unknown keys are ignored.
func DecodeTree(t Tree) (*Root, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: tree is nil", ErrMalformed)
	}
	root := new(Root)
	if err := decodeTree(map[string]any(t), reflect.ValueOf(root).Elem(), RootElementName); err != nil {
		return nil, err
	}
	return root, nil
}

func encodeTree(v reflect.Value) (Tree, error) {
	td, err := descriptorsOf(v.Type())
	if err != nil {
		return nil, err
	}
	m := make(Tree)
	for i := range td.fields {
		fd := &td.fields[i]
		f := v.Field(fd.index)
		switch fd.kind {
		case kindAttr:
			if fd.omitEmpty && isEmpty(f) {
				continue
			}
			val := scalarString(f)
			if val == "" && fd.hasDefault {
				val = fd.defaultValue
			}
			m[AttrPrefix+fd.name] = val
		case kindText:
			if s := f.String(); s != "" {
				m[TextKey] = s
			}
		case kindElem:
			if f.Kind() == reflect.Pointer {
				if f.IsNil() {
					continue
				}
				f = f.Elem()
			}
			if fd.omitEmpty && isEmpty(f) {
				continue
			}
			if f.Kind() == reflect.String {
				val := f.String()
				if val == "" && fd.hasDefault {
					val = fd.defaultValue
				}
				m[fd.name] = val
				continue
			}
			sub, err := encodeTree(f)
			if err != nil {
				return nil, err
			}
			m[fd.name] = sub
		case kindRepeated:
			if fd.omitEmpty && f.Len() == 0 {
				continue
			}
			items := make([]any, 0, f.Len())
			for j := 0; j < f.Len(); j++ {
				sub, err := encodeTree(f.Index(j))
				if err != nil {
					return nil, err
				}
				items = append(items, sub)
			}
			if fd.wrapper != "" {
				m[fd.wrapper] = Tree{fd.name: items}
			} else {
				m[fd.name] = items
			}
		}
	}
	return m, nil
}

func decodeTree(m map[string]any, v reflect.Value, elem string) error {
	td, err := descriptorsOf(v.Type())
	if err != nil {
		return err
	}
	for i := range td.fields {
		fd := &td.fields[i]
		f := v.Field(fd.index)
		switch fd.kind {
		case kindAttr:
			raw, ok := m[AttrPrefix+fd.name]
			if !ok {
				continue
			}
			s, err := asString(raw)
			if err != nil {
				return fmt.Errorf("%s: %w", fd.name, err)
			}
			if err := setScalar(f, s); err != nil {
				return fmt.Errorf("%s: %w", fd.name, err)
			}
		case kindText:
			raw, ok := m[TextKey]
			if !ok {
				continue
			}
			s, err := asString(raw)
			if err != nil {
				return fmt.Errorf("%s: %w", TextKey, err)
			}
			f.SetString(s)
		case kindElem:
			raw, ok := m[fd.name]
			if !ok {
				if fd.required {
					return fmt.Errorf("%w: %s in %s", ErrMissingElement, fd.name, elem)
				}
				continue
			}
			if f.Kind() == reflect.String {
				s, err := asString(raw)
				if err != nil {
					return fmt.Errorf("%s: %w", fd.name, err)
				}
				f.SetString(s)
				continue
			}
			sub, err := asMap(raw)
			if err != nil {
				return fmt.Errorf("%s: %w", fd.name, err)
			}
			if f.Kind() == reflect.Pointer {
				f.Set(reflect.New(f.Type().Elem()))
				f = f.Elem()
			}
			if err := decodeTree(sub, f, fd.name); err != nil {
				return err
			}
		case kindRepeated:
			container := m
			if fd.wrapper != "" {
				raw, ok := m[fd.wrapper]
				if !ok {
					continue
				}
				w, err := asMap(raw)
				if err != nil {
					return fmt.Errorf("%s: %w", fd.wrapper, err)
				}
				container = w
			}
			raw, ok := container[fd.name]
			if !ok {
				continue
			}
			items, err := asList(raw)
			if err != nil {
				return fmt.Errorf("%s: %w", fd.name, err)
			}
			if len(items) == 0 {
				// Leave the field nil, like the markup decoder does for an
				// empty wrapper.
				continue
			}
			slice := reflect.MakeSlice(f.Type(), 0, len(items))
			for _, it := range items {
				sub, err := asMap(it)
				if err != nil {
					return fmt.Errorf("%s: %w", fd.name, err)
				}
				item := reflect.New(f.Type().Elem()).Elem()
				if err := decodeTree(sub, item, fd.name); err != nil {
					return err
				}
				slice = reflect.Append(slice, item)
			}
			f.Set(slice)
		}
	}
	for i := range td.fields {
		fd := &td.fields[i]
		if fd.hasDefault {
			f := v.Field(fd.index)
			if f.String() == "" {
				f.SetString(fd.defaultValue)
			}
		}
	}
	return nil
}

// asString coerces the scalar shapes the tree decoders produce. Attribute
// values travel as strings; numbers are accepted for hand-built trees.
func asString(v any) (string, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case int:
		return strconv.Itoa(s), nil
	case int64:
		return strconv.FormatInt(s, 10), nil
	case uint64:
		return strconv.FormatUint(s, 10), nil
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), nil
	}
	return "", fmt.Errorf("%w: expected string, got %T", ErrFieldValue, v)
}

func asMap(v any) (map[string]any, error) {
	switch m := v.(type) {
	case Tree:
		return m, nil
	case map[string]any:
		return m, nil
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			ks, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("%w: non-string key %v", ErrFieldValue, k)
			}
			out[ks] = val
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: expected object, got %T", ErrFieldValue, v)
}

// asList accepts a list, or a single object as a one-item list for decoders
// that collapse singleton collections.
func asList(v any) ([]any, error) {
	if l, ok := v.([]any); ok {
		return l, nil
	}
	if m, err := asMap(v); err == nil {
		return []any{m}, nil
	}
	return nil, fmt.Errorf("%w: expected list, got %T", ErrFieldValue, v)
}

// JSON renders the tree for JSON consumers.
func (t Tree) JSON() ([]byte, error) {
	return json.MarshalIndent(t, "", "  ")
}

// TreeFromJSON parses a JSON object into a Tree.
func TreeFromJSON(data []byte) (Tree, error) {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return Tree(m), nil
}

// YAML renders the tree for YAML consumers.
func (t Tree) YAML() ([]byte, error) {
	return yaml.Marshal(map[string]any(t))
}

// TreeFromYAML parses a YAML mapping into a Tree.
func TreeFromYAML(data []byte) (Tree, error) {
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return Tree(m), nil
}

// Msgpack renders the tree for MessagePack consumers.
func (t Tree) Msgpack() ([]byte, error) {
	return msgpack.Marshal(map[string]any(t))
}

// TreeFromMsgpack parses a MessagePack map into a Tree.
func TreeFromMsgpack(data []byte) (Tree, error) {
	var m map[string]any
	if err := msgpack.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return Tree(m), nil
}
