package gldf

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
)

// Field mapping descriptors are the single source of truth for how a model
// field maps onto both wire representations. They are declared as `gldf`
// struct tags and parsed once per type:
//
//	gldf:"<name>,<kind>[,required][,omitempty][,default=<key>]"
//
// Kinds are attr, elem, text and repeated. Repeated fields may name a
// one-level enclosing element as "Wrapper>Item". The default= key refers
// into fieldDefaults; defaults apply on decode when the source omits the
// field, and on encode for fields that must never be written empty.

type fieldKind uint8

const (
	kindAttr fieldKind = iota
	kindElem
	kindText
	kindRepeated
)

// fieldDefaults names the constants a descriptor may declare as its
// default value.
var fieldDefaults = map[string]string{
	"xsiNamespace":   XSINamespace,
	"schemaLocation": SchemaLocation,
	"formatVersion":  FormatVersion,
}

type fieldDesc struct {
	name         string // wire name of the attribute or element
	wrapper      string // enclosing element of a repeated field, "" for none
	kind         fieldKind
	index        int // struct field index
	required     bool
	omitEmpty    bool
	defaultValue string
	hasDefault   bool
}

// typeDesc holds the descriptors of one model type in schema order.
type typeDesc struct {
	fields   []fieldDesc
	attrs    map[string]int // local attribute name -> fields index
	children map[string]int // element or wrapper name -> fields index
	text     int            // fields index of the text field, -1 when none
}

var descCache sync.Map // reflect.Type -> *typeDesc

// descriptorsOf returns the cached descriptor table for t, building it on
// first use. Tag mistakes are programmer errors and surface here.
func descriptorsOf(t reflect.Type) (*typeDesc, error) {
	if cached, ok := descCache.Load(t); ok {
		return cached.(*typeDesc), nil
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("gldf: descriptors require a struct, got %s", t)
	}
	td := &typeDesc{
		attrs:    make(map[string]int),
		children: make(map[string]int),
		text:     -1,
	}
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tag, ok := sf.Tag.Lookup("gldf")
		if !ok || !sf.IsExported() {
			continue
		}
		fd, err := parseFieldTag(tag)
		if err != nil {
			return nil, fmt.Errorf("gldf: %s.%s: %v", t.Name(), sf.Name, err)
		}
		fd.index = i
		if err := checkFieldType(fd, sf.Type); err != nil {
			return nil, fmt.Errorf("gldf: %s.%s: %v", t.Name(), sf.Name, err)
		}
		pos := len(td.fields)
		switch fd.kind {
		case kindAttr:
			td.attrs[localName(fd.name)] = pos
		case kindText:
			if td.text >= 0 {
				return nil, fmt.Errorf("gldf: %s: more than one text field", t.Name())
			}
			td.text = pos
		case kindElem:
			td.children[fd.name] = pos
		case kindRepeated:
			key := fd.name
			if fd.wrapper != "" {
				key = fd.wrapper
			}
			td.children[key] = pos
		}
		td.fields = append(td.fields, fd)
	}
	descCache.Store(t, td)
	return td, nil
}

func parseFieldTag(tag string) (fieldDesc, error) {
	parts := strings.Split(tag, ",")
	if len(parts) < 2 {
		return fieldDesc{}, fmt.Errorf("tag %q needs a mapping kind", tag)
	}
	fd := fieldDesc{name: parts[0]}
	switch parts[1] {
	case "attr":
		fd.kind = kindAttr
	case "elem":
		fd.kind = kindElem
	case "text":
		fd.kind = kindText
	case "repeated":
		fd.kind = kindRepeated
	default:
		return fieldDesc{}, fmt.Errorf("tag %q: unknown kind %q", tag, parts[1])
	}
	for _, opt := range parts[2:] {
		switch {
		case opt == "required":
			fd.required = true
		case opt == "omitempty":
			fd.omitEmpty = true
		case strings.HasPrefix(opt, "default="):
			key := strings.TrimPrefix(opt, "default=")
			val, ok := fieldDefaults[key]
			if !ok {
				return fieldDesc{}, fmt.Errorf("tag %q: unknown default %q", tag, key)
			}
			fd.defaultValue = val
			fd.hasDefault = true
		default:
			return fieldDesc{}, fmt.Errorf("tag %q: unknown option %q", tag, opt)
		}
	}
	if fd.kind == kindText {
		if fd.name != "" {
			return fieldDesc{}, fmt.Errorf("tag %q: text fields take no name", tag)
		}
		return fd, nil
	}
	if fd.name == "" {
		return fieldDesc{}, fmt.Errorf("tag %q: missing name", tag)
	}
	if fd.kind == kindRepeated {
		if i := strings.IndexByte(fd.name, '>'); i >= 0 {
			fd.wrapper, fd.name = fd.name[:i], fd.name[i+1:]
		}
	}
	return fd, nil
}

func checkFieldType(fd fieldDesc, t reflect.Type) error {
	switch fd.kind {
	case kindAttr:
		if !isScalar(t) {
			return fmt.Errorf("attribute fields must be string or int, got %s", t)
		}
	case kindText:
		if t.Kind() != reflect.String {
			return fmt.Errorf("text fields must be string, got %s", t)
		}
	case kindElem:
		k := t.Kind()
		if k == reflect.Pointer {
			k = t.Elem().Kind()
		}
		if k != reflect.String && k != reflect.Struct {
			return fmt.Errorf("element fields must be string or struct, got %s", t)
		}
	case kindRepeated:
		if t.Kind() != reflect.Slice || t.Elem().Kind() != reflect.Struct {
			return fmt.Errorf("repeated fields must be a slice of struct, got %s", t)
		}
	}
	if fd.hasDefault && t.Kind() != reflect.String {
		return fmt.Errorf("defaults apply to string fields only, got %s", t)
	}
	return nil
}

func isScalar(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.String, reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

// localName strips any namespace prefix from a descriptor or wire name.
func localName(s string) string {
	if i := strings.LastIndexByte(s, ':'); i >= 0 {
		return s[i+1:]
	}
	return s
}

// scalarString renders a string or int field for the wire.
func scalarString(v reflect.Value) string {
	switch v.Kind() {
	case reflect.String:
		return v.String()
	default:
		return strconv.FormatInt(v.Int(), 10)
	}
}

// setScalar parses s into a string or int field. Conversion failures wrap
// ErrFieldValue.
func setScalar(v reflect.Value, s string) error {
	switch v.Kind() {
	case reflect.String:
		v.SetString(s)
		return nil
	default:
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %q is not an integer", ErrFieldValue, s)
		}
		v.SetInt(n)
		return nil
	}
}

// isEmpty implements the omit-if-empty rule: empty string, zero int, nil
// pointer, empty slice, or a struct whose fields are all empty.
func isEmpty(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return v.String() == ""
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	case reflect.Pointer:
		return v.IsNil()
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			if !isEmpty(v.Field(i)) {
				return false
			}
		}
		return true
	default:
		return v.IsZero()
	}
}
