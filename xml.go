package gldf

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"reflect"
	"strings"
)

// DecodeXML parses the primary markup document into a Root.
//
// Unknown elements and attributes are skipped for forward compatibility.
// Fields absent from the input receive their declared default value; the
// three mandatory Root children must be present. Unparsable input wraps
// ErrMalformed with the byte offset, absent mandatory children wrap
// ErrMissingElement.
func DecodeXML(data []byte) (*Root, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var start xml.StartElement
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return nil, fmt.Errorf("%w: no root element", ErrMalformed)
		}
		if err != nil {
			return nil, malformed(dec, err)
		}
		if se, ok := tok.(xml.StartElement); ok {
			start = se
			break
		}
	}
	if start.Name.Local != RootElementName {
		return nil, fmt.Errorf("%w: unexpected root element %q", ErrMalformed, start.Name.Local)
	}
	root := new(Root)
	if err := decodeElement(dec, start, reflect.ValueOf(root).Elem()); err != nil {
		return nil, err
	}
	return root, nil
}

// EncodeXML serializes root as the primary markup document: schema element
// order, attributes before children, omit-if-empty suppression, and the
// schema-identity attributes never written empty.
func EncodeXML(root *Root) ([]byte, error) {
	if root == nil {
		return nil, fmt.Errorf("%w: document is nil", ErrValidation)
	}
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := encodeElement(enc, RootElementName, reflect.ValueOf(root).Elem()); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func malformed(dec *xml.Decoder, err error) error {
	return fmt.Errorf("%w: offset %d: %v", ErrMalformed, dec.InputOffset(), err)
}

func decodeElement(dec *xml.Decoder, start xml.StartElement, v reflect.Value) error {
	td, err := descriptorsOf(v.Type())
	if err != nil {
		return err
	}
	seen := make(map[int]bool)
	for _, attr := range start.Attr {
		i, ok := td.attrs[attr.Name.Local]
		if !ok {
			continue
		}
		fd := &td.fields[i]
		if err := setScalar(v.Field(fd.index), attr.Value); err != nil {
			return fmt.Errorf("%s: %w", fd.name, err)
		}
		seen[i] = true
	}
	var text strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			return malformed(dec, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			i, ok := td.children[t.Name.Local]
			if !ok {
				if err := dec.Skip(); err != nil {
					return malformed(dec, err)
				}
				continue
			}
			fd := &td.fields[i]
			if err := decodeChild(dec, t, v.Field(fd.index), fd); err != nil {
				return err
			}
			seen[i] = true
		case xml.CharData:
			if td.text >= 0 {
				text.Write(t)
			}
		case xml.EndElement:
			if td.text >= 0 {
				fd := &td.fields[td.text]
				v.Field(fd.index).SetString(strings.TrimSpace(text.String()))
			}
			return finishElement(td, v, seen, start.Name.Local)
		}
	}
}

// finishElement applies defaults to empty fields and checks the required
// children once the element is fully consumed.
func finishElement(td *typeDesc, v reflect.Value, seen map[int]bool, elem string) error {
	for i := range td.fields {
		fd := &td.fields[i]
		if fd.hasDefault {
			f := v.Field(fd.index)
			if f.String() == "" {
				f.SetString(fd.defaultValue)
			}
		}
		if fd.required && !seen[i] {
			return fmt.Errorf("%w: %s in %s", ErrMissingElement, fd.name, elem)
		}
	}
	return nil
}

func decodeChild(dec *xml.Decoder, start xml.StartElement, f reflect.Value, fd *fieldDesc) error {
	if fd.kind == kindRepeated {
		if fd.wrapper != "" {
			return decodeWrapped(dec, f, fd)
		}
		return appendItem(dec, start, f)
	}
	switch f.Kind() {
	case reflect.String:
		s, err := decodeText(dec)
		if err != nil {
			return malformed(dec, err)
		}
		f.SetString(s)
		return nil
	case reflect.Pointer:
		if f.IsNil() {
			f.Set(reflect.New(f.Type().Elem()))
		}
		return decodeElement(dec, start, f.Elem())
	default:
		return decodeElement(dec, start, f)
	}
}

// decodeWrapped consumes a wrapper element, appending every item element it
// contains and skipping anything else.
func decodeWrapped(dec *xml.Decoder, f reflect.Value, fd *fieldDesc) error {
	for {
		tok, err := dec.Token()
		if err != nil {
			return malformed(dec, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != fd.name {
				if err := dec.Skip(); err != nil {
					return malformed(dec, err)
				}
				continue
			}
			if err := appendItem(dec, t, f); err != nil {
				return err
			}
		case xml.EndElement:
			return nil
		}
	}
}

func appendItem(dec *xml.Decoder, start xml.StartElement, f reflect.Value) error {
	item := reflect.New(f.Type().Elem()).Elem()
	if err := decodeElement(dec, start, item); err != nil {
		return err
	}
	f.Set(reflect.Append(f, item))
	return nil
}

// decodeText collects the character data of the current element, skipping
// nested elements, and returns it trimmed.
func decodeText(dec *xml.Decoder) (string, error) {
	var sb strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if err := dec.Skip(); err != nil {
				return "", err
			}
		case xml.CharData:
			sb.Write(t)
		case xml.EndElement:
			return strings.TrimSpace(sb.String()), nil
		}
	}
}

func encodeElement(enc *xml.Encoder, name string, v reflect.Value) error {
	td, err := descriptorsOf(v.Type())
	if err != nil {
		return err
	}
	start := xml.StartElement{Name: xml.Name{Local: name}}
	for i := range td.fields {
		fd := &td.fields[i]
		if fd.kind != kindAttr {
			continue
		}
		f := v.Field(fd.index)
		if fd.omitEmpty && isEmpty(f) {
			continue
		}
		val := scalarString(f)
		if val == "" && fd.hasDefault {
			val = fd.defaultValue
		}
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: fd.name}, Value: val})
	}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	if td.text >= 0 {
		fd := &td.fields[td.text]
		if s := v.Field(fd.index).String(); s != "" {
			if err := enc.EncodeToken(xml.CharData(s)); err != nil {
				return err
			}
		}
	}
	for i := range td.fields {
		fd := &td.fields[i]
		switch fd.kind {
		case kindElem:
			if err := encodeChild(enc, fd, v.Field(fd.index)); err != nil {
				return err
			}
		case kindRepeated:
			if err := encodeRepeated(enc, fd, v.Field(fd.index)); err != nil {
				return err
			}
		}
	}
	return enc.EncodeToken(xml.EndElement{Name: start.Name})
}

func encodeChild(enc *xml.Encoder, fd *fieldDesc, f reflect.Value) error {
	if f.Kind() == reflect.Pointer {
		if f.IsNil() {
			return nil
		}
		f = f.Elem()
	}
	if fd.omitEmpty && isEmpty(f) {
		return nil
	}
	if f.Kind() == reflect.String {
		val := f.String()
		if val == "" && fd.hasDefault {
			val = fd.defaultValue
		}
		name := xml.Name{Local: fd.name}
		if err := enc.EncodeToken(xml.StartElement{Name: name}); err != nil {
			return err
		}
		if val != "" {
			if err := enc.EncodeToken(xml.CharData(val)); err != nil {
				return err
			}
		}
		return enc.EncodeToken(xml.EndElement{Name: name})
	}
	return encodeElement(enc, fd.name, f)
}

func encodeRepeated(enc *xml.Encoder, fd *fieldDesc, f reflect.Value) error {
	if fd.omitEmpty && f.Len() == 0 {
		return nil
	}
	if fd.wrapper != "" {
		wname := xml.Name{Local: fd.wrapper}
		if err := enc.EncodeToken(xml.StartElement{Name: wname}); err != nil {
			return err
		}
		for i := 0; i < f.Len(); i++ {
			if err := encodeElement(enc, fd.name, f.Index(i)); err != nil {
				return err
			}
		}
		return enc.EncodeToken(xml.EndElement{Name: wname})
	}
	for i := 0; i < f.Len(); i++ {
		if err := encodeElement(enc, fd.name, f.Index(i)); err != nil {
			return err
		}
	}
	return nil
}
