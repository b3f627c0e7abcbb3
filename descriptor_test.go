package gldf

import (
	"errors"
	"reflect"
	"testing"
)

func TestDescriptorsOf_SchemaOrder(t *testing.T) {
	td, err := descriptorsOf(reflect.TypeOf(Root{}))
	if err != nil {
		t.Fatalf("descriptorsOf: %v", err)
	}
	var names []string
	for _, fd := range td.fields {
		names = append(names, fd.name)
	}
	want := []string{
		"xmlns:xsi", "xsi:noNamespaceSchemaLocation",
		"Header", "GeneralDefinitions", "ProductDefinitions",
	}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("field order: %v", names)
	}
}

func TestDescriptorsOf_Wrapper(t *testing.T) {
	td, err := descriptorsOf(reflect.TypeOf(GeneralDefinitions{}))
	if err != nil {
		t.Fatalf("descriptorsOf: %v", err)
	}
	i, ok := td.children["Files"]
	if !ok {
		t.Fatalf("wrapper not indexed: %v", td.children)
	}
	fd := td.fields[i]
	if fd.wrapper != "Files" || fd.name != "File" || fd.kind != kindRepeated {
		t.Fatalf("descriptor: %+v", fd)
	}
}

func TestDescriptorsOf_BadTags(t *testing.T) {
	type badKind struct {
		A string `gldf:"A,banana"`
	}
	type badDefault struct {
		A string `gldf:"A,attr,default=nope"`
	}
	type badRepeated struct {
		A []string `gldf:"A,repeated"`
	}
	type badAttrType struct {
		A []byte `gldf:"a,attr"`
	}
	type twoTexts struct {
		A string `gldf:",text"`
		B string `gldf:",text"`
	}
	type namedText struct {
		A string `gldf:"A,text"`
	}
	type intDefault struct {
		A int `gldf:"a,attr,default=formatVersion"`
	}
	for name, v := range map[string]any{
		"unknown kind":      badKind{},
		"unknown default":   badDefault{},
		"repeated scalar":   badRepeated{},
		"attr slice":        badAttrType{},
		"two text fields":   twoTexts{},
		"named text field":  namedText{},
		"default on an int": intDefault{},
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := descriptorsOf(reflect.TypeOf(v)); err == nil {
				t.Fatal("expected a tag error")
			}
		})
	}
}

func TestSetScalar_BadInt(t *testing.T) {
	var n int
	err := setScalar(reflect.ValueOf(&n).Elem(), "many")
	if !errors.Is(err, ErrFieldValue) {
		t.Fatalf("expected ErrFieldValue, got %v", err)
	}
}

func TestLocalName(t *testing.T) {
	cases := map[string]string{
		"xmlns:xsi": "xsi",
		"xsi:noNamespaceSchemaLocation": "noNamespaceSchemaLocation",
		"id": "id",
	}
	for in, want := range cases {
		if got := localName(in); got != want {
			t.Fatalf("localName(%q): got %q, want %q", in, got, want)
		}
	}
}

func TestIsEmpty(t *testing.T) {
	if !isEmpty(reflect.ValueOf(LocalizedText{})) {
		t.Fatal("zero LocalizedText should be empty")
	}
	if !isEmpty(reflect.ValueOf(LocalizedText{Locales: []Locale{}})) {
		t.Fatal("LocalizedText with an allocated empty list should be empty")
	}
	if isEmpty(reflect.ValueOf(LocalizedText{Locales: []Locale{{Value: "x"}}})) {
		t.Fatal("populated LocalizedText should not be empty")
	}
	var ref *FileReference
	if !isEmpty(reflect.ValueOf(ref)) {
		t.Fatal("nil pointer should be empty")
	}
	if isEmpty(reflect.ValueOf(1)) || !isEmpty(reflect.ValueOf(0)) {
		t.Fatal("int emptiness follows the zero value")
	}
}

func TestModelDescriptorsParse(t *testing.T) {
	// Every model type must carry well-formed descriptors.
	for _, v := range []any{
		Root{}, Header{}, GeneralDefinitions{}, File{}, FileReference{},
		Photometry{}, Geometry{}, ProductDefinitions{}, Variant{},
		LightSource{}, LocalizedText{}, Locale{},
	} {
		if _, err := descriptorsOf(reflect.TypeOf(v)); err != nil {
			t.Fatalf("%T: %v", v, err)
		}
	}
}

func TestFileTypeKnown(t *testing.T) {
	if !FileTypeLocal.Known() || !FileTypeURL.Known() {
		t.Fatal("defined types must be known")
	}
	if FileType("ftp").Known() {
		t.Fatal("unexpected known type")
	}
}

func TestScalarString(t *testing.T) {
	if got := scalarString(reflect.ValueOf(7)); got != "7" {
		t.Fatalf("int: %q", got)
	}
	if got := scalarString(reflect.ValueOf(FileTypeURL)); got != "url" {
		t.Fatalf("named string: %q", got)
	}
}
