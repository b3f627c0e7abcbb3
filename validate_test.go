package gldf

import "testing"

func entrySet(names ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(names)+1)
	s[ProductEntryName] = struct{}{}
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

func TestValidate_Clean(t *testing.T) {
	errs := Validate(sampleRoot(), entrySet("ldc/curve.ldt", "geo/model.l3d"))
	if len(errs) != 0 {
		t.Fatalf("unexpected findings: %v", errs)
	}
}

func TestValidate_DuplicateID(t *testing.T) {
	root := sampleRoot()
	root.GeneralDefinitions.Files = append(root.GeneralDefinitions.Files,
		File{ID: "ldc_1", ContentType: "ldc/eulumdat", Type: FileTypeLocal, Name: "ldc/curve.ldt"},
		File{ID: "ldc_1", ContentType: "ldc/eulumdat", Type: FileTypeLocal, Name: "ldc/curve.ldt"},
	)
	errs := Validate(root, entrySet("ldc/curve.ldt", "geo/model.l3d"))
	var dups []IntegrityError
	for _, e := range errs {
		if e.Kind == DuplicateID {
			dups = append(dups, e)
		}
	}
	if len(dups) != 1 {
		t.Fatalf("expected exactly one duplicate finding, got %v", dups)
	}
	if dups[0].ID != "ldc_1" {
		t.Fatalf("duplicate finding names %q", dups[0].ID)
	}
}

func TestValidate_MissingEntry(t *testing.T) {
	root := sampleRoot()
	errs := Validate(root, entrySet("ldc/curve.ldt"))
	if len(errs) != 1 {
		t.Fatalf("findings: %v", errs)
	}
	e := errs[0]
	if e.Kind != MissingEntry || e.ID != "geo_1" || e.Path != "geo/model.l3d" {
		t.Fatalf("finding: %+v", e)
	}
}

func TestValidate_EscapingPathCountsAsMissing(t *testing.T) {
	root := sampleRoot()
	root.GeneralDefinitions.Files[0].Name = "../ldc/curve.ldt"
	errs := Validate(root, entrySet("../ldc/curve.ldt", "geo/model.l3d"))
	if len(errs) != 1 || errs[0].Kind != MissingEntry || errs[0].ID != "ldc_1" {
		t.Fatalf("findings: %v", errs)
	}
}

func TestValidate_ExternalFilesSkipped(t *testing.T) {
	root := sampleRoot()
	// img_1 is external; no archive entry is expected for it.
	errs := Validate(root, entrySet("ldc/curve.ldt", "geo/model.l3d"))
	for _, e := range errs {
		if e.ID == "img_1" {
			t.Fatalf("external file reported: %v", e)
		}
	}
}

func TestValidate_UnresolvedReference(t *testing.T) {
	root := sampleRoot()
	root.ProductDefinitions.LightSources[0].SpectrumReference = &FileReference{FileID: "ghost"}
	errs := Validate(root, entrySet("ldc/curve.ldt", "geo/model.l3d"))
	if len(errs) != 1 {
		t.Fatalf("findings: %v", errs)
	}
	e := errs[0]
	if e.Kind != UnresolvedReference || e.ID != "ghost" {
		t.Fatalf("finding: %+v", e)
	}
	if e.Section == "" {
		t.Fatal("finding should name the referencing section")
	}
}

func TestValidate_ReportsAllFindings(t *testing.T) {
	root := sampleRoot()
	root.GeneralDefinitions.Files = append(root.GeneralDefinitions.Files,
		File{ID: "geo_1", ContentType: "geo/l3d", Type: FileTypeLocal, Name: "geo/model.l3d"})
	root.GeneralDefinitions.Photometries[0].FileReference.FileID = "ghost"
	errs := Validate(root, entrySet("geo/model.l3d"))
	// One duplicate, one missing entry (ldc_1), one unresolved reference.
	if len(errs) != 3 {
		t.Fatalf("expected 3 findings, got %v", errs)
	}
	if errs[0].Kind != DuplicateID || errs[1].Kind != MissingEntry || errs[2].Kind != UnresolvedReference {
		t.Fatalf("finding order: %v", errs)
	}
}

func TestIntegrityError_Messages(t *testing.T) {
	cases := map[IntegrityError]string{
		{Kind: DuplicateID, ID: "a"}:                               `duplicate file id "a"`,
		{Kind: MissingEntry, ID: "a", Path: "p"}:                   `file "a": no archive entry "p"`,
		{Kind: UnresolvedReference, ID: "a", Section: "section x"}: `section x references undeclared file id "a"`,
	}
	for e, want := range cases {
		if got := e.Error(); got != want {
			t.Fatalf("Error(): got %q, want %q", got, want)
		}
	}
}
