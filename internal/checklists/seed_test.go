package checklists

import "testing"

func TestLoadSeedTemplates(t *testing.T) {
	templates, err := loadSeedTemplates()
	if err != nil {
		t.Fatalf("loadSeedTemplates() error: %v", err)
	}
	if len(templates) == 0 {
		t.Fatal("expected at least one seed template")
	}

	for _, tpl := range templates {
		if tpl.Name == "" {
			t.Fatal("seed template has empty name")
		}
		if len(tpl.Items) == 0 {
			t.Fatalf("seed template %q has no items", tpl.Name)
		}
		for _, item := range tpl.Items {
			if item.Label == "" {
				t.Fatalf("seed template %q has an item with empty label", tpl.Name)
			}
		}
	}
}

func TestLoadSeedTemplatesIncludesPhotoItems(t *testing.T) {
	templates, err := loadSeedTemplates()
	if err != nil {
		t.Fatalf("loadSeedTemplates() error: %v", err)
	}

	found := false
	for _, tpl := range templates {
		for _, item := range tpl.Items {
			if item.RequiresPhoto {
				found = true
			}
		}
	}
	if !found {
		t.Fatal("expected at least one seed item requiring a photo")
	}
}
