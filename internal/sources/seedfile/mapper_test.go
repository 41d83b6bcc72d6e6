package seedfile

import (
	"testing"
)

func TestMapperMap(t *testing.T) {
	config := SeedConfig{
		Owners: []OwnerBlock{
			{
				Owner: "user-1",
				Bookmarks: []Entry{
					{URL: "https://go.dev", Title: "Go"},
					{URL: "https://news.ycombinator.com"},
				},
			},
			{
				Owner: "user-2",
				Bookmarks: []Entry{
					{URL: "https://go.dev"},
				},
			},
		},
	}

	mapper := NewMapper()
	bookmarks, skipped, err := mapper.Map(config)
	if err != nil {
		t.Fatalf("Map() error = %v", err)
	}
	if skipped != 0 {
		t.Errorf("Map() skipped = %d, want 0", skipped)
	}
	if len(bookmarks) != 3 {
		t.Fatalf("Map() bookmarks = %d, want 3", len(bookmarks))
	}

	if bookmarks[0].Title != "Go" {
		t.Errorf("Title = %q, want %q", bookmarks[0].Title, "Go")
	}
	// Title defaults to the URL when absent.
	if bookmarks[1].Title != "https://news.ycombinator.com" {
		t.Errorf("Title = %q, want URL fallback", bookmarks[1].Title)
	}
}

func TestMapperStableIDs(t *testing.T) {
	config := SeedConfig{
		Owners: []OwnerBlock{
			{Owner: "user-1", Bookmarks: []Entry{{URL: "https://go.dev"}}},
		},
	}

	mapper := NewMapper()
	first, _, err := mapper.Map(config)
	if err != nil {
		t.Fatalf("Map() error = %v", err)
	}
	second, _, err := mapper.Map(config)
	if err != nil {
		t.Fatalf("Map() error = %v", err)
	}

	if first[0].ID != second[0].ID {
		t.Errorf("IDs differ across imports: %q vs %q", first[0].ID, second[0].ID)
	}

	// Same URL under a different owner must not collide.
	other := SeedConfig{
		Owners: []OwnerBlock{
			{Owner: "user-2", Bookmarks: []Entry{{URL: "https://go.dev"}}},
		},
	}
	third, _, err := mapper.Map(other)
	if err != nil {
		t.Fatalf("Map() error = %v", err)
	}
	if first[0].ID == third[0].ID {
		t.Error("IDs collide across owners")
	}
}

func TestMapperSkipsInvalidEntries(t *testing.T) {
	config := SeedConfig{
		Owners: []OwnerBlock{
			{
				Owner: "user-1",
				Bookmarks: []Entry{
					{URL: "https://go.dev"},
					{URL: "not a url"},
					{URL: ""},
				},
			},
			{
				Owner:     "",
				Bookmarks: []Entry{{URL: "https://orphaned.example"}},
			},
		},
	}

	mapper := NewMapper()
	bookmarks, skipped, err := mapper.Map(config)
	if err != nil {
		t.Fatalf("Map() error = %v", err)
	}
	if len(bookmarks) != 1 {
		t.Fatalf("Map() bookmarks = %d, want 1", len(bookmarks))
	}
	if skipped != 3 {
		t.Errorf("Map() skipped = %d, want 3", skipped)
	}
}

func TestMapperEmptyConfig(t *testing.T) {
	mapper := NewMapper()
	if _, _, err := mapper.Map(SeedConfig{}); err == nil {
		t.Fatal("Map() expected error for empty config")
	}
}
