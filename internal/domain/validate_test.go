package domain

import (
	"errors"
	"testing"
)

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{
			name: "valid https url",
			raw:  "https://a.com",
			want: "https://a.com",
		},
		{
			name: "valid url with path",
			raw:  "https://example.com/some/page?q=1",
			want: "https://example.com/some/page?q=1",
		},
		{
			name: "surrounding whitespace is trimmed",
			raw:  "  https://a.com  ",
			want: "https://a.com",
		},
		{
			name:    "not a url",
			raw:     "not-a-url",
			wantErr: true,
		},
		{
			name:    "relative path",
			raw:     "/just/a/path",
			wantErr: true,
		},
		{
			name:    "empty",
			raw:     "",
			wantErr: true,
		},
		{
			name:    "whitespace only",
			raw:     "   ",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateURL(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ValidateURL(%q) expected error, got %q", tt.raw, got)
				}
				var verr *ValidationError
				if !errors.As(err, &verr) {
					t.Errorf("ValidateURL(%q) error = %T, want *ValidationError", tt.raw, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidateURL(%q) unexpected error: %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("ValidateURL(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNewBookmarkInputDefaultsTitle(t *testing.T) {
	url, title, err := NewBookmarkInput("https://a.com", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if url != "https://a.com" {
		t.Errorf("url = %q, want %q", url, "https://a.com")
	}
	if title != "https://a.com" {
		t.Errorf("title = %q, want url fallback %q", title, "https://a.com")
	}
}

func TestNewBookmarkInputTrimsTitle(t *testing.T) {
	_, title, err := NewBookmarkInput("https://a.com", "  My Site  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if title != "My Site" {
		t.Errorf("title = %q, want %q", title, "My Site")
	}
}

func TestChangeOwner(t *testing.T) {
	insert := InsertChange(&Bookmark{ID: "1", OwnerID: "u1"})
	if insert.Owner() != "u1" {
		t.Errorf("insert owner = %q, want u1", insert.Owner())
	}

	del := DeleteChange("1", "u2")
	if del.Owner() != "u2" {
		t.Errorf("delete owner = %q, want u2", del.Owner())
	}

	var empty Change
	if empty.Owner() != "" {
		t.Errorf("empty change owner = %q, want empty", empty.Owner())
	}
}
