package tui

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseCompositionPlainText(t *testing.T) {
	body, att, err := parseComposition("hello there")
	if err != nil {
		t.Fatalf("parseComposition() error = %v", err)
	}
	if body != "hello there" || att != nil {
		t.Errorf("got body=%q att=%+v, want plain text and no attachment", body, att)
	}
}

func TestParseCompositionAttach(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.pdf")
	if err := os.WriteFile(path, []byte("content"), 0600); err != nil {
		t.Fatal(err)
	}

	body, att, err := parseComposition("/attach " + path + " here you go")
	if err != nil {
		t.Fatalf("parseComposition() error = %v", err)
	}
	if body != "here you go" {
		t.Errorf("caption = %q, want %q", body, "here you go")
	}
	if att == nil || att.Name != "notes.pdf" || string(att.Data) != "content" {
		t.Errorf("attachment = %+v", att)
	}
	if att.LocalPath != path {
		t.Errorf("LocalPath = %q, want %q", att.LocalPath, path)
	}
}

func TestParseCompositionAttachErrors(t *testing.T) {
	if _, _, err := parseComposition("/attach "); err == nil {
		t.Error("missing path accepted")
	}
	if _, _, err := parseComposition("/attach /no/such/file"); err == nil {
		t.Error("unreadable file accepted")
	}
}
