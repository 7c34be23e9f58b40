package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewRequiresCredentials(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"missing key id", Config{AppKey: "s", Bucket: "b"}},
		{"missing app key", Config{KeyID: "k", Bucket: "b"}},
		{"missing bucket", Config{KeyID: "k", AppKey: "s"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.cfg, false); err == nil {
				t.Fatal("expected configuration error")
			}
		})
	}
}

func TestNewDefaultsEndpointFromRegion(t *testing.T) {
	c, err := New(Config{KeyID: "k", AppKey: "s", Bucket: "b", Region: "eu-central-003"}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.bucket != "b" {
		t.Errorf("unexpected bucket %q", c.bucket)
	}
}

func TestDeleteLocal(t *testing.T) {
	c, err := New(Config{KeyID: "k", AppKey: "s", Bucket: "b"}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	path := filepath.Join(t.TempDir(), "quiz.mp4")
	if err := os.WriteFile(path, []byte("video"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	if !c.DeleteLocal(path) {
		t.Fatal("expected delete to succeed")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("file should be gone")
	}
	if c.DeleteLocal(path) {
		t.Error("deleting a missing file should report false")
	}
}
