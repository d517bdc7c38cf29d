package cli

import (
	"bytes"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
)

func writePhoto(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := imaging.Save(imaging.New(30, 20, color.NRGBA{R: 255, G: 182, B: 193, A: 255}), path); err != nil {
		t.Fatal(err)
	}
	return path
}

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRenderWritesCollage(t *testing.T) {
	dir := t.TempDir()
	a := writePhoto(t, dir, "a.png")
	b := writePhoto(t, dir, "b.jpg")
	out := filepath.Join(dir, "out")

	stdout, err := runRoot(t, "render", "--layout", "stacked", "-c", "A", "-c", "B", "--out", out, a, b)
	if err != nil {
		t.Fatalf("render: %v (%s)", err, stdout)
	}
	want := filepath.Join(out, "MyGalentineCollage.png")
	if strings.TrimSpace(stdout) != want {
		t.Fatalf("stdout = %q, want %q", stdout, want)
	}
	f, err := os.Open(want)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != 800 {
		t.Fatalf("width = %d", img.Bounds().Dx())
	}
}

func TestRenderKeepsake(t *testing.T) {
	dir := t.TempDir()
	a := writePhoto(t, dir, "a.png")

	if _, err := runRoot(t, "render", "--keepsake", "--qr", "forever", "--out", dir, a); err != nil {
		t.Fatalf("render: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "OurGalentineForever.png")); err != nil {
		t.Fatalf("keepsake not written: %v", err)
	}
}

func TestRenderRejects(t *testing.T) {
	dir := t.TempDir()
	a := writePhoto(t, dir, "a.png")
	junk := filepath.Join(dir, "junk.png")
	if err := os.WriteFile(junk, []byte("nope"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
	}{
		{"unknown layout", []string{"render", "--layout", "mosaic", a}},
		{"too many captions", []string{"render", "-c", "x", "-c", "y", a}},
		{"too many photos", []string{"render", a, a, a, a, a, a, a}},
		{"nothing decodes", []string{"render", "--out", dir, junk}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := runRoot(t, tc.args...); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
	if _, err := os.Stat(filepath.Join(dir, "MyGalentineCollage.png")); !os.IsNotExist(err) {
		t.Fatal("collage written despite failures")
	}
}
