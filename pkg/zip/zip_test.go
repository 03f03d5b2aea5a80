package zip

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"
)

func TestArchive(t *testing.T) {
	data, err := Archive([]Asset{
		{FileName: "a.jpg", MIME: "image/jpeg", Data: []byte("first")},
		{FileName: "b.jpg", MIME: "image/jpeg", Data: []byte("second")},
		{FileName: "a.jpg", MIME: "image/jpeg", Data: []byte("third")},
	})
	if err != nil {
		t.Fatalf("Archive error: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	if len(zr.File) != 3 {
		t.Fatalf("entry count = %d, want 3", len(zr.File))
	}

	contents := map[string]string{}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open entry %s: %v", f.Name, err)
		}
		body, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			t.Fatalf("read entry %s: %v", f.Name, err)
		}
		contents[f.Name] = string(body)
	}
	if contents["a.jpg"] != "first" {
		t.Fatalf("a.jpg = %q", contents["a.jpg"])
	}
	if contents["1-a.jpg"] != "third" {
		t.Fatalf("duplicate entry not disambiguated: %v", contents)
	}
}

func TestArchiveEmptyName(t *testing.T) {
	data, err := Archive([]Asset{{Data: []byte("x")}})
	if err != nil {
		t.Fatalf("Archive error: %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	if len(zr.File) != 1 || zr.File[0].Name != "asset" {
		t.Fatalf("unexpected entries: %+v", zr.File)
	}
}
