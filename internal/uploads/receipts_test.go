package uploads

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func receiptRequest(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("receipt", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if err := req.ParseMultipartForm(1 << 20); err != nil {
		t.Fatalf("parse multipart: %v", err)
	}
	return req.MultipartForm.File["receipt"][0]
}

func TestSave_StoresFileAndReturnsReference(t *testing.T) {
	dir := t.TempDir()
	s := &Receipts{Dir: dir}

	ref, err := s.Save(receiptRequest(t, "proof.JPG", []byte("fake-jpeg-bytes")))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(ref, "/receipts/") || !strings.HasSuffix(ref, ".jpg") {
		t.Errorf("unexpected reference %q", ref)
	}

	onDisk := filepath.Join(dir, strings.TrimPrefix(ref, "/receipts/"))
	data, err := os.ReadFile(onDisk)
	if err != nil {
		t.Fatalf("stored file missing: %v", err)
	}
	if string(data) != "fake-jpeg-bytes" {
		t.Errorf("stored content mismatch: %q", data)
	}
}

func TestSave_RejectsUnsupportedFormat(t *testing.T) {
	s := &Receipts{Dir: t.TempDir()}
	if _, err := s.Save(receiptRequest(t, "receipt.exe", []byte("mz"))); err == nil {
		t.Error("expected error for unsupported extension")
	}
}
