package uploads

import (
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/agriport/farm2market/internal/fault"
)

// Receipts stores uploaded payment receipts on local disk and hands
// back the reference kept on the transaction row.
type Receipts struct {
	Dir string
}

const maxReceiptSize = 10 << 20 // 10 MiB

var allowedReceiptExt = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".pdf": true,
}

func (s *Receipts) Save(fh *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedReceiptExt[ext] {
		return "", fault.Validation("unsupported receipt format %q", ext)
	}
	if fh.Size > maxReceiptSize {
		return "", fault.Validation("receipt file exceeds 10MB")
	}

	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", err
	}

	name := uuid.New().String() + ext
	dst, err := os.Create(filepath.Join(s.Dir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return "/receipts/" + name, nil
}
