package legacy

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ImageExtensions are the file types relocated into the restore directory
var ImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
}

// CopyResult summarizes an image relocation
type CopyResult struct {
	Copied  int `json:"copied"`
	Skipped int `json:"skipped"`
}

// CopyImages flattens every image under srcRoot into dstDir. Files whose
// name already exists in dstDir are skipped, so reruns only copy new files.
func CopyImages(srcRoot, dstDir string) (CopyResult, error) {
	var res CopyResult

	if err := os.MkdirAll(dstDir, 0755); err != nil {
		return res, fmt.Errorf("failed to create restore directory: %w", err)
	}
	absDst, err := filepath.Abs(dstDir)
	if err != nil {
		return res, err
	}

	err = filepath.WalkDir(srcRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if abs, _ := filepath.Abs(p); abs == absDst {
				return filepath.SkipDir
			}
			return nil
		}
		if !ImageExtensions[strings.ToLower(filepath.Ext(d.Name()))] {
			return nil
		}

		target := filepath.Join(dstDir, d.Name())
		if _, err := os.Stat(target); err == nil {
			res.Skipped++
			return nil
		}
		if err := copyFile(p, target); err != nil {
			return fmt.Errorf("failed to copy %s: %w", p, err)
		}
		res.Copied++
		return nil
	})

	return res, err
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}
