package pipeline

import (
	"os"
	"path/filepath"

	"spriteatlas/errors"
)

// writeOutputs stages the sheet and the metadata as temp files and renames
// them into place only after both were written, so a failed write leaves an
// earlier atlas untouched. If the metadata rename fails the new sheet is
// removed again.
func writeOutputs(dir, sheetPath string, sheet []byte, metaPath string, meta []byte) error {
	if filepath.Clean(sheetPath) == filepath.Clean(metaPath) {
		return errors.New(errors.ErrCodeInvalidConfig, "metadata would overwrite the sheet %s", sheetPath)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "create output folder %s", dir)
	}
	sheetTmp, err := stageFile(sheetPath, sheet)
	if err != nil {
		return err
	}
	metaTmp, err := stageFile(metaPath, meta)
	if err != nil {
		os.Remove(sheetTmp)
		return err
	}
	if err := os.Rename(sheetTmp, sheetPath); err != nil {
		os.Remove(sheetTmp)
		os.Remove(metaTmp)
		return errors.Wrap(errors.ErrCodeIO, err, "rename %s", sheetPath)
	}
	if err := os.Rename(metaTmp, metaPath); err != nil {
		os.Remove(metaTmp)
		os.Remove(sheetPath)
		return errors.Wrap(errors.ErrCodeIO, err, "rename %s", metaPath)
	}
	return nil
}

// stageFile writes data to a temp file next to path and returns its name.
// The temp file is removed on failure.
func stageFile(path string, data []byte) (string, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeIO, err, "create temp file for %s", path)
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return "", errors.Wrap(errors.ErrCodeIO, err, "write %s", path)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return "", errors.Wrap(errors.ErrCodeIO, err, "write %s", path)
	}
	if err := os.Chmod(name, 0o644); err != nil {
		os.Remove(name)
		return "", errors.Wrap(errors.ErrCodeIO, err, "chmod %s", path)
	}
	return name, nil
}
