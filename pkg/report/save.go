package report

import (
	"bufio"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// writeFileAtomic writes through a temporary file in the destination
// directory and renames it into place, so a failed render never leaves a
// partial artifact at path.
func writeFileAtomic(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return errors.Wrap(err, "could not create output directory")
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*")
	if err != nil {
		return errors.Wrap(err, "could not create temporary file")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	bw := bufio.NewWriter(tmp)
	if err := write(bw); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "could not flush image")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "could not close image")
	}

	return errors.Wrapf(os.Rename(tmp.Name(), path), "could not move image into %s", path)
}
