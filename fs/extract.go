package fs

import (
	"io"
	"math"
	"os"

	"github.com/petersieg/palo/errs"
)

// ExtractFile opens fe past the leader and copies its contents to a
// new host file at outputPath.
func (f *FS) ExtractFile(fe FileEntry, outputPath string) error {
	of, err := f.Open(fe, false)
	if err != nil {
		return err
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return errs.Errorf(errs.IoError, "fs: extract_file: cannot create %q: %v", outputPath, err)
	}
	defer out.Close()

	buf := make([]byte, PageDataSize)
	for {
		n, rerr := f.Read(of, buf, len(buf))
		if rerr != nil {
			return rerr
		}
		if n == 0 {
			return nil
		}
		if _, werr := out.Write(buf[:n]); werr != nil {
			return errs.Errorf(errs.IoError, "fs: extract_file: write to %q: %v", outputPath, werr)
		}
	}
}

// ReplaceFile opens fe past the leader, writes the contents of
// inputPath with extend=true, then trims to the new end of file. If
// any step fails, the pages that were newly allocated during the
// write are rolled back by trimming to the pre-write end of file
// before returning the error. Bytes already overwritten within the
// file's pre-write length are not restored.
func (f *FS) ReplaceFile(fe FileEntry, inputPath string) error {
	of, err := f.Open(fe, false)
	if err != nil {
		return err
	}
	end := *of
	if _, err := f.Read(&end, nil, math.MaxInt); err != nil {
		return err
	}
	rollbackPos := end.Pos

	in, err := os.Open(inputPath)
	if err != nil {
		return errs.Errorf(errs.IoError, "fs: replace_file: cannot open %q: %v", inputPath, err)
	}
	defer in.Close()

	buf := make([]byte, PageDataSize)
	for {
		n, rerr := in.Read(buf)
		if n > 0 {
			if _, werr := f.Write(of, buf[:n], n, true); werr != nil {
				f.rollbackTo(fe, rollbackPos)
				return werr
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			f.rollbackTo(fe, rollbackPos)
			return errs.Errorf(errs.IoError, "fs: replace_file: read %q: %v", inputPath, rerr)
		}
	}

	if terr := f.Trim(of); terr != nil {
		f.rollbackTo(fe, rollbackPos)
		return terr
	}
	return nil
}

// rollbackTo restores fe's length to the position it had before a
// failed write/extend, discarding any pages allocated in between.
func (f *FS) rollbackTo(fe FileEntry, pos FilePosition) {
	rollback := &OpenFile{FE: fe, Pos: pos}
	_ = f.Trim(rollback)
}
