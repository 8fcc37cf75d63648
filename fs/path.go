package fs

import (
	"strings"

	"github.com/petersieg/palo/errs"
)

// sysDirLeaderVDA is the well-known leader VDA of SysDir. on a
// freshly formatted Alto disk.
const sysDirLeaderVDA = 1

// FileEntryAt converts a leader VDA into a FileEntry by reading that
// page's label.
func (f *FS) FileEntryAt(leaderVDA uint16) (FileEntry, error) {
	p := f.pageAt(leaderVDA)
	if p == nil {
		return FileEntry{}, errs.Errorf(errs.NotFound, "fs: no page at leader vda %d", leaderVDA)
	}
	return FileEntry{
		SN:        p.Label.SN,
		Version:   p.Label.Version,
		LeaderVDA: leaderVDA,
	}, nil
}

// splitPath splits a name on '<', '>', '/' into path components, the
// way the Alto's hierarchical naming convention does.
func splitPath(name string) []string {
	return strings.FieldsFunc(name, func(r rune) bool {
		return r == '<' || r == '>' || r == '/'
	})
}

// FindFile resolves a path name by walking directories starting at
// SysDir., matching components case-insensitively and preferring the
// highest version when more than one matches.
func (f *FS) FindFile(name string) (FileEntry, error) {
	parts := splitPath(name)
	if len(parts) == 0 {
		return FileEntry{}, errs.New(errs.NotFound, "fs: find_file: empty name")
	}

	dir, err := f.FileEntryAt(sysDirLeaderVDA)
	if err != nil {
		return FileEntry{}, err
	}

	for i, part := range parts {
		isLast := i == len(parts)-1
		match, merr := f.findInDirectory(dir, part)
		if merr != nil {
			return FileEntry{}, merr
		}
		if isLast {
			return match, nil
		}
		dir = match
	}
	return FileEntry{}, errs.New(errs.NotFound, "fs: find_file: unresolved")
}

func (f *FS) findInDirectory(dir FileEntry, want string) (FileEntry, error) {
	var best DirectoryEntry
	found := false

	err := f.ScanDirectory(dir, func(de DirectoryEntry) (ScanResult, error) {
		if !strings.EqualFold(de.Name, want) {
			return ScanContinue, nil
		}
		if !found || de.FE.Version > best.FE.Version {
			best = de
			found = true
		}
		return ScanContinue, nil
	})
	if err != nil {
		return FileEntry{}, err
	}
	if !found {
		return FileEntry{}, errs.Errorf(errs.NotFound, "fs: find_file: %q not found", want)
	}
	return best.FE, nil
}

// ScavengeFile is the fallback path-resolution strategy used when
// directories are corrupt: it linearly scans every leader page and
// matches by name, ignoring the directory tree entirely.
func (f *FS) ScavengeFile(name string) (FileEntry, error) {
	parts := splitPath(name)
	want := name
	if len(parts) > 0 {
		want = parts[len(parts)-1]
	}

	var best FileEntry
	found := false

	err := f.ScanFiles(func(fe FileEntry) (ScanResult, error) {
		info, ierr := f.FileInfo(fe)
		if ierr != nil {
			return ScanContinue, nil // skip unreadable leaders, keep scanning
		}
		if !strings.EqualFold(info.Name, want) {
			return ScanContinue, nil
		}
		if !found || fe.Version > best.Version {
			best = fe
			found = true
		}
		return ScanContinue, nil
	})
	if err != nil {
		return FileEntry{}, err
	}
	if !found {
		return FileEntry{}, errs.Errorf(errs.NotFound, "fs: scavenge_file: %q not found", name)
	}
	return best, nil
}
