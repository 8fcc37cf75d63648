package fs

import "github.com/petersieg/palo/errs"

// ScanResult is returned by a scan callback to control enumeration:
// ScanStop (zero) ends the scan cleanly and any other value continues
// it. A callback aborts the scan by returning a non-nil error, which
// the scan returns unchanged.
type ScanResult int

const (
	ScanStop     ScanResult = 0
	ScanContinue ScanResult = 1
)

// ScanFilesFunc is called once per file discovered by ScanFiles.
type ScanFilesFunc func(fe FileEntry) (ScanResult, error)

// ScanFiles walks every page in VDA order; a page starts a file iff
// its label has FilePgNum==0, a non-reserved version, and PrevRDA==0.
// For each such page the callback receives a FileEntry built from that
// page's label and VDA.
func (f *FS) ScanFiles(cb ScanFilesFunc) error {
	for i := range f.pages {
		p := &f.pages[i]
		if !isLeaderLabel(p.Label) {
			continue
		}
		fe := FileEntry{
			SN:        p.Label.SN,
			Version:   p.Label.Version,
			LeaderVDA: p.PageVDA,
		}
		res, err := cb(fe)
		if err != nil {
			return err
		}
		if res == ScanStop {
			return nil
		}
	}
	return nil
}

func isLeaderLabel(l Label) bool {
	return l.FilePgNum == 0 && l.Version != VersionFree && l.Version != VersionBad && l.PrevRDA == 0
}

// ScanDirectoryFunc is called once per valid entry discovered by
// ScanDirectory.
type ScanDirectoryFunc func(de DirectoryEntry) (ScanResult, error)

// ScanDirectory opens fe as a directory file and walks its entries in
// storage order, skipping DirEntryMissing slots and surfacing
// DirEntryValid ones to cb.
func (f *FS) ScanDirectory(fe FileEntry, cb ScanDirectoryFunc) error {
	of, err := f.Open(fe, true)
	if err != nil {
		return err
	}

	for {
		header := make([]byte, 2)
		n, rerr := f.Read(of, header, 2)
		if rerr != nil {
			return rerr
		}
		if n < 2 {
			return nil // clean EOF between entries
		}
		word := uint16(header[0])<<8 | uint16(header[1])
		entryType := word >> 15
		length := int(word & 0x7FFF)
		if length < 1 {
			return errs.New(errs.CorruptFS, "fs: directory entry with zero length")
		}

		body := make([]byte, (length-1)*2)
		if _, rerr := f.Read(of, body, len(body)); rerr != nil {
			return rerr
		}

		if entryType != DirEntryValid {
			continue
		}

		de, perr := parseDirectoryEntry(body)
		if perr != nil {
			return perr
		}
		de.Type = entryType
		de.Length = word & 0x7FFF

		res, cerr := cb(de)
		if cerr != nil {
			return cerr
		}
		if res == ScanStop {
			return nil
		}
	}
}

// parseDirectoryEntry decodes the fixed file_entry plus the
// length-prefixed name that follows it in a directory entry body.
func parseDirectoryEntry(body []byte) (DirectoryEntry, error) {
	if len(body) < 10 {
		return DirectoryEntry{}, errs.New(errs.CorruptFS, "fs: directory entry too short")
	}
	fe := FileEntry{
		SN:        SerialNumber{Word1: be16(body, 0), Word2: be16(body, 2)},
		Version:   be16(body, 4),
		Blank:     be16(body, 6),
		LeaderVDA: be16(body, 8),
	}
	if len(body) < 11 {
		return DirectoryEntry{FE: fe}, nil
	}
	nameLen := int(body[10])
	nameStart := 11
	if nameStart+nameLen > len(body) {
		nameLen = len(body) - nameStart
	}
	name := string(body[nameStart : nameStart+nameLen])
	return DirectoryEntry{
		FE:         fe,
		NameLength: uint8(nameLen),
		Name:       name,
	}, nil
}

func be16(b []byte, off int) uint16 {
	return uint16(b[off])<<8 | uint16(b[off+1])
}
