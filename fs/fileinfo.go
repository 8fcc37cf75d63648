package fs

import (
	"time"

	"github.com/petersieg/palo/errs"
)

// Leader page data layout (within the first bytes of page.Data):
// nameLength(1) + name(nameLength) then, at a fixed offset past the
// NameLength field, three 32-bit Unix timestamps (created, written,
// read) followed by consecutive(1) and change_sn(1). The real Alto
// leader page also carries a DiskDescriptor and a hint FileEntry /
// FilePosition; this library does not reconstruct those (see
// DESIGN.md), since nothing in fs's public contract depends on them.
const (
	leaderNameOffset  = 0
	leaderDatesOffset = 1 + NameLength
	leaderFlagsOffset = leaderDatesOffset + 12
)

// FileInfo reads the name and timestamps recorded in fe's leader page.
func (f *FS) FileInfo(fe FileEntry) (FileInfo, error) {
	p := f.pageAt(fe.LeaderVDA)
	if p == nil {
		return FileInfo{}, errs.Errorf(errs.NotFound, "fs: file_info: no page at leader vda %d", fe.LeaderVDA)
	}

	nameLen := int(p.Data[leaderNameOffset])
	if nameLen > NameLength {
		return FileInfo{}, errs.New(errs.CorruptFS, "fs: file_info: name length exceeds field width")
	}
	name := string(p.Data[leaderNameOffset+1 : leaderNameOffset+1+nameLen])

	created := decodeTime(p.Data[leaderDatesOffset:])
	written := decodeTime(p.Data[leaderDatesOffset+4:])
	read := decodeTime(p.Data[leaderDatesOffset+8:])

	consecutive := p.Data[leaderFlagsOffset]
	changeSN := p.Data[leaderFlagsOffset+1]

	return FileInfo{
		NameLength:  uint8(nameLen),
		Name:        name,
		Created:     created,
		Written:     written,
		Read:        read,
		Consecutive: consecutive,
		ChangeSN:    changeSN,
		FE:          fe,
	}, nil
}

// SetFileInfo writes name and the three timestamps back into fe's
// leader page, the inverse of FileInfo.
func (f *FS) SetFileInfo(fe FileEntry, name string, created, written, read time.Time) error {
	p := f.pageAt(fe.LeaderVDA)
	if p == nil {
		return errs.Errorf(errs.NotFound, "fs: set_file_info: no page at leader vda %d", fe.LeaderVDA)
	}
	if len(name) > NameLength {
		name = name[:NameLength]
	}

	p.Data[leaderNameOffset] = byte(len(name))
	copy(p.Data[leaderNameOffset+1:leaderNameOffset+1+len(name)], name)

	encodeTime(p.Data[leaderDatesOffset:], created)
	encodeTime(p.Data[leaderDatesOffset+4:], written)
	encodeTime(p.Data[leaderDatesOffset+8:], read)
	return nil
}

func decodeTime(b []byte) time.Time {
	sec := uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(int64(sec), 0).UTC()
}

func encodeTime(b []byte, t time.Time) {
	var sec uint32
	if !t.IsZero() {
		sec = uint32(t.Unix())
	}
	b[0] = byte(sec >> 24)
	b[1] = byte(sec >> 16)
	b[2] = byte(sec >> 8)
	b[3] = byte(sec)
}
