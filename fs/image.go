package fs

import (
	"encoding/binary"
	"os"

	"github.com/petersieg/palo/errs"
)

// labelSize is the on-disk size of a Label: 8 words (NextRDA, PrevRDA,
// Unused, NBytes, FilePgNum, Version, SN.Word1, SN.Word2).
const labelSize = 16

// pageRecordSize is the on-disk size of one page: VDA (2 bytes),
// header (4 bytes), label, data (512 bytes).
const pageRecordSize = 2 + 4 + labelSize + PageDataSize

// Create allocates a fresh, all-free filesystem for the given
// geometry. Every page starts at VersionFree with an empty label; the
// caller is responsible for formatting a SysDir and free-page bitmap
// afterward (formatting a bootable disk from scratch is out of scope
// here, matching real Alto tooling that always starts from a golden
// image).
func Create(g Geometry) *FS {
	n := g.PageCount()
	f := &FS{
		Geometry:   g,
		pages:      make([]Page, n),
		bitmapSize: (n + 15) / 16,
	}
	f.bitmap = make([]uint16, f.bitmapSize)
	f.freePages = n
	for i := range f.pages {
		f.pages[i].PageVDA = uint16(i)
		f.pages[i].Label.Version = VersionFree
	}
	return f
}

// LoadImage reads a flat disk image file into a new FS, using g to
// interpret the page count. The file must contain exactly
// g.PageCount() fixed-size page records back to back.
func LoadImage(path string, g Geometry) (*FS, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Errorf(errs.IoError, "fs: cannot read image %q: %v", path, err)
	}

	n := g.PageCount()
	want := n * pageRecordSize
	if len(data) != want {
		return nil, errs.Errorf(errs.InvalidImage,
			"fs: image %q has %d bytes, want %d for %d pages", path, len(data), want, n)
	}

	f := &FS{
		Geometry:   g,
		pages:      make([]Page, n),
		bitmapSize: (n + 15) / 16,
	}
	f.bitmap = make([]uint16, f.bitmapSize)

	off := 0
	for i := range f.pages {
		p := &f.pages[i]
		p.PageVDA = binary.BigEndian.Uint16(data[off:])
		off += 2
		p.Header[0] = binary.BigEndian.Uint16(data[off:])
		p.Header[1] = binary.BigEndian.Uint16(data[off+2:])
		off += 4
		p.Label.NextRDA = binary.BigEndian.Uint16(data[off:])
		p.Label.PrevRDA = binary.BigEndian.Uint16(data[off+2:])
		p.Label.Unused = binary.BigEndian.Uint16(data[off+4:])
		p.Label.NBytes = binary.BigEndian.Uint16(data[off+6:])
		p.Label.FilePgNum = binary.BigEndian.Uint16(data[off+8:])
		p.Label.Version = binary.BigEndian.Uint16(data[off+10:])
		p.Label.SN.Word1 = binary.BigEndian.Uint16(data[off+12:])
		p.Label.SN.Word2 = binary.BigEndian.Uint16(data[off+14:])
		off += labelSize
		copy(p.Data[:], data[off:off+PageDataSize])
		off += PageDataSize

		if p.Label.Version != VersionFree {
			f.markAllocated(int(p.PageVDA))
		}
	}
	f.recomputeFreeCount()

	return f, nil
}

// SaveImage writes the filesystem back out as a flat disk image in
// the same layout LoadImage expects.
func (f *FS) SaveImage(path string) error {
	buf := make([]byte, len(f.pages)*pageRecordSize)
	off := 0
	for i := range f.pages {
		p := &f.pages[i]
		binary.BigEndian.PutUint16(buf[off:], p.PageVDA)
		off += 2
		binary.BigEndian.PutUint16(buf[off:], p.Header[0])
		binary.BigEndian.PutUint16(buf[off+2:], p.Header[1])
		off += 4
		binary.BigEndian.PutUint16(buf[off:], p.Label.NextRDA)
		binary.BigEndian.PutUint16(buf[off+2:], p.Label.PrevRDA)
		binary.BigEndian.PutUint16(buf[off+4:], p.Label.Unused)
		binary.BigEndian.PutUint16(buf[off+6:], p.Label.NBytes)
		binary.BigEndian.PutUint16(buf[off+8:], p.Label.FilePgNum)
		binary.BigEndian.PutUint16(buf[off+10:], p.Label.Version)
		binary.BigEndian.PutUint16(buf[off+12:], p.Label.SN.Word1)
		binary.BigEndian.PutUint16(buf[off+14:], p.Label.SN.Word2)
		off += labelSize
		copy(buf[off:off+PageDataSize], p.Data[:])
		off += PageDataSize
	}

	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return errs.Errorf(errs.IoError, "fs: cannot write image %q: %v", path, err)
	}
	return nil
}

// VDAToRDA and RDAToVDA convert between virtual and real disk
// addresses. This implementation treats them as identical linear page
// indices: every page chain pointer stored in a label is already a
// valid VDA, so the conversion is the identity function. Multi-disk,
// multi-platter geometry differences that a real controller would
// need to seek across are not modeled by this library (see
// DESIGN.md).
func (f *FS) VDAToRDA(vda uint16) uint16 { return vda }
func (f *FS) RDAToVDA(rda uint16) uint16 { return rda }

func (f *FS) markAllocated(vda int) {
	word, bit := vda/16, uint(vda%16)
	f.bitmap[word] |= 1 << bit
}

func (f *FS) markFree(vda int) {
	word, bit := vda/16, uint(vda%16)
	f.bitmap[word] &^= 1 << bit
}

func (f *FS) isAllocated(vda int) bool {
	word, bit := vda/16, uint(vda%16)
	return f.bitmap[word]&(1<<bit) != 0
}

func (f *FS) recomputeFreeCount() {
	free := 0
	for i := range f.pages {
		if !f.isAllocated(i) {
			free++
		}
	}
	f.freePages = free
}

// FreePages reports how many pages are currently unallocated.
func (f *FS) FreePages() int {
	return f.freePages
}

// pageAt returns a pointer to the page at the given VDA, or nil if out
// of range.
func (f *FS) pageAt(vda uint16) *Page {
	if int(vda) >= len(f.pages) {
		return nil
	}
	return &f.pages[vda]
}
