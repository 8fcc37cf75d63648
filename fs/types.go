// Package fs implements the Alto filesystem: a dense array of 512-byte
// pages with 8-word labels, addressed by virtual disk address (VDA),
// with directories and leader pages layered on top. It is a standalone
// library with no dependency on the microengine; a front end loads a
// disk image, mutates it with Open/Read/Write/Trim, and saves it back.
package fs

import "time"

// NameLength is the maximum length of a file name, matching the
// Alto's fixed-width name field in a directory entry.
const NameLength = 40

// PageDataSize is the number of data bytes carried by one page,
// excluding its label.
const PageDataSize = 512

// Serial number word1 bit flags.
const (
	snDirectory = 0x8000
	snRand      = 0x4000
	snNoLog     = 0x2000
	snPart1Mask = 0x1FFF
)

// Reserved version numbers.
const (
	VersionFree = 0xFFFF
	VersionBad  = 0xFFFE
)

// Directory entry types.
const (
	DirEntryMissing = 0
	DirEntryValid   = 1
)

// SerialNumber identifies a file across the directory tree and the
// page labels of every page belonging to it.
type SerialNumber struct {
	Word1 uint16
	Word2 uint16
}

// IsDirectory reports whether this serial number belongs to a
// directory file.
func (sn SerialNumber) IsDirectory() bool {
	return sn.Word1&snDirectory != 0
}

// FileEntry locates a file by its serial number, version, and the VDA
// of its leader page.
type FileEntry struct {
	SN        SerialNumber
	Version   uint16
	Blank     uint16
	LeaderVDA uint16
}

// FilePosition is a cursor within an open file.
type FilePosition struct {
	VDA    uint16
	PgNum  uint16
	Pos    uint16
}

// OpenFile is a file opened for sequential Read/Write/Trim.
type OpenFile struct {
	FE       FileEntry
	Pos      FilePosition
	HasError bool
}

// Label is the 8-word page label preceding a page's data.
type Label struct {
	NextRDA  uint16
	PrevRDA  uint16
	Unused   uint16
	NBytes   uint16
	FilePgNum uint16
	Version  uint16
	SN       SerialNumber
}

// Page is one 512-byte filesystem page plus its label and the VDA it
// lives at.
type Page struct {
	PageVDA uint16
	Header  [2]uint16
	Label   Label
	Data    [PageDataSize]byte
}

// DirectoryEntry is one variable-length slot within a directory file.
type DirectoryEntry struct {
	Type       uint16
	Length     uint16
	FE         FileEntry
	NameLength uint8
	Name       string
}

// FileInfo is the leader-page metadata exposed by FileInfo(fe).
type FileInfo struct {
	NameLength uint8
	Name       string
	Created    time.Time
	Written    time.Time
	Read       time.Time

	Consecutive uint8
	ChangeSN    uint8

	FE       FileEntry
	LastPage FilePosition
}

// Geometry is the disk's physical shape: disks, cylinders, heads per
// cylinder, and sectors per head. Disks * Cylinders * Heads * Sectors
// is the filesystem's total page count.
type Geometry struct {
	NumDisks     uint16
	NumCylinders uint16
	NumHeads     uint16
	NumSectors   uint16
}

// PageCount returns the total number of pages this geometry implies.
func (g Geometry) PageCount() int {
	return int(g.NumDisks) * int(g.NumCylinders) * int(g.NumHeads) * int(g.NumSectors)
}

// FS is one loaded Alto filesystem image.
type FS struct {
	Geometry Geometry
	DiskNum  uint16

	pages []Page

	bitmap     []uint16
	bitmapSize int
	freePages  int
}
