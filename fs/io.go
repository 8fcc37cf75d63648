package fs

import "github.com/petersieg/palo/errs"

// Open seeds a cursor over the file described by fe. If includeLeader
// is true the cursor starts at the leader page (pgnum 0); otherwise it
// starts at the first data page (pgnum 1).
func (f *FS) Open(fe FileEntry, includeLeader bool) (*OpenFile, error) {
	leader := f.pageAt(fe.LeaderVDA)
	if leader == nil {
		return nil, errs.Errorf(errs.NotFound, "fs: open: no page at leader vda %d", fe.LeaderVDA)
	}

	of := &OpenFile{FE: fe}
	if includeLeader {
		of.Pos = FilePosition{VDA: fe.LeaderVDA, PgNum: 0, Pos: 0}
		return of, nil
	}

	next := f.RDAToVDA(leader.Label.NextRDA)
	if leader.Label.NextRDA == 0 {
		return nil, errs.New(errs.CorruptFS, "fs: open: leader has no data page")
	}
	of.Pos = FilePosition{VDA: next, PgNum: 1, Pos: 0}
	return of, nil
}

// Read copies up to len bytes from of into dst, advancing of.Pos. If
// dst is nil the cursor still advances but no bytes are copied. It
// returns the number of bytes actually read, which is less than len
// only at end of file.
func (f *FS) Read(of *OpenFile, dst []byte, length int) (int, error) {
	read := 0
	for read < length {
		p := f.pageAt(of.Pos.VDA)
		if p == nil {
			of.HasError = true
			return read, errs.New(errs.CorruptFS, "fs: read: dangling page pointer")
		}
		avail := int(p.Label.NBytes) - int(of.Pos.Pos)
		if avail <= 0 {
			if p.Label.NextRDA == 0 {
				return read, nil // clean EOF
			}
			of.Pos.VDA = f.RDAToVDA(p.Label.NextRDA)
			of.Pos.PgNum++
			of.Pos.Pos = 0
			continue
		}
		n := avail
		if remaining := length - read; n > remaining {
			n = remaining
		}
		if dst != nil {
			copy(dst[read:read+n], p.Data[of.Pos.Pos:int(of.Pos.Pos)+n])
		}
		read += n
		of.Pos.Pos += uint16(n)
	}
	return read, nil
}

// FindFreePage locates an unallocated page and returns its VDA,
// without marking it allocated (the caller does that once it commits
// to using it, matching fs_find_free_page's contract).
func (f *FS) FindFreePage() (uint16, error) {
	for i := range f.pages {
		if !f.isAllocated(i) {
			return uint16(i), nil
		}
	}
	return 0, errs.New(errs.OutOfSpace, "fs: no free pages")
}

// Write copies len bytes from src into of, advancing of.Pos. If src is
// nil the written bytes are zeroed. When extend is true, Write
// allocates new pages via FindFreePage once it reaches the end of the
// existing chain; otherwise it stops early and returns the number of
// bytes actually written.
func (f *FS) Write(of *OpenFile, src []byte, length int, extend bool) (int, error) {
	written := 0
	for written < length {
		p := f.pageAt(of.Pos.VDA)
		if p == nil {
			of.HasError = true
			return written, errs.New(errs.CorruptFS, "fs: write: dangling page pointer")
		}

		room := PageDataSize - int(of.Pos.Pos)
		if room <= 0 {
			nextVDA, err := f.advanceForWrite(of, p, extend)
			if err != nil {
				return written, err
			}
			if nextVDA == invalidVDA {
				return written, nil
			}
			continue
		}

		n := room
		if remaining := length - written; n > remaining {
			n = remaining
		}
		if src != nil {
			copy(p.Data[of.Pos.Pos:int(of.Pos.Pos)+n], src[written:written+n])
		} else {
			for i := 0; i < n; i++ {
				p.Data[int(of.Pos.Pos)+i] = 0
			}
		}
		written += n
		of.Pos.Pos += uint16(n)
		if int(of.Pos.Pos) > int(p.Label.NBytes) {
			p.Label.NBytes = of.Pos.Pos
		}
	}
	return written, nil
}

const invalidVDA = 0xFFFF

// advanceForWrite follows the chain from p, allocating a new page when
// extend is set and the chain ends here.
func (f *FS) advanceForWrite(of *OpenFile, p *Page, extend bool) (uint16, error) {
	if p.Label.NextRDA != 0 {
		of.Pos.VDA = f.RDAToVDA(p.Label.NextRDA)
		of.Pos.PgNum++
		of.Pos.Pos = 0
		return of.Pos.VDA, nil
	}
	if !extend {
		return invalidVDA, nil
	}

	newVDA, err := f.FindFreePage()
	if err != nil {
		return invalidVDA, err
	}
	f.markAllocated(int(newVDA))
	f.freePages--

	newPage := f.pageAt(newVDA)
	newPage.Label = Label{
		PrevRDA:   f.VDAToRDA(p.PageVDA),
		FilePgNum: p.Label.FilePgNum + 1,
		Version:   p.Label.Version,
		SN:        p.Label.SN,
	}
	p.Label.NextRDA = f.VDAToRDA(newVDA)

	of.Pos.VDA = newVDA
	of.Pos.PgNum++
	of.Pos.Pos = 0
	return newVDA, nil
}

// Trim sets of's current position as the new end of file: the current
// page's NBytes is shortened to of.Pos.Pos, and every subsequent page
// in the chain is freed (version reset to VersionFree, bitmap bit
// cleared).
func (f *FS) Trim(of *OpenFile) error {
	p := f.pageAt(of.Pos.VDA)
	if p == nil {
		return errs.New(errs.CorruptFS, "fs: trim: dangling page pointer")
	}

	next := p.Label.NextRDA
	p.Label.NBytes = of.Pos.Pos
	p.Label.NextRDA = 0

	for next != 0 {
		vda := f.RDAToVDA(next)
		victim := f.pageAt(vda)
		if victim == nil {
			return errs.New(errs.CorruptFS, "fs: trim: dangling page pointer in freed tail")
		}
		next = victim.Label.NextRDA
		victim.Label = Label{Version: VersionFree}
		if f.isAllocated(int(vda)) {
			f.markFree(int(vda))
			f.freePages++
		}
	}
	return nil
}

// FileLength walks fe's page chain (skipping the leader) and sums
// NBytes, matching fs_file_length.
func (f *FS) FileLength(fe FileEntry) (int, error) {
	leader := f.pageAt(fe.LeaderVDA)
	if leader == nil {
		return 0, errs.Errorf(errs.NotFound, "fs: file_length: no page at leader vda %d", fe.LeaderVDA)
	}

	length := 0
	rda := leader.Label.NextRDA
	for rda != 0 {
		p := f.pageAt(f.RDAToVDA(rda))
		if p == nil {
			return length, errs.New(errs.CorruptFS, "fs: file_length: dangling page pointer")
		}
		length += int(p.Label.NBytes)
		rda = p.Label.NextRDA
	}
	return length, nil
}
