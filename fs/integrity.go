package fs

import "github.com/petersieg/palo/errs"

// IntegrityLevel selects how much of the filesystem CheckIntegrity
// inspects. A negative level means run every check.
type IntegrityLevel int

const (
	IntegrityBitmap IntegrityLevel = iota
	IntegrityChains
	IntegrityLeaders
	IntegrityReservedVersions
	integrityLevelCount
)

// IntegrityReport collects every problem CheckIntegrity found, rather
// than stopping at the first one, so a caller can report them all at
// once.
type IntegrityReport struct {
	Problems []string
}

// OK reports whether the filesystem passed every check that ran.
func (r IntegrityReport) OK() bool {
	return len(r.Problems) == 0
}

// CheckIntegrity validates the filesystem up to the given level:
// bitmap consistency, chain consistency (prev/next reciprocity,
// monotonic FilePgNum, constant serial number along a chain, walked
// from every leader page), and no allocated page with a reserved
// version. IntegrityLeaders is accepted as a level but runs no check
// of its own: a chain whose first page is not a leader page is not
// reported.
func (f *FS) CheckIntegrity(level IntegrityLevel) IntegrityReport {
	if level < 0 {
		level = integrityLevelCount - 1
	}

	var r IntegrityReport

	if level >= IntegrityBitmap {
		f.checkBitmap(&r)
	}
	if level >= IntegrityReservedVersions {
		f.checkReservedVersions(&r)
	}
	if level >= IntegrityChains {
		f.checkChains(&r)
	}

	return r
}

func (f *FS) checkBitmap(r *IntegrityReport) {
	for i := range f.pages {
		labelAllocated := f.pages[i].Label.Version != VersionFree
		if labelAllocated != f.isAllocated(i) {
			r.Problems = append(r.Problems, errs.Errorf(errs.CorruptFS,
				"fs: bitmap/label mismatch at vda %d", i).Error())
		}
	}
}

func (f *FS) checkReservedVersions(r *IntegrityReport) {
	for i := range f.pages {
		if f.isAllocated(i) && f.pages[i].Label.Version == VersionBad {
			r.Problems = append(r.Problems, errs.Errorf(errs.CorruptFS,
				"fs: allocated page %d carries reserved version", i).Error())
		}
	}
}

func (f *FS) checkChains(r *IntegrityReport) {
	for i := range f.pages {
		p := &f.pages[i]
		if !isLeaderLabel(p.Label) {
			continue
		}
		f.checkChainFrom(p, r)
	}
}

func (f *FS) checkChainFrom(leader *Page, r *IntegrityReport) {
	sn := leader.Label.SN
	prevVDA := leader.PageVDA
	pgnum := leader.Label.FilePgNum
	rda := leader.Label.NextRDA

	for rda != 0 {
		vda := f.RDAToVDA(rda)
		p := f.pageAt(vda)
		if p == nil {
			r.Problems = append(r.Problems, errs.Errorf(errs.CorruptFS,
				"fs: chain from leader %d: dangling pointer to vda %d", leader.PageVDA, vda).Error())
			return
		}
		if f.RDAToVDA(p.Label.PrevRDA) != prevVDA {
			r.Problems = append(r.Problems, errs.Errorf(errs.CorruptFS,
				"fs: chain from leader %d: broken prev link at vda %d", leader.PageVDA, vda).Error())
		}
		if p.Label.FilePgNum != pgnum+1 {
			r.Problems = append(r.Problems, errs.Errorf(errs.CorruptFS,
				"fs: chain from leader %d: non-monotonic file_pgnum at vda %d", leader.PageVDA, vda).Error())
		}
		if p.Label.SN != sn {
			r.Problems = append(r.Problems, errs.Errorf(errs.CorruptFS,
				"fs: chain from leader %d: serial number mismatch at vda %d", leader.PageVDA, vda).Error())
		}

		prevVDA = vda
		pgnum = p.Label.FilePgNum
		rda = p.Label.NextRDA
	}
}
