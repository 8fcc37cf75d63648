package fs

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func smallGeometry() Geometry {
	return Geometry{NumDisks: 1, NumCylinders: 1, NumHeads: 1, NumSectors: 32}
}

// makeFile creates a minimal one-page-data file (leader + one data
// page) with the given name and contents, returning its FileEntry.
func makeFile(t *testing.T, f *FS, name, contents string) FileEntry {
	t.Helper()

	leaderVDA, err := f.FindFreePage()
	if err != nil {
		t.Fatalf("FindFreePage (leader): %v", err)
	}
	f.markAllocated(int(leaderVDA))
	f.freePages--

	sn := SerialNumber{Word1: 0x0001, Word2: uint16(leaderVDA)}
	leader := f.pageAt(leaderVDA)
	leader.Label = Label{FilePgNum: 0, Version: 1, SN: sn}

	fe := FileEntry{SN: sn, Version: 1, LeaderVDA: leaderVDA}
	now := time.Unix(1_700_000_000, 0)
	if err := f.SetFileInfo(fe, name, now, now, now); err != nil {
		t.Fatalf("SetFileInfo: %v", err)
	}

	dataVDA, err := f.FindFreePage()
	if err != nil {
		t.Fatalf("FindFreePage (data): %v", err)
	}
	f.markAllocated(int(dataVDA))
	f.freePages--
	data := f.pageAt(dataVDA)
	data.Label = Label{PrevRDA: f.VDAToRDA(leaderVDA), FilePgNum: 1, Version: 1, SN: sn}
	n := copy(data.Data[:], contents)
	data.Label.NBytes = uint16(n)
	leader.Label.NextRDA = f.VDAToRDA(dataVDA)

	return fe
}

func TestScanFilesFindsLeaderPages(t *testing.T) {
	f := Create(smallGeometry())
	fe := makeFile(t, f, "test.txt", "hello world")

	var found []FileEntry
	err := f.ScanFiles(func(e FileEntry) (ScanResult, error) {
		found = append(found, e)
		return ScanContinue, nil
	})
	if err != nil {
		t.Fatalf("ScanFiles: %v", err)
	}
	if len(found) != 1 || found[0].LeaderVDA != fe.LeaderVDA {
		t.Fatalf("ScanFiles found %v, want exactly [%v]", found, fe)
	}
}

func TestOpenReadRoundTrip(t *testing.T) {
	f := Create(smallGeometry())
	fe := makeFile(t, f, "readme.txt", "the quick brown fox")

	of, err := f.Open(fe, false)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	buf := make([]byte, 64)
	n, err := f.Read(of, buf, len(buf))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(buf[:n]) != "the quick brown fox" {
		t.Errorf("Read = %q, want %q", buf[:n], "the quick brown fox")
	}
}

func TestWriteExtendAllocatesPages(t *testing.T) {
	f := Create(smallGeometry())
	fe := makeFile(t, f, "grow.txt", "")

	of, err := f.Open(fe, false)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	payload := make([]byte, PageDataSize+100)
	for i := range payload {
		payload[i] = byte(i)
	}

	n, err := f.Write(of, payload, len(payload), true)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if n != len(payload) {
		t.Fatalf("Write wrote %d bytes, want %d", n, len(payload))
	}

	length, err := f.FileLength(fe)
	if err != nil {
		t.Fatalf("FileLength: %v", err)
	}
	if length != len(payload) {
		t.Errorf("FileLength = %d, want %d", length, len(payload))
	}
}

func TestTrimFreesTailPages(t *testing.T) {
	f := Create(smallGeometry())
	fe := makeFile(t, f, "trim.txt", "")

	of, _ := f.Open(fe, false)
	payload := make([]byte, PageDataSize+50)
	if _, err := f.Write(of, payload, len(payload), true); err != nil {
		t.Fatalf("Write: %v", err)
	}

	freeBefore := f.FreePages()

	of2, _ := f.Open(fe, false)
	if _, err := f.Read(of2, make([]byte, 10), 10); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if err := f.Trim(of2); err != nil {
		t.Fatalf("Trim: %v", err)
	}

	if f.FreePages() <= freeBefore {
		t.Errorf("Trim should free at least one page: before=%d after=%d", freeBefore, f.FreePages())
	}
}

func TestCheckIntegrityCatchesBrokenChain(t *testing.T) {
	f := Create(smallGeometry())
	fe := makeFile(t, f, "corrupt.txt", "")
	of, _ := f.Open(fe, false)
	payload := make([]byte, PageDataSize+10)
	if _, err := f.Write(of, payload, len(payload), true); err != nil {
		t.Fatalf("Write: %v", err)
	}

	leader := f.pageAt(fe.LeaderVDA)
	dataVDA := f.RDAToVDA(leader.Label.NextRDA)
	dataPage := f.pageAt(dataVDA)
	dataPage.Label.FilePgNum = 99 // break monotonicity

	report := f.CheckIntegrity(-1)
	if report.OK() {
		t.Error("expected integrity check to report the broken chain")
	}
}

func TestSaveLoadImageRoundTrip(t *testing.T) {
	f := Create(smallGeometry())
	makeFile(t, f, "saved.txt", "persisted")

	dir := t.TempDir()
	path := filepath.Join(dir, "disk.img")
	if err := f.SaveImage(path); err != nil {
		t.Fatalf("SaveImage: %v", err)
	}

	loaded, err := LoadImage(path, smallGeometry())
	if err != nil {
		t.Fatalf("LoadImage: %v", err)
	}

	var names []string
	err = loaded.ScanFiles(func(fe FileEntry) (ScanResult, error) {
		info, ierr := loaded.FileInfo(fe)
		if ierr != nil {
			return ScanContinue, nil
		}
		names = append(names, info.Name)
		return ScanContinue, nil
	})
	if err != nil {
		t.Fatalf("ScanFiles: %v", err)
	}
	if len(names) != 1 || names[0] != "saved.txt" {
		t.Errorf("names after reload = %v, want [saved.txt]", names)
	}
}

func TestExtractFile(t *testing.T) {
	f := Create(smallGeometry())
	fe := makeFile(t, f, "extract.txt", "extract me")

	dir := t.TempDir()
	out := filepath.Join(dir, "out.txt")
	if err := f.ExtractFile(fe, out); err != nil {
		t.Fatalf("ExtractFile: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "extract me" {
		t.Errorf("extracted content = %q, want %q", data, "extract me")
	}
}
