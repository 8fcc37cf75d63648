package rom

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/petersieg/palo/errs"
)

func writeConstantROM(t *testing.T, words []uint16) string {
	t.Helper()
	buf := make([]byte, len(words)*2)
	for i, w := range words {
		binary.LittleEndian.PutUint16(buf[i*2:], w)
	}
	path := filepath.Join(t.TempDir(), "const.rom")
	require.NoError(t, os.WriteFile(path, buf, 0o644))
	return path
}

func writeMicrocodeROM(t *testing.T, words []uint32) string {
	t.Helper()
	buf := make([]byte, len(words)*4)
	for i, w := range words {
		binary.LittleEndian.PutUint32(buf[i*4:], w)
	}
	path := filepath.Join(t.TempDir(), "mcode.rom")
	require.NoError(t, os.WriteFile(path, buf, 0o644))
	return path
}

func TestLoadConstantROM_RoundTrip(t *testing.T) {
	want := make([]uint16, ConstantSize)
	for i := range want {
		want[i] = uint16(i * 37)
	}
	path := writeConstantROM(t, want)

	got, err := LoadConstantROM(path)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestLoadConstantROM_ShortFile(t *testing.T) {
	path := writeConstantROM(t, make([]uint16, ConstantSize-1))

	_, err := LoadConstantROM(path)
	require.Error(t, err)
	require.ErrorIs(t, err, errs.ErrInvalidROM)
}

func TestLoadConstantROM_TrailingBytes(t *testing.T) {
	path := writeConstantROM(t, make([]uint16, ConstantSize+1))

	_, err := LoadConstantROM(path)
	require.Error(t, err)
	require.ErrorIs(t, err, errs.ErrInvalidROM)
}

func TestLoadMicrocodeROM_RoundTrip(t *testing.T) {
	want := make([]uint32, MicrocodeSize)
	for i := range want {
		want[i] = uint32(i) * 0x1000193
	}
	path := writeMicrocodeROM(t, want)

	got, err := LoadMicrocodeROM(path, 0)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestLoadMicrocodeROM_InvalidBank(t *testing.T) {
	path := writeMicrocodeROM(t, make([]uint32, MicrocodeSize))

	_, err := LoadMicrocodeROM(path, 2)
	require.Error(t, err)
	require.ErrorIs(t, err, errs.ErrInvalidROM)
}

func TestLoadMicrocodeROM_ShortFile(t *testing.T) {
	path := writeMicrocodeROM(t, make([]uint32, MicrocodeSize-1))

	_, err := LoadMicrocodeROM(path, 1)
	require.Error(t, err)
	require.ErrorIs(t, err, errs.ErrInvalidROM)
}
