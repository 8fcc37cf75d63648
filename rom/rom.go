// Package rom loads the Alto's two ROMs: the constant ROM (one 16-bit
// word per ROM location) and the microcode ROM (one 32-bit
// microinstruction per bank per location). Both are flat little-endian
// binaries with no header, so the only validation possible is exact
// file size. Loaders hand back owned data rather than mutating a
// shared struct.
package rom

import (
	"encoding/binary"
	"os"

	"github.com/petersieg/palo/errs"
	"github.com/petersieg/palo/logger"
)

// ConstantSize is the exact word count of the constant ROM: the
// constant ROM is addressed by the 8-bit (RSEL:5, BS:3) pair, so it
// has exactly 256 locations.
const ConstantSize = 256

// MicrocodeSize is the exact microinstruction count of one microcode
// ROM bank.
const MicrocodeSize = 1024

// NumMicrocodeBanks is the number of microcode ROM banks the Alto II
// supports (bank 0 and bank 1).
const NumMicrocodeBanks = 2

// LoadConstantROM reads exactly ConstantSize little-endian 16-bit
// words from path. A file that is short or carries trailing bytes is
// rejected as errs.InvalidROM.
func LoadConstantROM(path string) ([]uint16, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Errorf(errs.IoError, "rom: cannot read constant ROM %q: %v", path, err)
	}

	want := ConstantSize * 2
	if len(data) != want {
		return nil, errs.Errorf(errs.InvalidROM,
			"constant ROM %q has %d bytes, want %d", path, len(data), want)
	}

	words := make([]uint16, ConstantSize)
	for i := range words {
		words[i] = binary.LittleEndian.Uint16(data[i*2:])
	}

	logger.Logf("rom", "loaded constant ROM %q (%d words)", path, len(words))
	return words, nil
}

// LoadMicrocodeROM reads exactly MicrocodeSize little-endian 32-bit
// words from path for the given bank (0 or 1).
func LoadMicrocodeROM(path string, bank int) ([]uint32, error) {
	if bank < 0 || bank >= NumMicrocodeBanks {
		return nil, errs.Errorf(errs.InvalidROM, "microcode ROM: invalid bank %d", bank)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Errorf(errs.IoError, "rom: cannot read microcode ROM %q: %v", path, err)
	}

	want := MicrocodeSize * 4
	if len(data) != want {
		return nil, errs.Errorf(errs.InvalidROM,
			"microcode ROM %q has %d bytes, want %d", path, len(data), want)
	}

	words := make([]uint32, MicrocodeSize)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(data[i*4:])
	}

	logger.Logf("rom", "loaded microcode ROM %q bank %d (%d words)", path, bank, len(words))
	return words, nil
}
