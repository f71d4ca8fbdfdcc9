package loader

import (
	"fmt"
	"os"

	"github.com/lookbusy1344/gba-emulator/gba"
)

// LoadMachine reads a ROM image (and optionally a BIOS image) from disk and
// builds the machine around them. An empty biosPath selects the skip-BIOS
// boot path.
func LoadMachine(romPath, biosPath string) (*gba.GameBoyAdvance, error) {
	rom, err := LoadROM(romPath)
	if err != nil {
		return nil, err
	}

	var bios []byte
	if biosPath != "" {
		bios, err = LoadBIOS(biosPath)
		if err != nil {
			return nil, err
		}
	}

	machine, err := gba.New(rom, bios)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize machine: %w", err)
	}
	return machine, nil
}

// LoadROM reads and size-checks a cartridge image
func LoadROM(path string) ([]byte, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-supplied ROM path
	if err != nil {
		return nil, fmt.Errorf("failed to read ROM: %w", err)
	}
	if len(data) > gba.MaxCartridgeBytes {
		return nil, fmt.Errorf("ROM too large: %d bytes (maximum %d)", len(data), gba.MaxCartridgeBytes)
	}
	return data, nil
}

// LoadBIOS reads and size-checks a BIOS image
func LoadBIOS(path string) ([]byte, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-supplied BIOS path
	if err != nil {
		return nil, fmt.Errorf("failed to read BIOS: %w", err)
	}
	if len(data) != gba.BIOSSize {
		return nil, fmt.Errorf("unexpected BIOS size: %d bytes (expected %d)", len(data), gba.BIOSSize)
	}
	return data, nil
}
