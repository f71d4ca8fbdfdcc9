package gba

import (
	"fmt"
	"strings"
)

// MaxCartridgeBytes is the largest supported ROM (32 MiB)
const MaxCartridgeBytes = 32 * 1024 * 1024

// Header is the parsed cartridge header (the first 192 bytes of the ROM)
type Header struct {
	GameTitle       string
	GameCode        string
	MakerCode       string
	MainUnitCode    uint8
	DeviceType      uint8
	SoftwareVersion uint8
	ComplementCheck uint8
}

const headerSize = 0xC0

// ParseHeader validates and extracts the cartridge header
func ParseHeader(data []byte) (Header, error) {
	if len(data) < headerSize {
		return Header{}, fmt.Errorf("cartridge header truncated: %d bytes", len(data))
	}

	check := headerChecksum(data[0xA0:0xBD])
	if data[0xBD] != check {
		return Header{}, fmt.Errorf("cartridge header checksum mismatch: stored 0x%02X, computed 0x%02X",
			data[0xBD], check)
	}

	return Header{
		GameTitle:       strings.TrimRight(string(data[0xA0:0xAC]), "\x00"),
		GameCode:        string(data[0xAC:0xB0]),
		MakerCode:       string(data[0xB0:0xB2]),
		MainUnitCode:    data[0xB3],
		DeviceType:      data[0xB4],
		SoftwareVersion: data[0xBC],
		ComplementCheck: data[0xBD],
	}, nil
}

// headerChecksum is the complement check over bytes 0xA0..0xBC minus 0x19
func headerChecksum(bytes []byte) uint8 {
	var checksum uint8
	for _, b := range bytes {
		checksum -= b
	}
	return checksum - 0x19
}

// Cartridge is the game pak: the ROM image plus its battery-backed SRAM
type Cartridge struct {
	header Header
	rom    []byte
	sram   [0x10000]byte
}

// LoadCartridge parses the header and wraps the ROM image
func LoadCartridge(rom []byte) (*Cartridge, error) {
	if len(rom) > MaxCartridgeBytes {
		return nil, fmt.Errorf("cartridge too large: %d bytes (maximum %d)", len(rom), MaxCartridgeBytes)
	}
	header, err := ParseHeader(rom)
	if err != nil {
		return nil, fmt.Errorf("failed to load cartridge: %w", err)
	}
	return &Cartridge{header: header, rom: rom}, nil
}

// Header returns the parsed cartridge header
func (c *Cartridge) Header() Header {
	return c.header
}

// ReadROM reads one byte from the ROM; addresses past the image read as
// open bus zeroes
func (c *Cartridge) ReadROM(offset uint32) uint8 {
	if int(offset) < len(c.rom) {
		return c.rom[offset]
	}
	return 0
}

// ReadSRAM reads one byte of save RAM
func (c *Cartridge) ReadSRAM(offset uint32) uint8 {
	return c.sram[offset&0xFFFF]
}

// WriteSRAM writes one byte of save RAM
func (c *Cartridge) WriteSRAM(offset uint32, value uint8) {
	c.sram[offset&0xFFFF] = value
}
