package gba

import "github.com/lookbusy1344/gba-emulator/cpu"

// The system bus: routes every CPU access to the right region, and bills
// the region's wait-state cost to the scheduler before any data moves.

// Memory map region bases
const (
	BIOSBase      = 0x00000000
	WRAMBoardBase = 0x02000000
	WRAMChipBase  = 0x03000000
	IOBase        = 0x04000000
	PaletteBase   = 0x05000000
	VRAMBase      = 0x06000000
	OAMBase       = 0x07000000
	ROMWS0Base    = 0x08000000
	ROMWS1Base    = 0x0A000000
	ROMWS2Base    = 0x0C000000
	SRAMBase      = 0x0E000000
)

// Region indices (bits 27-24 of the address)
const (
	regionBIOS      = 0x0
	regionWRAMBoard = 0x2
	regionWRAMChip  = 0x3
	regionIO        = 0x4
	regionPalette   = 0x5
	regionVRAM      = 0x6
	regionOAM       = 0x7
	regionROMWS0    = 0x8
	regionROMWS1    = 0xA
	regionROMWS2    = 0xC
	regionSRAM      = 0xE
)

// I/O register addresses
const (
	regDISPCNT  = 0x04000000
	regDISPSTAT = 0x04000004
	regVCOUNT   = 0x04000006
	regKEYINPUT = 0x04000130
	regKEYCNT   = 0x04000132
	regIE       = 0x04000200
	regIF       = 0x04000202
	regWAITCNT  = 0x04000204
	regIME      = 0x04000208
	regPOSTFLG  = 0x04000300
	regHALTCNT  = 0x04000301
)

// Bus is the production memory system behind the core
type Bus struct {
	bios      *BIOS
	wramBoard [0x40000]byte
	wramChip  [0x8000]byte
	palette   [0x400]byte
	vram      [0x18000]byte
	oam       [0x400]byte
	cartridge *Cartridge

	interrupts *InterruptController
	system     *SystemController
	keypad     *Keypad
	ppu        *PPU

	scheduler *Scheduler
}

// NewBus assembles the memory system around a cartridge, a BIOS image and
// the shared scheduler
func NewBus(cartridge *Cartridge, bios *BIOS, scheduler *Scheduler) *Bus {
	return &Bus{
		bios:       bios,
		cartridge:  cartridge,
		interrupts: &InterruptController{},
		system:     NewSystemController(),
		keypad:     NewKeypad(),
		ppu:        NewPPU(),
		scheduler:  scheduler,
	}
}

// Interrupts exposes the interrupt controller to peripherals and the host
func (b *Bus) Interrupts() *InterruptController {
	return b.interrupts
}

// System exposes the system controller
func (b *Bus) System() *SystemController {
	return b.system
}

// Keypad exposes the keypad registers
func (b *Bus) Keypad() *Keypad {
	return b.keypad
}

// PPU exposes the picture processor
func (b *Bus) PPU() *PPU {
	return b.ppu
}

// VRAM exposes video memory to the PPU render path
func (b *Bus) VRAM() []byte {
	return b.vram[:]
}

// PaletteRAM exposes palette memory to the PPU render path
func (b *Bus) PaletteRAM() []byte {
	return b.palette[:]
}

// InterruptPending reports whether an enabled interrupt line is raised
func (b *Bus) InterruptPending() bool {
	return b.interrupts.Pending()
}

// HaltMode reports the processor power state
func (b *Bus) HaltMode() HaltMode {
	return b.system.HaltMode()
}

// UnHalt returns the machine to the running state
func (b *Bus) UnHalt() {
	b.system.UnHalt()
}

// Peek8 reads one byte without billing cycles; used by debugger views
func (b *Bus) Peek8(address uint32) uint8 {
	return b.read8(address)
}

// billCycles charges one access against the scheduler
func (b *Bus) billCycles(address uint32, wide bool, access cpu.Access) {
	b.scheduler.Update(b.system.Cycles(address, wide, access))
}

// MemoryInterface implementation. Halfword and word accesses ignore the
// low address bits the way the hardware bus does.

func (b *Bus) Load8(address uint32, access cpu.Access) uint32 {
	b.billCycles(address, false, access)
	return uint32(b.read8(address))
}

func (b *Bus) Load16(address uint32, access cpu.Access) uint32 {
	b.billCycles(address, false, access)
	address &^= 1
	return uint32(b.read8(address)) | uint32(b.read8(address+1))<<8
}

func (b *Bus) Load32(address uint32, access cpu.Access) uint32 {
	b.billCycles(address, true, access)
	address &^= 3
	return uint32(b.read8(address)) |
		uint32(b.read8(address+1))<<8 |
		uint32(b.read8(address+2))<<16 |
		uint32(b.read8(address+3))<<24
}

func (b *Bus) Store8(address uint32, value uint8, access cpu.Access) {
	b.billCycles(address, false, access)
	b.write8(address, value)
}

func (b *Bus) Store16(address uint32, value uint16, access cpu.Access) {
	b.billCycles(address, false, access)
	address &^= 1
	b.write8(address, uint8(value))
	b.write8(address+1, uint8(value>>8))
}

func (b *Bus) Store32(address uint32, value uint32, access cpu.Access) {
	b.billCycles(address, true, access)
	address &^= 3
	b.write8(address, uint8(value))
	b.write8(address+1, uint8(value>>8))
	b.write8(address+2, uint8(value>>16))
	b.write8(address+3, uint8(value>>24))
}

func (b *Bus) IdleCycle() {
	b.scheduler.Update(1)
}

// read8 routes a byte read by region; mirrors wrap via the region masks
func (b *Bus) read8(address uint32) uint8 {
	switch (address >> 24) & 0xF {
	case regionBIOS:
		return b.bios.Read8(address & 0x3FFF)
	case regionWRAMBoard:
		return b.wramBoard[address&0x3FFFF]
	case regionWRAMChip:
		return b.wramChip[address&0x7FFF]
	case regionIO:
		return b.readIO8(address)
	case regionPalette:
		return b.palette[address&0x3FF]
	case regionVRAM:
		return b.vram[vramMirror(address)]
	case regionOAM:
		return b.oam[address&0x3FF]
	case regionROMWS0, regionROMWS0 + 1:
		return b.cartridge.ReadROM(address - ROMWS0Base)
	case regionROMWS1, regionROMWS1 + 1:
		return b.cartridge.ReadROM(address - ROMWS1Base)
	case regionROMWS2, regionROMWS2 + 1:
		return b.cartridge.ReadROM(address - ROMWS2Base)
	default: // SRAM and its mirror
		return b.cartridge.ReadSRAM(address - SRAMBase)
	}
}

// write8 routes a byte write by region; ROM and BIOS writes are dropped
func (b *Bus) write8(address uint32, value uint8) {
	switch (address >> 24) & 0xF {
	case regionBIOS:
		// read-only
	case regionWRAMBoard:
		b.wramBoard[address&0x3FFFF] = value
	case regionWRAMChip:
		b.wramChip[address&0x7FFF] = value
	case regionIO:
		b.writeIO8(address, value)
	case regionPalette:
		b.palette[address&0x3FF] = value
	case regionVRAM:
		b.vram[vramMirror(address)] = value
	case regionOAM:
		b.oam[address&0x3FF] = value
	case regionROMWS0, regionROMWS0 + 1,
		regionROMWS1, regionROMWS1 + 1,
		regionROMWS2, regionROMWS2 + 1:
		// read-only
	default:
		b.cartridge.WriteSRAM(address-SRAMBase, value)
	}
}

// vramMirror folds the 128K address space onto the 96K of VRAM: the upper
// 32K window repeats
func vramMirror(address uint32) uint32 {
	address &= 0x1FFFF
	if address >= 0x18000 {
		address -= 0x8000
	}
	return address
}

// readIO8 reads one byte of an I/O register
func (b *Bus) readIO8(address uint32) uint8 {
	switch address &^ 1 {
	case regDISPCNT:
		return reg16Byte(b.ppu.DisplayControl(), address)
	case regDISPSTAT:
		return reg16Byte(b.ppu.DisplayStatus(), address)
	case regVCOUNT:
		return reg16Byte(b.ppu.VCount(), address)
	case regKEYINPUT:
		return reg16Byte(b.keypad.Input(), address)
	case regKEYCNT:
		return reg16Byte(b.keypad.Control(), address)
	case regIE:
		return reg16Byte(b.interrupts.Enable(), address)
	case regIF:
		return reg16Byte(b.interrupts.Flags(), address)
	case regWAITCNT:
		return reg16Byte(b.system.WaitControl(), address)
	case regIME:
		return reg16Byte(b.interrupts.MasterEnable(), address)
	case regPOSTFLG:
		if address == regPOSTFLG {
			return b.system.PostFlag()
		}
		return 0
	}
	return 0
}

// writeIO8 writes one byte of an I/O register, preserving the other byte
// of its 16-bit register
func (b *Bus) writeIO8(address uint32, value uint8) {
	switch address &^ 1 {
	case regDISPCNT:
		b.ppu.SetDisplayControl(setReg16Byte(b.ppu.DisplayControl(), address, value))
	case regDISPSTAT:
		b.ppu.SetDisplayStatus(setReg16Byte(b.ppu.DisplayStatus(), address, value))
	case regKEYCNT:
		b.keypad.SetControl(setReg16Byte(b.keypad.Control(), address, value))
	case regIE:
		b.interrupts.SetEnable(setReg16Byte(b.interrupts.Enable(), address, value))
	case regIF:
		// IF is write-one-to-clear, per byte lane
		if address&1 == 0 {
			b.interrupts.AcknowledgeFlags(uint16(value))
		} else {
			b.interrupts.AcknowledgeFlags(uint16(value) << 8)
		}
	case regWAITCNT:
		b.system.SetWaitControl(setReg16Byte(b.system.WaitControl(), address, value))
	case regIME:
		b.interrupts.SetMasterEnable(setReg16Byte(b.interrupts.MasterEnable(), address, value))
	case regPOSTFLG:
		if address == regPOSTFLG {
			b.system.SetPostFlag(value)
		} else {
			b.system.WriteHaltControl(value)
		}
	}
}

// reg16Byte extracts one byte lane of a 16-bit register
func reg16Byte(value uint16, address uint32) uint8 {
	if address&1 != 0 {
		return uint8(value >> 8)
	}
	return uint8(value)
}

// setReg16Byte replaces one byte lane of a 16-bit register
func setReg16Byte(current uint16, address uint32, value uint8) uint16 {
	if address&1 != 0 {
		return current&0x00FF | uint16(value)<<8
	}
	return current&0xFF00 | uint16(value)
}
