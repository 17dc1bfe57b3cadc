package vs1053

// Commands
const (
	SCI_READ  = 0x03 //!< Serial read address
	SCI_WRITE = 0x02 //!< Serial write address
)

// Registers
const (
	REG_MODE       = 0x00 //!< Mode control
	REG_STATUS     = 0x01 //!< Status of VS1053b
	REG_BASS       = 0x02 //!< Built-in bass/treble control
	REG_CLOCKF     = 0x03 //!< Clock frequency + multiplier
	REG_DECODETIME = 0x04 //!< Decode time in seconds
	REG_AUDATA     = 0x05 //!< Misc. audio data
	REG_WRAM       = 0x06 //!< RAM write/read
	REG_WRAMADDR   = 0x07 //!< Base address for RAM write/read
	REG_HDAT0      = 0x08 //!< Stream header data 0
	REG_HDAT1      = 0x09 //!< Stream header data 1
	REG_AIADDR     = 0x0A //!< Start address of application code
	REG_VOLUME     = 0x0B //!< Volume control
	REG_AICTRL0    = 0x0C //!< Application control register 0
	REG_AICTRL1    = 0x0D //!< Application control register 1
	REG_AICTRL2    = 0x0E //!< Application control register 2
	REG_AICTRL3    = 0x0F //!< Application control register 3
)

// Register Values
const (
	MODE_SM_DIFF     = 0x0001 //!< Differential, 0: normal in-phase audio, 1: left channel inverted
	MODE_SM_LAYER12  = 0x0002 //!< Allow MPEG layers I & II
	MODE_SM_RESET    = 0x0004 //!< Soft reset
	MODE_SM_CANCEL   = 0x0008 //!< Cancel decoding current file
	MODE_SM_EARSPKLO = 0x0010 //!< EarSpeaker low setting
	MODE_SM_TESTS    = 0x0020 //!< Allow SDI tests
	MODE_SM_STREAM   = 0x0040 //!< Stream mode
	MODE_SM_EARSPKHI = 0x0080 //!< EarSpeaker high setting
	MODE_SM_DACT     = 0x0100 //!< DCLK active edge
	MODE_SM_SDIORD   = 0x0200 //!< SDI bit order
	MODE_SM_SDISHARE = 0x0400 //!< Share SPI chip select
	MODE_SM_SDINEW   = 0x0800 //!< VS1002 native SPI modes
	MODE_SM_ADPCM    = 0x1000 //!< PCM/ADPCM recording active
	MODE_SM_PAUSE    = 0x2000 //!< Quick pause of the internal buffer (patch only)
	MODE_SM_LINE1    = 0x4000 //!< MIC/LINE1 selector, 0: MICP, 1: LINE1
	MODE_SM_CLKRANGE = 0x8000 //!< Input clock range, 0: 12..13 MHz, 1: 24..26 MHz

	// mode the chip is expected to report right after a soft reset
	MODE_DEFAULT = MODE_SM_LINE1 | MODE_SM_SDINEW

	// SCI_CLOCKF SC_MULT x3.0
	CLOCKF_MULT_3_0 = 0x6000

	// SS_VER of SCI_STATUS[7:4]
	VER_VS1001 = 0x00
	VER_VS1011 = 0x01
	VER_VS1002 = 0x02
	VER_VS1003 = 0x03
	VER_VS1053 = 0x04
	VER_VS8053 = 0x04
	VER_VS1033 = 0x05
	VER_VS1063 = 0x06
	VER_VS1103 = 0x07

	STATUS_SS_VU_ENABLE = 0x0200 //!< VU meter enable (patch only)
)

// Extra parameters in X memory, accessed through REG_WRAMADDR / REG_WRAM
const (
	PARA_CHIP_ID_0       = 0x1E00
	PARA_CHIP_ID_1       = 0x1E01
	PARA_VERSION         = 0x1E02
	PARA_CONFIG1         = 0x1E03
	PARA_PLAY_SPEED      = 0x1E04
	PARA_BYTE_RATE       = 0x1E05 //!< Average byte rate of the current stream, bytes/s
	PARA_END_FILL_BYTE   = 0x1E06 //!< Byte to pad the stream with when ending a decode
	PARA_MONO_OUTPUT     = 0x1E09 //!< 1: mono output (patch only)
	PARA_POSITION_MSEC_0 = 0x1E27
	PARA_POSITION_MSEC_1 = 0x1E28
	PARA_RESYNC          = 0x1E29
)

// SDI test sequences, only honoured with MODE_SM_TESTS set
var (
	SDI_SINE_START = [8]byte{0x53, 0xEF, 0x6E, 0x00, 0x00, 0x00, 0x00, 0x00}
	SDI_SINE_STOP  = [8]byte{0x45, 0x78, 0x69, 0x74, 0x00, 0x00, 0x00, 0x00}
	SDI_MEM_TEST   = [8]byte{0x4D, 0xEA, 0x6D, 0x54, 0x00, 0x00, 0x00, 0x00}
)

// MEM_TEST_PASS is the HDAT0 value of a passing memory test on a VS1053b.
const MEM_TEST_PASS = 0x83FF
