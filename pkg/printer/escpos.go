package printer

import (
	"bytes"
	"fmt"
	"strings"
)

// ESC/POS prefix bytes
const (
	ESC = 0x1B
	GS  = 0x1D
	LF  = 0x0A
)

// Text alignment
const (
	AlignLeft   = 0x00
	AlignCenter = 0x01
	AlignRight  = 0x02
)

// Character size selectors for GS !
const (
	FontNormal       = 0x00
	FontDoubleHeight = 0x11 // what receipt firmware calls "double height"; sets both nibbles
)

// Command is one opcode of the closed ESC/POS vocabulary used by receipts.
type Command int

const (
	CmdInit Command = iota
	CmdAlignLeft
	CmdAlignCenter
	CmdAlignRight
	CmdBoldOn
	CmdBoldOff
	CmdDoubleHeight
	CmdNormal
	CmdCut
)

var commandBytes = map[Command][]byte{
	CmdInit:         {ESC, '@'},
	CmdAlignLeft:    {ESC, 'a', AlignLeft},
	CmdAlignCenter:  {ESC, 'a', AlignCenter},
	CmdAlignRight:   {ESC, 'a', AlignRight},
	CmdBoldOn:       {ESC, 'E', 0x01},
	CmdBoldOff:      {ESC, 'E', 0x00},
	CmdDoubleHeight: {GS, '!', FontDoubleHeight},
	CmdNormal:       {GS, '!', FontNormal},
	CmdCut:          {GS, 'V', 0x41, 0x03},
}

var commandNames = map[Command]string{
	CmdInit:         "INIT",
	CmdAlignLeft:    "LEFT",
	CmdAlignCenter:  "CENTER",
	CmdAlignRight:   "RIGHT",
	CmdBoldOn:       "BOLD_ON",
	CmdBoldOff:      "BOLD_OFF",
	CmdDoubleHeight: "DOUBLE_HEIGHT",
	CmdNormal:       "NORMAL",
	CmdCut:          "CUT",
}

// Bytes returns the wire encoding of the command. The returned slice is a copy.
func (c Command) Bytes() []byte {
	b, ok := commandBytes[c]
	if !ok {
		return nil
	}
	return append([]byte(nil), b...)
}

func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Command(%d)", int(c))
}

// Document builds an ESC/POS byte stream for thermal printers.
type Document struct {
	buf   bytes.Buffer
	width int // print width in characters (32 for 58mm, 48 for 80mm)
}

// NewDocument creates a new ESC/POS document with the given character width.
// Common widths: 32 for 58mm paper, 48 for 80mm paper.
func NewDocument(charWidth int) *Document {
	if charWidth <= 0 {
		charWidth = 32
	}
	d := &Document{width: charWidth}
	d.Init()
	return d
}

// Command appends the given opcodes in order.
func (d *Document) Command(cmds ...Command) *Document {
	for _, c := range cmds {
		d.buf.Write(commandBytes[c])
	}
	return d
}

// Init sends ESC @ (initialize printer).
func (d *Document) Init() *Document {
	return d.Command(CmdInit)
}

// SetAlign sets text alignment: AlignLeft, AlignCenter, AlignRight.
func (d *Document) SetAlign(align int) *Document {
	switch align {
	case AlignCenter:
		return d.Command(CmdAlignCenter)
	case AlignRight:
		return d.Command(CmdAlignRight)
	default:
		return d.Command(CmdAlignLeft)
	}
}

// SetBold enables or disables bold text.
func (d *Document) SetBold(on bool) *Document {
	if on {
		return d.Command(CmdBoldOn)
	}
	return d.Command(CmdBoldOff)
}

// SetDoubleHeight switches between the double-height and normal character size.
func (d *Document) SetDoubleHeight(on bool) *Document {
	if on {
		return d.Command(CmdDoubleHeight)
	}
	return d.Command(CmdNormal)
}

// Text writes a line of text followed by a line feed.
func (d *Document) Text(s string) *Document {
	d.buf.WriteString(s)
	d.buf.WriteByte(LF)
	return d
}

// Separator prints a full-width separator line (e.g. "--------------------------------").
func (d *Document) Separator(char byte) *Document {
	d.buf.WriteString(strings.Repeat(string(char), d.width))
	d.buf.WriteByte(LF)
	return d
}

// Cut sends the full paper cut command (GS V 'A' 3).
func (d *Document) Cut() *Document {
	return d.Command(CmdCut)
}

// Bytes returns the accumulated ESC/POS byte stream.
func (d *Document) Bytes() []byte {
	return d.buf.Bytes()
}
