package printer

import "strings"

// PlainText strips ESC/POS control sequences from data and returns the
// printable text, one receipt line per line.
//
// Only the opcodes emitted by Document are recognised. Any other byte
// following ESC or GS is dropped together with its prefix.
func PlainText(data []byte) string {
	var sb strings.Builder
	sb.Grow(len(data))

	for i := 0; i < len(data); {
		b := data[i]
		if b != ESC && b != GS {
			sb.WriteByte(b)
			i++
			continue
		}
		if n := commandLen(data[i:]); n > 0 {
			i += n
			continue
		}
		// unknown sequence: drop prefix and selector
		i += 2
	}
	return sb.String()
}

// Commands returns the opcodes found in data, in order.
func Commands(data []byte) []Command {
	var cmds []Command
	for i := 0; i < len(data); {
		if data[i] != ESC && data[i] != GS {
			i++
			continue
		}
		c, n := matchCommand(data[i:])
		if n == 0 {
			i += 2
			continue
		}
		cmds = append(cmds, c)
		i += n
	}
	return cmds
}

func commandLen(b []byte) int {
	_, n := matchCommand(b)
	return n
}

func matchCommand(b []byte) (Command, int) {
	for c := CmdInit; c <= CmdCut; c++ {
		seq := commandBytes[c]
		if len(b) >= len(seq) && string(b[:len(seq)]) == string(seq) {
			return c, len(seq)
		}
	}
	return 0, 0
}
