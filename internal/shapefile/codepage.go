package shapefile

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

// Language driver IDs found at byte 29 of a dBASE header.
var ldidEncodings = map[byte]encoding.Encoding{
	0x01: charmap.CodePage437,
	0x02: charmap.CodePage850,
	0x03: charmap.Windows1252,
	0x57: charmap.Windows1252,
	0x64: charmap.CodePage852,
	0x65: charmap.CodePage866,
	0xC8: charmap.Windows1250,
	0xC9: charmap.Windows1251,
	0xCA: charmap.Windows1254,
	0xCB: charmap.Windows1253,
}

// Bare code page numbers as written by ESRI tools into .cpg files.
var cpgNumbers = map[string]encoding.Encoding{
	"437":   charmap.CodePage437,
	"850":   charmap.CodePage850,
	"852":   charmap.CodePage852,
	"866":   charmap.CodePage866,
	"65001": unicode.UTF8,
	"88591": charmap.ISO8859_1,
	"88592": charmap.ISO8859_2,
	"88595": charmap.ISO8859_5,
	"88597": charmap.ISO8859_7,
	"88599": charmap.ISO8859_9,
}

// textDecoder turns raw dBASE bytes into strings. A nil enc means UTF-8 when
// the bytes are valid UTF-8 and Windows-1252 otherwise.
type textDecoder struct {
	enc    encoding.Encoding
	source string
}

// resolveEncoding picks the attribute text encoding: the .cpg sidecar first,
// then the header language driver byte, then per-value detection.
func resolveEncoding(cpg []byte, ldid byte) textDecoder {
	if label := strings.TrimSpace(string(cpg)); label != "" {
		if enc := lookupCPG(label); enc != nil {
			return textDecoder{enc: enc, source: "cpg " + label}
		}
	}
	if enc, ok := ldidEncodings[ldid]; ok {
		return textDecoder{enc: enc, source: "language driver"}
	}
	return textDecoder{source: "detected"}
}

func lookupCPG(label string) encoding.Encoding {
	if enc, ok := cpgNumbers[label]; ok {
		return enc
	}
	if len(label) == 4 && strings.HasPrefix(label, "125") {
		label = "windows-" + label
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil
	}
	return enc
}

func (td textDecoder) decode(b []byte) string {
	enc := td.enc
	if enc == nil {
		if utf8.Valid(b) {
			return string(b)
		}
		enc = charmap.Windows1252
	}
	s, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return strings.ToValidUTF8(string(b), "\uFFFD")
	}
	return string(s)
}
