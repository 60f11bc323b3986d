package shapefile

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/simonhull/geolayer/internal/binary"
	"github.com/simonhull/geolayer/internal/types"
)

const (
	dbfHeaderSize     = 32
	dbfFieldSize      = 32
	dbfFieldTerminate = 0x0D
)

// field is one dBASE column descriptor.
type field struct {
	name     string
	kind     byte
	length   int
	decimals int
	offset   int
}

// table is a parsed dBASE attribute file.
type table struct {
	text      textDecoder
	fields    []field
	data      []byte
	path      string
	records   int
	headerLen int
	recordLen int
}

// openTable reads the header and field descriptors of a .dbf file.
func openTable(data []byte, path string, cpg []byte) (*table, error) {
	sr := binary.NewSafeReader(bytes.NewReader(data), int64(len(data)), path)
	if sr.Size() < dbfHeaderSize {
		return nil, &types.CorruptedFileError{Path: path, Offset: 0,
			Reason: fmt.Sprintf("file is %d bytes, shorter than the %d-byte header", sr.Size(), dbfHeaderSize)}
	}

	cr := binary.NewChainReader(binary.NewReader(sr, 4))
	records := binary.ReadChained[uint32](cr, "record count", binary.LittleEndian)
	headerLen := binary.ReadChained[uint16](cr, "header length", binary.LittleEndian)
	recordLen := binary.ReadChained[uint16](cr, "record length", binary.LittleEndian)
	cr.Seek(29)
	ldid := binary.ReadChained[uint8](cr, "language driver", binary.LittleEndian)
	if err := cr.Error(); err != nil {
		return nil, err
	}

	t := &table{
		text:      resolveEncoding(cpg, ldid),
		data:      data,
		path:      path,
		records:   int(records),
		headerLen: int(headerLen),
		recordLen: int(recordLen),
	}
	if t.headerLen < dbfHeaderSize+1 || t.headerLen > len(data) {
		return nil, &types.CorruptedFileError{Path: path, Offset: 8,
			Reason: fmt.Sprintf("header length %d outside file of %d bytes", t.headerLen, len(data))}
	}
	if err := t.readFields(sr); err != nil {
		return nil, err
	}

	avail := (len(data) - t.headerLen) / max(t.recordLen, 1)
	if t.records > avail {
		return nil, &types.CorruptedFileError{Path: path, Offset: int64(t.headerLen),
			Reason: fmt.Sprintf("header declares %d records, file holds %d", t.records, avail)}
	}
	return t, nil
}

func (t *table) readFields(sr *binary.SafeReader) error {
	seen := make(map[string]int)
	offset := 1 // deletion flag
	for off := int64(dbfHeaderSize); off+dbfFieldSize <= int64(t.headerLen); off += dbfFieldSize {
		desc, err := sr.Bytes(off, dbfFieldSize, "field descriptor")
		if err != nil {
			return err
		}
		if desc[0] == dbfFieldTerminate {
			break
		}

		raw := desc[:11]
		if i := bytes.IndexByte(raw, 0); i >= 0 {
			raw = raw[:i]
		}
		name := strings.TrimSpace(t.text.decode(raw))
		if name == "" {
			name = "FIELD"
		}
		name = uniqueName(seen, name)

		f := field{
			name:     name,
			kind:     desc[11],
			length:   int(desc[16]),
			decimals: int(desc[17]),
			offset:   offset,
		}
		offset += f.length
		t.fields = append(t.fields, f)
	}

	if t.recordLen == 0 {
		t.recordLen = offset
	}
	if offset > t.recordLen {
		return &types.CorruptedFileError{Path: t.path, Offset: dbfHeaderSize,
			Reason: fmt.Sprintf("fields span %d bytes, record length is %d", offset, t.recordLen)}
	}
	return nil
}

// uniqueName returns name, or name with a numeric suffix when it was seen before.
func uniqueName(seen map[string]int, name string) string {
	seen[name]++
	if seen[name] == 1 {
		return name
	}
	for {
		candidate := name + "_" + strconv.Itoa(seen[name])
		if _, taken := seen[candidate]; !taken {
			seen[candidate] = 1
			return candidate
		}
		seen[name]++
	}
}

// row decodes record i into a property map.
func (t *table) row(i int) map[string]any {
	start := t.headerLen + i*t.recordLen
	rec := t.data[start : start+t.recordLen]

	props := make(map[string]any, len(t.fields))
	for _, f := range t.fields {
		props[f.name] = t.value(f, rec[f.offset:f.offset+f.length])
	}
	return props
}

func (t *table) value(f field, raw []byte) any {
	switch f.kind {
	case 'C':
		return strings.TrimSpace(t.text.decode(bytes.TrimRight(raw, "\x00")))
	case 'N', 'F':
		return number(raw, f.decimals)
	case 'L':
		return logical(raw)
	case 'D':
		return date(raw)
	default:
		return strings.TrimSpace(t.text.decode(bytes.TrimRight(raw, "\x00")))
	}
}

func number(raw []byte, decimals int) any {
	s := strings.TrimSpace(string(bytes.Trim(raw, "\x00")))
	if s == "" || strings.Trim(s, "*") == "" {
		return nil
	}
	if decimals == 0 {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n
		}
	}
	v, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil {
		return nil
	}
	return v
}

func logical(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	switch raw[0] {
	case 'T', 't', 'Y', 'y':
		return true
	case 'F', 'f', 'N', 'n':
		return false
	default:
		return nil
	}
}

func date(raw []byte) any {
	s := strings.TrimSpace(string(raw))
	if s == "" || strings.Trim(s, "0") == "" {
		return nil
	}
	if len(s) != 8 {
		return s
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return s
		}
	}
	return s[:4] + "-" + s[4:6] + "-" + s[6:]
}
