package shapefile

import (
	"bytes"
	"encoding/binary"
	"strings"
)

// shpFile synthesises a .shp main file.
type shpFile struct {
	records   [][]byte
	shapeType int32
	bbox      [4]float64
}

func (s shpFile) bytes() []byte {
	var body bytes.Buffer
	for i, content := range s.records {
		binary.Write(&body, binary.BigEndian, int32(i+1))
		binary.Write(&body, binary.BigEndian, int32(len(content)/2))
		body.Write(content)
	}

	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, int32(9994))
	buf.Write(make([]byte, 20))
	binary.Write(&buf, binary.BigEndian, int32((100+body.Len())/2))
	binary.Write(&buf, binary.LittleEndian, int32(1000))
	binary.Write(&buf, binary.LittleEndian, s.shapeType)
	for _, v := range s.bbox {
		binary.Write(&buf, binary.LittleEndian, v)
	}
	buf.Write(make([]byte, 32)) // z and m ranges
	buf.Write(body.Bytes())
	return buf.Bytes()
}

func le(buf *bytes.Buffer, vs ...any) {
	for _, v := range vs {
		binary.Write(buf, binary.LittleEndian, v)
	}
}

func nullShape() []byte {
	var b bytes.Buffer
	le(&b, int32(shapeNull))
	return b.Bytes()
}

func pointShape(x, y float64) []byte {
	var b bytes.Buffer
	le(&b, int32(shapePoint), x, y)
	return b.Bytes()
}

func pointZShape(x, y, z float64) []byte {
	var b bytes.Buffer
	le(&b, int32(shapePointZ), x, y, z, 0.0)
	return b.Bytes()
}

func multiPointZShape(pts [][3]float64) []byte {
	var b bytes.Buffer
	le(&b, int32(shapeMultiPointZ), [4]float64{}, int32(len(pts)))
	for _, p := range pts {
		le(&b, p[0], p[1])
	}
	le(&b, [2]float64{})
	for _, p := range pts {
		le(&b, p[2])
	}
	return b.Bytes()
}

// partsShape builds a PolyLine or Polygon record from rings of XY pairs.
func partsShape(shapeType int32, parts ...[][2]float64) []byte {
	var b bytes.Buffer
	total := 0
	for _, p := range parts {
		total += len(p)
	}
	le(&b, shapeType, [4]float64{}, int32(len(parts)), int32(total))
	start := 0
	for _, p := range parts {
		le(&b, int32(start))
		start += len(p)
	}
	for _, p := range parts {
		for _, xy := range p {
			le(&b, xy[0], xy[1])
		}
	}
	return b.Bytes()
}

// dbfField describes one synthetic column.
type dbfField struct {
	name     string
	kind     byte
	length   int
	decimals int
}

// dbfFile synthesises a dBASE III table. Row values are raw field text.
type dbfFile struct {
	fields []dbfField
	rows   [][]string
	ldid   byte
}

func (d dbfFile) bytes() []byte {
	recordLen := 1
	for _, f := range d.fields {
		recordLen += f.length
	}
	headerLen := 32 + 32*len(d.fields) + 1

	var buf bytes.Buffer
	buf.Write([]byte{0x03, 124, 1, 1})
	le(&buf, uint32(len(d.rows)), uint16(headerLen), uint16(recordLen))
	reserved := make([]byte, 20)
	reserved[17] = d.ldid // byte 29 of the header
	buf.Write(reserved)

	for _, f := range d.fields {
		desc := make([]byte, 32)
		copy(desc, f.name)
		desc[11] = f.kind
		desc[16] = byte(f.length)
		desc[17] = byte(f.decimals)
		buf.Write(desc)
	}
	buf.WriteByte(0x0D)

	for _, row := range d.rows {
		buf.WriteByte(' ')
		for i, f := range d.fields {
			v := row[i]
			if len(v) > f.length {
				v = v[:f.length]
			}
			pad := strings.Repeat(" ", f.length-len(v))
			if f.kind == 'N' || f.kind == 'F' {
				buf.WriteString(pad + v)
			} else {
				buf.WriteString(v + pad)
			}
		}
	}
	buf.WriteByte(0x1A)
	return buf.Bytes()
}
