package main

import (
	"bytes"
	"encoding/binary"
)

// pointShp builds a two-record point .shp file.
func pointShp() []byte {
	var body bytes.Buffer
	for i, p := range [][2]float64{{1, 2}, {3, 4}} {
		binary.Write(&body, binary.BigEndian, int32(i+1))
		binary.Write(&body, binary.BigEndian, int32(10))
		binary.Write(&body, binary.LittleEndian, int32(1))
		binary.Write(&body, binary.LittleEndian, p[0])
		binary.Write(&body, binary.LittleEndian, p[1])
	}

	var s bytes.Buffer
	binary.Write(&s, binary.BigEndian, int32(9994))
	s.Write(make([]byte, 20))
	binary.Write(&s, binary.BigEndian, int32((100+body.Len())/2))
	binary.Write(&s, binary.LittleEndian, int32(1000))
	binary.Write(&s, binary.LittleEndian, int32(1))
	s.Write(make([]byte, 64))
	s.Write(body.Bytes())
	return s.Bytes()
}
