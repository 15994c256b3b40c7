package services

import (
	"bytes"
	"encoding/binary"
	"sort"
)

// ifdEntry is one 12-byte TIFF directory entry together with its raw
// little-endian value bytes. Values of four bytes or fewer are stored inline
// in the entry's value slot; longer values are relocated to the directory's
// data area during linearization.
type ifdEntry struct {
	tag   uint16
	typ   fieldType
	count uint32
	value []byte
}

// ifdBuilder accumulates directory entries abstractly. No offsets exist until
// buildTIFF linearizes the whole stream in one pass, so entry order and
// optional-field combinations cannot corrupt the layout.
type ifdBuilder struct {
	entries []ifdEntry
}

func (b *ifdBuilder) add(tag uint16, typ fieldType, count uint32, value []byte) {
	b.entries = append(b.entries, ifdEntry{tag: tag, typ: typ, count: count, value: value})
}

func (b *ifdBuilder) addBytes(tag uint16, v []byte) {
	b.add(tag, typeByte, uint32(len(v)), v)
}

// addASCII stores s with a terminating NUL, per the TIFF ASCII type.
func (b *ifdBuilder) addASCII(tag uint16, s string) {
	v := append([]byte(s), 0)
	b.add(tag, typeASCII, uint32(len(v)), v)
}

func (b *ifdBuilder) addShort(tag uint16, v uint16) {
	buf := make([]byte, 2)
	binary.LittleEndian.PutUint16(buf, v)
	b.add(tag, typeShort, 1, buf)
}

func (b *ifdBuilder) addLong(tag uint16, v uint32) {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, v)
	b.add(tag, typeLong, 1, buf)
}

// setLong rewrites the value of a previously added LONG entry. Used for the
// GPS IFD pointer, whose target offset is only known once both directories
// have been sized.
func (b *ifdBuilder) setLong(tag uint16, v uint32) {
	for i := range b.entries {
		if b.entries[i].tag == tag && b.entries[i].typ == typeLong {
			binary.LittleEndian.PutUint32(b.entries[i].value, v)
			return
		}
	}
}

func (b *ifdBuilder) addRationals(tag uint16, rs ...rational) {
	buf := make([]byte, 0, len(rs)*8)
	var tmp [8]byte
	for _, r := range rs {
		binary.LittleEndian.PutUint32(tmp[:4], r.num)
		binary.LittleEndian.PutUint32(tmp[4:], r.den)
		buf = append(buf, tmp[:]...)
	}
	b.add(tag, typeRational, uint32(len(rs)), buf)
}

func (b *ifdBuilder) addUndefined(tag uint16, v []byte) {
	b.add(tag, typeUndefined, uint32(len(v)), v)
}

// sortEntries orders entries by ascending tag number. EXIF readers may reject
// or silently drop directories whose entries are out of order.
func (b *ifdBuilder) sortEntries() {
	sort.Slice(b.entries, func(i, j int) bool {
		return b.entries[i].tag < b.entries[j].tag
	})
}

// tableSize is the byte size of the directory table itself: entry count,
// 12 bytes per entry, and the next-IFD pointer.
func (b *ifdBuilder) tableSize() int {
	return 2 + 12*len(b.entries) + 4
}

// dataSize is the byte size of the out-of-line data area, with each value
// padded to even length so every offset stays word-aligned.
func (b *ifdBuilder) dataSize() int {
	total := 0
	for _, e := range b.entries {
		if len(e.value) > 4 {
			total += paddedLen(len(e.value))
		}
	}
	return total
}

func paddedLen(n int) int {
	if n%2 == 1 {
		return n + 1
	}
	return n
}

// writeTo serializes the directory table immediately followed by its data
// area. dataStart is the absolute offset (relative to the TIFF header) at
// which the data area begins. Data values land in the file in the same order
// their offsets are assigned: ascending tag order.
func (b *ifdBuilder) writeTo(buf *bytes.Buffer, dataStart int) {
	b.sortEntries()

	var tmp [4]byte
	binary.LittleEndian.PutUint16(tmp[:2], uint16(len(b.entries)))
	buf.Write(tmp[:2])

	var data bytes.Buffer
	offset := dataStart
	for _, e := range b.entries {
		binary.LittleEndian.PutUint16(tmp[:2], e.tag)
		buf.Write(tmp[:2])
		binary.LittleEndian.PutUint16(tmp[:2], uint16(e.typ))
		buf.Write(tmp[:2])
		binary.LittleEndian.PutUint32(tmp[:4], e.count)
		buf.Write(tmp[:4])

		if len(e.value) <= 4 {
			var slot [4]byte
			copy(slot[:], e.value)
			buf.Write(slot[:])
			continue
		}

		binary.LittleEndian.PutUint32(tmp[:4], uint32(offset))
		buf.Write(tmp[:4])
		data.Write(e.value)
		if len(e.value)%2 == 1 {
			data.WriteByte(0)
		}
		offset += paddedLen(len(e.value))
	}

	// next-IFD pointer: no chaining
	buf.Write([]byte{0, 0, 0, 0})
	buf.Write(data.Bytes())
}

// buildTIFF linearizes IFD0 and the GPS IFD into one self-contained
// little-endian TIFF stream:
//
//	header | IFD0 table | IFD0 data | GPS table | GPS data
//
// IFD0 must already contain a GPS pointer entry (tagGPSInfo); its value is
// resolved here once both directory sizes are known.
func buildTIFF(ifd0, gps *ifdBuilder) []byte {
	gpsOffset := tiffHeaderLen + ifd0.tableSize() + ifd0.dataSize()
	ifd0.setLong(tagGPSInfo, uint32(gpsOffset))

	buf := bytes.NewBuffer(make([]byte, 0, gpsOffset+gps.tableSize()+gps.dataSize()))
	buf.WriteString("II")
	var tmp [4]byte
	binary.LittleEndian.PutUint16(tmp[:2], tiffMagic)
	buf.Write(tmp[:2])
	binary.LittleEndian.PutUint32(tmp[:4], tiffHeaderLen)
	buf.Write(tmp[:4])

	ifd0.writeTo(buf, tiffHeaderLen+ifd0.tableSize())
	gps.writeTo(buf, gpsOffset+gps.tableSize())
	return buf.Bytes()
}
