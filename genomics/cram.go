// Copyright (c) 2024 The MODOS Project and its Contributors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies
// of the Software, and to permit persons to whom the Software is furnished to do
// so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package genomics

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"

	"github.com/modos-dev/modos/model"
)

// cramMagic opens every CRAM file definition.
var cramMagic = []byte("CRAM")

// block compression methods a SAM header block may use
const (
	cramMethodRaw  = 0
	cramMethodGzip = 1
)

// cramFileHeaderBlock is the content type of the SAM header block.
const cramFileHeaderBlock = 0

// ExtractReferences reads the reference sequences declared in a CRAM
// file's embedded SAM header. Only the file definition and the first
// container are consumed, so the reader can stream from remote storage.
func ExtractReferences(r io.Reader) ([]*model.ReferenceSequence, error) {
	text, err := readCramSAMHeader(r)
	if err != nil {
		return nil, err
	}
	header, err := sam.NewHeader(text, nil)
	if err != nil {
		return nil, InvalidCramError{Reason: err.Error()}
	}
	return sequencesFromHeader(header), nil
}

// References extracts the reference sequences declared in the header of an
// alignment file. CRAM headers are unwrapped from their container framing
// first; BAM and SAM headers parse directly.
func References(r io.Reader, format FileFormat) ([]*model.ReferenceSequence, error) {
	switch format {
	case CRAM:
		return ExtractReferences(r)
	case BAM:
		reader, err := bam.NewReader(r, 1)
		if err != nil {
			return nil, err
		}
		defer reader.Close()
		return sequencesFromHeader(reader.Header()), nil
	case SAM:
		reader, err := sam.NewReader(r)
		if err != nil {
			return nil, err
		}
		return sequencesFromHeader(reader.Header()), nil
	}
	return nil, UnsupportedFormatError{Path: string(format)}
}

func sequencesFromHeader(header *sam.Header) []*model.ReferenceSequence {
	var sequences []*model.ReferenceSequence
	for _, ref := range header.Refs() {
		sequence := &model.ReferenceSequence{
			SequenceMD5: ref.MD5(),
			SourceURI:   ref.URI(),
		}
		sequence.Name = ref.Name()
		sequence.ID = SequenceID(ref.Name(), ref.MD5())
		sequences = append(sequences, sequence)
	}
	return sequences
}

// SequenceID builds the identifier of a discovered reference sequence
// from its name and MD5 checksum.
func SequenceID(name, md5 string) string {
	if len(md5) >= 6 {
		return fmt.Sprintf("%s_%s", name, md5[:6])
	}
	return name
}

// readCramSAMHeader extracts the SAM header text stored in the first
// block of a CRAM file's first container.
func readCramSAMHeader(r io.Reader) ([]byte, error) {
	buf := bufio.NewReader(r)

	// file definition: magic, version, 20-byte file id
	definition := make([]byte, 26)
	if _, err := io.ReadFull(buf, definition); err != nil {
		return nil, InvalidCramError{Reason: "truncated file definition"}
	}
	if !bytes.Equal(definition[:4], cramMagic) {
		return nil, InvalidCramError{Reason: "bad magic number"}
	}
	major := int(definition[4])
	if major < 2 || major > 3 {
		return nil, InvalidCramError{
			Reason: fmt.Sprintf("unsupported version %d.%d", major, definition[5]),
		}
	}

	if err := skipContainerHeader(buf, major); err != nil {
		return nil, err
	}

	// the SAM header lives in the first block of the first container
	method, contentType, size, err := readBlockHeader(buf)
	if err != nil {
		return nil, err
	}
	if contentType != cramFileHeaderBlock {
		return nil, InvalidCramError{Reason: "first block is not a file header block"}
	}
	if size < 0 || size > 1<<28 {
		return nil, InvalidCramError{Reason: "header block size out of bounds"}
	}
	data := make([]byte, size)
	if _, err := io.ReadFull(buf, data); err != nil {
		return nil, InvalidCramError{Reason: "truncated header block"}
	}
	switch method {
	case cramMethodRaw:
	case cramMethodGzip:
		unzipped, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, InvalidCramError{Reason: err.Error()}
		}
		data, err = io.ReadAll(unzipped)
		if err != nil {
			return nil, InvalidCramError{Reason: err.Error()}
		}
	default:
		return nil, InvalidCramError{
			Reason: fmt.Sprintf("unsupported header compression method %d", method),
		}
	}

	// the block data is a 4-byte length followed by the SAM text
	if len(data) < 4 {
		return nil, InvalidCramError{Reason: "truncated header block"}
	}
	length := int(binary.LittleEndian.Uint32(data[:4]))
	if length < 0 || length > len(data)-4 {
		return nil, InvalidCramError{Reason: "header text length out of bounds"}
	}
	return data[4 : 4+length], nil
}

// skipContainerHeader consumes the first container's header, whose field
// widths depend on the major version.
func skipContainerHeader(buf *bufio.Reader, major int) error {
	var length int32
	if err := binary.Read(buf, binary.LittleEndian, &length); err != nil {
		return InvalidCramError{Reason: "truncated container header"}
	}
	// reference id, start, span, record count
	for i := 0; i < 4; i++ {
		if _, err := readItf8(buf); err != nil {
			return err
		}
	}
	// record counter and base count widened to ltf8 in version 3
	for i := 0; i < 2; i++ {
		var err error
		if major >= 3 {
			_, err = readLtf8(buf)
		} else {
			_, err = readItf8(buf)
		}
		if err != nil {
			return err
		}
	}
	if _, err := readItf8(buf); err != nil { // block count
		return err
	}
	landmarks, err := readItf8(buf)
	if err != nil {
		return err
	}
	for i := int64(0); i < landmarks; i++ {
		if _, err := readItf8(buf); err != nil {
			return err
		}
	}
	if major >= 3 {
		if _, err := buf.Discard(4); err != nil { // crc32
			return InvalidCramError{Reason: "truncated container header"}
		}
	}
	return nil
}

// readBlockHeader reads a block's method, content type, and compressed
// size, consuming its content id and raw size along the way.
func readBlockHeader(buf *bufio.Reader) (method, contentType byte, size int64, err error) {
	method, err = buf.ReadByte()
	if err != nil {
		return 0, 0, 0, InvalidCramError{Reason: "truncated block header"}
	}
	contentType, err = buf.ReadByte()
	if err != nil {
		return 0, 0, 0, InvalidCramError{Reason: "truncated block header"}
	}
	if _, err = readItf8(buf); err != nil { // content id
		return 0, 0, 0, err
	}
	size, err = readItf8(buf)
	if err != nil {
		return 0, 0, 0, err
	}
	if _, err = readItf8(buf); err != nil { // raw size
		return 0, 0, 0, err
	}
	return method, contentType, size, nil
}

// readItf8 decodes one ITF-8 integer: the count of leading ones in the
// first byte (up to 4) gives the number of following bytes.
func readItf8(buf *bufio.Reader) (int64, error) {
	first, err := buf.ReadByte()
	if err != nil {
		return 0, InvalidCramError{Reason: "truncated integer"}
	}
	var extra int
	switch {
	case first&0x80 == 0:
		return int64(first), nil
	case first&0x40 == 0:
		extra = 1
		first &= 0x3f
	case first&0x20 == 0:
		extra = 2
		first &= 0x1f
	case first&0x10 == 0:
		extra = 3
		first &= 0x0f
	default:
		extra = 4
		first &= 0x0f
	}
	value := int64(first)
	for i := 0; i < extra; i++ {
		b, err := buf.ReadByte()
		if err != nil {
			return 0, InvalidCramError{Reason: "truncated integer"}
		}
		if extra == 4 && i == 3 {
			// the fifth byte contributes its low nibble only
			value = value<<4 | int64(b&0x0f)
		} else {
			value = value<<8 | int64(b)
		}
	}
	return int64(int32(value)), nil
}

// readLtf8 decodes one LTF-8 integer: the count of leading ones in the
// first byte (up to 8) gives the number of following bytes.
func readLtf8(buf *bufio.Reader) (int64, error) {
	first, err := buf.ReadByte()
	if err != nil {
		return 0, InvalidCramError{Reason: "truncated integer"}
	}
	extra := 0
	for mask := byte(0x80); mask > 0 && first&mask != 0; mask >>= 1 {
		extra++
	}
	value := int64(first)
	if extra > 0 && extra < 8 {
		value = int64(first & (0xff >> (extra + 1)))
	} else if extra >= 8 {
		value = 0
	}
	for i := 0; i < extra; i++ {
		b, err := buf.ReadByte()
		if err != nil {
			return 0, InvalidCramError{Reason: "truncated integer"}
		}
		value = value<<8 | int64(b)
	}
	return value, nil
}
