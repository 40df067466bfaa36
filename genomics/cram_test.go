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
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

const testSAMHeader = "@HD\tVN:1.6\n" +
	"@SQ\tSN:chr1\tLN:248956422\tM5:0123456789abcdef0123456789abcdef\tUR:https://example.org/chr1.fa\n" +
	"@SQ\tSN:chr2\tLN:242193529\n"

// encodeItf8 renders v in the variable width integer encoding used by
// container and block headers.
func encodeItf8(v int64) []byte {
	u := uint32(v)
	switch {
	case u < 0x80:
		return []byte{byte(u)}
	case u < 0x4000:
		return []byte{byte(0x80 | u>>8), byte(u)}
	case u < 0x200000:
		return []byte{byte(0xc0 | u>>16), byte(u >> 8), byte(u)}
	case u < 0x10000000:
		return []byte{byte(0xe0 | u>>24), byte(u >> 16), byte(u >> 8), byte(u)}
	default:
		return []byte{byte(0xf0 | u>>28), byte(u >> 20), byte(u >> 12), byte(u >> 4), byte(u & 0x0f)}
	}
}

// encodeLtf8 renders v in the wide variable width encoding version 3
// containers use for their counters.
func encodeLtf8(v int64) []byte {
	switch {
	case v < 0x80:
		return []byte{byte(v)}
	case v < 0x4000:
		return []byte{byte(0x80 | v>>8), byte(v)}
	default:
		return []byte{byte(0xc0 | v>>16), byte(v >> 8), byte(v)}
	}
}

// buildCram assembles a minimal CRAM file: the file definition and one
// container whose only block holds the given SAM header text.
func buildCram(major byte, compress bool, text string) []byte {
	var data bytes.Buffer
	binary.Write(&data, binary.LittleEndian, int32(len(text)))
	data.WriteString(text)
	raw := data.Bytes()

	payload := raw
	method := byte(cramMethodRaw)
	if compress {
		var zipped bytes.Buffer
		writer := gzip.NewWriter(&zipped)
		writer.Write(raw)
		writer.Close()
		payload = zipped.Bytes()
		method = cramMethodGzip
	}

	var block bytes.Buffer
	block.WriteByte(method)
	block.WriteByte(cramFileHeaderBlock)
	block.Write(encodeItf8(0))                   // content id
	block.Write(encodeItf8(int64(len(payload)))) // compressed size
	block.Write(encodeItf8(int64(len(raw))))     // raw size
	block.Write(payload)

	var out bytes.Buffer
	out.Write(cramMagic)
	out.WriteByte(major)
	out.WriteByte(0)                // minor version
	out.Write(make([]byte, 20))     // file id
	binary.Write(&out, binary.LittleEndian, int32(block.Len()))
	out.Write(encodeItf8(-1))       // reference id, unmapped
	out.Write(encodeItf8(0))        // start
	out.Write(encodeItf8(300))      // span
	out.Write(encodeItf8(0))        // record count
	if major >= 3 {
		out.Write(encodeLtf8(0))     // record counter
		out.Write(encodeLtf8(12345)) // base count
	} else {
		out.Write(encodeItf8(0))
		out.Write(encodeItf8(12345))
	}
	out.Write(encodeItf8(1)) // block count
	out.Write(encodeItf8(2)) // landmark count
	out.Write(encodeItf8(0))
	out.Write(encodeItf8(300))
	if major >= 3 {
		out.Write([]byte{0xde, 0xad, 0xbe, 0xef}) // crc32
	}
	out.Write(block.Bytes())
	return out.Bytes()
}

func TestExtractReferences(t *testing.T) {
	assert := assert.New(t)

	sequences, err := ExtractReferences(bytes.NewReader(buildCram(3, false, testSAMHeader)))
	assert.Nil(err)
	assert.Len(sequences, 2)
	assert.Equal("chr1_012345", sequences[0].ID)
	assert.Equal("chr1", sequences[0].Name)
	assert.Equal("0123456789abcdef0123456789abcdef", sequences[0].SequenceMD5)
	assert.Equal("https://example.org/chr1.fa", sequences[0].SourceURI)

	// without a checksum the name alone identifies the sequence
	assert.Equal("chr2", sequences[1].ID)
	assert.Equal("", sequences[1].SequenceMD5)
	assert.Equal("", sequences[1].SourceURI)
}

func TestExtractReferencesGzippedHeader(t *testing.T) {
	assert := assert.New(t)

	sequences, err := ExtractReferences(bytes.NewReader(buildCram(2, true, testSAMHeader)))
	assert.Nil(err)
	assert.Len(sequences, 2)
	assert.Equal("chr1_012345", sequences[0].ID)
	assert.Equal("chr2", sequences[1].ID)
}

func TestExtractReferencesRejectsGarbage(t *testing.T) {
	assert := assert.New(t)

	var cramErr InvalidCramError
	_, err := ExtractReferences(bytes.NewReader(append([]byte("XRAM"), make([]byte, 22)...)))
	assert.True(errors.As(err, &cramErr))
	assert.Equal("bad magic number", cramErr.Reason)

	_, err = ExtractReferences(bytes.NewReader(buildCram(3, false, testSAMHeader)[:20]))
	assert.True(errors.As(err, &cramErr))
	assert.Equal("truncated file definition", cramErr.Reason)

	unsupported := buildCram(3, false, testSAMHeader)
	unsupported[4] = 9
	_, err = ExtractReferences(bytes.NewReader(unsupported))
	assert.True(errors.As(err, &cramErr))
	assert.Equal("unsupported version 9.0", cramErr.Reason)
}

func TestSequenceID(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("chr1_012345", SequenceID("chr1", "0123456789abcdef0123456789abcdef"))
	assert.Equal("chr1", SequenceID("chr1", ""))
	assert.Equal("chr1", SequenceID("chr1", "abc"))
}
