package errors

import (
	"bufio"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

type Encoding int

const (
	EncodingUTF8 Encoding = iota
	EncodingUTF16LE
	EncodingUTF16BE
	EncodingCP1252
	EncodingLatin1
)

func (e Encoding) String() string {
	switch e {
	case EncodingUTF16LE:
		return "UTF-16LE"
	case EncodingUTF16BE:
		return "UTF-16BE"
	case EncodingCP1252:
		return "Windows-1252"
	case EncodingLatin1:
		return "Latin-1"
	default:
		return "UTF-8"
	}
}

// sniffLen is how much of a task file is inspected before picking a decoder.
const sniffLen = 1024

// DetectEncoding guesses the encoding of a task file from its leading bytes.
func DetectEncoding(data []byte) Encoding {
	if len(data) >= 2 {
		switch {
		case data[0] == 0xFF && data[1] == 0xFE:
			return EncodingUTF16LE
		case data[0] == 0xFE && data[1] == 0xFF:
			return EncodingUTF16BE
		}
	}
	if utf8.Valid(data) {
		return EncodingUTF8
	}
	for _, b := range data {
		// 0x80-0x9F are printable in CP1252 but control codes in Latin-1
		if b >= 0x80 && b <= 0x9F {
			return EncodingCP1252
		}
	}
	return EncodingLatin1
}

// trimPartialRune drops a multi-byte rune cut off by the sniff window.
func trimPartialRune(data []byte) []byte {
	for i := 1; i < utf8.UTFMax && i <= len(data); i++ {
		if utf8.RuneStart(data[len(data)-i]) {
			if !utf8.FullRune(data[len(data)-i:]) {
				return data[:len(data)-i]
			}
			break
		}
	}
	return data
}

func decoderFor(enc Encoding) encoding.Encoding {
	switch enc {
	case EncodingUTF16LE:
		return unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM)
	case EncodingUTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM)
	case EncodingCP1252:
		return charmap.Windows1252
	case EncodingLatin1:
		return charmap.ISO8859_1
	default:
		return unicode.UTF8BOM
	}
}

// TranscodeToUTF8 wraps r so that it yields UTF-8 regardless of the source
// encoding. A UTF-8 byte order mark is stripped.
func TranscodeToUTF8(r io.Reader) (io.Reader, Encoding, error) {
	buf := bufio.NewReaderSize(r, sniffLen)
	peek, err := buf.Peek(sniffLen)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, EncodingUTF8, err
	}

	if len(peek) == sniffLen {
		peek = trimPartialRune(peek)
	}
	enc := DetectEncoding(peek)
	return transform.NewReader(buf, decoderFor(enc).NewDecoder()), enc, nil
}
