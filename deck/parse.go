package deck

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
	"golang.org/x/text/transform"
	yaml "gopkg.in/yaml.v3"
)

type srcEncoding int

const (
	encUnknown srcEncoding = iota
	encUTF8
	encUTF16BigEndian
	encUTF16LittleEndian
	encUTF32BigEndian
	encUTF32LittleEndian
)

// detectEncoding sniffs BOM at the beginning of the input. Decks are normally
// UTF-8 but we accept files saved by tools which insist on wide encodings.
func detectEncoding(head []byte) srcEncoding {
	switch {
	case len(head) >= 4 && bytes.Equal(head[:4], []byte{0x00, 0x00, 0xFE, 0xFF}):
		return encUTF32BigEndian
	case len(head) >= 4 && bytes.Equal(head[:4], []byte{0xFF, 0xFE, 0x00, 0x00}):
		return encUTF32LittleEndian
	case len(head) >= 3 && bytes.Equal(head[:3], []byte{0xEF, 0xBB, 0xBF}):
		return encUTF8
	case len(head) >= 2 && bytes.Equal(head[:2], []byte{0xFE, 0xFF}):
		return encUTF16BigEndian
	case len(head) >= 2 && bytes.Equal(head[:2], []byte{0xFF, 0xFE}):
		return encUTF16LittleEndian
	default:
		return encUnknown
	}
}

// selectReader wraps source reader with decoding transformer when input is not
// UTF-8.
func selectReader(r io.Reader, enc srcEncoding) io.Reader {
	switch enc {
	case encUTF16BigEndian:
		return transform.NewReader(r, unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder())
	case encUTF16LittleEndian:
		return transform.NewReader(r, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder())
	case encUTF32BigEndian:
		return transform.NewReader(r, utf32.UTF32(utf32.BigEndian, utf32.UseBOM).NewDecoder())
	case encUTF32LittleEndian:
		return transform.NewReader(r, utf32.UTF32(utf32.LittleEndian, utf32.UseBOM).NewDecoder())
	case encUTF8:
		// strip BOM, yaml decoder does not want to see it
		return transform.NewReader(r, unicode.UTF8BOM.NewDecoder())
	default:
		return r
	}
}

// Parse reads one YAML deck. Decoding is strict - unknown fields are
// rejected, so typos in layout payloads surface immediately instead of being
// silently dropped. A document which is not a mapping, or whose slides field
// is not a sequence, fails here (the structural failure of the whole file).
func Parse(r io.Reader, srcName string) (*Presentation, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(4)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("unable to read deck source (%s): %w", srcName, err)
	}

	dec := yaml.NewDecoder(selectReader(br, detectEncoding(head)))
	dec.KnownFields(true)

	var p Presentation
	if err := dec.Decode(&p); err != nil {
		return nil, &Violation{
			Kind:    ViolationStructural,
			Message: fmt.Sprintf("not a valid deck document: %v", err),
		}
	}
	return &p, nil
}
