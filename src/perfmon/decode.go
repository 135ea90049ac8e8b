package perfmon

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// newDecodingReader converts r to UTF-8. A byte order mark always wins over
// the configured encoding, since relog writes UTF-16 with a BOM and Excel
// round-trips add a UTF-8 one.
func newDecodingReader(r io.Reader, name string) (io.Reader, error) {
	var fallback encoding.Encoding
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		fallback = unicode.UTF8
	case "utf-16", "utf16", "utf-16le":
		fallback = unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
	case "utf-16be":
		fallback = unicode.UTF16(unicode.BigEndian, unicode.UseBOM)
	case "windows-1252", "cp1252", "latin1":
		fallback = charmap.Windows1252
	default:
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}

	return transform.NewReader(r, unicode.BOMOverride(fallback.NewDecoder())), nil
}
