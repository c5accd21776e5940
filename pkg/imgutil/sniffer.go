package imgutil

import (
	"bytes"
	"errors"
	"io"
	"os"
)

// Kind identifies a supported source image type.
type Kind int

const (
	KindUnknown Kind = iota
	KindSVG
	KindPNG
	KindJPEG
	KindGIF
	KindTIFF
)

func (k Kind) String() string {
	switch k {
	case KindSVG:
		return "svg"
	case KindPNG:
		return "png"
	case KindJPEG:
		return "jpeg"
	case KindGIF:
		return "gif"
	case KindTIFF:
		return "tiff"
	default:
		return "unknown"
	}
}

// Vector reports whether the kind needs rasterization before use.
func (k Kind) Vector() bool {
	return k == KindSVG
}

var (
	pngSig    = []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}
	jpegSig   = []byte{0xff, 0xd8, 0xff}
	gifSig    = []byte("GIF8")
	tiffSigLE = []byte{0x49, 0x49, 0x2a, 0x00}
	tiffSigBE = []byte{0x4d, 0x4d, 0x00, 0x2a}
)

// sniffLen covers every raster signature plus an XML prologue with comments
// ahead of the <svg> root element.
const sniffLen = 512

// DetectHeader inspects the leading bytes of a file for known signatures.
// SVG has no magic number, so it is detected by the <svg or <?xml markers.
func DetectHeader(header []byte) (Kind, error) {
	if len(header) < 8 {
		return KindUnknown, errors.New("header too short")
	}

	if hasPrefix(header, jpegSig) {
		return KindJPEG, nil
	}
	if hasPrefix(header, pngSig) {
		return KindPNG, nil
	}
	if hasPrefix(header, gifSig) {
		return KindGIF, nil
	}
	if hasPrefix(header, tiffSigLE) || hasPrefix(header, tiffSigBE) {
		return KindTIFF, nil
	}
	if looksLikeSVG(header) {
		return KindSVG, nil
	}

	return KindUnknown, nil
}

// SniffFile reads the leading bytes of a file to determine its type.
func SniffFile(path string) (Kind, error) {
	f, err := os.Open(path)
	if err != nil {
		return KindUnknown, err
	}
	defer f.Close()

	return SniffReader(f)
}

// SniffReader reads the leading bytes from r and determines its type.
func SniffReader(r io.Reader) (Kind, error) {
	header := make([]byte, sniffLen)
	n, err := io.ReadFull(r, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return KindUnknown, err
	}

	return DetectHeader(header[:n])
}

func looksLikeSVG(header []byte) bool {
	trimmed := bytes.TrimLeft(header, " \t\r\n")
	trimmed = bytes.TrimPrefix(trimmed, []byte{0xef, 0xbb, 0xbf})
	if bytes.HasPrefix(trimmed, []byte("<svg")) {
		return true
	}
	if !bytes.HasPrefix(trimmed, []byte("<?xml")) && !bytes.HasPrefix(trimmed, []byte("<!--")) {
		return false
	}
	return bytes.Contains(header, []byte("<svg"))
}

func hasPrefix(buf, prefix []byte) bool {
	if len(buf) < len(prefix) {
		return false
	}
	for i := range prefix {
		if buf[i] != prefix[i] {
			return false
		}
	}
	return true
}
