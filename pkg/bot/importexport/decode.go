package importexport

import (
	"bytes"
	"errors"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var ErrUndecodable = errors.New("file is neither UTF-8 nor Shift-JIS")

// DecodeText returns data as a UTF-8 string. Spreadsheets saved by
// Japanese Excel default to Shift-JIS, so that is tried when the bytes are
// not valid UTF-8.
func DecodeText(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data), nil
	}
	decoded, err := japanese.ShiftJIS.NewDecoder().Bytes(data)
	if err != nil {
		return "", ErrUndecodable
	}
	text := string(decoded)
	if !utf8.ValidString(text) || strings.ContainsRune(text, utf8.RuneError) {
		return "", ErrUndecodable
	}
	return text, nil
}
