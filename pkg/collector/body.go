package collector

import (
	"encoding/base64"
	"io"
	"unicode/utf8"
)

// ReadBody reads up to maxBytes from r. The second return value reports
// whether the body was larger than maxBytes and therefore truncated.
func ReadBody(r io.Reader, maxBytes int64) ([]byte, bool, error) {
	if maxBytes < 0 {
		maxBytes = 0
	}

	// Read one byte past the limit so truncation is detectable without
	// draining an arbitrarily large body.
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, false, err
	}
	if int64(len(data)) > maxBytes {
		return data[:maxBytes], true, nil
	}
	return data, false, nil
}

// DecodeBody turns raw body bytes into exactly one of a UTF-8 text form
// or a base64 form. Valid UTF-8 input returns (text, ""); anything else
// returns ("", base64). Empty input returns ("", "").
func DecodeBody(body []byte) (string, string) {
	if len(body) == 0 {
		return "", ""
	}
	if utf8.Valid(body) {
		return string(body), ""
	}
	return "", base64.StdEncoding.EncodeToString(body)
}
