package analyzer

import (
	"encoding/base64"
	"strings"
)

// encodeChunkSize must stay a multiple of 3 so no chunk emits padding.
const encodeChunkSize = 3 * 32 * 1024

// EncodeBase64 encodes data with standard padded base64 in bounded chunks.
// The output is identical to a single-pass encoding.
func EncodeBase64(data []byte) string {
	var sb strings.Builder
	sb.Grow(base64.StdEncoding.EncodedLen(len(data)))

	buf := make([]byte, base64.StdEncoding.EncodedLen(min(len(data), encodeChunkSize)))
	for start := 0; start < len(data); start += encodeChunkSize {
		end := min(start+encodeChunkSize, len(data))
		n := base64.StdEncoding.EncodedLen(end - start)
		base64.StdEncoding.Encode(buf[:n], data[start:end])
		sb.Write(buf[:n])
	}

	return sb.String()
}
