package analyzer

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// DefaultMIMEType is used when the upload carries no usable content type.
const DefaultMIMEType = "image/jpeg"

// Image is one uploaded photo, read fully into memory.
type Image struct {
	Data     []byte
	MIMEType string
	Size     int64
	Filename string
}

// NewImage builds an Image from raw upload bytes and the declared part
// content type. Size always reflects the bytes received.
func NewImage(data []byte, declaredType, filename string) Image {
	return Image{
		Data:     data,
		MIMEType: ResolveMIMEType(declaredType, data),
		Size:     int64(len(data)),
		Filename: filename,
	}
}

// ResolveMIMEType keeps a declared type when one was sent. A missing or
// generic declaration is replaced by the sniffed image type, or JPEG when
// the bytes are not a recognizable image.
func ResolveMIMEType(declared string, data []byte) string {
	declared = strings.TrimSpace(declared)
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}

	if len(data) > 0 {
		detected := mimetype.Detect(data)
		if strings.HasPrefix(detected.String(), "image/") {
			return detected.String()
		}
	}

	return DefaultMIMEType
}
