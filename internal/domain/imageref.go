package domain

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// ImageKind enumerates ImageRef variants.
type ImageKind string

const (
	ImageKindRawBinary  ImageKind = "raw_binary"
	ImageKindDataURI    ImageKind = "data_uri"
	ImageKindRemoteURL  ImageKind = "remote_url"
	ImageKindServerPath ImageKind = "server_path"
)

// DefaultImageMIME is assumed when a payload carries no media type.
const DefaultImageMIME = "image/png"

// ImageRef is one of RawBinary, DataURI, RemoteURL or ServerPath.
type ImageRef interface {
	Kind() ImageKind
	imageRef()
}

// RawBinary is an in-memory image payload.
type RawBinary struct {
	Data     []byte
	MIMEType string
}

// DataURI is an inline `data:<mime>;base64,<payload>` string.
type DataURI string

// RemoteURL is an absolute http(s) URL.
type RemoteURL string

// ServerPath is relative to the backend asset root, e.g. "originals/abc.jpg".
type ServerPath string

func (RawBinary) Kind() ImageKind  { return ImageKindRawBinary }
func (DataURI) Kind() ImageKind    { return ImageKindDataURI }
func (RemoteURL) Kind() ImageKind  { return ImageKindRemoteURL }
func (ServerPath) Kind() ImageKind { return ImageKindServerPath }

func (RawBinary) imageRef()  {}
func (DataURI) imageRef()    {}
func (RemoteURL) imageRef()  {}
func (ServerPath) imageRef() {}

// Empty reports whether the payload carries no bytes.
func (b RawBinary) Empty() bool { return len(b.Data) == 0 }

// MIME returns the media type, defaulting to DefaultImageMIME.
func (b RawBinary) MIME() string {
	if m := strings.TrimSpace(b.MIMEType); m != "" {
		return m
	}
	return DefaultImageMIME
}

// Extension returns a file extension (without dot) matching the media type.
func (b RawBinary) Extension() string {
	switch strings.ToLower(b.MIME()) {
	case "image/jpeg", "image/jpg":
		return "jpg"
	case "image/webp":
		return "webp"
	case "image/gif":
		return "gif"
	default:
		return "png"
	}
}

// ResolveBinary returns the binary payload behind ref. Only RawBinary and
// DataURI carry bytes; the remaining variants report false.
func ResolveBinary(ref ImageRef) (RawBinary, bool) {
	switch v := ref.(type) {
	case RawBinary:
		if v.Empty() {
			return RawBinary{}, false
		}
		return v, true
	case DataURI:
		bin, err := DecodeDataURI(string(v))
		if err != nil || bin.Empty() {
			return RawBinary{}, false
		}
		return bin, true
	default:
		return RawBinary{}, false
	}
}

// PreviewString returns a string a viewer can display for ref.
func PreviewString(ref ImageRef) string {
	switch v := ref.(type) {
	case RawBinary:
		return EncodeDataURI(v)
	case DataURI:
		return string(v)
	case RemoteURL:
		return string(v)
	case ServerPath:
		return string(v)
	default:
		return ""
	}
}

// EncodeDataURI renders bin as a base64 data URI.
func EncodeDataURI(bin RawBinary) string {
	return "data:" + bin.MIME() + ";base64," + base64.StdEncoding.EncodeToString(bin.Data)
}

// DecodeDataURI decodes a data URI. A bare base64 payload without the
// `data:` header is accepted and assumed to be DefaultImageMIME.
func DecodeDataURI(uri string) (RawBinary, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return RawBinary{}, errors.New("data uri: empty")
	}
	mime := DefaultImageMIME
	payload := uri
	if header, data, ok := strings.Cut(uri, ","); ok {
		payload = data
		if strings.HasPrefix(header, "data:") {
			meta := strings.TrimPrefix(header, "data:")
			if m, _, found := strings.Cut(meta, ";"); found && m != "" {
				mime = m
			} else if !found && meta != "" {
				mime = meta
			}
		}
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		if raw, rawErr := base64.RawStdEncoding.DecodeString(payload); rawErr == nil {
			data = raw
		} else {
			return RawBinary{}, fmt.Errorf("data uri: decode payload: %w", err)
		}
	}
	return RawBinary{Data: data, MIMEType: mime}, nil
}

// IsAbsoluteURL reports whether s is an http(s) URL.
func IsAbsoluteURL(s string) bool {
	lower := strings.ToLower(strings.TrimSpace(s))
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// IsDataURI reports whether s is an inline data URI.
func IsDataURI(s string) bool {
	return strings.HasPrefix(strings.TrimSpace(s), "data:")
}

// ParseImageRef classifies a free-form string into an ImageRef variant.
func ParseImageRef(s string) ImageRef {
	s = strings.TrimSpace(s)
	switch {
	case IsDataURI(s):
		return DataURI(s)
	case IsAbsoluteURL(s):
		return RemoteURL(s)
	default:
		return ServerPath(s)
	}
}
