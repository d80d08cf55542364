package upload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pngHead  = []byte("\x89PNG\r\n\x1a\npayload")
	jpegHead = []byte("\xff\xd8\xff\xe0\x00\x10JFIFpayload")
	webpHead = []byte("RIFF\x00\x00\x00\x00WEBPVP8 payload")
)

func TestValidateImageBySniffAccepts(t *testing.T) {
	tests := []struct {
		filename string
		head     []byte
		mime     string
	}{
		{"photo.png", pngHead, "image/png"},
		{"photo.jpg", jpegHead, "image/jpeg"},
		{"photo.jpeg", jpegHead, "image/jpeg"},
		{"photo.webp", webpHead, "image/webp"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			mime, err := ValidateImageBySniff(tt.filename, tt.head)
			require.NoError(t, err)
			assert.Equal(t, tt.mime, mime)
		})
	}
}

func TestValidateImageBySniffRejectsExtension(t *testing.T) {
	_, err := ValidateImageBySniff("photo.gif", pngHead)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file format")

	_, err = ValidateImageBySniff("image.svg", pngHead)
	require.Error(t, err)
}

func TestValidateImageBySniffRejectsContentMismatch(t *testing.T) {
	// Extension says image, bytes say HTML.
	_, err := ValidateImageBySniff("photo.png", []byte("<html><body>hi</body></html>"))
	require.Error(t, err)

	_, err = ValidateImageBySniff("photo.png", []byte("<?xml version=\"1.0\"?><svg></svg>"))
	require.Error(t, err)

	_, err = ValidateImageBySniff("photo.png", []byte("just some plain text"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported file format")
}
