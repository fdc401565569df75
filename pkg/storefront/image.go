package storefront

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"strings"
)

// maxImageBytes is the largest picture accepted for a chat question.
const maxImageBytes = 5 << 20

// EncodeImage reads a picture from disk and returns it base64 encoded for
// ChatRequest.Image.
func EncodeImage(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("reading image: %w", err)
	}
	if info.Size() > maxImageBytes {
		return "", fmt.Errorf("image %s is %d bytes, limit is %d", path, info.Size(), maxImageBytes)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading image: %w", err)
	}

	if ct := http.DetectContentType(data); !strings.HasPrefix(ct, "image/") {
		return "", fmt.Errorf("%s does not look like an image (%s)", path, ct)
	}

	return base64.StdEncoding.EncodeToString(data), nil
}
