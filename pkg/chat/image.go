package chat

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var imageMIMETypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// EncodeImageFile reads an image and returns its base64 payload for
// vision-capable models.
func EncodeImageFile(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := imageMIMETypes[ext]; !ok {
		return "", fmt.Errorf("unsupported image type %q", ext)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read image %s: %w", path, err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// ImageDataURL renders an image file as a data URL.
func ImageDataURL(path string) (string, error) {
	encoded, err := EncodeImageFile(path)
	if err != nil {
		return "", err
	}
	mime := imageMIMETypes[strings.ToLower(filepath.Ext(path))]
	return fmt.Sprintf("data:%s;base64,%s", mime, encoded), nil
}
