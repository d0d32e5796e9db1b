package rod

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"browser-use-gologin/internal/domain/entity"

	"github.com/disintegration/imaging"
)

const (
	maxScreenshotWidth = 1024
	screenshotQuality  = 75
)

// shrinkScreenshot keeps vision requests small: at most 1024px wide, JPEG.
func shrinkScreenshot(raw []byte) (*entity.Screenshot, error) {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("image decode failed: %w", err)
	}

	if img.Bounds().Dx() > maxScreenshotWidth {
		img = imaging.Resize(img, maxScreenshotWidth, 0, imaging.Lanczos)
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: screenshotQuality}); err != nil {
		return nil, fmt.Errorf("jpeg encode failed: %w", err)
	}

	return &entity.Screenshot{
		Data:   buf.Bytes(),
		Format: "jpeg",
		Width:  img.Bounds().Dx(),
		Height: img.Bounds().Dy(),
	}, nil
}
