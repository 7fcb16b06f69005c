package payment

import (
	"fmt"

	svgqr "github.com/wamuir/svg-qr-code"
)

// RenderSVG renders the given text as a scannable SVG QR code.
// The renderer is a black box; any failure is a generic rendering error.
func RenderSVG(text string) ([]byte, error) {
	qr, err := svgqr.New(text)
	if err != nil {
		return nil, fmt.Errorf("failed to render QR code: %w", err)
	}
	return []byte(qr.String()), nil
}
