package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"
)

// PoseQR encodes v as JSON in a PNG QR code of the given pixel size.
func PoseQR(v any, size int) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal QR payload: %w", err)
	}
	png, err := qrcode.Encode(string(data), qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}
	return png, nil
}

// drawQR places a QR code of v's JSON as a size x size mm image at (x, y).
func drawQR(pdf *fpdf.Fpdf, name string, v any, x, y, size float64) error {
	png, err := PoseQR(v, 256)
	if err != nil {
		return err
	}
	imgName := "qr_" + name
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(imgName, opts, bytes.NewReader(png))
	pdf.ImageOptions(imgName, x, y, size, size, false, opts, 0, "")
	return pdf.Error()
}
