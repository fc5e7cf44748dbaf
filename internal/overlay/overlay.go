// Package overlay stamps debug information onto rendered frames: a text
// label with the frame, scene and step, and a QR code carrying the same
// label plus the run id so a single exported frame can be traced back.
package overlay

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"

	"github.com/skip2/go-qrcode"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/ivlev/aconitase/internal/scene"
)

const margin = 8

// Overlay draws debug stamps. The font face is not safe for concurrent use,
// so drawing is serialised.
type Overlay struct {
	RunID  string
	QRSize int

	mu   sync.Mutex
	face font.Face
}

// New prepares the label font scaled to the frame height
func New(runID string, frameHeight int) (*Overlay, error) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}

	size := float64(frameHeight) / 24
	if size < 10 {
		size = 10
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingVertical,
	})
	if err != nil {
		return nil, fmt.Errorf("font face: %w", err)
	}

	qr := frameHeight / 5
	if qr < 48 {
		qr = 48
	}
	return &Overlay{RunID: runID, QRSize: qr, face: face}, nil
}

// Label is the human readable frame caption
func Label(d scene.Descriptor) string {
	return fmt.Sprintf("frame %04d | scene %d %s | step %d", d.Frame, d.Scene, d.Name, d.Step)
}

// Payload is the QR content for a frame
func (o *Overlay) Payload(d scene.Descriptor) string {
	return fmt.Sprintf("run=%s frame=%d scene=%d step=%d", o.RunID, d.Frame, d.Scene, d.Step)
}

// Apply draws the label in the top left corner and the QR code in the
// bottom right corner of img.
func (o *Overlay) Apply(img *image.RGBA, d scene.Descriptor) error {
	b := img.Bounds()

	q, err := qrcode.New(o.Payload(d), qrcode.Medium)
	if err != nil {
		return fmt.Errorf("qr frame %d: %w", d.Frame, err)
	}
	code := q.Image(o.QRSize)
	size := code.Bounds().Size()
	at := image.Rect(b.Max.X-size.X-margin, b.Max.Y-size.Y-margin, b.Max.X-margin, b.Max.Y-margin)
	if at.Min.X >= b.Min.X && at.Min.Y >= b.Min.Y {
		draw.Draw(img, at, code, code.Bounds().Min, draw.Src)
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	ascent := o.face.Metrics().Ascent
	drawer := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.RGBA{255, 255, 0, 255}),
		Face: o.face,
		Dot:  fixed.Point26_6{X: fixed.I(b.Min.X + margin), Y: fixed.I(b.Min.Y+margin) + ascent},
	}
	drawer.DrawString(Label(d))
	return nil
}
