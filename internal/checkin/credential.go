package checkin

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"tickethub/internal/bookings"
	"tickethub/internal/shared/config"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"
)

// CredentialPayload is the logical content of a check-in QR code. It is
// opaque but not signed; replay protection comes from the idempotent check-in
// transition, not from the credential itself.
type CredentialPayload struct {
	BookingID uuid.UUID `json:"booking_id"`
	Reference string    `json:"reference"`
	IssuedAt  int64     `json:"issued_at"`
}

// EncodePayload serializes a payload to the wire form carried inside the QR
// image: base64url over compact JSON.
func EncodePayload(p CredentialPayload) (string, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// DecodePayload parses a scanned payload. Malformed input fails closed.
func DecodePayload(encoded string) (*CredentialPayload, error) {
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, ErrMalformedCredential
	}
	var p CredentialPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, ErrMalformedCredential
	}
	if p.BookingID == uuid.Nil {
		return nil, ErrMalformedCredential
	}
	return &p, nil
}

// Issuer renders check-in credentials as QR images on local disk. It
// implements bookings.CredentialIssuer.
type Issuer struct {
	outputDir string
	baseURL   string
	imageSize int
}

func NewIssuer(cfg config.QRConfig) *Issuer {
	return &Issuer{
		outputDir: cfg.OutputDir,
		baseURL:   cfg.BaseURL,
		imageSize: cfg.ImageSize,
	}
}

// Issue encodes the booking's credential and writes the QR image. When an
// older rendering exists it is deleted first, so a regenerated credential has
// exactly one image on disk; the logical credential stays valid because
// verification matches on booking id, not on the image.
func (i *Issuer) Issue(ctx context.Context, booking *bookings.Booking) (string, string, error) {
	payload, err := EncodePayload(CredentialPayload{
		BookingID: booking.ID,
		Reference: booking.BookingReference,
		IssuedAt:  time.Now().Unix(),
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to encode credential: %w", err)
	}

	if err := os.MkdirAll(i.outputDir, 0o755); err != nil {
		return "", "", fmt.Errorf("failed to create QR output dir: %w", err)
	}

	if booking.QRCodeURL != "" {
		i.removeRendering(booking.QRCodeURL)
	}

	filename := fmt.Sprintf("%s-%d.png", booking.ID, time.Now().UnixNano())
	path := filepath.Join(i.outputDir, filename)

	size := i.imageSize
	if size <= 0 {
		size = 256
	}
	if err := qrcode.WriteFile(payload, qrcode.Medium, size, path); err != nil {
		return "", "", fmt.Errorf("failed to render QR image: %w", err)
	}

	return payload, i.baseURL + "/" + filename, nil
}

// removeRendering deletes a previously rendered image given its public URL.
func (i *Issuer) removeRendering(url string) {
	filename := filepath.Base(url)
	if filename == "." || filename == "/" {
		return
	}
	// A missing file is fine; anything else is not worth failing issuance for.
	_ = os.Remove(filepath.Join(i.outputDir, filename))
}
