package payment

import (
	"net/url"

	"albumstore/internal/domain"
)

const qrServiceURL = "https://api.qrserver.com/v1/create-qr-code/?size=250x250&data="

// QRImageURL picks the image to show for a charge: the provider's own QR
// image when there is one, otherwise a rendering of the copy-and-paste code.
func QRImageURL(r domain.PixResult) string {
	if r.QRCodeURL != nil && *r.QRCodeURL != "" {
		return *r.QRCodeURL
	}
	if r.PixCode != nil && *r.PixCode != "" {
		return qrServiceURL + url.QueryEscape(*r.PixCode)
	}
	return ""
}
