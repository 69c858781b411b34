package domain

type CheckoutStage string

const (
	StageFilling    CheckoutStage = "filling"
	StageProcessing CheckoutStage = "processing"
	StagePixSuccess CheckoutStage = "pix_success"
	StageCardError  CheckoutStage = "card_error"
)

type PaymentMethod string

const (
	MethodPix  PaymentMethod = "pix"
	MethodCard PaymentMethod = "card"
)

func (m PaymentMethod) Valid() bool { return m == MethodPix || m == MethodCard }

// PixResult is the provider-independent view of a PIX charge. A nil field
// means the provider did not send it.
type PixResult struct {
	QRCodeURL *string `json:"qrCodeUrl"`
	PixCode   *string `json:"pixCode"`
	ChargeID  *string `json:"chargeId"`
	ExpiresAt *string `json:"expiresAt"`
}
