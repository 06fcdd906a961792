package domain

// CaptureCompleted is the provider status of a settled capture.
const CaptureCompleted = "COMPLETED"

// PaymentCapture is the provider's answer to a capture request.
type PaymentCapture struct {
	CaptureID string
	Status    string
}
