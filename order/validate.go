package order

import (
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/mmaaza/surgical-mart-sub001/apperrors"
	"github.com/mmaaza/surgical-mart-sub001/models"
	"github.com/mmaaza/surgical-mart-sub001/validation"
)

// Receipt uploads are payment screenshots; anything that is not an image
// is refused before a byte leaves the client.
var allowedReceiptMIMEs = map[string]struct{}{
	"image/jpeg": {},
	"image/jpg":  {},
	"image/png":  {},
}

// Extensions never accepted regardless of the declared MIME type.
var deniedExtensions = []string{
	".exe", ".bat", ".cmd", ".com", ".msi", ".scr", ".sh", ".ps1", ".js", ".jar",
}

// MaxReceiptSize is the default receipt size cap.
const MaxReceiptSize = 5 << 20 // 5 MiB

// ValidatePayload checks the assembled order before any network call and
// returns every violated rule at once. A nil return means the payload may
// be submitted. Shipping rules come from the shared validation package,
// the same rules the checkout guard enforces.
func ValidatePayload(payload models.OrderPayload, receipt *models.ReceiptFile, maxReceiptBytes int64) *apperrors.Error {
	var violations []apperrors.FieldViolation

	violations = append(violations, validateShipping(payload.Shipping)...)

	switch payload.PaymentMethod {
	case models.PaymentPayNow, models.PaymentPayLater:
	default:
		violations = append(violations, apperrors.FieldViolation{
			Field: "payment_method", Rule: "oneof",
			Message: "payment method must be pay_now or pay_later",
		})
	}

	if receipt != nil {
		violations = append(violations, ValidateReceipt(receipt, maxReceiptBytes)...)
	}

	if len(violations) > 0 {
		return apperrors.Validation("order validation failed", violations...)
	}
	return nil
}

func validateShipping(s models.ShippingDetails) []apperrors.FieldViolation {
	violations := validation.Struct(s)
	if s.Email != "" && !validation.ValidEmail(s.Email) {
		violations = validation.AppendUnique(violations, validation.InvalidEmail())
	}
	return violations
}

// ValidateReceipt checks an attached payment screenshot: image MIME type
// (declared and sniffed from content), non-empty, size under the cap, and
// no denylisted executable extension.
func ValidateReceipt(receipt *models.ReceiptFile, maxBytes int64) []apperrors.FieldViolation {
	var violations []apperrors.FieldViolation
	if maxBytes <= 0 {
		maxBytes = MaxReceiptSize
	}

	if receipt.Size <= 0 || len(receipt.Data) == 0 {
		violations = append(violations, apperrors.FieldViolation{
			Field: "receipt", Rule: "required", Message: "receipt file is empty",
		})
		return violations
	}

	if receipt.Size > maxBytes {
		violations = append(violations, apperrors.FieldViolation{
			Field: "receipt", Rule: "max_size",
			Message: fmt.Sprintf("receipt exceeds the %d MiB limit", maxBytes>>20),
		})
	}

	lower := strings.ToLower(receipt.Filename)
	for _, ext := range deniedExtensions {
		if strings.HasSuffix(lower, ext) {
			violations = append(violations, apperrors.FieldViolation{
				Field: "receipt", Rule: "extension",
				Message: "receipt file type is not allowed",
			})
			break
		}
	}

	if _, ok := allowedReceiptMIMEs[strings.ToLower(receipt.MIMEType)]; !ok {
		violations = append(violations, apperrors.FieldViolation{
			Field: "receipt", Rule: "mime",
			Message: "receipt must be a JPEG or PNG image",
		})
	}

	// Sniff the content too; a renamed executable with a spoofed MIME
	// header must not pass.
	detected := mimetype.Detect(receipt.Data)
	if !detected.Is("image/jpeg") && !detected.Is("image/png") {
		violations = validation.AppendUnique(violations, apperrors.FieldViolation{
			Field: "receipt", Rule: "mime",
			Message: "receipt content is not a JPEG or PNG image",
		})
	}

	return violations
}
