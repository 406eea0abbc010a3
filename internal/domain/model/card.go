package model

import (
	"time"

	"ridi-pay/internal/domain"
)

type CardPurpose string

const (
	CardPurposeOneTime             CardPurpose = "ONE_TIME"
	CardPurposeOneTimeTaxDeduction CardPurpose = "ONE_TIME_TAX_DEDUCTION"
	CardPurposeBilling             CardPurpose = "BILLING"
)

const IinLength = 6

// Card is a billing credential derived from one physical card registration.
// A registration produces a ONE_TIME and a BILLING row sharing the same encrypted bill key.
// Neither the full card number nor the card password is ever stored.
type Card struct {
	ID              int64
	PaymentMethodID int64
	CardIssuerID    int64
	PgID            int64
	PgBillKey       string // encrypted, see security.SecretBox
	Iin             string
	Purpose         CardPurpose
	CreatedAt       time.Time

	Issuer *CardIssuer // loaded on demand
}

func NewCard(paymentMethodID, issuerID, pgID int64, encryptedBillKey, iin string, purpose CardPurpose) (*Card, error) {
	if paymentMethodID <= 0 || pgID <= 0 || encryptedBillKey == "" || !isIin(iin) {
		return nil, domain.ErrInvalidArgument
	}
	switch purpose {
	case CardPurposeOneTime, CardPurposeOneTimeTaxDeduction, CardPurposeBilling:
	default:
		return nil, domain.ErrInvalidArgument
	}
	return &Card{
		PaymentMethodID: paymentMethodID,
		CardIssuerID:    issuerID,
		PgID:            pgID,
		PgBillKey:       encryptedBillKey,
		Iin:             iin,
		Purpose:         purpose,
		CreatedAt:       time.Now(),
	}, nil
}

// IinOf returns the issuer identification number of a card number.
func IinOf(cardNumber string) string {
	if len(cardNumber) < IinLength {
		return ""
	}
	return cardNumber[:IinLength]
}

func isIin(s string) bool {
	if len(s) != IinLength {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
