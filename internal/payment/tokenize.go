package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/Skotchmaster/pcshop/internal/models"
)

var ErrInvalidCard = errors.New("invalid card")

const MethodCard = "card"

// Details is what the checkout form collects. It is never persisted as is.
type Details struct {
	Method     string `json:"method"`
	CardNumber string `json:"card_number"`
	Cardholder string `json:"cardholder"`
	Expiry     string `json:"expiry"`
	CVV        string `json:"cvv"`
}

type Tokenizer struct {
	Secret []byte
}

// Tokenize drops the card number and CVV, keeping the last four digits and a keyed hash of the number.
func (t Tokenizer) Tokenize(d Details) (models.PaymentInfo, error) {
	method := strings.ToLower(strings.TrimSpace(d.Method))
	if method == "" {
		method = MethodCard
	}
	if method != MethodCard {
		return models.PaymentInfo{Method: method}, nil
	}

	pan := digits(d.CardNumber)
	if len(pan) < 12 || len(pan) > 19 || !luhn(pan) {
		return models.PaymentInfo{}, fmt.Errorf("%w: card number", ErrInvalidCard)
	}
	if cvv := digits(d.CVV); len(cvv) < 3 || len(cvv) > 4 {
		return models.PaymentInfo{}, fmt.Errorf("%w: cvv", ErrInvalidCard)
	}
	if strings.TrimSpace(d.Expiry) == "" {
		return models.PaymentInfo{}, fmt.Errorf("%w: expiry", ErrInvalidCard)
	}
	if len(t.Secret) == 0 {
		return models.PaymentInfo{}, errors.New("payment token secret is not configured")
	}

	mac := hmac.New(sha256.New, t.Secret)
	mac.Write([]byte(pan))

	return models.PaymentInfo{
		Method:     method,
		Cardholder: strings.TrimSpace(d.Cardholder),
		Last4:      pan[len(pan)-4:],
		Expiry:     strings.TrimSpace(d.Expiry),
		Token:      hex.EncodeToString(mac.Sum(nil)),
	}, nil
}

func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else if r != ' ' && r != '-' {
			return ""
		}
	}
	return b.String()
}

func luhn(pan string) bool {
	sum := 0
	double := false
	for i := len(pan) - 1; i >= 0; i-- {
		d := int(pan[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}
