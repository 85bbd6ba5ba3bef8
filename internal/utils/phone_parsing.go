package utils

import (
	"fmt"

	"github.com/nyaruka/phonenumbers"
)

// defaultRegion is used for numbers stored without a country code
const defaultRegion = "BR"

// PhoneToE164 converts a stored phone value (canonical digits, usually
// without country code) into E.164, e.g. "21987654321" -> "+5521987654321"
func PhoneToE164(phone string) (string, error) {
	digits := Canonical(phone)
	if digits == "" {
		return "", fmt.Errorf("empty phone number")
	}

	num, err := phonenumbers.Parse(digits, defaultRegion)
	if err != nil {
		return "", fmt.Errorf("failed to parse phone number: %w", err)
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", fmt.Errorf("invalid phone number: %s", phone)
	}

	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// PhoneTelLink returns a tel: URI for the phone, or an empty string when the
// number is not dialable
func PhoneTelLink(phone string) string {
	e164, err := PhoneToE164(phone)
	if err != nil {
		return ""
	}
	return "tel:" + e164
}
