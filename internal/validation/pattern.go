// Package validation содержит функции валидации входных данных.
package validation

import "unicode"

func isDigits(s string) bool {
	for _, ch := range s {
		if !unicode.IsDigit(ch) {
			return false
		}
	}
	return true
}

// IsValidRM проверяет, что RM состоит из 5–6 цифр.
func IsValidRM(rm string) bool {
	if len(rm) < 5 || len(rm) > 6 {
		return false
	}
	return isDigits(rm)
}

// IsValidCEP проверяет, что CEP состоит ровно из 8 цифр.
// Контрольная сумма не проверяется.
func IsValidCEP(cep string) bool {
	if len(cep) != 8 {
		return false
	}
	return isDigits(cep)
}
