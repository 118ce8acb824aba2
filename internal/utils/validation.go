package utils

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)
	codePattern     = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)
)

// TrimAndValidate 去除首尾空白并校验非空、长度和控制字符
func TrimAndValidate(s string, maxLen int) (string, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return "", ErrEmptyString
	}
	if maxLen > 0 && utf8.RuneCountInString(trimmed) > maxLen {
		return "", ErrStringTooLong
	}
	for _, r := range trimmed {
		if unicode.IsControl(r) {
			return "", ErrControlChars
		}
	}
	return trimmed, nil
}

// NormalizeEmail 规范化并校验邮箱
func NormalizeEmail(email string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return "", ErrEmptyString
	}
	if len(normalized) > 255 || !emailPattern.MatchString(normalized) {
		return "", ErrInvalidEmail
	}
	return normalized, nil
}

// NormalizeCurrency 规范化并校验 ISO 4217 三位字母币种
func NormalizeCurrency(code string) (string, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if !currencyPattern.MatchString(normalized) {
		return "", ErrInvalidCurrency
	}
	return normalized, nil
}

// ValidateCode 校验项目编号
func ValidateCode(code string) error {
	if code == "" {
		return ErrEmptyString
	}
	if len(code) > 64 {
		return ErrStringTooLong
	}
	if !codePattern.MatchString(code) {
		return ErrInvalidCode
	}
	return nil
}

// 错误定义
var (
	ErrEmptyString     = &ValidationError{Code: "EMPTY_STRING", Message: "must not be empty"}
	ErrStringTooLong   = &ValidationError{Code: "STRING_TOO_LONG", Message: "exceeds maximum length"}
	ErrControlChars    = &ValidationError{Code: "CONTROL_CHARS", Message: "contains control characters"}
	ErrInvalidEmail    = &ValidationError{Code: "INVALID_EMAIL", Message: "is not a valid email address"}
	ErrInvalidCurrency = &ValidationError{Code: "INVALID_CURRENCY", Message: "must be a three letter ISO 4217 code"}
	ErrInvalidCode     = &ValidationError{Code: "INVALID_CODE", Message: "may only contain letters, digits, '.', '_' and '-'"}
)

// ValidationError 验证错误
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
