package handler

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"dynamic-qr-platform/internal/store"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// validationError 提示信息直接返回给客户端
type validationError struct {
	message string
}

func (e *validationError) Error() string { return e.message }

func invalid(message string) error { return &validationError{message: message} }

func isValidationError(err error) bool {
	var v *validationError
	return errors.As(err, &v)
}

// validateQrInput 规整并校验二维码字段，按名称、slug、目标地址的顺序报告第一个错误
func validateQrInput(name, slug, destination string, isActive bool) (store.QrCodeInput, error) {
	name = strings.TrimSpace(name)
	slug = strings.ToLower(strings.TrimSpace(slug))
	destination = strings.TrimSpace(destination)

	switch n := utf8.RuneCountInString(name); {
	case n < 2:
		return store.QrCodeInput{}, invalid("Name must be at least 2 characters.")
	case n > 120:
		return store.QrCodeInput{}, invalid("Name must be at most 120 characters.")
	}

	switch {
	case len(slug) < 3:
		return store.QrCodeInput{}, invalid("Slug must be at least 3 characters.")
	case len(slug) > 80:
		return store.QrCodeInput{}, invalid("Slug must be at most 80 characters.")
	case !slugPattern.MatchString(slug):
		return store.QrCodeInput{}, invalid("Slug may contain lowercase letters, numbers, and hyphens.")
	}

	u, err := url.Parse(destination)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return store.QrCodeInput{}, invalid("Destination must be a valid URL.")
	}
	if !strings.HasPrefix(destination, "http://") && !strings.HasPrefix(destination, "https://") {
		return store.QrCodeInput{}, invalid("Destination URL must start with http:// or https://.")
	}

	return store.QrCodeInput{
		Name:           name,
		Slug:           slug,
		DestinationURL: destination,
		IsActive:       isActive,
	}, nil
}
