package client

import (
	"fmt"
	"net/mail"
	"unicode/utf8"

	"github.com/dmitrijs2005/storeit/internal/common"
)

const (
	minNameLen     = 2
	maxNameLen     = 50
	minPasswordLen = 8
	maxPasswordLen = 20
)

// ValidateSignIn checks credentials before they are sent.
func ValidateSignIn(email, password string) error {
	if err := validateEmail(email); err != nil {
		return err
	}
	return validatePassword(password)
}

// ValidateSignUp checks a registration form before it is sent.
func ValidateSignUp(fullName, email, password, confirm string) error {
	n := utf8.RuneCountInString(fullName)
	if n < minNameLen || n > maxNameLen {
		return fmt.Errorf("%w: full name must be %d to %d characters", common.ErrorValidation, minNameLen, maxNameLen)
	}
	if err := validateEmail(email); err != nil {
		return err
	}
	if err := validatePassword(password); err != nil {
		return err
	}
	if password != confirm {
		return fmt.Errorf("%w: passwords do not match", common.ErrorValidation)
	}
	return nil
}

func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("%w: invalid email address", common.ErrorValidation)
	}
	return nil
}

func validatePassword(password string) error {
	n := utf8.RuneCountInString(password)
	if n < minPasswordLen || n > maxPasswordLen {
		return fmt.Errorf("%w: password must be %d to %d characters", common.ErrorValidation, minPasswordLen, maxPasswordLen)
	}
	return nil
}
