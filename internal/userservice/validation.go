package userservice

import (
	"github.com/DijitalRED/red-blog/internal/common"
)

func validateName(v *common.Validator, name string) {
	v.Check(common.NotBlank(name), "name", "must be provided")
	v.Check(v.CheckStringLength(name, 0, 250), "name", "must not be more than 250 characters long")
}

func validateEmail(v *common.Validator, email string) {
	v.Check(common.NotBlank(email), "email", "must be provided")
	v.Check(v.CheckStringLength(email, 0, 250), "email", "must not be more than 250 characters long")
}

// validateNewEmail additionally checks the address shape; login accepts any
// non-empty input so a malformed address reads as "no account".
func validateNewEmail(v *common.Validator, email string) {
	validateEmail(v, email)
	v.Check(common.EmailRX.MatchString(email), "email", "must be a valid email address")
}

func validatePassword(v *common.Validator, password string) {
	v.Check(password != "", "password", "must be provided")
}

func validateInt(v *common.Validator, num int, name string) {
	v.Check(num > 0, name, "must be greater than zero")
}
