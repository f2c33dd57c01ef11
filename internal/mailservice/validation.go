package mailservice

import (
	"github.com/DijitalRED/red-blog/internal/common"
)

func validateContactMessage(v *common.Validator, msg *ContactMessage) {
	v.Check(common.NotBlank(msg.Name), "name", "must be provided")
	v.Check(v.CheckStringLength(msg.Name, 0, 250), "name", "must not be more than 250 characters long")

	v.Check(common.NotBlank(msg.Email), "email", "must be provided")
	v.Check(common.EmailRX.MatchString(msg.Email), "email", "must be a valid email address")

	v.Check(common.NotBlank(msg.Phone), "phone", "must be provided")
	v.Check(v.CheckStringLength(msg.Phone, 0, 50), "phone", "must not be more than 50 characters long")

	v.Check(common.NotBlank(msg.Message), "message", "must be provided")
	v.Check(v.CheckStringLength(msg.Message, 0, 5000), "message", "must not be more than 5000 characters long")
}
