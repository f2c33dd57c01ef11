package blogservice

import (
	"github.com/DijitalRED/red-blog/internal/common"
)

func validateTitle(v *common.Validator, title string) {
	v.Check(common.NotBlank(title), "title", "must be provided")
	v.Check(v.CheckStringLength(title, 0, 250), "title", "must not be more than 250 characters long")
}

func validateSubtitle(v *common.Validator, subtitle string) {
	v.Check(common.NotBlank(subtitle), "subtitle", "must be provided")
	v.Check(v.CheckStringLength(subtitle, 0, 250), "subtitle", "must not be more than 250 characters long")
}

func validateImgURL(v *common.Validator, imgURL string) {
	v.Check(imgURL != "", "img_url", "must be provided")
	v.Check(common.IsURL(imgURL), "img_url", "must be a valid URL")
	v.Check(v.CheckStringLength(imgURL, 0, 250), "img_url", "must not be more than 250 characters long")
}

func validateBody(v *common.Validator, body string) {
	v.Check(common.NotBlank(body), "body", "must be provided")
}

func validateComment(v *common.Validator, text string) {
	v.Check(common.NotBlank(text), "comment", "must be provided")
	v.Check(v.CheckStringLength(text, 0, 1000), "comment", "must not be more than 1000 characters long")
}

func validateInt(v *common.Validator, num int, name string) {
	v.Check(num > 0, name, "must be greater than zero")
}
