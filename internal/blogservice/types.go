package blogservice

import (
	"database/sql"
	"time"

	"github.com/microcosm-cc/bluemonday"
)

// DateLayout is how a post's creation date is stored and shown.
const DateLayout = "January 02, 2006"

type Author struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

type Post struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	// Body is sanitized HTML.
	Body     string `json:"body"`
	ImgURL   string `json:"img_url"`
	Date     string `json:"date"`
	AuthorID int    `json:"author_id"`
	Author   Author `json:"author"`
}

// OwnerID lets a Post be checked by the authorization policy.
func (p *Post) OwnerID() int {
	return p.AuthorID
}

type Comment struct {
	ID       int    `json:"id"`
	Text     string `json:"text"`
	PostID   int    `json:"post_id"`
	AuthorID int    `json:"author_id"`
	Author   Author `json:"author"`
}

type BlogModel struct {
	db *sql.DB
}

type BlogService struct {
	m      *BlogModel
	policy *bluemonday.Policy
	now    func() time.Time
}
