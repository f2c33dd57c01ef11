package blogservice

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/DijitalRED/red-blog/internal/common"
)

func NewBlogService(db *sql.DB) *BlogService {
	return &BlogService{
		m:      newBlogModel(db),
		policy: newPolicy(),
		now:    time.Now,
	}
}

// PostInput carries the editable fields of a post as submitted by a form.
type PostInput struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	ImgURL   string `json:"img_url"`
	Body     string `json:"body"`
}

func (s *BlogService) validatePost(in *PostInput) (*Post, error) {
	p := &Post{
		Title:    strings.TrimSpace(in.Title),
		Subtitle: strings.TrimSpace(in.Subtitle),
		ImgURL:   strings.TrimSpace(in.ImgURL),
		Body:     s.sanitize(in.Body),
	}

	v := common.NewValidator()
	validateTitle(v, p.Title)
	validateSubtitle(v, p.Subtitle)
	validateImgURL(v, p.ImgURL)
	validateBody(v, p.Body)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	return p, nil
}

// CreatePost stores a new post written by authorID. The body is sanitized
// before it is validated, so markup that sanitizes to nothing is rejected.
// The date is stamped once here and never changes.
func (s *BlogService) CreatePost(ctx context.Context, authorID int, in *PostInput) (*Post, error) {
	p, err := s.validatePost(in)
	if err != nil {
		return nil, err
	}

	v := common.NewValidator()
	validateInt(v, authorID, "author_id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	p.AuthorID = authorID
	p.Date = s.now().Format(DateLayout)

	if err := s.m.insertPost(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}

// GetPostByID returns a post together with its author's name.
func (s *BlogService) GetPostByID(ctx context.Context, id int) (*Post, error) {
	v := common.NewValidator()
	validateInt(v, id, "id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	return s.m.getPostById(ctx, id)
}

// GetPosts returns every post in insertion order.
func (s *BlogService) GetPosts(ctx context.Context) ([]Post, error) {
	return s.m.getPosts(ctx)
}

// UpdatePost replaces the editable fields of post id and makes editorID its
// author. The original date is kept.
func (s *BlogService) UpdatePost(ctx context.Context, id, editorID int, in *PostInput) (*Post, error) {
	p, err := s.validatePost(in)
	if err != nil {
		return nil, err
	}

	v := common.NewValidator()
	validateInt(v, id, "id")
	validateInt(v, editorID, "author_id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	p.ID = id
	p.AuthorID = editorID

	if err := s.m.updatePost(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}

// DeletePost removes a post and all of its comments.
func (s *BlogService) DeletePost(ctx context.Context, id int) error {
	v := common.NewValidator()
	validateInt(v, id, "id")
	if !v.Valid() {
		return v.ValidationError()
	}

	return s.m.deletePost(ctx, id)
}

// AddComment attaches a comment by authorID to post postID. The text is
// sanitized like a post body. Duplicate texts are allowed.
func (s *BlogService) AddComment(ctx context.Context, postID, authorID int, text string) (*Comment, error) {
	c := &Comment{
		Text:     s.sanitize(text),
		PostID:   postID,
		AuthorID: authorID,
	}

	v := common.NewValidator()
	validateComment(v, c.Text)
	validateInt(v, postID, "post_id")
	validateInt(v, authorID, "author_id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	if err := s.m.insertComment(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

// GetComments returns the comments of a post, oldest first, each with its
// author's name and avatar.
func (s *BlogService) GetComments(ctx context.Context, postID int) ([]Comment, error) {
	v := common.NewValidator()
	validateInt(v, postID, "post_id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	return s.m.getCommentsByPostId(ctx, postID)
}
