package blogservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/DijitalRED/red-blog/internal/common"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicateTitle = errors.New("duplicate title")
	ErrUserForeignKey = errors.New("author_id does not exist")
)

func newBlogModel(db *sql.DB) *BlogModel {
	return &BlogModel{db: db}
}

// insertPost fills in the new id and the author's name.
func (m *BlogModel) insertPost(ctx context.Context, p *Post) error {
	query := `
		WITH ins AS (
			INSERT INTO blog_posts (title, subtitle, date, body, img_url, author_id)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, author_id
		)
		SELECT ins.id, u.name
		FROM ins
		JOIN users u ON ins.author_id = u.id`

	args := []any{p.Title, p.Subtitle, p.Date, p.Body, p.ImgURL, p.AuthorID}

	err := m.db.QueryRowContext(ctx, query, args...).Scan(&p.ID, &p.Author.Name)
	if err != nil {
		switch {
		case common.IsUniqueViolation(err, "blog_posts_title_key"):
			return ErrDuplicateTitle
		case common.IsForeignKeyViolation(err, "blog_posts_author_id_fkey"):
			return ErrUserForeignKey
		default:
			return err
		}
	}
	p.Author.ID = p.AuthorID

	return nil
}

// getPostById joins the users table to get the author's name.
func (m *BlogModel) getPostById(ctx context.Context, id int) (*Post, error) {
	query := `
		SELECT p.id, p.title, p.subtitle, p.date, p.body, p.img_url, p.author_id, u.name
		FROM blog_posts p
		JOIN users u ON p.author_id = u.id
		WHERE p.id = $1`

	var p Post
	err := m.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Title, &p.Subtitle, &p.Date, &p.Body, &p.ImgURL, &p.AuthorID, &p.Author.Name)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	p.Author.ID = p.AuthorID

	return &p, nil
}

func (m *BlogModel) getPosts(ctx context.Context) ([]Post, error) {
	query := `
		SELECT p.id, p.title, p.subtitle, p.date, p.body, p.img_url, p.author_id, u.name
		FROM blog_posts p
		JOIN users u ON p.author_id = u.id
		ORDER BY p.id`

	rows, err := m.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []Post{}
	for rows.Next() {
		var p Post
		err := rows.Scan(&p.ID, &p.Title, &p.Subtitle, &p.Date, &p.Body, &p.ImgURL, &p.AuthorID, &p.Author.Name)
		if err != nil {
			return nil, err
		}
		p.Author.ID = p.AuthorID
		posts = append(posts, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return posts, nil
}

// updatePost overwrites every mutable column, author included. The date
// column is left alone and read back with the new author's name.
func (m *BlogModel) updatePost(ctx context.Context, p *Post) error {
	query := `
		WITH upd AS (
			UPDATE blog_posts
			SET title = $1, subtitle = $2, body = $3, img_url = $4, author_id = $5
			WHERE id = $6
			RETURNING date, author_id
		)
		SELECT upd.date, u.name
		FROM upd
		JOIN users u ON upd.author_id = u.id`

	args := []any{p.Title, p.Subtitle, p.Body, p.ImgURL, p.AuthorID, p.ID}

	err := m.db.QueryRowContext(ctx, query, args...).Scan(&p.Date, &p.Author.Name)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrRecordNotFound
		case common.IsUniqueViolation(err, "blog_posts_title_key"):
			return ErrDuplicateTitle
		case common.IsForeignKeyViolation(err, "blog_posts_author_id_fkey"):
			return ErrUserForeignKey
		default:
			return err
		}
	}

	p.Author.ID = p.AuthorID

	return nil
}

// deletePost removes the post; its comments go with it (ON DELETE CASCADE).
func (m *BlogModel) deletePost(ctx context.Context, id int) error {
	query := `
		DELETE FROM blog_posts
		WHERE id = $1`

	res, err := m.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rows != 1 {
		switch {
		case rows == 0:
			return ErrRecordNotFound
		default:
			return fmt.Errorf("expected 1 row to be affected, got %d", rows)
		}
	}

	return nil
}

func (m *BlogModel) insertComment(ctx context.Context, c *Comment) error {
	query := `
		INSERT INTO comments (text, post_id, author_id)
		VALUES ($1, $2, $3)
		RETURNING id`

	err := m.db.QueryRowContext(ctx, query, c.Text, c.PostID, c.AuthorID).Scan(&c.ID)
	if err != nil {
		switch {
		case common.IsForeignKeyViolation(err, "comments_post_id_fkey"):
			return ErrRecordNotFound
		case common.IsForeignKeyViolation(err, "comments_author_id_fkey"):
			return ErrUserForeignKey
		default:
			return err
		}
	}

	return nil
}

func (m *BlogModel) getCommentsByPostId(ctx context.Context, postID int) ([]Comment, error) {
	query := `
		SELECT c.id, c.text, c.post_id, c.author_id, u.name, u.email
		FROM comments c
		JOIN users u ON c.author_id = u.id
		WHERE c.post_id = $1
		ORDER BY c.id`

	rows, err := m.db.QueryContext(ctx, query, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []Comment{}
	for rows.Next() {
		var (
			c     Comment
			email string
		)
		err := rows.Scan(&c.ID, &c.Text, &c.PostID, &c.AuthorID, &c.Author.Name, &email)
		if err != nil {
			return nil, err
		}
		c.Author.ID = c.AuthorID
		c.Author.AvatarURL = GravatarURL(email)
		comments = append(comments, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return comments, nil
}

func (m *BlogModel) countComments(ctx context.Context, postID int) (int, error) {
	var n int
	err := m.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM comments WHERE post_id = $1", postID).Scan(&n)
	return n, err
}
