package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/isdelr/aurora-be/internal/models"
	"github.com/isdelr/aurora-be/internal/repository"
)

const postColumns = "id, title, author, author_id, content, image, created_at, updated_at"

// PostRepository stores posts in the posts table.
type PostRepository struct {
	db *sql.DB
}

// ListPosts returns all posts, newest first. rowid breaks ties between posts
// created within the same clock tick.
func (r *PostRepository) ListPosts(ctx context.Context) ([]models.Post, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+postColumns+" FROM posts ORDER BY created_at DESC, rowid DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

// GetPost retrieves a single post by its ID.
func (r *PostRepository) GetPost(ctx context.Context, id models.PostID) (models.Post, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+postColumns+" FROM posts WHERE id = ?", id)
	post, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Post{}, repository.ErrNotFound
	}
	return post, err
}

// CreatePost inserts a new post row.
func (r *PostRepository) CreatePost(ctx context.Context, post models.Post) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO posts ("+postColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		post.ID, post.Title, post.Author, post.AuthorID, post.Content, post.Image,
		post.CreatedAt.UTC(), post.UpdatedAt.UTC(),
	)
	return err
}

// UpdateOwnedPost sets the supplied columns with one UPDATE guarded by id and author_id.
func (r *PostRepository) UpdateOwnedPost(ctx context.Context, id models.PostID, owner models.UserID, update models.PostUpdate, now time.Time) (models.Post, error) {
	sets := []string{"updated_at = ?"}
	args := []any{now.UTC()}
	if update.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *update.Title)
	}
	if update.Content != nil {
		sets = append(sets, "content = ?")
		args = append(args, *update.Content)
	}
	if update.Image != nil {
		sets = append(sets, "image = ?")
		args = append(args, *update.Image)
	}
	args = append(args, id, owner)

	res, err := r.db.ExecContext(ctx,
		"UPDATE posts SET "+strings.Join(sets, ", ")+" WHERE id = ? AND author_id = ?", args...)
	if err != nil {
		return models.Post{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return models.Post{}, err
	}
	if n == 0 {
		return models.Post{}, r.missOrForeign(ctx, id)
	}
	return r.GetPost(ctx, id)
}

// DeleteOwnedPost deletes with one DELETE guarded by id and author_id.
func (r *PostRepository) DeleteOwnedPost(ctx context.Context, id models.PostID, owner models.UserID) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM posts WHERE id = ? AND author_id = ?", id, owner)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return r.missOrForeign(ctx, id)
	}
	return nil
}

func (r *PostRepository) CountPosts(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM posts").Scan(&n)
	return n, err
}

// missOrForeign explains why an owner-guarded write matched nothing.
func (r *PostRepository) missOrForeign(ctx context.Context, id models.PostID) error {
	var one int
	err := r.db.QueryRowContext(ctx, "SELECT 1 FROM posts WHERE id = ?", id).Scan(&one)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return repository.ErrNotFound
	case err != nil:
		return err
	default:
		return repository.ErrNotOwner
	}
}

func scanPost(row scanner) (models.Post, error) {
	var post models.Post
	err := row.Scan(&post.ID, &post.Title, &post.Author, &post.AuthorID, &post.Content, &post.Image, &post.CreatedAt, &post.UpdatedAt)
	return post, err
}
