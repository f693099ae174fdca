package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"askblog/app/models"
	"askblog/app/repositories"
)

const postColumns = `id, title, content, created_at, updated_at`

// PostRepository implements repositories.PostRepository on SQLite.
type PostRepository struct {
	db *sql.DB
}

var _ repositories.PostRepository = (*PostRepository)(nil)

func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO posts (title, content, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		post.Title, post.Content, toMillis(post.CreatedAt), toMillis(post.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	post.ID = int(id)
	return nil
}

func (r *PostRepository) GetByID(ctx context.Context, id int) (*models.Post, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id = ?`, id)
	post, err := scanPost(row)
	if isNoRows(err) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post %d: %w", id, err)
	}
	return post, nil
}

func (r *PostRepository) List(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	return r.query(ctx, `SELECT `+postColumns+` FROM posts ORDER BY id DESC LIMIT ? OFFSET ?`, limit, offset)
}

func (r *PostRepository) All(ctx context.Context) ([]*models.Post, error) {
	return r.query(ctx, `SELECT `+postColumns+` FROM posts ORDER BY id DESC`)
}

func (r *PostRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM posts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return n, nil
}

func (r *PostRepository) Update(ctx context.Context, post *models.Post) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE posts SET title = ?, content = ?, created_at = ?, updated_at = ? WHERE id = ?`,
		post.Title, post.Content, toMillis(post.CreatedAt), toMillis(post.UpdatedAt), post.ID,
	)
	if err != nil {
		return fmt.Errorf("update post %d: %w", post.ID, err)
	}
	return affected(res, repositories.ErrNotFound)
}

// Delete removes the post; its comments go with it through the foreign key.
func (r *PostRepository) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete post %d: %w", id, err)
	}
	return affected(res, repositories.ErrNotFound)
}

func (r *PostRepository) query(ctx context.Context, query string, args ...any) ([]*models.Post, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	posts := []*models.Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(s scanner) (*models.Post, error) {
	var (
		post             models.Post
		created, updated int64
	)
	if err := s.Scan(&post.ID, &post.Title, &post.Content, &created, &updated); err != nil {
		return nil, err
	}
	post.CreatedAt = fromMillis(created)
	post.UpdatedAt = fromMillis(updated)
	return &post, nil
}
