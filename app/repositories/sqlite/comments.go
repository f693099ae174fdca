package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"askblog/app/models"
	"askblog/app/repositories"
)

const commentColumns = `id, post_id, author, content, created_at, updated_at`

// CommentRepository implements repositories.CommentRepository on SQLite.
type CommentRepository struct {
	db *sql.DB
}

var _ repositories.CommentRepository = (*CommentRepository)(nil)

// Create inserts the comment only while its post exists, reporting
// ErrNotFound otherwise.
func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO comments (post_id, author, content, created_at, updated_at)
		 SELECT ?, ?, ?, ?, ? WHERE EXISTS (SELECT 1 FROM posts WHERE id = ?)`,
		comment.PostID, comment.Author, comment.Content, toMillis(comment.CreatedAt), toMillis(comment.UpdatedAt),
		comment.PostID,
	)
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	if err := affected(res, repositories.ErrNotFound); err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	comment.ID = int(id)
	return nil
}

func (r *CommentRepository) GetByID(ctx context.Context, id int) (*models.Comment, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+commentColumns+` FROM comments WHERE id = ?`, id)
	comment, err := scanComment(row)
	if isNoRows(err) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get comment %d: %w", id, err)
	}
	return comment, nil
}

func (r *CommentRepository) ListByPost(ctx context.Context, postID int) ([]*models.Comment, error) {
	return r.query(ctx, `SELECT `+commentColumns+` FROM comments WHERE post_id = ? ORDER BY id`, postID)
}

func (r *CommentRepository) All(ctx context.Context) ([]*models.Comment, error) {
	return r.query(ctx, `SELECT `+commentColumns+` FROM comments ORDER BY id`)
}

// Update rewrites author and content. The post_id guard keeps a comment on
// the post it was created under.
func (r *CommentRepository) Update(ctx context.Context, comment *models.Comment) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE comments SET author = ?, content = ?, created_at = ?, updated_at = ? WHERE id = ? AND post_id = ?`,
		comment.Author, comment.Content, toMillis(comment.CreatedAt), toMillis(comment.UpdatedAt), comment.ID, comment.PostID,
	)
	if err != nil {
		return fmt.Errorf("update comment %d: %w", comment.ID, err)
	}
	return affected(res, repositories.ErrNotFound)
}

func (r *CommentRepository) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete comment %d: %w", id, err)
	}
	return affected(res, repositories.ErrNotFound)
}

func (r *CommentRepository) query(ctx context.Context, query string, args ...any) ([]*models.Comment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	comments := []*models.Comment{}
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, comment)
	}
	return comments, rows.Err()
}

func scanComment(s scanner) (*models.Comment, error) {
	var (
		comment          models.Comment
		created, updated int64
	)
	err := s.Scan(&comment.ID, &comment.PostID, &comment.Author, &comment.Content, &created, &updated)
	if err != nil {
		return nil, err
	}
	comment.CreatedAt = fromMillis(created)
	comment.UpdatedAt = fromMillis(updated)
	return &comment, nil
}
