package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/dreamline/mentorlink/internal/app/models"
	"github.com/dreamline/mentorlink/internal/pkg/apperrors"
	"github.com/dreamline/mentorlink/internal/pkg/dberrors"
	"github.com/dreamline/mentorlink/internal/pkg/helpers"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var postColumns = []string{
	"id", "category", "major", "middle", "minor", "title", "content", "image_url",
	"author_id", "author_name", "author_role", "likes", "created_at",
}

const postReturning = "RETURNING id, category, major, middle, minor, title, content, image_url, author_id, author_name, author_role, likes, created_at"

// PostRepository handles database operations for board posts and comments
type PostRepository struct {
	db *pgxpool.Pool
}

// NewPostRepository creates a new PostRepository
func NewPostRepository(db *pgxpool.Pool) *PostRepository {
	return &PostRepository{db: db}
}

func scanPost(row pgx.Row) (*models.Post, error) {
	var p models.Post
	var category, role string
	var imageURL *string
	err := row.Scan(
		&p.ID, &category, &p.Topic.Major, &p.Topic.Middle, &p.Topic.Minor,
		&p.Title, &p.Content, &imageURL,
		&p.AuthorID, &p.AuthorName, &role, &p.Likes, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Category = models.PostCategory(category)
	p.AuthorRole = models.Role(role)
	if imageURL != nil {
		p.ImageURL = *imageURL
	}
	return p.Normalize(), nil
}

func notFoundPost(id string) error {
	return fmt.Errorf("post %s: %w", id, apperrors.ErrResourceNotFound)
}

// Create inserts a post
func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	post.Normalize()
	sql, args, err := squirrel.Insert("posts").
		Columns("id", "category", "major", "middle", "minor", "title", "content", "image_url",
			"author_id", "author_name", "author_role", "likes", "created_at").
		Values(post.ID, string(post.Category), post.Topic.Major, post.Topic.Middle, post.Topic.Minor,
			post.Title, post.Content, helpers.NullText(post.ImageURL),
			post.AuthorID, post.AuthorName, string(post.AuthorRole), post.Likes, post.CreatedAt).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		if dberrors.IsForeignKeyError(err) {
			return notFoundUser()
		}
		return fmt.Errorf("error creating post: %w", err)
	}
	return nil
}

// GetByID retrieves a post by ID
func (r *PostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	sql, args, err := squirrel.Select(postColumns...).
		From("posts").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	post, err := scanPost(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFoundPost(id)
		}
		return nil, fmt.Errorf("error retrieving post: %w", err)
	}
	return post, nil
}

func postFilterWhere(filter models.PostFilter) squirrel.Eq {
	where := squirrel.Eq{}
	if filter.Category != "" {
		where["category"] = string(filter.Category)
	}
	if filter.Major != "" {
		where["major"] = filter.Major
	}
	return where
}

// List retrieves a page of posts and the total count matching the filter
func (r *PostRepository) List(ctx context.Context, filter models.PostFilter) ([]*models.Post, int64, error) {
	where := postFilterWhere(filter)

	countSQL, countArgs, err := squirrel.Select("COUNT(*)").
		From("posts").
		Where(where).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("error building count SQL: %w", err)
	}

	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting posts: %w", err)
	}

	qb := squirrel.Select(postColumns...).
		From("posts").
		Where(where).
		OrderBy("created_at DESC", "id DESC").
		Offset(filter.Offset).
		PlaceholderFormat(squirrel.Dollar)
	if filter.Limit > 0 {
		qb = qb.Limit(uint64(filter.Limit))
	}

	sql, args, err := qb.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("error building SQL: %w", err)
	}

	posts, err := r.queryPosts(ctx, sql, args)
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// Recent returns the newest posts, optionally restricted to one major
func (r *PostRepository) Recent(ctx context.Context, major string, limit int) ([]*models.Post, error) {
	posts, _, err := r.List(ctx, models.PostFilter{Major: major, Limit: limit})
	return posts, err
}

// ToggleLike flips userID's membership in the like set atomically
func (r *PostRepository) ToggleLike(ctx context.Context, postID, userID string) (*models.Post, error) {
	post, err := scanPost(r.db.QueryRow(ctx, `
		UPDATE posts
		SET likes = CASE
			WHEN $2 = ANY(likes) THEN array_remove(likes, $2)
			ELSE array_append(likes, $2)
		END
		WHERE id = $1
		`+postReturning,
		postID, userID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFoundPost(postID)
		}
		return nil, fmt.Errorf("error toggling like: %w", err)
	}
	return post, nil
}

// AddComment appends a comment to a post
func (r *PostRepository) AddComment(ctx context.Context, c *models.Comment) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO post_comments (id, post_id, text, author_id, author_name, author_role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING seq`,
		c.ID, c.PostID, c.Text, c.AuthorID, c.AuthorName, string(c.AuthorRole), c.CreatedAt,
	).Scan(&c.Seq)
	if err != nil {
		if dberrors.IsForeignKeyError(err) {
			return notFoundPost(c.PostID)
		}
		return fmt.Errorf("error creating comment: %w", err)
	}
	return nil
}

// ListComments returns a post's comments oldest first
func (r *PostRepository) ListComments(ctx context.Context, postID string) ([]*models.Comment, error) {
	sql, args, err := squirrel.Select("seq", "id", "post_id", "text", "author_id", "author_name", "author_role", "created_at").
		From("post_comments").
		Where(squirrel.Eq{"post_id": postID}).
		OrderBy("created_at ASC", "seq ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	comments := make([]*models.Comment, 0)
	for rows.Next() {
		var c models.Comment
		var role string
		if err := rows.Scan(&c.Seq, &c.ID, &c.PostID, &c.Text, &c.AuthorID, &c.AuthorName, &role, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning comment row: %w", err)
		}
		c.AuthorRole = models.Role(role)
		comments = append(comments, &c)
	}
	return comments, rows.Err()
}

func (r *PostRepository) queryPosts(ctx context.Context, sql string, args []interface{}) ([]*models.Post, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	posts := make([]*models.Post, 0)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning post row: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}
