package posts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/DeepaPrasanna/social-media/internal/common"
	"github.com/DeepaPrasanna/social-media/internal/dbx"
	"github.com/DeepaPrasanna/social-media/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, authorID, description string) (*models.Post, error) {

	query :=
		`INSERT INTO posts (author_id, description)
		 VALUES ($1, $2)
		 RETURNING id, created_on
		 `

	post := &models.Post{AuthorID: authorID, Description: description}
	err := r.db.QueryRowContext(ctx, query, authorID, description).Scan(&post.ID, &post.CreatedOn)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return post, nil
}

func (r *PostgresRepository) Find(ctx context.Context, id string) (*models.Post, error) {
	query :=
		`SELECT p.id, p.author_id, p.description, p.created_on, p.updated_at,
		        (SELECT count(*) FROM shared_posts sp WHERE sp.post_id = p.id) AS number_of_shares
		 FROM posts p
		 WHERE p.id = $1
		 `

	post := &models.Post{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&post.ID, &post.AuthorID, &post.Description, &post.CreatedOn, &post.UpdatedAt, &post.NumberOfShares)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return post, nil
}

// FindAllByAuthor returns the author's posts, newest first, each with its
// share count.
func (r *PostgresRepository) FindAllByAuthor(ctx context.Context, authorID string) ([]*models.Post, error) {
	query :=
		`SELECT p.id, p.author_id, p.description, p.created_on, p.updated_at,
		        count(sp.id) AS number_of_shares
		 FROM posts p
		 LEFT JOIN shared_posts sp ON sp.post_id = p.id
		 WHERE p.author_id = $1
		 GROUP BY p.id
		 ORDER BY p.created_on DESC
		 `

	rows, err := r.db.QueryContext(ctx, query, authorID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		post := &models.Post{}
		if err := rows.Scan(&post.ID, &post.AuthorID, &post.Description,
			&post.CreatedOn, &post.UpdatedAt, &post.NumberOfShares); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return posts, nil
}

// FindSharedWith returns posts other users shared with userID, joined with
// their authors.
func (r *PostgresRepository) FindSharedWith(ctx context.Context, userID string) ([]*models.SharedPostView, error) {
	query :=
		`SELECT p.id, p.description, p.created_on, u.id, u.first_name, u.last_name
		 FROM shared_posts sp
		 JOIN posts p ON p.id = sp.post_id
		 JOIN users u ON u.id = p.author_id
		 WHERE sp.user_id = $1
		 ORDER BY sp.created_at DESC
		 `

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var shared []*models.SharedPostView
	for rows.Next() {
		v := &models.SharedPostView{}
		if err := rows.Scan(&v.PostID, &v.Description, &v.CreatedOn,
			&v.AuthorID, &v.AuthorFirstName, &v.AuthorLastName); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		shared = append(shared, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return shared, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id string, description string) error {
	query :=
		`UPDATE posts
		 SET description = $2, updated_at = now()
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, id, description)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM posts WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

// Search runs a full-text match over descriptions and joins the author of
// each hit, best matches first.
func (r *PostgresRepository) Search(ctx context.Context, query string) ([]*models.PostSearchResult, error) {
	sqlQuery :=
		`SELECT p.id, p.description, p.created_on, u.id, u.first_name, u.last_name
		 FROM posts p
		 JOIN users u ON u.id = p.author_id
		 WHERE to_tsvector('english', p.description) @@ websearch_to_tsquery('english', $1)
		 ORDER BY ts_rank(to_tsvector('english', p.description), websearch_to_tsquery('english', $1)) DESC
		 `

	rows, err := r.db.QueryContext(ctx, sqlQuery, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var results []*models.PostSearchResult
	for rows.Next() {
		res := &models.PostSearchResult{}
		if err := rows.Scan(&res.ID, &res.Description, &res.CreatedOn,
			&res.AuthorID, &res.AuthorFirstName, &res.AuthorLastName); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return results, nil
}

func (r *PostgresRepository) Share(ctx context.Context, postID, userID string) error {
	query :=
		`INSERT INTO shared_posts (post_id, user_id)
		 VALUES ($1, $2)
		 ON CONFLICT (post_id, user_id) DO NOTHING
		 `

	if _, err := r.db.ExecContext(ctx, query, postID, userID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
