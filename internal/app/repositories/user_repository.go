package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/dreamline/mentorlink/internal/app/models"
	"github.com/dreamline/mentorlink/internal/pkg/apperrors"
	"github.com/dreamline/mentorlink/internal/pkg/dberrors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const usersEmailConstraint = "users_email_key"

var userColumns = []string{
	"id", "email", "password_hash", "name", "age", "role",
	"major", "middle", "minor", "career",
	"rating_sum", "rating_count", "rating_avg", "trust_tier", "trust_score",
	"created_at", "updated_at",
}

func notFoundUser() error {
	return fmt.Errorf("%w: %w", apperrors.ErrUserNotFound, apperrors.ErrResourceNotFound)
}

// UserRepository handles database operations for users
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	var role, tier string
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Age, &role,
		&u.Category.Major, &u.Category.Middle, &u.Category.Minor, &u.Career,
		&u.Rating.Sum, &u.Rating.Count, &u.Rating.Avg, &tier, &u.Rating.TrustScore,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.Role = models.Role(role)
	u.Rating.Tier = models.TrustTier(tier)
	return u.Normalize(), nil
}

// Create inserts a new user. CreatedAt and UpdatedAt are filled from the database.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	sql, args, err := squirrel.Insert("users").
		Columns(
			"id", "email", "password_hash", "name", "age", "role",
			"major", "middle", "minor", "career",
			"rating_sum", "rating_count", "rating_avg", "trust_tier", "trust_score",
		).
		Values(
			user.ID, user.Email, user.PasswordHash, user.Name, user.Age, string(user.Role),
			user.Category.Major, user.Category.Middle, user.Category.Minor, user.Career,
			user.Rating.Sum, user.Rating.Count, user.Rating.Avg, string(user.Rating.Tier), user.Rating.TrustScore,
		).
		Suffix("RETURNING created_at, updated_at").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&user.CreatedAt, &user.UpdatedAt); err != nil {
		if dberrors.IsDuplicateConstraintError(err, usersEmailConstraint) {
			return apperrors.ErrEmailAlreadyExists
		}
		return fmt.Errorf("error creating user: %w", err)
	}
	return nil
}

func (r *UserRepository) getOne(ctx context.Context, where squirrel.Sqlizer) (*models.User, error) {
	sql, args, err := squirrel.Select(userColumns...).
		From("users").
		Where(where).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	user, err := scanUser(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFoundUser()
		}
		return nil, fmt.Errorf("error retrieving user: %w", err)
	}
	return user, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByEmail retrieves a user by email, case insensitively
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, squirrel.Eq{"email": strings.ToLower(strings.TrimSpace(email))})
}

// GetByIDs loads several users at once, keyed by ID. Unknown IDs are absent from the map.
func (r *UserRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*models.User, error) {
	out := make(map[string]*models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	sql, args, err := squirrel.Select(userColumns...).
		From("users").
		Where(squirrel.Eq{"id": ids}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	users, err := r.query(ctx, sql, args)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

// UpdateProfile persists the editable profile fields
func (r *UserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	sql, args, err := squirrel.Update("users").
		Set("name", user.Name).
		Set("age", user.Age).
		Set("major", user.Category.Major).
		Set("middle", user.Category.Middle).
		Set("minor", user.Category.Minor).
		Set("career", user.Career).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": user.ID}).
		Suffix("RETURNING updated_at").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	if err := r.db.QueryRow(ctx, sql, args...).Scan(&user.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return notFoundUser()
		}
		return fmt.Errorf("error updating user: %w", err)
	}
	return nil
}

// Search lists users matching the directory filter, newest first
func (r *UserRepository) Search(ctx context.Context, filter models.DirectoryFilter) ([]*models.User, error) {
	qb := squirrel.Select(userColumns...).
		From("users").
		OrderBy("created_at DESC").
		PlaceholderFormat(squirrel.Dollar)

	if filter.Role != "" {
		qb = qb.Where(squirrel.Eq{"role": string(filter.Role)})
	}
	if filter.Category.Major != "" {
		qb = qb.Where(squirrel.Eq{"major": filter.Category.Major})
	}
	if filter.Category.Middle != "" {
		qb = qb.Where(squirrel.Eq{"middle": filter.Category.Middle})
	}
	if filter.Category.Minor != "" {
		qb = qb.Where(squirrel.Eq{"minor": filter.Category.Minor})
	}
	if filter.Tier != "" {
		qb = qb.Where(squirrel.Eq{"trust_tier": string(filter.Tier)})
	}
	if filter.Limit > 0 {
		qb = qb.Limit(uint64(filter.Limit))
	}

	sql, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}
	return r.query(ctx, sql, args)
}

func (r *UserRepository) query(ctx context.Context, sql string, args []interface{}) ([]*models.User, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}
	return users, nil
}
