package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dreamline/mentorlink/internal/app/models"
	"github.com/dreamline/mentorlink/internal/app/models/dto"
	"github.com/dreamline/mentorlink/internal/app/repositories"
	"github.com/dreamline/mentorlink/internal/pkg/apperrors"
	"github.com/dreamline/mentorlink/internal/pkg/filestorage"
	"github.com/dreamline/mentorlink/internal/pkg/helpers"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const boardImagesDir = "boardImages"

// PostService runs the board
type PostService interface {
	CreatePost(ctx context.Context, identity models.Identity, req *dto.CreatePostRequest, image *Upload) (*dto.PostResponse, error)
	GetPost(ctx context.Context, identity models.Identity, postID string) (*dto.PostResponse, error)
	ListPosts(ctx context.Context, identity models.Identity, query *dto.PostListQuery, page helpers.Page) (*dto.PaginatedResponse, error)
	SearchPosts(ctx context.Context, identity models.Identity, query *dto.PostSearchQuery) ([]dto.PostResponse, error)
	ToggleLike(ctx context.Context, identity models.Identity, postID string) (*dto.LikeResponse, error)
	AddComment(ctx context.Context, identity models.Identity, postID, text string) (*models.Comment, error)
	ListComments(ctx context.Context, identity models.Identity, postID string) ([]*models.Comment, error)
}

type postServiceImpl struct {
	postRepo    repositories.IPostRepository
	userRepo    repositories.IUserRepository
	fileStorage filestorage.FileStorage
	logger      zerolog.Logger
	now         func() time.Time
}

// NewPostService creates a new PostService
func NewPostService(
	repos *repositories.Repositories,
	fileStorage filestorage.FileStorage,
	logger zerolog.Logger,
	now func() time.Time,
) PostService {
	return &postServiceImpl{
		postRepo:    repos.Posts,
		userRepo:    repos.Users,
		fileStorage: fileStorage,
		logger:      logger,
		now:         now,
	}
}

// CreatePost publishes a board entry. The tab follows the author's role.
func (s *postServiceImpl) CreatePost(ctx context.Context, identity models.Identity, req *dto.CreatePostRequest, image *Upload) (*dto.PostResponse, error) {
	if err := requireIdentity(identity); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title", "Title is required")
	}
	topic := models.Category{Major: req.Major, Middle: req.Middle, Minor: req.Minor}
	if !models.ValidCategory(topic, true) {
		return nil, apperrors.NewValidationError("major", "Unknown category")
	}

	author, err := s.userRepo.GetByID(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	post := &models.Post{
		ID:         uuid.New().String(),
		Category:   models.PostCategoryFor(author.Role),
		Topic:      topic.Normalize(),
		Title:      title,
		Content:    strings.TrimSpace(req.Content),
		AuthorID:   author.ID,
		AuthorName: author.Name,
		AuthorRole: author.Role,
		Likes:      []string{},
		CreatedAt:  now,
	}

	if image != nil {
		url, err := storeImage(s.fileStorage, boardImagesDir, image, now)
		if err != nil {
			return nil, err
		}
		post.ImageURL = url
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		if post.ImageURL != "" {
			_ = s.fileStorage.Delete(post.ImageURL)
		}
		s.logger.Error().Err(err).Str("authorID", author.ID).Msg("Failed to create post")
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	s.logger.Info().Str("postID", post.ID).Str("category", string(post.Category)).Msg("Post created")
	resp := dto.ToPostResponse(post, identity.UserID)
	return &resp, nil
}

// GetPost returns one post
func (s *postServiceImpl) GetPost(ctx context.Context, identity models.Identity, postID string) (*dto.PostResponse, error) {
	if err := requireIdentity(identity); err != nil {
		return nil, err
	}

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	resp := dto.ToPostResponse(post, identity.UserID)
	return &resp, nil
}

// ListPosts pages through the board newest first
func (s *postServiceImpl) ListPosts(ctx context.Context, identity models.Identity, query *dto.PostListQuery, page helpers.Page) (*dto.PaginatedResponse, error) {
	if err := requireIdentity(identity); err != nil {
		return nil, err
	}
	if query.Category != "" && !query.Category.Valid() {
		return nil, apperrors.NewValidationError("category", "Unknown board category")
	}

	posts, total, err := s.postRepo.List(ctx, models.PostFilter{
		Category: query.Category,
		Major:    strings.TrimSpace(query.Major),
		Offset:   page.Offset(),
		Limit:    page.Size,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list posts")
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	return &dto.PaginatedResponse{
		Items:      dto.ToPostResponses(posts, identity.UserID),
		Pagination: page.Info(total),
	}, nil
}

// SearchPosts matches the keyword against the titles of the newest posts
func (s *postServiceImpl) SearchPosts(ctx context.Context, identity models.Identity, query *dto.PostSearchQuery) ([]dto.PostResponse, error) {
	if err := requireIdentity(identity); err != nil {
		return nil, err
	}
	if models.NormalizeSearchText(query.Keyword) == "" {
		return nil, apperrors.NewValidationError("q", "Search keyword is required")
	}

	recent, err := s.postRepo.Recent(ctx, strings.TrimSpace(query.Major), models.SearchWindow)
	if err != nil {
		return nil, fmt.Errorf("failed to load posts: %w", err)
	}

	matched := make([]*models.Post, 0)
	for _, p := range recent {
		if models.MatchesKeyword(p.Title, query.Keyword) {
			matched = append(matched, p)
		}
	}
	return dto.ToPostResponses(matched, identity.UserID), nil
}

// ToggleLike adds or removes the caller's like
func (s *postServiceImpl) ToggleLike(ctx context.Context, identity models.Identity, postID string) (*dto.LikeResponse, error) {
	if err := requireIdentity(identity); err != nil {
		return nil, err
	}

	post, err := s.postRepo.ToggleLike(ctx, postID, identity.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to toggle like: %w", err)
	}
	return &dto.LikeResponse{Liked: post.LikedBy(identity.UserID), LikeCount: len(post.Likes)}, nil
}

// AddComment appends a comment to a post
func (s *postServiceImpl) AddComment(ctx context.Context, identity models.Identity, postID, text string) (*models.Comment, error) {
	if err := requireIdentity(identity); err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.NewValidationError("text", "Comment text is required")
	}

	author, err := s.userRepo.GetByID(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		ID:         uuid.New().String(),
		PostID:     postID,
		Text:       text,
		AuthorID:   author.ID,
		AuthorName: author.Name,
		AuthorRole: author.Role,
		CreatedAt:  s.now(),
	}
	if err := s.postRepo.AddComment(ctx, comment); err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("postID", postID).Msg("Failed to add comment")
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}
	return comment, nil
}

// ListComments returns a post's comments oldest first
func (s *postServiceImpl) ListComments(ctx context.Context, identity models.Identity, postID string) ([]*models.Comment, error) {
	if err := requireIdentity(identity); err != nil {
		return nil, err
	}
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	return s.postRepo.ListComments(ctx, postID)
}
