package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/user-directory/config"
	"github.com/oksasatya/user-directory/internal/domain/apperror"
	"github.com/oksasatya/user-directory/internal/domain/entity"
	repo "github.com/oksasatya/user-directory/internal/domain/repository"
	"github.com/oksasatya/user-directory/pkg/helpers"
	"github.com/oksasatya/user-directory/pkg/validation"
)

// Hasher is the one-way password hashing primitive.
type Hasher interface {
	Hash(plain string) (string, error)
	Verify(hash, plain string) bool
}

// Publisher enqueues JSON jobs, e.g. helpers.RabbitPublisher.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// Indexer stores a searchable copy of a document, e.g. helpers.ESIndexer.
type Indexer interface {
	Put(ctx context.Context, id string, doc any) error
}

// AvatarStorage persists avatar images and returns their public URL, e.g. helpers.GCSUploader.
type AvatarStorage interface {
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
}

// Service owns user records. Repo and Hasher are required; the rest are optional
// side channels and are skipped when nil.
type Service struct {
	Repo     repo.UserRepository
	Hasher   Hasher
	Logger   *logrus.Logger
	Audit    repo.AuditRepository
	Redis    redis.Cmdable
	CacheTTL time.Duration
	Indexer  Indexer
	Mail     Publisher
	Avatars  AvatarStorage
	Cfg      *config.Config
}

func NewService(r repo.UserRepository, hasher Hasher, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = helpers.NewNopLogger()
	}
	return &Service{Repo: r, Hasher: hasher, Logger: logger, CacheTTL: 10 * time.Minute}
}

// CreateUserInput is the payload of POST /users.
type CreateUserInput struct {
	Email    string `json:"email" binding:"required,mail"`
	Username string `json:"username" binding:"required,username"`
	Password string `json:"password" binding:"required,pwd"`
	Avatar   string `json:"avatar" binding:"omitempty,url"`
}

// UpdateUserInput is the payload of PUT /users/:id. A nil Avatar keeps the current one.
type UpdateUserInput struct {
	Email    string  `json:"email" binding:"required,mail"`
	Password string  `json:"password" binding:"required,pwd"`
	Avatar   *string `json:"avatar" binding:"omitempty,url"`
}

// AvatarUpload describes an uploaded avatar image.
type AvatarUpload struct {
	Body        io.Reader
	Filename    string
	ContentType string
	Size        int64
}

func (s *Service) validate(in any) error {
	if err := validation.Validate(in); err != nil {
		details := validation.ToDetails(err)
		metrics.Add("validation_failures", 1)
		return apperror.Validation(validation.Summary(details), details)
	}
	return nil
}

// hashPassword reports an over-long password as a validation failure rather than an internal error.
func (s *Service) hashPassword(plain string) (string, error) {
	hash, err := s.Hasher.Hash(plain)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		details := map[string]string{"password": fmt.Sprintf("must be at most %d bytes long", validation.PasswordMaxLen)}
		metrics.Add("validation_failures", 1)
		return "", apperror.Validation(validation.Summary(details), details)
	}
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return hash, nil
}

// CreateUser validates the input, hashes the password and persists a new user.
// Email and username uniqueness is enforced by the repository in the same write.
func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (*entity.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Username = strings.TrimSpace(in.Username)
	in.Avatar = strings.TrimSpace(in.Avatar)
	if err := s.validate(in); err != nil {
		return nil, err
	}

	hash, err := s.hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	u := &entity.User{
		Email:     in.Email,
		Username:  in.Username,
		Password:  hash,
		AvatarURL: in.Avatar,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		if apperror.Is(err, apperror.KindConflict) {
			metrics.Add("conflicts", 1)
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	metrics.Add("created", 1)
	s.Logger.WithFields(logrus.Fields{"user_id": u.ID, "username": u.Username}).Info("user created")

	s.audit(ctx, u, entity.AuditUserCreated, nil)
	s.indexUser(ctx, u)
	s.cacheUser(ctx, u)
	s.notifyCreated(ctx, u)
	return u, nil
}

// UpdateUser replaces email, password and (when given) avatar of an existing user.
// The password is re-hashed only when it does not already match the stored hash.
func (s *Service) UpdateUser(ctx context.Context, id string, in UpdateUserInput) (*entity.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	if in.Avatar != nil {
		a := strings.TrimSpace(*in.Avatar)
		in.Avatar = &a
	}
	if err := s.validate(in); err != nil {
		return nil, err
	}

	u, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	changes := map[string]string{}
	if u.Email != in.Email {
		changes["email"] = u.Email + " -> " + in.Email
		u.Email = in.Email
	}
	if !s.Hasher.Verify(u.Password, in.Password) {
		hash, err := s.hashPassword(in.Password)
		if err != nil {
			return nil, err
		}
		u.Password = hash
		changes["password"] = "changed"
	}
	if in.Avatar != nil && *in.Avatar != u.AvatarURL {
		changes["avatar"] = "changed"
		u.AvatarURL = *in.Avatar
	}

	if err := s.Repo.Update(ctx, u); err != nil {
		if apperror.Is(err, apperror.KindConflict) {
			metrics.Add("conflicts", 1)
			return nil, err
		}
		if apperror.Is(err, apperror.KindNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	metrics.Add("updated", 1)
	s.Logger.WithFields(logrus.Fields{"user_id": u.ID, "changed": len(changes)}).Info("user updated")

	s.invalidate(ctx, u.ID)
	s.audit(ctx, u, entity.AuditUserUpdated, map[string]any{"fields": changedFields(changes)})
	s.indexUser(ctx, u)
	if len(changes) > 0 {
		s.notifyUpdated(ctx, u, changes)
	}
	return u, nil
}

// GetUser returns a user by id, served from the Redis cache when possible.
// The returned user never carries the password hash.
func (s *Service) GetUser(ctx context.Context, id string) (*entity.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperror.NotFound("user")
	}
	if u, ok := s.cachedUser(ctx, id); ok {
		return u, nil
	}
	u, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cacheUser(ctx, u)
	u.Password = ""
	return u, nil
}

// UploadAvatar stores an image in object storage and points the user's avatar at it.
func (s *Service) UploadAvatar(ctx context.Context, id string, up AvatarUpload) (*entity.User, error) {
	if !strings.HasPrefix(strings.ToLower(up.ContentType), "image/") {
		metrics.Add("validation_failures", 1)
		return nil, apperror.Validation("avatar: must be an image", map[string]string{"avatar": "must be an image"})
	}
	if limit := s.avatarMaxBytes(); up.Size > limit {
		metrics.Add("validation_failures", 1)
		msg := fmt.Sprintf("must be at most %d bytes", limit)
		return nil, apperror.Validation("avatar: "+msg, map[string]string{"avatar": msg})
	}
	u, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.Avatars == nil {
		return nil, errors.New("avatar storage not configured")
	}

	ext := strings.ToLower(filepath.Ext(up.Filename))
	objectPath := filepath.ToSlash(filepath.Join("avatars", u.ID, uuid.NewString()+ext))
	url, err := s.Avatars.Upload(ctx, objectPath, up.ContentType, up.Body)
	if err != nil {
		return nil, fmt.Errorf("upload avatar: %w", err)
	}
	u.AvatarURL = url
	if err := s.Repo.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("update avatar: %w", err)
	}
	metrics.Add("avatars_uploaded", 1)

	s.invalidate(ctx, u.ID)
	s.audit(ctx, u, entity.AuditAvatarUploaded, map[string]any{"object": objectPath})
	s.indexUser(ctx, u)
	return u, nil
}

// load fetches a user by id, treating malformed ids as missing.
func (s *Service) load(ctx context.Context, id string) (*entity.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperror.NotFound("user")
	}
	u, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if apperror.Is(err, apperror.KindNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *Service) avatarMaxBytes() int64 {
	if s.Cfg != nil && s.Cfg.AvatarMaxBytes > 0 {
		return s.Cfg.AvatarMaxBytes
	}
	return 5 << 20
}
