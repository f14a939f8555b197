package application

import (
	"context"
	"expvar"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-directory/internal/domain/entity"
	"github.com/oksasatya/user-directory/pkg/helpers"
	"github.com/oksasatya/user-directory/pkg/mailer"
	tpl "github.com/oksasatya/user-directory/pkg/mailer/templates"
)

// metrics is published at /debug/vars under "users".
var metrics = expvar.NewMap("users")

type requestMetaKey struct{}

// RequestMeta carries caller details recorded in audit logs and notifications.
type RequestMeta struct {
	IP        string
	UserAgent string
}

// WithRequestMeta attaches caller details to ctx.
func WithRequestMeta(ctx context.Context, m RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, m)
}

func requestMetaFrom(ctx context.Context) RequestMeta {
	m, _ := ctx.Value(requestMetaKey{}).(RequestMeta)
	return m
}

func profileKey(userID string) string {
	return "user:profile:" + userID
}

// cachedProfile is the Redis representation of a user; it never holds the password hash.
type cachedProfile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	AvatarURL string    `json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *Service) cacheUser(ctx context.Context, u *entity.User) {
	if s.Redis == nil {
		return
	}
	p := cachedProfile{ID: u.ID, Email: u.Email, Username: u.Username, AvatarURL: u.AvatarURL, CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt}
	if err := helpers.RedisSetJSON(ctx, s.Redis, profileKey(u.ID), p, s.CacheTTL); err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("cache user failed")
	}
}

func (s *Service) cachedUser(ctx context.Context, id string) (*entity.User, bool) {
	if s.Redis == nil {
		return nil, false
	}
	var p cachedProfile
	ok, err := helpers.RedisGetJSON(ctx, s.Redis, profileKey(id), &p)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", id).Warn("read cached user failed")
		return nil, false
	}
	if !ok {
		return nil, false
	}
	return &entity.User{ID: p.ID, Email: p.Email, Username: p.Username, AvatarURL: p.AvatarURL, CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt}, true
}

func (s *Service) invalidate(ctx context.Context, id string) {
	if s.Redis == nil {
		return
	}
	if err := helpers.RedisDel(ctx, s.Redis, profileKey(id)); err != nil {
		s.Logger.WithError(err).WithField("user_id", id).Warn("invalidate cached user failed")
	}
}

func (s *Service) audit(ctx context.Context, u *entity.User, action string, metadata map[string]any) {
	if s.Audit == nil {
		return
	}
	meta := requestMetaFrom(ctx)
	l := &entity.AuditLog{
		UserID:    u.ID,
		Email:     u.Email,
		Action:    action,
		IP:        meta.IP,
		UserAgent: meta.UserAgent,
		Metadata:  metadata,
	}
	if err := s.Audit.Insert(ctx, l); err != nil {
		s.Logger.WithError(err).WithFields(logrus.Fields{"user_id": u.ID, "action": action}).Warn("audit insert failed")
	}
}

func (s *Service) indexUser(ctx context.Context, u *entity.User) {
	if s.Indexer == nil {
		return
	}
	doc := map[string]any{
		"id":         u.ID,
		"email":      u.Email,
		"username":   u.Username,
		"avatar_url": u.AvatarURL,
		"created_at": u.CreatedAt.Format(time.RFC3339Nano),
		"updated_at": u.UpdatedAt.Format(time.RFC3339Nano),
	}
	if err := s.Indexer.Put(ctx, u.ID, doc); err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("es index failed")
	}
}

func (s *Service) mailEnabled() bool {
	return s.Mail != nil && s.Cfg != nil && s.Cfg.MailSendEnabled
}

func (s *Service) notifyCreated(ctx context.Context, u *entity.User) {
	if !s.mailEnabled() {
		return
	}
	meta := requestMetaFrom(ctx)
	data := tpl.NewUserCreatedData(s.Cfg, u.Username, u.Email,
		tpl.WithTime(time.Now()),
		tpl.WithAvatar(u.AvatarURL),
		tpl.WithIP(meta.IP),
		tpl.WithUserAgent(meta.UserAgent),
	)
	s.publish(ctx, mailer.EmailJob{To: u.Email, Template: tpl.UserCreated, Data: data})
}

func (s *Service) notifyUpdated(ctx context.Context, u *entity.User, changes map[string]string) {
	if !s.mailEnabled() {
		return
	}
	meta := requestMetaFrom(ctx)
	data := tpl.NewProfileUpdatedData(s.Cfg, u.Username, u.Email, changes,
		tpl.WithTime(time.Now()),
		tpl.WithIP(meta.IP),
		tpl.WithUserAgent(meta.UserAgent),
	)
	s.publish(ctx, mailer.EmailJob{To: u.Email, Template: tpl.ProfileUpdated, Data: data})
}

func (s *Service) publish(ctx context.Context, job mailer.EmailJob) {
	if err := s.Mail.PublishJSON(ctx, job); err != nil {
		s.Logger.WithError(err).WithField("template", job.Template).Warn("failed to publish email job")
	}
}

func changedFields(changes map[string]string) []string {
	out := make([]string, 0, len(changes))
	for k := range changes {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
