package application

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/oktaviandi/auth-portal/internal/domain/entity"
	repo "github.com/oktaviandi/auth-portal/internal/domain/repository"
	"github.com/oktaviandi/auth-portal/internal/oauth"
	"github.com/oktaviandi/auth-portal/pkg/helpers"
	"github.com/oktaviandi/auth-portal/pkg/mailer"
)

// Service is the authentication application layer. It composes the two
// authenticator strategies with signup, session restore, and the side
// channels (email jobs, search indexing).
type Service struct {
	Repo         repo.UserRepository
	Local        *LocalAuthenticator
	Google       *GoogleAuthenticator
	Logger       *logrus.Logger
	Pub          *helpers.RabbitPublisher
	ES           *elasticsearch.Client
	ESUsersIndex string
	MailEnabled  bool
}

func NewService(r repo.UserRepository, logger *logrus.Logger, pub *helpers.RabbitPublisher, es *elasticsearch.Client, esUsersIndex string, googleAutoLink, mailEnabled bool) *Service {
	return &Service{
		Repo:         r,
		Local:        &LocalAuthenticator{Repo: r},
		Google:       &GoogleAuthenticator{Repo: r, AutoLink: googleAutoLink},
		Logger:       logger,
		Pub:          pub,
		ES:           es,
		ESUsersIndex: esUsersIndex,
		MailEnabled:  mailEnabled,
	}
}

// Signup hashes the password and inserts the new user. The database unique
// constraint on email is the only duplicate guard; a violation surfaces as
// repository.ErrDuplicateEmail. The new user is not logged in.
func (s *Service) Signup(ctx context.Context, fullName, email, password string) (*entity.User, error) {
	hash, err := helpers.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &entity.User{
		Email:    email,
		FullName: fullName,
		Password: hash,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		return nil, err
	}

	s.Logger.WithFields(logrus.Fields{"user_id": u.ID, "email": u.Email}).Info("user signed up")
	_ = s.indexUser(ctx, u)
	if s.MailEnabled && s.Pub != nil {
		if err := s.Pub.PublishJSON(ctx, mailer.NewWelcomeJob(u.Email, u.FullName)); err != nil {
			s.Logger.WithError(err).Warn("enqueue welcome email failed")
		}
	}
	return u, nil
}

// LoginLocal runs the local strategy.
func (s *Service) LoginLocal(ctx context.Context, email, password string) (*entity.User, error) {
	return s.Local.Attempt(ctx, email, password)
}

// LoginGoogle runs the federated strategy. A first login creates the account
// and gets the same side effects as a signup.
func (s *Service) LoginGoogle(ctx context.Context, profile *oauth.Profile) (*entity.User, error) {
	u, created, err := s.Google.Attempt(ctx, profile)
	if err != nil {
		return nil, err
	}
	if created {
		s.Logger.WithFields(logrus.Fields{"user_id": u.ID, "email": u.Email}).Info("user created via google login")
		_ = s.indexUser(ctx, u)
		if s.MailEnabled && s.Pub != nil {
			if perr := s.Pub.PublishJSON(ctx, mailer.NewWelcomeJob(u.Email, u.FullName)); perr != nil {
				s.Logger.WithError(perr).Warn("enqueue welcome email failed")
			}
		}
	}
	return u, nil
}

// GetUser rehydrates a user from the store during session restore.
func (s *Service) GetUser(ctx context.Context, id string) (*entity.User, error) {
	return s.Repo.GetByID(ctx, id)
}

// NotifyLogin enqueues a login-notification email. Failures are logged, not
// surfaced; notification delivery never blocks a login.
func (s *Service) NotifyLogin(ctx context.Context, u *entity.User, ip string) {
	if !s.MailEnabled || s.Pub == nil {
		return
	}
	job := mailer.NewLoginNotificationJob(u.Email, u.FullName, ip, time.Now())
	if err := s.Pub.PublishJSON(ctx, job); err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("enqueue login notification failed")
	}
}

func (s *Service) indexUser(ctx context.Context, u *entity.User) error {
	if s.ES == nil || s.ESUsersIndex == "" {
		return nil
	}
	doc := map[string]any{
		"id":         u.ID,
		"email":      u.Email,
		"full_name":  u.FullName,
		"created_at": u.CreatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESUsersIndex, DocumentID: u.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("es index failed")
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		s.Logger.WithField("status", res.Status()).WithField("user_id", u.ID).Warn("es index response error")
	}
	return nil
}

// SearchUsers performs a simple multi_match search on email and full name.
func (s *Service) SearchUsers(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESUsersIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"email^2", "full_name"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(s.ES.Search.WithContext(c), s.ES.Search.WithIndex(s.ESUsersIndex), s.ES.Search.WithBody(strings.NewReader(string(b))))
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
