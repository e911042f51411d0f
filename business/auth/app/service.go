package app

import (
	"context"

	"golang.org/x/sync/singleflight"

	"github.com/fd1az/naijatrade/business/auth/domain"
	"github.com/fd1az/naijatrade/internal/apm"
	"github.com/fd1az/naijatrade/internal/apperror"
	"github.com/fd1az/naijatrade/internal/logger"
	"github.com/fd1az/naijatrade/internal/query"
	"github.com/fd1az/naijatrade/internal/store"
)

var (
	// KeyMe caches the signed-in account.
	KeyMe = query.Key{"me"}
	// KeyTelegramStatus caches whether Telegram alerts are linked.
	KeyTelegramStatus = query.Key{"telegram", "status"}
)

// Service signs users in and out. It is the only writer of the session.
type Service struct {
	api     AuthAPI
	session *store.Session
	queries *query.Client
	log     logger.LoggerInterface
	tracer  apm.Tracer
	google  bool

	refreshing singleflight.Group
}

// NewService creates a Service. Google sign-in is rejected unless
// googleEnabled is set.
func NewService(api AuthAPI, session *store.Session, queries *query.Client, log logger.LoggerInterface, googleEnabled bool) *Service {
	return &Service{
		api:     api,
		session: session,
		queries: queries,
		log:     log,
		tracer:  apm.NewTracer("auth"),
		google:  googleEnabled,
	}
}

// GoogleEnabled reports whether Google sign-in is offered.
func (s *Service) GoogleEnabled() bool {
	return s.google
}

// Login exchanges credentials for tokens, loads the profile with the new
// token and stores both.
func (s *Service) Login(ctx context.Context, email, password string) (domain.User, error) {
	ctx, span := s.tracer.StartSpanFromContext(ctx, "auth.login")
	defer span.End()

	tokens, err := s.api.Login(ctx, domain.Credentials{Email: email, Password: password})
	if err != nil {
		span.NoticeError(err)
		return domain.User{}, err
	}
	return s.establish(ctx, tokens)
}

// GoogleLogin signs in with a Google ID token.
func (s *Service) GoogleLogin(ctx context.Context, idToken string) (domain.User, error) {
	if !s.google {
		return domain.User{}, apperror.New(apperror.CodeConfigurationError,
			apperror.WithMessage("Google sign-in is not configured"))
	}

	ctx, span := s.tracer.StartSpanFromContext(ctx, "auth.google")
	defer span.End()

	tokens, err := s.api.GoogleLogin(ctx, idToken)
	if err != nil {
		span.NoticeError(err)
		return domain.User{}, err
	}
	return s.establish(ctx, tokens)
}

func (s *Service) establish(ctx context.Context, tokens domain.Tokens) (domain.User, error) {
	user, err := s.api.CurrentUser(ctx, tokens.AccessToken)
	if err != nil {
		return domain.User{}, err
	}
	if err := s.session.SetAuth(ctx, user.Profile(), tokens.Session()); err != nil {
		s.log.Warn(ctx, "signed in for this run only", "error", err)
	}
	s.queries.Invalidate(KeyMe)
	s.log.Info(ctx, "signed in", "user", user.ID)
	return user, nil
}

// Register creates an account. It does not sign in.
func (s *Service) Register(ctx context.Context, form *domain.RegisterForm) (domain.User, error) {
	ctx, span := s.tracer.StartSpanFromContext(ctx, "auth.register")
	defer span.End()

	user, err := s.api.Register(ctx, form)
	if err != nil {
		span.NoticeError(err)
	}
	return user, err
}

// Me reads the signed-in account.
func (s *Service) Me(ctx context.Context) (domain.User, error) {
	return query.Fetch(ctx, s.queries, KeyMe, s.fetchMe)
}

// WatchMe subscribes to the signed-in account.
func (s *Service) WatchMe() *query.Subscription[domain.User] {
	return query.Subscribe(s.queries, KeyMe, s.fetchMe)
}

func (s *Service) fetchMe(ctx context.Context) (domain.User, error) {
	return s.api.CurrentUser(ctx, "")
}

// UpdateProfile edits the account and mirrors the result into the session.
func (s *Service) UpdateProfile(ctx context.Context, patch domain.ProfilePatch) (domain.User, error) {
	if patch.Empty() {
		return s.Me(ctx)
	}
	user, err := query.Mutate(ctx, s.queries, func(ctx context.Context) (domain.User, error) {
		return s.api.UpdateProfile(ctx, patch)
	}, KeyMe)
	if err != nil {
		return user, err
	}
	if err := s.session.SetProfile(ctx, user.Profile()); err != nil {
		s.log.Warn(ctx, "profile not persisted", "error", err)
	}
	return user, nil
}

// RequestPasswordReset asks the server to email a reset link.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	return s.api.RequestPasswordReset(ctx, email)
}

// Refresh swaps the refresh token for a new pair. Concurrent callers share
// one request. A rejected refresh ends the session; transient failures keep
// it for the next attempt.
func (s *Service) Refresh(ctx context.Context) error {
	_, err, _ := s.refreshing.Do("refresh", func() (any, error) {
		rt, ok := s.session.RefreshToken()
		if !ok {
			return nil, apperror.New(apperror.CodeSessionExpired, apperror.WithMessage("not signed in"))
		}

		tokens, err := s.api.Refresh(ctx, rt)
		if err != nil {
			switch apperror.KindOf(err) {
			case apperror.KindNetwork, apperror.KindServer, apperror.KindCanceled:
			default:
				s.log.Info(ctx, "token refresh rejected, signing out", "error", err)
				s.session.Logout(ctx)
			}
			return nil, err
		}

		if err := s.session.SetTokens(ctx, tokens.Session()); err != nil {
			s.log.Warn(ctx, "refreshed tokens not persisted", "error", err)
		}
		return nil, nil
	})
	return err
}

// Logout tells the server and clears the session. The server call is
// best effort: the local session ends either way.
func (s *Service) Logout(ctx context.Context) {
	if s.session.Snapshot().Authenticated() {
		if err := s.api.Logout(ctx); err != nil {
			s.log.Debug(ctx, "server logout failed", "error", err)
		}
	}
	s.session.Logout(ctx)
}

// TelegramStatus reads whether the account is linked to a Telegram chat.
func (s *Service) TelegramStatus(ctx context.Context) (domain.TelegramStatus, error) {
	return query.Fetch(ctx, s.queries, KeyTelegramStatus, s.api.TelegramStatus)
}

// WatchTelegramStatus subscribes to the link status.
func (s *Service) WatchTelegramStatus() *query.Subscription[domain.TelegramStatus] {
	return query.Subscribe(s.queries, KeyTelegramStatus, s.api.TelegramStatus)
}

// LinkTelegram asks for a one-time link token. Linking completes in the bot,
// so the status is refreshed by the caller once the user is done.
func (s *Service) LinkTelegram(ctx context.Context) (domain.TelegramLink, error) {
	ctx, span := s.tracer.StartSpanFromContext(ctx, "auth.telegram.link")
	defer span.End()

	link, err := query.Mutate(ctx, s.queries, s.api.TelegramLinkToken)
	if err != nil {
		span.NoticeError(err)
	}
	return link, err
}

// RefreshTelegramStatus marks the link status stale, e.g. after the user
// returns from the bot.
func (s *Service) RefreshTelegramStatus() {
	s.queries.Invalidate(KeyTelegramStatus)
}

// UnlinkTelegram stops Telegram alerts.
func (s *Service) UnlinkTelegram(ctx context.Context) (domain.Notice, error) {
	ctx, span := s.tracer.StartSpanFromContext(ctx, "auth.telegram.unlink")
	defer span.End()

	n, err := query.Mutate(ctx, s.queries, s.api.UnlinkTelegram, KeyTelegramStatus)
	if err != nil {
		span.NoticeError(err)
	}
	return n, err
}

// SendTelegramTest asks the bot to send a test message to the linked chat.
func (s *Service) SendTelegramTest(ctx context.Context) (domain.Notice, error) {
	return query.Mutate(ctx, s.queries, s.api.SendTelegramTest)
}
