package auth_test

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fd1az/naijatrade/business/auth/app"
	"github.com/fd1az/naijatrade/business/auth/domain"
	"github.com/fd1az/naijatrade/business/auth/infra/rest"
	"github.com/fd1az/naijatrade/internal/api"
	"github.com/fd1az/naijatrade/internal/apitest"
	"github.com/fd1az/naijatrade/internal/apperror"
	"github.com/fd1az/naijatrade/internal/logger"
	"github.com/fd1az/naijatrade/internal/query"
	"github.com/fd1az/naijatrade/internal/store"
)

type authBackend struct {
	*apitest.Backend
	mu        sync.Mutex
	user      domain.User
	password  string
	issued    int
	access    map[string]bool
	refresh   map[string]bool
	refreshUp bool
	meAuth    []string

	chatID    int64
	linkToken string
	testFails bool
}

func newAuthBackend() *authBackend {
	b := &authBackend{
		Backend:   apitest.NewBackend(),
		user:      domain.User{ID: "u-1", Email: "ada@example.com", FirstName: "Ada", IsActive: true},
		password:  "correct horse",
		access:    make(map[string]bool),
		refresh:   make(map[string]bool),
		refreshUp: true,
	}
	b.Handle(http.MethodPost, "/auth/login", b.login)
	b.Handle(http.MethodPost, "/auth/register", b.register)
	b.Handle(http.MethodGet, "/auth/me", b.me)
	b.Handle(http.MethodPut, "/auth/me", b.updateMe)
	b.Handle(http.MethodPost, "/auth/refresh", b.refreshTokens)
	b.Handle(http.MethodPost, "/auth/google", b.google)
	b.Handle(http.MethodPost, "/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		apitest.JSON(w, http.StatusOK, map[string]string{"message": "Successfully logged out"})
	})
	b.Handle(http.MethodGet, "/telegram/status", b.telegramStatus)
	b.Handle(http.MethodGet, "/telegram/link-token", b.telegramLinkToken)
	b.Handle(http.MethodDelete, "/telegram/unlink", b.telegramUnlink)
	b.Handle(http.MethodPost, "/telegram/test", b.telegramTest)
	return b
}

func (b *authBackend) issueLocked() domain.Tokens {
	b.issued++
	n := strconv.Itoa(b.issued)
	t := domain.Tokens{AccessToken: "acc-" + n, RefreshToken: "ref-" + n, TokenType: "bearer"}
	b.access[t.AccessToken] = true
	b.refresh[t.RefreshToken] = true
	return t
}

func (b *authBackend) login(w http.ResponseWriter, r *http.Request) {
	var creds domain.Credentials
	if err := apitest.Decode(r, &creds); err != nil {
		apitest.Detail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if creds.Email != b.user.Email || creds.Password != b.password {
		apitest.Detail(w, http.StatusUnauthorized, "Incorrect email or password")
		return
	}
	apitest.JSON(w, http.StatusOK, b.issueLocked())
}

func (b *authBackend) register(w http.ResponseWriter, r *http.Request) {
	var form domain.RegisterForm
	if err := apitest.Decode(r, &form); err != nil {
		apitest.Detail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if form.Email == "ada@example.com" {
		apitest.Detail(w, http.StatusBadRequest, "Email already registered")
		return
	}
	apitest.JSON(w, http.StatusCreated, domain.User{ID: "u-2", Email: form.Email, FirstName: form.FirstName, IsActive: true})
}

func (b *authBackend) authorized(r *http.Request) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	tok := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	b.meAuth = append(b.meAuth, tok)
	return b.access[tok]
}

func (b *authBackend) me(w http.ResponseWriter, r *http.Request) {
	if !b.authorized(r) {
		apitest.Detail(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	apitest.JSON(w, http.StatusOK, b.user)
}

func (b *authBackend) updateMe(w http.ResponseWriter, r *http.Request) {
	if !b.authorized(r) {
		apitest.Detail(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}
	var patch domain.ProfilePatch
	if err := apitest.Decode(r, &patch); err != nil {
		apitest.Detail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if patch.FirstName != nil {
		b.user.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		b.user.LastName = *patch.LastName
	}
	apitest.JSON(w, http.StatusOK, b.user)
}

func (b *authBackend) refreshTokens(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.refreshUp {
		apitest.Detail(w, http.StatusServiceUnavailable, "maintenance")
		return
	}
	rt := r.URL.Query().Get("refresh_token")
	if !b.refresh[rt] {
		apitest.Detail(w, http.StatusUnauthorized, "Invalid token type")
		return
	}
	delete(b.refresh, rt)
	apitest.JSON(w, http.StatusOK, b.issueLocked())
}

func (b *authBackend) google(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Token string `json:"token"`
	}
	if err := apitest.Decode(r, &body); err != nil || body.Token != "google-id-token" {
		apitest.Detail(w, http.StatusUnauthorized, "Invalid Google token")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	apitest.JSON(w, http.StatusOK, b.issueLocked())
}

func (b *authBackend) telegramStatus(w http.ResponseWriter, r *http.Request) {
	if !b.authorized(r) {
		apitest.Detail(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.chatID == 0 {
		apitest.JSON(w, http.StatusOK, map[string]any{"linked": false, "chat_id": nil})
		return
	}
	apitest.JSON(w, http.StatusOK, map[string]any{"linked": true, "chat_id": b.chatID})
}

func (b *authBackend) telegramLinkToken(w http.ResponseWriter, r *http.Request) {
	if !b.authorized(r) {
		apitest.Detail(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.linkToken = "link-" + strconv.Itoa(b.Calls(http.MethodGet, "/telegram/link-token"))
	apitest.JSON(w, http.StatusOK, domain.TelegramLink{
		Token:        b.linkToken,
		ExpiresIn:    600,
		BotURL:       "https://t.me/NaijaTradeBot?start=" + b.linkToken,
		Instructions: "Open the link and press Start.",
	})
}

// completeLink stands in for the user pressing Start in the bot.
func (b *authBackend) completeLink(chatID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.linkToken != "" {
		b.chatID = chatID
		b.linkToken = ""
	}
}

func (b *authBackend) telegramUnlink(w http.ResponseWriter, r *http.Request) {
	if !b.authorized(r) {
		apitest.Detail(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.chatID == 0 {
		apitest.Detail(w, http.StatusBadRequest, "Telegram not linked")
		return
	}
	b.chatID = 0
	apitest.JSON(w, http.StatusOK, domain.Notice{Message: "Telegram unlinked successfully"})
}

func (b *authBackend) telegramTest(w http.ResponseWriter, r *http.Request) {
	if !b.authorized(r) {
		apitest.Detail(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	switch {
	case b.chatID == 0:
		apitest.Detail(w, http.StatusBadRequest, "Telegram not linked")
	case b.testFails:
		apitest.Detail(w, http.StatusInternalServerError, "Failed to send test message")
	default:
		apitest.JSON(w, http.StatusOK, domain.Notice{Message: "Test message sent!"})
	}
}

func (b *authBackend) lastMeAuth() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.meAuth) == 0 {
		return ""
	}
	return b.meAuth[len(b.meAuth)-1]
}

type fixture struct {
	svc     *app.Service
	session *store.Session
	queries *query.Client
	backend *authBackend
}

func newFixture(t *testing.T, google bool) fixture {
	t.Helper()
	b := newAuthBackend()
	session := store.NewSession(store.NewMemoryPersister(), logger.Nop())
	qc := query.NewClient(query.WithDefaults(query.RefetchInterval(0)))
	t.Cleanup(qc.Close)
	client := b.Start(t, api.WithTokenSource(session))
	return fixture{
		svc:     app.NewService(rest.NewClient(client), session, qc, logger.Nop(), google),
		session: session,
		queries: qc,
		backend: b,
	}
}

func TestLoginStoresProfileAndTokens(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	user, err := f.svc.Login(ctx, "ada@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "u-1", user.ID)

	snap := f.session.Snapshot()
	require.True(t, snap.Authenticated())
	assert.Equal(t, "acc-1", snap.Tokens.AccessToken)
	assert.Equal(t, "ref-1", snap.Tokens.RefreshToken)
	assert.Equal(t, "Ada", snap.Profile.DisplayName())
	assert.Equal(t, "acc-1", f.backend.lastMeAuth())

	me, err := f.svc.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", me.Email)
}

func TestLoginFailures(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	_, err := f.svc.Login(ctx, "ada@example.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, apperror.KindAuth, apperror.KindOf(err))
	assert.False(t, f.session.Snapshot().Authenticated())

	_, err = f.svc.Login(ctx, "not-an-email", "x")
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidInput))

	_, err = f.svc.Login(ctx, "", "")
	assert.True(t, apperror.HasCode(err, apperror.CodeRequiredField))
	assert.Equal(t, 1, f.backend.Calls(http.MethodPost, "/auth/login"))
}

func TestRegister(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	user, err := f.svc.Register(ctx, domain.NewRegisterForm(" grace@example.com ", "longenough").SetName("Grace", "Hopper"))
	require.NoError(t, err)
	assert.Equal(t, "grace@example.com", user.Email)
	assert.False(t, f.session.Snapshot().Authenticated())

	_, err = f.svc.Register(ctx, domain.NewRegisterForm("ada@example.com", "longenough"))
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	_, err = f.svc.Register(ctx, domain.NewRegisterForm("short@example.com", "short"))
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidInput))
	assert.Equal(t, 2, f.backend.Calls(http.MethodPost, "/auth/register"))
}

func TestRefresh(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	_, err := f.svc.Login(ctx, "ada@example.com", "correct horse")
	require.NoError(t, err)

	require.NoError(t, f.svc.Refresh(ctx))
	snap := f.session.Snapshot()
	assert.Equal(t, "acc-2", snap.Tokens.AccessToken)
	assert.Equal(t, "u-1", snap.Profile.ID)

	f.backend.mu.Lock()
	f.backend.refreshUp = false
	f.backend.mu.Unlock()
	require.Error(t, f.svc.Refresh(ctx))
	assert.True(t, f.session.Snapshot().Authenticated())

	f.backend.mu.Lock()
	f.backend.refreshUp = true
	f.backend.refresh = map[string]bool{}
	f.backend.mu.Unlock()
	err = f.svc.Refresh(ctx)
	assert.Equal(t, apperror.KindAuth, apperror.KindOf(err))
	assert.False(t, f.session.Snapshot().Authenticated())

	err = f.svc.Refresh(ctx)
	assert.True(t, apperror.HasCode(err, apperror.CodeSessionExpired))
}

func TestGoogleLogin(t *testing.T) {
	disabled := newFixture(t, false)
	_, err := disabled.svc.GoogleLogin(context.Background(), "google-id-token")
	assert.True(t, apperror.HasCode(err, apperror.CodeConfigurationError))
	assert.Zero(t, disabled.backend.Calls(http.MethodPost, "/auth/google"))

	enabled := newFixture(t, true)
	require.True(t, enabled.svc.GoogleEnabled())
	user, err := enabled.svc.GoogleLogin(context.Background(), "google-id-token")
	require.NoError(t, err)
	assert.Equal(t, "u-1", user.ID)
	assert.True(t, enabled.session.Snapshot().Authenticated())
}

func TestLogoutIsIdempotent(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	_, err := f.svc.Login(ctx, "ada@example.com", "correct horse")
	require.NoError(t, err)

	f.svc.Logout(ctx)
	f.svc.Logout(ctx)
	assert.False(t, f.session.Snapshot().Authenticated())
	assert.Equal(t, 1, f.backend.Calls(http.MethodPost, "/auth/logout"))
}

func TestUpdateProfileMirrorsSession(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	_, err := f.svc.Login(ctx, "ada@example.com", "correct horse")
	require.NoError(t, err)

	user, err := f.svc.UpdateProfile(ctx, *new(domain.ProfilePatch).SetFirstName("Augusta").SetLastName("King"))
	require.NoError(t, err)
	assert.Equal(t, "Augusta", user.FirstName)
	assert.Equal(t, "Augusta King", f.session.Snapshot().Profile.DisplayName())

	me, err := f.svc.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "King", me.LastName)
}

func TestRefresher(t *testing.T) {
	f := newFixture(t, false)
	r := app.NewRefresher(f.svc, logger.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r.RunNow(ctx)
	assert.Zero(t, f.backend.Calls(http.MethodPost, "/auth/refresh"))

	_, err := f.svc.Login(ctx, "ada@example.com", "correct horse")
	require.NoError(t, err)
	r.RunNow(ctx)
	assert.Equal(t, 1, f.backend.Calls(http.MethodPost, "/auth/refresh"))
	assert.Equal(t, "acc-2", f.session.Snapshot().Tokens.AccessToken)

	assert.Error(t, r.Start(ctx, "every now and then"))
	require.NoError(t, r.Start(ctx, "@every 1h"))
	r.Stop()
}

func TestRefreshParamOnTheWire(t *testing.T) {
	b := apitest.NewBackend()
	got := make(chan string, 1)
	b.Handle(http.MethodPost, "/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		got <- r.URL.Query().Get("refresh_token")
		apitest.JSON(w, http.StatusOK, domain.Tokens{AccessToken: "a", RefreshToken: "b"})
	})
	c := rest.NewClient(b.Start(t))

	tokens, err := c.Refresh(context.Background(), "r e/f")
	require.NoError(t, err)
	assert.Equal(t, "r e/f", <-got)
	assert.Equal(t, "a", tokens.AccessToken)
}

func TestTelegramLinking(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	_, err := f.svc.Login(ctx, "ada@example.com", "correct horse")
	require.NoError(t, err)

	status, err := f.svc.TelegramStatus(ctx)
	require.NoError(t, err)
	assert.False(t, status.Linked)
	assert.Empty(t, status.ChatLabel())

	link, err := f.svc.LinkTelegram(ctx)
	require.NoError(t, err)
	assert.Equal(t, "link-1", link.Token)
	assert.Equal(t, "https://t.me/NaijaTradeBot?start=link-1", link.BotURL)
	issued := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, issued.Add(10*time.Minute), link.Expiry(issued))

	// A new token each time, and the cached status is untouched.
	link, err = f.svc.LinkTelegram(ctx)
	require.NoError(t, err)
	assert.Equal(t, "link-2", link.Token)
	_, err = f.svc.TelegramStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, f.backend.Calls(http.MethodGet, "/telegram/status"))

	sub := f.svc.WatchTelegramStatus()
	defer sub.Close()
	assert.False(t, sub.Current().Data.Linked)

	f.backend.completeLink(4242)
	f.svc.RefreshTelegramStatus()
	assert.Eventually(t, func() bool {
		return sub.Current().Data.ChatLabel() == "4242"
	}, 2*time.Second, 10*time.Millisecond)

	n, err := f.svc.SendTelegramTest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Test message sent!", n.Message)
	assert.Equal(t, 2, f.backend.Calls(http.MethodGet, "/telegram/status"))

	n, err = f.svc.UnlinkTelegram(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Telegram unlinked successfully", n.Message)
	assert.Eventually(t, func() bool {
		st := sub.Current()
		return st.Status == query.StatusFresh && !st.Data.Linked
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 3, f.backend.Calls(http.MethodGet, "/telegram/status"))
}

func TestTelegramFailures(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	_, err := f.svc.TelegramStatus(ctx)
	assert.Equal(t, apperror.KindAuth, apperror.KindOf(err))

	_, err = f.svc.Login(ctx, "ada@example.com", "correct horse")
	require.NoError(t, err)

	tests := []struct {
		name    string
		linked  bool
		fails   bool
		call    func(context.Context) (domain.Notice, error)
		kind    apperror.Kind
		message string
	}{
		{"unlink when not linked", false, false, f.svc.UnlinkTelegram, apperror.KindValidation, "Telegram not linked"},
		{"test when not linked", false, false, f.svc.SendTelegramTest, apperror.KindValidation, "Telegram not linked"},
		{"bot unreachable", true, true, f.svc.SendTelegramTest, apperror.KindServer, "Failed to send test message"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f.backend.mu.Lock()
			f.backend.chatID = 0
			if tt.linked {
				f.backend.chatID = 7
			}
			f.backend.testFails = tt.fails
			f.backend.mu.Unlock()

			_, err := tt.call(ctx)
			require.Error(t, err)
			assert.Equal(t, tt.kind, apperror.KindOf(err))
			assert.Equal(t, tt.message, apperror.MessageOf(err))
		})
	}
}
