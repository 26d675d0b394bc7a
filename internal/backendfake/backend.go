// Package backendfake is an in-process implementation of the subscription
// service REST surface. It backs the package tests and the fakebackend
// command used for local development.
package backendfake

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	errs "github.com/jrsteele09/go-billing-console/internal/errors"
	"github.com/jrsteele09/go-billing-console/users"
	"golang.org/x/crypto/bcrypt"
)

// ErrUserExists is returned by AddUser for a username already taken.
var ErrUserExists = fmt.Errorf("%w: user already exists", errs.ErrInvalidRequest)

const (
	defaultAccessTokenExpiry = 15 * time.Minute
	defaultSigningKey        = "backendfake-signing-key"
)

// Account is a user known to the fake backend. Roles use the backend's
// ROLE_ prefix, e.g. ROLE_ADMIN.
type Account struct {
	ID       int64
	Username string
	Email    string
	Mobile   string
	Password string
	Roles    []string
}

type account struct {
	user         users.User
	passwordHash []byte
}

// Backend is the fake service. It is safe for concurrent use.
type Backend struct {
	signingKey        []byte
	accessTokenExpiry time.Duration
	now               func() time.Time

	mu            sync.Mutex
	accounts      map[string]*account // by username
	mobiles       map[string]string   // mobile number -> username
	refreshTokens map[string]string   // refresh token -> username
	revoked       map[string]struct{} // access tokens revoked by logout
	epoch         int                 // access tokens from an older epoch are rejected
	nextID        int64

	failLogout    bool
	rejectRefresh bool
	rotateRefresh bool

	refreshCalls int
	logoutCalls  int
	hits         map[string]int

	router chi.Router
}

// Option configures a Backend.
type Option func(*Backend)

// WithSigningKey sets the HMAC key used to sign access tokens.
func WithSigningKey(key []byte) Option {
	return func(b *Backend) {
		b.signingKey = key
	}
}

// WithAccessTokenExpiry sets the lifetime of issued access tokens.
func WithAccessTokenExpiry(d time.Duration) Option {
	return func(b *Backend) {
		b.accessTokenExpiry = d
	}
}

// WithNowFunc overrides the clock (primarily for testing).
func WithNowFunc(now func() time.Time) Option {
	return func(b *Backend) {
		b.now = now
	}
}

func New(options ...Option) *Backend {
	b := &Backend{
		signingKey:        []byte(defaultSigningKey),
		accessTokenExpiry: defaultAccessTokenExpiry,
		now:               time.Now,
		accounts:          make(map[string]*account),
		mobiles:           make(map[string]string),
		refreshTokens:     make(map[string]string),
		revoked:           make(map[string]struct{}),
		hits:              make(map[string]int),
	}
	for _, option := range options {
		option(b)
	}
	b.router = b.routes()
	return b
}

// ServeHTTP serves the API at the root of the handler.
func (b *Backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.router.ServeHTTP(w, r)
}

// Routes lists the served routes as "METHOD /pattern".
func (b *Backend) Routes() []string {
	var routes []string
	_ = chi.Walk(b.router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, method+" "+route)
		return nil
	})
	return routes
}

// AddUser registers an account. The password is stored as a bcrypt hash.
func (b *Backend) AddUser(a Account) (*users.User, error) {
	if a.Username == "" || a.Password == "" {
		return nil, errs.Wrapf(errs.ErrInvalidRequest, "username and password are required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(a.Password), bcrypt.MinCost)
	if err != nil {
		return nil, errs.Wrapf(err, "hash password")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.accounts[a.Username]; exists {
		return nil, errs.Join(ErrUserExists, fmt.Errorf("user %q", a.Username))
	}
	id := a.ID
	if id == 0 {
		b.nextID++
		id = b.nextID
	} else if id > b.nextID {
		b.nextID = id
	}
	acc := &account{
		user: users.User{
			ID:       id,
			Username: a.Username,
			Email:    a.Email,
			Roles:    append([]string(nil), a.Roles...),
		},
		passwordHash: hash,
	}
	b.accounts[a.Username] = acc
	if a.Mobile != "" {
		b.mobiles[a.Mobile] = a.Username
	}
	return acc.user.Clone(), nil
}

// ExpireAccessTokens invalidates every access token issued so far. Refresh
// tokens stay valid.
func (b *Backend) ExpireAccessTokens() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.epoch++
}

// SetRejectRefresh makes /auth/refresh answer 401.
func (b *Backend) SetRejectRefresh(reject bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rejectRefresh = reject
}

// SetFailLogout makes /auth/logout answer 500.
func (b *Backend) SetFailLogout(fail bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failLogout = fail
}

// SetRotateRefreshTokens makes /auth/refresh issue a new refresh token and
// retire the presented one.
func (b *Backend) SetRotateRefreshTokens(rotate bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rotateRefresh = rotate
}

func (b *Backend) RefreshCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.refreshCalls
}

func (b *Backend) LogoutCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.logoutCalls
}

// Hits returns how many requests for method and path reached the backend,
// including rejected ones.
func (b *Backend) Hits(method, path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[method+" "+path]
}

func (b *Backend) hit(r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hits[r.Method+" "+r.URL.Path]++
}

// authenticate checks a password login by username or mobile number.
func (b *Backend) authenticate(identifier, password string, byMobile bool) (*users.User, bool) {
	b.mu.Lock()
	username := identifier
	if byMobile {
		username = b.mobiles[identifier]
	}
	acc, ok := b.accounts[username]
	b.mu.Unlock()
	if !ok {
		return nil, false
	}
	if err := bcrypt.CompareHashAndPassword(acc.passwordHash, []byte(password)); err != nil {
		return nil, false
	}
	return acc.user.Clone(), true
}

func (b *Backend) issueRefreshToken(username string) string {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refreshTokens[token] = username
	return token
}

func (b *Backend) lookupUser(username string) (*users.User, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	acc, ok := b.accounts[username]
	if !ok {
		return nil, false
	}
	return acc.user.Clone(), true
}
