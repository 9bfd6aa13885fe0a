package identity

import (
	"context"
	"sync"

	"github.com/petloc/petloc/internal/models"
	"github.com/petloc/petloc/pkg/logger"
)

// SessionHook tracks the signed-in user and fans session changes out to
// subscribers. It starts in the loading state and leaves it on the first
// resolution, even when that resolution is "nobody signed in".
//
// The hook is process-wide, not request-scoped: concurrent logins interleave
// in CurrentUser, so request handling must authorize from the token subject
// and the per-user cached record, never from CurrentUser.
type SessionHook struct {
	provider Provider
	cache    *RoleCache

	mu      sync.Mutex
	user    *models.User
	loading bool
	subs    map[chan *models.User]struct{}
}

func NewSessionHook(provider Provider, cache *RoleCache) *SessionHook {
	return &SessionHook{
		provider: provider,
		cache:    cache,
		loading:  true,
		subs:     make(map[chan *models.User]struct{}),
	}
}

// Resolve settles the initial session state. restored is nil when no prior
// session could be recovered.
func (h *SessionHook) Resolve(restored *models.User) {
	h.mu.Lock()
	h.user = restored
	h.loading = false
	h.mu.Unlock()
	h.emit(restored)
}

// Loading reports whether the initial session state is still unknown.
func (h *SessionHook) Loading() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.loading
}

// CurrentUser returns the signed-in user, or nil.
func (h *SessionHook) CurrentUser() *models.User {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.user
}

// Subscribe registers for session changes. Each change delivers the new user
// (nil on sign-out). The returned func cancels the subscription.
func (h *SessionHook) Subscribe() (<-chan *models.User, func()) {
	ch := make(chan *models.User, 4)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	cancel := func() {
		h.mu.Lock()
		if _, ok := h.subs[ch]; ok {
			delete(h.subs, ch)
			close(ch)
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Login signs the user in, caches their session record and emits the change.
func (h *SessionHook) Login(ctx context.Context, email, password string) (*models.User, error) {
	u, err := h.provider.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	h.establish(ctx, u)
	return u, nil
}

// Register creates the account and then sets its display name. If the second
// step fails the fresh account is deleted again so nothing half-made remains.
func (h *SessionHook) Register(ctx context.Context, nome, email, password string) (*models.User, error) {
	u, err := h.provider.SignUp(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := h.provider.SetDisplayName(ctx, u.ID, nome); err != nil {
		if derr := h.provider.DeleteUser(ctx, u.ID); derr != nil {
			logger.Errorf("registration rollback failed for %s: %v", u.ID, derr)
		}
		return nil, err
	}
	u.Nome = nome
	h.establish(ctx, u)
	return u, nil
}

// Logout drops the cached session record and emits the signed-out state.
func (h *SessionHook) Logout(ctx context.Context) error {
	h.mu.Lock()
	u := h.user
	h.user = nil
	h.mu.Unlock()
	if u != nil && h.cache != nil {
		if err := h.cache.Remove(ctx, u.ID); err != nil {
			logger.Warnf("session record removal failed for %s: %v", u.ID, err)
		}
	}
	h.emit(nil)
	return nil
}

func (h *SessionHook) establish(ctx context.Context, u *models.User) {
	h.mu.Lock()
	h.user = u
	h.loading = false
	h.mu.Unlock()
	if h.cache != nil {
		rec := &SessionRecord{ID: u.ID, Nome: u.Nome, Email: u.Email, Role: u.Tipo}
		if err := h.cache.Put(ctx, rec); err != nil {
			// the cache is an optimization, a miss just costs a store read
			logger.Warnf("session record cache write failed for %s: %v", u.ID, err)
		}
	}
	h.emit(u)
}

func (h *SessionHook) emit(u *models.User) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- u:
		default:
			// slow subscriber, drop rather than block sign-in
		}
	}
}
