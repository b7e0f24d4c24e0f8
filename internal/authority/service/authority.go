package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/caseboard/sessionkit/internal/authority/domain"
	"github.com/caseboard/sessionkit/internal/authority/idp"
	"github.com/caseboard/sessionkit/internal/authority/store"
)

// User-facing failure messages. Resolution failures are deliberately vague:
// the message never reveals whether the identifier exists.
const (
	MsgInvalidCredentials = "Invalid email or password"
	MsgInvalidMFACode     = "Invalid verification code"
	MsgTooManyAttempts    = "Too many login attempts, please wait and try again"
)

// MinTokenValidity is the remaining lifetime below which a provider token is
// renewed on the next scheduler tick.
const MinTokenValidity = 60 * time.Second

const commandBuffer = 16

// Options configures a session Authority.
type Options struct {
	Provider IdentityProvider
	Store    store.Store // nil disables local accounts and the must-change flag
	Logger   *slog.Logger

	// RefreshInterval overrides the token renewal cadence. Zero means
	// DefaultRefreshInterval.
	RefreshInterval time.Duration

	// LoginRate and LoginBurst bound local credential attempts. Zero values
	// mean the default of five attempts per minute.
	LoginRate  rate.Limit
	LoginBurst int

	// LogoutRedirectURI is where the provider sends the browser after a
	// front-channel logout.
	LogoutRedirectURI string
}

// Authority owns the session state machine. All state lives on a single
// goroutine fed by a command queue; public methods enqueue a command and
// wait for it, so callers from any goroutine observe fully-applied
// transitions and snapshots. No lock is ever held across a provider call
// because there is no lock at all.
type Authority struct {
	provider  IdentityProvider
	resolver  *ResolverService
	scheduler *RefreshScheduler
	store     store.Store
	logger    *slog.Logger

	refreshInterval   time.Duration
	logoutRedirectURI string
	loginLimiter      *rate.Limiter

	cmds      chan func()
	closed    chan struct{}
	done      chan struct{}
	closeOnce sync.Once

	// Fields below are owned by the run goroutine.
	state             domain.SessionState
	providerReachable bool
	providerSession   bool
	pendingMFA        *domain.Resolution
}

// New builds an Authority and starts its command loop. The session begins
// Uninitialized; call Initialize before anything else.
func New(opts Options) *Authority {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	limit := opts.LoginRate
	burst := opts.LoginBurst
	if limit == 0 {
		limit = rate.Every(12 * time.Second)
	}
	if burst == 0 {
		burst = 5
	}

	interval := opts.RefreshInterval
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}

	a := &Authority{
		provider:          opts.Provider,
		resolver:          &ResolverService{Store: opts.Store, Logger: logger},
		scheduler:         &RefreshScheduler{Logger: logger},
		store:             opts.Store,
		logger:            logger,
		refreshInterval:   interval,
		logoutRedirectURI: opts.LogoutRedirectURI,
		loginLimiter:      rate.NewLimiter(limit, burst),
		cmds:              make(chan func(), commandBuffer),
		closed:            make(chan struct{}),
		done:              make(chan struct{}),
		state:             domain.SessionState{Phase: domain.PhaseUninitialized},
	}
	go a.run()
	return a
}

func (a *Authority) run() {
	defer close(a.done)
	for {
		select {
		case fn := <-a.cmds:
			fn()
		case <-a.closed:
			return
		}
	}
}

// do runs fn on the state goroutine and waits for it to complete. After
// Close, commands are dropped.
func (a *Authority) do(fn func()) {
	ran := make(chan struct{})
	select {
	case a.cmds <- func() {
		defer close(ran)
		fn()
	}:
	case <-a.closed:
		return
	}
	select {
	case <-ran:
	case <-a.done:
	}
}

// tryDo enqueues fn without waiting. Used by scheduler ticks so a busy
// command queue can never block the ticker loop; a dropped tick is
// recovered by the next one.
func (a *Authority) tryDo(fn func()) {
	select {
	case a.cmds <- fn:
	case <-a.closed:
	default:
	}
}

// Close stops the scheduler and shuts down the command loop. Safe to call
// more than once.
func (a *Authority) Close() {
	a.closeOnce.Do(func() {
		a.scheduler.Stop()
		close(a.closed)
		<-a.done
	})
}

// State returns a snapshot of the session. The snapshot is a deep copy;
// mutating it never touches live state.
func (a *Authority) State() domain.SessionState {
	var snap domain.SessionState
	a.do(func() {
		snap = a.state.Clone()
	})
	return snap
}

// ProviderReachable reports whether the last probe of the identity provider
// succeeded.
func (a *Authority) ProviderReachable() bool {
	var reachable bool
	a.do(func() {
		reachable = a.providerReachable
	})
	return reachable
}

// Initialize probes the identity provider and processes any in-flight
// redirect callback. Without a pending authorization code the session
// always lands Unauthenticated, even if the provider holds a live SSO
// session from a previous run.
func (a *Authority) Initialize(ctx context.Context, cb idp.Callback) {
	a.do(func() {
		a.state = domain.SessionState{Phase: domain.PhaseInitializing}
		a.pendingMFA = nil

		a.providerReachable = a.provider.Probe(ctx)
		if !a.providerReachable {
			a.logger.Warn("identity provider unreachable at startup")
			a.state = domain.SessionState{Phase: domain.PhaseUnauthenticated}
			return
		}

		result, err := a.provider.InitHandshake(ctx, cb)
		if err != nil {
			a.logger.Warn("redirect callback exchange failed", "error", err)
			a.state = domain.SessionState{Phase: domain.PhaseUnauthenticated}
			return
		}
		if !result.Authenticated {
			a.state = domain.SessionState{Phase: domain.PhaseUnauthenticated}
			return
		}

		a.completeProviderLogin(result)
	})
}

// Login starts an authentication attempt. Empty identifier and secret means
// "sign in with the provider": a reachable provider takes over via
// redirect, an unreachable one grants the developer bypass session. A
// non-empty pair is resolved against built-ins and the local store.
func (a *Authority) Login(ctx context.Context, identifier, secret, tenantHint string) {
	a.do(func() {
		if identifier == "" && secret == "" {
			a.startProviderLogin(ctx)
			return
		}

		if !a.loginLimiter.Allow() {
			a.logger.Warn("login attempt rate limited", "identifier", identifier)
			a.state = domain.SessionState{
				Phase: domain.PhaseUnauthenticated,
				Err:   MsgTooManyAttempts,
			}
			return
		}

		res := a.resolver.Resolve(ctx, identifier, secret, tenantHint)
		switch res.Kind {
		case domain.ResolutionSingle:
			a.completeLocalLogin(res)
		case domain.ResolutionAmbiguous:
			a.state = domain.SessionState{
				Phase:         domain.PhaseAwaitingTenantChoice,
				TenantChoices: res.Choices,
			}
		default:
			a.state = domain.SessionState{
				Phase: domain.PhaseUnauthenticated,
				Err:   MsgInvalidCredentials,
			}
		}
	})
}

// LoginWithTenant completes an ambiguous login with the chosen credential
// record. Outside AwaitingTenantChoice the call is a stale artifact of a
// superseded attempt and is ignored.
func (a *Authority) LoginWithTenant(ctx context.Context, choice domain.Credential) {
	a.do(func() {
		if a.state.Phase != domain.PhaseAwaitingTenantChoice {
			return
		}

		if choice.MustChangePassword && a.store != nil {
			if err := a.store.Flags().SetMustChange(ctx, choice.Email); err != nil {
				a.logger.Warn("recording must-change flag failed", "error", err)
			}
		}

		rec := choice
		a.completeLocalLogin(domain.Resolution{
			Kind:       domain.ResolutionSingle,
			Identity:   identityFromCredential(rec),
			Credential: &rec,
		})
	})
}

// CompleteMFA verifies a one-time code for the pending login. A wrong code
// keeps the session in AwaitingMFACode with a retryable failure message.
func (a *Authority) CompleteMFA(ctx context.Context, code string) {
	a.do(func() {
		if a.state.Phase != domain.PhaseAwaitingMFACode || a.pendingMFA == nil {
			return
		}

		if !validTOTP(code, a.pendingMFA.Credential.TOTPSecret) {
			a.logger.Warn("one-time code rejected", "identifier", a.pendingMFA.Credential.Email)
			a.state.Err = MsgInvalidMFACode
			return
		}

		res := *a.pendingMFA
		a.finishLocalLogin(res)
	})
}

// CancelPendingLogin abandons an in-progress tenant choice or MFA
// challenge and returns the session to Unauthenticated. In any other phase
// it is a no-op.
func (a *Authority) CancelPendingLogin() {
	a.do(func() {
		switch a.state.Phase {
		case domain.PhaseAwaitingTenantChoice, domain.PhaseAwaitingMFACode:
			a.pendingMFA = nil
			a.state = domain.SessionState{Phase: domain.PhaseUnauthenticated}
		}
	})
}

// SwitchTenant repoints an authenticated session at another tenant. Only
// the tenant fields change: roles, token, and profile carry over untouched.
func (a *Authority) SwitchTenant(tenantID, tenantName string) {
	a.do(func() {
		if a.state.Phase != domain.PhaseAuthenticated || a.state.User == nil {
			return
		}
		user := a.state.User.Clone()
		user.TenantID = tenantID
		user.TenantName = tenantName
		a.state.User = user
	})
}

// Logout ends the session deliberately. Only sessions established through
// the provider are logged out remotely, and only while the provider is
// reachable; local and bypass sessions end without any network call.
func (a *Authority) Logout(ctx context.Context) {
	a.do(func() {
		a.scheduler.Stop()
		a.pendingMFA = nil

		if a.providerSession && a.providerReachable {
			if err := a.provider.Logout(ctx, a.logoutRedirectURI); err != nil {
				a.logger.Warn("provider logout failed", "error", err)
			}
		}
		a.providerSession = false

		a.state = domain.SessionState{
			Phase:    domain.PhaseUnauthenticated,
			EndCause: domain.CauseUserLogout,
		}
		a.logger.Info("session ended by user")
	})
}

func (a *Authority) startProviderLogin(ctx context.Context) {
	if a.providerReachable {
		if err := a.provider.RedirectToLogin(ctx); err != nil {
			a.logger.Warn("login redirect failed", "error", err)
		}
		return
	}

	a.logger.Warn("identity provider unreachable, granting developer bypass session")
	a.state = domain.SessionState{
		Phase: domain.PhaseAuthenticated,
		User:  bypassIdentity(),
		Token: domain.BypassToken,
	}
	a.providerSession = false
}

func (a *Authority) completeProviderLogin(result idp.HandshakeResult) {
	user := &domain.Identity{
		ID:          result.Profile.Subject,
		Username:    result.Profile.Username,
		Email:       result.Profile.Email,
		DisplayName: result.Profile.DisplayName,
		AvatarURL:   result.Profile.AvatarURL,
		Roles:       domain.MapExternalRoles(result.Roles),
	}

	a.state = domain.SessionState{
		Phase: domain.PhaseAuthenticated,
		User:  user,
		Token: result.Token,
	}
	a.providerSession = true
	a.pendingMFA = nil

	a.scheduler.Start(a.refreshInterval, func() {
		a.tryDo(a.handleRefreshTick)
	})
	a.logger.Info("session authenticated via identity provider", "user", user.Username)
}

func (a *Authority) completeLocalLogin(res domain.Resolution) {
	if res.Credential != nil && res.Credential.TOTPSecret != "" {
		pending := res
		a.pendingMFA = &pending
		a.state = domain.SessionState{Phase: domain.PhaseAwaitingMFACode}
		return
	}
	a.finishLocalLogin(res)
}

func (a *Authority) finishLocalLogin(res domain.Resolution) {
	token := res.Token
	if token == "" {
		token = domain.LocalToken(time.Now())
	}

	a.state = domain.SessionState{
		Phase: domain.PhaseAuthenticated,
		User:  res.Identity.Clone(),
		Token: token,
	}
	a.providerSession = false
	a.pendingMFA = nil
	a.logger.Info("session authenticated locally", "user", res.Identity.Username, "builtin", res.BuiltIn)
}

// handleRefreshTick runs on the state goroutine. Ticks enqueued before a
// logout or re-login may land afterwards; the phase and session-kind guards
// make them harmless.
func (a *Authority) handleRefreshTick() {
	if a.state.Phase != domain.PhaseAuthenticated || !a.providerSession {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result := a.provider.Refresh(ctx, MinTokenValidity)
	switch result.Kind {
	case idp.Refreshed:
		a.state.Token = result.Token
		a.logger.Debug("access token renewed")
	case idp.RefreshUnchanged:
		// Plenty of validity left.
	case idp.RefreshFailed:
		a.scheduler.Stop()
		a.providerSession = false
		a.state = domain.SessionState{
			Phase:    domain.PhaseUnauthenticated,
			EndCause: domain.CauseSessionExpired,
		}
		a.logger.Warn("token refresh failed, session expired")
	}
}
