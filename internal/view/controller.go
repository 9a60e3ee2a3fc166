package view

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ehr/emergency-view/internal/domain/emergency"
	"github.com/ehr/emergency-view/internal/domain/fullrecord"
	"github.com/ehr/emergency-view/internal/platform/auth"
	"github.com/ehr/emergency-view/internal/platform/proximity"
)

const (
	loginErrorText      = "Invalid email or password"
	fullLoadingText     = "Loading full medical record..."
	fullUnavailableText = "Full medical record is currently unavailable."
)

// RecordFetcher resolves a share token to the public record.
type RecordFetcher interface {
	Fetch(ctx context.Context, token string) emergency.FetchResult
}

// SessionStore is the authentication flag of the viewer's browser session.
type SessionStore interface {
	Save(ctx context.Context)
	Load(ctx context.Context) bool
	Clear(ctx context.Context)
}

// FacilityFinder looks up hospitals around a position.
type FacilityFinder interface {
	Nearby(ctx context.Context, c proximity.Coordinates) proximity.Result
}

// Deps are the collaborators of a Controller.
type Deps struct {
	Records     RecordFetcher
	Session     SessionStore
	Verifier    auth.Verifier
	FullRecords fullrecord.Source
	Facilities  FacilityFinder
	Logger      zerolog.Logger
	Now         func() time.Time
}

type loginState struct {
	email string
	err   string
}

type proximityState struct {
	visible bool
	loading bool
	center  proximity.Coordinates
	result  *proximity.Result
	seq     uint64
}

// Controller owns the view state of one page load. Event methods may be
// called concurrently; I/O runs outside the lock and its results replace the
// previous snapshot whole, so the last completion wins.
type Controller struct {
	id    string
	token string
	deps  Deps

	mu          sync.Mutex
	state       State
	record      emergency.FetchResult
	epoch       uint64 // bumped on every entry to and exit from Authenticated
	full        *fullrecord.Record
	fullFailed  bool
	fullLoading bool
	login       loginState
	prox        proximityState
}

// NewController creates the controller of one page load for token. An empty
// token means demo mode.
func NewController(id, token string, deps Deps) *Controller {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Controller{id: id, token: token, deps: deps, state: StatePublic}
}

func (c *Controller) ID() string    { return c.id }
func (c *Controller) Token() string { return c.token }

// State returns the active state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start resolves the record and reads the session flag once. A flagged
// session goes straight to Authenticated and sources the full record.
func (c *Controller) Start(ctx context.Context) {
	res := c.deps.Records.Fetch(ctx, c.token)
	authed := c.deps.Session != nil && c.deps.Session.Load(ctx)
	c.deps.Logger.Debug().
		Str("source", string(res.Source)).
		Bool("authenticated_hint", res.AuthenticatedHint).
		Bool("session_authenticated", authed).
		Msg("view started")

	c.mu.Lock()
	c.record = res
	var epoch uint64
	if authed {
		epoch = c.enterAuthenticatedLocked()
	} else {
		c.state = StatePublic
	}
	c.mu.Unlock()

	if authed {
		c.sourceFull(ctx, epoch)
	}
}

// OpenLogin shows the login modal.
func (c *Controller) OpenLogin() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case StatePublic:
		c.state = StateLoginModalOpen
		c.login = loginState{}
		return nil
	case StateLoginModalOpen:
		return nil
	default:
		return ErrInvalidTransition
	}
}

// CloseLogin dismisses the login modal, by its close control or a click
// outside of it.
func (c *Controller) CloseLogin() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case StateLoginModalOpen:
		c.state = StatePublic
		c.login = loginState{}
		return nil
	case StatePublic:
		return nil
	default:
		return ErrInvalidTransition
	}
}

// SubmitLogin checks cred. On a mismatch the modal stays open with an inline
// error and auth.ErrInvalidCredentials is returned. On success the session is
// flagged and the full record is sourced.
func (c *Controller) SubmitLogin(ctx context.Context, cred auth.Credential) error {
	c.mu.Lock()
	if c.state != StateLoginModalOpen {
		c.mu.Unlock()
		return ErrInvalidTransition
	}
	c.login.email = cred.Email
	c.mu.Unlock()

	err := c.deps.Verifier.Verify(ctx, cred)
	if err != nil && !errors.Is(err, auth.ErrInvalidCredentials) {
		c.deps.Logger.Warn().Err(err).Msg("credential verification failed")
	}

	c.mu.Lock()
	if c.state != StateLoginModalOpen {
		c.mu.Unlock()
		return ErrInvalidTransition
	}
	if err != nil {
		c.login.err = loginErrorText
		c.mu.Unlock()
		return auth.ErrInvalidCredentials
	}
	epoch := c.enterAuthenticatedLocked()
	c.mu.Unlock()

	if c.deps.Session != nil {
		c.deps.Session.Save(ctx)
		// A logout that ran while saving may have cleared the flag first.
		c.mu.Lock()
		stale := c.epoch != epoch
		loggedOut := stale && c.state != StateAuthenticated
		c.mu.Unlock()
		if loggedOut {
			c.deps.Session.Clear(ctx)
		}
		if stale {
			return nil
		}
	}
	c.sourceFull(ctx, epoch)
	return nil
}

// Logout returns to Public from any state, clears the session flag and
// drops the full record. The state changes before the flag is cleared so
// that a login still saving sees the new epoch.
func (c *Controller) Logout(ctx context.Context) {
	c.mu.Lock()
	c.state = StatePublic
	c.epoch++
	c.full = nil
	c.fullFailed = false
	c.fullLoading = false
	c.login = loginState{}
	c.mu.Unlock()

	if c.deps.Session != nil {
		c.deps.Session.Clear(ctx)
	}
}

// Refresh fetches the record again and replaces the cached one. The state
// is left as it is.
func (c *Controller) Refresh(ctx context.Context) {
	res := c.deps.Records.Fetch(ctx, c.token)
	c.mu.Lock()
	c.record = res
	c.mu.Unlock()
}

// Locate asks loc for the viewer's position and lists nearby hospitals. An
// unavailable location hides the panel without reporting an error.
func (c *Controller) Locate(ctx context.Context, loc proximity.Locator) {
	coords, err := loc.Locate(ctx)

	c.mu.Lock()
	c.prox.seq++
	seq := c.prox.seq
	if err != nil {
		c.prox = proximityState{seq: seq}
		c.mu.Unlock()
		c.deps.Logger.Debug().Err(err).Msg("location unavailable, skipping nearby hospitals")
		return
	}
	c.prox = proximityState{visible: true, loading: true, center: coords, seq: seq}
	c.mu.Unlock()

	if c.deps.Facilities == nil {
		c.mu.Lock()
		if c.prox.seq == seq {
			c.prox.loading = false
			c.prox.result = &proximity.Result{Status: proximity.StatusFailed, Facilities: []proximity.Facility{}, Message: proximity.MessageFailed}
		}
		c.mu.Unlock()
		return
	}

	res := c.deps.Facilities.Nearby(ctx, coords)

	c.mu.Lock()
	if c.prox.seq == seq {
		c.prox.loading = false
		c.prox.result = &res
	}
	c.mu.Unlock()
}

func (c *Controller) enterAuthenticatedLocked() uint64 {
	c.state = StateAuthenticated
	c.epoch++
	c.full = nil
	c.fullFailed = false
	c.fullLoading = true
	c.login = loginState{}
	return c.epoch
}

// sourceFull loads the full record for epoch. A result arriving after the
// view left that authenticated epoch is dropped.
func (c *Controller) sourceFull(ctx context.Context, epoch uint64) {
	var (
		rec *fullrecord.Record
		err error
	)
	if c.deps.FullRecords == nil {
		err = errors.New("no full record source")
	} else {
		rec, err = c.deps.FullRecords.Get(ctx, c.token)
	}
	if err != nil {
		c.deps.Logger.Warn().Err(err).Msg("full record unavailable")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch || c.state != StateAuthenticated {
		return
	}
	c.fullLoading = false
	if err != nil || rec == nil {
		c.fullFailed = true
		return
	}
	c.full = rec.Clone()
}

// View renders the current state into a view-model.
func (c *Controller) View() ViewModel {
	c.mu.Lock()
	defer c.mu.Unlock()

	vm := ViewModel{
		ID:         c.id,
		Token:      c.token,
		State:      c.state,
		DataSource: c.record.Source,
		Proximity:  c.proximityViewLocked(),
		Actions: Actions{
			Login:   c.state == StatePublic,
			Logout:  c.state == StateAuthenticated,
			Refresh: true,
		},
	}

	switch c.state {
	case StatePublic, StateLoginModalOpen:
		pv := RenderPublic(c.record.Record, c.deps.Now())
		vm.Public = &pv
		if c.state == StateLoginModalOpen {
			vm.Login = &LoginModalView{Email: c.login.email, Error: c.login.err}
		}
	case StateAuthenticated:
		var fv FullRecordView
		switch {
		case c.full != nil:
			fv = RenderFull(c.full)
		case c.fullFailed:
			fv = FullRecordView{Sections: []SectionView{}, Message: fullUnavailableText}
		default:
			fv = FullRecordView{Sections: []SectionView{}, Message: fullLoadingText}
		}
		vm.Full = &fv
	}
	return vm
}

func (c *Controller) proximityViewLocked() ProximityView {
	p := c.prox
	if !p.visible {
		return ProximityView{Facilities: []proximity.Facility{}}
	}
	center := p.center
	pv := ProximityView{
		Visible:    true,
		Loading:    p.loading,
		Center:     &center,
		Zoom:       proximity.MapZoom,
		Facilities: []proximity.Facility{},
	}
	if p.result != nil {
		pv.Status = p.result.Status
		pv.Message = p.result.Message
		pv.Facilities = append(pv.Facilities, p.result.Facilities...)
	}
	return pv
}
