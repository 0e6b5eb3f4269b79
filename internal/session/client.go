package session

import (
	"context"
	"errors"
	"sync"

	"github.com/Skotchmaster/pcshop/internal/localstore"
	"github.com/Skotchmaster/pcshop/internal/logging"
)

type Event string

const (
	EventInitialSession Event = "INITIAL_SESSION"
	EventSignedIn       Event = "SIGNED_IN"
	EventSignedOut      Event = "SIGNED_OUT"
)

type Listener func(Event, *Session)

// Client is the storefront's view of the identity provider: at most one
// current session, persisted in local storage, with change notifications.
type Client struct {
	provider *Provider
	storage  localstore.Storage

	mu        sync.Mutex
	current   *Session
	listeners map[int]Listener
	nextID    int
}

func NewClient(p *Provider, s localstore.Storage) *Client {
	return &Client{
		provider:  p,
		storage:   s,
		listeners: make(map[int]Listener),
	}
}

// Subscribe registers fn for auth state changes and returns its unsubscribe func.
func (c *Client) Subscribe(fn Listener) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

func (c *Client) notify(ev Event, s *Session) {
	c.mu.Lock()
	ls := make([]Listener, 0, len(c.listeners))
	for _, fn := range c.listeners {
		ls = append(ls, fn)
	}
	c.mu.Unlock()

	for _, fn := range ls {
		fn(ev, s)
	}
}

func (c *Client) Session() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return nil
	}
	s := *c.current
	return &s
}

// Restore rehydrates the persisted session. A stored token the provider no longer accepts is discarded.
func (c *Client) Restore(ctx context.Context) (*Session, error) {
	var stored Session
	ok, err := localstore.LoadJSON(c.storage, localstore.KeySession, &stored)
	if err != nil || !ok {
		return nil, err
	}

	user, err := c.provider.GetUser(ctx, stored.AccessToken)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			logging.FromContext(ctx).Info("stored_session_dropped", "reason", err.Error())
			return nil, c.storage.Delete(localstore.KeySession)
		}
		return nil, err
	}
	stored.User = *user

	c.mu.Lock()
	c.current = &stored
	c.mu.Unlock()

	c.notify(EventInitialSession, &stored)
	return &stored, nil
}

func (c *Client) SignUp(ctx context.Context, email, password string, profile Profile) (*Session, error) {
	if _, err := c.provider.SignUp(ctx, email, password, profile); err != nil {
		return nil, err
	}
	return c.SignIn(ctx, email, password)
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*Session, error) {
	s, err := c.provider.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := localstore.SaveJSON(c.storage, localstore.KeySession, s); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.current = s
	c.mu.Unlock()

	c.notify(EventSignedIn, s)
	return s, nil
}

func (c *Client) SignOut(ctx context.Context) error {
	c.mu.Lock()
	current := c.current
	c.current = nil
	c.mu.Unlock()

	if current != nil {
		if err := c.provider.SignOut(ctx, current.AccessToken); err != nil && !errors.Is(err, ErrUnauthorized) {
			return err
		}
	}
	if err := c.storage.Delete(localstore.KeySession); err != nil {
		return err
	}

	c.notify(EventSignedOut, nil)
	return nil
}
