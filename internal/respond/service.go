package respond

import "context"

// Service couples the store with the hub so every accepted submission is
// broadcast exactly once.
type Service struct {
	store Store
	hub   *Hub
}

// NewService wires a store and a hub together.
func NewService(store Store, hub *Hub) *Service {
	return &Service{store: store, hub: hub}
}

// Hub exposes the underlying hub for websocket handlers.
func (s *Service) Hub() *Hub {
	return s.hub
}

// Open starts a new session for a course.
func (s *Service) Open(ctx context.Context, sess Session) (*Session, error) {
	id, err := s.store.CreateSession(ctx, sess)
	if err != nil {
		return nil, err
	}
	return s.store.GetSession(ctx, id)
}

// Get returns one session.
func (s *Service) Get(ctx context.Context, id string) (*Session, error) {
	return s.store.GetSession(ctx, id)
}

// List returns sessions, optionally filtered by course.
func (s *Service) List(ctx context.Context, courseID string) ([]Session, error) {
	return s.store.ListSessions(ctx, courseID)
}

// Submit records a student response and broadcasts it to watchers.
func (s *Service) Submit(ctx context.Context, r Response) (*Response, error) {
	saved, err := s.store.AddResponse(ctx, r)
	if err != nil {
		return nil, err
	}
	s.hub.Publish(Event{Type: EventResponse, SessionID: saved.SessionID, Response: saved})
	return saved, nil
}

// Close ends a session and notifies watchers. Closing twice is a no-op.
func (s *Service) Close(ctx context.Context, id string) error {
	if err := s.store.CloseSession(ctx, id); err != nil {
		return err
	}
	s.hub.Publish(Event{Type: EventClosed, SessionID: id})
	return nil
}

// Responses returns everything submitted to a session so far.
func (s *Service) Responses(ctx context.Context, sessionID string) ([]Response, error) {
	return s.store.ListResponses(ctx, sessionID)
}
