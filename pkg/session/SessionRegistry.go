package session

import "sync"

import "github.com/coldharbor/rsm/pkg/logger"


//=========================================== Session Registry


const NAME = "SessionRegistry"
var Log = clog.NewCustomLog(NAME)


/*
	SessionRegistry indexes live sessions by session id in a sync.Map,
	and secondarily by the service id that owns them. The secondary
	index is protected by its own mutex since sync.Map has no efficient
	"all keys for this owner" operation.
*/

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		byID: &sync.Map{},
		byService: make(map[uint64]map[uint64]struct{}),
	}
}

func (r *SessionRegistry) Add(s *Session) {
	r.byID.Store(s.SessionID, s)

	r.serviceMutex.Lock()
	defer r.serviceMutex.Unlock()

	sessions, ok := r.byService[s.ServiceID]
	if ! ok {
		sessions = make(map[uint64]struct{})
		r.byService[s.ServiceID] = sessions
	}

	sessions[s.SessionID] = struct{}{}
}

func (r *SessionRegistry) Get(sessionID uint64) (*Session, bool) {
	val, ok := r.byID.Load(sessionID)
	if ! ok { return nil, false }
	return val.(*Session), true
}

func (r *SessionRegistry) Remove(sessionID uint64) {
	val, ok := r.byID.LoadAndDelete(sessionID)
	if ! ok { return }

	s := val.(*Session)

	r.serviceMutex.Lock()
	defer r.serviceMutex.Unlock()

	if sessions, ok := r.byService[s.ServiceID]; ok {
		delete(sessions, sessionID)
		if len(sessions) == 0 { delete(r.byService, s.ServiceID) }
	}
}

/*
	RemoveByService drops every session owned by the given service,
	returning the removed sessions so callers can expire/notify them.
*/

func (r *SessionRegistry) RemoveByService(serviceID uint64) []*Session {
	r.serviceMutex.Lock()
	ids, ok := r.byService[serviceID]
	if ! ok {
		r.serviceMutex.Unlock()
		return nil
	}

	delete(r.byService, serviceID)
	r.serviceMutex.Unlock()

	removed := make([]*Session, 0, len(ids))
	for id := range ids {
		val, ok := r.byID.LoadAndDelete(id)
		if ok { removed = append(removed, val.(*Session)) }
	}

	return removed
}

/*
	SessionsForService returns the live sessions belonging to a service,
	used for metadata queries.
*/

func (r *SessionRegistry) SessionsForService(serviceID uint64) []*Session {
	r.serviceMutex.Lock()
	ids := make([]uint64, 0, len(r.byService[serviceID]))
	for id := range r.byService[serviceID] { ids = append(ids, id) }
	r.serviceMutex.Unlock()

	sessions := make([]*Session, 0, len(ids))
	for _, id := range ids {
		if s, ok := r.Get(id); ok { sessions = append(sessions, s) }
	}

	return sessions
}

func (r *SessionRegistry) All() []*Session {
	var all []*Session
	r.byID.Range(func(_, val interface{}) bool {
		all = append(all, val.(*Session))
		return true
	})

	return all
}

/*
	MinLastCompleted returns the lowest LastCompleted watermark across all
	live sessions, the ceiling that compaction must never exceed.
	ok is false when there are no live sessions.
*/

func (r *SessionRegistry) MinLastCompleted() (min uint64, ok bool) {
	r.byID.Range(func(_, val interface{}) bool {
		s := val.(*Session)
		if ! ok || s.LastCompleted < min {
			min = s.LastCompleted
			ok = true
		}

		return true
	})

	return min, ok
}
