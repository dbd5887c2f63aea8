package session

import "sync"


type SessionRegistry struct {
	byID *sync.Map // sessionID -> *Session

	serviceMutex sync.Mutex
	byService map[uint64]map[uint64]struct{} // serviceID -> set of sessionIDs
}
