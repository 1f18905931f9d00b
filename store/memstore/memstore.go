// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/ballot-box/models"
	"github.com/danielhkuo/ballot-box/store"
)

// Store is the in-memory backend: plain maps guarded by one mutex, with the
// same uniqueness and cascade semantics as the SQL and REST backends. It is
// the zero-config default for local runs and the fixture store in tests.
type Store struct {
	mu         sync.RWMutex
	elections  map[string]models.Election
	candidates map[string]models.Candidate
	voters     map[string]models.Voter
	votes      map[string]models.Vote

	// Uniqueness indexes, playing the role of the SQL UNIQUE constraints
	voterByKey map[string]string // election/fingerprint -> voter id
	voteByKey  map[string]string // voter/position -> vote id

	subs   map[string]map[chan models.Vote]struct{}
	closed bool
}

var _ store.Store = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		elections:  make(map[string]models.Election),
		candidates: make(map[string]models.Candidate),
		voters:     make(map[string]models.Voter),
		votes:      make(map[string]models.Vote),
		voterByKey: make(map[string]string),
		voteByKey:  make(map[string]string),
		subs:       make(map[string]map[chan models.Vote]struct{}),
	}
}

func key(a, b string) string {
	return a + "\x00" + b
}

func (s *Store) checkOpen() error {
	if s.closed {
		return store.NewError(models.CodeServerError, "store is closed")
	}
	return nil
}

// Elections

func (s *Store) CreateElection(ctx context.Context, e models.Election) (models.Election, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return models.Election{}, err
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	if _, exists := s.elections[e.ID]; exists {
		return models.Election{}, store.Conflict("election id already exists")
	}

	s.elections[e.ID] = e
	return e, nil
}

func (s *Store) GetElection(ctx context.Context, id string) (models.Election, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return models.Election{}, err
	}

	e, ok := s.elections[id]
	if !ok {
		return models.Election{}, store.ErrNotFound
	}
	return e, nil
}

func (s *Store) ListElections(ctx context.Context) ([]models.Election, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	out := make([]models.Election, 0, len(s.elections))
	for _, e := range s.elections {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Store) CurrentElection(ctx context.Context) (models.Election, error) {
	elections, err := s.ListElections(ctx)
	if err != nil {
		return models.Election{}, err
	}
	if len(elections) == 0 {
		return models.Election{}, store.ErrNotFound
	}
	return elections[0], nil
}

func (s *Store) UpdateElection(ctx context.Context, e models.Election) (models.Election, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return models.Election{}, err
	}

	existing, ok := s.elections[e.ID]
	if !ok {
		return models.Election{}, store.ErrNotFound
	}

	existing.Title = e.Title
	existing.Description = e.Description
	existing.IsOpen = e.IsOpen
	s.elections[e.ID] = existing
	return existing, nil
}

func (s *Store) SetElectionOpen(ctx context.Context, id string, open bool) (models.Election, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return models.Election{}, err
	}

	existing, ok := s.elections[id]
	if !ok {
		return models.Election{}, store.ErrNotFound
	}

	existing.IsOpen = open
	s.elections[id] = existing
	return existing, nil
}

func (s *Store) DeleteElection(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return err
	}

	if _, ok := s.elections[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.elections, id)

	for cid, c := range s.candidates {
		if c.ElectionID == id {
			delete(s.candidates, cid)
		}
	}
	for vid, v := range s.voters {
		if v.ElectionID == id {
			delete(s.voters, vid)
			delete(s.voterByKey, key(id, v.Fingerprint))
		}
	}
	for vid, v := range s.votes {
		if v.ElectionID == id {
			delete(s.votes, vid)
			delete(s.voteByKey, key(v.VoterID, v.Position))
		}
	}

	// Orphaned subscriptions end with their election
	for ch := range s.subs[id] {
		close(ch)
	}
	delete(s.subs, id)
	return nil
}

// Candidates

func (s *Store) CreateCandidate(ctx context.Context, c models.Candidate) (models.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return models.Candidate{}, err
	}

	if _, ok := s.elections[c.ElectionID]; !ok {
		return models.Candidate{}, store.Invalid("unknown election")
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	s.candidates[c.ID] = c
	return c, nil
}

func (s *Store) GetCandidate(ctx context.Context, id string) (models.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return models.Candidate{}, err
	}

	c, ok := s.candidates[id]
	if !ok {
		return models.Candidate{}, store.ErrNotFound
	}
	return c, nil
}

func (s *Store) ListCandidates(ctx context.Context, electionID string) ([]models.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	out := []models.Candidate{}
	for _, c := range s.candidates {
		if c.ElectionID == electionID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		pi, pj := strings.ToLower(out[i].Position), strings.ToLower(out[j].Position)
		if pi != pj {
			return pi < pj
		}
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

func (s *Store) UpdateCandidate(ctx context.Context, c models.Candidate) (models.Candidate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return models.Candidate{}, err
	}

	existing, ok := s.candidates[c.ID]
	if !ok {
		return models.Candidate{}, store.ErrNotFound
	}

	existing.Name = c.Name
	existing.Position = c.Position
	existing.Description = c.Description
	existing.ImageURL = c.ImageURL
	s.candidates[c.ID] = existing
	return existing, nil
}

func (s *Store) DeleteCandidate(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return err
	}

	c, ok := s.candidates[id]
	if !ok {
		return store.ErrNotFound
	}

	// Store policy: candidates are only deletable while voting is closed
	if e, ok := s.elections[c.ElectionID]; ok && e.IsOpen {
		return store.Invalid("candidates can only be deleted while the voting session is closed")
	}

	delete(s.candidates, id)
	for vid, v := range s.votes {
		if v.CandidateID == id {
			delete(s.votes, vid)
			delete(s.voteByKey, key(v.VoterID, v.Position))
		}
	}
	return nil
}

// Voters

func (s *Store) CreateVoter(ctx context.Context, v models.Voter) (models.Voter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return models.Voter{}, err
	}

	if _, ok := s.elections[v.ElectionID]; !ok {
		return models.Voter{}, store.Invalid("unknown election")
	}
	if v.Fingerprint == "" {
		return models.Voter{}, store.Invalid("fingerprint is required")
	}

	k := key(v.ElectionID, v.Fingerprint)
	if _, exists := s.voterByKey[k]; exists {
		return models.Voter{}, store.Conflict("voter already registered for this election")
	}

	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}

	s.voters[v.ID] = v
	s.voterByKey[k] = v.ID
	return v, nil
}

func (s *Store) FindVoter(ctx context.Context, electionID, fingerprint string) (models.Voter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return models.Voter{}, err
	}

	id, ok := s.voterByKey[key(electionID, fingerprint)]
	if !ok {
		return models.Voter{}, store.ErrNotFound
	}
	return s.voters[id], nil
}

func (s *Store) GetVoter(ctx context.Context, id string) (models.Voter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return models.Voter{}, err
	}

	v, ok := s.voters[id]
	if !ok {
		return models.Voter{}, store.ErrNotFound
	}
	return v, nil
}

func (s *Store) CountVoters(ctx context.Context, electionID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return 0, err
	}

	count := 0
	for _, v := range s.voters {
		if v.ElectionID == electionID {
			count++
		}
	}
	return count, nil
}

// Votes

func (s *Store) CreateVote(ctx context.Context, v models.Vote) (models.Vote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return models.Vote{}, err
	}

	voter, ok := s.voters[v.VoterID]
	if !ok {
		return models.Vote{}, store.Invalid("unknown voter")
	}
	candidate, ok := s.candidates[v.CandidateID]
	if !ok {
		return models.Vote{}, store.Invalid("unknown candidate")
	}
	if candidate.ElectionID != voter.ElectionID {
		return models.Vote{}, store.Invalid("candidate and voter belong to different elections")
	}

	// Openness is store policy, checked at write time
	election := s.elections[voter.ElectionID]
	if !election.IsOpen {
		return models.Vote{}, store.Invalid("voting session is closed")
	}

	v.ElectionID = voter.ElectionID
	v.Position = candidate.Position

	k := key(v.VoterID, v.Position)
	if _, exists := s.voteByKey[k]; exists {
		return models.Vote{}, store.Conflict("vote already recorded for this position")
	}

	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}

	s.votes[v.ID] = v
	s.voteByKey[k] = v.ID
	s.broadcast(v)
	return v, nil
}

func (s *Store) ListVotes(ctx context.Context, electionID string) ([]models.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	out := []models.Vote{}
	for _, v := range s.votes {
		if v.ElectionID == electionID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Subscriptions

// SubscribeVotes registers fn for vote insertions in one election. Each
// subscriber gets a buffered channel drained by its own goroutine; a
// subscriber that falls more than a buffer behind loses events rather than
// blocking writers.
func (s *Store) SubscribeVotes(electionID string, fn func(models.Vote)) func() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return func() {}
	}

	ch := make(chan models.Vote, 16)
	if s.subs[electionID] == nil {
		s.subs[electionID] = make(map[chan models.Vote]struct{})
	}
	s.subs[electionID][ch] = struct{}{}
	s.mu.Unlock()

	go func() {
		for v := range ch {
			fn(v)
		}
	}()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if set, ok := s.subs[electionID]; ok {
			if _, active := set[ch]; active {
				delete(set, ch)
				close(ch)
			}
		}
	}
}

// broadcast fans a vote out to subscribers. Callers hold the write lock;
// sends never block.
func (s *Store) broadcast(v models.Vote) {
	for ch := range s.subs[v.ElectionID] {
		select {
		case ch <- v:
		default:
		}
	}
}

// Close tears the store down: every subscription ends and later operations
// fail with SERVER_ERROR.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	for _, set := range s.subs {
		for ch := range set {
			close(ch)
		}
	}
	s.subs = make(map[string]map[chan models.Vote]struct{})
	return nil
}
