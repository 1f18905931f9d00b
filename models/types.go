package models

import "time"

// Error codes returned in the errorCode field of APIResponse. The first six
// mirror the store-level taxonomy; NOT_FOUND and UNAUTHORIZED only ever
// originate at the HTTP layer.
const (
	CodeAlreadyVoted = "ALREADY_VOTED"
	CodeInvalidData  = "INVALID_DATA"
	CodeRateLimit    = "RATE_LIMIT"
	CodeServerError  = "SERVER_ERROR"
	CodeNetworkError = "NETWORK_ERROR"
	CodeUnknownError = "UNKNOWN_ERROR"
	CodeNotFound     = "NOT_FOUND"
	CodeUnauthorized = "UNAUTHORIZED"
)

// Request types

type CreateElectionRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type UpdateElectionRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}

type CreateCandidateRequest struct {
	Name        string `json:"name"`
	Position    string `json:"position"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
}

type UpdateCandidateRequest struct {
	Name        *string `json:"name,omitempty"`
	Position    *string `json:"position,omitempty"`
	Description *string `json:"description,omitempty"`
	ImageURL    *string `json:"image_url,omitempty"`
}

// Raw browser signals as collected by the voting page. Values are whatever
// the client managed to read; normalization happens server-side.
type RegisterVoterRequest struct {
	Signals map[string]any `json:"signals"`
}

type SubmitVoteRequest struct {
	VoterID     string `json:"voter_id"`
	CandidateID string `json:"candidate_id"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Response types

// APIResponse is the envelope every endpoint answers with.
type APIResponse struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Error     string `json:"error,omitempty"`
	ErrorCode string `json:"errorCode,omitempty"`
}

type RegisterVoterResponse struct {
	Voter       Voter  `json:"voter"`
	Fingerprint string `json:"fingerprint"`
	Registered  bool   `json:"registered"` // false when the voter already existed
}

type SessionResponse struct {
	Token     string    `json:"token,omitempty"` // only present right after sign-in
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Domain types

type Election struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	IsOpen      bool      `json:"is_open"`
	CreatedAt   time.Time `json:"created_at"`
}

type Candidate struct {
	ID          string    `json:"id"`
	ElectionID  string    `json:"election_id"`
	Name        string    `json:"name"`
	Position    string    `json:"position"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
}

type Voter struct {
	ID          string    `json:"id"`
	ElectionID  string    `json:"election_id"`
	Fingerprint string    `json:"fingerprint"`
	CreatedAt   time.Time `json:"created_at"`
}

type Vote struct {
	ID          string    `json:"id"`
	ElectionID  string    `json:"election_id"`
	VoterID     string    `json:"-"` // Never expose in JSON
	CandidateID string    `json:"candidate_id"`
	Position    string    `json:"position"`
	CreatedAt   time.Time `json:"created_at"`
}

type ElectionWithCandidates struct {
	Election   Election    `json:"election"`
	Candidates []Candidate `json:"candidates"`
}

// Result types

type CandidateTally struct {
	CandidateID string `json:"candidate_id"`
	Name        string `json:"name"`
	Votes       int    `json:"votes"`
}

type PositionResult struct {
	Position   string           `json:"position"`
	TotalVotes int              `json:"total_votes"`
	Leader     *CandidateTally  `json:"leader,omitempty"` // nil on a tie or zero votes
	Candidates []CandidateTally `json:"candidates"`
}

type ElectionResults struct {
	ElectionID string           `json:"election_id"`
	IsOpen     bool             `json:"is_open"`
	TotalVotes int              `json:"total_votes"`
	Positions  []PositionResult `json:"positions"`
}

type ElectionSummary struct {
	ElectionID string     `json:"election_id"`
	Title      string     `json:"title"`
	IsOpen     bool       `json:"is_open"`
	Candidates int        `json:"candidates"`
	Voters     int        `json:"voters"`
	Votes      int        `json:"votes"`
	VotesLabel string     `json:"votes_label"`
	Turnout    string     `json:"turnout"` // share of registered voters who cast at least one vote, e.g. "87.5%"
	LastVoteAt *time.Time `json:"last_vote_at,omitempty"`
	LastVote   string     `json:"last_vote,omitempty"` // humanized, e.g. "4 minutes ago"
}
