// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - CreateElectionRequest: title, description
  - UpdateElectionRequest: partial election update (pointer fields)
  - CreateCandidateRequest: name, position, description, image_url
  - UpdateCandidateRequest: partial candidate update (pointer fields)
  - RegisterVoterRequest: raw browser signals map
  - SubmitVoteRequest: voter_id, candidate_id
  - SignInRequest: email, password

# Response Types

Every endpoint answers with the APIResponse envelope:

	{"success": true,  "data": ...}
	{"success": false, "error": "...", "errorCode": "..."}

plus payload types:

  - RegisterVoterResponse: voter, fingerprint, registered
  - SessionResponse: token, email, expires_at
  - ElectionResults / PositionResult / CandidateTally: live tallies
  - ElectionSummary: dashboard counts with humanized labels

# Domain Types

Internal data structures:

  - Election: title, description, open/closed state
  - Candidate: ballot entry, grouped by free-text position
  - Voter: one row per (election, fingerprint)
  - Vote: immutable single choice per (voter, position)

# Error Codes

Values carried in the errorCode envelope field:

	CodeAlreadyVoted = "ALREADY_VOTED"
	CodeInvalidData  = "INVALID_DATA"
	CodeRateLimit    = "RATE_LIMIT"
	CodeServerError  = "SERVER_ERROR"
	CodeNetworkError = "NETWORK_ERROR"
	CodeUnknownError = "UNKNOWN_ERROR"
	CodeNotFound     = "NOT_FOUND"
	CodeUnauthorized = "UNAUTHORIZED"
*/
package models
