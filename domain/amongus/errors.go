package amongus

import "errors"

// Kind groups error codes by the reason a transaction was refused.
type Kind uint8

const (
	KindAuthorization Kind = iota + 1
	KindLifecycle
	KindCapacity
	KindNotFound
	KindState
	KindReplay
	KindProof
	KindConfiguration
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindAuthorization:
		return "authorization"
	case KindLifecycle:
		return "lifecycle"
	case KindCapacity:
		return "capacity"
	case KindNotFound:
		return "not_found"
	case KindState:
		return "state"
	case KindReplay:
		return "replay"
	case KindProof:
		return "proof"
	case KindConfiguration:
		return "configuration"
	case KindStorage:
		return "storage"
	default:
		return "unknown"
	}
}

// Code is a machine-readable error code.
type Code string

// Error is the failure returned by every contract operation.
type Error struct {
	Code    Code   // Machine-readable error code
	Kind    Kind   // Taxonomy bucket of Code
	Message string // Human-readable description
	Cause   error  // Wrapped underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// withMessage copies e with a more specific message.
func (e *Error) withMessage(msg string) *Error {
	c := *e
	c.Message = msg
	return &c
}

// wrap copies e with cause attached.
func (e *Error) wrap(cause error) *Error {
	c := *e
	c.Cause = cause
	return &c
}

func newError(kind Kind, code Code, msg string) *Error {
	return &Error{Code: code, Kind: kind, Message: msg}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

var (
	// Authorization errors
	ErrUnauthenticated = newError(KindAuthorization, "UNAUTHENTICATED", "caller is not authenticated")
	ErrNotAdmin        = newError(KindAuthorization, "NOT_ADMIN", "not admin")

	// Lifecycle errors
	ErrNotInitialized     = newError(KindLifecycle, "NOT_INITIALIZED", "contract not initialized")
	ErrAlreadyInitialized = newError(KindLifecycle, "ALREADY_INITIALIZED", "already initialized")
	ErrGameEnded          = newError(KindLifecycle, "GAME_ENDED", "game already ended")
	ErrGameAlreadyStarted = newError(KindLifecycle, "GAME_ALREADY_STARTED", "game already started")
	ErrWrongPhase         = newError(KindLifecycle, "WRONG_PHASE", "action not allowed in current phase")
	ErrMeetingNotActive   = newError(KindLifecycle, "MEETING_NOT_ACTIVE", "meeting not active")

	// Capacity and uniqueness errors
	ErrLobbyFull           = newError(KindCapacity, "LOBBY_FULL", "lobby is full")
	ErrAlreadyJoined       = newError(KindCapacity, "ALREADY_JOINED", "player already joined")
	ErrDuplicatePlayerHash = newError(KindCapacity, "DUPLICATE_PLAYER_HASH", "duplicate player hash")
	ErrAlreadyVoted        = newError(KindCapacity, "ALREADY_VOTED", "player already voted")
	ErrNotEnoughPlayers    = newError(KindCapacity, "NOT_ENOUGH_PLAYERS", "need at least 4 players")

	// Not-found errors
	ErrPlayerNotFound = newError(KindNotFound, "PLAYER_NOT_FOUND", "player not found")

	// State errors
	ErrPlayerDead    = newError(KindState, "PLAYER_DEAD", "dead player cannot act")
	ErrVictimDead    = newError(KindState, "VICTIM_DEAD", "victim already dead")
	ErrSelfKill      = newError(KindState, "SELF_KILL", "killer and victim are the same player")
	ErrNoAliveVoters = newError(KindState, "NO_ALIVE_VOTERS", "no alive voters")

	// Replay errors
	ErrNullifierUsed = newError(KindReplay, "NULLIFIER_USED", "nullifier already used")

	// Proof errors
	ErrInvalidProof          = newError(KindProof, "INVALID_PROOF", "invalid proof")
	ErrVerifierNotConfigured = newError(KindProof, "VERIFIER_NOT_CONFIGURED", "verifier not configured")
	ErrVerifierFailed        = newError(KindProof, "VERIFIER_FAILED", "verifier call failed")

	// Configuration errors
	ErrInvalidMaxPlayers = newError(KindConfiguration, "INVALID_MAX_PLAYERS", "max_players must be >= 4")
	ErrInvalidTasksToWin = newError(KindConfiguration, "INVALID_TASKS_TO_WIN", "tasks_to_win must be > 0")
	ErrInvalidWinner     = newError(KindConfiguration, "INVALID_WINNER", "invalid winner symbol")
	ErrInvalidPhase      = newError(KindConfiguration, "INVALID_PHASE", "invalid phase")
	ErrInvalidVerifier   = newError(KindConfiguration, "INVALID_VERIFIER", "verifier address is empty")

	// Storage errors
	ErrStorage = newError(KindStorage, "STORAGE", "storage failure")
)
