package tournament

import "errors"

var (
	ErrInvalidName        = errors.New("invalid_name")
	ErrInvalidScore       = errors.New("invalid_score")
	ErrNotJoinable        = errors.New("not_joinable")
	ErrRoomFull           = errors.New("room_full")
	ErrNotPlaying         = errors.New("not_playing")
	ErrUnknownParticipant = errors.New("unknown_participant")
	ErrAlreadyRunning     = errors.New("tournament_already_running")
	ErrNotBetweenGames    = errors.New("not_between_games")
	ErrRetryNotAllowed    = errors.New("retry_not_allowed")
)

// Message is the player facing text for err.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrInvalidName):
		return "Player name is required"
	case errors.Is(err, ErrInvalidScore):
		return "Score must be a non-negative number"
	case errors.Is(err, ErrNotJoinable):
		return "Cannot join at this time"
	case errors.Is(err, ErrRoomFull):
		return "Game is full"
	case errors.Is(err, ErrNotPlaying):
		return "No game in progress"
	case errors.Is(err, ErrUnknownParticipant):
		return "Join the tournament first"
	case errors.Is(err, ErrAlreadyRunning):
		return "Tournament already running"
	case errors.Is(err, ErrNotBetweenGames):
		return "Current game has not finished"
	case errors.Is(err, ErrRetryNotAllowed):
		return "Retry is only available after a game ends"
	default:
		return "Unexpected error"
	}
}
