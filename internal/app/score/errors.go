package score

import "errors"

var (
	ErrInvalidRequest   = errors.New("invalid_request")
	ErrInvalidWallet    = errors.New("invalid_wallet_address")
	ErrScoreOutOfRange  = errors.New("score_out_of_range")
	ErrSessionNotFound  = errors.New("session_not_found")
	ErrSessionNotActive = errors.New("session_not_active")
	ErrStorage          = errors.New("storage_error")
)

func storageErr(err error) error {
	return errors.Join(ErrStorage, err)
}
