package session

import "errors"

var (
	ErrNoActiveSession = errors.New("no_active_session")
	ErrStorage         = errors.New("storage_error")
)

func storageErr(err error) error {
	return errors.Join(ErrStorage, err)
}
