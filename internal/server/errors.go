package server

import (
	"errors"
	"net/http"
)

var (
	ErrRoomNotFound  = errors.New("room not found")
	ErrRoomDisbanded = errors.New("room disbanded")
	ErrRoomExpired   = errors.New("invite expired")
	ErrRoomLocked    = errors.New("game already started")
	ErrRoomFull      = errors.New("room full")
)

// httpStatus maps a join/lookup error to the status code returned before the
// WebSocket upgrade.
func httpStatus(err error) int {
	switch {
	case errors.Is(err, ErrRoomNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrRoomDisbanded), errors.Is(err, ErrRoomExpired):
		return http.StatusGone
	case errors.Is(err, ErrRoomLocked):
		return http.StatusLocked
	case errors.Is(err, ErrRoomFull):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
