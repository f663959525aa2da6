package vkid

import "errors"

var (
	// ErrInvalidRequest is returned when the access token or user id is missing
	ErrInvalidRequest = errors.New("missing access_token or user_id")

	// ErrAPIError is returned when VK answers with an error object
	ErrAPIError = errors.New("vk api error")

	// ErrUserNotFound is returned when the users.get response is empty
	ErrUserNotFound = errors.New("user not found in vk response")

	// ErrUserMismatch is returned when the token owner is not the claimed user
	ErrUserMismatch = errors.New("access token belongs to another vk user")

	// ErrNetworkError is returned when there's a network communication error
	ErrNetworkError = errors.New("network error")
)
