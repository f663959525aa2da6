package vkid

import (
	"fmt"
	"strconv"
	"strings"
)

// User is the subset of the users.get profile the portal uses
type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Photo200  string `json:"photo_200"`
	Email     string `json:"email"`
}

// IDString is the id in the string form VK ID hands to the browser.
func (u User) IDString() string {
	return strconv.FormatInt(u.ID, 10)
}

// FullName joins first and last name.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// PlaceholderEmail is used for VK accounts that did not share an email.
func PlaceholderEmail(userID string) string {
	return fmt.Sprintf("vk%s@vk.placeholder.com", userID)
}

// APIError is the error object VK returns with HTTP 200
type APIError struct {
	Code    int    `json:"error_code"`
	Message string `json:"error_msg"`
}

type usersGetResponse struct {
	Response []User    `json:"response"`
	Error    *APIError `json:"error"`
}
