package utils

import (
	"net/http"
	"time"
)

const userCookieLifetime = 30 * 24 * time.Hour

// UserCookieHeader builds the upgrade response header that stores userID.
func UserCookieHeader(userID, cookieName string) http.Header {
	var header = http.Header{}
	userCookie := &http.Cookie{
		Name:     cookieName,
		Value:    userID,
		Path:     "/",
		Expires:  time.Now().Add(userCookieLifetime),
		SameSite: http.SameSiteLaxMode,
	}
	if v := userCookie.String(); v != "" {
		header.Add("Set-Cookie", v)
	}
	return header
}

func UserIDFromCookie(r *http.Request, cookieName string) (bool, string) {
	cookie, err := r.Cookie(cookieName)
	if err != nil || cookie.Value == "" {
		return false, ""
	}
	return true, cookie.Value
}
