package models

import "strings"

const oauthPrefix = "oauth:"

// Credential is the (username, token) pair used to authenticate a session.
// A nil *Credential means an anonymous, receive-only session.
type Credential struct {
	Username string
	Token    string
}

// Nick returns the lowercased username, which is what the server uses as the
// nick of an authenticated user.
func (c Credential) Nick() string {
	return strings.ToLower(c.Username)
}

// Password returns the token in the "oauth:<token>" form expected by PASS.
func (c Credential) Password() string {
	if strings.HasPrefix(c.Token, oauthPrefix) {
		return c.Token
	}
	return oauthPrefix + c.Token
}
