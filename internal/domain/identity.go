package domain

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	webAppDataMarker    = "tgWebAppData="
	webAppVersionMarker = "&tgWebAppVersion"
)

// Identity is the decoded form of a stored credential token.
type Identity struct {
	UserID    int64
	FirstName string
	LastName  string
	Username  string
	QueryID   string
	AuthDate  int64
	Hash      string
	// RawUser is the user JSON exactly as it appeared in the token.
	RawUser string
}

func (i Identity) SessionName() string {
	if i.Username != "" {
		return i.Username
	}
	return strconv.FormatInt(i.UserID, 10)
}

// CheckDataString is the newline-joined data-check string the login
// mutation expects.
func (i Identity) CheckDataString() string {
	return fmt.Sprintf("auth_date=%d\nquery_id=%s\nuser=%s", i.AuthDate, i.QueryID, i.RawUser)
}

type identityUser struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
}

// ParseIdentity decodes a credential token, either a bare init-data
// query string or a full web-app URL fragment carrying tgWebAppData.
func ParseIdentity(raw string) (Identity, error) {
	data := strings.TrimSpace(raw)
	if data == "" {
		return Identity{}, fmt.Errorf("%w: empty token", ErrMalformedCredential)
	}

	if _, after, ok := strings.Cut(data, webAppDataMarker); ok {
		segment, _, _ := strings.Cut(after, webAppVersionMarker)
		unescaped, err := url.PathUnescape(segment)
		if err != nil {
			return Identity{}, fmt.Errorf("%w: decode web app data: %v", ErrMalformedCredential, err)
		}
		data = unescaped
	}

	decoded, err := url.PathUnescape(data)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: decode init data: %v", ErrMalformedCredential, err)
	}

	queryID, err := between(decoded, "query_id=", "&user")
	if err != nil {
		return Identity{}, err
	}
	rawUser, err := between(decoded, "user=", "&auth_date")
	if err != nil {
		return Identity{}, err
	}
	rawAuthDate, err := between(decoded, "auth_date=", "&hash")
	if err != nil {
		return Identity{}, err
	}
	_, hash, ok := strings.Cut(decoded, "hash=")
	if !ok || hash == "" {
		return Identity{}, fmt.Errorf("%w: missing hash", ErrMalformedCredential)
	}

	authDate, err := strconv.ParseInt(rawAuthDate, 10, 64)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: auth_date %q is not numeric", ErrMalformedCredential, rawAuthDate)
	}

	var user identityUser
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		return Identity{}, fmt.Errorf("%w: decode user: %v", ErrMalformedCredential, err)
	}
	if user.ID == 0 {
		return Identity{}, fmt.Errorf("%w: user id is missing", ErrMalformedCredential)
	}

	return Identity{
		UserID:    user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Username:  user.Username,
		QueryID:   queryID,
		AuthDate:  authDate,
		Hash:      hash,
		RawUser:   rawUser,
	}, nil
}

func between(s, start, end string) (string, error) {
	_, after, ok := strings.Cut(s, start)
	if !ok {
		return "", fmt.Errorf("%w: missing %q", ErrMalformedCredential, strings.TrimSuffix(start, "="))
	}
	value, _, ok := strings.Cut(after, end)
	if !ok {
		return "", fmt.Errorf("%w: missing %q", ErrMalformedCredential, strings.TrimPrefix(end, "&"))
	}
	return value, nil
}
