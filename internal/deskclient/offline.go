package deskclient

import (
	"strings"

	authdomain "github.com/vox-librorum/vox-desk/internal/auth/domain"
	authservice "github.com/vox-librorum/vox-desk/internal/auth/service"
)

// OfflineLogin signs in without a server. Only the bypass passphrases are accepted,
// and callers must only consult it when offline mode was asked for explicitly.
func OfflineLogin(username, password string) (authdomain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return authdomain.User{}, authdomain.ErrMissingFields
	}
	if !authservice.IsBypassPassphrase(password) {
		return authdomain.User{}, authdomain.ErrInvalidCredentials
	}
	return authdomain.User{
		ID:       authservice.OfflineUserID(username),
		Username: username,
		Role:     authdomain.DefaultRole,
	}, nil
}
