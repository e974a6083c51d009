package service

import (
	"github.com/google/uuid"
)

// bypassPassphrases are accepted for any username while the archive runs in offline mode.
// They are demo affordances and never reach a server backed by a real user table.
var bypassPassphrases = map[string]struct{}{
	"secret123": {},
	"EMBER":     {},
	"NOVA":      {},
}

// IsBypassPassphrase reports whether password is one of the offline passphrases.
func IsBypassPassphrase(password string) bool {
	_, ok := bypassPassphrases[password]
	return ok
}

// OfflineUserID derives a stable user id for username so offline sessions keep
// their workspace between logins.
func OfflineUserID(username string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("vox://offline/"+username)).String()
}
