package stores

import (
	"os"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	qe "wuyrush.io/quire/errors"
)

const bcryptCost int = 8

// CredStore vends operations to manage and verify user credentials
type CredStore interface {
	// Load reads the full username -> password hash mapping. A missing or
	// malformed credential file is a hard failure, never an empty mapping
	Load() (map[string]string, *qe.Err)
	// Verify reports whether username exists and plaintext passwd matches its
	// stored hash. Unknown users and storage failures both read as false
	Verify(username, passwd string) bool
	// Register adds a new credential and persists the full mapping back to
	// storage. Fails with Existed when username is already taken
	Register(username, passwd string) *qe.Err
}

// YAMLCredStore implements CredStore backed by a YAML file mapping username to
// bcrypt hash, rewritten wholesale on each registration. Concurrent
// registrations racing on the file can lose updates; single-tenant scale makes
// that an accepted limitation.
type YAMLCredStore struct {
	Path string
}

func (s *YAMLCredStore) Load() (map[string]string, *qe.Err) {
	b, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, qe.NewServiceFailure("error reading credential file").WithCause(err)
	}
	creds := map[string]string{}
	if err := yaml.Unmarshal(b, &creds); err != nil {
		return nil, qe.NewServiceFailure("error parsing credential file").WithCause(err)
	}
	return creds, nil
}

func (s *YAMLCredStore) Verify(username, passwd string) bool {
	creds, err := s.Load()
	if err != nil {
		log.WithError(err).Error("error loading user credentials")
		return false
	}
	hash, ok := creds[username]
	if !ok {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(passwd)) == nil
}

func (s *YAMLCredStore) Register(username, passwd string) *qe.Err {
	creds, err := s.Load()
	if err != nil {
		return err
	}
	if _, ok := creds[username]; ok {
		return qe.NewExisted("username already exists")
	}
	hash, herr := bcrypt.GenerateFromPassword([]byte(passwd), bcryptCost)
	if herr != nil {
		return qe.NewServiceFailure("error hashing user password").WithCause(herr)
	}
	creds[username] = string(hash)
	b, merr := yaml.Marshal(creds)
	if merr != nil {
		return qe.NewServiceFailure("error serializing credentials").WithCause(merr)
	}
	if werr := os.WriteFile(s.Path, b, 0o600); werr != nil {
		return qe.NewServiceFailure("error persisting credential file").WithCause(werr)
	}
	return nil
}
