package out

import (
	"context"
	"fmt"
	"strconv"

	"caltrack/internal/modules/account/domain"
	accountout "caltrack/internal/modules/account/port/out"
	"caltrack/internal/platform/kvstore"
)

const (
	keyToken           = "auth.token"
	keyProfileComplete = "auth.profile_complete"
)

// KV is the subset of kvstore.Store the credential store needs.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	SetMany(ctx context.Context, pairs ...kvstore.Pair) error
	Delete(ctx context.Context, keys ...string) error
}

type KVCredentialStore struct {
	kv KV
}

func NewKVCredentialStore(kv KV) accountout.CredentialStore {
	return &KVCredentialStore{kv: kv}
}

func (s *KVCredentialStore) Load(ctx context.Context) (domain.Credentials, error) {
	token, _, err := s.kv.Get(ctx, keyToken)
	if err != nil {
		return domain.Credentials{}, fmt.Errorf("load token: %w", err)
	}
	raw, ok, err := s.kv.Get(ctx, keyProfileComplete)
	if err != nil {
		return domain.Credentials{}, fmt.Errorf("load profile flag: %w", err)
	}
	complete := false
	if ok {
		complete, _ = strconv.ParseBool(raw)
	}
	return domain.Credentials{Token: token, ProfileComplete: complete}, nil
}

// Save writes the token and the flag together so a stored token is never
// paired with the flag of a previous account.
func (s *KVCredentialStore) Save(ctx context.Context, creds domain.Credentials) error {
	err := s.kv.SetMany(ctx,
		kvstore.Pair{Key: keyToken, Value: creds.Token},
		kvstore.Pair{Key: keyProfileComplete, Value: strconv.FormatBool(creds.ProfileComplete)},
	)
	if err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	return nil
}

func (s *KVCredentialStore) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, keyToken, keyProfileComplete); err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	return nil
}
