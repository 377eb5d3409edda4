package handlers_test

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/storeflow/gateway/internal/gateway"
	"github.com/storeflow/gateway/internal/store"
)

// fakeStore is an in-memory store.Store for handler tests. Error fields
// force specific failures.
type fakeStore struct {
	mu       sync.Mutex
	creds    map[gateway.Key]gateway.Credential
	settings map[gateway.Key]store.TenantSettings

	pingErr     error
	settingsErr error
	credsErr    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		creds:    make(map[gateway.Key]gateway.Credential),
		settings: make(map[gateway.Key]store.TenantSettings),
	}
}

func (f *fakeStore) GetCredential(_ context.Context, key gateway.Key) (*gateway.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.credsErr != nil {
		return nil, f.credsErr
	}
	c, ok := f.creds[key]
	if !ok {
		return nil, gateway.ErrNotConfigured
	}
	return &c, nil
}

func (f *fakeStore) PutCredential(_ context.Context, cred *gateway.Credential) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.credsErr != nil {
		return f.credsErr
	}
	f.creds[cred.Key()] = *cred
	return nil
}

func (f *fakeStore) DeleteCredential(_ context.Context, key gateway.Key) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.credsErr != nil {
		return f.credsErr
	}
	delete(f.creds, key)
	return nil
}

func (f *fakeStore) ListCredentials(_ context.Context) ([]gateway.Credential, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.credsErr != nil {
		return nil, f.credsErr
	}
	out := make([]gateway.Credential, 0, len(f.creds))
	for _, c := range f.creds {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeStore) UpsertSettings(_ context.Context, s *store.TenantSettings) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.settingsErr != nil {
		return f.settingsErr
	}
	key := gateway.Key{Provider: s.Provider, TenantID: s.TenantID}
	now := time.Now().UTC()
	if existing, ok := f.settings[key]; ok {
		s.CreatedAt = existing.CreatedAt
	} else {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
	f.settings[key] = *s
	return nil
}

func (f *fakeStore) GetSettings(_ context.Context, tenantID string, provider gateway.Provider) (*store.TenantSettings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.settingsErr != nil {
		return nil, f.settingsErr
	}
	s, ok := f.settings[gateway.Key{Provider: provider, TenantID: tenantID}]
	if !ok {
		return nil, store.ErrSettingsNotFound
	}
	return &s, nil
}

func (f *fakeStore) ListSettings(_ context.Context, tenantID string) ([]store.TenantSettings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.settingsErr != nil {
		return nil, f.settingsErr
	}
	out := []store.TenantSettings{}
	for key, s := range f.settings {
		if key.TenantID == tenantID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) DeleteSettings(_ context.Context, tenantID string, provider gateway.Provider) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.settingsErr != nil {
		return f.settingsErr
	}
	key := gateway.Key{Provider: provider, TenantID: tenantID}
	if _, ok := f.settings[key]; !ok {
		return store.ErrSettingsNotFound
	}
	delete(f.settings, key)
	return nil
}

func (f *fakeStore) Migrate(context.Context) error { return nil }

func (f *fakeStore) Ping(context.Context) error { return f.pingErr }

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
