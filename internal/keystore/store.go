package keystore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"emberchain/go-node/internal/keys"
)

const keyFileExt = ".json"

// ErrUnlockThrottled means too many failed passphrase attempts happened
// against the same file in a short window.
var ErrUnlockThrottled = errors.New("keystore unlock throttled")

// Store manages a directory of key files, one per account. Unlock attempts
// are rate limited per file so a scripted passphrase guess cannot hammer the
// argon2 derivation.
type Store struct {
	dir    string
	kdf    KDFParams
	mu     sync.Mutex
	byFile map[string]*unlockEntry
	hits   uint64
}

type unlockEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

const unlockIdleTTL = 10 * time.Minute

func NewStore(dir string, kdf KDFParams) *Store {
	return &Store{
		dir:    dir,
		kdf:    kdf,
		byFile: make(map[string]*unlockEntry),
	}
}

func (s *Store) Dir() string { return s.dir }

func (s *Store) path(accountID string) string {
	return filepath.Join(s.dir, accountID+keyFileExt)
}

// Save writes the key pair under its account id. A non-empty passphrase
// seals the file; an empty one stores it plain.
func (s *Store) Save(sk keys.SecretKey, passphrase string) (string, error) {
	kf, err := NewKeyFile(sk)
	if err != nil {
		return "", err
	}
	path := s.path(kf.AccountID)
	if passphrase == "" {
		err = SavePlain(path, kf)
	} else {
		err = SaveEncrypted(path, kf, passphrase, s.kdf)
	}
	if err != nil {
		return "", err
	}
	return kf.AccountID, nil
}

// Unlock loads and decodes the key pair for accountID. Failed attempts count
// against a per-file token bucket; once drained further attempts fail with
// ErrUnlockThrottled until tokens refill. Successful unlocks refund their
// token, so legitimate repeated use is never throttled.
func (s *Store) Unlock(accountID, passphrase string) (keys.SecretKey, error) {
	path := s.path(accountID)
	now := time.Now()
	res := s.reserveAttempt(path, now)
	if res == nil {
		return keys.SecretKey{}, ErrUnlockThrottled
	}
	kf, err := Load(path, passphrase)
	if err != nil {
		return keys.SecretKey{}, err
	}
	sk, _, err := kf.Decode()
	if err != nil {
		return keys.SecretKey{}, err
	}
	res.Cancel()
	return sk, nil
}

// List returns the account ids with a key file in the store directory.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), keyFileExt) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), keyFileExt))
	}
	sort.Strings(ids)
	return ids, nil
}

// Delete removes the key file for accountID.
func (s *Store) Delete(accountID string) error {
	if err := os.Remove(s.path(accountID)); err != nil {
		return fmt.Errorf("delete key file: %w", err)
	}
	return nil
}

// reserveAttempt takes one token from the per-file bucket, returning nil when
// the bucket is drained. The caller cancels the reservation if the unlock
// succeeds.
func (s *Store) reserveAttempt(path string, now time.Time) *rate.Reservation {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.byFile[path]
	if !ok {
		e = &unlockEntry{
			limiter:  rate.NewLimiter(rate.Every(2*time.Second), 5),
			lastSeen: now,
		}
		s.byFile[path] = e
	}
	e.lastSeen = now
	res := e.limiter.ReserveN(now, 1)
	if res.OK() && res.DelayFrom(now) > 0 {
		res.CancelAt(now)
		res = nil
	} else if !res.OK() {
		res = nil
	}

	s.hits++
	if s.hits%512 == 0 {
		cutoff := now.Add(-unlockIdleTTL)
		for k, v := range s.byFile {
			if v.lastSeen.Before(cutoff) {
				delete(s.byFile, k)
			}
		}
	}

	return res
}
