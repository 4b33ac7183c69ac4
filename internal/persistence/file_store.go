package persistence

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// sealedMagic prefixes files written with a passphrase.
var sealedMagic = []byte("DASEAL1\n")

const saltSize = 16

// ErrWrongPassphrase is returned when a sealed session file cannot be opened.
var ErrWrongPassphrase = errors.New("session file cannot be decrypted with the configured passphrase")

// FileStore persists slots as a JSON object in a single file, written with
// mode 0600 inside a 0700 directory. With a passphrase the file is sealed
// with XChaCha20-Poly1305 under an argon2id-derived key.
type FileStore struct {
	mu         sync.Mutex
	path       string
	passphrase []byte
}

// NewFileStore returns a store backed by path. An empty passphrase stores plaintext JSON.
func NewFileStore(path, passphrase string) *FileStore {
	var secret []byte
	if passphrase != "" {
		secret = []byte(passphrase)
	}
	return &FileStore{path: path, passphrase: secret}
}

// Path returns the backing file.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Get(_ context.Context, slot Slot) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, err := s.read()
	if err != nil {
		return "", err
	}
	return values[slot], nil
}

func (s *FileStore) Set(_ context.Context, slot Slot, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, err := s.read()
	if err != nil {
		return err
	}
	values[slot] = value
	return s.write(values)
}

func (s *FileStore) Delete(_ context.Context, slots ...Slot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, err := s.read()
	if err != nil && !errors.Is(err, ErrWrongPassphrase) {
		return err
	}
	if values == nil {
		values = make(map[Slot]string)
	}
	for _, slot := range slots {
		delete(values, slot)
	}
	if len(values) == 0 {
		if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing session file %s: %w", s.path, err)
		}
		return nil
	}
	return s.write(values)
}

func (s *FileStore) read() (map[Slot]string, error) {
	values := make(map[Slot]string)
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return values, nil
		}
		return nil, fmt.Errorf("reading session file %s: %w", s.path, err)
	}
	if len(data) == 0 {
		return values, nil
	}

	if bytes.HasPrefix(data, sealedMagic) {
		if s.passphrase == nil {
			return nil, ErrWrongPassphrase
		}
		data, err = s.open(data[len(sealedMagic):])
		if err != nil {
			return nil, err
		}
	}

	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("parsing session file %s: %w", s.path, err)
	}
	return values, nil
}

// write replaces the file atomically via a temp file and rename.
func (s *FileStore) write(values map[Slot]string) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}
	data = append(data, '\n')

	if s.passphrase != nil {
		sealed, err := s.seal(data)
		if err != nil {
			return err
		}
		data = append(append([]byte{}, sealedMagic...), sealed...)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating session directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return fmt.Errorf("creating temp session file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp session file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp session file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replacing session file %s: %w", s.path, err)
	}
	return nil
}

func (s *FileStore) deriveKey(salt []byte) []byte {
	return argon2.IDKey(s.passphrase, salt, 1, 64*1024, 4, chacha20poly1305.KeySize)
}

// seal returns salt || nonce || ciphertext.
func (s *FileStore) seal(plaintext []byte) ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generating salt: %w", err)
	}
	aead, err := chacha20poly1305.NewX(s.deriveKey(salt))
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generating nonce: %w", err)
	}
	out := make([]byte, 0, len(salt)+len(nonce)+len(plaintext)+aead.Overhead())
	out = append(out, salt...)
	out = append(out, nonce...)
	return aead.Seal(out, nonce, plaintext, sealedMagic), nil
}

func (s *FileStore) open(sealed []byte) ([]byte, error) {
	if len(sealed) < saltSize+chacha20poly1305.NonceSizeX {
		return nil, ErrWrongPassphrase
	}
	salt := sealed[:saltSize]
	nonce := sealed[saltSize : saltSize+chacha20poly1305.NonceSizeX]
	aead, err := chacha20poly1305.NewX(s.deriveKey(salt))
	if err != nil {
		return nil, err
	}
	plaintext, err := aead.Open(nil, nonce, sealed[saltSize+chacha20poly1305.NonceSizeX:], sealedMagic)
	if err != nil {
		return nil, ErrWrongPassphrase
	}
	return plaintext, nil
}
