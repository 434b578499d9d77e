package keystore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"golang.org/x/crypto/argon2"
)

// File format: [magic (4)] [version (1)] [salt (16)] [nonce (12)] [sealed payload].
// The payload is a JSON map encrypted with AES-256-GCM; the header is
// bound as additional authenticated data.
const (
	magicHeader = "GLKS"
	fileVersion = byte(0x01)
	saltLength  = 16
	nonceLength = 12
)

// Argon2id parameters for deriving the sealing key from the master key.
const (
	argonTime    = 3
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
)

// FileKeystore stores secrets in a single encrypted file. Each save
// draws a fresh salt, so the sealing key rotates on every write.
type FileKeystore struct {
	path      string
	masterKey []byte
	mu        sync.RWMutex
}

// MasterKeySource supplies the master key material for sealing.
type MasterKeySource interface {
	MasterKey() ([]byte, error)
}

// machineSource derives the master key from stable machine identity.
// It protects against casual file disclosure, not against an attacker
// with code execution on the same account.
type machineSource struct{}

func (machineSource) MasterKey() ([]byte, error) {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	username := os.Getenv("USER")
	if username == "" {
		username = os.Getenv("USERNAME")
	}

	material := hostname + ":" + username + ":genlang-keystore"
	hash := sha256.Sum256([]byte(material))
	return hash[:], nil
}

// OpenFile opens a file keystore at path with the machine-derived
// master key.
func OpenFile(path string) (*FileKeystore, error) {
	return OpenFileWithSource(path, machineSource{})
}

// OpenFileWithSource opens a file keystore at path, sealing with key
// material from source.
func OpenFileWithSource(path string, source MasterKeySource) (*FileKeystore, error) {
	masterKey, err := source.MasterKey()
	if err != nil {
		return nil, fmt.Errorf("keystore: master key: %w", err)
	}
	return &FileKeystore{path: path, masterKey: masterKey}, nil
}

// Set stores a secret under name.
func (f *FileKeystore) Set(name, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.load()
	if err != nil {
		return err
	}
	data[name] = value
	return f.save(data)
}

// Get retrieves a secret by name.
func (f *FileKeystore) Get(name string) (string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	data, err := f.load()
	if err != nil {
		return "", err
	}
	value, ok := data[name]
	if !ok {
		return "", &ErrKeyNotFound{Name: name}
	}
	return value, nil
}

// Delete removes a secret by name.
func (f *FileKeystore) Delete(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := data[name]; !ok {
		return &ErrKeyNotFound{Name: name}
	}
	delete(data, name)
	return f.save(data)
}

// List returns stored names in sorted order.
func (f *FileKeystore) List() ([]string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	data, err := f.load()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(data))
	for name := range data {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (f *FileKeystore) load() (map[string]string, error) {
	data := make(map[string]string)

	sealed, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return data, nil
		}
		return nil, err
	}
	if len(sealed) == 0 {
		return data, nil
	}

	plaintext, err := f.open(sealed)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(plaintext, &data); err != nil {
		return nil, err
	}
	return data, nil
}

func (f *FileKeystore) save(data map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return err
	}

	plaintext, err := json.Marshal(data)
	if err != nil {
		return err
	}
	sealed, err := f.seal(plaintext)
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, sealed, 0o600)
}

func deriveKey(masterKey, salt []byte) []byte {
	return argon2.IDKey(masterKey, salt, argonTime, argonMemory, argonThreads, argonKeyLen)
}

func (f *FileKeystore) seal(plaintext []byte) ([]byte, error) {
	salt := make([]byte, saltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, err
	}

	gcm, err := newGCM(deriveKey(f.masterKey, salt))
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	header := make([]byte, 0, len(magicHeader)+1+saltLength+nonceLength)
	header = append(header, []byte(magicHeader)...)
	header = append(header, fileVersion)
	header = append(header, salt...)
	header = append(header, nonce...)

	return append(header, gcm.Seal(nil, nonce, plaintext, header)...), nil
}

func (f *FileKeystore) open(sealed []byte) ([]byte, error) {
	headerLen := len(magicHeader) + 1 + saltLength + nonceLength
	if len(sealed) < headerLen {
		return nil, errors.New("keystore: file too short")
	}
	if string(sealed[:len(magicHeader)]) != magicHeader {
		return nil, errors.New("keystore: unrecognized file format")
	}
	if sealed[len(magicHeader)] != fileVersion {
		return nil, fmt.Errorf("keystore: unsupported format version %d", sealed[len(magicHeader)])
	}

	offset := len(magicHeader) + 1
	salt := sealed[offset : offset+saltLength]
	offset += saltLength
	nonce := sealed[offset : offset+nonceLength]
	offset += nonceLength
	header := sealed[:offset]

	gcm, err := newGCM(deriveKey(f.masterKey, salt))
	if err != nil {
		return nil, err
	}

	plaintext, err := gcm.Open(nil, nonce, sealed[offset:], header)
	if err != nil {
		return nil, errors.New("keystore: decryption failed, wrong machine or corrupted file")
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

var _ Keystore = (*FileKeystore)(nil)
