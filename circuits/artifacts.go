package circuits

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/vocdoni/passport-z-sandbox/log"
	"github.com/vocdoni/passport-z-sandbox/types"
)

// CheckHashes determines if the hashes of the artifacts are checked when
// they are loaded or downloaded. Set PASSPORT_CHECK_HASHES to false or 0 to
// disable it.
var CheckHashes = true

// BaseDir is the local artifact cache. Defaults to PASSPORT_ARTIFACTS_DIR
// or ~/.cache/passport-artifacts.
var BaseDir string

func init() {
	if checkHashes := os.Getenv("PASSPORT_CHECK_HASHES"); checkHashes != "" {
		if strings.ToLower(checkHashes) == "false" || checkHashes == "0" {
			CheckHashes = false
		}
	}
	if dir := os.Getenv("PASSPORT_ARTIFACTS_DIR"); dir != "" {
		BaseDir = dir
	} else {
		home, err := os.UserHomeDir()
		if err != nil || home == "" {
			log.Warnf("unable to access user home directory, using temporary directory: %v", err)
			BaseDir = filepath.Join(os.TempDir(), "passport-artifacts")
		} else {
			BaseDir = filepath.Join(home, ".cache", "passport-artifacts")
		}
	}
}

// Artifact is a file needed to prove a circuit (the witness calculator
// wasm, the proving key, the verification key). Its content is cached
// locally under its sha256 hash.
type Artifact struct {
	Name      string
	RemoteURL string
	Hash      types.HexBytes
	Content   []byte
}

// Load reads the artifact from the local cache. It does nothing if the
// content is already set.
func (a *Artifact) Load() error {
	if len(a.Content) != 0 {
		return nil
	}
	if len(a.Hash) == 0 {
		return fmt.Errorf("artifact %s: hash not provided", a.Name)
	}
	content, err := load(a.Hash)
	if err != nil {
		return fmt.Errorf("artifact %s: %w", a.Name, err)
	}
	if content == nil {
		return fmt.Errorf("artifact %s: not found in %s", a.Name, BaseDir)
	}
	a.Content = content
	return nil
}

// Download fetches the artifact from its remote URL into the local cache.
func (a *Artifact) Download(ctx context.Context) error {
	if a.RemoteURL == "" {
		return fmt.Errorf("artifact %s: remote url not provided", a.Name)
	}
	if len(a.Hash) == 0 {
		return fmt.Errorf("artifact %s: hash not provided", a.Name)
	}
	if err := downloadAndStore(ctx, a.Hash, a.RemoteURL); err != nil {
		return fmt.Errorf("artifact %s: %w", a.Name, err)
	}
	return nil
}

// LoadOrDownload loads the artifact from the cache, downloading it first if
// it is not there.
func (a *Artifact) LoadOrDownload(ctx context.Context) error {
	if err := a.Load(); err == nil {
		return nil
	}
	if err := a.Download(ctx); err != nil {
		return err
	}
	return a.Load()
}

// CircuitArtifacts groups the artifacts of a circom circuit.
type CircuitArtifacts struct {
	wasm            *Artifact
	provingKey      *Artifact
	verificationKey *Artifact
}

// NewCircuitArtifacts returns the artifacts of a circuit. Any of them can be
// nil if not needed.
func NewCircuitArtifacts(wasm, provingKey, verificationKey *Artifact) *CircuitArtifacts {
	return &CircuitArtifacts{
		wasm:            wasm,
		provingKey:      provingKey,
		verificationKey: verificationKey,
	}
}

func (ca *CircuitArtifacts) all() []*Artifact {
	var out []*Artifact
	for _, a := range []*Artifact{ca.wasm, ca.provingKey, ca.verificationKey} {
		if a != nil {
			out = append(out, a)
		}
	}
	return out
}

// LoadAll loads every artifact, downloading the missing ones.
func (ca *CircuitArtifacts) LoadAll(ctx context.Context) error {
	for _, a := range ca.all() {
		if err := a.LoadOrDownload(ctx); err != nil {
			return err
		}
	}
	return nil
}

// DownloadAll downloads every artifact into the local cache.
func (ca *CircuitArtifacts) DownloadAll(ctx context.Context) error {
	for _, a := range ca.all() {
		if err := a.Load(); err == nil {
			continue
		}
		if err := a.Download(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Wasm returns the witness calculator, nil if not loaded.
func (ca *CircuitArtifacts) Wasm() []byte {
	if ca.wasm == nil {
		return nil
	}
	return ca.wasm.Content
}

// ProvingKey returns the zkey, nil if not loaded.
func (ca *CircuitArtifacts) ProvingKey() []byte {
	if ca.provingKey == nil {
		return nil
	}
	return ca.provingKey.Content
}

// VerificationKey returns the verification key, nil if not loaded.
func (ca *CircuitArtifacts) VerificationKey() []byte {
	if ca.verificationKey == nil {
		return nil
	}
	return ca.verificationKey.Content
}

func load(hash []byte) ([]byte, error) {
	path := filepath.Join(BaseDir, hex.EncodeToString(hash))
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("error reading file %s: %w", path, err)
	}
	if CheckHashes {
		if fileHash := sha256.Sum256(content); !bytes.Equal(fileHash[:], hash) {
			return nil, fmt.Errorf("hash mismatch for file %s: expected %x, got %x", path, hash, fileHash)
		}
	}
	return content, nil
}

// progressReader counts the bytes read so far.
type progressReader struct {
	reader io.Reader
	total  int64 // updated atomically
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.reader.Read(p)
	atomic.AddInt64(&pr.total, int64(n))
	return n, err
}

// downloadAndStore downloads fileURL into the cache, resuming a previous
// partial download if there is one. The file is only moved to its final
// path once its hash is checked.
func downloadAndStore(ctx context.Context, expectedHash []byte, fileURL string) error {
	if _, err := url.Parse(fileURL); err != nil {
		return fmt.Errorf("error parsing the file URL provided: %w", err)
	}
	if err := os.MkdirAll(BaseDir, 0o755); err != nil {
		return fmt.Errorf("error creating the base directory: %w", err)
	}
	path := filepath.Join(BaseDir, hex.EncodeToString(expectedHash))
	partialPath := path + ".partial"

	var startByte int64
	if info, err := os.Stat(partialPath); err == nil {
		startByte = info.Size()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return fmt.Errorf("error creating the file request: %w", err)
	}
	if startByte > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", startByte))
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("error performing the request: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK && res.StatusCode != http.StatusPartialContent {
		return fmt.Errorf("error downloading file %s: http status: %d", fileURL, res.StatusCode)
	}

	hasher := sha256.New()
	fileMode := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if startByte > 0 && res.StatusCode == http.StatusPartialContent {
		fileMode = os.O_APPEND | os.O_WRONLY
		existing, err := os.Open(partialPath)
		if err != nil {
			return fmt.Errorf("error opening partial download: %w", err)
		}
		_, err = io.Copy(hasher, existing)
		existing.Close()
		if err != nil {
			return fmt.Errorf("error hashing partial download: %w", err)
		}
	}
	fd, err := os.OpenFile(partialPath, fileMode, 0o644)
	if err != nil {
		return fmt.Errorf("error opening artifact file: %w", err)
	}
	defer fd.Close()

	pr := &progressReader{reader: res.Body}
	done := make(chan error, 1)
	go func() {
		_, err := io.Copy(io.MultiWriter(fd, hasher), pr)
		done <- err
	}()
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for copying := true; copying; {
		select {
		case err := <-done:
			if err != nil {
				return fmt.Errorf("error copying data to file: %w", err)
			}
			copying = false
		case <-ticker.C:
			log.Debugw("downloading artifact", "url", fileURL,
				"downloaded", fmt.Sprintf("%.2fMiB", float64(atomic.LoadInt64(&pr.total))/(1024*1024)),
				"total", res.ContentLength+startByte)
		}
	}

	if CheckHashes {
		if computed := hasher.Sum(nil); !bytes.Equal(computed, expectedHash) {
			os.Remove(partialPath)
			return fmt.Errorf("hash mismatch: expected %x, got %x", expectedHash, computed)
		}
	}
	if err := os.Rename(partialPath, path); err != nil {
		return fmt.Errorf("error renaming file: %w", err)
	}
	return nil
}
