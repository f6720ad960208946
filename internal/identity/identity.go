// Package identity verifies and creates caller accounts. Only the opaque
// Principal.Handle ever leaves this package.
package identity

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"rolefit/internal/errors"
)

var (
	ErrInvalidCredentials = stderrors.New("invalid credentials")
	ErrAccountExists      = stderrors.New("account already exists")
	ErrWeakSecret         = stderrors.New("secret too weak")
)

const (
	// MinSecretLength is the shortest secret CreateAccount accepts.
	MinSecretLength = 8
	// MaxSecretLength is bcrypt's input limit in bytes.
	MaxSecretLength = 72
)

// Principal is an authenticated caller.
type Principal struct {
	Handle    string    `json:"handle"`
	CreatedAt time.Time `json:"createdAt"`
}

// Provider is the minimal identity capability the service depends on.
type Provider interface {
	VerifyCredentials(ctx context.Context, handle, secret string) (Principal, error)
	CreateAccount(ctx context.Context, handle, secret string) (Principal, error)
}

type account struct {
	principal Principal
	hash      []byte
}

// MemoryProvider keeps bcrypt-hashed accounts in process memory.
type MemoryProvider struct {
	mu       sync.RWMutex
	accounts map[string]account
	cost     int
	now      func() time.Time
}

// NewMemoryProvider creates an empty provider. cost outside bcrypt's range
// selects bcrypt.DefaultCost.
func NewMemoryProvider(cost int) *MemoryProvider {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &MemoryProvider{
		accounts: make(map[string]account),
		cost:     cost,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// NormalizeHandle trims and lowercases a handle.
func NormalizeHandle(handle string) string {
	return strings.ToLower(strings.TrimSpace(handle))
}

// CreateAccount registers handle with secret.
func (p *MemoryProvider) CreateAccount(ctx context.Context, handle, secret string) (Principal, error) {
	if err := ctx.Err(); err != nil {
		return Principal{}, err
	}

	handle = NormalizeHandle(handle)
	if handle == "" {
		return Principal{}, errors.NewValidationError(errors.ErrCodeInvalidRequest, "handle cannot be empty", nil)
	}
	if strings.ContainsAny(handle, ": \t") {
		return Principal{}, errors.NewValidationError(errors.ErrCodeInvalidRequest, "handle cannot contain spaces or colons", nil)
	}
	if len(secret) < MinSecretLength {
		return Principal{}, errors.NewValidationError(errors.ErrCodeWeakSecret,
			fmt.Sprintf("secret must be at least %d characters", MinSecretLength), ErrWeakSecret)
	}
	if len(secret) > MaxSecretLength {
		return Principal{}, errors.NewValidationError(errors.ErrCodeSecretTooLong,
			fmt.Sprintf("secret must be at most %d bytes", MaxSecretLength), nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), p.cost)
	if err != nil {
		return Principal{}, errors.NewInternalError("HASH_FAILED", "failed to hash secret", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.accounts[handle]; exists {
		return Principal{}, errors.NewValidationError(errors.ErrCodeAccountExists,
			fmt.Sprintf("account %q already exists", handle), ErrAccountExists)
	}

	principal := Principal{Handle: handle, CreatedAt: p.now()}
	p.accounts[handle] = account{principal: principal, hash: hash}
	return principal, nil
}

// VerifyCredentials checks secret against the stored hash for handle.
// Unknown handles and wrong secrets fail identically.
func (p *MemoryProvider) VerifyCredentials(ctx context.Context, handle, secret string) (Principal, error) {
	if err := ctx.Err(); err != nil {
		return Principal{}, err
	}

	p.mu.RLock()
	acct, ok := p.accounts[NormalizeHandle(handle)]
	p.mu.RUnlock()

	if !ok || bcrypt.CompareHashAndPassword(acct.hash, []byte(secret)) != nil {
		return Principal{}, errors.NewAuthError(errors.ErrCodeInvalidCredentials, "invalid handle or secret", ErrInvalidCredentials)
	}
	return acct.principal, nil
}
