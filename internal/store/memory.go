package store

import (
	"context"
	"sort"
	"sync"

	"github.com/serroba/shortify/internal/account"
	"github.com/serroba/shortify/internal/shortener"
)

// MemoryStore is an in-memory implementation of shortener.Repository and account.Repository.
type MemoryStore struct {
	mu sync.RWMutex

	links     map[int64]shortener.ShortLink
	byLongURL map[string]int64
	linkSeq   int64

	accounts      map[int64]account.Account
	byUsername    map[string]int64
	byDisplayName map[string]int64
	accountSeq    int64
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		links:         make(map[int64]shortener.ShortLink),
		byLongURL:     make(map[string]int64),
		accounts:      make(map[int64]account.Account),
		byUsername:    make(map[string]int64),
		byDisplayName: make(map[string]int64),
	}
}

// LinkStore exposes the link half of the store.
func (m *MemoryStore) LinkStore() shortener.Repository {
	return memoryLinks{m}
}

// AccountStore exposes the account half of the store.
func (m *MemoryStore) AccountStore() account.Repository {
	return memoryAccounts{m}
}

type memoryLinks struct{ m *MemoryStore }

func (s memoryLinks) Create(_ context.Context, link *shortener.ShortLink) error {
	m := s.m

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byLongURL[link.LongURL]; ok {
		return shortener.ErrDuplicateURL
	}

	m.linkSeq++
	link.ID = m.linkSeq
	m.links[link.ID] = *link
	m.byLongURL[link.LongURL] = link.ID

	return nil
}

func (s memoryLinks) AssignCode(_ context.Context, id int64, code shortener.Code) error {
	m := s.m

	m.mu.Lock()
	defer m.mu.Unlock()

	link, ok := m.links[id]
	if !ok {
		return shortener.ErrNotFound
	}

	if link.Code == "" {
		link.Code = code
		m.links[id] = link
	}

	return nil
}

func (s memoryLinks) GetByID(_ context.Context, id int64) (*shortener.ShortLink, error) {
	m := s.m

	m.mu.RLock()
	defer m.mu.RUnlock()

	link, ok := m.links[id]
	if !ok {
		return nil, shortener.ErrNotFound
	}

	return &link, nil
}

func (s memoryLinks) GetByLongURL(_ context.Context, longURL string) (*shortener.ShortLink, error) {
	m := s.m

	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byLongURL[longURL]
	if !ok {
		return nil, shortener.ErrNotFound
	}

	link := m.links[id]

	return &link, nil
}

func (s memoryLinks) ExistsByLongURL(_ context.Context, longURL string) (bool, error) {
	m := s.m

	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.byLongURL[longURL]

	return ok, nil
}

func (s memoryLinks) ListByOwner(_ context.Context, ownerID int64) ([]*shortener.ShortLink, error) {
	m := s.m

	m.mu.RLock()
	defer m.mu.RUnlock()

	var links []*shortener.ShortLink

	for _, link := range m.links {
		if link.OwnerID == ownerID {
			l := link
			links = append(links, &l)
		}
	}

	sort.Slice(links, func(i, j int) bool { return links[i].ID > links[j].ID })

	return links, nil
}

func (s memoryLinks) Count(_ context.Context) (int64, error) {
	m := s.m

	m.mu.RLock()
	defer m.mu.RUnlock()

	return int64(len(m.links)), nil
}

type memoryAccounts struct{ m *MemoryStore }

func (s memoryAccounts) Create(_ context.Context, acct *account.Account) error {
	m := s.m

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byUsername[acct.Username]; ok {
		return account.ErrDuplicateAccount
	}

	if _, ok := m.byDisplayName[acct.DisplayName]; ok {
		return account.ErrDuplicateAccount
	}

	m.accountSeq++
	acct.ID = m.accountSeq
	m.accounts[acct.ID] = *acct
	m.byUsername[acct.Username] = acct.ID
	m.byDisplayName[acct.DisplayName] = acct.ID

	return nil
}

func (s memoryAccounts) GetByID(_ context.Context, id int64) (*account.Account, error) {
	m := s.m

	m.mu.RLock()
	defer m.mu.RUnlock()

	acct, ok := m.accounts[id]
	if !ok {
		return nil, account.ErrNotFound
	}

	return &acct, nil
}

func (s memoryAccounts) GetByUsername(_ context.Context, username string) (*account.Account, error) {
	m := s.m

	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byUsername[username]
	if !ok {
		return nil, account.ErrNotFound
	}

	acct := m.accounts[id]

	return &acct, nil
}

// Update rewrites the display name and password hash. Username and id are immutable.
func (s memoryAccounts) Update(_ context.Context, acct *account.Account) error {
	m := s.m

	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.accounts[acct.ID]
	if !ok {
		return account.ErrNotFound
	}

	if owner, taken := m.byDisplayName[acct.DisplayName]; taken && owner != acct.ID {
		return account.ErrDuplicateAccount
	}

	delete(m.byDisplayName, current.DisplayName)

	current.DisplayName = acct.DisplayName
	current.PasswordHash = acct.PasswordHash
	m.accounts[acct.ID] = current
	m.byDisplayName[current.DisplayName] = acct.ID

	return nil
}

func (s memoryAccounts) Count(_ context.Context) (int64, error) {
	m := s.m

	m.mu.RLock()
	defer m.mu.RUnlock()

	return int64(len(m.accounts)), nil
}

// Shutdown is a no-op for MemoryStore.
func (m *MemoryStore) Shutdown() error {
	return nil
}

var (
	_ shortener.Repository = memoryLinks{}
	_ account.Repository   = memoryAccounts{}
)
