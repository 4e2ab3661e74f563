// Package memory is an in-process storage.Store for development and tests.
// It mirrors the Postgres schema constraints: unique emails, unique
// (user, organisation) links and foreign keys on links and tokens.
package memory

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hongminglow/orgs-be/internal/models"
	"github.com/hongminglow/orgs-be/internal/storage"
)

var _ storage.Store = (*Store)(nil)

type linkKey struct {
	userID string
	orgID  string
}

type userRow struct {
	seq  int64
	user models.User
}

type orgRow struct {
	seq int64
	org models.Organisation
}

type state struct {
	seq    int64
	users  map[string]userRow
	emails map[string]string
	orgs   map[string]orgRow
	links  map[linkKey]models.Membership
	tokens map[string]models.AccessToken
}

func newState() *state {
	return &state{
		users:  make(map[string]userRow),
		emails: make(map[string]string),
		orgs:   make(map[string]orgRow),
		links:  make(map[linkKey]models.Membership),
		tokens: make(map[string]models.AccessToken),
	}
}

func (st *state) clone() *state {
	return &state{
		seq:    st.seq,
		users:  maps.Clone(st.users),
		emails: maps.Clone(st.emails),
		orgs:   maps.Clone(st.orgs),
		links:  maps.Clone(st.links),
		tokens: maps.Clone(st.tokens),
	}
}

func (st *state) next() int64 {
	st.seq++
	return st.seq
}

// Store keeps every table in maps guarded by one mutex.
type Store struct {
	mu  sync.Mutex
	st  *state
	now func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		st:  newState(),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Close is a no-op.
func (s *Store) Close() {}

func (s *Store) Users() storage.UserStore                 { return view{s: s} }
func (s *Store) Organisations() storage.OrganisationStore { return view{s: s} }
func (s *Store) Memberships() storage.MembershipStore     { return view{s: s} }
func (s *Store) Tokens() storage.TokenStore               { return view{s: s} }

// InTx applies fn to a private copy of the state and publishes the copy only
// when fn succeeds. The store lock is held for the duration, so fn must use
// the supplied Repos and never the Store itself.
func (s *Store) InTx(ctx context.Context, fn func(tx storage.Repos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft := s.st.clone()
	if err := fn(txRepos{v: view{st: draft, now: s.now}}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.st = draft
	return nil
}

type txRepos struct {
	v view
}

func (t txRepos) Users() storage.UserStore                 { return t.v }
func (t txRepos) Organisations() storage.OrganisationStore { return t.v }
func (t txRepos) Memberships() storage.MembershipStore     { return t.v }
func (t txRepos) Tokens() storage.TokenStore               { return t.v }

// view implements every repository. Outside a transaction s is set and each
// call locks the store; inside one st points at the transaction's draft.
type view struct {
	s   *Store
	st  *state
	now func() time.Time
}

func (v view) do(fn func(st *state, now time.Time) error) error {
	if v.st != nil {
		return fn(v.st, v.now())
	}
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	return fn(v.s.st, v.s.now())
}

func (v view) CreateUser(_ context.Context, user models.User) (models.User, error) {
	user.Email = storage.NormalizeEmail(user.Email)
	if err := storage.CheckUser(user); err != nil {
		return models.User{}, err
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	err := v.do(func(st *state, now time.Time) error {
		if _, ok := st.emails[user.Email]; ok {
			return fmt.Errorf("%w: users_email_unique_idx", storage.ErrAlreadyExists)
		}
		if _, ok := st.users[user.ID]; ok {
			return fmt.Errorf("%w: users_pkey", storage.ErrAlreadyExists)
		}
		user.CreatedAt, user.UpdatedAt = now, now
		st.users[user.ID] = userRow{seq: st.next(), user: user}
		st.emails[user.Email] = user.ID
		return nil
	})
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (v view) FindByID(_ context.Context, id string) (models.User, error) {
	var user models.User
	err := v.do(func(st *state, _ time.Time) error {
		row, ok := st.users[id]
		if !ok {
			return storage.ErrNotFound
		}
		user = row.user
		return nil
	})
	return user, err
}

func (v view) FindByEmail(ctx context.Context, email string) (models.User, error) {
	var id string
	err := v.do(func(st *state, _ time.Time) error {
		var ok bool
		id, ok = st.emails[storage.NormalizeEmail(email)]
		if !ok {
			return storage.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return models.User{}, err
	}
	return v.FindByID(ctx, id)
}

func (v view) CreateOrganisation(_ context.Context, org models.Organisation) (models.Organisation, error) {
	if err := storage.CheckOrganisation(org); err != nil {
		return models.Organisation{}, err
	}
	if org.ID == "" {
		org.ID = uuid.NewString()
	}
	err := v.do(func(st *state, now time.Time) error {
		if _, ok := st.orgs[org.ID]; ok {
			return fmt.Errorf("%w: organisations_pkey", storage.ErrAlreadyExists)
		}
		org.CreatedAt, org.UpdatedAt = now, now
		st.orgs[org.ID] = orgRow{seq: st.next(), org: org}
		return nil
	})
	if err != nil {
		return models.Organisation{}, err
	}
	return org, nil
}

func (v view) FindOrganisation(_ context.Context, id string) (models.Organisation, error) {
	var org models.Organisation
	err := v.do(func(st *state, _ time.Time) error {
		row, ok := st.orgs[id]
		if !ok {
			return storage.ErrNotFound
		}
		org = row.org
		return nil
	})
	return org, err
}

func (v view) Link(_ context.Context, userID, orgID string) (bool, error) {
	var created bool
	err := v.do(func(st *state, now time.Time) error {
		if _, ok := st.users[userID]; !ok {
			return fmt.Errorf("%w: org_user_user_id_fkey", storage.ErrConstraint)
		}
		if _, ok := st.orgs[orgID]; !ok {
			return fmt.Errorf("%w: org_user_org_id_fkey", storage.ErrConstraint)
		}
		key := linkKey{userID: userID, orgID: orgID}
		if _, ok := st.links[key]; ok {
			return nil
		}
		st.links[key] = models.Membership{UserID: userID, OrgID: orgID, CreatedAt: now, UpdatedAt: now}
		created = true
		return nil
	})
	return created, err
}

func (v view) OrganisationsOf(_ context.Context, userID string) ([]models.Organisation, error) {
	var rows []orgRow
	err := v.do(func(st *state, _ time.Time) error {
		for key := range st.links {
			if key.userID == userID {
				rows = append(rows, st.orgs[key.orgID])
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })

	orgs := make([]models.Organisation, 0, len(rows))
	for _, row := range rows {
		orgs = append(orgs, row.org)
	}
	return orgs, nil
}

func (v view) OrganisationOf(_ context.Context, userID, orgID string) (models.Organisation, error) {
	var org models.Organisation
	err := v.do(func(st *state, _ time.Time) error {
		if _, ok := st.links[linkKey{userID: userID, orgID: orgID}]; !ok {
			return storage.ErrNotFound
		}
		org = st.orgs[orgID].org
		return nil
	})
	return org, err
}

func (v view) MembersOf(_ context.Context, orgID string) ([]models.User, error) {
	var rows []userRow
	err := v.do(func(st *state, _ time.Time) error {
		for key := range st.links {
			if key.orgID == orgID {
				rows = append(rows, st.users[key.userID])
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })

	users := make([]models.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.user)
	}
	return users, nil
}

func (v view) CreateToken(_ context.Context, token models.AccessToken) error {
	return v.do(func(st *state, now time.Time) error {
		if _, ok := st.users[token.UserID]; !ok {
			return fmt.Errorf("%w: auth_access_tokens_user_id_fkey", storage.ErrConstraint)
		}
		if _, ok := st.tokens[token.ID]; ok {
			return fmt.Errorf("%w: auth_access_tokens_pkey", storage.ErrAlreadyExists)
		}
		token.CreatedAt, token.UpdatedAt = now, now
		token.Hash = append([]byte(nil), token.Hash...)
		st.tokens[token.ID] = token
		return nil
	})
}

func (v view) FindToken(_ context.Context, id string) (models.AccessToken, error) {
	var token models.AccessToken
	err := v.do(func(st *state, _ time.Time) error {
		t, ok := st.tokens[id]
		if !ok {
			return storage.ErrNotFound
		}
		token = t
		return nil
	})
	return token, err
}

func (v view) TouchToken(_ context.Context, id string, usedAt time.Time) error {
	return v.do(func(st *state, _ time.Time) error {
		t, ok := st.tokens[id]
		if !ok {
			return storage.ErrNotFound
		}
		t.LastUsedAt = &usedAt
		t.UpdatedAt = usedAt
		st.tokens[id] = t
		return nil
	})
}
