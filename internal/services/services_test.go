package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/orgs-be/internal/auth"
	"github.com/hongminglow/orgs-be/internal/fixtures"
	"github.com/hongminglow/orgs-be/internal/metrics"
	"github.com/hongminglow/orgs-be/internal/models"
	"github.com/hongminglow/orgs-be/internal/models/dto"
	"github.com/hongminglow/orgs-be/internal/storage"
	"github.com/hongminglow/orgs-be/internal/storage/memory"
	"github.com/hongminglow/orgs-be/internal/validation"
)

type countingRecorder struct {
	mu            sync.Mutex
	registrations map[string]int
	logins        map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{registrations: map[string]int{}, logins: map[string]int{}}
}

func (c *countingRecorder) ObserveRegistration(outcome string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.registrations[outcome]++
}

func (c *countingRecorder) ObserveLogin(outcome string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logins[outcome]++
}

type harness struct {
	store    storage.Store
	hasher   *auth.PasswordHasher
	identity *Identity
	reg      *Registration
	authn    *Authentication
	access   *AccessControl
	orgs     *Organisations
	users    *fixtures.UserFactory
	rec      *countingRecorder
}

func newHarness(t *testing.T, store storage.Store) *harness {
	t.Helper()
	hasher := auth.NewPasswordHasher(bcrypt.MinCost)
	tokens := auth.NewTokenManager("test-secret", "orgs-test", time.Hour, store.Tokens())
	validate := validation.New()
	rec := newCountingRecorder()

	identity := NewIdentity(store.Users(), hasher)
	authn := NewAuthentication(identity, store.Users(), tokens, validate, rec)
	return &harness{
		store:    store,
		hasher:   hasher,
		identity: identity,
		reg:      NewRegistration(store, hasher, tokens, validate, rec),
		authn:    authn,
		access:   NewAccessControl(authn),
		orgs:     NewOrganisations(store, validate),
		users:    fixtures.NewUserFactory(store.Users(), hasher),
		rec:      rec,
	}
}

func olaRequest() dto.RegisterRequest {
	phone := "+234 8012345678"
	return dto.RegisterRequest{
		FirstName: "Ola",
		LastName:  "Raheem",
		Email:     "ola@example.com",
		Phone:     &phone,
		Password:  "p4ssword",
	}
}

func requireFields(t *testing.T, err error, want ...validation.FieldError) {
	t.Helper()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, want, verr.Fields)
}

func TestRegisterCreatesUserWithDefaultOrganisation(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, memory.NewStore())

	res, err := h.reg.Register(ctx, olaRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token.Value)
	assert.Equal(t, "ola@example.com", res.User.Email)
	assert.NotEqual(t, "p4ssword", res.User.PasswordHash)

	orgs, err := h.orgs.ListForUser(ctx, res.User.ID)
	require.NoError(t, err)
	require.Len(t, orgs, 1)
	assert.Equal(t, "Ola's Organisation", orgs[0].Name)
	require.NotNil(t, orgs[0].Description)
	assert.Equal(t, "This organisation belongs to Ola Raheem", *orgs[0].Description)

	who, err := h.access.RequireAuthenticated(ctx, res.Token.Value)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, who.ID)
	assert.Equal(t, 1, h.rec.registrations[metrics.OutcomeSuccess])
}

func TestRegisterCollectsEveryFieldError(t *testing.T) {
	h := newHarness(t, memory.NewStore())

	_, err := h.reg.Register(context.Background(), dto.RegisterRequest{})
	requireFields(t, err,
		validation.NewFieldError("firstName", validation.RuleRequired),
		validation.NewFieldError("lastName", validation.RuleRequired),
		validation.NewFieldError("email", validation.RuleRequired),
		validation.NewFieldError("password", validation.RuleRequired),
	)
	assert.Equal(t, 1, h.rec.registrations[metrics.OutcomeRejected])
}

func TestRegisterRejectsMalformedEmail(t *testing.T) {
	req := olaRequest()
	req.Email = "not-an-email"

	_, err := newHarness(t, memory.NewStore()).reg.Register(context.Background(), req)
	requireFields(t, err, validation.NewFieldError("email", validation.RuleEmail))
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, memory.NewStore())
	_, err := h.reg.Register(ctx, olaRequest())
	require.NoError(t, err)

	dup := olaRequest()
	dup.FirstName = "Other"
	dup.Email = "  OLA@Example.com"
	_, err = h.reg.Register(ctx, dup)
	requireFields(t, err, validation.NewFieldError("email", validation.RuleUnique))

	_, err = h.store.Users().FindByEmail(ctx, "ola@example.com")
	require.NoError(t, err)
	orgs, err := h.store.Memberships().OrganisationsOf(ctx, mustFindID(t, h, "ola@example.com"))
	require.NoError(t, err)
	assert.Len(t, orgs, 1)
}

func TestRegisterReportsUniqueAlongsideOtherFields(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, memory.NewStore())
	_, err := h.reg.Register(ctx, olaRequest())
	require.NoError(t, err)

	dup := olaRequest()
	dup.LastName = ""
	dup.Password = ""
	_, err = h.reg.Register(ctx, dup)
	requireFields(t, err,
		validation.NewFieldError("lastName", validation.RuleRequired),
		validation.NewFieldError("email", validation.RuleUnique),
		validation.NewFieldError("password", validation.RuleRequired),
	)
}

func mustFindID(t *testing.T, h *harness, email string) string {
	t.Helper()
	u, err := h.store.Users().FindByEmail(context.Background(), email)
	require.NoError(t, err)
	return u.ID
}

type failingOrganisations struct {
	storage.OrganisationStore
}

func (failingOrganisations) CreateOrganisation(context.Context, models.Organisation) (models.Organisation, error) {
	return models.Organisation{}, errors.New("disk full")
}

type failingTxRepos struct {
	storage.Repos
}

func (r failingTxRepos) Organisations() storage.OrganisationStore {
	return failingOrganisations{r.Repos.Organisations()}
}

// orgFailingStore fails organisation writes inside transactions only.
type orgFailingStore struct {
	*memory.Store
}

func (s orgFailingStore) InTx(ctx context.Context, fn func(tx storage.Repos) error) error {
	return s.Store.InTx(ctx, func(tx storage.Repos) error {
		return fn(failingTxRepos{tx})
	})
}

func TestRegisterIsAtomic(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, orgFailingStore{memory.NewStore()})

	_, err := h.reg.Register(ctx, olaRequest())
	var rerr *RegistrationError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, 1, h.rec.registrations[metrics.OutcomeFailure])

	_, err = h.store.Users().FindByEmail(ctx, "ola@example.com")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCreateOrganisationIsAtomic(t *testing.T) {
	ctx := context.Background()
	base := memory.NewStore()
	h := newHarness(t, orgFailingStore{base})
	user, _, err := h.users.Create(ctx)
	require.NoError(t, err)

	_, err = h.orgs.Create(ctx, user.ID, dto.CreateOrganisationRequest{Name: "Acme"})
	require.Error(t, err)

	orgs, err := h.orgs.ListForUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, orgs)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, memory.NewStore())
	user, password, err := h.users.Create(ctx, fixtures.WithEmail("ada@example.com"))
	require.NoError(t, err)

	res, err := h.authn.Login(ctx, dto.LoginRequest{Email: " ADA@example.com", Password: password})
	require.NoError(t, err)
	assert.Equal(t, user.ID, res.User.ID)
	assert.NotEmpty(t, res.Token.Value)

	who, err := h.authn.Authenticate(ctx, res.Token.Value)
	require.NoError(t, err)
	assert.Equal(t, user.ID, who.ID)
	assert.Equal(t, 1, h.rec.logins[metrics.OutcomeSuccess])
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, memory.NewStore())
	_, _, err := h.users.Create(ctx, fixtures.WithEmail("ada@example.com"), fixtures.WithPassword("right"))
	require.NoError(t, err)

	_, wrongPassword := h.authn.Login(ctx, dto.LoginRequest{Email: "ada@example.com", Password: "wrong"})
	_, unknownEmail := h.authn.Login(ctx, dto.LoginRequest{Email: "nobody@example.com", Password: "right"})

	require.ErrorIs(t, wrongPassword, ErrAuthentication)
	require.ErrorIs(t, unknownEmail, ErrAuthentication)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
	assert.Equal(t, 2, h.rec.logins[metrics.OutcomeFailure])
}

func TestLoginValidatesInput(t *testing.T) {
	h := newHarness(t, memory.NewStore())

	_, err := h.authn.Login(context.Background(), dto.LoginRequest{Email: "nope"})
	requireFields(t, err,
		validation.NewFieldError("email", validation.RuleEmail),
		validation.NewFieldError("password", validation.RuleRequired),
	)
	assert.Equal(t, 1, h.rec.logins[metrics.OutcomeRejected])
}

func TestAuthenticateRejectsBadTokens(t *testing.T) {
	h := newHarness(t, memory.NewStore())

	for _, raw := range []string{"", "   ", "garbage", "a.b.c"} {
		_, err := h.access.RequireAuthenticated(context.Background(), raw)
		assert.ErrorIs(t, err, ErrAuthentication, "token %q", raw)
	}
}

func TestGetUserOnlyForSelf(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, memory.NewStore())
	alice, _, err := h.users.Create(ctx)
	require.NoError(t, err)
	bob, _, err := h.users.Create(ctx)
	require.NoError(t, err)

	got, err := h.identity.GetUser(ctx, alice.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.Email, got.Email)

	_, err = h.identity.GetUser(ctx, alice.ID, bob.ID)
	require.ErrorIs(t, err, ErrAuthorization)

	require.ErrorIs(t, h.access.RequireSelf("", ""), ErrAuthorization)
	require.NoError(t, h.access.RequireSelf(bob.ID, bob.ID))
}

func TestOrganisationVisibility(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, memory.NewStore())
	res, err := h.reg.Register(ctx, olaRequest())
	require.NoError(t, err)
	outsider, _, err := h.users.Create(ctx)
	require.NoError(t, err)

	orgs, err := h.orgs.ListForUser(ctx, outsider.ID)
	require.NoError(t, err)
	assert.NotNil(t, orgs)
	assert.Empty(t, orgs)

	mine, err := h.orgs.ListForUser(ctx, res.User.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)

	_, err = h.orgs.GetForUser(ctx, outsider.ID, mine[0].ID)
	require.ErrorIs(t, err, ErrNotFound)

	got, err := h.orgs.GetForUser(ctx, res.User.ID, mine[0].ID)
	require.NoError(t, err)
	assert.Equal(t, mine[0].ID, got.ID)
}

func TestCreateOrganisation(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, memory.NewStore())
	owner, _, err := h.users.Create(ctx)
	require.NoError(t, err)

	_, err = h.orgs.Create(ctx, owner.ID, dto.CreateOrganisationRequest{Name: "   "})
	requireFields(t, err, validation.NewFieldError("name", validation.RuleRequired))

	org, err := h.orgs.Create(ctx, owner.ID, dto.CreateOrganisationRequest{Name: " Acme "})
	require.NoError(t, err)
	assert.Equal(t, "Acme", org.Name)
	assert.Nil(t, org.Description)

	got, err := h.orgs.GetForUser(ctx, owner.ID, org.ID)
	require.NoError(t, err)
	assert.Equal(t, org.ID, got.ID)
}

func TestAddMember(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, memory.NewStore())
	res, err := h.reg.Register(ctx, olaRequest())
	require.NoError(t, err)
	orgs, err := h.orgs.ListForUser(ctx, res.User.ID)
	require.NoError(t, err)
	orgID := orgs[0].ID
	guest, _, err := h.users.Create(ctx)
	require.NoError(t, err)

	created, err := h.orgs.AddMember(ctx, orgID, dto.AddMemberRequest{UserID: guest.ID})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = h.orgs.AddMember(ctx, orgID, dto.AddMemberRequest{UserID: guest.ID})
	require.NoError(t, err)
	assert.False(t, created)

	members, err := h.orgs.Members(ctx, orgID)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, res.User.ID, members[0].ID)
	assert.Equal(t, guest.ID, members[1].ID)

	guestOrgs, err := h.orgs.ListForUser(ctx, guest.ID)
	require.NoError(t, err)
	assert.Len(t, guestOrgs, 1)
}

func TestAddMemberFailureOrder(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, memory.NewStore())
	res, err := h.reg.Register(ctx, olaRequest())
	require.NoError(t, err)
	orgs, err := h.orgs.ListForUser(ctx, res.User.ID)
	require.NoError(t, err)

	_, err = h.orgs.AddMember(ctx, "no-such-org", dto.AddMemberRequest{})
	requireFields(t, err, validation.NewFieldError("userId", validation.RuleRequired))

	_, err = h.orgs.AddMember(ctx, "no-such-org", dto.AddMemberRequest{UserID: "no-such-user"})
	require.ErrorIs(t, err, ErrNotFound)

	_, err = h.orgs.AddMember(ctx, orgs[0].ID, dto.AddMemberRequest{UserID: "no-such-user"})
	requireFields(t, err, validation.NewFieldError("userId", validation.RuleExists))
}

func TestRegisterAcceptsLongPasswords(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, memory.NewStore())
	req := olaRequest()
	req.Password = strings.Repeat("a", 73)

	_, err := h.reg.Register(ctx, req)
	require.NoError(t, err)

	_, err = h.authn.Login(ctx, dto.LoginRequest{Email: req.Email, Password: req.Password})
	require.NoError(t, err)

	_, err = h.authn.Login(ctx, dto.LoginRequest{Email: req.Email, Password: strings.Repeat("a", 72) + "b"})
	require.ErrorIs(t, err, ErrAuthentication)
}

func TestRegisterTrimsPassword(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, memory.NewStore())

	blank := olaRequest()
	blank.Password = "   "
	_, err := h.reg.Register(ctx, blank)
	requireFields(t, err, validation.NewFieldError("password", validation.RuleRequired))

	padded := olaRequest()
	padded.Password = "  p4ssword  "
	_, err = h.reg.Register(ctx, padded)
	require.NoError(t, err)

	_, err = h.authn.Login(ctx, dto.LoginRequest{Email: padded.Email, Password: "p4ssword"})
	require.NoError(t, err)
	_, err = h.authn.Login(ctx, dto.LoginRequest{Email: padded.Email, Password: " p4ssword "})
	require.NoError(t, err)
}

func TestConcurrentRegistrationWithSameEmail(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, memory.NewStore())

	const attempts = 2
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = h.reg.Register(ctx, olaRequest())
		}()
	}
	wg.Wait()

	var succeeded int
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		requireFields(t, err, validation.NewFieldError("email", validation.RuleUnique))
	}
	assert.Equal(t, 1, succeeded)

	orgs, err := h.orgs.ListForUser(ctx, mustFindID(t, h, "ola@example.com"))
	require.NoError(t, err)
	assert.Len(t, orgs, 1)
}
