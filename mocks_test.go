package microblog_test

import (
	"context"
	"database/sql"
	"fmt"
	"mime/multipart"

	microblog "github.com/goliatone/go-microblog"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"
)

// MockConfig implements microblog.Config
type MockConfig struct {
	mock.Mock
}

func (m *MockConfig) GetSigningKey() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockConfig) GetContextKey() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockConfig) GetTokenExpiration() int {
	args := m.Called()
	return args.Int(0)
}

func (m *MockConfig) GetExtendedTokenDuration() int {
	args := m.Called()
	return args.Int(0)
}

func (m *MockConfig) GetIssuer() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockConfig) GetAudience() []string {
	args := m.Called()
	return args.Get(0).([]string)
}

func (m *MockConfig) GetRejectedRouteKey() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockConfig) GetRejectedRouteDefault() string {
	args := m.Called()
	return args.String(0)
}

// testConfig is a plain Config for tests that only need fixed values
type testConfig struct {
	signingKey string
	expiration int
	issuer     string
	audience   []string
}

func (c testConfig) GetSigningKey() string {
	if c.signingKey == "" {
		return "test-signing-key"
	}
	return c.signingKey
}

func (c testConfig) GetContextKey() string { return "session" }

func (c testConfig) GetTokenExpiration() int {
	if c.expiration == 0 {
		return 24
	}
	return c.expiration
}

func (c testConfig) GetExtendedTokenDuration() int { return 48 }

func (c testConfig) GetIssuer() string {
	if c.issuer == "" {
		return "test-issuer"
	}
	return c.issuer
}

func (c testConfig) GetAudience() []string {
	if c.audience == nil {
		return []string{"test-audience"}
	}
	return c.audience
}

func (c testConfig) GetRejectedRouteKey() string     { return "rejected_route" }
func (c testConfig) GetRejectedRouteDefault() string { return "/" }

// MockAuthenticator implements microblog.Authenticator
type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Login(ctx context.Context, identifier, password string) (string, error) {
	args := m.Called(ctx, identifier, password)
	return args.String(0), args.Error(1)
}

func (m *MockAuthenticator) IssueToken(user *microblog.User) (string, error) {
	args := m.Called(user)
	return args.String(0), args.Error(1)
}

func (m *MockAuthenticator) SessionFromToken(token string) (microblog.Session, error) {
	args := m.Called(token)
	if s := args.Get(0); s != nil {
		return s.(microblog.Session), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAuthenticator) UserFromSession(ctx context.Context, session microblog.Session) (*microblog.User, error) {
	args := m.Called(ctx, session)
	if u := args.Get(0); u != nil {
		return u.(*microblog.User), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockContext mocks router.Context
type MockContext struct {
	mock.Mock
	NextCalled bool
}

func (m *MockContext) Next() error {
	m.NextCalled = true
	return nil
}

func (m *MockContext) Context() context.Context {
	args := m.Called()
	c, ok := args.Get(0).(context.Context)
	if !ok {
		panic("arg needs to be context.Context")
	}
	return c
}

func (m *MockContext) SetContext(ctx context.Context) {
	m.Called(ctx)
}

func (m *MockContext) Path() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockContext) Method() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockContext) Body() []byte {
	args := m.Called()
	return args.Get(0).([]byte)
}

func (m *MockContext) Status(code int) router.Context {
	m.Called(code)
	return m
}

func (m *MockContext) SendString(s string) error {
	args := m.Called(s)
	return args.Error(0)
}

func (m *MockContext) Send(b []byte) error {
	args := m.Called(b)
	return args.Error(0)
}

func (m *MockContext) JSON(code int, val any) error {
	args := m.Called(code, val)
	return args.Error(0)
}

func (m *MockContext) NoContent(code int) error {
	args := m.Called(code)
	return args.Error(0)
}

func (m *MockContext) Render(name string, bind any, layout ...string) error {
	if len(layout) > 0 {
		args := m.Called(name, bind, layout[0])
		return args.Error(0)
	}
	args := m.Called(name, bind)
	return args.Error(0)
}

func (m *MockContext) Redirect(path string, status ...int) error {
	if len(status) > 0 {
		args := m.Called(path, status)
		return args.Error(0)
	}
	args := m.Called(path)
	return args.Error(0)
}

func (m *MockContext) RedirectToRoute(name string, data router.ViewContext, status ...int) error {
	if len(status) > 0 {
		args := m.Called(name, data, status[0])
		return args.Error(0)
	}
	args := m.Called(name, data)
	return args.Error(0)
}

func (m *MockContext) RedirectBack(fallback string, status ...int) error {
	if len(status) > 0 {
		args := m.Called(fallback, status)
		return args.Error(0)
	}
	args := m.Called(fallback)
	return args.Error(0)
}

func (m *MockContext) SetHeader(key, val string) router.Context {
	m.Called(key, val)
	return m
}

func (m *MockContext) Header(key string) string {
	args := m.Called(key)
	return args.String(0)
}

func (m *MockContext) Get(key string, defaultValue any) any {
	args := m.Called(key, defaultValue)
	return args.Get(0)
}

func (m *MockContext) GetBool(key string, defaultValue bool) bool {
	args := m.Called(key, defaultValue)
	return args.Bool(0)
}

func (m *MockContext) GetInt(key string, def int) int {
	args := m.Called(key, def)
	return args.Int(0)
}

func (m *MockContext) Set(key string, val any) {
	m.Called(key, val)
}

func (m *MockContext) Bind(i any) error {
	args := m.Called(i)
	return args.Error(0)
}

func (m *MockContext) BindJSON(i any) error {
	args := m.Called(i)
	return args.Error(0)
}

func (m *MockContext) BindXML(i any) error {
	args := m.Called(i)
	return args.Error(0)
}

func (m *MockContext) BindQuery(i any) error {
	args := m.Called(i)
	return args.Error(0)
}

func (m *MockContext) CookieParser(i any) error {
	args := m.Called(i)
	return args.Error(0)
}

func (m *MockContext) Cookie(cookie *router.Cookie) {
	m.Called(cookie)
}

func (m *MockContext) Cookies(key string, defaultValue ...string) string {
	if len(defaultValue) > 0 {
		args := m.Called(key, defaultValue[0])
		return args.String(0)
	}
	args := m.Called(key)
	return args.String(0)
}

func (m *MockContext) Param(key string, defaultValue ...string) string {
	if len(defaultValue) > 0 {
		args := m.Called(key, defaultValue[0])
		return args.String(0)
	}
	args := m.Called(key)
	return args.String(0)
}

func (m *MockContext) ParamsInt(key string, defaultValue int) int {
	args := m.Called(key, defaultValue)
	return args.Int(0)
}

func (m *MockContext) Query(key string, defaultValue ...string) string {
	if len(defaultValue) > 0 {
		args := m.Called(key, defaultValue[0])
		return args.String(0)
	}
	args := m.Called(key)
	return args.String(0)
}

func (m *MockContext) FormValue(key string, defaultValue ...string) string {
	if len(defaultValue) > 0 {
		args := m.Called(key, defaultValue[0])
		return args.String(0)
	}
	args := m.Called(key)
	return args.String(0)
}

func (m *MockContext) FormFile(key string) (*multipart.FileHeader, error) {
	args := m.Called(key)
	if f := args.Get(0); f != nil {
		return f.(*multipart.FileHeader), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockContext) SendStatus(code int) error {
	args := m.Called(code)
	return args.Error(0)
}

func (m *MockContext) QueryInt(key string, defaultValue int) int {
	args := m.Called(key, defaultValue)
	return args.Int(0)
}

func (m *MockContext) Queries() map[string]string {
	args := m.Called()
	return args.Get(0).(map[string]string)
}

func (m *MockContext) GetString(key string, defaultValue string) string {
	args := m.Called(key, defaultValue)
	return args.String(0)
}

func (m *MockContext) Locals(key any, value ...any) any {
	if len(value) > 0 {
		m.Called(key, value[0])
		return nil
	}
	args := m.Called(key)
	return args.Get(0)
}

func (m *MockContext) OriginalURL() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockContext) OnNext(callback func() error) {
	m.Called(callback)
}

func (m *MockContext) Referer() string {
	args := m.Called()
	return args.String(0)
}

// logSpy renders log calls the way the default logger would so tests
// can assert the output formats cleanly
type logSpy struct {
	lines []string
}

func (l *logSpy) log(format string, args ...any) {
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

func (l *logSpy) Debug(format string, args ...any) { l.log(format, args...) }
func (l *logSpy) Info(format string, args ...any)  { l.log(format, args...) }
func (l *logSpy) Error(format string, args ...any) { l.log(format, args...) }

// MockLoginPayload implements microblog.LoginPayload
type MockLoginPayload struct {
	Identifier      string
	Password        string
	ExtendedSession bool
}

func (m MockLoginPayload) GetIdentifier() string    { return m.Identifier }
func (m MockLoginPayload) GetPassword() string      { return m.Password }
func (m MockLoginPayload) GetExtendedSession() bool { return m.ExtendedSession }

// memUsers is an in-memory Users store
type memUsers struct {
	records  map[uuid.UUID]*microblog.User
	register func(*microblog.User) error
}

func newMemUsers(records ...*microblog.User) *memUsers {
	m := &memUsers{records: map[uuid.UUID]*microblog.User{}}
	for _, r := range records {
		m.records[r.ID] = r
	}
	return m
}

func (m *memUsers) Register(ctx context.Context, user *microblog.User) (*microblog.User, error) {
	return m.RegisterTx(ctx, nil, user)
}

func (m *memUsers) RegisterTx(ctx context.Context, tx bun.IDB, user *microblog.User) (*microblog.User, error) {
	if m.register != nil {
		if err := m.register(user); err != nil {
			return nil, err
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	m.records[user.ID] = user
	return user, nil
}

func (m *memUsers) GetByID(ctx context.Context, id string) (*microblog.User, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, repository.NewRecordNotFound()
	}
	if user, ok := m.records[uid]; ok {
		return user, nil
	}
	return nil, repository.NewRecordNotFound()
}

func (m *memUsers) GetByEmail(ctx context.Context, email string) (*microblog.User, error) {
	email = microblog.NormalizeEmail(email)
	for _, user := range m.records {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, repository.NewRecordNotFound()
}

func (m *memUsers) Update(ctx context.Context, user *microblog.User) (*microblog.User, error) {
	m.records[user.ID] = user
	return user, nil
}

func (m *memUsers) Delete(ctx context.Context, id uuid.UUID) error {
	delete(m.records, id)
	return nil
}

func (m *memUsers) DeleteTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error {
	return m.Delete(ctx, id)
}

func (m *memUsers) List(ctx context.Context, page int) (*microblog.Page[*microblog.User], error) {
	records := make([]*microblog.User, 0, len(m.records))
	for _, user := range m.records {
		records = append(records, user)
	}
	return microblog.NewPage(records, page, microblog.DefaultPerPage, len(records)), nil
}

// memMicroposts is an in-memory Microposts store
type memMicroposts struct {
	records map[uuid.UUID]*microblog.Micropost
	follows *memFollows
}

func newMemMicroposts(records ...*microblog.Micropost) *memMicroposts {
	m := &memMicroposts{records: map[uuid.UUID]*microblog.Micropost{}}
	for _, r := range records {
		m.records[r.ID] = r
	}
	return m
}

func (m *memMicroposts) Create(ctx context.Context, post *microblog.Micropost) (*microblog.Micropost, error) {
	return m.CreateTx(ctx, nil, post)
}

func (m *memMicroposts) CreateTx(ctx context.Context, tx bun.IDB, post *microblog.Micropost) (*microblog.Micropost, error) {
	if post.ID == uuid.Nil {
		post.ID = uuid.New()
	}
	m.records[post.ID] = post
	return post, nil
}

func (m *memMicroposts) GetByID(ctx context.Context, id string) (*microblog.Micropost, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, repository.NewRecordNotFound()
	}
	if post, ok := m.records[uid]; ok {
		return post, nil
	}
	return nil, repository.NewRecordNotFound()
}

func (m *memMicroposts) Delete(ctx context.Context, id uuid.UUID) error {
	delete(m.records, id)
	return nil
}

func (m *memMicroposts) DeleteByUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) error {
	for id, post := range m.records {
		if post.UserID == userID {
			delete(m.records, id)
		}
	}
	return nil
}

func (m *memMicroposts) ListByUser(ctx context.Context, userID uuid.UUID, page int) (*microblog.Page[*microblog.Micropost], error) {
	var records []*microblog.Micropost
	for _, post := range m.records {
		if post.UserID == userID {
			records = append(records, post)
		}
	}
	return microblog.NewPage(records, page, microblog.DefaultPerPage, len(records)), nil
}

func (m *memMicroposts) Feed(ctx context.Context, userID uuid.UUID, page int) (*microblog.Page[*microblog.Micropost], error) {
	var records []*microblog.Micropost
	for _, post := range m.records {
		if post.UserID == userID {
			records = append(records, post)
			continue
		}
		if m.follows != nil && m.follows.edges[edge{userID, post.UserID}] {
			records = append(records, post)
		}
	}
	return microblog.NewPage(records, page, microblog.DefaultPerPage, len(records)), nil
}

type edge struct {
	follower uuid.UUID
	followed uuid.UUID
}

// memFollows is an in-memory Follows store
type memFollows struct {
	users *memUsers
	edges map[edge]bool
}

func newMemFollows(users *memUsers) *memFollows {
	return &memFollows{
		users: users,
		edges: map[edge]bool{},
	}
}

func (m *memFollows) Follow(ctx context.Context, followerID, followedID uuid.UUID) error {
	return m.FollowTx(ctx, nil, followerID, followedID)
}

func (m *memFollows) FollowTx(ctx context.Context, tx bun.IDB, followerID, followedID uuid.UUID) error {
	if followerID == followedID {
		return microblog.ErrSelfFollow
	}
	m.edges[edge{followerID, followedID}] = true
	return nil
}

func (m *memFollows) Unfollow(ctx context.Context, followerID, followedID uuid.UUID) error {
	return m.UnfollowTx(ctx, nil, followerID, followedID)
}

func (m *memFollows) UnfollowTx(ctx context.Context, tx bun.IDB, followerID, followedID uuid.UUID) error {
	delete(m.edges, edge{followerID, followedID})
	return nil
}

func (m *memFollows) DeleteForUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) error {
	for e := range m.edges {
		if e.follower == userID || e.followed == userID {
			delete(m.edges, e)
		}
	}
	return nil
}

func (m *memFollows) IsFollowing(ctx context.Context, followerID, followedID uuid.UUID) (bool, error) {
	return m.edges[edge{followerID, followedID}], nil
}

func (m *memFollows) Following(ctx context.Context, userID uuid.UUID, page int) (*microblog.Page[*microblog.User], error) {
	var records []*microblog.User
	for e := range m.edges {
		if e.follower == userID {
			if user, ok := m.users.records[e.followed]; ok {
				records = append(records, user)
			}
		}
	}
	return microblog.NewPage(records, page, microblog.DefaultPerPage, len(records)), nil
}

func (m *memFollows) Followers(ctx context.Context, userID uuid.UUID, page int) (*microblog.Page[*microblog.User], error) {
	var records []*microblog.User
	for e := range m.edges {
		if e.followed == userID {
			if user, ok := m.users.records[e.follower]; ok {
				records = append(records, user)
			}
		}
	}
	return microblog.NewPage(records, page, microblog.DefaultPerPage, len(records)), nil
}

func (m *memFollows) CountFollowing(ctx context.Context, userID uuid.UUID) (int, error) {
	count := 0
	for e := range m.edges {
		if e.follower == userID {
			count++
		}
	}
	return count, nil
}

func (m *memFollows) CountFollowers(ctx context.Context, userID uuid.UUID) (int, error) {
	count := 0
	for e := range m.edges {
		if e.followed == userID {
			count++
		}
	}
	return count, nil
}

// fakeRepoManager wires the in-memory stores behind the
// RepositoryManager contract; RunInTx runs the callback inline.
type fakeRepoManager struct {
	users      *memUsers
	microposts *memMicroposts
	follows    *memFollows
}

func newFakeRepoManager() *fakeRepoManager {
	users := newMemUsers()
	follows := newMemFollows(users)

	microposts := newMemMicroposts()
	microposts.follows = follows

	return &fakeRepoManager{
		users:      users,
		microposts: microposts,
		follows:    follows,
	}
}

func (f *fakeRepoManager) Validate() error { return nil }
func (f *fakeRepoManager) MustValidate()   {}

func (f *fakeRepoManager) RunInTx(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fn(ctx, bun.Tx{})
	}
}

func (f *fakeRepoManager) Users() microblog.Users           { return f.users }
func (f *fakeRepoManager) Microposts() microblog.Microposts { return f.microposts }
func (f *fakeRepoManager) Follows() microblog.Follows       { return f.follows }
