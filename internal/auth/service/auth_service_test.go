package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"hrms-platform/backend/internal/audit"
	customerdomain "hrms-platform/backend/internal/customer/domain"
	employeedomain "hrms-platform/backend/internal/employee/domain"
	identityservice "hrms-platform/backend/internal/identity/service"
	presencedomain "hrms-platform/backend/internal/presence/domain"
	"hrms-platform/backend/internal/security"
	sessiondomain "hrms-platform/backend/internal/session/domain"
)

type memEmployees struct {
	mu       sync.Mutex
	byEmail  map[string]*employeedomain.Employee
	byID     map[string]*employeedomain.Employee
	accounts map[string]*employeedomain.Account
	touched  []time.Time
}

func newMemEmployees() *memEmployees {
	return &memEmployees{
		byEmail:  map[string]*employeedomain.Employee{},
		byID:     map[string]*employeedomain.Employee{},
		accounts: map[string]*employeedomain.Account{},
	}
}

func (m *memEmployees) add(emp *employeedomain.Employee, account *employeedomain.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byEmail[emp.OfficialEmail] = emp
	m.byID[emp.ID] = emp
	if account != nil {
		m.accounts[emp.ID] = account
	}
}

func (m *memEmployees) GetByOfficialEmail(ctx context.Context, email string) (*employeedomain.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byEmail[email], nil
}

func (m *memEmployees) GetByID(ctx context.Context, id string) (*employeedomain.Employee, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byID[id], nil
}

func (m *memEmployees) GetAccountByEmployeeID(ctx context.Context, employeeID string) (*employeedomain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accounts[employeeID], nil
}

func (m *memEmployees) TouchLastLogin(ctx context.Context, employeeID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touched = append(m.touched, at)
	return nil
}

type memCustomers struct {
	mu      sync.Mutex
	byEmail map[string]*customerdomain.Customer
	byID    map[string]*customerdomain.Customer
	access  map[string]*customerdomain.Access
	touched []time.Time
}

func newMemCustomers() *memCustomers {
	return &memCustomers{
		byEmail: map[string]*customerdomain.Customer{},
		byID:    map[string]*customerdomain.Customer{},
		access:  map[string]*customerdomain.Access{},
	}
}

func (m *memCustomers) add(cust *customerdomain.Customer, access *customerdomain.Access) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byEmail[cust.Email] = cust
	m.byID[cust.ID] = cust
	if access != nil {
		m.access[cust.ID] = access
	}
}

func (m *memCustomers) GetByEmail(ctx context.Context, email string) (*customerdomain.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byEmail[email], nil
}

func (m *memCustomers) GetByID(ctx context.Context, id string) (*customerdomain.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byID[id], nil
}

func (m *memCustomers) GetAccessByCustomerID(ctx context.Context, customerID string) (*customerdomain.Access, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.access[customerID], nil
}

func (m *memCustomers) TouchLastLogin(ctx context.Context, customerID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touched = append(m.touched, at)
	return nil
}

type memSessions struct {
	mu     sync.Mutex
	byHash map[string]*sessiondomain.Session
}

func newMemSessions() *memSessions {
	return &memSessions{byHash: map[string]*sessiondomain.Session{}}
}

func (m *memSessions) Create(ctx context.Context, s *sessiondomain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.byHash[s.TokenHash] = &cp
	return nil
}

func (m *memSessions) GetByTokenHash(ctx context.Context, hash string) (*sessiondomain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byHash[hash]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (m *memSessions) Revoke(ctx context.Context, hash string, at time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byHash[hash]
	if !ok || s.RevokedAt != nil {
		return 0, nil
	}
	t := at
	s.RevokedAt = &t
	return 1, nil
}

func (m *memSessions) Rotate(ctx context.Context, oldHash, newHash string, newExpiry time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byHash[oldHash]
	if !ok || s.RevokedAt != nil {
		return 0, nil
	}
	delete(m.byHash, oldHash)
	s.TokenHash = newHash
	s.ExpiresAt = newExpiry
	m.byHash[newHash] = s
	return 1, nil
}

type memPresence struct {
	mu     sync.Mutex
	status map[string]presencedomain.Status
}

func newMemPresence() *memPresence {
	return &memPresence{status: map[string]presencedomain.Status{}}
}

func (m *memPresence) Upsert(ctx context.Context, employeeID string, status presencedomain.Status, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status[employeeID] = status
	return nil
}

func (m *memPresence) get(employeeID string) presencedomain.Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status[employeeID]
}

type auditRecorder struct {
	mu     sync.Mutex
	events []audit.Event
}

func (r *auditRecorder) LogEvent(ctx context.Context, e audit.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *auditRecorder) last() (audit.Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return audit.Event{}, false
	}
	return r.events[len(r.events)-1], true
}

type authFixture struct {
	svc       *AuthService
	employees *memEmployees
	customers *memCustomers
	sessions  *memSessions
	presence  *memPresence
	auditor   *auditRecorder
	hasher    *security.Hasher
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	tokens, err := security.NewTestTokenProvider()
	if err != nil {
		t.Fatalf("token provider: %v", err)
	}
	employees := newMemEmployees()
	customers := newMemCustomers()
	sessions := newMemSessions()
	presence := newMemPresence()
	auditor := &auditRecorder{}
	hasher := security.NewHasher(bcrypt.MinCost)
	resolver := identityservice.NewResolver(employees, customers)
	svc := NewAuthService(resolver, sessions, presence, employees, customers, hasher, tokens, auditor, 168*time.Hour)
	return &authFixture{
		svc:       svc,
		employees: employees,
		customers: customers,
		sessions:  sessions,
		presence:  presence,
		auditor:   auditor,
		hasher:    hasher,
	}
}

func (f *authFixture) addEmployee(t *testing.T, id, email, password, role string) {
	t.Helper()
	hash, err := f.hasher.Hash([]byte(password))
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	f.employees.add(
		&employeedomain.Employee{ID: id, OfficialEmail: email, Status: employeedomain.EmployeeStatusActive},
		&employeedomain.Account{ID: id + "-acct", EmployeeID: id, PasswordHash: hash, Role: role, Status: employeedomain.AccountStatusActive},
	)
}

func (f *authFixture) addCustomer(t *testing.T, id, email, password string) {
	t.Helper()
	hash, err := f.hasher.Hash([]byte(password))
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	f.customers.add(
		&customerdomain.Customer{ID: id, Email: email, Status: customerdomain.CustomerStatusActive},
		&customerdomain.Access{ID: id + "-access", CustomerID: id, PasswordHash: hash, Status: customerdomain.AccessStatusActive},
	)
}

var testMeta = ClientMeta{IPAddress: "203.0.113.10", UserAgent: "go-test"}

func TestLoginEmployee(t *testing.T) {
	f := newAuthFixture(t)
	f.addEmployee(t, "emp-1", "maya@corp.example", "s3cret", "hr_manager")
	ctx := context.Background()

	res, err := f.svc.Login(ctx, Credentials{LoginID: "maya@corp.example", Password: "s3cret"}, testMeta)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.SubjectID != "emp-1" || res.Role != "hr_manager" || res.PrincipalType != "employee" {
		t.Errorf("unexpected result: %+v", res)
	}
	if res.AccessToken == "" || res.RefreshToken == "" {
		t.Fatal("expected both tokens")
	}

	claims, err := f.svc.tokens.VerifyAccess(res.AccessToken)
	if err != nil {
		t.Fatalf("access token does not verify: %v", err)
	}
	if claims.Subject != "emp-1" || claims.Role != "hr_manager" || claims.PrincipalType != "employee" {
		t.Errorf("unexpected claims: %+v", claims)
	}

	// Session stores the hash, never the secret.
	sess, err := f.sessions.GetByTokenHash(ctx, security.HashRefreshToken(res.RefreshToken))
	if err != nil || sess == nil {
		t.Fatalf("session not found by hash: %v", err)
	}
	if sess.TokenHash == res.RefreshToken {
		t.Error("session must not store the raw refresh secret")
	}
	if sess.SubjectID != "emp-1" || sess.IPAddress != testMeta.IPAddress || sess.UserAgent != testMeta.UserAgent {
		t.Errorf("unexpected session: %+v", sess)
	}

	if got := f.presence.get("emp-1"); got != presencedomain.StatusOnline {
		t.Errorf("expected presence online, got %q", got)
	}
	if len(f.employees.touched) != 1 {
		t.Errorf("expected last login touch, got %d", len(f.employees.touched))
	}
	if e, ok := f.auditor.last(); !ok || e.Action != ActionLogin || e.Outcome != audit.OutcomeSuccess {
		t.Errorf("unexpected audit event: %+v", e)
	}
}

func TestLoginCustomer(t *testing.T) {
	f := newAuthFixture(t)
	f.addCustomer(t, "cust-1", "pat@client.example", "pw123456")
	ctx := context.Background()

	res, err := f.svc.Login(ctx, Credentials{LoginID: "pat@client.example", Password: "pw123456"}, testMeta)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.PrincipalType != "customer" || res.Role != "customer" {
		t.Errorf("unexpected result: %+v", res)
	}
	if got := f.presence.get("cust-1"); got != "" {
		t.Errorf("customers must not get presence rows, got %q", got)
	}
	if len(f.customers.touched) != 1 {
		t.Errorf("expected customer last login touch, got %d", len(f.customers.touched))
	}
}

func TestLoginEmployeeShadowsCustomer(t *testing.T) {
	f := newAuthFixture(t)
	f.addEmployee(t, "emp-1", "shared@corp.example", "emppw", "recruiter")
	f.addCustomer(t, "cust-1", "shared@corp.example", "custpw")

	res, err := f.svc.Login(context.Background(), Credentials{LoginID: "shared@corp.example", Password: "emppw"}, testMeta)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.PrincipalType != "employee" {
		t.Errorf("expected employee to shadow customer, got %q", res.PrincipalType)
	}
	// The customer's password must not work for the shadowed identifier.
	if _, err := f.svc.Login(context.Background(), Credentials{LoginID: "shared@corp.example", Password: "custpw"}, testMeta); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginMissingCredentials(t *testing.T) {
	f := newAuthFixture(t)
	for _, creds := range []Credentials{{}, {LoginID: "a@b.c"}, {Password: "pw"}, {LoginID: "   ", Password: "pw"}} {
		if _, err := f.svc.Login(context.Background(), creds, testMeta); !errors.Is(err, ErrMissingCredentials) {
			t.Errorf("creds %+v: expected ErrMissingCredentials, got %v", creds, err)
		}
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	f := newAuthFixture(t)
	f.addEmployee(t, "emp-1", "maya@corp.example", "s3cret", "hr_manager")
	f.employees.add(
		&employeedomain.Employee{ID: "emp-2", OfficialEmail: "gone@corp.example", Status: employeedomain.EmployeeStatusInactive},
		&employeedomain.Account{ID: "emp-2-acct", EmployeeID: "emp-2", PasswordHash: "x", Role: "staff", Status: employeedomain.AccountStatusActive},
	)
	ctx := context.Background()

	cases := map[string]Credentials{
		"unknown user":     {LoginID: "nobody@corp.example", Password: "whatever"},
		"inactive account": {LoginID: "gone@corp.example", Password: "whatever"},
		"wrong password":   {LoginID: "maya@corp.example", Password: "not-it"},
	}
	var messages []string
	for name, creds := range cases {
		_, err := f.svc.Login(ctx, creds, testMeta)
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("%s: expected ErrInvalidCredentials, got %v", name, err)
		}
		messages = append(messages, err.Error())
	}
	for i := 1; i < len(messages); i++ {
		if messages[i] != messages[0] {
			t.Errorf("failure messages differ: %q vs %q", messages[0], messages[i])
		}
	}
}

func TestExtendRotatesRefreshToken(t *testing.T) {
	f := newAuthFixture(t)
	f.addEmployee(t, "emp-1", "maya@corp.example", "s3cret", "hr_manager")
	ctx := context.Background()

	login, err := f.svc.Login(ctx, Credentials{LoginID: "maya@corp.example", Password: "s3cret"}, testMeta)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	ext, err := f.svc.Extend(ctx, login.RefreshToken, testMeta)
	if err != nil {
		t.Fatalf("Extend: %v", err)
	}
	if ext.RefreshToken == login.RefreshToken {
		t.Error("extension must issue a new refresh secret")
	}
	if ext.Role != "hr_manager" || ext.SubjectID != "emp-1" {
		t.Errorf("unexpected extension result: %+v", ext)
	}

	// The replaced secret is dead: replaying it fails closed.
	if _, err := f.svc.Extend(ctx, login.RefreshToken, testMeta); !errors.Is(err, ErrRefreshInvalid) {
		t.Errorf("replayed secret: expected ErrRefreshInvalid, got %v", err)
	}
	// The new secret still works.
	if _, err := f.svc.Extend(ctx, ext.RefreshToken, testMeta); err != nil {
		t.Errorf("new secret should extend: %v", err)
	}
}

func TestExtendPicksUpRoleChange(t *testing.T) {
	f := newAuthFixture(t)
	f.addEmployee(t, "emp-1", "maya@corp.example", "s3cret", "staff")
	ctx := context.Background()

	login, err := f.svc.Login(ctx, Credentials{LoginID: "maya@corp.example", Password: "s3cret"}, testMeta)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	f.employees.mu.Lock()
	f.employees.accounts["emp-1"].Role = "hr_manager"
	f.employees.mu.Unlock()

	ext, err := f.svc.Extend(ctx, login.RefreshToken, testMeta)
	if err != nil {
		t.Fatalf("Extend: %v", err)
	}
	claims, err := f.svc.tokens.VerifyAccess(ext.AccessToken)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Role != "hr_manager" {
		t.Errorf("extension must re-derive the role, got %q", claims.Role)
	}
}

func TestExtendInvalidStates(t *testing.T) {
	f := newAuthFixture(t)
	f.addEmployee(t, "emp-1", "maya@corp.example", "s3cret", "staff")
	ctx := context.Background()

	login, err := f.svc.Login(ctx, Credentials{LoginID: "maya@corp.example", Password: "s3cret"}, testMeta)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	if _, err := f.svc.Extend(ctx, "", testMeta); !errors.Is(err, ErrRefreshMissing) {
		t.Errorf("empty secret: expected ErrRefreshMissing, got %v", err)
	}
	if _, err := f.svc.Extend(ctx, "not-a-real-token", testMeta); !errors.Is(err, ErrRefreshInvalid) {
		t.Errorf("unknown secret: expected ErrRefreshInvalid, got %v", err)
	}

	// Expired session: same error as unknown.
	f.svc.now = func() time.Time { return time.Now().UTC().Add(200 * time.Hour) }
	_, errExpired := f.svc.Extend(ctx, login.RefreshToken, testMeta)
	f.svc.now = func() time.Time { return time.Now().UTC() }
	if !errors.Is(errExpired, ErrRefreshInvalid) {
		t.Errorf("expired session: expected ErrRefreshInvalid, got %v", errExpired)
	}

	// Revoked session: same error again.
	if err := f.svc.Logout(ctx, login.RefreshToken, testMeta); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	_, errRevoked := f.svc.Extend(ctx, login.RefreshToken, testMeta)
	if !errors.Is(errRevoked, ErrRefreshInvalid) {
		t.Errorf("revoked session: expected ErrRefreshInvalid, got %v", errRevoked)
	}
	if errExpired.Error() != errRevoked.Error() {
		t.Errorf("expired and revoked must be indistinguishable: %q vs %q", errExpired, errRevoked)
	}
}

func TestExtendDeactivatedPrincipal(t *testing.T) {
	f := newAuthFixture(t)
	f.addEmployee(t, "emp-1", "maya@corp.example", "s3cret", "staff")
	ctx := context.Background()

	login, err := f.svc.Login(ctx, Credentials{LoginID: "maya@corp.example", Password: "s3cret"}, testMeta)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	f.employees.mu.Lock()
	f.employees.byID["emp-1"].Status = employeedomain.EmployeeStatusInactive
	f.employees.mu.Unlock()

	if _, err := f.svc.Extend(ctx, login.RefreshToken, testMeta); !errors.Is(err, ErrRefreshInvalid) {
		t.Errorf("deactivated principal: expected ErrRefreshInvalid, got %v", err)
	}
}

func TestExtendConcurrentSingleWinner(t *testing.T) {
	f := newAuthFixture(t)
	f.addEmployee(t, "emp-1", "maya@corp.example", "s3cret", "staff")
	ctx := context.Background()

	login, err := f.svc.Login(ctx, Credentials{LoginID: "maya@corp.example", Password: "s3cret"}, testMeta)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = f.svc.Extend(ctx, login.RefreshToken, testMeta)
		}(i)
	}
	wg.Wait()

	var wins, losses int
	for _, err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrRefreshInvalid):
			losses++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 || losses != 1 {
		t.Errorf("expected exactly one winner, got %d wins / %d losses", wins, losses)
	}
}

func TestLogoutIdempotent(t *testing.T) {
	f := newAuthFixture(t)
	f.addEmployee(t, "emp-1", "maya@corp.example", "s3cret", "staff")
	ctx := context.Background()

	login, err := f.svc.Login(ctx, Credentials{LoginID: "maya@corp.example", Password: "s3cret"}, testMeta)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if got := f.presence.get("emp-1"); got != presencedomain.StatusOnline {
		t.Fatalf("expected online after login, got %q", got)
	}

	if err := f.svc.Logout(ctx, login.RefreshToken, testMeta); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if got := f.presence.get("emp-1"); got != presencedomain.StatusOffline {
		t.Errorf("expected offline after logout, got %q", got)
	}
	sess, _ := f.sessions.GetByTokenHash(ctx, security.HashRefreshToken(login.RefreshToken))
	if sess == nil || sess.RevokedAt == nil {
		t.Fatal("session should be revoked")
	}
	touchesAfterFirst := len(f.employees.touched)

	// Second logout with the same token: still success, no repeated side effects.
	if err := f.svc.Logout(ctx, login.RefreshToken, testMeta); err != nil {
		t.Fatalf("second Logout: %v", err)
	}
	if len(f.employees.touched) != touchesAfterFirst {
		t.Error("repeated logout must not re-touch last login")
	}
}

func TestLogoutTokenStatesNeverError(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	if err := f.svc.Logout(ctx, "", testMeta); err != nil {
		t.Errorf("empty token: %v", err)
	}
	if err := f.svc.Logout(ctx, "unknown-token", testMeta); err != nil {
		t.Errorf("unknown token: %v", err)
	}
}
