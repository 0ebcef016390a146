// Package service implements the authentication flows: login, session
// extension via refresh-token rotation, and logout.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"hrms-platform/backend/internal/audit"
	customerdomain "hrms-platform/backend/internal/customer/domain"
	employeedomain "hrms-platform/backend/internal/employee/domain"
	identitydomain "hrms-platform/backend/internal/identity/domain"
	presencedomain "hrms-platform/backend/internal/presence/domain"
	"hrms-platform/backend/internal/security"
	sessiondomain "hrms-platform/backend/internal/session/domain"
)

// Sentinel errors mapped to API codes by the handler. Every credential
// failure during login surfaces as ErrInvalidCredentials and every refresh
// failure during extension as ErrRefreshInvalid; the distinction between
// unknown identifier, inactive account, wrong password, revoked session, and
// expired session is recorded server-side only.
var (
	ErrMissingCredentials = errors.New("login identifier and password are required")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRefreshMissing     = errors.New("refresh token missing")
	ErrRefreshInvalid     = errors.New("refresh token invalid")
)

// Audit actions emitted by the auth flows.
const (
	ActionLogin  = "auth.login"
	ActionExtend = "auth.extend"
	ActionLogout = "auth.logout"
)

// IdentityResolver resolves a login identifier to at most one principal.
type IdentityResolver interface {
	Resolve(ctx context.Context, loginID string) (*identitydomain.Resolution, error)
}

// SessionStore is the subset of the session repository used by the auth flows.
type SessionStore interface {
	Create(ctx context.Context, s *sessiondomain.Session) error
	GetByTokenHash(ctx context.Context, hash string) (*sessiondomain.Session, error)
	Revoke(ctx context.Context, hash string, at time.Time) (int64, error)
	Rotate(ctx context.Context, oldHash, newHash string, newExpiry time.Time) (int64, error)
}

// PresenceStore updates employee presence as a side effect of login/logout.
type PresenceStore interface {
	Upsert(ctx context.Context, employeeID string, status presencedomain.Status, at time.Time) error
}

// EmployeeStore is the subset of the employee repository used by the auth flows.
type EmployeeStore interface {
	GetByID(ctx context.Context, id string) (*employeedomain.Employee, error)
	GetAccountByEmployeeID(ctx context.Context, employeeID string) (*employeedomain.Account, error)
	TouchLastLogin(ctx context.Context, employeeID string, at time.Time) error
}

// CustomerStore is the subset of the customer repository used by the auth flows.
type CustomerStore interface {
	GetByID(ctx context.Context, id string) (*customerdomain.Customer, error)
	GetAccessByCustomerID(ctx context.Context, customerID string) (*customerdomain.Access, error)
	TouchLastLogin(ctx context.Context, customerID string, at time.Time) error
}

// Credentials is the login input.
type Credentials struct {
	LoginID  string
	Password string
}

// ClientMeta carries request metadata recorded on sessions and audit entries.
type ClientMeta struct {
	IPAddress string
	UserAgent string
}

// TokenPair is a freshly issued access/refresh pair. RefreshToken is the only
// place the opaque secret ever appears; the store holds its SHA-256 hash.
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// LoginResult is the outcome of a successful login or extension.
type LoginResult struct {
	TokenPair
	SubjectID     string
	PrincipalType identitydomain.PrincipalType
	Role          string
	Email         string
}

// AuthService orchestrates identity resolution, credential verification,
// token issuance, and session lifecycle.
type AuthService struct {
	resolver   IdentityResolver
	sessions   SessionStore
	presence   PresenceStore
	employees  EmployeeStore
	customers  CustomerStore
	hasher     *security.Hasher
	tokens     *security.TokenProvider
	auditor    audit.AuditLogger
	refreshTTL time.Duration
	now        func() time.Time
}

// NewAuthService wires the auth flows. refreshTTL bounds session lifetime; it
// is extended on every successful rotation.
func NewAuthService(
	resolver IdentityResolver,
	sessions SessionStore,
	presence PresenceStore,
	employees EmployeeStore,
	customers CustomerStore,
	hasher *security.Hasher,
	tokens *security.TokenProvider,
	auditor audit.AuditLogger,
	refreshTTL time.Duration,
) *AuthService {
	return &AuthService{
		resolver:   resolver,
		sessions:   sessions,
		presence:   presence,
		employees:  employees,
		customers:  customers,
		hasher:     hasher,
		tokens:     tokens,
		auditor:    auditor,
		refreshTTL: refreshTTL,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// dummyHash is a bcrypt hash of an unguessable value, compared against when
// the login identifier is unknown so both paths cost one bcrypt verification.
const dummyHash = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"

// Login verifies credentials, opens a session, and issues a token pair.
// All credential failures return ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, creds Credentials, meta ClientMeta) (*LoginResult, error) {
	loginID := strings.TrimSpace(creds.LoginID)
	if loginID == "" || creds.Password == "" {
		s.logAudit(ctx, audit.Event{
			ActorType: "anonymous",
			Action:    ActionLogin,
			Outcome:   audit.OutcomeMissingInput,
			IPAddress: meta.IPAddress,
			UserAgent: meta.UserAgent,
		})
		return nil, ErrMissingCredentials
	}

	res, err := s.resolver.Resolve(ctx, loginID)
	if err != nil {
		return nil, fmt.Errorf("resolve identity: %w", err)
	}
	if res == nil {
		_ = s.hasher.Compare(dummyHash, []byte(creds.Password))
		s.logAudit(ctx, audit.Event{
			ActorType: "anonymous",
			Action:    ActionLogin,
			Outcome:   audit.OutcomeUnknownUser,
			IPAddress: meta.IPAddress,
			UserAgent: meta.UserAgent,
		})
		return nil, ErrInvalidCredentials
	}
	if !res.Active {
		_ = s.hasher.Compare(dummyHash, []byte(creds.Password))
		s.logAudit(ctx, audit.Event{
			ActorID:   res.SubjectID,
			ActorType: string(res.Type),
			Action:    ActionLogin,
			Outcome:   audit.OutcomeInactiveAccount,
			IPAddress: meta.IPAddress,
			UserAgent: meta.UserAgent,
		})
		return nil, ErrInvalidCredentials
	}
	if err := s.hasher.Compare(res.PasswordHash, []byte(creds.Password)); err != nil {
		s.logAudit(ctx, audit.Event{
			ActorID:   res.SubjectID,
			ActorType: string(res.Type),
			Action:    ActionLogin,
			Outcome:   audit.OutcomeWrongPassword,
			IPAddress: meta.IPAddress,
			UserAgent: meta.UserAgent,
		})
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	pair, tokenHash, err := s.issuePair(res.SubjectID, res.Role, string(res.Type), res.Email, now)
	if err != nil {
		return nil, err
	}
	session := &sessiondomain.Session{
		ID:          uuid.New().String(),
		SubjectID:   res.SubjectID,
		SubjectType: res.Type,
		TokenHash:   tokenHash,
		UserAgent:   meta.UserAgent,
		IPAddress:   meta.IPAddress,
		ExpiresAt:   pair.RefreshExpiresAt,
		CreatedAt:   now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.touchLastLogin(ctx, res.Type, res.SubjectID, now)
	if res.Type == identitydomain.PrincipalEmployee {
		if err := s.presence.Upsert(ctx, res.SubjectID, presencedomain.StatusOnline, now); err != nil {
			log.Printf("auth: presence online for %s: %v", res.SubjectID, err)
		}
	}

	s.logAudit(ctx, audit.Event{
		ActorID:   res.SubjectID,
		ActorType: string(res.Type),
		Action:    ActionLogin,
		Outcome:   audit.OutcomeSuccess,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
		Metadata:  fmt.Sprintf(`{"sessionId":%q,"tokenHashPrefix":%q}`, session.ID, security.TokenHashPrefix(tokenHash)),
	})

	return &LoginResult{
		TokenPair:     pair,
		SubjectID:     res.SubjectID,
		PrincipalType: res.Type,
		Role:          res.Role,
		Email:         res.Email,
	}, nil
}

// Extend rotates the session identified by refreshSecret and issues a new
// token pair. Rotation is a single conditional update on the old token hash;
// losing a concurrent race, a revoked session, an expired session, and an
// unknown token all return ErrRefreshInvalid.
func (s *AuthService) Extend(ctx context.Context, refreshSecret string, meta ClientMeta) (*LoginResult, error) {
	if strings.TrimSpace(refreshSecret) == "" {
		s.logAudit(ctx, audit.Event{
			ActorType: "anonymous",
			Action:    ActionExtend,
			Outcome:   audit.OutcomeMissingRefresh,
			IPAddress: meta.IPAddress,
			UserAgent: meta.UserAgent,
		})
		return nil, ErrRefreshMissing
	}

	oldHash := security.HashRefreshToken(refreshSecret)
	sess, err := s.sessions.GetByTokenHash(ctx, oldHash)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	now := s.now()
	if sess == nil || !sess.Live(now) {
		s.logAudit(ctx, audit.Event{
			ActorID:   subjectOf(sess),
			ActorType: actorTypeOf(sess),
			Action:    ActionExtend,
			Outcome:   audit.OutcomeInvalidRefresh,
			IPAddress: meta.IPAddress,
			UserAgent: meta.UserAgent,
		})
		return nil, ErrRefreshInvalid
	}

	role, email, err := s.currentGrant(ctx, sess.SubjectType, sess.SubjectID)
	if err != nil {
		return nil, err
	}
	if role == "" {
		s.logAudit(ctx, audit.Event{
			ActorID:   sess.SubjectID,
			ActorType: string(sess.SubjectType),
			Action:    ActionExtend,
			Outcome:   audit.OutcomeInactiveAccount,
			IPAddress: meta.IPAddress,
			UserAgent: meta.UserAgent,
		})
		return nil, ErrRefreshInvalid
	}

	pair, newHash, err := s.issuePair(sess.SubjectID, role, string(sess.SubjectType), email, now)
	if err != nil {
		return nil, err
	}
	rows, err := s.sessions.Rotate(ctx, oldHash, newHash, pair.RefreshExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("rotate session: %w", err)
	}
	if rows == 0 {
		s.logAudit(ctx, audit.Event{
			ActorID:   sess.SubjectID,
			ActorType: string(sess.SubjectType),
			Action:    ActionExtend,
			Outcome:   audit.OutcomeRotationRace,
			IPAddress: meta.IPAddress,
			UserAgent: meta.UserAgent,
		})
		return nil, ErrRefreshInvalid
	}

	s.logAudit(ctx, audit.Event{
		ActorID:   sess.SubjectID,
		ActorType: string(sess.SubjectType),
		Action:    ActionExtend,
		Outcome:   audit.OutcomeSuccess,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
		Metadata:  fmt.Sprintf(`{"sessionId":%q,"tokenHashPrefix":%q}`, sess.ID, security.TokenHashPrefix(newHash)),
	})

	return &LoginResult{
		TokenPair:     pair,
		SubjectID:     sess.SubjectID,
		PrincipalType: sess.SubjectType,
		Role:          role,
		Email:         email,
	}, nil
}

// Logout revokes the session identified by refreshSecret. Idempotent: a
// missing, unknown, expired, or already-revoked token is not an error. Only
// store failures are returned.
func (s *AuthService) Logout(ctx context.Context, refreshSecret string, meta ClientMeta) error {
	if strings.TrimSpace(refreshSecret) == "" {
		s.logAudit(ctx, audit.Event{
			ActorType: "anonymous",
			Action:    ActionLogout,
			Outcome:   audit.OutcomeMissingRefresh,
			IPAddress: meta.IPAddress,
			UserAgent: meta.UserAgent,
		})
		return nil
	}

	hash := security.HashRefreshToken(refreshSecret)
	sess, err := s.sessions.GetByTokenHash(ctx, hash)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if sess == nil {
		s.logAudit(ctx, audit.Event{
			ActorType: "anonymous",
			Action:    ActionLogout,
			Outcome:   audit.OutcomeInvalidRefresh,
			IPAddress: meta.IPAddress,
			UserAgent: meta.UserAgent,
		})
		return nil
	}

	now := s.now()
	rows, err := s.sessions.Revoke(ctx, hash, now)
	if err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	if rows > 0 {
		s.touchLastLogin(ctx, sess.SubjectType, sess.SubjectID, now)
		if sess.SubjectType == identitydomain.PrincipalEmployee {
			if err := s.presence.Upsert(ctx, sess.SubjectID, presencedomain.StatusOffline, now); err != nil {
				log.Printf("auth: presence offline for %s: %v", sess.SubjectID, err)
			}
		}
	}

	s.logAudit(ctx, audit.Event{
		ActorID:   sess.SubjectID,
		ActorType: string(sess.SubjectType),
		Action:    ActionLogout,
		Outcome:   audit.OutcomeSuccess,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
		Metadata:  fmt.Sprintf(`{"sessionId":%q,"alreadyRevoked":%t}`, sess.ID, rows == 0),
	})
	return nil
}

// issuePair issues an access token and a fresh refresh secret, returning the
// pair and the refresh token hash to store.
func (s *AuthService) issuePair(subjectID, role, principalType, email string, now time.Time) (TokenPair, string, error) {
	access, accessExp, err := s.tokens.IssueAccess(subjectID, role, principalType, email)
	if err != nil {
		return TokenPair{}, "", fmt.Errorf("issue access token: %w", err)
	}
	secret, hash, err := security.NewRefreshToken()
	if err != nil {
		return TokenPair{}, "", fmt.Errorf("issue refresh token: %w", err)
	}
	return TokenPair{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     secret,
		RefreshExpiresAt: now.Add(s.refreshTTL),
	}, hash, nil
}

// currentGrant re-reads the principal's role and email so an extension never
// carries forward stale claims. Empty role means the principal can no longer
// authenticate.
func (s *AuthService) currentGrant(ctx context.Context, subjectType identitydomain.PrincipalType, subjectID string) (role, email string, err error) {
	switch subjectType {
	case identitydomain.PrincipalEmployee:
		emp, err := s.employees.GetByID(ctx, subjectID)
		if err != nil {
			return "", "", fmt.Errorf("load employee: %w", err)
		}
		if emp == nil || emp.Status != employeedomain.EmployeeStatusActive {
			return "", "", nil
		}
		account, err := s.employees.GetAccountByEmployeeID(ctx, subjectID)
		if err != nil {
			return "", "", fmt.Errorf("load employee account: %w", err)
		}
		if account == nil || !account.Usable() {
			return "", "", nil
		}
		return account.Role, emp.OfficialEmail, nil
	case identitydomain.PrincipalCustomer:
		cust, err := s.customers.GetByID(ctx, subjectID)
		if err != nil {
			return "", "", fmt.Errorf("load customer: %w", err)
		}
		if cust == nil || cust.Status != customerdomain.CustomerStatusActive {
			return "", "", nil
		}
		access, err := s.customers.GetAccessByCustomerID(ctx, subjectID)
		if err != nil {
			return "", "", fmt.Errorf("load customer access: %w", err)
		}
		if access == nil || !access.Usable() {
			return "", "", nil
		}
		return identitydomain.CustomerRole, cust.Email, nil
	default:
		return "", "", nil
	}
}

func (s *AuthService) touchLastLogin(ctx context.Context, subjectType identitydomain.PrincipalType, subjectID string, at time.Time) {
	var err error
	switch subjectType {
	case identitydomain.PrincipalEmployee:
		err = s.employees.TouchLastLogin(ctx, subjectID, at)
	case identitydomain.PrincipalCustomer:
		err = s.customers.TouchLastLogin(ctx, subjectID, at)
	}
	if err != nil {
		log.Printf("auth: touch last login for %s: %v", subjectID, err)
	}
}

func (s *AuthService) logAudit(ctx context.Context, e audit.Event) {
	if s.auditor != nil {
		s.auditor.LogEvent(ctx, e)
	}
}

func subjectOf(sess *sessiondomain.Session) string {
	if sess == nil {
		return ""
	}
	return sess.SubjectID
}

func actorTypeOf(sess *sessiondomain.Session) string {
	if sess == nil {
		return "anonymous"
	}
	return string(sess.SubjectType)
}
