package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wisatahub/platform-gateway/internal/core/domain"
	"github.com/wisatahub/platform-gateway/internal/core/port"
	"github.com/wisatahub/platform-gateway/internal/repository"
)

const (
	loginPath       = "/login"
	consentSignPath = "/legal/sign"

	defaultStoreTimeout = 2 * time.Second
)

// GatewayService composes session identity, role resolution, the consent
// gate, and the route policy matrix into a single per-request decision.
//
// Evaluation is stateless: every call derives its outcome from the supplied
// identity and the current store state, so repeated evaluation of the same
// request state yields the same decision. Store failures degrade to an
// unresolved role and a denial redirect, never to an allow.
type GatewayService struct {
	profiles     port.ProfileRepository
	resolver     *RoleResolver
	consent      ConsentGate
	publisher    port.DecisionPublisher
	logger       *zap.Logger
	storeTimeout time.Duration
	now          func() time.Time
}

// NewGatewayService constructs the gateway orchestrator.
func NewGatewayService(
	profiles port.ProfileRepository,
	resolver *RoleResolver,
	consent ConsentGate,
	publisher port.DecisionPublisher,
	logger *zap.Logger,
	storeTimeout time.Duration,
) *GatewayService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if storeTimeout <= 0 {
		storeTimeout = defaultStoreTimeout
	}
	return &GatewayService{
		profiles:     profiles,
		resolver:     resolver,
		consent:      consent,
		publisher:    publisher,
		logger:       logger,
		storeTimeout: storeTimeout,
		now:          time.Now,
	}
}

// WithClock injects a custom clock (testing).
func (s *GatewayService) WithClock(now func() time.Time) *GatewayService {
	if now != nil {
		s.now = now
	}
	return s
}

// Evaluate runs the request decision state machine for a locale-stripped
// path. Locale redirection and asset/API bypass happen upstream in the HTTP
// layer; by the time Evaluate runs the path is policy-relevant.
func (s *GatewayService) Evaluate(ctx context.Context, path string, identity *domain.Identity) domain.Decision {
	decision := s.evaluate(ctx, path, identity)
	s.publishDecision(ctx, path, identity, decision)
	return decision
}

func (s *GatewayService) evaluate(ctx context.Context, path string, identity *domain.Identity) domain.Decision {
	cls := domain.Classify(path)

	if identity == nil || identity.UserID == "" {
		if cls.Class == domain.PathPublic {
			return domain.Decision{Kind: domain.DecisionAllow}
		}
		return domain.Decision{Kind: domain.DecisionRedirectLogin, Location: loginPath}
	}

	profile, res, storeFailed := s.fetchState(ctx, identity)
	role := res.Role

	// Consent gate runs before any role-based routing. Only the owner role
	// bypasses it unconditionally.
	if !cls.ConsentExempt && !s.consent.Exempt(path) {
		if !s.consent.Satisfied(profile, role) {
			return s.withResolution(domain.Decision{
				Kind:     domain.DecisionRedirectConsent,
				Location: consentSignPath,
			}, res, profile, identity)
		}
	}

	switch cls.Class {
	case domain.PathPublic:
		// An onboarded user visiting their own vertical's landing page is
		// bounced straight to the authenticated dashboard.
		if cls.Vertical != domain.RoleNone && role == cls.Vertical && trimPath(path) == role.LandingPath() {
			return s.withResolution(domain.Decision{
				Kind:     domain.DecisionRedirectRoleHome,
				Location: role.HomePath(),
			}, res, profile, identity)
		}
		return s.withResolution(domain.Decision{Kind: domain.DecisionAllow}, res, profile, identity)

	case domain.PathInternal:
		if role.IsInternal() {
			return s.withResolution(domain.Decision{Kind: domain.DecisionAllow}, res, profile, identity)
		}
		if role == domain.RoleNone && !storeFailed {
			// No role at all is unauthenticated-equivalent.
			return domain.Decision{Kind: domain.DecisionRedirectLogin, Location: loginPath}
		}
		return s.withResolution(domain.Decision{
			Kind:     domain.DecisionRedirectRoleHome,
			Location: roleHomeOrDefault(role),
		}, res, profile, identity)

	case domain.PathProtected:
		if len(cls.AllowedRoles) > 0 && !roleAllowed(role, cls.AllowedRoles) {
			if role == domain.RoleNone && !storeFailed {
				return domain.Decision{Kind: domain.DecisionRedirectLogin, Location: loginPath}
			}
			// Graceful redirection, not a hard denial: send the caller to the
			// vertical's own public landing page.
			target := domain.DefaultHomePath
			if cls.Vertical != domain.RoleNone {
				target = cls.Vertical.LandingPath()
			} else if role != domain.RoleNone {
				target = role.HomePath()
			}
			return s.withResolution(domain.Decision{
				Kind:     domain.DecisionRedirectRoleHome,
				Location: target,
			}, res, profile, identity)
		}

		if role == domain.RoleNone {
			if storeFailed {
				// Fail closed without looping the caller back onto the
				// fallback page itself.
				if trimPath(path) == domain.DefaultHomePath || strings.HasPrefix(trimPath(path), domain.DefaultHomePath+"/") {
					return domain.Decision{Kind: domain.DecisionRedirectLogin, Location: loginPath}
				}
				return domain.Decision{Kind: domain.DecisionRedirectRoleHome, Location: domain.DefaultHomePath}
			}
			return domain.Decision{Kind: domain.DecisionRedirectLogin, Location: loginPath}
		}

		return s.withResolution(domain.Decision{Kind: domain.DecisionAllow}, res, profile, identity)
	}

	// Unreachable with the current matrix; deny-by-default regardless.
	return domain.Decision{Kind: domain.DecisionRedirectLogin, Location: loginPath}
}

// fetchState issues the profile lookup and the role resolution in parallel.
// The two reads have no dependency on each other; the legacy-role fallback is
// applied once both complete, and only when the role store answered. Results
// live only for this request.
func (s *GatewayService) fetchState(ctx context.Context, identity *domain.Identity) (*domain.UserProfile, Resolution, bool) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	var (
		wg      sync.WaitGroup
		profile *domain.UserProfile
		profErr error
		res     Resolution
		resErr  error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		profile, profErr = s.profiles.GetByID(fetchCtx, identity.UserID)
	}()
	go func() {
		defer wg.Done()
		res, resErr = s.resolver.Resolve(fetchCtx, identity)
	}()
	wg.Wait()

	storeFailed := false

	if profErr != nil {
		if !errors.Is(profErr, repository.ErrNotFound) {
			storeFailed = true
			s.logger.Warn("profile lookup failed, treating profile as unknown",
				zap.String("user_id", identity.UserID),
				zap.Error(profErr),
			)
		}
		profile = nil
	}

	if resErr != nil {
		storeFailed = true
		res = Resolution{Role: domain.RoleNone, Source: domain.SourceNone}
		s.logger.Warn("role resolution failed, treating role as unresolved",
			zap.String("user_id", identity.UserID),
			zap.Error(resErr),
		)
		// The legacy tier requires the store to have affirmatively reported
		// zero assignments. An unanswered store stays unresolved.
		return profile, res, storeFailed
	}

	res = ApplyLegacyFallback(res, profile)

	return profile, res, storeFailed
}

// withResolution stamps the resolved role and tenant onto a decision.
func (s *GatewayService) withResolution(d domain.Decision, res Resolution, profile *domain.UserProfile, identity *domain.Identity) domain.Decision {
	d.Role = res.Role
	d.RoleSource = res.Source
	d.BranchID = resolveBranch(profile, identity)
	return d
}

func (s *GatewayService) publishDecision(ctx context.Context, path string, identity *domain.Identity, decision domain.Decision) {
	if s.publisher == nil {
		return
	}

	event := domain.AccessDecisionEvent{
		EventID:    uuid.NewString(),
		Path:       path,
		Decision:   decision.Kind,
		Location:   decision.Location,
		Role:       decision.Role,
		RoleSource: decision.RoleSource,
		BranchID:   decision.BranchID,
		DecidedAt:  s.now().UTC(),
	}
	if identity != nil {
		event.UserID = identity.UserID
	}

	if err := s.publisher.PublishAccessDecision(ctx, event); err != nil {
		// Advisory only: a failing audit sink never affects the request.
		s.logger.Warn("failed to publish access decision", zap.Error(err))
	}
}

func resolveBranch(profile *domain.UserProfile, identity *domain.Identity) string {
	if profile != nil && profile.BranchID != nil && *profile.BranchID != "" {
		return *profile.BranchID
	}
	if identity != nil {
		return identity.BranchID
	}
	return ""
}

func roleAllowed(role domain.Role, allowed []domain.Role) bool {
	for _, candidate := range allowed {
		if role == candidate {
			return true
		}
	}
	return false
}

func roleHomeOrDefault(role domain.Role) string {
	if role == domain.RoleNone {
		return domain.DefaultHomePath
	}
	return role.HomePath()
}

func trimPath(path string) string {
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	return path
}
