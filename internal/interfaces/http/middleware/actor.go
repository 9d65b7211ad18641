package middleware

import (
	"errors"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/infrastructure/logger"
	"github.com/JKrishnaV/WPFGrowerApp-sub001/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// Actor identification
const (
	ActorKey        = "actor"
	ActorHeader     = "X-Actor"
	AuthHeaderKey   = "Authorization"
	BearerPrefix    = "Bearer "
	maxActorLength  = 100
	actorSigningAlg = "HS256"
)

// ActorClaims are the claims of a clerk token. The display name wins over
// the subject when both are set.
type ActorClaims struct {
	jwt.RegisteredClaims
	Name string `json:"name,omitempty"`
}

// Actor returns the audit name carried by the claims
func (c *ActorClaims) Actor() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Subject
}

// ActorConfig configures the Actor middleware
type ActorConfig struct {
	Secret []byte
	Issuer string
	// AllowActorHeader accepts a plain X-Actor header when no bearer token
	// is sent. Development only.
	AllowActorHeader bool
	SkipPaths        []string
	Logger           *zap.Logger
}

// Actor resolves the clerk performing the request from a bearer token and
// stores it in the gin and request contexts. Every state-changing settlement
// action records this name.
func Actor(cfg ActorConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	parser := newActorParser(cfg.Issuer)

	return func(c *gin.Context) {
		if slices.Contains(cfg.SkipPaths, c.Request.URL.Path) {
			c.Next()
			return
		}

		actor, err := resolveActor(c, cfg, parser)
		if err != nil {
			log.Warn("Actor authentication failed",
				zap.Error(err),
				zap.String("path", c.Request.URL.Path),
			)
			code := dto.ErrCodeUnauthorized
			message := "Authentication required"
			if errors.Is(err, jwt.ErrTokenExpired) {
				code = dto.ErrCodeTokenExpired
				message = "Token has expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
			return
		}

		c.Set(ActorKey, actor)
		c.Request = c.Request.WithContext(logger.WithActor(c.Request.Context(), actor))
		c.Next()
	}
}

var errMissingCredentials = errors.New("missing bearer token")

func resolveActor(c *gin.Context, cfg ActorConfig, parser *jwt.Parser) (string, error) {
	header := c.GetHeader(AuthHeaderKey)
	if header == "" {
		if cfg.AllowActorHeader {
			if actor := strings.TrimSpace(c.GetHeader(ActorHeader)); actor != "" && len(actor) <= maxActorLength {
				return actor, nil
			}
		}
		return "", errMissingCredentials
	}
	if !strings.HasPrefix(header, BearerPrefix) {
		return "", errors.New("authorization header is not a bearer token")
	}

	claims := &ActorClaims{}
	_, err := parser.ParseWithClaims(strings.TrimPrefix(header, BearerPrefix), claims, func(*jwt.Token) (any, error) {
		return cfg.Secret, nil
	})
	if err != nil {
		return "", err
	}
	actor := strings.TrimSpace(claims.Actor())
	if actor == "" || len(actor) > maxActorLength {
		return "", errors.New("token carries no usable actor")
	}
	return actor, nil
}

func newActorParser(issuer string) *jwt.Parser {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{actorSigningAlg}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(30 * time.Second),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	return jwt.NewParser(opts...)
}

// SignActorToken issues an HS256 token naming actor, valid for ttl
func SignActorToken(secret []byte, issuer, actor string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := ActorClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// GetActor returns the actor resolved by the Actor middleware
func GetActor(c *gin.Context) string {
	return c.GetString(ActorKey)
}
