package middleware

import (
	"net/http"
	"strings"

	"propdesk/internal/authn"
	"propdesk/internal/models"
	"propdesk/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const profileKey = "CurrentProfile"

// CurrentProfile returns the resolved actor for the request, or nil.
func CurrentProfile(c *gin.Context) *models.Profile {
	if v, ok := c.Get(profileKey); ok {
		if p, ok := v.(*models.Profile); ok {
			return p
		}
	}
	return nil
}

// InjectProfile resolves the actor from the session cookie or, failing that,
// from an identity-provider bearer token. Bearer subjects are upserted on
// first sight, which is how first sign-in creates a profile.
func InjectProfile(profiles *services.ProfileService, verifier *authn.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)
		if pidRaw := sess.Get("profile_id"); pidRaw != nil {
			if pid, ok := pidRaw.(uint); ok && pid > 0 {
				if profile, err := profiles.Load(pid); err == nil {
					c.Set(profileKey, profile)
					c.Next()
					return
				}
			}
		}

		header := c.GetHeader("Authorization")
		if strings.HasPrefix(header, "Bearer ") {
			token := strings.TrimPrefix(header, "Bearer ")
			if claims, err := verifier.Verify(token); err == nil {
				if profile, err := profiles.UpsertFromClaims(claims); err == nil {
					c.Set(profileKey, profile)
				}
			}
		}

		c.Next()
	}
}

func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		p := CurrentProfile(c)
		if p == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if p.Status != models.ProfileActive {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

// RequireRole gates a route to the given roles. Fine-grained ownership checks
// stay in the services; this is the coarse route-level cut.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	roleSet := map[models.Role]struct{}{}
	for _, r := range roles {
		roleSet[r] = struct{}{}
	}

	return func(c *gin.Context) {
		p := CurrentProfile(c)
		if p == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if _, ok := roleSet[p.Role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}
