package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/storeflow/gateway/internal/gateway"
)

// AuthorizeURLBuilder renders the provider's consent URL for a PKCE
// challenge. Implemented by etsy.OAuth.
type AuthorizeURLBuilder interface {
	AuthorizationURL(ch *gateway.Challenge) string
}

// OAuthHandler runs the authorization-code connect flow for Etsy.
type OAuthHandler struct {
	challenges *gateway.ChallengeStore
	tokens     *gateway.TokenManager
	auth       AuthorizeURLBuilder
	log        *slog.Logger
}

// NewOAuthHandler creates a new OAuthHandler.
func NewOAuthHandler(cs *gateway.ChallengeStore, tm *gateway.TokenManager, auth AuthorizeURLBuilder, log *slog.Logger) *OAuthHandler {
	return &OAuthHandler{challenges: cs, tokens: tm, auth: auth, log: log}
}

// Connect starts the consent flow: it mints a PKCE challenge for the tenant
// and redirects the browser to the provider's authorization page.
//
// @Summary Start the Etsy connect flow
// @Tags oauth
// @Param tenant_id query string true "Tenant identifier"
// @Success 302
// @Failure 400 {object} ErrorResponse
// @Router /oauth/etsy/connect [get]
func (h *OAuthHandler) Connect(c echo.Context) error {
	tenantID := c.QueryParam("tenant_id")
	if tenantID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "tenant_id is required"})
	}

	ch, err := gateway.NewChallenge(tenantID)
	if err != nil {
		h.log.Error("generating pkce challenge", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
	h.challenges.Put(ch)

	return c.Redirect(http.StatusFound, h.auth.AuthorizationURL(ch))
}

// Callback finishes the consent flow: it matches the state nonce to a
// pending challenge, exchanges the authorization code with the code
// verifier, and stores the resulting credential. Each state is consumable
// once; a replayed or expired state is rejected.
//
// @Summary Finish the Etsy connect flow
// @Tags oauth
// @Param code query string true "Authorization code"
// @Param state query string true "State nonce from the connect redirect"
// @Success 200 {object} StatusResponse
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /oauth/etsy/callback [get]
func (h *OAuthHandler) Callback(c echo.Context) error {
	if denied := c.QueryParam("error"); denied != "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "authorization denied: " + denied})
	}

	ch, ok := h.challenges.Consume(c.QueryParam("state"))
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "unknown or expired state"})
	}

	code := c.QueryParam("code")
	if code == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "code is required"})
	}

	key := gateway.Key{Provider: gateway.ProviderEtsy, TenantID: ch.TenantID}
	if _, err := h.tokens.Exchange(c.Request().Context(), key, code, ch.Verifier); err != nil {
		if errors.Is(err, gateway.ErrInvalidGrant) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "authorization code rejected"})
		}
		h.log.Error("exchanging authorization code",
			"tenant_id", ch.TenantID,
			"error", err,
		)
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "token exchange failed"})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status":    "connected",
		"tenant_id": ch.TenantID,
	})
}
