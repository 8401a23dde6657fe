package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/stitts-dev/hoops-oracle/pkg/utils"
)

const oauthStateCookie = "yahoo_oauth_state"

// AuthorizationFlow is the Yahoo OAuth consent and code exchange
type AuthorizationFlow interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
}

// AuthHandler connects the server to a Yahoo account
type AuthHandler struct {
	flow         AuthorizationFlow
	secureCookie bool
	logger       *logrus.Logger
}

func NewAuthHandler(flow AuthorizationFlow, secureCookie bool, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{flow: flow, secureCookie: secureCookie, logger: logger}
}

// StartYahoo redirects to the Yahoo consent page
func (h *AuthHandler) StartYahoo(c *gin.Context) {
	state := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, state, 600, "/auth/yahoo", "", h.secureCookie, true)
	c.Redirect(http.StatusFound, h.flow.AuthCodeURL(state))
}

// YahooCallback exchanges the authorization code and stores the token
func (h *AuthHandler) YahooCallback(c *gin.Context) {
	if errCode := c.Query("error"); errCode != "" {
		utils.SendUnauthorized(c, "Yahoo authorization denied: "+errCode)
		return
	}

	expected, err := c.Cookie(oauthStateCookie)
	if err != nil || expected == "" || expected != c.Query("state") {
		utils.SendValidationError(c, "Invalid OAuth state", "state does not match the authorization request")
		return
	}
	code := c.Query("code")
	if code == "" {
		utils.SendValidationError(c, "Missing authorization code", "code is required")
		return
	}

	token, err := h.flow.Exchange(c.Request.Context(), code)
	if err != nil {
		h.logger.WithError(err).Error("Yahoo token exchange failed")
		utils.SendUpstreamError(c, "Yahoo token exchange failed", err.Error())
		return
	}
	c.SetCookie(oauthStateCookie, "", -1, "/auth/yahoo", "", h.secureCookie, true)

	h.logger.WithField("expires_at", token.Expiry).Info("Yahoo account connected")
	utils.SendSuccess(c, gin.H{
		"connected":  true,
		"expires_at": token.Expiry,
	})
}
