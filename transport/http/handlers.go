package http

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/chaincampus/warden/core"
	"github.com/chaincampus/warden/service"
)

const successCode = 1000

// apiResponse is the envelope every endpoint answers with.
type apiResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
	Result  any    `json:"result,omitempty"`
}

// Handlers contains the HTTP handlers for the trust core endpoints.
type Handlers struct {
	auth        *service.AuthService
	nonces      *service.NonceService
	identities  *service.IdentityService
	enrollments *service.EnrollmentService
}

// NewHandlers creates the handler set.
func NewHandlers(
	auth *service.AuthService,
	nonces *service.NonceService,
	identities *service.IdentityService,
	enrollments *service.EnrollmentService,
) *Handlers {
	return &Handlers{
		auth:        auth,
		nonces:      nonces,
		identities:  identities,
		enrollments: enrollments,
	}
}

func respondOK(c *gin.Context, result any) {
	c.JSON(http.StatusOK, apiResponse{Code: successCode, Result: result})
}

// respondError maps a domain error to its stable code and HTTP status.
// Anything that is not an AppError is reported generically without leaking
// internal detail.
func respondError(c *gin.Context, err error) {
	var appErr *core.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.Status, apiResponse{Code: appErr.Code, Message: appErr.Message})
		return
	}
	log.Printf("unexpected error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	c.JSON(core.ErrUncategorized.Status, apiResponse{Code: core.ErrUncategorized.Code, Message: core.ErrUncategorized.Message})
}

// bindingError translates a failed binding into a domain error, building the
// human message from the violated constraint's parameters.
func bindingError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return core.ErrInvalidParameter.WithMessage("invalid request body")
	}

	v := verrs[0]
	switch {
	case v.Field() == "Username" && v.Tag() == "min":
		min, _ := strconv.Atoi(v.Param())
		return core.ErrUsernameInvalid.WithMessage(core.ErrUsernameInvalid.Message, min)
	case v.Field() == "Password" && v.Tag() == "min":
		min, _ := strconv.Atoi(v.Param())
		return core.ErrPasswordInvalid.WithMessage(core.ErrPasswordInvalid.Message, min)
	case v.Tag() == "required":
		return core.ErrMissingCredentials
	default:
		return core.ErrInvalidParameter.WithMessage("invalid value for %s", v.Field())
	}
}

type loginRequest struct {
	LoginMethod string `json:"loginMethod"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	Address     string `json:"address"`
	Signature   string `json:"signature"`
	Key         string `json:"key"`
	Nonce       string `json:"nonce"`
	Email       string `json:"email"`
}

type authResponse struct {
	Token         string `json:"token"`
	Authenticated bool   `json:"authenticated"`
}

// Login handles POST /auth/token.
func (h *Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindingError(err))
		return
	}

	token, err := h.auth.Authenticate(c.Request.Context(), service.LoginRequest{
		LoginMethod: req.LoginMethod,
		Username:    req.Username,
		Password:    req.Password,
		Address:     req.Address,
		Signature:   req.Signature,
		Key:         req.Key,
		Nonce:       req.Nonce,
		Email:       req.Email,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, authResponse{Token: token, Authenticated: true})
}

type federatedRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// Federated handles POST /auth/federated, the identity-provider callback
// glue. The provider has already verified the email by the time the request
// lands here.
func (h *Handlers) Federated(c *gin.Context) {
	var req federatedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindingError(err))
		return
	}

	token, err := h.auth.AuthenticateFederated(c.Request.Context(), req.Email)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, authResponse{Token: token, Authenticated: true})
}

type tokenRequest struct {
	Token string `json:"token" binding:"required"`
}

// Introspect handles POST /auth/introspect. Pure check, no side effect.
func (h *Handlers) Introspect(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindingError(err))
		return
	}
	respondOK(c, gin.H{"valid": h.auth.Introspect(c.Request.Context(), req.Token)})
}

// Refresh handles POST /auth/refresh.
func (h *Handlers) Refresh(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindingError(err))
		return
	}

	token, err := h.auth.Refresh(c.Request.Context(), req.Token)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, authResponse{Token: token, Authenticated: true})
}

// Logout handles POST /auth/logout. An already expired credential is not an
// error; the response just reports that nothing was revoked.
func (h *Handlers) Logout(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindingError(err))
		return
	}

	revoked, err := h.auth.Logout(c.Request.Context(), req.Token)
	if err != nil {
		respondError(c, err)
		return
	}

	message := "logout successful"
	if !revoked {
		message = "token already expired"
	}
	respondOK(c, gin.H{"success": revoked, "message": message})
}

type nonceRequest struct {
	Address string `json:"address"`
}

// CreateNonce handles POST /nonce.
func (h *Handlers) CreateNonce(c *gin.Context) {
	var req nonceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindingError(err))
		return
	}

	nonce, err := h.nonces.Issue(c.Request.Context(), req.Address)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"nonce": nonce.Value, "address": nonce.Address})
}

// ValidatePayment handles GET /enrollment/validate.
func (h *Handlers) ValidatePayment(c *gin.Context) {
	amount, err := strconv.ParseFloat(c.Query("amount"), 64)
	if err != nil || amount <= 0 {
		respondError(c, core.ErrInvalidParameter.WithMessage("amount must be a positive number"))
		return
	}

	valid := h.enrollments.VerifyPayment(
		c.Request.Context(),
		c.Query("receiver"),
		c.Query("sender"),
		amount,
		c.Query("txHash"),
	)
	respondOK(c, valid)
}

type enrollRequest struct {
	UserID          string  `json:"userId" binding:"required"`
	CourseID        string  `json:"courseId" binding:"required"`
	PaymentMethodID int64   `json:"coursePaymentMethodId" binding:"required"`
	PriceAda        float64 `json:"priceAda" binding:"gt=0"`
	TxHash          string  `json:"txHash" binding:"required"`
}

// Enroll handles POST /enrollment.
func (h *Handlers) Enroll(c *gin.Context) {
	var req enrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindingError(err))
		return
	}

	enrollment, err := h.enrollments.EnrollAfterPayment(
		c.Request.Context(),
		req.UserID,
		req.CourseID,
		req.PaymentMethodID,
		req.PriceAda,
		req.TxHash,
	)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, enrollment)
}

type registerRequest struct {
	LoginMethod   string `json:"loginMethod"`
	Username      string `json:"username" binding:"omitempty,min=4"`
	Password      string `json:"password" binding:"omitempty,min=6"`
	Email         string `json:"email" binding:"omitempty,email"`
	WalletAddress string `json:"walletAddress"`
	DOB           string `json:"dob"`
}

const minAge = 10

// Register handles POST /users.
func (h *Handlers) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindingError(err))
		return
	}

	if req.DOB != "" {
		dob, err := time.Parse("2006-01-02", req.DOB)
		if err != nil || age(dob) < minAge {
			respondError(c, core.ErrInvalidDOB.WithMessage(core.ErrInvalidDOB.Message, minAge))
			return
		}
	}

	identity, err := h.identities.Register(c.Request.Context(), service.RegistrationRequest{
		LoginMethod:   req.LoginMethod,
		Username:      req.Username,
		Password:      req.Password,
		Email:         req.Email,
		WalletAddress: req.WalletAddress,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, identityView(identity))
}

func age(dob time.Time) int {
	now := time.Now()
	years := now.Year() - dob.Year()
	if now.YearDay() < dob.YearDay() {
		years--
	}
	return years
}

type updateRequest struct {
	Password      string `json:"password" binding:"omitempty,min=6"`
	Email         string `json:"email" binding:"omitempty,email"`
	WalletAddress string `json:"walletAddress"`
}

// UpdateUser handles PUT /users/:id. Only the account owner may update.
func (h *Handlers) UpdateUser(c *gin.Context) {
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindingError(err))
		return
	}

	identity, err := h.identities.Update(c.Request.Context(), actorID(c), c.Param("id"), service.UpdateRequest{
		Password:      req.Password,
		Email:         req.Email,
		WalletAddress: req.WalletAddress,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, identityView(identity))
}

// ListUsers handles GET /users. Admin only.
func (h *Handlers) ListUsers(c *gin.Context) {
	identities, err := h.identities.List(c.Request.Context(), actorRole(c))
	if err != nil {
		respondError(c, err)
		return
	}

	views := make([]gin.H, 0, len(identities))
	for _, identity := range identities {
		views = append(views, identityView(identity))
	}
	respondOK(c, views)
}

// DeleteUser handles DELETE /users/:id. Admin only.
func (h *Handlers) DeleteUser(c *gin.Context) {
	if err := h.identities.Delete(c.Request.Context(), actorRole(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"deleted": true})
}

// Me handles GET /api/me.
func (h *Handlers) Me(c *gin.Context) {
	identity, err := h.identities.Get(c.Request.Context(), actorID(c), actorRole(c), actorID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, identityView(identity))
}

// identityView strips the password hash out of API responses.
func identityView(identity core.Identity) gin.H {
	return gin.H{
		"id":            identity.ID,
		"username":      identity.Username,
		"email":         identity.Email,
		"walletAddress": identity.WalletAddress,
		"loginMethod":   identity.LoginMethod,
		"role":          identity.Role,
	}
}
