package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/MrEthical07/authcore"
	"github.com/MrEthical07/authcore/middleware"
)

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

type registerResponse struct {
	AccountID         string `json:"account_id"`
	VerificationToken string `json:"verification_token"`
}

type tokenRequest struct {
	Token string `json:"token"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type forgotPasswordRequest struct {
	Username string `json:"username"`
}

type forgotPasswordResponse struct {
	ResetToken string    `json:"reset_token"`
	ExpiresAt  time.Time `json:"expires_at"`
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

type updateEmailRequest struct {
	Email string `json:"email"`
}

type setRoleRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

type statusResponse struct {
	Status string `json:"status"`
}

var statusOK = statusResponse{Status: "ok"}

func (a *API) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !a.decode(w, r, &req) {
		return
	}
	res, err := a.engine.Register(r.Context(), req.Username, req.Password, req.Email)
	if err != nil {
		a.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, registerResponse{
		AccountID:         res.AccountID,
		VerificationToken: res.VerificationToken,
	})
}

func (a *API) verifyEmail(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if !a.decode(w, r, &req) {
		return
	}
	if err := a.engine.VerifyEmail(r.Context(), req.Token); err != nil {
		a.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statusOK)
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !a.decode(w, r, &req) {
		return
	}
	res, err := a.engine.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		a.writeEngineError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     a.engine.SessionCookieName(),
		Value:    res.SessionToken,
		Path:     "/",
		Expires:  res.ExpiresAt,
		HttpOnly: true,
		Secure:   a.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, loginResponse{Token: res.SessionToken, ExpiresAt: res.ExpiresAt})
}

func (a *API) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if !a.decode(w, r, &req) {
		return
	}
	res, err := a.engine.ForgotPassword(r.Context(), req.Username)
	if err != nil {
		a.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, forgotPasswordResponse{ResetToken: res.Token, ExpiresAt: res.ExpiresAt})
}

// resetPassword is unguarded: the reset token is the credential.
func (a *API) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if !a.decode(w, r, &req) {
		return
	}
	if err := a.engine.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		a.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statusOK)
}

func (a *API) changePassword(w http.ResponseWriter, r *http.Request) {
	p, found := middleware.PrincipalFromContext(r.Context())
	if !found {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req changePasswordRequest
	if !a.decode(w, r, &req) {
		return
	}
	if err := a.engine.ChangePassword(r.Context(), p.AccountID, req.CurrentPassword, req.NewPassword); err != nil {
		a.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statusOK)
}

func (a *API) updateEmail(w http.ResponseWriter, r *http.Request) {
	p, found := middleware.PrincipalFromContext(r.Context())
	if !found {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req updateEmailRequest
	if !a.decode(w, r, &req) {
		return
	}
	if err := a.engine.UpdateEmail(r.Context(), p.AccountID, req.Email); err != nil {
		a.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statusOK)
}

// setRole and unlock leave the admin check to the engine, which reads the
// caller's current role from the store.
func (a *API) setRole(w http.ResponseWriter, r *http.Request) {
	p, found := middleware.PrincipalFromContext(r.Context())
	if !found {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req setRoleRequest
	if !a.decode(w, r, &req) {
		return
	}
	if err := a.engine.SetRole(r.Context(), p.AccountID, req.UserID, authcore.Role(req.Role)); err != nil {
		a.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statusOK)
}

func (a *API) unlock(w http.ResponseWriter, r *http.Request) {
	p, found := middleware.PrincipalFromContext(r.Context())
	if !found {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := a.engine.Unlock(r.Context(), p.AccountID, mux.Vars(r)["username"]); err != nil {
		a.writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statusOK)
}
