package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
	"storefront/internal/service"
)

type loginReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// @Summary Sign in
// @Tags auth
// @Accept json
// @Produce json
// @Param input body loginReq true "Credentials"
// @Success 200 {object} response{data=domain.AuthResult}
// @Failure 401 {object} response
// @Router /auth/login [post]
func (s *Server) login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, service.ErrInvalidInput)
		return
	}
	res, err := s.auth.Login(c, domain.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, "Login successful", res)
}

type registerReq struct {
	FullName        string `json:"fullName" binding:"required,max=100"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword"`
	Address         string `json:"address" binding:"max=500"`
	ContactNumber   string `json:"contactNumber" binding:"omitempty,phone"`
}

// @Summary Create a customer account
// @Tags auth
// @Accept json
// @Produce json
// @Param input body registerReq true "Profile"
// @Success 200 {object} response{data=domain.AuthResult}
// @Failure 400 {object} response
// @Router /auth/register [post]
func (s *Server) register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, service.ErrInvalidInput)
		return
	}
	res, err := s.auth.Register(c, domain.Registration{
		FullName:        req.FullName,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		Address:         req.Address,
		ContactNumber:   req.ContactNumber,
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, "Registration successful", res)
}

// @Summary Exchange the bearer token for a new one
// @Tags auth
// @Produce json
// @Security Bearer
// @Success 200 {object} response{data=domain.AuthResult}
// @Failure 401 {object} response
// @Router /auth/refresh [post]
func (s *Server) refresh(c *gin.Context) {
	res, err := s.auth.Refresh(c, bearer(c))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, "Token refreshed successfully", res)
}

// @Summary Check whether the bearer token is still accepted
// @Tags auth
// @Produce json
// @Security Bearer
// @Success 200 {object} response{data=bool}
// @Router /auth/validate [post]
func (s *Server) validate(c *gin.Context) {
	c.JSON(http.StatusOK, response{Success: true, Message: "Token validation result", Data: s.auth.Validate(c, bearer(c))})
}

// @Summary Forget the bearer token
// @Tags auth
// @Produce json
// @Security Bearer
// @Success 200 {object} response
// @Router /auth/logout [post]
func (s *Server) logout(c *gin.Context) {
	if err := s.auth.Logout(c, bearer(c)); err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, "Logout successful", nil)
}
