package server

import (
	"github.com/gin-gonic/gin"
)

type userDetailsResponse struct {
	UserID      string `json:"userId"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Country     string `json:"country"`
	IsAdmin     bool   `json:"isAdmin"`
}

func (s *Server) UserDetails(c *gin.Context) {
	user, err := s.accountSvc.Get(c.Request.Context(), c.Query("userId"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondWith(c, "user", userDetailsResponse{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Country:     user.Country,
		IsAdmin:     user.IsAdmin,
	})
}

func (s *Server) IsAdmin(c *gin.Context) {
	isAdmin, err := s.accountSvc.IsAdmin(c.Request.Context(), c.Query("userId"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondWith(c, "isAdmin", isAdmin)
}
