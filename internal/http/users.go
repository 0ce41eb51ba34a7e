package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type UsersController struct {
	users UserLister
}

func NewUsersController(users UserLister) *UsersController {
	return &UsersController{users: users}
}

// GetUsers handles GET /api/users
func (uc *UsersController) GetUsers(c *gin.Context) {
	list, err := uc.users.ListUsers()
	if err != nil {
		respondInternalError(c, err, "list users")
		return
	}
	c.JSON(http.StatusOK, list)
}
