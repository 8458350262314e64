package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sangkips/dentalbill-api/internal/presentation/http/dto/response"
	"github.com/sangkips/dentalbill-api/pkg/pagination"
)

const dateLayout = "2006-01-02"

// GetUserID extracts the user ID from the Gin context
func GetUserID(c *gin.Context) *uuid.UUID {
	userIDVal, exists := c.Get("user_id")
	if !exists {
		return nil
	}
	userID, ok := userIDVal.(uuid.UUID)
	if !ok {
		return nil
	}
	return &userID
}

// GetUserEmail extracts the user email from the Gin context
func GetUserEmail(c *gin.Context) string {
	email, exists := c.Get("user_email")
	if !exists {
		return ""
	}
	s, _ := email.(string)
	return s
}

// GetUserPermissions extracts the user permissions from the Gin context
func GetUserPermissions(c *gin.Context) []string {
	permissions, exists := c.Get("user_permissions")
	if !exists {
		return nil
	}
	p, _ := permissions.([]string)
	return p
}

// requireUserID writes 401 and returns false when the request is anonymous
func requireUserID(c *gin.Context) (uuid.UUID, bool) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return uuid.Nil, false
	}
	return *userID, true
}

// pathID parses the :id route parameter, writing 400 on failure
func pathID(c *gin.Context, resource string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid "+resource+" ID")
		return uuid.Nil, false
	}
	return id, true
}

func pageParams(c *gin.Context) *pagination.PaginationParams {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", strconv.Itoa(pagination.DefaultPerPage)))
	return &pagination.PaginationParams{Page: page, PerPage: perPage}
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, s, time.Local)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// dateRange reads an inclusive from/to day pair from the query and returns
// the half-open [from, to+1 day) interval the repositories expect
func dateRange(c *gin.Context, fromKey, toKey string) (from, to *time.Time, ok bool) {
	from, err := parseDate(c.Query(fromKey))
	if err != nil {
		response.BadRequest(c, "Invalid "+fromKey+", expected YYYY-MM-DD")
		return nil, nil, false
	}
	to, err = parseDate(c.Query(toKey))
	if err != nil {
		response.BadRequest(c, "Invalid "+toKey+", expected YYYY-MM-DD")
		return nil, nil, false
	}
	if to != nil {
		next := to.AddDate(0, 0, 1)
		to = &next
	}
	return from, to, true
}
